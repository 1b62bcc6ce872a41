package model

import "time"

// SamplingRoute is one field-collection event: a straight-line transect
// between two GPS points, identified by a human-chosen sample ID.  Routes
// are created from the manual entry form, from field GPS collection, or on
// first sight of a sample ID during a metabarcode CSV upload.  The sample
// ID is unique and acts as the idempotency key for ingestion.
type SamplingRoute struct {
	ID                  uint64    `json:"id"`
	SampleID            string    `json:"sample_id"`
	StartName           string    `json:"start_name"`
	EndName             string    `json:"end_name"`
	StartLatitude       float64   `json:"start_latitude"`
	StartLongitude      float64   `json:"start_longitude"`
	EndLatitude         float64   `json:"end_latitude"`
	EndLongitude        float64   `json:"end_longitude"`
	CollectionDate      string    `json:"collection_date"` // ISO YYYY-MM-DD
	CollectionStartTime *string   `json:"collection_start_time,omitempty"`
	CollectionEndTime   *string   `json:"collection_end_time,omitempty"`
	CreatedBy           uint64    `json:"created_by,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}
