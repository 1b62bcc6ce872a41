// Package queue defines message payloads exchanged over the message broker.
package queue

// SampleIngestedEvent is published after a metabarcode CSV upload has been
// processed.  It carries the upload summary so downstream consumers can
// log or notify without querying the primary database.  Publishing is fire
// and forget; the upload result returned to the operator never depends on
// the broker.
type SampleIngestedEvent struct {
	UploadedBy      uint64   `json:"uploaded_by"`
	UploaderEmail   string   `json:"uploader_email"`
	Filename        string   `json:"filename"`
	FileSize        int64    `json:"file_size"`
	RoutesProcessed int      `json:"routes_processed"`
	DetectionsAdded int      `json:"detections_added"`
	Errors          []string `json:"errors"`
	IngestedAt      string   `json:"ingested_at"`
}
