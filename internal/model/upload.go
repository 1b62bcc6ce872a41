package model

import "time"

// SampleUpload is an append-only audit record: one row per sample processed
// per upload.  Re-uploading a file converges the detections but appends new
// audit rows, deliberately, so the upload history is preserved.
type SampleUpload struct {
	ID         uint64    `json:"id"`
	RouteID    uint64    `json:"route_id"`
	UploadedBy uint64    `json:"uploaded_by,omitempty"`
	Filename   string    `json:"filename"`
	FileSize   int64     `json:"file_size"`
	RowCount   int       `json:"row_count"`
	UploadDate time.Time `json:"upload_date"`
	Notes      string    `json:"notes,omitempty"`
}
