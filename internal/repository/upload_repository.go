package repository

import (
	"context"
	"database/sql"

	"github.com/agrisense/pathotrack/internal/model"
)

// UploadRepo encapsulates database operations for the sample_uploads audit
// table.  Rows are append-only: one per sample processed per upload, never
// mutated afterwards.
type UploadRepo struct {
	db *sql.DB
}

func NewUploadRepo(db *sql.DB) *UploadRepo { return &UploadRepo{db: db} }

// Create appends an audit row and populates its ID and UploadDate.
func (r *UploadRepo) Create(ctx context.Context, up *model.SampleUpload) error {
	var uploadedBy any
	if up.UploadedBy != 0 {
		uploadedBy = up.UploadedBy
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO sample_uploads (route_id, uploaded_by, filename, file_size, row_count, notes)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, upload_date`,
		up.RouteID, uploadedBy, up.Filename, up.FileSize, up.RowCount, up.Notes).
		Scan(&up.ID, &up.UploadDate)
}

// ListByRoute returns the upload history of a route, newest first.
func (r *UploadRepo) ListByRoute(ctx context.Context, routeID uint64) ([]model.SampleUpload, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, route_id, COALESCE(uploaded_by, 0), filename, file_size, row_count, upload_date, notes
		FROM sample_uploads WHERE route_id=$1
		ORDER BY upload_date DESC, id DESC`,
		routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SampleUpload
	for rows.Next() {
		var up model.SampleUpload
		if err := rows.Scan(&up.ID, &up.RouteID, &up.UploadedBy, &up.Filename,
			&up.FileSize, &up.RowCount, &up.UploadDate, &up.Notes); err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, rows.Err()
}
