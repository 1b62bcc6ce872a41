package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/agrisense/pathotrack/internal/model"
)

// RouteRepo encapsulates database operations for sampling_routes.
type RouteRepo struct {
	db *sql.DB
}

func NewRouteRepo(db *sql.DB) *RouteRepo { return &RouteRepo{db: db} }

const routeColumns = `id, sample_id, start_name, end_name,
	start_latitude, start_longitude, end_latitude, end_longitude,
	collection_date::text, collection_start_time, collection_end_time,
	COALESCE(created_by, 0), created_at`

func scanRoute(scan func(dest ...any) error) (model.SamplingRoute, error) {
	var rt model.SamplingRoute
	err := scan(&rt.ID, &rt.SampleID, &rt.StartName, &rt.EndName,
		&rt.StartLatitude, &rt.StartLongitude, &rt.EndLatitude, &rt.EndLongitude,
		&rt.CollectionDate, &rt.CollectionStartTime, &rt.CollectionEndTime,
		&rt.CreatedBy, &rt.CreatedAt)
	return rt, err
}

// Create inserts a route and populates its ID and CreatedAt.  A sample_id
// collision returns ErrSampleExists so callers can recover by re-fetching.
func (r *RouteRepo) Create(ctx context.Context, rt *model.SamplingRoute) error {
	var createdBy any
	if rt.CreatedBy != 0 {
		createdBy = rt.CreatedBy
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sampling_routes
			(sample_id, start_name, end_name,
			 start_latitude, start_longitude, end_latitude, end_longitude,
			 collection_date, collection_start_time, collection_end_time, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at`,
		strings.TrimSpace(rt.SampleID), rt.StartName, rt.EndName,
		rt.StartLatitude, rt.StartLongitude, rt.EndLatitude, rt.EndLongitude,
		rt.CollectionDate, rt.CollectionStartTime, rt.CollectionEndTime, createdBy).
		Scan(&rt.ID, &rt.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrSampleExists
		}
		return err
	}
	return nil
}

// GetBySampleID fetches a route by its unique human-chosen sample ID.
func (r *RouteRepo) GetBySampleID(ctx context.Context, sampleID string) (model.SamplingRoute, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+routeColumns+" FROM sampling_routes WHERE sample_id=$1 LIMIT 1",
		strings.TrimSpace(sampleID))
	return scanRoute(row.Scan)
}

// GetByID fetches a route by primary key.
func (r *RouteRepo) GetByID(ctx context.Context, id uint64) (model.SamplingRoute, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+routeColumns+" FROM sampling_routes WHERE id=$1 LIMIT 1", id)
	return scanRoute(row.Scan)
}

// List returns all routes, newest collection first.
func (r *RouteRepo) List(ctx context.Context) ([]model.SamplingRoute, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+routeColumns+" FROM sampling_routes ORDER BY collection_date DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SamplingRoute
	for rows.Next() {
		rt, err := scanRoute(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Update rewrites the editable fields of a route from the manual entry
// form.  The sample_id itself is immutable once created.
func (r *RouteRepo) Update(ctx context.Context, rt *model.SamplingRoute) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sampling_routes SET
			start_name=$2, end_name=$3,
			start_latitude=$4, start_longitude=$5,
			end_latitude=$6, end_longitude=$7,
			collection_date=$8, collection_start_time=$9, collection_end_time=$10
		WHERE id=$1`,
		rt.ID, rt.StartName, rt.EndName,
		rt.StartLatitude, rt.StartLongitude, rt.EndLatitude, rt.EndLongitude,
		rt.CollectionDate, rt.CollectionStartTime, rt.CollectionEndTime)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a route; detections and upload audit rows cascade.
func (r *RouteRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sampling_routes WHERE id=$1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
