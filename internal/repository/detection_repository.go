package repository

import (
	"context"
	"database/sql"

	"github.com/agrisense/pathotrack/internal/model"
)

// DetectionRepo encapsulates database operations for pathogen_detections.
type DetectionRepo struct {
	db *sql.DB
}

func NewDetectionRepo(db *sql.DB) *DetectionRepo { return &DetectionRepo{db: db} }

// Upsert inserts a detection or, when the (route, species) pair already
// exists, overwrites its read count.  Last write wins, which is what makes
// re-ingesting the same CSV idempotent.
func (r *DetectionRepo) Upsert(ctx context.Context, routeID, speciesID uint64, readCount int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pathogen_detections (route_id, pathogen_species_id, read_count)
		VALUES ($1,$2,$3)
		ON CONFLICT (route_id, pathogen_species_id)
		DO UPDATE SET read_count = EXCLUDED.read_count`,
		routeID, speciesID, readCount)
	return err
}

// ListByRoute returns a route's detections joined with species reference
// fields, highest read count first.
func (r *DetectionRepo) ListByRoute(ctx context.Context, routeID uint64) ([]model.DetectionWithSpecies, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT d.id, d.route_id, d.pathogen_species_id, d.read_count,
		       s.species_name, s.common_name, s.disease_type
		FROM pathogen_detections d
		JOIN pathogen_species s ON s.id = d.pathogen_species_id
		WHERE d.route_id = $1
		ORDER BY d.read_count DESC, s.species_name`,
		routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.DetectionWithSpecies
	for rows.Next() {
		var d model.DetectionWithSpecies
		if err := rows.Scan(&d.ID, &d.RouteID, &d.PathogenSpeciesID, &d.ReadCount,
			&d.SpeciesName, &d.CommonName, &d.DiseaseType); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
