package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/agrisense/pathotrack/internal/model"
)

// SpeciesRepo encapsulates database operations for the pathogen_species
// reference table.  The ingestion pipeline only calls GetByName; the write
// operations back the admin CRUD screens.
type SpeciesRepo struct {
	db *sql.DB
}

func NewSpeciesRepo(db *sql.DB) *SpeciesRepo { return &SpeciesRepo{db: db} }

// GetByName fetches a species by exact name match.
func (r *SpeciesRepo) GetByName(ctx context.Context, name string) (model.PathogenSpecies, error) {
	var sp model.PathogenSpecies
	err := r.db.QueryRowContext(ctx,
		"SELECT id, species_name, common_name, disease_type FROM pathogen_species WHERE species_name=$1 LIMIT 1",
		strings.TrimSpace(name)).
		Scan(&sp.ID, &sp.SpeciesName, &sp.CommonName, &sp.DiseaseType)
	return sp, err
}

// List returns the full reference list ordered by name.
func (r *SpeciesRepo) List(ctx context.Context) ([]model.PathogenSpecies, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, species_name, common_name, disease_type FROM pathogen_species ORDER BY species_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.PathogenSpecies
	for rows.Next() {
		var sp model.PathogenSpecies
		if err := rows.Scan(&sp.ID, &sp.SpeciesName, &sp.CommonName, &sp.DiseaseType); err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// Create inserts a species and returns its ID.
func (r *SpeciesRepo) Create(ctx context.Context, sp *model.PathogenSpecies) error {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO pathogen_species (species_name, common_name, disease_type) VALUES ($1,$2,$3) RETURNING id",
		strings.TrimSpace(sp.SpeciesName), sp.CommonName, sp.DiseaseType).Scan(&sp.ID)
	if err != nil && IsUniqueViolation(err) {
		return ErrSpeciesExists
	}
	return err
}

// Update rewrites a species row.
func (r *SpeciesRepo) Update(ctx context.Context, sp *model.PathogenSpecies) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE pathogen_species SET species_name=$2, common_name=$3, disease_type=$4 WHERE id=$1",
		sp.ID, strings.TrimSpace(sp.SpeciesName), sp.CommonName, sp.DiseaseType)
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrSpeciesExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a species.  Fails with a foreign-key error while any
// detection still references it, which handlers report as a conflict.
func (r *SpeciesRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM pathogen_species WHERE id=$1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
