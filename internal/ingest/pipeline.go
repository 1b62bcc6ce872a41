// Package ingest implements the metabarcode CSV ingestion pipeline: parse
// the uploaded file, group rows into logical samples, reconcile each sample
// against the store (create-if-absent route, upsert detections) and report
// per-row successes and failures without aborting the batch.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agrisense/pathotrack/internal/model"
	"github.com/agrisense/pathotrack/internal/repository"
)

// RouteStore is the slice of route persistence the pipeline needs.
type RouteStore interface {
	GetBySampleID(ctx context.Context, sampleID string) (model.SamplingRoute, error)
	Create(ctx context.Context, rt *model.SamplingRoute) error
}

// SpeciesStore resolves species names against the reference table.  The
// pipeline never writes to it; unknown names are reported as errors.
type SpeciesStore interface {
	GetByName(ctx context.Context, name string) (model.PathogenSpecies, error)
}

// DetectionStore upserts detections keyed on (route, species).
type DetectionStore interface {
	Upsert(ctx context.Context, routeID, speciesID uint64, readCount int) error
}

// UploadStore appends audit rows, one per sample per upload.
type UploadStore interface {
	Create(ctx context.Context, up *model.SampleUpload) error
}

// Pipeline transforms an uploaded CSV into durable route and detection
// records.  Each logical sample is processed independently: a failure in
// one group never blocks the others.
type Pipeline struct {
	routes     RouteStore
	species    SpeciesStore
	detections DetectionStore
	uploads    UploadStore
}

func NewPipeline(routes RouteStore, species SpeciesStore, detections DetectionStore, uploads UploadStore) *Pipeline {
	return &Pipeline{routes: routes, species: species, detections: detections, uploads: uploads}
}

// Result is the structured per-upload report returned to the caller.
// Success is deliberately loose: the upload "succeeded" as long as it did
// not fail on every row, so operators see partial progress plus an itemized
// error list and can decide whether to fix and re-upload.
type Result struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message"`
	RoutesProcessed int      `json:"routesProcessed"`
	DetectionsAdded int      `json:"detectionsAdded"`
	Errors          []string `json:"errors"`
}

// Run executes the pipeline over a whole in-memory CSV.  filename and the
// byte size of data go into the audit trail; actor attributes newly created
// routes and audit rows (zero means unattributed).
//
// Re-running the same file is side-effect-equivalent for routes and
// detections (create-if-absent, upsert) but appends fresh audit rows each
// time: detections converge, the audit trail accumulates.
func (p *Pipeline) Run(ctx context.Context, data []byte, filename string, actor uint64) Result {
	res := Result{Errors: []string{}}

	rows, err := parseRows(data)
	if err != nil || len(rows) == 0 {
		res.Message = "No valid rows found in uploaded file"
		return res
	}

	groups := groupBySample(rows)
	for _, g := range groups {
		p.processGroup(ctx, g, data, filename, actor, &res)
	}

	res.Success = len(res.Errors) < len(rows)
	res.Message = fmt.Sprintf("Processed %d samples: %d new routes, %d detections, %d errors",
		len(groups), res.RoutesProcessed, res.DetectionsAdded, len(res.Errors))
	return res
}

// processGroup handles one logical sample.  Group-level failures (bad
// coordinates, bad date, route creation) skip the whole group; row-level
// failures (bad read count, unknown species) skip only that row.
func (p *Pipeline) processGroup(ctx context.Context, g *sampleGroup, data []byte, filename string, actor uint64, res *Result) {
	first := g.Rows[0]

	startLat, startLon, err1 := parsePoint(first.StartPoint)
	endLat, endLon, err2 := parsePoint(first.EndPoint)
	if err1 != nil || err2 != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: Invalid coordinates", g.SampleID))
		return
	}

	isoDate, err := NormalizeDate(first.CollectionDate)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: Invalid collection date", g.SampleID))
		return
	}

	route, created, err := p.resolveRoute(ctx, g.SampleID, func() *model.SamplingRoute {
		return &model.SamplingRoute{
			SampleID:       g.SampleID,
			StartName:      first.StartName,
			EndName:        first.EndName,
			StartLatitude:  startLat,
			StartLongitude: startLon,
			EndLatitude:    endLat,
			EndLongitude:   endLon,
			CollectionDate: isoDate,
			CreatedBy:      actor,
		}
	})
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: Failed to create route - %v", g.SampleID, err))
		return
	}
	if created {
		res.RoutesProcessed++
	}

	// Audit trail is best effort: losing the audit row must not lose the
	// sample's detections.
	if err := p.uploads.Create(ctx, &model.SampleUpload{
		RouteID:    route.ID,
		UploadedBy: actor,
		Filename:   filename,
		FileSize:   int64(len(data)),
		RowCount:   len(g.Rows),
	}); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: Failed to record upload - %v", g.SampleID, err))
	}

	for _, row := range g.Rows {
		p.processDetection(ctx, route.ID, row, res)
	}
}

// resolveRoute reuses the existing route for a sample ID or creates a new
// one.  Ingestion is additive: an existing route's fields are never
// overwritten.  A unique-constraint collision on create means a concurrent
// upload won the race, so the route is re-fetched instead of failing.
func (p *Pipeline) resolveRoute(ctx context.Context, sampleID string, build func() *model.SamplingRoute) (model.SamplingRoute, bool, error) {
	rt, err := p.routes.GetBySampleID(ctx, sampleID)
	if err == nil {
		return rt, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.SamplingRoute{}, false, err
	}

	fresh := build()
	err = p.routes.Create(ctx, fresh)
	if err == nil {
		return *fresh, true, nil
	}
	if errors.Is(err, repository.ErrSampleExists) {
		rt, err = p.routes.GetBySampleID(ctx, sampleID)
		if err == nil {
			return rt, false, nil
		}
	}
	return model.SamplingRoute{}, false, err
}

// processDetection validates and upserts a single detection row.  A zero
// read count is valid and stored; filtering zero-read detections, if ever
// wanted, belongs to the presentation layer.
func (p *Pipeline) processDetection(ctx context.Context, routeID uint64, row rawRow, res *Result) {
	readCount, err := strconv.Atoi(strings.TrimSpace(row.ReadCount))
	if err != nil || readCount < 0 {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: Invalid read count for %s", row.SampleID, row.Species))
		return
	}

	sp, err := p.species.GetByName(ctx, row.Species)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: Unknown species %s", row.SampleID, row.Species))
		} else {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: Failed to save detection for %s - %v", row.SampleID, row.Species, err))
		}
		return
	}

	if err := p.detections.Upsert(ctx, routeID, sp.ID, readCount); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: Failed to save detection for %s - %v", row.SampleID, row.Species, err))
		return
	}
	res.DetectionsAdded++
}
