package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/pathotrack/internal/model"
	"github.com/agrisense/pathotrack/internal/repository"
)

// memStore backs all four pipeline store interfaces in memory, mirroring
// repository semantics: misses return sql.ErrNoRows, duplicate sample IDs
// return ErrSampleExists.
type memStore struct {
	routes    map[string]model.SamplingRoute
	nextRoute uint64

	species map[string]model.PathogenSpecies

	detections map[[2]uint64]int
	upserts    int

	uploads []model.SampleUpload

	createErr error // injected failure for Create
	raceOn    string // sample ID that "loses" its create to a concurrent writer
	uploadErr error
}

func newMemStore(speciesNames ...string) *memStore {
	s := &memStore{
		routes:     map[string]model.SamplingRoute{},
		species:    map[string]model.PathogenSpecies{},
		detections: map[[2]uint64]int{},
	}
	for i, name := range speciesNames {
		s.species[name] = model.PathogenSpecies{ID: uint64(i + 1), SpeciesName: name}
	}
	return s
}

func (s *memStore) GetBySampleID(_ context.Context, sampleID string) (model.SamplingRoute, error) {
	rt, ok := s.routes[sampleID]
	if !ok {
		return model.SamplingRoute{}, sql.ErrNoRows
	}
	return rt, nil
}

func (s *memStore) Create(_ context.Context, rt *model.SamplingRoute) error {
	if s.createErr != nil {
		return s.createErr
	}
	if rt.SampleID == s.raceOn {
		// Another upload inserted this sample between the miss and the
		// create; the pipeline should re-fetch instead of failing.
		s.nextRoute++
		raced := *rt
		raced.ID = s.nextRoute
		s.routes[rt.SampleID] = raced
		return repository.ErrSampleExists
	}
	if _, ok := s.routes[rt.SampleID]; ok {
		return repository.ErrSampleExists
	}
	s.nextRoute++
	rt.ID = s.nextRoute
	s.routes[rt.SampleID] = *rt
	return nil
}

func (s *memStore) GetByName(_ context.Context, name string) (model.PathogenSpecies, error) {
	sp, ok := s.species[name]
	if !ok {
		return model.PathogenSpecies{}, sql.ErrNoRows
	}
	return sp, nil
}

func (s *memStore) Upsert(_ context.Context, routeID, speciesID uint64, readCount int) error {
	s.detections[[2]uint64{routeID, speciesID}] = readCount
	s.upserts++
	return nil
}

// UploadStore and RouteStore both declare Create; the method set cannot hold
// both on one type, so uploads get a thin adapter.
type uploadSink struct{ s *memStore }

func (u uploadSink) Create(_ context.Context, up *model.SampleUpload) error {
	if u.s.uploadErr != nil {
		return u.s.uploadErr
	}
	u.s.uploads = append(u.s.uploads, *up)
	return nil
}

func newTestPipeline(s *memStore) *Pipeline {
	return NewPipeline(s, s, s, uploadSink{s})
}

const csvHeader = "sample_id,start_name,start_point,end_name,end_point,species,read_count,collection_date\n"

const perthRow = `25_01,Perth,"-31.95086, 115.86223",Bindoon,"-31.39306, 116.09878",Puccinia striiformis,1234,30/07/2025` + "\n"

func TestRunCreatesRouteAndDetection(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	p := newTestPipeline(store)

	res := p.Run(context.Background(), []byte(csvHeader+perthRow), "survey.csv", 7)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.RoutesProcessed)
	assert.Equal(t, 1, res.DetectionsAdded)
	assert.Empty(t, res.Errors)

	rt, ok := store.routes["25_01"]
	require.True(t, ok)
	assert.Equal(t, "Perth", rt.StartName)
	assert.Equal(t, "Bindoon", rt.EndName)
	assert.Equal(t, -31.95086, rt.StartLatitude)
	assert.Equal(t, 115.86223, rt.StartLongitude)
	assert.Equal(t, -31.39306, rt.EndLatitude)
	assert.Equal(t, 116.09878, rt.EndLongitude)
	assert.Equal(t, "2025-07-30", rt.CollectionDate)
	assert.Equal(t, uint64(7), rt.CreatedBy)

	assert.Equal(t, 1234, store.detections[[2]uint64{rt.ID, 1}])

	require.Len(t, store.uploads, 1)
	assert.Equal(t, "survey.csv", store.uploads[0].Filename)
	assert.Equal(t, rt.ID, store.uploads[0].RouteID)
	assert.Equal(t, 1, store.uploads[0].RowCount)
}

func TestRunIsIdempotentForRoutesAndDetections(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	p := newTestPipeline(store)
	data := []byte(csvHeader + perthRow)

	first := p.Run(context.Background(), data, "survey.csv", 0)
	second := p.Run(context.Background(), data, "survey.csv", 0)

	assert.Equal(t, 1, first.RoutesProcessed)
	assert.Equal(t, 0, second.RoutesProcessed, "existing route is reused, not recreated")
	assert.Equal(t, 1, second.DetectionsAdded)
	assert.True(t, second.Success)

	assert.Len(t, store.routes, 1)
	assert.Len(t, store.detections, 1, "re-upload converges to the same detection row")
	assert.Len(t, store.uploads, 2, "audit rows accumulate per run")
}

func TestRunIsolatesGroupFailures(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	p := newTestPipeline(store)

	data := []byte(csvHeader +
		`bad_01,Perth,not a point,Bindoon,"-31.39306, 116.09878",Puccinia striiformis,10,30/07/2025` + "\n" +
		perthRow)

	res := p.Run(context.Background(), data, "survey.csv", 0)

	assert.True(t, res.Success, "one good row keeps the upload successful")
	assert.Equal(t, 1, res.RoutesProcessed)
	assert.Equal(t, 1, res.DetectionsAdded)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "bad_01: Invalid coordinates", res.Errors[0])

	_, badCreated := store.routes["bad_01"]
	assert.False(t, badCreated)
	_, goodCreated := store.routes["25_01"]
	assert.True(t, goodCreated)
}

func TestRunReportsInvalidCollectionDate(t *testing.T) {
	p := newTestPipeline(newMemStore("Puccinia striiformis"))

	data := []byte(csvHeader +
		`25_02,Perth,"-31.9, 115.8",Bindoon,"-31.3, 116.0",Puccinia striiformis,10,07/30/2025` + "\n")

	res := p.Run(context.Background(), data, "survey.csv", 0)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "25_02: Invalid collection date", res.Errors[0])
	assert.Equal(t, 0, res.RoutesProcessed)
}

func TestRunReportsRouteCreateFailure(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	store.createErr = fmt.Errorf("connection reset")
	p := newTestPipeline(store)

	res := p.Run(context.Background(), []byte(csvHeader+perthRow), "survey.csv", 0)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "25_01: Failed to create route - connection reset", res.Errors[0])
	assert.Equal(t, 0, res.DetectionsAdded, "detections are skipped when the route is unresolved")
}

func TestRunRowLevelFailures(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	p := newTestPipeline(store)

	// One sample, four detection rows: valid, unknown species, garbage
	// count, negative count.  Route fields come from the first row.
	data := []byte(csvHeader +
		perthRow +
		`25_01,Perth,"-31.95086, 115.86223",Bindoon,"-31.39306, 116.09878",Zymoseptoria mysteriosa,50,30/07/2025` + "\n" +
		`25_01,Perth,"-31.95086, 115.86223",Bindoon,"-31.39306, 116.09878",Puccinia striiformis,lots,30/07/2025` + "\n" +
		`25_01,Perth,"-31.95086, 115.86223",Bindoon,"-31.39306, 116.09878",Puccinia striiformis,-3,30/07/2025` + "\n")

	res := p.Run(context.Background(), data, "survey.csv", 0)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.RoutesProcessed)
	assert.Equal(t, 1, res.DetectionsAdded)
	assert.ElementsMatch(t, []string{
		"25_01: Unknown species Zymoseptoria mysteriosa",
		"25_01: Invalid read count for Puccinia striiformis",
		"25_01: Invalid read count for Puccinia striiformis",
	}, res.Errors)
}

func TestRunStoresZeroReadCount(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	p := newTestPipeline(store)

	data := []byte(csvHeader + strings.Replace(perthRow, ",1234,", ",0,", 1))
	res := p.Run(context.Background(), data, "survey.csv", 0)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.DetectionsAdded)
	rt := store.routes["25_01"]
	count, ok := store.detections[[2]uint64{rt.ID, 1}]
	require.True(t, ok, "zero-read detection is still persisted")
	assert.Equal(t, 0, count)
}

func TestRunDuplicateSpeciesLastWriteWins(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	p := newTestPipeline(store)

	data := []byte(csvHeader +
		perthRow +
		strings.Replace(perthRow, ",1234,", ",99,", 1))

	res := p.Run(context.Background(), data, "survey.csv", 0)

	assert.Equal(t, 2, res.DetectionsAdded, "each row upserts; the report counts both")
	assert.Equal(t, 2, store.upserts)
	rt := store.routes["25_01"]
	assert.Equal(t, 99, store.detections[[2]uint64{rt.ID, 1}])
}

func TestRunEmptyFile(t *testing.T) {
	p := newTestPipeline(newMemStore())

	for _, data := range [][]byte{
		nil,
		[]byte(""),
		[]byte(csvHeader),
		[]byte("not,a,recognized,header\n1,2,3,4\n"),
	} {
		res := p.Run(context.Background(), data, "survey.csv", 0)
		assert.False(t, res.Success)
		assert.Equal(t, "No valid rows found in uploaded file", res.Message)
		assert.Empty(t, res.Errors)
		assert.Equal(t, 0, res.RoutesProcessed)
		assert.Equal(t, 0, res.DetectionsAdded)
	}
}

func TestRunRecoversFromConcurrentRouteCreate(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	store.raceOn = "25_01"
	p := newTestPipeline(store)

	res := p.Run(context.Background(), []byte(csvHeader+perthRow), "survey.csv", 0)

	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 0, res.RoutesProcessed, "the concurrent writer's route is reused")
	assert.Equal(t, 1, res.DetectionsAdded)

	rt := store.routes["25_01"]
	assert.Equal(t, 1234, store.detections[[2]uint64{rt.ID, 1}], "detection lands on the winner's route")
}

func TestRunUploadAuditFailureIsNonFatal(t *testing.T) {
	store := newMemStore("Puccinia striiformis")
	store.uploadErr = fmt.Errorf("disk full")
	p := newTestPipeline(store)

	res := p.Run(context.Background(), []byte(csvHeader+perthRow), "survey.csv", 0)

	assert.Equal(t, 1, res.DetectionsAdded, "losing the audit row must not lose the detections")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "25_01: Failed to record upload - disk full", res.Errors[0])
}
