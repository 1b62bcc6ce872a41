package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrisense/pathotrack/internal/ingest"
	"github.com/agrisense/pathotrack/internal/model"
)

type stubRouteStore struct{ routes map[string]model.SamplingRoute }

func (s *stubRouteStore) GetBySampleID(_ context.Context, sampleID string) (model.SamplingRoute, error) {
	rt, ok := s.routes[sampleID]
	if !ok {
		return model.SamplingRoute{}, sql.ErrNoRows
	}
	return rt, nil
}

func (s *stubRouteStore) Create(_ context.Context, rt *model.SamplingRoute) error {
	rt.ID = uint64(len(s.routes) + 1)
	s.routes[rt.SampleID] = *rt
	return nil
}

type stubSpeciesStore struct{}

func (stubSpeciesStore) GetByName(_ context.Context, name string) (model.PathogenSpecies, error) {
	return model.PathogenSpecies{ID: 1, SpeciesName: name}, nil
}

type stubDetectionStore struct{ upserts int }

func (s *stubDetectionStore) Upsert(context.Context, uint64, uint64, int) error {
	s.upserts++
	return nil
}

type stubUploadStore struct{}

func (stubUploadStore) Create(context.Context, *model.SampleUpload) error { return nil }

func newStubUploadHandler() (*UploadHandler, *stubDetectionStore) {
	detections := &stubDetectionStore{}
	p := ingest.NewPipeline(
		&stubRouteStore{routes: map[string]model.SamplingRoute{}},
		stubSpeciesStore{}, detections, stubUploadStore{})
	return NewUploadHandler(p), detections
}

func postCSV(t *testing.T, h *UploadHandler, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/uploads/metabarcode", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	rec := httptest.NewRecorder()
	require.NoError(t, h.Ingest(e.NewContext(req, rec)))
	return rec
}

const uploadCSV = "sample_id,start_name,start_point,end_name,end_point,species,read_count,collection_date\n" +
	`25_01,Perth,"-31.95086, 115.86223",Bindoon,"-31.39306, 116.09878",Puccinia striiformis,1234,30/07/2025` + "\n"

func TestIngestRejectsOversizedBody(t *testing.T) {
	h, detections := newStubUploadHandler()

	// One byte over the cap must be refused outright: a truncated prefix
	// ingested as success would be silent data loss.
	body := bytes.Repeat([]byte("a"), maxUploadBytes+1)
	rec := postCSV(t, h, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, detections.upserts, "nothing may be ingested from a rejected file")
}

func TestIngestAcceptsBodyAtSizeLimit(t *testing.T) {
	h, detections := newStubUploadHandler()

	// Pad the valid CSV up to exactly the cap with a row of empty fields,
	// which the parser discards.
	pad := maxUploadBytes - len(uploadCSV) - 1
	body := []byte(uploadCSV + strings.Repeat(",", pad) + "\n")
	require.Len(t, body, maxUploadBytes)

	rec := postCSV(t, h, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, detections.upserts)
}

func TestIngestRejectsEmptyFile(t *testing.T) {
	h, _ := newStubUploadHandler()
	rec := postCSV(t, h, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
