package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrisense/pathotrack/internal/ingest"
	"github.com/agrisense/pathotrack/internal/middleware"
	"github.com/agrisense/pathotrack/internal/queue"
	queue_publisher "github.com/agrisense/pathotrack/internal/service"
)

// UploadHandler accepts metabarcode CSV uploads and runs them through the
// ingestion pipeline.
type UploadHandler struct {
	Pipeline *ingest.Pipeline
}

func NewUploadHandler(p *ingest.Pipeline) *UploadHandler {
	return &UploadHandler{Pipeline: p}
}

// maxUploadBytes caps uploads; the whole file is held in memory while it
// is processed.  Oversized files are rejected outright rather than
// truncated, since ingesting a cut-off prefix would report success for an
// incomplete dataset.
const maxUploadBytes = 32 << 20

var errUploadTooLarge = errors.New("uploaded file exceeds size limit")

// Ingest handles POST /v1/uploads/metabarcode.  The CSV arrives either as
// a multipart form file under the "file" field or as the raw request body.
// The response is the pipeline's structured report; partial failures are
// itemized, only a file with zero usable rows is rejected outright.
func (h *UploadHandler) Ingest(c echo.Context) error {
	data, filename, err := readUpload(c)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "uploaded file exceeds the 32 MB limit"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read uploaded file"})
	}

	var actor uint64
	var actorEmail string
	if ident, ok := middleware.CurrentIdentity(c); ok {
		actor = ident.ID
		actorEmail = ident.Email
	}

	res := h.Pipeline.Run(c.Request().Context(), data, filename, actor)
	if !res.Success && res.RoutesProcessed == 0 && res.DetectionsAdded == 0 && len(res.Errors) == 0 {
		// Zero parseable rows: the single top-level failure case.
		return c.JSON(http.StatusBadRequest, res)
	}

	// Fire and forget: the operator's report never waits on the broker.
	ev := queue.SampleIngestedEvent{
		UploadedBy:      actor,
		UploaderEmail:   actorEmail,
		Filename:        filename,
		FileSize:        int64(len(data)),
		RoutesProcessed: res.RoutesProcessed,
		DetectionsAdded: res.DetectionsAdded,
		Errors:          res.Errors,
		IngestedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishSampleIngested(ctx, ev)
	}()

	return c.JSON(http.StatusOK, res)
}

// readUpload extracts the CSV bytes and a filename from either a multipart
// form or the raw body.  Reading one byte past the cap distinguishes a file
// that is exactly at the limit from one that exceeds it.
func readUpload(c echo.Context) ([]byte, string, error) {
	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxUploadBytes {
			return nil, "", errUploadTooLarge
		}
		f, err := fh.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
		if err != nil {
			return nil, "", err
		}
		if len(data) > maxUploadBytes {
			return nil, "", errUploadTooLarge
		}
		return data, fh.Filename, nil
	}
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxUploadBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxUploadBytes {
		return nil, "", errUploadTooLarge
	}
	return data, "upload.csv", nil
}
