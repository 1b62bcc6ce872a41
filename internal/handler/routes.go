package handler

import (
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agrisense/pathotrack/internal/ingest"
	"github.com/agrisense/pathotrack/internal/middleware"
	"github.com/agrisense/pathotrack/internal/model"
	"github.com/agrisense/pathotrack/internal/repository"
)

// RouteHandler bundles repositories for the sampling route CRUD screens and
// the per-route detection and upload-history listings.
type RouteHandler struct {
	Routes     *repository.RouteRepo
	Detections *repository.DetectionRepo
	Uploads    *repository.UploadRepo
}

func NewRouteHandler(routes *repository.RouteRepo, detections *repository.DetectionRepo, uploads *repository.UploadRepo) *RouteHandler {
	return &RouteHandler{Routes: routes, Detections: detections, Uploads: uploads}
}

type routeReq struct {
	SampleID            string   `json:"sample_id"`
	StartName           string   `json:"start_name"`
	EndName             string   `json:"end_name"`
	StartLatitude       *float64 `json:"start_latitude"`
	StartLongitude      *float64 `json:"start_longitude"`
	EndLatitude         *float64 `json:"end_latitude"`
	EndLongitude        *float64 `json:"end_longitude"`
	CollectionDate      string   `json:"collection_date"`
	CollectionStartTime *string  `json:"collection_start_time"`
	CollectionEndTime   *string  `json:"collection_end_time"`
}

// validate converts the request into a model, checking that all four
// coordinates are present and finite and the date parses.
func (req *routeReq) validate() (*model.SamplingRoute, string) {
	req.SampleID = strings.TrimSpace(req.SampleID)
	if req.SampleID == "" {
		return nil, "sample_id is required"
	}
	coords := []*float64{req.StartLatitude, req.StartLongitude, req.EndLatitude, req.EndLongitude}
	for _, v := range coords {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil, "all four coordinates are required and must be finite"
		}
	}
	isoDate, err := ingest.NormalizeDate(req.CollectionDate)
	if err != nil {
		return nil, "collection_date must be DD/MM/YYYY or YYYY-MM-DD"
	}
	return &model.SamplingRoute{
		SampleID:            req.SampleID,
		StartName:           strings.TrimSpace(req.StartName),
		EndName:             strings.TrimSpace(req.EndName),
		StartLatitude:       *req.StartLatitude,
		StartLongitude:      *req.StartLongitude,
		EndLatitude:         *req.EndLatitude,
		EndLongitude:        *req.EndLongitude,
		CollectionDate:      isoDate,
		CollectionStartTime: req.CollectionStartTime,
		CollectionEndTime:   req.CollectionEndTime,
	}, ""
}

// List handles GET /v1/routes.
func (h *RouteHandler) List(c echo.Context) error {
	items, err := h.Routes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/routes/:id.
func (h *RouteHandler) Get(c echo.Context) error {
	id, err := routeID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	rt, err := h.Routes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, rt)
}

// Create handles POST /v1/routes (manual form or field GPS entry).
func (h *RouteHandler) Create(c echo.Context) error {
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	rt, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if ident, ok := middleware.CurrentIdentity(c); ok {
		rt.CreatedBy = ident.ID
	}
	if err := h.Routes.Create(c.Request().Context(), rt); err != nil {
		if errors.Is(err, repository.ErrSampleExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "sample_id already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create route"})
	}
	return c.JSON(http.StatusCreated, rt)
}

// Update handles PUT /v1/routes/:id.  The sample_id itself is immutable;
// only the descriptive fields change.
func (h *RouteHandler) Update(c echo.Context) error {
	id, err := routeID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	existing, err := h.Routes.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	req.SampleID = existing.SampleID // sample_id is not editable
	rt, msg := req.validate()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	rt.ID = id
	if err := h.Routes.Update(c.Request().Context(), rt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	updated, err := h.Routes.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/routes/:id (admin only); detections and audit
// rows cascade in the schema.
func (h *RouteHandler) Delete(c echo.Context) error {
	id, err := routeID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Routes.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListDetections handles GET /v1/routes/:id/detections.
func (h *RouteHandler) ListDetections(c echo.Context) error {
	id, err := routeID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.Detections.ListByRoute(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListUploads handles GET /v1/routes/:id/uploads (audit history).
func (h *RouteHandler) ListUploads(c echo.Context) error {
	id, err := routeID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	items, err := h.Uploads.ListByRoute(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func routeID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
