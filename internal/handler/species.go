package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agrisense/pathotrack/internal/model"
	"github.com/agrisense/pathotrack/internal/repository"
)

// SpeciesHandler exposes the pathogen species reference list.  Reads are
// open to every authenticated role; writes are admin-only because the
// ingestion pipeline matches uploads against this table.
type SpeciesHandler struct {
	Species *repository.SpeciesRepo
}

func NewSpeciesHandler(species *repository.SpeciesRepo) *SpeciesHandler {
	return &SpeciesHandler{Species: species}
}

type speciesReq struct {
	SpeciesName string `json:"species_name"`
	CommonName  string `json:"common_name"`
	DiseaseType string `json:"disease_type"`
}

// List handles GET /v1/species.
func (h *SpeciesHandler) List(c echo.Context) error {
	items, err := h.Species.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /v1/species.
func (h *SpeciesHandler) Create(c echo.Context) error {
	var req speciesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(req.SpeciesName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "species_name is required"})
	}
	sp := &model.PathogenSpecies{SpeciesName: name, CommonName: req.CommonName, DiseaseType: req.DiseaseType}
	if err := h.Species.Create(c.Request().Context(), sp); err != nil {
		if errors.Is(err, repository.ErrSpeciesExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "species name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create species"})
	}
	return c.JSON(http.StatusCreated, sp)
}

// Update handles PUT /v1/species/:id.
func (h *SpeciesHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req speciesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(req.SpeciesName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "species_name is required"})
	}
	sp := &model.PathogenSpecies{ID: id, SpeciesName: name, CommonName: req.CommonName, DiseaseType: req.DiseaseType}
	if err := h.Species.Update(c.Request().Context(), sp); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "species not found"})
		case errors.Is(err, repository.ErrSpeciesExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "species name already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, sp)
}

// Delete handles DELETE /v1/species/:id.  A species still referenced by
// detections cannot be removed; the FK violation surfaces as a conflict.
func (h *SpeciesHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Species.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "species not found"})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "species is referenced by detections"})
	}
	return c.NoContent(http.StatusNoContent)
}
