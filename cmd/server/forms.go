package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/printquote/internal/catalog"
	"github.com/Simplici0/printquote/internal/geometry"
	"github.com/Simplici0/printquote/internal/pricing"
	"github.com/Simplici0/printquote/internal/session"
	"github.com/Simplici0/printquote/internal/submission"
)

const maxBodyBytes = 1 << 20

// errValidation marks request values that fail transport-level checks.
var errValidation = errors.New("validation failed")

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errValidation, fmt.Sprintf(format, args...))
}

// geometryRequest is the mesh analyzer report for one uploaded file.
type geometryRequest struct {
	VolumeCM3     float64          `json:"volume_cm3"`
	DimensionsCM  geometry.Vector3 `json:"dimensions_cm"`
	TriangleCount int64            `json:"triangle_count"`
}

func (g geometryRequest) snapshot() (geometry.Snapshot, error) {
	return geometry.NewSnapshot(g.VolumeCM3, g.DimensionsCM, g.TriangleCount)
}

type targetDimensionRequest struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
}

// configurationPatch carries the fields a client wants to change. Absent
// fields are left as they are.
type configurationPatch struct {
	ScaleFactor *float64          `json:"scale_factor"`
	Rotation    *geometry.Vector3 `json:"rotation_degrees"`
	Material    *string           `json:"material"`
	Color       *string           `json:"color"`
	Quality     *string           `json:"quality"`
	Infill      *int              `json:"infill_percent"`
	Unit        *string           `json:"unit"`
}

// apply resolves catalog ids and applies the patch to cfg. Material is applied
// before colour so that a patch may switch both at once.
func (p configurationPatch) apply(c *catalog.Catalog, cfg pricing.Configuration) (pricing.Configuration, error) {
	if p.Material != nil {
		m, ok := c.Material(strings.TrimSpace(*p.Material))
		if !ok {
			return cfg, validationErrorf("material %q no existe", *p.Material)
		}
		cfg.SelectMaterial(m)
	}
	if p.Color != nil && !cfg.SelectColor(*p.Color) {
		return cfg, validationErrorf("color %q no está disponible para %s", *p.Color, cfg.Material.Name)
	}
	if p.Quality != nil {
		q, ok := c.Quality(strings.TrimSpace(*p.Quality))
		if !ok {
			return cfg, validationErrorf("calidad %q no existe", *p.Quality)
		}
		cfg.SelectQuality(q)
	}
	if p.Infill != nil {
		if !c.HasInfillStep(*p.Infill) {
			return cfg, validationErrorf("relleno debe ser uno de %v", c.InfillSteps())
		}
		cfg.SetInfill(*p.Infill)
	}
	if p.Unit != nil && !cfg.SetUnit(catalog.Unit(strings.TrimSpace(*p.Unit))) {
		return cfg, validationErrorf("unidad debe ser una de %v", catalog.Units())
	}
	if p.Rotation != nil {
		cfg.SetRotation(*p.Rotation)
	}
	if p.ScaleFactor != nil {
		if err := cfg.SetScale(*p.ScaleFactor); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return validationErrorf("cuerpo de la solicitud vacío")
		}
		return validationErrorf("JSON inválido: %v", err)
	}
	return nil
}

// respond encodes v before any header is sent, so a value that cannot be
// encoded still gets a proper 500 instead of an empty 200.
func (s *server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	s.writeBody(w, r, status, data)
}

func (s *server) writeBody(w http.ResponseWriter, r *http.Request, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logger.Debug("write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps domain errors onto HTTP statuses.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, submission.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, session.ErrNoFile):
		status, code = http.StatusConflict, "no_file"
	case errors.Is(err, session.ErrSubmitted), errors.Is(err, submission.ErrDuplicate):
		status, code = http.StatusConflict, "submitted"
	case errors.Is(err, geometry.ErrDegenerateGeometry):
		status, code = http.StatusUnprocessableEntity, "degenerate_geometry"
	case errors.Is(err, pricing.ErrInvalidDimension):
		status, code = http.StatusBadRequest, "invalid_dimension"
	case errors.Is(err, geometry.ErrUnknownAxis):
		status, code = http.StatusBadRequest, "unknown_axis"
	case errors.Is(err, submission.ErrInvalidContact):
		status, code = http.StatusBadRequest, "invalid_contact"
	case errors.Is(err, errValidation):
		status, code = http.StatusBadRequest, "validation"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		msg = "internal error"
	}
	data, _ := json.Marshal(errorResponse{Error: msg, Code: code})
	s.writeBody(w, r, status, data)
}
