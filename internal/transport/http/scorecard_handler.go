package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "scorecard/internal/errors"
	"scorecard/internal/exporter"
	"scorecard/internal/scorecard"
	"scorecard/internal/services"
	"scorecard/internal/validation"
)

// ScorecardHandler serves the scorecard JSON API and exports.
type ScorecardHandler struct {
	service      ScorecardServiceInterface
	validator    *validation.QueryValidator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewScorecardHandler creates a new scorecard handler
func NewScorecardHandler(service ScorecardServiceInterface, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *ScorecardHandler {
	return &ScorecardHandler{
		service:      service,
		validator:    validation.NewQueryValidator(),
		logger:       logger.With(slog.String("component", "scorecard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes mounts under /api/scorecard.
func (h *ScorecardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.GetBundle)
		r.Get("/requirements", h.GetRequirements)
		r.Get("/themes", h.GetThemes)
		r.Get("/warnings", h.GetWarnings)
		r.Get("/cache", h.GetCacheStats)
		r.Post("/reload", h.Reload)
	})

	r.Get("/export.{format}", h.Export)
	return r
}

// GetBundle handles GET /api/scorecard
func (h *ScorecardHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Bundle(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.loadError(err))
		return
	}
	render.JSON(w, r, success(b))
}

// GetRequirements handles GET /api/scorecard/requirements?theme=&status=
func (h *ScorecardHandler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, success(map[string]interface{}{
		"filter":       view.Filter,
		"requirements": view.Requirements,
		"count":        len(view.Requirements),
	}))
}

// GetThemes handles GET /api/scorecard/themes
func (h *ScorecardHandler) GetThemes(w http.ResponseWriter, r *http.Request) {
	view, ok := h.view(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, success(map[string]interface{}{
		"theme_totals": view.Bundle.ThemeTotals,
		"breakdown":    view.Breakdown,
		"summary":      view.Summary,
		"options":      view.ThemeOptions,
	}))
}

// GetWarnings handles GET /api/scorecard/warnings
func (h *ScorecardHandler) GetWarnings(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Bundle(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, h.loadError(err))
		return
	}
	render.JSON(w, r, success(map[string]interface{}{
		"warnings": b.Warnings,
		"count":    len(b.Warnings),
	}))
}

// GetCacheStats handles GET /api/scorecard/cache
func (h *ScorecardHandler) GetCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := h.service.CacheStats()
	if !ok {
		render.JSON(w, r, success(map[string]interface{}{"enabled": false}))
		return
	}
	render.JSON(w, r, success(map[string]interface{}{
		"enabled": true,
		"stats":   stats,
	}))
}

// Reload handles POST /api/scorecard/reload
func (h *ScorecardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	n := h.service.Invalidate(r.Context(), "manual")
	render.JSON(w, r, success(map[string]interface{}{"invalidated": n}))
}

// Export handles GET /api/scorecard/export.{csv,xlsx}. The file is built in
// memory so a failure can still be reported as a problem response.
func (h *ScorecardHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apperrors.NotFoundError("export format "+chi.URLParam(r, "format")))
		return
	}

	view, ok := h.view(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := exporter.Export(&buf, format, view); err != nil {
		h.logger.ErrorContext(r.Context(), "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apperrors.ExportError(string(format), err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)

	h.logger.InfoContext(r.Context(), "export served",
		slog.String("format", string(format)),
		slog.Int("rows", len(view.Requirements)))
}

// view parses the filter and builds the view, writing the error response
// itself when either step fails.
func (h *ScorecardHandler) view(w http.ResponseWriter, r *http.Request) (*scorecard.View, bool) {
	f, err := ParseFilterQuery(r, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	view, err := h.service.View(r.Context(), f)
	if err != nil {
		h.errorHandler.HandleError(w, r, h.loadError(err))
		return nil, false
	}
	return view, true
}

// loadError maps a load failure to its API error.
func (h *ScorecardHandler) loadError(err error) error {
	if errors.Is(err, scorecard.ErrInputNotFound) {
		return apperrors.InputNotFoundError(filepath.Base(h.service.InputPath()))
	}
	return apperrors.LoadFailedError(err)
}

// ParseFilterQuery reads the repeatable theme parameter and status from the
// query string.
func ParseFilterQuery(r *http.Request, v *validation.QueryValidator) (scorecard.Filter, error) {
	q := validation.FilterQuery{
		Themes: r.URL.Query()["theme"],
		Status: r.URL.Query().Get("status"),
	}
	if err := v.Validate(q); err != nil {
		return scorecard.Filter{}, err
	}
	return services.ParseFilter(q.Themes, q.Status)
}

func success(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"status": "success",
		"data":   data,
	}
}
