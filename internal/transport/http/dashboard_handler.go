package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"scorecard/internal/charts"
	apperrors "scorecard/internal/errors"
	"scorecard/internal/scorecard"
	"scorecard/internal/services"
	"scorecard/internal/validation"
)

//go:embed web/dashboard.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "web/dashboard.html"))

// TableColumns heads the requirement table.
var TableColumns = []string{
	scorecard.ColumnTheme,
	scorecard.ColumnLabel,
	scorecard.ColumnPresent,
	scorecard.ColumnAbsent,
}

type themeOption struct {
	Name     string
	Selected bool
}

type statusOption struct {
	Value   scorecard.StatusFilter
	Label   string
	Checked bool
}

// pageData feeds both the dashboard and the error template.
type pageData struct {
	ThemeCSS         template.CSS
	CustomStylesheet bool
	StylesheetURL    string
	LiveRefresh      bool

	Error string

	HasLogo     bool
	LogoURL     string
	LogoMissing string

	Bundle        *scorecard.Bundle
	ThemeOptions  []themeOption
	StatusOptions []statusOption
	Columns       []string
	Requirements  []scorecard.Requirement
	Warnings      []scorecard.Warning

	BarChart   template.HTML
	DonutChart template.HTML
	GaugeChart template.HTML
}

// DashboardHandler renders the HTML dashboard.
type DashboardHandler struct {
	service     ScorecardServiceInterface
	assets      *Assets
	validator   *validation.QueryValidator
	liveRefresh bool
	logger      *slog.Logger
}

// NewDashboardHandler creates the handler. liveRefresh adds the websocket
// reload script to the page.
func NewDashboardHandler(service ScorecardServiceInterface, assets *Assets, liveRefresh bool, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:     service,
		assets:      assets,
		validator:   validation.NewQueryValidator(),
		liveRefresh: liveRefresh,
		logger:      logger.With(slog.String("component", "dashboard_handler")),
	}
}

// ServeHTTP handles GET /. A load failure replaces the whole page with a
// single error message.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := ParseFilterQuery(r, h.validator)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, fmt.Sprintf(services.MsgUnexpected, filterMessage(err)))
		return
	}

	view, err := h.service.View(ctx, f)
	if err != nil {
		message := services.LoadFailureMessage(h.service.InputPath(), err)
		if errors.Is(err, scorecard.ErrInputNotFound) {
			h.logger.WarnContext(ctx, "scorecard input not found", slog.String("path", h.service.InputPath()))
			h.renderError(w, r, http.StatusNotFound, message)
			return
		}
		h.logger.ErrorContext(ctx, "scorecard load failed", slog.String("error", err.Error()))
		h.renderError(w, r, http.StatusInternalServerError, message)
		return
	}

	data := h.basePage()
	data.HasLogo = h.assets.HasLogo()
	data.LogoURL = LogoRoute
	data.LogoMissing = h.assets.LogoMissingMessage()
	data.Bundle = view.Bundle
	data.ThemeOptions = themeOptions(view)
	data.StatusOptions = statusOptions(view.Filter.Status)
	data.Columns = TableColumns
	data.Requirements = view.Requirements
	data.Warnings = view.Bundle.Warnings
	data.BarChart = charts.HorizontalBar(charts.ThemeBars(view.Bundle.ThemeTotals))
	data.DonutChart = charts.Donut(view.Donut)
	data.GaugeChart = charts.Gauge(float64(view.Bundle.FinalScore), view.GaugeMax, view.GaugeSteps)

	h.render(w, r, http.StatusOK, "dashboard", data)
}

func (h *DashboardHandler) basePage() pageData {
	return pageData{
		ThemeCSS:         ThemeCSS(),
		CustomStylesheet: h.assets.HasStylesheet(),
		StylesheetURL:    StylesheetRoute,
		LiveRefresh:      h.liveRefresh,
	}
}

func (h *DashboardHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := h.basePage()
	data.Error = message
	h.render(w, r, status, "error", data)
}

// render executes into a buffer first so a template failure never leaves a
// half-written page.
func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.ErrorContext(r.Context(), "template execution failed",
			slog.String("template", name),
			slog.String("error", err.Error()))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// themeOptions lists every theme; with no theme filter all are selected.
func themeOptions(view *scorecard.View) []themeOption {
	opts := make([]themeOption, 0, len(view.ThemeOptions))
	for _, name := range view.ThemeOptions {
		opts = append(opts, themeOption{Name: name, Selected: view.Filter.Selected(name)})
	}
	return opts
}

func statusOptions(current scorecard.StatusFilter) []statusOption {
	statuses := scorecard.Statuses()
	opts := make([]statusOption, 0, len(statuses))
	for _, s := range statuses {
		opts = append(opts, statusOption{Value: s, Label: s.Label(), Checked: s == current})
	}
	return opts
}

func filterMessage(err error) string {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		if details, ok := apiErr.Details.(apperrors.ValidationErrors); ok && len(details.Errors) > 0 {
			return details.Errors[0].Message
		}
	}
	return err.Error()
}
