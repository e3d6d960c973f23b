package http

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"time"

	"scorecard/internal/config"
	apperrors "scorecard/internal/errors"
)

//go:embed web/theme.css
var themeCSS string

// Asset routes.
const (
	LogoRoute       = "/assets/logo.png"
	StylesheetRoute = "/assets/streamlit.css"
)

// Assets holds the optional stylesheet and logo, read once at startup. A
// missing file leaves its field empty; the page still renders.
type Assets struct {
	Stylesheet  []byte
	Logo        []byte
	LogoType    string
	LogoDisplay string
	loadedAt    time.Time
}

// LoadAssets reads the configured stylesheet and logo. Missing files are
// logged at WARN; other read errors are logged at ERROR. Neither fails.
func LoadAssets(paths *config.Paths, logoDisplay string, logger *slog.Logger) *Assets {
	logger = logger.With(slog.String("component", "assets"))
	a := &Assets{LogoDisplay: logoDisplay, loadedAt: time.Now()}

	a.Stylesheet = readAsset(paths.Stylesheet, "stylesheet", logger)
	a.Logo = readAsset(paths.Logo, "logo", logger)
	if len(a.Logo) > 0 {
		a.LogoType = http.DetectContentType(a.Logo)
	}
	return a
}

func readAsset(path, kind string, logger *slog.Logger) []byte {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		logger.Debug("asset loaded", slog.String("asset", kind), slog.String("path", path), slog.Int("bytes", len(data)))
		return data
	case errors.Is(err, os.ErrNotExist):
		logger.Warn("asset not found, continuing without it",
			slog.String("asset", kind),
			slog.String("path", path))
	default:
		logger.Error("asset unreadable, continuing without it",
			slog.String("asset", kind),
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
	return nil
}

// HasLogo reports whether a logo was loaded.
func (a *Assets) HasLogo() bool { return len(a.Logo) > 0 }

// HasStylesheet reports whether a custom stylesheet was loaded.
func (a *Assets) HasStylesheet() bool { return len(a.Stylesheet) > 0 }

// LogoMissingMessage is shown in the sidebar in place of the logo.
func (a *Assets) LogoMissingMessage() string {
	return fmt.Sprintf("Arquivo de logo '%s' não encontrado.", a.LogoDisplay)
}

// ThemeCSS is the built-in theme, always applied before the custom
// stylesheet.
func ThemeCSS() template.CSS {
	return template.CSS(themeCSS)
}

// AssetHandler serves the startup-loaded assets.
type AssetHandler struct {
	assets       *Assets
	errorHandler *apperrors.ErrorHandler
}

// NewAssetHandler creates the handler.
func NewAssetHandler(assets *Assets, errorHandler *apperrors.ErrorHandler) *AssetHandler {
	return &AssetHandler{assets: assets, errorHandler: errorHandler}
}

// Logo handles GET /assets/logo.png
func (h *AssetHandler) Logo(w http.ResponseWriter, r *http.Request) {
	if !h.assets.HasLogo() {
		h.errorHandler.HandleError(w, r, apperrors.NotFoundError("logo"))
		return
	}
	w.Header().Set("Content-Type", h.assets.LogoType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, "logo.png", h.assets.loadedAt, bytes.NewReader(h.assets.Logo))
}

// Stylesheet handles GET /assets/streamlit.css
func (h *AssetHandler) Stylesheet(w http.ResponseWriter, r *http.Request) {
	if !h.assets.HasStylesheet() {
		h.errorHandler.HandleError(w, r, apperrors.NotFoundError("stylesheet"))
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, "streamlit.css", h.assets.loadedAt, bytes.NewReader(h.assets.Stylesheet))
}
