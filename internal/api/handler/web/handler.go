// internal/api/handler/web/handler.go
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/newthinker/hedgeai/internal/dashboard"
)

//go:embed templates/*
var templateFS embed.FS

// templateFiles are parsed together; layout.html wraps the page and the
// partials are also rendered alone as htmx fragments.
var templateFiles = []string{"layout.html", "dashboard.html", "chart.html", "analysis.html"}

// ViewResolver finds the dashboard view of the requesting browser,
// creating one when needed.
type ViewResolver interface {
	Resolve(w http.ResponseWriter, r *http.Request) (*dashboard.View, error)
}

// Handler provides web UI handlers with template rendering
type Handler struct {
	tmpl   *template.Template
	views  ViewResolver
	logger *zap.Logger
}

// NewHandler creates a web handler with templates loaded from templatesDir.
// If templatesDir is empty, it falls back to embedded templates.
func NewHandler(templatesDir string, views ViewResolver, logger *zap.Logger) (*Handler, error) {
	if templatesDir != "" {
		return NewHandlerWithFS(os.DirFS(templatesDir), views, logger)
	}
	return NewHandlerWithFS(TemplateFS(), views, logger)
}

// NewHandlerWithFS creates a web handler using a custom filesystem.
func NewHandlerWithFS(fsys fs.FS, views ViewResolver, logger *zap.Logger) (*Handler, error) {
	if views == nil {
		return nil, fmt.Errorf("view resolver required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tmpl, err := template.ParseFS(fsys, templateFiles...)
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Handler{tmpl: tmpl, views: views, logger: logger}, nil
}

// render executes the named template with the given data
func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tmpl.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("rendering template", zap.String("template", name), zap.Error(err))
		http.Error(w, "rendering failed", http.StatusInternalServerError)
	}
}

// TemplateFS returns the embedded template filesystem for external use.
func TemplateFS() fs.FS {
	subFS, err := fs.Sub(templateFS, "templates")
	if err != nil {
		// This should never happen with valid embed directive
		return templateFS
	}
	return subFS
}
