// internal/server/handlers/page.go

package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"regiodash/internal/domain/region"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Side panels on the dashboard, each with its own variable
const sidePanels = 3

// PageHandler serves the dashboard page
type PageHandler struct {
	title     string
	variables []region.Variable
	logger    *slog.Logger
}

// NewPageHandler creates a new page handler
func NewPageHandler(title string, variables []region.Variable, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		title:     title,
		variables: variables,
		logger:    logger,
	}
}

type pageData struct {
	Title     string
	Variables []region.Variable
	Panels    []int
}

// Index renders the dashboard
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	panels := make([]int, sidePanels)
	for i := range panels {
		panels[i] = i + 1
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:     h.title,
		Variables: h.variables,
		Panels:    panels,
	})
	if err != nil {
		h.logger.Error("failed to render page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
