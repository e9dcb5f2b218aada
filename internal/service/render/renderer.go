// internal/service/render/renderer.go

package render

import (
	"errors"
	"log/slog"

	"regiodash/internal/domain/region"
	"regiodash/internal/service/boundary"
)

// ErrNothingToPlot is returned when no selected region has data
var ErrNothingToPlot = errors.New("nothing to plot")

// Catalog is the read side of the region catalog used for rendering
type Catalog interface {
	Lookup(code string) (*region.Region, bool)
	Variable(column string) (region.Variable, error)
	Regions(year int) []string
}

// Boundaries returns the boundary index of a year
type Boundaries interface {
	Index(year int) (*boundary.Index, error)
}

// Renderer turns a selection state into figures. It holds no state of its
// own and is safe for concurrent use.
type Renderer struct {
	catalog    Catalog
	boundaries Boundaries
	logger     *slog.Logger
}

// NewRenderer creates a new view renderer
func NewRenderer(catalog Catalog, boundaries Boundaries, logger *slog.Logger) *Renderer {
	return &Renderer{
		catalog:    catalog,
		boundaries: boundaries,
		logger:     logger,
	}
}
