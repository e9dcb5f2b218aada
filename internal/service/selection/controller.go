// internal/service/selection/controller.go

package selection

import (
	"fmt"
	"log/slog"

	"regiodash/internal/domain/region"
	"regiodash/internal/domain/selection"
)

// Catalog answers membership and validity questions about the loaded data
type Catalog interface {
	ExistsIn(year int, code string) bool
	ValidateYear(year int) error
	ValidateVariable(column string) error
}

// Locator resolves a map point to a region for a year
type Locator interface {
	Locate(year int, lon, lat float64) (string, bool)
}

// Controller applies user events to a selection state
type Controller struct {
	catalog Catalog
	locator Locator
	limit   int
	logger  *slog.Logger
}

// NewController creates a new interaction controller. limit bounds the number
// of selected regions.
func NewController(catalog Catalog, locator Locator, limit int, logger *slog.Logger) *Controller {
	if limit < 1 {
		limit = 1
	}
	return &Controller{
		catalog: catalog,
		locator: locator,
		limit:   limit,
		logger:  logger,
	}
}

// Cap returns the maximum size of the selected set
func (c *Controller) Cap() int {
	return c.limit
}

// Apply mutates state according to ev. Events without payload are skipped.
// Config errors leave state untouched.
func (c *Controller) Apply(state *selection.State, ev selection.Event) (selection.Outcome, error) {
	if !ev.HasPayload {
		return selection.Outcome{Skipped: true}, nil
	}

	switch ev.Kind {
	case selection.EventToggleRegion:
		return c.toggle(state, region.NormalizeCode(ev.Region)), nil

	case selection.EventToggleAt:
		id, ok := c.locator.Locate(state.Year, ev.Point.Lon, ev.Point.Lat)
		if !ok {
			c.logger.Debug("no region at point", "year", state.Year, "lon", ev.Point.Lon, "lat", ev.Point.Lat)
			return selection.Outcome{}, nil
		}
		return c.toggle(state, id), nil

	case selection.EventSetRegions, selection.EventSelectPoints:
		return c.replace(state, ev.Regions), nil

	case selection.EventSetYear:
		if err := c.catalog.ValidateYear(ev.Year); err != nil {
			return selection.Outcome{}, err
		}
		changed := state.Year != ev.Year
		state.Year = ev.Year
		return selection.Outcome{Changed: changed}, nil

	case selection.EventSetVariable:
		if err := c.catalog.ValidateVariable(ev.Variable); err != nil {
			return selection.Outcome{}, err
		}
		changed := state.Variable != ev.Variable
		state.Variable = ev.Variable
		return selection.Outcome{Changed: changed}, nil
	}

	return selection.Outcome{}, fmt.Errorf("%w: %q", selection.ErrUnknownEvent, ev.Kind)
}

func (c *Controller) toggle(state *selection.State, id string) selection.Outcome {
	if state.Remove(id) {
		return selection.Outcome{Changed: true}
	}

	if !c.catalog.ExistsIn(state.Year, id) {
		c.logger.Warn("dropping unknown region", "region", id, "year", state.Year)
		return selection.Outcome{Dropped: []string{id}}
	}

	if len(state.Selected) >= c.limit {
		c.logger.Debug("selection full", "region", id, "cap", c.limit)
		return selection.Outcome{}
	}

	state.Selected = append(state.Selected, id)
	return selection.Outcome{Changed: true}
}

// replace sets the selection to ids in order. Unknown ids are dropped before
// the cap is applied and duplicates keep their first position.
func (c *Controller) replace(state *selection.State, ids []string) selection.Outcome {
	var out selection.Outcome
	next := make([]string, 0, c.limit)
	seen := make(map[string]struct{}, len(ids))

	for _, raw := range ids {
		id := region.NormalizeCode(raw)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if !c.catalog.ExistsIn(state.Year, id) {
			out.Dropped = append(out.Dropped, id)
			continue
		}
		if len(next) < c.limit {
			next = append(next, id)
		}
	}

	if len(out.Dropped) > 0 {
		c.logger.Warn("dropping unknown regions", "regions", out.Dropped, "year", state.Year)
	}

	out.Changed = !equal(state.Selected, next)
	state.Selected = next
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
