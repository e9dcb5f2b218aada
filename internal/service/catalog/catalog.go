// internal/service/catalog/catalog.go

package catalog

import (
	"sort"
	"strings"

	"regiodash/internal/domain/region"
)

// Option is one entry of the region dropdown
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalog is the read-only set of regions and their observations. It is
// built once at startup and shared by every session.
type Catalog struct {
	regions   map[string]*region.Region
	years     []int
	present   map[int]map[string]struct{}
	variables []region.Variable
	byColumn  map[string]region.Variable
}

// New builds a catalog from source rows. Rows without a code are ignored.
// Variable values that are nil are left out of the observations.
func New(rows []region.Row, variables []region.Variable) *Catalog {
	c := &Catalog{
		regions:   make(map[string]*region.Region),
		present:   make(map[int]map[string]struct{}),
		variables: variables,
		byColumn:  make(map[string]region.Variable, len(variables)),
	}
	for _, v := range variables {
		c.byColumn[v.Column] = v
	}

	nameYear := make(map[string]int)
	for _, row := range rows {
		code := region.NormalizeCode(row.Code)
		if code == "" {
			continue
		}

		r, ok := c.regions[code]
		if !ok {
			r = &region.Region{
				Code:         code,
				Observations: make(map[int]map[string]float64),
			}
			c.regions[code] = r
		}
		// the most recent name wins, municipalities get renamed
		if name := strings.TrimSpace(row.Name); name != "" && (r.Name == "" || row.Year >= nameYear[code]) {
			r.Name = name
			nameYear[code] = row.Year
		}

		obs, ok := r.Observations[row.Year]
		if !ok {
			obs = make(map[string]float64)
			r.Observations[row.Year] = obs
		}
		for col, v := range row.Values {
			if v != nil {
				obs[col] = *v
			}
		}

		codes, ok := c.present[row.Year]
		if !ok {
			codes = make(map[string]struct{})
			c.present[row.Year] = codes
		}
		codes[code] = struct{}{}
	}

	for year := range c.present {
		c.years = append(c.years, year)
	}
	sort.Ints(c.years)

	return c
}

// Len returns the number of regions
func (c *Catalog) Len() int {
	return len(c.regions)
}

// Lookup returns a region by code
func (c *Catalog) Lookup(code string) (*region.Region, bool) {
	r, ok := c.regions[region.NormalizeCode(code)]
	return r, ok
}

// ExistsIn reports whether the region has a row for year
func (c *Catalog) ExistsIn(year int, code string) bool {
	_, ok := c.present[year][region.NormalizeCode(code)]
	return ok
}

// Years returns the loaded years, ascending
func (c *Catalog) Years() []int {
	return append([]int(nil), c.years...)
}

// DefaultYear returns the year a new session starts with: the one before
// the most recent, since the latest CBS year is usually incomplete.
func (c *Catalog) DefaultYear() int {
	switch len(c.years) {
	case 0:
		return 0
	case 1:
		return c.years[0]
	default:
		return c.years[len(c.years)-2]
	}
}

// Variables returns the selectable variables in configured order
func (c *Catalog) Variables() []region.Variable {
	return append([]region.Variable(nil), c.variables...)
}

// Variable returns the description of a column
func (c *Catalog) Variable(column string) (region.Variable, error) {
	v, ok := c.byColumn[column]
	if !ok {
		return region.Variable{}, region.UnknownVariable(column)
	}
	return v, nil
}

// ValidateVariable checks column against the enumerated variables
func (c *Catalog) ValidateVariable(column string) error {
	_, err := c.Variable(column)
	return err
}

// ValidateYear checks year against the loaded years
func (c *Catalog) ValidateYear(year int) error {
	if _, ok := c.present[year]; !ok {
		return region.UnknownYear(year)
	}
	return nil
}

// Options returns the region dropdown for a year, sorted by name
func (c *Catalog) Options(year int) []Option {
	codes := c.present[year]
	opts := make([]Option, 0, len(codes))
	for code := range codes {
		opts = append(opts, Option{Value: code, Label: c.regions[code].Name})
	}
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].Label == opts[j].Label {
			return opts[i].Value < opts[j].Value
		}
		return opts[i].Label < opts[j].Label
	})
	return opts
}

// Regions returns the codes present in year in ascending order
func (c *Catalog) Regions(year int) []string {
	codes := make([]string, 0, len(c.present[year]))
	for code := range c.present[year] {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
