// internal/service/boundary/index.go

package boundary

import (
	"fmt"
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"regiodash/internal/domain/boundary"
	"regiodash/internal/domain/region"
)

// Index maps region identifiers to the features of one boundary collection
type Index struct {
	collection *boundary.Collection
	byID       map[string]*boundary.Feature
}

// NewIndex builds the lookup for a collection. When two features share an
// identifier the later one wins.
func NewIndex(c *boundary.Collection) *Index {
	ix := &Index{
		collection: c,
		byID:       make(map[string]*boundary.Feature, len(c.Features)),
	}
	for _, f := range c.Features {
		if f.ID == "" {
			continue
		}
		ix.byID[f.ID] = f
	}
	return ix
}

// Collection returns the full boundary collection
func (ix *Index) Collection() *boundary.Collection {
	return ix.collection
}

// Len returns the number of indexed regions
func (ix *Index) Len() int {
	return len(ix.byID)
}

// Lookup returns the feature of a region
func (ix *Index) Lookup(id string) (*boundary.Feature, bool) {
	f, ok := ix.byID[region.NormalizeCode(id)]
	return f, ok
}

// Highlight returns the subset of the collection for ids
func (ix *Index) Highlight(ids []string) *boundary.Collection {
	return Highlight(ix.collection, ids)
}

// Locate returns the region whose polygon contains the point
func (ix *Index) Locate(lon, lat float64) (string, bool) {
	c := geom.Coord{lon, lat}
	for _, f := range ix.collection.Features {
		if f.ID == "" || f.Geometry == nil {
			continue
		}
		if !inBounds(f.Geometry.Bounds(), lon, lat) {
			continue
		}
		if containsPoint(f.Geometry, c) {
			return f.ID, true
		}
	}
	return "", false
}

// Highlight keeps the features of c whose identifier is in ids. All other
// top-level members of c are carried over unchanged. Feature order follows c.
func Highlight(c *boundary.Collection, ids []string) *boundary.Collection {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[region.NormalizeCode(id)] = struct{}{}
	}

	features := make([]*boundary.Feature, 0, len(want))
	for _, f := range c.Features {
		if _, ok := want[f.ID]; ok {
			features = append(features, f)
		}
	}

	return c.WithFeatures(features)
}

func inBounds(b *geom.Bounds, lon, lat float64) bool {
	if b == nil || b.IsEmpty() {
		return false
	}
	return lon >= b.Min(0) && lon <= b.Max(0) && lat >= b.Min(1) && lat <= b.Max(1)
}

func containsPoint(g geom.T, c geom.Coord) bool {
	switch g := g.(type) {
	case *geom.Polygon:
		return polygonContains(g, c)
	case *geom.MultiPolygon:
		for i := 0; i < g.NumPolygons(); i++ {
			if polygonContains(g.Polygon(i), c) {
				return true
			}
		}
	}
	return false
}

// polygonContains tests the outer ring and excludes holes
func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), c, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), c, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

// Set holds the boundary indexes of every loaded year
type Set struct {
	indexes map[int]*Index
	missing map[int]struct{}
}

// NewSet indexes the collections per year. Years listed in missing had no
// boundary file.
func NewSet(collections map[int]*boundary.Collection, missing []int) *Set {
	s := &Set{
		indexes: make(map[int]*Index, len(collections)),
		missing: make(map[int]struct{}, len(missing)),
	}
	for year, c := range collections {
		s.indexes[year] = NewIndex(c)
	}
	for _, year := range missing {
		s.missing[year] = struct{}{}
	}
	return s
}

// Index returns the boundary index of a year
func (s *Set) Index(year int) (*Index, error) {
	ix, ok := s.indexes[year]
	if !ok {
		return nil, fmt.Errorf("%w: year %d", boundary.ErrBoundaryUnavailable, year)
	}
	return ix, nil
}

// Years returns the years with boundaries, ascending
func (s *Set) Years() []int {
	years := make([]int, 0, len(s.indexes))
	for year := range s.indexes {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Missing returns the years without a boundary file, ascending
func (s *Set) Missing() []int {
	years := make([]int, 0, len(s.missing))
	for year := range s.missing {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Locate resolves a map point to a region using the boundaries of year
func (s *Set) Locate(year int, lon, lat float64) (string, bool) {
	ix, ok := s.indexes[year]
	if !ok {
		return "", false
	}
	return ix.Locate(lon, lat)
}
