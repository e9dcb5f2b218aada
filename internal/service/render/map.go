// internal/service/render/map.go

package render

import (
	"fmt"

	"regiodash/internal/domain/boundary"
	"regiodash/internal/domain/region"
	"regiodash/internal/domain/selection"
	"regiodash/internal/domain/view"
)

// Map renders the choropleth of the active year and variable with the
// selected regions highlighted on top.
func (r *Renderer) Map(state selection.State) (view.MapView, error) {
	variable, err := r.catalog.Variable(state.Variable)
	if err != nil {
		return view.MapView{}, err
	}

	ix, err := r.boundaries.Index(state.Year)
	if err != nil {
		return view.MapView{}, fmt.Errorf("error rendering map: %w", err)
	}

	f := newFormatter()
	codes := r.catalog.Regions(state.Year)
	base := r.layer("regions", ix.Collection(), codes, state.Year, variable, f)
	zmin, zmax := zRange(base.Z)
	base.ZMin, base.ZMax = zmin, zmax
	base.ShowScale = true
	base.ColorBar.Title.Text = variable.Title
	base.Marker = view.Marker{
		Opacity: view.BaseOpacity,
		Line:    view.Line{Width: view.BaseLineWidth, Color: view.BaseLineColor},
	}

	mv := view.MapView{
		Year:        state.Year,
		Variable:    variable.Column,
		Highlighted: []string{},
		Data:        []view.ChoroplethLayer{base},
		Layout: view.MapLayout{
			Mapbox: view.Mapbox{
				Style:  view.MapStyle,
				Zoom:   view.MapZoom,
				Center: view.MapCenter,
			},
			Autosize:   true,
			UIRevision: view.UIRevision,
		},
	}

	// regions without a boundary this year stay selected but are not drawn
	var drawn []string
	for _, id := range state.Selected {
		if _, ok := ix.Lookup(id); ok {
			drawn = append(drawn, id)
		}
	}
	if len(drawn) == 0 {
		return mv, nil
	}

	subset := ix.Highlight(drawn)
	hl := r.layer("selection", subset, subset.IDs(), state.Year, variable, f)
	hl.ZMin, hl.ZMax = zmin, zmax
	hl.Marker = view.Marker{
		Opacity: view.HighlightOpacity,
		Line:    view.Line{Width: view.HighlightLineWidth, Color: view.HighlightLineColor},
	}

	mv.Highlighted = subset.IDs()
	mv.Data = append(mv.Data, hl)
	return mv, nil
}

func (r *Renderer) layer(
	name string,
	geo *boundary.Collection,
	codes []string,
	year int,
	variable region.Variable,
	f formatter,
) view.ChoroplethLayer {
	l := view.ChoroplethLayer{
		Type:         "choroplethmapbox",
		Name:         name,
		GeoJSON:      geo,
		FeatureIDKey: "properties." + boundary.KeyProperty,
		Locations:    make([]string, 0, len(codes)),
		Z:            make([]*float64, 0, len(codes)),
		Text:         make([]string, 0, len(codes)),
		HoverInfo:    "text",
		Colorscale:   variable.Colorscale,
	}

	for _, code := range codes {
		reg, ok := r.catalog.Lookup(code)
		if !ok {
			continue
		}
		var z *float64
		if v, ok := reg.Value(year, variable.Column); ok {
			z = &v
		}
		l.Locations = append(l.Locations, code)
		l.Z = append(l.Z, z)
		l.Text = append(l.Text, f.hover(reg.Name, variable.Label, z))
	}

	return l
}

func zRange(z []*float64) (lo, hi *float64) {
	for _, v := range z {
		if v == nil {
			continue
		}
		if lo == nil || *v < *lo {
			x := *v
			lo = &x
		}
		if hi == nil || *v > *hi {
			x := *v
			hi = &x
		}
	}
	return lo, hi
}
