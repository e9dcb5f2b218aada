// internal/service/render/timeseries.go

package render

import (
	"regiodash/internal/domain/selection"
	"regiodash/internal/domain/view"
)

// Side panel layout
const (
	SeriesHeight = 150
)

// TimeSeries renders one trace per selected region, in selection order.
// variable overrides the state's variable when not empty.
func (r *Renderer) TimeSeries(state selection.State, variable string) (view.TimeSeriesView, error) {
	if variable == "" {
		variable = state.Variable
	}
	v, err := r.catalog.Variable(variable)
	if err != nil {
		return view.TimeSeriesView{}, err
	}

	tv := view.TimeSeriesView{
		Variable: v.Column,
		Label:    v.Label,
		Data:     make([]view.Trace, 0, len(state.Selected)),
		Layout: view.SeriesLayout{
			Height:     SeriesHeight,
			ShowLegend: true,
			Legend: view.Legend{
				Orientation: "h",
				YAnchor:     "bottom",
				Y:           1.02,
				XAnchor:     "right",
				X:           1,
			},
			UIRevision: view.UIRevision,
		},
	}

	for _, id := range state.Selected {
		reg, ok := r.catalog.Lookup(id)
		if !ok {
			r.logger.Warn("skipping unknown region", "region", id, "variable", v.Column)
			continue
		}

		trace := view.NewTrace(reg.Code, reg.Name)
		for _, year := range reg.Years(v.Column) {
			value, _ := reg.Value(year, v.Column)
			trace.Append(year, value)
		}
		tv.Data = append(tv.Data, trace)
	}

	return tv, nil
}
