// internal/domain/view/model.go

package view

import (
	"regiodash/internal/domain/boundary"
)

// Map styling of the base and highlight layers
const (
	BaseOpacity        = 0.4
	BaseLineWidth      = 1.0
	BaseLineColor      = "#6666cc"
	HighlightOpacity   = 1.0
	HighlightLineWidth = 3.0
	HighlightLineColor = "aqua"

	MapStyle   = "carto-positron"
	MapZoom    = 6.0
	UIRevision = "constant"
)

// MapCenter is the initial camera position (centre of the Netherlands)
var MapCenter = LatLon{Lat: 52.09, Lon: 5.12}

// LatLon is a map coordinate
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Line is a polygon outline
type Line struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// Marker styles the polygons of a layer
type Marker struct {
	Opacity float64 `json:"opacity"`
	Line    Line    `json:"line"`
}

// ColorBar labels the colour scale
type ColorBar struct {
	Title struct {
		Text string `json:"text"`
	} `json:"title"`
}

// ChoroplethLayer is a choroplethmapbox trace
type ChoroplethLayer struct {
	Type         string               `json:"type"`
	Name         string               `json:"name"`
	GeoJSON      *boundary.Collection `json:"geojson"`
	FeatureIDKey string               `json:"featureidkey"`
	Locations    []string             `json:"locations"`
	Z            []*float64           `json:"z"`
	ZMin         *float64             `json:"zmin,omitempty"`
	ZMax         *float64             `json:"zmax,omitempty"`
	Text         []string             `json:"text"`
	HoverInfo    string               `json:"hoverinfo"`
	Colorscale   string               `json:"colorscale"`
	ShowScale    bool                 `json:"showscale"`
	ColorBar     ColorBar             `json:"colorbar"`
	Marker       Marker               `json:"marker"`
}

// Margin is a figure margin in pixels
type Margin struct {
	R int `json:"r"`
	T int `json:"t"`
	L int `json:"l"`
	B int `json:"b"`
}

// Mapbox configures the map camera
type Mapbox struct {
	Style  string  `json:"style"`
	Zoom   float64 `json:"zoom"`
	Center LatLon  `json:"center"`
}

// MapLayout is the layout of the choropleth figure
type MapLayout struct {
	Mapbox     Mapbox `json:"mapbox"`
	Margin     Margin `json:"margin"`
	Autosize   bool   `json:"autosize"`
	UIRevision string `json:"uirevision"`
}

// MapView is the rendered choropleth figure. Data holds the base layer and,
// when regions are selected, the highlight layer.
type MapView struct {
	Year        int               `json:"year"`
	Variable    string            `json:"variable"`
	Highlighted []string          `json:"highlighted"`
	Data        []ChoroplethLayer `json:"data"`
	Layout      MapLayout         `json:"layout"`
}

// Trace is the history of one region for one variable. Xs and Ys always
// have the same length.
type Trace struct {
	Type        string    `json:"type"`
	Mode        string    `json:"mode"`
	Identifier  string    `json:"identifier"`
	DisplayName string    `json:"name"`
	Xs          []int     `json:"x"`
	Ys          []float64 `json:"y"`
}

// NewTrace creates an empty line trace for a region
func NewTrace(identifier, displayName string) Trace {
	return Trace{
		Type:        "scatter",
		Mode:        "lines+markers",
		Identifier:  identifier,
		DisplayName: displayName,
		Xs:          []int{},
		Ys:          []float64{},
	}
}

// Append adds one observation
func (t *Trace) Append(year int, value float64) {
	t.Xs = append(t.Xs, year)
	t.Ys = append(t.Ys, value)
}

// Empty reports whether the trace has no observations
func (t *Trace) Empty() bool {
	return len(t.Xs) == 0
}

// Legend places the legend above a chart
type Legend struct {
	Orientation string  `json:"orientation"`
	YAnchor     string  `json:"yanchor"`
	Y           float64 `json:"y"`
	XAnchor     string  `json:"xanchor"`
	X           float64 `json:"x"`
}

// SeriesLayout is the layout of a time-series panel
type SeriesLayout struct {
	Height     int    `json:"height"`
	ShowLegend bool   `json:"showlegend"`
	Legend     Legend `json:"legend"`
	Margin     Margin `json:"margin"`
	UIRevision string `json:"uirevision"`
}

// TimeSeriesView is one side panel: a trace per selected region
type TimeSeriesView struct {
	Variable string       `json:"variable"`
	Label    string       `json:"label"`
	Data     []Trace      `json:"data"`
	Layout   SeriesLayout `json:"layout"`
}
