// internal/service/render/png.go

package render

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"regiodash/internal/domain/view"
)

// PNG dimensions of an exported panel
const (
	PNGWidth  = 800
	PNGHeight = 400
)

var palette = []drawing.Color{
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
	drawing.ColorFromHex("e377c2"),
	drawing.ColorFromHex("7f7f7f"),
	drawing.ColorFromHex("bcbd22"),
	drawing.ColorFromHex("17becf"),
}

func lineStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    3,
	}
}

// PNG draws a time-series view as a line chart. Empty traces are left out.
func PNG(tv view.TimeSeriesView, width, height int) ([]byte, error) {
	series := []chart.Series{}
	ymin, ymax := math.Inf(1), math.Inf(-1)

	for i, tr := range tv.Data {
		if tr.Empty() {
			continue
		}

		xs := make([]float64, len(tr.Xs))
		for j, x := range tr.Xs {
			xs[j] = float64(x)
		}
		ys := append([]float64(nil), tr.Ys...)
		for _, y := range ys {
			ymin = math.Min(ymin, y)
			ymax = math.Max(ymax, y)
		}

		// a single point has no x range
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0] + 1}
			ys = []float64{ys[0], ys[0]}
		}

		series = append(series, chart.ContinuousSeries{
			Name:    tr.DisplayName,
			XValues: xs,
			YValues: ys,
			Style:   lineStyle(palette[i%len(palette)]),
		})
	}

	if len(series) == 0 {
		return nil, ErrNothingToPlot
	}

	ch := chart.Chart{
		Title:      tv.Label,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 12}},
		XAxis: chart.XAxis{
			ValueFormatter: yearFormatter,
		},
		YAxis:  chart.YAxis{Name: tv.Label},
		Series: series,
	}
	// a flat line has no y range
	if ymin == ymax {
		pad := math.Max(math.Abs(ymin)*0.1, 1)
		ch.YAxis.Range = &chart.ContinuousRange{Min: ymin - pad, Max: ymax + pad}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f))
	}
	return ""
}
