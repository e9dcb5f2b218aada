// internal/service/render/labels.go

package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Missing is shown for a region without an observation
const Missing = "n.v.t."

// formatter writes numbers the Dutch way (1.234,5). A message.Printer is
// not safe for concurrent use, so each render builds its own.
type formatter struct {
	p *message.Printer
}

func newFormatter() formatter {
	return formatter{p: message.NewPrinter(language.Dutch)}
}

func (f formatter) value(v *float64) string {
	if v == nil {
		return Missing
	}
	return f.p.Sprint(number.Decimal(*v, number.MaxFractionDigits(2)))
}

// hover builds the tooltip of one region on the map
func (f formatter) hover(name, label string, v *float64) string {
	return f.p.Sprintf("%s<br>%s: %s", name, label, f.value(v))
}
