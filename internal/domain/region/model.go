// internal/domain/region/model.go

package region

import (
	"sort"
	"strings"
)

// Column names of the regional key-figures table
const (
	ColumnName = "regio_s"
	ColumnYear = "perioden"
	ColumnCode = "koppelvariabele_regio_code_306"
	ColumnType = "type"
)

// Row is one (region, year) record of the source table. A nil value means
// the observation is missing.
type Row struct {
	Code   string
	Name   string
	Year   int
	Values map[string]*float64
}

// Region is a municipality with its observations across years
type Region struct {
	Code         string
	Name         string
	Observations map[int]map[string]float64
}

// Value returns the observation of variable for year
func (r *Region) Value(year int, variable string) (float64, bool) {
	obs, ok := r.Observations[year]
	if !ok {
		return 0, false
	}
	v, ok := obs[variable]
	return v, ok
}

// Years returns the sorted years in which the region has a value for variable
func (r *Region) Years(variable string) []int {
	years := make([]int, 0, len(r.Observations))
	for year, obs := range r.Observations {
		if _, ok := obs[variable]; ok {
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}

// Variable describes a selectable measurement column
type Variable struct {
	Column     string `yaml:"column" json:"column"`
	Label      string `yaml:"label" json:"label"`
	Title      string `yaml:"title" json:"title"`
	Colorscale string `yaml:"colorscale" json:"colorscale"`
}

// Kind classifies an administrative area from its display name
type Kind string

const (
	KindCountry     Kind = "country"
	KindCountryPart Kind = "country_part"
	KindCorop       Kind = "corop"
	KindProvince    Kind = "province"
	KindRegion      Kind = "region"
)

// Classify derives the area kind from the suffix CBS puts on aggregate rows
func Classify(name string) Kind {
	name = strings.TrimSpace(name)
	switch {
	case name == "Nederland":
		return KindCountry
	case strings.HasSuffix(name, "(LD)"):
		return KindCountryPart
	case strings.HasSuffix(name, "(CR)"):
		return KindCorop
	case strings.HasSuffix(name, "(PV)"):
		return KindProvince
	default:
		return KindRegion
	}
}

// NormalizeCode trims whitespace from a region code, preserving case
func NormalizeCode(code string) string {
	return strings.TrimSpace(code)
}
