// internal/service/catalog/variables.go

package catalog

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"regiodash/internal/domain/region"
)

// DefaultColorscale is used for variables without an explicit scale
const DefaultColorscale = "Picnic"

var columnSuffix = regexp.MustCompile(`_\d+$`)

// Label turns a column name into a readable label, e.g.
// gemiddelde_woningwaarde_99 -> Gemiddelde woningwaarde
func Label(column string) string {
	words := strings.Fields(strings.ReplaceAll(columnSuffix.ReplaceAllString(column, ""), "_", " "))
	if len(words) == 0 {
		return column
	}
	words[0] = cases.Title(language.Dutch).String(words[0])
	return strings.Join(words, " ")
}

type variablesFile struct {
	Variables []region.Variable `yaml:"variables"`
}

// LoadVariablesFile reads variable descriptions from YAML
func LoadVariablesFile(path string) ([]region.Variable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading variables file: %w", err)
	}

	var f variablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing variables file %s: %w", path, err)
	}

	for i, v := range f.Variables {
		if strings.TrimSpace(v.Column) == "" {
			return nil, fmt.Errorf("variables file %s: entry %d has no column", path, i)
		}
	}

	return f.Variables, nil
}

// BuildVariables describes columns, in order. Entries from overrides replace
// the derived label, title and colour scale where set. Overrides for columns
// not in columns are ignored.
func BuildVariables(columns []string, overrides []region.Variable) []region.Variable {
	byColumn := make(map[string]region.Variable, len(overrides))
	for _, o := range overrides {
		byColumn[o.Column] = o
	}

	vars := make([]region.Variable, 0, len(columns))
	for _, col := range columns {
		v := region.Variable{
			Column:     col,
			Label:      Label(col),
			Colorscale: DefaultColorscale,
		}
		if o, ok := byColumn[col]; ok {
			if o.Label != "" {
				v.Label = o.Label
			}
			if o.Title != "" {
				v.Title = o.Title
			}
			if o.Colorscale != "" {
				v.Colorscale = o.Colorscale
			}
		}
		if v.Title == "" {
			v.Title = v.Label
		}
		vars = append(vars, v)
	}
	return vars
}

// CheckColumns returns an error naming every wanted column missing from available
func CheckColumns(wanted, available []string) error {
	have := make(map[string]struct{}, len(available))
	for _, c := range available {
		have[c] = struct{}{}
	}

	var missing []string
	for _, c := range wanted {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &region.ConfigError{
			Field: "variable",
			Value: strings.Join(missing, ","),
			Err:   region.ErrUnknownVariable,
		}
	}
	return nil
}
