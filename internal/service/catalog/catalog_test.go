package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regiodash/internal/domain/region"
)

func f(v float64) *float64 { return &v }

func testRows() []region.Row {
	return []region.Row{
		{Code: "GM0503 ", Name: "Delft", Year: 2019, Values: map[string]*float64{"gemiddelde_woningwaarde_99": f(250), "totale_bevolking_1": f(103000)}},
		{Code: "GM0503", Name: "Delft", Year: 2020, Values: map[string]*float64{"gemiddelde_woningwaarde_99": f(265), "totale_bevolking_1": nil}},
		{Code: "GM0505", Name: "Dordrecht", Year: 2020, Values: map[string]*float64{"gemiddelde_woningwaarde_99": f(210)}},
		{Code: "GM1966", Name: "Het Hogeland", Year: 2021, Values: map[string]*float64{"gemiddelde_woningwaarde_99": f(180)}},
		{Code: "", Name: "Nederland", Year: 2020},
	}
}

func testCatalog() *Catalog {
	return New(testRows(), BuildVariables([]string{"gemiddelde_woningwaarde_99", "totale_bevolking_1"}, nil))
}

func TestNew(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, []int{2019, 2020, 2021}, c.Years())
	assert.Equal(t, 2020, c.DefaultYear())

	r, ok := c.Lookup("GM0503")
	require.True(t, ok)
	assert.Equal(t, "Delft", r.Name)
	assert.Equal(t, []int{2019, 2020}, r.Years("gemiddelde_woningwaarde_99"))
	assert.Equal(t, []int{2019}, r.Years("totale_bevolking_1"))

	v, ok := r.Value(2020, "gemiddelde_woningwaarde_99")
	assert.True(t, ok)
	assert.Equal(t, 265.0, v)

	_, ok = r.Value(2020, "totale_bevolking_1")
	assert.False(t, ok, "nil values are missing observations")
}

func TestExistsIn(t *testing.T) {
	c := testCatalog()

	assert.True(t, c.ExistsIn(2020, "GM0505"))
	assert.True(t, c.ExistsIn(2020, " GM0503"))
	assert.False(t, c.ExistsIn(2019, "GM0505"))
	assert.False(t, c.ExistsIn(2020, "GM1966"))
	assert.False(t, c.ExistsIn(2020, "GM9999"))
}

func TestValidate(t *testing.T) {
	c := testCatalog()

	assert.NoError(t, c.ValidateYear(2021))
	assert.NoError(t, c.ValidateVariable("totale_bevolking_1"))

	err := c.ValidateYear(1999)
	assert.True(t, region.IsConfigError(err))
	assert.True(t, errors.Is(err, region.ErrUnknownYear))

	err = c.ValidateVariable("nonexistent_col")
	assert.True(t, region.IsConfigError(err))
	assert.True(t, errors.Is(err, region.ErrUnknownVariable))
}

func TestOptions(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, []Option{
		{Value: "GM0503", Label: "Delft"},
		{Value: "GM0505", Label: "Dordrecht"},
	}, c.Options(2020))
	assert.Equal(t, []string{"GM0503", "GM0505"}, c.Regions(2020))
	assert.Empty(t, c.Options(1999))
}

func TestDefaultYear_SingleYear(t *testing.T) {
	c := New(testRows()[:1], nil)
	assert.Equal(t, 2019, c.DefaultYear())
	assert.Equal(t, 0, New(nil, nil).DefaultYear())
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"gemiddelde_woningwaarde_99": "Gemiddelde woningwaarde",
		"totale_bevolking_1":         "Totale bevolking",
		"koopwoningen_91":            "Koopwoningen",
		"oppervlakte":                "Oppervlakte",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}

func TestBuildVariables(t *testing.T) {
	vars := BuildVariables(
		[]string{"gemiddelde_woningwaarde_99", "totale_bevolking_1"},
		[]region.Variable{
			{Column: "gemiddelde_woningwaarde_99", Label: "Gem. woningwaarde", Title: "x 1000 euro", Colorscale: "Viridis"},
			{Column: "not_offered", Label: "ignored"},
		},
	)

	require.Len(t, vars, 2)
	assert.Equal(t, region.Variable{
		Column: "gemiddelde_woningwaarde_99", Label: "Gem. woningwaarde", Title: "x 1000 euro", Colorscale: "Viridis",
	}, vars[0])
	assert.Equal(t, region.Variable{
		Column: "totale_bevolking_1", Label: "Totale bevolking", Title: "Totale bevolking", Colorscale: DefaultColorscale,
	}, vars[1])
}

func TestLoadVariablesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variables.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`variables:
  - column: gemiddelde_woningwaarde_99
    label: Gem. woningwaarde
    colorscale: Viridis
  - column: totale_bevolking_1
    title: Inwoners
`), 0o600))

	vars, err := LoadVariablesFile(path)
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "Gem. woningwaarde", vars[0].Label)
	assert.Equal(t, "Viridis", vars[0].Colorscale)
	assert.Equal(t, "Inwoners", vars[1].Title)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("variables:\n  - label: no column\n"), 0o600))
	_, err = LoadVariablesFile(bad)
	assert.Error(t, err)

	_, err = LoadVariablesFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCheckColumns(t *testing.T) {
	assert.NoError(t, CheckColumns([]string{"a", "b"}, []string{"b", "a", "c"}))

	err := CheckColumns([]string{"a", "x", "y"}, []string{"a"})
	require.Error(t, err)
	assert.True(t, region.IsConfigError(err))
	assert.Contains(t, err.Error(), "x,y")
}
