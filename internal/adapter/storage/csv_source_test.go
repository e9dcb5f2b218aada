package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureCSV = `ID,RegioS,Perioden,KoppelvariabeleRegioCode_306,GemiddeldeWoningwaarde_99,TotaleBevolking_1
0,Nederland,2020JJ00,NL01  ,310,17407585
1,Groningen (PV),2020JJ00,PV20  ,220,586000
2,Aa en Hunze,2019JJ00,GM1680  ,250,25390
3,Aa en Hunze,2020JJ00,GM1680  ,272,25445
4,Appingedam,2020JJ00,GM0003  ,,11721
5,Onbekend,2020JJ00,None,100,1
`

func TestReadRows_FiltersAggregatesAndParsesValues(t *testing.T) {
	rows, err := ReadRows(context.Background(), strings.NewReader(fixtureCSV), RowQuery{
		Columns: []string{"gemiddelde_woningwaarde_99", "totale_bevolking_1"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "GM1680", rows[0].Code)
	assert.Equal(t, "Aa en Hunze", rows[0].Name)
	assert.Equal(t, 2019, rows[0].Year)
	require.NotNil(t, rows[0].Values["gemiddelde_woningwaarde_99"])
	assert.Equal(t, 250.0, *rows[0].Values["gemiddelde_woningwaarde_99"])

	assert.Equal(t, "GM0003", rows[2].Code)
	assert.Nil(t, rows[2].Values["gemiddelde_woningwaarde_99"], "empty cell is a missing observation")
	assert.Equal(t, 11721.0, *rows[2].Values["totale_bevolking_1"])
}

func TestReadRows_YearAndRegionFilter(t *testing.T) {
	rows, err := ReadRows(context.Background(), strings.NewReader(fixtureCSV), RowQuery{
		Columns:    []string{"totale_bevolking_1"},
		Year:       2020,
		RegionCode: " GM1680",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2020, rows[0].Year)
	assert.Equal(t, 25445.0, *rows[0].Values["totale_bevolking_1"])
}

func TestReadRows_MissingColumn(t *testing.T) {
	_, err := ReadRows(context.Background(), strings.NewReader(fixtureCSV), RowQuery{
		Columns: []string{"nonexistent_col"},
	})
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestCSVSource_Columns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regionale_kerncijfers.csv")
	require.NoError(t, os.WriteFile(path, []byte(fixtureCSV), 0o600))

	cols, err := NewCSVSource(path).Columns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"id", "regio_s", "perioden", "koppelvariabele_regio_code_306",
		"gemiddelde_woningwaarde_99", "totale_bevolking_1",
	}, cols)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"ID":                           "id",
		"RegioS":                       "regio_s",
		"KoppelvariabeleRegioCode_306": "koppelvariabele_regio_code_306",
		"gemiddelde_woningwaarde_99":   "gemiddelde_woningwaarde_99",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestRegionStore_BuildQuery(t *testing.T) {
	s := NewRegionStore(nil, "regionale_kerncijfers")

	query, args := s.buildQuery(RowQuery{
		Columns:    []string{"gemiddelde_woningwaarde_99"},
		Year:       2020,
		RegionCode: "GM0503 ",
	})

	assert.Contains(t, query, `CAST("gemiddelde_woningwaarde_99" AS double precision)`)
	assert.Contains(t, query, `FROM "regionale_kerncijfers" WHERE "type" = 'region'`)
	assert.Contains(t, query, `AND "perioden" = $1`)
	assert.Contains(t, query, `AND trim("koppelvariabele_regio_code_306") = $2`)
	assert.Equal(t, []interface{}{2020, "GM0503"}, args)
}
