package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0:8050", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CorsOrigins)
	assert.Equal(t, SourcePostgres, cfg.Data.Source)
	assert.Equal(t, "regionale_kerncijfers", cfg.Data.Table)
	assert.Equal(t, DefaultVariables, cfg.Data.Variables)
	assert.Equal(t, "gemeentegrenzen_%d.geojson", cfg.Boundary.FilePattern)
	assert.Equal(t, 10, cfg.Selection.TopN)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_SOURCE", "CSV")
	t.Setenv("DATA_CSV_PATH", "data/regionale_kerncijfers.csv")
	t.Setenv("DATA_VARIABLES", "gemiddelde_woningwaarde_99, totale_bevolking_1,")
	t.Setenv("SELECTION_TOP_N", "3")
	t.Setenv("SELECTION_DEFAULT_REGIONS", "GM0503,GM0505")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("NATS_ENABLED", "true")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, SourceCSV, cfg.Data.Source)
	assert.Equal(t, []string{"gemiddelde_woningwaarde_99", "totale_bevolking_1"}, cfg.Data.Variables)
	assert.Equal(t, 3, cfg.Selection.TopN)
	assert.Equal(t, []string{"GM0503", "GM0505"}, cfg.Selection.DefaultRegions)
	assert.Equal(t, CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"unknown source", map[string]string{"DATA_SOURCE": "sqlite"}, "DATA_SOURCE"},
		{"csv without path", map[string]string{"DATA_SOURCE": "csv"}, "DATA_CSV_PATH"},
		{"zero top n", map[string]string{"SELECTION_TOP_N": "0"}, "SELECTION_TOP_N"},
		{"pattern without year", map[string]string{"BOUNDARY_FILE_PATTERN": "grenzen.geojson"}, "BOUNDARY_FILE_PATTERN"},
		{"unknown cache", map[string]string{"CACHE_BACKEND": "memcached"}, "CACHE_BACKEND"},
		{"zero cache size", map[string]string{"CACHE_MAX_ENTRIES": "0"}, "CACHE_MAX_ENTRIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5433, Database: "d", SSLMode: "require"}
	assert.Equal(t, "postgres://u:p@db:5433/d?sslmode=require", c.ConnString())
}
