// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data source kinds
const (
	SourcePostgres = "postgres"
	SourceCSV      = "csv"
)

// Cache backends
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// DefaultVariables are the columns offered when DATA_VARIABLES is unset
var DefaultVariables = []string{
	"gemiddelde_woningwaarde_99",
	"totale_bevolking_1",
	"bevolkingsgroei_79",
	"bevolkingsdichtheid_57",
	"koopwoningen_91",
	"huurwoningen_totaal_92",
}

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Data        DataConfig
	Boundary    BoundaryConfig
	Selection   SelectionConfig
	Cache       CacheConfig
	NATS        NATSConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
	LoadTimeout  time.Duration
}

// DataConfig describes where the regional key figures come from
type DataConfig struct {
	Source          string
	CSVPath         string
	Table           string
	Variables       []string
	VariablesFile   string
	DefaultYear     int
	DefaultVariable string
}

// BoundaryConfig locates the per-year boundary files
type BoundaryConfig struct {
	Dir         string
	FilePattern string
}

// SelectionConfig holds per-session selection settings
type SelectionConfig struct {
	TopN            int
	SessionTTL      time.Duration
	JanitorInterval time.Duration
	EventRate       float64
	EventBurst      int
	DefaultRegions  []string
}

// CacheConfig holds render cache configuration
type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	MaxEntries    int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	SubjectPrefix  string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8050),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "regiodash"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 4),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 1),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			LoadTimeout:  getEnvAsDuration("DB_LOAD_TIMEOUT", 60*time.Second),
		},
		Data: DataConfig{
			Source:          strings.ToLower(getEnv("DATA_SOURCE", SourcePostgres)),
			CSVPath:         getEnv("DATA_CSV_PATH", ""),
			Table:           getEnv("DATA_TABLE", "regionale_kerncijfers"),
			Variables:       getEnvAsSlice("DATA_VARIABLES", DefaultVariables),
			VariablesFile:   getEnv("DATA_VARIABLES_FILE", ""),
			DefaultYear:     getEnvAsInt("DATA_DEFAULT_YEAR", 0),
			DefaultVariable: getEnv("DATA_DEFAULT_VARIABLE", ""),
		},
		Boundary: BoundaryConfig{
			Dir:         getEnv("BOUNDARY_DIR", "data/geodata"),
			FilePattern: getEnv("BOUNDARY_FILE_PATTERN", "gemeentegrenzen_%d.geojson"),
		},
		Selection: SelectionConfig{
			TopN:            getEnvAsInt("SELECTION_TOP_N", 10),
			SessionTTL:      getEnvAsDuration("SELECTION_SESSION_TTL", 2*time.Hour),
			JanitorInterval: getEnvAsDuration("SELECTION_JANITOR_INTERVAL", 5*time.Minute),
			EventRate:       getEnvAsFloat("SELECTION_EVENT_RATE", 20),
			EventBurst:      getEnvAsInt("SELECTION_EVENT_BURST", 40),
			DefaultRegions:  getEnvAsSlice("SELECTION_DEFAULT_REGIONS", nil),
		},
		Cache: CacheConfig{
			Backend:       strings.ToLower(getEnv("CACHE_BACKEND", CacheMemory)),
			TTL:           getEnvAsDuration("CACHE_TTL", 5*time.Minute),
			MaxEntries:    getEnvAsInt("CACHE_MAX_ENTRIES", 10000),
			RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			SubjectPrefix:  getEnv("NATS_SUBJECT_PREFIX", "regiodash"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}

	return config, validate(config)
}

// Addr returns the listen address of the HTTP server
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ConnString returns the postgres connection string
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// validate checks if config is valid
func validate(config Config) error {
	switch config.Data.Source {
	case SourcePostgres:
	case SourceCSV:
		if config.Data.CSVPath == "" {
			return fmt.Errorf("DATA_CSV_PATH must be set when DATA_SOURCE is csv")
		}
	default:
		return fmt.Errorf("unsupported DATA_SOURCE %q", config.Data.Source)
	}

	if len(config.Data.Variables) == 0 {
		return fmt.Errorf("DATA_VARIABLES must name at least one column")
	}

	if !strings.Contains(config.Boundary.FilePattern, "%d") {
		return fmt.Errorf("BOUNDARY_FILE_PATTERN must contain %%d for the year")
	}

	if config.Selection.TopN < 1 {
		return fmt.Errorf("SELECTION_TOP_N must be at least 1")
	}

	if config.Selection.EventRate <= 0 || config.Selection.EventBurst < 1 {
		return fmt.Errorf("SELECTION_EVENT_RATE and SELECTION_EVENT_BURST must be positive")
	}

	switch config.Cache.Backend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return fmt.Errorf("unsupported CACHE_BACKEND %q", config.Cache.Backend)
	}

	if config.Cache.Backend != CacheNone && (config.Cache.TTL <= 0 || config.Cache.MaxEntries < 1) {
		return fmt.Errorf("CACHE_TTL and CACHE_MAX_ENTRIES must be positive")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
