// cmd/api/app.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"

	"regiodash/internal/adapter/bus"
	"regiodash/internal/adapter/cache"
	"regiodash/internal/adapter/geodata"
	"regiodash/internal/adapter/storage"
	"regiodash/internal/config"
	"regiodash/internal/domain/region"
	"regiodash/internal/domain/selection"
	"regiodash/internal/observability"
	"regiodash/internal/server"
	"regiodash/internal/server/handlers"
	boundaryService "regiodash/internal/service/boundary"
	"regiodash/internal/service/catalog"
	"regiodash/internal/service/render"
	selectionService "regiodash/internal/service/selection"
)

// dataset is the immutable data loaded at startup
type dataset struct {
	catalog    *catalog.Catalog
	boundaries *boundaryService.Set
	db         *pgxpool.Pool
}

// Close releases the database pool, if any
func (d *dataset) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

// app is the fully wired dashboard
type app struct {
	server   *server.Server
	registry *selectionService.Registry
	data     *dataset
	natsConn *nats.Conn
	redis    *redis.Client
	logger   *slog.Logger
}

// Close releases the connections held by the app
func (a *app) Close() {
	if a.natsConn != nil {
		a.natsConn.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", "error", err)
		}
	}
	a.data.Close()
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	ds, err := loadDataset(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &app{data: ds, logger: logger}

	metrics := observability.NewMetrics()
	metrics.CatalogRegions.Set(float64(ds.catalog.Len()))

	controller := selectionService.NewController(ds.catalog, ds.boundaries, cfg.Selection.TopN, logger)

	initial, err := initialState(cfg, ds.catalog, controller)
	if err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("initial selection",
		"year", initial.Year,
		"variable", initial.Variable,
		"regions", strings.Join(initial.Selected, ","),
	)

	a.registry = selectionService.NewRegistry(
		initial,
		selectionService.RegistryConfig{
			TTL:             cfg.Selection.SessionTTL,
			JanitorInterval: cfg.Selection.JanitorInterval,
			EventRate:       cfg.Selection.EventRate,
			EventBurst:      cfg.Selection.EventBurst,
		},
		clockwork.NewRealClock(),
		metrics.ActiveSessions,
		logger,
	)

	var renderCache cache.Cache
	switch cfg.Cache.Backend {
	case config.CacheMemory:
		renderCache = cache.NewMemory(cfg.Cache.MaxEntries, cfg.Cache.TTL, clockwork.NewRealClock())
	case config.CacheRedis:
		a.redis = cache.OpenRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		renderCache = cache.NewRedis(a.redis, cfg.NATS.SubjectPrefix, cfg.Cache.MaxEntries, cfg.Cache.TTL)
	default:
		renderCache = cache.Nop{}
	}
	logger.Info("render cache ready", "backend", cfg.Cache.Backend)

	var events bus.Bus
	if cfg.NATS.Enabled {
		a.natsConn, err = initNATS(cfg.NATS, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		events = bus.NewNATS(a.natsConn)
		logger.Info("connected to NATS", "url", cfg.NATS.URL)
	} else {
		events = bus.NewLocal()
	}

	views := render.NewService(
		render.NewRenderer(ds.catalog, ds.boundaries, logger),
		renderCache,
		metrics,
		logger,
	)
	sessions := handlers.NewSessionHandler(a.registry, controller, views, events, cfg.NATS.SubjectPrefix, metrics, logger)

	a.server = server.NewServer(cfg.Server, server.Handlers{
		Page:     handlers.NewPageHandler("Regiodash", ds.catalog.Variables(), logger),
		Sessions: sessions,
		Views:    handlers.NewViewHandler(sessions, ds.catalog, cfg.Selection.TopN),
	}, logger)

	return a, nil
}

// loadDataset reads the key figures and boundary files
func loadDataset(ctx context.Context, cfg config.Config, logger *slog.Logger) (*dataset, error) {
	ds := &dataset{}

	var source storage.Source
	switch cfg.Data.Source {
	case config.SourcePostgres:
		db, err := initDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		ds.db = db
		source = storage.NewRegionStore(db, cfg.Data.Table)
		logger.Info("connected to database", "host", cfg.Database.Host, "table", cfg.Data.Table)
	case config.SourceCSV:
		source = storage.NewCSVSource(cfg.Data.CSVPath)
		logger.Info("reading key figures from csv", "path", cfg.Data.CSVPath)
	default:
		return nil, fmt.Errorf("unsupported data source %q", cfg.Data.Source)
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Database.LoadTimeout)
	defer cancel()

	columns, err := source.Columns(loadCtx)
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("unable to list columns: %w", err)
	}
	if err := catalog.CheckColumns(cfg.Data.Variables, columns); err != nil {
		ds.Close()
		return nil, err
	}

	var overrides []region.Variable
	if cfg.Data.VariablesFile != "" {
		overrides, err = catalog.LoadVariablesFile(cfg.Data.VariablesFile)
		if err != nil {
			ds.Close()
			return nil, err
		}
	}
	variables := catalog.BuildVariables(cfg.Data.Variables, overrides)

	rows, err := source.LoadRows(loadCtx, storage.RowQuery{Columns: cfg.Data.Variables})
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("unable to load key figures: %w", err)
	}
	ds.catalog = catalog.New(rows, variables)
	logger.Info("catalog loaded", "rows", len(rows), "regions", ds.catalog.Len(), "years", ds.catalog.Years())

	collections, missing, err := geodata.NewLoader(cfg.Boundary.Dir, cfg.Boundary.FilePattern, logger).
		LoadYears(loadCtx, ds.catalog.Years())
	if err != nil {
		ds.Close()
		return nil, fmt.Errorf("unable to load boundaries: %w", err)
	}
	ds.boundaries = boundaryService.NewSet(collections, missing)
	if len(missing) > 0 {
		logger.Warn("no boundaries for some years, their maps are unavailable", "years", missing)
	}

	return ds, nil
}

// initialState builds the selection every new session starts from
func initialState(cfg config.Config, cat *catalog.Catalog, controller *selectionService.Controller) (selection.State, error) {
	state := selection.State{
		Selected: []string{},
		Year:     cfg.Data.DefaultYear,
		Variable: cfg.Data.DefaultVariable,
	}
	if state.Year == 0 {
		state.Year = cat.DefaultYear()
	}
	if state.Variable == "" {
		if vars := cat.Variables(); len(vars) > 0 {
			state.Variable = vars[0].Column
		}
	}

	if err := cat.ValidateYear(state.Year); err != nil {
		return state, fmt.Errorf("invalid default year: %w", err)
	}
	if err := cat.ValidateVariable(state.Variable); err != nil {
		return state, fmt.Errorf("invalid default variable: %w", err)
	}

	if len(cfg.Selection.DefaultRegions) > 0 {
		_, err := controller.Apply(&state, selection.Event{
			Kind:       selection.EventSetRegions,
			HasPayload: true,
			Regions:    cfg.Selection.DefaultRegions,
		})
		if err != nil {
			return state, fmt.Errorf("invalid default regions: %w", err)
		}
	}

	return state, nil
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *slog.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
