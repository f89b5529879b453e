package app

import (
	"context"
	"fmt"
	"time"

	"github.com/calldeck/backend/internal/clients/daily"
	"github.com/calldeck/backend/internal/data/db"
	"github.com/calldeck/backend/internal/data/repos/metrics"
	apphttp "github.com/calldeck/backend/internal/http"
	"github.com/calldeck/backend/internal/http/handlers"
	"github.com/calldeck/backend/internal/observability"
	"github.com/calldeck/backend/internal/platform/logger"
)

// App owns the fully wired dependency graph. Everything is constructed here
// and passed down explicitly; nothing hangs off a shared mutable context.
type App struct {
	Log    *logger.Logger
	Cfg    Config
	Server *apphttp.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	cfg := LoadConfig()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "calldeck",
		Environment: cfg.LogMode,
	})

	dbService, err := db.New(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	roomsClient := daily.New(log, cfg.Daily)
	sampleRepo := metrics.NewSampleRepo(dbService.DB(), log)

	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:           log,
		HealthHandler: handlers.NewHealthHandler(),
		RoomHandler:   handlers.NewRoomHandler(log, roomsClient, sampleRepo),
		MetricHandler: handlers.NewMetricHandler(log, sampleRepo),
		ViewHandler:   handlers.NewViewHandler(log, roomsClient, sampleRepo),
		TemplateGlob:  "web/templates/*.html",
		StaticDir:     "web/static",
	}, cfg.Addr())

	return &App{
		Log:          log,
		Cfg:          cfg,
		Server:       server,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	a.Log.Info("server listening", "addr", a.Cfg.Addr())
	return a.Server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.otelShutdown(ctx)
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
