package db

import (
	"fmt"
	stdlog "log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/calldeck/backend/internal/domain"
	"github.com/calldeck/backend/internal/platform/logger"
)

// Config selects the backing store. SQLite is the default and matches the
// single-process dashboard deployment; Postgres is available for anyone who
// wants the metrics table on a shared server.
type Config struct {
	Driver      string // "sqlite" or "postgres"
	SQLitePath  string
	PostgresDSN string
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

func New(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "db")

	gormLog := gormLogger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		if cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		dialector = sqlite.Open(cfg.SQLitePath)
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	serviceLog.Info("database connected", "driver", cfg.Driver)
	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

// AutoMigrateAll creates the metrics table. Required-ness of the sample
// fields is enforced both here (NOT NULL columns) and in the store's
// validation, so a bug in one layer cannot silently write partial rows.
func (s *Service) AutoMigrateAll() error {
	return s.db.AutoMigrate(
		&domain.MetricSample{},
	)
}

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
