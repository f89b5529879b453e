package app

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/calldeck/backend/internal/clients/daily"
	"github.com/calldeck/backend/internal/data/db"
	"github.com/calldeck/backend/internal/platform/envutil"
)

type Config struct {
	Host    string
	Port    int
	LogMode string

	DB    db.Config
	Daily daily.Config
}

// LoadConfig reads everything from the environment, with .env support for
// development. A missing rooms-API credential is allowed (the client warns
// about it); nothing here is fatal.
func LoadConfig() Config {
	// No .env is fine; production supplies real env vars.
	_ = godotenv.Load()

	return Config{
		Host:    envutil.Str("HOST", "0.0.0.0"),
		Port:    envutil.Int("PORT", 35813),
		LogMode: envutil.Str("LOG_MODE", "development"),
		DB: db.Config{
			Driver:      envutil.Str("DB_DRIVER", "sqlite"),
			SQLitePath:  envutil.Str("SQLITE_PATH", "./data/calldeck.db"),
			PostgresDSN: postgresDSN(),
		},
		Daily: daily.ConfigFromEnv(),
	}
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func postgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envutil.Str("POSTGRES_USER", "postgres"),
		envutil.Str("POSTGRES_PASSWORD", ""),
		envutil.Str("POSTGRES_HOST", "localhost"),
		envutil.Str("POSTGRES_PORT", "5432"),
		envutil.Str("POSTGRES_NAME", "calldeck"),
	)
}
