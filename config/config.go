package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     string `envconfig:"PORT" default:"8080"`

	// MySQLURL (or DatabaseURL) wins over the individual DB_* parts.
	MySQLURL    string `envconfig:"MYSQL_URL"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBUser      string `envconfig:"DB_USER" default:"root"`
	DBPass      string `envconfig:"DB_PASS"`
	DBHost      string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort      string `envconfig:"DB_PORT" default:"3306"`
	DBName      string `envconfig:"DB_NAME" default:"funeral_db"`
	AutoMigrate bool   `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	SeedDemo    bool   `envconfig:"SEED_DEMO_DATA" default:"false"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS"`

	// Empty RedisURL keeps resource locks in-process.
	RedisURL         string        `envconfig:"REDIS_URL"`
	ResourceLockTTL  time.Duration `envconfig:"RESOURCE_LOCK_TTL" default:"30s"`
	ResourceLockWait time.Duration `envconfig:"RESOURCE_LOCK_WAIT" default:"5s"`

	RestockOnCancel bool `envconfig:"RESTOCK_ON_CANCEL" default:"false"`
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads an optional .env file and then the process environment.
// The returned bool reports whether a .env file was found.
func Load() (Config, bool, error) {
	found := godotenv.Load() == nil

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, found, fmt.Errorf("load config: %w", err)
	}
	return cfg, found, nil
}
