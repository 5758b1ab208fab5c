package config

import (
	"log"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. When empty the service
	// runs in memory and nothing survives a restart.
	DatabaseURL        string
	Port               string
	IsProduction       bool
	EnableDBCheck      bool
	JWTSecret          string
	LogLevel           slog.Level
	RateLimit          string // ulule/limiter format, e.g. "300-M"
	CORSAllowedOrigins []string
	MigrationsPath     string
	// AutoStockOnSettlement posts stock adjustments when a sales invoice is
	// settled and when a purchase invoice is recorded.
	AutoStockOnSettlement bool
}

// InMemory reports whether no database is configured.
func (c *Config) InMemory() bool {
	return c.DatabaseURL == ""
}

// LoadConfig loads configuration from environment variables and a .env file if present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", true)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("AUTO_STOCK_ON_SETTLEMENT", false)
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:           v.GetString("PGSQL_URL"),
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		RateLimit:             v.GetString("RATE_LIMIT"),
		MigrationsPath:        v.GetString("MIGRATIONS_PATH"),
		AutoStockOnSettlement: v.GetBool("AUTO_STOCK_ON_SETTLEMENT"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL not set. Running with in-memory storage; data is lost on restart.")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == defaultJWTSecret {
		cfg.JWTSecret = defaultJWTSecret
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		log.Printf("Warning: invalid LOG_LEVEL %q. Defaulting to info.\n", v.GetString("LOG_LEVEL"))
		cfg.LogLevel = slog.LevelInfo
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}
