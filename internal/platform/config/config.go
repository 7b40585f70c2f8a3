package config

import (
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultPort               = "8080"
	defaultJWTSecret          = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTIssuer          = "realty-erp-accounting"
	defaultCashAccountCode    = "1000"
	defaultEntryNumberPrefix  = "JE"
	defaultDemandDraftDueDays = 30
	defaultRateLimit          = "100-M"
	defaultCORSAllowedOrigins = "http://localhost:3000"
	defaultMigrationsPath     = "file://migrations"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// Accounting
	CashAccountCode    string
	EntryNumberPrefix  string
	DemandDraftDueDays int

	// HTTP
	RateLimit          string
	CORSAllowedOrigins []string
	MigrationsPath     string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()
	return loadFrom(viper.New())
}

func loadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	v.SetDefault("CASH_ACCOUNT_CODE", defaultCashAccountCode)
	v.SetDefault("ENTRY_NUMBER_PREFIX", defaultEntryNumberPrefix)
	v.SetDefault("DEMAND_DRAFT_DUE_DAYS", defaultDemandDraftDueDays)
	v.SetDefault("RATE_LIMIT", defaultRateLimit)
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSAllowedOrigins)
	v.SetDefault("MIGRATIONS_PATH", defaultMigrationsPath)

	// Environment variables override the defaults and anything godotenv loaded.
	v.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = v.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = v.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = defaultPort
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = v.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = v.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = v.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = defaultJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.JWTIssuer = v.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = defaultJWTIssuer
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.CashAccountCode = strings.TrimSpace(v.GetString("CASH_ACCOUNT_CODE"))
	if cfg.CashAccountCode == "" {
		cfg.CashAccountCode = defaultCashAccountCode
		log.Printf("Warning: CASH_ACCOUNT_CODE not set. Defaulting to %s.\n", cfg.CashAccountCode)
	}

	cfg.EntryNumberPrefix = strings.ToUpper(strings.TrimSpace(v.GetString("ENTRY_NUMBER_PREFIX")))
	if cfg.EntryNumberPrefix == "" {
		cfg.EntryNumberPrefix = defaultEntryNumberPrefix
	}

	cfg.DemandDraftDueDays = v.GetInt("DEMAND_DRAFT_DUE_DAYS")
	if cfg.DemandDraftDueDays <= 0 {
		log.Printf("Warning: Invalid value for DEMAND_DRAFT_DUE_DAYS ('%s'). Defaulting to %d.\n",
			v.GetString("DEMAND_DRAFT_DUE_DAYS"), defaultDemandDraftDueDays)
		cfg.DemandDraftDueDays = defaultDemandDraftDueDays
	}

	cfg.RateLimit = v.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = defaultRateLimit
	}

	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = splitList(defaultCORSAllowedOrigins)
	}

	cfg.MigrationsPath = v.GetString("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = defaultMigrationsPath
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
