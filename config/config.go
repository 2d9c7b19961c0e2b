package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting of the API server and the CLI.
// Values come from the environment (optionally seeded from a .env file).
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	Debug       bool
	Port        string
	GinMode     string

	DBDriver      string
	DatabaseURL   string
	DBPoolSize    int
	DBMaxOverflow int

	CORSOrigins []string

	LogLevel string
	LogFile  string

	RateLimitEnabled   bool
	RateLimitPerMinute int

	RedisURL     string
	CacheEnabled bool
	CacheTTL     time.Duration

	AdminJWTSecret string
	Timezone       string

	SeedOnStartup          bool
	AllowPublicCorrections bool
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		AppName:                "Dino Reserve",
		AppVersion:             "1.0.0",
		Environment:            "development",
		Debug:                  false,
		Port:                   "8000",
		DBDriver:               "sqlite",
		DatabaseURL:            "dinoreserve.db",
		DBPoolSize:             5,
		DBMaxOverflow:          10,
		CORSOrigins:            []string{"http://localhost:5173", "http://localhost:3000"},
		LogLevel:               "info",
		RateLimitPerMinute:     60,
		RedisURL:               "redis://localhost:6379/0",
		CacheTTL:               30 * time.Second,
		Timezone:               "Local",
		SeedOnStartup:          true,
		AllowPublicCorrections: true,
	}
}

// Load reads the environment on top of Default.
func Load() Config {
	def := Default()
	return Config{
		AppName:                envStr("APP_NAME", def.AppName),
		AppVersion:             envStr("APP_VERSION", def.AppVersion),
		Environment:            envStr("ENVIRONMENT", def.Environment),
		Debug:                  envBool("DEBUG", def.Debug),
		Port:                   envStr("PORT", def.Port),
		GinMode:                envStr("GIN_MODE", def.GinMode),
		DBDriver:               strings.ToLower(envStr("DB_DRIVER", def.DBDriver)),
		DatabaseURL:            envStr("DATABASE_URL", def.DatabaseURL),
		DBPoolSize:             envInt("DB_POOL_SIZE", def.DBPoolSize),
		DBMaxOverflow:          envInt("DB_MAX_OVERFLOW", def.DBMaxOverflow),
		CORSOrigins:            envList("CORS_ORIGINS", def.CORSOrigins),
		LogLevel:               envStr("LOG_LEVEL", def.LogLevel),
		LogFile:                envStr("LOG_FILE", def.LogFile),
		RateLimitEnabled:       envBool("RATE_LIMIT_ENABLED", def.RateLimitEnabled),
		RateLimitPerMinute:     envInt("RATE_LIMIT_PER_MINUTE", def.RateLimitPerMinute),
		RedisURL:               envStr("REDIS_URL", def.RedisURL),
		CacheEnabled:           envBool("CACHE_ENABLED", def.CacheEnabled),
		CacheTTL:               envDur("CACHE_TTL", def.CacheTTL),
		AdminJWTSecret:         envStr("ADMIN_JWT_SECRET", def.AdminJWTSecret),
		Timezone:               envStr("TIMEZONE", def.Timezone),
		SeedOnStartup:          envBool("SEED_ON_STARTUP", def.SeedOnStartup),
		AllowPublicCorrections: envBool("ALLOW_PUBLIC_CORRECTIONS", def.AllowPublicCorrections),
	}
}

// Location resolves Timezone, falling back to the process local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}

func envList(k string, d []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
