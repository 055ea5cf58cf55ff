// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App        AppConfig        `koanf:"app"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	OpenRouter OpenRouterConfig `koanf:"openrouter"`
	Clerk      ClerkConfig      `koanf:"clerk"`
	Admin      AdminConfig      `koanf:"admin"`
	Quota      QuotaConfig      `koanf:"quota"`
	Pricing    PricingConfig    `koanf:"pricing"`
	RateLimit  RateLimitConfig  `koanf:"rate_limit"`
	CORS       CORSConfig       `koanf:"cors"`
	Log        LogConfig        `koanf:"log"`
	Otel       OtelConfig       `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

// OpenRouterConfig configures the OpenAI-compatible completion endpoint
// used for nutrition estimation.
type OpenRouterConfig struct {
	APIKey      string        `koanf:"api_key"`
	Model       string        `koanf:"model"`
	BaseURL     string        `koanf:"base_url"`
	Timeout     time.Duration `koanf:"timeout"`
	Temperature float32       `koanf:"temperature"`
	MaxTokens   int           `koanf:"max_tokens"`
}

// ClerkConfig configures the identity provider. An empty SecretKey puts the
// service in development mode where every request resolves to a fixed user.
type ClerkConfig struct {
	SecretKey      string        `koanf:"secret_key"`
	PublishableKey string        `koanf:"publishable_key"`
	APIURL         string        `koanf:"api_url"`
	JWKSURL        string        `koanf:"jwks_url"`
	Timeout        time.Duration `koanf:"timeout"`
}

type AdminConfig struct {
	Password     string        `koanf:"password"`
	SessionTTL   time.Duration `koanf:"session_ttl"`
	CookieName   string        `koanf:"cookie_name"`
	CookieSecure bool          `koanf:"cookie_secure"`
}

type QuotaConfig struct {
	DefaultDaily  int    `koanf:"default_daily"`
	ResetSchedule string `koanf:"reset_schedule"`
}

type PricingConfig struct {
	InputPerMillion  float64 `koanf:"input_per_million"`
	OutputPerMillion float64 `koanf:"output_per_million"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Load builds a new Config from defaults, an optional YAML file and the
// environment. A .env file in the working directory is read first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" && fileExists(configPath) {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	normalizeCORS(&cfg.CORS)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "NutriAI API",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8000,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "60s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 2,

		"openrouter.model":       "openai/gpt-3.5-turbo",
		"openrouter.base_url":    "https://openrouter.ai/api/v1",
		"openrouter.timeout":     "30s",
		"openrouter.temperature": 0.3,
		"openrouter.max_tokens":  500,

		"clerk.api_url": "https://api.clerk.com/v1",
		"clerk.timeout": "30s",

		"admin.session_ttl":   "12h",
		"admin.cookie_name":   "admin_session",
		"admin.cookie_secure": false,

		"quota.default_daily":  10,
		"quota.reset_schedule": "0 0 * * *",

		"pricing.input_per_million":  0.5,
		"pricing.output_per_million": 1.5,

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{
			"http://localhost:3000",
			"http://localhost:8081",
			"http://10.0.2.2:8000",
		},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "nutriai-api",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"OPENROUTER_API_KEY":          "openrouter.api_key",
	"OPENROUTER_MODEL":            "openrouter.model",
	"OPENROUTER_BASE_URL":         "openrouter.base_url",
	"OPENROUTER_TIMEOUT":          "openrouter.timeout",
	"CLERK_SECRET_KEY":            "clerk.secret_key",
	"CLERK_PUBLISHABLE_KEY":       "clerk.publishable_key",
	"CLERK_API_URL":               "clerk.api_url",
	"CLERK_JWKS_URL":              "clerk.jwks_url",
	"ADMIN_PASSWORD":              "admin.password",
	"ADMIN_SESSION_TTL":           "admin.session_ttl",
	"ADMIN_COOKIE_SECURE":         "admin.cookie_secure",
	"QUOTA_DEFAULT_DAILY":         "quota.default_daily",
	"QUOTA_RESET_SCHEDULE":        "quota.reset_schedule",
	"PRICING_INPUT_PER_MILLION":   "pricing.input_per_million",
	"PRICING_OUTPUT_PER_MILLION":  "pricing.output_per_million",
	"CORS_ORIGINS":                "cors.allowed_origins",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

func envValue(key, value string) (string, any) {
	mapped, ok := envKeyMap[key]
	if !ok {
		return "", nil
	}

	if mapped == "cors.allowed_origins" {
		return mapped, splitList(value)
	}

	return mapped, value
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeCORS collapses any list containing "*" to the wildcard alone.
// Browsers reject credentialed requests to a wildcard origin.
func normalizeCORS(c *CORSConfig) {
	for _, origin := range c.AllowedOrigins {
		if origin == "*" {
			c.AllowedOrigins = []string{"*"}
			c.AllowCredentials = false
			return
		}
	}
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.OpenRouter.Model == "" {
		return fmt.Errorf("OPENROUTER_MODEL must not be empty")
	}

	if c.Pricing.InputPerMillion < 0 || c.Pricing.OutputPerMillion < 0 {
		return fmt.Errorf("pricing rates must not be negative")
	}

	if c.Quota.DefaultDaily < -1 {
		return fmt.Errorf("quota.default_daily must be -1 or greater")
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if c.Clerk.SecretKey == "" {
			return fmt.Errorf("CLERK_SECRET_KEY is required in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// DevMode reports whether identity resolution falls back to the fixed
// development user.
func (c *Config) DevMode() bool {
	return c.Clerk.SecretKey == ""
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
