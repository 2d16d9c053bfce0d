package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Catalog backends.
const (
	BackendStorefront = "storefront"
	BackendSpanner    = "spanner"
)

// Config holds all storefront-filters configuration.
type Config struct {
	// Env is "development" or "production"; development enables debug logging.
	Env string `yaml:"env"`

	Server     ServerConfig     `yaml:"server"`
	Storefront StorefrontConfig `yaml:"storefront"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Filter     FilterConfig     `yaml:"filter"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig configures the HTTP and gRPC listeners.
type ServerConfig struct {
	HTTPPort           string          `yaml:"http_port"`
	GRPCPort           string          `yaml:"grpc_port"`
	ShutdownTimeout    string          `yaml:"shutdown_timeout"`
	Routes             []string        `yaml:"routes"`
	CORSAllowedOrigins []string        `yaml:"cors_allowed_origins"`
	RateLimit          RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig configures per-client request throttling.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	// TrustForwardedFor keys clients by X-Forwarded-For; leave off unless a
	// proxy in front of the service overwrites that header.
	TrustForwardedFor bool    `yaml:"trust_forwarded_for"`
}

// StorefrontConfig configures the Storefront API catalog client.
type StorefrontConfig struct {
	StoreDomain string `yaml:"store_domain"`
	AccessToken string `yaml:"access_token"`
	APIVersion  string `yaml:"api_version"`
	Timeout     string `yaml:"timeout"`
	// ShopSources is the shop-domain resolution order.
	ShopSources []string `yaml:"shop_sources"`
}

// CatalogConfig selects where product records come from.
type CatalogConfig struct {
	Backend         string `yaml:"backend"` // storefront, spanner
	SpannerDatabase string `yaml:"spanner_database"`
}

// FilterConfig configures pipeline behaviour.
type FilterConfig struct {
	FacetScope        string `yaml:"facet_scope"`         // catalog, matched
	ErrorStatusPolicy string `yaml:"error_status_policy"` // always_ok, mapped
	LegacyFacetKeys   bool   `yaml:"legacy_facet_keys"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Env: "production",

		Server: ServerConfig{
			HTTPPort:        "8080",
			GRPCPort:        "9090",
			ShutdownTimeout: "10s",
			Routes:          []string{"/apps/filter/products", "/proxy", "/proxy/products"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerSecond: 10,
				Burst:             20,
			},
		},

		Storefront: StorefrontConfig{
			APIVersion:  "2025-01",
			Timeout:     "15s",
			ShopSources: []string{"session", "header", "query", "fallback"},
		},

		Catalog: CatalogConfig{
			Backend:         BackendStorefront,
			SpannerDatabase: "projects/test-project/instances/dev-instance/databases/storefront-filters-db",
		},

		Filter: FilterConfig{
			FacetScope:        "catalog",
			ErrorStatusPolicy: "always_ok",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadDotEnv loads .env style files into the process environment.
// Missing files are ignored; variables already set are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads an optional YAML file over the defaults, then applies
// environment overrides. An empty or missing path yields defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.Env = getEnvOrDefault("ENV", c.Env)

	c.Server.HTTPPort = getEnvOrDefault("HTTP_PORT", c.Server.HTTPPort)
	c.Server.GRPCPort = getEnvOrDefault("GRPC_PORT", c.Server.GRPCPort)
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitList(v)
	}
	if v := os.Getenv("FILTER_ROUTES"); v != "" {
		c.Server.Routes = splitList(v)
	}
	if v, err := strconv.ParseBool(os.Getenv("RATE_LIMIT_ENABLED")); err == nil {
		c.Server.RateLimit.Enabled = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64); err == nil {
		c.Server.RateLimit.RequestsPerSecond = v
	}
	if v, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST")); err == nil {
		c.Server.RateLimit.Burst = v
	}
	if v, err := strconv.ParseBool(os.Getenv("RATE_LIMIT_TRUST_FORWARDED_FOR")); err == nil {
		c.Server.RateLimit.TrustForwardedFor = v
	}

	c.Storefront.StoreDomain = getEnvOrDefault("SHOPIFY_STORE_DOMAIN", c.Storefront.StoreDomain)
	c.Storefront.AccessToken = getEnvOrDefault("SHOPIFY_STOREFRONT_TOKEN", c.Storefront.AccessToken)
	c.Storefront.APIVersion = getEnvOrDefault("SHOPIFY_STOREFRONT_API_VERSION", c.Storefront.APIVersion)

	c.Catalog.Backend = getEnvOrDefault("CATALOG_BACKEND", c.Catalog.Backend)
	c.Catalog.SpannerDatabase = getEnvOrDefault("SPANNER_DATABASE", c.Catalog.SpannerDatabase)

	c.Filter.FacetScope = getEnvOrDefault("FACET_SCOPE", c.Filter.FacetScope)
	c.Filter.ErrorStatusPolicy = getEnvOrDefault("ERROR_STATUS_POLICY", c.Filter.ErrorStatusPolicy)
	if v, err := strconv.ParseBool(os.Getenv("LEGACY_FACET_KEYS")); err == nil {
		c.Filter.LegacyFacetKeys = v
	}

	c.Logging.Level = getEnvOrDefault("LOG_LEVEL", c.Logging.Level)
}

// IsDevelopment reports whether development mode is active.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development") || strings.EqualFold(c.Env, "dev")
}

// GetShutdownTimeout returns the graceful shutdown budget as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetStorefrontTimeout returns the catalog request timeout as a duration.
func (c *Config) GetStorefrontTimeout() time.Duration {
	d, err := time.ParseDuration(c.Storefront.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// Validate checks values that would otherwise fail at request time.
// A missing storefront token is not a startup error; it is reported per request.
func (c *Config) Validate() error {
	if c.Server.HTTPPort == "" {
		return fmt.Errorf("http port not configured")
	}
	if c.Server.GRPCPort == "" {
		return fmt.Errorf("grpc port not configured")
	}
	if len(c.Server.Routes) == 0 {
		return fmt.Errorf("no filter routes configured")
	}

	switch c.Catalog.Backend {
	case BackendStorefront:
	case BackendSpanner:
		if c.Catalog.SpannerDatabase == "" {
			return fmt.Errorf("spanner backend requires SPANNER_DATABASE")
		}
	default:
		return fmt.Errorf("invalid catalog backend: %s (valid: %s, %s)", c.Catalog.Backend, BackendStorefront, BackendSpanner)
	}

	switch c.Filter.FacetScope {
	case "catalog", "matched":
	default:
		return fmt.Errorf("invalid facet scope: %s (valid: catalog, matched)", c.Filter.FacetScope)
	}

	switch c.Filter.ErrorStatusPolicy {
	case "always_ok", "mapped":
	default:
		return fmt.Errorf("invalid error status policy: %s (valid: always_ok, mapped)", c.Filter.ErrorStatusPolicy)
	}

	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RequestsPerSecond <= 0 || c.Server.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit requires positive requests_per_second and burst")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
