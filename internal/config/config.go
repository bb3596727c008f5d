package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"balance_chart/internal/domain/entity"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Bitquery  BitqueryConfig  `yaml:"bitquery"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Chart     ChartConfig     `yaml:"chart"`
	Networks  []string        `yaml:"networks"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
	Swagger   SwaggerConfig   `yaml:"swagger"`
}

// ServerConfig holds the widget API server configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// BitqueryConfig holds the GraphQL endpoint and its static API key.
type BitqueryConfig struct {
	Endpoint             string `yaml:"endpoint"`
	APIKey               string `yaml:"apiKey"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"` // 0 means no deadline
}

// FetchConfig controls how fetch failures are reported.
type FetchConfig struct {
	// SurfaceErrors writes transport/parse failures into the cache as an error entry
	// instead of leaving the selection in the loading state.
	SurfaceErrors bool `yaml:"surfaceErrors"`
}

// ChartConfig holds presentation constants.
type ChartConfig struct {
	Palette []string `yaml:"palette"`
}

// DefaultsConfig holds the initial selection.
type DefaultsConfig struct {
	Network string `yaml:"network"`
	Address string `yaml:"address"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
	File   string `yaml:"file"`
}

// CacheConfig holds configuration for the API session store.
type CacheConfig struct {
	DefaultExpirationMinutes int `yaml:"defaultExpirationMinutes"`
	CleanupIntervalMinutes   int `yaml:"cleanupIntervalMinutes"`
}

// RateLimitConfig limits outbound requests to the GraphQL endpoint.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// DefaultPalette is the 22-colour palette of the chart.
var DefaultPalette = []string{ //nolint:gochecknoglobals // palette constant
	"#e6194b",
	"#3cb44b",
	"#ffe119",
	"#4363d8",
	"#f58231",
	"#911eb4",
	"#46f0f0",
	"#f032e6",
	"#bcf60c",
	"#fabebe",
	"#008080",
	"#e6beff",
	"#9a6324",
	"#fffac8",
	"#800000",
	"#aaffc3",
	"#808000",
	"#ffd8b1",
	"#000075",
	"#808080",
	"#ffffff",
	"#000000",
}

const (
	defaultEndpoint = "https://graphql.bitquery.io"
	defaultPort     = ":8080"
)

// LoadConfig loads configuration from a YAML file and applies defaults and environment overrides.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		logrus.Errorf("Failed to load config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to load config data from %s: %w", path, err)
	}

	logrus.Info("Configuration loaded successfully.")
	return cfg, nil
}

// Parse unmarshals raw YAML, applies defaults and environment overrides, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration built only from defaults and the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvironment()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = defaultPort
		logrus.Infof("Server.Port not set, defaulting to %s", c.Server.Port)
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}

	if c.Bitquery.Endpoint == "" {
		c.Bitquery.Endpoint = defaultEndpoint
		logrus.Infof("Bitquery.Endpoint not set, defaulting to %s", c.Bitquery.Endpoint)
	}
	if c.Bitquery.APIKey == "" {
		logrus.Warn("Bitquery.APIKey not set. Requests will most likely be rejected; set bitquery.apiKey or BITQUERY_API_KEY.")
	}

	if len(c.Chart.Palette) == 0 {
		c.Chart.Palette = append([]string(nil), DefaultPalette...)
		logrus.Infof("Chart.Palette not set, defaulting to %d colours", len(c.Chart.Palette))
	}

	if len(c.Networks) == 0 {
		c.Networks = append([]string(nil), entity.KnownNetworks...)
		logrus.Infof("Networks not set, defaulting to %d Bitquery networks", len(c.Networks))
	}
	if c.Defaults.Network == "" {
		c.Defaults.Network = entity.DefaultNetwork
		logrus.Infof("Defaults.Network not set, defaulting to %s", c.Defaults.Network)
	}
	if c.Defaults.Address == "" {
		c.Defaults.Address = entity.DefaultAddress
		logrus.Infof("Defaults.Address not set, defaulting to %s", c.Defaults.Address)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.Cache.DefaultExpirationMinutes == 0 {
		c.Cache.DefaultExpirationMinutes = 30
		logrus.Infof("Cache.DefaultExpirationMinutes not set, defaulting to %d minutes", c.Cache.DefaultExpirationMinutes)
	}
	if c.Cache.CleanupIntervalMinutes == 0 {
		c.Cache.CleanupIntervalMinutes = 10
	}

	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 5
		logrus.Infof("RateLimit.RequestsPerSecond not set, defaulting to %.0f", c.RateLimit.RequestsPerSecond)
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}

	if c.Swagger.Path == "" {
		c.Swagger.Path = "/swagger"
	}
	if c.Swagger.SpecFile == "" {
		c.Swagger.SpecFile = "./docs/swagger.yaml"
	}
}

func (c *Config) applyEnvironment() {
	if key := os.Getenv("BITQUERY_API_KEY"); key != "" {
		c.Bitquery.APIKey = key
		logrus.Info("Bitquery.APIKey overridden from BITQUERY_API_KEY")
	}
	if endpoint := os.Getenv("BITQUERY_ENDPOINT"); endpoint != "" {
		c.Bitquery.Endpoint = endpoint
		logrus.Infof("Bitquery.Endpoint overridden from BITQUERY_ENDPOINT: %s", endpoint)
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		c.Server.Port = port
		logrus.Infof("Server.Port overridden from SERVER_PORT: %s", port)
	}
}

// Validate checks the invariants the rest of the application relies on.
func (c *Config) Validate() error {
	if len(c.Chart.Palette) == 0 {
		return errors.New("chart.palette must contain at least one colour")
	}
	if len(c.Networks) == 0 {
		return errors.New("networks must contain at least one network identifier")
	}
	if !entity.IsKnownNetwork(c.Networks, c.Defaults.Network) {
		return fmt.Errorf("defaults.network %q is not listed in networks", c.Defaults.Network)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rateLimit.requestsPerSecond must be non-negative, got: %v", c.RateLimit.RequestsPerSecond)
	}
	if c.Bitquery.RequestTimeoutMillis < 0 {
		return fmt.Errorf("bitquery.requestTimeoutMillis must be non-negative, got: %d", c.Bitquery.RequestTimeoutMillis)
	}
	return nil
}
