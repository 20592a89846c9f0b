package config

import (
	"fmt"
	"strings"
	"time"

	env "github.com/netflix/go-env"
)

// Config holds all runtime configuration, resolved from environment
// variables. Values outside safe ranges are clamped rather than rejected.
type Config struct {
	// HTTP server
	ServerHost            string        `json:"server_host" env:"FITSEEK_HOST,default=localhost"`
	ServerPort            int           `json:"server_port" env:"FITSEEK_PORT,default=8090"`
	ServerReadTimeout     time.Duration `json:"server_read_timeout" env:"FITSEEK_READ_TIMEOUT,default=30s"`
	ServerWriteTimeout    time.Duration `json:"server_write_timeout" env:"FITSEEK_WRITE_TIMEOUT,default=0"`
	ServerIdleTimeout     time.Duration `json:"server_idle_timeout" env:"FITSEEK_IDLE_TIMEOUT,default=120s"`
	ServerShutdownTimeout time.Duration `json:"server_shutdown_timeout" env:"FITSEEK_SHUTDOWN_TIMEOUT,default=30s"`

	// Browser / page fetching
	Headless        bool          `json:"headless" env:"FITSEEK_HEADLESS,default=true"`
	UserAgent       string        `json:"user_agent" env:"FITSEEK_USER_AGENT,default=Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0"`
	NavigateTimeout time.Duration `json:"navigate_timeout" env:"FITSEEK_NAVIGATE_TIMEOUT,default=60s"`
	FetchRateLimit  float64       `json:"fetch_rate_limit" env:"FITSEEK_FETCH_RATE_LIMIT,default=1.0"`
	FetchRateBurst  int           `json:"fetch_rate_burst" env:"FITSEEK_FETCH_RATE_BURST,default=2"`
	FetchRetries    int           `json:"fetch_retries" env:"FITSEEK_FETCH_RETRIES,default=2"`
	FetchBackoff    time.Duration `json:"fetch_backoff" env:"FITSEEK_FETCH_BACKOFF,default=750ms"`

	// Marketplace
	BrowseURL     string `json:"browse_url" env:"FITSEEK_BROWSE_URL,default=https://www.depop.com/ca/category/mens/tops/?sort=newlyListed"`
	SellerGroups  string `json:"seller_groups" env:"FITSEEK_SELLER_GROUPS,default=tops"`
	SellerGender  string `json:"seller_gender" env:"FITSEEK_SELLER_GENDER,default=male"`
	SelectorsPath string `json:"selectors_path" env:"FITSEEK_SELECTORS_PATH"`

	// Search request defaults / caps
	DefaultMaxItems int `json:"default_max_items" env:"FITSEEK_DEFAULT_MAX_ITEMS,default=40"`
	DefaultMaxLinks int `json:"default_max_links" env:"FITSEEK_DEFAULT_MAX_LINKS,default=1000"`
	MaxMaxLinks     int `json:"max_max_links" env:"FITSEEK_MAX_MAX_LINKS,default=5000"`

	// Metrics store
	StatsDBPath string `json:"stats_db_path" env:"FITSEEK_STATS_DB"`

	// OpenTelemetry
	OTelEnabled              bool    `json:"otel_enabled" env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string  `json:"otel_service_name" env:"OTEL_SERVICE_NAME,default=fitseek"`
	OTelExporterOTLPEndpoint string  `json:"otel_exporter_otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string  `json:"otel_exporter_otlp_protocol" env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string  `json:"otel_resource_attributes" env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string  `json:"otel_traces_sampler" env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64 `json:"otel_traces_sampler_arg" env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	if config.ServerPort < 1 || config.ServerPort > 65535 {
		return fmt.Errorf("invalid server port %d", config.ServerPort)
	}

	if config.FetchRetries < 0 {
		config.FetchRetries = 0
	}
	if config.FetchRetries > 5 {
		config.FetchRetries = 5
	}

	if config.FetchRateLimit <= 0 {
		config.FetchRateLimit = 1.0
	}
	if config.FetchRateBurst < 1 {
		config.FetchRateBurst = 1
	}

	if config.FetchBackoff <= 0 {
		config.FetchBackoff = 750 * time.Millisecond
	}

	if config.NavigateTimeout < 5*time.Second {
		config.NavigateTimeout = 5 * time.Second
	}

	if config.DefaultMaxItems < 1 {
		config.DefaultMaxItems = 1
	}
	if config.DefaultMaxLinks < 1 {
		config.DefaultMaxLinks = 1
	}
	if config.MaxMaxLinks < config.DefaultMaxLinks {
		config.MaxMaxLinks = config.DefaultMaxLinks
	}

	if strings.TrimSpace(config.BrowseURL) == "" {
		return fmt.Errorf("browse URL cannot be empty")
	}

	return nil
}
