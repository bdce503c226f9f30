package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFeedBaseURL = "https://bikesampa.mobilicidade.mobi"
	DefaultFeedPath    = "/WSAppBKSampa/servicojsonbksampa.aspx?autenticar=m0Bc2012.2BkSP&operacao=RecEstacoesStatus&nestacao=0"
	DefaultUserAgent   = "request"

	configFileEnv = "CONFIG_FILE"
)

type Config struct {
	Environment        string
	LogLevel           zerolog.Level
	HTTPTimeout        time.Duration
	MaxRetries         int
	FeedBaseURL        string
	FeedPath           string
	FeedFormat         string
	UserAgent          string
	InsecureSkipVerify bool
	ExtractTimeout     time.Duration
	Cache              *CacheConfig
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithFeed points the client at a feed endpoint in the given format (json or html).
func WithFeed(baseURL, path, format string) Option {
	return func(c *Config) {
		if baseURL != "" {
			c.FeedBaseURL = baseURL
		}
		if path != "" {
			c.FeedPath = path
		}
		if format != "" {
			c.FeedFormat = format
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Config) {
		c.InsecureSkipVerify = skip
	}
}

func WithExtractTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.ExtractTimeout = timeout
	}
}

func WithCacheConfig(cacheConfig *CacheConfig) Option {
	return func(c *Config) {
		c.Cache = cacheConfig
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment: "production",
		LogLevel:    zerolog.InfoLevel,
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		FeedBaseURL: DefaultFeedBaseURL,
		FeedPath:    DefaultFeedPath,
		FeedFormat:  "json",
		UserAgent:   DefaultUserAgent,
		// The provider's certificate chain has been broken before.
		InsecureSkipVerify: true,
		ExtractTimeout:     10 * time.Second,
		Cache:              DefaultCacheConfig(),
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	// Setup console logger for development environments
	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}

// FileConfig is the YAML layout of the optional file named by CONFIG_FILE.
type FileConfig struct {
	Environment        string `yaml:"environment"`
	LogLevel           string `yaml:"log_level"`
	HTTPTimeout        string `yaml:"http_timeout"`
	MaxRetries         int    `yaml:"max_retries"`
	InsecureSkipVerify *bool  `yaml:"insecure_skip_verify"`
	ExtractTimeout     string `yaml:"extract_timeout"`
	Feed               struct {
		BaseURL   string `yaml:"base_url"`
		Path      string `yaml:"path"`
		Format    string `yaml:"format"`
		UserAgent string `yaml:"user_agent"`
	} `yaml:"feed"`
	Cache struct {
		TTLSeconds          int   `yaml:"ttl_seconds"`
		ResponseLRUSize     int   `yaml:"response_lru_size"`
		EnableResponseCache *bool `yaml:"enable_response_cache"`
	} `yaml:"cache"`
}

// LoadFile reads a YAML configuration file into options, in the same order
// LoadFromEnv applies them.
func LoadFile(path string) ([]Option, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decoding config file: %w", err)
	}

	var opts []Option
	if fc.Environment != "" {
		opts = append(opts, WithEnvironment(fc.Environment))
	}
	if fc.LogLevel != "" {
		opts = append(opts, WithLogLevel(fc.LogLevel))
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing http_timeout: %w", err)
		}
		opts = append(opts, WithHTTPTimeout(d))
	}
	if fc.MaxRetries != 0 {
		opts = append(opts, WithMaxRetries(fc.MaxRetries))
	}
	if fc.InsecureSkipVerify != nil {
		opts = append(opts, WithInsecureSkipVerify(*fc.InsecureSkipVerify))
	}
	if fc.ExtractTimeout != "" {
		d, err := time.ParseDuration(fc.ExtractTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing extract_timeout: %w", err)
		}
		opts = append(opts, WithExtractTimeout(d))
	}
	opts = append(opts, WithFeed(fc.Feed.BaseURL, fc.Feed.Path, fc.Feed.Format))
	if fc.Feed.UserAgent != "" {
		opts = append(opts, WithUserAgent(fc.Feed.UserAgent))
	}

	cacheConfig := DefaultCacheConfig()
	if fc.Cache.TTLSeconds > 0 {
		cacheConfig.StationTTLSeconds = fc.Cache.TTLSeconds
	}
	if fc.Cache.ResponseLRUSize > 0 {
		cacheConfig.ResponseLRUSize = fc.Cache.ResponseLRUSize
	}
	if fc.Cache.EnableResponseCache != nil {
		cacheConfig.EnableResponseCache = *fc.Cache.EnableResponseCache
	}
	opts = append(opts, WithCacheConfig(cacheConfig))

	return opts, nil
}

// LoadFromEnv loads configuration from the optional CONFIG_FILE and then
// environment variables, which take precedence.
func LoadFromEnv() (*Config, error) {
	var opts []Option
	if path := os.Getenv(configFileEnv); path != "" {
		fileOpts, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}

	cfg := New(opts...)
	envOpts := []Option{
		WithEnvironment(getEnvOrDefault("ENV", cfg.Environment)),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", cfg.LogLevel.String())),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", cfg.HTTPTimeout)),
		WithMaxRetries(getEnvInt("HTTP_MAX_RETRIES", cfg.MaxRetries)),
		WithFeed(os.Getenv("FEED_BASE_URL"), os.Getenv("FEED_PATH"), os.Getenv("FEED_FORMAT")),
		WithUserAgent(getEnvOrDefault("FEED_USER_AGENT", cfg.UserAgent)),
		WithInsecureSkipVerify(getEnvBool("FEED_INSECURE_SKIP_VERIFY", cfg.InsecureSkipVerify)),
		WithExtractTimeout(getDurationEnvOrDefault("EXTRACT_TIMEOUT", cfg.ExtractTimeout)),
		WithCacheConfig(GetCacheConfig(cfg.Cache)),
	}
	for _, opt := range envOpts {
		opt(cfg)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Helper functions to get environment variables with defaults
func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
