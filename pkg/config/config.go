// Package config loads cypherast settings from YAML files and CYPHERAST_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/cypherast/pkg/observability"
)

// Sentinel validation errors.
var (
	ErrInvalidPort       = errors.New("invalid server port")
	ErrInvalidSize       = errors.New("invalid size")
	ErrInvalidCache      = errors.New("cache max entries must be positive")
	ErrInvalidLogFormat  = errors.New("log format must be text or json")
	ErrInvalidSampleRate = errors.New("sample ratio must be within [0, 1]")
)

// Default configuration values.
const (
	defaultPort            = 8080
	defaultHost            = "127.0.0.1"
	defaultMaxQuerySize    = "1MB"
	defaultCacheEntries    = 1024
	defaultCacheSize       = "64MB"
	defaultParseTimeout    = "10s"
	defaultShutdownTimeout = "10s"
	maxPort                = 65535

	envPrefix = "CYPHERAST"
)

// Config holds all cypherast settings.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Parser    ParserConfig    `mapstructure:"parser"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Port            int           `mapstructure:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ParserConfig bounds parsing work.
type ParserConfig struct {
	// MaxQuerySize is a human size such as "1MB"; see MaxQueryBytes.
	MaxQuerySize string        `mapstructure:"max_query_size"`
	Timeout      time.Duration `mapstructure:"timeout"`
	// Recovery keeps parsing after a malformed statement, yielding error nodes.
	Recovery bool `mapstructure:"recovery"`

	// MaxQueryBytes is MaxQuerySize resolved by LoadConfig.
	MaxQueryBytes int `mapstructure:"-"`
}

// CacheConfig configures the parse result cache.
type CacheConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxEntries int    `mapstructure:"max_entries"`
	Enabled    bool   `mapstructure:"enabled"`

	// MaxBytes is MaxSize resolved by LoadConfig.
	MaxBytes int64 `mapstructure:"-"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	DebugTrace   bool    `mapstructure:"debug_trace"`
	TraceVerbose bool    `mapstructure:"trace_verbose"`
}

// LoadConfig reads configPath, or config.yaml from ., ./config and
// /etc/cypherast when configPath is empty. A missing default file is not an
// error. Environment variables such as CYPHERAST_SERVER_PORT override both.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("config")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
		viperCfg.AddConfigPath("/etc/cypherast")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration LoadConfig yields without any file or
// environment override.
func Default() *Config {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	// Defaults always decode and validate.
	_ = viperCfg.Unmarshal(&config)
	_ = validateConfig(&config)

	return &config
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("server.host", defaultHost)
	viperCfg.SetDefault("server.port", defaultPort)
	viperCfg.SetDefault("server.read_timeout", "30s")
	viperCfg.SetDefault("server.write_timeout", "30s")
	viperCfg.SetDefault("server.idle_timeout", "60s")
	viperCfg.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)

	viperCfg.SetDefault("parser.max_query_size", defaultMaxQuerySize)
	viperCfg.SetDefault("parser.timeout", defaultParseTimeout)
	viperCfg.SetDefault("parser.recovery", true)

	viperCfg.SetDefault("cache.enabled", true)
	viperCfg.SetDefault("cache.max_entries", defaultCacheEntries)
	viperCfg.SetDefault("cache.max_size", defaultCacheSize)

	viperCfg.SetDefault("logging.level", "info")
	viperCfg.SetDefault("logging.format", "text")

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", "")
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.debug_trace", false)
	viperCfg.SetDefault("telemetry.trace_verbose", false)
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	queryBytes, err := parseSize("parser.max_query_size", config.Parser.MaxQuerySize)
	if err != nil {
		return err
	}

	if queryBytes > math.MaxInt32 {
		return fmt.Errorf("%w: parser.max_query_size %q exceeds 2GB", ErrInvalidSize, config.Parser.MaxQuerySize)
	}

	config.Parser.MaxQueryBytes = int(queryBytes)

	cacheBytes, err := parseSize("cache.max_size", config.Cache.MaxSize)
	if err != nil {
		return err
	}

	config.Cache.MaxBytes = int64(cacheBytes)

	if config.Cache.Enabled && config.Cache.MaxEntries <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCache, config.Cache.MaxEntries)
	}

	_, err = observability.ParseLevel(config.Logging.Level)
	if err != nil {
		return err
	}

	switch config.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, config.Telemetry.SampleRatio)
	}

	return nil
}

func parseSize(key, raw string) (uint64, error) {
	size, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q: %w", ErrInvalidSize, key, raw, err)
	}

	if size > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidSize, key, raw)
	}

	return size, nil
}

// Observability converts the logging and telemetry sections into an
// observability.Config for the given launch mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	obs := observability.DefaultConfig()
	obs.ServiceVersion = version
	obs.Mode = mode
	obs.Environment = c.Telemetry.Environment
	obs.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obs.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	obs.OTLPInsecure = c.Telemetry.OTLPInsecure
	obs.SampleRatio = c.Telemetry.SampleRatio
	obs.DebugTrace = c.Telemetry.DebugTrace
	obs.TraceVerbose = c.Telemetry.TraceVerbose
	obs.LogJSON = c.Logging.Format == "json"

	level, err := observability.ParseLevel(c.Logging.Level)
	if err == nil {
		obs.LogLevel = level
	}

	return obs
}
