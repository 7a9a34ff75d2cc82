// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the service reads
const EnvPrefix = "COVER_SERVICE"

// Config holds all configuration for the service
type Config struct {
	// Server configuration
	Port     int `mapstructure:"port"`
	HTTPPort int `mapstructure:"http_port"`

	// Assets
	AssetsDir string `mapstructure:"assets_dir"`
	CacheDir  string `mapstructure:"cache_dir"`
	Model     string `mapstructure:"model"`
	Labels    string `mapstructure:"labels"`

	// Classification
	ImageSize  int    `mapstructure:"image_size"`
	LinkBase   string `mapstructure:"link_base"`
	ORTLibrary string `mapstructure:"ort_library"`
	InputName  string `mapstructure:"input_name"`
	OutputName string `mapstructure:"output_name"`

	// Prediction cache; empty Redis disables it
	Redis    string        `mapstructure:"redis"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`

	// OpenTelemetry configuration
	OTELEnabled  bool   `mapstructure:"otel_enabled"`
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	// Feature flags
	UseMockInference bool   `mapstructure:"use_mock_inference"`
	LogMode          string `mapstructure:"log_mode"`
}

func newViper() *viper.Viper {
	v := viper.New()

	// Set defaults
	v.SetDefault("port", 50051)
	v.SetDefault("http_port", 8080)
	v.SetDefault("assets_dir", "assets")
	v.SetDefault("cache_dir", "")
	v.SetDefault("model", "resnet_full_aware_i8.onnx")
	v.SetDefault("labels", "classes.txt")
	v.SetDefault("image_size", 224)
	v.SetDefault("link_base", "http://nilf.it/")
	v.SetDefault("ort_library", "")
	v.SetDefault("input_name", "")
	v.SetDefault("output_name", "")
	v.SetDefault("redis", "")
	v.SetDefault("cache_ttl", "24h")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("use_mock_inference", false)
	v.SetDefault("log_mode", "debug")

	// Environment variable configuration
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Keys whose env names differ from the key
	_ = v.BindEnv("use_mock_inference", EnvPrefix+"_USE_MOCK", EnvPrefix+"_USE_MOCK_INFERENCE")
	_ = v.BindEnv("otel_endpoint", EnvPrefix+"_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = v.BindEnv("ort_library", EnvPrefix+"_ORT_LIBRARY", "ONNXRUNTIME_LIB")

	return v
}

// Load loads configuration from environment variables and an optional config file.
// Priority (highest to lowest): env vars > config file > defaults
func Load() (*Config, error) {
	v := newViper()

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/cover-service/")
	v.AddConfigPath("$HOME/.cover-service")

	// Read config file if present (ignore error if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadWithConfigFile loads configuration from a specific config file
func LoadWithConfigFile(configPath string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configPath, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A standard OTLP endpoint alone turns tracing on
	if cfg.OTELEndpoint != "" {
		cfg.OTELEnabled = true
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.HTTPPort)
	}
	if c.Port == c.HTTPPort {
		return fmt.Errorf("port and http_port must be different")
	}
	if c.ImageSize <= 0 {
		return fmt.Errorf("invalid image size: %d", c.ImageSize)
	}
	if c.Labels == "" {
		return fmt.Errorf("labels file is required")
	}
	if c.Model == "" && !c.UseMockInference {
		return fmt.Errorf("model path is required when not using mock inference")
	}
	if c.Redis != "" && c.CacheTTL <= 0 {
		return fmt.Errorf("cache_ttl must be positive when redis is set, got %s", c.CacheTTL)
	}
	return nil
}
