// Package config loads bedrockscan configuration from file, environment,
// and defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for bedrockscan.
type Config struct {
	Region     string         `mapstructure:"region"`
	Timeout    string         `mapstructure:"timeout"`
	TestPrompt string         `mapstructure:"test_prompt"`
	MaxTokens  int            `mapstructure:"max_tokens"`
	RateLimit  float64        `mapstructure:"rate_limit"`
	Output     string         `mapstructure:"output"`
	ErrorLog   string         `mapstructure:"error_log"`
	Limit      int            `mapstructure:"limit"`
	LogLevel   string         `mapstructure:"log_level"`
	AWS        AWSConfig      `mapstructure:"aws"`
	Runtime    EndpointConfig `mapstructure:"runtime"`
	Mantle     EndpointConfig `mapstructure:"mantle"`
}

// AWSConfig holds optional static credentials. When empty, the SDK default
// credential chain applies.
type AWSConfig struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// EndpointConfig overrides an OpenAI-compatible endpoint base URL.
type EndpointConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// RuntimeBaseURL returns the OpenAI-compatible bedrock-runtime endpoint.
func (c *Config) RuntimeBaseURL() string {
	if c.Runtime.BaseURL != "" {
		return c.Runtime.BaseURL
	}
	return fmt.Sprintf("https://bedrock-runtime.%s.amazonaws.com/openai/v1", c.Region)
}

// MantleBaseURL returns the bedrock-mantle endpoint.
func (c *Config) MantleBaseURL() string {
	if c.Mantle.BaseURL != "" {
		return c.Mantle.BaseURL
	}
	return fmt.Sprintf("https://bedrock-mantle.%s.api.aws/v1", c.Region)
}

// ProbeTimeout parses the per-probe timeout, defaulting to 30s on a bad or
// missing value.
func (c *Config) ProbeTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("region", "us-east-1")
	v.SetDefault("timeout", "30s")
	v.SetDefault("test_prompt", "Hi")
	v.SetDefault("max_tokens", 10)
	v.SetDefault("rate_limit", 0) // 0 disables probe rate limiting
	v.SetDefault("output", "bedrock_compatibility_matrix.csv")
	v.SetDefault("error_log", "bedrock_errors.log")
	v.SetDefault("limit", -1)
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/bedrockscan")
	}

	// Environment variables
	v.SetEnvPrefix("BEDROCKSCAN")
	v.AutomaticEnv()

	// Bind specific env vars
	_ = v.BindEnv("region", "AWS_REGION")
	_ = v.BindEnv("aws.access_key", "BEDROCKSCAN_AWS_ACCESS_KEY")
	_ = v.BindEnv("aws.secret_key", "BEDROCKSCAN_AWS_SECRET_KEY")
	_ = v.BindEnv("runtime.base_url", "BEDROCKSCAN_RUNTIME_BASE_URL")
	_ = v.BindEnv("mantle.base_url", "BEDROCKSCAN_MANTLE_BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
