// Package config loads the reference binary's startup configuration
// from environment variables and an optional .env file, using viper
// for layered precedence (env > .env > defaults).
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds the reference binary's startup configuration.
type Config struct {
	RulesetPath string // path to the ruleset JSON file to compile and install
	LogLevel    string // zerolog level name: debug, info, warn, error
	DebugTrace  bool   // installed as compile_ruleset(debug=true)
	MetricsAddr string // bind address for the Prometheus /metrics endpoint
	SamplePath  string // optional path to a JSON array of sample request contexts to select against at startup
}

// Load reads configuration from environment variables and .env (if
// present). Environment variables take precedence over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	_ = v.ReadInConfig() // .env is optional; ignore a missing file
	v.AutomaticEnv()

	setDefaults(v)

	return &Config{
		RulesetPath: v.GetString("GWSELECT_RULESET_PATH"),
		LogLevel:    v.GetString("GWSELECT_LOG_LEVEL"),
		DebugTrace:  v.GetBool("GWSELECT_DEBUG_TRACE"),
		MetricsAddr: v.GetString("GWSELECT_METRICS_ADDR"),
		SamplePath:  v.GetString("GWSELECT_SAMPLE_REQUESTS_PATH"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GWSELECT_RULESET_PATH", "ruleset.json")
	v.SetDefault("GWSELECT_LOG_LEVEL", "info")
	v.SetDefault("GWSELECT_DEBUG_TRACE", false)
	v.SetDefault("GWSELECT_METRICS_ADDR", ":9090")
	v.SetDefault("GWSELECT_SAMPLE_REQUESTS_PATH", "")
}

// ValidationError describes one field that failed Validate.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed [%s]: %s", e.Field, e.Message)
}

// Validate checks that c is ready for startup.
func (c *Config) Validate() error {
	if c.RulesetPath == "" {
		return ValidationError{Field: "GWSELECT_RULESET_PATH", Message: "ruleset path cannot be empty"}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ValidationError{Field: "GWSELECT_LOG_LEVEL", Message: fmt.Sprintf("unrecognized level %q", c.LogLevel)}
	}
	if c.MetricsAddr == "" {
		return ValidationError{Field: "GWSELECT_METRICS_ADDR", Message: "metrics address cannot be empty"}
	}
	return nil
}
