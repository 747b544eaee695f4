// Package config provides YAML configuration parsing for QueueBoard.
//
// This package enables running QueueBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Branch 12
//	port: 8080
//	servers: 3
//	log_level: info
//
//	driver:
//	  url: ${QUEUEBOARD_URL:-http://localhost:8080}
//	  arrival_rate: 6
//	  service_rate: 2
//	  tick: 1s
//	  duration: 10m
//	  stop_at_end: true
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort       = 8080
	defaultTitle      = "QueueBoard"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultDriverTick = time.Second
)

// minDriverTick is the smallest tick a driver may use. Shorter ticks turn
// the driver into a request flood against the server.
const minDriverTick = 100 * time.Millisecond

// Config is the root configuration structure for QueueBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "QueueBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// Servers initializes a run with this many servers at startup.
	// Zero leaves initialization to clients.
	Servers int `yaml:"servers"`

	// LogLevel is a logrus level name. Defaults to "info".
	LogLevel string `yaml:"log_level"`

	// LogFormat is "text" or "json". Defaults to "text".
	LogFormat string `yaml:"log_format"`

	// Driver configures the load driver used by the drive command.
	Driver *DriverConfig `yaml:"driver"`
}

// DriverConfig defines synthetic traffic against a running server.
type DriverConfig struct {
	// URL is the base URL of the QueueBoard server.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	// Defaults to http://localhost:<port>.
	URL string `yaml:"url"`

	// Timeout is the per-request timeout. Defaults to 5s.
	Timeout Duration `yaml:"timeout"`

	// ArrivalRate is the mean number of arrivals per minute.
	ArrivalRate float64 `yaml:"arrival_rate"`

	// ServiceRate is the mean number of completions per minute per busy server.
	ServiceRate float64 `yaml:"service_rate"`

	// Tick is the interval between traffic rounds. Defaults to 1s.
	Tick Duration `yaml:"tick"`

	// Duration ends the drive. Zero runs until interrupted.
	Duration Duration `yaml:"duration"`

	// Servers initializes a new run before driving when positive.
	Servers int `yaml:"servers"`

	// StopAtEnd stops the run when Duration elapses.
	StopAtEnd bool `yaml:"stop_at_end"`

	// Seed makes the traffic reproducible. A random seed is used if unset.
	Seed *uint64 `yaml:"seed"`

	// MaxConcurrency bounds concurrent departures per tick. Defaults to 1.
	MaxConcurrency int `yaml:"max_concurrency"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Returns an error if the file cannot be read, parsed or validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Defaults are applied for Title, Port, LogLevel, LogFormat and the driver
// Tick and URL. Environment variables are expanded in the driver URL.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Title == "" {
		cfg.Title = defaultTitle
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaultLogFormat
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Servers < 0 {
		return fmt.Errorf("servers cannot be negative, got %d", c.Servers)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}

	if c.Driver != nil {
		if err := c.Driver.expandAndValidate(c.Port); err != nil {
			return fmt.Errorf("driver: %w", err)
		}
	}

	return nil
}

func (d *DriverConfig) expandAndValidate(port int) error {
	if d.URL == "" {
		d.URL = fmt.Sprintf("http://localhost:%d", port)
	}
	expanded, err := expandEnvVars(d.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	d.URL = expanded

	parsedURL, err := url.Parse(d.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return errors.New("url must have a host")
	}

	if d.Tick == 0 {
		d.Tick = Duration(defaultDriverTick)
	}
	if d.Tick.Duration() < minDriverTick {
		return fmt.Errorf("tick must be at least %s, got %s", minDriverTick, d.Tick.Duration())
	}

	if d.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", d.Timeout.Duration())
	}
	if d.Duration.Duration() < 0 {
		return fmt.Errorf("duration cannot be negative, got %s", d.Duration.Duration())
	}
	if d.ArrivalRate < 0 {
		return fmt.Errorf("arrival_rate cannot be negative, got %g", d.ArrivalRate)
	}
	if d.ServiceRate < 0 {
		return fmt.Errorf("service_rate cannot be negative, got %g", d.ServiceRate)
	}
	if d.Servers < 0 {
		return fmt.Errorf("servers cannot be negative, got %d", d.Servers)
	}
	if d.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative, got %d", d.MaxConcurrency)
	}

	return nil
}
