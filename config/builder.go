package config

import (
	"errors"
	"math/rand/v2"
	"os"

	"github.com/jpalmerr/queueboard"
	"github.com/jpalmerr/queueboard/internal/driver"
	"github.com/sirupsen/logrus"
)

// BuildLogger creates a logrus logger writing to stderr at the configured
// level and format.
func BuildLogger(cfg *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	// Parse has already validated the level
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

// BuildOptions converts parsed configuration into SDK options.
func BuildOptions(cfg *Config, logger logrus.FieldLogger) []queueboard.Option {
	opts := []queueboard.Option{
		queueboard.WithPort(cfg.Port),
		queueboard.WithTitle(cfg.Title),
	}
	if cfg.Servers > 0 {
		opts = append(opts, queueboard.WithServers(cfg.Servers))
	}
	if logger != nil {
		opts = append(opts, queueboard.WithLogger(logger))
	}
	return opts
}

// BuildDriverConfig converts the driver section into a driver configuration.
//
// A random seed is drawn when the configuration does not fix one.
func BuildDriverConfig(cfg *Config) (driver.Config, error) {
	dc := cfg.Driver
	if dc == nil {
		return driver.Config{}, errors.New("config has no driver section")
	}

	seed := rand.Uint64()
	if dc.Seed != nil {
		seed = *dc.Seed
	}

	return driver.Config{
		ArrivalRate:    dc.ArrivalRate,
		ServiceRate:    dc.ServiceRate,
		Tick:           dc.Tick.Duration(),
		Duration:       dc.Duration.Duration(),
		Servers:        dc.Servers,
		StopAtEnd:      dc.StopAtEnd,
		Seed:           seed,
		MaxConcurrency: dc.MaxConcurrency,
	}, nil
}
