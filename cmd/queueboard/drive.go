package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jpalmerr/queueboard/config"
	"github.com/jpalmerr/queueboard/internal/driver"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"k8s.io/utils/clock"
)

// driveCmd generates synthetic traffic against a running server.
var driveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Generate traffic against a running server",
	Long: `Drive a running QueueBoard server with synthetic customers.

Each tick the driver draws a Poisson number of arrivals at arrival_rate per
minute and completes each busy server with probability 1 - exp(-service_rate*tick).
The driver section of the config file is required.

The drive runs until its duration elapses, or until interrupted.

Example:
  queueboard drive -c config.yaml`,
	RunE: runDrive,
}

func init() {
	rootCmd.AddCommand(driveCmd)

	driveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = driveCmd.MarkFlagRequired("config")
}

// driveTally counts outcomes per action.
type driveTally struct {
	calls  map[driver.Action]int
	errors int
}

func (t *driveTally) add(r driver.Result) {
	t.calls[r.Action]++
	if r.Err != nil {
		t.errors++
	}
}

func runDrive(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	dc, err := config.BuildDriverConfig(cfg)
	if err != nil {
		return err
	}

	logger := config.BuildLogger(cfg)
	logger.WithFields(logrus.Fields{
		"url":          cfg.Driver.URL,
		"arrival_rate": dc.ArrivalRate,
		"service_rate": dc.ServiceRate,
		"tick":         dc.Tick.String(),
		"seed":         dc.Seed,
	}).Info("driver starting")

	client := driver.NewClient(cfg.Driver.URL, cfg.Driver.Timeout.Duration())
	d, err := driver.New(dc, client, clock.RealClock{}, logger)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d.Start(ctx)
	tally := drain(d.Results(), logger)
	d.Stop()

	logger.WithFields(logrus.Fields{
		"arrivals":   tally.calls[driver.ActionArrival],
		"departures": tally.calls[driver.ActionDeparture],
		"errors":     tally.errors,
	}).Info("driver finished")
	return nil
}

// drain logs every result until the channel closes.
func drain(results <-chan driver.Result, logger logrus.FieldLogger) *driveTally {
	tally := &driveTally{calls: make(map[driver.Action]int)}
	for r := range results {
		tally.add(r)

		entry := logger.WithFields(logrus.Fields{
			"action":     r.Action,
			"latency_ms": r.Latency.Milliseconds(),
		})
		if r.ServerIndex >= 0 {
			entry = entry.WithField("server_index", r.ServerIndex)
		}
		if r.Err != nil {
			entry.WithError(r.Err).Warn("driver call failed")
		} else {
			entry.Debug("driver call completed")
		}
	}
	return tally
}
