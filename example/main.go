package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/queueboard"
	"github.com/jpalmerr/queueboard/internal/driver"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

const port = 8080

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	qb, err := queueboard.New(
		queueboard.WithPort(port),
		queueboard.WithTitle("QueueBoard Demo"),
		queueboard.WithServers(3),
		queueboard.WithLogger(logger),
		queueboard.WithEventCallback(func(e queueboard.Event) {
			if e.Action == "departure" {
				logger.WithFields(logrus.Fields{
					"server":    e.ServerIndex + 1,
					"completed": e.Completed,
					"waiting":   len(e.Queue),
				}).Info("customer served")
			}
		}),
	)
	if err != nil {
		logger.WithError(err).Fatal("failed to create queueboard")
	}

	fmt.Println()
	fmt.Println("  QueueBoard Demo")
	fmt.Printf("  Open http://localhost:%d in your browser\n", port)
	fmt.Println("  3 servers, ~8 arrivals/min, ~3 completions/min per server")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// drive synthetic traffic once the server is listening
	go func() {
		time.Sleep(200 * time.Millisecond)

		client := driver.NewClient(fmt.Sprintf("http://localhost:%d", port), 0)
		d, err := driver.New(driver.Config{
			ArrivalRate: 8,
			ServiceRate: 3,
			Tick:        time.Second,
			Seed:        uint64(time.Now().UnixNano()),
		}, client, clock.RealClock{}, logger)
		if err != nil {
			logger.WithError(err).Error("failed to create driver")
			return
		}
		d.Start(ctx)
		for r := range d.Results() {
			if r.Err != nil {
				logger.WithError(r.Err).WithField("action", r.Action).Warn("driver call failed")
			}
		}
		d.Stop()
	}()

	if err := qb.Start(ctx); err != nil {
		logger.WithError(err).Error("queueboard stopped with error")
		os.Exit(1)
	}
}
