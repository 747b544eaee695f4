package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/queueboard/internal/driver"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// executeCmd runs the root command with args and returns captured output.
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestRunValidate_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
title: Branch 12
port: 8081
servers: 3
driver:
  url: http://localhost:8081
  arrival_rate: 6
  service_rate: 2
  tick: 2s
`)

	output, err := executeCmd(t, "validate", "-c", path)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}

	expectedPhrases := []string{
		"Config is valid!",
		"Title:   Branch 12",
		"Port:    8081",
		"Servers: 3",
		"Logging: info (text)",
		"http://localhost:8081, λ=6/min μ=2/min every 2s",
	}
	for _, phrase := range expectedPhrases {
		if !strings.Contains(output, phrase) {
			t.Errorf("output missing %q\nGot: %s", phrase, output)
		}
	}
}

func TestRunValidate_NoDriver(t *testing.T) {
	path := writeConfig(t, "port: 8082\n")

	output, err := executeCmd(t, "validate", "-c", path)
	if err != nil {
		t.Fatalf("validate command error = %v", err)
	}
	if !strings.Contains(output, "Driver:  not configured") {
		t.Errorf("output missing driver line\nGot: %s", output)
	}
}

func TestRunValidate_InvalidConfig(t *testing.T) {
	path := writeConfig(t, "port: 70000\n")

	_, err := executeCmd(t, "validate", "-c", path)
	if err == nil {
		t.Fatal("validate command should fail for invalid config")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error = %q, want to contain 'invalid config'", err.Error())
	}
}

func TestRunValidate_MissingFile(t *testing.T) {
	_, err := executeCmd(t, "validate", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("validate command should fail for a missing file")
	}
}

func TestVersionCmd(t *testing.T) {
	output, err := executeCmd(t, "version")
	if err != nil {
		t.Fatalf("version command error = %v", err)
	}
	if !strings.Contains(output, "queueboard dev") {
		t.Errorf("output = %q, want to contain 'queueboard dev'", output)
	}
}

func TestRunDrive_RequiresDriverSection(t *testing.T) {
	path := writeConfig(t, "port: 8083\n")

	_, err := executeCmd(t, "drive", "-c", path)
	if err == nil {
		t.Fatal("drive command should fail without a driver section")
	}
	if !strings.Contains(err.Error(), "no driver section") {
		t.Errorf("error = %q, want to mention the driver section", err.Error())
	}
}

func TestDrain_TalliesResults(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	results := make(chan driver.Result, 4)
	results <- driver.Result{Action: driver.ActionArrival, ServerIndex: -1, Latency: time.Millisecond}
	results <- driver.Result{Action: driver.ActionArrival, ServerIndex: -1}
	results <- driver.Result{Action: driver.ActionDeparture, ServerIndex: 1}
	results <- driver.Result{Action: driver.ActionDeparture, ServerIndex: 0, Err: errors.New("boom")}
	close(results)

	tally := drain(results, logger)

	if tally.calls[driver.ActionArrival] != 2 {
		t.Errorf("arrivals = %d, want 2", tally.calls[driver.ActionArrival])
	}
	if tally.calls[driver.ActionDeparture] != 2 {
		t.Errorf("departures = %d, want 2", tally.calls[driver.ActionDeparture])
	}
	if tally.errors != 1 {
		t.Errorf("errors = %d, want 1", tally.errors)
	}

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Message == "driver call failed" {
			warned = true
			if e.Data["server_index"] != 0 {
				t.Errorf("server_index = %v, want 0", e.Data["server_index"])
			}
		}
	}
	if !warned {
		t.Error("failed call should be logged")
	}
}
