// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	envAddr         = "BASKETOPT_ADDR"
	envRegions      = "BASKETOPT_REGIONS"
	envSolverBudget = "BASKETOPT_SOLVER_BUDGET"

	defaultRegionsFile = "coordinates.json"
)

// loadEnv reads .env from the working directory into the process
// environment. Variables already set are left alone.
func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using the process environment")
	}
}

// stringFromEnv overrides value with the environment variable key unless the
// flag was given on the command line.
func stringFromEnv(cmd *cobra.Command, flag string, value *string, key string) {
	if cmd.Flags().Changed(flag) {
		return
	}

	if v, ok := os.LookupEnv(key); ok && v != "" {
		*value = v
	}
}

// durationFromEnv is stringFromEnv for durations such as "1500ms".
func durationFromEnv(cmd *cobra.Command, flag string, value *time.Duration, key string) error {
	if cmd.Flags().Changed(flag) {
		return nil
	}

	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}

	*value = d

	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigChan:
			log.Println("Received termination signal, starting graceful shutdown...")
			cancel()
		case <-ctx.Done():
		}

		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
