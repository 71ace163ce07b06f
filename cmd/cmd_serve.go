// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/basketopt/basket"
	"github.com/jcodagnone/basketopt/region"
	"github.com/jcodagnone/basketopt/server"
	"github.com/spf13/cobra"
)

var serveOptions struct {
	addr    string
	regions string
	budget  time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the basket and order generation API",
	Long: `Serves the HTTP API. Flags fall back to BASKETOPT_ADDR, BASKETOPT_REGIONS
and BASKETOPT_SOLVER_BUDGET, which may also be set in a .env file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		loadEnv()

		if mode := os.Getenv(gin.EnvGinMode); mode != "" {
			gin.SetMode(mode)
		}

		stringFromEnv(cmd, "addr", &serveOptions.addr, envAddr)
		stringFromEnv(cmd, "regions-file", &serveOptions.regions, envRegions)

		if err := durationFromEnv(cmd, "budget", &serveOptions.budget, envSolverBudget); err != nil {
			return err
		}

		provider := region.NewProvider(serveOptions.regions)
		if regions, err := provider.Regions(); err != nil {
			log.Printf("Regions unavailable, order generation will fail - %v", err)
		} else {
			log.Printf("Loaded %d regions from %s", len(regions), serveOptions.regions)
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		srv := server.NewServer(provider, server.Options{SolverBudget: serveOptions.budget})

		return srv.Run(ctx, serveOptions.addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOptions.addr, "addr", ":8000", "Address to listen on")
	serveCmd.Flags().StringVar(&serveOptions.regions, "regions-file", defaultRegionsFile, "GeoJSON file with the named regions")
	serveCmd.Flags().DurationVar(&serveOptions.budget, "budget", basket.DefaultSolverBudget,
		"Time allowed to the exact cover solver per request")
}
