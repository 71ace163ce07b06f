// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jcodagnone/basketopt/basket"
	"github.com/jcodagnone/basketopt/spatial"
	"github.com/spf13/cobra"
)

var allocateOptions struct {
	strategy string
	radius   float64
	index    string
	budget   time.Duration
	workers  int
	greedy   bool
}

var allocateCmd = &cobra.Command{
	Use:   "allocate [file]",
	Short: "Group a JSON array of orders into baskets",
	Long: `Reads a JSON array of {"latitude", "longitude"} orders from file, or from
stdin when no file is given, and prints the baskets as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := basket.ParseStrategy(allocateOptions.strategy)
		if err != nil {
			return err
		}

		index, err := spatial.ParseIndexKind(allocateOptions.index)
		if err != nil {
			return err
		}

		var in io.Reader = cmd.InOrStdin()

		if len(args) == 1 {
			f, err := os.Open(args[0]) // #nosec G304 - path is provided by the operator
			if err != nil {
				return fmt.Errorf("opening orders: %w", err)
			}
			defer f.Close()

			in = f
		}

		points, err := readOrders(in)
		if err != nil {
			return err
		}

		allocation, err := basket.Allocate(cmd.Context(), points, basket.Options{
			Strategy:     strategy,
			RadiusKm:     allocateOptions.radius,
			Index:        index,
			Workers:      allocateOptions.workers,
			SolverBudget: allocateOptions.budget,
			DisableExact: allocateOptions.greedy,
		})
		if err != nil {
			return err
		}

		log.Printf("Allocated %d orders into %d baskets - strategy=%s radius=%.3fkm solver=%q optimal=%t candidates=%d elapsed=%s",
			len(points), len(allocation.Baskets), allocation.Strategy, allocation.RadiusKm,
			allocation.Solver, allocation.Optimal, allocation.Candidates, allocation.Elapsed)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if err := enc.Encode(allocation.Baskets); err != nil {
			return fmt.Errorf("writing baskets: %w", err)
		}

		return nil
	},
}

// readOrders decodes and validates a JSON array of points.
func readOrders(r io.Reader) ([]spatial.Point, error) {
	var points []spatial.Point
	if err := json.NewDecoder(r).Decode(&points); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}

	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("order %d: %w", i, err)
		}
	}

	return points, nil
}

func init() {
	rootCmd.AddCommand(allocateCmd)

	allocateCmd.Flags().StringVar(&allocateOptions.strategy, "strategy", string(basket.StrategyOptimalCover),
		"Allocation strategy: optimal-cover, diameter-greedy or density-cluster")
	allocateCmd.Flags().Float64Var(&allocateOptions.radius, "radius", 0,
		"Basket radius in km. Defaults to the strategy's radius")
	allocateCmd.Flags().StringVar(&allocateOptions.index, "index", string(spatial.IndexKDTree),
		"Spatial index: kdtree, rtree or h3")
	allocateCmd.Flags().DurationVar(&allocateOptions.budget, "budget", basket.DefaultSolverBudget,
		"Time allowed to the exact cover solver")
	allocateCmd.Flags().IntVar(&allocateOptions.workers, "workers", 0,
		"Candidate generation workers. Defaults to the number of CPUs")
	allocateCmd.Flags().BoolVar(&allocateOptions.greedy, "greedy", false,
		"Skip the exact solver and cover greedily")
}
