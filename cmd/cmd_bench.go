// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jcodagnone/basketopt/basket"
	"github.com/jcodagnone/basketopt/region"
	"github.com/jcodagnone/basketopt/spatial"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var benchOptions struct {
	regions []string
	sizes   []int
	seed    int64
	budget  time.Duration
	indexes []string
}

type benchResult struct {
	size       int
	strategy   basket.Strategy
	index      spatial.IndexKind
	allocation *basket.Allocation
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare strategies and indexes over sampled orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider := openRegions(cmd)

		var (
			regions []*region.Region
			err     error
		)

		if len(benchOptions.regions) == 0 {
			regions, err = provider.Regions()
		} else {
			regions, err = provider.Find(benchOptions.regions...)
		}

		if err != nil {
			return err
		}

		indexes := make([]spatial.IndexKind, 0, len(benchOptions.indexes))
		for _, name := range benchOptions.indexes {
			kind, err := spatial.ParseIndexKind(name)
			if err != nil {
				return err
			}

			indexes = append(indexes, kind)
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		total := len(benchOptions.sizes) * len(basket.Strategies) * len(indexes)

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Benchmarking"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		sampler := region.Sampler{Rand: newRand(benchOptions.seed)}
		results := make([]benchResult, 0, total)

		for _, size := range benchOptions.sizes {
			points, err := sampler.Sample(regions, size)
			if err != nil {
				return fmt.Errorf("sampling %d orders: %w", size, err)
			}

			for _, strategy := range basket.Strategies {
				for _, index := range indexes {
					allocation, err := basket.Allocate(ctx, points, basket.Options{
						Strategy:     strategy,
						Index:        index,
						SolverBudget: benchOptions.budget,
					})
					if err != nil {
						return fmt.Errorf("%s/%s over %d orders: %w", strategy, index, size, err)
					}

					results = append(results, benchResult{size: size, strategy: strategy, index: index, allocation: allocation})

					if bar == nil {
						log.Printf("Ran %s/%s over %d orders in %s", strategy, index, size, allocation.Elapsed)
					} else if err := bar.Add(1); err != nil {
						return fmt.Errorf("updating progress bar: %w", err)
					}
				}
			}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "ORDERS\tSTRATEGY\tINDEX\tRADIUS\tCANDIDATES\tBASKETS\tSOLVER\tOPTIMAL\tELAPSED\t")

		for _, r := range results {
			a := r.allocation
			fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%d\t%d\t%s\t%t\t%s\t\n",
				r.size, r.strategy, r.index, a.RadiusKm, a.Candidates, len(a.Baskets),
				solverName(a.Solver), a.Optimal, a.Elapsed.Round(time.Microsecond))
		}

		return w.Flush()
	},
}

func solverName(m basket.SolverMethod) string {
	if m == "" {
		return "-"
	}

	return string(m)
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&regionsFile, "regions-file", defaultRegionsFile, "GeoJSON file with the named regions")
	benchCmd.Flags().StringSliceVar(&benchOptions.regions, "regions", nil, "Regions to sample from. Defaults to every region")
	benchCmd.Flags().IntSliceVar(&benchOptions.sizes, "sizes", []int{100, 500, 1000}, "Order counts to run")
	benchCmd.Flags().Int64Var(&benchOptions.seed, "seed", 1, "Random seed. Zero seeds from the clock")
	benchCmd.Flags().DurationVar(&benchOptions.budget, "budget", basket.DefaultSolverBudget,
		"Time allowed to the exact cover solver per run")
	benchCmd.Flags().StringSliceVar(&benchOptions.indexes, "indexes",
		[]string{string(spatial.IndexKDTree), string(spatial.IndexRTree), string(spatial.IndexH3)},
		"Spatial indexes to compare")
}
