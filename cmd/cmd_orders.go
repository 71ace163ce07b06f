// Copyright 2025 The Basketopt Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/jcodagnone/basketopt/region"
	"github.com/spf13/cobra"
)

var regionsFile string

var ordersOptions struct {
	regions []string
	count   int
	seed    int64
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Print synthetic orders sampled inside named regions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider := openRegions(cmd)

		regions, err := provider.Find(ordersOptions.regions...)
		if err != nil {
			return err
		}

		points, err := region.Sampler{Rand: newRand(ordersOptions.seed)}.Sample(regions, ordersOptions.count)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		if err := enc.Encode(points); err != nil {
			return fmt.Errorf("writing orders: %w", err)
		}

		return nil
	},
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the named regions orders can be sampled from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		regions, err := openRegions(cmd).Regions()
		if err != nil {
			return err
		}

		if len(regions) == 0 {
			return errors.New("no regions found")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tPOLYGONS")

		for _, r := range regions {
			fmt.Fprintf(w, "%s\t%s\t%d\n", r.Name, r.Type, len(r.Polygons()))
		}

		return w.Flush()
	},
}

// openRegions returns a provider over --regions-file, falling back to
// BASKETOPT_REGIONS.
func openRegions(cmd *cobra.Command) *region.Provider {
	loadEnv()
	stringFromEnv(cmd, "regions-file", &regionsFile, envRegions)

	return region.NewProvider(regionsFile)
}

// newRand seeds from the clock when seed is zero.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return rand.New(rand.NewSource(seed)) // #nosec G404 - synthetic data
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	rootCmd.AddCommand(regionsCmd)

	for _, c := range []*cobra.Command{ordersCmd, regionsCmd} {
		c.Flags().StringVar(&regionsFile, "regions-file", defaultRegionsFile, "GeoJSON file with the named regions")
	}

	ordersCmd.Flags().StringSliceVar(&ordersOptions.regions, "regions", nil, "Names of the regions to sample from")
	ordersCmd.Flags().IntVar(&ordersOptions.count, "count", region.DefaultSampleCount, "Number of orders")
	ordersCmd.Flags().Int64Var(&ordersOptions.seed, "seed", 0, "Random seed. Zero seeds from the clock")

	if err := ordersCmd.MarkFlagRequired("regions"); err != nil {
		panic(err)
	}
}
