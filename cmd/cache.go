package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/enzoomoreira/bacen-data-analysis/pkg/bacen"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Identity-cache introspection",
	Long:  "Inspects the in-process identity cache. The cache lives for one invocation here; against a running server use the /v1/admin/cache endpoints instead.",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [identifier...]",
	Short: "Resolve the given identifiers, then print cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		// Warm-up resolves are tolerant: a bad identifier is reported,
		// not fatal, so the stats still come out.
		for _, id := range args {
			if _, err := a.Resolve(ctx, id); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %s: %v\n", id, err)
			}
		}

		return printJSON(struct {
			Cache   bacen.CacheStats `json:"cache"`
			Lookups int64            `json:"lookups"`
		}{a.CacheStats(), a.Lookups()})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the identity cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initAnalyzer(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		a.ClearCache()
		return printJSON(struct {
			Status string           `json:"status"`
			Cache  bacen.CacheStats `json:"cache"`
		}{"cleared", a.CacheStats()})
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
