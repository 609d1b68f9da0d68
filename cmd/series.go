package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/enzoomoreira/bacen-data-analysis/internal/export"
	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/pkg/bacen"
)

var seriesCmd = &cobra.Command{
	Use:   "series",
	Short: "Time series over accounting or indicator data",
}

var (
	serSource    string
	serAccount   string
	serLabel     string
	serDates     []int
	serFrom      int
	serTo        int
	serQuarterly bool
	serKind      string
	serDocs      []int
	serScope     string
	serKeep      bool
	serFill      float64
	serZeros     bool
	serOut       string
	serOutFile   string
)

var seriesGetCmd = &cobra.Command{
	Use:   "get <identifier>",
	Short: "Build one time series",
	Long:  "Observes one account of one institution across a date range. Missing observations are dropped unless --keep-missing or --fill-value asks otherwise.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		dates, err := resolveDates(serDates, serFrom, serTo, serQuarterly)
		if err != nil {
			return err
		}
		sel := model.ParseAccountSelector(serAccount)
		if sel.IsZero() {
			return eris.New("--account is required")
		}

		req := bacen.SeriesRequest{
			Identifier: args[0],
			Label:      serLabel,
			Source:     model.Source(serSource),
			Account:    sel,
			Dates:      dates,
			Kind:       model.LedgerKind(serKind),
			Documents:  serDocs,
			Scope:      model.Scope(serScope),
			Missing:    missingPolicy(cmd),
		}

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		points, err := a.Series(ctx, req)
		if err != nil {
			return err
		}

		if serOut == "json" {
			return printJSON(points)
		}
		return emitTable(export.FromSeriesPoints(points), serOut, serOutFile)
	},
}

var seriesBatchFile string

var seriesBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run many series requests concurrently",
	Long: `Reads a YAML list of series requests and fetches them with bounded
concurrency. Requests that fail for entity- or data-level reasons are
reported as warnings; the rest of the batch still completes. Example file:

  - identifier: itau
    source: cosif
    kind: prudencial
    account: "10000007"
    dates: [202312, 202403]
  - identifier: "00.360.305/0001-04"
    source: ifdata
    account: Índice de Basileia
    dates: [202312, 202403]`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(seriesBatchFile)
		if err != nil {
			return eris.Wrapf(err, "read requests %s", seriesBatchFile)
		}
		var reqs []bacen.SeriesRequest
		if err := yaml.Unmarshal(raw, &reqs); err != nil {
			return eris.Wrapf(err, "parse requests %s", seriesBatchFile)
		}

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.SeriesBatch(ctx, reqs)
		if err != nil {
			return err
		}
		for _, w := range result.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}

		if serOut == "json" {
			return printJSON(result)
		}
		return emitTable(export.FromSeriesPoints(result.Points), serOut, serOutFile)
	},
}

// missingPolicy translates the missing-data flags; nil keeps the default
// drop behavior.
func missingPolicy(cmd *cobra.Command) *model.MissingPolicy {
	fillSet := cmd.Flags().Changed("fill-value")
	if !serKeep && !serZeros && !fillSet {
		return nil
	}
	p := &model.MissingPolicy{Keep: serKeep, ZerosAsMissing: serZeros}
	if fillSet {
		v := serFill
		p.FillValue = &v
	}
	return p
}

func init() {
	seriesGetCmd.Flags().StringVar(&serSource, "source", "cosif", "data source: cosif or ifdata")
	seriesGetCmd.Flags().StringVar(&serAccount, "account", "", "account code or name")
	seriesGetCmd.Flags().StringVar(&serLabel, "label", "", "series label (default: the account text)")
	seriesGetCmd.Flags().IntSliceVar(&serDates, "dates", nil, "reference dates, YYYYMM (repeatable)")
	seriesGetCmd.Flags().IntVar(&serFrom, "from", 0, "range start, YYYYMM")
	seriesGetCmd.Flags().IntVar(&serTo, "to", 0, "range end, YYYYMM")
	seriesGetCmd.Flags().BoolVar(&serQuarterly, "quarterly", false, "keep only quarter-end months of --from/--to")
	seriesGetCmd.Flags().StringVar(&serKind, "kind", "individual", "ledger kind, cosif only: individual or prudencial")
	seriesGetCmd.Flags().IntSliceVar(&serDocs, "documents", nil, "report-document codes, cosif only")
	seriesGetCmd.Flags().StringVar(&serScope, "scope", "", "pin one scope, ifdata only (default: cascade)")
	seriesGetCmd.Flags().BoolVar(&serKeep, "keep-missing", false, "keep dates with no observation instead of dropping them")
	seriesGetCmd.Flags().Float64Var(&serFill, "fill-value", 0, "replace missing observations with this constant")
	seriesGetCmd.Flags().BoolVar(&serZeros, "zeros-as-missing", false, "treat observed zeros as missing")
	seriesGetCmd.Flags().StringVar(&serOut, "out", "table", "output format: table, csv, xlsx, json")
	seriesGetCmd.Flags().StringVar(&serOutFile, "out-file", "", "output file (csv, xlsx)")
	_ = seriesGetCmd.MarkFlagRequired("account")

	seriesBatchCmd.Flags().StringVar(&seriesBatchFile, "requests", "", "YAML file with the series requests")
	seriesBatchCmd.Flags().StringVar(&serOut, "out", "table", "output format: table, csv, xlsx, json")
	seriesBatchCmd.Flags().StringVar(&serOutFile, "out-file", "", "output file (csv, xlsx)")
	_ = seriesBatchCmd.MarkFlagRequired("requests")

	seriesCmd.AddCommand(seriesGetCmd, seriesBatchCmd)
	rootCmd.AddCommand(seriesCmd)
}
