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

var (
	compareSpecsFile string
	compareDate      int
	compareFill      string
	compareOut       string
	compareOutFile   string
)

var compareCmd = &cobra.Command{
	Use:   "compare <identifier>...",
	Short: "Compare indicator columns across institutions",
	Long: `Builds a pivoted table with one row per institution and one column per
indicator spec, all evaluated at the same reference date. Specs come from a
YAML file, for example:

  - label: Ativo_Total
    source: cosif
    kind: prudencial
    account: "10000007"
  - label: Indice_Basileia
    source: ifdata
    scope: prudencial
    account: Índice de Basileia
  - label: Segmento
    source: cadastro
    attribute: segmento`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(compareSpecsFile)
		if err != nil {
			return eris.Wrapf(err, "read specs %s", compareSpecsFile)
		}
		var specs []model.IndicatorSpec
		if err := yaml.Unmarshal(raw, &specs); err != nil {
			return eris.Wrapf(err, "parse specs %s", compareSpecsFile)
		}

		identifiers := make([]any, len(args))
		for i, id := range args {
			identifiers[i] = id
		}

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		table, err := a.Compare(ctx, bacen.CompareRequest{
			Identifiers: identifiers,
			Specs:       specs,
			Date:        compareDate,
			Fill:        model.FillPolicy(compareFill),
		})
		if err != nil {
			return err
		}
		for _, w := range table.Warnings {
			fmt.Fprintln(os.Stderr, "warning:", w)
		}

		if compareOut == "json" {
			return printJSON(table)
		}
		return emitTable(export.FromComparison(table), compareOut, compareOutFile)
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareSpecsFile, "specs", "", "YAML file declaring the indicator columns")
	compareCmd.Flags().IntVar(&compareDate, "date", 0, "reference date, YYYYMM")
	compareCmd.Flags().StringVar(&compareFill, "fill", "", "fill policy: none, zero or zeros_as_missing")
	compareCmd.Flags().StringVar(&compareOut, "out", "table", "output format: table, csv, xlsx, json")
	compareCmd.Flags().StringVar(&compareOutFile, "out-file", "", "output file (csv, xlsx)")
	_ = compareCmd.MarkFlagRequired("specs")
	_ = compareCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(compareCmd)
}
