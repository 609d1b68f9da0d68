package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/enzoomoreira/bacen-data-analysis/internal/export"
	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/pkg/bacen"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Single-entity data queries",
	Long:  "Queries one institution's accounting ledger, regulatory indicators or cadastral attributes after resolving its identifier.",
}

var (
	qAccounts  []string
	qDates     []int
	qFrom      int
	qTo        int
	qQuarterly bool
	qOut       string
	qOutFile   string
)

var (
	qAcctKind string
	qAcctDocs []int
)

var queryAccountingCmd = &cobra.Command{
	Use:   "accounting <identifier>",
	Short: "Query COSIF ledger balances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		selectors, err := parseSelectors(qAccounts)
		if err != nil {
			return err
		}
		dates, err := resolveDates(qDates, qFrom, qTo, qQuarterly)
		if err != nil {
			return err
		}

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		rows, err := a.Accounting(ctx, args[0], bacen.AccountingQuery{
			Accounts:  selectors,
			Dates:     dates,
			Kind:      model.LedgerKind(qAcctKind),
			Documents: qAcctDocs,
		})
		if err != nil {
			return err
		}

		if qOut == "json" {
			return printJSON(rows)
		}
		return emitTable(export.FromAccountingRows(rows), qOut, qOutFile)
	},
}

var (
	qIndScope   string
	qIndCascade []string
)

var queryIndicatorsCmd = &cobra.Command{
	Use:   "indicators <identifier>",
	Short: "Query IF.data regulatory indicators",
	Long:  "Fetches indicator values at one scope (--scope) or walking a scope cascade (--cascade, or the default prudencial, financeiro, individual order when neither flag is given).",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if qIndScope != "" && len(qIndCascade) > 0 {
			return eris.New("use either --scope or --cascade, not both")
		}

		selectors, err := parseSelectors(qAccounts)
		if err != nil {
			return err
		}
		dates, err := resolveDates(qDates, qFrom, qTo, qQuarterly)
		if err != nil {
			return err
		}

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var rows []bacen.IndicatorRow
		if qIndScope != "" {
			rows, err = a.Indicators(ctx, args[0], bacen.IndicatorQuery{
				Accounts: selectors,
				Dates:    dates,
				Scope:    model.Scope(qIndScope),
			})
		} else {
			var scopes []model.Scope
			scopes, err = parseScopes(qIndCascade)
			if err != nil {
				return err
			}
			rows, err = a.IndicatorsCascade(ctx, args[0], selectors, dates, scopes)
		}
		if err != nil {
			return err
		}

		if qOut == "json" {
			return printJSON(rows)
		}
		return emitTable(export.FromIndicatorRows(rows), qOut, qOutFile)
	},
}

var qCadAttributes []string

var queryCadastralCmd = &cobra.Command{
	Use:   "cadastral <identifier>",
	Short: "Query cadastral registry attributes",
	Long:  "Prints the requested registry attributes for one institution; without --attributes every attribute on file is returned.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		row, err := a.Cadastral(ctx, args[0], qCadAttributes)
		if err != nil {
			return err
		}
		return printJSON(row)
	},
}

func init() {
	for _, c := range []*cobra.Command{queryAccountingCmd, queryIndicatorsCmd} {
		c.Flags().StringSliceVar(&qAccounts, "account", nil, "account code or name (repeatable)")
		c.Flags().IntSliceVar(&qDates, "dates", nil, "reference dates, YYYYMM (repeatable)")
		c.Flags().IntVar(&qFrom, "from", 0, "range start, YYYYMM")
		c.Flags().IntVar(&qTo, "to", 0, "range end, YYYYMM")
		c.Flags().BoolVar(&qQuarterly, "quarterly", false, "keep only quarter-end months of --from/--to")
		c.Flags().StringVar(&qOut, "out", "table", "output format: table, csv, xlsx, json")
		c.Flags().StringVar(&qOutFile, "out-file", "", "output file (csv, xlsx)")
	}

	queryAccountingCmd.Flags().StringVar(&qAcctKind, "kind", "individual", "ledger kind: individual or prudencial")
	queryAccountingCmd.Flags().IntSliceVar(&qAcctDocs, "documents", nil, "report-document codes (default: no filter)")

	queryIndicatorsCmd.Flags().StringVar(&qIndScope, "scope", "", "single scope: individual, prudencial or financeiro")
	queryIndicatorsCmd.Flags().StringSliceVar(&qIndCascade, "cascade", nil, "explicit scope cascade order (repeatable)")

	queryCadastralCmd.Flags().StringSliceVar(&qCadAttributes, "attributes", nil, "attribute names (default: all)")

	queryCmd.AddCommand(queryAccountingCmd, queryIndicatorsCmd, queryCadastralCmd)
	rootCmd.AddCommand(queryCmd)
}
