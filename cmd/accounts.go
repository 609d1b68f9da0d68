package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/enzoomoreira/bacen-data-analysis/internal/export"
)

var accountsJSON bool

var accountsCmd = &cobra.Command{
	Use:   "accounts <source> [query]",
	Short: "Search a source's account dictionary",
	Long:  "Lists accounts of cosif, cosif-prudencial or ifdata whose name contains the query (accent and case insensitive) or whose code starts with it. No query lists everything.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		query := ""
		if len(args) == 2 {
			query = args[1]
		}

		accounts, err := a.SearchAccounts(ctx, args[0], query)
		if err != nil {
			return err
		}

		if accountsJSON {
			return printJSON(accounts)
		}

		t := export.Table{Header: []string{"CONTA", "NOME_CONTA"}}
		for _, acc := range accounts {
			t.Rows = append(t.Rows, []any{strconv.FormatInt(acc.Code, 10), acc.Name})
		}
		return emitTable(t, "table", "")
	},
}

func init() {
	accountsCmd.Flags().BoolVar(&accountsJSON, "json", false, "print accounts as JSON")
	rootCmd.AddCommand(accountsCmd)
}
