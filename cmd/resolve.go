package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier>",
	Short: "Resolve an identifier to its canonical identity",
	Long:  "Accepts a tax-ID root in any spelling (8 digits, full 14-digit number, punctuated), or an institution name, and prints the canonical identity.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := initAnalyzer(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.Resolve(ctx, args[0])
		if err != nil {
			return err
		}

		if resolveJSON {
			return printJSON(id)
		}

		fmt.Printf("Nome:            %s\n", id.NomeEntidade)
		fmt.Printf("CNPJ (raiz):     %s\n", id.CNPJ8)
		fmt.Printf("Reporte COSIF:   %s\n", id.CNPJReporteCOSIF)
		if id.CodConglPrud != "" {
			fmt.Printf("Congl. prud.:    %s\n", id.CodConglPrud)
		}
		if id.CodConglFinanceiro != "" {
			fmt.Printf("Congl. financ.:  %s\n", id.CodConglFinanceiro)
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "print the identity as JSON")
	rootCmd.AddCommand(resolveCmd)
}
