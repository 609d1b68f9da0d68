package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/enzoomoreira/bacen-data-analysis/internal/importer"
)

var (
	importDir      string
	importDatasets []string
	importSep      string
	importEncoding string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import BACEN CSV drops into the store",
	Long: `Loads the COSIF, IF.data and cadastro CSV files from a drop directory
into the configured store, recording each dataset as a run in import_runs.
Malformed records are skipped and counted; missing files abort the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if importDir == "" {
			importDir = cfg.Import.Dir
		}
		if importSep == "" {
			importSep = cfg.Import.Separator
		}
		if importEncoding == "" {
			importEncoding = cfg.Import.Encoding
		}

		var sep rune
		if importSep != "" {
			runes := []rune(importSep)
			if len(runes) != 1 {
				return eris.Errorf("separator must be a single character, got %q", importSep)
			}
			sep = runes[0]
		}

		target, err := initImportTarget(ctx)
		if err != nil {
			return err
		}
		defer target.Close() //nolint:errcheck

		results, err := importer.NewRunner(target, importDir).Run(ctx, importer.RunOpts{
			Datasets:  importDatasets,
			Separator: sep,
			Encoding:  importEncoding,
		})
		if err != nil {
			return err
		}
		return printJSON(results)
	},
}

var importRunsJSON bool

var importRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show past import runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		target, err := initImportTarget(ctx)
		if err != nil {
			return err
		}
		defer target.Close() //nolint:errcheck

		runs, err := target.ListRuns(ctx)
		if err != nil {
			return err
		}
		if importRunsJSON {
			return printJSON(runs)
		}
		formatRuns(os.Stdout, runs)
		return nil
	},
}

func formatRuns(out io.Writer, runs []importer.Run) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tDATASET\tSTATUS\tSTARTED\tDURATION\tROWS\tSKIPPED\tERROR")
	_, _ = fmt.Fprintln(w, "--\t-------\t------\t-------\t--------\t----\t-------\t-----")

	for _, r := range runs {
		dur := "-"
		if r.CompletedAt != nil {
			dur = r.CompletedAt.Sub(r.StartedAt).Round(time.Second).String()
		}

		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			id,
			r.Dataset,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04"),
			dur,
			r.RowsLoaded,
			r.RowsSkipped,
			truncate(r.Error, 60),
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	importCmd.Flags().StringVar(&importDir, "csv-dir", "", "drop directory (default: import.dir from config)")
	importCmd.Flags().StringSliceVar(&importDatasets, "datasets", nil, "restrict to these datasets (default: all)")
	importCmd.Flags().StringVar(&importSep, "separator", "", "CSV field separator (default: import.separator from config)")
	importCmd.Flags().StringVar(&importEncoding, "encoding", "", "file encoding, e.g. latin1 (default: import.encoding from config)")

	importRunsCmd.Flags().BoolVar(&importRunsJSON, "json", false, "print runs as JSON")

	importCmd.AddCommand(importRunsCmd)
	rootCmd.AddCommand(importCmd)
}
