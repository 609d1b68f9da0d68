package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"

	"github.com/enzoomoreira/bacen-data-analysis/internal/analysis"
	"github.com/enzoomoreira/bacen-data-analysis/internal/export"
	"github.com/enzoomoreira/bacen-data-analysis/internal/importer"
	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
	"github.com/enzoomoreira/bacen-data-analysis/pkg/bacen"
)

func initLoader(ctx context.Context) (refdata.Loader, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return refdata.NewSQLite(cfg.Store.Path)
	case "postgres":
		return refdata.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initAnalyzer(ctx context.Context) (*bacen.Analyzer, error) {
	loader, err := initLoader(ctx)
	if err != nil {
		return nil, err
	}
	return bacen.New(loader, bacen.Options{
		CacheSize:         cfg.Cache.Size,
		SeriesConcurrency: cfg.Batch.Concurrency,
	}), nil
}

func initImportTarget(ctx context.Context) (importer.Target, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		return importer.NewSQLiteTarget(cfg.Store.Path)
	case "postgres":
		return importer.NewPostgresTarget(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emitTable renders an export table in the requested format. Table and CSV
// default to stdout; xlsx needs an output file.
func emitTable(t export.Table, format, outFile string) error {
	switch format {
	case "", "table":
		return export.WriteTab(os.Stdout, t)
	case "csv":
		if outFile == "" {
			return export.WriteCSV(os.Stdout, t)
		}
		f, err := os.Create(outFile)
		if err != nil {
			return eris.Wrapf(err, "create %s", outFile)
		}
		defer f.Close() //nolint:errcheck
		return export.WriteCSV(f, t)
	case "xlsx":
		if outFile == "" {
			return eris.New("xlsx output needs --out-file")
		}
		return export.SaveXLSX(outFile, "dados", t)
	default:
		return eris.Errorf("unknown output format %q (valid: table, csv, xlsx)", format)
	}
}

// parseSelectors maps CLI account arguments (codes or names) to selectors.
func parseSelectors(raw []string) ([]model.AccountSelector, error) {
	if len(raw) == 0 {
		return nil, eris.New("at least one --account is required")
	}
	selectors := make([]model.AccountSelector, 0, len(raw))
	for _, r := range raw {
		sel := model.ParseAccountSelector(r)
		if sel.IsZero() {
			return nil, eris.Errorf("empty account selector %q", r)
		}
		selectors = append(selectors, sel)
	}
	return selectors, nil
}

func parseScopes(raw []string) ([]model.Scope, error) {
	scopes := make([]model.Scope, 0, len(raw))
	for _, r := range raw {
		s := model.Scope(r)
		if !s.Valid() {
			return nil, &model.InvalidScopeError{Scope: r, Valid: model.ValidScopes()}
		}
		scopes = append(scopes, s)
	}
	return scopes, nil
}

// resolveDates merges the explicit date list with a from/to range; exactly
// one of the two forms must be used.
func resolveDates(dates []int, from, to int, quarterly bool) ([]int, error) {
	switch {
	case len(dates) > 0 && from != 0:
		return nil, eris.New("use either --dates or --from/--to, not both")
	case len(dates) > 0:
		return dates, nil
	case from != 0 && to != 0:
		if quarterly {
			return analysis.QuarterRange(from, to)
		}
		return analysis.MonthRange(from, to)
	default:
		return nil, eris.New("dates are required: --dates or --from/--to")
	}
}
