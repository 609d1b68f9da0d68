package importer

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

const importBatchSize = 5000

// RunOpts selects what to import and how to read the files.
type RunOpts struct {
	// Datasets restricts the run to the named datasets; empty runs all.
	Datasets []string
	// Separator is the CSV field separator; zero means ';', the BACEN
	// export convention.
	Separator rune
	// Encoding names the file encoding ("latin1", "iso-8859-1", ...);
	// empty means UTF-8.
	Encoding string
}

// Result summarizes one dataset's import.
type Result struct {
	Dataset string `json:"dataset"`
	RunID   string `json:"run_id"`
	Rows    int64  `json:"rows"`
	Skipped int64  `json:"skipped"`
}

// Runner imports a drop directory into a target store.
type Runner struct {
	target Target
	dir    string
}

// NewRunner builds a runner over a migrated-or-migratable target and the
// directory holding the CSV files.
func NewRunner(target Target, dir string) *Runner {
	return &Runner{target: target, dir: dir}
}

// Run migrates the target, then imports each selected dataset. Malformed
// records are skipped and counted; a dataset-level failure (missing
// file, storage error) aborts the run after being recorded in
// import_runs.
func (r *Runner) Run(ctx context.Context, opts RunOpts) ([]Result, error) {
	datasets, err := Select(opts.Datasets)
	if err != nil {
		return nil, err
	}
	enc, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}
	sep := opts.Separator
	if sep == 0 {
		sep = ';'
	}

	if err := r.target.Migrate(ctx); err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("component", "importer"))
	log.Info("import starting",
		zap.String("dir", r.dir),
		zap.Int("datasets", len(datasets)),
	)

	var results []Result
	for _, ds := range datasets {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		dsLog := log.With(zap.String("dataset", ds.Name()))
		runID, err := r.target.StartRun(ctx, ds.Name())
		if err != nil {
			return results, err
		}

		start := time.Now()
		rows, skipped, err := r.importOne(ctx, ds, sep, enc)
		elapsed := time.Since(start)

		if err != nil {
			dsLog.Error("import failed", zap.Error(err), zap.Duration("elapsed", elapsed))
			if logErr := r.target.FinishRun(ctx, runID, rows, skipped, err); logErr != nil {
				dsLog.Error("failed to record import failure", zap.Error(logErr))
			}
			return results, eris.Wrapf(err, "importer: dataset %s", ds.Name())
		}

		if err := r.target.FinishRun(ctx, runID, rows, skipped, nil); err != nil {
			dsLog.Error("failed to record import completion", zap.Error(err))
		}
		dsLog.Info("import complete",
			zap.Int64("rows", rows),
			zap.Int64("skipped", skipped),
			zap.Duration("elapsed", elapsed),
		)
		results = append(results, Result{Dataset: ds.Name(), RunID: runID, Rows: rows, Skipped: skipped})
	}

	log.Info("import run complete", zap.Int("datasets", len(results)))
	return results, nil
}

func (r *Runner) importOne(ctx context.Context, ds Dataset, sep rune, enc encoding.Encoding) (rows, skipped int64, err error) {
	path := filepath.Join(r.dir, ds.File())
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, eris.Wrapf(err, "importer: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var in io.Reader = f
	if enc != nil {
		in = enc.NewDecoder().Reader(f)
	}

	reader := csv.NewReader(in)
	reader.Comma = sep
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, eris.Wrapf(err, "importer: read header of %s", ds.File())
	}
	cols := mapColumns(header)
	for _, name := range ds.Required() {
		if _, ok := cols[name]; !ok {
			return 0, 0, eris.Errorf("importer: %s is missing required column %q", ds.File(), name)
		}
	}

	var batch [][]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		row, perr := ds.ParseRecord(record, cols)
		if perr != nil {
			skipped++
			zap.L().Debug("importer: skipping record", zap.String("dataset", ds.Name()), zap.Error(perr))
			continue
		}
		batch = append(batch, row)

		if len(batch) >= importBatchSize {
			n, err := r.target.UpsertRows(ctx, ds.Table(), ds.Columns(), ds.ConflictKeys(), batch)
			if err != nil {
				return rows, skipped, err
			}
			rows += n
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		n, err := r.target.UpsertRows(ctx, ds.Table(), ds.Columns(), ds.ConflictKeys(), batch)
		if err != nil {
			return rows, skipped, err
		}
		rows += n
	}
	return rows, skipped, nil
}
