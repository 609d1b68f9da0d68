package importer

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/enzoomoreira/bacen-data-analysis/internal/db"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

// Target is the destination store for an import run. Implementations
// create the reference tables, upsert parsed rows, and keep the
// import_runs audit table.
type Target interface {
	Migrate(ctx context.Context) error
	UpsertRows(ctx context.Context, table string, columns, conflictKeys []string, rows [][]any) (int64, error)
	StartRun(ctx context.Context, dataset string) (string, error)
	FinishRun(ctx context.Context, runID string, rows, skipped int64, runErr error) error
	ListRuns(ctx context.Context) ([]Run, error)
	Close() error
}

// Run is one import_runs entry.
type Run struct {
	ID          string     `json:"id"`
	Dataset     string     `json:"dataset"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	RowsLoaded  int64      `json:"rows_loaded"`
	RowsSkipped int64      `json:"rows_skipped"`
	Error       string     `json:"error,omitempty"`
}

const sqliteRunsSchema = `
CREATE TABLE IF NOT EXISTS import_runs (
	id           TEXT PRIMARY KEY,
	dataset      TEXT NOT NULL,
	status       TEXT NOT NULL,
	started_at   TIMESTAMP NOT NULL,
	completed_at TIMESTAMP,
	rows_loaded  INTEGER NOT NULL DEFAULT 0,
	rows_skipped INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);
`

const postgresRunsSchema = `
CREATE TABLE IF NOT EXISTS import_runs (
	id           TEXT PRIMARY KEY,
	dataset      TEXT NOT NULL,
	status       TEXT NOT NULL,
	started_at   TIMESTAMPTZ NOT NULL,
	completed_at TIMESTAMPTZ,
	rows_loaded  BIGINT NOT NULL DEFAULT 0,
	rows_skipped BIGINT NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);
`

// SQLiteTarget writes an import into a SQLite file.
type SQLiteTarget struct {
	db *sql.DB
}

// NewSQLiteTarget opens (or creates) the SQLite database at path.
func NewSQLiteTarget(path string) (*SQLiteTarget, error) {
	dbh, err := refdata.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteTarget{db: dbh}, nil
}

func (t *SQLiteTarget) Migrate(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, refdata.SQLiteSchema); err != nil {
		return eris.Wrap(err, "importer: migrate reference tables")
	}
	_, err := t.db.ExecContext(ctx, sqliteRunsSchema)
	return eris.Wrap(err, "importer: migrate import_runs")
}

// UpsertRows replaces-or-inserts a batch inside one transaction. The
// REPLACE resolves on each table's primary key, which matches the
// dataset's conflict keys.
func (t *SQLiteTarget) UpsertRows(ctx context.Context, table string, columns, conflictKeys []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "importer: begin")
	}
	defer tx.Rollback() //nolint:errcheck

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders,
	))
	if err != nil {
		return 0, eris.Wrapf(err, "importer: prepare upsert into %s", table)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "importer: upsert into %s", table)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "importer: commit")
	}
	return int64(len(rows)), nil
}

func (t *SQLiteTarget) StartRun(ctx context.Context, dataset string) (string, error) {
	id := uuid.New().String()
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO import_runs (id, dataset, status, started_at) VALUES (?, ?, 'running', ?)`,
		id, dataset, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrapf(err, "importer: start run for %s", dataset)
	}
	return id, nil
}

func (t *SQLiteTarget) FinishRun(ctx context.Context, runID string, rows, skipped int64, runErr error) error {
	status, errMsg := runOutcome(runErr)
	_, err := t.db.ExecContext(ctx,
		`UPDATE import_runs SET status = ?, completed_at = ?, rows_loaded = ?, rows_skipped = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC(), rows, skipped, errMsg, runID,
	)
	return eris.Wrapf(err, "importer: finish run %s", runID)
}

// ListRuns returns the import history, most recent first.
func (t *SQLiteTarget) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, dataset, status, started_at, completed_at, rows_loaded, rows_skipped, error
		 FROM import_runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "importer: list runs")
	}
	defer rows.Close()
	return scanRuns(rows.Next, rows.Scan, rows.Err)
}

func (t *SQLiteTarget) Close() error {
	return t.db.Close()
}

// PostgresTarget writes an import into PostgreSQL via temp-table bulk
// upserts.
type PostgresTarget struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgresTarget connects a pool for the given connection string.
func NewPostgresTarget(ctx context.Context, connString string, cfg *db.PoolConfig) (*PostgresTarget, error) {
	pool, err := db.Connect(ctx, connString, cfg)
	if err != nil {
		return nil, err
	}
	return &PostgresTarget{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresTargetFromPool wraps an existing pool; the caller keeps
// ownership of it.
func NewPostgresTargetFromPool(pool db.Pool) *PostgresTarget {
	return &PostgresTarget{pool: pool}
}

func (t *PostgresTarget) Migrate(ctx context.Context) error {
	if _, err := t.pool.Exec(ctx, refdata.PostgresSchema); err != nil {
		return eris.Wrap(err, "importer: migrate reference tables")
	}
	_, err := t.pool.Exec(ctx, postgresRunsSchema)
	return eris.Wrap(err, "importer: migrate import_runs")
}

func (t *PostgresTarget) UpsertRows(ctx context.Context, table string, columns, conflictKeys []string, rows [][]any) (int64, error) {
	return db.BulkUpsert(ctx, t.pool, db.UpsertConfig{
		Table:        table,
		Columns:      columns,
		ConflictKeys: conflictKeys,
	}, rows)
}

func (t *PostgresTarget) StartRun(ctx context.Context, dataset string) (string, error) {
	id := uuid.New().String()
	_, err := t.pool.Exec(ctx,
		`INSERT INTO import_runs (id, dataset, status, started_at) VALUES ($1, $2, 'running', now())`,
		id, dataset,
	)
	if err != nil {
		return "", eris.Wrapf(err, "importer: start run for %s", dataset)
	}
	return id, nil
}

func (t *PostgresTarget) FinishRun(ctx context.Context, runID string, rows, skipped int64, runErr error) error {
	status, errMsg := runOutcome(runErr)
	_, err := t.pool.Exec(ctx,
		`UPDATE import_runs SET status = $1, completed_at = now(), rows_loaded = $2, rows_skipped = $3, error = $4 WHERE id = $5`,
		status, rows, skipped, errMsg, runID,
	)
	return eris.Wrapf(err, "importer: finish run %s", runID)
}

// ListRuns returns the import history, most recent first.
func (t *PostgresTarget) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := t.pool.Query(ctx,
		`SELECT id, dataset, status, started_at, completed_at, rows_loaded, rows_skipped, error
		 FROM import_runs ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "importer: list runs")
	}
	defer rows.Close()
	return scanRuns(rows.Next, rows.Scan, rows.Err)
}

func (t *PostgresTarget) Close() error {
	if t.closeFn != nil {
		t.closeFn()
	}
	return nil
}

// scanRuns walks a result set shared by both drivers; database/sql and
// pgx expose the same Next/Scan/Err shape.
func scanRuns(next func() bool, scan func(...any) error, rowsErr func() error) ([]Run, error) {
	var runs []Run
	for next() {
		var r Run
		var completedAt *time.Time
		if err := scan(&r.ID, &r.Dataset, &r.Status, &r.StartedAt, &completedAt, &r.RowsLoaded, &r.RowsSkipped, &r.Error); err != nil {
			return nil, eris.Wrap(err, "importer: scan run")
		}
		r.CompletedAt = completedAt
		runs = append(runs, r)
	}
	if err := rowsErr(); err != nil {
		return nil, eris.Wrap(err, "importer: iterate runs")
	}
	return runs, nil
}

func runOutcome(runErr error) (status, message string) {
	if runErr == nil {
		return "complete", ""
	}
	message = runErr.Error()
	if len(message) > 500 {
		message = message[:500]
	}
	return "failed", message
}
