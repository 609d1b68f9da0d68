package refdata

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteLoader reads the reference tables from a SQLite file, the default
// single-machine deployment.
type SQLiteLoader struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database at the given path with WAL mode and
// a busy timeout, the settings every component sharing the file needs.
func OpenSQLite(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return db, nil
}

// NewSQLite opens a SQLite-backed loader at the given path.
func NewSQLite(dsn string) (*SQLiteLoader, error) {
	db, err := OpenSQLite(dsn)
	if err != nil {
		return nil, err
	}
	return &SQLiteLoader{db: db}, nil
}

// Migrate creates the reference tables if they do not exist.
func (l *SQLiteLoader) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, SQLiteSchema)
	return eris.Wrap(err, "sqlite: migrate")
}

// Load reads all four reference tables.
func (l *SQLiteLoader) Load(ctx context.Context) (Tables, error) {
	var t Tables
	var err error

	if t.CosifIndividual, err = l.loadCosif(ctx, TableCosifIndividual, false); err != nil {
		return Tables{}, err
	}
	if t.CosifPrudencial, err = l.loadCosif(ctx, TableCosifPrudencial, true); err != nil {
		return Tables{}, err
	}
	if t.IFData, err = l.loadIFData(ctx); err != nil {
		return Tables{}, err
	}
	if t.Cadastro, err = l.loadCadastro(ctx); err != nil {
		return Tables{}, err
	}
	return t, nil
}

func (l *SQLiteLoader) Close() error {
	return l.db.Close()
}

func (l *SQLiteLoader) loadCosif(ctx context.Context, table string, withCongl bool) ([]CosifRow, error) {
	query := `SELECT data, cnpj_8, nome, conta, nome_conta, saldo, documento FROM ` + table
	if withCongl {
		query = `SELECT data, cnpj_8, nome, cod_congl, conta, nome_conta, saldo, documento FROM ` + table
	}

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: query %s", table)
	}
	defer rows.Close()

	var out []CosifRow
	for rows.Next() {
		var r CosifRow
		if withCongl {
			err = rows.Scan(&r.Data, &r.CNPJ8, &r.Nome, &r.CodCongl, &r.Conta, &r.NomeConta, &r.Saldo, &r.Documento)
		} else {
			err = rows.Scan(&r.Data, &r.CNPJ8, &r.Nome, &r.Conta, &r.NomeConta, &r.Saldo, &r.Documento)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s", table)
		}
		out = append(out, r)
	}
	return out, eris.Wrapf(rows.Err(), "sqlite: iterate %s", table)
}

func (l *SQLiteLoader) loadIFData(ctx context.Context) ([]IFDataRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT data, cod_inst, conta, nome_conta, valor FROM ifdata_valores`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query ifdata_valores")
	}
	defer rows.Close()

	var out []IFDataRow
	for rows.Next() {
		var r IFDataRow
		if err := rows.Scan(&r.Data, &r.CodInst, &r.Conta, &r.NomeConta, &r.Valor); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ifdata_valores")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate ifdata_valores")
}

func (l *SQLiteLoader) loadCadastro(ctx context.Context) ([]CadastroRow, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT data, cnpj_8, nome_entidade, cod_congl_prud, cod_congl_financeiro, atributos FROM cadastro`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query cadastro")
	}
	defer rows.Close()

	var out []CadastroRow
	for rows.Next() {
		var r CadastroRow
		var atributos sql.NullString
		if err := rows.Scan(&r.Data, &r.CNPJ8, &r.NomeEntidade, &r.CodConglPrud, &r.CodConglFinanceiro, &atributos); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cadastro")
		}
		if atributos.Valid && atributos.String != "" {
			if err := json.Unmarshal([]byte(atributos.String), &r.Atributos); err != nil {
				return nil, eris.Wrapf(err, "sqlite: decode atributos for %s", r.CNPJ8)
			}
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate cadastro")
}
