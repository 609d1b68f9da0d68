package refdata

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/enzoomoreira/bacen-data-analysis/internal/db"
)

// PostgresLoader reads the reference tables from PostgreSQL, for shared
// deployments where several analysts point at the same database.
type PostgresLoader struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres connects a loader to PostgreSQL and verifies the connection.
func NewPostgres(ctx context.Context, connString string, poolCfg *db.PoolConfig) (*PostgresLoader, error) {
	pool, err := db.Connect(ctx, connString, poolCfg)
	if err != nil {
		return nil, err
	}
	return &PostgresLoader{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. The caller keeps ownership
// and is responsible for closing it.
func NewPostgresFromPool(pool db.Pool) *PostgresLoader {
	return &PostgresLoader{pool: pool}
}

// Migrate creates the reference tables if they do not exist.
func (l *PostgresLoader) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, PostgresSchema)
	return eris.Wrap(err, "postgres: migrate")
}

// Load reads all four reference tables, one query per pooled connection.
func (l *PostgresLoader) Load(ctx context.Context) (Tables, error) {
	var t Tables

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t.CosifIndividual, err = l.loadCosif(ctx, TableCosifIndividual, false)
		return err
	})
	g.Go(func() error {
		var err error
		t.CosifPrudencial, err = l.loadCosif(ctx, TableCosifPrudencial, true)
		return err
	})
	g.Go(func() error {
		var err error
		t.IFData, err = l.loadIFData(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		t.Cadastro, err = l.loadCadastro(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Tables{}, err
	}
	return t, nil
}

func (l *PostgresLoader) Close() error {
	if l.closeFn != nil {
		l.closeFn()
	}
	return nil
}

func (l *PostgresLoader) loadCosif(ctx context.Context, table string, withCongl bool) ([]CosifRow, error) {
	query := `SELECT data, cnpj_8, nome, conta, nome_conta, saldo, documento FROM ` + table
	if withCongl {
		query = `SELECT data, cnpj_8, nome, cod_congl, conta, nome_conta, saldo, documento FROM ` + table
	}

	rows, err := l.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: query %s", table)
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
			return nil, eris.Wrapf(err, "postgres: scan %s", table)
		}
		out = append(out, r)
	}
	return out, eris.Wrapf(rows.Err(), "postgres: iterate %s", table)
}

func (l *PostgresLoader) loadIFData(ctx context.Context) ([]IFDataRow, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT data, cod_inst, conta, nome_conta, valor FROM ifdata_valores`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query ifdata_valores")
	}
	defer rows.Close()

	var out []IFDataRow
	for rows.Next() {
		var r IFDataRow
		if err := rows.Scan(&r.Data, &r.CodInst, &r.Conta, &r.NomeConta, &r.Valor); err != nil {
			return nil, eris.Wrap(err, "postgres: scan ifdata_valores")
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate ifdata_valores")
}

func (l *PostgresLoader) loadCadastro(ctx context.Context) ([]CadastroRow, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT data, cnpj_8, nome_entidade, cod_congl_prud, cod_congl_financeiro, atributos FROM cadastro`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query cadastro")
	}
	defer rows.Close()

	var out []CadastroRow
	for rows.Next() {
		var r CadastroRow
		var atributos []byte
		if err := rows.Scan(&r.Data, &r.CNPJ8, &r.NomeEntidade, &r.CodConglPrud, &r.CodConglFinanceiro, &atributos); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cadastro")
		}
		if len(atributos) > 0 {
			if err := json.Unmarshal(atributos, &r.Atributos); err != nil {
				return nil, eris.Wrapf(err, "postgres: decode atributos for %s", r.CNPJ8)
			}
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate cadastro")
}
