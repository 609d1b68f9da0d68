package refdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteLoader(t *testing.T) *SQLiteLoader {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "refdata.db")
	l, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() }) //nolint:errcheck
	require.NoError(t, l.Migrate(context.Background()))
	return l
}

func seed(t *testing.T, l *SQLiteLoader, query string, args ...any) {
	t.Helper()
	_, err := l.db.Exec(query, args...)
	require.NoError(t, err)
}

func TestSQLiteLoader_LoadEmpty(t *testing.T) {
	l := newTestSQLiteLoader(t)

	tables, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tables.CosifIndividual)
	assert.Empty(t, tables.CosifPrudencial)
	assert.Empty(t, tables.IFData)
	assert.Empty(t, tables.Cadastro)
}

func TestSQLiteLoader_LoadRoundTrip(t *testing.T) {
	l := newTestSQLiteLoader(t)

	seed(t, l, `INSERT INTO cosif_individual (data, cnpj_8, nome, conta, nome_conta, saldo, documento)
		VALUES (202312, '60701190', 'Itaú Unibanco S.A.', 10000007, 'Circulante e Realizável a Longo Prazo', 1500.0, 4010)`)
	seed(t, l, `INSERT INTO cosif_prudencial (data, cnpj_8, nome, cod_congl, conta, nome_conta, saldo, documento)
		VALUES (202312, '60701190', 'Conglomerado Itaú', 'C0001', 10000007, 'Circulante e Realizável a Longo Prazo', 2000.0, 4060)`)
	seed(t, l, `INSERT INTO ifdata_valores (data, cod_inst, conta, nome_conta, valor)
		VALUES (202312, 'C0001', 7001, 'Ativo Total', 2050.0)`)
	seed(t, l, `INSERT INTO cadastro (data, cnpj_8, nome_entidade, cod_congl_prud, cod_congl_financeiro, atributos)
		VALUES (202312, '60701190', 'Itaú Unibanco S.A.', 'C0001', 'F0001', '{"segmento":"b1","uf":"SP"}')`)

	tables, err := l.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, tables.CosifIndividual, 1)
	ind := tables.CosifIndividual[0]
	assert.Equal(t, 202312, ind.Data)
	assert.Equal(t, "60701190", ind.CNPJ8)
	assert.Equal(t, int64(10000007), ind.Conta)
	assert.Equal(t, 1500.0, ind.Saldo)
	assert.Equal(t, 4010, ind.Documento)
	assert.Empty(t, ind.CodCongl)

	require.Len(t, tables.CosifPrudencial, 1)
	assert.Equal(t, "C0001", tables.CosifPrudencial[0].CodCongl)

	require.Len(t, tables.IFData, 1)
	assert.Equal(t, "C0001", tables.IFData[0].CodInst)
	assert.Equal(t, 2050.0, tables.IFData[0].Valor)

	require.Len(t, tables.Cadastro, 1)
	cad := tables.Cadastro[0]
	assert.Equal(t, "Itaú Unibanco S.A.", cad.NomeEntidade)
	assert.Equal(t, "C0001", cad.CodConglPrud)
	assert.Equal(t, "F0001", cad.CodConglFinanceiro)
	assert.Equal(t, map[string]string{"segmento": "b1", "uf": "SP"}, cad.Atributos)
}

func TestSQLiteLoader_BadAtributosJSON(t *testing.T) {
	l := newTestSQLiteLoader(t)

	seed(t, l, `INSERT INTO cadastro (data, cnpj_8, nome_entidade, atributos)
		VALUES (202312, '60701190', 'Itaú Unibanco S.A.', 'not-json')`)

	_, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode atributos")
}

func TestSQLiteLoader_MigrateIdempotent(t *testing.T) {
	l := newTestSQLiteLoader(t)
	require.NoError(t, l.Migrate(context.Background()))
}
