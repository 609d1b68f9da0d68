package analysis

import (
	"context"
	"testing"

	"github.com/enzoomoreira/bacen-data-analysis/internal/provider"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
	"github.com/enzoomoreira/bacen-data-analysis/internal/resolve"
)

type staticLoader struct {
	tables refdata.Tables
	err    error
}

func (l staticLoader) Load(ctx context.Context) (refdata.Tables, error) { return l.tables, l.err }
func (l staticLoader) Close() error                                     { return nil }

// stack bundles the full query pipeline over one in-memory fixture.
type stack struct {
	resolver   *resolve.Resolver
	comparator *Comparator
	series     *SeriesEngine
}

// newTestStack builds a resolver, providers, comparator and series engine
// over a fixture with four entities. Caixa carries a four-quarter equity
// series with a true zero at 202306 and a gap at 202309, the shape the
// missing-policy tests need. XP has indicator data only at the
// financial-conglomerate level, so it exercises the scope cascade.
func newTestStack(t *testing.T) stack {
	t.Helper()
	tables := refdata.Tables{
		Cadastro: []refdata.CadastroRow{
			{Data: 202312, CNPJ8: "60701190", NomeEntidade: "Itaú Unibanco S.A.", CodConglPrud: "C0001", CodConglFinanceiro: "F0001",
				Atributos: map[string]string{"segmento": "b1", "situacao": "ativa", "uf": "SP"}},
			{Data: 202312, CNPJ8: "17192451", NomeEntidade: "Banco Itaucard S.A.", CodConglPrud: "C0001", CodConglFinanceiro: "F0001",
				Atributos: map[string]string{"segmento": "b1", "situacao": "ativa", "uf": "SP"}},
			{Data: 202312, CNPJ8: "00360305", NomeEntidade: "Caixa Econômica Federal",
				Atributos: map[string]string{"segmento": "b1", "situacao": "ativa", "uf": "DF"}},
			{Data: 202312, CNPJ8: "02332886", NomeEntidade: "Banco XP S.A.", CodConglPrud: "C0003", CodConglFinanceiro: "F0003",
				Atributos: map[string]string{"segmento": "b2", "situacao": "ativa", "uf": "SP"}},
		},
		CosifIndividual: []refdata.CosifRow{
			{Data: 202312, CNPJ8: "60701190", Nome: "Itaú Unibanco S.A.", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 1500, Documento: 4010},
			{Data: 202312, CNPJ8: "60701190", Nome: "Itaú Unibanco S.A.", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 1510, Documento: 4016},
			{Data: 202312, CNPJ8: "00360305", Nome: "Caixa Econômica Federal", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 900, Documento: 4010},
			{Data: 202303, CNPJ8: "00360305", Nome: "Caixa Econômica Federal", Conta: 60000002, NomeConta: "Patrimônio Líquido", Saldo: 100, Documento: 4010},
			{Data: 202306, CNPJ8: "00360305", Nome: "Caixa Econômica Federal", Conta: 60000002, NomeConta: "Patrimônio Líquido", Saldo: 0, Documento: 4010},
			{Data: 202312, CNPJ8: "00360305", Nome: "Caixa Econômica Federal", Conta: 60000002, NomeConta: "Patrimônio Líquido", Saldo: 200, Documento: 4010},
		},
		CosifPrudencial: []refdata.CosifRow{
			{Data: 202312, CNPJ8: "60701190", Nome: "Conglomerado Itaú", CodCongl: "C0001", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 2000, Documento: 4060},
		},
		IFData: []refdata.IFDataRow{
			{Data: 202312, CodInst: "60701190", Conta: 7001, NomeConta: "Ativo Total", Valor: 1550},
			{Data: 202312, CodInst: "C0001", Conta: 7001, NomeConta: "Ativo Total", Valor: 2050},
			{Data: 202312, CodInst: "F0003", Conta: 7001, NomeConta: "Ativo Total", Valor: 700},
		},
	}
	return newStackFromLoader(staticLoader{tables: tables})
}

func newStackFromLoader(l refdata.Loader) stack {
	store := refdata.NewStore(l)
	resolver := resolve.New(store, 0)
	acc := provider.NewAccounting(store)
	ind := provider.NewIndicator(store)
	cad := provider.NewCadastral(store)
	return stack{
		resolver:   resolver,
		comparator: NewComparator(resolver, acc, ind, cad),
		series:     NewSeriesEngine(resolver, acc, ind, 2),
	}
}
