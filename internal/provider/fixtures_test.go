package provider

import (
	"context"
	"testing"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

type staticLoader struct {
	tables refdata.Tables
}

func (l staticLoader) Load(ctx context.Context) (refdata.Tables, error) { return l.tables, nil }
func (l staticLoader) Close() error                                     { return nil }

// Resolved identities matching the fixture tables. Itaucard is a
// conglomerate member whose consolidated filings come from Itaú; XP has
// indicator data only at the financial-conglomerate level; Caixa belongs
// to no conglomerate at all.
var (
	itau = model.CanonicalIdentity{
		CNPJ8: "60701190", NomeEntidade: "Itaú Unibanco S.A.", CNPJReporteCOSIF: "60701190",
		CodConglPrud: "C0001", CodConglFinanceiro: "F0001",
	}
	itaucard = model.CanonicalIdentity{
		CNPJ8: "17192451", NomeEntidade: "Banco Itaucard S.A.", CNPJReporteCOSIF: "60701190",
		CodConglPrud: "C0001", CodConglFinanceiro: "F0001",
	}
	caixa = model.CanonicalIdentity{
		CNPJ8: "00360305", NomeEntidade: "Caixa Econômica Federal", CNPJReporteCOSIF: "00360305",
	}
	xp = model.CanonicalIdentity{
		CNPJ8: "02332886", NomeEntidade: "Banco XP S.A.", CNPJReporteCOSIF: "02332886",
		CodConglPrud: "C0003", CodConglFinanceiro: "F0003",
	}
)

func newTestStore(t *testing.T) *refdata.Store {
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
			{Data: 202309, CNPJ8: "60701190", Nome: "Itaú Unibanco S.A.", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 1400, Documento: 4010},
			{Data: 202312, CNPJ8: "60701190", Nome: "Itaú Unibanco S.A.", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 1500, Documento: 4010},
			{Data: 202312, CNPJ8: "60701190", Nome: "Itaú Unibanco S.A.", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 1510, Documento: 4016},
			{Data: 202312, CNPJ8: "60701190", Nome: "Itaú Unibanco S.A.", Conta: 60000002, NomeConta: "Patrimônio Líquido", Saldo: 300, Documento: 4010},
			{Data: 202312, CNPJ8: "17192451", Nome: "Banco Itaucard S.A.", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 80, Documento: 4010},
			{Data: 202312, CNPJ8: "00360305", Nome: "Caixa Econômica Federal", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 900, Documento: 4010},
		},
		CosifPrudencial: []refdata.CosifRow{
			{Data: 202309, CNPJ8: "60701190", Nome: "Conglomerado Itaú", CodCongl: "C0001", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 1900, Documento: 4060},
			{Data: 202312, CNPJ8: "60701190", Nome: "Conglomerado Itaú", CodCongl: "C0001", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 2000, Documento: 4060},
			{Data: 202312, CNPJ8: "60701190", Nome: "Conglomerado Itaú", CodCongl: "C0001", Conta: 60000002, NomeConta: "Patrimônio Líquido", Saldo: 400, Documento: 4060},
		},
		IFData: []refdata.IFDataRow{
			{Data: 202312, CodInst: "60701190", Conta: 7001, NomeConta: "Ativo Total", Valor: 1550},
			{Data: 202309, CodInst: "C0001", Conta: 7001, NomeConta: "Ativo Total", Valor: 1950},
			{Data: 202312, CodInst: "C0001", Conta: 7001, NomeConta: "Ativo Total", Valor: 2050},
			{Data: 202312, CodInst: "F0001", Conta: 7001, NomeConta: "Ativo Total", Valor: 2100},
			{Data: 202312, CodInst: "F0001", Conta: 7002, NomeConta: "Lucro Líquido", Valor: 50},
			{Data: 202312, CodInst: "F0003", Conta: 7001, NomeConta: "Ativo Total", Valor: 700},
		},
	}
	return refdata.NewStore(staticLoader{tables})
}
