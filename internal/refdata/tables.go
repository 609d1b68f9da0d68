// Package refdata loads the published reference tables (COSIF ledgers,
// regulatory indicators, cadastral registry) into an immutable in-memory
// snapshot carrying the derived indexes the resolver and providers query.
package refdata

// CosifRow is one accounting-ledger observation. Individual filings carry
// the institution's own tax-ID root; prudential filings carry the reporting
// leader's root plus the conglomerate code the filing consolidates.
type CosifRow struct {
	Data      int
	CNPJ8     string
	Nome      string
	CodCongl  string // prudential filings only
	Conta     int64
	NomeConta string
	Saldo     float64
	Documento int
}

// IFDataRow is one quarterly regulatory-indicator observation. CodInst is
// the institution's tax-ID root or a conglomerate code, depending on the
// organizational level the value was published at.
type IFDataRow struct {
	Data      int
	CodInst   string
	Conta     int64
	NomeConta string
	Valor     float64
}

// CadastroRow is one cadastral-registry observation for an entity at a
// reporting date. Atributos holds the remaining registry columns keyed by
// canonical column name.
type CadastroRow struct {
	Data               int
	CNPJ8              string
	NomeEntidade       string
	CodConglPrud       string
	CodConglFinanceiro string
	Atributos          map[string]string
}

// Tables bundles the raw reference tables as read from a backing store,
// before any index is derived.
type Tables struct {
	CosifIndividual []CosifRow
	CosifPrudencial []CosifRow
	IFData          []IFDataRow
	Cadastro        []CadastroRow
}
