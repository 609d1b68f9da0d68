package model

import (
	"encoding/json"
	"math"
)

// AccountingRow is one ledger observation. Nome_Entidade and CNPJ_8 always
// describe the entity the caller asked about, even when the underlying
// filing was made by its reporting leader.
type AccountingRow struct {
	NomeEntidade string  `json:"Nome_Entidade"`
	CNPJ8        string  `json:"CNPJ_8"`
	Data         int     `json:"DATA"`
	Conta        int64   `json:"CONTA"`
	NomeConta    string  `json:"NOME_CONTA"`
	Saldo        float64 `json:"SALDO"`
	Documento    int     `json:"DOCUMENTO"`
}

// IndicatorRow is one regulatory-indicator observation. IDBuscaUsado is
// the lookup code that actually produced the row, making the scope the
// data came from auditable.
type IndicatorRow struct {
	NomeEntidade string  `json:"Nome_Entidade"`
	CNPJ8        string  `json:"CNPJ_8"`
	Data         int     `json:"DATA"`
	Conta        int64   `json:"CONTA"`
	NomeConta    string  `json:"NOME_CONTA"`
	Valor        float64 `json:"VALOR"`
	IDBuscaUsado string  `json:"ID_BUSCA_USADO"`
}

// CadastralRow is the attribute projection for one entity. Atributos holds
// the requested attributes by their canonical column name.
type CadastralRow struct {
	NomeEntidade string            `json:"Nome_Entidade"`
	CNPJ8        string            `json:"CNPJ_8"`
	Atributos    map[string]string `json:"atributos"`
}

// SeriesPoint is one observation in the fixed long-format time-series
// schema. Valor is NaN when the observation is missing; NaN serializes as
// null.
type SeriesPoint struct {
	Data         int     `json:"DATA"`
	NomeEntidade string  `json:"Nome_Entidade"`
	CNPJ8        string  `json:"CNPJ_8"`
	Conta        string  `json:"Conta"`
	Valor        float64 `json:"Valor"`
}

// Missing reports whether the point has no observed value.
func (p SeriesPoint) Missing() bool { return math.IsNaN(p.Valor) }

// MarshalJSON renders a missing Valor as null, since JSON has no NaN.
func (p SeriesPoint) MarshalJSON() ([]byte, error) {
	var valor *float64
	if !math.IsNaN(p.Valor) {
		valor = &p.Valor
	}
	return json.Marshal(struct {
		Data         int      `json:"DATA"`
		NomeEntidade string   `json:"Nome_Entidade"`
		CNPJ8        string   `json:"CNPJ_8"`
		Conta        string   `json:"Conta"`
		Valor        *float64 `json:"Valor"`
	}{p.Data, p.NomeEntidade, p.CNPJ8, p.Conta, valor})
}

// UnmarshalJSON maps a null Valor back to NaN.
func (p *SeriesPoint) UnmarshalJSON(data []byte) error {
	var aux struct {
		Data         int      `json:"DATA"`
		NomeEntidade string   `json:"Nome_Entidade"`
		CNPJ8        string   `json:"CNPJ_8"`
		Conta        string   `json:"Conta"`
		Valor        *float64 `json:"Valor"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Data = aux.Data
	p.NomeEntidade = aux.NomeEntidade
	p.CNPJ8 = aux.CNPJ8
	p.Conta = aux.Conta
	if aux.Valor == nil {
		p.Valor = math.NaN()
	} else {
		p.Valor = *aux.Valor
	}
	return nil
}

// Leading column names of every pivoted comparison table.
const (
	ColNomeEntidade = "Nome_Entidade"
	ColCNPJ8        = "CNPJ_8"
)

// ComparisonTable is the pivoted comparator output: one row per entity,
// one column per indicator label, Nome_Entidade and CNPJ_8 leading.
// Absent cells are nil.
type ComparisonTable struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	Warnings []string         `json:"warnings,omitempty"`
}

// Cell returns the value at (row, column); nil when absent or out of
// range.
func (t *ComparisonTable) Cell(row int, column string) any {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][column]
}

// FillPolicy post-processes a whole comparison table.
type FillPolicy string

const (
	// FillNone preserves true zeros and leaves genuinely missing cells
	// blank.
	FillNone FillPolicy = "none"
	// FillZero replaces missing cells with zero.
	FillZero FillPolicy = "zero"
	// FillZerosAsMissing converts observed numeric zeros to blanks, for
	// statistics where zero means "not applicable" rather than "empty".
	FillZerosAsMissing FillPolicy = "zeros_as_missing"
)

// Valid reports whether p is a recognized fill policy. The empty string
// is accepted as FillNone.
func (p FillPolicy) Valid() bool {
	switch p {
	case "", FillNone, FillZero, FillZerosAsMissing:
		return true
	}
	return false
}

// MissingPolicy controls how a time series treats missing observations.
// The zero value drops missing rows, the upstream default.
type MissingPolicy struct {
	// Keep retains rows whose value is missing instead of dropping them.
	Keep bool `json:"keep,omitempty" yaml:"keep,omitempty"`
	// FillValue, when set, replaces missing values with the given
	// constant (and implies Keep).
	FillValue *float64 `json:"fill_value,omitempty" yaml:"fill_value,omitempty"`
	// ZerosAsMissing converts observed zeros to missing before Keep and
	// FillValue are applied.
	ZerosAsMissing bool `json:"zeros_as_missing,omitempty" yaml:"zeros_as_missing,omitempty"`
}

// IndicatorSpec declares one column of a comparison: where the value comes
// from and the source-specific parameters needed to fetch it.
type IndicatorSpec struct {
	// Label is the output column name. Required and unique per table.
	Label string `json:"label" yaml:"label"`
	// Source selects the provider: cosif, ifdata, or cadastro.
	Source Source `json:"source" yaml:"source"`
	// Account selects the ledger or indicator account (cosif, ifdata).
	Account AccountSelector `json:"account,omitempty" yaml:"account,omitempty"`
	// Kind selects the ledger table (cosif only). Mandatory for cosif.
	Kind LedgerKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Documents restricts cosif rows to these report-document codes;
	// empty means the kind's conventional codes.
	Documents []int `json:"documents,omitempty" yaml:"documents,omitempty"`
	// Scope is the organizational level to query (ifdata only).
	Scope Scope `json:"scope,omitempty" yaml:"scope,omitempty"`
	// Attribute is the cadastral column to project (cadastro only).
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
}
