// Package model defines the core value types of the identity-resolution
// engine: canonical identities, scopes, account selectors, result rows, and
// the typed domain errors shared by every layer.
package model

// CanonicalIdentity is the resolved corporate identity of a financial
// institution. It is produced once per distinct raw identifier and is
// immutable; two identities are the same entity iff their CNPJ8 match.
type CanonicalIdentity struct {
	// CNPJ8 is the 8-digit tax-ID root, the primary key of an individual
	// entity.
	CNPJ8 string `json:"cnpj_8"`
	// NomeEntidade is the institution's registered name.
	NomeEntidade string `json:"nome_entidade"`
	// CNPJReporteCOSIF is the tax-ID root under which consolidated
	// accounting statements covering this entity are filed. Equals CNPJ8
	// when the entity reports for itself.
	CNPJReporteCOSIF string `json:"cnpj_reporte_cosif"`
	// CodConglPrud is the prudential conglomerate code; empty when the
	// entity belongs to no prudential conglomerate.
	CodConglPrud string `json:"cod_congl_prud,omitempty"`
	// CodConglFinanceiro is the financial conglomerate code; empty when
	// the entity belongs to no financial conglomerate.
	CodConglFinanceiro string `json:"cod_congl_financeiro,omitempty"`
	// IdentificadorOriginal is the raw caller-supplied identifier,
	// retained for traceability.
	IdentificadorOriginal string `json:"identificador_original"`
}

// Equal reports whether two identities refer to the same entity.
// Identity equality is defined by CNPJ8 alone, regardless of how each
// identity was derived.
func (c CanonicalIdentity) Equal(other CanonicalIdentity) bool {
	return c.CNPJ8 == other.CNPJ8
}

// Scope is the organizational level at which a regulatory indicator is
// requested.
type Scope string

const (
	// ScopeIndividual looks up by the entity's own tax-ID root.
	ScopeIndividual Scope = "individual"
	// ScopePrudencial looks up by the prudential conglomerate code.
	ScopePrudencial Scope = "prudencial"
	// ScopeFinanceiro looks up by the financial conglomerate code.
	ScopeFinanceiro Scope = "financeiro"
)

// ValidScopes lists the recognized scope values in canonical order.
func ValidScopes() []Scope {
	return []Scope{ScopeIndividual, ScopePrudencial, ScopeFinanceiro}
}

// Valid reports whether s is one of the recognized scope values.
func (s Scope) Valid() bool {
	switch s {
	case ScopeIndividual, ScopePrudencial, ScopeFinanceiro:
		return true
	}
	return false
}

// LookupCode returns the lookup code a scope maps to for the given
// identity. The returned code is empty when the identity has no backing
// code at that level.
func (s Scope) LookupCode(id CanonicalIdentity) string {
	switch s {
	case ScopeIndividual:
		return id.CNPJ8
	case ScopePrudencial:
		return id.CodConglPrud
	case ScopeFinanceiro:
		return id.CodConglFinanceiro
	}
	return ""
}

// LedgerKind selects which accounting ledger table a query runs against.
// There is no default: individual and prudential filings describe
// different reporting populations and must never be conflated silently.
type LedgerKind string

const (
	// LedgerIndividual queries the entity-level ledger.
	LedgerIndividual LedgerKind = "individual"
	// LedgerPrudencial queries the consolidated (prudential
	// conglomerate) ledger, filed under the reporting leader's tax ID.
	LedgerPrudencial LedgerKind = "prudencial"
)

// Valid reports whether k is a recognized ledger kind.
func (k LedgerKind) Valid() bool {
	return k == LedgerIndividual || k == LedgerPrudencial
}

// DefaultDocumentCodes returns the report-document codes conventional for
// a ledger kind: 4010/4016 for individual filings, 4060/4066 for
// prudential consolidated filings.
func DefaultDocumentCodes(k LedgerKind) []int {
	switch k {
	case LedgerIndividual:
		return []int{4010, 4016}
	case LedgerPrudencial:
		return []int{4060, 4066}
	}
	return nil
}

// DocumentLedgerKind maps a report-document code to the ledger kind it
// belongs to. Returns false for unknown codes.
func DocumentLedgerKind(code int) (LedgerKind, bool) {
	switch code {
	case 4010, 4016:
		return LedgerIndividual, true
	case 4060, 4066:
		return LedgerPrudencial, true
	}
	return "", false
}

// Source names a reference data source.
type Source string

const (
	// SourceCOSIF is the accounting-ledger source (balance sheet plan).
	SourceCOSIF Source = "cosif"
	// SourceIFData is the quarterly regulatory-indicator source.
	SourceIFData Source = "ifdata"
	// SourceCadastro is the cadastral-attribute source.
	SourceCadastro Source = "cadastro"
)

// Valid reports whether s is a recognized source.
func (s Source) Valid() bool {
	switch s {
	case SourceCOSIF, SourceIFData, SourceCadastro:
		return true
	}
	return false
}
