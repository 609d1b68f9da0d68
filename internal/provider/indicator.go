package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

// IndicatorQuery selects regulatory-indicator rows at one organizational
// scope. Empty Accounts or Dates mean "no filter on that dimension".
type IndicatorQuery struct {
	Accounts []model.AccountSelector
	Dates    []int
	Scope    model.Scope
}

// Indicator serves regulatory-indicator queries. Each returned row carries
// ID_BUSCA_USADO, the lookup code that actually produced it, so callers can
// audit which organizational level the data came from.
type Indicator struct {
	store *refdata.Store
}

// NewIndicator creates the indicator provider.
func NewIndicator(store *refdata.Store) *Indicator {
	return &Indicator{store: store}
}

// Get returns indicator rows at exactly the requested scope. It never
// falls back to another scope: an unrecognized scope fails with
// InvalidScopeError, and a scope whose backing code is absent or has no
// matching rows fails with DataUnavailableError.
func (p *Indicator) Get(ctx context.Context, id model.CanonicalIdentity, q IndicatorQuery) ([]model.IndicatorRow, error) {
	if !q.Scope.Valid() {
		return nil, &model.InvalidScopeError{Scope: string(q.Scope), Valid: model.ValidScopes()}
	}

	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	code := q.Scope.LookupCode(id)
	if code == "" {
		return nil, &model.DataUnavailableError{
			Entity: id.NomeEntidade,
			Scope:  q.Scope,
			Reason: "entity has no backing code at this scope",
		}
	}

	wantAccount, err := resolveSelectors(snap.IFDataDict(), q.Accounts, id.NomeEntidade, "ifdata")
	if err != nil {
		return nil, err
	}
	wantDate := toIntSet(q.Dates)

	var out []model.IndicatorRow
	for _, r := range snap.IFDataRows(code) {
		if wantAccount != nil && !wantAccount[r.Conta] {
			continue
		}
		if wantDate != nil && !wantDate[r.Data] {
			continue
		}
		out = append(out, model.IndicatorRow{
			NomeEntidade: id.NomeEntidade,
			CNPJ8:        id.CNPJ8,
			Data:         r.Data,
			Conta:        r.Conta,
			NomeConta:    r.NomeConta,
			Valor:        r.Valor,
			IDBuscaUsado: code,
		})
	}
	if len(out) == 0 {
		return nil, &model.DataUnavailableError{
			Entity: id.NomeEntidade,
			Scope:  q.Scope,
			Reason: fmt.Sprintf("code %s has no indicator rows for the requested accounts/dates", code),
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Conta != out[j].Conta {
			return out[i].Conta < out[j].Conta
		}
		return out[i].Data < out[j].Data
	})
	return out, nil
}

// DefaultCascadeOrder is the scope priority used when the caller supplies
// none: consolidated views first, the entity's own filings last.
func DefaultCascadeOrder() []model.Scope {
	return []model.Scope{model.ScopePrudencial, model.ScopeFinanceiro, model.ScopeIndividual}
}

// Cascade tries the given scopes in order and returns the rows of the
// first one that has data. Scopes without data advance the cascade; an
// invalid scope or an unexpected failure aborts it immediately. When every
// scope lacks data the last DataUnavailableError is returned, naming the
// scope tried last.
func (p *Indicator) Cascade(ctx context.Context, id model.CanonicalIdentity, accounts []model.AccountSelector, dates []int, scopes []model.Scope) ([]model.IndicatorRow, error) {
	if len(scopes) == 0 {
		scopes = DefaultCascadeOrder()
	}

	var lastErr error
	for _, scope := range scopes {
		rows, err := p.Get(ctx, id, IndicatorQuery{Accounts: accounts, Dates: dates, Scope: scope})
		if err == nil {
			return rows, nil
		}
		if !model.IsDataUnavailable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}
