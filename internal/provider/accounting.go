// Package provider fetches result rows from the reference snapshot for
// already-resolved identities: ledger balances, regulatory indicators, and
// cadastral attributes. Providers never resolve identifiers themselves.
package provider

import (
	"context"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

// AccountingQuery selects ledger rows. Kind is mandatory: the individual
// and prudential ledgers cover different reporting populations and are
// never conflated silently. Empty Accounts, Dates, or Documents mean "no
// filter on that dimension".
type AccountingQuery struct {
	Accounts  []model.AccountSelector
	Dates     []int
	Kind      model.LedgerKind
	Documents []int
}

// Accounting serves ledger-style balance queries.
type Accounting struct {
	store *refdata.Store
}

// NewAccounting creates the accounting provider.
func NewAccounting(store *refdata.Store) *Accounting {
	return &Accounting{store: store}
}

// Get returns one row per (account, date, document) matched. Prudential
// queries look up rows filed by the entity's reporting leader, but every
// returned row carries the requested entity's own name and tax-ID root.
// Selectors that resolve to no known account are skipped with a warning;
// the request fails only when nothing remains to return.
func (p *Accounting) Get(ctx context.Context, id model.CanonicalIdentity, q AccountingQuery) ([]model.AccountingRow, error) {
	if !q.Kind.Valid() {
		return nil, eris.Errorf("provider: invalid ledger kind %q", q.Kind)
	}

	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	lookupCNPJ := id.CNPJ8
	if q.Kind == model.LedgerPrudencial {
		lookupCNPJ = id.CNPJReporteCOSIF
	}

	wantAccount, err := resolveSelectors(snap.CosifDict(q.Kind), q.Accounts, id.NomeEntidade, string(q.Kind))
	if err != nil {
		return nil, err
	}
	wantDate := toIntSet(q.Dates)
	wantDoc := toIntSet(q.Documents)

	var out []model.AccountingRow
	for _, r := range snap.CosifRows(q.Kind, lookupCNPJ) {
		if wantAccount != nil && !wantAccount[r.Conta] {
			continue
		}
		if wantDate != nil && !wantDate[r.Data] {
			continue
		}
		if wantDoc != nil && !wantDoc[r.Documento] {
			continue
		}
		out = append(out, model.AccountingRow{
			NomeEntidade: id.NomeEntidade,
			CNPJ8:        id.CNPJ8,
			Data:         r.Data,
			Conta:        r.Conta,
			NomeConta:    r.NomeConta,
			Saldo:        r.Saldo,
			Documento:    r.Documento,
		})
	}
	if len(out) == 0 {
		return nil, &model.DataUnavailableError{
			Entity: id.NomeEntidade,
			Reason: fmt.Sprintf("no %s ledger rows for the requested accounts/dates", q.Kind),
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Conta != out[j].Conta {
			return out[i].Conta < out[j].Conta
		}
		if out[i].Data != out[j].Data {
			return out[i].Data < out[j].Data
		}
		return out[i].Documento < out[j].Documento
	})
	return out, nil
}

// resolveSelectors maps account selectors through a dictionary into a code
// filter set. nil means "no account filter". A request whose every selector
// is unknown has nothing left to query and fails.
func resolveSelectors(dict *refdata.AccountDict, selectors []model.AccountSelector, entity, source string) (map[int64]bool, error) {
	if len(selectors) == 0 {
		return nil, nil
	}

	want := make(map[int64]bool, len(selectors))
	for _, sel := range selectors {
		acc, ok := dict.Resolve(sel)
		if !ok {
			zap.L().Warn("provider: unknown account selector",
				zap.String("selector", sel.String()),
				zap.String("source", source))
			continue
		}
		want[acc.Code] = true
	}
	if len(want) == 0 {
		return nil, &model.DataUnavailableError{
			Entity: entity,
			Reason: fmt.Sprintf("none of the requested accounts exist in the %s dictionary", source),
		}
	}
	return want, nil
}

func toIntSet(values []int) map[int]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
