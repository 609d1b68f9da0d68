// Package analysis composes the resolver and the data providers into the
// two batch-shaped products callers actually consume: pivoted comparison
// tables across many entities, and long-format time series with a fixed
// schema and explicit missing-value handling.
package analysis

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/normalize"
	"github.com/enzoomoreira/bacen-data-analysis/internal/provider"
	"github.com/enzoomoreira/bacen-data-analysis/internal/resolve"
)

// Comparator builds one-row-per-entity tables from a list of indicator
// specs. Failures stay local: an identifier that cannot be resolved, or
// an indicator an entity has no data for, becomes a warning and a blank,
// never a dropped entity or an aborted table.
type Comparator struct {
	resolver   *resolve.Resolver
	accounting *provider.Accounting
	indicator  *provider.Indicator
	cadastral  *provider.Cadastral
}

// NewComparator wires a comparator over an already-constructed resolver
// and provider set.
func NewComparator(r *resolve.Resolver, acc *provider.Accounting, ind *provider.Indicator, cad *provider.Cadastral) *Comparator {
	return &Comparator{resolver: r, accounting: acc, indicator: ind, cadastral: cad}
}

// CompareRequest is one comparison run: which entities, which indicator
// columns, at which reference date.
type CompareRequest struct {
	// Identifiers lists the entities to compare, in output row order.
	// Each element is resolved like any other identifier: tax IDs in any
	// format, or names.
	Identifiers []any `json:"identifiers" yaml:"identifiers"`
	// Specs declares the indicator columns, in output column order.
	Specs []model.IndicatorSpec `json:"specs" yaml:"specs"`
	// Date is the reference date (YYYYMM) every data-backed column is
	// evaluated at. Cadastral columns ignore it.
	Date int `json:"date" yaml:"date"`
	// Fill post-processes the finished table; empty means FillNone.
	Fill model.FillPolicy `json:"fill,omitempty" yaml:"fill,omitempty"`
}

// Compare evaluates every spec against every identifier and returns the
// pivoted table. Row order follows req.Identifiers, column order follows
// req.Specs. Unresolvable identifiers keep their row, with the raw
// identifier as Nome_Entidade and every cell nil.
func (c *Comparator) Compare(ctx context.Context, req CompareRequest) (*model.ComparisonTable, error) {
	if len(req.Identifiers) == 0 {
		return nil, eris.New("analysis: compare needs at least one identifier")
	}
	if err := validateSpecs(req.Specs); err != nil {
		return nil, err
	}
	if !req.Fill.Valid() {
		return nil, eris.Errorf("analysis: invalid fill policy %q", req.Fill)
	}

	table := &model.ComparisonTable{
		Columns: make([]string, 0, len(req.Specs)+2),
		Rows:    make([]map[string]any, 0, len(req.Identifiers)),
	}
	table.Columns = append(table.Columns, model.ColNomeEntidade, model.ColCNPJ8)
	for _, spec := range req.Specs {
		table.Columns = append(table.Columns, spec.Label)
	}

	for _, rawID := range req.Identifiers {
		raw := normalize.Identifier(rawID)
		id, err := c.resolver.Resolve(ctx, rawID)
		if err != nil {
			if !model.IsTolerable(err) {
				return nil, err
			}
			table.Warnings = append(table.Warnings, fmt.Sprintf("%s: %v", raw, err))
			table.Rows = append(table.Rows, blankRow(raw, req.Specs))
			zap.L().Warn("analysis: identifier skipped in comparison",
				zap.String("identifier", raw),
				zap.Error(err),
			)
			continue
		}

		row := map[string]any{
			model.ColNomeEntidade: id.NomeEntidade,
			model.ColCNPJ8:        id.CNPJ8,
		}
		for _, spec := range req.Specs {
			value, err := c.cell(ctx, id, spec, req.Date)
			if err != nil {
				if !model.IsTolerable(err) {
					return nil, err
				}
				table.Warnings = append(table.Warnings, fmt.Sprintf("%s / %s: %v", id.NomeEntidade, spec.Label, err))
				row[spec.Label] = nil
				continue
			}
			row[spec.Label] = value
		}
		table.Rows = append(table.Rows, row)
	}

	applyFill(table, req.Fill, req.Specs)
	return table, nil
}

// cell fetches a single indicator value for a resolved entity. Providers
// return rows in a deterministic order, so the first row is a stable
// choice when a (account, date) pair has more than one filing document.
func (c *Comparator) cell(ctx context.Context, id model.CanonicalIdentity, spec model.IndicatorSpec, date int) (any, error) {
	switch spec.Source {
	case model.SourceCOSIF:
		docs := spec.Documents
		if len(docs) == 0 {
			docs = model.DefaultDocumentCodes(spec.Kind)
		}
		rows, err := c.accounting.Get(ctx, id, provider.AccountingQuery{
			Accounts:  []model.AccountSelector{spec.Account},
			Dates:     []int{date},
			Kind:      spec.Kind,
			Documents: docs,
		})
		if err != nil {
			return nil, err
		}
		return rows[0].Saldo, nil

	case model.SourceIFData:
		var (
			rows []model.IndicatorRow
			err  error
		)
		if spec.Scope == "" {
			rows, err = c.indicator.Cascade(ctx, id, []model.AccountSelector{spec.Account}, []int{date}, nil)
		} else {
			rows, err = c.indicator.Get(ctx, id, provider.IndicatorQuery{
				Accounts: []model.AccountSelector{spec.Account},
				Dates:    []int{date},
				Scope:    spec.Scope,
			})
		}
		if err != nil {
			return nil, err
		}
		return rows[0].Valor, nil

	case model.SourceCadastro:
		row, err := c.cadastral.Get(ctx, id, []string{spec.Attribute})
		if err != nil {
			return nil, err
		}
		return row.Atributos[spec.Attribute], nil
	}
	return nil, eris.Errorf("analysis: unknown source %q", spec.Source)
}

// validateSpecs rejects malformed indicator specs up front so a bad spec
// aborts the whole comparison instead of warning per entity.
func validateSpecs(specs []model.IndicatorSpec) error {
	if len(specs) == 0 {
		return eris.New("analysis: compare needs at least one indicator spec")
	}
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.Label == "" {
			return eris.New("analysis: indicator spec without a label")
		}
		if spec.Label == model.ColNomeEntidade || spec.Label == model.ColCNPJ8 {
			return eris.Errorf("analysis: label %q collides with a leading column", spec.Label)
		}
		if seen[spec.Label] {
			return eris.Errorf("analysis: duplicate indicator label %q", spec.Label)
		}
		seen[spec.Label] = true

		switch spec.Source {
		case model.SourceCOSIF:
			if !spec.Kind.Valid() {
				return eris.Errorf("analysis: spec %q: invalid ledger kind %q", spec.Label, spec.Kind)
			}
			if spec.Account.IsZero() {
				return eris.Errorf("analysis: spec %q needs an account", spec.Label)
			}
		case model.SourceIFData:
			if spec.Account.IsZero() {
				return eris.Errorf("analysis: spec %q needs an account", spec.Label)
			}
			if spec.Scope != "" && !spec.Scope.Valid() {
				return &model.InvalidScopeError{Scope: string(spec.Scope), Valid: model.ValidScopes()}
			}
		case model.SourceCadastro:
			if spec.Attribute == "" {
				return eris.Errorf("analysis: spec %q needs an attribute", spec.Label)
			}
		default:
			return eris.Errorf("analysis: spec %q: unknown source %q", spec.Label, spec.Source)
		}
	}
	return nil
}

// blankRow is the placeholder row for an identifier that never resolved.
func blankRow(raw string, specs []model.IndicatorSpec) map[string]any {
	row := map[string]any{
		model.ColNomeEntidade: raw,
		model.ColCNPJ8:        nil,
	}
	for _, spec := range specs {
		row[spec.Label] = nil
	}
	return row
}

// applyFill rewrites indicator cells in place according to the table-wide
// fill policy. Leading columns are never touched.
func applyFill(table *model.ComparisonTable, fill model.FillPolicy, specs []model.IndicatorSpec) {
	switch fill {
	case model.FillZero:
		for _, row := range table.Rows {
			for _, spec := range specs {
				if row[spec.Label] == nil {
					row[spec.Label] = float64(0)
				}
			}
		}
	case model.FillZerosAsMissing:
		for _, row := range table.Rows {
			for _, spec := range specs {
				if v, ok := row[spec.Label].(float64); ok && v == 0 {
					row[spec.Label] = nil
				}
			}
		}
	}
}
