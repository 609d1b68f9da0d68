// Package export renders query results into tabular output formats. A
// Table is the common intermediate: result-specific builders flatten the
// typed rows, and the writers only deal with headers and cell values.
package export

import (
	"math"
	"strconv"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
)

// Table is a rendered result ready for a writer.
type Table struct {
	Header []string
	Rows   [][]any
}

// FromAccountingRows flattens ledger rows in their fixed column order.
func FromAccountingRows(rows []model.AccountingRow) Table {
	t := Table{
		Header: []string{"Nome_Entidade", "CNPJ_8", "DATA", "CONTA", "NOME_CONTA", "SALDO", "DOCUMENTO"},
		Rows:   make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.NomeEntidade, r.CNPJ8, r.Data, r.Conta, r.NomeConta, r.Saldo, r.Documento})
	}
	return t
}

// FromIndicatorRows flattens indicator rows, keeping the lookup-code
// audit column last.
func FromIndicatorRows(rows []model.IndicatorRow) Table {
	t := Table{
		Header: []string{"Nome_Entidade", "CNPJ_8", "DATA", "CONTA", "NOME_CONTA", "VALOR", "ID_BUSCA_USADO"},
		Rows:   make([][]any, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []any{r.NomeEntidade, r.CNPJ8, r.Data, r.Conta, r.NomeConta, r.Valor, r.IDBuscaUsado})
	}
	return t
}

// FromSeriesPoints flattens time-series points in the long format.
// Missing observations render as blank cells.
func FromSeriesPoints(points []model.SeriesPoint) Table {
	t := Table{
		Header: []string{"DATA", "Nome_Entidade", "CNPJ_8", "Conta", "Valor"},
		Rows:   make([][]any, 0, len(points)),
	}
	for _, p := range points {
		var valor any = p.Valor
		if p.Missing() {
			valor = nil
		}
		t.Rows = append(t.Rows, []any{p.Data, p.NomeEntidade, p.CNPJ8, p.Conta, valor})
	}
	return t
}

// FromComparison flattens a pivoted comparison table, preserving its
// column order. Warnings are not part of the tabular output.
func FromComparison(table *model.ComparisonTable) Table {
	t := Table{
		Header: append([]string(nil), table.Columns...),
		Rows:   make([][]any, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		cells := make([]any, len(table.Columns))
		for i, col := range table.Columns {
			cells[i] = row[col]
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// formatValue renders a cell for text output. Nil and NaN become the
// empty string.
func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return stringify(v)
}
