package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesPoint_JSONRoundTrip(t *testing.T) {
	missing := SeriesPoint{Data: 202401, NomeEntidade: "ITAU", CNPJ8: "60701190", Conta: "ATIVO TOTAL", Valor: math.NaN()}

	data, err := json.Marshal(missing)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Valor":null`)

	var back SeriesPoint
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Missing())
	assert.Equal(t, 202401, back.Data)

	present := SeriesPoint{Data: 202402, Valor: 1234.5}
	data, err = json.Marshal(present)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Valor":1234.5`)
}

func TestComparisonTable_Cell(t *testing.T) {
	table := &ComparisonTable{
		Columns: []string{ColNomeEntidade, ColCNPJ8, "Ativo Total"},
		Rows: []map[string]any{
			{ColNomeEntidade: "ITAU", ColCNPJ8: "60701190", "Ativo Total": 100.0},
		},
	}

	assert.Equal(t, 100.0, table.Cell(0, "Ativo Total"))
	assert.Nil(t, table.Cell(0, "Inexistente"))
	assert.Nil(t, table.Cell(5, "Ativo Total"))
}

func TestFillPolicy_Valid(t *testing.T) {
	assert.True(t, FillPolicy("").Valid())
	assert.True(t, FillNone.Valid())
	assert.True(t, FillZero.Valid())
	assert.True(t, FillZerosAsMissing.Valid())
	assert.False(t, FillPolicy("drop").Valid())
}
