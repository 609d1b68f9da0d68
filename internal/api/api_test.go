package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enzoomoreira/bacen-data-analysis/internal/config"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
	"github.com/enzoomoreira/bacen-data-analysis/pkg/bacen"
)

type staticLoader struct{ tables refdata.Tables }

func (l staticLoader) Load(ctx context.Context) (refdata.Tables, error) { return l.tables, nil }
func (l staticLoader) Close() error                                     { return nil }

// testTables carries two related Itaú entities so a bare "itau" lookup is
// ambiguous, plus Caixa for the unambiguous paths.
func testTables() refdata.Tables {
	return refdata.Tables{
		Cadastro: []refdata.CadastroRow{
			{Data: 202312, CNPJ8: "60701190", NomeEntidade: "Itaú Unibanco S.A.", CodConglPrud: "C0001", CodConglFinanceiro: "F0001",
				Atributos: map[string]string{"segmento": "b1", "uf": "SP"}},
			{Data: 202312, CNPJ8: "17192451", NomeEntidade: "Banco Itaucard S.A.", CodConglPrud: "C0001", CodConglFinanceiro: "F0001",
				Atributos: map[string]string{"segmento": "b1", "uf": "SP"}},
			{Data: 202312, CNPJ8: "00360305", NomeEntidade: "Caixa Econômica Federal",
				Atributos: map[string]string{"segmento": "b1", "uf": "DF"}},
		},
		CosifIndividual: []refdata.CosifRow{
			{Data: 202312, CNPJ8: "60701190", Nome: "Itaú Unibanco S.A.", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 1500, Documento: 4010},
			{Data: 202312, CNPJ8: "00360305", Nome: "Caixa Econômica Federal", Conta: 10000007, NomeConta: "Circulante e Realizável a Longo Prazo", Saldo: 900, Documento: 4010},
		},
		IFData: []refdata.IFDataRow{
			{Data: 202312, CodInst: "C0001", Conta: 7001, NomeConta: "Ativo Total", Valor: 2050},
		},
	}
}

func newTestServer(t *testing.T, cfg config.ServerConfig) (http.Handler, *bacen.Analyzer) {
	t.Helper()
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	a := bacen.New(staticLoader{tables: testTables()}, bacen.Options{})
	return NewServer(a, cfg).Router(), a
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decodeBody(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["loaded"])
}

func TestResolveEndpoint(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodGet, "/v1/resolve?q=60.701.190/0001-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var id map[string]any
	decodeBody(t, rec, &id)
	assert.Equal(t, "60701190", id["cnpj_8"])
	assert.Equal(t, "Itaú Unibanco S.A.", id["nome_entidade"])
	assert.Equal(t, "C0001", id["cod_congl_prud"])
}

func TestResolveEndpoint_MissingQuery(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodGet, "/v1/resolve", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "bad_request", body.Error)
}

func TestResolveEndpoint_NotFound(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodGet, "/v1/resolve?q=99999999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "entity_not_found", body.Error)
	assert.Equal(t, "99999999", body.Identifier)
}

func TestResolveEndpoint_Ambiguous(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodGet, "/v1/resolve?q=itau", nil)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "ambiguous_identifier", body.Error)
	require.Len(t, body.Matches, 2)
}

func TestAccountsEndpoint(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodGet, "/v1/accounts/cosif?q=circulante", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Source   string `json:"source"`
		Accounts []struct {
			Code int64  `json:"code"`
			Name string `json:"name"`
		} `json:"accounts"`
	}
	decodeBody(t, rec, &body)
	assert.Equal(t, "cosif", body.Source)
	require.Len(t, body.Accounts, 1)
	assert.Equal(t, int64(10000007), body.Accounts[0].Code)
}

func TestAccountsEndpoint_UnknownSource(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodGet, "/v1/accounts/ratings", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareEndpoint(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodPost, "/v1/compare", map[string]any{
		"identifiers": []any{"60701190", "00360305"},
		"date":        202312,
		"specs": []map[string]any{
			{"label": "Ativo", "source": "cosif", "kind": "individual", "account": 10000007},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var table struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	decodeBody(t, rec, &table)
	assert.Equal(t, []string{"Nome_Entidade", "CNPJ_8", "Ativo"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.InDelta(t, 1500.0, table.Rows[0]["Ativo"].(float64), 0.001)
	assert.InDelta(t, 900.0, table.Rows[1]["Ativo"].(float64), 0.001)
}

func TestCompareEndpoint_InvalidBody(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/v1/compare", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareEndpoint_InvalidScope(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodPost, "/v1/compare", map[string]any{
		"identifiers": []any{"60701190"},
		"date":        202312,
		"specs": []map[string]any{
			{"label": "Ativo", "source": "ifdata", "account": 7001, "scope": "consolidado"},
		},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorBody
	decodeBody(t, rec, &body)
	assert.Equal(t, "invalid_scope", body.Error)
	assert.Equal(t, "consolidado", body.Scope)
	assert.Len(t, body.ValidScopes, 3)
}

func TestSeriesEndpoint(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodPost, "/v1/series", map[string]any{
		"identifier": "caixa",
		"source":     "cosif",
		"kind":       "individual",
		"account":    10000007,
		"dates":      []int{202312},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Points []struct {
			Data  int     `json:"DATA"`
			Valor float64 `json:"Valor"`
		} `json:"points"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Points, 1)
	assert.Equal(t, 202312, body.Points[0].Data)
	assert.InDelta(t, 900.0, body.Points[0].Valor, 0.001)
}

func TestSeriesEndpoint_NotFound(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodPost, "/v1/series", map[string]any{
		"identifier": "banco fantasma",
		"source":     "cosif",
		"kind":       "individual",
		"account":    10000007,
		"dates":      []int{202312},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSeriesBatchEndpoint(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodPost, "/v1/series/batch", map[string]any{
		"requests": []map[string]any{
			{"identifier": "caixa", "source": "cosif", "kind": "individual", "account": 10000007, "dates": []int{202312}},
			{"identifier": "60701190", "source": "ifdata", "account": 7001, "dates": []int{202312}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Points []struct {
			CNPJ8 string  `json:"CNPJ_8"`
			Valor float64 `json:"Valor"`
		} `json:"points"`
		Warnings []string `json:"warnings"`
	}
	decodeBody(t, rec, &body)
	require.Len(t, body.Points, 2)
	assert.Equal(t, "00360305", body.Points[0].CNPJ8)
	assert.Equal(t, "60701190", body.Points[1].CNPJ8)
	assert.Empty(t, body.Warnings)
}

func TestSeriesBatchEndpoint_Empty(t *testing.T) {
	h, _ := newTestServer(t, config.ServerConfig{})

	rec := doRequest(t, h, http.MethodPost, "/v1/series/batch", map[string]any{"requests": []any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	h, a := newTestServer(t, config.ServerConfig{})

	// Warm the cache so clear has something to clear.
	_, err := a.Resolve(context.Background(), "60701190")
	require.NoError(t, err)

	rec := doRequest(t, h, http.MethodGet, "/v1/admin/cache/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Cache struct {
			Entries int `json:"entries"`
		} `json:"cache"`
		Lookups int64 `json:"lookups"`
	}
	decodeBody(t, rec, &stats)
	assert.Equal(t, 1, stats.Cache.Entries)
	assert.EqualValues(t, 1, stats.Lookups)

	rec = doRequest(t, h, http.MethodPost, "/v1/admin/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var reload struct {
		Status string `json:"status"`
		Counts struct {
			Entities int `json:"entities"`
		} `json:"counts"`
	}
	decodeBody(t, rec, &reload)
	assert.Equal(t, "reloaded", reload.Status)
	assert.Equal(t, 3, reload.Counts.Entities)

	// Reload already dropped the cached identity.
	rec = doRequest(t, h, http.MethodPost, "/v1/admin/cache/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, a.CacheStats().Entries)
}
