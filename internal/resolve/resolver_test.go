package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

type staticLoader struct {
	tables refdata.Tables
}

func (l staticLoader) Load(ctx context.Context) (refdata.Tables, error) { return l.tables, nil }
func (l staticLoader) Close() error                                     { return nil }

func testResolver(t *testing.T) *Resolver {
	t.Helper()
	tables := refdata.Tables{
		Cadastro: []refdata.CadastroRow{
			{Data: 202312, CNPJ8: "60701190", NomeEntidade: "Itaú Unibanco S.A.", CodConglPrud: "C0001", CodConglFinanceiro: "F0001"},
			{Data: 202312, CNPJ8: "17192451", NomeEntidade: "Banco Itaucard S.A.", CodConglPrud: "C0001", CodConglFinanceiro: "F0001"},
			{Data: 202312, CNPJ8: "00000000", NomeEntidade: "Banco do Brasil S.A.", CodConglPrud: "C0002", CodConglFinanceiro: "F0002"},
			{Data: 202312, CNPJ8: "00360305", NomeEntidade: "Caixa Econômica Federal"},
			{Data: 202312, CNPJ8: "03323840", NomeEntidade: "Banco Alfa S.A."},
			{Data: 202312, CNPJ8: "60770336", NomeEntidade: "Banco Alfa de Investimento S.A."},
		},
		CosifPrudencial: []refdata.CosifRow{
			{Data: 202312, CNPJ8: "60701190", Nome: "Conglomerado Itaú", CodCongl: "C0001", Conta: 10000007, Saldo: 2000, Documento: 4060},
			{Data: 202312, CNPJ8: "00000000", Nome: "Conglomerado BB", CodCongl: "C0002", Conta: 10000007, Saldo: 1600, Documento: 4060},
		},
	}
	return New(refdata.NewStore(staticLoader{tables}), 0)
}

func TestResolver_TaxIDFormatInvariance(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	inputs := []any{"60701190", "60701190000104", "60.701.190/0001-04", 60701190}
	var ids []model.CanonicalIdentity
	for _, in := range inputs {
		id, err := r.Resolve(ctx, in)
		require.NoError(t, err, "%v", in)
		ids = append(ids, id)
	}

	for _, id := range ids {
		assert.Equal(t, "60701190", id.CNPJ8)
		assert.Equal(t, "Itaú Unibanco S.A.", id.NomeEntidade)
		assert.True(t, ids[0].Equal(id))
	}
	// The raw spelling is retained on each identity.
	assert.Equal(t, "60.701.190/0001-04", ids[2].IdentificadorOriginal)
}

func TestResolver_NameExactBeatsSubstring(t *testing.T) {
	r := testResolver(t)

	// "Banco Alfa S.A." is a substring of "Banco Alfa de Investimento
	// S.A."'s prefix space, but the exact normalized match wins alone.
	id, err := r.Resolve(context.Background(), "banco alfa s.a.")
	require.NoError(t, err)
	assert.Equal(t, "03323840", id.CNPJ8)
}

func TestResolver_NameSubstring(t *testing.T) {
	r := testResolver(t)

	id, err := r.Resolve(context.Background(), "itaucard")
	require.NoError(t, err)
	assert.Equal(t, "17192451", id.CNPJ8)
}

func TestResolver_NameAccentAndCaseInsensitive(t *testing.T) {
	r := testResolver(t)

	id, err := r.Resolve(context.Background(), "caixa economica")
	require.NoError(t, err)
	assert.Equal(t, "00360305", id.CNPJ8)

	id, err = r.Resolve(context.Background(), "CAIXA ECONÔMICA FEDERAL")
	require.NoError(t, err)
	assert.Equal(t, "00360305", id.CNPJ8)
}

func TestResolver_AmbiguousName(t *testing.T) {
	r := testResolver(t)

	_, err := r.Resolve(context.Background(), "alfa")
	require.Error(t, err)
	require.True(t, model.IsAmbiguousIdentifier(err))

	var ambErr *model.AmbiguousIdentifierError
	require.ErrorAs(t, err, &ambErr)
	require.Len(t, ambErr.Matches, 2)
	cnpjs := []string{ambErr.Matches[0].CNPJ8, ambErr.Matches[1].CNPJ8}
	assert.ElementsMatch(t, []string{"03323840", "60770336"}, cnpjs)
}

func TestResolver_NotFound(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "banco nacional inexistente")
	require.Error(t, err)
	require.True(t, model.IsEntityNotFound(err))

	// Word overlap produces suggestions.
	var nfErr *model.EntityNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.NotEmpty(t, nfErr.Suggestions)
	assert.LessOrEqual(t, len(nfErr.Suggestions), 3)

	// Well-formed tax IDs absent from the registry also miss.
	_, err = r.Resolve(ctx, "99999999")
	assert.True(t, model.IsEntityNotFound(err))
}

func TestResolver_EmptyIdentifier(t *testing.T) {
	r := testResolver(t)

	for _, in := range []any{"", "   "} {
		_, err := r.Resolve(context.Background(), in)
		assert.True(t, model.IsEntityNotFound(err), "%q", in)
	}
}

func TestResolver_ConglomerateIndirection(t *testing.T) {
	r := testResolver(t)

	// A conglomerate member's consolidated statements are filed by the
	// conglomerate leader.
	id, err := r.Resolve(context.Background(), "17192451")
	require.NoError(t, err)
	assert.Equal(t, "17192451", id.CNPJ8)
	assert.Equal(t, "60701190", id.CNPJReporteCOSIF)
	assert.Equal(t, "C0001", id.CodConglPrud)
	assert.Equal(t, "F0001", id.CodConglFinanceiro)
}

func TestResolver_SelfReporting(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	// The leader reports for itself.
	id, err := r.Resolve(ctx, "60701190")
	require.NoError(t, err)
	assert.Equal(t, id.CNPJ8, id.CNPJReporteCOSIF)

	// So does an entity outside any conglomerate.
	id, err = r.Resolve(ctx, "00360305")
	require.NoError(t, err)
	assert.Equal(t, id.CNPJ8, id.CNPJReporteCOSIF)
	assert.Empty(t, id.CodConglPrud)
}

func TestResolver_CacheServesRepeats(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := r.Resolve(ctx, "60701190")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), r.Lookups())

	stats := r.CacheStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(4), stats.Hits)
}

func TestResolver_DistinctSpellingsCacheSeparately(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	a, err := r.Resolve(ctx, "60701190")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, "60.701.190/0001-04")
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, int64(2), r.Lookups())
	assert.Equal(t, 2, r.CacheStats().Entries)
}

func TestResolver_FailedResolutionsNotCached(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := r.Resolve(ctx, "alfa")
		require.Error(t, err)
	}
	assert.Equal(t, int64(2), r.Lookups())
	assert.Equal(t, 0, r.CacheStats().Entries)
}

func TestResolver_ClearCache(t *testing.T) {
	r := testResolver(t)
	ctx := context.Background()

	_, err := r.Resolve(ctx, "60701190")
	require.NoError(t, err)
	r.ClearCache()
	_, err = r.Resolve(ctx, "60701190")
	require.NoError(t, err)

	assert.Equal(t, int64(2), r.Lookups())
}

func TestResolver_NumericIdentifierZeroPadding(t *testing.T) {
	r := testResolver(t)

	// Leading zeros lost by numeric columns are restored before lookup.
	id, err := r.Resolve(context.Background(), 360305)
	require.NoError(t, err)
	assert.Equal(t, "00360305", id.CNPJ8)
	assert.Equal(t, "Caixa Econômica Federal", id.NomeEntidade)
}
