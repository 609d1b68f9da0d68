// Package bacen is the public entry point of the analysis engine. An
// Analyzer owns the reference-data store, the identity resolver with its
// cache, the three data providers, and the comparison and time-series
// engines, and exposes them behind one concurrency-safe surface.
package bacen

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/enzoomoreira/bacen-data-analysis/internal/analysis"
	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/provider"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
	"github.com/enzoomoreira/bacen-data-analysis/internal/resolve"
)

// Re-exported vocabulary so callers outside the module can name the types
// that appear in Analyzer signatures.
type (
	Identity        = model.CanonicalIdentity
	Scope           = model.Scope
	LedgerKind      = model.LedgerKind
	AccountSelector = model.AccountSelector
	IndicatorSpec   = model.IndicatorSpec
	AccountingRow   = model.AccountingRow
	IndicatorRow    = model.IndicatorRow
	CadastralRow    = model.CadastralRow
	SeriesPoint     = model.SeriesPoint
	ComparisonTable = model.ComparisonTable
	MissingPolicy   = model.MissingPolicy
	FillPolicy      = model.FillPolicy

	AccountingQuery = provider.AccountingQuery
	IndicatorQuery  = provider.IndicatorQuery

	CompareRequest = analysis.CompareRequest
	SeriesRequest  = analysis.SeriesRequest
	BatchResult    = analysis.BatchResult

	Account    = refdata.Account
	Counts     = refdata.Counts
	Loader     = refdata.Loader
	CacheStats = resolve.CacheStats
)

// Options tunes an Analyzer. The zero value is fully usable.
type Options struct {
	// CacheSize caps the identity cache; zero means the resolver default.
	CacheSize int
	// SeriesConcurrency bounds the batch series fan-out; zero means the
	// engine default.
	SeriesConcurrency int
}

// Analyzer is the composed engine. All methods are safe for concurrent use;
// the first call that needs reference data triggers the initial load.
type Analyzer struct {
	store      *refdata.Store
	resolver   *resolve.Resolver
	accounting *provider.Accounting
	indicator  *provider.Indicator
	cadastral  *provider.Cadastral
	comparator *analysis.Comparator
	series     *analysis.SeriesEngine
}

// New builds an Analyzer over the given reference-data loader.
func New(loader Loader, opts Options) *Analyzer {
	store := refdata.NewStore(loader)
	r := resolve.New(store, opts.CacheSize)
	acc := provider.NewAccounting(store)
	ind := provider.NewIndicator(store)
	cad := provider.NewCadastral(store)
	return &Analyzer{
		store:      store,
		resolver:   r,
		accounting: acc,
		indicator:  ind,
		cadastral:  cad,
		comparator: analysis.NewComparator(r, acc, ind, cad),
		series:     analysis.NewSeriesEngine(r, acc, ind, opts.SeriesConcurrency),
	}
}

// Resolve maps any accepted identifier (tax-ID in any spelling, full
// 14-digit number, or institution name) to its canonical identity.
func (a *Analyzer) Resolve(ctx context.Context, identifier any) (Identity, error) {
	return a.resolver.Resolve(ctx, identifier)
}

// Accounting resolves the identifier and returns its ledger rows.
func (a *Analyzer) Accounting(ctx context.Context, identifier any, q AccountingQuery) ([]AccountingRow, error) {
	id, err := a.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return a.accounting.Get(ctx, id, q)
}

// Indicators resolves the identifier and returns its regulatory indicator
// rows at the requested scope.
func (a *Analyzer) Indicators(ctx context.Context, identifier any, q IndicatorQuery) ([]IndicatorRow, error) {
	id, err := a.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return a.indicator.Get(ctx, id, q)
}

// IndicatorsCascade resolves the identifier and walks the given scopes in
// order, returning the first scope that yields data. A nil scope list uses
// the default prudencial, financeiro, individual order.
func (a *Analyzer) IndicatorsCascade(ctx context.Context, identifier any, accounts []AccountSelector, dates []int, scopes []Scope) ([]IndicatorRow, error) {
	id, err := a.resolver.Resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	return a.indicator.Cascade(ctx, id, accounts, dates, scopes)
}

// Cadastral resolves the identifier and returns the requested registry
// attributes. An empty attribute list returns every attribute on file.
func (a *Analyzer) Cadastral(ctx context.Context, identifier any, attributes []string) (CadastralRow, error) {
	id, err := a.resolver.Resolve(ctx, identifier)
	if err != nil {
		return CadastralRow{}, err
	}
	return a.cadastral.Get(ctx, id, attributes)
}

// Attributes lists every registry attribute present in the loaded data.
func (a *Analyzer) Attributes(ctx context.Context) ([]string, error) {
	return a.cadastral.Attributes(ctx)
}

// SearchAccounts searches one source's account dictionary by name substring
// or code prefix. Valid sources are cosif (the individual ledger),
// cosif-prudencial, and ifdata.
func (a *Analyzer) SearchAccounts(ctx context.Context, source, query string) ([]Account, error) {
	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var dict *refdata.AccountDict
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "cosif", "cosif-individual":
		dict = snap.CosifDict(model.LedgerIndividual)
	case "cosif-prudencial":
		dict = snap.CosifDict(model.LedgerPrudencial)
	case "ifdata":
		dict = snap.IFDataDict()
	default:
		return nil, eris.Errorf("bacen: unknown account source %q (valid: cosif, cosif-prudencial, ifdata)", source)
	}
	return dict.Search(query), nil
}

// Compare builds one comparison table across entities and indicator specs.
func (a *Analyzer) Compare(ctx context.Context, req CompareRequest) (*ComparisonTable, error) {
	return a.comparator.Compare(ctx, req)
}

// Series builds one entity's time series over the requested dates.
func (a *Analyzer) Series(ctx context.Context, req SeriesRequest) ([]SeriesPoint, error) {
	return a.series.Series(ctx, req)
}

// SeriesBatch runs many series requests concurrently and returns the points
// in request order together with per-request warnings.
func (a *Analyzer) SeriesBatch(ctx context.Context, reqs []SeriesRequest) (*BatchResult, error) {
	return a.series.SeriesBatch(ctx, reqs)
}

// Reload re-reads the reference tables and atomically swaps the in-memory
// snapshot. In-flight readers keep the snapshot they started with. The
// identity cache is cleared because cached identities may describe the
// replaced data.
func (a *Analyzer) Reload(ctx context.Context) (Counts, error) {
	snap, err := a.store.Reload(ctx)
	if err != nil {
		return Counts{}, err
	}
	a.resolver.ClearCache()
	return snap.Counts(), nil
}

// Counts reports the loaded table sizes, triggering the initial load if
// necessary.
func (a *Analyzer) Counts(ctx context.Context) (Counts, error) {
	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		return Counts{}, err
	}
	return snap.Counts(), nil
}

// Loaded reports whether reference data is already in memory.
func (a *Analyzer) Loaded() bool { return a.store.Loaded() }

// ClearCache empties the identity cache.
func (a *Analyzer) ClearCache() { a.resolver.ClearCache() }

// CacheStats reports identity cache occupancy and hit counters.
func (a *Analyzer) CacheStats() CacheStats { return a.resolver.CacheStats() }

// Lookups counts resolutions that had to consult the reference data, cache
// hits excluded.
func (a *Analyzer) Lookups() int64 { return a.resolver.Lookups() }

// Close releases the underlying loader.
func (a *Analyzer) Close() error { return a.store.Close() }
