package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/normalize"
	"github.com/enzoomoreira/bacen-data-analysis/internal/provider"
	"github.com/enzoomoreira/bacen-data-analysis/internal/resolve"
)

// DefaultSeriesConcurrency bounds batch fan-out when the caller does not
// choose a limit.
const DefaultSeriesConcurrency = 4

// SeriesRequest describes one time series: an entity, an account, and the
// dates to observe it at. The output is reindexed over Dates, so every
// requested date yields a point (missing observations are NaN) before the
// missing policy runs.
type SeriesRequest struct {
	// Identifier is resolved like any other: tax ID in any format, or a
	// name.
	Identifier any `json:"identifier" yaml:"identifier"`
	// Label overrides the Conta column of the output; defaults to the
	// account selector's text.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	// Source selects the provider: cosif or ifdata.
	Source model.Source `json:"source" yaml:"source"`
	// Account selects the ledger or indicator account.
	Account model.AccountSelector `json:"account" yaml:"account"`
	// Dates is the full observation index (YYYYMM), in output order.
	Dates []int `json:"dates" yaml:"dates"`
	// Kind selects the ledger table (cosif only). Mandatory for cosif.
	Kind model.LedgerKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	// Documents restricts cosif rows to these report-document codes;
	// empty means the kind's conventional codes.
	Documents []int `json:"documents,omitempty" yaml:"documents,omitempty"`
	// Scope pins the organizational level (ifdata only); empty runs the
	// scope cascade.
	Scope model.Scope `json:"scope,omitempty" yaml:"scope,omitempty"`
	// Missing controls what happens to NaN points; nil drops them.
	Missing *model.MissingPolicy `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// BatchResult aggregates a batch run: all points in request order, plus
// one warning per request that was skipped for a tolerable reason.
type BatchResult struct {
	Points   []model.SeriesPoint `json:"points"`
	Warnings []string            `json:"warnings,omitempty"`
}

// SeriesEngine fetches time series one at a time or as a concurrent
// batch. Batch runs resolve each distinct identifier exactly once, up
// front, so fan-out never multiplies resolver work.
type SeriesEngine struct {
	resolver    *resolve.Resolver
	accounting  *provider.Accounting
	indicator   *provider.Indicator
	concurrency int
}

// NewSeriesEngine wires a series engine. concurrency bounds batch
// fan-out; values < 1 fall back to DefaultSeriesConcurrency.
func NewSeriesEngine(r *resolve.Resolver, acc *provider.Accounting, ind *provider.Indicator, concurrency int) *SeriesEngine {
	if concurrency < 1 {
		concurrency = DefaultSeriesConcurrency
	}
	return &SeriesEngine{resolver: r, accounting: acc, indicator: ind, concurrency: concurrency}
}

// Series fetches a single series. Strict: resolution and data errors
// propagate to the caller instead of degrading to warnings.
func (e *SeriesEngine) Series(ctx context.Context, req SeriesRequest) ([]model.SeriesPoint, error) {
	if err := validateSeries(req); err != nil {
		return nil, err
	}
	id, err := e.resolver.Resolve(ctx, req.Identifier)
	if err != nil {
		return nil, err
	}
	return e.fetch(ctx, id, req)
}

// SeriesBatch fetches many series concurrently. Requests that fail for a
// tolerable reason (unresolvable identifier, no data) are reported as
// warnings and skipped; anything else aborts the batch. Points come back
// grouped in request order regardless of completion order.
func (e *SeriesEngine) SeriesBatch(ctx context.Context, reqs []SeriesRequest) (*BatchResult, error) {
	if len(reqs) == 0 {
		return &BatchResult{}, nil
	}
	for _, req := range reqs {
		if err := validateSeries(req); err != nil {
			return nil, err
		}
	}

	// Resolve each distinct identifier once, serially, before fanning
	// out. A batch of N requests over K entities costs at most K
	// resolver lookups.
	type resolution struct {
		id  model.CanonicalIdentity
		err error
	}
	resolved := make(map[string]resolution, len(reqs))
	for _, req := range reqs {
		key := normalize.Key(req.Identifier)
		if _, ok := resolved[key]; ok {
			continue
		}
		id, err := e.resolver.Resolve(ctx, req.Identifier)
		resolved[key] = resolution{id: id, err: err}
		if err != nil && !model.IsTolerable(err) {
			return nil, err
		}
	}

	zap.L().Info("analysis: series batch starting",
		zap.Int("requests", len(reqs)),
		zap.Int("entities", len(resolved)),
		zap.Int("concurrency", e.concurrency),
	)

	slots := make([][]model.SeriesPoint, len(reqs))
	warnings := make([]string, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res := resolved[normalize.Key(req.Identifier)]
			if res.err != nil {
				warnings[i] = fmt.Sprintf("%s: %v", normalize.Identifier(req.Identifier), res.err)
				return nil // don't abort the batch on a skipped identifier
			}
			points, err := e.fetch(gctx, res.id, req)
			if err != nil {
				if !model.IsTolerable(err) {
					return err
				}
				warnings[i] = fmt.Sprintf("%s / %s: %v", res.id.NomeEntidade, seriesLabel(req), err)
				return nil
			}
			slots[i] = points
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &BatchResult{}
	for i := range reqs {
		result.Points = append(result.Points, slots[i]...)
		if warnings[i] != "" {
			result.Warnings = append(result.Warnings, warnings[i])
		}
	}

	zap.L().Info("analysis: series batch complete",
		zap.Int("points", len(result.Points)),
		zap.Int("skipped", len(result.Warnings)),
	)
	return result, nil
}

// fetch runs one provider query for an already-resolved identity and
// reindexes the result over the requested dates. When a (account, date)
// pair carries more than one filing document the first row in provider
// order wins, which is deterministic.
func (e *SeriesEngine) fetch(ctx context.Context, id model.CanonicalIdentity, req SeriesRequest) ([]model.SeriesPoint, error) {
	valueByDate := make(map[int]float64, len(req.Dates))

	switch req.Source {
	case model.SourceCOSIF:
		docs := req.Documents
		if len(docs) == 0 {
			docs = model.DefaultDocumentCodes(req.Kind)
		}
		rows, err := e.accounting.Get(ctx, id, provider.AccountingQuery{
			Accounts:  []model.AccountSelector{req.Account},
			Dates:     req.Dates,
			Kind:      req.Kind,
			Documents: docs,
		})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if _, ok := valueByDate[row.Data]; !ok {
				valueByDate[row.Data] = row.Saldo
			}
		}

	case model.SourceIFData:
		var (
			rows []model.IndicatorRow
			err  error
		)
		if req.Scope == "" {
			rows, err = e.indicator.Cascade(ctx, id, []model.AccountSelector{req.Account}, req.Dates, nil)
		} else {
			rows, err = e.indicator.Get(ctx, id, provider.IndicatorQuery{
				Accounts: []model.AccountSelector{req.Account},
				Dates:    req.Dates,
				Scope:    req.Scope,
			})
		}
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			if _, ok := valueByDate[row.Data]; !ok {
				valueByDate[row.Data] = row.Valor
			}
		}
	}

	label := seriesLabel(req)
	points := make([]model.SeriesPoint, 0, len(req.Dates))
	for _, date := range req.Dates {
		valor, ok := valueByDate[date]
		if !ok {
			valor = math.NaN()
		}
		points = append(points, model.SeriesPoint{
			Data:         date,
			NomeEntidade: id.NomeEntidade,
			CNPJ8:        id.CNPJ8,
			Conta:        label,
			Valor:        valor,
		})
	}
	return applyMissingPolicy(points, req.Missing), nil
}

// applyMissingPolicy post-processes a reindexed series. Order matters:
// zeros become missing first, then missing points are filled or kept or
// dropped.
func applyMissingPolicy(points []model.SeriesPoint, policy *model.MissingPolicy) []model.SeriesPoint {
	if policy == nil {
		policy = &model.MissingPolicy{}
	}
	out := make([]model.SeriesPoint, 0, len(points))
	for _, p := range points {
		if policy.ZerosAsMissing && !p.Missing() && p.Valor == 0 {
			p.Valor = math.NaN()
		}
		if p.Missing() {
			switch {
			case policy.FillValue != nil:
				p.Valor = *policy.FillValue
			case !policy.Keep:
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func seriesLabel(req SeriesRequest) string {
	if req.Label != "" {
		return req.Label
	}
	return req.Account.String()
}

func validateSeries(req SeriesRequest) error {
	if len(req.Dates) == 0 {
		return eris.New("analysis: series needs at least one date")
	}
	if req.Account.IsZero() {
		return eris.New("analysis: series needs an account selector")
	}
	switch req.Source {
	case model.SourceCOSIF:
		if !req.Kind.Valid() {
			return eris.Errorf("analysis: invalid ledger kind %q", req.Kind)
		}
	case model.SourceIFData:
		if req.Scope != "" && !req.Scope.Valid() {
			return &model.InvalidScopeError{Scope: string(req.Scope), Valid: model.ValidScopes()}
		}
	default:
		return eris.Errorf("analysis: series source must be cosif or ifdata, got %q", req.Source)
	}
	return nil
}

// MonthRange lists every YYYYMM month from start through end, inclusive.
func MonthRange(start, end int) ([]int, error) {
	if err := checkYearMonth(start); err != nil {
		return nil, err
	}
	if err := checkYearMonth(end); err != nil {
		return nil, err
	}
	if start > end {
		return nil, eris.Errorf("analysis: date range %d..%d is reversed", start, end)
	}
	var dates []int
	year, month := start/100, start%100
	for {
		date := year*100 + month
		if date > end {
			break
		}
		dates = append(dates, date)
		month++
		if month > 12 {
			month = 1
			year++
		}
	}
	return dates, nil
}

// QuarterRange lists the quarter-end months (03, 06, 09, 12) from start
// through end, inclusive. Regulatory indicators are published quarterly,
// so this is the natural index for ifdata series.
func QuarterRange(start, end int) ([]int, error) {
	months, err := MonthRange(start, end)
	if err != nil {
		return nil, err
	}
	var dates []int
	for _, date := range months {
		if m := date % 100; m == 3 || m == 6 || m == 9 || m == 12 {
			dates = append(dates, date)
		}
	}
	return dates, nil
}

func checkYearMonth(date int) error {
	month := date % 100
	if date < 190001 || date > 999912 || month < 1 || month > 12 {
		return eris.Errorf("analysis: %d is not a YYYYMM date", date)
	}
	return nil
}
