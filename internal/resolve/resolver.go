package resolve

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/enzoomoreira/bacen-data-analysis/internal/model"
	"github.com/enzoomoreira/bacen-data-analysis/internal/normalize"
	"github.com/enzoomoreira/bacen-data-analysis/internal/refdata"
)

const maxSuggestions = 3

// Resolver turns raw identifiers into canonical identities against the
// current reference snapshot. It is safe for concurrent use.
type Resolver struct {
	store   *refdata.Store
	cache   *IdentityCache
	lookups atomic.Int64 // index scans actually performed (cache misses)
}

// New creates a resolver backed by the given reference store. cacheSize
// below one falls back to DefaultCacheSize.
func New(store *refdata.Store, cacheSize int) *Resolver {
	return &Resolver{store: store, cache: NewIdentityCache(cacheSize)}
}

// Resolve maps a raw identifier to its canonical identity. Tax identifiers
// are recognized in bare-root, 14-digit, and punctuated forms; anything
// else is treated as an entity name and matched exactly first, then by
// substring, both accent and case insensitive. Only successful resolutions
// are cached.
func (r *Resolver) Resolve(ctx context.Context, identifier any) (model.CanonicalIdentity, error) {
	raw := normalize.Identifier(identifier)
	if raw == "" {
		return model.CanonicalIdentity{}, &model.EntityNotFoundError{Identifier: raw}
	}

	key := normalize.Key(identifier)
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}

	snap, err := r.store.Snapshot(ctx)
	if err != nil {
		return model.CanonicalIdentity{}, err
	}

	r.lookups.Add(1)
	id, err := resolveInSnapshot(snap, raw)
	if err != nil {
		return model.CanonicalIdentity{}, err
	}

	r.cache.Put(key, id)
	return id, nil
}

// Lookups returns how many resolutions ran against the snapshot rather
// than being served from cache.
func (r *Resolver) Lookups() int64 { return r.lookups.Load() }

// CacheStats returns identity cache statistics.
func (r *Resolver) CacheStats() CacheStats { return r.cache.Stats() }

// ClearCache drops every cached identity.
func (r *Resolver) ClearCache() { r.cache.Clear() }

func resolveInSnapshot(snap *refdata.Snapshot, raw string) (model.CanonicalIdentity, error) {
	if root, ok := normalize.CNPJ(raw); ok {
		cad, found := snap.CadastroLatest(root)
		if !found {
			return model.CanonicalIdentity{}, &model.EntityNotFoundError{Identifier: raw}
		}
		return buildIdentity(snap, raw, cad), nil
	}
	return resolveByName(snap, raw)
}

func resolveByName(snap *refdata.Snapshot, raw string) (model.CanonicalIdentity, error) {
	q := normalize.Name(raw)

	// Exact normalized match first; fall back to substring. The name index
	// holds one entry per entity, so every additional match is a distinct
	// entity.
	var matches []refdata.NameEntry
	for _, entry := range snap.Names() {
		if entry.Norm == q {
			matches = append(matches, entry)
		}
	}
	if len(matches) == 0 {
		for _, entry := range snap.Names() {
			if strings.Contains(entry.Norm, q) {
				matches = append(matches, entry)
			}
		}
	}

	switch len(matches) {
	case 0:
		return model.CanonicalIdentity{}, &model.EntityNotFoundError{
			Identifier:  raw,
			Suggestions: suggestions(snap, q),
		}
	case 1:
		cad, _ := snap.CadastroLatest(matches[0].CNPJ8)
		return buildIdentity(snap, raw, cad), nil
	default:
		candidates := make([]model.EntityMatch, 0, len(matches))
		for _, m := range matches {
			candidates = append(candidates, model.EntityMatch{NomeEntidade: m.Name, CNPJ8: m.CNPJ8})
		}
		return model.CanonicalIdentity{}, &model.AmbiguousIdentifierError{
			Identifier: raw,
			Matches:    candidates,
		}
	}
}

// buildIdentity fills the canonical identity from the latest registry row.
// When the entity belongs to a prudential conglomerate, consolidated
// statements are filed by the conglomerate's reporting leader, so
// CNPJReporteCOSIF points at the leader's root instead of the entity's own.
func buildIdentity(snap *refdata.Snapshot, raw string, cad *refdata.CadastroRow) model.CanonicalIdentity {
	id := model.CanonicalIdentity{
		CNPJ8:                 cad.CNPJ8,
		NomeEntidade:          cad.NomeEntidade,
		CNPJReporteCOSIF:      cad.CNPJ8,
		CodConglPrud:          cad.CodConglPrud,
		CodConglFinanceiro:    cad.CodConglFinanceiro,
		IdentificadorOriginal: raw,
	}
	if cad.CodConglPrud != "" {
		if leader, ok := snap.LeaderFor(cad.CodConglPrud); ok {
			id.CNPJReporteCOSIF = leader
		}
	}
	return id
}

// suggestions collects up to maxSuggestions entity names sharing a word
// with the failed query, to make not-found errors actionable.
func suggestions(snap *refdata.Snapshot, q string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range strings.Fields(q) {
		if len(tok) < 4 {
			continue
		}
		for _, entry := range snap.Names() {
			if seen[entry.CNPJ8] || !strings.Contains(entry.Norm, tok) {
				continue
			}
			seen[entry.CNPJ8] = true
			out = append(out, entry.Name)
			if len(out) >= maxSuggestions {
				return out
			}
		}
	}
	return out
}
