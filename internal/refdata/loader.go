package refdata

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Loader reads the raw reference tables from a backing store.
type Loader interface {
	Load(ctx context.Context) (Tables, error)
	Close() error
}

// Store owns the current snapshot. Loading is lazy: the first Snapshot call
// reads the backing store, later calls return the resident snapshot until
// Reload swaps in a fresh one. Readers never block behind a reload.
type Store struct {
	loader Loader

	mu   sync.Mutex // serializes loads
	snap atomic.Pointer[Snapshot]
}

// NewStore wraps a loader. Nothing is read until first use.
func NewStore(loader Loader) *Store {
	return &Store{loader: loader}
}

// Snapshot returns the current snapshot, loading it on first use.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	return s.load(ctx)
}

// Reload reads the backing store again and atomically swaps in the new
// snapshot. Readers holding the previous snapshot keep a consistent view.
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	tables, err := s.loader.Load(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "refdata: load tables")
	}

	snap := NewSnapshot(tables)
	s.snap.Store(snap)

	counts := snap.Counts()
	zap.L().Info("refdata: snapshot loaded",
		zap.Int("cosif_individual", counts.CosifIndividual),
		zap.Int("cosif_prudencial", counts.CosifPrudencial),
		zap.Int("ifdata", counts.IFData),
		zap.Int("cadastro", counts.Cadastro),
		zap.Int("entities", counts.Entities),
		zap.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

// Loaded reports whether a snapshot is resident.
func (s *Store) Loaded() bool { return s.snap.Load() != nil }

// Close releases the backing loader.
func (s *Store) Close() error {
	return s.loader.Close()
}
