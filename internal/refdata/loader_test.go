package refdata

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	tables Tables
	err    error
	loads  int
}

func (f *fakeLoader) Load(ctx context.Context) (Tables, error) {
	f.loads++
	if f.err != nil {
		return Tables{}, f.err
	}
	return f.tables, nil
}

func (f *fakeLoader) Close() error { return nil }

func TestStore_LazyLoadsOnce(t *testing.T) {
	loader := &fakeLoader{tables: testTables()}
	store := NewStore(loader)
	assert.False(t, store.Loaded())

	first, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := store.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, loader.loads)
	assert.Same(t, first, second)
	assert.True(t, store.Loaded())
}

func TestStore_ReloadSwapsSnapshot(t *testing.T) {
	loader := &fakeLoader{tables: testTables()}
	store := NewStore(loader)

	first, err := store.Snapshot(context.Background())
	require.NoError(t, err)

	second, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loader.loads)
	assert.NotSame(t, first, second)

	current, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, current)
}

func TestStore_LoadErrorPropagates(t *testing.T) {
	loader := &fakeLoader{err: eris.New("disk on fire")}
	store := NewStore(loader)

	_, err := store.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load tables")
	assert.False(t, store.Loaded())
}
