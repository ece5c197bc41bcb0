package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBadger(t *testing.T) *BadgerStore {
	t.Helper()
	st, err := OpenBadger(BadgerConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenBadger_RequiresPath(t *testing.T) {
	_, err := OpenBadger(BadgerConfig{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}

func TestBadgerStore_LoadMissing(t *testing.T) {
	st := newTestBadger(t)
	_, err := st.Load(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_SaveLoadDelete(t *testing.T) {
	st := newTestBadger(t)
	ctx := context.Background()

	record := map[string]any{
		"question":          "Are you ready?",
		"transcript":        "\nQuestion: Are you ready?\nLearned: nothing",
		"turn_count":        1,
		"is_complete":       false,
		"completion_reason": "OTHER",
		"subject":           "user@example.com",
	}
	require.NoError(t, st.Save(ctx, "user@example.com", record))

	loaded, err := st.Load(ctx, "user@example.com")
	require.NoError(t, err)
	// Badger stores JSON, so numbers come back as float64.
	assert.Equal(t, float64(1), loaded["turn_count"])
	assert.Equal(t, "Are you ready?", loaded["question"])
	assert.Equal(t, false, loaded["is_complete"])

	require.NoError(t, st.Delete(ctx, "user@example.com"))
	_, err = st.Load(ctx, "user@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBadgerStore_SubjectsAreIsolated(t *testing.T) {
	st := newTestBadger(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, "a@example.com", map[string]any{"turn_count": 1}))
	require.NoError(t, st.Save(ctx, "b@example.com", map[string]any{"turn_count": 5}))

	a, err := st.Load(ctx, "a@example.com")
	require.NoError(t, err)
	b, err := st.Load(ctx, "b@example.com")
	require.NoError(t, err)
	assert.Equal(t, float64(1), a["turn_count"])
	assert.Equal(t, float64(5), b["turn_count"])
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, "user@example.com", map[string]any{"turn_count": 3}))
	require.NoError(t, st.Close())

	reopened, err := OpenBadger(BadgerConfig{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, float64(3), loaded["turn_count"])
}
