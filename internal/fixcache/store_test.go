package fixcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	fix := Fix{Lat: 48.2082, Lon: 16.3738, Time: time.Now().Truncate(time.Second)}
	require.NoError(t, store.Save(fix))

	got, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fix.Lat, got.Lat)
	assert.Equal(t, fix.Lon, got.Lon)
	assert.True(t, fix.Time.Equal(got.Time))
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "last_fix.json"), []byte("{not json"), 0o644))

	_, ok, err := NewStore(dir).Load()
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStoreSaveCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	store := NewStore(dir)

	require.NoError(t, store.Save(Fix{Lat: 1, Lon: 2}))

	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestInjectionMarker(t *testing.T) {
	store := NewStore(t.TempDir())

	// No marker yet: injection needed
	assert.True(t, store.NeedsInjection(30*time.Minute))

	require.NoError(t, store.MarkInjected())
	assert.False(t, store.NeedsInjection(30*time.Minute))

	// A zero threshold makes any marker stale
	time.Sleep(10 * time.Millisecond)
	assert.True(t, store.NeedsInjection(0))
}
