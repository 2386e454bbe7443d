package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resonantlabs/constellate/internal/fingerprint"
)

func TestFileStoreMissingFilesYieldEmpty(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "catalog.db"))

	idx, err := store.LoadIndex()
	require.NoError(t, err)
	assert.Empty(t, idx)

	reg, err := store.LoadRegistry()
	require.NoError(t, err)
	assert.Empty(t, reg)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "catalog.db"))

	idx := map[fingerprint.Hash][]Posting{
		fingerprint.Hash(1): {{SongID: 0, AnchorTime: 5}},
	}
	registry := []Record{{Name: "song", Artist: "artist"}}

	require.NoError(t, store.SaveIndex(idx))
	require.NoError(t, store.SaveRegistry(registry))

	loadedIdx, err := store.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, idx, loadedIdx)

	loadedReg, err := store.LoadRegistry()
	require.NoError(t, err)
	assert.Equal(t, registry, loadedReg)
}
