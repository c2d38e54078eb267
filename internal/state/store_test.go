package state

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOnFreshDirectoryReturnsZero(t *testing.T) {
	s := NewStore(t.TempDir())

	idx, err := s.Get("train")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
}

func TestIncrementAdvancesByOne(t *testing.T) {
	s := NewStore(t.TempDir())

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Increment("train"))
	}

	idx, err := s.Get("train")
	require.NoError(t, err)
	assert.Equal(t, uint32(5), idx)
}

func TestIndexSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir)
	require.NoError(t, s.Increment("train"))
	require.NoError(t, s.Increment("train"))

	reopened := NewStore(dir)
	idx, err := reopened.Get("train")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx)
}

func TestChannelsAreIndependent(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Increment("train"))
	require.NoError(t, s.Increment("train"))
	require.NoError(t, s.Increment("validation"))

	train, err := s.Get("train")
	require.NoError(t, err)
	validation, err := s.Get("validation")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), train)
	assert.Equal(t, uint32(1), validation)
}

func TestAdvanceReturnsThenIncrements(t *testing.T) {
	s := NewStore(t.TempDir())

	for want := uint32(0); want < 3; want++ {
		idx, err := s.Advance("train")
		require.NoError(t, err)
		assert.Equal(t, want, idx)
	}
}

func TestFailedPersistLeavesMemoryUntouched(t *testing.T) {
	// A state directory that does not exist makes every write fail while
	// reads still report "no state yet".
	s := NewStore(filepath.Join(t.TempDir(), "missing"))

	err := s.Increment("train")
	assert.ErrorIs(t, err, ErrPersist)

	idx, err := s.Get("train")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)
}

func TestCorruptCellIsReported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train"), []byte("not json"), 0o644))

	s := NewStore(dir)
	_, err := s.Get("train")
	assert.Error(t, err)
}
