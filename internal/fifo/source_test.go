package fifo

import (
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkfifo(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipe")
	require.NoError(t, syscall.Mkfifo(path, 0o600))
	return path
}

func TestReadUntilProducerCloses(t *testing.T) {
	path := mkfifo(t)

	go func() {
		// O_WRONLY blocks until the reader side opens.
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return
		}
		f.Write([]byte("hello "))
		f.Write([]byte("pipe"))
		f.Close()
	}()

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	assert.Equal(t, "hello pipe", string(data))
}

func TestOpenMissingPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestReadAfterCloseIsAnIOFailure(t *testing.T) {
	path := mkfifo(t)

	go func() {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return
		}
		f.Close()
	}()

	src, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, src.Close())

	_, err = src.Read(make([]byte, 1))
	assert.ErrorIs(t, err, ErrIO)
}
