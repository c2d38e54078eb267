// Package state persists the pipe index for each channel across process
// restarts, so a restarted consumer resumes at the next pipe instead of
// pipe zero.
//
// One JSON cell file per channel lives inside the state directory, named
// after the channel. Writes go through a temp file and a rename, so a
// reader never observes a half-written cell.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// ErrPersist reports a failed attempt to write the pipe index to disk.
// The in-memory index is never advanced on a failed persist, so retrying
// the whole advance operation is safe.
var ErrPersist = errors.New("pipe index persist failed")

// cell is the on-disk layout of one channel's counter.
type cell struct {
	Index uint32 `json:"index"`
}

// Store holds one persisted pipe index per channel.
type Store struct {
	dir string

	mu      sync.Mutex
	indexes map[string]uint32
}

// NewStore opens a store over an existing state directory. The directory
// is not created; pointing two stores at the same directory and channel is
// a caller error.
func NewStore(dir string) *Store {
	return &Store{
		dir:     dir,
		indexes: make(map[string]uint32),
	}
}

// Get returns the channel's current pipe index: the last persisted value,
// or zero when the channel has no state yet.
func (s *Store) Get(channel string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(channel)
}

// Increment persists the channel's index plus one, then updates the
// in-memory value. On failure it returns an error wrapping ErrPersist and
// leaves the in-memory index untouched.
func (s *Store) Increment(channel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load(channel)
	if err != nil {
		return err
	}
	return s.persist(channel, idx+1)
}

// Advance returns the channel's current index and then increments it, as
// one mutual-exclusion region. Two concurrent Advance calls for the same
// channel never observe the same index.
func (s *Store) Advance(channel string) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.load(channel)
	if err != nil {
		return 0, err
	}
	if err := s.persist(channel, idx+1); err != nil {
		return 0, err
	}
	return idx, nil
}

// load must be called with the mutex held.
func (s *Store) load(channel string) (uint32, error) {
	if idx, ok := s.indexes[channel]; ok {
		return idx, nil
	}

	raw, err := os.ReadFile(s.cellPath(channel))
	switch {
	case os.IsNotExist(err):
		s.indexes[channel] = 0
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read pipe index for %q: %w", channel, err)
	}

	var c cell
	if err := sonic.Unmarshal(raw, &c); err != nil {
		return 0, fmt.Errorf("decode pipe index for %q: %w", channel, err)
	}
	s.indexes[channel] = c.Index
	return c.Index, nil
}

// persist must be called with the mutex held. The in-memory index is
// updated only after the rename lands.
func (s *Store) persist(channel string, idx uint32) error {
	raw, err := sonic.Marshal(cell{Index: idx})
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", ErrPersist, channel, err)
	}

	target := s.cellPath(channel)
	tmp := target + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrPersist, tmp, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename %s: %v", ErrPersist, target, err)
	}

	s.indexes[channel] = idx
	return nil
}

func (s *Store) cellPath(channel string) string {
	return filepath.Join(s.dir, channel)
}
