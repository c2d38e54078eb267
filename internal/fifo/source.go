// Package fifo wraps one opened named pipe as a blocking byte source.
//
// A Source has exactly one reader. Reads block until the producer writes
// bytes or closes its end of the pipe; closure surfaces as io.EOF, every
// other fault as an error wrapping ErrIO. There is no cancellation: a
// blocked read returns only on producer activity or pipe closure.
package fifo

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrIO reports an I/O fault on the pipe, as opposed to a clean
// producer-side close.
var ErrIO = errors.New("pipe i/o failure")

// Source is a blocking byte stream over one opened FIFO.
type Source struct {
	f    *os.File
	path string
}

// Open opens the FIFO at path for reading. On a pipe with no attached
// producer the call blocks until one attaches.
func Open(path string) (*Source, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIO, path, err)
	}
	return &Source{f: f, path: path}, nil
}

// Read blocks until bytes are available, the producer closes its end
// (io.EOF after the last byte), or an I/O fault occurs.
func (s *Source) Read(p []byte) (int, error) {
	n, err := s.f.Read(p)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: read %s: %v", ErrIO, s.path, err)
	}
	return n, err
}

// Close releases the pipe descriptor. Closing also wakes a reader blocked
// in a concurrent Read, which is the only way a host can interrupt one.
func (s *Source) Close() error {
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrIO, s.path, err)
	}
	return nil
}

// Path returns the pipe path the source was opened on.
func (s *Source) Path() string {
	return s.path
}
