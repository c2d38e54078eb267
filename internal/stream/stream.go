// Package stream delivers the records of one named pipe, in producer
// order, one pull at a time.
package stream

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/GriffinCanCode/pipemode/internal/fifo"
	"github.com/GriffinCanCode/pipemode/internal/framing"
	"github.com/GriffinCanCode/pipemode/internal/monitoring"
	"go.uber.org/zap"
)

// Options carries the optional collaborators of a Stream. A nil Logger
// discards log output.
type Options struct {
	// Channel labels logs and metrics; it does not affect reading.
	Channel string
	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

// Stream is a lazy, forward-only, single-pass sequence of records read
// from one pipe. It owns its pipe source and decoder exclusively: one
// goroutine pulls with Next. Close may be called from another goroutine
// to wake a Next blocked on a quiet producer; there is no other
// cancellation.
type Stream struct {
	path    string
	format  framing.Format
	channel string

	src *fifo.Source
	dec framing.Decoder
	log *zap.Logger
	met *monitoring.Metrics

	mu       sync.Mutex
	terminal error // latched first terminal result; nil while live
	closed   bool  // Close was called before natural exhaustion
}

// Open validates format, then opens the pipe at path and binds the
// matching decoder. An invalid format fails before any pipe is touched.
// Opening may block until a producer attaches to the pipe.
func Open(path string, format framing.Format, opts Options) (*Stream, error) {
	if _, err := framing.ParseFormat(format.String()); err != nil {
		return nil, err
	}

	src, err := fifo.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := framing.NewDecoder(format, src)
	if err != nil {
		src.Close()
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	s := &Stream{
		path:    path,
		format:  format,
		channel: opts.Channel,
		src:     src,
		dec:     dec,
		log:     log,
		met:     opts.Metrics,
	}
	s.log.Debug("pipe opened",
		zap.String("path", path),
		zap.String("channel", s.channel),
		zap.String("format", format.String()))
	if s.met != nil {
		s.met.PipesOpened.WithLabelValues(s.channel).Inc()
		s.met.StreamsActive.Inc()
	}
	return s, nil
}

// Next returns the next record. It blocks while the producer is writing,
// returns io.EOF once the producer closes the pipe at a record boundary,
// and returns a decoder or pipe error otherwise. The first terminal
// result is latched: every later call returns it unchanged.
func (s *Stream) Next() ([]byte, error) {
	s.mu.Lock()
	if s.terminal != nil {
		defer s.mu.Unlock()
		return nil, s.terminal
	}
	s.mu.Unlock()

	// The decoder may block on pipe I/O, so it runs outside the lock;
	// Close stays callable and wakes it by closing the descriptor.
	start := time.Now()
	rec, err := s.dec.Next()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal != nil {
		return nil, s.terminal
	}
	if err != nil {
		if s.closed {
			// A forced close reads as a clean end of stream.
			err = io.EOF
		}
		s.terminate(err)
		return nil, s.terminal
	}

	if s.met != nil {
		s.met.ObserveRead(s.channel, s.format.String(), len(rec), time.Since(start))
	}
	return rec, nil
}

// Close abandons the stream before exhaustion and unblocks a concurrent
// Next waiting on the producer. Later Next calls report io.EOF. Closing
// an already terminal stream is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.terminal != nil {
		return nil
	}
	s.closed = true
	s.terminate(io.EOF)
	return nil
}

// Path returns the pipe path the stream reads from.
func (s *Stream) Path() string {
	return s.path
}

// terminate must be called with the mutex held and terminal still nil.
func (s *Stream) terminate(cause error) {
	s.terminal = cause
	s.src.Close()

	if s.met != nil {
		s.met.StreamsActive.Dec()
		if errors.Is(cause, framing.ErrCorruptRecord) || errors.Is(cause, framing.ErrTruncatedRecord) {
			s.met.CorruptRecords.WithLabelValues(s.channel, s.format.String()).Inc()
		}
	}

	if cause == io.EOF {
		s.log.Debug("pipe exhausted", zap.String("path", s.path))
		return
	}
	s.log.Warn("stream terminated",
		zap.String("path", s.path),
		zap.Error(cause))
}
