// Package dataset ties the pipe index store, path naming, and record
// streams into the surface a host engine drives: "give me the next pipe's
// record stream".
package dataset

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/pipemode/internal/framing"
	"github.com/GriffinCanCode/pipemode/internal/monitoring"
	"github.com/GriffinCanCode/pipemode/internal/paths"
	"github.com/GriffinCanCode/pipemode/internal/state"
	"github.com/GriffinCanCode/pipemode/internal/stream"
	"go.uber.org/zap"
)

// ErrNotSupported reports a capability the dataset deliberately lacks.
var ErrNotSupported = errors.New("not supported")

// Params configures a Dataset. Channel, ChannelDirectory, StateDirectory,
// and Format correspond to the host's construction arguments; Logger and
// Metrics are optional.
type Params struct {
	Channel          string
	ChannelDirectory string
	StateDirectory   string
	Format           string

	Logger  *zap.Logger
	Metrics *monitoring.Metrics
}

// Dataset hands out record streams for a channel's pipes in sequence,
// persisting the pipe index between streams so a restarted process does
// not re-read pipes it already consumed.
type Dataset struct {
	channel    string
	channelDir string
	format     framing.Format

	store *state.Store
	log   *zap.Logger
	met   *monitoring.Metrics
}

// New validates p and builds a Dataset. An unknown format tag fails here,
// before any pipe or state file is touched.
func New(p Params) (*Dataset, error) {
	format, err := framing.ParseFormat(p.Format)
	if err != nil {
		return nil, err
	}
	if p.Channel == "" {
		return nil, errors.New("channel name must not be empty")
	}

	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Dataset{
		channel:    p.Channel,
		channelDir: p.ChannelDirectory,
		format:     format,
		store:      state.NewStore(p.StateDirectory),
		log:        log,
		met:        p.Metrics,
	}, nil
}

// NextStream advances the persisted pipe index and opens a stream over
// the pipe that index names. The read-then-increment pair is one
// mutual-exclusion region, so two concurrent calls never target the same
// pipe. A failed index persist opens nothing and is safe to retry.
func (d *Dataset) NextStream() (*stream.Stream, error) {
	idx, err := d.store.Advance(d.channel)
	if err != nil {
		return nil, err
	}

	path := paths.PipePath(d.channelDir, d.channel, idx)
	d.log.Info("advancing to next pipe",
		zap.String("channel", d.channel),
		zap.Uint32("index", idx),
		zap.String("path", path))

	return stream.Open(path, d.format, stream.Options{
		Channel: d.channel,
		Logger:  d.log,
		Metrics: d.met,
	})
}

// PipeIndex returns the index the next NextStream call will target.
func (d *Dataset) PipeIndex() (uint32, error) {
	return d.store.Get(d.channel)
}

// Channel returns the channel name.
func (d *Dataset) Channel() string {
	return d.channel
}

// Snapshot would serialize the dataset's position for later replay.
// Pipes are single-pass, so the capability is unsupported by contract
// rather than an error in the caller.
func (d *Dataset) Snapshot() ([]byte, error) {
	return nil, fmt.Errorf("%w: pipe streams cannot be replayed from a snapshot", ErrNotSupported)
}
