// Package pipemode streams framed records out of a sequence of named
// pipes filled by an external producer. It understands three containers
// (MXNet RecordIO, TFRecord, newline-delimited text) and remembers, per
// channel, which pipe to open next across process restarts.
//
// Typical use:
//
//	ds, err := pipemode.NewDataset(pipemode.DatasetParams{
//		Channel:          "training",
//		ChannelDirectory: "/opt/ml/input/data",
//		StateDirectory:   "/opt/ml/input/state",
//		Format:           "TFRecord",
//	})
//	// per epoch:
//	st, err := ds.NextStream()
//	for {
//		rec, err := st.Next()
//		if err == io.EOF {
//			break
//		}
//		// handle rec
//	}
package pipemode

import (
	"github.com/GriffinCanCode/pipemode/internal/dataset"
	"github.com/GriffinCanCode/pipemode/internal/fifo"
	"github.com/GriffinCanCode/pipemode/internal/framing"
	"github.com/GriffinCanCode/pipemode/internal/monitoring"
	"github.com/GriffinCanCode/pipemode/internal/state"
	"github.com/GriffinCanCode/pipemode/internal/stream"
	"github.com/prometheus/client_golang/prometheus"
)

// Format identifies a record container.
type Format = framing.Format

// Supported record formats.
const (
	FormatRecordIO = framing.FormatRecordIO
	FormatTFRecord = framing.FormatTFRecord
	FormatTextLine = framing.FormatTextLine
)

// Error classes, tested with errors.Is.
var (
	ErrInvalidFormat   = framing.ErrInvalidFormat
	ErrCorruptRecord   = framing.ErrCorruptRecord
	ErrTruncatedRecord = framing.ErrTruncatedRecord
	ErrIO              = fifo.ErrIO
	ErrStatePersist    = state.ErrPersist
	ErrNotSupported    = dataset.ErrNotSupported
)

// ParseFormat validates a record format tag.
func ParseFormat(s string) (Format, error) {
	return framing.ParseFormat(s)
}

// Stream is a single-pass record sequence over one pipe.
type Stream = stream.Stream

// StreamOptions carries a Stream's optional collaborators.
type StreamOptions = stream.Options

// OpenStream opens one pipe directly, bypassing index management. Most
// hosts use a Dataset instead.
func OpenStream(path string, format Format, opts StreamOptions) (*Stream, error) {
	return stream.Open(path, format, opts)
}

// Dataset walks a channel's pipes in order, one Stream per pipe.
type Dataset = dataset.Dataset

// DatasetParams configures NewDataset.
type DatasetParams = dataset.Params

// NewDataset validates params and builds a Dataset. Unknown format tags
// fail before any pipe is opened.
func NewDataset(p DatasetParams) (*Dataset, error) {
	return dataset.New(p)
}

// Metrics collects Prometheus metrics for streams and datasets.
type Metrics = monitoring.Metrics

// NewMetrics creates a metrics collector registered on reg. A nil reg
// falls back to the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return monitoring.New(reg)
}
