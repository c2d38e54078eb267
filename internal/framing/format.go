package framing

import (
	"fmt"
	"io"
)

// Format identifies one of the supported record containers.
type Format string

// Supported record formats.
const (
	FormatRecordIO Format = "RecordIO"
	FormatTFRecord Format = "TFRecord"
	FormatTextLine Format = "TextLine"
)

// ParseFormat validates a format tag received from configuration.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatRecordIO, FormatTFRecord, FormatTextLine:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
	}
}

// String returns the format tag.
func (f Format) String() string {
	return string(f)
}

// Decoder extracts record payloads from a framed byte stream.
type Decoder interface {
	// Next returns the payload of the next record and leaves the stream
	// positioned at the start of the one after it. It returns io.EOF once
	// the stream ends cleanly at a record boundary, and an error wrapping
	// ErrCorruptRecord or ErrTruncatedRecord when bytes are present but do
	// not parse. Errors from the underlying reader pass through unchanged.
	Next() ([]byte, error)
}

// Encoder frames record payloads onto a byte stream.
type Encoder interface {
	// Append writes one record in the encoder's container format.
	Append(p []byte) error
}

// NewDecoder returns the decoder variant for format, reading from r.
// The variant is fixed for the decoder's lifetime.
func NewDecoder(format Format, r io.Reader) (Decoder, error) {
	switch format {
	case FormatRecordIO:
		return newRecordIODecoder(r), nil
	case FormatTFRecord:
		return newTFRecordDecoder(r), nil
	case FormatTextLine:
		return newTextLineDecoder(r), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

// NewEncoder returns the encoder variant for format, writing to w.
func NewEncoder(format Format, w io.Writer) (Encoder, error) {
	switch format {
	case FormatRecordIO:
		return &recordIOEncoder{w: w}, nil
	case FormatTFRecord:
		return &tfRecordEncoder{w: w}, nil
	case FormatTextLine:
		return &textLineEncoder{w: w}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}
