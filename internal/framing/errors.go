package framing

import "errors"

var (
	// ErrInvalidFormat reports an unknown record format tag.
	ErrInvalidFormat = errors.New("invalid record format")

	// ErrCorruptRecord reports bytes that do not parse as a valid frame:
	// a checksum mismatch, a bad magic word, or an impossible header.
	ErrCorruptRecord = errors.New("corrupt record")

	// ErrTruncatedRecord reports a stream that ended inside a frame.
	ErrTruncatedRecord = errors.New("truncated record")
)
