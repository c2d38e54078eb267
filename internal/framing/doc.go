// Package framing implements the on-wire record containers understood by
// pipemode: MXNet RecordIO, TFRecord, and newline-delimited text.
//
// All three containers share one capability: pull the next record payload
// off a byte stream. Decoders never buffer more than one record ahead and
// never resynchronize past damaged bytes; a framing or checksum failure is
// terminal for the stream it occurred on.
//
// Clean end-of-input is reported as io.EOF. Damaged input is reported as an
// error wrapping ErrCorruptRecord or ErrTruncatedRecord, which callers can
// test with errors.Is. The distinction matters: io.EOF means the producer
// closed its end at a record boundary, an error means bytes were present
// but did not parse.
//
// Matching encoders are provided for the producer side. Encoding a set of
// records and decoding the result yields the same payloads byte for byte.
package framing
