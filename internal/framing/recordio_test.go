package framing

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeBlock emits one physical RecordIO block with an explicit flag,
// for exercising split records the encoder never produces itself.
func writeBlock(buf *bytes.Buffer, flag uint32, data []byte) {
	var words [8]byte
	binary.LittleEndian.PutUint32(words[:4], recordIOMagic)
	binary.LittleEndian.PutUint32(words[4:], flag<<lengthBits|uint32(len(data)))
	buf.Write(words[:])
	buf.Write(data)
	buf.Write(make([]byte, padding(len(data))))
}

func TestRecordIORoundTrip(t *testing.T) {
	// Lengths straddling the 4-byte alignment boundary.
	payloads := []string{"", "a", "abc", "abcd", "abcde", "0123456789"}
	wire := encodeAll(t, FormatRecordIO, payloads...)

	dec := newRecordIODecoder(bytes.NewReader(wire))
	var reencoded bytes.Buffer
	enc, err := NewEncoder(FormatRecordIO, &reencoded)
	require.NoError(t, err)

	for _, want := range payloads {
		rec, err := dec.Next()
		require.NoError(t, err)
		assert.Equal(t, want, string(rec))
		require.NoError(t, enc.Append(rec))
	}
	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, wire, reencoded.Bytes())
}

func TestRecordIOEmptyStream(t *testing.T) {
	dec := newRecordIODecoder(bytes.NewReader(nil))
	_, err := dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRecordIOReassemblesSplitRecord(t *testing.T) {
	var buf bytes.Buffer
	writeBlock(&buf, recStart, []byte("hello "))
	writeBlock(&buf, recMiddle, []byte("pipe "))
	writeBlock(&buf, recEnd, []byte("world"))
	writeBlock(&buf, recWhole, []byte("next"))

	dec := newRecordIODecoder(&buf)

	rec, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "hello pipe world", string(rec))

	rec, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, "next", string(rec))

	_, err = dec.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRecordIOBadMagic(t *testing.T) {
	wire := encodeAll(t, FormatRecordIO, "payload")
	wire[0] ^= 0xff

	dec := newRecordIODecoder(bytes.NewReader(wire))
	_, err := dec.Next()
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestRecordIOOutOfSequenceFlag(t *testing.T) {
	var buf bytes.Buffer
	writeBlock(&buf, recMiddle, []byte("orphan"))

	dec := newRecordIODecoder(&buf)
	_, err := dec.Next()
	assert.ErrorIs(t, err, ErrCorruptRecord)
}

func TestRecordIOEOFBetweenFragments(t *testing.T) {
	var buf bytes.Buffer
	writeBlock(&buf, recStart, []byte("half a record"))

	dec := newRecordIODecoder(&buf)
	_, err := dec.Next()
	assert.ErrorIs(t, err, ErrTruncatedRecord)
}

func TestRecordIOTruncatedFragment(t *testing.T) {
	wire := encodeAll(t, FormatRecordIO, "0123456789")

	dec := newRecordIODecoder(bytes.NewReader(wire[:12]))
	_, err := dec.Next()
	assert.ErrorIs(t, err, ErrTruncatedRecord)
}

func TestRecordIOEncoderRejectsOversizedRecord(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(FormatRecordIO, &buf)
	require.NoError(t, err)

	err = enc.Append(make([]byte, lengthMask+1))
	assert.Error(t, err)
	// Nothing may reach the wire with a truncated length field.
	assert.Zero(t, buf.Len())
}

func TestRecordIOTruncatedHeader(t *testing.T) {
	wire := encodeAll(t, FormatRecordIO, "payload")

	dec := newRecordIODecoder(bytes.NewReader(wire[:6]))
	_, err := dec.Next()
	assert.ErrorIs(t, err, ErrTruncatedRecord)
}
