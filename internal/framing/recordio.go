package framing

import (
	"encoding/binary"
	"fmt"
	"io"
)

// RecordIO framing: each physical block starts with a 4-byte little-endian
// magic word, then a 4-byte header whose upper 3 bits carry a continuation
// flag and whose lower 29 bits carry the fragment length. Fragment bytes are
// padded out to a 4-byte boundary; the padding is discarded on read. One
// logical record may span several blocks (start, middle..., end), which the
// decoder reassembles before returning.
const (
	recordIOMagic = 0xced7230a
	recordIOAlign = 4

	lengthBits = 29
	lengthMask = 1<<lengthBits - 1
)

// Continuation flags, stored in the top 3 bits of the header word.
const (
	recWhole uint32 = iota
	recStart
	recMiddle
	recEnd
)

type recordIODecoder struct {
	r    io.Reader
	word [4]byte
}

func newRecordIODecoder(r io.Reader) *recordIODecoder {
	return &recordIODecoder{r: r}
}

func (d *recordIODecoder) Next() ([]byte, error) {
	var record []byte
	assembling := false

	for {
		n, err := io.ReadFull(d.r, d.word[:])
		switch {
		case err == io.EOF:
			if assembling {
				return nil, fmt.Errorf("%w: stream ended between fragments of a split record", ErrTruncatedRecord)
			}
			return nil, io.EOF
		case err == io.ErrUnexpectedEOF:
			return nil, fmt.Errorf("%w: %d byte magic word, want 4", ErrTruncatedRecord, n)
		case err != nil:
			return nil, err
		}
		if magic := binary.LittleEndian.Uint32(d.word[:]); magic != recordIOMagic {
			return nil, fmt.Errorf("%w: magic word %#08x, want %#08x", ErrCorruptRecord, magic, uint32(recordIOMagic))
		}

		if _, err := io.ReadFull(d.r, d.word[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: stream ended inside record header", ErrTruncatedRecord)
			}
			return nil, err
		}
		header := binary.LittleEndian.Uint32(d.word[:])
		flag := header >> lengthBits
		length := int(header & lengthMask)

		fragment := make([]byte, length+padding(length))
		if _, err := io.ReadFull(d.r, fragment); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return nil, fmt.Errorf("%w: stream ended inside %d byte fragment", ErrTruncatedRecord, length)
			}
			return nil, err
		}
		fragment = fragment[:length]

		switch {
		case !assembling && flag == recWhole:
			return fragment, nil
		case !assembling && flag == recStart:
			record = append(record, fragment...)
			assembling = true
		case assembling && flag == recMiddle:
			record = append(record, fragment...)
		case assembling && flag == recEnd:
			return append(record, fragment...), nil
		default:
			return nil, fmt.Errorf("%w: continuation flag %d out of sequence", ErrCorruptRecord, flag)
		}
	}
}

// padding returns the byte count needed to align length to the block size.
func padding(length int) int {
	return (recordIOAlign - length%recordIOAlign) % recordIOAlign
}

type recordIOEncoder struct {
	w io.Writer
}

// Append writes p as a single unsplit block. Encoded output never uses the
// start/middle/end flags; the decoder still accepts them from producers
// that shard large records.
func (e *recordIOEncoder) Append(p []byte) error {
	if len(p) > lengthMask {
		return fmt.Errorf("record length %d exceeds the container's %d byte limit", len(p), lengthMask)
	}
	var words [8]byte
	binary.LittleEndian.PutUint32(words[:4], recordIOMagic)
	binary.LittleEndian.PutUint32(words[4:], recWhole<<lengthBits|uint32(len(p)))
	if _, err := e.w.Write(words[:]); err != nil {
		return err
	}
	if _, err := e.w.Write(p); err != nil {
		return err
	}
	if pad := padding(len(p)); pad > 0 {
		var zero [recordIOAlign]byte
		if _, err := e.w.Write(zero[:pad]); err != nil {
			return err
		}
	}
	return nil
}
