package framing

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// TFRecord framing: each record is a 12-byte header (8-byte little-endian
// payload length plus the masked CRC-32C of those 8 bytes) followed by the
// payload and the masked CRC-32C of the payload.
const (
	tfHeaderSize = 12
	tfFooterSize = 4

	// maskDelta is the constant TensorFlow adds after rotating the CRC,
	// so that a checksum of all-zero data is not itself zero.
	maskDelta = 0xa282ead8

	// tfMaxRecordBytes bounds one record's payload. Longer lengths are
	// framing damage even when their checksum verifies; serialized
	// records past 2 GiB do not occur in practice and would otherwise
	// drive the payload allocation from an untrusted 64-bit field.
	tfMaxRecordBytes = 1 << 31
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// maskedCRC32C computes the masked Castagnoli CRC used by TFRecord:
// ((crc >> 15) | (crc << 17)) + 0xa282ead8, all mod 2^32.
func maskedCRC32C(p []byte) uint32 {
	c := crc32.Checksum(p, castagnoli)
	return (c>>15 | c<<17) + maskDelta
}

type tfRecordDecoder struct {
	r   io.Reader
	hdr [tfHeaderSize]byte
}

func newTFRecordDecoder(r io.Reader) *tfRecordDecoder {
	return &tfRecordDecoder{r: r}
}

func (d *tfRecordDecoder) Next() ([]byte, error) {
	n, err := io.ReadFull(d.r, d.hdr[:])
	switch {
	case err == io.EOF:
		// No bytes where a header would begin: the producer closed its
		// end at a record boundary.
		return nil, io.EOF
	case err == io.ErrUnexpectedEOF:
		return nil, fmt.Errorf("%w: %d byte record header, want %d", ErrTruncatedRecord, n, tfHeaderSize)
	case err != nil:
		return nil, err
	}

	length := binary.LittleEndian.Uint64(d.hdr[:8])
	if got, want := binary.LittleEndian.Uint32(d.hdr[8:]), maskedCRC32C(d.hdr[:8]); got != want {
		return nil, fmt.Errorf("%w: length checksum %#08x, want %#08x", ErrCorruptRecord, got, want)
	}

	if length > tfMaxRecordBytes {
		return nil, fmt.Errorf("%w: implausible record length %d", ErrCorruptRecord, length)
	}

	// The length is trusted only after its checksum and bound verify.
	body := make([]byte, length+tfFooterSize)
	if _, err := io.ReadFull(d.r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: stream ended inside %d byte payload", ErrTruncatedRecord, length)
		}
		return nil, err
	}

	payload := body[:length]
	if got, want := binary.LittleEndian.Uint32(body[length:]), maskedCRC32C(payload); got != want {
		return nil, fmt.Errorf("%w: payload checksum %#08x, want %#08x", ErrCorruptRecord, got, want)
	}
	return payload, nil
}

type tfRecordEncoder struct {
	w io.Writer
}

func (e *tfRecordEncoder) Append(p []byte) error {
	var hdr [tfHeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[:8], uint64(len(p)))
	binary.LittleEndian.PutUint32(hdr[8:], maskedCRC32C(hdr[:8]))
	if _, err := e.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := e.w.Write(p); err != nil {
		return err
	}
	var footer [tfFooterSize]byte
	binary.LittleEndian.PutUint32(footer[:], maskedCRC32C(p))
	_, err := e.w.Write(footer[:])
	return err
}
