package framing

import (
	"bufio"
	"io"
)

// textLineDecoder yields the bytes between line feeds. The delimiter is
// excluded; carriage returns are payload and pass through untouched.
type textLineDecoder struct {
	r *bufio.Reader
}

func newTextLineDecoder(r io.Reader) *textLineDecoder {
	return &textLineDecoder{r: bufio.NewReader(r)}
}

func (d *textLineDecoder) Next() ([]byte, error) {
	line, err := d.r.ReadBytes('\n')
	switch {
	case err == nil:
		return line[:len(line)-1], nil
	case err == io.EOF:
		// A non-empty trailing fragment without a delimiter is still a
		// record; EOF exactly at a delimiter ends the stream.
		if len(line) > 0 {
			return line, nil
		}
		return nil, io.EOF
	default:
		return nil, err
	}
}

type textLineEncoder struct {
	w io.Writer
}

func (e *textLineEncoder) Append(p []byte) error {
	if _, err := e.w.Write(p); err != nil {
		return err
	}
	_, err := e.w.Write([]byte{'\n'})
	return err
}
