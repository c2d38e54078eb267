package framing

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainText(t *testing.T, input string) []string {
	t.Helper()
	d := newTextLineDecoder(strings.NewReader(input))
	var records []string
	for {
		rec, err := d.Next()
		if err == io.EOF {
			return records
		}
		require.NoError(t, err)
		records = append(records, string(rec))
	}
}

func TestTextLineSplitsOnLineFeed(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, drainText(t, "a\nb\nc"))
}

func TestTextLineTerminatedInput(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, drainText(t, "a\nb\n"))
}

func TestTextLineEmptyInput(t *testing.T) {
	assert.Empty(t, drainText(t, ""))
}

func TestTextLineEmptyLines(t *testing.T) {
	assert.Equal(t, []string{"", "", "x"}, drainText(t, "\n\nx\n"))
}

func TestTextLinePreservesCarriageReturns(t *testing.T) {
	assert.Equal(t, []string{"a\r", "b\rc"}, drainText(t, "a\r\nb\rc"))
}

func TestTextLineEOFIsSticky(t *testing.T) {
	d := newTextLineDecoder(strings.NewReader("only\n"))

	rec, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "only", string(rec))

	for i := 0; i < 3; i++ {
		_, err := d.Next()
		assert.Equal(t, io.EOF, err)
	}
}
