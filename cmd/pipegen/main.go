// Command pipegen frames payloads into a pipe or file, playing the
// producer side of a pipe-mode channel for local testing. Input payloads
// are newline-separated; the output pipe must already exist.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/GriffinCanCode/pipemode/internal/framing"
	"github.com/klauspost/compress/gzip"
)

func main() {
	format := flag.String("format", "TFRecord", "Record format: RecordIO, TFRecord, or TextLine")
	in := flag.String("in", "-", "Payload source, newline-separated (\"-\" for stdin)")
	out := flag.String("out", "", "Output pipe or file (required)")
	gzipIn := flag.Bool("gzip", false, "Treat the payload source as gzip-compressed")
	flag.Parse()

	if *out == "" {
		fmt.Fprintln(os.Stderr, "pipegen: -out is required")
		flag.Usage()
		os.Exit(2)
	}

	f, err := framing.ParseFormat(*format)
	if err != nil {
		fatal(fmt.Errorf("-format: %w", err))
	}

	var src io.Reader = os.Stdin
	if *in != "-" {
		file, err := os.Open(*in)
		if err != nil {
			fatal(err)
		}
		defer file.Close()
		src = file
	}
	if *gzipIn {
		gr, err := gzip.NewReader(src)
		if err != nil {
			fatal(fmt.Errorf("gzip input: %w", err))
		}
		defer gr.Close()
		src = gr
	}

	// O_WRONLY on a FIFO blocks until a consumer opens the other end,
	// which is the handshake a pipe-mode producer relies on.
	sink, err := os.OpenFile(*out, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		fatal(err)
	}
	defer sink.Close()

	n, err := frameAll(f, src, sink)
	if err != nil {
		fatal(err)
	}
	fmt.Fprintf(os.Stderr, "pipegen: wrote %d records to %s\n", n, *out)
}

// frameAll reads newline-separated payloads from src and appends each as
// one framed record on sink.
func frameAll(format framing.Format, src io.Reader, sink io.Writer) (int, error) {
	enc, err := framing.NewEncoder(format, sink)
	if err != nil {
		return 0, err
	}

	var n int
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if err := enc.Append(scanner.Bytes()); err != nil {
			return n, err
		}
		n++
	}
	return n, scanner.Err()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "pipegen: %v\n", err)
	os.Exit(1)
}
