// Command pipecat drains a pipe-mode channel to stdout, one pipe per
// pass, advancing the persisted pipe index as it goes. It is the
// consumer-side debugging companion to pipegen.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/GriffinCanCode/pipemode"
	"github.com/GriffinCanCode/pipemode/internal/config"
	"github.com/GriffinCanCode/pipemode/internal/logging"
	"github.com/GriffinCanCode/pipemode/internal/monitoring"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadOrDefault()

	channel := flag.String("channel", cfg.Channel.Name, "Channel name")
	channelDir := flag.String("channel-dir", cfg.Channel.ChannelDirectory, "Directory holding the channel's pipes")
	stateDir := flag.String("state-dir", cfg.Channel.StateDirectory, "Directory holding pipe index state")
	format := flag.String("format", cfg.Channel.RecordFormat, "Record format: RecordIO, TFRecord, or TextLine")
	passes := flag.Int("passes", 1, "Number of pipes to drain before exiting")
	lines := flag.Bool("lines", false, "Append a newline after each record")
	gzipOut := flag.Bool("gzip", false, "Gzip-compress the output")
	metricsAddr := flag.String("metrics-addr", cfg.Metrics.Addr, "Prometheus listen address (empty disables)")
	flag.Parse()

	log, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var metrics *monitoring.Metrics
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = monitoring.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
	}

	ds, err := pipemode.NewDataset(pipemode.DatasetParams{
		Channel:          *channel,
		ChannelDirectory: *channelDir,
		StateDirectory:   *stateDir,
		Format:           *format,
		Logger:           log.Logger,
		Metrics:          metrics,
	})
	if err != nil {
		log.Fatal("failed to create dataset", zap.Error(err))
	}

	var out io.Writer = os.Stdout
	if *gzipOut {
		gw := gzip.NewWriter(os.Stdout)
		defer gw.Close()
		out = gw
	}

	// A blocked Next wakes up only when its pipe closes, so interrupt
	// handling closes the active stream from the signal goroutine.
	var (
		mu     sync.Mutex
		active *pipemode.Stream
	)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("interrupted, closing current pipe")
		mu.Lock()
		if active != nil {
			active.Close()
		}
		mu.Unlock()
	}()

	for pass := 0; pass < *passes; pass++ {
		st, err := ds.NextStream()
		if err != nil {
			log.Fatal("failed to open next pipe", zap.Error(err))
		}
		mu.Lock()
		active = st
		mu.Unlock()

		records, err := drain(st, out, *lines)
		mu.Lock()
		active = nil
		mu.Unlock()

		if err != nil {
			log.Fatal("stream failed",
				zap.String("path", st.Path()),
				zap.Int("records", records),
				zap.Error(err))
		}
		log.Info("pipe drained",
			zap.String("path", st.Path()),
			zap.Int("records", records))
	}
}

// drain copies every record of one stream to out and reports how many it
// delivered. A clean end of stream is not an error.
func drain(st *pipemode.Stream, out io.Writer, lines bool) (int, error) {
	var n int
	for {
		rec, err := st.Next()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if _, err := out.Write(rec); err != nil {
			return n, err
		}
		if lines {
			if _, err := out.Write([]byte{'\n'}); err != nil {
				return n, err
			}
		}
		n++
	}
}
