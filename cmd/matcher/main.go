package main

import (
	"bufio"
	"errors"
	"flag"
	"io"
	"os"

	"outcry/internal/command"
	"outcry/internal/dispatch"
	"outcry/internal/engine"
	"outcry/internal/logging"
	"outcry/internal/metrics"
	"outcry/internal/report"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

func main() {
	input := flag.String("input", "", "File to read commands from (default stdin)")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	flag.Parse()

	if err := logging.Setup(*logLevel, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("unable to configure logging")
	}

	var in io.Reader = os.Stdin
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatal().Err(err).Str("input", *input).Msg("unable to open input")
		}
		defer f.Close()
		in = f
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	// Metrics are still recorded so the dispatcher behaves the same as in the
	// server; nothing exposes this registry.
	d := dispatch.New(engine.New(), metrics.New(prometheus.NewRegistry()))
	reporter := report.NewTextReporter(out)

	src := command.NewSource(in)
	for {
		intent, err := src.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("unable to read commands")
			return
		}
		if err := d.Dispatch(intent, reporter); err != nil {
			log.Error().Err(err).Msg("unable to write output")
			return
		}
	}
}
