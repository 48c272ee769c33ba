package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"outcry/internal/dispatch"
	"outcry/internal/engine"
	"outcry/internal/logging"
	"outcry/internal/metrics"
	"outcry/internal/net"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	address := flag.String("address", "0.0.0.0", "Address to listen on")
	port := flag.Int("port", 9001, "Port to listen on")
	workers := flag.Uint("workers", net.DefaultNWorkers, "Number of clients served concurrently")
	metricsAddress := flag.String("metrics-address", ":9090", "Address serving /metrics, empty to disable")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	if err := logging.Setup(*logLevel, os.Stderr); err != nil {
		log.Fatal().Err(err).Msg("unable to configure logging")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	// Setup the metrics, the matching engine and the TCP server.
	registry := prometheus.NewRegistry()
	dispatcher := dispatch.New(engine.New(), metrics.New(registry))
	srv := net.New(*address, *port, *workers, dispatcher)

	if *metricsAddress != "" {
		metricsSrv := &http.Server{
			Addr:              *metricsAddress,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("unable to stop metrics server")
			}
		}()
	}

	// Block on running the server.
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
	}
}
