package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"seqship/internal/config"
	"seqship/internal/daemon"
	"seqship/internal/logger"
	"seqship/internal/logging"
	"seqship/internal/logging/batch"
	"seqship/internal/logging/seq"
)

func main() {
	configFile := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "seqship: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	processor, svc, err := startAgent(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start agent")
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	<-signalChan
	log.Info().Msg("received shutdown signal")
	cancel()

	svc.Stop()
	processor.Stop()
	log.Info().Msg("shut down")
}

func startAgent(ctx context.Context, cfg *config.Config) (*batch.Processor, *daemon.Service, error) {
	diagnostics := func(format string, args ...any) {
		log.Warn().Str("component", "sink").Msgf(format, args...)
	}

	sink, err := seq.New(seq.Config{
		ServerURL:           cfg.Server.URL,
		APIKey:              cfg.Server.APIKey,
		EventBodyLimitBytes: cfg.Server.EventBodyLimitBytes,
		UseGzip:             cfg.Server.Gzip,
		RequestTimeout:      cfg.RequestTimeout(),
		Diagnostics:         diagnostics,
	})
	if err != nil {
		return nil, nil, err
	}

	processor := batch.NewBatchProcessor(ctx, sink, logging.Config{
		BatchSize:   cfg.Batch.PostingLimit,
		FlushPeriod: cfg.FlushPeriod(),
		MaxRetries:  cfg.Batch.MaxRetries,
		RetryDelay:  cfg.RetryDelay(),
		QueueSize:   cfg.Batch.QueueSize,
		Diagnostics: diagnostics,
	})
	processor.Start()

	hostname, _ := os.Hostname()
	svc := daemon.NewService(ctx, daemon.Config{
		LogRootPath:        cfg.Daemon.LogRootPath,
		Hostname:           hostname,
		ScanInterval:       cfg.ScanInterval(),
		MinWorkers:         cfg.Daemon.MinWorkers,
		MaxWorkers:         cfg.Daemon.MaxWorkers,
		FileQueueSize:      cfg.Daemon.FileQueueSize,
		ScaleUpThreshold:   cfg.Daemon.ScaleUpThreshold,
		ScaleDownThreshold: cfg.Daemon.ScaleDownThreshold,
		ScaleCheckInterval: cfg.ScaleCheckInterval(),
		FileIdleTimeout:    cfg.FileIdleTimeout(),
	}, processor)
	svc.Start()

	log.Info().
		Str("server", cfg.Server.URL).
		Int("batch_limit", cfg.Batch.PostingLimit).
		Str("log_root", cfg.Daemon.LogRootPath).
		Msg("agent started")

	return processor, svc, nil
}
