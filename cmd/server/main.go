package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/filingdigest/internal/api"
	"github.com/dgallion1/filingdigest/internal/config"
	"github.com/dgallion1/filingdigest/internal/loader"
	"github.com/dgallion1/filingdigest/internal/pathstore"
	"github.com/dgallion1/filingdigest/internal/pipeline"
	"github.com/dgallion1/filingdigest/internal/segment"
	"github.com/dgallion1/filingdigest/internal/store"
	"github.com/dgallion1/filingdigest/internal/summarize"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	var defaults []summarize.InfoType
	if cfg.RunFile != "" {
		rf, err := config.LoadRunFile(cfg.RunFile)
		if err != nil {
			log.Error("invalid run file", "path", cfg.RunFile, "error", err)
			os.Exit(1)
		}
		cfg = rf.Apply(cfg)
		defaults = rf.InfoTypes
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	llm, err := summarize.New(cfg.Summarizer(), log)
	if err != nil {
		log.Error("summarizer", "error", err)
		os.Exit(1)
	}
	markers, err := segment.MarkerSet(cfg.MarkerSet)
	if err != nil {
		log.Error("marker set", "error", err)
		os.Exit(1)
	}
	seg := segment.NewSegmenter(markers)
	seg.MaxLength = cfg.MaxSegmentChars

	sinks := store.MultiSink{store.NewFileSink(cfg.OutputDir)}
	var ps *pathstore.Client
	if cfg.PathstoreURL != "" {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		sinks = append(sinks, store.NewPathstoreSink(ps))
	}

	// Initialize pipeline.
	proc := pipeline.NewProcessor(pipeline.ProcessorConfig{
		Segmenter:       seg,
		Summarizer:      llm,
		Sink:            sinks,
		InfoTypes:       defaults,
		Loader:          loader.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		FoldConcurrency: cfg.MaxConcurrentFolds,
	}, log)
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, proc, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, llm, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		llm.Close()
		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting filingdigest",
		"port", cfg.Port,
		"provider", cfg.Provider,
		"model", llm.Model(),
		"markers", cfg.MarkerSet,
		"default_info_types", len(defaults),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
