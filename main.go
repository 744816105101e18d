// Command sift-lite reads a MediaWiki XML dump on stdin and writes one
// annotated JSON line per article to stdout. It uses sift.yaml and the
// environment only; see cmd/sift for the full CLI.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"sift/internal/annotate"
	"sift/internal/config"
	"sift/internal/diag"
	"sift/internal/dump"
	"sift/internal/pipeline"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig("sift.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, err := diag.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	logger, _ = diag.WithRun(logger)

	// 2. Initialize Components
	ann, err := annotate.New(annotate.Options{
		TransparentTags: cfg.TransparentTags,
		Offsets:         cfg.Offsets,
		Logger:          logger,
	})
	if err != nil {
		log.Fatalf("Failed to create annotator: %v", err)
	}
	sink := pipeline.NewJSONLinesSink(os.Stdout)

	// 3. Stream the dump
	p := pipeline.New(ann, sink, pipeline.Settings{
		Workers:       cfg.Workers,
		ProgressEvery: cfg.ProgressEvery,
	}, logger)
	_, runErr := p.Run(context.Background(), dump.NewReader(os.Stdin))
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		log.Fatalf("Run failed: %v", runErr)
	}
}
