package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-recommender/internal/server"
	"github.com/jonathan/skill-recommender/internal/team"
	"github.com/jonathan/skill-recommender/internal/watcher"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes REST endpoints for recommendations, trends, team and document ingestion.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from PORT or config, 8000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.DocsWatchDir != "" {
		w, err := watcher.New(cfg.DocsWatchDir, a.store, nil, nil)
		if err != nil {
			return err
		}
		a.onClose(w.Close)

		n, err := w.IngestExisting(ctx)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", cfg.DocsWatchDir, err)
		}
		log.Printf("[WATCHER] Ingested %d existing files from %s", n, cfg.DocsWatchDir)

		go func() {
			if err := w.Run(ctx); err != nil {
				log.Printf("[WATCHER] Stopped: %v", err)
			}
		}()
	}

	deps := server.Deps{
		Pipeline: a.pipeline,
		Store:    a.store,
		Trends:   a.trends,
		Table:    a.table,
		Roster:   team.NewRoster(),
	}
	if a.db != nil {
		deps.Runs = a.db
	}

	srv := server.New(server.Config{Port: cfg.Port}, deps)
	return srv.Start()
}
