package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-recommender/internal/embedding"
	"github.com/jonathan/skill-recommender/internal/fetch"
	"github.com/jonathan/skill-recommender/internal/observability"
	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/team"
	"github.com/jonathan/skill-recommender/internal/watcher"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load team files and documents",
}

var ingestTeamCmd = &cobra.Command{
	Use:   "team FILE",
	Short: "Parse and validate a team file (.csv or .json)",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestTeam,
}

var ingestDocsCmd = &cobra.Command{
	Use:   "docs [FILE...]",
	Short: "Add documents to the vector store",
	Long: `Embed text files and web pages and add them to the vector store. With --watch, files
already in the directory are ingested and new or changed files are picked up until interrupted.`,
	RunE: runIngestDocs,
}

var (
	ingestJSON     bool
	ingestWatchDir string
	ingestURLs     []string
	ingestBrowser  bool
)

func init() {
	ingestTeamCmd.Flags().BoolVar(&ingestJSON, "json", false, "Print the report as JSON")
	ingestDocsCmd.Flags().StringVar(&ingestWatchDir, "watch", "", "Directory to watch for documents")
	ingestDocsCmd.Flags().StringSliceVar(&ingestURLs, "url", nil, "Web page to ingest (repeatable)")
	ingestDocsCmd.Flags().BoolVar(&ingestBrowser, "browser", false, "Render short pages with headless Chrome")

	ingestCmd.AddCommand(ingestTeamCmd)
	ingestCmd.AddCommand(ingestDocsCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestTeam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return ingestTeam(cmd.OutOrStdout(), args[0], loadTable(cfg), ingestJSON)
}

// ingestTeam parses path, validates it against table and prints the report.
func ingestTeam(out io.Writer, path string, table *skills.Table, asJSON bool) error {
	members, err := readTeamFile(path)
	if err != nil {
		return err
	}
	report := team.Validate(members, table)

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	observability.NewPrinter(out).PrintTeamReport(&report)
	return nil
}

// readDocuments reads each file as one document, tagged with its base name.
func readDocuments(paths []string) ([]string, []map[string]string, error) {
	docs := make([]string, 0, len(paths))
	meta := make([]map[string]string, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			log.Printf("[CLI] Skipping empty document %s", p)
			continue
		}
		docs = append(docs, text)
		meta = append(meta, map[string]string{"source": filepath.Base(p)})
	}
	return docs, meta, nil
}

// readPages fetches each URL and keeps its article text, tagged with the URL.
// Pages that fail or have no text are logged and skipped.
func readPages(ctx context.Context, urls []string, opts *fetch.Options, useBrowser bool) ([]string, []map[string]string) {
	var docs []string
	var meta []map[string]string
	for _, u := range urls {
		text, err := fetch.PageText(ctx, u, opts, useBrowser)
		if err != nil {
			log.Printf("[CLI] Skipping %s: %v", u, err)
			continue
		}
		if text == "" {
			log.Printf("[CLI] Skipping %s: no readable text", u)
			continue
		}
		docs = append(docs, text)
		meta = append(meta, map[string]string{"source": u})
	}
	return docs, meta
}

func runIngestDocs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && len(ingestURLs) == 0 && ingestWatchDir == "" {
		return fmt.Errorf("provide document files, --url or --watch DIR")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.EmbeddingProvider == embedding.ProviderGemini {
		if err := cfg.RequireAPIKey(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg}
	defer a.Close()
	if err := openStore(ctx, a, true); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) > 0 {
		docs, meta, err := readDocuments(args)
		if err != nil {
			return err
		}
		if err := a.store.Add(ctx, docs, meta); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added %d documents\n", len(docs))
	}

	if len(ingestURLs) > 0 {
		docs, meta := readPages(ctx, ingestURLs, fetch.DefaultOptions(), ingestBrowser)
		if len(docs) > 0 {
			if err := a.store.Add(ctx, docs, meta); err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "Added %d of %d pages\n", len(docs), len(ingestURLs))
	}

	if ingestWatchDir != "" {
		if err := watchDocuments(ctx, a, ingestWatchDir); err != nil {
			return err
		}
	}

	observability.NewPrinter(out).PrintStoreStats(a.store.Stats())
	return nil
}

// watchDocuments ingests the directory and keeps watching it until ctx is done.
func watchDocuments(ctx context.Context, a *app, dir string) error {
	w, err := watcher.New(dir, a.store, nil, nil)
	if err != nil {
		return err
	}
	defer w.Close()

	n, err := w.IngestExisting(ctx)
	if err != nil {
		return err
	}
	log.Printf("[WATCHER] Ingested %d existing files from %s; watching for changes (Ctrl+C to stop)", n, dir)

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
