package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-recommender/internal/observability"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or clear the vector store",
}

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document count and embedding dimension",
	RunE:  runStoreStats,
}

var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every document and the on-disk snapshot",
	RunE:  runStoreClear,
}

var storeJSON bool

func init() {
	storeStatsCmd.Flags().BoolVar(&storeJSON, "json", false, "Print JSON instead of formatted text")

	storeCmd.AddCommand(storeStatsCmd)
	storeCmd.AddCommand(storeClearCmd)
	rootCmd.AddCommand(storeCmd)
}

func openStoreOnly(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}
	if err := openStore(cmd.Context(), a, false); err != nil {
		return nil, err
	}
	return a, nil
}

func runStoreStats(cmd *cobra.Command, _ []string) error {
	a, err := openStoreOnly(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stats := a.store.Stats()
	if storeJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintStoreStats(stats)
	return nil
}

func runStoreClear(cmd *cobra.Command, _ []string) error {
	a, err := openStoreOnly(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n := a.store.Stats().TotalDocuments
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d documents from %s\n", n, a.cfg.VectorStorePath)
	return nil
}
