package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/skill-recommender/internal/config"
	"github.com/jonathan/skill-recommender/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List or show recorded recommendation runs (requires DATABASE_URL)",
	RunE:  runListRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show one run with its stages",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete RUN_ID",
	Short: "Delete a run and its stages",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteRun,
}

var (
	runsMember string
	runsStatus string
	runsLimit  int
)

func init() {
	runsCmd.Flags().StringVar(&runsMember, "member", "", "Filter by member name")
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "Filter by status (running, completed, failed)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	rootCmd.AddCommand(runsCmd)
}

func connectDB(cmd *cobra.Command) (*db.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, &config.ConfigurationError{Key: config.EnvDatabaseURL}
	}
	return db.Connect(cmd.Context(), cfg.DatabaseURL)
}

func runListRuns(cmd *cobra.Command, _ []string) error {
	database, err := connectDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	runs, err := database.ListRuns(cmd.Context(), db.RunFilters{
		MemberName: runsMember,
		Status:     runsStatus,
		Limit:      runsLimit,
	})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMEMBER\tROLE\tTYPE\tSTATUS\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.MemberName, r.Role, r.RecommendationType, r.Status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func parseRunID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid run ID %q: %w", arg, err)
	}
	return id, nil
}

func runShowRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	database, err := connectDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	run, err := database.GetRun(cmd.Context(), id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", id)
	}
	stages, err := database.ListRunStages(cmd.Context(), id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"run": run, "stages": stages})
}

func runDeleteRun(cmd *cobra.Command, args []string) error {
	id, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	database, err := connectDB(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.DeleteRun(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", id)
	return nil
}
