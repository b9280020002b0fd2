package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-recommender/internal/observability"
	"github.com/jonathan/skill-recommender/internal/types"
)

var trendsCmd = &cobra.Command{
	Use:   "trends ROLE",
	Short: "Fetch live industry trends for a role",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrends,
}

var (
	trendsSkills     []string
	trendsTargetRole string
	trendsJSON       bool
)

func init() {
	trendsCmd.Flags().StringSliceVar(&trendsSkills, "skills", nil, "Skills used to score relevance (comma-separated)")
	trendsCmd.Flags().StringVar(&trendsTargetRole, "target-role", "", "Also fetch trends for a target role")
	trendsCmd.Flags().BoolVar(&trendsJSON, "json", false, "Print JSON instead of formatted text")

	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a := &app{cfg: cfg}
	defer a.Close()
	newTrendAggregator(a)

	role := strings.Join(args, " ")
	var bundle *types.TrendBundle
	if trendsTargetRole != "" {
		bundle = a.trends.FetchCross(cmd.Context(), role, trendsTargetRole, trendsSkills)
	} else {
		bundle = a.trends.Fetch(cmd.Context(), role, trendsSkills)
	}

	if trendsJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(bundle)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintTrendBundle(bundle)
	return nil
}
