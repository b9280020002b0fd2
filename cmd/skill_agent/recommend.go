package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-recommender/internal/llm"
	"github.com/jonathan/skill-recommender/internal/observability"
	"github.com/jonathan/skill-recommender/internal/team"
	"github.com/jonathan/skill-recommender/internal/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend skills for a team member",
	Long: `Run the recommendation pipeline for one member given on the command line, or for
members of a team file (--team). Upskill runs deepen the current role; cross-skill runs
prepare for --target-role, or for adjacent roles when recommending for a whole team.`,
	RunE: runRecommend,
}

var (
	recName       string
	recRole       string
	recSkills     []string
	recType       string
	recTargetRole string
	recYears      int
	recDynamic    bool
	recModel      string
	recTeamFile   string
	recMember     string
	recJSON       bool
)

func init() {
	recommendCmd.Flags().StringVar(&recName, "name", "Team Member", "Member name")
	recommendCmd.Flags().StringVar(&recRole, "role", "", "Current role")
	recommendCmd.Flags().StringSliceVar(&recSkills, "skills", nil, "Current skills (comma-separated)")
	recommendCmd.Flags().StringVarP(&recType, "type", "t", string(types.RecommendationUpskill), "Recommendation type: upskill or cross_skill")
	recommendCmd.Flags().StringVar(&recTargetRole, "target-role", "", "Target role (required for a single cross_skill run)")
	recommendCmd.Flags().IntVar(&recYears, "years", 0, "Years of experience (0 if unknown)")
	recommendCmd.Flags().BoolVar(&recDynamic, "dynamic", false, "Use live industry trends instead of indexed documents")
	recommendCmd.Flags().StringVar(&recModel, "model", "", "Model speed: fast, balanced or powerful")
	recommendCmd.Flags().StringVar(&recTeamFile, "team", "", "Team file (.csv or .json) to take members from")
	recommendCmd.Flags().StringVar(&recMember, "member", "", "With --team, only this member")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "Print JSON instead of formatted text")

	rootCmd.AddCommand(recommendCmd)
}

// recommendRequests builds the requests for a run from flags or a team file.
func recommendRequests(teamFile, member string, base types.RecommendationRequest) ([]types.RecommendationRequest, error) {
	if teamFile == "" {
		if base.Role == "" || len(base.Skills) == 0 {
			return nil, fmt.Errorf("--role and --skills are required without --team")
		}
		return []types.RecommendationRequest{base}, nil
	}

	members, err := readTeamFile(teamFile)
	if err != nil {
		return nil, err
	}

	var reqs []types.RecommendationRequest
	for _, m := range members {
		if member != "" && !strings.EqualFold(m.Name, strings.TrimSpace(member)) {
			continue
		}
		req := base
		req.MemberName = m.Name
		req.Role = m.Role
		req.Skills = m.Skills
		req.YearsExperience = m.YearsExperience
		reqs = append(reqs, req)
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("member %q not found in %s", member, teamFile)
	}
	return reqs, nil
}

func readTeamFile(path string) ([]types.TeamMember, error) {
	format, err := team.FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open team file: %w", err)
	}
	defer f.Close()
	return team.Parse(f, format)
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	reqs, err := recommendRequests(recTeamFile, recMember, types.RecommendationRequest{
		MemberName:         recName,
		Role:               recRole,
		Skills:             recSkills,
		RecommendationType: types.RecommendationType(recType),
		TargetRole:         recTargetRole,
		YearsExperience:    recYears,
		Dynamic:            recDynamic,
	})
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if recModel != "" {
		if _, err := llm.ParseTier(recModel); err != nil {
			return err
		}
		cfg.ModelTier = recModel
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var responses []*types.RecommendationResponse
	for _, req := range reqs {
		resp, err := a.pipeline.Recommend(ctx, req)
		if err != nil {
			return err
		}
		responses = append(responses, resp)
	}
	return printResponses(cmd.OutOrStdout(), responses, recJSON)
}

func printResponses(out io.Writer, responses []*types.RecommendationResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if len(responses) == 1 {
			return enc.Encode(responses[0])
		}
		return enc.Encode(responses)
	}

	printer := observability.NewPrinter(out)
	for _, resp := range responses {
		printer.PrintRecommendations(resp)
	}
	return nil
}
