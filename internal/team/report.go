package team

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/types"
)

// highCoverageShare is the fraction of the team above which a skill counts as common.
const highCoverageShare = 0.7

// Validate checks members against the role table and summarizes the team.
// Unknown roles and missing core skills are warnings, not errors.
func Validate(members []types.TeamMember, table *skills.Table) types.TeamReport {
	report := types.TeamReport{
		Valid:             len(members) > 0,
		MemberCount:       len(members),
		Warnings:          []string{},
		RoleDistribution:  map[string]int{},
		LevelDistribution: map[string]int{},
		Distribution:      Distribution(members),
	}
	if len(members) == 0 {
		report.Warnings = append(report.Warnings, "No team members provided")
		return report
	}

	for _, m := range members {
		report.RoleDistribution[m.Role]++
		report.LevelDistribution[string(m.Level)]++

		if !table.Has(m.Role) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("Role '%s' not found in skill mapping", m.Role))
			if closest := table.ClosestRole(m.Skills); closest != "" {
				if report.RoleSuggestions == nil {
					report.RoleSuggestions = map[string]string{}
				}
				report.RoleSuggestions[m.Role] = closest
			}
			continue
		}
		if missing := skills.MissingCore(table.Profile(m.Role), m.Skills); len(missing) > 0 {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s missing core skills: %s", m.Name, strings.Join(missing, ", ")))
		}
	}
	return report
}

// Distribution counts skills across members. Low-coverage skills are held by exactly one
// member; high-coverage skills by more than 70% of the team. All lists are sorted.
func Distribution(members []types.TeamMember) types.SkillDistribution {
	counts := map[string]int{}
	byRole := map[string]map[string]struct{}{}

	for _, m := range members {
		role := m.Role
		if role == "" {
			role = "Unknown"
		}
		if byRole[role] == nil {
			byRole[role] = map[string]struct{}{}
		}
		for _, s := range m.Skills {
			counts[s]++
			byRole[role][s] = struct{}{}
		}
	}

	dist := types.SkillDistribution{
		TeamSize:           len(members),
		TotalUniqueSkills:  len(counts),
		SkillCounts:        counts,
		RoleSkillMapping:   make(map[string][]string, len(byRole)),
		LowCoverageSkills:  []string{},
		HighCoverageSkills: []string{},
	}
	for role, set := range byRole {
		list := make([]string, 0, len(set))
		for s := range set {
			list = append(list, s)
		}
		sort.Strings(list)
		dist.RoleSkillMapping[role] = list
	}

	threshold := float64(len(members)) * highCoverageShare
	for s, n := range counts {
		if n == 1 {
			dist.LowCoverageSkills = append(dist.LowCoverageSkills, s)
		}
		if float64(n) > threshold {
			dist.HighCoverageSkills = append(dist.HighCoverageSkills, s)
		}
	}
	sort.Strings(dist.LowCoverageSkills)
	sort.Strings(dist.HighCoverageSkills)
	return dist
}
