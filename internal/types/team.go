package types

import (
	"github.com/go-playground/validator/v10"
)

// Level is the normalized seniority of a team member.
type Level string

// Levels
const (
	LevelJunior Level = "Junior"
	LevelMid    Level = "Mid"
	LevelSenior Level = "Senior"
	LevelLead   Level = "Lead"
)

// TeamMember is a normalized team roster record.
type TeamMember struct {
	Name            string   `json:"name" validate:"required"`
	Role            string   `json:"role" validate:"required"`
	Level           Level    `json:"level"`
	Skills          []string `json:"skills" validate:"required,min=1,dive,required"`
	YearsExperience int      `json:"years_experience,omitempty" validate:"gte=0"`
}

// Validate validates the TeamMember using the validator.
func (m *TeamMember) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}

// SkillDistribution summarizes skill coverage across a team.
type SkillDistribution struct {
	TeamSize           int                 `json:"team_size"`
	TotalUniqueSkills  int                 `json:"total_unique_skills"`
	SkillCounts        map[string]int      `json:"skill_counts"`
	RoleSkillMapping   map[string][]string `json:"role_skill_mapping"`
	LowCoverageSkills  []string            `json:"low_coverage_skills"`
	HighCoverageSkills []string            `json:"high_coverage_skills"`
}

// TeamReport is returned after ingesting a team file.
type TeamReport struct {
	Valid             bool              `json:"valid"`
	MemberCount       int               `json:"member_count"`
	Warnings          []string          `json:"warnings"`
	RoleDistribution  map[string]int    `json:"role_distribution"`
	LevelDistribution map[string]int    `json:"level_distribution"`
	Distribution      SkillDistribution `json:"skill_distribution"`
	// RoleSuggestions maps unknown roles to the closest known role by skill overlap.
	RoleSuggestions map[string]string `json:"role_suggestions,omitempty"`
}

// DocumentIngestRequest adds documents to the vector store.
type DocumentIngestRequest struct {
	Documents []string            `json:"documents" validate:"required,min=1,dive,required"`
	Metadata  []map[string]string `json:"metadata,omitempty"`
}

// Validate validates the DocumentIngestRequest using the validator.
func (r *DocumentIngestRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
