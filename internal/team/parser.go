// Package team parses team roster files and keeps the current roster in memory.
package team

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonathan/skill-recommender/internal/skills"
	"github.com/jonathan/skill-recommender/internal/types"
)

// Supported roster formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ValidationError rejects one roster record.
type ValidationError struct {
	Row     int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("team row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("team row %d: %s", e.Row, e.Message)
}

// FormatFromFilename infers the format from a file extension.
func FormatFromFilename(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported team file type %q: use .csv or .json", filepath.Ext(name))
	}
}

// Parse reads a roster in the given format. The first invalid record rejects the whole file.
func Parse(r io.Reader, format string) ([]types.TeamMember, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatCSV:
		return ParseCSV(r)
	case FormatJSON:
		return ParseJSON(r)
	default:
		return nil, fmt.Errorf("unsupported team format %q", format)
	}
}

// ParseCSV reads a roster with a header row naming name, role, level, skills and
// optionally years_experience. Skills are comma-separated within their cell.
func ParseCSV(r io.Reader) ([]types.TeamMember, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Row: 0, Message: "file is empty"}
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "role", "skills"} {
		if _, ok := cols[required]; !ok {
			return nil, &ValidationError{Row: 0, Field: required, Message: "missing column"}
		}
	}

	cell := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var members []types.TeamMember
	for row := 1; ; row++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", row, err)
		}

		m, err := newMember(row, rawMember{
			Name:   cell(rec, "name"),
			Role:   cell(rec, "role"),
			Level:  cell(rec, "level"),
			Skills: splitSkills(cell(rec, "skills")),
			Years:  parseYears(cell(rec, "years_experience")),
		})
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

type jsonMember struct {
	Name   string          `json:"name"`
	Role   string          `json:"role"`
	Level  string          `json:"level"`
	Skills json.RawMessage `json:"skills"`
	Years  json.RawMessage `json:"years_experience"`
}

// ParseJSON reads a JSON array of members. skills may be a list or a comma-separated string;
// years_experience may be a number or a numeric string.
func ParseJSON(r io.Reader) ([]types.TeamMember, error) {
	var raw []jsonMember
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("team JSON must be a list of members: %w", err)
	}

	members := make([]types.TeamMember, 0, len(raw))
	for i, jm := range raw {
		m, err := newMember(i+1, rawMember{
			Name:   jm.Name,
			Role:   jm.Role,
			Level:  jm.Level,
			Skills: decodeSkills(jm.Skills),
			Years:  decodeYears(jm.Years),
		})
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

type rawMember struct {
	Name, Role, Level string
	Skills            []string
	Years             int
}

func newMember(row int, r rawMember) (types.TeamMember, error) {
	m := types.TeamMember{
		Name:            strings.TrimSpace(r.Name),
		Role:            strings.TrimSpace(r.Role),
		Level:           NormalizeLevel(r.Level),
		Skills:          skills.NormalizeSkills(r.Skills),
		YearsExperience: r.Years,
	}

	switch {
	case m.Name == "":
		return m, &ValidationError{Row: row, Field: "name", Message: "name is required"}
	case m.Role == "":
		return m, &ValidationError{Row: row, Field: "role", Message: "role is required"}
	case len(m.Skills) == 0:
		return m, &ValidationError{Row: row, Field: "skills", Message: "at least one skill is required"}
	}
	if err := m.Validate(); err != nil {
		return m, &ValidationError{Row: row, Message: err.Error()}
	}
	return m, nil
}

var levels = map[string]types.Level{
	"junior":    types.LevelJunior,
	"mid":       types.LevelMid,
	"mid-level": types.LevelMid,
	"senior":    types.LevelSenior,
	"lead":      types.LevelLead,
	"principal": types.LevelLead,
	"staff":     types.LevelLead,
}

// NormalizeLevel maps free-text seniority to a Level. Unknown values are Mid.
func NormalizeLevel(s string) types.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return types.LevelMid
}

func splitSkills(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decodeSkills(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return splitSkills(s)
	}
	return nil
}

func decodeYears(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampYears(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseYears(s)
	}
	return 0
}

// maxYears matches the upper bound accepted on recommendation requests.
const maxYears = 60

// parseYears accepts "3", "3.5" or "" and returns a value in [0, maxYears].
func parseYears(s string) int {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return clampYears(f)
}

func clampYears(f float64) int {
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case math.IsInf(f, 1) || f > maxYears:
		return maxYears
	}
	return int(f)
}
