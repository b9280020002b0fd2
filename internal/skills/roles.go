// Package skills holds the static role tables and the deterministic skill-gap analysis.
package skills

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
)

//go:embed static_role_skills.json
var embeddedRoleSkills []byte

// EmbeddedPath selects the role table compiled into the binary.
const EmbeddedPath = "embedded"

// Profile is the skill tiers of one role.
type Profile struct {
	CoreSkills     []string `json:"core_skills"`
	AdvancedSkills []string `json:"advanced_skills"`
	CrossSkills    []string `json:"cross_skills"`
}

// Table maps role names to profiles. It is read-only after construction.
type Table struct {
	roles map[string]Profile
}

// NewTable copies roles into a Table.
func NewTable(roles map[string]Profile) *Table {
	t := &Table{roles: make(map[string]Profile, len(roles))}
	for name, p := range roles {
		t.roles[name] = Profile{
			CoreSkills:     append([]string(nil), p.CoreSkills...),
			AdvancedSkills: append([]string(nil), p.AdvancedSkills...),
			CrossSkills:    append([]string(nil), p.CrossSkills...),
		}
	}
	return t
}

// DefaultTable returns the embedded role table.
func DefaultTable() *Table {
	t, err := parseTable(embeddedRoleSkills)
	if err != nil {
		panic(fmt.Sprintf("embedded role table is invalid: %v", err))
	}
	return t
}

// LoadTable reads a role table from path. A missing file yields an empty table
// without error; an unreadable or malformed file yields an empty table and the error.
func LoadTable(path string) (*Table, error) {
	if path == EmbeddedPath {
		return DefaultTable(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("[SKILLS] Role skills file not found: %s", path)
			return NewTable(nil), nil
		}
		return NewTable(nil), fmt.Errorf("failed to read role skills %s: %w", path, err)
	}

	t, err := parseTable(data)
	if err != nil {
		return NewTable(nil), fmt.Errorf("failed to parse role skills %s: %w", path, err)
	}
	return t, nil
}

func parseTable(data []byte) (*Table, error) {
	var roles map[string]Profile
	if err := json.Unmarshal(data, &roles); err != nil {
		return nil, err
	}
	return &Table{roles: roles}, nil
}

// Profile returns the profile for role. Unknown roles get an empty profile.
func (t *Table) Profile(role string) Profile {
	if t == nil {
		return Profile{}
	}
	return t.roles[role]
}

// Has reports whether role is in the table.
func (t *Table) Has(role string) bool {
	if t == nil {
		return false
	}
	_, ok := t.roles[role]
	return ok
}

// Roles returns the role names in sorted order.
func (t *Table) Roles() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.roles))
	for name := range t.roles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of roles.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.roles)
}

// ClosestRole returns the role whose core and advanced skills overlap most with current.
// Ties go to the alphabetically first role; no overlap returns "".
func (t *Table) ClosestRole(current []string) string {
	best, bestScore := "", 0.0
	for _, name := range t.Roles() {
		p := t.roles[name]
		all := append(append([]string{}, p.CoreSkills...), p.AdvancedSkills...)
		if score := Overlap(current, all); score > bestScore {
			best, bestScore = name, score
		}
	}
	return best
}
