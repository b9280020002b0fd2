package skills

import "strings"

// Gap analysis limits. advancedJuniorLimit caps advanced suggestions below AdvancedMinYears.
const (
	AdvancedMinYears    = 3
	advancedJuniorLimit = 2
	MaxCrossOpportunity = 8
)

// skillSet is a case-insensitive set of skill names.
type skillSet map[string]struct{}

func newSkillSet(skills ...[]string) skillSet {
	s := make(skillSet)
	for _, list := range skills {
		for _, sk := range list {
			s.add(sk)
		}
	}
	return s
}

func skillKey(skill string) string { return strings.ToLower(strings.TrimSpace(skill)) }

func (s skillSet) add(skill string) { s[skillKey(skill)] = struct{}{} }

func (s skillSet) has(skill string) bool {
	_, ok := s[skillKey(skill)]
	return ok
}

// difference returns the items of list that are not in exclude, in list order, without repeats.
func difference(list []string, exclude skillSet) []string {
	seen := make(skillSet)
	var out []string
	for _, sk := range list {
		if strings.TrimSpace(sk) == "" || exclude.has(sk) || seen.has(sk) {
			continue
		}
		seen.add(sk)
		out = append(out, sk)
	}
	return out
}

// MissingCore returns the role's core skills that current lacks, in table order.
// Names compare case-insensitively.
func MissingCore(p Profile, current []string) []string {
	return difference(p.CoreSkills, newSkillSet(current))
}

// AdvancedCandidates returns the role's advanced skills that current lacks, in table order.
// Below AdvancedMinYears only the first two are returned.
func AdvancedCandidates(p Profile, current []string, years int) []string {
	out := difference(p.AdvancedSkills, newSkillSet(current))
	if years < AdvancedMinYears && len(out) > advancedJuniorLimit {
		out = out[:advancedJuniorLimit]
	}
	return out
}

// AdjacentSkills returns the union of core and advanced skills of the given profiles,
// in profile order, without repeats.
func AdjacentSkills(profiles []Profile) []string {
	var all []string
	for _, p := range profiles {
		all = append(all, p.CoreSkills...)
		all = append(all, p.AdvancedSkills...)
	}
	return difference(all, newSkillSet())
}

// IsComplementary reports whether skill appears in the complement list of any current skill.
func IsComplementary(skill string, current []string, complements map[string][]string) bool {
	for _, cur := range current {
		for anchor, list := range complements {
			if !strings.EqualFold(anchor, strings.TrimSpace(cur)) {
				continue
			}
			for _, c := range list {
				if strings.EqualFold(c, strings.TrimSpace(skill)) {
					return true
				}
			}
		}
	}
	return false
}

// CrossOpportunities combines complementary adjacent-role skills with industry trends
// the member does not already have. Complementary skills come first; at most
// MaxCrossOpportunity are returned.
func CrossOpportunities(adjacent []Profile, current []string, complements map[string][]string, trends []string) []string {
	have := newSkillSet(current)

	var complementary []string
	for _, sk := range difference(AdjacentSkills(adjacent), have) {
		if IsComplementary(sk, current, complements) {
			complementary = append(complementary, sk)
		}
	}

	out := append([]string(nil), complementary...)
	out = append(out, difference(trends, newSkillSet(current, complementary))...)

	if len(out) > MaxCrossOpportunity {
		out = out[:MaxCrossOpportunity]
	}
	return out
}

// Priorities buckets a member's gaps.
type Priorities struct {
	High   []string `json:"high"`
	Medium []string `json:"medium"`
	Low    []string `json:"low"`
}

// SuggestPriorities puts missing core skills at high, missing advanced skills at medium
// once the member has AdvancedMinYears, and missing cross skills at low.
func SuggestPriorities(p Profile, current []string, years int) Priorities {
	have := newSkillSet(current)
	pr := Priorities{
		High: difference(p.CoreSkills, have),
		Low:  difference(p.CrossSkills, have),
	}
	if years >= AdvancedMinYears {
		pr.Medium = difference(p.AdvancedSkills, have)
	}
	return pr
}

// Overlap is the Jaccard similarity of two skill lists, case-insensitive.
func Overlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	sa, sb := newSkillSet(a), newSkillSet(b)
	union := make(skillSet, len(sa)+len(sb))
	inter := 0
	for k := range sa {
		union[k] = struct{}{}
		if _, ok := sb[k]; ok {
			inter++
		}
	}
	for k := range sb {
		union[k] = struct{}{}
	}
	if len(union) == 0 {
		return 0
	}
	return float64(inter) / float64(len(union))
}
