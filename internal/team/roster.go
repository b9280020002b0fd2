package team

import (
	"strings"
	"sync"

	"github.com/jonathan/skill-recommender/internal/types"
)

// Roster holds the most recently ingested team. It is safe for concurrent use.
type Roster struct {
	mu      sync.RWMutex
	members []types.TeamMember
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{}
}

// Replace swaps in a new team.
func (r *Roster) Replace(members []types.TeamMember) {
	cp := make([]types.TeamMember, len(members))
	copy(cp, members)

	r.mu.Lock()
	r.members = cp
	r.mu.Unlock()
}

// List returns a copy of the current team.
func (r *Roster) List() []types.TeamMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.TeamMember, len(r.members))
	copy(out, r.members)
	return out
}

// Get finds a member by name, case-insensitively.
func (r *Roster) Get(name string) (types.TeamMember, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if strings.EqualFold(m.Name, strings.TrimSpace(name)) {
			return m, true
		}
	}
	return types.TeamMember{}, false
}

// Len returns the team size.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Reset empties the roster.
func (r *Roster) Reset() {
	r.mu.Lock()
	r.members = nil
	r.mu.Unlock()
}
