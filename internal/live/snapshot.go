package live

import (
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
)

// Snapshot is everything a viewer needs to render one tournament.
type Snapshot struct {
	Tournament  volley.Tournament   `json:"tournament"`
	Teams       []volley.Team       `json:"teams"`
	Pools       []volley.Pool       `json:"pools"`
	PoolMembers []volley.PoolMember `json:"pool_members"`
	Matches     []volley.Match      `json:"matches"`
	Sets        []volley.Set        `json:"sets"`
}

func (s Snapshot) Standings(rules scoring.Ruleset) []scoring.Standing {
	return scoring.ComputeStandings(s.Teams, s.Matches, s.Sets, rules, nil)
}

func (s Snapshot) PoolTables(rules scoring.Ruleset) []scoring.PoolTable {
	return scoring.PoolTables(s.Pools, s.PoolMembers, s.Teams, s.Matches, s.Sets, rules)
}

func (s Snapshot) hasMatch(id uuid.UUID) bool {
	for i := range s.Matches {
		if s.Matches[i].ID == id {
			return true
		}
	}
	return false
}

// Apply folds one event into the snapshot and returns the result. The input
// snapshot is never modified, so callers can keep handing out old values.
// Events for other tournaments, or rows the snapshot cannot place, leave it
// unchanged.
func Apply(s Snapshot, e Event) Snapshot {
	if e.TournamentID != s.Tournament.ID {
		return s
	}

	switch e.Table {
	case TableSets:
		if e.Set == nil || !s.hasMatch(e.Set.MatchID) {
			return s
		}
		return applySet(s, e.Type, *e.Set)
	case TableMatches:
		if e.Match == nil || e.Match.TournamentID != s.Tournament.ID {
			return s
		}
		return applyMatch(s, e.Type, *e.Match)
	}
	return s
}

func applySet(s Snapshot, typ EventType, set volley.Set) Snapshot {
	idx := -1
	for i := range s.Sets {
		if s.Sets[i].ID == set.ID {
			idx = i
			break
		}
	}

	switch typ {
	case EventInsert:
		if idx >= 0 {
			return s
		}
		s.Sets = appendCopy(s.Sets, set)
	case EventUpdate:
		if idx < 0 {
			s.Sets = appendCopy(s.Sets, set)
			return s
		}
		sets := make([]volley.Set, len(s.Sets))
		copy(sets, s.Sets)
		sets[idx] = set
		s.Sets = sets
	case EventDelete:
		if idx < 0 {
			return s
		}
		s.Sets = removeAt(s.Sets, idx)
	}
	return s
}

func applyMatch(s Snapshot, typ EventType, m volley.Match) Snapshot {
	idx := -1
	for i := range s.Matches {
		if s.Matches[i].ID == m.ID {
			idx = i
			break
		}
	}

	switch typ {
	case EventInsert:
		if idx >= 0 {
			return s
		}
		s.Matches = appendCopy(s.Matches, m)
	case EventUpdate:
		// Updates for matches the snapshot never saw are dropped; the next
		// full load picks them up.
		if idx < 0 {
			return s
		}
		matches := make([]volley.Match, len(s.Matches))
		copy(matches, s.Matches)
		matches[idx] = m
		s.Matches = matches
	case EventDelete:
		if idx < 0 {
			return s
		}
		s.Matches = removeAt(s.Matches, idx)
		sets := make([]volley.Set, 0, len(s.Sets))
		for _, set := range s.Sets {
			if set.MatchID != m.ID {
				sets = append(sets, set)
			}
		}
		s.Sets = sets
	}
	return s
}

func appendCopy[T any](items []T, item T) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	return append(out, item)
}

func removeAt[T any](items []T, idx int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:idx]...)
	return append(out, items[idx+1:]...)
}
