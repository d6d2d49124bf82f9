package scoring

import (
	"sort"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
)

// SetsToWin is the majority of a best-of-three match.
const SetsToWin = 2

// Tally counts set wins by plain point comparison and sums points per side.
type Tally struct {
	SetsWon1 int
	SetsWon2 int
	Points1  int
	Points2  int
}

func TallySets(sets []volley.Set) Tally {
	var t Tally
	for _, s := range sets {
		t.Points1 += s.Team1Points
		t.Points2 += s.Team2Points
		switch {
		case s.Team1Points > s.Team2Points:
			t.SetsWon1++
		case s.Team2Points > s.Team1Points:
			t.SetsWon2++
		}
	}
	return t
}

// LenientWinner picks the side with more set wins, then more total points.
// An exact tie goes to team1 so a winner always exists; completion of an
// unplayed or perfectly level match therefore favours the first slot.
func LenientWinner(sets []volley.Set) volley.Side {
	t := TallySets(sets)
	if t.SetsWon1 != t.SetsWon2 {
		if t.SetsWon1 > t.SetsWon2 {
			return volley.SideTeam1
		}
		return volley.SideTeam2
	}
	if t.Points1 != t.Points2 {
		if t.Points1 > t.Points2 {
			return volley.SideTeam1
		}
		return volley.SideTeam2
	}
	return volley.SideTeam1
}

// ComputeWinnerID is the winner stored when a match is completed.
func ComputeWinnerID(m volley.Match, sets []volley.Set) *uuid.UUID {
	return m.TeamID(LenientWinner(sets))
}

// StrictWinner applies SetWinner to every set and reports the side that has
// taken two of them, SideNone while the match is undecided.
func StrictWinner(stage volley.Stage, sets []volley.Set, rules Ruleset) volley.Side {
	won1, won2 := 0, 0
	for _, s := range SortSets(sets) {
		switch SetWinner(s, stage, rules) {
		case volley.SideTeam1:
			won1++
		case volley.SideTeam2:
			won2++
		}
		if won1 >= SetsToWin {
			return volley.SideTeam1
		}
		if won2 >= SetsToWin {
			return volley.SideTeam2
		}
	}
	return volley.SideNone
}

// ActiveSet is the first set still in play, or the last set once all are decided.
func ActiveSet(sets []volley.Set, stage volley.Stage, rules Ruleset) (volley.Set, bool) {
	sorted := SortSets(sets)
	if len(sorted) == 0 {
		return volley.Set{}, false
	}
	for _, s := range sorted {
		if SetWinner(s, stage, rules) == volley.SideNone {
			return s, true
		}
	}
	return sorted[len(sorted)-1], true
}

// SortSets returns a copy ordered by set number.
func SortSets(sets []volley.Set) []volley.Set {
	out := make([]volley.Set, len(sets))
	copy(out, sets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SetNumber < out[j].SetNumber
	})
	return out
}

// SetsByMatch groups sets per match, each group ordered by set number.
func SetsByMatch(sets []volley.Set) map[uuid.UUID][]volley.Set {
	grouped := make(map[uuid.UUID][]volley.Set)
	for _, s := range sets {
		grouped[s.MatchID] = append(grouped[s.MatchID], s)
	}
	for id, group := range grouped {
		grouped[id] = SortSets(group)
	}
	return grouped
}
