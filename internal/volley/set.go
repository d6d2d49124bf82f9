package volley

import "github.com/google/uuid"

// SetsPerMatch is the number of set rows created with every match.
const SetsPerMatch = 3

type Set struct {
	ID          uuid.UUID `db:"id" json:"id"`
	MatchID     uuid.UUID `db:"match_id" json:"match_id"`
	SetNumber   int       `db:"set_number" json:"set_number"`
	Team1Points int       `db:"team1_points" json:"team1_points"`
	Team2Points int       `db:"team2_points" json:"team2_points"`
}

// Side identifies one of the two team slots of a match.
type Side int

const (
	SideNone Side = iota
	SideTeam1
	SideTeam2
)

func (s Side) String() string {
	switch s {
	case SideTeam1:
		return "team1"
	case SideTeam2:
		return "team2"
	}
	return "none"
}

// ParseSide accepts "team1"/"1" and "team2"/"2".
func ParseSide(s string) (Side, bool) {
	switch s {
	case "team1", "1":
		return SideTeam1, true
	case "team2", "2":
		return SideTeam2, true
	}
	return SideNone, false
}

// Points returns the points of the given side.
func (s Set) Points(side Side) int {
	if side == SideTeam2 {
		return s.Team2Points
	}
	return s.Team1Points
}

// NewSets builds the three empty sets every match owns.
func NewSets(matchID uuid.UUID) []Set {
	sets := make([]Set, 0, SetsPerMatch)
	for n := 1; n <= SetsPerMatch; n++ {
		sets = append(sets, Set{ID: uuid.New(), MatchID: matchID, SetNumber: n})
	}
	return sets
}
