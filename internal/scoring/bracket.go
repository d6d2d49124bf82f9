package scoring

import (
	"errors"
	"fmt"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/utils"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
)

var (
	ErrPoolCount          = errors.New("bracket seeding requires exactly two pools")
	ErrNotEnoughStandings = errors.New("each pool needs at least two ranked teams to seed the semifinals")
	// ErrSameTeamSeeded is returned when a team ranks in the top two of
	// both pools and would meet itself or play both semifinals.
	ErrSameTeamSeeded = errors.New("a team holds a semifinal seed in both pools")
)

// Pairing is the two teams seeded into one semifinal slot.
type Pairing struct {
	Slot    volley.BracketSlot `json:"slot"`
	Team1ID uuid.UUID          `json:"team1_id"`
	Team2ID uuid.UUID          `json:"team2_id"`
}

// SeedSemifinals cross-seeds two pool tables so pool mates cannot meet in
// the semis: SF1 is A1 vs B2, SF2 is B1 vs A2. Pools are labelled A and B
// in display order.
func SeedSemifinals(tables []PoolTable) ([2]Pairing, error) {
	var pairings [2]Pairing
	if len(tables) != 2 {
		return pairings, fmt.Errorf("%w: found %d", ErrPoolCount, len(tables))
	}

	pools := []volley.Pool{tables[0].Pool, tables[1].Pool}
	volley.SortPools(pools)
	a, b := tables[0], tables[1]
	if pools[0].ID != a.Pool.ID {
		a, b = b, a
	}

	for _, t := range []PoolTable{a, b} {
		if len(t.Standings) < 2 {
			return pairings, fmt.Errorf("%w: %s has %d", ErrNotEnoughStandings, t.Pool.Name, len(t.Standings))
		}
	}

	seeds := make(map[uuid.UUID]bool, 4)
	for _, s := range []Standing{a.Standings[0], a.Standings[1], b.Standings[0], b.Standings[1]} {
		if seeds[s.TeamID] {
			return pairings, fmt.Errorf("%w: %s", ErrSameTeamSeeded, s.Name)
		}
		seeds[s.TeamID] = true
	}

	pairings[0] = Pairing{Slot: volley.SlotSF1, Team1ID: a.Standings[0].TeamID, Team2ID: b.Standings[1].TeamID}
	pairings[1] = Pairing{Slot: volley.SlotSF2, Team1ID: b.Standings[0].TeamID, Team2ID: a.Standings[1].TeamID}
	return pairings, nil
}

type MutationOp int

const (
	OpInsert MutationOp = iota + 1
	OpUpdate
)

// Mutation is one match row the caller has to write. Inserted matches also
// need their three sets. ResetSets asks for the existing sets to be zeroed.
type Mutation struct {
	Op        MutationOp
	Match     volley.Match
	ResetSets bool
}

// FindSlot returns the match holding slot, if any.
func FindSlot(matches []volley.Match, slot volley.BracketSlot) *volley.Match {
	for i := range matches {
		if s, ok := matches[i].Slot(); ok && s == slot {
			return &matches[i]
		}
	}
	return nil
}

// PlanPlaceholders creates the empty SF1, SF2 and F matches that do not exist yet.
func PlanPlaceholders(tournamentID uuid.UUID, matches []volley.Match) []Mutation {
	var out []Mutation
	for _, slot := range []volley.BracketSlot{volley.SlotSF1, volley.SlotSF2, volley.SlotFinal} {
		if FindSlot(matches, slot) != nil {
			continue
		}
		out = append(out, Mutation{Op: OpInsert, Match: newBracketMatch(tournamentID, slot, nil, nil)})
	}
	return out
}

// PlanSeeding writes the pairings into the semifinal slots. Existing
// semifinals get their teams overwritten; missing ones are created. A
// semifinal whose teams change starts over: scheduled, no winner, sets zeroed.
func PlanSeeding(tournamentID uuid.UUID, pairings [2]Pairing, matches []volley.Match) []Mutation {
	out := make([]Mutation, 0, len(pairings))
	for _, p := range pairings {
		if existing := FindSlot(matches, p.Slot); existing != nil {
			m := *existing
			team1, team2 := utils.Ptr(p.Team1ID), utils.Ptr(p.Team2ID)
			changed := !utils.EqualPtr(m.Team1ID, team1) || !utils.EqualPtr(m.Team2ID, team2)
			m.Team1ID, m.Team2ID = team1, team2
			if changed {
				m.Status = volley.MatchScheduled
				m.WinnerTeamID = nil
			}
			out = append(out, Mutation{Op: OpUpdate, Match: m, ResetSets: changed})
			continue
		}
		out = append(out, Mutation{Op: OpInsert, Match: newBracketMatch(tournamentID, p.Slot, utils.Ptr(p.Team1ID), utils.Ptr(p.Team2ID))})
	}
	return out
}

// PlanFinal moves the semifinal winners into the final. It only fills empty
// final slots, creates the final when missing, and returns false when there
// is nothing to write, either semifinal is not completed with a winner, or
// the final would pit a team against itself.
func PlanFinal(tournamentID uuid.UUID, matches []volley.Match) (Mutation, bool) {
	sf1 := FindSlot(matches, volley.SlotSF1)
	sf2 := FindSlot(matches, volley.SlotSF2)
	if !semifinalDecided(sf1) || !semifinalDecided(sf2) {
		return Mutation{}, false
	}
	winner1, winner2 := utils.Ptr(*sf1.WinnerTeamID), utils.Ptr(*sf2.WinnerTeamID)

	final := FindSlot(matches, volley.SlotFinal)
	if final == nil {
		if *winner1 == *winner2 {
			return Mutation{}, false
		}
		return Mutation{Op: OpInsert, Match: newBracketMatch(tournamentID, volley.SlotFinal, winner1, winner2)}, true
	}

	m := *final
	changed := false
	if m.Team1ID == nil {
		m.Team1ID = winner1
		changed = true
	}
	if m.Team2ID == nil {
		m.Team2ID = winner2
		changed = true
	}
	if !changed || utils.EqualPtr(m.Team1ID, m.Team2ID) {
		return Mutation{}, false
	}
	return Mutation{Op: OpUpdate, Match: m}, true
}

func semifinalDecided(m *volley.Match) bool {
	return m != nil && m.IsCompleted() && m.WinnerTeamID != nil
}

func newBracketMatch(tournamentID uuid.UUID, slot volley.BracketSlot, team1, team2 *uuid.UUID) volley.Match {
	var kind volley.MatchKind = volley.Semifinal{Slot: slot}
	if slot == volley.SlotFinal {
		kind = volley.Final{}
	}
	return volley.Match{
		ID:           uuid.New(),
		TournamentID: tournamentID,
		Team1ID:      team1,
		Team2ID:      team2,
		Status:       volley.MatchScheduled,
		Kind:         kind,
	}
}
