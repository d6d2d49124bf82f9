package scoring

import (
	"sort"
	"strings"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
)

type Standing struct {
	TeamID           uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Wins             int       `json:"wins"`
	Losses           int       `json:"losses"`
	SetsWon          int       `json:"sets_won"`
	SetsLost         int       `json:"sets_lost"`
	PointsFor        int       `json:"points_for"`
	PointsAgainst    int       `json:"points_against"`
	PointsDiff       int       `json:"points_diff"`
	MatchPoints      int       `json:"match_points"`
	PointsDiffInWins int       `json:"points_diff_in_wins"`
}

// MatchFilter narrows the matches that count toward a table.
type MatchFilter func(m *volley.Match) bool

// ComputeStandings folds every completed match into one row per roster team
// and ranks the rows. Placeholder matches and matches missing set rows are
// skipped. Teams outside the roster are not added to the table.
func ComputeStandings(teams []volley.Team, matches []volley.Match, sets []volley.Set, rules Ruleset, filter MatchFilter) []Standing {
	rows := make(map[uuid.UUID]*Standing, len(teams))
	order := make([]uuid.UUID, 0, len(teams))
	for _, t := range teams {
		if _, ok := rows[t.ID]; ok {
			continue
		}
		rows[t.ID] = &Standing{TeamID: t.ID, Name: t.Name}
		order = append(order, t.ID)
	}

	setsByMatch := SetsByMatch(sets)

	for i := range matches {
		m := &matches[i]
		if !m.IsCompleted() || !m.HasTeams() {
			continue
		}
		if filter != nil && !filter(m) {
			continue
		}
		matchSets := setsByMatch[m.ID]
		if len(matchSets) < volley.SetsPerMatch {
			continue
		}

		tally := TallySets(matchSets)
		winner := winnerSide(m, matchSets)

		if r, ok := rows[*m.Team1ID]; ok {
			r.record(tally.SetsWon1, tally.SetsWon2, tally.Points1, tally.Points2, winner == volley.SideTeam1, rules)
		}
		if r, ok := rows[*m.Team2ID]; ok {
			r.record(tally.SetsWon2, tally.SetsWon1, tally.Points2, tally.Points1, winner == volley.SideTeam2, rules)
		}
	}

	out := make([]Standing, 0, len(order))
	for _, id := range order {
		out = append(out, *rows[id])
	}
	SortStandings(out, rules)
	return out
}

// winnerSide prefers the stored winner and falls back to the lenient rule
// for matches completed before the winner was tracked.
func winnerSide(m *volley.Match, sets []volley.Set) volley.Side {
	if m.WinnerTeamID != nil {
		if side := m.SideOf(*m.WinnerTeamID); side != volley.SideNone {
			return side
		}
	}
	return LenientWinner(sets)
}

func (s *Standing) record(setsWon, setsLost, pointsFor, pointsAgainst int, won bool, rules Ruleset) {
	s.SetsWon += setsWon
	s.SetsLost += setsLost
	s.PointsFor += pointsFor
	s.PointsAgainst += pointsAgainst
	s.PointsDiff = s.PointsFor - s.PointsAgainst
	if rules.MatchPoints != nil {
		s.MatchPoints += rules.MatchPoints(setsWon, setsLost, won)
	}
	if won {
		s.Wins++
		s.PointsDiffInWins += pointsFor - pointsAgainst
	} else {
		s.Losses++
	}
}

// SortStandings ranks rows by the ruleset's keys, then by team name.
func SortStandings(rows []Standing, rules Ruleset) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := &rows[i], &rows[j]
		for _, key := range rules.Order {
			if ka, kb := key(a), key(b); ka != kb {
				return ka > kb
			}
		}
		if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
			return la < lb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.TeamID.String() < b.TeamID.String()
	})
}

type PoolTable struct {
	Pool      volley.Pool `json:"pool"`
	Standings []Standing  `json:"standings"`
}

// PoolStandings ranks the pool's members on pool-play matches in which both
// teams belong to the pool. Cross-pool and bracket games never count.
func PoolStandings(pool volley.Pool, members map[uuid.UUID]bool, teams []volley.Team, matches []volley.Match, sets []volley.Set, rules Ruleset) []Standing {
	roster := make([]volley.Team, 0, len(members))
	for _, t := range teams {
		if members[t.ID] {
			roster = append(roster, t)
		}
	}

	filter := func(m *volley.Match) bool {
		kind, ok := m.Kind.(volley.PoolPlay)
		if !ok {
			return false
		}
		if kind.PoolID != nil && *kind.PoolID != pool.ID {
			return false
		}
		return members[*m.Team1ID] && members[*m.Team2ID]
	}
	return ComputeStandings(roster, matches, sets, rules, filter)
}

// PoolTables computes every pool's table, pools in display order.
func PoolTables(pools []volley.Pool, members []volley.PoolMember, teams []volley.Team, matches []volley.Match, sets []volley.Set, rules Ruleset) []PoolTable {
	sorted := make([]volley.Pool, len(pools))
	copy(sorted, pools)
	volley.SortPools(sorted)

	byPool := volley.MembersByPool(members)
	tables := make([]PoolTable, 0, len(sorted))
	for _, p := range sorted {
		tables = append(tables, PoolTable{
			Pool:      p,
			Standings: PoolStandings(p, byPool[p.ID], teams, matches, sets, rules),
		})
	}
	return tables
}
