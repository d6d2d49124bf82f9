package live

import (
	"testing"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() Snapshot {
	tournament := volley.Tournament{ID: uuid.New(), Name: "Cup", Slug: "cup"}
	a := volley.Team{ID: uuid.New(), Name: "A"}
	b := volley.Team{ID: uuid.New(), Name: "B"}
	m := volley.Match{
		ID:           uuid.New(),
		TournamentID: tournament.ID,
		Team1ID:      &a.ID,
		Team2ID:      &b.ID,
		Status:       volley.MatchInProgress,
		Kind:         volley.PoolPlay{},
	}
	return Snapshot{
		Tournament: tournament,
		Teams:      []volley.Team{a, b},
		Matches:    []volley.Match{m},
		Sets:       volley.NewSets(m.ID),
	}
}

func TestApply_SetUpdate(t *testing.T) {
	snap := testSnapshot()
	updated := snap.Sets[0]
	updated.Team1Points = 5

	next := Apply(snap, SetEvent(EventUpdate, snap.Tournament.ID, updated))

	assert.Equal(t, 5, next.Sets[0].Team1Points)
	assert.Equal(t, 0, snap.Sets[0].Team1Points, "input snapshot must not change")
	assert.Len(t, next.Sets, 3)
}

func TestApply_SetInsert(t *testing.T) {
	snap := testSnapshot()

	// Duplicate insert is ignored.
	next := Apply(snap, SetEvent(EventInsert, snap.Tournament.ID, snap.Sets[1]))
	assert.Len(t, next.Sets, 3)

	// Sets of unknown matches are ignored.
	orphan := volley.Set{ID: uuid.New(), MatchID: uuid.New(), SetNumber: 1}
	next = Apply(snap, SetEvent(EventInsert, snap.Tournament.ID, orphan))
	assert.Len(t, next.Sets, 3)

	m := volley.Match{ID: uuid.New(), TournamentID: snap.Tournament.ID, Kind: volley.Final{}}
	next = Apply(snap, MatchEvent(EventInsert, m))
	require.Len(t, next.Matches, 2)
	for _, s := range volley.NewSets(m.ID) {
		next = Apply(next, SetEvent(EventInsert, snap.Tournament.ID, s))
	}
	assert.Len(t, next.Sets, 6)
	assert.Len(t, snap.Sets, 3)
}

func TestApply_OtherTournamentIgnored(t *testing.T) {
	snap := testSnapshot()
	updated := snap.Sets[0]
	updated.Team1Points = 9

	next := Apply(snap, SetEvent(EventUpdate, uuid.New(), updated))
	assert.Equal(t, snap, next)

	m := snap.Matches[0]
	m.TournamentID = uuid.New()
	next = Apply(snap, MatchEvent(EventInsert, m))
	assert.Equal(t, snap, next)
}

func TestApply_MatchUpdateAndDelete(t *testing.T) {
	snap := testSnapshot()
	m := snap.Matches[0]
	m.Status = volley.MatchCompleted
	m.WinnerTeamID = m.Team1ID

	next := Apply(snap, MatchEvent(EventUpdate, m))
	assert.Equal(t, volley.MatchCompleted, next.Matches[0].Status)
	assert.Equal(t, volley.MatchInProgress, snap.Matches[0].Status)

	unknown := volley.Match{ID: uuid.New(), TournamentID: snap.Tournament.ID}
	assert.Equal(t, next, Apply(next, MatchEvent(EventUpdate, unknown)))

	gone := Apply(next, MatchEvent(EventDelete, m))
	assert.Empty(t, gone.Matches)
	assert.Empty(t, gone.Sets)
	assert.Len(t, next.Sets, 3)
}

func TestApply_StandingsFollowEvents(t *testing.T) {
	snap := testSnapshot()
	rules := scoring.Latest()
	scores := [][2]int{{21, 10}, {21, 15}, {0, 0}}
	for i, sc := range scores {
		s := snap.Sets[i]
		s.Team1Points, s.Team2Points = sc[0], sc[1]
		snap = Apply(snap, SetEvent(EventUpdate, snap.Tournament.ID, s))
	}

	// Not completed yet.
	for _, row := range snap.Standings(rules) {
		assert.Zero(t, row.Wins+row.Losses)
	}

	m := snap.Matches[0]
	m.Status = volley.MatchCompleted
	snap = Apply(snap, MatchEvent(EventUpdate, m))

	rows := snap.Standings(rules)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Name)
	assert.Equal(t, 1, rows[0].Wins)
	assert.Equal(t, 6, rows[0].MatchPoints)
}
