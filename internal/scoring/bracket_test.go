package scoring

import (
	"testing"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func table(name string, order *int, teams ...volley.Team) PoolTable {
	rows := make([]Standing, 0, len(teams))
	for _, t := range teams {
		rows = append(rows, Standing{TeamID: t.ID, Name: t.Name})
	}
	return PoolTable{Pool: volley.Pool{ID: uuid.New(), Name: name, OrderIndex: order}, Standings: rows}
}

func TestSeedSemifinals(t *testing.T) {
	a1, a2, a3 := team("A1"), team("A2"), team("A3")
	b1, b2 := team("B1"), team("B2")

	pairings, err := SeedSemifinals([]PoolTable{
		table("Pool B", nil, b1, b2),
		table("Pool A", nil, a1, a2, a3),
	})
	require.NoError(t, err)

	assert.Equal(t, Pairing{Slot: volley.SlotSF1, Team1ID: a1.ID, Team2ID: b2.ID}, pairings[0])
	assert.Equal(t, Pairing{Slot: volley.SlotSF2, Team1ID: b1.ID, Team2ID: a2.ID}, pairings[1])
}

func TestSeedSemifinals_OrderIndexDecidesPoolA(t *testing.T) {
	x1, x2 := team("X1"), team("X2")
	y1, y2 := team("Y1"), team("Y2")
	first, second := 1, 2

	pairings, err := SeedSemifinals([]PoolTable{
		table("Alpha", &second, x1, x2),
		table("Zulu", &first, y1, y2),
	})
	require.NoError(t, err)

	assert.Equal(t, y1.ID, pairings[0].Team1ID)
	assert.Equal(t, x2.ID, pairings[0].Team2ID)
	assert.Equal(t, x1.ID, pairings[1].Team1ID)
	assert.Equal(t, y2.ID, pairings[1].Team2ID)
}

func TestSeedSemifinals_Errors(t *testing.T) {
	shared := team("Both Pools")
	testCases := []struct {
		name   string
		tables []PoolTable
		err    error
	}{
		{"no pools", nil, ErrPoolCount},
		{"one pool", []PoolTable{table("A", nil, team("1"), team("2"))}, ErrPoolCount},
		{"three pools", []PoolTable{
			table("A", nil, team("1"), team("2")),
			table("B", nil, team("3"), team("4")),
			table("C", nil, team("5"), team("6")),
		}, ErrPoolCount},
		{"short pool", []PoolTable{
			table("A", nil, team("1"), team("2")),
			table("B", nil, team("3")),
		}, ErrNotEnoughStandings},
		{"empty pool", []PoolTable{
			table("A", nil),
			table("B", nil, team("3"), team("4")),
		}, ErrNotEnoughStandings},
		// A team listed in both pools: A1 and B2 would meet in SF1.
		{"team seeded against itself", []PoolTable{
			table("A", nil, shared, team("A2")),
			table("B", nil, team("B1"), shared),
		}, ErrSameTeamSeeded},
		{"team seeded into both semifinals", []PoolTable{
			table("A", nil, shared, team("A2")),
			table("B", nil, shared, team("B2")),
		}, ErrSameTeamSeeded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SeedSemifinals(tc.tables)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestPlanPlaceholders(t *testing.T) {
	tournamentID := uuid.New()

	muts := PlanPlaceholders(tournamentID, nil)
	require.Len(t, muts, 3)
	slots := make([]volley.BracketSlot, 0, 3)
	for _, m := range muts {
		assert.Equal(t, OpInsert, m.Op)
		assert.Equal(t, tournamentID, m.Match.TournamentID)
		assert.Nil(t, m.Match.Team1ID)
		assert.Nil(t, m.Match.Team2ID)
		assert.Equal(t, volley.MatchScheduled, m.Match.Status)
		slot, ok := m.Match.Slot()
		require.True(t, ok)
		slots = append(slots, slot)
	}
	assert.Equal(t, []volley.BracketSlot{volley.SlotSF1, volley.SlotSF2, volley.SlotFinal}, slots)
	assert.Equal(t, volley.StageFinal, muts[2].Match.Stage())

	existing := []volley.Match{muts[0].Match, muts[2].Match}
	again := PlanPlaceholders(tournamentID, existing)
	require.Len(t, again, 1)
	slot, _ := again[0].Match.Slot()
	assert.Equal(t, volley.SlotSF2, slot)
}

func TestPlanSeeding(t *testing.T) {
	tournamentID := uuid.New()
	a1, a2, b1, b2 := team("A1"), team("A2"), team("B1"), team("B2")
	pairings := [2]Pairing{
		{Slot: volley.SlotSF1, Team1ID: a1.ID, Team2ID: b2.ID},
		{Slot: volley.SlotSF2, Team1ID: b1.ID, Team2ID: a2.ID},
	}

	first := PlanSeeding(tournamentID, pairings, nil)
	require.Len(t, first, 2)
	for i, m := range first {
		assert.Equal(t, OpInsert, m.Op)
		assert.Equal(t, pairings[i].Team1ID, *m.Match.Team1ID)
		assert.Equal(t, pairings[i].Team2ID, *m.Match.Team2ID)
	}

	// Re-seeding the same data against the written rows updates in place.
	existing := []volley.Match{first[0].Match, first[1].Match}
	second := PlanSeeding(tournamentID, pairings, existing)
	require.Len(t, second, 2)
	for i, m := range second {
		assert.Equal(t, OpUpdate, m.Op)
		assert.Equal(t, existing[i].ID, m.Match.ID)
		assert.Equal(t, pairings[i].Team1ID, *m.Match.Team1ID)
		assert.Equal(t, pairings[i].Team2ID, *m.Match.Team2ID)
		assert.False(t, m.ResetSets)
	}

	// Seeding overwrites teams already sitting in a semifinal.
	stale := first[0].Match
	other := uuid.New()
	stale.Team1ID = &other
	third := PlanSeeding(tournamentID, pairings, []volley.Match{stale})
	require.Len(t, third, 2)
	assert.Equal(t, OpUpdate, third[0].Op)
	assert.Equal(t, a1.ID, *third[0].Match.Team1ID)
	assert.True(t, third[0].ResetSets)
	assert.Equal(t, OpInsert, third[1].Op)
}

func TestPlanSeeding_ChangedTeamsRestartSemifinal(t *testing.T) {
	tournamentID := uuid.New()
	a1, a2, b1, b2, gone := team("A1"), team("A2"), team("B1"), team("B2"), team("Gone")
	pairings := [2]Pairing{
		{Slot: volley.SlotSF1, Team1ID: a1.ID, Team2ID: b2.ID},
		{Slot: volley.SlotSF2, Team1ID: b1.ID, Team2ID: a2.ID},
	}

	// SF1 was played and won by a team that no longer holds a seed.
	playedSF1 := decidedSemi(volley.SlotSF1, gone, b2)
	// SF2 was played by exactly the teams seeded again.
	playedSF2 := decidedSemi(volley.SlotSF2, b1, a2)

	muts := PlanSeeding(tournamentID, pairings, []volley.Match{playedSF1, playedSF2})
	require.Len(t, muts, 2)

	sf1 := muts[0]
	assert.Equal(t, playedSF1.ID, sf1.Match.ID)
	assert.Equal(t, volley.MatchScheduled, sf1.Match.Status)
	assert.Nil(t, sf1.Match.WinnerTeamID)
	assert.True(t, sf1.ResetSets)

	sf2 := muts[1]
	assert.Equal(t, volley.MatchCompleted, sf2.Match.Status)
	require.NotNil(t, sf2.Match.WinnerTeamID)
	assert.Equal(t, b1.ID, *sf2.Match.WinnerTeamID)
	assert.False(t, sf2.ResetSets)

	// The stale SF1 winner must not reach the final.
	_, ok := PlanFinal(tournamentID, []volley.Match{sf1.Match, sf2.Match})
	assert.False(t, ok)
}

func decidedSemi(slot volley.BracketSlot, winner, loser volley.Team) volley.Match {
	m := completedMatch(winner, loser, volley.Semifinal{Slot: slot})
	w := winner.ID
	m.WinnerTeamID = &w
	return m
}

func TestPlanFinal(t *testing.T) {
	tournamentID := uuid.New()
	a, b, c, d := team("A"), team("B"), team("C"), team("D")

	t.Run("no semifinals", func(t *testing.T) {
		_, ok := PlanFinal(tournamentID, nil)
		assert.False(t, ok)
	})

	t.Run("one semifinal pending", func(t *testing.T) {
		sf2 := decidedSemi(volley.SlotSF2, c, d)
		sf2.Status = volley.MatchInProgress
		_, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, a, b), sf2})
		assert.False(t, ok)
	})

	t.Run("completed without winner", func(t *testing.T) {
		sf2 := decidedSemi(volley.SlotSF2, c, d)
		sf2.WinnerTeamID = nil
		_, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, a, b), sf2})
		assert.False(t, ok)
	})

	t.Run("creates the final", func(t *testing.T) {
		mut, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, a, b), decidedSemi(volley.SlotSF2, d, c)})
		require.True(t, ok)
		assert.Equal(t, OpInsert, mut.Op)
		assert.Equal(t, volley.Final{}, mut.Match.Kind)
		assert.Equal(t, a.ID, *mut.Match.Team1ID)
		assert.Equal(t, d.ID, *mut.Match.Team2ID)
	})

	t.Run("fills an empty final", func(t *testing.T) {
		final := newBracketMatch(tournamentID, volley.SlotFinal, nil, nil)
		mut, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, a, b), decidedSemi(volley.SlotSF2, c, d), final})
		require.True(t, ok)
		assert.Equal(t, OpUpdate, mut.Op)
		assert.Equal(t, final.ID, mut.Match.ID)
		assert.Equal(t, a.ID, *mut.Match.Team1ID)
		assert.Equal(t, c.ID, *mut.Match.Team2ID)
	})

	t.Run("keeps assigned slots", func(t *testing.T) {
		manual := uuid.New()
		final := newBracketMatch(tournamentID, volley.SlotFinal, &manual, nil)
		mut, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, a, b), decidedSemi(volley.SlotSF2, c, d), final})
		require.True(t, ok)
		assert.Equal(t, manual, *mut.Match.Team1ID)
		assert.Equal(t, c.ID, *mut.Match.Team2ID)
	})

	t.Run("same winner of both semifinals", func(t *testing.T) {
		_, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, a, b), decidedSemi(volley.SlotSF2, a, c)})
		assert.False(t, ok)
	})

	t.Run("never fills a slot with the team in the other slot", func(t *testing.T) {
		final := newBracketMatch(tournamentID, volley.SlotFinal, nil, &c.ID)
		_, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, c, b), decidedSemi(volley.SlotSF2, d, a), final})
		assert.False(t, ok)
	})

	t.Run("already full is a no-op", func(t *testing.T) {
		final := newBracketMatch(tournamentID, volley.SlotFinal, &b.ID, &d.ID)
		_, ok := PlanFinal(tournamentID, []volley.Match{decidedSemi(volley.SlotSF1, a, b), decidedSemi(volley.SlotSF2, c, d), final})
		assert.False(t, ok)
	})
}
