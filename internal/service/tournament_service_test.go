package service

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTournament(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	tournament, err := f.tournaments.CreateTournament(ctx, TournamentInput{Name: " Beach Open 2025! ", StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, "Beach Open 2025!", tournament.Name)
	assert.Equal(t, "beach-open-2025", tournament.Slug)

	bySlug, err := f.tournaments.GetTournament(ctx, "beach-open-2025")
	require.NoError(t, err)
	assert.Equal(t, tournament.ID, bySlug.ID)
	require.NotNil(t, bySlug.StartDate)
	assert.True(t, start.Equal(*bySlug.StartDate))

	byID, err := f.tournaments.GetTournament(ctx, tournament.ID.String())
	require.NoError(t, err)
	assert.Equal(t, tournament.Slug, byID.Slug)

	_, err = f.tournaments.CreateTournament(ctx, TournamentInput{Name: "beach open 2025"})
	assert.ErrorIs(t, err, ErrSlugConflict)

	_, err = f.tournaments.CreateTournament(ctx, TournamentInput{Name: "???"})
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = f.tournaments.CreateTournament(ctx, TournamentInput{Name: "Backwards", StartDate: &end, EndDate: &start})
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = f.tournaments.GetTournament(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.tournaments.GetTournament(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListTournaments_UndatedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	early := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []TournamentInput{
		{Name: "Late", StartDate: &late},
		{Name: "Undated"},
		{Name: "Early", StartDate: &early},
	} {
		_, err := f.tournaments.CreateTournament(ctx, in)
		require.NoError(t, err)
	}

	list, err := f.tournaments.ListTournaments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"Undated", "Early", "Late"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestPools(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tournament := f.tournament(t, "Pools Cup")
	a := f.team(t, tournament.ID, "A")
	outsider, err := f.teams.CreateTeam(ctx, "Outsider")
	require.NoError(t, err)

	second := 2
	poolB, err := f.tournaments.CreatePool(ctx, tournament.ID, "Pool B", &second)
	require.NoError(t, err)
	poolA := f.pool(t, tournament.ID, "Pool A", a)

	err = f.tournaments.AddPoolTeam(ctx, poolB.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrNotInTournament)

	_, err = f.tournaments.CreatePool(ctx, tournament.ID, " ", nil)
	assert.ErrorIs(t, err, ErrNameRequired)

	snap, err := f.tournaments.LoadSnapshot(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, snap.Pools, 2)
	// Pools with an order index come first.
	assert.Equal(t, poolB.ID, snap.Pools[0].ID)
	assert.Equal(t, poolA.ID, snap.Pools[1].ID)
	assert.Equal(t, []volley.PoolMember{{PoolID: poolA.ID, TeamID: a.ID}}, snap.PoolMembers)

	// Leaving the tournament also leaves its pools.
	require.NoError(t, f.tournaments.RemoveTeam(ctx, tournament.ID, a.ID))
	snap, err = f.tournaments.LoadSnapshot(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, snap.Teams)
	assert.Empty(t, snap.PoolMembers)

	require.NoError(t, f.tournaments.DeletePool(ctx, poolB.ID))
	assert.ErrorIs(t, f.tournaments.DeletePool(ctx, poolB.ID), ErrNotFound)
}

func TestDeleteTournament(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tournament := f.tournament(t, "Gone Cup")
	a := f.team(t, tournament.ID, "A")
	b := f.team(t, tournament.ID, "B")
	m := f.play(t, tournament.ID, a, b, volley.PoolPlay{}, [2]int{21, 3}, [2]int{21, 3}, [2]int{0, 0})

	require.NoError(t, f.tournaments.DeleteTournament(ctx, tournament.ID))

	_, err := f.matchStore.GetMatch(ctx, m.ID)
	assert.Error(t, err)
	_, err = f.tournaments.LoadSnapshot(ctx, tournament.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Teams outlive the tournament.
	teams, err := f.teams.ListTeams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 2)
}
