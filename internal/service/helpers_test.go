package service

import (
	"context"
	"sync"
	"testing"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/db"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.InitDB("file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")
	require.NoError(t, db.RunMigrations(database.DB, "file://../../migrations"), "Failed to apply migrations")
	t.Cleanup(func() { database.Close() })
	return database
}

type recorder struct {
	mu     sync.Mutex
	events []live.Event
}

func (r *recorder) Publish(e live.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) take() []live.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.events
	r.events = nil
	return out
}

type fixture struct {
	db          *sqlx.DB
	teamStore   *store.TeamStore
	tournStore  *store.TournamentStore
	matchStore  *store.MatchStore
	pub         *recorder
	teams       *TeamService
	tournaments *TournamentService
	matches     *MatchService
	bracket     *BracketService
	standings   *StandingsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := setupTestDB(t)
	rules := scoring.Latest()

	f := &fixture{
		db:         database,
		teamStore:  store.NewTeamStore(database),
		tournStore: store.NewTournamentStore(database),
		matchStore: store.NewMatchStore(database),
		pub:        &recorder{},
	}
	f.teams = NewTeamService(f.teamStore)
	f.tournaments = NewTournamentService(database, f.tournStore, f.teamStore, f.matchStore)
	f.bracket = NewBracketService(database, f.matchStore, f.tournStore, f.pub, rules)
	f.matches = NewMatchService(database, f.matchStore, f.tournStore, f.bracket, f.pub, rules)
	f.standings = NewStandingsService(f.tournaments, rules)
	return f
}

func (f *fixture) tournament(t *testing.T, name string) *volley.Tournament {
	t.Helper()
	tournament, err := f.tournaments.CreateTournament(context.Background(), TournamentInput{Name: name})
	require.NoError(t, err)
	return tournament
}

// team creates a team and registers it for the tournament.
func (f *fixture) team(t *testing.T, tournamentID uuid.UUID, name string) volley.Team {
	t.Helper()
	team, err := f.teams.CreateTeam(context.Background(), name)
	require.NoError(t, err)
	require.NoError(t, f.tournaments.AddTeam(context.Background(), tournamentID, team.ID))
	return *team
}

func (f *fixture) pool(t *testing.T, tournamentID uuid.UUID, name string, teams ...volley.Team) volley.Pool {
	t.Helper()
	pool, err := f.tournaments.CreatePool(context.Background(), tournamentID, name, nil)
	require.NoError(t, err)
	for _, team := range teams {
		require.NoError(t, f.tournaments.AddPoolTeam(context.Background(), pool.ID, team.ID))
	}
	return *pool
}

// setScores writes final set scores straight to the store.
func (f *fixture) setScores(t *testing.T, matchID uuid.UUID, scores ...[2]int) {
	t.Helper()
	for i, sc := range scores {
		_, err := f.db.Exec(`UPDATE sets SET team1_points = ?, team2_points = ? WHERE match_id = ? AND set_number = ?`,
			sc[0], sc[1], matchID, i+1)
		require.NoError(t, err)
	}
}

// play schedules, scores and completes a match.
func (f *fixture) play(t *testing.T, tournamentID uuid.UUID, team1, team2 volley.Team, kind volley.MatchKind, scores ...[2]int) *volley.Match {
	t.Helper()
	ctx := context.Background()
	m, err := f.matches.ScheduleMatch(ctx, ScheduleInput{TournamentID: tournamentID, Team1ID: team1.ID, Team2ID: team2.ID, Kind: kind})
	require.NoError(t, err)
	f.setScores(t, m.ID, scores...)
	m, err = f.matches.CompleteMatch(ctx, m.ID)
	require.NoError(t, err)
	return m
}

func (f *fixture) slot(t *testing.T, tournamentID uuid.UUID, slot volley.BracketSlot) *volley.Match {
	t.Helper()
	matches, err := f.matchStore.GetMatches(context.Background(), tournamentID)
	require.NoError(t, err)
	return scoring.FindSlot(matches, slot)
}
