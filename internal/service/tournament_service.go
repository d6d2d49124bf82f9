package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	db      *sqlx.DB
	store   *store.TournamentStore
	teams   *store.TeamStore
	matches *store.MatchStore
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, teams *store.TeamStore, matches *store.MatchStore) *TournamentService {
	return &TournamentService{db: db, store: store, teams: teams, matches: matches}
}

type TournamentInput struct {
	Name      string     `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (s *TournamentService) CreateTournament(ctx context.Context, input TournamentInput) (*volley.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	slug := volley.Slugify(name)
	if slug == "" {
		return nil, ErrNameRequired
	}
	if input.StartDate != nil && input.EndDate != nil && input.EndDate.Before(*input.StartDate) {
		return nil, ErrInvalidDateRange
	}

	tournament := &volley.Tournament{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	taken, err := s.store.SlugTakenTx(ctx, tx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%q: %w", slug, ErrSlugConflict)
	}

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return tournament, nil
}

// GetTournament resolves ref as a tournament id, falling back to a slug.
func (s *TournamentService) GetTournament(ctx context.Context, ref string) (*volley.Tournament, error) {
	if id, err := uuid.Parse(ref); err == nil {
		t, err := s.store.GetTournament(ctx, id)
		return t, notFound(err, "tournament")
	}
	t, err := s.store.GetTournamentBySlug(ctx, strings.ToLower(strings.TrimSpace(ref)))
	return t, notFound(err, "tournament")
}

func (s *TournamentService) ListTournaments(ctx context.Context) ([]volley.Tournament, error) {
	return s.store.ListTournaments(ctx)
}

func (s *TournamentService) DeleteTournament(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.DeleteTournament(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete tournament: %w", err)
	}
	if !deleted {
		return fmt.Errorf("tournament %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *TournamentService) AddTeam(ctx context.Context, tournamentID, teamID uuid.UUID) error {
	if tournamentID == uuid.Nil {
		return ErrTournamentRequired
	}
	if teamID == uuid.Nil {
		return ErrTeamRequired
	}
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return notFound(err, "tournament")
	}
	if _, err := s.teams.GetTeam(ctx, teamID); err != nil {
		return notFound(err, "team")
	}
	return s.store.AddTeam(ctx, tournamentID, teamID)
}

// RemoveTeam takes the team out of the tournament and its pools. Matches
// already played stay on record.
func (s *TournamentService) RemoveTeam(ctx context.Context, tournamentID, teamID uuid.UUID) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.store.RemoveTeam(ctx, tx, tournamentID, teamID); err != nil {
		return fmt.Errorf("failed to remove team: %w", err)
	}
	return tx.Commit()
}

func (s *TournamentService) CreatePool(ctx context.Context, tournamentID uuid.UUID, name string, orderIndex *int) (*volley.Pool, error) {
	if tournamentID == uuid.Nil {
		return nil, ErrTournamentRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, notFound(err, "tournament")
	}

	pool := &volley.Pool{ID: uuid.New(), TournamentID: tournamentID, Name: name, OrderIndex: orderIndex}
	if err := s.store.CreatePool(ctx, pool); err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return pool, nil
}

func (s *TournamentService) DeletePool(ctx context.Context, poolID uuid.UUID) error {
	deleted, err := s.store.DeletePool(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to delete pool: %w", err)
	}
	if !deleted {
		return fmt.Errorf("pool %s: %w", poolID, ErrNotFound)
	}
	return nil
}

// AddPoolTeam puts a tournament team into one of the tournament's pools.
func (s *TournamentService) AddPoolTeam(ctx context.Context, poolID, teamID uuid.UUID) error {
	if teamID == uuid.Nil {
		return ErrTeamRequired
	}
	pool, err := s.store.GetPool(ctx, poolID)
	if err != nil {
		return notFound(err, "pool")
	}

	ids, err := s.store.GetTeamIDs(ctx, pool.TournamentID)
	if err != nil {
		return err
	}
	registered := false
	for _, id := range ids {
		if id == teamID {
			registered = true
			break
		}
	}
	if !registered {
		return fmt.Errorf("team %s: %w", teamID, ErrNotInTournament)
	}
	return s.store.AddPoolTeam(ctx, poolID, teamID)
}

func (s *TournamentService) RemovePoolTeam(ctx context.Context, poolID, teamID uuid.UUID) error {
	return s.store.RemovePoolTeam(ctx, poolID, teamID)
}

// LoadSnapshot reads everything a viewer of the tournament needs. The
// collections are fetched concurrently; the first failure cancels the rest.
func (s *TournamentService) LoadSnapshot(ctx context.Context, tournamentID uuid.UUID) (live.Snapshot, error) {
	tournament, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return live.Snapshot{}, notFound(err, "tournament")
	}

	snap := live.Snapshot{Tournament: *tournament}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.store.GetTeams(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load teams: %w", err)
		}
		snap.Teams = teams
		return nil
	})
	g.Go(func() error {
		pools, err := s.store.GetPools(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load pools: %w", err)
		}
		snap.Pools = pools
		return nil
	})
	g.Go(func() error {
		members, err := s.store.GetPoolMembers(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load pool members: %w", err)
		}
		snap.PoolMembers = members
		return nil
	})
	g.Go(func() error {
		matches, err := s.matches.GetMatches(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		snap.Matches = matches
		return nil
	})
	g.Go(func() error {
		sets, err := s.matches.GetTournamentSets(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to load sets: %w", err)
		}
		snap.Sets = sets
		return nil
	})

	if err := g.Wait(); err != nil {
		return live.Snapshot{}, err
	}
	return snap, nil
}
