package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/utils"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type BracketService struct {
	db          *sqlx.DB
	matches     *store.MatchStore
	tournaments *store.TournamentStore
	pub         Publisher
	rules       scoring.Ruleset
}

func NewBracketService(db *sqlx.DB, matches *store.MatchStore, tournaments *store.TournamentStore, pub Publisher, rules scoring.Ruleset) *BracketService {
	return &BracketService{db: db, matches: matches, tournaments: tournaments, pub: orNoop(pub), rules: rules}
}

// CreatePlaceholders adds the empty SF1, SF2 and final matches that are
// still missing, each with its three sets.
func (s *BracketService) CreatePlaceholders(ctx context.Context, tournamentID uuid.UUID) ([]volley.Match, error) {
	if tournamentID == uuid.Nil {
		return nil, ErrTournamentRequired
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := s.requireTournament(ctx, tx, tournamentID); err != nil {
		return nil, err
	}
	matches, err := s.matches.GetMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches: %w", err)
	}

	muts := scoring.PlanPlaceholders(tournamentID, matches)
	events, err := applyMutations(ctx, tx, s.matches, muts)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	publishAll(s.pub, events)
	return mutatedMatches(muts), nil
}

// SeedSemifinals ranks both pools and writes A1 vs B2 into SF1 and B1 vs
// A2 into SF2. Either both semifinals are written or neither is.
func (s *BracketService) SeedSemifinals(ctx context.Context, tournamentID uuid.UUID) ([2]scoring.Pairing, error) {
	var pairings [2]scoring.Pairing
	if tournamentID == uuid.Nil {
		return pairings, ErrTournamentRequired
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return pairings, err
	}
	defer tx.Rollback()

	if err := s.requireTournament(ctx, tx, tournamentID); err != nil {
		return pairings, err
	}

	teams, err := s.tournaments.GetTeamsTx(ctx, tx, tournamentID)
	if err != nil {
		return pairings, fmt.Errorf("failed to load teams: %w", err)
	}
	pools, err := s.tournaments.GetPoolsTx(ctx, tx, tournamentID)
	if err != nil {
		return pairings, fmt.Errorf("failed to load pools: %w", err)
	}
	members, err := s.tournaments.GetPoolMembersTx(ctx, tx, tournamentID)
	if err != nil {
		return pairings, fmt.Errorf("failed to load pool members: %w", err)
	}
	matches, err := s.matches.GetMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return pairings, fmt.Errorf("failed to load matches: %w", err)
	}
	sets, err := s.matches.GetSetsTx(ctx, tx, matchIDs(matches))
	if err != nil {
		return pairings, fmt.Errorf("failed to load sets: %w", err)
	}

	tables := scoring.PoolTables(pools, members, teams, matches, sets, s.rules)
	pairings, err = scoring.SeedSemifinals(tables)
	if err != nil {
		return pairings, err
	}

	events, err := applyMutations(ctx, tx, s.matches, scoring.PlanSeeding(tournamentID, pairings, matches))
	if err != nil {
		return pairings, err
	}

	if err := tx.Commit(); err != nil {
		return pairings, err
	}
	publishAll(s.pub, events)
	return pairings, nil
}

// PropagateFinal moves both semifinal winners into the final. It reports
// false when nothing had to change.
func (s *BracketService) PropagateFinal(ctx context.Context, tournamentID uuid.UUID) (*volley.Match, bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	final, events, err := s.propagateFinalTx(ctx, tx, tournamentID)
	if err != nil || final == nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	publishAll(s.pub, events)
	return final, true, nil
}

func (s *BracketService) propagateFinalTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (*volley.Match, []live.Event, error) {
	matches, err := s.matches.GetMatchesTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load matches: %w", err)
	}
	mut, ok := scoring.PlanFinal(tournamentID, matches)
	if !ok {
		return nil, nil, nil
	}
	events, err := applyMutations(ctx, tx, s.matches, []scoring.Mutation{mut})
	if err != nil {
		return nil, nil, err
	}
	return &mut.Match, events, nil
}

// AssignTeams sets both team slots of a bracket or pool match by hand.
// A nil id clears that slot.
func (s *BracketService) AssignTeams(ctx context.Context, matchID uuid.UUID, team1, team2 *uuid.UUID) (*volley.Match, error) {
	if team1 != nil && utils.EqualPtr(team1, team2) {
		return nil, ErrSameTeam
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.matches.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, notFound(err, "match")
	}
	match.Team1ID = team1
	match.Team2ID = team2
	if match.WinnerTeamID != nil && !utils.EqualPtr(match.WinnerTeamID, team1) && !utils.EqualPtr(match.WinnerTeamID, team2) {
		match.WinnerTeamID = nil
	}
	if err := s.matches.UpdateMatch(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to update match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	s.pub.Publish(live.MatchEvent(live.EventUpdate, *match))
	return match, nil
}

func (s *BracketService) ClearTeams(ctx context.Context, matchID uuid.UUID) (*volley.Match, error) {
	return s.AssignTeams(ctx, matchID, nil, nil)
}

func (s *BracketService) requireTournament(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) error {
	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM tournaments WHERE id = ?`, tournamentID); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("tournament %s: %w", tournamentID, ErrNotFound)
	}
	return nil
}

// applyMutations writes planned bracket changes inside tx and returns the
// events to publish once tx commits.
func applyMutations(ctx context.Context, tx *sqlx.Tx, matches *store.MatchStore, muts []scoring.Mutation) ([]live.Event, error) {
	var events []live.Event
	now := time.Now().UTC()
	for i := range muts {
		m := &muts[i].Match
		switch muts[i].Op {
		case scoring.OpInsert:
			if m.CreatedAt.IsZero() {
				m.CreatedAt = now
			}
			sets := volley.NewSets(m.ID)
			if err := matches.CreateMatch(ctx, tx, m, sets); err != nil {
				return nil, fmt.Errorf("failed to create %s match: %w", m.Stage(), err)
			}
			events = append(events, live.MatchEvent(live.EventInsert, *m))
			for _, set := range sets {
				events = append(events, live.SetEvent(live.EventInsert, m.TournamentID, set))
			}
		case scoring.OpUpdate:
			if err := matches.UpdateMatch(ctx, tx, m); err != nil {
				return nil, fmt.Errorf("failed to update %s match: %w", m.Stage(), err)
			}
			events = append(events, live.MatchEvent(live.EventUpdate, *m))
			if !muts[i].ResetSets {
				continue
			}
			sets, err := matches.ResetSets(ctx, tx, m.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reset %s sets: %w", m.Stage(), err)
			}
			for _, set := range sets {
				events = append(events, live.SetEvent(live.EventUpdate, m.TournamentID, set))
			}
		}
	}
	return events, nil
}

func mutatedMatches(muts []scoring.Mutation) []volley.Match {
	out := make([]volley.Match, 0, len(muts))
	for _, m := range muts {
		out = append(out, m.Match)
	}
	return out
}

func matchIDs(matches []volley.Match) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}
