package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type MatchService struct {
	db          *sqlx.DB
	store       *store.MatchStore
	tournaments *store.TournamentStore
	bracket     *BracketService
	pub         Publisher
	rules       scoring.Ruleset
}

func NewMatchService(db *sqlx.DB, store *store.MatchStore, tournaments *store.TournamentStore, bracket *BracketService, pub Publisher, rules scoring.Ruleset) *MatchService {
	return &MatchService{db: db, store: store, tournaments: tournaments, bracket: bracket, pub: orNoop(pub), rules: rules}
}

type ScheduleInput struct {
	TournamentID uuid.UUID
	Team1ID      uuid.UUID
	Team2ID      uuid.UUID
	Kind         volley.MatchKind
	ScheduledAt  *time.Time
}

// Validate checks the selections an admin has to make before a match can
// be scheduled. It never touches the store.
func (in ScheduleInput) Validate() error {
	switch {
	case in.TournamentID == uuid.Nil:
		return ErrTournamentRequired
	case in.Team1ID == uuid.Nil || in.Team2ID == uuid.Nil:
		return ErrTeamRequired
	case in.Team1ID == in.Team2ID:
		return ErrSameTeam
	}
	return nil
}

// ScheduleMatch creates a match between two tournament teams together with
// its three empty sets.
func (s *MatchService) ScheduleMatch(ctx context.Context, in ScheduleInput) (*volley.Match, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	kind := in.Kind
	if kind == nil {
		kind = volley.PoolPlay{}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	teams, err := s.tournaments.GetTeamsTx(ctx, tx, in.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament teams: %w", err)
	}
	for _, id := range []uuid.UUID{in.Team1ID, in.Team2ID} {
		if !containsTeam(teams, id) {
			return nil, fmt.Errorf("team %s: %w", id, ErrNotInTournament)
		}
	}

	if pp, ok := kind.(volley.PoolPlay); ok && pp.PoolID != nil {
		pools, err := s.tournaments.GetPoolsTx(ctx, tx, in.TournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load pools: %w", err)
		}
		if !containsPool(pools, *pp.PoolID) {
			return nil, fmt.Errorf("pool %s: %w", *pp.PoolID, ErrPoolMismatch)
		}
	}

	team1, team2 := in.Team1ID, in.Team2ID
	match := &volley.Match{
		ID:           uuid.New(),
		TournamentID: in.TournamentID,
		Team1ID:      &team1,
		Team2ID:      &team2,
		ScheduledAt:  in.ScheduledAt,
		Status:       volley.MatchScheduled,
		Kind:         kind,
		CreatedAt:    time.Now().UTC(),
	}
	sets := volley.NewSets(match.ID)
	if err := s.store.CreateMatch(ctx, tx, match, sets); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("bracket slot already taken: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.pub.Publish(live.MatchEvent(live.EventInsert, *match))
	for _, set := range sets {
		s.pub.Publish(live.SetEvent(live.EventInsert, match.TournamentID, set))
	}
	return match, nil
}

// AdjustPoint adds delta (+1 or -1) to one side of a set. Points never go
// below zero. The first adjustment of a scheduled match starts it.
func (s *MatchService) AdjustPoint(ctx context.Context, setID uuid.UUID, side volley.Side, delta int) (*volley.Set, error) {
	if delta != 1 && delta != -1 {
		return nil, ErrInvalidDelta
	}
	if side != volley.SideTeam1 && side != volley.SideTeam2 {
		return nil, ErrInvalidSide
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	set, err := s.store.AdjustSetPoints(ctx, tx, setID, side, delta)
	if err != nil {
		return nil, notFound(err, "set")
	}
	match, err := s.store.GetMatchTx(ctx, tx, set.MatchID)
	if err != nil {
		return nil, notFound(err, "match")
	}

	started := false
	if match.Status == volley.MatchScheduled {
		match.Status = volley.MatchInProgress
		if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
			return nil, fmt.Errorf("failed to start match: %w", err)
		}
		started = true
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.pub.Publish(live.SetEvent(live.EventUpdate, match.TournamentID, *set))
	if started {
		s.pub.Publish(live.MatchEvent(live.EventUpdate, *match))
	}
	return set, nil
}

// CompleteMatch closes the match and stores its lenient winner. Completing
// a semifinal also moves the winners into the final once both semis are done.
func (s *MatchService) CompleteMatch(ctx context.Context, matchID uuid.UUID) (*volley.Match, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	match, err := s.store.GetMatchTx(ctx, tx, matchID)
	if err != nil {
		return nil, notFound(err, "match")
	}
	if !match.HasTeams() {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrMatchTeamsMissing)
	}
	sets, err := s.store.GetSetsTx(ctx, tx, []uuid.UUID{matchID})
	if err != nil {
		return nil, fmt.Errorf("failed to load sets: %w", err)
	}
	if len(sets) < volley.SetsPerMatch {
		return nil, fmt.Errorf("match %s has %d: %w", matchID, len(sets), ErrIncompleteSets)
	}

	match.Status = volley.MatchCompleted
	match.WinnerTeamID = scoring.ComputeWinnerID(*match, sets)
	if err := s.store.UpdateMatch(ctx, tx, match); err != nil {
		return nil, fmt.Errorf("failed to complete match: %w", err)
	}
	events := []live.Event{live.MatchEvent(live.EventUpdate, *match)}

	if _, ok := match.Kind.(volley.Semifinal); ok && s.bracket != nil {
		_, finalEvents, err := s.bracket.propagateFinalTx(ctx, tx, match.TournamentID)
		if err != nil {
			return nil, fmt.Errorf("failed to propagate final: %w", err)
		}
		events = append(events, finalEvents...)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	publishAll(s.pub, events)
	return match, nil
}

func (s *MatchService) DeleteMatch(ctx context.Context, matchID uuid.UUID) error {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return notFound(err, "match")
	}
	deleted, err := s.store.DeleteMatch(ctx, matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if !deleted {
		return fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}
	s.pub.Publish(live.MatchEvent(live.EventDelete, *match))
	return nil
}

// SetDetail is one set as the scoring screen shows it.
type SetDetail struct {
	volley.Set
	Target int    `json:"target"`
	Winner string `json:"winner"`
}

type MatchDetail struct {
	Match     volley.Match `json:"match"`
	Sets      []SetDetail  `json:"sets"`
	Winner    string       `json:"strict_winner"`
	ActiveSet *int         `json:"active_set,omitempty"`
	SetsWon1  int          `json:"sets_won_team1"`
	SetsWon2  int          `json:"sets_won_team2"`
}

// MatchDetail evaluates every set with the strict rules of the match's stage.
func (s *MatchService) MatchDetail(ctx context.Context, matchID uuid.UUID) (*MatchDetail, error) {
	match, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, notFound(err, "match")
	}
	sets, err := s.store.GetSets(ctx, []uuid.UUID{matchID})
	if err != nil {
		return nil, fmt.Errorf("failed to load sets: %w", err)
	}

	stage := match.Stage()
	detail := &MatchDetail{
		Match:  *match,
		Sets:   make([]SetDetail, 0, len(sets)),
		Winner: scoring.StrictWinner(stage, sets, s.rules).String(),
	}
	for _, set := range scoring.SortSets(sets) {
		winner := scoring.SetWinner(set, stage, s.rules)
		switch winner {
		case volley.SideTeam1:
			detail.SetsWon1++
		case volley.SideTeam2:
			detail.SetsWon2++
		}
		detail.Sets = append(detail.Sets, SetDetail{
			Set:    set,
			Target: s.rules.Target(stage, set.SetNumber),
			Winner: winner.String(),
		})
	}
	if active, ok := scoring.ActiveSet(sets, stage, s.rules); ok {
		n := active.SetNumber
		detail.ActiveSet = &n
	}
	return detail, nil
}

func containsTeam(teams []volley.Team, id uuid.UUID) bool {
	for _, t := range teams {
		if t.ID == id {
			return true
		}
	}
	return false
}

func containsPool(pools []volley.Pool, id uuid.UUID) bool {
	for _, p := range pools {
		if p.ID == id {
			return true
		}
	}
	return false
}
