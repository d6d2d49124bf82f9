package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	matchColumns = `id, tournament_id, team1_id, team2_id, scheduled_at, status, stage, pool_id, bracket_slot, winner_team_id, created_at`

	createMatchQuery = `INSERT INTO matches (` + matchColumns + `)
		VALUES (:id, :tournament_id, :team1_id, :team2_id, :scheduled_at, :status, :stage, :pool_id, :bracket_slot, :winner_team_id, :created_at)`
	updateMatchQuery = `UPDATE matches SET
		team1_id = :team1_id,
		team2_id = :team2_id,
		scheduled_at = :scheduled_at,
		status = :status,
		stage = :stage,
		pool_id = :pool_id,
		bracket_slot = :bracket_slot,
		winner_team_id = :winner_team_id
		WHERE id = :id`
	getMatchesQuery = `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = ? ORDER BY created_at ASC, id ASC`

	setColumns      = `id, match_id, set_number, team1_points, team2_points`
	createSetsQuery = `INSERT INTO sets (id, match_id, set_number, team1_points, team2_points)
		VALUES (:id, :match_id, :set_number, :team1_points, :team2_points)`
)

// matchRow is the raw matches row. The loosely typed stage, pool and slot
// columns are collapsed into a volley.MatchKind on the way out.
type matchRow struct {
	ID           uuid.UUID          `db:"id"`
	TournamentID uuid.UUID          `db:"tournament_id"`
	Team1ID      *uuid.UUID         `db:"team1_id"`
	Team2ID      *uuid.UUID         `db:"team2_id"`
	ScheduledAt  *time.Time         `db:"scheduled_at"`
	Status       volley.MatchStatus `db:"status"`
	Stage        string             `db:"stage"`
	PoolID       *uuid.UUID         `db:"pool_id"`
	BracketSlot  *string            `db:"bracket_slot"`
	WinnerTeamID *uuid.UUID         `db:"winner_team_id"`
	CreatedAt    time.Time          `db:"created_at"`
}

func (r matchRow) toMatch() (volley.Match, error) {
	kind, err := volley.ResolveKind(r.Stage, r.PoolID, r.BracketSlot)
	if err != nil {
		return volley.Match{}, fmt.Errorf("match %s: %w", r.ID, err)
	}
	return volley.Match{
		ID:           r.ID,
		TournamentID: r.TournamentID,
		Team1ID:      r.Team1ID,
		Team2ID:      r.Team2ID,
		ScheduledAt:  r.ScheduledAt,
		Status:       r.Status,
		Kind:         kind,
		WinnerTeamID: r.WinnerTeamID,
		CreatedAt:    r.CreatedAt,
	}, nil
}

func rowFromMatch(m *volley.Match) matchRow {
	stage, poolID, slot := volley.KindColumns(m.Kind)
	return matchRow{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		Team1ID:      m.Team1ID,
		Team2ID:      m.Team2ID,
		ScheduledAt:  m.ScheduledAt,
		Status:       m.Status,
		Stage:        stage,
		PoolID:       poolID,
		BracketSlot:  slot,
		WinnerTeamID: m.WinnerTeamID,
		CreatedAt:    m.CreatedAt,
	}
}

type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

// CreateMatch inserts the match together with its sets.
func (s *MatchStore) CreateMatch(ctx context.Context, tx *sqlx.Tx, match *volley.Match, sets []volley.Set) error {
	if _, err := tx.NamedExecContext(ctx, createMatchQuery, rowFromMatch(match)); err != nil {
		return err
	}
	if len(sets) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, createSetsQuery, sets)
	return err
}

func (s *MatchStore) UpdateMatch(ctx context.Context, tx *sqlx.Tx, match *volley.Match) error {
	_, err := tx.NamedExecContext(ctx, updateMatchQuery, rowFromMatch(match))
	return err
}

func (s *MatchStore) DeleteMatch(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *MatchStore) GetMatch(ctx context.Context, id uuid.UUID) (*volley.Match, error) {
	return s.getMatch(ctx, s.db, id)
}

func (s *MatchStore) GetMatchTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*volley.Match, error) {
	return s.getMatch(ctx, tx, id)
}

func (s *MatchStore) getMatch(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*volley.Match, error) {
	var row matchRow
	if err := sqlx.GetContext(ctx, q, &row, `SELECT `+matchColumns+` FROM matches WHERE id = ?`, id); err != nil {
		return nil, err
	}
	m, err := row.toMatch()
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatches returns the tournament's matches in creation order. Legacy
// semifinals without a slot are given one here so callers only see
// resolved kinds.
func (s *MatchStore) GetMatches(ctx context.Context, tournamentID uuid.UUID) ([]volley.Match, error) {
	return s.getMatches(ctx, s.db, tournamentID)
}

func (s *MatchStore) GetMatchesTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]volley.Match, error) {
	return s.getMatches(ctx, tx, tournamentID)
}

func (s *MatchStore) getMatches(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]volley.Match, error) {
	var rows []matchRow
	if err := sqlx.SelectContext(ctx, q, &rows, getMatchesQuery, tournamentID); err != nil {
		return nil, err
	}
	matches := make([]volley.Match, 0, len(rows))
	for _, r := range rows {
		m, err := r.toMatch()
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	volley.AssignLegacySlots(matches)
	return matches, nil
}

func (s *MatchStore) GetSet(ctx context.Context, id uuid.UUID) (*volley.Set, error) {
	var set volley.Set
	if err := s.db.GetContext(ctx, &set, `SELECT `+setColumns+` FROM sets WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &set, nil
}

func (s *MatchStore) GetSetTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*volley.Set, error) {
	var set volley.Set
	if err := tx.GetContext(ctx, &set, `SELECT `+setColumns+` FROM sets WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &set, nil
}

// GetSets returns the sets of the given matches ordered by match and set number.
func (s *MatchStore) GetSets(ctx context.Context, matchIDs []uuid.UUID) ([]volley.Set, error) {
	return s.getSets(ctx, s.db, matchIDs)
}

func (s *MatchStore) GetSetsTx(ctx context.Context, tx *sqlx.Tx, matchIDs []uuid.UUID) ([]volley.Set, error) {
	return s.getSets(ctx, tx, matchIDs)
}

func (s *MatchStore) getSets(ctx context.Context, q sqlx.QueryerContext, matchIDs []uuid.UUID) ([]volley.Set, error) {
	sets := []volley.Set{}
	if len(matchIDs) == 0 {
		return sets, nil
	}
	query, args, err := sqlx.In(`SELECT `+setColumns+` FROM sets WHERE match_id IN (?) ORDER BY match_id, set_number`, matchIDs)
	if err != nil {
		return nil, err
	}
	err = sqlx.SelectContext(ctx, q, &sets, query, args...)
	return sets, err
}

// GetTournamentSets returns every set of every match in the tournament.
func (s *MatchStore) GetTournamentSets(ctx context.Context, tournamentID uuid.UUID) ([]volley.Set, error) {
	sets := []volley.Set{}
	err := s.db.SelectContext(ctx, &sets, `SELECT s.id, s.match_id, s.set_number, s.team1_points, s.team2_points
		FROM sets s JOIN matches m ON m.id = s.match_id
		WHERE m.tournament_id = ?
		ORDER BY s.match_id, s.set_number`, tournamentID)
	return sets, err
}

// AdjustSetPoints adds delta to one side of the set, never going below zero,
// and returns the updated row.
func (s *MatchStore) AdjustSetPoints(ctx context.Context, tx *sqlx.Tx, setID uuid.UUID, side volley.Side, delta int) (*volley.Set, error) {
	column := "team1_points"
	if side == volley.SideTeam2 {
		column = "team2_points"
	}
	res, err := tx.ExecContext(ctx, `UPDATE sets SET `+column+` = MAX(0, `+column+` + ?) WHERE id = ?`, delta, setID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, sql.ErrNoRows
	}
	return s.GetSetTx(ctx, tx, setID)
}

// ResetSets zeroes every set of the match and returns them in order.
func (s *MatchStore) ResetSets(ctx context.Context, tx *sqlx.Tx, matchID uuid.UUID) ([]volley.Set, error) {
	if _, err := tx.ExecContext(ctx, `UPDATE sets SET team1_points = 0, team2_points = 0 WHERE match_id = ?`, matchID); err != nil {
		return nil, err
	}
	return s.getSets(ctx, tx, []uuid.UUID{matchID})
}
