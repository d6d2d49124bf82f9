package store

import (
	"context"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	tournamentColumns = `id, name, slug, start_date, end_date, created_at`

	createTournamentQuery = `INSERT INTO tournaments (id, name, slug, start_date, end_date, created_at)
		VALUES (:id, :name, :slug, :start_date, :end_date, :created_at)`
	listTournamentsQuery = `SELECT ` + tournamentColumns + ` FROM tournaments
		ORDER BY start_date IS NOT NULL, start_date ASC, name COLLATE NOCASE ASC`

	addTournamentTeamQuery    = `INSERT OR IGNORE INTO tournament_teams (tournament_id, team_id) VALUES (?, ?)`
	removeTournamentTeamQuery = `DELETE FROM tournament_teams WHERE tournament_id = ? AND team_id = ?`
	tournamentTeamIDsQuery    = `SELECT team_id FROM tournament_teams WHERE tournament_id = ?`

	poolColumns      = `id, tournament_id, name, order_index`
	createPoolQuery  = `INSERT INTO pools (id, tournament_id, name, order_index) VALUES (:id, :tournament_id, :name, :order_index)`
	getPoolsQuery    = `SELECT ` + poolColumns + ` FROM pools WHERE tournament_id = ? ORDER BY order_index IS NULL, order_index ASC, name COLLATE NOCASE ASC`
	addPoolTeamQuery = `INSERT OR IGNORE INTO pool_teams (pool_id, team_id) VALUES (?, ?)`
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *volley.Tournament) error {
	_, err := tx.NamedExecContext(ctx, createTournamentQuery, tournament)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*volley.Tournament, error) {
	var tournament volley.Tournament
	err := s.db.GetContext(ctx, &tournament, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentBySlug(ctx context.Context, slug string) (*volley.Tournament, error) {
	var tournament volley.Tournament
	err := s.db.GetContext(ctx, &tournament, `SELECT `+tournamentColumns+` FROM tournaments WHERE slug = ?`, slug)
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

// SlugTakenTx reports whether slug is already used by another tournament.
func (s *TournamentStore) SlugTakenTx(ctx context.Context, tx *sqlx.Tx, slug string) (bool, error) {
	var n int
	err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM tournaments WHERE slug = ?`, slug)
	return n > 0, err
}

// ListTournaments returns undated tournaments first, then by start date and name.
func (s *TournamentStore) ListTournaments(ctx context.Context) ([]volley.Tournament, error) {
	tournaments := []volley.Tournament{}
	err := s.db.SelectContext(ctx, &tournaments, listTournamentsQuery)
	return tournaments, err
}

func (s *TournamentStore) DeleteTournament(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *TournamentStore) AddTeam(ctx context.Context, tournamentID, teamID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, addTournamentTeamQuery, tournamentID, teamID)
	return err
}

// RemoveTeam drops the team from the tournament and from the tournament's pools.
func (s *TournamentStore) RemoveTeam(ctx context.Context, tx *sqlx.Tx, tournamentID, teamID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM pool_teams WHERE team_id = ?
		AND pool_id IN (SELECT id FROM pools WHERE tournament_id = ?)`, teamID, tournamentID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, removeTournamentTeamQuery, tournamentID, teamID)
	return err
}

func (s *TournamentStore) GetTeamIDs(ctx context.Context, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := s.db.SelectContext(ctx, &ids, tournamentTeamIDsQuery, tournamentID)
	return ids, err
}

func (s *TournamentStore) GetTeams(ctx context.Context, tournamentID uuid.UUID) ([]volley.Team, error) {
	return s.getTeams(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetTeamsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]volley.Team, error) {
	return s.getTeams(ctx, tx, tournamentID)
}

func (s *TournamentStore) getTeams(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]volley.Team, error) {
	teams := []volley.Team{}
	err := sqlx.SelectContext(ctx, q, &teams, `SELECT t.id, t.name, t.created_at FROM teams t
		JOIN tournament_teams tt ON tt.team_id = t.id
		WHERE tt.tournament_id = ?
		ORDER BY t.name COLLATE NOCASE ASC`, tournamentID)
	return teams, err
}

func (s *TournamentStore) CreatePool(ctx context.Context, pool *volley.Pool) error {
	_, err := s.db.NamedExecContext(ctx, createPoolQuery, pool)
	return err
}

func (s *TournamentStore) GetPool(ctx context.Context, id uuid.UUID) (*volley.Pool, error) {
	var pool volley.Pool
	if err := s.db.GetContext(ctx, &pool, `SELECT `+poolColumns+` FROM pools WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &pool, nil
}

func (s *TournamentStore) DeletePool(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pools WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *TournamentStore) GetPools(ctx context.Context, tournamentID uuid.UUID) ([]volley.Pool, error) {
	return s.getPools(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetPoolsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]volley.Pool, error) {
	return s.getPools(ctx, tx, tournamentID)
}

func (s *TournamentStore) getPools(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]volley.Pool, error) {
	pools := []volley.Pool{}
	err := sqlx.SelectContext(ctx, q, &pools, getPoolsQuery, tournamentID)
	return pools, err
}

func (s *TournamentStore) AddPoolTeam(ctx context.Context, poolID, teamID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, addPoolTeamQuery, poolID, teamID)
	return err
}

func (s *TournamentStore) RemovePoolTeam(ctx context.Context, poolID, teamID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM pool_teams WHERE pool_id = ? AND team_id = ?`, poolID, teamID)
	return err
}

// GetPoolMembers returns the pool_teams rows of every pool in the tournament.
func (s *TournamentStore) GetPoolMembers(ctx context.Context, tournamentID uuid.UUID) ([]volley.PoolMember, error) {
	return s.getPoolMembers(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetPoolMembersTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]volley.PoolMember, error) {
	return s.getPoolMembers(ctx, tx, tournamentID)
}

func (s *TournamentStore) getPoolMembers(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]volley.PoolMember, error) {
	members := []volley.PoolMember{}
	err := sqlx.SelectContext(ctx, q, &members, `SELECT pt.pool_id, pt.team_id FROM pool_teams pt
		JOIN pools p ON p.id = pt.pool_id
		WHERE p.tournament_id = ?`, tournamentID)
	return members, err
}
