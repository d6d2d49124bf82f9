package store

import (
	"context"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	createTeamQuery = `INSERT INTO teams (id, name, created_at) VALUES (:id, :name, :created_at)`
	listTeamsQuery  = `SELECT id, name, created_at FROM teams ORDER BY name COLLATE NOCASE ASC`
	getTeamQuery    = `SELECT id, name, created_at FROM teams WHERE id = ?`
	deleteTeamQuery = `DELETE FROM teams WHERE id = ?`
)

type TeamStore struct {
	db *sqlx.DB
}

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) CreateTeam(ctx context.Context, team *volley.Team) error {
	_, err := s.db.NamedExecContext(ctx, createTeamQuery, team)
	return err
}

func (s *TeamStore) GetTeam(ctx context.Context, id uuid.UUID) (*volley.Team, error) {
	var team volley.Team
	if err := s.db.GetContext(ctx, &team, getTeamQuery, id); err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *TeamStore) ListTeams(ctx context.Context) ([]volley.Team, error) {
	teams := []volley.Team{}
	err := s.db.SelectContext(ctx, &teams, listTeamsQuery)
	return teams, err
}

// GetTeamsByIDs fetches the teams whose id is in ids, ordered by name.
func (s *TeamStore) GetTeamsByIDs(ctx context.Context, ids []uuid.UUID) ([]volley.Team, error) {
	teams := []volley.Team{}
	if len(ids) == 0 {
		return teams, nil
	}
	query, args, err := sqlx.In(`SELECT id, name, created_at FROM teams WHERE id IN (?) ORDER BY name COLLATE NOCASE ASC`, ids)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &teams, query, args...)
	return teams, err
}

// DeleteTeam removes the team; the schema cascades the removal to
// tournament and pool memberships and to the team's matches.
func (s *TeamStore) DeleteTeam(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, deleteTeamQuery, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
