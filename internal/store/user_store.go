package store

import (
	"context"

	users "github.com/AdamBeresnev/volley-scorekeeper/internal/user"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// UserStore keeps signed-in scorekeepers. The admin flag is only ever
// raised here: a profile refresh never touches it.
type UserStore struct {
	db *sqlx.DB
}

const (
	userColumns = `id, email, username, provider, provider_id, avatar_url, is_admin, created_at`

	getUserQuery           = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	getUserByProviderQuery = `SELECT ` + userColumns + ` FROM users WHERE provider = ? AND provider_id = ?`
	listAdminsQuery        = `SELECT ` + userColumns + ` FROM users WHERE is_admin = 1 ORDER BY username COLLATE NOCASE, id`

	createUserQuery = `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :email, :username, :provider, :provider_id, :avatar_url, :is_admin, :created_at)`
	refreshProfileQuery = `UPDATE users SET
		email = :email,
		avatar_url = :avatar_url
		WHERE id = :id`
	promoteAdminQuery = `UPDATE users SET is_admin = 1 WHERE id = ? AND is_admin = 0`
)

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) GetUserByProvider(ctx context.Context, provider, providerID string) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, getUserByProviderQuery, provider, providerID); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var user users.User
	if err := s.db.GetContext(ctx, &user, getUserQuery, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListAdmins returns every user allowed to score, by username.
func (s *UserStore) ListAdmins(ctx context.Context) ([]users.User, error) {
	admins := []users.User{}
	err := s.db.SelectContext(ctx, &admins, listAdminsQuery)
	return admins, err
}

func (s *UserStore) CreateUser(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, createUserQuery, user)
	return err
}

// RefreshProfile stores the email and avatar the provider reported on the
// latest sign-in.
func (s *UserStore) RefreshProfile(ctx context.Context, user *users.User) error {
	_, err := s.db.NamedExecContext(ctx, refreshProfileQuery, user)
	return err
}

// PromoteAdmin raises the admin flag and reports whether it was previously
// unset. An unknown id is not an error and reports false.
func (s *UserStore) PromoteAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, promoteAdminQuery, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
