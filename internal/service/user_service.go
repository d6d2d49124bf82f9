package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	users "github.com/AdamBeresnev/volley-scorekeeper/internal/user"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/utils"
	"github.com/google/uuid"
	"github.com/markbates/goth"
)

type UserService struct {
	store       *store.UserStore
	adminEmails map[string]bool
}

// NewUserService grants admin rights to users signing in with one of
// adminEmails, compared case-insensitively.
func NewUserService(store *store.UserStore, adminEmails []string) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = true
		}
	}
	return &UserService{store: store, adminEmails: admins}
}

func (s *UserService) isAdminEmail(email string) bool {
	return s.adminEmails[strings.ToLower(strings.TrimSpace(email))]
}

func (s *UserService) FindOrCreateUserByProvider(ctx context.Context, gothUser goth.User) (*users.User, error) {
	user, err := s.store.GetUserByProvider(ctx, gothUser.Provider, gothUser.UserID)

	if err == nil {
		if utils.OrZero(user.AvatarURL) != gothUser.AvatarURL || user.Email != gothUser.Email {
			user.AvatarURL = utils.StringOrNil(gothUser.AvatarURL)
			user.Email = gothUser.Email
			if err := s.store.RefreshProfile(ctx, user); err != nil {
				return nil, err
			}
		}
		// Dropping an address from ADMIN_EMAILS does not demote anyone.
		if !user.IsAdmin && s.isAdminEmail(user.Email) {
			if _, err := s.store.PromoteAdmin(ctx, user.ID); err != nil {
				return nil, err
			}
			user.IsAdmin = true
		}
		return user, nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		username := gothUser.NickName
		if username == "" {
			username = gothUser.Name
		}
		newUser := &users.User{
			ID:         uuid.New(),
			Email:      gothUser.Email,
			Username:   username,
			Provider:   utils.Ptr(gothUser.Provider),
			ProviderID: utils.Ptr(gothUser.UserID),
			AvatarURL:  utils.StringOrNil(gothUser.AvatarURL),
			IsAdmin:    s.isAdminEmail(gothUser.Email),
			CreatedAt:  time.Now().UTC(),
		}
		err := s.store.CreateUser(ctx, newUser)
		return newUser, err
	}

	return nil, err
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*users.User, error) {
	user, err := s.store.GetUser(ctx, id)
	return user, notFound(err, "user")
}

func (s *UserService) ListAdmins(ctx context.Context) ([]users.User, error) {
	return s.store.ListAdmins(ctx)
}
