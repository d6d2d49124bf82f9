package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/store"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type TeamService struct {
	store *store.TeamStore
}

func NewTeamService(store *store.TeamStore) *TeamService {
	return &TeamService{store: store}
}

func (s *TeamService) CreateTeam(ctx context.Context, name string) (*volley.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	team := &volley.Team{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	if err := s.store.CreateTeam(ctx, team); err != nil {
		if store.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%q: %w", name, ErrTeamNameConflict)
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *TeamService) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.DeleteTeam(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if !deleted {
		return fmt.Errorf("team %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *TeamService) ListTeams(ctx context.Context) ([]volley.Team, error) {
	return s.store.ListTeams(ctx)
}

// SearchTeams ranks team names against query with case-insensitive fuzzy
// matching, closest first. An empty query lists every team.
func (s *TeamService) SearchTeams(ctx context.Context, query string) ([]volley.Team, error) {
	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return teams, nil
	}

	names := make([]string, len(teams))
	for i, t := range teams {
		names[i] = t.Name
	}

	ranks := fuzzy.RankFindFold(query, names)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]volley.Team, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, teams[r.OriginalIndex])
	}
	return out, nil
}
