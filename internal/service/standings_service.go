package service

import (
	"context"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/live"
	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/google/uuid"
)

type StandingsService struct {
	loader live.Loader
	rules  scoring.Ruleset
}

func NewStandingsService(loader live.Loader, rules scoring.Ruleset) *StandingsService {
	return &StandingsService{loader: loader, rules: rules}
}

type Standings struct {
	Ruleset string              `json:"ruleset"`
	Overall []scoring.Standing  `json:"overall"`
	Pools   []scoring.PoolTable `json:"pools"`
}

// Standings ranks the tournament's teams over all completed matches and
// per pool over pool-play matches only.
func (s *StandingsService) Standings(ctx context.Context, tournamentID uuid.UUID) (*Standings, error) {
	snap, err := s.loader.LoadSnapshot(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return &Standings{
		Ruleset: s.rules.Name,
		Overall: snap.Standings(s.rules),
		Pools:   snap.PoolTables(s.rules),
	}, nil
}
