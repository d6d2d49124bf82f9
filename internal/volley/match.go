package volley

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchCompleted  MatchStatus = "completed"
)

type Match struct {
	ID           uuid.UUID
	TournamentID uuid.UUID
	Team1ID      *uuid.UUID
	Team2ID      *uuid.UUID
	ScheduledAt  *time.Time
	Status       MatchStatus
	Kind         MatchKind
	WinnerTeamID *uuid.UUID
	CreatedAt    time.Time
}

func (m *Match) HasTeams() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted
}

// Stage is the stage used for point targets. Matches without a kind
// are treated as pool play.
func (m *Match) Stage() Stage {
	if m.Kind == nil {
		return StagePool
	}
	return m.Kind.Stage()
}

// Slot returns the bracket slot of a semifinal or final match.
func (m *Match) Slot() (BracketSlot, bool) {
	switch k := m.Kind.(type) {
	case Semifinal:
		return k.Slot, k.Slot != ""
	case Final:
		return SlotFinal, true
	}
	return "", false
}

func (m *Match) TeamID(side Side) *uuid.UUID {
	switch side {
	case SideTeam1:
		return m.Team1ID
	case SideTeam2:
		return m.Team2ID
	}
	return nil
}

// SideOf reports which slot teamID occupies, SideNone if neither.
func (m *Match) SideOf(teamID uuid.UUID) Side {
	switch {
	case m.Team1ID != nil && *m.Team1ID == teamID:
		return SideTeam1
	case m.Team2ID != nil && *m.Team2ID == teamID:
		return SideTeam2
	}
	return SideNone
}

type matchJSON struct {
	ID           uuid.UUID   `json:"id"`
	TournamentID uuid.UUID   `json:"tournament_id"`
	Team1ID      *uuid.UUID  `json:"team1_id"`
	Team2ID      *uuid.UUID  `json:"team2_id"`
	ScheduledAt  *time.Time  `json:"scheduled_at,omitempty"`
	Status       MatchStatus `json:"status"`
	Stage        string      `json:"stage"`
	PoolID       *uuid.UUID  `json:"pool_id,omitempty"`
	BracketSlot  *string     `json:"bracket_slot,omitempty"`
	WinnerTeamID *uuid.UUID  `json:"winner_team_id"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (m Match) MarshalJSON() ([]byte, error) {
	stage, poolID, slot := KindColumns(m.Kind)
	return json.Marshal(matchJSON{
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
	})
}

func (m *Match) UnmarshalJSON(data []byte) error {
	var raw matchJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	kind, err := ResolveKind(raw.Stage, raw.PoolID, raw.BracketSlot)
	if err != nil {
		return err
	}
	*m = Match{
		ID:           raw.ID,
		TournamentID: raw.TournamentID,
		Team1ID:      raw.Team1ID,
		Team2ID:      raw.Team2ID,
		ScheduledAt:  raw.ScheduledAt,
		Status:       raw.Status,
		Kind:         kind,
		WinnerTeamID: raw.WinnerTeamID,
		CreatedAt:    raw.CreatedAt,
	}
	return nil
}
