package live

import (
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
)

// Table names the collection a change happened in.
type Table string

const (
	TableSets    Table = "sets"
	TableMatches Table = "matches"
)

type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is a committed change to a set or match row. It always carries the
// full row after the change, or the removed row for deletes.
type Event struct {
	Table        Table         `json:"table"`
	Type         EventType     `json:"type"`
	TournamentID uuid.UUID     `json:"tournament_id"`
	Set          *volley.Set   `json:"set,omitempty"`
	Match        *volley.Match `json:"match,omitempty"`
}

func SetEvent(typ EventType, tournamentID uuid.UUID, set volley.Set) Event {
	return Event{Table: TableSets, Type: typ, TournamentID: tournamentID, Set: &set}
}

func MatchEvent(typ EventType, match volley.Match) Event {
	return Event{Table: TableMatches, Type: typ, TournamentID: match.TournamentID, Match: &match}
}
