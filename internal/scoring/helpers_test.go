package scoring

import (
	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
	"github.com/google/uuid"
)

func team(name string) volley.Team {
	return volley.Team{ID: uuid.New(), Name: name}
}

func completedMatch(t1, t2 volley.Team, kind volley.MatchKind) volley.Match {
	id1, id2 := t1.ID, t2.ID
	return volley.Match{
		ID:      uuid.New(),
		Team1ID: &id1,
		Team2ID: &id2,
		Status:  volley.MatchCompleted,
		Kind:    kind,
	}
}

func setsFor(matchID uuid.UUID, scores ...[2]int) []volley.Set {
	sets := make([]volley.Set, 0, len(scores))
	for i, sc := range scores {
		sets = append(sets, volley.Set{
			ID:          uuid.New(),
			MatchID:     matchID,
			SetNumber:   i + 1,
			Team1Points: sc[0],
			Team2Points: sc[1],
		})
	}
	return sets
}
