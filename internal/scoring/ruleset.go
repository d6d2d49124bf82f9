package scoring

import (
	"fmt"
	"strings"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/volley"
)

// SortKey extracts one ranking value from a standings row. Higher ranks first.
type SortKey func(s *Standing) int

// Ruleset bundles every rule that changed between scoring seasons so the
// evaluator and the aggregator never branch on a version flag.
type Ruleset struct {
	Name string
	// SetTargets holds the point target of sets 1, 2 and 3 per stage.
	SetTargets map[volley.Stage][3]int
	// MatchPoints awards table points for one match. Nil disables match points.
	MatchPoints func(setsWon, setsLost int, won bool) int
	// Order is applied before the final team name tie-break.
	Order []SortKey
}

const (
	RulesetLatest  = "latest"
	RulesetClassic = "classic"
)

// Latest plays pool sets to 21 and bracket sets to 25, deciding sets to
// 15, and ranks by match points.
func Latest() Ruleset {
	return Ruleset{
		Name: RulesetLatest,
		SetTargets: map[volley.Stage][3]int{
			volley.StagePool:  {21, 21, 15},
			volley.StageSemi:  {25, 25, 15},
			volley.StageFinal: {25, 25, 15},
		},
		MatchPoints: BonusMatchPoints,
		Order: []SortKey{
			func(s *Standing) int { return s.MatchPoints },
			func(s *Standing) int { return s.Wins },
			func(s *Standing) int { return s.PointsDiffInWins },
			func(s *Standing) int { return s.PointsDiff },
			func(s *Standing) int { return s.SetsWon },
		},
	}
}

// Classic is the first season's rules: flat 25/25/15 and a win/loss table.
func Classic() Ruleset {
	flat := [3]int{25, 25, 15}
	return Ruleset{
		Name: RulesetClassic,
		SetTargets: map[volley.Stage][3]int{
			volley.StagePool:  flat,
			volley.StageSemi:  flat,
			volley.StageFinal: flat,
		},
		Order: []SortKey{
			func(s *Standing) int { return s.Wins },
			func(s *Standing) int { return s.SetsWon },
			func(s *Standing) int { return s.PointsDiff },
		},
	}
}

func RulesetByName(name string) (Ruleset, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RulesetLatest:
		return Latest(), nil
	case RulesetClassic:
		return Classic(), nil
	}
	return Ruleset{}, fmt.Errorf("unknown ruleset %q", name)
}

// BonusMatchPoints gives 2 points per set won. The match winner adds 2 for a
// sweep and 1 when the opponent took exactly one set.
func BonusMatchPoints(setsWon, setsLost int, won bool) int {
	points := 2 * setsWon
	if !won {
		return points
	}
	switch setsLost {
	case 0:
		points += 2
	case 1:
		points++
	}
	return points
}

// Target returns the points needed to take set setNumber at stage, or 0 when
// the set number is outside 1..3.
func (r Ruleset) Target(stage volley.Stage, setNumber int) int {
	if setNumber < 1 || setNumber > volley.SetsPerMatch {
		return 0
	}
	targets, ok := r.SetTargets[stage]
	if !ok {
		targets = r.SetTargets[volley.StagePool]
	}
	return targets[setNumber-1]
}
