package scoring

import "github.com/AdamBeresnev/volley-scorekeeper/internal/volley"

// MinLead is the margin a side needs over its opponent to close a set.
const MinLead = 2

// SetWinner reports which side has clinched the set: reached the target for
// its number and stage with a lead of at least two. It never fails; sets it
// cannot judge are simply still in play.
func SetWinner(set volley.Set, stage volley.Stage, rules Ruleset) volley.Side {
	target := rules.Target(stage, set.SetNumber)
	if target <= 0 {
		return volley.SideNone
	}
	p1, p2 := set.Team1Points, set.Team2Points
	if p1 >= target && p1-p2 >= MinLead {
		return volley.SideTeam1
	}
	if p2 >= target && p2-p1 >= MinLead {
		return volley.SideTeam2
	}
	return volley.SideNone
}
