package volley

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

type Pool struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`
	Name         string    `db:"name" json:"name"`
	OrderIndex   *int      `db:"order_index" json:"order_index,omitempty"`
}

// PoolMember is one row of the pool_teams join.
type PoolMember struct {
	PoolID uuid.UUID `db:"pool_id" json:"pool_id"`
	TeamID uuid.UUID `db:"team_id" json:"team_id"`
}

// SortPools orders pools by order_index (unset last), then by name.
func SortPools(pools []Pool) {
	sort.SliceStable(pools, func(i, j int) bool {
		a, b := pools[i], pools[j]
		switch {
		case a.OrderIndex != nil && b.OrderIndex != nil && *a.OrderIndex != *b.OrderIndex:
			return *a.OrderIndex < *b.OrderIndex
		case a.OrderIndex != nil && b.OrderIndex == nil:
			return true
		case a.OrderIndex == nil && b.OrderIndex != nil:
			return false
		}
		return strings.ToLower(a.Name) < strings.ToLower(b.Name)
	})
}

// MembersByPool groups the join rows into a team id set per pool.
func MembersByPool(members []PoolMember) map[uuid.UUID]map[uuid.UUID]bool {
	out := make(map[uuid.UUID]map[uuid.UUID]bool)
	for _, m := range members {
		if out[m.PoolID] == nil {
			out[m.PoolID] = make(map[uuid.UUID]bool)
		}
		out[m.PoolID][m.TeamID] = true
	}
	return out
}
