package volley

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSortPools(t *testing.T) {
	zero, one := 0, 1
	pools := []Pool{
		{Name: "pool d"},
		{Name: "Pool C", OrderIndex: &one},
		{Name: "Pool B"},
		{Name: "Pool Z", OrderIndex: &zero},
	}

	SortPools(pools)

	names := make([]string, 0, len(pools))
	for _, p := range pools {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Pool Z", "Pool C", "Pool B", "pool d"}, names)
}

func TestMembersByPool(t *testing.T) {
	p1, p2 := uuid.New(), uuid.New()
	a, b := uuid.New(), uuid.New()

	got := MembersByPool([]PoolMember{{PoolID: p1, TeamID: a}, {PoolID: p1, TeamID: b}, {PoolID: p2, TeamID: b}})

	assert.Len(t, got, 2)
	assert.True(t, got[p1][a])
	assert.True(t, got[p1][b])
	assert.False(t, got[p2][a])
	assert.True(t, got[p2][b])
}
