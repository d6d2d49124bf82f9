package volley

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/utils"
	"github.com/google/uuid"
)

// Stage decides the point targets of a match's sets.
type Stage string

const (
	StagePool  Stage = "pool"
	StageSemi  Stage = "semi"
	StageFinal Stage = "final"
)

type BracketSlot string

const (
	SlotSF1   BracketSlot = "SF1"
	SlotSF2   BracketSlot = "SF2"
	SlotFinal BracketSlot = "F"
)

// MatchKind is where a match sits in the tournament: pool play, a
// cross-pool game, a semifinal or the final.
type MatchKind interface {
	Stage() Stage
	isMatchKind()
}

// PoolPlay is a round-robin match. PoolID is nil for pool-stage matches
// recorded without a pool.
type PoolPlay struct {
	PoolID *uuid.UUID
}

// CrossPool is played at pool targets but never counts toward a pool table.
type CrossPool struct{}

// Semifinal carries its slot; Slot is empty for legacy rows until
// AssignLegacySlots runs.
type Semifinal struct {
	Slot BracketSlot
}

type Final struct{}

func (PoolPlay) Stage() Stage  { return StagePool }
func (CrossPool) Stage() Stage { return StagePool }
func (Semifinal) Stage() Stage { return StageSemi }
func (Final) Stage() Stage     { return StageFinal }

func (PoolPlay) isMatchKind()  {}
func (CrossPool) isMatchKind() {}
func (Semifinal) isMatchKind() {}
func (Final) isMatchKind()     {}

const stageCrossPool = "cross_pool"

// ResolveKind maps the raw stage/phase, pool and bracket slot columns to
// a MatchKind. A bracket slot always wins over the stage text.
func ResolveKind(stage string, poolID *uuid.UUID, bracketSlot *string) (MatchKind, error) {
	if bracketSlot != nil {
		switch BracketSlot(strings.ToUpper(strings.TrimSpace(*bracketSlot))) {
		case SlotSF1:
			return Semifinal{Slot: SlotSF1}, nil
		case SlotSF2:
			return Semifinal{Slot: SlotSF2}, nil
		case SlotFinal:
			return Final{}, nil
		case "":
		default:
			return nil, fmt.Errorf("unknown bracket slot %q", *bracketSlot)
		}
	}

	switch strings.ToLower(strings.TrimSpace(stage)) {
	case "", "pool":
		return PoolPlay{PoolID: poolID}, nil
	case stageCrossPool:
		return CrossPool{}, nil
	case "semi", "semifinal":
		return Semifinal{}, nil
	case "final":
		return Final{}, nil
	}
	return nil, fmt.Errorf("unknown match stage %q", stage)
}

// KindColumns is the inverse of ResolveKind.
func KindColumns(kind MatchKind) (stage string, poolID *uuid.UUID, bracketSlot *string) {
	switch k := kind.(type) {
	case PoolPlay:
		return string(StagePool), k.PoolID, nil
	case CrossPool:
		return stageCrossPool, nil, nil
	case Semifinal:
		if k.Slot == "" {
			return string(StageSemi), nil, nil
		}
		return string(StageSemi), nil, utils.Ptr(string(k.Slot))
	case Final:
		return string(StageFinal), nil, utils.Ptr(string(SlotFinal))
	}
	return string(StagePool), nil, nil
}

// AssignLegacySlots gives semifinals stored without a bracket slot the
// first free slots, SF1 then SF2, in creation order. Extra semifinals
// stay unslotted and are ignored by the bracket.
func AssignLegacySlots(matches []Match) {
	taken := make(map[BracketSlot]bool)
	var legacy []int
	for i := range matches {
		if k, ok := matches[i].Kind.(Semifinal); ok {
			if k.Slot == "" {
				legacy = append(legacy, i)
			} else {
				taken[k.Slot] = true
			}
		}
	}
	if len(legacy) == 0 {
		return
	}

	sort.SliceStable(legacy, func(a, b int) bool {
		ma, mb := matches[legacy[a]], matches[legacy[b]]
		if !ma.CreatedAt.Equal(mb.CreatedAt) {
			return ma.CreatedAt.Before(mb.CreatedAt)
		}
		return ma.ID.String() < mb.ID.String()
	})

	free := make([]BracketSlot, 0, 2)
	for _, slot := range []BracketSlot{SlotSF1, SlotSF2} {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	for i, idx := range legacy {
		if i >= len(free) {
			break
		}
		matches[idx].Kind = Semifinal{Slot: free[i]}
	}
}
