package live

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AdamBeresnev/volley-scorekeeper/internal/scoring"
	"github.com/google/uuid"
)

// ErrSuperseded is returned by Switch when another switch started before
// the load finished. The stale result has been discarded.
var ErrSuperseded = errors.New("tournament switched before load finished")

// Loader fetches a full snapshot of one tournament.
type Loader interface {
	LoadSnapshot(ctx context.Context, tournamentID uuid.UUID) (Snapshot, error)
}

// Board follows one active tournament at a time: it loads a snapshot,
// folds incoming events into it and recomputes standings on demand.
// Loads and events issued for a tournament that is no longer active are
// dropped.
type Board struct {
	loader Loader
	rules  scoring.Ruleset

	mu       sync.Mutex
	active   uuid.UUID
	gen      uint64
	cancel   context.CancelFunc
	snap     *Snapshot
	pending  []Event
	onChange func(Snapshot)
}

func NewBoard(loader Loader, rules scoring.Ruleset) *Board {
	return &Board{loader: loader, rules: rules}
}

// OnChange registers fn to be called with every new snapshot, outside the
// board's lock, on the goroutine that caused the change.
func (b *Board) OnChange(fn func(Snapshot)) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

// Switch makes tournamentID the active tournament and loads it. Any load
// still running for the previous tournament is cancelled and its result
// ignored.
func (b *Board) Switch(ctx context.Context, tournamentID uuid.UUID) error {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
	}
	b.gen++
	gen := b.gen
	b.active = tournamentID
	b.snap = nil
	b.pending = nil
	loadCtx, cancel := context.WithCancel(ctx)
	b.cancel = cancel
	b.mu.Unlock()

	snap, err := b.loader.LoadSnapshot(loadCtx, tournamentID)

	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return ErrSuperseded
	}
	b.cancel = nil
	cancel()
	if err != nil {
		b.mu.Unlock()
		return fmt.Errorf("load tournament %s: %w", tournamentID, err)
	}
	if snap.Tournament.ID != tournamentID {
		b.mu.Unlock()
		return fmt.Errorf("load tournament %s: got snapshot for %s", tournamentID, snap.Tournament.ID)
	}

	// Events that arrived while loading may postdate the snapshot.
	for _, e := range b.pending {
		snap = Apply(snap, e)
	}
	b.pending = nil
	b.snap = &snap
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return nil
}

// Handle folds e into the active snapshot. It reports whether the event
// belonged to the active tournament.
func (b *Board) Handle(e Event) bool {
	b.mu.Lock()
	if b.gen == 0 || e.TournamentID != b.active {
		b.mu.Unlock()
		return false
	}
	if b.snap == nil {
		b.pending = append(b.pending, e)
		b.mu.Unlock()
		return true
	}
	next := Apply(*b.snap, e)
	b.snap = &next
	fn := b.onChange
	b.mu.Unlock()

	if fn != nil {
		fn(next)
	}
	return true
}

func (b *Board) Active() uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// Snapshot returns the latest snapshot, false while nothing is loaded.
func (b *Board) Snapshot() (Snapshot, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.snap == nil {
		return Snapshot{}, false
	}
	return *b.snap, true
}

func (b *Board) Standings() []scoring.Standing {
	snap, ok := b.Snapshot()
	if !ok {
		return nil
	}
	return snap.Standings(b.rules)
}

func (b *Board) PoolTables() []scoring.PoolTable {
	snap, ok := b.Snapshot()
	if !ok {
		return nil
	}
	return snap.PoolTables(b.rules)
}
