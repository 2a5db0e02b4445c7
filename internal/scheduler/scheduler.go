// Package scheduler is the stateful policy engine that chooses the next
// track to play, under either the rotation or mood policy, subject to
// fairness, recency, and feature-similarity constraints.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/arung-agamani/waveradio/internal/model"
	"github.com/arung-agamani/waveradio/internal/store"
)

// Scheduler selects the next track to play. Next is safe for concurrent
// use: decisions are serialized by an internal mutex, matching the "one
// decision at a time" requirement even though the underlying store
// already serializes at the row level.
type Scheduler struct {
	store *store.Store
	rng   *rand.Rand
	mu    sync.Mutex
}

// New builds a Scheduler over the given store.
func New(st *store.Store) *Scheduler {
	return &Scheduler{
		store: st,
		rng:   rand.New(rand.NewSource(1)),
	}
}

// Next returns the chosen track, or nil if no track currently has status
// ready. All failures are design-internal: a store error is returned to
// the caller as an internal failure, never panics.
func (sch *Scheduler) Next(ctx context.Context) (*model.Track, error) {
	sch.mu.Lock()
	defer sch.mu.Unlock()

	mode, ok, err := sch.store.GetConfig(ctx, model.KeyProgrammingMode)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load programming mode: %w", err)
	}
	if !ok {
		mode = string(model.ModeRotation)
	}

	switch model.ProgrammingMode(mode) {
	case model.ModeMood:
		return sch.nextMood(ctx)
	default:
		return sch.nextRotation(ctx)
	}
}

func clampBlockSize(n int, ok bool) int {
	if !ok || n < 1 {
		return 3
	}
	if n > 20 {
		return 20
	}
	return n
}
