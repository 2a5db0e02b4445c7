package service

import (
	"context"
	"fmt"

	"github.com/arung-agamani/waveradio/internal/engine"
	"github.com/arung-agamani/waveradio/internal/model"
	"github.com/arung-agamani/waveradio/internal/store"
)

// AdminService backs the authenticated admin surface: config CRUD,
// track deletion/annotation, and triggering a skip on the streaming
// engine.
type AdminService struct {
	store  *store.Store
	engine *engine.Client
}

// NewAdminService builds an AdminService.
func NewAdminService(st *store.Store, eng *engine.Client) *AdminService {
	return &AdminService{store: st, engine: eng}
}

// GetConfig returns a config value, or ok=false if unset.
func (a *AdminService) GetConfig(ctx context.Context, key string) (string, bool, error) {
	return a.store.GetConfig(ctx, key)
}

// SetConfig upserts a config value.
func (a *AdminService) SetConfig(ctx context.Context, key, value string) error {
	return a.store.SetConfig(ctx, key, value)
}

// DeleteTrack removes a track and its dependent rows.
func (a *AdminService) DeleteTrack(ctx context.Context, id string) error {
	return a.store.DeleteTrack(ctx, id)
}

// UpdateComment edits a track's free-text comment.
func (a *AdminService) UpdateComment(ctx context.Context, id string, comment *string) error {
	return a.store.UpdateTrackComment(ctx, id, comment)
}

// Skip clears last_returned_track_id before signaling the streaming
// engine to flush and advance, so the next Scheduler.Next call isn't
// blocked by the track it's about to skip past.
func (a *AdminService) Skip(ctx context.Context) error {
	if err := a.store.SetConfig(ctx, model.KeyLastReturnedTrackID, ""); err != nil {
		return fmt.Errorf("admin: clear last returned track: %w", err)
	}
	if err := a.engine.Skip(); err != nil {
		return fmt.Errorf("admin: signal streaming engine: %w", err)
	}
	return nil
}
