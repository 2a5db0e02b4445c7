package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arung-agamani/waveradio/internal/scheduler"
	"github.com/arung-agamani/waveradio/internal/store"
)

// StreamingService exposes the narrow contract the streaming engine
// consumes: next-track and track-started.
type StreamingService struct {
	store     *store.Store
	scheduler *scheduler.Scheduler
}

// NewStreamingService builds a StreamingService.
func NewStreamingService(st *store.Store, sch *scheduler.Scheduler) *StreamingService {
	return &StreamingService{store: st, scheduler: sch}
}

// NextTrack returns the plain-text annotation body the streaming engine
// expects, or an empty string if the Scheduler has no track to offer.
func (s *StreamingService) NextTrack(ctx context.Context) (string, error) {
	track, err := s.scheduler.Next(ctx)
	if err != nil {
		return "", fmt.Errorf("streaming: scheduler next: %w", err)
	}
	if track == nil || track.FilePath == nil {
		return "", nil
	}
	return formatAnnotation(track.Title, track.Artist, *track.FilePath), nil
}

// formatAnnotation builds annotate:title="...",artist="...":<file_path>,
// escaping backslash and double-quote in title/artist only.
func formatAnnotation(title, artist, filePath string) string {
	return fmt.Sprintf(`annotate:title="%s",artist="%s":%s`, escapeAnnotation(title), escapeAnnotation(artist), filePath)
}

func escapeAnnotation(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// TrackStarted appends a PlayEvent for trackID. An unknown track ID is
// logged and acknowledged, never an error to the caller.
func (s *StreamingService) TrackStarted(ctx context.Context, trackID string) {
	if _, err := s.store.GetTrack(ctx, trackID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.Warn("streaming: track-started for unknown track", "track_id", trackID)
			return
		}
		slog.Error("streaming: track-started lookup failed", "track_id", trackID, "err", err)
		return
	}

	if _, err := s.store.AppendPlayEvent(ctx, trackID); err != nil {
		slog.Error("streaming: append play event failed", "track_id", trackID, "err", err)
	}
}
