// Package service holds the boundary's business logic: the handlers
// translate HTTP to these calls, which in turn drive the store, the
// scheduler, and the streaming engine client.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arung-agamani/waveradio/config"
	"github.com/arung-agamani/waveradio/internal/ingest"
	"github.com/arung-agamani/waveradio/internal/model"
	"github.com/arung-agamani/waveradio/internal/store"
)

var (
	ErrOverPendingCap  = errors.New("submission: over the per-submitter pending cap")
	ErrBadFileType     = errors.New("submission: unsupported file type")
	ErrTooLarge        = errors.New("submission: file too large")
	ErrDuplicateSource = errors.New("submission: source already submitted")
	ErrBadSourceURL    = errors.New("submission: could not parse a youtube video id from source url")
)

var allowedUploadExt = map[string]bool{
	".mp3": true, ".wav": true, ".flac": true, ".m4a": true, ".ogg": true, ".aac": true,
}

// SubmissionService accepts new track submissions, upload or YouTube,
// and enforces the boundary's validation rules before handing off to
// the store.
type SubmissionService struct {
	store *store.Store
	cfg   *config.Config
}

// NewSubmissionService builds a SubmissionService.
func NewSubmissionService(st *store.Store, cfg *config.Config) *SubmissionService {
	return &SubmissionService{store: st, cfg: cfg}
}

// SubmitUpload validates and stores a raw uploaded file, inserting a
// pending track + job row. The file content is copied to disk under the
// assigned track ID before returning.
func (s *SubmissionService) SubmitUpload(ctx context.Context, submitter, title, artist, comment, filename string, size int64, content io.Reader) (*model.Track, error) {
	submitter = strings.TrimSpace(submitter)
	if submitter == "" {
		return nil, fmt.Errorf("submission: submitter is required")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedUploadExt[ext] {
		return nil, ErrBadFileType
	}
	if size > s.cfg.MaxUploadBytes {
		return nil, ErrTooLarge
	}

	if err := s.checkPendingCap(ctx, submitter); err != nil {
		return nil, err
	}

	track := &model.Track{
		Title:      title,
		Artist:     artist,
		Submitter:  submitter,
		SourceType: model.SourceUpload,
	}
	if comment != "" {
		track.Comment = &comment
	}

	if _, err := s.store.CreateTrack(ctx, track); err != nil {
		return nil, fmt.Errorf("submission: create track: %w", err)
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("submission: create upload dir: %w", err)
	}
	destPath := filepath.Join(s.cfg.UploadDir, track.ID+ext)
	dest, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("submission: create upload file: %w", err)
	}
	defer dest.Close()
	if _, err := io.Copy(dest, content); err != nil {
		return nil, fmt.Errorf("submission: write upload file: %w", err)
	}

	return track, nil
}

// SubmitYouTube validates a remote video URL and stores a pending track
// + job row referencing it.
func (s *SubmissionService) SubmitYouTube(ctx context.Context, submitter, sourceURL, title, artist, comment string) (*model.Track, error) {
	submitter = strings.TrimSpace(submitter)
	if submitter == "" {
		return nil, fmt.Errorf("submission: submitter is required")
	}

	videoID, ok := ingest.ParseYouTubeVideoID(sourceURL)
	if !ok {
		return nil, ErrBadSourceURL
	}

	if err := s.checkPendingCap(ctx, submitter); err != nil {
		return nil, err
	}
	if dup, err := s.hasDuplicateSource(ctx, submitter, sourceURL); err != nil {
		return nil, err
	} else if dup {
		return nil, ErrDuplicateSource
	}

	track := &model.Track{
		Title:      title,
		Artist:     artist,
		Submitter:  submitter,
		SourceType: model.SourceYouTube,
		SourceURL:  sourceURL,
		VideoID:    videoID,
	}
	if comment != "" {
		track.Comment = &comment
	}

	if _, err := s.store.CreateTrack(ctx, track); err != nil {
		return nil, fmt.Errorf("submission: create track: %w", err)
	}
	return track, nil
}

func (s *SubmissionService) checkPendingCap(ctx context.Context, submitter string) error {
	n, err := s.store.CountPendingOrProcessingForSubmitter(ctx, submitter)
	if err != nil {
		return fmt.Errorf("submission: count pending: %w", err)
	}
	if n >= s.cfg.MaxPendingPerSubmitter {
		return ErrOverPendingCap
	}
	return nil
}

func (s *SubmissionService) hasDuplicateSource(ctx context.Context, submitter, sourceURL string) (bool, error) {
	tracks, err := s.store.ReadyTracksBySubmitter(ctx, submitter)
	if err != nil {
		return false, fmt.Errorf("submission: check duplicate source: %w", err)
	}
	for _, t := range tracks {
		if t.SourceURL == sourceURL {
			return true, nil
		}
	}
	return false, nil
}

// GetTrack returns a track by ID.
func (s *SubmissionService) GetTrack(ctx context.Context, id string) (*model.Track, error) {
	return s.store.GetTrack(ctx, id)
}

// ListTracks returns every track.
func (s *SubmissionService) ListTracks(ctx context.Context) ([]*model.Track, error) {
	return s.store.ListTracks(ctx)
}
