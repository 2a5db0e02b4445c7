// Package ingest is the Ingestion Worker: a single-consumer job runner
// that normalizes raw submissions into playable MP3s with an extracted
// feature vector, atomically and idempotently against the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/arung-agamani/waveradio/config"
	"github.com/arung-agamani/waveradio/internal/model"
	"github.com/arung-agamani/waveradio/internal/store"
)

// botCheckSignals are known external-service strings that indicate the
// downloader hit an automated bot check rather than a genuine failure,
// worth a louder log line since it tends to need a human.
var botCheckSignals = []string{
	"sign in to confirm you're not a bot",
	"confirm you're not a bot",
}

// Worker drains the job queue one job at a time.
type Worker struct {
	store    *store.Store
	pipeline *Pipeline
	features *FeatureExtractor
	prober   *Prober
	cfg      *config.Config

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewWorker builds a Worker wired to the given store and configuration.
func NewWorker(st *store.Store, cfg *config.Config) *Worker {
	return &Worker{
		store:    st,
		pipeline: NewPipeline(cfg),
		features: NewFeatureExtractor(cfg),
		prober:   NewProber(cfg),
		cfg:      cfg,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Stop signals the run loop to exit at its next idle check. Safe to call
// more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// Done returns a channel closed once Run has returned, for bounded-join
// shutdown.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Run recovers orphaned jobs from a prior crash, then loops claiming and
// processing jobs until Stop is called or ctx is cancelled. Stop lets an
// in-flight job finish before the loop exits; cancelling ctx also cancels
// the in-flight job's external processes and store calls.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	if n, err := w.store.RecoverOrphanedJobs(ctx); err != nil {
		slog.Error("ingest: startup orphan recovery failed", "err", err)
	} else if n > 0 {
		slog.Info("ingest: recovered orphaned jobs", "count", n)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		default:
		}

		did, err := w.processOne(ctx)
		if err != nil {
			slog.Error("ingest: worker error", "err", err)
			if !w.sleep(ctx, w.cfg.WorkerBackoffInterval) {
				return
			}
			continue
		}
		if !did {
			if !w.sleep(ctx, w.cfg.WorkerPollInterval) {
				return
			}
		}
	}
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	case <-w.stop:
		return false
	}
}

// processOne claims and runs at most one job. It reports true if a job
// was claimed (regardless of outcome), false if the queue was empty.
func (w *Worker) processOne(ctx context.Context) (bool, error) {
	job, track, err := w.store.ClaimNextJob(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ingest: claim job: %w", err)
	}

	res, procErr := w.runPipeline(ctx, track)
	if procErr != nil {
		msg := procErr.Error()
		if err := w.store.FailJob(ctx, job.ID, track.ID, msg); err != nil {
			return true, fmt.Errorf("ingest: fail job: %w", err)
		}
		if containsBotCheckSignal(msg) {
			slog.Error("ingest: external service bot-check detected", "track_id", track.ID, "detail", msg)
		} else {
			slog.Warn("ingest: job failed", "track_id", track.ID, "detail", msg)
		}
		return true, nil
	}

	if err := w.store.CompleteJob(ctx, job.ID, track.ID, track.Title, track.Artist, res.finalPath, res.duration, res.features); err != nil {
		return true, fmt.Errorf("ingest: complete job: %w", err)
	}
	if err := w.updateFeatureBounds(ctx, res.features); err != nil {
		slog.Error("ingest: feature bound update failed", "err", err)
	}

	slog.Info("ingest: track ready", "track_id", track.ID, "title", track.Title)
	return true, nil
}

// pipelineResult is the "ok" variant of the ingestion result type: the
// Worker runs as a linear pipeline returning either a result or an
// error, rather than raising through intermediate steps.
type pipelineResult struct {
	finalPath string
	duration  *float64
	features  model.FeatureVector
}

func (w *Worker) runPipeline(ctx context.Context, track *model.Track) (pipelineResult, error) {
	var rawPath string

	switch track.SourceType {
	case model.SourceUpload:
		path, title, artist, err := w.pipeline.FetchUpload(track.ID, track.Title, track.Artist)
		if err != nil {
			return pipelineResult{}, fmt.Errorf("fetch upload: %w", err)
		}
		rawPath, track.Title, track.Artist = path, title, artist
	case model.SourceYouTube:
		title, artist, path, err := w.pipeline.FetchYouTube(ctx, track.VideoID, track.ID)
		if err != nil {
			return pipelineResult{}, fmt.Errorf("fetch youtube: %w", err)
		}
		rawPath = path
		if track.Title == "" {
			track.Title = title
		}
		if track.Artist == "" {
			track.Artist = artist
		}
	default:
		return pipelineResult{}, fmt.Errorf("unknown source type %q", track.SourceType)
	}

	finalPath, err := w.pipeline.Transcode(ctx, rawPath, track.ID)
	if err != nil {
		return pipelineResult{}, fmt.Errorf("transcode: %w", err)
	}

	fv, err := w.features.Extract(ctx, finalPath)
	if err != nil {
		return pipelineResult{}, fmt.Errorf("extract features: %w", err)
	}

	var duration *float64
	if secs, ok, err := w.prober.Duration(ctx, finalPath); err != nil {
		return pipelineResult{}, fmt.Errorf("probe duration: %w", err)
	} else if ok {
		duration = &secs
	}

	return pipelineResult{finalPath: finalPath, duration: duration, features: fv}, nil
}

// updateFeatureBounds performs a running min/max read-modify-write per
// feature. Safe without per-key compare-and-set because the Worker is
// single-consumer by construction.
func (w *Worker) updateFeatureBounds(ctx context.Context, fv model.FeatureVector) error {
	values := map[string]float64{
		"tempo_bpm":          fv.TempoBPM,
		"rms_energy":         fv.RMSEnergy,
		"spectral_centroid":  fv.SpectralCentroid,
		"zero_crossing_rate": fv.ZeroCrossingRate,
	}
	for _, name := range model.FeatureNames {
		x := values[name]

		minKey, maxKey := model.FeatureMinKey(name), model.FeatureMaxKey(name)
		curMin, hasMin, err := w.store.GetConfigFloat(ctx, minKey)
		if err != nil {
			return err
		}
		curMax, hasMax, err := w.store.GetConfigFloat(ctx, maxKey)
		if err != nil {
			return err
		}

		if !hasMin || x < curMin {
			if err := w.store.SetConfigFloat(ctx, minKey, x); err != nil {
				return err
			}
		}
		if !hasMax || x > curMax {
			if err := w.store.SetConfigFloat(ctx, maxKey, x); err != nil {
				return err
			}
		}
	}
	return nil
}

func containsBotCheckSignal(msg string) bool {
	lower := strings.ToLower(msg)
	for _, signal := range botCheckSignals {
		if strings.Contains(lower, signal) {
			return true
		}
	}
	return false
}
