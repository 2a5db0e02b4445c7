package scheduler

import (
	"context"
	"fmt"

	"github.com/arung-agamani/waveradio/internal/model"
	"github.com/arung-agamani/waveradio/internal/store"
)

// nextMood picks the ready, feature-complete track closest in
// normalized 4-space to the last played track with features, excluding
// a small recency window.
func (sch *Scheduler) nextMood(ctx context.Context) (*model.Track, error) {
	reference, err := sch.store.LastPlayedTrackWithFeatures(ctx)
	if err != nil {
		if err == store.ErrNotFound {
			return sch.nextRotation(ctx)
		}
		return nil, fmt.Errorf("scheduler: mood reference track: %w", err)
	}

	bounds, err := sch.loadFeatureBounds(ctx)
	if err != nil {
		return nil, err
	}

	refVec, ok := featureTuple(reference)
	if !ok {
		return sch.nextRotation(ctx)
	}
	refNorm := bounds.normalizeAll(refVec)

	pool, err := sch.store.ReadyTracksWithFeatures(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: mood candidate pool: %w", err)
	}

	excludeCount := len(pool) - 1
	if excludeCount < 0 {
		excludeCount = 0
	}
	if excludeCount > 3 {
		excludeCount = 3
	}
	excluded, err := sch.store.RecentlyPlayedTrackIDs(ctx, excludeCount)
	if err != nil {
		return nil, fmt.Errorf("scheduler: mood exclusion set: %w", err)
	}

	candidates := excludeIDs(pool, excluded...)
	if len(candidates) == 0 {
		return sch.nextRotation(ctx)
	}

	var best *model.Track
	bestDist := 0.0
	for _, t := range candidates {
		vec, ok := featureTuple(t)
		if !ok {
			continue
		}
		norm := bounds.normalizeAll(vec)
		d := euclideanDistance4(refNorm, norm)
		if best == nil || d < bestDist {
			best, bestDist = t, d
		}
	}
	if best == nil {
		return sch.nextRotation(ctx)
	}

	if err := sch.store.SetConfig(ctx, model.KeyLastReturnedTrackID, best.ID); err != nil {
		return nil, fmt.Errorf("scheduler: persist mood last returned: %w", err)
	}
	return best, nil
}

// featureBounds holds the running min/max per feature, used to normalize
// raw feature scalars into [0,1]-ish space.
type featureBounds struct {
	min, max [4]float64
}

func (sch *Scheduler) loadFeatureBounds(ctx context.Context) (featureBounds, error) {
	var b featureBounds
	for i, name := range model.FeatureNames {
		minV, _, err := sch.store.GetConfigFloat(ctx, model.FeatureMinKey(name))
		if err != nil {
			return b, fmt.Errorf("scheduler: load feature min %s: %w", name, err)
		}
		maxV, _, err := sch.store.GetConfigFloat(ctx, model.FeatureMaxKey(name))
		if err != nil {
			return b, fmt.Errorf("scheduler: load feature max %s: %w", name, err)
		}
		b.min[i] = minV
		b.max[i] = maxV
	}
	return b, nil
}

func (b featureBounds) normalizeAll(x [4]float64) [4]float64 {
	var out [4]float64
	for i := range x {
		out[i] = normalize(x[i], b.min[i], b.max[i])
	}
	return out
}

func featureTuple(t *model.Track) ([4]float64, bool) {
	tempo, rms, centroid, zcr, ok := t.Features()
	if !ok {
		return [4]float64{}, false
	}
	return [4]float64{tempo, rms, centroid, zcr}, true
}
