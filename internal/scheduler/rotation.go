package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/arung-agamani/waveradio/internal/model"
)

// nextRotation implements fair round-robin over distinct submitters
// owning at least one ready track, advancing through a bounded loop
// (depth <= |submitters|) rather than recursion.
func (sch *Scheduler) nextRotation(ctx context.Context) (*model.Track, error) {
	submitters, err := sch.store.DistinctReadySubmitters(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: rotation submitters: %w", err)
	}
	if len(submitters) == 0 {
		return nil, nil
	}

	allReady, err := sch.store.ListReadyTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: rotation ready tracks: %w", err)
	}
	submitterOf := make(map[string]string, len(allReady))
	for _, t := range allReady {
		submitterOf[t.ID] = t.Submitter
	}
	libraryDuration := sumReadyDuration(allReady)

	recentMap, err := sch.store.MostRecentPlayTimePerTrack(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: rotation recent plays: %w", err)
	}
	mostRecentPlay, err := sch.store.MostRecentPlayEvent(ctx)
	var mostRecentPlayTrackID string
	if err == nil {
		mostRecentPlayTrackID = mostRecentPlay.TrackID
	}

	idx, _, err := sch.store.GetConfigInt(ctx, model.KeyRotationCurrentIdx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load idx: %w", err)
	}
	nRaw, nOK, err := sch.store.GetConfigInt(ctx, model.KeyRotationTracksPerBlock)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load block size: %w", err)
	}
	blockSize := clampBlockSize(nRaw, nOK)
	blockStart, _, err := sch.store.GetConfigInt64(ctx, model.KeyRotationBlockStartLogID)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load block start: %w", err)
	}
	lastReturned, _, err := sch.store.GetConfig(ctx, model.KeyLastReturnedTrackID)
	if err != nil {
		return nil, fmt.Errorf("scheduler: load last returned: %w", err)
	}

	now := time.Now().UTC()

	for depth := 0; depth < len(submitters); depth++ {
		s := submitters[idx%len(submitters)]

		p, err := sch.store.CountPlayEventsForSubmitterSince(ctx, s, blockStart)
		if err != nil {
			return nil, fmt.Errorf("scheduler: count block plays: %w", err)
		}
		if lastReturned != "" && submitterOf[lastReturned] == s {
			playedAlready, err := sch.store.CountPlayEventsForTrackSince(ctx, lastReturned, blockStart)
			if err != nil {
				return nil, fmt.Errorf("scheduler: count last returned plays: %w", err)
			}
			if playedAlready == 0 {
				p++
			}
		}

		if p >= blockSize {
			idx, blockStart, err = sch.advanceBlock(ctx, idx, len(submitters))
			if err != nil {
				return nil, err
			}
			continue
		}

		candidates := tracksBySubmitter(allReady, s)
		candidates = excludeIDs(candidates, lastReturned, mostRecentPlayTrackID)
		candidates = applyCooldown(candidates, recentMap, libraryDuration, now)

		if len(candidates) == 0 {
			idx, blockStart, err = sch.advanceBlock(ctx, idx, len(submitters))
			if err != nil {
				return nil, err
			}
			continue
		}

		playCounts := make(map[string]int, len(candidates))
		for _, t := range candidates {
			n, err := sch.store.CountPlayEventsForTrack(ctx, t.ID)
			if err != nil {
				return nil, fmt.Errorf("scheduler: count track plays: %w", err)
			}
			playCounts[t.ID] = n
		}
		chosen := pickByPlayCount(sch.rng, candidates, playCounts)

		if err := sch.store.SetConfig(ctx, model.KeyLastReturnedTrackID, chosen.ID); err != nil {
			return nil, fmt.Errorf("scheduler: persist last returned: %w", err)
		}
		return chosen, nil
	}

	return sch.globalFallback(ctx, allReady, recentMap, mostRecentPlayTrackID, lastReturned)
}

// advanceBlock persists the rotation cursor moving to the next
// submitter and resets the block start to the current play log high
// water mark, returning the updated in-memory values.
func (sch *Scheduler) advanceBlock(ctx context.Context, idx, nSubmitters int) (int, int64, error) {
	idx = (idx + 1) % nSubmitters
	maxID, err := sch.store.MaxPlayEventID(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("scheduler: advance block max play id: %w", err)
	}
	if err := sch.store.SetConfigInt(ctx, model.KeyRotationCurrentIdx, idx); err != nil {
		return 0, 0, fmt.Errorf("scheduler: persist idx: %w", err)
	}
	if err := sch.store.SetConfigInt64(ctx, model.KeyRotationBlockStartLogID, maxID); err != nil {
		return 0, 0, fmt.Errorf("scheduler: persist block start: %w", err)
	}
	return idx, maxID, nil
}

// globalFallback picks the ready track with the oldest most-recent play
// (never-played ranks earliest), tie-broken by earliest submitted_at.
// If excluding the two reference tracks leaves nothing, it retries
// without the exclusions.
func (sch *Scheduler) globalFallback(ctx context.Context, allReady []*model.Track, recentMap map[string]time.Time, mostRecentPlayTrackID, lastReturned string) (*model.Track, error) {
	pick := func(apply bool) *model.Track {
		pool := allReady
		if apply {
			pool = excludeIDs(allReady, mostRecentPlayTrackID, lastReturned)
		}
		if len(pool) == 0 {
			return nil
		}
		sorted := make([]*model.Track, len(pool))
		copy(sorted, pool)
		sort.Slice(sorted, func(i, j int) bool {
			ti, tj := recentMap[sorted[i].ID], recentMap[sorted[j].ID]
			if !ti.Equal(tj) {
				return ti.Before(tj)
			}
			return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
		})
		return sorted[0]
	}

	chosen := pick(true)
	if chosen == nil {
		chosen = pick(false)
	}
	if chosen == nil {
		return nil, nil
	}

	if err := sch.store.SetConfig(ctx, model.KeyLastReturnedTrackID, chosen.ID); err != nil {
		return nil, fmt.Errorf("scheduler: persist fallback last returned: %w", err)
	}
	return chosen, nil
}
