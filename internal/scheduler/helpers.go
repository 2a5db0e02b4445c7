package scheduler

import (
	"math"
	"time"

	"github.com/arung-agamani/waveradio/internal/model"
)

// sumReadyDuration returns the sum of duration_s over ready tracks;
// null durations contribute 0.
func sumReadyDuration(tracks []*model.Track) float64 {
	var sum float64
	for _, t := range tracks {
		if t.Duration != nil {
			sum += *t.Duration
		}
	}
	return sum
}

const cooldownThresholdSeconds = 3600

// applyCooldown removes, from candidates, any track whose most recent
// play is newer than now-3600s, but only when the library is large
// enough (R >= 3600s) to afford it.
func applyCooldown(candidates []*model.Track, recent map[string]time.Time, libraryDuration float64, now time.Time) []*model.Track {
	if libraryDuration < cooldownThresholdSeconds {
		return candidates
	}
	cutoff := now.Add(-cooldownThresholdSeconds * time.Second)
	out := make([]*model.Track, 0, len(candidates))
	for _, t := range candidates {
		if last, ok := recent[t.ID]; ok && last.After(cutoff) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// tracksBySubmitter filters an in-memory track slice by submitter.
func tracksBySubmitter(tracks []*model.Track, submitter string) []*model.Track {
	out := make([]*model.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.Submitter == submitter {
			out = append(out, t)
		}
	}
	return out
}

// excludeIDs returns candidates with the given IDs removed.
func excludeIDs(candidates []*model.Track, ids ...string) []*model.Track {
	skip := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			skip[id] = true
		}
	}
	out := make([]*model.Track, 0, len(candidates))
	for _, t := range candidates {
		if !skip[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// pickByPlayCount implements the rotation policy's candidate selection:
// tracks never played are chosen uniformly at random among themselves;
// otherwise weighted random with weight 1/sqrt(playCount+1).
func pickByPlayCount(rng randSource, candidates []*model.Track, playCounts map[string]int) *model.Track {
	var neverPlayed []*model.Track
	for _, t := range candidates {
		if playCounts[t.ID] == 0 {
			neverPlayed = append(neverPlayed, t)
		}
	}
	if len(neverPlayed) > 0 {
		return neverPlayed[rng.Intn(len(neverPlayed))]
	}

	weights := make([]float64, len(candidates))
	var total float64
	for i, t := range candidates {
		w := 1 / math.Sqrt(float64(playCounts[t.ID]+1))
		weights[i] = w
		total += w
	}
	r := rng.Float64() * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r <= cum {
			return candidates[i]
		}
	}
	return candidates[len(candidates)-1]
}

// randSource is the subset of *rand.Rand the selection helpers need, to
// keep them testable with a fixed sequence.
type randSource interface {
	Intn(n int) int
	Float64() float64
}

func euclideanDistance4(a, b [4]float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func normalize(x, min, max float64) float64 {
	if max > min {
		return (x - min) / (max - min)
	}
	return 0
}
