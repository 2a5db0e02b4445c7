package scheduler

import (
	"context"
	"testing"

	"github.com/arung-agamani/waveradio/internal/model"
)

func TestNextMood_PicksNearestNeighbor(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	if err := st.SetConfig(ctx, model.KeyProgrammingMode, string(model.ModeMood)); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	sch := New(st)

	mk := func(submitter string, fv model.FeatureVector) *model.Track {
		tr := &model.Track{Title: "t", Artist: "a", Submitter: submitter, SourceType: model.SourceUpload}
		if _, err := st.CreateTrack(ctx, tr); err != nil {
			t.Fatalf("create: %v", err)
		}
		dur := 100.0
		if err := st.MarkTrackReady(ctx, tr.ID, tr.Title, tr.Artist, "/music/"+tr.ID+".mp3", &dur, fv); err != nil {
			t.Fatalf("mark ready: %v", err)
		}
		return tr
	}

	reference := mk("alice", model.FeatureVector{TempoBPM: 100, RMSEnergy: 0.5, SpectralCentroid: 1000, ZeroCrossingRate: 0.1})
	near := mk("bob", model.FeatureVector{TempoBPM: 101, RMSEnergy: 0.5, SpectralCentroid: 1000, ZeroCrossingRate: 0.1})
	far := mk("carol", model.FeatureVector{TempoBPM: 200, RMSEnergy: 0.9, SpectralCentroid: 5000, ZeroCrossingRate: 0.9})

	// Seed normalization bounds so both candidates are distinguishable.
	for _, kv := range []struct {
		key string
		val float64
	}{
		{model.FeatureMinKey("tempo_bpm"), 100}, {model.FeatureMaxKey("tempo_bpm"), 200},
		{model.FeatureMinKey("rms_energy"), 0.5}, {model.FeatureMaxKey("rms_energy"), 0.9},
		{model.FeatureMinKey("spectral_centroid"), 1000}, {model.FeatureMaxKey("spectral_centroid"), 5000},
		{model.FeatureMinKey("zero_crossing_rate"), 0.1}, {model.FeatureMaxKey("zero_crossing_rate"), 0.9},
	} {
		if err := st.SetConfigFloat(ctx, kv.key, kv.val); err != nil {
			t.Fatalf("seed bound %s: %v", kv.key, err)
		}
	}

	if _, err := st.AppendPlayEvent(ctx, reference.ID); err != nil {
		t.Fatalf("append play event: %v", err)
	}

	got, err := sch.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got == nil {
		t.Fatal("expected a track")
	}
	if got.ID != near.ID {
		t.Fatalf("expected nearest neighbor %s, got %s (far=%s)", near.ID, got.ID, far.ID)
	}
}
