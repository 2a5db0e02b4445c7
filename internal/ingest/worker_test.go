package ingest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arung-agamani/waveradio/config"
	"github.com/arung-agamani/waveradio/internal/model"
	"github.com/arung-agamani/waveradio/internal/store"
)

func newTestWorker(t *testing.T) (*Worker, *store.Store) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"), store.DefaultConfig())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Load()
	return NewWorker(st, cfg), st
}

func TestProcessOne_EmptyQueue(t *testing.T) {
	w, _ := newTestWorker(t)
	did, err := w.processOne(context.Background())
	if err != nil {
		t.Fatalf("processOne: %v", err)
	}
	if did {
		t.Fatal("expected no job claimed on an empty queue")
	}
}

func TestUpdateFeatureBounds_FirstWriteSeedsMinEqualsMax(t *testing.T) {
	w, st := newTestWorker(t)
	ctx := context.Background()

	fv := model.FeatureVector{TempoBPM: 120, RMSEnergy: 0.2, SpectralCentroid: 1500, ZeroCrossingRate: 0.05}
	if err := w.updateFeatureBounds(ctx, fv); err != nil {
		t.Fatalf("updateFeatureBounds: %v", err)
	}

	min, ok, err := st.GetConfigFloat(ctx, model.FeatureMinKey("tempo_bpm"))
	if err != nil || !ok {
		t.Fatalf("expected tempo_bpm min to be set: ok=%v err=%v", ok, err)
	}
	max, _, _ := st.GetConfigFloat(ctx, model.FeatureMaxKey("tempo_bpm"))
	if min != 120 || max != 120 {
		t.Fatalf("expected min==max==120 on first write, got min=%v max=%v", min, max)
	}
}

func TestUpdateFeatureBounds_WidensOnSubsequentWrites(t *testing.T) {
	w, st := newTestWorker(t)
	ctx := context.Background()

	first := model.FeatureVector{TempoBPM: 120, RMSEnergy: 0.2, SpectralCentroid: 1500, ZeroCrossingRate: 0.05}
	second := model.FeatureVector{TempoBPM: 90, RMSEnergy: 0.5, SpectralCentroid: 2500, ZeroCrossingRate: 0.2}

	if err := w.updateFeatureBounds(ctx, first); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if err := w.updateFeatureBounds(ctx, second); err != nil {
		t.Fatalf("second update: %v", err)
	}

	min, _, _ := st.GetConfigFloat(ctx, model.FeatureMinKey("tempo_bpm"))
	max, _, _ := st.GetConfigFloat(ctx, model.FeatureMaxKey("tempo_bpm"))
	if min != 90 || max != 120 {
		t.Fatalf("expected widened bounds [90,120], got [%v,%v]", min, max)
	}
}
