package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arung-agamani/waveradio/internal/model"
	"github.com/arung-agamani/waveradio/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
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
	return st
}

func readyTrack(t *testing.T, ctx context.Context, st *store.Store, submitter string) *model.Track {
	t.Helper()
	tr := &model.Track{Title: "t", Artist: "a", Submitter: submitter, SourceType: model.SourceUpload}
	if _, err := st.CreateTrack(ctx, tr); err != nil {
		t.Fatalf("create track: %v", err)
	}
	dur := 120.0
	fv := model.FeatureVector{TempoBPM: 120, RMSEnergy: 0.1, SpectralCentroid: 2000, ZeroCrossingRate: 0.05}
	if err := st.MarkTrackReady(ctx, tr.ID, tr.Title, tr.Artist, "/music/"+tr.ID+".mp3", &dur, fv); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	got, err := st.GetTrack(ctx, tr.ID)
	if err != nil {
		t.Fatalf("get track: %v", err)
	}
	return got
}

func TestNext_EmptyLibrary(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sch := New(st)

	track, err := sch.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if track != nil {
		t.Fatalf("expected no track, got %+v", track)
	}
}

func TestNext_RotationSingleSubmitterRepeats(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sch := New(st)

	track := readyTrack(t, ctx, st, "alice")

	first, err := sch.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if first == nil || first.ID != track.ID {
		t.Fatalf("expected %s, got %+v", track.ID, first)
	}
	if _, err := st.AppendPlayEvent(ctx, first.ID); err != nil {
		t.Fatalf("append play event: %v", err)
	}

	second, err := sch.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if second == nil || second.ID != track.ID {
		t.Fatalf("expected repeat of %s, got %+v", track.ID, second)
	}

	lastReturned, ok, err := st.GetConfig(ctx, model.KeyLastReturnedTrackID)
	if err != nil || !ok {
		t.Fatalf("last returned not persisted: %v ok=%v", err, ok)
	}
	if lastReturned != track.ID {
		t.Fatalf("last returned mismatch: %s", lastReturned)
	}
}

func TestNext_RotationTwoSubmittersTrace(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sch := New(st)

	if err := st.SetConfigInt(ctx, model.KeyRotationTracksPerBlock, 2); err != nil {
		t.Fatalf("set block size: %v", err)
	}

	readyTrack(t, ctx, st, "A")
	readyTrack(t, ctx, st, "A")
	readyTrack(t, ctx, st, "B")
	readyTrack(t, ctx, st, "B")

	expectSubmitter := []string{"A", "A", "B", "B", "A", "A"}

	for i, exp := range expectSubmitter {
		track, err := sch.Next(ctx)
		if err != nil {
			t.Fatalf("call %d: next: %v", i, err)
		}
		if track == nil {
			t.Fatalf("call %d: expected a track", i)
		}
		if track.Submitter != exp {
			t.Fatalf("call %d: expected submitter %s, got %s (track %s)", i, exp, track.Submitter, track.ID)
		}
		if _, err := st.AppendPlayEvent(ctx, track.ID); err != nil {
			t.Fatalf("call %d: append play event: %v", i, err)
		}
	}
}

func TestNext_MoodColdStartDelegatesToRotation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	if err := st.SetConfig(ctx, model.KeyProgrammingMode, string(model.ModeMood)); err != nil {
		t.Fatalf("set mode: %v", err)
	}
	sch := New(st)

	track := readyTrack(t, ctx, st, "alice")

	got, err := sch.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got == nil || got.ID != track.ID {
		t.Fatalf("expected delegated rotation pick %s, got %+v", track.ID, got)
	}
}

func TestApplyCooldown_BelowThresholdNoFilter(t *testing.T) {
	now := time.Now().UTC()
	tracks := []*model.Track{{ID: "x"}}
	recent := map[string]time.Time{"x": now}
	out := applyCooldown(tracks, recent, 100, now)
	if len(out) != 1 {
		t.Fatalf("expected no filtering below threshold, got %d", len(out))
	}
}

func TestApplyCooldown_AboveThresholdExcludesRecent(t *testing.T) {
	now := time.Now().UTC()
	tracks := []*model.Track{{ID: "recent"}, {ID: "old"}}
	recent := map[string]time.Time{
		"recent": now.Add(-10 * time.Minute),
		"old":    now.Add(-2 * time.Hour),
	}
	out := applyCooldown(tracks, recent, 4000, now)
	if len(out) != 1 || out[0].ID != "old" {
		t.Fatalf("expected only 'old' to survive, got %+v", out)
	}
}

func TestNormalize(t *testing.T) {
	if got := normalize(5, 2, 2); got != 0 {
		t.Fatalf("normalize(x;a,a) should be 0, got %v", got)
	}
	if got := normalize(5, 0, 10); got != 0.5 {
		t.Fatalf("normalize(5;0,10) should be 0.5, got %v", got)
	}
}
