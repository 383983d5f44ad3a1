package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run := Run{ID: "run-1", Root: "/exports", DryRun: true, StartedAt: time.Now()}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatalf("begin run: %v", err)
	}

	runs, err := store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Status != RunStatusRunning || !runs[0].DryRun {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[0].FinishedAt != nil {
		t.Fatal("running run should have no finish time")
	}

	if err := store.FinishRun(ctx, "run-1", RunStatusCompleted); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	runs, err = store.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if runs[0].Status != RunStatusCompleted || runs[0].FinishedAt == nil {
		t.Fatalf("finish not persisted: %+v", runs[0])
	}
}

func TestRecordAndListActions(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.BeginRun(ctx, Run{ID: "run-2", Root: "/exports", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	actions := []Action{
		{RunID: "run-2", Phase: "normalize", Level: LevelRename, Source: "a.json", Dest: "b.json", Applied: true},
		{RunID: "run-2", Phase: "match", Level: LevelWarn, Result: "multiple_candidates", Detail: "two candidates"},
	}
	for _, action := range actions {
		if err := store.RecordAction(ctx, action); err != nil {
			t.Fatalf("record action: %v", err)
		}
	}

	got, err := store.ListActions(ctx, "run-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(got))
	}
	if got[0].Level != LevelRename || !got[0].Applied || got[0].Dest != "b.json" {
		t.Fatalf("unexpected first action: %+v", got[0])
	}
	if got[1].Result != "multiple_candidates" || got[1].Applied {
		t.Fatalf("unexpected second action: %+v", got[1])
	}
}

func TestListRunsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := Run{ID: string(rune('a' + i)), Root: "/exports", StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.BeginRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "e" || runs[1].ID != "d" {
		t.Fatalf("runs not ordered newest first: %+v", runs)
	}
}
