package runstore

import (
	"testing"
	"time"
)

func TestStore_CreateGetAndList(t *testing.T) {
	store := NewStore()

	idA := store.Create("https://github.com/a/a", 5)
	time.Sleep(5 * time.Millisecond)
	idB := store.Create("https://github.com/b/b", 10)

	got, ok := store.Get(idA)
	if !ok {
		t.Fatal("Get should return true for existing run")
	}
	if got.RepoURL != "https://github.com/a/a" || got.Questions != 5 || got.Status != StatusPending {
		t.Fatalf("Get returned %+v", got)
	}

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("List length = %d, want 2", len(list))
	}
	if list[0].ID != idB || list[1].ID != idA {
		t.Fatalf("List order = [%s, %s], want [%s, %s]", list[0].ID, list[1].ID, idB, idA)
	}
}

func TestStore_StatusTransitionsAndLogs(t *testing.T) {
	store := NewStore()
	id := store.Create("https://github.com/a/b", 3)

	store.UpdateStatus(id, StatusRunning)
	store.AddLog(id, "info", "Analyzing repository…")
	store.Complete(id, 3)

	got, _ := store.Get(id)
	if got.Status != StatusCompleted || got.Pairs != 3 {
		t.Fatalf("run = %+v, want completed with 3 pairs", got)
	}
	if len(got.Logs) != 1 || got.Logs[0].Message != "Analyzing repository…" {
		t.Fatalf("logs = %+v", got.Logs)
	}
	if got.Logs[0].Timestamp.IsZero() {
		t.Fatal("Log timestamp should be set")
	}

	id2 := store.Create("https://github.com/a/c", 3)
	store.Fail(id2, "Error: boom")
	failed, _ := store.Get(id2)
	if failed.Status != StatusFailed || failed.Error != "Error: boom" {
		t.Fatalf("run = %+v, want failed", failed)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore()
	id := store.Create("https://github.com/a/b", 3)
	store.AddLog(id, "info", "one")

	got, _ := store.Get(id)
	got.Logs[0].Message = "changed"
	got.Status = StatusFailed

	again, _ := store.Get(id)
	if again.Logs[0].Message != "one" || again.Status != StatusPending {
		t.Fatalf("store mutated through copy: %+v", again)
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	store := NewStoreWithCapacity(2)
	first := store.Create("https://github.com/a/1", 1)
	time.Sleep(2 * time.Millisecond)
	store.Create("https://github.com/a/2", 1)
	time.Sleep(2 * time.Millisecond)
	store.Create("https://github.com/a/3", 1)

	if _, ok := store.Get(first); ok {
		t.Fatal("oldest run should be evicted")
	}
	if n := len(store.List()); n != 2 {
		t.Fatalf("List length = %d, want 2", n)
	}
}

func TestStore_UnknownIDsAreIgnored(t *testing.T) {
	store := NewStore()
	store.UpdateStatus("nope", StatusRunning)
	store.AddLog("nope", "info", "x")
	store.Complete("nope", 1)
	store.Fail("nope", "x")
	if _, ok := store.Get("nope"); ok {
		t.Fatal("unknown ID should not be created")
	}
}
