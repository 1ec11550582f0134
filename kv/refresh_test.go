package kv

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefreshRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	refresh := NewRefreshStore(store)

	record := RefreshRecord{RefreshToken: "tok-1", Email: "u7@x.com"}
	if err := refresh.Save(ctx, 7, record, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := refresh.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RefreshToken != "tok-1" || got.Email != "u7@x.com" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestRefreshOverwriteLeavesNoMergeArtifacts(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	refresh := NewRefreshStore(store)

	if err := refresh.Save(ctx, 7, RefreshRecord{RefreshToken: "old", Email: "u7@x.com"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := refresh.Save(ctx, 7, RefreshRecord{RefreshToken: "new", Email: "u7@x.com"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := refresh.Get(ctx, 7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RefreshToken != "new" {
		t.Fatalf("expected only the second value, got %q", got.RefreshToken)
	}
}

func TestRefreshRecordExpires(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)
	refresh := NewRefreshStore(store)

	if err := refresh.Save(ctx, 7, RefreshRecord{RefreshToken: "tok"}, time.Second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := refresh.Get(ctx, 7); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL, got %v", err)
	}
}

func TestRefreshDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	refresh := NewRefreshStore(store)

	if err := refresh.Save(ctx, 7, RefreshRecord{RefreshToken: "tok"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	existed, err := refresh.Delete(ctx, 7)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !existed {
		t.Fatal("first delete should report an existing record")
	}

	existed, err = refresh.Delete(ctx, 7)
	if err != nil {
		t.Fatalf("second delete errored: %v", err)
	}
	if existed {
		t.Fatal("second delete should report nothing to remove")
	}
}

func TestRefreshSubjectsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	refresh := NewRefreshStore(store)

	if err := refresh.Save(ctx, 1, RefreshRecord{RefreshToken: "a"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := refresh.Save(ctx, 2, RefreshRecord{RefreshToken: "b"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := refresh.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := refresh.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.RefreshToken != "b" {
		t.Fatalf("subject 2 record disturbed: %+v", got)
	}
}
