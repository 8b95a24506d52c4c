package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRecordAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{SessionID: "a", URL: "https://youtu.be/dQw4w9WgXcQ", VideoID: "dQw4w9WgXcQ", Title: "first",
			Mode: "mp3", State: "Completed", OutputPath: "/tmp/a.mp3", Bytes: 42, Attempts: 1, CreatedAt: base},
		{SessionID: "b", URL: "https://youtu.be/aaaaaaaaaaa", VideoID: "aaaaaaaaaaa",
			Mode: "mp4", State: "Error", Error: "network error", Attempts: 3, CreatedAt: base.Add(time.Minute)},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].SessionID != "b" || got[1].SessionID != "a" {
		t.Errorf("order = %s, %s; want newest first", got[0].SessionID, got[1].SessionID)
	}
	if got[0].Error != "network error" || got[0].Attempts != 3 || got[0].Title != "" {
		t.Errorf("failed entry = %+v", got[0])
	}
	if got[1].OutputPath != "/tmp/a.mp3" || got[1].Bytes != 42 || !got[1].CreatedAt.Equal(base) {
		t.Errorf("completed entry = %+v", got[1])
	}
}

func TestStoreListLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := s.Record(ctx, Entry{SessionID: "s", URL: "u", VideoID: "v", State: "Completed"}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	got, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	for _, e := range got {
		if e.CreatedAt.IsZero() {
			t.Errorf("CreatedAt not defaulted")
		}
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		s.Close()
	}
}
