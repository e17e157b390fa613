package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gamepilot/gamepilot/internal/app/analytics"
	"github.com/gamepilot/gamepilot/internal/domain"
	"github.com/gamepilot/gamepilot/internal/infra/sqlite"
)

func TestSnapshotCacheExpiry(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	c := newSnapshotCache(4, time.Hour)
	c.now = func() time.Time { return now }

	snap := domain.PersonaSnapshot{}
	c.put("ttl", snap, time.Time{})
	c.put("capped", snap, now.Add(10*time.Minute))
	c.put("late", snap, now.Add(3*time.Hour))

	now = now.Add(15 * time.Minute)
	if _, ok := c.get("capped"); ok {
		t.Error("entry should expire at its cap")
	}
	if _, ok := c.get("ttl"); !ok {
		t.Error("uncapped entry should live for the ttl")
	}

	now = now.Add(time.Hour)
	if _, ok := c.get("late"); ok {
		t.Error("a cap past the ttl should not extend the entry")
	}
}

func TestDefaultSnapshotDropsExpiredMood(t *testing.T) {
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	srv := NewServer(db, Options{
		Version:         "test",
		Engine:          analytics.DefaultConfig(),
		MoodMaxAgeHours: 2,
		CacheTTL:        48 * time.Hour,
	}, nil)
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	srv.now = func() time.Time { return now }
	srv.snapshots.now = srv.now
	h := srv.Handler()

	expectStatus(t, do(t, h, "PUT", "/api/users/u1/signals", rpgSignals), http.StatusOK)
	expectStatus(t, do(t, h, "POST", "/api/users/u1/moods",
		`{"moodId":"cozy","intensity":6,"timestamp":"2025-07-01T09:00:00Z"}`), http.StatusCreated)

	snap, _, err := srv.defaultSnapshot("u1")
	if err != nil {
		t.Fatalf("defaultSnapshot: %v", err)
	}
	if snap.Mood == nil || snap.Mood.MoodID != domain.MoodCozy {
		t.Fatalf("mood = %v, want cozy", snap.Mood)
	}

	now = now.Add(3 * time.Hour)
	snap, _, err = srv.defaultSnapshot("u1")
	if err != nil {
		t.Fatalf("defaultSnapshot: %v", err)
	}
	if snap.Mood != nil {
		t.Errorf("mood = %v, want none once it is older than the max age", snap.Mood)
	}
}

func TestDefaultSnapshotRefreshesAfterMoodWrite(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	expectStatus(t, do(t, h, "PUT", "/api/users/u1/signals", rpgSignals), http.StatusOK)
	expectStatus(t, do(t, h, "POST", "/api/users/u1/moods", `{"moodId":"cozy","intensity":6}`), http.StatusCreated)
	if snap, _, err := srv.defaultSnapshot("u1"); err != nil || snap.Mood.MoodID != domain.MoodCozy {
		t.Fatalf("first snapshot = %v, %v", snap, err)
	}

	expectStatus(t, do(t, h, "POST", "/api/users/u1/sessions",
		`{"sessionId":"s1","preMood":{"moodId":"focused","intensity":7}}`), http.StatusCreated)
	snap, _, err := srv.defaultSnapshot("u1")
	if err != nil {
		t.Fatalf("defaultSnapshot: %v", err)
	}
	if snap.Mood == nil || snap.Mood.MoodID != domain.MoodFocused {
		t.Errorf("mood = %v, want the pre-session mood", snap.Mood)
	}
}
