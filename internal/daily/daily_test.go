package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/robalobadob/spellcircle/assets"
	"github.com/robalobadob/spellcircle/internal/store"
)

func TestLevelIndex(t *testing.T) {
	day := time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC)
	a := LevelIndex(day, "salt", 3)
	if a < 0 || a >= 3 {
		t.Fatalf("LevelIndex = %d out of range", a)
	}
	if b := LevelIndex(day.Add(-time.Hour), "salt", 3); b != a {
		t.Errorf("same day gave %d and %d", a, b)
	}
	if LevelIndex(day, "salt", 0) != 0 {
		t.Error("zero levels should give 0")
	}
	if got := DateKey(time.Date(2026, 1, 2, 23, 0, 0, 0, time.FixedZone("x", -5*3600))); got != "2026-01-03" {
		t.Errorf("DateKey = %s", got)
	}
	seen := map[int]bool{}
	for d := 0; d < 60; d++ {
		seen[LevelIndex(day.AddDate(0, 0, d), "salt", 3)] = true
	}
	if len(seen) != 3 {
		t.Errorf("60 days covered %d of 3 levels", len(seen))
	}
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(filepath.Join(t.TempDir(), "daily.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db, assets.Migrations()); err != nil {
		t.Fatal(err)
	}

	s := NewStore(db)
	if played, err := s.AlreadyPlayed(ctx, "u1", "2026-10-16"); err != nil || played {
		t.Fatalf("AlreadyPlayed = %v, %v", played, err)
	}
	results := []Result{
		{UserID: "u1", Date: "2026-10-16", LevelIndex: 1, Alternates: 1, ElapsedMs: 5000},
		{UserID: "u2", Date: "2026-10-16", LevelIndex: 1, Alternates: 0, ElapsedMs: 5000},
		{UserID: "u3", Date: "2026-10-16", LevelIndex: 1, Alternates: 2, ElapsedMs: 3000},
		{UserID: "u1", Date: "2026-10-16", LevelIndex: 1, Alternates: 0, ElapsedMs: 1},
		{UserID: "u4", Date: "2026-10-15", LevelIndex: 0, Alternates: 0, ElapsedMs: 1},
	}
	for _, r := range results {
		if err := s.InsertResult(ctx, r); err != nil {
			t.Fatalf("InsertResult: %v", err)
		}
	}
	if played, _ := s.AlreadyPlayed(ctx, "u1", "2026-10-16"); !played {
		t.Error("AlreadyPlayed = false after insert")
	}

	rows, err := s.Leaderboard(ctx, "2026-10-16", 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []string{"u3", "u2", "u1"}
	if len(rows) != len(want) {
		t.Fatalf("Leaderboard = %+v", rows)
	}
	for i, r := range rows {
		if r.UserID != want[i] {
			t.Errorf("rank %d = %s, want %s", i, r.UserID, want[i])
		}
	}
	if rows[2].ElapsedMs != 5000 {
		t.Errorf("duplicate result replaced the first: %+v", rows[2])
	}
}
