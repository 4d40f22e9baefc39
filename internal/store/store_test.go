package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/robalobadob/spellcircle/assets"
	"github.com/robalobadob/spellcircle/internal/catalog"
	"github.com/robalobadob/spellcircle/internal/game"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(db, assets.Migrations()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	c, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	g, err := game.New(c, nil, game.DefaultConfig)
	if err != nil {
		t.Fatal(err)
	}

	st := NewMemoryStore()
	s := NewSession(Owner{AnonymousID: "anon"}, g)
	if s.ID == "" {
		t.Fatal("empty session ID")
	}
	if err := st.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := st.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	var level int
	_ = got.Do(func(g *game.Game) error {
		level = g.Snapshot().Level
		return nil
	})
	if level != 0 {
		t.Errorf("level = %d", level)
	}
	if err := st.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after delete err = %v", err)
	}
	if NewSession(Owner{}, g).ID == s.ID {
		t.Error("session IDs repeat")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	if err := Migrate(db, assets.Migrations()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("_migrations rows = %d, want 1", n)
	}

	extra := fstest.MapFS{
		"002_note.sql": {Data: []byte(`CREATE TABLE notes (id INTEGER PRIMARY KEY);`)},
		"README.md":    {Data: []byte("ignored")},
	}
	if err := Migrate(db, extra); err != nil {
		t.Fatalf("Migrate extra: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO notes (id) VALUES (1)`); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}

	bad := fstest.MapFS{"003_bad.sql": {Data: []byte(`CREATE TABLE (`)}}
	if err := Migrate(db, bad); err == nil {
		t.Fatal("broken migration applied")
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	h := NewHistory(db)

	if _, err := db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES ('u1','ann','x','2026-01-01T00:00:00Z')`); err != nil {
		t.Fatal(err)
	}
	user := Owner{UserID: "u1"}
	steps := []Solve{
		{SessionID: "s1", Owner: user, Level: 0, Layer: 0, Kind: "perfect", Word: "DAMPED"},
		{SessionID: "s1", Owner: user, Level: 0, Layer: 1, Kind: "perfect", Word: "EXORCISE"},
		{SessionID: "s1", Owner: user, Level: 0, Layer: 2, Kind: "alternate", Word: "SUBORDINATES"},
		{SessionID: "s1", Owner: user, Level: 1, Layer: 0, Kind: "perfect", Word: "KIOSK"},
	}
	for _, s := range steps {
		if err := h.RecordSolve(ctx, s); err != nil {
			t.Fatalf("RecordSolve: %v", err)
		}
	}
	if err := h.RecordLevel(ctx, "s1", user, 0); err != nil {
		t.Fatalf("RecordLevel: %v", err)
	}

	var perfect, alternate, streak, levels int
	if err := db.QueryRow(`SELECT perfect_solves, alternate_solves, streak, levels_solved FROM users WHERE id='u1'`).
		Scan(&perfect, &alternate, &streak, &levels); err != nil {
		t.Fatal(err)
	}
	if perfect != 3 || alternate != 1 || streak != 1 || levels != 1 {
		t.Errorf("stats perfect=%d alternate=%d streak=%d levels=%d", perfect, alternate, streak, levels)
	}

	rows, err := h.RecentSolves(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("RecentSolves: %v", err)
	}
	if len(rows) != 2 || rows[0].Word != "KIOSK" {
		t.Fatalf("RecentSolves = %+v", rows)
	}

	guest := Owner{AnonymousID: "a1"}
	if err := h.RecordSolve(ctx, Solve{SessionID: "s2", Owner: guest, Kind: "perfect", Word: "DAMPED"}); err != nil {
		t.Fatalf("guest RecordSolve: %v", err)
	}
	if err := h.RecordLevel(ctx, "s2", guest, 0); err != nil {
		t.Fatalf("guest RecordLevel: %v", err)
	}
	if err := h.ClaimAnonymous(ctx, "a1", "u1"); err != nil {
		t.Fatalf("ClaimAnonymous: %v", err)
	}
	var n int
	_ = db.QueryRow(`SELECT COUNT(1) FROM solves WHERE user_id='u1'`).Scan(&n)
	if n != 5 {
		t.Errorf("claimed solves = %d, want 5", n)
	}

	if err := h.RecordSolve(ctx, Solve{SessionID: "s3", Owner: user, Kind: "bogus", Word: "X"}); err == nil {
		t.Error("invalid kind accepted")
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	us := NewUsers(openTestDB(t))

	u, err := us.Create(ctx, "  ringmaster ", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Username != "ringmaster" || u.ID == "" || u.Owner() != (Owner{UserID: u.ID}) {
		t.Fatalf("created %+v", u)
	}
	if _, err := us.Create(ctx, "RINGMASTER", "hunter2hunter2"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate err = %v", err)
	}

	tests := []struct {
		name, user, pw string
	}{
		{"short name", "ab", "hunter2hunter2"},
		{"bad chars", "ring master", "hunter2hunter2"},
		{"short password", "ringmaster2", "short"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := us.Create(ctx, tt.user, tt.pw); err == nil {
				t.Error("invalid credentials accepted")
			}
		})
	}

	got, err := us.Authenticate(ctx, "Ringmaster", "hunter2hunter2")
	if err != nil || got.ID != u.ID {
		t.Fatalf("Authenticate = %+v, %v", got, err)
	}
	if _, err := us.Authenticate(ctx, "ringmaster", "wrong-password"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("wrong password err = %v", err)
	}
	if _, err := us.Authenticate(ctx, "nobody", "hunter2hunter2"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("unknown user err = %v", err)
	}
	if _, err := us.ByID(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ByID missing err = %v", err)
	}
}
