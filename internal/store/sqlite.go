// internal/store/sqlite.go
//
// SQLite persistence for accounts, solve history and daily results.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from an fs.FS of *.sql files (idempotent, recorded in _migrations).
//   - Recording ring solves and completed levels for users and guests.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// Open opens (and creates if missing) a SQLite database file.
//
// The parent directory is created for relative DSNs such as ./data/app.db.
// Busy timeout, WAL journaling and foreign keys are enabled.
func Open(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// Migrate applies every *.sql file of fsys in lexical order.
//
// Applied files are tracked in a _migrations table and skipped afterwards.
// Scripts that manage their own transaction (BEGIN TRANSACTION or
// PRAGMA FOREIGN_KEYS=OFF) run as-is; everything else runs inside a
// dedicated transaction.
func Migrate(db *sql.DB, fsys fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		sqlText := string(sqlBytes)

		upper := strings.ToUpper(sqlText)
		selfManaged := strings.Contains(upper, "BEGIN TRANSACTION") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS=OFF") ||
			strings.Contains(upper, "PRAGMA FOREIGN_KEYS = OFF")

		if selfManaged {
			if _, err := db.Exec(sqlText); err != nil {
				return fmt.Errorf("apply %s: %w", f, err)
			}
			if _, err := db.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
				return fmt.Errorf("record %s: %w", f, err)
			}
			log.Info().Str("migration", f).Msg("applied (self-managed)")
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(sqlText); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* ----------------------------- solve history ----------------------------- */

// Owner identifies who played: a signed-in user or an anonymous guest.
// Exactly one of the fields is set.
type Owner struct {
	UserID      string
	AnonymousID string
}

func (o Owner) args() (any, any) {
	var u, a any
	if o.UserID != "" {
		u = o.UserID
	} else {
		a = o.AnonymousID
	}
	return u, a
}

// Solve is one solved ring.
type Solve struct {
	SessionID string
	Owner     Owner
	Level     int
	Layer     int
	Kind      string // "perfect" | "alternate"
	Word      string
}

// History records solves and completed levels.
type History struct {
	db *sql.DB
}

// NewHistory wraps db.
func NewHistory(db *sql.DB) *History { return &History{db: db} }

// RecordSolve stores a ring solve and, for signed-in users, bumps the
// perfect/alternate counters and the perfect-solve streak.
func (h *History) RecordSolve(ctx context.Context, s Solve) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	u, a := s.Owner.args()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO solves (session_id, user_id, anonymous_id, level, layer, kind, word, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.SessionID, u, a, s.Level, s.Layer, s.Kind, s.Word, now(),
	); err != nil {
		return fmt.Errorf("insert solve: %w", err)
	}

	if s.Owner.UserID != "" {
		q := `UPDATE users SET perfect_solves = perfect_solves + 1, streak = streak + 1 WHERE id=?`
		if s.Kind != "perfect" {
			q = `UPDATE users SET alternate_solves = alternate_solves + 1, streak = 0 WHERE id=?`
		}
		if _, err := tx.ExecContext(ctx, q, s.Owner.UserID); err != nil {
			return fmt.Errorf("bump user stats: %w", err)
		}
	}
	return tx.Commit()
}

// RecordLevel stores a completed level.
func (h *History) RecordLevel(ctx context.Context, sessionID string, o Owner, level int) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	u, a := o.args()
	if _, err := tx.ExecContext(ctx, `
        INSERT INTO levels (session_id, user_id, anonymous_id, level, completed_at)
        VALUES (?, ?, ?, ?, ?)`, sessionID, u, a, level, now(),
	); err != nil {
		return fmt.Errorf("insert level: %w", err)
	}
	if o.UserID != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET levels_solved = levels_solved + 1 WHERE id=?`, o.UserID); err != nil {
			return fmt.Errorf("bump levels_solved: %w", err)
		}
	}
	return tx.Commit()
}

// SolveRow is a solve as listed back to its owner.
type SolveRow struct {
	Level     int    `json:"level"`
	Layer     int    `json:"layer"`
	Kind      string `json:"kind"`
	Word      string `json:"word"`
	CreatedAt string `json:"createdAt"`
}

// RecentSolves lists a user's latest solves, newest first.
func (h *History) RecentSolves(ctx context.Context, userID string, limit int) ([]SolveRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := h.db.QueryContext(ctx, `
        SELECT level, layer, kind, word, created_at
        FROM solves WHERE user_id=?
        ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []SolveRow{}
	for rows.Next() {
		var r SolveRow
		if err := rows.Scan(&r.Level, &r.Layer, &r.Kind, &r.Word, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonymous moves a guest's history to a user account.
func (h *History) ClaimAnonymous(ctx context.Context, anonID, userID string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	for _, table := range []string{"solves", "levels"} {
		if _, err := h.db.ExecContext(ctx,
			`UPDATE `+table+` SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID); err != nil {
			return fmt.Errorf("claim %s: %w", table, err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
