package daily

import (
	"context"
	"database/sql"
)

// Result is one player's completion of the daily level.
type Result struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	LevelIndex int    `json:"levelIndex"`
	Alternates int    `json:"alternates"` // rings solved with a non-target word
	ElapsedMs  int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult stores r; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, level_index, alternates, elapsed_ms)
		VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.LevelIndex, r.Alternates, r.ElapsedMs,
	)
	return err
}

type LBRow struct {
	UserID     string `json:"userId"`
	Alternates int    `json:"alternates"`
	ElapsedMs  int    `json:"elapsedMs"`
}

// Leaderboard returns the fastest completions for date, fewer alternates
// breaking ties, then the earlier finish.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, alternates, elapsed_ms
		FROM daily_results
		WHERE date=?
		ORDER BY elapsed_ms ASC, alternates ASC, created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LBRow{}
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Alternates, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
