package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps timestamps as unix milliseconds.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS game_record (
	session_id	TEXT PRIMARY KEY,
	width		INTEGER NOT NULL,
	height		INTEGER NOT NULL,
	mine_count	INTEGER NOT NULL,
	won			BOOLEAN NOT NULL,
	started_at	INTEGER NOT NULL,
	ended_at	INTEGER NOT NULL
);`)
	if err != nil {
		return nil, fmt.Errorf("unable to create game_record table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Add(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO game_record (
	session_id, width, height, mine_count, won, started_at, ended_at
)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
		r.SessionID, r.Width, r.Height, r.MineCount, r.Won,
		r.StartedAt.UnixMilli(), r.EndedAt.UnixMilli(),
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %s", ErrDuplicate, r.SessionID)
	}
	return err
}

func (s *SQLiteStore) Highscores(ctx context.Context, f Filter) ([]Highscore, error) {
	clauses := []string{"won = 1"}
	args := []any{}
	if f.GameParams != nil {
		clauses = append(clauses, "width = ?", "height = ?", "mine_count = ?")
		args = append(args, f.GameParams.Width, f.GameParams.Height, f.GameParams.MineCount)
	}
	args = append(args, f.limit())

	rows, err := s.db.QueryContext(ctx, `
SELECT session_id, width, height, mine_count, ended_at - started_at AS playtime_ms
FROM game_record
WHERE `+strings.Join(clauses, " AND ")+`
ORDER BY playtime_ms
LIMIT ?;`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	highscores := []Highscore{}
	for rows.Next() {
		var h Highscore
		if err := rows.Scan(
			&h.SessionID, &h.Width, &h.Height, &h.MineCount, &h.PlaytimeMs,
		); err != nil {
			return nil, err
		}
		highscores = append(highscores, h)
	}
	return highscores, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
