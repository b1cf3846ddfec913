// Package records keeps the outcome of finished games. It never stores
// the grid itself.
package records

import (
	"context"
	"errors"
	"time"

	"github.com/vancomm/sweeper/internal/mines"
)

var ErrDuplicate = errors.New("record already exists")

type Record struct {
	SessionID string
	mines.GameParams
	Won       bool
	StartedAt time.Time
	EndedAt   time.Time
}

func (r Record) Playtime() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

type Highscore struct {
	SessionID  string  `json:"session_id" db:"session_id"`
	Width      int     `json:"width" db:"width"`
	Height     int     `json:"height" db:"height"`
	MineCount  int     `json:"mine_count" db:"mine_count"`
	PlaytimeMs float64 `json:"playtime_ms" db:"playtime_ms"`
}

type Filter struct {
	GameParams *mines.GameParams
	Limit      int
}

const DefaultLimit = 10

func (f Filter) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

type Store interface {
	// Add fails with [ErrDuplicate] when the session was already recorded.
	Add(ctx context.Context, r Record) error
	// Highscores lists won games, fastest first.
	Highscores(ctx context.Context, f Filter) ([]Highscore, error)
}
