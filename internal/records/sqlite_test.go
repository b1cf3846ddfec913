package records

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/sweeper/internal/mines"
)

func setupTestStore() (*SQLiteStore, func(), error) {
	f, err := os.CreateTemp("", "sqlite-records-")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create temp file: %v", err)
	}

	db, err := sql.Open("sqlite3", f.Name())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect sqlite db: %v", err)
	}

	s, err := NewSQLiteStore(context.Background(), db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create new store: %v", err)
	}

	teardown := func() {
		s.Close()
		f.Close()
		os.Remove(f.Name())
	}

	return s, teardown, nil
}

func record(id string, params mines.GameParams, won bool, playtime time.Duration) Record {
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return Record{
		SessionID:  id,
		GameParams: params,
		Won:        won,
		StartedAt:  start,
		EndedAt:    start.Add(playtime),
	}
}

func TestStoreEmpty(t *testing.T) {
	s, teardown, err := setupTestStore()
	require.NoError(t, err)
	defer teardown()

	highscores, err := s.Highscores(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, highscores)
}

func TestStoreDuplicate(t *testing.T) {
	s, teardown, err := setupTestStore()
	require.NoError(t, err)
	defer teardown()

	ctx := context.Background()
	r := record("a", mines.GameParams{Width: 9, Height: 9, MineCount: 10}, true, time.Second)
	require.NoError(t, s.Add(ctx, r))
	assert.ErrorIs(t, s.Add(ctx, r), ErrDuplicate)
}

func TestStoreHighscores(t *testing.T) {
	s, teardown, err := setupTestStore()
	require.NoError(t, err)
	defer teardown()

	var (
		ctx      = context.Background()
		beginner = mines.GameParams{Width: 9, Height: 9, MineCount: 10}
		expert   = mines.GameParams{Width: 30, Height: 16, MineCount: 99}
	)
	for _, r := range []Record{
		record("slow", beginner, true, 90*time.Second),
		record("fast", beginner, true, 12*time.Second),
		record("lost", beginner, false, time.Second),
		record("expert", expert, true, 5*time.Minute),
	} {
		require.NoError(t, s.Add(ctx, r))
	}

	t.Run("all", func(t *testing.T) {
		highscores, err := s.Highscores(ctx, Filter{})
		require.NoError(t, err)
		ids := []string{}
		for _, h := range highscores {
			ids = append(ids, h.SessionID)
		}
		assert.Equal(t, []string{"fast", "slow", "expert"}, ids)
		assert.Equal(t, float64(12000), highscores[0].PlaytimeMs)
	})

	t.Run("by params", func(t *testing.T) {
		highscores, err := s.Highscores(ctx, Filter{GameParams: &expert})
		require.NoError(t, err)
		require.Len(t, highscores, 1)
		assert.Equal(t, Highscore{
			SessionID:  "expert",
			Width:      30,
			Height:     16,
			MineCount:  99,
			PlaytimeMs: 300000,
		}, highscores[0])
	})

	t.Run("limit", func(t *testing.T) {
		highscores, err := s.Highscores(ctx, Filter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, highscores, 1)
		assert.Equal(t, "fast", highscores[0].SessionID)
	})
}
