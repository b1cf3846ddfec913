package config

import (
	"fmt"
	"time"
)

type Game struct {
	MaxWidth      int
	MaxHeight     int
	SessionTTL    time.Duration
	JanitorPeriod time.Duration
}

func NewGame() (*Game, error) {
	maxWidth, err := lookupInt("GAME_MAX_WIDTH", 100)
	if err != nil {
		return nil, err
	}
	maxHeight, err := lookupInt("GAME_MAX_HEIGHT", 100)
	if err != nil {
		return nil, err
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("GAME_MAX_WIDTH and GAME_MAX_HEIGHT must be positive")
	}
	ttl, err := lookupDuration("SESSION_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	period, err := lookupDuration("SESSION_JANITOR_PERIOD", time.Minute)
	if err != nil {
		return nil, err
	}
	if period <= 0 {
		return nil, fmt.Errorf("SESSION_JANITOR_PERIOD must be positive")
	}

	game := &Game{
		MaxWidth:      maxWidth,
		MaxHeight:     maxHeight,
		SessionTTL:    ttl,
		JanitorPeriod: period,
	}

	return game, nil
}
