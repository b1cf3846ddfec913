package handlers

import (
	"fmt"
	"net/url"

	"github.com/vancomm/sweeper/internal/mines"
	"github.com/vancomm/sweeper/internal/records"
	"github.com/vancomm/sweeper/internal/session"
)

type NewGameDTO struct {
	Width     int `schema:"width,required"`
	Height    int `schema:"height,required"`
	MineCount int `schema:"mine_count,required"`
}

// ParseGameParams accepts either width, height and mine_count or a
// "w:h:m" seed.
func ParseGameParams(query url.Values) (mines.GameParams, error) {
	if seed := query.Get("seed"); seed != "" {
		params, err := mines.ParseSeed(seed)
		if err != nil {
			return mines.GameParams{}, err
		}
		return *params, nil
	}
	var dto NewGameDTO
	if err := decoder.Decode(&dto, query); err != nil {
		return mines.GameParams{}, err
	}
	return mines.GameParams(dto), nil
}

type PositionDTO struct {
	X int `schema:"x,required"`
	Y int `schema:"y,required"`
}

func ParsePosition(query url.Values) (PositionDTO, error) {
	var pos PositionDTO
	err := decoder.Decode(&pos, query)
	return pos, err
}

var moves = map[string]session.Op{
	"open":  session.OpOpen,
	"flag":  session.OpFlag,
	"chord": session.OpChord,
}

func ParseMove(query url.Values) (session.Command, error) {
	op, ok := moves[query.Get("move")]
	if !ok {
		return session.Command{}, fmt.Errorf("move must be one of open, flag, chord")
	}
	pos, err := ParsePosition(query)
	if err != nil {
		return session.Command{}, err
	}
	return session.Command{Op: op, X: pos.X, Y: pos.Y}, nil
}

type RecordsQueryDTO struct {
	Width     *int `schema:"width"`
	Height    *int `schema:"height"`
	MineCount *int `schema:"mine_count"`
	Limit     int  `schema:"limit"`
}

// ParseRecordsFilter requires width, height and mine_count together or
// not at all.
func ParseRecordsFilter(query url.Values) (records.Filter, error) {
	var dto RecordsQueryDTO
	if err := decoder.Decode(&dto, query); err != nil {
		return records.Filter{}, err
	}
	if dto.Limit < 0 || dto.Limit > 100 {
		return records.Filter{}, fmt.Errorf("limit must be between 0 and 100")
	}
	filter := records.Filter{Limit: dto.Limit}

	given := 0
	for _, v := range []*int{dto.Width, dto.Height, dto.MineCount} {
		if v != nil {
			given++
		}
	}
	switch given {
	case 0:
		return filter, nil
	case 3:
		filter.GameParams = &mines.GameParams{
			Width:     *dto.Width,
			Height:    *dto.Height,
			MineCount: *dto.MineCount,
		}
		return filter, nil
	default:
		return records.Filter{}, fmt.Errorf("width, height and mine_count go together")
	}
}

type GameSessionDTO struct {
	SessionID string             `json:"session_id"`
	Width     int                `json:"width"`
	Height    int                `json:"height"`
	MineCount int                `json:"mine_count"`
	Phase     mines.Phase        `json:"phase"`
	Flags     int                `json:"flags"`
	Grid      []mines.CellStatus `json:"grid"`
	StartedAt int64              `json:"started_at"`
	EndedAt   *int64             `json:"ended_at,omitempty"`
	Token     string             `json:"token,omitempty"`
}

func NewGameSessionDTO(v session.View) *GameSessionDTO {
	var endedAt *int64
	if v.EndedAt != nil {
		e := v.EndedAt.UnixMilli()
		endedAt = &e
	}
	return &GameSessionDTO{
		SessionID: v.ID,
		Width:     v.Width,
		Height:    v.Height,
		MineCount: v.MineCount,
		Phase:     v.Phase,
		Flags:     v.Flags,
		Grid:      v.Statuses(),
		StartedAt: v.StartedAt.UnixMilli(),
		EndedAt:   endedAt,
	}
}
