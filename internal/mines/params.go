package mines

import (
	"fmt"
	"strings"
)

type GameParams struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	MineCount int `json:"mine_count"`
}

func (p GameParams) Unpack() (w int, h int, mc int) {
	return p.Width, p.Height, p.MineCount
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Width, p.Height, p.MineCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Width, &p.Height, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate rejects params NewGame would have to clamp.
func (p GameParams) Validate() error {
	switch {
	case p.Width <= 0:
		return fmt.Errorf("%w: width must be positive", ErrInvalidParams)
	case p.Height <= 0:
		return fmt.Errorf("%w: height must be positive", ErrInvalidParams)
	case p.MineCount < 0:
		return fmt.Errorf("%w: mine count must not be negative", ErrInvalidParams)
	case p.MineCount > p.Width*p.Height:
		return fmt.Errorf(
			"%w: %d mines do not fit on a %dx%d grid",
			ErrInvalidParams, p.MineCount, p.Width, p.Height,
		)
	}
	return nil
}

// Clamp forces width and height to at least 1 and the mine count into
// [0, width*height].
func (p GameParams) Clamp() GameParams {
	p.Width = max(p.Width, 1)
	p.Height = max(p.Height, 1)
	p.MineCount = min(max(p.MineCount, 0), p.Width*p.Height)
	return p
}

func (p GameParams) PointInBounds(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}
