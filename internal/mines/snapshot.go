package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type CellStatus int8

const (
	Unknown       CellStatus = -2
	Flag          CellStatus = -1
	CorrectFlag   CellStatus = 64 // post-game-over
	ExplodedMine  CellStatus = 65
	WrongFlag     CellStatus = 66
	UnflaggedMine CellStatus = 67
	// 0-8 for a revealed safe cell with given number of mined neighbors
)

func (s CellStatus) String() string {
	switch s {
	case Unknown:
		return "."
	case Flag:
		return "*"
	case CorrectFlag:
		return "+"
	case ExplodedMine:
		return "!"
	case WrongFlag:
		return "x"
	case UnflaggedMine:
		return "@"
	case 0, 1, 2, 3, 4, 5, 6, 7, 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

// Status is what a player may know about c during the given phase.
func (c Cell) Status(phase Phase) CellStatus {
	switch {
	case c.Exploded:
		return ExplodedMine
	case c.Flagged && phase.Over() && c.Kind == Mine:
		return CorrectFlag
	case c.Flagged && phase.Over():
		return WrongFlag
	case c.Flagged:
		return Flag
	case c.Revealed && c.Kind == Mine:
		return UnflaggedMine
	case c.Revealed:
		return CellStatus(c.Adjacent)
	default:
		return Unknown
	}
}

type Snapshot struct {
	GameParams
	Phase Phase
	Flags int
	Cells []Cell // row-major
}

func (s Snapshot) At(x, y int) (Cell, bool) {
	if !s.PointInBounds(x, y) {
		return Cell{Point: Point{x, y}, Kind: Invalid}, false
	}
	return s.Cells[y*s.Width+x], true
}

// Statuses is the player view of the grid, row-major.
func (s Snapshot) Statuses() []CellStatus {
	statuses := make([]CellStatus, len(s.Cells))
	for i, c := range s.Cells {
		statuses[i] = c.Status(s.Phase)
	}
	return statuses
}

func (s Snapshot) String() string {
	var b strings.Builder
	for i, status := range s.Statuses() {
		fmt.Fprint(&b, status.String())
		if (i+1)%s.Width == 0 {
			fmt.Fprint(&b, "\n")
		} else {
			fmt.Fprint(&b, " ")
		}
	}
	return b.String()
}
