package mines

import (
	"encoding"
	"fmt"
	"hash/maphash"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Phase int8

const (
	InProgress Phase = iota
	Won
	Lost
)

var (
	_ encoding.TextMarshaler   = Phase(0)
	_ encoding.TextUnmarshaler = (*Phase)(nil)
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("Phase(%d)", int8(p))
	}
}

func (p Phase) Over() bool {
	return p != InProgress
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*p = InProgress
	case "won":
		*p = Won
	case "lost":
		*p = Lost
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// Engine runs one game round at a time. It is not safe for concurrent
// use; every method runs to completion on the caller's goroutine.
//
// Invalid input never fails: Reveal, ToggleFlag, Chord and Forfeit
// report whether they changed anything.
type Engine struct {
	params GameParams
	grid   *Grid
	phase  Phase
	rnd    *rand.Rand
}

// New creates an engine and starts its first game. A nil r is replaced by
// a randomly seeded source.
func New(params GameParams, r *rand.Rand) *Engine {
	if r == nil {
		r = NewRand()
	}
	e := &Engine{rnd: r}
	e.NewGame(params)
	return e
}

// NewGame discards the current grid and deals a fresh one. Params are
// clamped, so an oversized mine count fills the grid instead of failing.
func (e *Engine) NewGame(params GameParams) {
	clamped := params.Clamp()
	if clamped != params {
		Log.WithFields(logrus.Fields{
			"requested": params.Seed(),
			"clamped":   clamped.Seed(),
		}).Debug("clamped game params")
	}

	w, h, mc := clamped.Unpack()
	e.params = clamped
	e.phase = InProgress
	e.grid = newGrid(w, h)
	e.grid.placeMines(mc, e.rnd)
	e.grid.computeNumbers()

	Log.WithField("params", clamped.Seed()).Debug("new game")
}

// Restart deals a new grid with the current params.
func (e *Engine) Restart() {
	e.NewGame(e.params)
}

func (e *Engine) Params() GameParams {
	return e.params
}

func (e *Engine) Phase() Phase {
	return e.phase
}

// At returns a copy of the cell at x,y; see [Grid.At].
func (e *Engine) At(x, y int) (Cell, bool) {
	return e.grid.At(x, y)
}

// Reveal opens the cell at x,y. Nothing happens when the game is over,
// the coordinates are out of bounds, or the cell is revealed or flagged.
func (e *Engine) Reveal(x, y int) bool {
	if e.phase != InProgress || !e.grid.InBounds(x, y) {
		return false
	}
	c := e.grid.cell(x, y)
	if c.Revealed || c.Flagged {
		return false
	}

	switch c.Kind {
	case Mine:
		e.explode(c)
	case Empty:
		opened := e.grid.flood(x, y)
		Log.WithFields(logrus.Fields{"x": x, "y": y, "opened": opened}).Trace("flood")
		e.checkWin()
	default:
		c.Revealed = true
		e.checkWin()
	}
	return true
}

// ToggleFlag flips the flag on a hidden cell of a game in progress.
func (e *Engine) ToggleFlag(x, y int) bool {
	if e.phase != InProgress || !e.grid.InBounds(x, y) {
		return false
	}
	c := e.grid.cell(x, y)
	if c.Revealed {
		return false
	}
	c.Flagged = !c.Flagged
	return true
}

// Chord opens every hidden, unflagged neighbour of a revealed numbered
// cell once the flags around it match its number. It stops at the first
// reveal that ends the game.
func (e *Engine) Chord(x, y int) bool {
	if e.phase != InProgress || !e.grid.InBounds(x, y) {
		return false
	}
	c := e.grid.cell(x, y)
	if !c.Revealed || c.Kind != Numbered {
		return false
	}

	flags := 0
	hidden := make([]Point, 0, 8)
	for n := range e.grid.around(x, y) {
		if n.Flagged {
			flags++
		} else if !n.Revealed {
			hidden = append(hidden, n.Point)
		}
	}
	if flags != c.Adjacent || len(hidden) == 0 {
		return false
	}

	for _, p := range hidden {
		e.Reveal(p.X, p.Y)
		if e.phase.Over() {
			break
		}
	}
	return true
}

// Forfeit ends a game in progress as lost and shows every mine. No cell
// is marked exploded.
func (e *Engine) Forfeit() bool {
	if e.phase != InProgress {
		return false
	}
	e.phase = Lost
	e.revealMines()
	return true
}

func (e *Engine) explode(hit *Cell) {
	e.phase = Lost
	hit.Exploded = true
	e.revealMines()
	Log.WithFields(logrus.Fields{"x": hit.X, "y": hit.Y}).Debug("mine exploded")
}

// revealMines keeps existing flags so a renderer can tell correct flags
// from missed mines.
func (e *Engine) revealMines() {
	for i := range e.grid.cells {
		if e.grid.cells[i].Kind == Mine {
			e.grid.cells[i].Revealed = true
		}
	}
}

func (e *Engine) checkWin() {
	for _, c := range e.grid.cells {
		if c.Kind != Mine && !c.Revealed {
			return
		}
	}

	e.phase = Won
	for i := range e.grid.cells {
		if e.grid.cells[i].Kind == Mine {
			e.grid.cells[i].Flagged = true
		}
	}
	Log.WithField("params", e.params.Seed()).Debug("game won")
}

// Snapshot returns a deep copy of the current round.
func (e *Engine) Snapshot() Snapshot {
	cells := make([]Cell, len(e.grid.cells))
	copy(cells, e.grid.cells)
	flags := 0
	for _, c := range cells {
		if c.Flagged {
			flags++
		}
	}
	return Snapshot{
		GameParams: e.params,
		Phase:      e.phase,
		Flags:      flags,
		Cells:      cells,
	}
}
