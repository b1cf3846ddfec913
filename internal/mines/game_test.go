package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Log.SetLevel(logrus.DebugLevel)
	Log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	m.Run()
}

// fromLayout builds an engine from rows of '*' (mine) and '.' (safe).
func fromLayout(t *testing.T, rows ...string) *Engine {
	t.Helper()
	require.NotEmpty(t, rows)

	w, h := len(rows[0]), len(rows)
	e := &Engine{
		rnd:    rand.New(rand.NewPCG(1, 2)),
		params: GameParams{Width: w, Height: h},
		grid:   newGrid(w, h),
	}
	for y, row := range rows {
		require.Len(t, row, w, "row %d", y)
		for x, ch := range row {
			if ch == '*' {
				e.grid.cell(x, y).Kind = Mine
				e.params.MineCount++
			}
		}
	}
	e.grid.computeNumbers()
	return e
}

func revealedSet(s Snapshot) map[Point]bool {
	set := make(map[Point]bool)
	for _, c := range s.Cells {
		if c.Revealed {
			set[c.Point] = true
		}
	}
	return set
}

func TestMineCount(t *testing.T) {
	tests := []struct {
		name   string
		params GameParams
	}{
		{name: "1x1(0)", params: GameParams{Width: 1, Height: 1, MineCount: 0}},
		{name: "1x1(1)", params: GameParams{Width: 1, Height: 1, MineCount: 1}},
		{name: "3x3(9)", params: GameParams{Width: 3, Height: 3, MineCount: 9}},
		{name: "9x9(10)", params: GameParams{Width: 9, Height: 9, MineCount: 10}},
		{name: "9x9(80)", params: GameParams{Width: 9, Height: 9, MineCount: 80}},
		{name: "16x16(40)", params: GameParams{Width: 16, Height: 16, MineCount: 40}},
		{name: "30x16(99)", params: GameParams{Width: 30, Height: 16, MineCount: 99}},
		{name: "30x16(480)", params: GameParams{Width: 30, Height: 16, MineCount: 480}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := New(test.params, rand.New(rand.NewPCG(1, 2)))
			for range 20 {
				assert.Equal(t, test.params.MineCount, e.grid.mines())
				assert.Equal(t, InProgress, e.Phase())
				e.Restart()
			}
		})
	}
}

func TestNewGameClampsParams(t *testing.T) {
	tests := []struct {
		name string
		in   GameParams
		want GameParams
	}{
		{"too many mines", GameParams{3, 3, 20}, GameParams{3, 3, 9}},
		{"negative mines", GameParams{3, 3, -4}, GameParams{3, 3, 0}},
		{"zero size", GameParams{0, -2, 5}, GameParams{1, 1, 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e := New(test.in, rand.New(rand.NewPCG(1, 2)))
			assert.Equal(t, test.want, e.Params())
			assert.Equal(t, test.want.MineCount, e.grid.mines())
		})
	}
}

type constSource uint64

func (s constSource) Uint64() uint64 { return uint64(s) }

func TestPlaceMinesProbesForward(t *testing.T) {
	t.Run("collisions fill row-major", func(t *testing.T) {
		// every draw lands on 0,0
		g := newGrid(4, 4)
		g.placeMines(5, rand.New(constSource(0)))
		for i, c := range g.cells {
			assert.Equal(t, i < 5, c.Kind == Mine, "cell %v", c.Point)
		}
	})

	t.Run("collisions wrap to the first row", func(t *testing.T) {
		// every draw lands on 3,3
		g := newGrid(4, 4)
		g.placeMines(3, rand.New(constSource(^uint64(0))))
		mined := []Point{}
		for _, c := range g.cells {
			if c.Kind == Mine {
				mined = append(mined, c.Point)
			}
		}
		assert.Equal(t, []Point{{0, 0}, {1, 0}, {3, 3}}, mined)
	})

	t.Run("full grid", func(t *testing.T) {
		g := newGrid(4, 4)
		g.placeMines(16, rand.New(constSource(0)))
		assert.Equal(t, 16, g.mines())
	})
}

func TestProbe(t *testing.T) {
	g := newGrid(3, 2)
	g.cell(2, 0).Kind = Mine
	g.cell(0, 1).Kind = Mine
	x, y := g.probe(2, 0)
	assert.Equal(t, Point{1, 1}, Point{x, y})

	g = newGrid(2, 2)
	g.cell(1, 1).Kind = Mine
	g.cell(0, 0).Kind = Mine
	x, y = g.probe(1, 1)
	assert.Equal(t, Point{1, 0}, Point{x, y})

	g = newGrid(2, 1)
	g.cell(0, 0).Kind = Mine
	g.cell(1, 0).Kind = Mine
	assert.Panics(t, func() { g.probe(0, 0) })
}

func TestNumbers(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for _, params := range []GameParams{
		{Width: 1, Height: 1, MineCount: 0},
		{Width: 5, Height: 1, MineCount: 2},
		{Width: 9, Height: 9, MineCount: 10},
		{Width: 16, Height: 16, MineCount: 40},
		{Width: 30, Height: 16, MineCount: 170},
	} {
		e := New(params, r)
		s := e.Snapshot()
		for _, c := range s.Cells {
			if c.Kind == Mine {
				continue
			}
			want := 0
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					if n, ok := s.At(c.X+dx, c.Y+dy); ok && n.Kind == Mine {
						want++
					}
				}
			}
			require.Equal(t, want, c.Adjacent, "%s @ %v", params.Seed(), c.Point)
			if want == 0 {
				require.Equal(t, Empty, c.Kind)
			} else {
				require.Equal(t, Numbered, c.Kind)
			}
		}
	}
}

func TestAtOutOfBounds(t *testing.T) {
	e := fromLayout(t, "..", "..")
	for _, p := range []Point{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		c, ok := e.At(p.X, p.Y)
		assert.False(t, ok)
		assert.Equal(t, Invalid, c.Kind)
		assert.Equal(t, p, c.Point)
	}
	c, ok := e.At(1, 1)
	assert.True(t, ok)
	assert.Equal(t, Point{1, 1}, c.Point)
}

// expectedFlood computes the cells a reveal at p must open: the
// orthogonally connected empty region containing p and its numbered rim.
func expectedFlood(s Snapshot, p Point) map[Point]bool {
	want := map[Point]bool{p: true}
	stack := []Point{p}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c, _ := s.At(cur.X, cur.Y)
		if c.Kind != Empty {
			continue
		}
		for _, d := range []Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n, ok := s.At(cur.X+d.X, cur.Y+d.Y)
			if !ok || n.Kind == Mine || want[n.Point] {
				continue
			}
			want[n.Point] = true
			stack = append(stack, n.Point)
		}
	}
	return want
}

func TestFloodClosure(t *testing.T) {
	e := fromLayout(t,
		"......",
		"..*...",
		"......",
		"****..",
		"......",
	)
	before := e.Snapshot()
	require.True(t, e.Reveal(5, 0))

	after := e.Snapshot()
	assert.Equal(t, expectedFlood(before, Point{5, 0}), revealedSet(after))
	for _, c := range after.Cells {
		if c.Kind == Mine {
			assert.False(t, c.Revealed)
		}
	}
	// the region runs down the right edge but not around the mines
	c, _ := after.At(5, 4)
	assert.True(t, c.Revealed)
	c, _ = after.At(0, 4)
	assert.False(t, c.Revealed)
	assert.Equal(t, InProgress, e.Phase())
}

func TestFloodClosureRandom(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		e := New(GameParams{Width: 16, Height: 16, MineCount: 40}, r)
		s := e.Snapshot()
		var start *Cell
		for i := range s.Cells {
			if s.Cells[i].Kind == Empty {
				start = &s.Cells[i]
				break
			}
		}
		if start == nil {
			continue
		}
		require.True(t, e.Reveal(start.X, start.Y))
		if e.Phase() == Won {
			continue
		}
		require.Equal(t, expectedFlood(s, start.Point), revealedSet(e.Snapshot()))
	}
}

func TestFloodLargeGrid(t *testing.T) {
	e := New(GameParams{Width: 1000, Height: 1000}, rand.New(rand.NewPCG(1, 2)))
	require.True(t, e.Reveal(500, 500))
	assert.Equal(t, Won, e.Phase())
	assert.Len(t, revealedSet(e.Snapshot()), 1000*1000)
}

func TestFloodClearsFlags(t *testing.T) {
	e := fromLayout(t,
		"....",
		"....",
		"...*",
	)
	require.True(t, e.ToggleFlag(0, 2))
	require.True(t, e.Reveal(0, 0))

	c, _ := e.At(0, 2)
	assert.True(t, c.Revealed)
	assert.False(t, c.Flagged)
	assert.Equal(t, Won, e.Phase())
}

func TestRevealNumberedCell(t *testing.T) {
	e := fromLayout(t,
		"*..",
		"...",
		"...",
	)
	require.True(t, e.Reveal(1, 1))
	assert.Equal(t, map[Point]bool{{1, 1}: true}, revealedSet(e.Snapshot()))
	assert.Equal(t, InProgress, e.Phase())
}

func TestExplode(t *testing.T) {
	e := fromLayout(t,
		"*..*",
		"....",
		".*..",
	)
	require.True(t, e.ToggleFlag(3, 0))
	require.True(t, e.Reveal(2, 1))
	before := e.Snapshot()

	require.True(t, e.Reveal(1, 2))
	assert.Equal(t, Lost, e.Phase())

	after := e.Snapshot()
	exploded := 0
	for i, c := range after.Cells {
		if c.Kind == Mine {
			assert.True(t, c.Revealed, "mine %v", c.Point)
			if c.Exploded {
				exploded++
				assert.Equal(t, Point{1, 2}, c.Point)
			}
			continue
		}
		assert.Equal(t, before.Cells[i], c, "safe cell %v changed", c.Point)
	}
	assert.Equal(t, 1, exploded)

	flagged, _ := e.At(3, 0)
	assert.True(t, flagged.Flagged)
	assert.False(t, flagged.Exploded)
}

func TestWin(t *testing.T) {
	e := fromLayout(t,
		"*.",
		"..",
	)
	require.True(t, e.Reveal(1, 0))
	require.True(t, e.Reveal(0, 1))
	assert.Equal(t, InProgress, e.Phase())

	require.True(t, e.Reveal(1, 1))
	assert.Equal(t, Won, e.Phase())

	mine, _ := e.At(0, 0)
	assert.True(t, mine.Flagged)
	assert.False(t, mine.Revealed)
}

func TestWinWithoutMines(t *testing.T) {
	e := New(GameParams{Width: 7, Height: 3}, nil)
	require.True(t, e.Reveal(6, 2))
	assert.Equal(t, Won, e.Phase())
}

func TestNoOps(t *testing.T) {
	e := fromLayout(t,
		"*...",
		"....",
		"...*",
	)
	require.True(t, e.Reveal(2, 1))
	require.True(t, e.ToggleFlag(0, 0))
	before := e.Snapshot()

	tests := []struct {
		name string
		op   func() bool
	}{
		{"reveal out of bounds", func() bool { return e.Reveal(-1, 0) }},
		{"reveal past width", func() bool { return e.Reveal(4, 0) }},
		{"reveal past height", func() bool { return e.Reveal(0, 3) }},
		{"reveal revealed", func() bool { return e.Reveal(2, 1) }},
		{"reveal flagged", func() bool { return e.Reveal(0, 0) }},
		{"flag out of bounds", func() bool { return e.ToggleFlag(9, 9) }},
		{"flag revealed", func() bool { return e.ToggleFlag(2, 1) }},
		{"chord hidden", func() bool { return e.Chord(3, 0) }},
		{"chord without flags", func() bool { return e.Chord(2, 1) }},
		{"chord out of bounds", func() bool { return e.Chord(-5, 1) }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.False(t, test.op())
			assert.Equal(t, before, e.Snapshot())
		})
	}
}

func TestNothingAfterGameOver(t *testing.T) {
	e := fromLayout(t,
		"*..",
		"...",
	)
	require.True(t, e.Reveal(0, 0))
	require.Equal(t, Lost, e.Phase())
	before := e.Snapshot()

	assert.False(t, e.Reveal(2, 1))
	assert.False(t, e.ToggleFlag(2, 1))
	assert.False(t, e.Forfeit())
	assert.Equal(t, before, e.Snapshot())
}

func TestNothingAfterWin(t *testing.T) {
	e := fromLayout(t,
		"*.",
		"..",
	)
	require.True(t, e.Reveal(1, 0))
	require.True(t, e.Reveal(0, 1))
	require.True(t, e.Reveal(1, 1))
	require.Equal(t, Won, e.Phase())
	before := e.Snapshot()

	tests := []struct {
		name string
		op   func() bool
	}{
		{"unflag mine", func() bool { return e.ToggleFlag(0, 0) }},
		{"reveal mine", func() bool { return e.Reveal(0, 0) }},
		{"chord", func() bool { return e.Chord(1, 1) }},
		{"forfeit", e.Forfeit},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.False(t, test.op())
			assert.Equal(t, Won, e.Phase())
			assert.Equal(t, before, e.Snapshot())
		})
	}
}

func TestRestart(t *testing.T) {
	params := GameParams{Width: 9, Height: 9, MineCount: 10}
	e := New(params, rand.New(rand.NewPCG(1, 2)))

	for _, c := range e.Snapshot().Cells {
		if c.Kind == Mine {
			e.Reveal(c.X, c.Y)
			break
		}
	}
	require.Equal(t, Lost, e.Phase())

	e.NewGame(params)
	assert.Equal(t, InProgress, e.Phase())
	s := e.Snapshot()
	assert.Equal(t, 0, s.Flags)
	for _, c := range s.Cells {
		assert.False(t, c.Revealed || c.Flagged || c.Exploded, "cell %v", c.Point)
	}
	assert.Equal(t, 10, e.grid.mines())
}

func TestChord(t *testing.T) {
	e := fromLayout(t,
		"*...",
		"....",
		"....",
	)
	require.True(t, e.Reveal(1, 1))
	assert.False(t, e.Chord(1, 1), "no flags yet")

	require.True(t, e.ToggleFlag(0, 0))
	require.True(t, e.Chord(1, 1))
	assert.Equal(t, Won, e.Phase())
}

func TestChordWrongFlagExplodes(t *testing.T) {
	e := fromLayout(t,
		"*..",
		"...",
		"...",
	)
	require.True(t, e.Reveal(1, 1))
	require.True(t, e.ToggleFlag(2, 2))
	require.True(t, e.Chord(1, 1))
	assert.Equal(t, Lost, e.Phase())

	mine, _ := e.At(0, 0)
	assert.True(t, mine.Exploded)
}

func TestForfeit(t *testing.T) {
	e := fromLayout(t,
		"*..",
		"..*",
	)
	require.True(t, e.Forfeit())
	assert.Equal(t, Lost, e.Phase())
	for _, c := range e.Snapshot().Cells {
		assert.Equal(t, c.Kind == Mine, c.Revealed)
		assert.False(t, c.Exploded)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	e := fromLayout(t, "..", ".*")
	s := e.Snapshot()
	s.Cells[0].Revealed = true
	c, _ := e.At(0, 0)
	assert.False(t, c.Revealed)
}

func TestPhaseText(t *testing.T) {
	for _, p := range []Phase{InProgress, Won, Lost} {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var back Phase
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}
	var p Phase
	assert.Error(t, p.UnmarshalText([]byte("paused")))
}
