package mines

import (
	"iter"
	"math/rand/v2"
)

// Grid is a row-major buffer of cells, indexed by y*width+x.
type Grid struct {
	width, height int
	cells         []Cell
}

func newGrid(width, height int) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
	for y := range height {
		for x := range width {
			g.cells[y*width+x] = Cell{Point: Point{x, y}, Kind: Empty}
		}
	}
	return g
}

func (g *Grid) InBounds(x, y int) bool {
	return 0 <= x && x < g.width && 0 <= y && y < g.height
}

// At returns the cell at x,y. Out-of-bounds coordinates yield an Invalid
// cell and false.
func (g *Grid) At(x, y int) (Cell, bool) {
	if !g.InBounds(x, y) {
		return Cell{Point: Point{x, y}, Kind: Invalid}, false
	}
	return g.cells[y*g.width+x], true
}

// cell must only be called with in-bounds coordinates.
func (g *Grid) cell(x, y int) *Cell {
	return &g.cells[y*g.width+x]
}

// around yields the in-bounds Moore neighbourhood of x,y.
func (g *Grid) around(x, y int) iter.Seq[*Cell] {
	return func(yield func(*Cell) bool) {
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				xx, yy := x+dx, y+dy
				if !g.InBounds(xx, yy) {
					continue
				}
				if !yield(g.cell(xx, yy)) {
					return
				}
			}
		}
	}
}

// placeMines drops n mines at random. A candidate that is already mined
// is moved forward in row-major order, wrapping past the last cell, so
// exactly n distinct cells end up mined. n must not exceed the cell count.
func (g *Grid) placeMines(n int, r *rand.Rand) {
	for range n {
		x := r.IntN(g.width)
		y := r.IntN(g.height)
		x, y = g.probe(x, y)
		g.cell(x, y).Kind = Mine
	}
}

// panics [AssertionError]
func (g *Grid) probe(x, y int) (int, int) {
	for steps := 0; g.cell(x, y).Kind == Mine; steps++ {
		if steps >= len(g.cells) {
			panic(AssertionError{"no free cell left for a mine"})
		}
		x++
		if x >= g.width {
			x = 0
			y++
			if y >= g.height {
				y = 0
			}
		}
	}
	return x, y
}

func (g *Grid) computeNumbers() {
	for i := range g.cells {
		c := &g.cells[i]
		if c.Kind == Mine {
			continue
		}
		c.Adjacent = 0
		for n := range g.around(c.X, c.Y) {
			if n.Kind == Mine {
				c.Adjacent++
			}
		}
		if c.Adjacent > 0 {
			c.Kind = Numbered
		} else {
			c.Kind = Empty
		}
	}
}

func (g *Grid) mines() (count int) {
	for _, c := range g.cells {
		if c.Kind == Mine {
			count++
		}
	}
	return
}
