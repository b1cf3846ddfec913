package mines

// celltodo is a FIFO of cell indices linked through next. An index may
// only be queued once per fill; flood guarantees that by revealing a cell
// before queueing it.
type celltodo struct {
	next       []int
	head, tail int
}

func newCelltodo(size int) *celltodo {
	return &celltodo{next: make([]int, size), head: -1, tail: -1}
}

func (std *celltodo) add(i int) {
	if std.tail >= 0 {
		std.next[std.tail] = i
	} else {
		std.head = i
	}
	std.tail = i
	std.next[i] = -1
}

func (std *celltodo) pop() (int, bool) {
	if std.head < 0 {
		return 0, false
	}
	i := std.head
	std.head = std.next[i]
	if std.head < 0 {
		std.tail = -1
	}
	return i, true
}

// flood opens x,y and, through empty cells, every orthogonally connected
// empty cell plus the numbered cells bordering them. Mines stop the fill.
// Flags on opened cells are dropped. Returns the number of cells opened.
func (g *Grid) flood(x, y int) (opened int) {
	todo := newCelltodo(len(g.cells))

	visit := func(x, y int) {
		if !g.InBounds(x, y) {
			return
		}
		c := g.cell(x, y)
		if c.Revealed || c.Kind == Mine {
			return
		}
		c.Revealed = true
		c.Flagged = false
		opened++
		todo.add(y*g.width + x)
	}

	visit(x, y)
	for i, ok := todo.pop(); ok; i, ok = todo.pop() {
		c := g.cells[i]
		if c.Kind != Empty {
			continue
		}
		visit(c.X+1, c.Y)
		visit(c.X-1, c.Y)
		visit(c.X, c.Y+1)
		visit(c.X, c.Y-1)
	}
	return
}
