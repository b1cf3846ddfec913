package mines

type Kind int8

const (
	// Invalid is only ever produced for out-of-bounds lookups.
	Invalid Kind = iota
	Empty
	Numbered
	Mine
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Numbered:
		return "numbered"
	case Mine:
		return "mine"
	default:
		return "invalid"
	}
}

type Point struct {
	X, Y int
}

type Cell struct {
	Point
	Kind     Kind
	Adjacent int // mines in the Moore neighbourhood, zero for mines
	Revealed bool
	Flagged  bool
	Exploded bool
}
