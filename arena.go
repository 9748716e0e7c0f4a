package simdj

// Arena is an append-only bump allocator for Nodes. It is pre-sized to the
// maximum number of value nodes a syntactically valid JSON document of a
// given length could ever contain (spec.md §4.7: ceil(L/2)+2, since the
// densest shape is an array of single-digit numbers like [1,1,1,...]) and
// never reallocates: exceeding that bound can only happen on malformed
// input (or a caller inserting far more nodes than the source text could
// justify), and is reported as ErrArenaCapacityExceeded rather than
// silently growing.
//
// Every Node allocated from an Arena is owned by it for the Arena's entire
// lifetime; there is no per-node free. Dropping all references to the
// Arena (and the Document wrapping it) drops every Node at once.
type Arena struct {
	nodes []Node
	limit int
}

// arenaCapacity computes the spec.md §4.7 scratch bound for an input of
// length n.
func arenaCapacity(n int) int {
	return (n+1)/2 + 2
}

// newArena creates an Arena pre-sized for an input of length inputLen.
func newArena(inputLen int) *Arena {
	capN := arenaCapacity(inputLen)
	return &Arena{nodes: make([]Node, 0, capN), limit: capN}
}

// newArenaWithCapacity creates an Arena with an explicit node capacity, for
// callers building a Document programmatically rather than by parsing.
func newArenaWithCapacity(capN int) *Arena {
	if capN < 2 {
		capN = 2
	}
	return &Arena{nodes: make([]Node, 0, capN), limit: capN}
}

// alloc appends n to the arena and returns its index, or
// ErrArenaCapacityExceeded if the arena is full.
func (a *Arena) alloc(n Node) (int, error) {
	if len(a.nodes) >= a.limit {
		return -1, &Error{Code: ErrArenaCapacityExceeded, Message: "arena capacity exceeded: input was malformed past the L/2+2 bound, or too many nodes were inserted"}
	}
	n.arena = a
	idx := len(a.nodes)
	a.nodes = append(a.nodes, n)
	return idx, nil
}

// node returns a pointer to the node at idx. The pointer remains valid for
// the Arena's lifetime since alloc never reallocates past the pre-sized
// capacity.
func (a *Arena) node(idx int) *Node {
	return &a.nodes[idx]
}

// Len returns the number of nodes currently allocated.
func (a *Arena) Len() int { return len(a.nodes) }

// Cap returns the arena's fixed node capacity.
func (a *Arena) Cap() int { return a.limit }
