package simdj

import "fmt"

// NodeTag is the tagged-union discriminant of a Node, matching spec.md
// §3.3's Node variants exactly. Using a tag plus inline payload fields
// (rather than an interface per variant) keeps nodes cache-local and
// allows the common scalar cases to avoid any further indirection.
type NodeTag uint8

const (
	TagNull NodeTag = iota
	TagBool
	TagI64
	TagU64
	TagF64
	TagRawNumber
	TagStr
	TagArray
	TagObject
)

func (t NodeTag) String() string {
	switch t {
	case TagNull:
		return "null"
	case TagBool:
		return "bool"
	case TagI64:
		return "i64"
	case TagU64:
		return "u64"
	case TagF64:
		return "f64"
	case TagRawNumber:
		return "rawnumber"
	case TagStr:
		return "string"
	case TagArray:
		return "array"
	case TagObject:
		return "object"
	}
	return "unknown"
}

// kv is one member of an Object node: a decoded key and the arena index of
// its value. Keys are not deduplicated: spec.md §4.6/§4.7 requires
// last-occurrence-wins on lookup with all occurrences retained on
// iteration, so duplicates are simply multiple kv entries with the same
// Key.
type kv struct {
	Key   []byte
	Value int
}

// Node is one element of a Document's tree, owned by exactly one Arena.
// Array/Object payloads reference child nodes that live in the same arena.
// The parser allocates a container node when the container opens, before
// any of its children, and appends each child's index to the payload as
// that child completes, so nodes do not appear in post-order in the arena.
type Node struct {
	arena  *Arena
	parent int // arena index of the parent node, -1 for the root
	tag    NodeTag

	boolV bool
	i64V  int64
	u64V  uint64
	f64V  float64
	bytes []byte // Str (decoded UTF-8) or RawNumber (exact decimal text)

	items []int // Array: child node indices, in source order
	pairs []kv  // Object: member pairs, in source order
}

// Tag returns the node's variant.
func (n *Node) Tag() NodeTag { return n.tag }

// IsNull reports whether the node is the JSON null literal.
func (n *Node) IsNull() bool { return n.tag == TagNull }

func typeMismatch(n *Node, want string) error {
	return &Error{Code: ErrTypeMismatch, Message: fmt.Sprintf("expected %s, got %s", want, n.tag)}
}

// Bool returns the node's boolean value.
func (n *Node) Bool() (bool, error) {
	if n.tag != TagBool {
		return false, typeMismatch(n, "bool")
	}
	return n.boolV, nil
}

// Int64 returns the node's exact int64 value (TagI64 only).
func (n *Node) Int64() (int64, error) {
	if n.tag != TagI64 {
		return 0, typeMismatch(n, "i64")
	}
	return n.i64V, nil
}

// Uint64 returns the node's exact uint64 value (TagU64 only).
func (n *Node) Uint64() (uint64, error) {
	if n.tag != TagU64 {
		return 0, typeMismatch(n, "u64")
	}
	return n.u64V, nil
}

// Float64 returns the node's exact float64 value (TagF64 only).
func (n *Node) Float64() (float64, error) {
	if n.tag != TagF64 {
		return 0, typeMismatch(n, "f64")
	}
	return n.f64V, nil
}

// AsFloat64 converts any numeric node (I64/U64/F64) to float64.
func (n *Node) AsFloat64() (float64, error) {
	switch n.tag {
	case TagI64:
		return float64(n.i64V), nil
	case TagU64:
		return float64(n.u64V), nil
	case TagF64:
		return n.f64V, nil
	}
	return 0, typeMismatch(n, "number")
}

// RawNumber returns the exact decimal source text of a number parsed under
// Options.ArbitraryPrecision (TagRawNumber only).
func (n *Node) RawNumber() ([]byte, error) {
	if n.tag != TagRawNumber {
		return nil, typeMismatch(n, "rawnumber")
	}
	return n.bytes, nil
}

// Str returns the node's decoded UTF-8 string content (TagStr only).
func (n *Node) Str() (string, error) {
	if n.tag != TagStr {
		return "", typeMismatch(n, "string")
	}
	return string(n.bytes), nil
}

// StrBytes returns the node's decoded UTF-8 string content without a copy
// (TagStr only). The returned slice must not be mutated.
func (n *Node) StrBytes() ([]byte, error) {
	if n.tag != TagStr {
		return nil, typeMismatch(n, "string")
	}
	return n.bytes, nil
}

// Len returns the number of elements in an Array or members in an Object.
func (n *Node) Len() (int, error) {
	switch n.tag {
	case TagArray:
		return len(n.items), nil
	case TagObject:
		return len(n.pairs), nil
	}
	return 0, typeMismatch(n, "array or object")
}

// At returns the i'th element of an Array node.
func (n *Node) At(i int) (*Node, error) {
	if n.tag != TagArray {
		return nil, typeMismatch(n, "array")
	}
	if i < 0 || i >= len(n.items) {
		return nil, &Error{Code: ErrIndexOutOfBounds, Message: fmt.Sprintf("index %d out of bounds (len %d)", i, len(n.items))}
	}
	return n.arena.node(n.items[i]), nil
}

// Elements returns all elements of an Array node as a slice of Nodes.
func (n *Node) Elements() ([]*Node, error) {
	if n.tag != TagArray {
		return nil, typeMismatch(n, "array")
	}
	out := make([]*Node, len(n.items))
	for i, idx := range n.items {
		out[i] = n.arena.node(idx)
	}
	return out, nil
}

// Get looks up key in an Object node, returning the value of the LAST
// matching member (spec.md §4.6/§4.7: duplicate keys retain last-wins
// lookup semantics). Lookup is a linear scan from the last member
// backwards, stopping at the first match; no hash
// index is built (see DESIGN.md for why: small-to-medium objects dominate
// and linear scan avoids hashing cost on the build path).
func (n *Node) Get(key string) (*Node, error) {
	if n.tag != TagObject {
		return nil, typeMismatch(n, "object")
	}
	for i := len(n.pairs) - 1; i >= 0; i-- {
		if string(n.pairs[i].Key) == key {
			return n.arena.node(n.pairs[i].Value), nil
		}
	}
	return nil, &Error{Code: ErrKeyNotFound, Message: fmt.Sprintf("key %q not found", key)}
}

// KV is one key/value pair yielded by Node.Pairs.
type KV struct {
	Key   string
	Value *Node
}

// Pairs returns all members of an Object node in source order, including
// every occurrence of a duplicated key (spec.md §4.6: "all occurrences
// retained in order on iteration").
func (n *Node) Pairs() ([]KV, error) {
	if n.tag != TagObject {
		return nil, typeMismatch(n, "object")
	}
	out := make([]KV, len(n.pairs))
	for i, p := range n.pairs {
		out[i] = KV{Key: string(p.Key), Value: n.arena.node(p.Value)}
	}
	return out, nil
}

// Document is a rooted tree of Nodes backed by a single Arena. A
// Document's lifetime equals its Arena's lifetime; dropping the Document
// (and all references derived from it) drops every Node atomically.
type Document struct {
	arena *Arena
	root  int
	opts  Options
}

// Root returns the document's root node.
func (d *Document) Root() *Node { return d.arena.node(d.root) }

// Arena exposes the backing allocator, primarily for snapshot.go and
// hash.go.
func (d *Document) Arena() *Arena { return d.arena }

// isAncestor reports whether candidateIdx is an ancestor of nodeIdx (or
// equal to it), by walking nodeIdx's parent chain. Used by the mutation
// API to refuse creating cycles.
func (d *Document) isAncestor(candidateIdx, nodeIdx int) bool {
	for idx := nodeIdx; idx >= 0; idx = d.arena.node(idx).parent {
		if idx == candidateIdx {
			return true
		}
	}
	return false
}

var errCycle = &Error{Code: ErrTypeMismatch, Message: "mutation would create a cycle: cannot insert an ancestor under its own descendant"}

// Push appends value (identified by its arena index, which must belong to
// this Document's arena) to the end of an Array node.
func (d *Document) Push(arrayIdx int, valueIdx int) error {
	arr := d.arena.node(arrayIdx)
	if arr.tag != TagArray {
		return typeMismatch(arr, "array")
	}
	if d.isAncestor(valueIdx, arrayIdx) {
		return errCycle
	}
	arr.items = append(arr.items, valueIdx)
	d.arena.node(valueIdx).parent = arrayIdx
	return nil
}

// Pop removes and returns the index of the last element of an Array node.
func (d *Document) Pop(arrayIdx int) (int, error) {
	arr := d.arena.node(arrayIdx)
	if arr.tag != TagArray {
		return -1, typeMismatch(arr, "array")
	}
	if len(arr.items) == 0 {
		return -1, &Error{Code: ErrIndexOutOfBounds, Message: "pop from empty array"}
	}
	last := arr.items[len(arr.items)-1]
	arr.items = arr.items[:len(arr.items)-1]
	return last, nil
}

// InsertArray inserts value at position i of an Array node, shifting later
// elements up by one (order-preserving).
func (d *Document) InsertArray(arrayIdx, i, valueIdx int) error {
	arr := d.arena.node(arrayIdx)
	if arr.tag != TagArray {
		return typeMismatch(arr, "array")
	}
	if i < 0 || i > len(arr.items) {
		return &Error{Code: ErrIndexOutOfBounds, Message: "insert index out of bounds"}
	}
	if d.isAncestor(valueIdx, arrayIdx) {
		return errCycle
	}
	arr.items = append(arr.items, 0)
	copy(arr.items[i+1:], arr.items[i:])
	arr.items[i] = valueIdx
	d.arena.node(valueIdx).parent = arrayIdx
	return nil
}

// RemoveArray removes the element at position i of an Array node.
// If preserveOrder is false, a swap-remove is used (O(1), reorders the
// last element into position i); if true, later elements shift down
// (O(n), preserves order).
func (d *Document) RemoveArray(arrayIdx, i int, preserveOrder bool) error {
	arr := d.arena.node(arrayIdx)
	if arr.tag != TagArray {
		return typeMismatch(arr, "array")
	}
	if i < 0 || i >= len(arr.items) {
		return &Error{Code: ErrIndexOutOfBounds, Message: "remove index out of bounds"}
	}
	if preserveOrder {
		copy(arr.items[i:], arr.items[i+1:])
		arr.items = arr.items[:len(arr.items)-1]
		return nil
	}
	last := len(arr.items) - 1
	arr.items[i] = arr.items[last]
	arr.items = arr.items[:last]
	return nil
}

// InsertObject appends a (key, valueIdx) member to an Object node.
// Duplicate keys are permitted (spec.md §4.6): the new pair is appended,
// and becomes the result of a subsequent Get(key).
func (d *Document) InsertObject(objectIdx int, key string, valueIdx int) error {
	obj := d.arena.node(objectIdx)
	if obj.tag != TagObject {
		return typeMismatch(obj, "object")
	}
	if d.isAncestor(valueIdx, objectIdx) {
		return errCycle
	}
	obj.pairs = append(obj.pairs, kv{Key: []byte(key), Value: valueIdx})
	d.arena.node(valueIdx).parent = objectIdx
	return nil
}

// RemoveObject removes all members of an Object node with the given key,
// shifting later members down (linear-scan-and-shift, per spec.md §4.7).
// Returns the number of members removed.
func (d *Document) RemoveObject(objectIdx int, key string) (int, error) {
	obj := d.arena.node(objectIdx)
	if obj.tag != TagObject {
		return 0, typeMismatch(obj, "object")
	}
	out := obj.pairs[:0]
	removed := 0
	for _, p := range obj.pairs {
		if string(p.Key) == key {
			removed++
			continue
		}
		out = append(out, p)
	}
	obj.pairs = out
	return removed, nil
}

// GetMut returns a mutable pointer to the node at idx.
func (d *Document) GetMut(idx int) *Node { return d.arena.node(idx) }

// NewValue allocates a new scalar/container node in the document's arena
// and returns its index, for building values to pass to Push/InsertArray/
// InsertObject. Arrays and objects start empty; populate them via Push/
// InsertObject using the returned index.
func (d *Document) NewValue(tag NodeTag) (int, error) {
	n := Node{tag: tag, parent: -1}
	switch tag {
	case TagArray:
		n.items = []int{}
	case TagObject:
		n.pairs = []kv{}
	}
	return d.arena.alloc(n)
}

// NewNull, NewBool, NewI64, NewU64, NewF64, NewStr allocate scalar nodes.
func (d *Document) NewNull() (int, error) { return d.arena.alloc(Node{tag: TagNull, parent: -1}) }
func (d *Document) NewBool(b bool) (int, error) {
	return d.arena.alloc(Node{tag: TagBool, boolV: b, parent: -1})
}
func (d *Document) NewI64(v int64) (int, error) {
	return d.arena.alloc(Node{tag: TagI64, i64V: v, parent: -1})
}
func (d *Document) NewU64(v uint64) (int, error) {
	return d.arena.alloc(Node{tag: TagU64, u64V: v, parent: -1})
}
func (d *Document) NewF64(v float64) (int, error) {
	return d.arena.alloc(Node{tag: TagF64, f64V: v, parent: -1})
}
func (d *Document) NewStr(s string) (int, error) {
	return d.arena.alloc(Node{tag: TagStr, bytes: []byte(s), parent: -1})
}
