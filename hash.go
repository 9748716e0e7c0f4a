package simdj

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// Hash returns a content hash of the document's value, stable across
// different source byte sequences that decode to the same value (e.g.
// differing whitespace, or numbers spelled differently but equal in
// value and Kind), but sensitive to key order within an object. Hash does
// not consult Options; SortKeys affects serialization only.
func (d *Document) Hash() uint64 {
	h := xxh3.New()
	hashNode(h, d.Root())
	return h.Sum64()
}

// Hash returns a content hash of this node alone, with the same stability
// properties as Document.Hash.
func (n *Node) Hash() uint64 {
	h := xxh3.New()
	hashNode(h, n)
	return h.Sum64()
}

func hashNode(h *xxh3.Hasher, n *Node) {
	var tagByte [1]byte
	tagByte[0] = byte(n.tag)
	h.Write(tagByte[:])
	switch n.tag {
	case TagNull:
	case TagBool:
		if n.boolV {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	case TagI64:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(n.i64V))
		h.Write(b[:])
	case TagU64:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], n.u64V)
		h.Write(b[:])
	case TagF64:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(n.f64V))
		h.Write(b[:])
	case TagRawNumber, TagStr:
		h.Write(n.bytes)
	case TagArray:
		var lenB [4]byte
		binary.LittleEndian.PutUint32(lenB[:], uint32(len(n.items)))
		h.Write(lenB[:])
		for _, idx := range n.items {
			hashNode(h, n.arena.node(idx))
		}
	case TagObject:
		var lenB [4]byte
		binary.LittleEndian.PutUint32(lenB[:], uint32(len(n.pairs)))
		h.Write(lenB[:])
		for _, p := range n.pairs {
			h.Write(p.Key)
			hashNode(h, n.arena.node(p.Value))
		}
	}
}
