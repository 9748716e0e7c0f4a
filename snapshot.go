package simdj

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// Snapshot serializes a Document's arena into a compact binary form that
// can be restored without re-tokenizing the original JSON text. Node
// indices are preserved verbatim, so Document.root and every Array/Object
// reference remain valid across a round trip.
//
// The wire format is a flat, length-prefixed record per node (tag byte,
// parent index, then tag-specific payload), optionally compressed per
// CompressMode, adapted from parsed_serialize.go's "serialize the tape plus
// a string buffer, then compress the block" approach but keyed on the Arena
// rather than a uint64 tape.
const snapshotMagic = "SMDJ1\x00"

// CompressMode selects the codec SaveSnapshotMode applies to the record
// stream, mirroring parsed_serialize.go's CompressMode/blockType scheme.
type CompressMode uint8

const (
	// CompressNone stores the record stream uncompressed.
	CompressNone CompressMode = iota

	// CompressFast applies s2's plain (non-better) compression: light
	// compression at minimal CPU cost.
	CompressFast

	// CompressDefault applies zstd compression: smaller output than
	// CompressFast at higher CPU cost, the default for SaveSnapshot.
	CompressDefault
)

// SaveSnapshot serializes doc using CompressDefault.
func SaveSnapshot(doc *Document) ([]byte, error) {
	return SaveSnapshotMode(doc, CompressDefault)
}

// SaveSnapshotMode serializes doc's arena, compressing the record stream
// per mode.
func SaveSnapshotMode(doc *Document, mode CompressMode) ([]byte, error) {
	var raw bytes.Buffer
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(doc.arena.Len()))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(doc.root))
	raw.Write(hdr[:])

	for i := 0; i < doc.arena.Len(); i++ {
		n := doc.arena.node(i)
		if err := writeSnapshotNode(&raw, n); err != nil {
			return nil, err
		}
	}

	payload, err := compressBlock(mode, raw.Bytes())
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.WriteString(snapshotMagic)
	out.WriteByte(byte(mode))
	out.Write(payload)
	return out.Bytes(), nil
}

// compressBlock applies mode's codec to raw, matching
// parsed_serialize.go's encBlock dispatch.
func compressBlock(mode CompressMode, raw []byte) ([]byte, error) {
	switch mode {
	case CompressNone:
		return raw, nil
	case CompressFast:
		var buf bytes.Buffer
		enc := s2.NewWriter(&buf)
		if _, err := enc.Write(raw); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressDefault:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil), nil
	}
	return nil, &Error{Code: ErrTypeMismatch, Message: "unknown compression mode"}
}

// decompressBlock reverses compressBlock.
func decompressBlock(mode CompressMode, payload []byte) ([]byte, error) {
	switch mode {
	case CompressNone:
		return payload, nil
	case CompressFast:
		dec := s2.NewReader(bytes.NewReader(payload))
		return io.ReadAll(dec)
	case CompressDefault:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(payload, nil)
	}
	return nil, &Error{Code: ErrTypeMismatch, Message: "unknown compression mode"}
}

func writeSnapshotNode(w *bytes.Buffer, n *Node) error {
	w.WriteByte(byte(n.tag))
	writeInt32(w, int32(n.parent))
	switch n.tag {
	case TagNull:
	case TagBool:
		if n.boolV {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
	case TagI64:
		writeInt64(w, n.i64V)
	case TagU64:
		writeUint64(w, n.u64V)
	case TagF64:
		writeUint64(w, math.Float64bits(n.f64V))
	case TagRawNumber, TagStr:
		writeBytes(w, n.bytes)
	case TagArray:
		writeInt32(w, int32(len(n.items)))
		for _, idx := range n.items {
			writeInt32(w, int32(idx))
		}
	case TagObject:
		writeInt32(w, int32(len(n.pairs)))
		for _, p := range n.pairs {
			writeBytes(w, p.Key)
			writeInt32(w, int32(p.Value))
		}
	default:
		return &Error{Code: ErrTypeMismatch, Message: "unknown node tag in snapshot"}
	}
	return nil
}

func writeInt32(w *bytes.Buffer, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	w.Write(b[:])
}

func writeInt64(w *bytes.Buffer, v int64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(v))
	w.Write(b[:])
}

func writeUint64(w *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.Write(b[:])
}

func writeBytes(w *bytes.Buffer, b []byte) {
	writeInt32(w, int32(len(b)))
	w.Write(b)
}

// LoadSnapshot restores a Document previously produced by SaveSnapshot or
// SaveSnapshotMode, auto-detecting the compression mode from the stored
// header byte.
func LoadSnapshot(data []byte) (*Document, error) {
	if len(data) < len(snapshotMagic)+1 || string(data[:len(snapshotMagic)]) != snapshotMagic {
		return nil, &Error{Code: ErrTypeMismatch, Message: "not a simdj snapshot"}
	}
	mode := CompressMode(data[len(snapshotMagic)])
	raw, err := decompressBlock(mode, data[len(snapshotMagic)+1:])
	if err != nil {
		return nil, fmt.Errorf("simdj: corrupt snapshot: %w", err)
	}
	r := bytes.NewReader(raw)
	var hdr [8]byte
	if _, err := r.Read(hdr[:]); err != nil {
		return nil, err
	}
	count := int(binary.LittleEndian.Uint32(hdr[0:4]))
	root := int(binary.LittleEndian.Uint32(hdr[4:8]))

	arena := newArenaWithCapacity(count)
	for i := 0; i < count; i++ {
		n, err := readSnapshotNode(r)
		if err != nil {
			return nil, err
		}
		if _, err := arena.alloc(n); err != nil {
			return nil, err
		}
	}
	return &Document{arena: arena, root: root, opts: DefaultOptions()}, nil
}

func readSnapshotNode(r *bytes.Reader) (Node, error) {
	tagByte, err := r.ReadByte()
	if err != nil {
		return Node{}, err
	}
	n := Node{tag: NodeTag(tagByte)}
	n.parent = int(readInt32(r))
	switch n.tag {
	case TagNull:
	case TagBool:
		b, _ := r.ReadByte()
		n.boolV = b != 0
	case TagI64:
		n.i64V = readInt64(r)
	case TagU64:
		n.u64V = readUint64(r)
	case TagF64:
		n.f64V = math.Float64frombits(readUint64(r))
	case TagRawNumber, TagStr:
		n.bytes = readBytes(r)
	case TagArray:
		count := int(readInt32(r))
		n.items = make([]int, count)
		for i := range n.items {
			n.items[i] = int(readInt32(r))
		}
	case TagObject:
		count := int(readInt32(r))
		n.pairs = make([]kv, count)
		for i := range n.pairs {
			n.pairs[i] = kv{Key: readBytes(r), Value: int(readInt32(r))}
		}
	default:
		return Node{}, &Error{Code: ErrTypeMismatch, Message: "unknown node tag in snapshot"}
	}
	return n, nil
}

func readInt32(r *bytes.Reader) int32 {
	var b [4]byte
	r.Read(b[:])
	return int32(binary.LittleEndian.Uint32(b[:]))
}

func readInt64(r *bytes.Reader) int64 {
	var b [8]byte
	r.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]))
}

func readUint64(r *bytes.Reader) uint64 {
	var b [8]byte
	r.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}

func readBytes(r *bytes.Reader) []byte {
	n := readInt32(r)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	r.Read(out)
	return out
}
