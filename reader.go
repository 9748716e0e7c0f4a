package simdj

// sentinelPad is the number of zero bytes guaranteed to be readable past
// the end of a Reader's buffer, so Scanner window loads never read out of
// bounds without a branch on every byte.
const sentinelPad = 64

// Reader is a byte cursor over a single materialized input buffer. It
// never mutates the caller's slice: the padding required by the Scanner's
// 64-byte window loads is held in a private scratch tail, and window loads
// that would cross into the tail are served from a small copy-on-demand
// buffer instead of the original slice.
type Reader struct {
	buf []byte // the original input, unmodified
	pos int    // current absolute offset into buf
	pad [sentinelPad]byte
}

// NewReader wraps buf for scanning. buf is retained, not copied.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// Pos returns the current absolute offset.
func (r *Reader) Pos() int { return r.pos }

// SetPos repositions the cursor to an absolute offset.
func (r *Reader) SetPos(p int) { r.pos = p }

// Buf returns the full underlying buffer (for span slicing).
func (r *Reader) Buf() []byte { return r.buf }

// Eof reports whether the cursor has consumed the entire buffer.
func (r *Reader) Eof() bool { return r.pos >= len(r.buf) }

// PeekByte returns the byte at the cursor without advancing, and whether
// one was available.
func (r *Reader) PeekByte() (byte, bool) {
	if r.pos >= len(r.buf) {
		return 0, false
	}
	return r.buf[r.pos], true
}

// PeekByteAt returns the byte at an absolute offset, treating anything at
// or past len(buf) as the zero sentinel pad (valid up to offset
// len(buf)+sentinelPad-1).
func (r *Reader) PeekByteAt(offset int) byte {
	if offset < len(r.buf) {
		return r.buf[offset]
	}
	return 0
}

// Advance moves the cursor forward n bytes.
func (r *Reader) Advance(n int) { r.pos += n }

// Window64 returns a 64-byte slice starting at the cursor, suitable for the
// Bitmap Engine. Bytes past the end of the real buffer are zero (the
// sentinel pad), and the returned slice is only valid until the next call
// to Window64 or Window64At (it may alias r.pad).
func (r *Reader) Window64() []byte {
	return r.window64At(r.pos)
}

// window64At returns a 64-byte window starting at an absolute offset, with
// the same zero-padding guarantee as Window64.
func (r *Reader) window64At(offset int) []byte {
	remain := len(r.buf) - offset
	if remain >= sentinelPad {
		return r.buf[offset : offset+sentinelPad]
	}
	for i := range r.pad {
		r.pad[i] = 0
	}
	if remain > 0 {
		copy(r.pad[:remain], r.buf[offset:])
	}
	return r.pad[:]
}

// Window64At is the exported form of window64At, used by the Scanner and
// On-Demand Getter, which address the buffer by absolute offset rather than
// through the cursor.
func (r *Reader) Window64At(offset int) []byte {
	return r.window64At(offset)
}
