package simdj

import "math/bits"

// The Scanner implements the bit-parallel skippers of spec.md §4.2 on top
// of the Bitmap Engine. All functions take an absolute byte offset into buf
// and return the offset of the first byte past whatever they skipped.

// wsCache is the mandatory whitespace-skip cache described in spec.md
// §4.2: once a 64-byte window's non-whitespace mask has been computed, a
// subsequent skipWhitespace call whose cursor still falls inside that
// window reuses the cached mask instead of reloading and recomputing it.
// This turns the common "one space between structural tokens" pattern from
// an amortized O(window) into an O(1) bit test.
type wsCache struct {
	valid bool
	start int
	bits  uint64 // bit i set iff buf[start+i] is NOT whitespace
}

// Scanner holds the small amount of state the skippers share across calls
// against a single buffer: the whitespace cache and the Reader used for
// zero-padded window loads.
type Scanner struct {
	r   *Reader
	buf []byte
	ws  wsCache
}

// NewScanner creates a Scanner over buf, reading through a Reader so every
// 64-byte window load gets the mandatory zero sentinel padding without
// requiring buf itself to be pre-padded.
func NewScanner(buf []byte) *Scanner {
	return &Scanner{r: NewReader(buf), buf: buf}
}

// window64 returns a 64-byte slice at offset, synthesizing zero padding if
// the real buffer runs out before 64 bytes are available.
func (s *Scanner) window64(offset int) []byte {
	return s.r.Window64At(offset)
}

// SkipWhitespace advances past RFC 8259 whitespace starting at pos and
// returns the offset of the first non-whitespace byte (or len(buf) if the
// input ends in whitespace).
func (s *Scanner) SkipWhitespace(pos int) int {
	if pos >= len(s.buf) {
		return pos
	}
	// Fast path (a): zero-space.
	c := s.buf[pos]
	if !isWS(c) {
		return pos
	}
	// Fast path (b): single-space.
	if pos+1 < len(s.buf) && !isWS(s.buf[pos+1]) {
		return pos + 1
	}
	// SIMD path with mandatory cache.
	for {
		if s.ws.valid && pos >= s.ws.start && pos < s.ws.start+64 {
			rel := uint(pos - s.ws.start)
			bits := s.ws.bits >> rel
			if bits != 0 {
				return pos + int(trailingZeros64(bits))
			}
			pos = s.ws.start + 64
			s.ws.valid = false
			continue
		}
		win := s.window64(pos)
		nospace := ^wsMask64(win)
		s.ws = wsCache{valid: true, start: pos, bits: nospace}
		if nospace != 0 {
			return pos + int(trailingZeros64(nospace))
		}
		pos += 64
		if pos >= len(s.buf) {
			return len(s.buf)
		}
	}
}

func isWS(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// SkipString advances past a JSON string whose opening quote is at pos
// (buf[pos] == '"') and returns the offset of the byte immediately after
// the matching unescaped closing quote. Returns -1 if no closing quote is
// found before the end of input.
func (s *Scanner) SkipString(pos int) int {
	i := pos + 1
	var prevEscaped uint64
	for i < len(s.buf) {
		win := s.window64(i)
		escStart, nextEsc := escapeMask(win, prevEscaped)
		quotes := eqMask64(win, '"')
		escapedPos := escStart << 1
		if prevEscaped&1 != 0 {
			escapedPos |= 1
		}
		unescaped := quotes &^ escapedPos
		if unescaped != 0 {
			rel := trailingZeros64(unescaped)
			return i + int(rel) + 1
		}
		prevEscaped = nextEsc
		i += 64
	}
	return -1
}

// SkipContainer advances past a JSON array or object whose opening bracket
// (left) is at pos and returns the offset of the byte immediately after the
// matching closing bracket (right). Uses the bit-parallel brace/bracket
// matching of spec.md §4.2: lbrace/rbrace counts are tracked incrementally
// so the container closes the instant rbrace count exceeds lbrace count,
// without descending recursively. Returns -1 if unterminated.
func (s *Scanner) SkipContainer(pos int, left, right byte) int {
	depth := 0
	i := pos
	var prevInString, prevEscaped uint64
	for i < len(s.buf) {
		win := s.window64(i)
		strMask, nextInStr, nextEsc := stringMask(win, prevInString, prevEscaped)
		lb := eqMask64(win, left) &^ strMask
		rb := eqMask64(win, right) &^ strMask
		merged := lb | rb
		for merged != 0 {
			p := trailingZeros64(merged)
			bit := uint64(1) << p
			if lb&bit != 0 {
				depth++
			} else {
				depth--
				if depth == 0 {
					return i + int(p) + 1
				}
			}
			merged &^= bit
		}
		prevInString, prevEscaped = nextInStr, nextEsc
		i += 64
	}
	return -1
}

// ScanNumberBody advances while the byte at pos is part of a JSON number's
// character set ({'0'..'9','+','-','.','e','E'}), performing no grammar
// validation (that is the Number Parser's job). Returns the offset of the
// first byte that is not part of the number body.
func (s *Scanner) ScanNumberBody(pos int) int {
	i := pos
	for i < len(s.buf) {
		c := s.buf[i]
		if (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E' {
			i++
			continue
		}
		break
	}
	return i
}

// SkipValue advances past a complete JSON value starting at pos (which must
// point at the value's first significant byte) and returns the offset of
// the first byte past it. It dispatches to SkipString/SkipContainer/
// ScanNumberBody/literal matching as appropriate.
func (s *Scanner) SkipValue(pos int) (int, error) {
	if pos >= len(s.buf) {
		return -1, newError(s.buf, pos, ErrExpectedValue, "unexpected end of input")
	}
	switch c := s.buf[pos]; {
	case c == '"':
		end := s.SkipString(pos)
		if end < 0 {
			return -1, newError(s.buf, pos, ErrUnterminatedString, "unterminated string")
		}
		return end, nil
	case c == '{':
		end := s.SkipContainer(pos, '{', '}')
		if end < 0 {
			return -1, newError(s.buf, pos, ErrUnterminatedString, "unterminated object")
		}
		return end, nil
	case c == '[':
		end := s.SkipContainer(pos, '[', ']')
		if end < 0 {
			return -1, newError(s.buf, pos, ErrUnterminatedString, "unterminated array")
		}
		return end, nil
	case c == '-' || (c >= '0' && c <= '9'):
		return s.ScanNumberBody(pos), nil
	case c == 't':
		return matchLiteral(s.buf, pos, "true")
	case c == 'f':
		return matchLiteral(s.buf, pos, "false")
	case c == 'n':
		return matchLiteral(s.buf, pos, "null")
	default:
		return -1, newError(s.buf, pos, ErrExpectedValue, "unexpected character %q", c)
	}
}

func matchLiteral(buf []byte, pos int, lit string) (int, error) {
	if pos+len(lit) > len(buf) || string(buf[pos:pos+len(lit)]) != lit {
		return -1, newError(buf, pos, ErrInvalidLiteral, "invalid literal")
	}
	return pos + len(lit), nil
}

// trailingZeros64 returns the number of trailing zero bits in x, or 64 if
// x == 0.
func trailingZeros64(x uint64) int {
	return bits.TrailingZeros64(x)
}
