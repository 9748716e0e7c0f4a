package simdj

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// validateUTF8Range checks that buf[lo:hi] (the bytes strictly inside a
// string's quotes) is valid UTF-8, per spec.md §4.3: UTF-8 validation is
// applied exactly once, only to bytes inside strings. When lossy is true,
// no error is raised here (repair happens in decodeString).
func validateUTF8Range(buf []byte, lo, hi int, lossy bool) error {
	if lossy {
		return nil
	}
	i := lo
	for i < hi {
		r, size := utf8.DecodeRune(buf[i:hi])
		if r == utf8.RuneError && size <= 1 {
			return newError(buf, i, ErrInvalidUTF8, "invalid UTF-8 sequence")
		}
		i += size
	}
	return nil
}

// utf8LossyDecoder repairs invalid UTF-8 by substituting U+FFFD, backed by
// golang.org/x/text/encoding/unicode rather than a hand-rolled byte-repair
// loop (see DESIGN.md: grounded on laplaque-ai-anonymizing-proxy's
// golang.org/x/text dependency).
var utf8LossyDecoder = unicode.UTF8.NewDecoder()

func repairUTF8Lossy(b []byte) []byte {
	out, err := utf8LossyDecoder.Bytes(b)
	if err != nil {
		// The decoder transform itself should not fail on arbitrary bytes;
		// if it somehow does, fall back to a utf8.DecodeRune loop, which
		// substitutes RuneError for the
		// shortest invalid subsequence exactly like the JSON spec's
		// U+FFFD policy.
		var buf []byte
		for i := 0; i < len(b); {
			r, size := utf8.DecodeRune(b[i:])
			buf = utf8.AppendRune(buf, r)
			i += size
		}
		return buf
	}
	return out
}

// decodeString decodes the content of a string span buf[span.Lo:span.Hi]
// (which includes the surrounding quotes) per spec.md §4.4. If the content
// has no backslash, the returned slice borrows directly from buf (no
// allocation) unless copyAlways is true, in which case it is copied into dst.
// Otherwise the decoded bytes are appended to dst and dst's new slice is
// returned. lossy substitutes U+FFFD for invalid escapes/surrogates/UTF-8
// instead of failing.
func decodeString(buf []byte, span Span, needsUnescape bool, copyAlways, lossy bool, dst []byte) ([]byte, error) {
	content := buf[span.Lo+1 : span.Hi-1]
	if !needsUnescape {
		if lossy {
			content = repairUTF8Lossy(content)
		}
		if !copyAlways {
			return content, nil
		}
		out := append(dst, content...)
		return out[len(dst):], nil
	}

	out := dst
	i := 0
	for i < len(content) {
		c := content[i]
		if c != '\\' {
			out = append(out, c)
			i++
			continue
		}
		if i+1 >= len(content) {
			if lossy {
				out = utf8.AppendRune(out, utf8.RuneError)
				break
			}
			return nil, newError(buf, span.Lo+1+i, ErrInvalidEscape, "unterminated escape sequence")
		}
		esc := content[i+1]
		switch esc {
		case '"':
			out = append(out, '"')
			i += 2
		case '\\':
			out = append(out, '\\')
			i += 2
		case '/':
			out = append(out, '/')
			i += 2
		case 'b':
			out = append(out, '\b')
			i += 2
		case 'f':
			out = append(out, '\f')
			i += 2
		case 'n':
			out = append(out, '\n')
			i += 2
		case 'r':
			out = append(out, '\r')
			i += 2
		case 't':
			out = append(out, '\t')
			i += 2
		case 'u':
			r, consumed, err := decodeUnicodeEscape(buf, span, content, i, lossy)
			if err != nil {
				return nil, err
			}
			out = utf8.AppendRune(out, r)
			i += consumed
		default:
			if lossy {
				out = utf8.AppendRune(out, utf8.RuneError)
				i += 2
				continue
			}
			return nil, newError(buf, span.Lo+1+i, ErrInvalidEscape, "invalid escape character %q", esc)
		}
	}
	if lossy {
		out = repairUTF8Lossy(out)
	}
	return out[len(dst):], nil
}

// decodeUnicodeEscape decodes a \uXXXX sequence (and its surrogate pair
// partner, if present) starting at content[i] (content[i] == '\\',
// content[i+1] == 'u'). Returns the decoded rune and the number of content
// bytes consumed by this call (6, or 12 for a surrogate pair).
func decodeUnicodeEscape(buf []byte, span Span, content []byte, i int, lossy bool) (rune, int, error) {
	hex := func(off int) (uint32, bool) {
		if off+6 > len(content) {
			return 0, false
		}
		var v uint32
		for _, c := range content[off+2 : off+6] {
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v |= uint32(c - '0')
			case c >= 'a' && c <= 'f':
				v |= uint32(c-'a') + 10
			case c >= 'A' && c <= 'F':
				v |= uint32(c-'A') + 10
			default:
				return 0, false
			}
		}
		return v, true
	}
	v, ok := hex(i)
	if !ok {
		if lossy {
			return utf8.RuneError, 6, nil
		}
		return 0, 0, newError(buf, span.Lo+1+i, ErrInvalidEscape, "invalid \\u escape")
	}
	if v >= 0xD800 && v <= 0xDBFF {
		// High surrogate: must be followed by a low surrogate.
		if i+6+1 < len(content) && content[i+6] == '\\' && content[i+6+1] == 'u' {
			v2, ok2 := hex(i + 6)
			if ok2 && v2 >= 0xDC00 && v2 <= 0xDFFF {
				r := rune(0x10000 + (v-0xD800)<<10 + (v2 - 0xDC00))
				return r, 12, nil
			}
		}
		if lossy {
			return utf8.RuneError, 6, nil
		}
		return 0, 0, newError(buf, span.Lo+1+i, ErrInvalidSurrogate, "unpaired high surrogate")
	}
	if v >= 0xDC00 && v <= 0xDFFF {
		if lossy {
			return utf8.RuneError, 6, nil
		}
		return 0, 0, newError(buf, span.Lo+1+i, ErrInvalidSurrogate, "unpaired low surrogate")
	}
	return rune(v), 6, nil
}
