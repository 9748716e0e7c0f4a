package simdj

import (
	"math"
	"strconv"
)

// validateNumberGrammar enforces spec.md §4.5's grammar over buf[start:end]
// without decoding: optional '-', an integer part ('0' or [1-9][0-9]*),
// optional '.' + [0-9]+, optional [eE][+-]? [0-9]+. A leading '+' or extra
// leading zeros are rejected here; ScanNumberBody has already limited the
// character set to digits/+/-/./e/E.
func validateNumberGrammar(buf []byte, start, end int) error {
	i := start
	if i >= end {
		return newError(buf, start, ErrNumberGrammar, "empty number")
	}
	if buf[i] == '-' {
		i++
	}
	if i >= end || buf[i] < '0' || buf[i] > '9' {
		return newError(buf, start, ErrNumberGrammar, "invalid number: missing integer part")
	}
	if buf[i] == '0' {
		i++
	} else {
		for i < end && buf[i] >= '0' && buf[i] <= '9' {
			i++
		}
	}
	if i < end && buf[i] == '.' {
		i++
		digits := 0
		for i < end && buf[i] >= '0' && buf[i] <= '9' {
			i++
			digits++
		}
		if digits == 0 {
			return newError(buf, start, ErrNumberGrammar, "invalid number: missing fraction digits")
		}
	}
	if i < end && (buf[i] == 'e' || buf[i] == 'E') {
		i++
		if i < end && (buf[i] == '+' || buf[i] == '-') {
			i++
		}
		digits := 0
		for i < end && buf[i] >= '0' && buf[i] <= '9' {
			i++
			digits++
		}
		if digits == 0 {
			return newError(buf, start, ErrNumberGrammar, "invalid number: missing exponent digits")
		}
	}
	if i != end {
		return newError(buf, start, ErrNumberGrammar, "invalid number: unexpected character %q", buf[i])
	}
	return nil
}

// NumberKind identifies which decoded representation a number took.
type NumberKind uint8

const (
	NumberI64 NumberKind = iota
	NumberU64
	NumberF64
	NumberRaw
)

// ParsedNumber is the decoded form of a number body, selected per spec.md
// §4.5's fast/slow path rules.
type ParsedNumber struct {
	Kind NumberKind
	I64  int64
	U64  uint64
	F64  float64
	Raw  []byte // exact source text, only set when Kind == NumberRaw
}

// parseNumber decodes buf[start:end], which must already satisfy
// validateNumberGrammar. arbitraryPrecision forces NumberRaw regardless of
// shape.
func parseNumber(buf []byte, start, end int, arbitraryPrecision bool) (ParsedNumber, error) {
	body := buf[start:end]
	if arbitraryPrecision {
		return ParsedNumber{Kind: NumberRaw, Raw: body}, nil
	}

	hasFrac := false
	hasExp := false
	digits := 0
	for _, c := range body {
		switch {
		case c == '.':
			hasFrac = true
		case c == 'e' || c == 'E':
			hasExp = true
		case c >= '0' && c <= '9':
			digits++
		}
	}

	// Integer fast path: no '.', no exponent, <= 19 digits.
	if !hasFrac && !hasExp && digits <= 19 {
		neg := body[0] == '-'
		digitsStart := 0
		if neg {
			digitsStart = 1
		}
		u, err := strconv.ParseUint(string(body[digitsStart:]), 10, 64)
		if err == nil {
			if neg {
				if u <= 1<<63 {
					return ParsedNumber{Kind: NumberI64, I64: -int64(u)}, nil
				}
				// magnitude overflows int64 with a leading '-': fall back
				// to float per spec.md §4.5.
			} else {
				if u <= math.MaxInt64 {
					return ParsedNumber{Kind: NumberI64, I64: int64(u)}, nil
				}
				return ParsedNumber{Kind: NumberU64, U64: u}, nil
			}
		}
	}

	// 20-digit non-negative integers up to math.MaxUint64 are still U64.
	if !hasFrac && !hasExp && digits == 20 && body[0] != '-' {
		if u, err := strconv.ParseUint(string(body), 10, 64); err == nil {
			return ParsedNumber{Kind: NumberU64, U64: u}, nil
		}
	}

	// Float path: strconv.ParseFloat is a correctly-rounded (round-to-
	// nearest-even) decimal-to-binary converter, used here as both the
	// "fast path" and the "slow path" of spec.md §4.5 (see DESIGN.md for
	// why re-deriving Eisel-Lemire by hand buys nothing over the stdlib).
	f, err := strconv.ParseFloat(string(body), 64)
	if err != nil {
		return ParsedNumber{}, newError(buf, start, ErrNumberOutOfRange, "number out of range")
	}
	if math.IsInf(f, 0) {
		return ParsedNumber{}, newError(buf, start, ErrNumberOutOfRange, "number out of range")
	}
	return ParsedNumber{Kind: NumberF64, F64: f}, nil
}

// appendFloat formats f the way the Serializer emits floats: shortest
// round-trip representation, ES6-style exponent cutoffs (matches most JSON
// generators, see golang.org/issue/6384), with the exponent's leading zero
// trimmed (e-09 -> e-9). strconv's shortest-form 'f' output never carries a
// decimal point for an integral value (1 formats as "1", not "1.0"), but a
// bare integer literal re-parses as an I64/U64 node rather than F64 — so by
// default a ".0" is appended to integral floats to preserve the Kind across
// a round trip. If nonTrailingZero is set, that suffix is omitted instead.
func appendFloat(dst []byte, f float64, nonTrailingZero bool) ([]byte, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, newError(nil, 0, ErrNumberOutOfRange, "INF or NaN number found")
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, format, -1, 64)
	if format == 'e' {
		n := len(dst)
		if n >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
	}
	if format == 'f' && !nonTrailingZero {
		hasDot := false
		for i := start; i < len(dst); i++ {
			if dst[i] == '.' {
				hasDot = true
				break
			}
		}
		if !hasDot {
			dst = append(dst, '.', '0')
		}
	}
	return dst, nil
}
