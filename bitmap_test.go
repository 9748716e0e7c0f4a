package simdj

import "testing"

func window(s string) []byte {
	buf := make([]byte, 64)
	copy(buf, s)
	return buf
}

func TestEqMask64(t *testing.T) {
	buf := window("a,b,c,,,,")
	mask := eqMask64(buf, ',')
	want := uint64(0)
	for i, c := range buf {
		if c == ',' {
			want |= 1 << uint(i)
		}
	}
	if mask != want {
		t.Fatalf("got %064b, want %064b", mask, want)
	}
}

func TestWsMask64(t *testing.T) {
	buf := window("a \tb\nc\rd")
	mask := wsMask64(buf)
	for i, c := range buf[:8] {
		isWant := c == ' ' || c == '\t' || c == '\n' || c == '\r'
		got := mask&(1<<uint(i)) != 0
		if got != isWant {
			t.Fatalf("byte %d (%q): got ws=%v, want %v", i, c, got, isWant)
		}
	}
}

func TestDigitMask64(t *testing.T) {
	buf := window("a1b2c3")
	mask := digitMask64(buf)
	for i, c := range buf[:6] {
		isWant := c >= '0' && c <= '9'
		got := mask&(1<<uint(i)) != 0
		if got != isWant {
			t.Fatalf("byte %d (%q): got digit=%v, want %v", i, c, got, isWant)
		}
	}
}

func TestEscapeMaskSingleEscape(t *testing.T) {
	buf := window(`a\nb`)
	mask, carry := escapeMask(buf, 0)
	if mask&(1<<1) == 0 {
		t.Fatal("expected escape start at index 1")
	}
	if carry != 0 {
		t.Fatal("expected no carry past window")
	}
}

func TestEscapeMaskDoubleBackslashIsNotEscape(t *testing.T) {
	// "\\\\n" -- two backslashes (an escaped backslash) followed by 'n':
	// the second backslash is the target of the first, not an escape
	// starter itself.
	buf := window(`a\\nb`)
	mask, _ := escapeMask(buf, 0)
	if mask&(1<<1) == 0 {
		t.Fatal("expected first backslash (index 1) to start an escape")
	}
	if mask&(1<<2) != 0 {
		t.Fatal("second backslash (index 2) must not start its own escape")
	}
}

func TestEscapeMaskCarryAcrossWindow(t *testing.T) {
	// A lone backslash as the very last byte of a window must carry into
	// the next window so the escaped byte there is recognized correctly.
	buf := window("")
	buf[63] = '\\'
	_, carry := escapeMask(buf, 0)
	if carry != 1 {
		t.Fatal("expected carry=1 when window ends mid-escape")
	}
}

func TestStringMaskBasic(t *testing.T) {
	buf := window(`a"bc"d`)
	mask, inStr, _ := stringMask(buf, 0, 0)
	// Bytes 2,3 ('b','c') lie strictly inside the quotes.
	if mask&(1<<2) == 0 || mask&(1<<3) == 0 {
		t.Fatal("expected bytes inside the quoted span to be marked in-string")
	}
	if mask&(1<<5) != 0 {
		t.Fatal("byte after the closing quote must not be marked in-string")
	}
	if inStr != 0 {
		t.Fatal("expected string to be closed by end of window")
	}
}

func TestStringMaskEscapedQuoteDoesNotClose(t *testing.T) {
	buf := window(`"a\"b"c`)
	_, inStr, _ := stringMask(buf, 0, 0)
	if inStr != 0 {
		t.Fatal("an escaped quote must not close the string")
	}
}
