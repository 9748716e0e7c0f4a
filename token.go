package simdj

// Kind identifies the category of a Token.
type Kind uint8

const (
	KindNull Kind = iota
	KindTrue
	KindFalse
	KindNumber
	KindString
	KindBeginArray
	KindEndArray
	KindBeginObject
	KindEndObject
	KindObjectKey
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindBeginArray:
		return "["
	case KindEndArray:
		return "]"
	case KindBeginObject:
		return "{"
	case KindEndObject:
		return "}"
	case KindObjectKey:
		return "key"
	}
	return "?"
}

// Span is a half-open byte range [Lo, Hi) into the input. It always
// encloses the token's complete raw form: numbers include sign and
// exponent, strings include the opening and closing quotes.
type Span struct {
	Lo, Hi int
}

func (s Span) Bytes(buf []byte) []byte { return buf[s.Lo:s.Hi] }

// Token is one lexical unit produced by the Tokenizer. NeedsUnescape is
// only meaningful for KindString/KindObjectKey and reports whether the raw
// span contains a backslash (so the String Parser must run the decode
// path rather than borrowing the span directly).
type Token struct {
	Kind          Kind
	Span          Span
	NeedsUnescape bool
}

// Tokenizer is a single-threaded recursive-descent JSON grammar recognizer
// built on the Reader and Scanner. It enforces RFC 8259 structure and
// surfaces one token at a time via Next, so callers (the arena document
// builder or a user Visitor) can drive construction without the tokenizer
// itself allocating a tree.
type Tokenizer struct {
	buf      []byte
	scan     *Scanner
	pos      int
	opts     Options
	frames   []frame
	started  bool
	rootDone bool
}

// NewTokenizer creates a Tokenizer over buf with the given options. buf
// carries sentinelPad zero bytes past the input's logical end (see
// padInput); the grammar, including the trailing-data rule, runs over the
// logical input only, and the Scanner's Reader supplies window padding.
func NewTokenizer(buf []byte, opts Options) *Tokenizer {
	if len(buf) >= sentinelPad {
		buf = buf[:len(buf)-sentinelPad]
	}
	return &Tokenizer{buf: buf, scan: NewScanner(buf), opts: opts}
}

// frame tracks one open container on the tokenizer's structural stack: its
// bracket type, how many members/values have been seen (to know whether a
// comma is required next), and whether a value is currently owed (we just
// consumed an object key's ':').
type frame struct {
	container  byte // '{' or '['
	count      int
	expectValue bool
}

// Next returns the next token in document order, or an error. After the
// root value, only whitespace may follow; io.EOF-like termination is
// signaled by returning (Token{}, nil, true) via the done flag.
func (t *Tokenizer) Next() (Token, error, bool) {
	if t.rootDone {
		t.pos = t.scan.SkipWhitespace(t.pos)
		if t.pos < len(t.buf) {
			return Token{}, newError(t.buf, t.pos, ErrTrailingData, "unexpected trailing character %q", t.buf[t.pos]), false
		}
		return Token{}, nil, true
	}
	if len(t.frames) == 0 && t.started {
		// Root value fully consumed.
		t.rootDone = true
		return t.Next()
	}

	t.pos = t.scan.SkipWhitespace(t.pos)

	// Closing a container, or comma-separated continuation.
	if len(t.frames) > 0 {
		top := &t.frames[len(t.frames)-1]
		closeByte := byte('}')
		if top.container == '[' {
			closeByte = ']'
		}
		if t.pos >= len(t.buf) {
			offset := t.pos
			if offset > 0 {
				offset--
			}
			return Token{}, newError(t.buf, offset, ErrExpectedValue, "Expected this character to be either a ',' or a '%c'", closeByte), false
		}
		c := t.buf[t.pos]
		if c == closeByte {
			if top.container == '{' && top.expectValue {
				return Token{}, newError(t.buf, t.pos, ErrExpectedValue, "expected value after ':'"), false
			}
			t.pos++
			t.frames = t.frames[:len(t.frames)-1]
			if top.container == '{' {
				return Token{Kind: KindEndObject, Span: Span{t.pos - 1, t.pos}}, nil, false
			}
			return Token{Kind: KindEndArray, Span: Span{t.pos - 1, t.pos}}, nil, false
		}
		if top.count > 0 && !top.expectValue {
			if c != ',' {
				return Token{}, newError(t.buf, t.pos, ErrExpectedValue, "Expected this character to be either a ',' or a '%c'", closeByte), false
			}
			t.pos++
			t.pos = t.scan.SkipWhitespace(t.pos)
			if t.pos >= len(t.buf) {
				offset := t.pos
				if offset > 0 {
					offset--
				}
				return Token{}, newError(t.buf, offset, ErrExpectedValue, "Expected this character to be either a ',' or a '%c'", closeByte), false
			}
			c = t.buf[t.pos]
			if c == closeByte {
				return Token{}, newError(t.buf, t.pos, ErrExpectedValue, "unexpected trailing comma before '%c'", closeByte), false
			}
		}
		if top.container == '{' && !top.expectValue {
			if c != '"' {
				return Token{}, newError(t.buf, t.pos, ErrExpectedValue, "expected string key, found %q", c), false
			}
			tok, err := t.lexString(true)
			if err != nil {
				return Token{}, err, false
			}
			top.count++
			t.pos = t.scan.SkipWhitespace(t.pos)
			if t.pos >= len(t.buf) || t.buf[t.pos] != ':' {
				return Token{}, newError(t.buf, t.pos, ErrExpectedValue, "expected ':' after object key"), false
			}
			t.pos++
			top.expectValue = true
			return tok, nil, false
		}
		top.count++
	}

	// Dispatch a value. The enclosing frame's owed value is cleared before
	// lexValue, which may push a new frame for a nested container.
	if len(t.frames) > 0 {
		t.frames[len(t.frames)-1].expectValue = false
	}
	tok, err := t.lexValue()
	if err != nil {
		return Token{}, err, false
	}
	t.started = true
	return tok, nil, false
}

func (t *Tokenizer) lexValue() (Token, error) {
	t.pos = t.scan.SkipWhitespace(t.pos)
	if t.pos >= len(t.buf) {
		return Token{}, newError(t.buf, t.pos, ErrExpectedValue, "unexpected end of input")
	}
	switch c := t.buf[t.pos]; {
	case c == '{':
		t.pos++
		t.frames = append(t.frames, frame{container: '{'})
		return Token{Kind: KindBeginObject, Span: Span{t.pos - 1, t.pos}}, nil
	case c == '[':
		t.pos++
		t.frames = append(t.frames, frame{container: '['})
		return Token{Kind: KindBeginArray, Span: Span{t.pos - 1, t.pos}}, nil
	case c == '"':
		return t.lexString(false)
	case c == '-' || (c >= '0' && c <= '9'):
		return t.lexNumber()
	case c == 't':
		end, err := matchLiteral(t.buf, t.pos, "true")
		if err != nil {
			return Token{}, err
		}
		tok := Token{Kind: KindTrue, Span: Span{t.pos, end}}
		t.pos = end
		return tok, nil
	case c == 'f':
		end, err := matchLiteral(t.buf, t.pos, "false")
		if err != nil {
			return Token{}, err
		}
		tok := Token{Kind: KindFalse, Span: Span{t.pos, end}}
		t.pos = end
		return tok, nil
	case c == 'n':
		end, err := matchLiteral(t.buf, t.pos, "null")
		if err != nil {
			return Token{}, err
		}
		tok := Token{Kind: KindNull, Span: Span{t.pos, end}}
		t.pos = end
		return tok, nil
	default:
		return Token{}, newError(t.buf, t.pos, ErrExpectedValue, "expected this character to be the start of a value, got %q", c)
	}
}

func (t *Tokenizer) lexString(isKey bool) (Token, error) {
	start := t.pos
	end := t.scan.SkipString(t.pos)
	if end < 0 {
		return Token{}, newError(t.buf, start, ErrUnterminatedString, "unterminated string")
	}
	needsUnescape := false
	for i := start + 1; i < end-1; i++ {
		if t.buf[i] == '\\' {
			needsUnescape = true
			break
		}
		if t.opts.ValidateUTF8 && !t.opts.UTF8Lossy && t.buf[i] < 0x20 {
			return Token{}, newError(t.buf, i, ErrInvalidEscape, "control character in string literal")
		}
	}
	if t.opts.ValidateUTF8 {
		if err := validateUTF8Range(t.buf, start+1, end-1, t.opts.UTF8Lossy); err != nil {
			return Token{}, err
		}
	}
	t.pos = end
	kind := KindString
	if isKey {
		kind = KindObjectKey
	}
	return Token{Kind: kind, Span: Span{start, end}, NeedsUnescape: needsUnescape}, nil
}

func (t *Tokenizer) lexNumber() (Token, error) {
	start := t.pos
	end := t.scan.ScanNumberBody(t.pos)
	if err := validateNumberGrammar(t.buf, start, end); err != nil {
		return Token{}, err
	}
	t.pos = end
	return Token{Kind: KindNumber, Span: Span{start, end}}, nil
}
