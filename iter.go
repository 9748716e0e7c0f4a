package simdj

// ArrayIter and ObjectIter yield the members of a top-level JSON container
// one at a time, driven by the same Tokenizer ParseToVisitor uses. Each
// call to Next returns the next member already consumed from the token
// stream, so a malformed or truncated container surfaces its structural
// error only after every well-formed member before it has already been
// handed to the caller — unlike ParseToValue/Validate, which fail the
// whole document atomically before returning anything.

// KVLazy is one key/value pair yielded by an ObjectIter. Duplicate keys are
// yielded once per occurrence, in source order, matching Node.Pairs().
type KVLazy struct {
	Key   string
	Value LazyValue
}

// ArrayIter lazily yields the elements of a JSON array from raw bytes.
type ArrayIter struct {
	buf  []byte // padded
	orig []byte
	tok  *Tokenizer
	done bool
}

// ToArrayIter begins iterating the JSON array at the start of buf. An error
// is returned immediately if buf does not begin with an array; errors
// within the array's own elements surface from Next instead.
func ToArrayIter(buf []byte, opts ...Option) (*ArrayIter, error) {
	o := ondemandDefaults(opts)
	padded := padInput(buf)
	tok := NewTokenizer(padded, o)
	t, err, _ := tok.Next()
	if err != nil {
		return nil, rebase(err, buf)
	}
	if t.Kind != KindBeginArray {
		return nil, rebase(&Error{Code: ErrTypeMismatch, Offset: t.Span.Lo, Message: "value is not an array", source: padded}, buf)
	}
	return &ArrayIter{buf: padded, orig: buf, tok: tok}, nil
}

// Next returns the iterator's next element, a terminal error, or
// done == true once the array's closing ']' has been consumed. Once Next
// has returned an error or done, every subsequent call returns done.
func (it *ArrayIter) Next() (LazyValue, error, bool) {
	if it.done {
		return LazyValue{}, nil, true
	}
	lo := -1
	depth := 0
	for {
		tok, err, tdone := it.tok.Next()
		if err != nil {
			it.done = true
			return LazyValue{}, rebase(err, it.orig), false
		}
		if tdone {
			it.done = true
			return LazyValue{}, nil, true
		}
		if lo < 0 {
			lo = tok.Span.Lo
		}
		switch tok.Kind {
		case KindBeginArray, KindBeginObject:
			depth++
		case KindEndArray:
			if depth == 0 {
				// This is the iterated array's own closing bracket, not a
				// nested container this call opened.
				it.done = true
				return LazyValue{}, nil, true
			}
			depth--
		case KindEndObject:
			depth--
		}
		if depth == 0 {
			return LazyValue{raw: it.buf[lo:tok.Span.Hi], orig: it.orig}, nil, false
		}
	}
}

// ObjectIter lazily yields the key/value pairs of a JSON object from raw
// bytes.
type ObjectIter struct {
	buf  []byte // padded
	orig []byte
	tok  *Tokenizer
	opts Options
	done bool
}

// ToObjectIter begins iterating the JSON object at the start of buf. An
// error is returned immediately if buf does not begin with an object;
// errors within the object's own members surface from Next instead.
func ToObjectIter(buf []byte, opts ...Option) (*ObjectIter, error) {
	o := ondemandDefaults(opts)
	padded := padInput(buf)
	tok := NewTokenizer(padded, o)
	t, err, _ := tok.Next()
	if err != nil {
		return nil, rebase(err, buf)
	}
	if t.Kind != KindBeginObject {
		return nil, rebase(&Error{Code: ErrTypeMismatch, Offset: t.Span.Lo, Message: "value is not an object", source: padded}, buf)
	}
	return &ObjectIter{buf: padded, orig: buf, tok: tok, opts: o}, nil
}

// Next returns the iterator's next key/value pair, a terminal error, or
// done == true once the object's closing '}' has been consumed.
func (it *ObjectIter) Next() (KVLazy, error, bool) {
	if it.done {
		return KVLazy{}, nil, true
	}
	keyTok, err, tdone := it.tok.Next()
	if err != nil {
		it.done = true
		return KVLazy{}, rebase(err, it.orig), false
	}
	if tdone || keyTok.Kind == KindEndObject {
		it.done = true
		return KVLazy{}, nil, true
	}
	keyBytes, err := decodeKeyOrString(keyTok.Span.Bytes(it.buf), keyTok.NeedsUnescape, it.opts.UTF8Lossy)
	if err != nil {
		it.done = true
		return KVLazy{}, rebase(err, it.orig), false
	}
	key := string(keyBytes)

	lo := -1
	depth := 0
	for {
		tok, err, tdone := it.tok.Next()
		if err != nil {
			it.done = true
			return KVLazy{}, rebase(err, it.orig), false
		}
		if tdone {
			it.done = true
			return KVLazy{}, nil, true
		}
		if lo < 0 {
			lo = tok.Span.Lo
		}
		switch tok.Kind {
		case KindBeginArray, KindBeginObject:
			depth++
		case KindEndArray, KindEndObject:
			depth--
		}
		if depth == 0 {
			return KVLazy{Key: key, Value: LazyValue{raw: it.buf[lo:tok.Span.Hi], orig: it.orig}}, nil, false
		}
	}
}
