package simdj

// Visitor receives a balanced stream of structural events from
// ParseToVisitor, mirroring the shape of the input exactly: every
// BeginArray/BeginObject is matched by exactly one EndArray/EndObject, and
// every object member is announced by Key immediately before its value's
// event(s). Implementations that only care about a subset of events may
// embed NopVisitor to satisfy the interface.
type Visitor interface {
	BeginArray()
	EndArray()
	BeginObject()
	EndObject()
	Key(raw []byte, needsUnescape bool)
	Null()
	Bool(v bool)
	Number(raw []byte)
	String(raw []byte, needsUnescape bool)
}

// NopVisitor implements Visitor with no-op methods, for embedding by
// visitors that only override a few callbacks.
type NopVisitor struct{}

func (NopVisitor) BeginArray()                    {}
func (NopVisitor) EndArray()                      {}
func (NopVisitor) BeginObject()                   {}
func (NopVisitor) EndObject()                     {}
func (NopVisitor) Key(raw []byte, unescape bool)  {}
func (NopVisitor) Null()                          {}
func (NopVisitor) Bool(v bool)                    {}
func (NopVisitor) Number(raw []byte)              {}
func (NopVisitor) String(raw []byte, unescape bool) {}

// ParseToVisitor drives a Tokenizer over buf and calls the corresponding
// Visitor method for every token, giving callers access to the parse
// without paying for a materialized Document. buf must already carry
// spec.md's 64-byte zero sentinel padding; use padInput to obtain one.
func ParseToVisitor(buf []byte, opts Options, v Visitor) error {
	t := NewTokenizer(buf, opts)
	for {
		tok, err, done := t.Next()
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		switch tok.Kind {
		case KindBeginArray:
			v.BeginArray()
		case KindEndArray:
			v.EndArray()
		case KindBeginObject:
			v.BeginObject()
		case KindEndObject:
			v.EndObject()
		case KindObjectKey:
			v.Key(tok.Span.Bytes(buf), tok.NeedsUnescape)
		case KindNull:
			v.Null()
		case KindTrue:
			v.Bool(true)
		case KindFalse:
			v.Bool(false)
		case KindNumber:
			v.Number(tok.Span.Bytes(buf))
		case KindString:
			v.String(tok.Span.Bytes(buf), tok.NeedsUnescape)
		}
	}
}

// documentBuilder is the Visitor that ParseToValue drives to build a
// Document. It keeps a stack of in-progress container indices (and, for
// objects, the pending key for the next value) and appends each finished
// child into its parent the moment the child's closing event fires. A
// container node is allocated at its Begin event, before its children, and
// there is no separate scratch vector: children go straight into the
// parent's payload.
type documentBuilder struct {
	buf   []byte
	opts  Options
	arena *Arena
	err   error

	stack   []int    // arena indices of open Array/Object nodes
	pending []string // pending object key per open-Object stack level (empty string for Array levels)
	result  int       // arena index of the completed root, once the stack empties
}

func newDocumentBuilder(buf []byte, opts Options, arena *Arena) *documentBuilder {
	return &documentBuilder{buf: buf, opts: opts, arena: arena, result: -1}
}

func (b *documentBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// attach places the node at idx into the currently open container (if any)
// or, if the stack is empty, records it as the completed root.
func (b *documentBuilder) attach(idx int) {
	if len(b.stack) == 0 {
		b.result = idx
		return
	}
	top := b.stack[len(b.stack)-1]
	parent := b.arena.node(top)
	b.arena.node(idx).parent = top
	switch parent.tag {
	case TagArray:
		parent.items = append(parent.items, idx)
	case TagObject:
		key := b.pending[len(b.pending)-1]
		parent.pairs = append(parent.pairs, kv{Key: []byte(key), Value: idx})
		b.pending[len(b.pending)-1] = ""
	}
}

func (b *documentBuilder) BeginArray() {
	idx, err := b.arena.alloc(Node{tag: TagArray, parent: -1})
	if err != nil {
		b.fail(err)
		return
	}
	b.stack = append(b.stack, idx)
	b.pending = append(b.pending, "")
}

func (b *documentBuilder) EndArray() {
	if len(b.stack) == 0 {
		return
	}
	idx := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.pending = b.pending[:len(b.pending)-1]
	b.attach(idx)
}

func (b *documentBuilder) BeginObject() {
	idx, err := b.arena.alloc(Node{tag: TagObject, parent: -1})
	if err != nil {
		b.fail(err)
		return
	}
	b.stack = append(b.stack, idx)
	b.pending = append(b.pending, "")
}

func (b *documentBuilder) EndObject() {
	if len(b.stack) == 0 {
		return
	}
	idx := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.pending = b.pending[:len(b.pending)-1]
	b.attach(idx)
}

func (b *documentBuilder) Key(raw []byte, needsUnescape bool) {
	key, err := decodeKeyOrString(raw, needsUnescape, b.opts.UTF8Lossy)
	if err != nil {
		b.fail(err)
		return
	}
	b.pending[len(b.pending)-1] = string(key)
}

func (b *documentBuilder) Null() {
	idx, err := b.arena.alloc(Node{tag: TagNull, parent: -1})
	if err != nil {
		b.fail(err)
		return
	}
	b.attach(idx)
}

func (b *documentBuilder) Bool(v bool) {
	idx, err := b.arena.alloc(Node{tag: TagBool, boolV: v, parent: -1})
	if err != nil {
		b.fail(err)
		return
	}
	b.attach(idx)
}

func (b *documentBuilder) Number(raw []byte) {
	n, err := parseNumber(raw, 0, len(raw), b.opts.ArbitraryPrecision)
	if err != nil {
		b.fail(err)
		return
	}
	node := Node{parent: -1}
	switch n.Kind {
	case NumberI64:
		node.tag, node.i64V = TagI64, n.I64
	case NumberU64:
		node.tag, node.u64V = TagU64, n.U64
	case NumberF64:
		node.tag, node.f64V = TagF64, n.F64
	case NumberRaw:
		node.tag, node.bytes = TagRawNumber, n.Raw
	}
	idx, err := b.arena.alloc(node)
	if err != nil {
		b.fail(err)
		return
	}
	b.attach(idx)
}

func (b *documentBuilder) String(raw []byte, needsUnescape bool) {
	s, err := decodeKeyOrString(raw, needsUnescape, b.opts.UTF8Lossy)
	if err != nil {
		b.fail(err)
		return
	}
	var content []byte
	if b.opts.CopyStrings {
		content = append([]byte(nil), s...)
	} else {
		content = s
	}
	idx, err := b.arena.alloc(Node{tag: TagStr, bytes: content, parent: -1})
	if err != nil {
		b.fail(err)
		return
	}
	b.attach(idx)
}

// decodeKeyOrString decodes a token span (raw, including its surrounding
// quotes) into its string content, borrowing raw directly when possible.
func decodeKeyOrString(raw []byte, needsUnescape, lossy bool) ([]byte, error) {
	span := Span{0, len(raw)}
	return decodeString(raw, span, needsUnescape, false, lossy, nil)
}
