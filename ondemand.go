package simdj

// PathStep is one hop of a path passed to Get/GetMany: either an object
// key or an array index. Construct with Key or Index.
type PathStep struct {
	key     string
	index   int
	isIndex bool
}

// Key builds a PathStep that selects an object member by name.
func Key(k string) PathStep { return PathStep{key: k} }

// Index builds a PathStep that selects an array element by position.
func Index(i int) PathStep { return PathStep{index: i, isIndex: true} }

// LazyValue is the still-encoded result of an on-demand Get/GetMany
// lookup: the raw byte span of the located value, with decoding deferred
// until the caller actually asks for a typed accessor or a full Document.
type LazyValue struct {
	raw  []byte // span into the padded internal buffer
	orig []byte // caller's original buffer, for error offset reporting
}

// Raw returns the value's undecoded source bytes (e.g. a string including
// its surrounding quotes, or an object's '{' through '}').
func (v LazyValue) Raw() []byte { return v.raw }

// firstByte reports the value's leading byte, or 0 if the value is empty
// (which should not happen for a successfully located value).
func (v LazyValue) firstByte() byte {
	if len(v.raw) == 0 {
		return 0
	}
	return v.raw[0]
}

// IsNull reports whether the located value is the JSON null literal.
func (v LazyValue) IsNull() bool { return string(v.raw) == "null" }

// Bool decodes a true/false value.
func (v LazyValue) Bool() (bool, error) {
	switch string(v.raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &Error{Code: ErrTypeMismatch, Message: "value is not a boolean"}
}

// Str decodes a string value.
func (v LazyValue) Str() (string, error) {
	if v.firstByte() != '"' {
		return "", &Error{Code: ErrTypeMismatch, Message: "value is not a string"}
	}
	needsUnescape := false
	for i := 1; i < len(v.raw)-1; i++ {
		if v.raw[i] == '\\' {
			needsUnescape = true
			break
		}
	}
	s, err := decodeKeyOrString(v.raw, needsUnescape, false)
	if err != nil {
		return "", err
	}
	return string(s), nil
}

// Number decodes a numeric value per the same fast/slow path rules as the
// Document builder.
func (v LazyValue) Number(arbitraryPrecision bool) (ParsedNumber, error) {
	if err := validateNumberGrammar(v.raw, 0, len(v.raw)); err != nil {
		return ParsedNumber{}, err
	}
	return parseNumber(v.raw, 0, len(v.raw), arbitraryPrecision)
}

// Materialize fully parses the located value into a standalone Document,
// for callers that navigated lazily to a subtree but now want its full
// structure.
func (v LazyValue) Materialize(opts ...Option) (*Document, error) {
	return ParseToValue(v.raw, opts...)
}

// getPath walks buf (already padded) along path without constructing a
// Document, using the Scanner's bit-parallel skippers to jump over
// sibling values and string contents rather than ever building a tree.
// When o.ValidateUTF8 is set (the "validated" mode of spec §4.6), the
// final value's content is checked before it is returned; the default
// "unchecked" mode performs no validation during or after the walk.
func getPath(buf []byte, path []PathStep, o Options) (LazyValue, error) {
	scan := NewScanner(buf)
	pos := scan.SkipWhitespace(0)
	start, end, err := locateValueAt(scan, buf, pos)
	if err != nil {
		return LazyValue{}, err
	}
	for _, step := range path {
		start, end, err = descend(scan, buf, start, end, step)
		if err != nil {
			return LazyValue{}, err
		}
	}
	if o.ValidateUTF8 && !o.UTF8Lossy && end-start >= 2 && buf[start] == '"' {
		if err := validateUTF8Range(buf, start+1, end-1, false); err != nil {
			return LazyValue{}, err
		}
	}
	return LazyValue{raw: buf[start:end]}, nil
}

// locateValueAt returns the [start, end) span of the value whose first
// significant byte is at pos.
func locateValueAt(scan *Scanner, buf []byte, pos int) (int, int, error) {
	if pos >= len(buf) {
		return 0, 0, newError(buf, pos, ErrExpectedValue, "unexpected end of input")
	}
	end, err := scan.SkipValue(pos)
	if err != nil {
		return 0, 0, err
	}
	return pos, end, nil
}

// descend resolves one PathStep against the value spanning [start, end),
// returning the span of the selected child.
func descend(scan *Scanner, buf []byte, start, end int, step PathStep) (int, int, error) {
	if step.isIndex {
		return descendIndex(scan, buf, start, end, step.index)
	}
	return descendKey(scan, buf, start, end, step.key)
}

func descendIndex(scan *Scanner, buf []byte, start, end int, target int) (int, int, error) {
	if buf[start] != '[' {
		return 0, 0, &Error{Code: ErrTypeMismatch, Message: "value is not an array", Offset: start, source: buf}
	}
	pos := start + 1
	for idx := 0; ; idx++ {
		pos = scan.SkipWhitespace(pos)
		if pos >= end || buf[pos] == ']' {
			return 0, 0, &Error{Code: ErrIndexOutOfBounds, Message: "array index out of bounds", Offset: start, source: buf}
		}
		vStart, vEnd, err := locateValueAt(scan, buf, pos)
		if err != nil {
			return 0, 0, err
		}
		if idx == target {
			return vStart, vEnd, nil
		}
		pos = scan.SkipWhitespace(vEnd)
		if pos < end && buf[pos] == ',' {
			pos++
			continue
		}
		if pos < end && buf[pos] == ']' {
			return 0, 0, &Error{Code: ErrIndexOutOfBounds, Message: "array index out of bounds", Offset: start, source: buf}
		}
		return 0, 0, newError(buf, pos, ErrExpectedValue, "expected ',' or ']'")
	}
}

func descendKey(scan *Scanner, buf []byte, start, end int, target string) (int, int, error) {
	if buf[start] != '{' {
		return 0, 0, &Error{Code: ErrTypeMismatch, Message: "value is not an object", Offset: start, source: buf}
	}
	pos := start + 1
	for {
		pos = scan.SkipWhitespace(pos)
		if pos >= end || buf[pos] == '}' {
			return 0, 0, &Error{Code: ErrKeyNotFound, Message: "key not found", Offset: start, source: buf}
		}
		if buf[pos] != '"' {
			return 0, 0, newError(buf, pos, ErrExpectedValue, "expected string key")
		}
		keyEnd := scan.SkipString(pos)
		if keyEnd < 0 {
			return 0, 0, newError(buf, pos, ErrUnterminatedString, "unterminated key")
		}
		keySpan := buf[pos:keyEnd]
		pos = scan.SkipWhitespace(keyEnd)
		if pos >= end || buf[pos] != ':' {
			return 0, 0, newError(buf, pos, ErrExpectedValue, "expected ':' after object key")
		}
		pos = scan.SkipWhitespace(pos + 1)
		vStart, vEnd, err := locateValueAt(scan, buf, pos)
		if err != nil {
			return 0, 0, err
		}
		if matchesKey(keySpan, target) {
			return vStart, vEnd, nil
		}
		pos = scan.SkipWhitespace(vEnd)
		if pos < end && buf[pos] == ',' {
			pos++
			continue
		}
		if pos < end && buf[pos] == '}' {
			return 0, 0, &Error{Code: ErrKeyNotFound, Message: "key not found", Offset: start, source: buf}
		}
		return 0, 0, newError(buf, pos, ErrExpectedValue, "expected ',' or '}'")
	}
}

// matchesKey compares a raw (quoted, possibly escaped) key span against a
// plain target string, decoding the span only if it contains a backslash.
func matchesKey(keySpan []byte, target string) bool {
	needsUnescape := false
	for i := 1; i < len(keySpan)-1; i++ {
		if keySpan[i] == '\\' {
			needsUnescape = true
			break
		}
	}
	if !needsUnescape {
		return string(keySpan[1:len(keySpan)-1]) == target
	}
	decoded, err := decodeKeyOrString(keySpan, true, false)
	if err != nil {
		return false
	}
	return string(decoded) == target
}

// pathTrieNode merges the common prefixes of a GetMany call so that a
// shared ancestor's members are only scanned once regardless of how many
// requested paths pass through it.
type pathTrieNode struct {
	children map[PathStep]*pathTrieNode
	results  []int // indices into the caller's paths slice that terminate here
}

func buildPathTrie(paths [][]PathStep) *pathTrieNode {
	root := &pathTrieNode{children: map[PathStep]*pathTrieNode{}}
	for i, p := range paths {
		cur := root
		for _, step := range p {
			next, ok := cur.children[step]
			if !ok {
				next = &pathTrieNode{children: map[PathStep]*pathTrieNode{}}
				cur.children[step] = next
			}
			cur = next
		}
		cur.results = append(cur.results, i)
	}
	return root
}

// getManyPaths resolves every path in paths against buf (already padded)
// in one traversal, visiting each shared ancestor node only once by
// merging paths into a prefix trie before walking.
func getManyPaths(buf []byte, paths [][]PathStep, o Options) ([]LazyValue, error) {
	scan := NewScanner(buf)
	pos := scan.SkipWhitespace(0)
	rootStart, rootEnd, err := locateValueAt(scan, buf, pos)
	if err != nil {
		return nil, err
	}
	out := make([]LazyValue, len(paths))
	trie := buildPathTrie(paths)
	if err := walkTrie(scan, buf, rootStart, rootEnd, trie, out); err != nil {
		return nil, err
	}
	if o.ValidateUTF8 && !o.UTF8Lossy {
		for _, v := range out {
			if len(v.raw) >= 2 && v.raw[0] == '"' {
				if err := validateUTF8Range(v.raw, 1, len(v.raw)-1, false); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func walkTrie(scan *Scanner, buf []byte, start, end int, node *pathTrieNode, out []LazyValue) error {
	for _, i := range node.results {
		out[i] = LazyValue{raw: buf[start:end]}
	}
	if len(node.children) == 0 {
		return nil
	}
	// Collect children keyed by name/index so a single pass over the
	// container's members can dispatch to every matching child trie node.
	keyChildren := map[string]*pathTrieNode{}
	idxChildren := map[int]*pathTrieNode{}
	for step, child := range node.children {
		if step.isIndex {
			idxChildren[step.index] = child
		} else {
			keyChildren[step.key] = child
		}
	}
	if len(idxChildren) > 0 {
		if start >= len(buf) || buf[start] != '[' {
			return &Error{Code: ErrTypeMismatch, Message: "value is not an array", Offset: start, source: buf}
		}
		pos := start + 1
		for idx := 0; len(idxChildren) > 0; idx++ {
			pos = scan.SkipWhitespace(pos)
			if pos >= end || buf[pos] == ']' {
				break
			}
			vStart, vEnd, err := locateValueAt(scan, buf, pos)
			if err != nil {
				return err
			}
			if child, ok := idxChildren[idx]; ok {
				if err := walkTrie(scan, buf, vStart, vEnd, child, out); err != nil {
					return err
				}
				delete(idxChildren, idx)
			}
			pos = scan.SkipWhitespace(vEnd)
			if pos < end && buf[pos] == ',' {
				pos++
				continue
			}
			break
		}
		return nil
	}
	if start >= len(buf) || buf[start] != '{' {
		return &Error{Code: ErrTypeMismatch, Message: "value is not an object", Offset: start, source: buf}
	}
	pos := start + 1
	for len(keyChildren) > 0 {
		pos = scan.SkipWhitespace(pos)
		if pos >= end || buf[pos] == '}' {
			break
		}
		keyEnd := scan.SkipString(pos)
		if keyEnd < 0 {
			return newError(buf, pos, ErrUnterminatedString, "unterminated key")
		}
		keySpan := buf[pos:keyEnd]
		pos = scan.SkipWhitespace(keyEnd)
		if pos >= end || buf[pos] != ':' {
			return newError(buf, pos, ErrExpectedValue, "expected ':' after object key")
		}
		pos = scan.SkipWhitespace(pos + 1)
		vStart, vEnd, err := locateValueAt(scan, buf, pos)
		if err != nil {
			return err
		}
		for name, child := range keyChildren {
			if matchesKey(keySpan, name) {
				if err := walkTrie(scan, buf, vStart, vEnd, child, out); err != nil {
					return err
				}
				delete(keyChildren, name)
				break
			}
		}
		pos = scan.SkipWhitespace(vEnd)
		if pos < end && buf[pos] == ',' {
			pos++
			continue
		}
		break
	}
	return nil
}
