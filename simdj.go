// Package simdj implements a bit-parallel JSON parser built from a layered
// pipeline (bitmap engine, reader, scanner, tokenizer, number/string
// parsers) on top of an arena-backed document tree, plus a path-guided
// on-demand getter and a structural serializer.
package simdj

// padInput returns a copy of buf with sentinelPad zero bytes appended past
// its logical end, as required by the Reader/Scanner's 64-byte window
// reads. The original buf is left untouched; every exported entry point in
// this package calls padInput internally rather than mutating the
// caller's slice.
func padInput(buf []byte) []byte {
	out := make([]byte, len(buf)+sentinelPad)
	copy(out, buf)
	return out
}

// ParseToValue parses buf into a Document, materializing a full arena tree.
// buf is never mutated or retained; a padded internal copy is parsed
// instead.
func ParseToValue(buf []byte, opts ...Option) (*Document, error) {
	o := apply(opts)
	padded := padInput(buf)

	arena := newArena(len(buf))
	b := newDocumentBuilder(padded, o, arena)
	if err := ParseToVisitor(padded, o, b); err != nil {
		return nil, rebase(err, buf)
	}
	if b.err != nil {
		return nil, rebase(b.err, buf)
	}
	if b.result < 0 {
		return nil, &Error{Code: ErrExpectedValue, Message: "empty document"}
	}
	return &Document{arena: arena, root: b.result, opts: o}, nil
}

// rebase re-points an *Error produced against a padded internal buffer at
// the caller's original buffer, so Position() reports correctly even
// though the two slices differ past len(orig).
func rebase(err error, orig []byte) error {
	if e, ok := err.(*Error); ok {
		e.source = orig
		return e
	}
	return err
}

// Parse is ParseToValue using default Options.
func Parse(buf []byte) (*Document, error) {
	return ParseToValue(buf)
}

// Validate reports whether buf is syntactically valid JSON without
// materializing a Document, by driving the Tokenizer to completion over a
// NopVisitor.
func Validate(buf []byte, opts ...Option) error {
	o := apply(opts)
	padded := padInput(buf)
	err := ParseToVisitor(padded, o, NopVisitor{})
	return rebase(err, buf)
}

// ondemandDefaults builds Options for Get/GetMany. Unlike apply (used by
// ParseToValue/Validate), UTF-8 validation defaults to off here: spec §4.6
// reserves the unchecked/validated distinction to the on-demand getters
// specifically, so WithValidateUTF8(true) must be passed explicitly to opt
// into the validated mode.
func ondemandDefaults(opts []Option) Options {
	o := Options{CopyStrings: true}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Get navigates buf on-demand along path (a sequence of Key/Index steps)
// without building a Document, returning the raw (still-encoded) bytes of
// the located value. By default this is the "unchecked" mode of spec §4.6:
// no UTF-8 validation is performed along the way, including on the
// returned value. Pass WithValidateUTF8(true) for the validated mode,
// which checks the final value's content (if it is a string) before
// returning it. See ondemand.go for PathStep and LazyValue.
func Get(buf []byte, path []PathStep, opts ...Option) (LazyValue, error) {
	o := ondemandDefaults(opts)
	padded := padInput(buf)
	lv, err := getPath(padded, path, o)
	if err != nil {
		return LazyValue{}, rebase(err, buf)
	}
	lv.orig = buf
	return lv, nil
}

// GetMany resolves multiple paths against buf in a single pass, merging
// shared prefixes so common ancestors are only skipped once. See
// ondemand.go for details and Get for the unchecked/validated mode
// distinction.
func GetMany(buf []byte, paths [][]PathStep, opts ...Option) ([]LazyValue, error) {
	o := ondemandDefaults(opts)
	padded := padInput(buf)
	out, err := getManyPaths(padded, paths, o)
	if err != nil {
		return nil, rebase(err, buf)
	}
	for i := range out {
		out[i].orig = buf
	}
	return out, nil
}

// Serialize writes document to its canonical JSON text form per opts.
func Serialize(doc *Document, opts ...Option) ([]byte, error) {
	o := apply(opts)
	return serializeDocument(doc, o)
}
