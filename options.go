package simdj

// Options controls parsing and serialization behavior. The zero value
// disables UTF-8 validation and string copying; use DefaultOptions (or the
// With* constructors over it) to get strict UTF-8 validation and string
// copying turned on — constructing an Options{} literal by hand opts out
// of both.
type Options struct {
	// ValidateUTF8 strictly validates UTF-8 in all string contents.
	// When false, invalid sequences pass through unchanged (unsafe for
	// downstream consumers that assume valid UTF-8).
	ValidateUTF8 bool

	// UTF8Lossy replaces invalid UTF-8 and lone surrogates with U+FFFD
	// instead of failing. Implies string decoding always succeeds.
	UTF8Lossy bool

	// ArbitraryPrecision stores numbers as RawNumber (exact decimal text)
	// rather than decoding them into I64/U64/F64.
	ArbitraryPrecision bool

	// SortKeys sorts object keys lexicographically on serialization.
	SortKeys bool

	// Pretty pretty-prints on serialization (two-space indent, newlines).
	Pretty bool

	// NonTrailingZero serializes floats with an integral value without a
	// trailing ".0" suffix.
	NonTrailingZero bool

	// CopyStrings gives each decoded string its own allocation instead of
	// a slice of the parser's input. DefaultOptions sets this true.
	// ParseToValue parses a padded internal copy of the caller's buffer,
	// so with CopyStrings false escape-free strings share that internal
	// copy; the caller's buffer is not referenced either way.
	CopyStrings bool
}

// DefaultOptions returns the default Options: strict UTF-8 validation and
// string copying enabled, everything else off.
func DefaultOptions() Options {
	return Options{
		ValidateUTF8: true,
		CopyStrings:  true,
	}
}

// Option mutates an Options value. Option values compose: apply them in
// order over DefaultOptions() to build a final configuration.
type Option func(*Options)

// WithValidateUTF8 toggles strict UTF-8 validation of string content.
func WithValidateUTF8(b bool) Option {
	return func(o *Options) { o.ValidateUTF8 = b }
}

// WithUTF8Lossy toggles lossy UTF-8/surrogate repair via U+FFFD.
func WithUTF8Lossy(b bool) Option {
	return func(o *Options) { o.UTF8Lossy = b }
}

// WithArbitraryPrecision toggles RawNumber mode.
func WithArbitraryPrecision(b bool) Option {
	return func(o *Options) { o.ArbitraryPrecision = b }
}

// WithSortKeys toggles lexicographic object key sorting on serialization.
func WithSortKeys(b bool) Option {
	return func(o *Options) { o.SortKeys = b }
}

// WithPretty toggles pretty-printing on serialization.
func WithPretty(b bool) Option {
	return func(o *Options) { o.Pretty = b }
}

// WithNonTrailingZero toggles suppression of the ".0" suffix on integral
// floats during serialization.
func WithNonTrailingZero(b bool) Option {
	return func(o *Options) { o.NonTrailingZero = b }
}

// WithCopyStrings controls whether decoded strings are copied (default) or
// may share the parser's padded internal copy of the input when
// escape-free.
func WithCopyStrings(b bool) Option {
	return func(o *Options) { o.CopyStrings = b }
}

// apply builds an Options value from DefaultOptions() plus opts in order.
func apply(opts []Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
