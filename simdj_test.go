package simdj

import (
	"math"
	"testing"
)

func mustParse(t *testing.T, src string, opts ...Option) *Document {
	t.Helper()
	doc, err := ParseToValue([]byte(src), opts...)
	if err != nil {
		t.Fatalf("ParseToValue(%q): %v", src, err)
	}
	return doc
}

func TestParseScalars(t *testing.T) {
	cases := []struct {
		src  string
		tag  NodeTag
	}{
		{"null", TagNull},
		{"true", TagBool},
		{"false", TagBool},
		{"42", TagI64},
		{"-42", TagI64},
		{"3.14", TagF64},
		{`"hello"`, TagStr},
		{"[]", TagArray},
		{"{}", TagObject},
	}
	for _, c := range cases {
		doc := mustParse(t, c.src)
		if got := doc.Root().Tag(); got != c.tag {
			t.Errorf("%q: got tag %v, want %v", c.src, got, c.tag)
		}
	}
}

func TestParseNestedPath(t *testing.T) {
	// Scenario 1 from spec.md §8.2.
	doc := mustParse(t, `{"a":{"b":{"c":[null,"found"]}}}`)
	a, err := doc.Root().Get("a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := a.Get("b")
	if err != nil {
		t.Fatal(err)
	}
	c, err := b.Get("c")
	if err != nil {
		t.Fatal(err)
	}
	el, err := c.At(1)
	if err != nil {
		t.Fatal(err)
	}
	s, err := el.Str()
	if err != nil {
		t.Fatal(err)
	}
	if s != "found" {
		t.Fatalf("got %q, want %q", s, "found")
	}
}

func TestGetPathAgreement(t *testing.T) {
	// Scenario 1 again, via the on-demand getter, checking agreement with
	// the materialized Document (spec.md §8.1 "path agreement").
	src := `{"a":{"b":{"c":[null,"found"]}}}`
	lv, err := Get([]byte(src), []PathStep{Key("a"), Key("b"), Key("c"), Index(1)})
	if err != nil {
		t.Fatal(err)
	}
	if string(lv.Raw()) != `"found"` {
		t.Fatalf("raw = %q, want %q", lv.Raw(), `"found"`)
	}
	s, err := lv.Str()
	if err != nil {
		t.Fatal(err)
	}
	if s != "found" {
		t.Fatalf("decoded = %q, want %q", s, "found")
	}
}

func TestTruncatedArrayError(t *testing.T) {
	// Scenario 2 from spec.md §8.2.
	_, err := ParseToValue([]byte("[1, 2, 3, 4, 5, 6"))
	if err == nil {
		t.Fatal("expected error for truncated array")
	}
	want := "Expected this character to be either a ',' or a ']' while parsing at line 1 column 17"
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestSurrogatePairDecoding(t *testing.T) {
	// Scenario 3 from spec.md §8.2.
	// High/low surrogate escape pair for U+1F600.
	doc := mustParse(t, `{"k":"\uD83D`+`\uDE00"}`)
	v, err := doc.Root().Get("k")
	if err != nil {
		t.Fatal(err)
	}
	s, err := v.Str()
	if err != nil {
		t.Fatal(err)
	}
	want := "\U0001F600"
	if s != want {
		t.Fatalf("got %q (% x), want %q (% x)", s, []byte(s), want, []byte(want))
	}
}

func TestUnpairedSurrogate(t *testing.T) {
	// Scenario 4 from spec.md §8.2: strict mode fails.
	_, err := ParseToValue([]byte(`{"k":"\uD83D"}`))
	if err == nil {
		t.Fatal("expected InvalidSurrogate error")
	}
	var e *Error
	if ee, ok := err.(*Error); ok {
		e = ee
	} else {
		t.Fatalf("error is not *Error: %v", err)
	}
	if e.Code != ErrInvalidSurrogate {
		t.Fatalf("code = %v, want ErrInvalidSurrogate", e.Code)
	}

	// Lossy mode substitutes U+FFFD.
	doc, err := ParseToValue([]byte(`{"k":"\uD83D"}`), WithUTF8Lossy(true))
	if err != nil {
		t.Fatalf("lossy parse failed: %v", err)
	}
	v, err := doc.Root().Get("k")
	if err != nil {
		t.Fatal(err)
	}
	s, err := v.Str()
	if err != nil {
		t.Fatal(err)
	}
	if s != "�" {
		t.Fatalf("got %q, want U+FFFD", s)
	}
}

func TestFloatRoundsToNearestEven(t *testing.T) {
	// Scenario 5 from spec.md §8.2.
	doc := mustParse(t, "3.141592653589793")
	f, err := doc.Root().Float64()
	if err != nil {
		t.Fatal(err)
	}
	if f != math.Pi {
		t.Fatalf("got %v (bits %x), want math.Pi (bits %x)", f, math.Float64bits(f), math.Float64bits(math.Pi))
	}
}

func TestDuplicateKeysLastWinsAllIterated(t *testing.T) {
	// Scenario 6 from spec.md §8.2.
	doc := mustParse(t, `{"a":1,"a":2}`)
	v, err := doc.Root().Get("a")
	if err != nil {
		t.Fatal(err)
	}
	i, err := v.Int64()
	if err != nil {
		t.Fatal(err)
	}
	if i != 2 {
		t.Fatalf("Get(a) = %d, want 2", i)
	}

	pairs, err := doc.Root().Pairs()
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	wantVals := []int64{1, 2}
	for idx, p := range pairs {
		if p.Key != "a" {
			t.Fatalf("pair %d key = %q, want a", idx, p.Key)
		}
		got, err := p.Value.Int64()
		if err != nil {
			t.Fatal(err)
		}
		if got != wantVals[idx] {
			t.Fatalf("pair %d value = %d, want %d", idx, got, wantVals[idx])
		}
	}
}

func TestTrailingDataAfterRoot(t *testing.T) {
	_, err := ParseToValue([]byte(`{"a":1} garbage`))
	if err == nil {
		t.Fatal("expected trailing data error")
	}
}

func TestRoundTripSerialize(t *testing.T) {
	src := `{"a":[1,2,3],"b":"hi","c":null,"d":true}`
	doc := mustParse(t, src)
	out, err := Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc2, err := ParseToValue(out)
	if err != nil {
		t.Fatalf("re-parse of serialized output failed: %v (output: %s)", err, out)
	}
	if doc.Hash() != doc2.Hash() {
		t.Fatalf("round-trip changed content hash")
	}
}

func TestSerializeSortKeys(t *testing.T) {
	doc := mustParse(t, `{"z":1,"a":2,"m":3}`)
	out, err := Serialize(doc, WithSortKeys(true))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"a":2,"m":3,"z":1}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestSerializePretty(t *testing.T) {
	doc := mustParse(t, `{"a":1}`)
	out, err := Serialize(doc, WithPretty(true))
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n  \"a\": 1\n}"
	if string(out) != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestNonTrailingZero(t *testing.T) {
	doc := mustParse(t, `1.0`)

	out, err := Serialize(doc)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "1.0" {
		t.Fatalf("default serialize got %s, want 1.0", out)
	}

	out, err = Serialize(doc, WithNonTrailingZero(true))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "1" {
		t.Fatalf("non-trailing-zero serialize got %s, want 1", out)
	}
}

func TestArenaScratchBound(t *testing.T) {
	src := "[1,1,1,1,1,1,1,1,1,1]"
	doc := mustParse(t, src)
	if doc.Arena().Len() > arenaCapacity(len(src)) {
		t.Fatalf("used %d nodes, exceeds bound %d", doc.Arena().Len(), arenaCapacity(len(src)))
	}
}

func TestValidatorRejectsGrammarViolations(t *testing.T) {
	bad := []string{
		"",
		"{",
		"[1,]",
		"{\"a\":}",
		"01",
		"1.",
		".1",
		"1e",
		"truee",
		"[1 2]",
		"{\"a\" 1}",
	}
	for _, src := range bad {
		if err := Validate([]byte(src)); err == nil {
			t.Errorf("Validate(%q): expected error, got nil", src)
		}
	}
}

func TestValidatorAcceptsValidGrammar(t *testing.T) {
	good := []string{
		"0", "-0", "-1", "0.5", "1e10", "1E-10", "1.5e+10",
		"[]", "{}", "[1,2,3]", `{"a":1,"b":[1,2,{"c":3}]}`,
		`"A"`, "null", "true", "false",
	}
	for _, src := range good {
		if err := Validate([]byte(src)); err != nil {
			t.Errorf("Validate(%q): unexpected error: %v", src, err)
		}
	}
}

func TestArbitraryPrecisionNumbers(t *testing.T) {
	src := "99999999999999999999999999999999999999"
	doc := mustParse(t, src, WithArbitraryPrecision(true))
	raw, err := doc.Root().RawNumber()
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != src {
		t.Fatalf("got %s, want %s", raw, src)
	}
}

func TestIntegerFastPath(t *testing.T) {
	doc := mustParse(t, "9223372036854775807") // math.MaxInt64
	v, err := doc.Root().Int64()
	if err != nil {
		t.Fatal(err)
	}
	if v != math.MaxInt64 {
		t.Fatalf("got %d", v)
	}

	doc2 := mustParse(t, "18446744073709551615") // math.MaxUint64
	u, err := doc2.Root().Uint64()
	if err != nil {
		t.Fatal(err)
	}
	if u != math.MaxUint64 {
		t.Fatalf("got %d", u)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	src := `{"a":[1,2,3],"b":{"nested":"value"},"c":3.5,"d":null}`
	doc := mustParse(t, src)
	data, err := SaveSnapshot(doc)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := LoadSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Hash() != restored.Hash() {
		t.Fatal("snapshot round-trip changed content hash")
	}
}

func TestMutationAncestorGuard(t *testing.T) {
	doc := mustParse(t, `{"a":[1,2]}`)
	a, err := doc.Root().Get("a")
	if err != nil {
		t.Fatal(err)
	}
	aIdx := -1
	for i := 0; i < doc.Arena().Len(); i++ {
		if doc.Arena().node(i) == a {
			aIdx = i
			break
		}
	}
	if aIdx < 0 {
		t.Fatal("could not locate array node index")
	}
	rootIdx := -1
	for i := 0; i < doc.Arena().Len(); i++ {
		if doc.Arena().node(i) == doc.Root() {
			rootIdx = i
			break
		}
	}
	if err := doc.Push(aIdx, rootIdx); err == nil {
		t.Fatal("expected cycle error inserting root under its own child array")
	}
}

func TestGetManySharedPrefix(t *testing.T) {
	src := `{"a":{"x":1,"y":2},"b":3}`
	out, err := GetMany([]byte(src), [][]PathStep{
		{Key("a"), Key("x")},
		{Key("a"), Key("y")},
		{Key("b")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	if string(out[0].Raw()) != "1" || string(out[1].Raw()) != "2" || string(out[2].Raw()) != "3" {
		t.Fatalf("unexpected results: %q %q %q", out[0].Raw(), out[1].Raw(), out[2].Raw())
	}
}
