package simdj

import "testing"

func TestArrayIterYieldsPartialResultsBeforeTerminalError(t *testing.T) {
	// Scenario 2 from spec.md §8.2: a truncated array still yields every
	// element that appeared before the truncation.
	it, err := ToArrayIter([]byte("[1, 2, 3, 4, 5, 6"))
	if err != nil {
		t.Fatal(err)
	}
	var got []int64
	for {
		v, err, done := it.Next()
		if done {
			t.Fatal("iterator finished cleanly, want a terminal error")
		}
		if err != nil {
			want := "Expected this character to be either a ',' or a ']' while parsing at line 1 column 17"
			if err.Error() != want {
				t.Fatalf("error = %q, want %q", err.Error(), want)
			}
			break
		}
		n, numErr := v.Number(false)
		if numErr != nil {
			t.Fatal(numErr)
		}
		got = append(got, n.I64)
	}
	want := []int64{1, 2, 3, 4, 5, 6}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	// Subsequent calls stay done rather than panicking or re-erroring.
	if _, err, done := it.Next(); err != nil || !done {
		t.Fatalf("after terminal error, want (nil, true), got (%v, %v)", err, done)
	}
}

func TestArrayIterWellFormed(t *testing.T) {
	it, err := ToArrayIter([]byte(`[1, "two", [3], {"k":4}]`))
	if err != nil {
		t.Fatal(err)
	}
	var spans []string
	for {
		v, err, done := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if done {
			break
		}
		spans = append(spans, string(v.Raw()))
	}
	want := []string{"1", `"two"`, "[3]", `{"k":4}`}
	if len(spans) != len(want) {
		t.Fatalf("got %v, want %v", spans, want)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Fatalf("item %d: got %q, want %q", i, spans[i], want[i])
		}
	}
}

func TestArrayIterEmpty(t *testing.T) {
	it, err := ToArrayIter([]byte(`[]`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err, done := it.Next(); err != nil || !done {
		t.Fatalf("empty array: got (err=%v, done=%v), want (nil, true)", err, done)
	}
}

func TestToArrayIterRejectsNonArray(t *testing.T) {
	if _, err := ToArrayIter([]byte(`{"a":1}`)); err == nil {
		t.Fatal("expected error iterating an object as an array")
	}
}

func TestObjectIterDuplicateKeys(t *testing.T) {
	// Scenario 6 from spec.md §8.2: iter() yields every occurrence of a
	// duplicate key, in source order.
	it, err := ToObjectIter([]byte(`{"a":1,"a":2}`))
	if err != nil {
		t.Fatal(err)
	}
	var pairs []KVLazy
	for {
		kv, err, done := it.Next()
		if err != nil {
			t.Fatal(err)
		}
		if done {
			break
		}
		pairs = append(pairs, kv)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	for i, want := range []int64{1, 2} {
		if pairs[i].Key != "a" {
			t.Fatalf("pair %d key = %q, want a", i, pairs[i].Key)
		}
		n, err := pairs[i].Value.Number(false)
		if err != nil || n.I64 != want {
			t.Fatalf("pair %d value = %v (err %v), want %d", i, n, err, want)
		}
	}
}

func TestObjectIterNestedValue(t *testing.T) {
	it, err := ToObjectIter([]byte(`{"a":[1,2],"b":{"c":3}}`))
	if err != nil {
		t.Fatal(err)
	}
	kv1, err, done := it.Next()
	if err != nil || done {
		t.Fatalf("err=%v done=%v", err, done)
	}
	if kv1.Key != "a" || string(kv1.Value.Raw()) != "[1,2]" {
		t.Fatalf("got key=%q raw=%q", kv1.Key, kv1.Value.Raw())
	}
	kv2, err, done := it.Next()
	if err != nil || done {
		t.Fatalf("err=%v done=%v", err, done)
	}
	if kv2.Key != "b" || string(kv2.Value.Raw()) != `{"c":3}` {
		t.Fatalf("got key=%q raw=%q", kv2.Key, kv2.Value.Raw())
	}
	if _, err, done := it.Next(); err != nil || !done {
		t.Fatalf("want (nil, true) after last member, got (%v, %v)", err, done)
	}
}

func TestObjectIterEmpty(t *testing.T) {
	it, err := ToObjectIter([]byte(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err, done := it.Next(); err != nil || !done {
		t.Fatalf("empty object: got (err=%v, done=%v), want (nil, true)", err, done)
	}
}

func TestToObjectIterRejectsNonObject(t *testing.T) {
	if _, err := ToObjectIter([]byte(`[1,2]`)); err == nil {
		t.Fatal("expected error iterating an array as an object")
	}
}
