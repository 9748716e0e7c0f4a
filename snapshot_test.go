package simdj

import "testing"

func TestSnapshotPreservesStructure(t *testing.T) {
	src := `{"a":[1,2,{"b":"c"}],"d":null,"e":true,"f":1.5}`
	doc := mustParse(t, src)
	data, err := SaveSnapshot(doc)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := LoadSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}

	v, err := restored.Root().Get("a")
	if err != nil {
		t.Fatal(err)
	}
	n, err := v.Len()
	if err != nil || n != 3 {
		t.Fatalf("array len = %d, err %v, want 3", n, err)
	}
	third, err := v.At(2)
	if err != nil {
		t.Fatal(err)
	}
	b, err := third.Get("b")
	if err != nil {
		t.Fatal(err)
	}
	s, err := b.Str()
	if err != nil || s != "c" {
		t.Fatalf("got %q, err %v, want c", s, err)
	}

	dv, err := restored.Root().Get("d")
	if err != nil || !dv.IsNull() {
		t.Fatalf("d should restore as null, err %v", err)
	}

	fv, err := restored.Root().Get("f")
	if err != nil {
		t.Fatal(err)
	}
	f, err := fv.Float64()
	if err != nil || f != 1.5 {
		t.Fatalf("got %v, err %v, want 1.5", f, err)
	}
}

func TestSnapshotMagicRejectsGarbage(t *testing.T) {
	if _, err := LoadSnapshot([]byte("not a snapshot")); err == nil {
		t.Fatal("expected error loading non-snapshot data")
	}
}

func TestSnapshotAllCompressModes(t *testing.T) {
	src := `{"a":[1,2,3],"b":"hello world","c":null}`
	doc := mustParse(t, src)
	for _, mode := range []CompressMode{CompressNone, CompressFast, CompressDefault} {
		data, err := SaveSnapshotMode(doc, mode)
		if err != nil {
			t.Fatalf("mode %d: %v", mode, err)
		}
		restored, err := LoadSnapshot(data)
		if err != nil {
			t.Fatalf("mode %d: %v", mode, err)
		}
		if doc.Hash() != restored.Hash() {
			t.Fatalf("mode %d: hash mismatch after round trip", mode)
		}
	}
}

func TestSnapshotRoundTripDuplicateKeys(t *testing.T) {
	doc := mustParse(t, `{"a":1,"a":2}`)
	data, err := SaveSnapshot(doc)
	if err != nil {
		t.Fatal(err)
	}
	restored, err := LoadSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	pairs, err := restored.Root().Pairs()
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(pairs))
	}
	if doc.Hash() != restored.Hash() {
		t.Fatal("hash mismatch after snapshot round trip with duplicate keys")
	}
}
