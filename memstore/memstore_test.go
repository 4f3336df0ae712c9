package memstore

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/errors"
)

func mustNumber(t *testing.T, s *Store, n int64) heapcodec.Handle {
	t.Helper()
	h, err := s.AddNumber(heapcodec.IntNumber(n))
	if err != nil {
		t.Fatalf("AddNumber(%d): %v", n, err)
	}
	return h
}

func mustCharList(t *testing.T, s *Store, text string) heapcodec.Handle {
	t.Helper()
	if err := s.StartCharList(); err != nil {
		t.Fatal(err)
	}
	for _, r := range text {
		if err := s.AppendChar(r); err != nil {
			t.Fatal(err)
		}
	}
	h, err := s.EndCharList()
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func mustList(t *testing.T, s *Store, items ...heapcodec.Handle) heapcodec.Handle {
	t.Helper()
	if err := s.StartList(len(items)); err != nil {
		t.Fatal(err)
	}
	for _, h := range items {
		if err := s.AppendList(h, false); err != nil {
			t.Fatal(err)
		}
	}
	h, err := s.EndList()
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestNew_Preallocated(t *testing.T) {
	s := New()
	tests := []struct {
		h    heapcodec.Handle
		want heapcodec.Tag
	}{
		{UnitHandle, heapcodec.TagUnit},
		{TrueHandle, heapcodec.TagTrue},
		{FalseHandle, heapcodec.TagFalse},
	}
	for _, tt := range tests {
		tag, err := s.Tag(tt.h)
		if err != nil {
			t.Fatalf("Tag(%d): %v", tt.h, err)
		}
		if tag != tt.want {
			t.Errorf("Tag(%d) = %v, want %v", tt.h, tag, tt.want)
		}
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	h, _ := s.AddTrue()
	if h != TrueHandle {
		t.Errorf("AddTrue() = %d, want %d", h, TrueHandle)
	}
}

func TestStore_Scalars(t *testing.T) {
	s := New()

	n := mustNumber(t, s, -42)
	got, err := s.Number(n)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := got.Int64(); !ok || v != -42 {
		t.Errorf("Number = %v, want -42", got)
	}

	c, err := s.AddChar('λ')
	if err != nil {
		t.Fatal(err)
	}
	r, err := s.Char(c)
	if err != nil || r != 'λ' {
		t.Errorf("Char = %q, %v", r, err)
	}

	if _, err := s.Char(n); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseStore, Kind: errors.KindTypeMismatch}) {
		t.Errorf("Char on Number: err = %v, want type mismatch", err)
	}
	if _, err := s.Tag(heapcodec.Handle(1000)); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseStore, Kind: errors.KindOutOfBounds}) {
		t.Errorf("Tag on unknown handle: err = %v, want out of bounds", err)
	}
}

func TestStore_CharAndByteLists(t *testing.T) {
	s := New()

	h := mustCharList(t, s, "héllo")
	n, err := s.CharListLen(h)
	if err != nil || n != 5 {
		t.Fatalf("CharListLen = %d, %v", n, err)
	}
	r, err := s.CharListItem(h, 1)
	if err != nil || r != 'é' {
		t.Errorf("CharListItem(1) = %q, %v", r, err)
	}
	if _, err := s.CharListItem(h, 5); err == nil {
		t.Error("CharListItem(5) should fail")
	}

	if err := s.StartByteList(); err != nil {
		t.Fatal(err)
	}
	for _, b := range []byte{0xde, 0xad} {
		if err := s.AppendByte(b); err != nil {
			t.Fatal(err)
		}
	}
	bh, err := s.EndByteList()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := s.ByteListLen(bh); n != 2 {
		t.Errorf("ByteListLen = %d, want 2", n)
	}
	if b, _ := s.ByteListItem(bh, 1); b != 0xad {
		t.Errorf("ByteListItem(1) = %x, want ad", b)
	}
}

func TestStore_NestedBuilds(t *testing.T) {
	s := New()

	if err := s.StartList(2); err != nil {
		t.Fatal(err)
	}
	inner := mustList(t, s, mustNumber(t, s, 1))
	if err := s.AppendList(inner, false); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendList(mustCharList(t, s, "x"), true); err != nil {
		t.Fatal(err)
	}
	outer, err := s.EndList()
	if err != nil {
		t.Fatal(err)
	}

	if n, _ := s.ListLen(outer); n != 2 {
		t.Fatalf("ListLen(outer) = %d, want 2", n)
	}
	first, _ := s.ListItem(outer, 0)
	if first != inner {
		t.Errorf("ListItem(0) = %d, want %d", first, inner)
	}
	assoc, err := s.Associative(outer, 1)
	if err != nil || !assoc {
		t.Errorf("Associative(1) = %v, %v; want true", assoc, err)
	}
}

func TestStore_EndWithoutStart(t *testing.T) {
	s := New()
	if _, err := s.EndList(); err == nil {
		t.Error("EndList without StartList should fail")
	}
	if err := s.AppendChar('a'); err == nil {
		t.Error("AppendChar without StartCharList should fail")
	}
	if _, err := s.EndByteList(); err == nil {
		t.Error("EndByteList without StartByteList should fail")
	}
}

func TestStore_Symbols(t *testing.T) {
	s := New()

	a, err := s.ParseSymbol("Shape::Circle")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.ParseSymbol("Shape::Circle")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.names) != 1 {
		t.Errorf("interned %d names, want 1", len(s.names))
	}
	na, _ := s.SymbolName(a)
	nb, _ := s.SymbolName(b)
	if na != nb || na != "Shape::Circle" {
		t.Errorf("SymbolName = %q, %q", na, nb)
	}
	if !s.LookupSymbol("Shape::Circle") || s.LookupSymbol("Shape::Square") {
		t.Error("LookupSymbol reported wrong membership")
	}

	same, err := s.SymbolFrom(a)
	if err != nil || same != a {
		t.Errorf("SymbolFrom(symbol) = %d, %v; want %d", same, err, a)
	}

	fromText, err := s.SymbolFrom(mustCharList(t, s, "count"))
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := s.SymbolName(fromText); name != "count" {
		t.Errorf("SymbolFrom(char list) name = %q, want count", name)
	}
}

func TestStore_PairRangeSlice(t *testing.T) {
	s := New()

	k := mustCharList(t, s, "k")
	v := mustNumber(t, s, 7)
	p, err := s.AddPair(k, v)
	if err != nil {
		t.Fatal(err)
	}
	gk, gv, err := s.Pair(p)
	if err != nil || gk != k || gv != v {
		t.Errorf("Pair = (%d, %d, %v), want (%d, %d)", gk, gv, err, k, v)
	}

	if _, err := s.AddRange(k, v); err == nil {
		t.Error("AddRange with non-number start should fail")
	}
	rng, err := s.AddRange(mustNumber(t, s, 0), mustNumber(t, s, 1))
	if err != nil {
		t.Fatal(err)
	}

	list := mustList(t, s, k, v)
	if _, err := s.AddSlice(list, v); err == nil {
		t.Error("AddSlice with non-range should fail")
	}
	sl, err := s.AddSlice(list, rng)
	if err != nil {
		t.Fatal(err)
	}
	src, r, err := s.Slice(sl)
	if err != nil || src != list || r != rng {
		t.Errorf("Slice = (%d, %d, %v)", src, r, err)
	}

	cat, err := s.AddConcatenation(list, list)
	if err != nil {
		t.Fatal(err)
	}
	l, rr, err := s.Concatenation(cat)
	if err != nil || l != list || rr != list {
		t.Errorf("Concatenation = (%d, %d, %v)", l, rr, err)
	}
}

func TestWithCapacity(t *testing.T) {
	s := New(WithCapacity(1024))
	if cap(s.values) < 1024 {
		t.Errorf("cap = %d, want >= 1024", cap(s.values))
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}
