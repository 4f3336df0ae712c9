package codec

import (
	"testing"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/memstore"
)

type Shape interface{ isShape() }

type Circle struct {
	R float64
}

type Square struct {
	Side int
}

type Segment struct {
	Tuple
	From int
	To   int
}

type Label string

type Empty struct{}

func (Circle) isShape()  {}
func (Square) isShape()  {}
func (Segment) isShape() {}
func (Label) isShape()   {}
func (Empty) isShape()   {}

// shapeCompiler returns a compiler with Shape registered as an enum.
func shapeCompiler(t *testing.T) *Compiler {
	t.Helper()
	c := NewCompiler()
	err := Register[Shape](c, "Shape",
		Case[Circle]("Circle"),
		Case[Square]("Square"),
		Case[Segment]("Segment"),
		Case[Label]("Label"),
		Case[Empty]("Empty"),
	)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return c
}

func mustTag(t *testing.T, s *memstore.Store, h heapcodec.Handle) heapcodec.Tag {
	t.Helper()
	tag, err := s.Tag(h)
	if err != nil {
		t.Fatalf("Tag(%d): %v", h, err)
	}
	return tag
}

func mustItems(t *testing.T, s *memstore.Store, h heapcodec.Handle) []heapcodec.Handle {
	t.Helper()
	n, err := s.ListLen(h)
	if err != nil {
		t.Fatalf("ListLen(%d): %v", h, err)
	}
	items := make([]heapcodec.Handle, n)
	for i := range items {
		if items[i], err = s.ListItem(h, i); err != nil {
			t.Fatalf("ListItem(%d, %d): %v", h, i, err)
		}
	}
	return items
}

func mustInt(t *testing.T, s *memstore.Store, h heapcodec.Handle) int64 {
	t.Helper()
	n, err := s.Number(h)
	if err != nil {
		t.Fatalf("Number(%d): %v", h, err)
	}
	v, ok := n.Int64()
	if !ok {
		t.Fatalf("Number(%d) = %v, not an int64", h, n)
	}
	return v
}

func mustSymbol(t *testing.T, s *memstore.Store, h heapcodec.Handle) string {
	t.Helper()
	name, err := s.SymbolName(h)
	if err != nil {
		t.Fatalf("SymbolName(%d): %v", h, err)
	}
	return name
}

func mustText(t *testing.T, s *memstore.Store, h heapcodec.Handle) string {
	t.Helper()
	text, err := s.Text(h)
	if err != nil {
		t.Fatalf("Text(%d): %v", h, err)
	}
	return text
}

func mustPair(t *testing.T, s *memstore.Store, h heapcodec.Handle) (heapcodec.Handle, heapcodec.Handle) {
	t.Helper()
	k, v, err := s.Pair(h)
	if err != nil {
		t.Fatalf("Pair(%d): %v", h, err)
	}
	return k, v
}

func mustAssoc(t *testing.T, s *memstore.Store, h heapcodec.Handle, i int) bool {
	t.Helper()
	assoc, err := s.Associative(h, i)
	if err != nil {
		t.Fatalf("Associative(%d, %d): %v", h, i, err)
	}
	return assoc
}

func number(t *testing.T, s *memstore.Store, n int64) heapcodec.Handle {
	t.Helper()
	h, err := s.AddNumber(heapcodec.IntNumber(n))
	if err != nil {
		t.Fatalf("AddNumber: %v", err)
	}
	return h
}

func symbol(t *testing.T, s *memstore.Store, name string) heapcodec.Handle {
	t.Helper()
	h, err := s.ParseSymbol(name)
	if err != nil {
		t.Fatalf("ParseSymbol: %v", err)
	}
	return h
}

func charList(t *testing.T, s *memstore.Store, text string) heapcodec.Handle {
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

func list(t *testing.T, s *memstore.Store, items ...heapcodec.Handle) heapcodec.Handle {
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

func pair(t *testing.T, s *memstore.Store, k, v heapcodec.Handle) heapcodec.Handle {
	t.Helper()
	h, err := s.AddPair(k, v)
	if err != nil {
		t.Fatalf("AddPair: %v", err)
	}
	return h
}

func concat(t *testing.T, s *memstore.Store, l, r heapcodec.Handle) heapcodec.Handle {
	t.Helper()
	h, err := s.AddConcatenation(l, r)
	if err != nil {
		t.Fatalf("AddConcatenation: %v", err)
	}
	return h
}

func slice(t *testing.T, s *memstore.Store, source heapcodec.Handle, start, end int64) heapcodec.Handle {
	t.Helper()
	rng, err := s.AddRange(number(t, s, start), number(t, s, end))
	if err != nil {
		t.Fatalf("AddRange: %v", err)
	}
	h, err := s.AddSlice(source, rng)
	if err != nil {
		t.Fatalf("AddSlice: %v", err)
	}
	return h
}
