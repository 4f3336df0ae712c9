package memstore

import (
	"testing"

	"github.com/wippyai/heapcodec"
)

func TestCharListFrom(t *testing.T) {
	s := New()

	sym, _ := s.ParseSymbol("name")
	num := mustNumber(t, s, -12)
	flt, _ := s.AddNumber(heapcodec.FloatNumber(2.5))
	ch, _ := s.AddChar('z')
	pair, _ := s.AddPair(sym, num)
	rng, _ := s.AddRange(mustNumber(t, s, 1), mustNumber(t, s, 3))
	abc := mustCharList(t, s, "abc")
	def := mustCharList(t, s, "def")
	list := mustList(t, s, abc, def)
	cat, _ := s.AddConcatenation(abc, def)

	if err := s.StartByteList(); err != nil {
		t.Fatal(err)
	}
	_ = s.AppendByte('h')
	_ = s.AppendByte('i')
	bytes, _ := s.EndByteList()

	tests := []struct {
		name string
		h    heapcodec.Handle
		want string
	}{
		{"unit", UnitHandle, ""},
		{"true", TrueHandle, "true"},
		{"false", FalseHandle, "false"},
		{"symbol", sym, "name"},
		{"int", num, "-12"},
		{"float", flt, "2.5"},
		{"char", ch, "z"},
		{"bytes", bytes, "hi"},
		{"pair", pair, "name=-12"},
		{"range", rng, "1..3"},
		{"list", list, "abcdef"},
		{"concatenation", cat, "abcdef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := s.CharListFrom(tt.h)
			if err != nil {
				t.Fatalf("CharListFrom: %v", err)
			}
			tag, _ := s.Tag(h)
			if tag != heapcodec.TagCharList {
				t.Fatalf("tag = %v, want CharList", tag)
			}
			got, _ := s.Text(h)
			if got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("char list is returned as is", func(t *testing.T) {
		h, err := s.CharListFrom(abc)
		if err != nil || h != abc {
			t.Errorf("CharListFrom(abc) = %d, %v; want %d", h, err, abc)
		}
	})
}

func TestRealize_Slices(t *testing.T) {
	s := New()

	text := mustCharList(t, s, "abcdef")
	a := mustCharList(t, s, "a")
	b := mustCharList(t, s, "b")
	c := mustCharList(t, s, "c")
	list := mustList(t, s, a, b, c)
	left := mustList(t, s, a)
	right := mustList(t, s, b, c)
	cat, _ := s.AddConcatenation(left, right)

	slice := func(src heapcodec.Handle, start, end int64) heapcodec.Handle {
		rng, err := s.AddRange(mustNumber(t, s, start), mustNumber(t, s, end))
		if err != nil {
			t.Fatal(err)
		}
		h, err := s.AddSlice(src, rng)
		if err != nil {
			t.Fatal(err)
		}
		return h
	}

	tests := []struct {
		name    string
		h       heapcodec.Handle
		want    string
		wantErr bool
	}{
		{"char list inclusive", slice(text, 1, 3), "bcd", false},
		{"char list single", slice(text, 0, 0), "a", false},
		{"char list empty", slice(text, 3, 2), "", false},
		{"char list out of range", slice(text, 2, 9), "", true},
		{"list", slice(list, 1, 2), "bc", false},
		{"concatenation leaves", slice(cat, 0, 1), "ab", false},
		{"list empty", slice(list, 2, 0), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Text(tt.h)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Text = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Text: %v", err)
			}
			if got != tt.want {
				t.Errorf("Text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLeaves_Order(t *testing.T) {
	s := New()

	x := mustNumber(t, s, 1)
	y := mustNumber(t, s, 2)
	z := mustNumber(t, s, 3)
	w := mustNumber(t, s, 4)

	// ((x ++ y) ++ (z ++ w))
	xy, _ := s.AddConcatenation(x, y)
	zw, _ := s.AddConcatenation(z, w)
	root, _ := s.AddConcatenation(xy, zw)

	got, err := s.leaves(root)
	if err != nil {
		t.Fatal(err)
	}
	want := []heapcodec.Handle{x, y, z, w}
	if len(got) != len(want) {
		t.Fatalf("leaves = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("leaves[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestLeaves_DeepChain(t *testing.T) {
	s := New()

	const depth = 100000
	h := mustNumber(t, s, 0)
	for i := 1; i < depth; i++ {
		next := mustNumber(t, s, int64(i))
		cat, err := s.AddConcatenation(h, next)
		if err != nil {
			t.Fatal(err)
		}
		h = cat
	}

	got, err := s.leaves(h)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != depth {
		t.Fatalf("leaves = %d, want %d", len(got), depth)
	}
	last, _ := s.Number(got[depth-1])
	if v, _ := last.Int64(); v != depth-1 {
		t.Errorf("last leaf = %v, want %d", last, depth-1)
	}
}
