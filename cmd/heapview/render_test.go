package main

import (
	"strings"
	"testing"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/codec"
	"github.com/wippyai/heapcodec/memstore"
)

func TestRenderTree(t *testing.T) {
	s := memstore.New()
	h, err := codec.Marshal(s, map[string]any{
		"name":  "ada",
		"tags":  []any{int64(1), true},
		"bytes": []byte{0xde, 0xad},
	}, codec.DefaultOptions())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	out, err := renderTree(s, h, newStyles(false), 0)
	if err != nil {
		t.Fatalf("renderTree: %v", err)
	}

	for _, want := range []string{
		"List (3)",
		"Pair",
		"key #",
		"Symbol :name",
		`CharList "ada"`,
		"Number 1",
		"True",
		"ByteList [2] dead",
		"├── ",
		"└── ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !strings.HasPrefix(out, "#") {
		t.Errorf("first line should start with the root handle:\n%s", out)
	}
}

func TestRenderTree_StructuralTags(t *testing.T) {
	s := memstore.New()
	one, _ := s.AddNumber(heapcodec.IntNumber(1))
	two, _ := s.AddNumber(heapcodec.IntNumber(2))
	rng, _ := s.AddRange(one, two)

	_ = s.StartList(2)
	_ = s.AppendList(one, false)
	_ = s.AppendList(two, true)
	lst, _ := s.EndList()

	cat, _ := s.AddConcatenation(lst, lst)
	sl, _ := s.AddSlice(cat, rng)

	out, err := renderTree(s, sl, newStyles(false), 0)
	if err != nil {
		t.Fatalf("renderTree: %v", err)
	}
	for _, want := range []string{"Slice", "source #", "Concatenation", "left #", "right #", "range #", "Range", "start #", "end #", "[0] #", "[1]* #"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTree_Width(t *testing.T) {
	s := memstore.New()
	h, _ := codec.Marshal(s, strings.Repeat("x", 200), codec.DefaultOptions())

	out, err := renderTree(s, h, newStyles(false), 20)
	if err != nil {
		t.Fatalf("renderTree: %v", err)
	}
	if len(out) > 20 {
		t.Errorf("line not clipped: %d chars", len(out))
	}
}

func TestRenderTree_BadHandle(t *testing.T) {
	s := memstore.New()
	if _, err := renderTree(s, 999, newStyles(false), 0); err == nil {
		t.Error("expected error for unknown handle")
	}
}
