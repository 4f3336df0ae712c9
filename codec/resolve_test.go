package codec

import (
	"reflect"
	"testing"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/memstore"
)

func decodeInts(t *testing.T, s *memstore.Store, h heapcodec.Handle) []int {
	t.Helper()
	var out []int
	if err := Unmarshal(s, h, &out, DefaultOptions()); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return out
}

func TestResolve_Concatenation(t *testing.T) {
	s := memstore.New()
	a := list(t, s, number(t, s, 1), number(t, s, 2))
	b := list(t, s, number(t, s, 3))
	c := list(t, s, number(t, s, 4), number(t, s, 5))

	left := concat(t, s, concat(t, s, a, b), c)
	right := concat(t, s, a, concat(t, s, b, c))

	// Leaves are the three lists, whichever way the tree leans.
	d := NewDecoder(s, DefaultOptions())
	for name, h := range map[string]heapcodec.Handle{"left": left, "right": right} {
		t.Run(name, func(t *testing.T) {
			items, err := d.Items(h)
			if err != nil {
				t.Fatalf("Items: %v", err)
			}
			want := []heapcodec.Handle{a, b, c}
			if !reflect.DeepEqual(items, want) {
				t.Errorf("items = %v, want %v", items, want)
			}
		})
	}

	scalars := concat(t, s, concat(t, s, number(t, s, 1), number(t, s, 2)), number(t, s, 3))
	if got := decodeInts(t, s, scalars); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("scalar leaves = %v, want [1 2 3]", got)
	}
}

func TestResolve_Slice(t *testing.T) {
	s := memstore.New()
	src := list(t, s, number(t, s, 10), number(t, s, 20), number(t, s, 30))

	tests := []struct {
		name       string
		start, end int64
		want       []int
	}{
		{"middle", 1, 2, []int{20, 30}},
		{"single", 1, 1, []int{20}},
		{"all", 0, 2, []int{10, 20, 30}},
		{"empty", 2, 1, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeInts(t, s, slice(t, s, src, tt.start, tt.end))
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestResolve_SliceOfConcatenation(t *testing.T) {
	s := memstore.New()
	src := concat(t, s,
		concat(t, s, number(t, s, 1), number(t, s, 2)),
		concat(t, s, number(t, s, 3), number(t, s, 4)),
	)

	flat := list(t, s, number(t, s, 1), number(t, s, 2), number(t, s, 3), number(t, s, 4))

	tests := []struct {
		name       string
		start, end int64
		want       []int
	}{
		{"middle", 1, 2, []int{2, 3}},
		{"single", 1, 1, []int{2}},
		{"across halves", 0, 3, []int{1, 2, 3, 4}},
		{"empty", 2, 1, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeInts(t, s, slice(t, s, src, tt.start, tt.end))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if fromList := decodeInts(t, s, slice(t, s, flat, tt.start, tt.end)); !reflect.DeepEqual(got, fromList) {
				t.Errorf("concatenation slice %v differs from list slice %v", got, fromList)
			}
		})
	}
}

func TestResolve_EncodedListSlice(t *testing.T) {
	s := memstore.New()

	h, err := Marshal(s, []int{100, 200, 300}, DefaultOptions())
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got := decodeInts(t, s, slice(t, s, h, 1, 2)); !reflect.DeepEqual(got, []int{200, 300}) {
		t.Errorf("got %v, want [200 300]", got)
	}
}

func TestResolve_Scalar(t *testing.T) {
	s := memstore.New()
	n := number(t, s, 7)

	items, err := NewDecoder(s, DefaultOptions()).Items(n)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0] != n {
		t.Errorf("items = %v, want [%d]", items, n)
	}
	if got := decodeInts(t, s, n); !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("got %v, want [7]", got)
	}
}

func TestResolve_DeepConcatenation(t *testing.T) {
	s := memstore.New()

	h := number(t, s, 0)
	for i := 1; i < 50000; i++ {
		h = concat(t, s, h, number(t, s, int64(i)))
	}

	items, err := NewDecoder(s, DefaultOptions()).Items(h)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 50000 {
		t.Fatalf("len = %d, want 50000", len(items))
	}
	if got := mustInt(t, s, items[49999]); got != 49999 {
		t.Errorf("last = %d, want 49999", got)
	}
}
