package codec

import (
	"bytes"
	"math"
	"reflect"
	"testing"

	"github.com/wippyai/heapcodec/memstore"
)

type Inner struct {
	Flag  bool
	Bytes []byte
}

type Document struct {
	Title    string            `heap:"title"`
	Count    uint16            `heap:"count"`
	Ratio    float32           `heap:"ratio"`
	Initial  Char              `heap:"initial"`
	Tags     []string          `heap:"tags"`
	Scores   map[string]int64  `heap:"scores"`
	ByID     map[uint32]string `heap:"by_id"`
	Note     *string           `heap:"note"`
	Missing  *Inner            `heap:"missing"`
	Inner    Inner             `heap:"inner"`
	Pos      [2]int            `heap:"pos"`
	Span     Segment           `heap:"span"`
	Shape    Shape             `heap:"shape"`
	Shapes   []Shape           `heap:"shapes"`
	Nothing  Marker            `heap:"nothing"`
	Extra    any               `heap:"extra"`
	Largest  uint64            `heap:"largest"`
	Smallest int64             `heap:"smallest"`
}

func sampleDocument() Document {
	note := "remember"
	return Document{
		Title:    "héllo",
		Count:    65535,
		Ratio:    0.25,
		Initial:  'Z',
		Tags:     []string{"a", "", "c"},
		Scores:   map[string]int64{"x": -1, "y": 2},
		ByID:     map[uint32]string{7: "seven", 1: "one"},
		Note:     &note,
		Inner:    Inner{Flag: true, Bytes: []byte{0, 255}},
		Pos:      [2]int{-4, 4},
		Span:     Segment{From: 3, To: 9},
		Shape:    Circle{R: 1.5},
		Shapes:   []Shape{Empty{}, Label("lbl"), Square{Side: 2}, Segment{From: 0, To: 1}},
		Extra:    map[string]any{"k": []any{int64(1), "two", true}},
		Largest:  math.MaxUint64,
		Smallest: math.MinInt64,
	}
}

func TestRoundTrip_AllOptions(t *testing.T) {
	c := shapeCompiler(t)
	want := sampleDocument()

	for _, optional := range []OptionalPolicy{OptionalUnitValue, OptionalSymbolPair} {
		for _, typing := range []StructTyping{StructTypingExcluded, StructTypingIncluded} {
			for _, naming := range []VariantNaming{VariantNameFull, VariantNameShort, VariantNameIndex} {
				opts := DefaultOptions().
					WithOptional(optional).
					WithStructTyping(typing).
					WithVariantNaming(naming)

				t.Run(optional.String()+"/"+typing.String()+"/"+naming.String(), func(t *testing.T) {
					s := memstore.New()
					h, err := NewEncoderWithCompiler(c, s, opts).Encode(want)
					if err != nil {
						t.Fatalf("Encode: %v", err)
					}

					var got Document
					if err := NewDecoderWithCompiler(c, s, opts).Decode(h, &got); err != nil {
						t.Fatalf("Decode: %v", err)
					}
					if !reflect.DeepEqual(got, want) {
						t.Errorf("round trip mismatch\n got: %#v\nwant: %#v", got, want)
					}
				})
			}
		}
	}
}

func TestRoundTrip_Snapshot(t *testing.T) {
	c := shapeCompiler(t)
	want := sampleDocument()
	opts := DefaultOptions().WithStructTyping(StructTypingIncluded)

	s := memstore.New()
	h, err := NewEncoderWithCompiler(c, s, opts).Encode(want)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var buf bytes.Buffer
	if err := s.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	restored, err := memstore.ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}

	var got Document
	if err := NewDecoderWithCompiler(c, restored, opts).Decode(h, &got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch\n got: %#v\nwant: %#v", got, want)
	}
}
