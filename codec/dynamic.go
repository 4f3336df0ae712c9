package codec

import (
	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/codec/internal/numconv"
	"github.com/wippyai/heapcodec/errors"
)

// DecodeAny decodes h without a Go type. See decodeDynamic for the mapping.
func (d *Decoder) DecodeAny(h heapcodec.Handle) (any, error) {
	return d.dynamic(h, nil)
}

func (d *Decoder) dynamic(h heapcodec.Handle, path []string) (any, error) {
	if err := d.focus.push(h, path); err != nil {
		return nil, err
	}
	defer d.focus.pop()

	tag, err := d.store.Tag(h)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}
	return d.decodeDynamic(h, tag, path)
}

// decodeDynamic maps store values to plain Go values:
//
//	Unit                        nil
//	True, False                 bool
//	Number                      int64, uint64 or float64 by number kind
//	Char                        Char
//	CharList, Symbol            string
//	ByteList                    []byte
//	Pair                        Pair
//	Range                       Range
//	List, Concatenation, Slice  map[string]any when every item is a keyed
//	                            Pair, else []any
func (d *Decoder) decodeDynamic(h heapcodec.Handle, tag heapcodec.Tag, path []string) (any, error) {
	switch tag {
	case heapcodec.TagUnit:
		return nil, nil
	case heapcodec.TagTrue:
		return true, nil
	case heapcodec.TagFalse:
		return false, nil
	case heapcodec.TagNumber:
		n, err := d.number(h, tag, path)
		if err != nil {
			return nil, err
		}
		return numconv.Dynamic(n), nil
	case heapcodec.TagChar:
		r, err := d.store.Char(h)
		if err != nil {
			return nil, errors.StoreFailure(errors.PhaseDecode, path, "char", err)
		}
		return Char(r), nil
	case heapcodec.TagCharList, heapcodec.TagSymbol:
		return d.readTaggedString(h, tag, path)
	case heapcodec.TagByteList:
		return d.readBytes(h, path)
	case heapcodec.TagPair:
		var p Pair
		if err := p.UnmarshalHeap(d, h); err != nil {
			return nil, err
		}
		return p, nil
	case heapcodec.TagRange:
		var r Range
		if err := r.UnmarshalHeap(d, h); err != nil {
			return nil, err
		}
		return r, nil
	case heapcodec.TagList, heapcodec.TagConcatenation, heapcodec.TagSlice:
		return d.dynamicSequence(h, path)
	default:
		return nil, errors.UnexpectedTag(path, "a known tag", tag)
	}
}

func (d *Decoder) dynamicSequence(h heapcodec.Handle, path []string) (any, error) {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return nil, err
	}

	if keyed, ok, err := d.keyedEntries(items, path); err != nil {
		return nil, err
	} else if ok {
		out := make(map[string]any, len(keyed))
		for _, e := range keyed {
			v, err := d.dynamic(e.value, appendPath(path, e.name))
			if err != nil {
				return nil, err
			}
			out[e.name] = v
		}
		return out, nil
	}

	out := make([]any, len(items))
	for i, item := range items {
		v, err := d.dynamic(item, appendPath(path, indexSeg(i)))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type keyedEntry struct {
	name  string
	value heapcodec.Handle
}

// keyedEntries reports whether items are all Pairs keyed by a Symbol or
// CharList and returns them with metadata entries removed. An empty
// sequence is not keyed.
func (d *Decoder) keyedEntries(items []heapcodec.Handle, path []string) ([]keyedEntry, bool, error) {
	if len(items) == 0 {
		return nil, false, nil
	}

	entries := make([]keyedEntry, 0, len(items))
	for _, item := range items {
		key, value, isPair, err := d.pair(item, path)
		if err != nil {
			return nil, false, err
		}
		if !isPair {
			return nil, false, nil
		}
		keyTag, err := d.store.Tag(key)
		if err != nil {
			return nil, false, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
		}
		if keyTag != heapcodec.TagSymbol && keyTag != heapcodec.TagCharList {
			return nil, false, nil
		}
		name, err := d.readTaggedString(key, keyTag, path)
		if err != nil {
			return nil, false, err
		}
		if keyTag == heapcodec.TagSymbol && name == MetadataKey {
			continue
		}
		entries = append(entries, keyedEntry{name: name, value: value})
	}
	return entries, true, nil
}

// MarshalHeap writes p as a store Pair.
func (p Pair) MarshalHeap(e *Encoder) (heapcodec.Handle, error) {
	key, err := e.Encode(p.Key)
	if err != nil {
		return 0, err
	}
	value, err := e.Encode(p.Value)
	if err != nil {
		return 0, err
	}
	return e.addPair(key, value, nil)
}

// UnmarshalHeap reads a store Pair, decoding both sides dynamically.
func (p *Pair) UnmarshalHeap(d *Decoder, h heapcodec.Handle) error {
	tag, err := d.store.Tag(h)
	if err != nil {
		return errors.StoreFailure(errors.PhaseDecode, nil, "tag", err)
	}
	if tag != heapcodec.TagPair {
		return errors.UnexpectedTag(nil, "Pair", tag)
	}
	key, value, err := d.store.Pair(h)
	if err != nil {
		return errors.StoreFailure(errors.PhaseDecode, nil, "pair", err)
	}
	if p.Key, err = d.dynamic(key, []string{"[key]"}); err != nil {
		return err
	}
	p.Value, err = d.dynamic(value, []string{"[value]"})
	return err
}

// MarshalHeap writes r as a store Range.
func (r Range) MarshalHeap(e *Encoder) (heapcodec.Handle, error) {
	start, err := e.Encode(r.Start)
	if err != nil {
		return 0, err
	}
	end, err := e.Encode(r.End)
	if err != nil {
		return 0, err
	}
	h, err := e.store.AddRange(start, end)
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, nil, "add range", err)
	}
	return h, nil
}

// UnmarshalHeap reads a store Range, decoding both bounds dynamically.
func (r *Range) UnmarshalHeap(d *Decoder, h heapcodec.Handle) error {
	tag, err := d.store.Tag(h)
	if err != nil {
		return errors.StoreFailure(errors.PhaseDecode, nil, "tag", err)
	}
	if tag != heapcodec.TagRange {
		return errors.UnexpectedTag(nil, "Range", tag)
	}
	start, end, err := d.store.Range(h)
	if err != nil {
		return errors.StoreFailure(errors.PhaseDecode, nil, "range", err)
	}
	if r.Start, err = d.dynamic(start, []string{"[start]"}); err != nil {
		return err
	}
	r.End, err = d.dynamic(end, []string{"[end]"})
	return err
}
