package codec

import (
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/codec/internal/numconv"
	"github.com/wippyai/heapcodec/errors"
)

// DecodeWIT decodes h using a WIT type as the shape instead of a Go type.
//
//	bool, u8..s64, f32, f64   bool and Go scalars of the same width
//	char                      rune
//	string                    string
//	list<T>                   []any ([]byte for list<u8> held as ByteList)
//	record                    map[string]any keyed by field name
//	tuple<...>                []any
//	option<T>                 nil or the value
//	result<T, E>              map[string]any with key "ok" or "err"
//	enum                      case name
//	variant                   map[string]any with the case name as key
//	flags                     []string of set flags
//
// Enum, variant and result discriminants may be bare case names.
func (d *Decoder) DecodeWIT(h heapcodec.Handle, t wit.Type) (any, error) {
	return d.decodeWIT(h, t, nil)
}

func (d *Decoder) decodeWIT(h heapcodec.Handle, t wit.Type, path []string) (any, error) {
	t = unalias(t)
	if err := d.focus.push(h, path); err != nil {
		return nil, err
	}
	defer d.focus.pop()

	tag, err := d.store.Tag(h)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}

	switch t := t.(type) {
	case wit.Bool:
		switch tag {
		case heapcodec.TagTrue:
			return true, nil
		case heapcodec.TagFalse:
			return false, nil
		default:
			return nil, errors.UnexpectedTag(path, "True or False", tag)
		}
	case wit.U8:
		v, err := d.witUint(h, tag, 8, "u8", path)
		return uint8(v), err
	case wit.U16:
		v, err := d.witUint(h, tag, 16, "u16", path)
		return uint16(v), err
	case wit.U32:
		v, err := d.witUint(h, tag, 32, "u32", path)
		return uint32(v), err
	case wit.U64:
		return d.witUint(h, tag, 64, "u64", path)
	case wit.S8:
		v, err := d.witInt(h, tag, 8, "s8", path)
		return int8(v), err
	case wit.S16:
		v, err := d.witInt(h, tag, 16, "s16", path)
		return int16(v), err
	case wit.S32:
		v, err := d.witInt(h, tag, 32, "s32", path)
		return int32(v), err
	case wit.S64:
		return d.witInt(h, tag, 64, "s64", path)
	case wit.F32:
		v, err := d.witFloat(h, tag, 32, "f32", path)
		return float32(v), err
	case wit.F64:
		return d.witFloat(h, tag, 64, "f64", path)
	case wit.Char:
		if tag != heapcodec.TagChar {
			return nil, errors.UnexpectedTag(path, "Char", tag)
		}
		r, err := d.store.Char(h)
		if err != nil {
			return nil, errors.StoreFailure(errors.PhaseDecode, path, "char", err)
		}
		return r, nil
	case wit.String:
		return d.readTaggedString(h, tag, path)
	case *wit.TypeDef:
		return d.decodeWITTypeDef(h, tag, t, path)
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported WIT type: %T", t).
			Build()
	}
}

// unalias follows type definitions whose kind is itself a type.
func unalias(t wit.Type) wit.Type {
	for {
		td, ok := t.(*wit.TypeDef)
		if !ok {
			return t
		}
		inner, ok := td.Kind.(wit.Type)
		if !ok {
			return t
		}
		t = inner
	}
}

func (d *Decoder) decodeWITTypeDef(h heapcodec.Handle, tag heapcodec.Tag, t *wit.TypeDef, path []string) (any, error) {
	switch kind := t.Kind.(type) {
	case *wit.Record:
		return d.witRecord(h, kind, path)
	case *wit.List:
		return d.witList(h, tag, kind, path)
	case *wit.Tuple:
		return d.witTuple(h, kind, path)
	case *wit.Option:
		return d.witOption(h, tag, kind, path)
	case *wit.Result:
		return d.witResult(h, tag, kind, path)
	case *wit.Enum:
		return d.witEnum(h, tag, kind, path)
	case *wit.Variant:
		return d.witVariant(h, tag, kind, path)
	case *wit.Flags:
		return d.witFlags(h, kind, path)
	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			Detail("unsupported TypeDef kind: %T", kind).
			Build()
	}
}

func (d *Decoder) witUint(h heapcodec.Handle, tag heapcodec.Tag, bits int, name string, path []string) (uint64, error) {
	n, err := d.number(h, tag, path)
	if err != nil {
		return 0, err
	}
	v, ok := numconv.ToUint(n, bits)
	if !ok {
		return 0, errors.Overflow(errors.PhaseDecode, path, n, name)
	}
	return v, nil
}

func (d *Decoder) witInt(h heapcodec.Handle, tag heapcodec.Tag, bits int, name string, path []string) (int64, error) {
	n, err := d.number(h, tag, path)
	if err != nil {
		return 0, err
	}
	v, ok := numconv.ToInt(n, bits)
	if !ok {
		return 0, errors.Overflow(errors.PhaseDecode, path, n, name)
	}
	return v, nil
}

func (d *Decoder) witFloat(h heapcodec.Handle, tag heapcodec.Tag, bits int, name string, path []string) (float64, error) {
	n, err := d.number(h, tag, path)
	if err != nil {
		return 0, err
	}
	v, ok := numconv.ToFloat(n, bits)
	if !ok {
		return 0, errors.Overflow(errors.PhaseDecode, path, n, name)
	}
	return v, nil
}

func (d *Decoder) witRecord(h heapcodec.Handle, r *wit.Record, path []string) (any, error) {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]heapcodec.Handle, len(items))
	for i, item := range items {
		key, value, err := d.entry(item, i, path)
		if err != nil {
			return nil, err
		}
		if meta, err := d.isMetadata(key, path); err != nil {
			return nil, err
		} else if meta {
			continue
		}
		name, err := d.readString(key, path)
		if err != nil {
			return nil, err
		}
		entries[name] = value
	}

	out := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		fieldPath := appendPath(path, f.Name)
		value, ok := entries[f.Name]
		if !ok {
			if isWITOption(f.Type) {
				out[f.Name] = nil
				continue
			}
			return nil, errors.New(errors.PhaseDecode, errors.KindNotFound).
				Path(fieldPath...).
				Detail("record field %q is missing", f.Name).
				Build()
		}
		v, err := d.decodeWIT(value, f.Type, fieldPath)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}

func isWITOption(t wit.Type) bool {
	td, ok := unalias(t).(*wit.TypeDef)
	if !ok {
		return false
	}
	_, isOption := td.Kind.(*wit.Option)
	return isOption
}

func (d *Decoder) witList(h heapcodec.Handle, tag heapcodec.Tag, l *wit.List, path []string) (any, error) {
	if tag == heapcodec.TagByteList {
		if _, ok := l.Type.(wit.U8); ok {
			return d.readBytes(h, path)
		}
		return nil, errors.UnexpectedTag(path, "List", tag)
	}

	items, err := d.resolveItems(h, path)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(items))
	for i, item := range items {
		if out[i], err = d.decodeWIT(item, l.Type, appendPath(path, indexSeg(i))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *Decoder) witTuple(h heapcodec.Handle, t *wit.Tuple, path []string) (any, error) {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return nil, err
	}
	if len(items) != len(t.Types) {
		return nil, errors.Arity(errors.PhaseDecode, path, len(t.Types), len(items))
	}
	out := make([]any, len(items))
	for i, item := range items {
		if out[i], err = d.decodeWIT(item, t.Types[i], appendPath(path, indexSeg(i))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *Decoder) witOption(h heapcodec.Handle, tag heapcodec.Tag, o *wit.Option, path []string) (any, error) {
	if tag == heapcodec.TagUnit {
		return nil, nil
	}
	if tag == heapcodec.TagPair {
		key, value, err := d.store.Pair(h)
		if err != nil {
			return nil, errors.StoreFailure(errors.PhaseDecode, path, "pair", err)
		}
		switch d.symbolName(key) {
		case symbolNone:
			return nil, nil
		case symbolSome:
			h = value
		}
	}
	return d.decodeWIT(h, o.Type, path)
}

// witCase reads an enum-shaped value: a bare discriminant, or a list of
// the discriminant and an optional payload.
func (d *Decoder) witCase(h heapcodec.Handle, tag heapcodec.Tag, names []string, typeName string, path []string) (int, heapcodec.Handle, bool, error) {
	disc := h
	var payload heapcodec.Handle
	var hasPayload bool

	if tag.IsSequence() {
		items, err := d.resolveItems(h, path)
		if err != nil {
			return 0, 0, false, err
		}
		if len(items) == 0 || len(items) > 2 {
			return 0, 0, false, errors.Arity(errors.PhaseDecode, path, 2, len(items))
		}
		disc = items[0]
		if len(items) == 2 {
			payload, hasPayload = items[1], true
		}
	}

	discTag, err := d.store.Tag(disc)
	if err != nil {
		return 0, 0, false, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}

	if discTag == heapcodec.TagNumber {
		n, err := d.number(disc, discTag, path)
		if err != nil {
			return 0, 0, false, err
		}
		i, ok := numconv.ToInt(n, strconv.IntSize)
		if !ok || i < 0 || int(i) >= len(names) {
			return 0, 0, false, errors.UnknownVariant(path, n, typeName)
		}
		return int(i), payload, hasPayload, nil
	}

	s, err := d.readTaggedString(disc, discTag, path)
	if err != nil {
		return 0, 0, false, err
	}
	name, err := variantName(s, true, path)
	if err != nil {
		return 0, 0, false, err
	}
	for i, n := range names {
		if n == name {
			return i, payload, hasPayload, nil
		}
	}
	return 0, 0, false, errors.UnknownVariant(path, name, typeName)
}

func (d *Decoder) witResult(h heapcodec.Handle, tag heapcodec.Tag, r *wit.Result, path []string) (any, error) {
	idx, payload, hasPayload, err := d.witCase(h, tag, []string{"ok", "err"}, "result", path)
	if err != nil {
		return nil, err
	}

	name, typ := "ok", r.OK
	if idx == 1 {
		name, typ = "err", r.Err
	}
	if typ == nil || !hasPayload {
		return map[string]any{name: nil}, nil
	}
	v, err := d.decodeWIT(payload, typ, appendPath(path, name))
	if err != nil {
		return nil, err
	}
	return map[string]any{name: v}, nil
}

func (d *Decoder) witEnum(h heapcodec.Handle, tag heapcodec.Tag, e *wit.Enum, path []string) (any, error) {
	names := make([]string, len(e.Cases))
	for i, c := range e.Cases {
		names[i] = c.Name
	}
	idx, _, _, err := d.witCase(h, tag, names, "enum", path)
	if err != nil {
		return nil, err
	}
	return names[idx], nil
}

func (d *Decoder) witVariant(h heapcodec.Handle, tag heapcodec.Tag, v *wit.Variant, path []string) (any, error) {
	names := make([]string, len(v.Cases))
	for i, c := range v.Cases {
		names[i] = c.Name
	}
	idx, payload, hasPayload, err := d.witCase(h, tag, names, "variant", path)
	if err != nil {
		return nil, err
	}

	c := v.Cases[idx]
	if c.Type == nil || !hasPayload {
		return map[string]any{c.Name: nil}, nil
	}
	val, err := d.decodeWIT(payload, c.Type, appendPath(path, c.Name))
	if err != nil {
		return nil, err
	}
	return map[string]any{c.Name: val}, nil
}

// witFlags reads a list of flag names held as Symbols or CharLists.
func (d *Decoder) witFlags(h heapcodec.Handle, f *wit.Flags, path []string) (any, error) {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(f.Flags))
	for _, flag := range f.Flags {
		known[flag.Name] = true
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		name, err := d.readString(item, appendPath(path, indexSeg(i)))
		if err != nil {
			return nil, err
		}
		if !known[name] {
			return nil, errors.UnknownVariant(path, name, "flags")
		}
		out = append(out, name)
	}
	return out, nil
}
