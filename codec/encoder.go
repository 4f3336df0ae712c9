package codec

import (
	"cmp"
	"reflect"
	"slices"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/codec/internal/numconv"
	"github.com/wippyai/heapcodec/errors"
)

// Encoder writes Go values into a store. It tracks nesting depth and is
// not safe for concurrent use.
type Encoder struct {
	compiler *Compiler
	store    heapcodec.Builder
	opts     Options
	depth    int
}

func NewEncoder(store heapcodec.Builder, opts Options) *Encoder {
	return NewEncoderWithCompiler(defaultCompiler, store, opts)
}

func NewEncoderWithCompiler(c *Compiler, store heapcodec.Builder, opts Options) *Encoder {
	return &Encoder{compiler: c, store: store, opts: opts}
}

// Builder returns the store the encoder writes to.
func (e *Encoder) Builder() heapcodec.Builder {
	return e.store
}

func (e *Encoder) Options() Options {
	return e.opts
}

// Encode writes v and returns the handle of the resulting value. A nil
// interface encodes as Unit.
//
// v is received as any, so an enum value passed directly encodes as its
// concrete variant type. Use EncodeAs, a struct field, or a pointer to the
// enum interface to keep the discriminant.
func (e *Encoder) Encode(v any) (heapcodec.Handle, error) {
	if v == nil {
		return e.addUnit(nil)
	}
	rv := reflect.ValueOf(v)
	ct, err := e.compiler.Compile(rv.Type())
	if err != nil {
		return 0, err
	}
	return e.encodeValue(ct, rv, nil)
}

// EncodeAs writes v as a value of type t. v must be assignable to t; a nil
// v encodes the zero value of t. This is how a registered enum is encoded
// at top level:
//
//	h, err := e.EncodeAs(Circle{R: 1}, reflect.TypeFor[Shape]())
func (e *Encoder) EncodeAs(v any, t reflect.Type) (heapcodec.Handle, error) {
	if t == nil {
		return 0, errors.NilPointer(errors.PhaseEncode, nil, "reflect.Type")
	}
	ct, err := e.compiler.Compile(t)
	if err != nil {
		return 0, err
	}

	holder := reflect.New(t).Elem()
	if v != nil {
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(t) {
			return 0, errors.New(errors.PhaseEncode, errors.KindTypeMismatch).
				GoType(rv.Type().String()).
				Detail("%s is not assignable to %s", rv.Type(), t).
				Build()
		}
		holder.Set(rv)
	}
	return e.encodeValue(ct, holder, nil)
}

// EncodeString writes s as a CharList.
func (e *Encoder) EncodeString(s string) (heapcodec.Handle, error) {
	return e.encodeString(s, nil)
}

// EncodeList writes items as a List, flagging each with associative.
func (e *Encoder) EncodeList(items []heapcodec.Handle, associative bool) (heapcodec.Handle, error) {
	return e.buildList(items, associative, nil)
}

func (e *Encoder) encodeValue(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.opts.maxDepth() {
		return 0, errors.New(errors.PhaseEncode, errors.KindOverflow).
			Path(path...).
			Detail("nesting exceeds maximum depth %d", e.opts.maxDepth()).
			Build()
	}

	switch ct.Kind {
	case KindBool:
		if rv.Bool() {
			h, err := e.store.AddTrue()
			if err != nil {
				return 0, errors.StoreFailure(errors.PhaseEncode, path, "add true", err)
			}
			return h, nil
		}
		h, err := e.store.AddFalse()
		if err != nil {
			return 0, errors.StoreFailure(errors.PhaseEncode, path, "add false", err)
		}
		return h, nil

	case KindInt8, KindInt16, KindInt32, KindInt64, KindInt:
		return e.addNumber(heapcodec.IntNumber(rv.Int()), path)

	case KindUint8, KindUint16, KindUint32, KindUint64, KindUint:
		return e.addNumber(heapcodec.UintNumber(rv.Uint()), path)

	case KindFloat32, KindFloat64:
		return e.addNumber(heapcodec.FloatNumber(rv.Float()), path)

	case KindChar:
		h, err := e.store.AddChar(rune(rv.Int()))
		if err != nil {
			return 0, errors.StoreFailure(errors.PhaseEncode, path, "add char", err)
		}
		return h, nil

	case KindString:
		return e.encodeString(rv.String(), path)

	case KindBytes:
		return e.encodeBytes(rv.Bytes(), path)

	case KindUnit:
		return e.encodeUnit(ct, path)

	case KindOption:
		return e.encodeOption(ct, rv, path)

	case KindSequence:
		return e.encodeSequence(ct, rv, path)

	case KindTuple:
		return e.encodeTuple(ct, rv, path)

	case KindMap:
		return e.encodeMap(ct, rv, path)

	case KindStruct:
		return e.encodeStruct(ct, rv, path)

	case KindEnum:
		return e.encodeEnum(ct, rv, path)

	case KindAny:
		return e.encodeAny(rv, path)

	case KindCustom:
		return e.encodeCustom(ct, rv, path)

	default:
		return 0, errors.Unsupported(errors.PhaseEncode, "encode "+ct.Kind.String())
	}
}

func (e *Encoder) addUnit(path []string) (heapcodec.Handle, error) {
	h, err := e.store.AddUnit()
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "add unit", err)
	}
	return h, nil
}

func (e *Encoder) addNumber(n heapcodec.Number, path []string) (heapcodec.Handle, error) {
	h, err := e.store.AddNumber(n)
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "add number", err)
	}
	return h, nil
}

func (e *Encoder) addSymbol(name string, path []string) (heapcodec.Handle, error) {
	h, err := e.store.ParseSymbol(name)
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "parse symbol", err)
	}
	return h, nil
}

func (e *Encoder) addPair(k, v heapcodec.Handle, path []string) (heapcodec.Handle, error) {
	h, err := e.store.AddPair(k, v)
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "add pair", err)
	}
	return h, nil
}

func (e *Encoder) encodeString(s string, path []string) (heapcodec.Handle, error) {
	if err := e.store.StartCharList(); err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "start char list", err)
	}
	for _, r := range s {
		if err := e.store.AppendChar(r); err != nil {
			return 0, errors.StoreFailure(errors.PhaseEncode, path, "append char", err)
		}
	}
	h, err := e.store.EndCharList()
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "end char list", err)
	}
	return h, nil
}

func (e *Encoder) encodeBytes(data []byte, path []string) (heapcodec.Handle, error) {
	if err := e.store.StartByteList(); err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "start byte list", err)
	}
	for _, b := range data {
		if err := e.store.AppendByte(b); err != nil {
			return 0, errors.StoreFailure(errors.PhaseEncode, path, "append byte", err)
		}
	}
	h, err := e.store.EndByteList()
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "end byte list", err)
	}
	return h, nil
}

// buildList appends already-encoded items between StartList and EndList.
func (e *Encoder) buildList(items []heapcodec.Handle, associative bool, path []string) (heapcodec.Handle, error) {
	if err := e.store.StartList(len(items)); err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "start list", err)
	}
	for _, h := range items {
		if err := e.store.AppendList(h, associative); err != nil {
			return 0, errors.StoreFailure(errors.PhaseEncode, path, "append list", err)
		}
	}
	h, err := e.store.EndList()
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, path, "end list", err)
	}
	return h, nil
}

func (e *Encoder) encodeUnit(ct *CompiledType, path []string) (heapcodec.Handle, error) {
	if e.opts.StructTyping != StructTypingIncluded || ct.Name == "" {
		return e.addUnit(path)
	}

	key, err := e.addSymbol(MetadataKey, path)
	if err != nil {
		return 0, err
	}
	name, err := e.encodeString(ct.Name, path)
	if err != nil {
		return 0, err
	}
	pair, err := e.addPair(key, name, path)
	if err != nil {
		return 0, err
	}
	return e.buildList([]heapcodec.Handle{pair}, true, path)
}

func (e *Encoder) encodeOption(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	if rv.IsNil() {
		if e.opts.Optional == OptionalSymbolPair {
			return e.taggedOption(symbolNone, 0, true, path)
		}
		return e.addUnit(path)
	}

	h, err := e.encodeValue(ct.ElemType, rv.Elem(), path)
	if err != nil {
		return 0, err
	}
	if e.opts.Optional == OptionalSymbolPair {
		return e.taggedOption(symbolSome, h, false, path)
	}
	return h, nil
}

func (e *Encoder) taggedOption(tag string, value heapcodec.Handle, none bool, path []string) (heapcodec.Handle, error) {
	key, err := e.addSymbol(tag, path)
	if err != nil {
		return 0, err
	}
	if none {
		if value, err = e.addUnit(path); err != nil {
			return 0, err
		}
	}
	return e.addPair(key, value, path)
}

func (e *Encoder) encodeSequence(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	items := getHandles()
	defer putHandles(items)

	n := rv.Len()
	for i := 0; i < n; i++ {
		h, err := e.encodeValue(ct.ElemType, rv.Index(i), appendPath(path, indexSeg(i)))
		if err != nil {
			return 0, err
		}
		*items = append(*items, h)
	}
	return e.buildList(*items, false, path)
}

func (e *Encoder) encodeTuple(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	if rv.Kind() == reflect.Array {
		return e.encodeSequence(ct, rv, path)
	}

	items := getHandles()
	defer putHandles(items)

	for i, f := range ct.Fields {
		h, err := e.encodeValue(f.Type, rv.FieldByIndex(f.Index), appendPath(path, indexSeg(i)))
		if err != nil {
			return 0, err
		}
		*items = append(*items, h)
	}
	return e.buildList(*items, false, path)
}

func (e *Encoder) encodeMap(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	keys := rv.MapKeys()
	slices.SortFunc(keys, compareKeys)

	items := getHandles()
	defer putHandles(items)

	for _, k := range keys {
		keyPath := appendPath(path, keySeg(k))

		kh, err := e.encodeValue(ct.KeyType, k, keyPath)
		if err != nil {
			return 0, err
		}
		sym, err := e.store.SymbolFrom(kh)
		if err != nil {
			return 0, errors.StoreFailure(errors.PhaseEncode, keyPath, "symbol from key", err)
		}
		vh, err := e.encodeValue(ct.ElemType, rv.MapIndex(k), keyPath)
		if err != nil {
			return 0, err
		}
		pair, err := e.addPair(sym, vh, keyPath)
		if err != nil {
			return 0, err
		}
		*items = append(*items, pair)
	}
	return e.buildList(*items, true, path)
}

func compareKeys(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	default:
		return cmp.Compare(a.Uint(), b.Uint())
	}
}

func (e *Encoder) encodeStruct(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	items := getHandles()
	defer putHandles(items)

	for _, f := range ct.Fields {
		fieldPath := appendPath(path, f.Name)

		key, err := e.addSymbol(f.Name, fieldPath)
		if err != nil {
			return 0, err
		}
		vh, err := e.encodeValue(f.Type, rv.FieldByIndex(f.Index), fieldPath)
		if err != nil {
			return 0, err
		}
		pair, err := e.addPair(key, vh, fieldPath)
		if err != nil {
			return 0, err
		}
		*items = append(*items, pair)
	}

	if e.opts.StructTyping == StructTypingIncluded && ct.Name != "" {
		key, err := e.addSymbol(MetadataKey, path)
		if err != nil {
			return 0, err
		}
		name, err := e.addSymbol(ct.Name, path)
		if err != nil {
			return 0, err
		}
		pair, err := e.addPair(key, name, path)
		if err != nil {
			return 0, err
		}
		*items = append(*items, pair)
	}
	return e.buildList(*items, true, path)
}

func (e *Encoder) encodeEnum(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	if rv.IsNil() {
		return e.addUnit(path)
	}

	inner := rv.Elem()
	variant, ok := ct.VariantByType(inner.Type())
	if !ok {
		return 0, errors.New(errors.PhaseEncode, errors.KindInvalidVariant).
			Path(path...).
			GoType(inner.Type().String()).
			Detail("%s is not a variant of %s", inner.Type(), ct.Name).
			Build()
	}

	variantPath := appendPath(path, variant.Name)
	disc, err := e.discriminant(ct, variant, variantPath)
	if err != nil {
		return 0, err
	}
	if variant.Kind == VariantUnit {
		return disc, nil
	}

	payload, err := e.encodeValue(variant.Type, inner, variantPath)
	if err != nil {
		return 0, err
	}

	if err := e.store.StartList(2); err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, variantPath, "start list", err)
	}
	if err := e.store.AppendList(disc, e.opts.VariantNaming != VariantNameIndex); err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, variantPath, "append list", err)
	}
	if err := e.store.AppendList(payload, false); err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, variantPath, "append list", err)
	}
	h, err := e.store.EndList()
	if err != nil {
		return 0, errors.StoreFailure(errors.PhaseEncode, variantPath, "end list", err)
	}
	return h, nil
}

func (e *Encoder) discriminant(ct *CompiledType, v *CompiledVariant, path []string) (heapcodec.Handle, error) {
	switch e.opts.VariantNaming {
	case VariantNameShort:
		return e.addSymbol(v.Name, path)
	case VariantNameIndex:
		return e.addNumber(heapcodec.IntNumber(int64(v.Ordinal)), path)
	default:
		return e.addSymbol(ct.Name+"::"+v.Name, path)
	}
}

func (e *Encoder) encodeAny(rv reflect.Value, path []string) (heapcodec.Handle, error) {
	if rv.IsNil() {
		return e.addUnit(path)
	}
	inner := rv.Elem()
	if inner.CanInterface() {
		if n, ok := numconv.FromAny(inner.Interface()); ok {
			return e.addNumber(n, path)
		}
	}
	ct, err := e.compiler.Compile(inner.Type())
	if err != nil {
		return 0, err
	}
	return e.encodeValue(ct, inner, path)
}

func (e *Encoder) encodeCustom(ct *CompiledType, rv reflect.Value, path []string) (heapcodec.Handle, error) {
	m, ok := rv.Interface().(Marshaler)
	if !ok && rv.CanAddr() {
		m, ok = rv.Addr().Interface().(Marshaler)
	}
	if !ok {
		// Value receivers only: copy so pointer-receiver methods apply.
		ptr := reflect.New(rv.Type())
		ptr.Elem().Set(rv)
		m, ok = ptr.Interface().(Marshaler)
	}
	if !ok {
		return 0, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Path(path...).
			GoType(ct.GoType.String()).
			Detail("type implements Unmarshaler but not Marshaler").
			Build()
	}

	h, err := m.MarshalHeap(e)
	if err != nil {
		if _, structured := err.(*errors.Error); structured {
			return 0, err
		}
		return 0, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path(path...).
			GoType(ct.GoType.String()).
			Cause(err).
			Detail("MarshalHeap").
			Build()
	}
	return h, nil
}
