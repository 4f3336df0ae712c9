package codec

import (
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/codec/internal/numconv"
	"github.com/wippyai/heapcodec/errors"
)

// Decoder reads store values into Go values. Strings held as Symbol,
// Concatenation or Slice are realized through the store, so the decoder
// needs write access. Not safe for concurrent use.
type Decoder struct {
	compiler *Compiler
	store    heapcodec.Store
	focus    focusStack
	opts     Options
}

func NewDecoder(store heapcodec.Store, opts Options) *Decoder {
	return NewDecoderWithCompiler(defaultCompiler, store, opts)
}

func NewDecoderWithCompiler(c *Compiler, store heapcodec.Store, opts Options) *Decoder {
	return &Decoder{
		compiler: c,
		store:    store,
		opts:     opts,
		focus:    focusStack{limit: opts.maxDepth()},
	}
}

func (d *Decoder) Store() heapcodec.Store {
	return d.store
}

func (d *Decoder) Options() Options {
	return d.opts
}

// Focus returns the handle currently being decoded.
func (d *Decoder) Focus() (heapcodec.Handle, bool) {
	return d.focus.top()
}

// Depth returns the number of nested values currently being decoded.
func (d *Decoder) Depth() int {
	return d.focus.depth()
}

// Decode decodes the value at h into the value pointed to by out.
func (d *Decoder) Decode(h heapcodec.Handle, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Detail("result must be a pointer, got %T", out).
			Build()
	}
	if rv.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, nil, rv.Type().String())
	}

	ct, err := d.compiler.Compile(rv.Type().Elem())
	if err != nil {
		return err
	}
	return d.decodeValue(ct, h, rv.Elem(), nil)
}

// DecodeString decodes h as a string, realizing Symbol, Concatenation and
// Slice values through the store.
func (d *Decoder) DecodeString(h heapcodec.Handle) (string, error) {
	return d.readString(h, nil)
}

func (d *Decoder) decodeValue(ct *CompiledType, h heapcodec.Handle, rv reflect.Value, path []string) error {
	if err := d.focus.push(h, path); err != nil {
		return err
	}
	defer d.focus.pop()

	tag, err := d.store.Tag(h)
	if err != nil {
		return errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}

	switch ct.Kind {
	case KindBool:
		switch tag {
		case heapcodec.TagTrue:
			rv.SetBool(true)
		case heapcodec.TagFalse:
			rv.SetBool(false)
		default:
			return errors.UnexpectedTag(path, "True or False", tag)
		}
		return nil

	case KindInt8, KindInt16, KindInt32, KindInt64, KindInt:
		n, err := d.number(h, tag, path)
		if err != nil {
			return err
		}
		v, ok := numconv.ToInt(n, rv.Type().Bits())
		if !ok {
			return errors.Overflow(errors.PhaseDecode, path, n, ct.GoType.String())
		}
		rv.SetInt(v)
		return nil

	case KindUint8, KindUint16, KindUint32, KindUint64, KindUint:
		n, err := d.number(h, tag, path)
		if err != nil {
			return err
		}
		v, ok := numconv.ToUint(n, rv.Type().Bits())
		if !ok {
			return errors.Overflow(errors.PhaseDecode, path, n, ct.GoType.String())
		}
		rv.SetUint(v)
		return nil

	case KindFloat32, KindFloat64:
		n, err := d.number(h, tag, path)
		if err != nil {
			return err
		}
		v, ok := numconv.ToFloat(n, rv.Type().Bits())
		if !ok {
			return errors.Overflow(errors.PhaseDecode, path, n, ct.GoType.String())
		}
		rv.SetFloat(v)
		return nil

	case KindChar:
		if tag != heapcodec.TagChar {
			return errors.UnexpectedTag(path, "Char", tag)
		}
		r, err := d.store.Char(h)
		if err != nil {
			return errors.StoreFailure(errors.PhaseDecode, path, "char", err)
		}
		rv.SetInt(int64(r))
		return nil

	case KindString:
		s, err := d.readTaggedString(h, tag, path)
		if err != nil {
			return err
		}
		rv.SetString(s)
		return nil

	case KindBytes:
		if tag != heapcodec.TagByteList {
			return errors.UnexpectedTag(path, "ByteList", tag)
		}
		data, err := d.readBytes(h, path)
		if err != nil {
			return err
		}
		rv.SetBytes(data)
		return nil

	case KindUnit:
		return d.decodeUnit(ct, h, tag, path)

	case KindOption:
		return d.decodeOption(ct, h, tag, rv, path)

	case KindSequence:
		return d.decodeSequence(ct, h, rv, path)

	case KindTuple:
		return d.decodeTuple(ct, h, rv, path)

	case KindMap:
		return d.decodeMap(ct, h, rv, path)

	case KindStruct:
		return d.decodeStruct(ct, h, rv, path)

	case KindEnum:
		return d.decodeEnum(ct, h, tag, rv, path)

	case KindAny:
		v, err := d.decodeDynamic(h, tag, path)
		if err != nil {
			return err
		}
		if v == nil {
			rv.Set(reflect.Zero(rv.Type()))
		} else {
			rv.Set(reflect.ValueOf(v))
		}
		return nil

	case KindCustom:
		return d.decodeCustom(ct, h, rv, path)

	default:
		return errors.Unsupported(errors.PhaseDecode, "decode "+ct.Kind.String())
	}
}

func (d *Decoder) number(h heapcodec.Handle, tag heapcodec.Tag, path []string) (heapcodec.Number, error) {
	if tag != heapcodec.TagNumber {
		return heapcodec.Number{}, errors.UnexpectedTag(path, "Number", tag)
	}
	n, err := d.store.Number(h)
	if err != nil {
		return heapcodec.Number{}, errors.StoreFailure(errors.PhaseDecode, path, "number", err)
	}
	return n, nil
}

func (d *Decoder) readString(h heapcodec.Handle, path []string) (string, error) {
	tag, err := d.store.Tag(h)
	if err != nil {
		return "", errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}
	return d.readTaggedString(h, tag, path)
}

// readTaggedString reads a CharList directly and realizes Symbol,
// Concatenation and Slice values into a CharList first.
func (d *Decoder) readTaggedString(h heapcodec.Handle, tag heapcodec.Tag, path []string) (string, error) {
	switch tag {
	case heapcodec.TagCharList:
	case heapcodec.TagSymbol, heapcodec.TagConcatenation, heapcodec.TagSlice:
		realized, err := d.store.CharListFrom(h)
		if err != nil {
			return "", errors.StoreFailure(errors.PhaseDecode, path, "char list from", err)
		}
		Logger().Debug("realized string",
			zap.Uint32("handle", uint32(h)),
			zap.Stringer("tag", tag),
			zap.Uint32("char_list", uint32(realized)))
		h = realized
	default:
		return "", errors.UnexpectedTag(path, "CharList, Symbol, Concatenation or Slice", tag)
	}

	n, err := d.store.CharListLen(h)
	if err != nil {
		return "", errors.StoreFailure(errors.PhaseDecode, path, "char list length", err)
	}
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		r, err := d.store.CharListItem(h, i)
		if err != nil {
			return "", errors.StoreFailure(errors.PhaseDecode, path, "char list item", err)
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}

func (d *Decoder) readBytes(h heapcodec.Handle, path []string) ([]byte, error) {
	n, err := d.store.ByteListLen(h)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "byte list length", err)
	}
	data := make([]byte, n)
	for i := range data {
		if data[i], err = d.store.ByteListItem(h, i); err != nil {
			return nil, errors.StoreFailure(errors.PhaseDecode, path, "byte list item", err)
		}
	}
	return data, nil
}

// decodeUnit accepts Unit, or a list holding only metadata entries as
// written for named units under struct typing.
func (d *Decoder) decodeUnit(ct *CompiledType, h heapcodec.Handle, tag heapcodec.Tag, path []string) error {
	if tag == heapcodec.TagUnit {
		return nil
	}
	if !tag.IsSequence() {
		return errors.UnexpectedTag(path, "Unit", tag)
	}

	items, err := d.resolveItems(h, path)
	if err != nil {
		return err
	}
	for i, item := range items {
		key, _, isPair, err := d.pair(item, path)
		if err != nil {
			return err
		}
		if !isPair {
			return errors.UnexpectedTag(path, "Unit", tag)
		}
		if meta, err := d.isMetadata(key, path); err != nil {
			return err
		} else if !meta {
			return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
				Path(path...).
				GoType(ct.GoType.String()).
				Detail("expected Unit, found entry %d that is not type metadata", i).
				Build()
		}
	}
	return nil
}

func (d *Decoder) decodeOption(ct *CompiledType, h heapcodec.Handle, tag heapcodec.Tag, rv reflect.Value, path []string) error {
	if tag == heapcodec.TagUnit {
		rv.Set(reflect.Zero(rv.Type()))
		return nil
	}

	if tag == heapcodec.TagPair {
		key, value, err := d.store.Pair(h)
		if err != nil {
			return errors.StoreFailure(errors.PhaseDecode, path, "pair", err)
		}
		switch d.symbolName(key) {
		case symbolNone:
			rv.Set(reflect.Zero(rv.Type()))
			return nil
		case symbolSome:
			h = value
		}
	}

	elem := reflect.New(ct.GoType.Elem())
	if err := d.decodeValue(ct.ElemType, h, elem.Elem(), path); err != nil {
		return err
	}
	rv.Set(elem)
	return nil
}

// symbolName returns the name of h when it is a Symbol, else "".
func (d *Decoder) symbolName(h heapcodec.Handle) string {
	tag, err := d.store.Tag(h)
	if err != nil || tag != heapcodec.TagSymbol {
		return ""
	}
	name, err := d.store.SymbolName(h)
	if err != nil {
		return ""
	}
	return name
}

func (d *Decoder) decodeSequence(ct *CompiledType, h heapcodec.Handle, rv reflect.Value, path []string) error {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return err
	}

	slice := reflect.MakeSlice(ct.GoType, len(items), len(items))
	for i, item := range items {
		if err := d.decodeValue(ct.ElemType, item, slice.Index(i), appendPath(path, indexSeg(i))); err != nil {
			return err
		}
	}
	rv.Set(slice)
	return nil
}

func (d *Decoder) decodeTuple(ct *CompiledType, h heapcodec.Handle, rv reflect.Value, path []string) error {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return err
	}
	if len(items) != ct.Arity {
		return errors.Arity(errors.PhaseDecode, path, ct.Arity, len(items))
	}

	for i, item := range items {
		var target reflect.Value
		var elemType *CompiledType
		if rv.Kind() == reflect.Array {
			target, elemType = rv.Index(i), ct.ElemType
		} else {
			f := ct.Fields[i]
			target, elemType = rv.FieldByIndex(f.Index), f.Type
		}
		if err := d.decodeValue(elemType, item, target, appendPath(path, indexSeg(i))); err != nil {
			return err
		}
	}
	return nil
}

// pair reads item as a Pair. isPair is false when item has another tag.
func (d *Decoder) pair(item heapcodec.Handle, path []string) (key, value heapcodec.Handle, isPair bool, err error) {
	tag, err := d.store.Tag(item)
	if err != nil {
		return 0, 0, false, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}
	if tag != heapcodec.TagPair {
		return 0, 0, false, nil
	}
	key, value, err = d.store.Pair(item)
	if err != nil {
		return 0, 0, false, errors.StoreFailure(errors.PhaseDecode, path, "pair", err)
	}
	return key, value, true, nil
}

// entry reads item as a map or struct entry and fails when it is not a Pair.
func (d *Decoder) entry(item heapcodec.Handle, index int, path []string) (heapcodec.Handle, heapcodec.Handle, error) {
	key, value, isPair, err := d.pair(item, path)
	if err != nil {
		return 0, 0, err
	}
	if !isPair {
		tag, _ := d.store.Tag(item)
		return 0, 0, errors.InvalidEntry(path, index, tag)
	}
	return key, value, nil
}

func (d *Decoder) isMetadata(key heapcodec.Handle, path []string) (bool, error) {
	tag, err := d.store.Tag(key)
	if err != nil {
		return false, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}
	if tag != heapcodec.TagSymbol {
		return false, nil
	}
	name, err := d.store.SymbolName(key)
	if err != nil {
		return false, errors.StoreFailure(errors.PhaseDecode, path, "symbol name", err)
	}
	return name == MetadataKey, nil
}

func (d *Decoder) decodeMap(ct *CompiledType, h heapcodec.Handle, rv reflect.Value, path []string) error {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return err
	}

	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(ct.GoType, len(items)))
	}

	for i, item := range items {
		key, value, err := d.entry(item, i, path)
		if err != nil {
			return err
		}
		if meta, err := d.isMetadata(key, path); err != nil {
			return err
		} else if meta {
			continue
		}

		kv := reflect.New(ct.GoType.Key()).Elem()
		if err := d.decodeMapKey(ct.KeyType, key, kv, path); err != nil {
			return err
		}
		vv := reflect.New(ct.GoType.Elem()).Elem()
		if err := d.decodeValue(ct.ElemType, value, vv, appendPath(path, keySeg(kv))); err != nil {
			return err
		}
		rv.SetMapIndex(kv, vv)
	}
	return nil
}

// decodeMapKey reads string keys through the string path and integer keys
// from a Number or from their realized decimal text.
func (d *Decoder) decodeMapKey(kt *CompiledType, key heapcodec.Handle, kv reflect.Value, path []string) error {
	tag, err := d.store.Tag(key)
	if err != nil {
		return errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}

	if kt.Kind == KindString {
		s, err := d.readTaggedString(key, tag, path)
		if err != nil {
			return err
		}
		kv.SetString(s)
		return nil
	}

	if tag == heapcodec.TagNumber {
		return d.decodeValue(kt, key, kv, path)
	}

	s, err := d.readTaggedString(key, tag, path)
	if err != nil {
		return err
	}
	bits := kv.Type().Bits()
	if kt.Kind.IsSigned() {
		v, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
				Path(path...).
				GoType(kt.GoType.String()).
				Value(s).
				Detail("map key %q is not a %s", s, kt.GoType).
				Build()
		}
		kv.SetInt(v)
		return nil
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
			Path(path...).
			GoType(kt.GoType.String()).
			Value(s).
			Detail("map key %q is not a %s", s, kt.GoType).
			Build()
	}
	kv.SetUint(v)
	return nil
}

func (d *Decoder) decodeStruct(ct *CompiledType, h heapcodec.Handle, rv reflect.Value, path []string) error {
	items, err := d.resolveItems(h, path)
	if err != nil {
		return err
	}

	for i, item := range items {
		key, value, err := d.entry(item, i, path)
		if err != nil {
			return err
		}
		if meta, err := d.isMetadata(key, path); err != nil {
			return err
		} else if meta {
			continue
		}

		name, err := d.readString(key, path)
		if err != nil {
			return err
		}
		f, ok := ct.FieldByName(name)
		if !ok {
			continue
		}
		if err := d.decodeValue(f.Type, value, rv.FieldByIndex(f.Index), appendPath(path, f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeEnum(ct *CompiledType, h heapcodec.Handle, tag heapcodec.Tag, rv reflect.Value, path []string) error {
	switch {
	case tag == heapcodec.TagUnit:
		rv.Set(reflect.Zero(rv.Type()))
		return nil

	case tag == heapcodec.TagSymbol || tag == heapcodec.TagNumber || tag == heapcodec.TagCharList:
		v, err := d.variant(ct, h, path)
		if err != nil {
			return err
		}
		return d.setUnitVariant(ct, v, rv, path)

	case tag.IsSequence():
		items, err := d.resolveItems(h, path)
		if err != nil {
			return err
		}
		if len(items) == 0 || len(items) > 2 {
			return errors.Arity(errors.PhaseDecode, path, 2, len(items))
		}

		v, err := d.variant(ct, items[0], path)
		if err != nil {
			return err
		}
		if len(items) == 1 || v.Kind == VariantUnit {
			return d.setUnitVariant(ct, v, rv, path)
		}

		val := reflect.New(v.GoType).Elem()
		if err := d.decodeValue(v.Type, items[1], val, appendPath(path, v.Name)); err != nil {
			return err
		}
		rv.Set(val)
		return nil

	default:
		return errors.UnexpectedTag(path, "Symbol, Number or List", tag)
	}
}

func (d *Decoder) setUnitVariant(ct *CompiledType, v *CompiledVariant, rv reflect.Value, path []string) error {
	if v.Kind != VariantUnit {
		return errors.New(errors.PhaseDecode, errors.KindInvalidVariant).
			Path(path...).
			GoType(ct.Name).
			Value(v.Name).
			Detail("%s variant %s needs a payload", v.Kind, v.Name).
			Build()
	}
	rv.Set(reflect.New(v.GoType).Elem())
	return nil
}

// variant resolves a discriminant to one of ct's variants. Symbols name the
// variant after the last "::"; Numbers give its ordinal.
func (d *Decoder) variant(ct *CompiledType, disc heapcodec.Handle, path []string) (*CompiledVariant, error) {
	tag, err := d.store.Tag(disc)
	if err != nil {
		return nil, errors.StoreFailure(errors.PhaseDecode, path, "tag", err)
	}

	if tag == heapcodec.TagNumber {
		n, err := d.number(disc, tag, path)
		if err != nil {
			return nil, err
		}
		ordinal, ok := numconv.ToInt(n, strconv.IntSize)
		if !ok {
			return nil, errors.UnknownVariant(path, n, ct.Name)
		}
		v, ok := ct.VariantByOrdinal(int(ordinal))
		if !ok {
			return nil, errors.UnknownVariant(path, ordinal, ct.Name)
		}
		return v, nil
	}

	s, err := d.readTaggedString(disc, tag, path)
	if err != nil {
		return nil, err
	}
	name, err := variantName(s, d.opts.VariantNaming == VariantNameShort, path)
	if err != nil {
		return nil, err
	}
	v, ok := ct.VariantByName(name)
	if !ok {
		return nil, errors.UnknownVariant(path, name, ct.Name)
	}
	return v, nil
}

// variantName returns the segment after the last "::". Without a
// separator the whole string is the name only when bare is allowed.
func variantName(disc string, bare bool, path []string) (string, error) {
	idx := strings.LastIndex(disc, "::")
	if idx < 0 {
		if bare {
			return disc, nil
		}
		return "", errors.MissingSeparator(path, disc)
	}
	return disc[idx+2:], nil
}

func (d *Decoder) decodeCustom(ct *CompiledType, h heapcodec.Handle, rv reflect.Value, path []string) error {
	if !rv.CanAddr() {
		return errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			GoType(ct.GoType.String()).
			Detail("custom decode target is not addressable").
			Build()
	}
	u, ok := rv.Addr().Interface().(Unmarshaler)
	if !ok {
		return errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Path(path...).
			GoType(ct.GoType.String()).
			Detail("type implements Marshaler but not Unmarshaler").
			Build()
	}

	if err := u.UnmarshalHeap(d, h); err != nil {
		if _, structured := err.(*errors.Error); structured {
			return err
		}
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(path...).
			GoType(ct.GoType.String()).
			Cause(err).
			Detail("UnmarshalHeap").
			Build()
	}
	return nil
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func keySeg(k reflect.Value) string {
	switch k.Kind() {
	case reflect.String:
		return k.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10)
	default:
		return strconv.FormatUint(k.Uint(), 10)
	}
}
