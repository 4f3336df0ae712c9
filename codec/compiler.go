package codec

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/heapcodec/errors"
)

var (
	charType        = reflect.TypeFor[Char]()
	tupleMarkerType = reflect.TypeFor[Tuple]()
	marshalerType   = reflect.TypeFor[Marshaler]()
	unmarshalerType = reflect.TypeFor[Unmarshaler]()
)

// Variant names one case of an enum and the Go type that carries it.
type Variant struct {
	Type reflect.Type
	Name string
}

// Case returns the variant named name carried by Go type T.
func Case[T any](name string) Variant {
	return Variant{Name: name, Type: reflect.TypeFor[T]()}
}

type enumDef struct {
	name     string
	variants []Variant
}

type Compiler struct {
	cache sync.Map // reflect.Type -> *CompiledType
	mu    sync.RWMutex
	enums map[reflect.Type]*enumDef
}

func NewCompiler() *Compiler {
	return &Compiler{
		enums: make(map[reflect.Type]*enumDef),
	}
}

var defaultCompiler = NewCompiler()

// DefaultCompiler returns the compiler shared by Marshal, Unmarshal and
// encoders or decoders created without an explicit compiler.
func DefaultCompiler() *Compiler {
	return defaultCompiler
}

// Register registers interface type I as an enum on c.
func Register[I any](c *Compiler, name string, variants ...Variant) error {
	return c.RegisterEnum(reflect.TypeFor[I](), name, variants...)
}

// RegisterEnum makes the interface type iface an enum named name. Each
// variant type must implement iface. Ordinals follow registration order.
// Registering invalidates previously compiled types.
func (c *Compiler) RegisterEnum(iface reflect.Type, name string, variants ...Variant) error {
	if iface == nil || iface.Kind() != reflect.Interface {
		return errors.Registration(typeString(iface), "enum type must be an interface")
	}
	if name == "" || strings.Contains(name, "::") {
		return errors.Registration(iface.String(), "enum name must be non-empty and must not contain \"::\"")
	}
	if len(variants) == 0 {
		return errors.Registration(iface.String(), "enum needs at least one variant")
	}

	names := make(map[string]struct{}, len(variants))
	goTypes := make(map[reflect.Type]struct{}, len(variants))
	for _, v := range variants {
		if v.Type == nil {
			return errors.Registration(iface.String(), "variant "+v.Name+" has no Go type")
		}
		if v.Name == "" || strings.Contains(v.Name, "::") {
			return errors.Registration(iface.String(), "variant name must be non-empty and must not contain \"::\"")
		}
		if !v.Type.Implements(iface) {
			return errors.Registration(iface.String(), v.Type.String()+" does not implement "+iface.String())
		}
		if _, dup := names[v.Name]; dup {
			return errors.Registration(iface.String(), "duplicate variant "+v.Name)
		}
		if _, dup := goTypes[v.Type]; dup {
			return errors.Registration(iface.String(), "duplicate variant type "+v.Type.String())
		}
		names[v.Name] = struct{}{}
		goTypes[v.Type] = struct{}{}
	}

	c.mu.Lock()
	c.enums[iface] = &enumDef{name: name, variants: append([]Variant(nil), variants...)}
	c.mu.Unlock()

	c.cache.Range(func(k, _ any) bool {
		c.cache.Delete(k)
		return true
	})

	Logger().Debug("registered enum",
		zap.String("enum", name),
		zap.Stringer("type", iface),
		zap.Int("variants", len(variants)))
	return nil
}

func (c *Compiler) enum(t reflect.Type) (*enumDef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.enums[t]
	return def, ok
}

// Compile returns the compiled shape of goType, compiling and caching it
// on first use.
func (c *Compiler) Compile(goType reflect.Type) (*CompiledType, error) {
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}

	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*CompiledType), nil
	}

	building := make(map[reflect.Type]*CompiledType)
	ct, err := c.compile(goType, nil, building)
	if err != nil {
		return nil, err
	}

	for t, built := range building {
		c.cache.LoadOrStore(t, built)
	}
	Logger().Debug("compiled type",
		zap.Stringer("type", goType),
		zap.Stringer("kind", ct.Kind),
		zap.Int("types", len(building)))
	return ct, nil
}

func (c *Compiler) compile(goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) (*CompiledType, error) {
	if ct, ok := building[goType]; ok {
		return ct, nil
	}
	if cached, ok := c.cache.Load(goType); ok {
		return cached.(*CompiledType), nil
	}

	// Registered before filling so recursive types resolve to this entry.
	ct := &CompiledType{GoType: goType, Name: goType.Name()}
	building[goType] = ct

	if err := c.fill(ct, goType, path, building); err != nil {
		delete(building, goType)
		return nil, err
	}
	return ct, nil
}

func (c *Compiler) fill(ct *CompiledType, goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) error {
	if isCustom(goType) {
		ct.Kind = KindCustom
		return nil
	}
	if goType == charType {
		ct.Kind = KindChar
		return nil
	}

	switch goType.Kind() {
	case reflect.Bool:
		ct.Kind = KindBool
	case reflect.Int8:
		ct.Kind = KindInt8
	case reflect.Int16:
		ct.Kind = KindInt16
	case reflect.Int32:
		ct.Kind = KindInt32
	case reflect.Int64:
		ct.Kind = KindInt64
	case reflect.Int:
		ct.Kind = KindInt
	case reflect.Uint8:
		ct.Kind = KindUint8
	case reflect.Uint16:
		ct.Kind = KindUint16
	case reflect.Uint32:
		ct.Kind = KindUint32
	case reflect.Uint64:
		ct.Kind = KindUint64
	case reflect.Uint:
		ct.Kind = KindUint
	case reflect.Float32:
		ct.Kind = KindFloat32
	case reflect.Float64:
		ct.Kind = KindFloat64
	case reflect.String:
		ct.Kind = KindString
	case reflect.Slice:
		return c.compileSlice(ct, goType, path, building)
	case reflect.Array:
		return c.compileArray(ct, goType, path, building)
	case reflect.Pointer:
		return c.compileOption(ct, goType, path, building)
	case reflect.Map:
		return c.compileMap(ct, goType, path, building)
	case reflect.Struct:
		return c.compileStruct(ct, goType, path, building)
	case reflect.Interface:
		return c.compileInterface(ct, goType, path, building)
	default:
		return errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(goType.String()).
			Detail("unsupported Go kind: %s", goType.Kind()).
			Build()
	}
	return nil
}

// isCustom reports whether the type encodes or decodes itself. Interfaces
// dispatch on their dynamic value and pointers compile as options over a
// custom element, so neither is custom itself.
func isCustom(t reflect.Type) bool {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return false
	}
	pt := reflect.PointerTo(t)
	return t.Implements(marshalerType) || pt.Implements(marshalerType) || pt.Implements(unmarshalerType)
}

func (c *Compiler) compileSlice(ct *CompiledType, goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) error {
	if goType.Elem().Kind() == reflect.Uint8 && !isCustom(goType.Elem()) {
		ct.Kind = KindBytes
		return nil
	}

	elemType, err := c.compile(goType.Elem(), appendPath(path, "[elem]"), building)
	if err != nil {
		return err
	}
	ct.Kind = KindSequence
	ct.ElemType = elemType
	return nil
}

func (c *Compiler) compileArray(ct *CompiledType, goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) error {
	elemType, err := c.compile(goType.Elem(), appendPath(path, "[elem]"), building)
	if err != nil {
		return err
	}
	ct.Kind = KindTuple
	ct.ElemType = elemType
	ct.Arity = goType.Len()
	return nil
}

func (c *Compiler) compileOption(ct *CompiledType, goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) error {
	elemType, err := c.compile(goType.Elem(), appendPath(path, "[some]"), building)
	if err != nil {
		return err
	}
	ct.Kind = KindOption
	ct.ElemType = elemType
	return nil
}

func (c *Compiler) compileMap(ct *CompiledType, goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) error {
	keyType, err := c.compile(goType.Key(), appendPath(path, "[key]"), building)
	if err != nil {
		return err
	}
	if keyType.Kind != KindString && !keyType.Kind.IsInteger() {
		return errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(goType.String()).
			Detail("map keys must be strings or integers, got %s", goType.Key()).
			Build()
	}

	elemType, err := c.compile(goType.Elem(), appendPath(path, "[value]"), building)
	if err != nil {
		return err
	}
	ct.Kind = KindMap
	ct.KeyType = keyType
	ct.ElemType = elemType
	return nil
}

func (c *Compiler) compileStruct(ct *CompiledType, goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) error {
	if goType.NumField() == 0 {
		ct.Kind = KindUnit
		return nil
	}

	if isTupleStruct(goType) {
		ct.Kind = KindTuple
		for i := 0; i < goType.NumField(); i++ {
			f := goType.Field(i)
			if f.Type == tupleMarkerType || !f.IsExported() {
				continue
			}
			fieldPath := appendPath(path, "["+strconv.Itoa(len(ct.Fields))+"]")
			fieldType, err := c.compile(f.Type, fieldPath, building)
			if err != nil {
				return err
			}
			ct.Fields = append(ct.Fields, CompiledField{
				Type:  fieldType,
				Name:  f.Name,
				Index: []int{i},
			})
		}
		ct.Arity = len(ct.Fields)
		return nil
	}

	ct.Kind = KindStruct
	return c.collectFields(ct, goType, nil, path, building)
}

func isTupleStruct(goType reflect.Type) bool {
	for i := 0; i < goType.NumField(); i++ {
		f := goType.Field(i)
		if f.Anonymous && f.Type == tupleMarkerType {
			return true
		}
	}
	return false
}

// collectFields appends the heap-visible fields of goType. Untagged
// embedded structs are flattened; shallower fields win on name clashes.
func (c *Compiler) collectFields(ct *CompiledType, goType reflect.Type, index []int, path []string, building map[reflect.Type]*CompiledType) error {
	var embedded []reflect.StructField

	for i := 0; i < goType.NumField(); i++ {
		f := goType.Field(i)
		name, skip := fieldName(f)
		if skip {
			continue
		}

		if f.Anonymous && f.Tag.Get("heap") == "" && f.Type.Kind() == reflect.Struct {
			embedded = append(embedded, f)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if hasField(ct, name) {
			continue
		}

		fieldType, err := c.compile(f.Type, appendPath(path, name), building)
		if err != nil {
			return err
		}
		ct.Fields = append(ct.Fields, CompiledField{
			Type:  fieldType,
			Name:  name,
			Index: appendIndex(index, i),
		})
	}

	for _, f := range embedded {
		if err := c.collectFields(ct, f.Type, appendIndex(index, f.Index[0]), path, building); err != nil {
			return err
		}
	}
	return nil
}

func hasField(ct *CompiledType, name string) bool {
	for i := range ct.Fields {
		if ct.Fields[i].Name == name {
			return true
		}
	}
	return false
}

// fieldName returns the heap name from the `heap` tag, or the Go name.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("heap")
	if tag == "-" {
		return "", true
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name, false
	}
	return f.Name, false
}

func (c *Compiler) compileInterface(ct *CompiledType, goType reflect.Type, path []string, building map[reflect.Type]*CompiledType) error {
	def, ok := c.enum(goType)
	if !ok {
		if goType.NumMethod() == 0 {
			ct.Kind = KindAny
			return nil
		}
		return errors.New(errors.PhaseCompile, errors.KindUnsupported).
			Path(path...).
			GoType(goType.String()).
			Detail("interface is not a registered enum").
			Build()
	}

	ct.Kind = KindEnum
	ct.Name = def.name
	ct.Variants = make([]CompiledVariant, len(def.variants))

	for i, v := range def.variants {
		cv := CompiledVariant{
			GoType:  v.Type,
			Name:    v.Name,
			Ordinal: i,
			Kind:    VariantUnit,
		}

		if !(v.Type.Kind() == reflect.Struct && v.Type.NumField() == 0) {
			payload, err := c.compile(v.Type, appendPath(path, v.Name), building)
			if err != nil {
				return err
			}
			cv.Type = payload
			switch payload.Kind {
			case KindTuple:
				cv.Kind = VariantTuple
			case KindStruct:
				cv.Kind = VariantStruct
			default:
				cv.Kind = VariantNewtype
			}
		}
		ct.Variants[i] = cv
	}
	return nil
}

func appendPath(path []string, seg string) []string {
	return append(append(make([]string, 0, len(path)+1), path...), seg)
}

func appendIndex(index []int, i int) []int {
	return append(append(make([]int, 0, len(index)+1), index...), i)
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
