package memstore

import (
	"go.uber.org/zap"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/errors"
)

// Unit, True and False are preallocated so every store shares their handles.
const (
	UnitHandle  heapcodec.Handle = 0
	TrueHandle  heapcodec.Handle = 1
	FalseHandle heapcodec.Handle = 2
)

// Store is an in-memory value store. Values are never freed: handles stay
// valid for the life of the store. Not safe for concurrent use.
type Store struct {
	logger     *zap.Logger
	symbols    map[string]uint32
	names      []string
	values     []value
	charBuilds [][]rune
	byteBuilds [][]byte
	listBuilds [][]item
}

type value struct {
	chars []rune
	bytes []byte
	items []item
	num   heapcodec.Number
	char  rune
	sym   uint32
	a     heapcodec.Handle
	b     heapcodec.Handle
	tag   heapcodec.Tag
}

type item struct {
	h     heapcodec.Handle
	assoc bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCapacity preallocates room for n values.
func WithCapacity(n int) Option {
	return func(s *Store) {
		if n > cap(s.values) {
			values := make([]value, len(s.values), n)
			copy(values, s.values)
			s.values = values
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		logger:  zap.NewNop(),
		symbols: make(map[string]uint32),
		values:  make([]value, 0, 64),
	}
	s.values = append(s.values,
		value{tag: heapcodec.TagUnit},
		value{tag: heapcodec.TagTrue},
		value{tag: heapcodec.TagFalse},
	)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of values held, including the preallocated ones.
func (s *Store) Len() int {
	return len(s.values)
}

func (s *Store) add(v value) (heapcodec.Handle, error) {
	if uint64(len(s.values)) > uint64(^uint32(0)) {
		return 0, errors.New(errors.PhaseStore, errors.KindOverflow).
			Detail("store is full (%d values)", len(s.values)).
			Build()
	}
	s.values = append(s.values, v)
	return heapcodec.Handle(len(s.values) - 1), nil
}

func (s *Store) get(h heapcodec.Handle) (*value, error) {
	if int(h) >= len(s.values) {
		return nil, errors.OutOfBounds(errors.PhaseStore, nil, int(h), len(s.values))
	}
	return &s.values[h], nil
}

func (s *Store) expect(h heapcodec.Handle, tag heapcodec.Tag) (*value, error) {
	v, err := s.get(h)
	if err != nil {
		return nil, err
	}
	if v.tag != tag {
		return nil, errors.New(errors.PhaseStore, errors.KindTypeMismatch).
			StoreType(v.tag.String()).
			Value(h).
			Detail("handle %d: expected %s, found %s", h, tag, v.tag).
			Build()
	}
	return v, nil
}

func (s *Store) Tag(h heapcodec.Handle) (heapcodec.Tag, error) {
	v, err := s.get(h)
	if err != nil {
		return 0, err
	}
	return v.tag, nil
}

func (s *Store) AddUnit() (heapcodec.Handle, error)  { return UnitHandle, nil }
func (s *Store) AddTrue() (heapcodec.Handle, error)  { return TrueHandle, nil }
func (s *Store) AddFalse() (heapcodec.Handle, error) { return FalseHandle, nil }

func (s *Store) AddNumber(n heapcodec.Number) (heapcodec.Handle, error) {
	return s.add(value{tag: heapcodec.TagNumber, num: n})
}

func (s *Store) Number(h heapcodec.Handle) (heapcodec.Number, error) {
	v, err := s.expect(h, heapcodec.TagNumber)
	if err != nil {
		return heapcodec.Number{}, err
	}
	return v.num, nil
}

func (s *Store) AddChar(r rune) (heapcodec.Handle, error) {
	return s.add(value{tag: heapcodec.TagChar, char: r})
}

func (s *Store) Char(h heapcodec.Handle) (rune, error) {
	v, err := s.expect(h, heapcodec.TagChar)
	if err != nil {
		return 0, err
	}
	return v.char, nil
}

func (s *Store) StartCharList() error {
	s.charBuilds = append(s.charBuilds, nil)
	return nil
}

func (s *Store) AppendChar(r rune) error {
	n := len(s.charBuilds)
	if n == 0 {
		return noBuild("char list")
	}
	s.charBuilds[n-1] = append(s.charBuilds[n-1], r)
	return nil
}

func (s *Store) EndCharList() (heapcodec.Handle, error) {
	n := len(s.charBuilds)
	if n == 0 {
		return 0, noBuild("char list")
	}
	chars := s.charBuilds[n-1]
	s.charBuilds = s.charBuilds[:n-1]
	return s.add(value{tag: heapcodec.TagCharList, chars: chars})
}

func (s *Store) CharListLen(h heapcodec.Handle) (int, error) {
	v, err := s.expect(h, heapcodec.TagCharList)
	if err != nil {
		return 0, err
	}
	return len(v.chars), nil
}

func (s *Store) CharListItem(h heapcodec.Handle, index int) (rune, error) {
	v, err := s.expect(h, heapcodec.TagCharList)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(v.chars) {
		return 0, errors.OutOfBounds(errors.PhaseStore, nil, index, len(v.chars))
	}
	return v.chars[index], nil
}

func (s *Store) StartByteList() error {
	s.byteBuilds = append(s.byteBuilds, nil)
	return nil
}

func (s *Store) AppendByte(b byte) error {
	n := len(s.byteBuilds)
	if n == 0 {
		return noBuild("byte list")
	}
	s.byteBuilds[n-1] = append(s.byteBuilds[n-1], b)
	return nil
}

func (s *Store) EndByteList() (heapcodec.Handle, error) {
	n := len(s.byteBuilds)
	if n == 0 {
		return 0, noBuild("byte list")
	}
	data := s.byteBuilds[n-1]
	s.byteBuilds = s.byteBuilds[:n-1]
	return s.add(value{tag: heapcodec.TagByteList, bytes: data})
}

func (s *Store) ByteListLen(h heapcodec.Handle) (int, error) {
	v, err := s.expect(h, heapcodec.TagByteList)
	if err != nil {
		return 0, err
	}
	return len(v.bytes), nil
}

func (s *Store) ByteListItem(h heapcodec.Handle, index int) (byte, error) {
	v, err := s.expect(h, heapcodec.TagByteList)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(v.bytes) {
		return 0, errors.OutOfBounds(errors.PhaseStore, nil, index, len(v.bytes))
	}
	return v.bytes[index], nil
}

func (s *Store) intern(name string) uint32 {
	if id, ok := s.symbols[name]; ok {
		return id
	}
	id := uint32(len(s.names))
	s.names = append(s.names, name)
	s.symbols[name] = id
	return id
}

func (s *Store) ParseSymbol(name string) (heapcodec.Handle, error) {
	return s.add(value{tag: heapcodec.TagSymbol, sym: s.intern(name)})
}

func (s *Store) SymbolFrom(h heapcodec.Handle) (heapcodec.Handle, error) {
	v, err := s.get(h)
	if err != nil {
		return 0, err
	}
	if v.tag == heapcodec.TagSymbol {
		return h, nil
	}
	text, err := s.realize(h)
	if err != nil {
		return 0, err
	}
	return s.ParseSymbol(string(text))
}

func (s *Store) SymbolName(h heapcodec.Handle) (string, error) {
	v, err := s.expect(h, heapcodec.TagSymbol)
	if err != nil {
		return "", err
	}
	return s.names[v.sym], nil
}

// LookupSymbol reports whether name has been interned.
func (s *Store) LookupSymbol(name string) bool {
	_, ok := s.symbols[name]
	return ok
}

func (s *Store) AddPair(key, val heapcodec.Handle) (heapcodec.Handle, error) {
	if err := s.checkHandles(key, val); err != nil {
		return 0, err
	}
	return s.add(value{tag: heapcodec.TagPair, a: key, b: val})
}

func (s *Store) Pair(h heapcodec.Handle) (heapcodec.Handle, heapcodec.Handle, error) {
	v, err := s.expect(h, heapcodec.TagPair)
	if err != nil {
		return 0, 0, err
	}
	return v.a, v.b, nil
}

func (s *Store) StartList(capHint int) error {
	if capHint < 0 {
		capHint = 0
	}
	s.listBuilds = append(s.listBuilds, make([]item, 0, capHint))
	return nil
}

func (s *Store) AppendList(h heapcodec.Handle, associative bool) error {
	n := len(s.listBuilds)
	if n == 0 {
		return noBuild("list")
	}
	if _, err := s.get(h); err != nil {
		return err
	}
	s.listBuilds[n-1] = append(s.listBuilds[n-1], item{h: h, assoc: associative})
	return nil
}

func (s *Store) EndList() (heapcodec.Handle, error) {
	n := len(s.listBuilds)
	if n == 0 {
		return 0, noBuild("list")
	}
	items := s.listBuilds[n-1]
	s.listBuilds = s.listBuilds[:n-1]
	return s.add(value{tag: heapcodec.TagList, items: items})
}

func (s *Store) ListLen(h heapcodec.Handle) (int, error) {
	v, err := s.expect(h, heapcodec.TagList)
	if err != nil {
		return 0, err
	}
	return len(v.items), nil
}

func (s *Store) ListItem(h heapcodec.Handle, index int) (heapcodec.Handle, error) {
	v, err := s.expect(h, heapcodec.TagList)
	if err != nil {
		return 0, err
	}
	if index < 0 || index >= len(v.items) {
		return 0, errors.OutOfBounds(errors.PhaseStore, nil, index, len(v.items))
	}
	return v.items[index].h, nil
}

// Associative reports the associative flag of a list item.
func (s *Store) Associative(h heapcodec.Handle, index int) (bool, error) {
	v, err := s.expect(h, heapcodec.TagList)
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(v.items) {
		return false, errors.OutOfBounds(errors.PhaseStore, nil, index, len(v.items))
	}
	return v.items[index].assoc, nil
}

func (s *Store) AddConcatenation(left, right heapcodec.Handle) (heapcodec.Handle, error) {
	if err := s.checkHandles(left, right); err != nil {
		return 0, err
	}
	return s.add(value{tag: heapcodec.TagConcatenation, a: left, b: right})
}

func (s *Store) Concatenation(h heapcodec.Handle) (heapcodec.Handle, heapcodec.Handle, error) {
	v, err := s.expect(h, heapcodec.TagConcatenation)
	if err != nil {
		return 0, 0, err
	}
	return v.a, v.b, nil
}

func (s *Store) AddRange(start, end heapcodec.Handle) (heapcodec.Handle, error) {
	if _, err := s.expect(start, heapcodec.TagNumber); err != nil {
		return 0, err
	}
	if _, err := s.expect(end, heapcodec.TagNumber); err != nil {
		return 0, err
	}
	return s.add(value{tag: heapcodec.TagRange, a: start, b: end})
}

func (s *Store) Range(h heapcodec.Handle) (heapcodec.Handle, heapcodec.Handle, error) {
	v, err := s.expect(h, heapcodec.TagRange)
	if err != nil {
		return 0, 0, err
	}
	return v.a, v.b, nil
}

func (s *Store) AddSlice(source, rng heapcodec.Handle) (heapcodec.Handle, error) {
	if _, err := s.get(source); err != nil {
		return 0, err
	}
	if _, err := s.expect(rng, heapcodec.TagRange); err != nil {
		return 0, err
	}
	return s.add(value{tag: heapcodec.TagSlice, a: source, b: rng})
}

func (s *Store) Slice(h heapcodec.Handle) (heapcodec.Handle, heapcodec.Handle, error) {
	v, err := s.expect(h, heapcodec.TagSlice)
	if err != nil {
		return 0, 0, err
	}
	return v.a, v.b, nil
}

func (s *Store) checkHandles(hs ...heapcodec.Handle) error {
	for _, h := range hs {
		if _, err := s.get(h); err != nil {
			return err
		}
	}
	return nil
}

func noBuild(what string) *errors.Error {
	return errors.New(errors.PhaseStore, errors.KindInvalidData).
		Detail("no %s build in progress", what).
		Build()
}

var _ heapcodec.Store = (*Store)(nil)
