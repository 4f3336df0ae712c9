package memstore

import (
	"io"
	"math"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"

	"github.com/wippyai/heapcodec"
	"github.com/wippyai/heapcodec/errors"
)

// SnapshotVersion is written into every snapshot. ReadSnapshot rejects
// other versions.
const SnapshotVersion = 1

// Snapshots are a zstd stream wrapping one CBOR document. Handles are
// positions in Values, so a restored store resolves the same handles.
type snapshot struct {
	Version int             `cbor:"1,keyasint"`
	Symbols []string        `cbor:"2,keyasint"`
	Values  []snapshotValue `cbor:"3,keyasint"`
}

type snapshotValue struct {
	Chars   []rune   `cbor:"c,omitempty"`
	Bytes   []byte   `cbor:"y,omitempty"`
	Items   []uint32 `cbor:"i,omitempty"`
	Assoc   []bool   `cbor:"s,omitempty"`
	Float   uint64   `cbor:"f,omitempty"`
	Int     int64    `cbor:"n,omitempty"`
	Uint    uint64   `cbor:"u,omitempty"`
	Char    rune     `cbor:"r,omitempty"`
	Sym     uint32   `cbor:"m,omitempty"`
	A       uint32   `cbor:"a,omitempty"`
	B       uint32   `cbor:"b,omitempty"`
	Tag     uint8    `cbor:"t"`
	NumKind uint8    `cbor:"k,omitempty"`
}

var snapshotEncMode cbor.EncMode

func init() {
	var err error
	snapshotEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("memstore: CBOR encoder initialization failed: " + err.Error())
	}
}

// WriteSnapshot writes the full store contents to w. Builds in progress
// are not part of the snapshot.
func (s *Store) WriteSnapshot(w io.Writer) error {
	snap := snapshot{
		Version: SnapshotVersion,
		Symbols: s.names,
		Values:  make([]snapshotValue, len(s.values)),
	}
	for i := range s.values {
		snap.Values[i] = toSnapshotValue(&s.values[i])
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindInvalidData, err, "create snapshot compressor")
	}
	if err := snapshotEncMode.NewEncoder(zw).Encode(&snap); err != nil {
		zw.Close()
		return errors.Wrap(errors.PhaseStore, errors.KindInvalidData, err, "encode snapshot")
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindInvalidData, err, "flush snapshot")
	}

	s.logger.Debug("wrote snapshot",
		zap.Int("values", len(snap.Values)),
		zap.Int("symbols", len(snap.Symbols)))
	return nil
}

// ReadSnapshot restores a store written by WriteSnapshot.
func ReadSnapshot(r io.Reader, opts ...Option) (*Store, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStore, errors.KindInvalidData, err, "create snapshot decompressor")
	}
	defer zr.Close()

	var snap snapshot
	if err := cbor.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, errors.Wrap(errors.PhaseStore, errors.KindInvalidData, err, "decode snapshot")
	}
	if snap.Version != SnapshotVersion {
		return nil, errors.New(errors.PhaseStore, errors.KindUnsupported).
			Value(snap.Version).
			Detail("snapshot version %d, want %d", snap.Version, SnapshotVersion).
			Build()
	}
	if len(snap.Values) < 3 {
		return nil, errors.InvalidData(errors.PhaseStore, nil, "snapshot is missing preallocated values")
	}

	s := New(opts...)
	s.values = make([]value, len(snap.Values))
	for i, sv := range snap.Values {
		v, err := fromSnapshotValue(sv, i, len(snap.Symbols))
		if err != nil {
			return nil, err
		}
		s.values[i] = v
	}
	s.names = snap.Symbols
	for id, name := range snap.Symbols {
		s.symbols[name] = uint32(id)
	}

	s.logger.Debug("read snapshot",
		zap.Int("values", len(s.values)),
		zap.Int("symbols", len(s.names)))
	return s, nil
}

func toSnapshotValue(v *value) snapshotValue {
	sv := snapshotValue{
		Tag:   uint8(v.tag),
		Chars: v.chars,
		Bytes: v.bytes,
		Char:  v.char,
		Sym:   v.sym,
		A:     uint32(v.a),
		B:     uint32(v.b),
	}
	if v.tag == heapcodec.TagNumber {
		sv.NumKind = uint8(v.num.Kind())
		switch v.num.Kind() {
		case heapcodec.NumberInt:
			sv.Int, _ = v.num.Int64()
		case heapcodec.NumberUint:
			sv.Uint, _ = v.num.Uint64()
		default:
			sv.Float = math.Float64bits(v.num.Float64())
		}
	}
	if len(v.items) > 0 {
		sv.Items = make([]uint32, len(v.items))
		sv.Assoc = make([]bool, len(v.items))
		for i, it := range v.items {
			sv.Items[i] = uint32(it.h)
			sv.Assoc[i] = it.assoc
		}
	}
	return sv
}

// preallocatedTags are the tags of handles 0, 1 and 2 in every store.
var preallocatedTags = [...]heapcodec.Tag{heapcodec.TagUnit, heapcodec.TagTrue, heapcodec.TagFalse}

// fromSnapshotValue restores the value at handle index. Children must
// precede their parent, as they do for every store built through the
// Builder methods, which keeps restored graphs acyclic.
func fromSnapshotValue(sv snapshotValue, index, symbols int) (value, error) {
	tag := heapcodec.Tag(sv.Tag)
	if tag > heapcodec.TagSlice {
		return value{}, errors.InvalidData(errors.PhaseStore, nil, "snapshot value has unknown tag")
	}
	if index < len(preallocatedTags) && tag != preallocatedTags[index] {
		return value{}, errors.New(errors.PhaseStore, errors.KindInvalidData).
			Value(index).
			Detail("snapshot handle %d is %s, want %s", index, tag, preallocatedTags[index]).
			Build()
	}
	switch tag {
	case heapcodec.TagPair, heapcodec.TagConcatenation, heapcodec.TagRange, heapcodec.TagSlice:
		if int(sv.A) >= index || int(sv.B) >= index {
			return value{}, errors.OutOfBounds(errors.PhaseStore, nil, int(max(sv.A, sv.B)), index)
		}
	default:
		if sv.A != 0 || sv.B != 0 {
			return value{}, errors.InvalidData(errors.PhaseStore, nil, "snapshot scalar value has child handles")
		}
	}
	if tag != heapcodec.TagList && len(sv.Items) > 0 {
		return value{}, errors.InvalidData(errors.PhaseStore, nil, "snapshot non-list value has items")
	}
	if tag == heapcodec.TagSymbol && int(sv.Sym) >= symbols {
		return value{}, errors.OutOfBounds(errors.PhaseStore, nil, int(sv.Sym), symbols)
	}
	if len(sv.Assoc) != len(sv.Items) {
		return value{}, errors.InvalidData(errors.PhaseStore, nil, "snapshot list flags do not match items")
	}

	v := value{
		tag:   tag,
		chars: sv.Chars,
		bytes: sv.Bytes,
		char:  sv.Char,
		sym:   sv.Sym,
		a:     heapcodec.Handle(sv.A),
		b:     heapcodec.Handle(sv.B),
	}
	if tag == heapcodec.TagNumber {
		switch heapcodec.NumberKind(sv.NumKind) {
		case heapcodec.NumberInt:
			v.num = heapcodec.IntNumber(sv.Int)
		case heapcodec.NumberUint:
			v.num = heapcodec.UintNumber(sv.Uint)
		default:
			v.num = heapcodec.FloatNumber(math.Float64frombits(sv.Float))
		}
	}
	if len(sv.Items) > 0 {
		v.items = make([]item, len(sv.Items))
		for i, h := range sv.Items {
			if int(h) >= index {
				return value{}, errors.OutOfBounds(errors.PhaseStore, nil, int(h), index)
			}
			v.items[i] = item{h: heapcodec.Handle(h), assoc: sv.Assoc[i]}
		}
	}
	return v, nil
}
