package heapcodec

// Handle addresses a value in a runtime value store.
type Handle uint32

// Tag identifies which kind of value a handle refers to.
type Tag uint8

const (
	TagUnit Tag = iota
	TagTrue
	TagFalse
	TagNumber
	TagChar
	TagCharList
	TagByteList
	TagSymbol
	TagPair
	TagList
	TagConcatenation
	TagRange
	TagSlice
)

var tagNames = [...]string{
	TagUnit:          "Unit",
	TagTrue:          "True",
	TagFalse:         "False",
	TagNumber:        "Number",
	TagChar:          "Char",
	TagCharList:      "CharList",
	TagByteList:      "ByteList",
	TagSymbol:        "Symbol",
	TagPair:          "Pair",
	TagList:          "List",
	TagConcatenation: "Concatenation",
	TagRange:         "Range",
	TagSlice:         "Slice",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Unknown"
}

// IsSequence reports whether values with this tag resolve to more than a
// single item when read as a sequence.
func (t Tag) IsSequence() bool {
	return t == TagList || t == TagConcatenation || t == TagSlice
}

// Reader provides read access to a value store.
type Reader interface {
	Tag(h Handle) (Tag, error)

	Number(h Handle) (Number, error)
	Char(h Handle) (rune, error)

	CharListLen(h Handle) (int, error)
	CharListItem(h Handle, index int) (rune, error)

	ByteListLen(h Handle) (int, error)
	ByteListItem(h Handle, index int) (byte, error)

	SymbolName(h Handle) (string, error)

	Pair(h Handle) (key, value Handle, err error)

	ListLen(h Handle) (int, error)
	ListItem(h Handle, index int) (Handle, error)

	Concatenation(h Handle) (left, right Handle, err error)
	Range(h Handle) (start, end Handle, err error)
	Slice(h Handle) (source, rng Handle, err error)
}

// Builder provides write access to a value store. Start/End pairs must be
// balanced; implementations may permit nested builds.
type Builder interface {
	AddUnit() (Handle, error)
	AddTrue() (Handle, error)
	AddFalse() (Handle, error)
	AddNumber(n Number) (Handle, error)
	AddChar(r rune) (Handle, error)

	StartCharList() error
	AppendChar(r rune) error
	EndCharList() (Handle, error)

	StartByteList() error
	AppendByte(b byte) error
	EndByteList() (Handle, error)

	// ParseSymbol interns name and returns a Symbol handle.
	ParseSymbol(name string) (Handle, error)
	// SymbolFrom coerces an arbitrary value into a Symbol.
	SymbolFrom(h Handle) (Handle, error)

	AddPair(key, value Handle) (Handle, error)

	StartList(capHint int) error
	AppendList(h Handle, associative bool) error
	EndList() (Handle, error)

	AddConcatenation(left, right Handle) (Handle, error)
	AddRange(start, end Handle) (Handle, error)
	AddSlice(source, rng Handle) (Handle, error)

	// CharListFrom realizes h as a CharList, allocating when h is not one
	// already.
	CharListFrom(h Handle) (Handle, error)
}

// Store is a runtime value store with both read and write access.
type Store interface {
	Reader
	Builder
}
