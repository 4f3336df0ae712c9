package types

import (
	"reflect"
	"strings"
)

type CompiledType struct {
	GoType   reflect.Type
	ElemType *CompiledType
	KeyType  *CompiledType
	Fields   []Field
	Variants []Variant
	Name     string
	Arity    int
	Kind     Kind
}

type Field struct {
	Type  *CompiledType
	Name  string
	Index []int
}

type Variant struct {
	Type    *CompiledType
	GoType  reflect.Type
	Name    string
	Ordinal int
	Kind    VariantKind
}

// VariantByName finds a variant by its short name.
func (ct *CompiledType) VariantByName(name string) (*Variant, bool) {
	for i := range ct.Variants {
		if ct.Variants[i].Name == name {
			return &ct.Variants[i], true
		}
	}
	return nil, false
}

// VariantByType finds the variant whose Go type is t.
func (ct *CompiledType) VariantByType(t reflect.Type) (*Variant, bool) {
	for i := range ct.Variants {
		if ct.Variants[i].GoType == t {
			return &ct.Variants[i], true
		}
	}
	return nil, false
}

func (ct *CompiledType) VariantByOrdinal(ordinal int) (*Variant, bool) {
	if ordinal < 0 || ordinal >= len(ct.Variants) {
		return nil, false
	}
	return &ct.Variants[ordinal], true
}

// FieldByName matches exactly first, then case-insensitively.
func (ct *CompiledType) FieldByName(name string) (*Field, bool) {
	for i := range ct.Fields {
		if ct.Fields[i].Name == name {
			return &ct.Fields[i], true
		}
	}
	for i := range ct.Fields {
		if strings.EqualFold(ct.Fields[i].Name, name) {
			return &ct.Fields[i], true
		}
	}
	return nil, false
}
