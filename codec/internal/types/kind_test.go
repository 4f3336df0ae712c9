package types //nolint:revive // package name is used by internal consumers

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		want string
		kind Kind
	}{
		{"bool", KindBool},
		{"int8", KindInt8},
		{"int64", KindInt64},
		{"uint", KindUint},
		{"float32", KindFloat32},
		{"char", KindChar},
		{"string", KindString},
		{"bytes", KindBytes},
		{"unit", KindUnit},
		{"option", KindOption},
		{"sequence", KindSequence},
		{"tuple", KindTuple},
		{"map", KindMap},
		{"struct", KindStruct},
		{"enum", KindEnum},
		{"any", KindAny},
		{"custom", KindCustom},
		{"unknown", Kind(255)},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKindIntegers(t *testing.T) {
	tests := []struct {
		kind    Kind
		integer bool
		signed  bool
	}{
		{KindBool, false, false},
		{KindInt8, true, true},
		{KindInt, true, true},
		{KindUint8, true, false},
		{KindUint, true, false},
		{KindFloat64, false, false},
		{KindChar, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if got := tc.kind.IsInteger(); got != tc.integer {
				t.Errorf("IsInteger() = %v, want %v", got, tc.integer)
			}
			if got := tc.kind.IsSigned(); got != tc.signed {
				t.Errorf("IsSigned() = %v, want %v", got, tc.signed)
			}
		})
	}
}

func TestVariantKindString(t *testing.T) {
	if VariantStruct.String() != "struct" {
		t.Errorf("String() = %q", VariantStruct.String())
	}
	if VariantKind(9).String() != "unknown" {
		t.Errorf("String() = %q", VariantKind(9).String())
	}
}
