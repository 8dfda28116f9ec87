package qitype

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestStructuralDiffOnMismatch exercises go-cmp's structural diff on a
// Type tree with nested constructors and annotations; the other
// round-trip tests in this module compare with Equal() instead.
func TestStructuralDiffOnMismatch(t *testing.T) {
	got := NewStruct("Point", []string{"x", "y"}, NewFloat64(), NewFloat64())
	want := NewStruct("Point", []string{"x", "z"}, NewFloat64(), NewFloat64())
	if got.Equal(want) {
		t.Fatal("expected these types to differ")
	}
	diff := cmp.Diff(want, got)
	if diff == "" {
		t.Fatal("expected a non-empty cmp diff for mismatched field names")
	}
}

func assertRoundTrip(t *testing.T, want Type, sig string) {
	t.Helper()
	if got := want.String(); got != sig {
		t.Fatalf("String() = %q, want %q", got, sig)
	}
	parsed, err := Parse(sig)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", sig, err)
	}
	if !parsed.Equal(want) {
		t.Fatalf("Parse(%q) = %#v, want %#v", sig, parsed, want)
	}
}

func TestScalarRoundTrip(t *testing.T) {
	cases := []struct {
		t Type
		s string
	}{
		{NewUnit(), "v"}, {NewBool(), "b"}, {NewInt8(), "c"}, {NewUInt8(), "C"},
		{NewInt16(), "w"}, {NewUInt16(), "W"}, {NewInt32(), "i"}, {NewUInt32(), "I"},
		{NewInt64(), "l"}, {NewUInt64(), "L"}, {NewFloat32(), "f"}, {NewFloat64(), "d"},
		{NewString(), "s"}, {NewRaw(), "r"}, {NewObject(), "o"}, {NewDynamic(), "m"},
	}
	for _, c := range cases {
		assertRoundTrip(t, c.t, c.s)
	}
}

func TestConstructorRoundTrip(t *testing.T) {
	assertRoundTrip(t, NewOption(NewUnit()), "+v")
	assertRoundTrip(t, NewList(NewInt32()), "[i]")
	assertRoundTrip(t, NewList(NewTuple()), "[()]")
	assertRoundTrip(t, NewMap(NewFloat32(), NewString()), "{fs}")
	assertRoundTrip(t, NewTuple(NewFloat32(), NewString(), NewUInt32()), "(fsI)")
	assertRoundTrip(t, NewVarArgs(NewDynamic()), "#m")
}

func TestNamedStructRoundTrip(t *testing.T) {
	point := NewStruct("Point", []string{"x", "y"}, NewFloat64(), NewFloat64())
	assertRoundTrip(t, point, "(dd)<Point,x,y>")

	explorationMap := NewTupleStruct("ExplorationMap", NewList(NewTuple(NewFloat64(), NewFloat64())), NewUInt64())
	assertRoundTrip(t, explorationMap, "([(dd)]L)<ExplorationMap>")
}

func TestAnnotationDroppedWhenEmpty(t *testing.T) {
	got, err := Parse("()<>")
	if err != nil {
		t.Fatal(err)
	}
	want := NewTuple()
	if !got.Equal(want) {
		t.Fatalf("got %#v want %#v", got, want)
	}
	if got.String() != "()" {
		t.Fatalf("empty annotation should not round-trip back with <>: got %q", got.String())
	}
}

func TestAnnotationDroppedWhenStructNameEmpty(t *testing.T) {
	// An empty struct name makes the whole annotation meaningless, even
	// when field names are present: the tuple collapses to fully plain
	// and the field names are discarded.
	got, err := Parse("(ff)<,x,y>")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "" || len(got.Fields) != 0 {
		t.Fatalf("unexpected parse: %#v", got)
	}
	if got.String() != "(ff)" {
		t.Fatalf("got %q", got.String())
	}
}

func TestTupleStructWithoutFieldNames(t *testing.T) {
	// Name-only annotations (no per-field names) stay a tuple-struct:
	// the struct name survives, only the field list is empty.
	got, err := Parse("(ff)<Point>")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Point" || len(got.Fields) != 0 {
		t.Fatalf("unexpected parse: %#v", got)
	}
	if got.String() != "(ff)<Point>" {
		t.Fatalf("got %q", got.String())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		sig  string
		kind string
	}{
		{"", "*qitype.EndOfInputError"},
		{"u", "*qitype.UnexpectedCharError"},
		{"+", "*qitype.MissingOptionValueTypeError"},
		{"+[", "*qitype.OptionValueTypeParsingError"},
		{"#", "*qitype.MissingVarArgsValueTypeError"},
		{"[", "*qitype.MissingListValueTypeError"},
		{"[]", "*qitype.MissingListValueTypeError"},
		{"[i", "*qitype.MissingListEndError"},
		{"[{i}]", "*qitype.ListValueTypeParsingError"},
		{"{", "*qitype.MissingMapKeyTypeError"},
		{"{}", "*qitype.MissingMapKeyTypeError"},
		{"{i}", "*qitype.MissingMapValueTypeError"},
		{"{ii", "*qitype.MissingMapEndError"},
		{"(", "*qitype.MissingTupleEndError"},
		{"(iii", "*qitype.MissingTupleEndError"},
		{"(i)<", "*qitype.MissingTupleAnnotationEndError"},
		{"(i)<S,a,b>", "*qitype.AnnotationFieldCountError"},
	}
	for _, c := range cases {
		_, err := Parse(c.sig)
		if err == nil {
			t.Fatalf("Parse(%q): expected error", c.sig)
		}
		if got := typeName(err); got != c.kind {
			t.Fatalf("Parse(%q): error type = %s, want %s (%v)", c.sig, got, c.kind, err)
		}
	}
}

func typeName(err error) string {
	switch err.(type) {
	case *EndOfInputError:
		return "*qitype.EndOfInputError"
	case *UnexpectedCharError:
		return "*qitype.UnexpectedCharError"
	case *MissingOptionValueTypeError:
		return "*qitype.MissingOptionValueTypeError"
	case *OptionValueTypeParsingError:
		return "*qitype.OptionValueTypeParsingError"
	case *MissingVarArgsValueTypeError:
		return "*qitype.MissingVarArgsValueTypeError"
	case *MissingListValueTypeError:
		return "*qitype.MissingListValueTypeError"
	case *MissingListEndError:
		return "*qitype.MissingListEndError"
	case *ListValueTypeParsingError:
		return "*qitype.ListValueTypeParsingError"
	case *MissingMapKeyTypeError:
		return "*qitype.MissingMapKeyTypeError"
	case *MissingMapValueTypeError:
		return "*qitype.MissingMapValueTypeError"
	case *MissingMapEndError:
		return "*qitype.MissingMapEndError"
	case *MissingTupleEndError:
		return "*qitype.MissingTupleEndError"
	case *MissingTupleAnnotationEndError:
		return "*qitype.MissingTupleAnnotationEndError"
	case *AnnotationFieldCountError:
		return "*qitype.AnnotationFieldCountError"
	default:
		return "unknown"
	}
}

// TestMetaObjectSignature is spec scenario S5.
func TestMetaObjectSignature(t *testing.T) {
	sig := "({I(Issss[(ss)<MetaMethodParameter,name,description>]s)" +
		"<MetaMethod,uid,returnSignature,name,parametersSignature," +
		"description,parameters,returnDescription>}{I(Iss)<MetaSignal," +
		"uid,name,signature>}{I(Iss)<MetaProperty,uid,name,signature>}s)" +
		"<MetaObject,methods,signals,properties,description>"

	got, err := Parse(sig)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.Kind != Tuple || got.Name != "MetaObject" || len(got.Elements) != 4 {
		t.Fatalf("unexpected top-level shape: %#v", got)
	}
	wantFields := []string{"methods", "signals", "properties", "description"}
	for i, f := range wantFields {
		if got.Fields[i] != f {
			t.Fatalf("field %d = %q, want %q", i, got.Fields[i], f)
		}
	}
	methodParam := NewStruct("MetaMethodParameter", []string{"name", "description"}, NewString(), NewString())
	metaMethod := NewStruct("MetaMethod",
		[]string{"uid", "returnSignature", "name", "parametersSignature", "description", "parameters", "returnDescription"},
		NewUInt32(), NewString(), NewString(), NewString(), NewString(), NewList(methodParam), NewString())
	metaSignal := NewStruct("MetaSignal", []string{"uid", "name", "signature"}, NewUInt32(), NewString(), NewString())
	metaProperty := NewStruct("MetaProperty", []string{"uid", "name", "signature"}, NewUInt32(), NewString(), NewString())
	want := NewStruct("MetaObject", wantFields,
		NewMap(NewUInt32(), metaMethod),
		NewMap(NewUInt32(), metaSignal),
		NewMap(NewUInt32(), metaProperty),
		NewString())

	if !got.Equal(want) {
		t.Fatalf("parsed MetaObject type did not match expected shape")
	}
	if got.String() != sig {
		t.Fatalf("re-written signature does not match input:\ngot:  %s\nwant: %s", got.String(), sig)
	}
}

func TestConvertibleTo(t *testing.T) {
	if !NewInt32().ConvertibleTo(NewInt32()) {
		t.Fatal("Int32 should convert to Int32")
	}
	if NewInt32().ConvertibleTo(NewInt64()) {
		t.Fatal("Int32 should not convert to Int64")
	}
	if !NewInt32().ConvertibleTo(NewDynamic()) {
		t.Fatal("anything should convert to Dynamic")
	}
	a := NewStruct("Point", []string{"x", "y"}, NewFloat64(), NewFloat64())
	b := NewTuple(NewFloat64(), NewFloat64())
	if !b.ConvertibleTo(a) {
		t.Fatal("an unnamed tuple should convert to a same-shaped named struct")
	}
	c := NewStruct("Other", []string{"x", "y"}, NewFloat64(), NewFloat64())
	if a.ConvertibleTo(c) {
		t.Fatal("structs with differing names that are both present should not convert")
	}
}
