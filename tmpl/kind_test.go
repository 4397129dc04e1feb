package tmpl

import (
	"errors"
	"math"
	"testing"
	"time"
)

type account struct {
	Name    string
	Email   string
	private int
}

func TestClassify(t *testing.T) {
	var nilMap map[string]any

	var nilPtr *account

	tests := []struct {
		name  string
		value any
		want  Kind
	}{
		{"nil", nil, KindAbsent},
		{"nil pointer", nilPtr, KindAbsent},
		{"string", "x", KindScalar},
		{"int", 3, KindScalar},
		{"float", 1.5, KindScalar},
		{"bool", false, KindScalar},
		{"bytes", []byte("x"), KindScalar},
		{"stringer", time.Second, KindScalar},
		{"error", errors.New("x"), KindScalar},
		{"slice", []any{1}, KindSequence},
		{"typed slice", []string{"a"}, KindSequence},
		{"array", [2]int{}, KindSequence},
		{"map", map[string]any{}, KindMapping},
		{"nil map", nilMap, KindMapping},
		{"struct", account{}, KindMapping},
		{"struct pointer", &account{}, KindMapping},
		{"future", NewFuture[any](), KindDeferred},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.value); got != tt.want {
				t.Errorf("Classify(%#v) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		data any
		key  string
		want any
	}{
		{"map", map[string]any{"a": 1}, "a", 1},
		{"map missing", map[string]any{"a": 1}, "b", nil},
		{"typed map", map[string]string{"a": "x"}, "a", "x"},
		{"int-keyed map", map[int]string{1: "x"}, "1", nil},
		{"sequence index", []any{"x", "y"}, "1", "y"},
		{"sequence out of range", []any{"x"}, "3", nil},
		{"typed sequence", []string{"x", "y"}, "0", "x"},
		{"struct field", account{Name: "Al"}, "Name", "Al"},
		{"struct field folded", &account{Email: "a@b"}, "email", "a@b"},
		{"unexported field", account{private: 1}, "private", nil},
		{"scalar", 42, "x", nil},
		{"nil", nil, "x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lookup(tt.data, tt.key); got != tt.want {
				t.Errorf("Lookup(%v, %q) = %#v, want %#v", tt.data, tt.key, got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{nil, false},
		{false, false},
		{0, false},
		{0.0, false},
		{uint8(0), false},
		{math.NaN(), false},
		{"", false},
		{true, true},
		{-1, true},
		{"0", true},
		{[]any{}, true},
		{map[string]any{}, true},
		{NewFuture[any](), true},
	}

	for _, tt := range tests {
		if got := Truthy(tt.value); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{nil, ""},
		{"x", "x"},
		{[]byte("b"), "b"},
		{true, "true"},
		{30, "30"},
		{uint(7), "7"},
		{30.0, "30"},
		{1.25, "1.25"},
		{1e21, "1e+21"},
		{0.0000001, "1e-07"},
		{math.Inf(1), "Infinity"},
		{[]any{"a", 1, true}, "a,1,true"},
		{time.Second, "1s"},
		{errors.New("boom"), "boom"},
	}

	for _, tt := range tests {
		if got := Stringify(tt.value); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		elem []string
		want string
	}{
		{nil, ""},
		{[]string{"", "a"}, "a"},
		{[]string{"items", "0", "name"}, "items.0.name"},
		{[]string{"a", "", "b"}, "a.b"},
	}

	for _, tt := range tests {
		if got := JoinPath(tt.elem...); got != tt.want {
			t.Errorf("JoinPath(%q) = %q, want %q", tt.elem, got, tt.want)
		}
	}
}

func TestKind_String(t *testing.T) {
	if got := KindDeferred.String(); got != "deferred" {
		t.Errorf("KindDeferred.String() = %q", got)
	}

	if got := Kind(42).String(); got != "kind(42)" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}
