package tmpl

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind is the closed set of shapes a bound value can take. Rendering
// strategies are registered per Kind.
type Kind int

const (
	// KindAbsent is a missing key or a nil value.
	KindAbsent Kind = iota
	// KindScalar is a string, number, boolean, or any other leaf value.
	KindScalar
	// KindSequence is a slice or array.
	KindSequence
	// KindMapping is a map or struct.
	KindMapping
	// KindDeferred is a value implementing [Deferred].
	KindDeferred
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindAbsent:
		return "absent"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindDeferred:
		return "deferred"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Classify returns the Kind of v.
func Classify(v any) Kind {
	if v == nil {
		return KindAbsent
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return KindAbsent
	}

	switch v.(type) {
	case Deferred:
		return KindDeferred
	case string, []byte, fmt.Stringer, error:
		return KindScalar
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindAbsent
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Map, reflect.Struct:
		return KindMapping
	default:
		return KindScalar
	}
}

// Lookup returns the value stored under key in data, or nil if data has no
// such key. Maps with string keys are indexed by key, structs by exported
// field name, and sequences by decimal index.
func Lookup(data any, key string) any {
	switch d := data.(type) {
	case nil:
		return nil
	case map[string]any:
		return d[key]
	case []any:
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(d) {
			return d[i]
		}

		return nil
	}

	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String {
			return nil
		}

		return valueOf(rv.MapIndex(reflect.ValueOf(key).Convert(kt)))

	case reflect.Struct:
		f := rv.FieldByName(key)
		if !f.IsValid() {
			f = rv.FieldByNameFunc(func(name string) bool {
				return strings.EqualFold(name, key)
			})
		}

		return valueOf(f)

	case reflect.Slice, reflect.Array:
		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < rv.Len() {
			return valueOf(rv.Index(i))
		}
	}

	return nil
}

func valueOf(rv reflect.Value) any {
	if !rv.IsValid() || !rv.CanInterface() {
		return nil
	}

	return rv.Interface()
}

// Elements returns the elements of a sequence value in index order.
// It returns nil if v is not a sequence.
func Elements(v any) []any {
	if s, ok := v.([]any); ok {
		return s
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = valueOf(rv.Index(i))
	}

	return out
}

// Truthy reports whether a variable reference to v renders its value.
// Absent values, nil, false, zero, NaN, and the empty string are falsy;
// everything else, including empty sequences and mappings, is truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case Deferred:
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()

		return f != 0 && !math.IsNaN(f)
	default:
		return true
	}
}

// Stringify returns the text a variable reference to v renders as.
// Numbers use the shortest decimal form, and sequences are rendered as their
// comma-joined elements.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}

		return Stringify(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatNumber(rv.Float())
	case reflect.Slice, reflect.Array:
		elems := Elements(v)
		part := make([]string, len(elems))

		for i, e := range elems {
			part[i] = Stringify(e)
		}

		return strings.Join(part, ",")
	default:
		return fmt.Sprint(v)
	}
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	if a := math.Abs(f); a >= 1e21 || (a != 0 && a < 1e-6) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}

	return strconv.FormatFloat(f, 'f', -1, 64)
}

// JoinPath joins namespace segments with dots, skipping empty segments.
func JoinPath(elem ...string) string {
	part := make([]string, 0, len(elem))

	for _, e := range elem {
		if e != "" {
			part = append(part, e)
		}
	}

	return strings.Join(part, ".")
}
