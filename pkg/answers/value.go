package answers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind enumerates the shapes an answer may take.
type Kind int

const (
	KindUnset Kind = iota
	KindString
	KindStrings
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindStrings:
		return "strings"
	case KindNumber:
		return "number"
	default:
		return "unset"
	}
}

// Value is a single answer. The zero value is unset.
type Value struct {
	kind Kind
	str  string
	strs []string
	num  float64
}

// Unset returns the explicit "not answered" value.
func Unset() Value { return Value{} }

// String wraps a scalar string answer. Empty strings are kept as answered.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Strings wraps a multi-value answer. The slice is copied.
func Strings(values ...string) Value {
	return Value{kind: KindStrings, strs: append([]string{}, values...)}
}

// Number wraps a numeric answer.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// Kind reports the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsSet reports whether the value holds any answer, including "".
func (v Value) IsSet() bool { return v.kind != KindUnset }

// Str returns the scalar string and whether the value is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// List returns a copy of the multi-value answer and whether the value is one.
func (v Value) List() ([]string, bool) {
	if v.kind != KindStrings {
		return nil, false
	}
	return append([]string{}, v.strs...), true
}

// Num returns the numeric answer and whether the value is a number.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Text renders the value as the raw string a UI would display: the string
// itself, a comma-joined list, or the number in Go notation. Unset renders "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindStrings:
		return strings.Join(v.strs, ", ")
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Contains reports whether a multi-value answer includes item, or a scalar
// answer equals it.
func (v Value) Contains(item string) bool {
	switch v.kind {
	case KindStrings:
		for _, s := range v.strs {
			if s == item {
				return true
			}
		}
		return false
	case KindString:
		return v.str == item
	default:
		return false
	}
}

// Equal compares two values by kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindNumber:
		return v.num == other.num
	case KindStrings:
		if len(v.strs) != len(other.strs) {
			return false
		}
		for i := range v.strs {
			if v.strs[i] != other.strs[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Any converts the value into its JSON-friendly Go representation.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindStrings:
		return append([]string{}, v.strs...)
	case KindNumber:
		return v.num
	default:
		return nil
	}
}

// FromAny converts decoded JSON/YAML data into a Value. Unsupported shapes
// are rendered with fmt.Sprint so prefill data is never dropped.
func FromAny(raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Unset()
	case Value:
		return typed
	case string:
		return String(typed)
	case []string:
		return Strings(typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return Strings(out...)
	case float64:
		return Number(typed)
	case float32:
		return Number(float64(typed))
	case int:
		return Number(float64(typed))
	case int64:
		return Number(float64(typed))
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return String(typed.String())
		}
		return Number(f)
	case bool:
		return String(strconv.FormatBool(typed))
	default:
		return String(fmt.Sprint(typed))
	}
}

// MarshalJSON encodes the value as its natural JSON shape (null when unset).
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Any())
}

// UnmarshalJSON decodes any JSON scalar or string array.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("answers: decode value: %w", err)
	}
	*v = FromAny(raw)
	return nil
}
