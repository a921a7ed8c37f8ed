package content

import (
	"encoding/json"
	"sort"
	"unicode/utf8"
)

// LongTextThreshold is the length above which a string is edited as long text.
const LongTextThreshold = 100

// Kind names a Shape variant on the wire.
type Kind string

const (
	KindScalarShort    Kind = "scalar-short"
	KindScalarLong     Kind = "scalar-long"
	KindPrimitiveArray Kind = "primitive-array"
	KindObjectArray    Kind = "object-array"
	KindOpaqueObject   Kind = "opaque-object"
)

// Shape is the inferred editing strategy for a content value. The set of
// implementations is closed: ScalarShort, ScalarLong, PrimitiveArray,
// ObjectArray and OpaqueObject.
type Shape interface {
	Kind() Kind
	sealed()
}

// ScalarShort covers numbers, booleans, null and strings up to LongTextThreshold.
type ScalarShort struct{}

// ScalarLong is a string longer than LongTextThreshold.
type ScalarLong struct{}

// PrimitiveArray is an empty array or one whose first element is not an object.
type PrimitiveArray struct{}

// ObjectArray is a non-empty array whose first element is an object. Keys is
// the item schema inferred from that first element, sorted by name.
type ObjectArray struct {
	Keys []ItemKey
}

// OpaqueObject is a non-array object, edited as serialized JSON text.
type OpaqueObject struct{}

func (ScalarShort) Kind() Kind    { return KindScalarShort }
func (ScalarLong) Kind() Kind     { return KindScalarLong }
func (PrimitiveArray) Kind() Kind { return KindPrimitiveArray }
func (ObjectArray) Kind() Kind    { return KindObjectArray }
func (OpaqueObject) Kind() Kind   { return KindOpaqueObject }

func (ScalarShort) sealed()    {}
func (ScalarLong) sealed()     {}
func (PrimitiveArray) sealed() {}
func (ObjectArray) sealed()    {}
func (OpaqueObject) sealed()   {}

// KeyType tags an object-array item key.
type KeyType string

const (
	KeyBoolean    KeyType = "boolean"
	KeyStringLike KeyType = "string-like"
)

// ItemKey is one key of an object-array item schema.
type ItemKey struct {
	Name string  `json:"name"`
	Type KeyType `json:"type"`
}

// Classify infers the Shape of a JSON value. It never fails: anything it does
// not recognize is a ScalarShort.
func Classify(v any) Shape {
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return PrimitiveArray{}
		}
		first, ok := arr[0].(map[string]any)
		if !ok {
			return PrimitiveArray{}
		}
		return ObjectArray{Keys: itemSchema(first)}
	}
	switch val := v.(type) {
	case map[string]any:
		if val != nil {
			return OpaqueObject{}
		}
	case Content:
		if val != nil {
			return OpaqueObject{}
		}
	case string:
		if utf8.RuneCountInString(val) > LongTextThreshold {
			return ScalarLong{}
		}
	}
	return ScalarShort{}
}

func itemSchema(item map[string]any) []ItemKey {
	keys := make([]ItemKey, 0, len(item))
	for name, v := range item {
		t := KeyStringLike
		if _, ok := v.(bool); ok {
			t = KeyBoolean
		}
		keys = append(keys, ItemKey{Name: name, Type: t})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Name < keys[j].Name })
	return keys
}

// IsScalar reports whether v is a JSON scalar (string, number, bool or null).
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, json.Number:
		return true
	}
	return false
}
