package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"

	"github.com/Strob0t/folio/internal/domain"
)

// All mutations below are copy-on-write: the input mapping is never modified,
// the result shares every untouched sibling value with it, and only the
// containers on the mutated path are copied.

// Set returns a copy of c with key set to v.
func Set(c Content, key string, v any) Content {
	out := make(Content, len(c)+1)
	maps.Copy(out, c)
	out[key] = v
	return out
}

// Without returns a copy of c with key removed.
func Without(c Content, key string) Content {
	out := maps.Clone(c)
	delete(out, key)
	return out
}

// AppendItem appends v to the array stored under key.
func AppendItem(c Content, key string, v any) (Content, error) {
	arr, err := arrayAt(c, key)
	if err != nil {
		return nil, err
	}
	next := make([]any, len(arr), len(arr)+1)
	copy(next, arr)
	next = append(next, v)
	return Set(c, key, next), nil
}

// AppendObjectItem appends a new item to the object array under key. The
// item's keys are derived from the first existing item; see NewObjectItem.
func AppendObjectItem(c Content, key string) (Content, map[string]any, error) {
	arr, err := arrayAt(c, key)
	if err != nil {
		return nil, nil, err
	}
	item, err := NewObjectItem(arr)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", key, err)
	}
	next := make([]any, len(arr), len(arr)+1)
	copy(next, arr)
	next = append(next, item)
	return Set(c, key, next), item, nil
}

// NewObjectItem derives a blank item from the first element of arr: boolean
// keys default to true, every other key to "". An empty array yields a
// link-shaped {text, url} item. An array of non-objects has no item shape.
func NewObjectItem(arr []any) (map[string]any, error) {
	if len(arr) == 0 {
		return map[string]any{"text": "", "url": ""}, nil
	}
	first, ok := arr[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: array holds %T values, not objects", domain.ErrValidation, arr[0])
	}
	item := make(map[string]any, len(first))
	for k, v := range first {
		if _, isBool := v.(bool); isBool {
			item[k] = true
		} else {
			item[k] = ""
		}
	}
	return item, nil
}

// ReplaceItem sets element i of the array under key to v.
func ReplaceItem(c Content, key string, i int, v any) (Content, error) {
	arr, err := arrayAt(c, key)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(key, i, len(arr)); err != nil {
		return nil, err
	}
	next := make([]any, len(arr))
	copy(next, arr)
	next[i] = v
	return Set(c, key, next), nil
}

// ReplaceItemField sets field of the object at position i in the array under key.
func ReplaceItemField(c Content, key string, i int, field string, v any) (Content, error) {
	arr, err := arrayAt(c, key)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(key, i, len(arr)); err != nil {
		return nil, err
	}
	item, ok := arr[i].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s[%d] is not an object", domain.ErrValidation, key, i)
	}
	nextItem := make(map[string]any, len(item)+1)
	maps.Copy(nextItem, item)
	nextItem[field] = v

	next := make([]any, len(arr))
	copy(next, arr)
	next[i] = nextItem
	return Set(c, key, next), nil
}

// RemoveItem deletes element i of the array under key and compacts the rest.
func RemoveItem(c Content, key string, i int) (Content, error) {
	arr, err := arrayAt(c, key)
	if err != nil {
		return nil, err
	}
	if err := checkIndex(key, i, len(arr)); err != nil {
		return nil, err
	}
	next := make([]any, 0, len(arr)-1)
	next = append(next, arr[:i]...)
	next = append(next, arr[i+1:]...)
	return Set(c, key, next), nil
}

// Decode unmarshals data into v keeping JSON numbers as json.Number, so
// integers beyond 2^53 survive a load and save unchanged.
func Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after JSON value")
	}
	return nil
}

// ParseJSONText parses operator-typed JSON. Callers keep the previous value
// when it returns an error.
func ParseJSONText(text string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(text)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", domain.ErrValidation, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: invalid JSON: trailing data", domain.ErrValidation)
	}
	return v, nil
}

// Clone returns a deep copy of c.
func Clone(c Content) Content {
	if c == nil {
		return nil
	}
	out := make(Content, len(c))
	for k, v := range c {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a JSON value.
func CloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = CloneValue(e)
		}
		return out
	case Content:
		return Clone(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = CloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Equal reports whether two content mappings are deeply equal.
func Equal(a, b Content) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func arrayAt(c Content, key string) ([]any, error) {
	v, ok := c[key]
	if !ok {
		return nil, fmt.Errorf("%w: field %q does not exist", domain.ErrValidation, key)
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q is not an array", domain.ErrValidation, key)
	}
	return arr, nil
}

func checkIndex(key string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: index %d out of range for %q (len %d)", domain.ErrValidation, i, key, n)
	}
	return nil
}
