package content

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Widget is the editor control used to render a field.
type Widget string

const (
	WidgetTextInput  Widget = "text-input"
	WidgetTextarea   Widget = "textarea"
	WidgetListEditor Widget = "list-editor"
	WidgetItemEditor Widget = "item-editor"
	WidgetJSONEditor Widget = "json-editor"
)

// WidgetFor selects the editor control for a shape.
func WidgetFor(s Shape) Widget {
	switch s.(type) {
	case ScalarShort:
		return WidgetTextInput
	case ScalarLong:
		return WidgetTextarea
	case PrimitiveArray:
		return WidgetListEditor
	case ObjectArray:
		return WidgetItemEditor
	case OpaqueObject:
		return WidgetJSONEditor
	default:
		panic(fmt.Sprintf("content: unhandled shape %T", s))
	}
}

// FieldView describes how one content field is rendered.
type FieldView struct {
	Key    string    `json:"key"`
	Kind   Kind      `json:"kind"`
	Widget Widget    `json:"widget"`
	Schema []ItemKey `json:"schema,omitempty"`
	Value  any       `json:"value"`
	// Text carries the serialized form of opaque objects.
	Text string `json:"text,omitempty"`
}

// ViewOf classifies a single value and builds its view.
func ViewOf(key string, v any) FieldView {
	shape := Classify(v)
	fv := FieldView{
		Key:    key,
		Kind:   shape.Kind(),
		Widget: WidgetFor(shape),
		Value:  v,
	}
	switch s := shape.(type) {
	case ObjectArray:
		fv.Schema = s.Keys
	case OpaqueObject:
		fv.Text = FormatJSON(v)
	}
	return fv
}

// Describe returns one view per content field, sorted by key. Shapes are
// computed from the live values on every call.
func Describe(c Content) []FieldView {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	views := make([]FieldView, 0, len(keys))
	for _, k := range keys {
		views = append(views, ViewOf(k, c[k]))
	}
	return views
}

// FormatJSON serializes v with two-space indentation for text editing.
func FormatJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
