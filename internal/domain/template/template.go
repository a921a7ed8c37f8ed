// Package template defines the static section templates used to originate
// new sections and the registry they are looked up from.
package template

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/Strob0t/folio/internal/domain"
	"github.com/Strob0t/folio/internal/domain/content"
)

// FieldType is the declared type of a template field.
type FieldType string

const (
	FieldShortText FieldType = "short-text"
	FieldLongText  FieldType = "long-text"
	FieldArray     FieldType = "array"
	FieldJSON      FieldType = "json"
)

// Field describes one content key of a template.
type Field struct {
	Key          string    `json:"key"`
	Label        string    `json:"label"`
	Type         FieldType `json:"type"`
	Description  string    `json:"description,omitempty"`
	DefaultValue any       `json:"default_value"`
}

// Template is a blueprint for a new section's content.
type Template struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Fields      []Field `json:"fields"`
}

// Instantiate builds a content mapping from each field's default value.
// Defaults are deep-copied so instances never share state.
func Instantiate(t *Template) content.Content {
	c := make(content.Content, len(t.Fields))
	for _, f := range t.Fields {
		c[f.Key] = content.CloneValue(f.DefaultValue)
	}
	return c
}

// Validate checks that every field has a key and that its default value
// classifies to a shape compatible with the declared type.
func Validate(t *Template) error {
	if t.ID == "" {
		return fmt.Errorf("%w: template id is required", domain.ErrValidation)
	}
	seen := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: template %s has a field without key", domain.ErrValidation, t.ID)
		}
		if seen[f.Key] {
			return fmt.Errorf("%w: template %s declares %q twice", domain.ErrValidation, t.ID, f.Key)
		}
		seen[f.Key] = true
		if !defaultMatches(f.Type, f.DefaultValue) {
			return fmt.Errorf("%w: template %s field %q: default %T does not match type %s",
				domain.ErrValidation, t.ID, f.Key, f.DefaultValue, f.Type)
		}
	}
	return nil
}

func defaultMatches(ft FieldType, v any) bool {
	switch ft {
	case FieldShortText, FieldLongText:
		_, ok := v.(string)
		return ok
	case FieldArray:
		_, ok := v.([]any)
		return ok
	case FieldJSON:
		_, ok := content.Classify(v).(content.OpaqueObject)
		return ok
	default:
		return false
	}
}

// SectionKeyFor derives a unique section key from a template id and a
// timestamp: slug(id) + "_" + unix milliseconds.
func SectionKeyFor(templateID string, now time.Time) string {
	return NormalizeKey(slug.Make(templateID)) + "_" + strconv.FormatInt(now.UnixMilli(), 10)
}

// NormalizeKey lowercases s and replaces every character outside
// [a-z0-9_] with an underscore.
func NormalizeKey(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
