// Package style maps the friendly choices of the section style controls to
// concrete style payloads.
package style

import (
	"fmt"

	"github.com/Strob0t/folio/internal/domain"
)

// Selection is the current choice on each axis.
type Selection struct {
	Width      string `json:"width"`
	Height     string `json:"height"`
	Spacing    string `json:"spacing"`
	Background string `json:"background"`
}

// Changes holds the axes an operator changed; nil axes are left as they are.
type Changes struct {
	Width      *string `json:"width,omitempty"`
	Height     *string `json:"height,omitempty"`
	Spacing    *string `json:"spacing,omitempty"`
	Background *string `json:"background,omitempty"`
}

// Payload is the technical style object stored with a section.
type Payload struct {
	Padding   string `json:"padding"`
	Margin    string `json:"margin"`
	MinHeight string `json:"minHeight"`
	MaxHeight string `json:"maxHeight"`
	ClassName string `json:"className"`
}

// AsContent converts the payload into a JSON object value for section
// content. The selection is kept under "preset" so it can be restored.
func (p Payload) AsContent(sel Selection) map[string]any {
	return map[string]any{
		"padding":   p.Padding,
		"margin":    p.Margin,
		"minHeight": p.MinHeight,
		"maxHeight": p.MaxHeight,
		"className": p.ClassName,
		"preset": map[string]any{
			"width":      sel.Width,
			"height":     sel.Height,
			"spacing":    sel.Spacing,
			"background": sel.Background,
		},
	}
}

// SelectionFrom restores the selection stored by AsContent, falling back to
// Default for missing or malformed axes.
func SelectionFrom(v any) Selection {
	sel := Default
	obj, ok := v.(map[string]any)
	if !ok {
		return sel
	}
	preset, ok := obj["preset"].(map[string]any)
	if !ok {
		return sel
	}
	if s, ok := preset["width"].(string); ok {
		sel.Width = s
	}
	if s, ok := preset["height"].(string); ok {
		sel.Height = s
	}
	if s, ok := preset["spacing"].(string); ok {
		sel.Spacing = s
	}
	if s, ok := preset["background"].(string); ok {
		sel.Background = s
	}
	return sel
}

// Default is the selection used for sections without stored style.
var Default = Selection{Width: "container", Height: "auto", Spacing: "normal", Background: "none"}

type widthStyle struct{ className, margin string }

type heightStyle struct{ minHeight, maxHeight string }

type spacingStyle struct{ padding, margin string }

var widths = map[string]widthStyle{
	"full":      {className: "w-full", margin: "0"},
	"wide":      {className: "max-w-7xl mx-auto", margin: "0 auto"},
	"container": {className: "container mx-auto", margin: "0 auto"},
	"narrow":    {className: "max-w-3xl mx-auto", margin: "0 auto"},
}

var heights = map[string]heightStyle{
	"auto":   {minHeight: "auto", maxHeight: "none"},
	"small":  {minHeight: "200px", maxHeight: "400px"},
	"medium": {minHeight: "400px", maxHeight: "700px"},
	"large":  {minHeight: "600px", maxHeight: "none"},
	"screen": {minHeight: "100vh", maxHeight: "none"},
}

var spacings = map[string]spacingStyle{
	"none":     {padding: "0", margin: "0"},
	"compact":  {padding: "1rem", margin: "0.5rem"},
	"normal":   {padding: "2rem", margin: "1rem"},
	"relaxed":  {padding: "4rem", margin: "2rem"},
	"spacious": {padding: "6rem", margin: "3rem"},
}

var backgrounds = map[string]string{
	"none":     "",
	"light":    "bg-gray-50",
	"dark":     "bg-gray-900 text-white",
	"accent":   "bg-indigo-600 text-white",
	"gradient": "bg-gradient-to-r from-indigo-500 to-purple-600 text-white",
}

// Choices lists the valid values per axis.
func Choices() map[string][]string {
	return map[string][]string{
		"width":      {"full", "wide", "container", "narrow"},
		"height":     {"auto", "small", "medium", "large", "screen"},
		"spacing":    {"none", "compact", "normal", "relaxed", "spacious"},
		"background": {"none", "light", "dark", "accent", "gradient"},
	}
}

// Apply merges changes into sel and maps the result to a payload. Every
// enumerated choice has a mapping; anything else is rejected.
func Apply(sel Selection, changes Changes) (Selection, Payload, error) {
	if changes.Width != nil {
		sel.Width = *changes.Width
	}
	if changes.Height != nil {
		sel.Height = *changes.Height
	}
	if changes.Spacing != nil {
		sel.Spacing = *changes.Spacing
	}
	if changes.Background != nil {
		sel.Background = *changes.Background
	}

	w, ok := widths[sel.Width]
	if !ok {
		return sel, Payload{}, invalid("width", sel.Width)
	}
	h, ok := heights[sel.Height]
	if !ok {
		return sel, Payload{}, invalid("height", sel.Height)
	}
	s, ok := spacings[sel.Spacing]
	if !ok {
		return sel, Payload{}, invalid("spacing", sel.Spacing)
	}
	bg, ok := backgrounds[sel.Background]
	if !ok {
		return sel, Payload{}, invalid("background", sel.Background)
	}

	className := w.className
	if bg != "" {
		className += " " + bg
	}
	margin := s.margin
	if w.margin == "0 auto" {
		margin = s.margin + " auto"
	}
	return sel, Payload{
		Padding:   s.padding,
		Margin:    margin,
		MinHeight: h.minHeight,
		MaxHeight: h.maxHeight,
		ClassName: className,
	}, nil
}

func invalid(axis, value string) error {
	return fmt.Errorf("%w: unknown %s %q", domain.ErrValidation, axis, value)
}
