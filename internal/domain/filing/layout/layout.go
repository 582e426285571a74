// Package layout derives fixed-width column spans from the header line of a report table.
//
// pdftotext -layout keeps the horizontal alignment of the printed form, so the only structural
// cue for where a column starts is the position of its title in the header line. A Layout is
// computed once per table and then applied to every physical line of that table.
package layout

import (
	"strings"
)

// LineNumberField is the field name given to the "#" column.
const LineNumberField = "line_number"

// AmountField is right-aligned on the form and receives extra left slack.
const AmountField = "amount"

const (
	// amountSlack is how far an amount value may overhang its short header to the left.
	amountSlack = 3
	// lastFieldPadding lets trailing values (usually addresses) run past the header width.
	lastFieldPadding = 20
)

// Field is one named column span, in character offsets.
type Field struct {
	Name   string
	Start  int
	Length int
}

// End returns the exclusive end offset of the span.
func (f Field) End() int {
	return f.Start + f.Length
}

// Layout is an ordered, immutable set of column spans.
type Layout struct {
	fields []Field
	index  map[string]int
}

func newLayout(fields []Field) Layout {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.Name] = i
	}
	return Layout{fields: fields, index: index}
}

// Fields returns a copy of the spans in header order.
func (l Layout) Fields() []Field {
	out := make([]Field, len(l.fields))
	copy(out, l.fields)
	return out
}

// Names returns the field names in header order.
func (l Layout) Names() []string {
	names := make([]string, len(l.fields))
	for i, f := range l.fields {
		names[i] = f.Name
	}
	return names
}

// Len returns the number of fields.
func (l Layout) Len() int {
	return len(l.fields)
}

// IsEmpty reports whether the header produced no fields.
func (l Layout) IsEmpty() bool {
	return len(l.fields) == 0
}

// Has reports whether the header declared the named field.
func (l Layout) Has(name string) bool {
	_, ok := l.index[name]
	return ok
}

// Field returns the span for name.
func (l Layout) Field(name string) (Field, bool) {
	i, ok := l.index[name]
	if !ok {
		return Field{}, false
	}
	return l.fields[i], true
}

// Slice cuts line into one trimmed value per field, aligned with Fields().
// Offsets past the end of the line yield empty values.
func (l Layout) Slice(line string) []string {
	runes := []rune(line)
	values := make([]string, len(l.fields))
	for i, f := range l.fields {
		start, end := f.Start, f.End()
		if start >= len(runes) {
			continue
		}
		if end > len(runes) {
			end = len(runes)
		}
		values[i] = strings.TrimSpace(string(runes[start:end]))
	}
	return values
}

// SliceMap is Slice keyed by field name.
func (l Layout) SliceMap(line string) map[string]string {
	values := l.Slice(line)
	out := make(map[string]string, len(values))
	for i, f := range l.fields {
		out[f.Name] = values[i]
	}
	return out
}
