// Package rows groups the physical lines of a report table into logical rows.
package rows

// Row is one logical record: a field-name to value mapping that remembers the
// order in which fields were first set.
type Row struct {
	keys   []string
	values map[string]string
	// Raw holds the physical lines the row was built from.
	Raw []string
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: make(map[string]string)}
}

// FromPairs builds a row from alternating key, value arguments. It is meant for tests
// and callers that assemble rows by hand.
func FromPairs(kv ...string) *Row {
	r := NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

// Set assigns a value, adding the key at the end if it is new.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Append joins value onto the existing one with sep. An empty existing value is replaced.
func (r *Row) Append(key, value, sep string) {
	if existing := r.values[key]; existing != "" {
		value = existing + sep + value
	}
	r.Set(key, value)
}

// Get returns the value for key, or "" when absent.
func (r *Row) Get(key string) string {
	if r == nil {
		return ""
	}
	return r.values[key]
}

// Has reports whether the key was declared, even with an empty value.
func (r *Row) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.values[key]
	return ok
}

// Keys returns the field names in insertion order.
func (r *Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Map returns a copy of the values.
func (r *Row) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Len returns the number of fields.
func (r *Row) Len() int {
	return len(r.keys)
}
