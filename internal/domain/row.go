package domain

import "maps"

// Row is one session record from the input file: every original column value
// keyed by header name. Stages mutate it in place (sanitize, reclassify).
type Row struct {
	values map[string]string
}

// NewRow creates a row from column values. The map is copied.
func NewRow(values map[string]string) *Row {
	r := &Row{values: make(map[string]string, len(values))}
	maps.Copy(r.values, values)
	return r
}

// Get returns a column value, or "" when the column is absent.
func (r *Row) Get(field string) string {
	return r.values[field]
}

// Set overwrites a column value.
func (r *Row) Set(field, value string) {
	r.values[field] = value
}

// GameID returns the session identifier.
func (r *Row) GameID() string {
	return r.values[FieldGameID]
}

// Values returns a copy of all column values.
func (r *Row) Values() map[string]string {
	return maps.Clone(r.values)
}
