package dictionary

import "slices"

// Alias is one observed comparison form of an entity and how often it was seen.
type Alias struct {
	Form  string `json:"form"`
	Count int    `json:"count"`
}

// Entry is a canonical entity within one field.
type Entry struct {
	ID         string
	Canonical  string
	Normalized string

	aliases []Alias
	index   map[string]int // form -> position in aliases
}

func newEntry(id, canonical, normalized string) *Entry {
	return &Entry{
		ID:         id,
		Canonical:  canonical,
		Normalized: normalized,
		index:      make(map[string]int),
	}
}

// Aliases returns the alias list in insertion order.
func (e *Entry) Aliases() []Alias {
	return slices.Clone(e.aliases)
}

// HasAlias reports whether form is a known alias of e.
func (e *Entry) HasAlias(form string) bool {
	_, ok := e.index[form]
	return ok
}

// AliasCount returns the count recorded for form, or 0.
func (e *Entry) AliasCount(form string) int {
	if i, ok := e.index[form]; ok {
		return e.aliases[i].Count
	}
	return 0
}

// Matches reports whether form is this entry's normalized name or one of its aliases.
func (e *Entry) Matches(form string) bool {
	return e.Normalized == form || e.HasAlias(form)
}

func (e *Entry) setAlias(form string, count int) {
	if i, ok := e.index[form]; ok {
		e.aliases[i].Count = count
		return
	}
	e.index[form] = len(e.aliases)
	e.aliases = append(e.aliases, Alias{Form: form, Count: count})
}

func (e *Entry) incrementAlias(form string) {
	e.setAlias(form, e.AliasCount(form)+1)
}

// FieldDictionary is the ordered set of canonical entries for one field.
type FieldDictionary struct {
	Field string

	entries []*Entry
	byID    map[string]*Entry
}

func newFieldDictionary(field string) *FieldDictionary {
	return &FieldDictionary{
		Field: field,
		byID:  make(map[string]*Entry),
	}
}

// Entries returns the entries in insertion or load order.
// The returned entries are live; callers outside this package must not mutate them.
func (d *FieldDictionary) Entries() []*Entry {
	return slices.Clone(d.entries)
}

// Entry looks up an entry by id.
func (d *FieldDictionary) Entry(id string) (*Entry, bool) {
	e, ok := d.byID[id]
	return e, ok
}

// Len returns the number of entries.
func (d *FieldDictionary) Len() int {
	return len(d.entries)
}

// owner returns the entry holding form as an alias, if any.
func (d *FieldDictionary) owner(form string) *Entry {
	for _, e := range d.entries {
		if e.HasAlias(form) {
			return e
		}
	}
	return nil
}

func (d *FieldDictionary) add(e *Entry) {
	d.entries = append(d.entries, e)
	d.byID[e.ID] = e
}
