// Package catalog aggregates resolved session records into canonical events
// and tracks the hour-aligned time blocks they occupy.
package catalog

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/gencat/gencat/internal/domain"
)

// Key is an event's composite identity: one dictionary entry id per
// classifying field, in domain.ClassifyingFields order.
type Key [domain.NumClassifyingFields]string

// String joins the ids with '|' for logs and index document ids.
func (k Key) String() string {
	return strings.Join(k[:], "|")
}

// Session is one bookable slot of an event.
type Session struct {
	ID            string
	Start         time.Time
	End           time.Time
	StartBlock    time.Time
	EndBlock      time.Time
	BlockDuration float64 // hours between StartBlock and EndBlock
	Duration      float64 // advertised duration in hours, from the Duration column
}

// compareSessions orders by (StartBlock, EndBlock, Start, End, ID).
func compareSessions(a, b *Session) int {
	if c := a.StartBlock.Compare(b.StartBlock); c != 0 {
		return c
	}
	if c := a.EndBlock.Compare(b.EndBlock); c != 0 {
		return c
	}
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	if c := a.End.Compare(b.End); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Event is the aggregate of all sessions sharing a Key.
type Event struct {
	Key Key

	// EarliestBlock is the smallest StartBlock over all sessions. It never increases.
	EarliestBlock time.Time
	// BlockDuration is taken from the session that created the event.
	BlockDuration float64

	canonical   [domain.NumClassifyingFields]string
	descriptive map[string]string
	sessions    map[string]*Session
}

// Canonical returns the canonical display value of a classifying field.
func (e *Event) Canonical(field string) string {
	for i, f := range domain.ClassifyingFields {
		if f == field {
			return e.canonical[i]
		}
	}
	return ""
}

// Value returns the event's value for any classifying or descriptive field.
func (e *Event) Value(field string) string {
	if domain.IsClassifying(field) {
		return e.Canonical(field)
	}
	return e.descriptive[field]
}

// Sessions returns the sessions ordered by (StartBlock, EndBlock, Start, End, ID).
func (e *Event) Sessions() []*Session {
	out := slices.Collect(maps.Values(e.sessions))
	slices.SortFunc(out, compareSessions)
	return out
}

// SessionCount returns the number of distinct sessions.
func (e *Event) SessionCount() int {
	return len(e.sessions)
}

// Session looks up a session by id.
func (e *Event) Session(id string) (*Session, bool) {
	s, ok := e.sessions[id]
	return s, ok
}

// TimeBlocks is the set of hour boundaries touched by any session.
type TimeBlocks struct {
	set map[int64]time.Time
}

// NewTimeBlocks creates an empty set.
func NewTimeBlocks() *TimeBlocks {
	return &TimeBlocks{set: make(map[int64]time.Time)}
}

// Add inserts a block.
func (b *TimeBlocks) Add(t time.Time) {
	b.set[t.Unix()] = t
}

// Len returns the number of distinct blocks.
func (b *TimeBlocks) Len() int {
	return len(b.set)
}

// Sorted returns the blocks in ascending order.
func (b *TimeBlocks) Sorted() []time.Time {
	out := slices.Collect(maps.Values(b.set))
	slices.SortFunc(out, time.Time.Compare)
	return out
}

// floorHour drops minutes and smaller units on the wall clock of t.
func floorHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

// ceilHour rounds t up to the next hour boundary unless it already is one.
func ceilHour(t time.Time) time.Time {
	f := floorHour(t)
	if f.Equal(t) {
		return f
	}
	return f.Add(time.Hour)
}
