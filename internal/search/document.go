// Package search provides full-text lookup over the event catalog using Bleve.
// One document is indexed per event, carrying its canonical names, first
// session's description, earliest block and session count.
package search

import (
	"github.com/gencat/gencat/internal/catalog"
	"github.com/gencat/gencat/internal/domain"
)

// EventDocument is the indexed form of a catalog event.
type EventDocument struct {
	ID               string  `json:"id"` // catalog.Key.String()
	Title            string  `json:"title"`
	Group            string  `json:"group,omitempty"`
	System           string  `json:"system,omitempty"`
	Edition          string  `json:"edition,omitempty"`
	EventType        string  `json:"event_type"`
	ShortDescription string  `json:"short_description,omitempty"`
	EarliestBlock    int64   `json:"earliest_block"` // Unix seconds
	BlockDuration    float64 `json:"block_duration"`
	SessionCount     int     `json:"session_count"`
}

// ToMap converts the document to a map keyed by the index field names.
func (d *EventDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":             d.ID,
		"title":          d.Title,
		"event_type":     d.EventType,
		"earliest_block": d.EarliestBlock,
		"block_duration": d.BlockDuration,
		"session_count":  d.SessionCount,
	}

	if d.Group != "" {
		m["group"] = d.Group
	}
	if d.System != "" {
		m["system"] = d.System
	}
	if d.Edition != "" {
		m["edition"] = d.Edition
	}
	if d.ShortDescription != "" {
		m["short_description"] = d.ShortDescription
	}

	return m
}

// EventToDocument converts an aggregated event.
func EventToDocument(ev *catalog.Event) *EventDocument {
	return &EventDocument{
		ID:               ev.Key.String(),
		Title:            ev.Canonical(domain.FieldTitle),
		Group:            ev.Canonical(domain.FieldGroup),
		System:           ev.Canonical(domain.FieldGameSystem),
		Edition:          ev.Canonical(domain.FieldRulesEdition),
		EventType:        ev.Canonical(domain.FieldEventType),
		ShortDescription: ev.Value(domain.FieldShortDescription),
		EarliestBlock:    ev.EarliestBlock.Unix(),
		BlockDuration:    ev.BlockDuration,
		SessionCount:     ev.SessionCount(),
	}
}

// EventsToDocuments converts every event in agg, in creation order.
func EventsToDocuments(agg *catalog.Aggregator) []*EventDocument {
	events := agg.Events()
	docs := make([]*EventDocument, 0, len(events))
	for _, ev := range events {
		docs = append(docs, EventToDocument(ev))
	}
	return docs
}
