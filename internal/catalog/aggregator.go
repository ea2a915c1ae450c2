package catalog

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

// CanonicalSource supplies the current display name of a dictionary entry.
type CanonicalSource interface {
	Canonical(field, id string) string
}

// Options configures an Aggregator.
type Options struct {
	// Layout parses Start/End Date & Time. Empty means domain.DefaultDateLayout.
	Layout string
	// Location interprets the parsed times. Nil means UTC.
	Location *time.Location
	Logger   *slog.Logger
}

// Aggregator groups session rows into events. It is not safe for concurrent use.
type Aggregator struct {
	canon  CanonicalSource
	layout string
	loc    *time.Location
	logger *slog.Logger

	events map[Key]*Event
	order  []Key
	blocks *TimeBlocks
}

// NewAggregator creates an empty aggregator that reads canonical names from canon.
func NewAggregator(canon CanonicalSource, opts Options) *Aggregator {
	if opts.Layout == "" {
		opts.Layout = domain.DefaultDateLayout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Aggregator{
		canon:  canon,
		layout: opts.Layout,
		loc:    opts.Location,
		logger: opts.Logger,
		events: make(map[Key]*Event),
		blocks: NewTimeBlocks(),
	}
}

// Ingest merges one resolved row into the event identified by key.
//
// A new key creates an event whose EarliestBlock and BlockDuration come from
// this session and whose descriptive fields are copied from this row. For an
// existing event only EarliestBlock can move (earlier). Canonical values are
// refreshed from the CanonicalSource on every merge, and the session is
// inserted or replaced by its Game ID.
func (a *Aggregator) Ingest(row *domain.Row, key Key) (*Event, error) {
	session, err := a.parseSession(row)
	if err != nil {
		return nil, err
	}

	a.blocks.Add(session.StartBlock)
	a.blocks.Add(session.EndBlock)

	ev, ok := a.events[key]
	if !ok {
		ev = &Event{
			Key:           key,
			EarliestBlock: session.StartBlock,
			BlockDuration: session.BlockDuration,
			descriptive:   make(map[string]string, len(domain.DescriptiveFields)),
			sessions:      make(map[string]*Session),
		}
		for _, f := range domain.DescriptiveFields {
			ev.descriptive[f] = row.Get(f)
		}
		a.events[key] = ev
		a.order = append(a.order, key)
		a.logger.Debug("event created", "key", key.String(), "session", session.ID)
	} else if session.StartBlock.Before(ev.EarliestBlock) {
		ev.EarliestBlock = session.StartBlock
	}

	for i, f := range domain.ClassifyingFields {
		ev.canonical[i] = a.canon.Canonical(f, key[i])
	}
	ev.sessions[session.ID] = session
	return ev, nil
}

func (a *Aggregator) parseSession(row *domain.Row) (*Session, error) {
	id := row.GameID()

	start, err := time.ParseInLocation(a.layout, strings.TrimSpace(row.Get(domain.FieldStartDateTime)), a.loc)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeParse, "session %s: %s", id, domain.FieldStartDateTime)
	}
	end, err := time.ParseInLocation(a.layout, strings.TrimSpace(row.Get(domain.FieldEndDateTime)), a.loc)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeParse, "session %s: %s", id, domain.FieldEndDateTime)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(row.Get(domain.FieldDuration)), 64)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeParse, "session %s: %s", id, domain.FieldDuration)
	}

	startBlock := floorHour(start)
	endBlock := ceilHour(end)
	return &Session{
		ID:            id,
		Start:         start,
		End:           end,
		StartBlock:    startBlock,
		EndBlock:      endBlock,
		BlockDuration: endBlock.Sub(startBlock).Hours(),
		Duration:      duration,
	}, nil
}

// Events returns the events in creation order.
func (a *Aggregator) Events() []*Event {
	out := make([]*Event, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, a.events[k])
	}
	return out
}

// Event looks up an event by key.
func (a *Aggregator) Event(key Key) (*Event, bool) {
	ev, ok := a.events[key]
	return ev, ok
}

// Len returns the number of events.
func (a *Aggregator) Len() int {
	return len(a.events)
}

// SessionCount returns the number of sessions across all events.
func (a *Aggregator) SessionCount() int {
	n := 0
	for _, ev := range a.events {
		n += ev.SessionCount()
	}
	return n
}

// TimeBlocks returns every block touched so far, ascending.
func (a *Aggregator) TimeBlocks() []time.Time {
	return a.blocks.Sorted()
}
