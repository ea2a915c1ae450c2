package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gencat/gencat/internal/catalog"
	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/reclassify"
	"github.com/gencat/gencat/internal/resolver"
)

func baseRow(id, title, start, end string) *domain.Row {
	values := map[string]string{
		domain.FieldEventType:            "RPG - Roleplaying Game",
		domain.FieldGameSystem:           "Pathfinder",
		domain.FieldRulesEdition:         "2nd",
		domain.FieldGroup:                "Acme Guild",
		domain.FieldTitle:                title,
		domain.FieldDuration:             "2.00",
		domain.FieldMinPlayers:           "3",
		domain.FieldMaxPlayers:           "6",
		domain.FieldAgeRequired:          "Teen (13+)",
		domain.FieldExperienceRequired:   "None",
		domain.FieldMaterialsRequired:    "No",
		domain.FieldTournament:           "No",
		domain.FieldRoundNumber:          "1",
		domain.FieldTotalRounds:          "1",
		domain.FieldMinPlayTime:          "2.00",
		domain.FieldAttendeeRegistration: "Yes",
		domain.FieldCost:                 "4",
		domain.FieldShortDescription:     "Heroes  quest : again",
		domain.FieldGameID:               id,
		domain.FieldStartDateTime:        start,
		domain.FieldEndDateTime:          end,
	}
	return domain.NewRow(values)
}

type harness struct {
	dict     *dictionary.Store
	pipeline *Pipeline
	asked    []resolver.Candidate
}

func newHarness(t *testing.T, answer domain.Decision) *harness {
	t.Helper()
	h := &harness{dict: dictionary.New(domain.ClassifyingFields[:])}
	dec := resolver.DeciderFunc(func(_ context.Context, c resolver.Candidate) (domain.Decision, error) {
		h.asked = append(h.asked, c)
		return answer, nil
	})
	res := resolver.New(h.dict, dec, resolver.Options{})
	agg := catalog.NewAggregator(h.dict, catalog.Options{})
	h.pipeline = New(res, reclassify.New(nil), agg, nil)
	return h
}

func TestRun_ArticleVariantsFormOneEvent(t *testing.T) {
	h := newHarness(t, domain.DecisionKeep)
	rows := []*domain.Row{
		baseRow("RPG1", "The Grand Quest", "07/31/2026 10:00 AM", "07/31/2026 12:00 PM"),
		baseRow("RPG2", "Grand Quest", "07/31/2026 02:00 PM", "07/31/2026 04:00 PM"),
	}

	summary, err := h.pipeline.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Rows)
	assert.Equal(t, 1, summary.Events)
	assert.Equal(t, 2, summary.Sessions)

	events := h.pipeline.Aggregator().Events()
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "Grand Quest", ev.Canonical(domain.FieldTitle))
	assert.Equal(t, "Heroes quest: again", ev.Value(domain.FieldShortDescription))
	assert.Equal(t, 2, ev.SessionCount())
	assert.Equal(t, 1, h.dict.Dictionary(domain.FieldTitle).Len())
	assert.Empty(t, h.asked, "article stripping makes the titles identical")
}

func TestRun_FuzzyTitlesAskAndMerge(t *testing.T) {
	h := newHarness(t, domain.DecisionKeep)
	rows := []*domain.Row{
		baseRow("RPG1", "Grand Quest", "07/31/2026 10:00 AM", "07/31/2026 12:00 PM"),
		baseRow("RPG2", "Grand Quests", "07/31/2026 02:00 PM", "07/31/2026 04:00 PM"),
	}

	summary, err := h.pipeline.Run(context.Background(), rows)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Events)
	require.Len(t, h.asked, 1)
	assert.Equal(t, domain.FieldTitle, h.asked[0].Field)
	assert.Equal(t, 95, h.asked[0].Score)
}

func TestRun_RejectSplitsEvents(t *testing.T) {
	h := newHarness(t, domain.DecisionReject)
	rows := []*domain.Row{
		baseRow("RPG1", "Grand Quest", "07/31/2026 10:00 AM", "07/31/2026 12:00 PM"),
		baseRow("RPG2", "Grand Quests", "07/31/2026 02:00 PM", "07/31/2026 04:00 PM"),
	}

	summary, err := h.pipeline.Run(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Events)
}

func TestRun_ReclassifiesMisfits(t *testing.T) {
	h := newHarness(t, domain.DecisionReject)
	row := baseRow("ZED1", "Escape Room: The Vault", "07/31/2026 10:00 AM", "07/31/2026 11:00 AM")
	row.Set(domain.FieldEventType, domain.MisfitCategory)

	summary, err := h.pipeline.Run(context.Background(), []*domain.Row{row})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Reclassified)
	ev := h.pipeline.Aggregator().Events()[0]
	assert.Equal(t, "ESC - Escape Room", ev.Canonical(domain.FieldEventType))
}

func TestRun_ParseErrorStopsRun(t *testing.T) {
	h := newHarness(t, domain.DecisionKeep)
	rows := []*domain.Row{
		baseRow("RPG1", "Grand Quest", "not a date", "07/31/2026 12:00 PM"),
	}

	_, err := h.pipeline.Run(context.Background(), rows)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrParse))
	assert.Contains(t, err.Error(), "RPG1")
}

func TestRun_DeciderErrorStopsRun(t *testing.T) {
	dict := dictionary.New(domain.ClassifyingFields[:])
	eof := domainerrors.Wrap(errors.New("eof"), domainerrors.CodeIO, "prompt")
	res := resolver.New(dict, resolver.DeciderFunc(func(context.Context, resolver.Candidate) (domain.Decision, error) {
		return 0, eof
	}), resolver.Options{})
	p := New(res, reclassify.New(nil), catalog.NewAggregator(dict, catalog.Options{}), nil)

	rows := []*domain.Row{
		baseRow("RPG1", "Grand Quest", "07/31/2026 10:00 AM", "07/31/2026 12:00 PM"),
		baseRow("RPG2", "Grand Quests", "07/31/2026 02:00 PM", "07/31/2026 04:00 PM"),
	}
	_, err := p.Run(context.Background(), rows)
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrIO))
	assert.Contains(t, err.Error(), domain.FieldTitle)
}

func TestRun_CanceledContext(t *testing.T) {
	h := newHarness(t, domain.DecisionKeep)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.pipeline.Run(ctx, []*domain.Row{
		baseRow("RPG1", "Grand Quest", "07/31/2026 10:00 AM", "07/31/2026 12:00 PM"),
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSortRows_StableOnRawFields(t *testing.T) {
	mk := func(id, eventType, title string) *domain.Row {
		return domain.NewRow(map[string]string{
			domain.FieldGameID:    id,
			domain.FieldEventType: eventType,
			domain.FieldTitle:     title,
		})
	}
	rows := []*domain.Row{
		mk("1", "RPG", "Zed"),
		mk("2", "BGM", "Zed"),
		mk("3", "RPG", "Alpha"),
		mk("4", "RPG", "Zed"),
		mk("5", "RPG", "The Alpha"),
	}

	SortRows(rows)

	var ids []string
	for _, r := range rows {
		ids = append(ids, r.GameID())
	}
	// Raw titles sort before sanitizing, so "The Alpha" sorts after "Alpha" but before "Zed".
	assert.Equal(t, []string{"2", "3", "5", "1", "4"}, ids)
}

func TestSanitize(t *testing.T) {
	row := domain.NewRow(map[string]string{
		domain.FieldTitle:           "  A   Night : At the Museum ",
		domain.FieldGroup:           "The  Acme   Guild",
		domain.FieldWebsite:         " https://example.org ",
		domain.FieldDuration:        " 2.00 ",
		domain.FieldLongDescription: "Line one\n\nLine  two",
	})

	Sanitize(row)

	assert.Equal(t, "Night: At the Museum", row.Get(domain.FieldTitle))
	assert.Equal(t, "The Acme Guild", row.Get(domain.FieldGroup), "only titles lose their article")
	assert.Equal(t, "https://example.org", row.Get(domain.FieldWebsite))
	assert.Equal(t, " 2.00 ", row.Get(domain.FieldDuration), "non-sanitized fields are untouched")
	assert.Equal(t, "Line one Line two", row.Get(domain.FieldLongDescription))
}
