package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gencat/gencat/internal/dictionary"
	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
)

const field = domain.FieldGroup

// scripted answers candidates from a fixed list and records what it was asked.
type scripted struct {
	answers []domain.Decision
	asked   []Candidate
}

func (s *scripted) Decide(_ context.Context, c Candidate) (domain.Decision, error) {
	s.asked = append(s.asked, c)
	if len(s.answers) == 0 {
		return 0, errors.New("unexpected question")
	}
	d := s.answers[0]
	s.answers = s.answers[1:]
	return d, nil
}

func newResolver(t *testing.T, answers ...domain.Decision) (*Resolver, *dictionary.Store, *scripted) {
	t.Helper()
	dict := dictionary.New([]string{field})
	dec := &scripted{answers: answers}
	return New(dict, dec, Options{}), dict, dec
}

func TestResolve_RepeatedValueSameID(t *testing.T) {
	ctx := context.Background()
	r, dict, dec := newResolver(t)

	first, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, field, "  Acme   Guild ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	e, _ := dict.Dictionary(field).Entry(first)
	assert.Equal(t, 2, e.AliasCount("acmeguild"))
	assert.Empty(t, dec.asked)
}

func TestResolve_BelowThresholdCreatesEntry(t *testing.T) {
	ctx := context.Background()
	r, dict, dec := newResolver(t)

	a, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, field, "Dragon Lodge")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, dict.Dictionary(field).Len())
	assert.Empty(t, dec.asked, "decider must not be consulted below the threshold")
	assert.Empty(t, dict.Stats())
}

func TestResolve_Keep(t *testing.T) {
	ctx := context.Background()
	r, dict, dec := newResolver(t, domain.DecisionKeep)

	a, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, field, "Acme Guilds")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "Acme Guild", dict.Canonical(field, a))

	e, _ := dict.Dictionary(field).Entry(a)
	assert.Equal(t, "acmeguild", e.Normalized)
	assert.Equal(t, []dictionary.Alias{{Form: "acmeguild", Count: 1}, {Form: "acmeguilds", Count: 1}}, e.Aliases())

	require.Len(t, dec.asked, 1)
	assert.Equal(t, Candidate{
		Field:     field,
		Raw:       "Acme Guilds",
		Form:      "acmeguilds",
		Alias:     "acmeguild",
		Canonical: "Acme Guild",
		Score:     95,
	}, dec.asked[0])
	assert.Equal(t, []dictionary.Stat{{Score: 95, Decision: domain.DecisionKeep, Count: 1}}, dict.Stats())
}

func TestResolve_Adopt(t *testing.T) {
	ctx := context.Background()
	r, dict, _ := newResolver(t, domain.DecisionAdopt)

	a, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, field, "Acme Guilds")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "Acme Guilds", dict.Canonical(field, a))
	e, _ := dict.Dictionary(field).Entry(a)
	assert.Equal(t, "acmeguilds", e.Normalized)
	assert.Equal(t, 1, e.AliasCount("acmeguilds"))

	// The adopted spelling now matches exactly.
	c, err := r.Resolve(ctx, field, "ACME guilds")
	require.NoError(t, err)
	assert.Equal(t, a, c)
	assert.Equal(t, 2, e.AliasCount("acmeguilds"))
}

func TestResolve_RejectCreatesEntry(t *testing.T) {
	ctx := context.Background()
	r, dict, _ := newResolver(t, domain.DecisionReject)

	a, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	b, err := r.Resolve(ctx, field, "Acme Guilds")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, "Acme Guild", dict.Canonical(field, a))
	assert.Equal(t, "Acme Guilds", dict.Canonical(field, b))
	assert.Equal(t, []dictionary.Stat{{Score: 95, Decision: domain.DecisionReject, Count: 1}}, dict.Stats())
}

func TestResolve_RejectContinuesWithRemainingAliases(t *testing.T) {
	ctx := context.Background()
	r, dict, dec := newResolver(t, domain.DecisionReject, domain.DecisionKeep)

	a, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	require.NoError(t, dict.SetAlias(field, a, "acmeguildz", 1))

	b, err := r.Resolve(ctx, field, "Acme Guilds")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	require.Len(t, dec.asked, 2)
	assert.Equal(t, "acmeguild", dec.asked[0].Alias)
	assert.Equal(t, "acmeguildz", dec.asked[1].Alias)
	assert.Equal(t, 90, dec.asked[1].Score)
	assert.Equal(t, []dictionary.Stat{
		{Score: 90, Decision: domain.DecisionKeep, Count: 1},
		{Score: 95, Decision: domain.DecisionReject, Count: 1},
	}, dict.Stats())
}

func TestResolve_FirstAcceptingEntryWins(t *testing.T) {
	ctx := context.Background()
	r, _, dec := newResolver(t, domain.DecisionReject, domain.DecisionReject, domain.DecisionKeep)

	first, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	second, err := r.Resolve(ctx, field, "Acme Guilds") // rejected, new entry
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	got, err := r.Resolve(ctx, field, "Acme Guildz")
	require.NoError(t, err)

	// acmeguildz vs acmeguild (95, reject), vs acmeguilds (90, keep).
	assert.Equal(t, second, got)
	require.Len(t, dec.asked, 3)
	assert.Equal(t, "Acme Guild", dec.asked[1].Canonical)
	assert.Equal(t, "Acme Guilds", dec.asked[2].Canonical)
}

func TestResolve_Threshold(t *testing.T) {
	ctx := context.Background()
	dict := dictionary.New([]string{field})
	dec := &scripted{}
	r := New(dict, dec, Options{Threshold: 96})
	assert.Equal(t, 96, r.Threshold())

	_, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, field, "Acme Guilds")
	require.NoError(t, err)

	assert.Empty(t, dec.asked)
	assert.Equal(t, 2, dict.Dictionary(field).Len())
}

func TestResolve_DeciderErrorIsFatal(t *testing.T) {
	ctx := context.Background()
	dict := dictionary.New([]string{field})
	boom := domainerrors.Wrap(errors.New("stdin closed"), domainerrors.CodeIO, "prompt")
	r := New(dict, DeciderFunc(func(context.Context, Candidate) (domain.Decision, error) {
		return 0, boom
	}), Options{})

	_, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)

	_, err = r.Resolve(ctx, field, "Acme Guilds")
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrIO))
	assert.Equal(t, 1, dict.Dictionary(field).Len(), "no entry is created when the decider fails")
}

func TestResolve_InvalidDecision(t *testing.T) {
	ctx := context.Background()
	dict := dictionary.New([]string{field})
	r := New(dict, DeciderFunc(func(context.Context, Candidate) (domain.Decision, error) {
		return domain.Decision(9), nil
	}), Options{})

	_, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, field, "Acme Guilds")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInternal))
}

func TestResolve_NoDecider(t *testing.T) {
	ctx := context.Background()
	r := New(dictionary.New([]string{field}), nil, Options{})

	_, err := r.Resolve(ctx, field, "Acme Guild")
	require.NoError(t, err)
	_, err = r.Resolve(ctx, field, "Acme Guilds")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrInternal))
}

func TestResolve_FieldsAreIndependent(t *testing.T) {
	ctx := context.Background()
	dict := dictionary.New([]string{domain.FieldGroup, domain.FieldTitle})
	r := New(dict, &scripted{}, Options{})

	g, err := r.Resolve(ctx, domain.FieldGroup, "Grand Quest")
	require.NoError(t, err)
	tt, err := r.Resolve(ctx, domain.FieldTitle, "Grand Quest")
	require.NoError(t, err)

	assert.NotEqual(t, g, tt)
	assert.Equal(t, 1, dict.Dictionary(domain.FieldGroup).Len())
	assert.Equal(t, 1, dict.Dictionary(domain.FieldTitle).Len())
}
