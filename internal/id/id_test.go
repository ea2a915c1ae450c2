package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		id, err := Generate(RunPrefix)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	id, err := Generate(RunPrefix)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(id, "run-"))
	suffix := strings.TrimPrefix(id, "run-")
	assert.Len(t, suffix, runIDLength)
	for _, char := range suffix {
		assert.True(t, strings.ContainsRune(runAlphabet, char), "unexpected character %c", char)
	}
}

func TestNewEntryID(t *testing.T) {
	a := NewEntryID()
	b := NewEntryID()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
	assert.True(t, IsEntryID(a))
}

func TestIsEntryID(t *testing.T) {
	assert.True(t, IsEntryID("1b4e28ba-2fa1-11d2-883f-0016d3cca427"))
	assert.False(t, IsEntryID(""))
	assert.False(t, IsEntryID("run-4k0z9q2mx7ab"))
}

func BenchmarkGenerate(b *testing.B) {
	for b.Loop() {
		_, _ = Generate(RunPrefix)
	}
}
