package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/validation"
)

type testRow struct {
	GameID   string `csv:"Game ID" validate:"required"`
	Duration string `csv:"Duration" validate:"required,numeric"`
	Untagged string `validate:"omitempty,oneof=a b"`
}

type testSettings struct {
	Backend   string `env:"DICTIONARY_BACKEND" validate:"oneof=json sqlite badger"`
	Threshold int    `env:"FUZZ_THRESHOLD,required" validate:"gte=0,lte=100"`
	Pattern   string `env:"PATTERN" validate:"regexp"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(testRow{GameID: "RPG26ND123456", Duration: "2.0"}))
	assert.NoError(t, v.Validate(testSettings{Backend: "json", Threshold: 90, Pattern: "(?i)escape room"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		input     any
		wantField string
		wantMsg   string
	}{
		{"missing game id", testRow{Duration: "2"}, "Game ID", "is required"},
		{"non-numeric duration", testRow{GameID: "x", Duration: "two"}, "Duration", "must be numeric"},
		{"untagged field uses struct name", testRow{GameID: "x", Duration: "1", Untagged: "c"}, "Untagged", "must be one of: a b"},
		{"env tag with options", testSettings{Backend: "json", Threshold: 101}, "FUZZ_THRESHOLD", "must be less than or equal to 100"},
		{"unknown backend", testSettings{Backend: "redis", Threshold: 90}, "DICTIONARY_BACKEND", "must be one of: json sqlite badger"},
		{"bad pattern", testSettings{Backend: "json", Pattern: "(unclosed"}, "PATTERN", `is not a valid pattern: "(unclosed"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			require.Error(t, err)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

			var domainErr *domainerrors.Error
			require.True(t, domainerrors.As(err, &domainErr))
			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
			assert.Contains(t, domainErr.Message, tt.wantField)
		})
	}
}

func TestValidator_MessageSortsFields(t *testing.T) {
	err := validation.New().Validate(testRow{})
	require.Error(t, err)

	assert.Equal(t, "validation failed: Duration is required; Game ID is required", err.Error())
}
