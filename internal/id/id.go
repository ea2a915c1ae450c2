// Package id generates identifiers for runs and dictionary entries.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// runAlphabet avoids '-' and '_' so run ids read cleanly in log lines.
const runAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

const runIDLength = 12

// RunPrefix tags identifiers of a single catalog run.
const RunPrefix = "run"

// Generate creates a prefixed run-scoped ID using NanoID.
// Format: prefix-nanoid (e.g., "run-4k0z9q2mx7ab").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.Generate(runAlphabet, runIDLength)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// NewEntryID returns a random UUIDv4 string for a canonical dictionary entry.
// Entry ids are persisted and must stay compatible with existing dictionary files.
func NewEntryID() string {
	return uuid.NewString()
}

// IsEntryID reports whether s parses as a UUID. Ids written by hand or by
// other tools load fine but are reported by dictinspect.
func IsEntryID(s string) bool {
	return uuid.Validate(s) == nil
}
