// Package domain holds the vocabulary shared by every stage of a catalog run:
// column names, field groupings, session rows, and disambiguation decisions.
package domain

// Column names as they appear in the convention's event export.
const (
	FieldEventType            = "Event Type"
	FieldGameSystem           = "Game System"
	FieldRulesEdition         = "Rules Edition"
	FieldGroup                = "Group"
	FieldTitle                = "Title"
	FieldDuration             = "Duration"
	FieldMinPlayers           = "Minimum Players"
	FieldMaxPlayers           = "Maximum Players"
	FieldAgeRequired          = "Age Required"
	FieldExperienceRequired   = "Experience Required"
	FieldMaterialsRequired    = "Materials Required"
	FieldTournament           = "Tournament?"
	FieldRoundNumber          = "Round Number"
	FieldTotalRounds          = "Total Rounds"
	FieldMinPlayTime          = "Minimum Play Time"
	FieldAttendeeRegistration = "Attendee Registration?"
	FieldCost                 = "Cost $"

	FieldShortDescription = "Short Description"
	FieldLongDescription  = "Long Description"
	FieldMaterialsDetails = "Materials Required Details"
	FieldWebsite          = "Website"
	FieldEmail            = "Email"

	FieldGameID        = "Game ID"
	FieldStartDateTime = "Start Date & Time"
	FieldEndDateTime   = "End Date & Time"
)

// MisfitCategory is the catch-all event type that gets rule-based reclassification.
const MisfitCategory = "ZED - Isle of Misfit Events"

// NumClassifyingFields is the length of ClassifyingFields.
const NumClassifyingFields = 17

// ClassifyingFields are resolved against the dictionary, in this order, to
// build an event's composite identity. The order is part of the key format.
//
//nolint:gochecknoglobals // Static field table
var ClassifyingFields = [NumClassifyingFields]string{
	FieldEventType,
	FieldGameSystem,
	FieldRulesEdition,
	FieldGroup,
	FieldTitle,
	FieldDuration,
	FieldMinPlayers,
	FieldMaxPlayers,
	FieldAgeRequired,
	FieldExperienceRequired,
	FieldMaterialsRequired,
	FieldTournament,
	FieldRoundNumber,
	FieldTotalRounds,
	FieldMinPlayTime,
	FieldAttendeeRegistration,
	FieldCost,
}

// SanitizedFields are whitespace-cleaned before any matching happens.
//
//nolint:gochecknoglobals // Static field table
var SanitizedFields = []string{
	FieldTitle,
	FieldGameSystem,
	FieldRulesEdition,
	FieldGroup,
	FieldShortDescription,
	FieldLongDescription,
	FieldMaterialsDetails,
	FieldWebsite,
	FieldEmail,
}

// DescriptiveFields are copied from the first session of an event and never overwritten.
//
//nolint:gochecknoglobals // Static field table
var DescriptiveFields = []string{
	FieldShortDescription,
	FieldLongDescription,
	FieldMaterialsDetails,
	FieldWebsite,
	FieldEmail,
}

// SessionFields identify and place a single bookable slot.
//
//nolint:gochecknoglobals // Static field table
var SessionFields = []string{
	FieldGameID,
	FieldStartDateTime,
	FieldEndDateTime,
}

// SortFields is the ordering applied to raw rows before resolution. It decides
// which spelling is seen first and therefore becomes canonical.
//
//nolint:gochecknoglobals // Static field table
var SortFields = []string{
	FieldEventType,
	FieldGameSystem,
	FieldRulesEdition,
	FieldGroup,
	FieldTitle,
	FieldShortDescription,
}

// RequiredColumns returns every column an input file must carry.
func RequiredColumns() []string {
	cols := make([]string, 0, NumClassifyingFields+len(SanitizedFields)+len(SessionFields))
	seen := make(map[string]bool)
	add := func(names ...string) {
		for _, n := range names {
			if !seen[n] {
				seen[n] = true
				cols = append(cols, n)
			}
		}
	}
	add(ClassifyingFields[:]...)
	add(SanitizedFields...)
	add(SessionFields...)
	return cols
}

// IsClassifying reports whether field takes part in the composite identity.
func IsClassifying(field string) bool {
	for _, f := range ClassifyingFields {
		if f == field {
			return true
		}
	}
	return false
}

// DefaultDateLayout is how the export writes Start/End Date & Time, e.g. "08/01/2026 02:00 PM".
const DefaultDateLayout = "01/02/2006 03:04 PM"
