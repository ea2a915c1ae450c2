// Package reclassify moves catch-all misfit events into specific categories
// by matching their Group or Title against an ordered rule table.
package reclassify

import (
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/gencat/gencat/internal/domain"
	domainerrors "github.com/gencat/gencat/internal/errors"
	"github.com/gencat/gencat/internal/validation"
)

// Rule assigns Category to a misfit whose checked fields match Pattern.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
}

// RuleSpec is the file form of a Rule. Patterns are matched case-insensitively.
type RuleSpec struct {
	Category string `yaml:"category" validate:"required"`
	Pattern  string `yaml:"pattern" validate:"required,regexp"`
}

// defaultSpecs are the built-in rules, in evaluation order.
//
//nolint:gochecknoglobals // Static rule table
var defaultSpecs = []RuleSpec{
	{Category: "BLD - Blood on the Clocktower", Pattern: "Blood on the clocktower"},
	{Category: "ESC - Escape Room", Pattern: "escape room"},
	{Category: "FIR - First Exposure", Pattern: "first exposure"},
	{Category: "KOS - Kosmos Family Table", Pattern: "kosmos family table"},
	{Category: "LAS - Laser Tag", Pattern: "laser tag"},
	{Category: "PUB - Pub Event", Pattern: "pub night|pedal & drink"},
	{Category: "AUC - Gen Con Auction", Pattern: "Gen Con Auction"},
	{Category: "MEG - MegaGame", Pattern: "Megagame"},
	{Category: "WRI - Gen Con Writers Symposium", Pattern: "Gen Con Writers Symposium"},
	{Category: "LIB - Gen Con Games Library", Pattern: "Gen Con Games Library"},
}

// checkedFields are searched, in order, for every rule.
//
//nolint:gochecknoglobals // Static field table
var checkedFields = []string{domain.FieldGroup, domain.FieldTitle}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	rules, err := compile(defaultSpecs)
	if err != nil {
		panic(err) // built-in patterns are constant
	}
	return rules
}

// LoadRules reads a YAML list of {category, pattern} entries. The file
// replaces the built-in rules entirely.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeIO, "read rules %s", path)
	}

	var specs []RuleSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, domainerrors.Wrapf(err, domainerrors.CodeParse, "parse rules %s", path)
	}
	if len(specs) == 0 {
		return nil, domainerrors.Validationf("rules %s: no rules defined", path)
	}

	v := validation.New()
	for i, spec := range specs {
		if err := v.Validate(spec); err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "rules %s: rule %d", path, i+1)
		}
	}
	return compile(specs)
}

func compile(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		re, err := regexp.Compile("(?i)" + spec.Pattern)
		if err != nil {
			return nil, domainerrors.Wrapf(err, domainerrors.CodeValidation, "rule %q", spec.Category)
		}
		rules = append(rules, Rule{Category: spec.Category, Pattern: re})
	}
	return rules, nil
}

// Reclassifier applies a rule table to misfit rows.
type Reclassifier struct {
	rules []Rule
}

// New creates a reclassifier. A nil rule table means DefaultRules.
func New(rules []Rule) *Reclassifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Reclassifier{rules: rules}
}

// Rules returns the active rule table.
func (r *Reclassifier) Rules() []Rule {
	return r.rules
}

// Apply rewrites Event Type when row is a misfit and a rule matches. It
// reports whether the row changed.
func (r *Reclassifier) Apply(row *domain.Row) bool {
	if row.Get(domain.FieldEventType) != domain.MisfitCategory {
		return false
	}
	for _, rule := range r.rules {
		for _, field := range checkedFields {
			if rule.Pattern.MatchString(row.Get(field)) {
				row.Set(domain.FieldEventType, rule.Category)
				return true
			}
		}
	}
	return false
}
