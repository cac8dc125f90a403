package detect

import (
	"context"
	"regexp"
)

// SourceRules marks entities produced by the rule classifier.
const SourceRules = "rules"

// Rule-based detection covers the two labels with a reliable surface form:
// SSNs have a fixed format with known invalid ranges, and MRNs appear next
// to an explicit cue. Names and addresses have no such form and are left to
// the model.
var (
	// ssnPattern matches 123-45-6789 and 123 45 6789. Validity of the
	// groups is checked separately.
	ssnPattern = regexp.MustCompile(`\b(\d{3})([- ])(\d{2})([- ])(\d{4})\b`)

	// mrnPattern matches a digit run preceded by an MRN cue. The first
	// capture group is the identifier itself.
	mrnPattern = regexp.MustCompile(`(?i)\b(?:mrn|medical record(?: number| no\.?)?)\s*[:#]?\s*(\d{5,10})\b`)
)

// Rules is the regex classifier for structured identifiers. It emits SSN and
// MRN entities with score 1.0; format matches are not probabilistic.
type Rules struct{}

// NewRules creates the rule classifier.
func NewRules() *Rules {
	return &Rules{}
}

// Classify finds structured identifiers in text.
func (r *Rules) Classify(_ context.Context, text string) ([]Entity, error) {
	var out []Entity

	for _, m := range ssnPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		// Both separators must agree; "123-45 6789" is not an SSN.
		if text[m[4]:m[5]] != text[m[8]:m[9]] {
			continue
		}
		if !validSSN(text[m[2]:m[3]], text[m[6]:m[7]], text[m[10]:m[11]]) {
			continue
		}
		out = append(out, Entity{
			Label:  "SSN",
			Start:  start,
			End:    end,
			Text:   text[start:end],
			Score:  1.0,
			Source: SourceRules,
		})
	}

	for _, m := range mrnPattern.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[2], m[3]
		out = append(out, Entity{
			Label:  "MRN",
			Start:  start,
			End:    end,
			Text:   text[start:end],
			Score:  1.0,
			Source: SourceRules,
		})
	}
	return out, nil
}

// validSSN rejects the ranges the SSA never issues: area 000, 666, and
// 900-999, group 00, serial 0000.
func validSSN(area, group, serial string) bool {
	switch {
	case area == "000" || area == "666" || area[0] == '9':
		return false
	case group == "00":
		return false
	case serial == "0000":
		return false
	}
	return true
}
