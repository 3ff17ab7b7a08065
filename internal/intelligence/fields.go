package intelligence

import (
	"regexp"
	"strconv"
	"strings"
)

// FieldRule extracts a single field from document text. Extract reports
// false when the field is not present.
type FieldRule struct {
	Field   string
	Extract func(text Text) (string, bool)
}

// postProcessor rewrites a captured value; false drops the field
type postProcessor func(captured string) (string, bool)

// patternRule matches re against the normalized text and keeps the first
// capture group (or the whole match when re has no groups).
func patternRule(field string, re *regexp.Regexp, post postProcessor) FieldRule {
	return FieldRule{
		Field: field,
		Extract: func(text Text) (string, bool) {
			m := re.FindStringSubmatch(text.Normalized)
			if m == nil {
				return "", false
			}
			value := m[0]
			if len(m) > 1 {
				value = m[1]
			}
			value = strings.TrimSpace(value)
			if post != nil {
				return post(value)
			}
			return value, value != ""
		},
	}
}

// categoryMatcher maps a lowercase pattern to a category value
type categoryMatcher struct {
	re    *regexp.Regexp
	value string
}

// categoryRule yields the value of the first matching category, falling
// back to def. The field is therefore always present.
func categoryRule(field string, matchers []categoryMatcher, def string) FieldRule {
	return FieldRule{
		Field: field,
		Extract: func(text Text) (string, bool) {
			for _, m := range matchers {
				if m.re.MatchString(text.Lower) {
					return m.value, true
				}
			}
			return def, true
		},
	}
}

var (
	reUID     = regexp.MustCompile(`\b\d{4} \d{4} \d{4}\b`)
	reDOB     = regexp.MustCompile(`(?i)\bDOB\s*:?\s*(\d{2}/\d{2}/\d{4})`)
	reIncome  = regexp.MustCompile(`(?i)\bincome\b.{0,60}?(?:\b(?:rs\.?|inr)|₹)\s*:?\s*([0-9][0-9,]*)`)
	reLicence = regexp.MustCompile(`\b[A-Z]{2}\d{2} ?\d{4,13}`)
	rePAN     = regexp.MustCompile(`\b[A-Z]{5}\d{4}[A-Z]\b`)

	// Aadhaar letters address the holder as "To" followed by the name on
	// the same or the next line.
	reAddressee  = regexp.MustCompile(`(?m)^[ \t]*To,?[ \t]*(?:\r?\n[ \t]*)?([A-Z][A-Za-z.]*(?:[ \t]+[A-Z][A-Za-z.]*)*)`)
	reBirthLine  = regexp.MustCompile(`(?i)\bdob\b|year of birth`)
	reNameNoise  = regexp.MustCompile(`[^A-Za-z. ]+`)
	reMultiSpace = regexp.MustCompile(`\s+`)
)

var casteMatchers = []categoryMatcher{
	{re: regexp.MustCompile(`scheduled caste|\bsc\b`), value: CasteSC},
	{re: regexp.MustCompile(`scheduled tribe|\bst\b`), value: CasteST},
	{re: regexp.MustCompile(`\bobc\b`), value: CasteOBC},
}

// parseAmount strips thousands separators and parses an integer amount.
func parseAmount(captured string) (string, bool) {
	digits := strings.ReplaceAll(captured, ",", "")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return "", false
	}
	return strconv.Itoa(n), true
}

// genderRule checks "female" first since it contains "male".
func genderRule() FieldRule {
	return FieldRule{
		Field: FieldGender,
		Extract: func(text Text) (string, bool) {
			switch {
			case strings.Contains(text.Lower, "female"):
				return "Female", true
			case strings.Contains(text.Lower, "male"):
				return "Male", true
			}
			return "", false
		},
	}
}

// holderNameRule finds the card holder's name in the raw, line-preserving
// text: the addressee of a UIDAI letter, else the line above the birth date.
func holderNameRule() FieldRule {
	return FieldRule{
		Field: FieldName,
		Extract: func(text Text) (string, bool) {
			if m := reAddressee.FindStringSubmatch(text.Raw); m != nil {
				if name := cleanName(m[1]); name != "" {
					return name, true
				}
			}

			lines := strings.Split(strings.ReplaceAll(text.Raw, "\r\n", "\n"), "\n")
			for i, line := range lines {
				if !reBirthLine.MatchString(line) {
					continue
				}
				for j := i - 1; j >= 0 && i-j <= 2; j-- {
					candidate := strings.TrimSpace(lines[j])
					if len(candidate) <= 3 || strings.ContainsAny(candidate, "0123456789") {
						continue
					}
					if name := cleanName(candidate); name != "" {
						return name, true
					}
				}
				break
			}
			return "", false
		},
	}
}

func cleanName(s string) string {
	s = reNameNoise.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.Trim(s, " .")
}

// getDefaultFieldRules returns the extraction rules for each document type
func getDefaultFieldRules() map[DocumentType][]FieldRule {
	return map[DocumentType][]FieldRule{
		DocumentTypeAadhaar: {
			patternRule(FieldUID, reUID, nil),
			patternRule(FieldDOB, reDOB, nil),
			genderRule(),
			holderNameRule(),
		},
		DocumentTypeIncome: {
			patternRule(FieldAnnualIncome, reIncome, parseAmount),
		},
		DocumentTypeCommunity: {
			categoryRule(FieldCaste, casteMatchers, CasteGeneral),
		},
		DocumentTypeLicence: {
			patternRule(FieldLicenceNumber, reLicence, nil),
		},
		DocumentTypePAN: {
			patternRule(FieldPANNumber, rePAN, nil),
		},
	}
}

// FieldExtractor applies the field rules registered for a document type.
// The rule table is read-only after construction.
type FieldExtractor struct {
	rules map[DocumentType][]FieldRule
}

// NewFieldExtractor creates an extractor with the default rules
func NewFieldExtractor() *FieldExtractor {
	return &FieldExtractor{rules: getDefaultFieldRules()}
}

// Extract runs every rule for docType; fields that do not match are absent.
func (fe *FieldExtractor) Extract(docType DocumentType, text Text) FieldMap {
	fields := make(FieldMap)
	for _, rule := range fe.rules[docType] {
		if value, ok := rule.Extract(text); ok {
			fields.Set(rule.Field, value)
		}
	}
	return fields
}

// FieldNames lists the fields a document type can produce
func (fe *FieldExtractor) FieldNames(docType DocumentType) []string {
	rules := fe.rules[docType]
	names := make([]string, 0, len(rules))
	for _, r := range rules {
		names = append(names, r.Field)
	}
	return names
}
