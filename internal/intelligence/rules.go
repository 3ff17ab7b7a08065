package intelligence

import (
	"strings"
)

// KeywordPredicate reports whether lowercase document text satisfies a rule
type KeywordPredicate func(lower string) bool

// ClassificationRule pairs a document type with its trigger predicate
type ClassificationRule struct {
	Name        string
	Type        DocumentType
	Description string
	Match       KeywordPredicate
}

// anyOf matches when at least one keyword occurs as a substring.
func anyOf(keywords ...string) KeywordPredicate {
	return func(lower string) bool {
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
}

// allOf matches when every predicate matches.
func allOf(preds ...KeywordPredicate) KeywordPredicate {
	return func(lower string) bool {
		for _, p := range preds {
			if !p(lower) {
				return false
			}
		}
		return true
	}
}

// getDefaultRules returns the canonical precedence order. Keyword sets
// overlap ("caste" shows up in income certificate boilerplate), so the
// order here decides ties and must not be sorted or reshuffled.
func getDefaultRules() []ClassificationRule {
	return []ClassificationRule{
		{
			Name:        "aadhaar_keywords",
			Type:        DocumentTypeAadhaar,
			Description: "UIDAI issued identity card or letter",
			Match:       anyOf("uidai", "aadhaar", "govt of india"),
		},
		{
			Name:        "income_certificate_keywords",
			Type:        DocumentTypeIncome,
			Description: "Revenue department income certificate",
			Match:       allOf(anyOf("income"), anyOf("certificate", "annual")),
		},
		{
			Name:        "community_certificate_keywords",
			Type:        DocumentTypeCommunity,
			Description: "Caste / community certificate",
			Match:       anyOf("caste", "community", "backward"),
		},
		{
			Name:        "driving_licence_keywords",
			Type:        DocumentTypeLicence,
			Description: "Transport department driving licence",
			Match:       allOf(anyOf("driving"), anyOf("licence")),
		},
		{
			Name:        "pan_card_keywords",
			Type:        DocumentTypePAN,
			Description: "Income tax department PAN card",
			Match:       anyOf("permanent account number", "income tax department"),
		},
	}
}
