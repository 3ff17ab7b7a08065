package intelligence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentClassifier(t *testing.T) {
	classifier := NewDocumentClassifier()
	require.NotNil(t, classifier)

	rules := classifier.Rules()
	require.Len(t, rules, 5)

	expected := []DocumentType{
		DocumentTypeAadhaar,
		DocumentTypeIncome,
		DocumentTypeCommunity,
		DocumentTypeLicence,
		DocumentTypePAN,
	}
	for i, rule := range rules {
		assert.Equal(t, expected[i], rule.Type, "rule %d (%s) out of order", i, rule.Name)
		assert.NotEmpty(t, rule.Name)
		assert.NotNil(t, rule.Match)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected DocumentType
		rule     string
	}{
		{
			name:     "aadhaar letter",
			text:     "Unique Identification Authority of India\nUIDAI\nYour Aadhaar No. 1234 5678 9012",
			expected: DocumentTypeAadhaar,
			rule:     "aadhaar_keywords",
		},
		{
			name:     "aadhaar via govt of india",
			text:     "GOVT OF INDIA\nRemy Rayappan\nDOB: 15/08/1999",
			expected: DocumentTypeAadhaar,
			rule:     "aadhaar_keywords",
		},
		{
			name:     "income certificate",
			text:     "INCOME CERTIFICATE\nThis is to certify that the income of the family is Rs. 1,50,000",
			expected: DocumentTypeIncome,
			rule:     "income_certificate_keywords",
		},
		{
			name:     "income via annual",
			text:     "Statement of annual income for the year",
			expected: DocumentTypeIncome,
			rule:     "income_certificate_keywords",
		},
		{
			name:     "community certificate",
			text:     "COMMUNITY CERTIFICATE\nbelongs to the Most Backward Class",
			expected: DocumentTypeCommunity,
			rule:     "community_certificate_keywords",
		},
		{
			name:     "driving licence",
			text:     "Indian Union Driving Licence\nTN01 20190001234",
			expected: DocumentTypeLicence,
			rule:     "driving_licence_keywords",
		},
		{
			name:     "pan card",
			text:     "INCOME TAX DEPARTMENT\nPermanent Account Number\nABCDE1234F",
			expected: DocumentTypePAN,
			rule:     "pan_card_keywords",
		},
		{
			name:     "driving without licence keyword",
			text:     "driving school fee receipt",
			expected: DocumentTypeUnknown,
		},
		{
			name:     "income without certificate or annual",
			text:     "income tax return acknowledgement",
			expected: DocumentTypeUnknown,
		},
		{
			name:     "unrelated text",
			text:     "hello world",
			expected: DocumentTypeUnknown,
		},
		{
			name:     "empty text",
			text:     "",
			expected: DocumentTypeUnknown,
		},
	}

	classifier := NewDocumentClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.ClassifyText(tt.text)
			assert.Equal(t, tt.expected, result.Type)
			assert.Equal(t, tt.rule, result.Rule)
			if tt.expected == DocumentTypeUnknown {
				assert.Equal(t, ConfidenceLow, result.Confidence)
			} else {
				assert.Equal(t, ConfidenceHigh, result.Confidence)
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected DocumentType
	}{
		{"aadhaar beats caste", "Aadhaar enrolment form\nCaste: OBC", DocumentTypeAadhaar},
		{"uidai beats community", "UIDAI community outreach camp", DocumentTypeAadhaar},
		{"income beats caste boilerplate", "Income Certificate issued irrespective of caste", DocumentTypeIncome},
		{"community beats licence", "Backward class driving licence subsidy", DocumentTypeCommunity},
		{"income certificate beats pan", "Income Tax Department certificate of annual income", DocumentTypeIncome},
		{"licence beats pan", "Driving licence linked to permanent account number", DocumentTypeLicence},
	}

	classifier := NewDocumentClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.ClassifyText(tt.text).Type)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	classifier := NewDocumentClassifier()
	text := "Government of India\nAadhaar\nCaste certificate attached\nIncome Rs. 10,000"

	first := classifier.ClassifyText(text)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, classifier.ClassifyText(text))
	}
	assert.Equal(t, first, NewDocumentClassifier().ClassifyText(text))
}

func TestClassifyIgnoresLineBreaks(t *testing.T) {
	classifier := NewDocumentClassifier()

	result := classifier.ClassifyText("PERMANENT ACCOUNT\nNUMBER")
	assert.Equal(t, DocumentTypePAN, result.Type)
}

func TestNewDocumentClassifierWithRules(t *testing.T) {
	rules := []ClassificationRule{
		{Name: "pan_first", Type: DocumentTypePAN, Match: anyOf("pan")},
		{Name: "broken", Type: DocumentTypeLicence},
		{Name: "aadhaar", Type: DocumentTypeAadhaar, Match: anyOf("aadhaar")},
	}

	classifier := NewDocumentClassifierWithRules(rules)
	rules[0].Type = DocumentTypeUnknown

	result := classifier.ClassifyText("Aadhaar linked PAN")
	assert.Equal(t, DocumentTypePAN, result.Type)
	assert.Equal(t, "pan_first", result.Rule)

	result = classifier.ClassifyText("Aadhaar only")
	assert.Equal(t, DocumentTypeAadhaar, result.Type)
}

func TestRulesReturnsCopy(t *testing.T) {
	classifier := NewDocumentClassifier()

	rules := classifier.Rules()
	rules[0] = ClassificationRule{Name: "hijacked", Type: DocumentTypePAN, Match: anyOf("")}

	result := classifier.ClassifyText("uidai")
	assert.Equal(t, DocumentTypeAadhaar, result.Type)
}
