package intelligence

import (
	"strconv"
)

// DocumentType represents the type/category of a scanned document
type DocumentType string

const (
	DocumentTypeAadhaar   DocumentType = "Aadhaar Card"
	DocumentTypeIncome    DocumentType = "Income Certificate"
	DocumentTypeCommunity DocumentType = "Community Certificate"
	DocumentTypeLicence   DocumentType = "Driving Licence"
	DocumentTypePAN       DocumentType = "PAN Card"
	DocumentTypeUnknown   DocumentType = "Unknown"
)

// Confidence is the coarse confidence label attached to every result
type Confidence string

const (
	ConfidenceHigh Confidence = "High"
	ConfidenceLow  Confidence = "Low"
)

// Field names produced by the per-type extractors
const (
	FieldUID           = "uid"
	FieldDOB           = "dob"
	FieldName          = "name"
	FieldGender        = "gender"
	FieldAnnualIncome  = "annual_income"
	FieldCaste         = "caste"
	FieldLicenceNumber = "licence_number"
	FieldPANNumber     = "pan_number"
)

// Caste categories reported for community certificates
const (
	CasteSC      = "SC"
	CasteST      = "ST"
	CasteOBC     = "OBC"
	CasteGeneral = "General"
)

// ClassificationResult is the outcome of running the ordered ruleset
type ClassificationResult struct {
	Type       DocumentType `json:"document_type"`
	Confidence Confidence   `json:"confidence"`
	Rule       string       `json:"rule,omitempty"` // Name of the rule that fired
}

// FieldMap holds extracted values keyed by field name.
// A missing key means the field was not found; empty values are never stored.
type FieldMap map[string]string

// Set stores value under name unless value is empty.
func (m FieldMap) Set(name, value string) {
	if value == "" {
		return
	}
	m[name] = value
}

// Get returns the value for name and whether it was found.
func (m FieldMap) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Int returns the value for name parsed as a base-10 integer.
func (m FieldMap) Int(name string) (int, bool) {
	v, ok := m[name]
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Clone returns an independent copy of the map.
func (m FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ExtractionResult is returned for every classification + extraction call
type ExtractionResult struct {
	DocumentType DocumentType `json:"document_type"`
	Confidence   Confidence   `json:"confidence"`
	Fields       FieldMap     `json:"extracted_data"`
	TextSnippet  string       `json:"raw_text_snippet"`

	// Results for caller supplied labels, in request order
	DynamicFields []LabelExtractionResult `json:"dynamic_fields,omitempty"`
}

// LabelExtractionResult is the outcome of a generic label lookup
type LabelExtractionResult struct {
	Found      bool       `json:"found"`
	Label      string     `json:"label"`
	Value      *string    `json:"value"`
	Confidence Confidence `json:"confidence"`
}

// ValueOr returns the extracted value, or fallback when nothing was found.
func (r LabelExtractionResult) ValueOr(fallback string) string {
	if r.Value == nil {
		return fallback
	}
	return *r.Value
}
