package forms

import (
	"strings"
)

// Source field names read by the mapper
const (
	SourceName   = "name"
	SourceGender = "gender"
)

// Record is a schema-complete form record keyed by form field key
type Record map[string]string

// Name is a full name split into form parts
type Name struct {
	First  string `json:"first_name"`
	Middle string `json:"middle_name"`
	Last   string `json:"last_name"`
}

// SplitName splits a full name on whitespace. A single token is treated as
// the surname; with three or more tokens everything between the first and
// last token becomes the middle name.
func SplitName(full string) Name {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return Name{}
	case 1:
		return Name{Last: parts[0]}
	case 2:
		return Name{First: parts[0], Last: parts[1]}
	default:
		return Name{
			First:  parts[0],
			Middle: strings.Join(parts[1:len(parts)-1], " "),
			Last:   parts[len(parts)-1],
		}
	}
}

// titles maps gender to form title
var titles = map[string]string{
	"male":   "Shri",
	"female": "Smt",
}

// TitleFor returns the form title for gender, or unselected when the gender
// is missing or unrecognised.
func TitleFor(gender, unselected string) string {
	if title, ok := titles[strings.ToLower(strings.TrimSpace(gender))]; ok {
		return title
	}
	return unselected
}

// Mapper converts extracted fields into a schema-complete record. It holds
// only its schema and is safe for concurrent use.
type Mapper struct {
	schema Schema
}

// NewMapper creates a mapper for schema
func NewMapper(schema Schema) *Mapper {
	return &Mapper{schema: schema}
}

// NewPANMapper creates a mapper for the PAN application form
func NewPANMapper() *Mapper {
	return NewMapper(PANSchema())
}

// Schema returns the target schema
func (m *Mapper) Schema() Schema {
	return m.schema
}

// Map fills every schema key from its default, derives name parts and the
// title, then overlays any schema key supplied directly in fields. Contact
// details are never inferred; they are only copied when supplied.
func (m *Mapper) Map(fields map[string]string) Record {
	record := make(Record, len(m.schema.Fields))
	for _, f := range m.schema.Fields {
		record[f.Key] = f.Default
	}

	if full := strings.TrimSpace(fields[SourceName]); full != "" {
		name := SplitName(full)
		m.set(record, KeyFirstName, name.First)
		m.set(record, KeyMiddleName, name.Middle)
		m.set(record, KeyLastName, name.Last)
	}

	if m.schema.Has(KeyTitle) {
		record[KeyTitle] = TitleFor(fields[SourceGender], record[KeyTitle])
	}

	for key, value := range fields {
		if value = strings.TrimSpace(value); value != "" && m.schema.Has(key) {
			record[key] = value
		}
	}

	return record
}

func (m *Mapper) set(record Record, key, value string) {
	if m.schema.Has(key) {
		record[key] = value
	}
}

// Ordered returns the record values as key/value pairs in schema order
func (m *Mapper) Ordered(record Record) [][2]string {
	out := make([][2]string, 0, len(m.schema.Fields))
	for _, f := range m.schema.Fields {
		out = append(out, [2]string{f.Key, record[f.Key]})
	}
	return out
}
