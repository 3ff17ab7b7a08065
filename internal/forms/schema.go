// Package forms maps extracted document fields onto fixed downstream form
// schemas and checks how completely a target form can be filled.
package forms

import (
	"errors"
	"strings"
)

var (
	// ErrNoSchema is returned when no form schema exists for a scheme
	ErrNoSchema = errors.New("no form schema for scheme")
	// ErrSchemeNotAutomated is returned for schemes that are known but not automated yet
	ErrSchemeNotAutomated = errors.New("scheme automation is not available yet")
)

// Unselected is the placeholder used by dropdown fields with no selection
const Unselected = "---Please Select---"

// PAN application form keys
const (
	KeyApplicationType = "application_type"
	KeyCategory        = "category"
	KeyTitle           = "title"
	KeyLastName        = "last_name"
	KeyFirstName       = "first_name"
	KeyMiddleName      = "middle_name"
	KeyDOB             = "dob"
	KeyEmail           = "email"
	KeyMobile          = "mobile"
)

// FormField is one entry of a downstream form schema
type FormField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Default  string   `json:"default"`
	Required bool     `json:"required"`
	Aliases  []string `json:"aliases,omitempty"` // extra target field names accepted by fill checks
}

// Schema is a fixed, ordered set of form fields
type Schema struct {
	Name        string      `json:"name"`
	Placeholder string      `json:"placeholder"`
	Fields      []FormField `json:"fields"`
}

// Keys returns the field keys in schema order
func (s Schema) Keys() []string {
	keys := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Field returns the field definition for key
func (s Schema) Field(key string) (FormField, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FormField{}, false
}

// Has reports whether key belongs to the schema
func (s Schema) Has(key string) bool {
	_, ok := s.Field(key)
	return ok
}

// PANSchema returns the Form 49A (new PAN, Indian citizen) schema
func PANSchema() Schema {
	return Schema{
		Name:        "pan_form_49a",
		Placeholder: Unselected,
		Fields: []FormField{
			{Key: KeyApplicationType, Label: "Application Type", Default: "New PAN - Indian Citizen (Form 49A)", Required: true},
			{Key: KeyCategory, Label: "Category", Default: "INDIVIDUAL", Required: true},
			{Key: KeyTitle, Label: "Title", Default: Unselected, Required: true},
			{Key: KeyLastName, Label: "Last Name", Required: true, Aliases: []string{"surname"}},
			{Key: KeyFirstName, Label: "First Name"},
			{Key: KeyMiddleName, Label: "Middle Name"},
			{Key: KeyDOB, Label: "Date of Birth", Required: true, Aliases: []string{"birth_date"}},
			{Key: KeyEmail, Label: "Email ID", Required: true, Aliases: []string{"email_address"}},
			{Key: KeyMobile, Label: "Mobile Number", Required: true, Aliases: []string{"mobile_no", "phone"}},
		},
	}
}

// SchemaFor routes a scheme name to its form schema.
func SchemaFor(scheme string) (Schema, error) {
	key := strings.ToLower(strings.TrimSpace(scheme))

	switch {
	case key == "" || strings.Contains(key, "pan") || strings.Contains(key, "permanent account"):
		return PANSchema(), nil
	case strings.Contains(key, "scholarship"):
		return Schema{}, ErrSchemeNotAutomated
	default:
		return Schema{}, ErrNoSchema
	}
}
