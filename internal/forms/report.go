package forms

import (
	"fmt"
	"strings"
	"unicode"
)

// FieldStatus is the per-field outcome of a fill attempt
type FieldStatus string

const (
	StatusFilled     FieldStatus = "filled"
	StatusBlank      FieldStatus = "blank"
	StatusNotLocated FieldStatus = "not_located"
)

// Overall fill outcomes
const (
	FillSuccess        = "success"
	FillPartialSuccess = "partial_success"
)

// FieldReport describes one schema field against the target form
type FieldReport struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Value  string      `json:"value"`
	Status FieldStatus `json:"status"`
	Target string      `json:"target,omitempty"` // matched target form field name
}

// FillReport summarises how completely a record fills a target form
type FillReport struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Fields  []FieldReport `json:"fields"`
	Missing []string      `json:"missing,omitempty"`
}

// Check reports, for each schema field in order, whether the record value
// would be filled, left blank or has no matching field on the target form.
// available lists the target form's field names; nil means every field is
// treated as located. Only required fields count as missing.
func Check(schema Schema, record Record, available []string) FillReport {
	targets := indexTargets(available)

	report := FillReport{Fields: make([]FieldReport, 0, len(schema.Fields))}
	for _, f := range schema.Fields {
		fr := FieldReport{
			Key:   f.Key,
			Label: f.Label,
			Value: record[f.Key],
		}

		target, located := locate(f, targets, available == nil)
		switch {
		case !located:
			fr.Status = StatusNotLocated
		case fr.Value != "" && fr.Value != schema.Placeholder:
			fr.Status = StatusFilled
			fr.Target = target
		default:
			fr.Status = StatusBlank
			fr.Target = target
		}

		if fr.Status != StatusFilled && f.Required {
			report.Missing = append(report.Missing, f.Label)
		}
		report.Fields = append(report.Fields, fr)
	}

	if len(report.Missing) == 0 {
		report.Status = FillSuccess
		report.Message = "Form pre-filled successfully."
	} else {
		report.Status = FillPartialSuccess
		report.Message = fmt.Sprintf("Form pre-filled with partial data. Missing: %s.", strings.Join(report.Missing, ", "))
	}
	return report
}

// indexTargets maps canonical target names to the original field name.
// Fully qualified names are also indexed by their last segment.
func indexTargets(available []string) map[string]string {
	targets := make(map[string]string, len(available))
	for _, name := range available {
		if c := canonicalName(name); c != "" {
			if _, exists := targets[c]; !exists {
				targets[c] = name
			}
		}
		if i := strings.LastIndex(name, "."); i >= 0 {
			if c := canonicalName(name[i+1:]); c != "" {
				if _, exists := targets[c]; !exists {
					targets[c] = name
				}
			}
		}
	}
	return targets
}

func locate(f FormField, targets map[string]string, assumeAll bool) (string, bool) {
	if assumeAll {
		return "", true
	}
	candidates := append([]string{f.Key, f.Label}, f.Aliases...)
	for _, c := range candidates {
		if target, ok := targets[canonicalName(c)]; ok {
			return target, true
		}
	}
	return "", false
}

// canonicalName lowercases s and drops everything but letters and digits
func canonicalName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
