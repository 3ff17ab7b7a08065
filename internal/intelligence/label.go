package intelligence

import (
	"regexp"
	"strings"
)

// labelPunctuation is stripped from the front of a captured value
const labelPunctuation = ":-. \t"

// LabelExtractor locates the value following an arbitrary caller supplied
// label. It is read-only after construction and safe for concurrent use.
type LabelExtractor struct {
	tables LabelTables
	stopRe *regexp.Regexp // nil when no stop words are configured
}

// NewLabelExtractor creates an extractor using the given lookup tables
func NewLabelExtractor(tables LabelTables) *LabelExtractor {
	tables = tables.normalized()

	le := &LabelExtractor{tables: tables}
	if len(tables.StopWords) > 0 {
		quoted := make([]string, len(tables.StopWords))
		for i, w := range tables.StopWords {
			quoted[i] = regexp.QuoteMeta(w)
		}
		le.stopRe = regexp.MustCompile(`(?i) (?:` + strings.Join(quoted, "|") + `)`)
	}
	return le
}

// Tables returns the lookup tables in use
func (le *LabelExtractor) Tables() LabelTables {
	return le.tables.clone()
}

// IsIDLabel reports whether values for label are single tokens (numbers,
// codes, dates) rather than free-text phrases.
func (le *LabelExtractor) IsIDLabel(label string) bool {
	lower := strings.ToLower(label)
	for _, hint := range le.tables.IDHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// Extract finds the value for label in raw text. Line breaks become a
// double space, which the capture treats as the end of the field.
func (le *LabelExtractor) Extract(raw, label string) LabelExtractionResult {
	result := LabelExtractionResult{
		Label:      label,
		Confidence: ConfidenceLow,
	}

	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return result
	}

	text := NormalizeBoundaries(raw)
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(trimmed) + `[:\-.\s]*(.*?)(?:  |\n|$)`)
	idMode := le.IsIDLabel(trimmed)

	for _, m := range re.FindAllStringSubmatch(text, -1) {
		value, ok := le.refine(m[1], idMode)
		if !ok {
			continue
		}
		result.Found = true
		result.Value = &value
		result.Confidence = ConfidenceHigh
		return result
	}

	return result
}

// refine applies the ID / phrase mode rules and the header word filter.
func (le *LabelExtractor) refine(captured string, idMode bool) (string, bool) {
	value := strings.TrimLeft(captured, labelPunctuation)

	if idMode {
		fields := strings.Fields(value)
		if len(fields) == 0 {
			return "", false
		}
		value = fields[0]
	} else if le.stopRe != nil {
		if loc := le.stopRe.FindStringIndex(value); loc != nil {
			value = value[:loc[0]]
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, header := range le.tables.HeaderWords {
		if strings.EqualFold(value, header) {
			return "", false
		}
	}
	return value, true
}
