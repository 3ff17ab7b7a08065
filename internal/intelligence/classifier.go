package intelligence

// DocumentClassifier performs ordered, first-match-wins document
// classification. It holds no mutable state and is safe for concurrent use.
type DocumentClassifier struct {
	rules []ClassificationRule
}

// NewDocumentClassifier creates a classifier with the default ruleset
func NewDocumentClassifier() *DocumentClassifier {
	return NewDocumentClassifierWithRules(getDefaultRules())
}

// NewDocumentClassifierWithRules creates a classifier evaluating rules in
// the given order. The slice is copied.
func NewDocumentClassifierWithRules(rules []ClassificationRule) *DocumentClassifier {
	copied := make([]ClassificationRule, len(rules))
	copy(copied, rules)
	return &DocumentClassifier{rules: copied}
}

// Classify returns the type of the first rule whose predicate matches the
// lowercase view of text, or Unknown with low confidence.
func (dc *DocumentClassifier) Classify(text Text) ClassificationResult {
	for _, rule := range dc.rules {
		if rule.Match != nil && rule.Match(text.Lower) {
			return ClassificationResult{
				Type:       rule.Type,
				Confidence: ConfidenceHigh,
				Rule:       rule.Name,
			}
		}
	}

	return ClassificationResult{
		Type:       DocumentTypeUnknown,
		Confidence: ConfidenceLow,
	}
}

// ClassifyText normalizes raw and classifies it.
func (dc *DocumentClassifier) ClassifyText(raw string) ClassificationResult {
	return dc.Classify(NewText(raw))
}

// Rules returns a copy of the rules in evaluation order
func (dc *DocumentClassifier) Rules() []ClassificationRule {
	out := make([]ClassificationRule, len(dc.rules))
	copy(out, dc.rules)
	return out
}
