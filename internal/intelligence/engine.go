package intelligence

import (
	"strings"
)

// DefaultSnippetLength is the number of runes of normalized text echoed back
// in every ExtractionResult
const DefaultSnippetLength = 200

// EngineConfig configures the extraction engine
type EngineConfig struct {
	SnippetLength int         `json:"snippet_length"`
	LabelTables   LabelTables `json:"-"`
}

// DefaultEngineConfig returns default engine configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SnippetLength: DefaultSnippetLength,
		LabelTables:   DefaultLabelTables(),
	}
}

// Engine orchestrates normalization, classification, per-type extraction
// and generic label lookups. It is read-only after construction.
type Engine struct {
	classifier *DocumentClassifier
	fields     *FieldExtractor
	labels     *LabelExtractor
	config     EngineConfig
}

// NewEngine creates an engine with the default configuration
func NewEngine() *Engine {
	return NewEngineWithConfig(DefaultEngineConfig())
}

// NewEngineWithConfig creates an engine with custom configuration
func NewEngineWithConfig(config EngineConfig) *Engine {
	if config.SnippetLength <= 0 {
		config.SnippetLength = DefaultSnippetLength
	}
	if config.LabelTables.isZero() {
		config.LabelTables = DefaultLabelTables()
	}
	return &Engine{
		classifier: NewDocumentClassifier(),
		fields:     NewFieldExtractor(),
		labels:     NewLabelExtractor(config.LabelTables),
		config:     config,
	}
}

// Classifier returns the classifier used by the engine
func (e *Engine) Classifier() *DocumentClassifier {
	return e.classifier
}

// Labels returns the generic label extractor used by the engine
func (e *Engine) Labels() *LabelExtractor {
	return e.labels
}

// Analyze classifies raw OCR text and extracts the fields for its type.
// Empty input yields Unknown with an empty field map.
func (e *Engine) Analyze(raw string) ExtractionResult {
	text := NewText(raw)
	classification := e.classifier.Classify(text)

	return ExtractionResult{
		DocumentType: classification.Type,
		Confidence:   classification.Confidence,
		Fields:       e.fields.Extract(classification.Type, text),
		TextSnippet:  Snippet(text.Normalized, e.config.SnippetLength),
	}
}

// AnalyzeWithLabels runs Analyze and then looks up each caller supplied
// label. Blank labels are skipped.
func (e *Engine) AnalyzeWithLabels(raw string, labels []string) ExtractionResult {
	result := e.Analyze(raw)
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		result.DynamicFields = append(result.DynamicFields, e.labels.Extract(raw, label))
	}
	return result
}

// ExtractField looks up a single caller supplied label in raw text.
func (e *Engine) ExtractField(raw, label string) LabelExtractionResult {
	return e.labels.Extract(raw, label)
}
