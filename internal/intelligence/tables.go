package intelligence

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabelTables are the lookup tables driving the generic label extractor.
// They can be replaced per locale or per document family without touching
// the extraction logic.
type LabelTables struct {
	// IDHints mark a label as ID-like when found inside its lowercase text
	IDHints []string `yaml:"id_hints" json:"id_hints"`
	// StopWords start the next field's label; phrase values are cut before them
	StopWords []string `yaml:"stop_words" json:"stop_words"`
	// HeaderWords are document headings that are never valid values
	HeaderWords []string `yaml:"header_words" json:"header_words"`
}

// DefaultLabelTables returns the built-in tables
func DefaultLabelTables() LabelTables {
	return LabelTables{
		IDHints:     []string{"no", "id", "num", "code", "date", "income", "uid", "dob", "roll", "reg", "marks"},
		StopWords:   []string{"mother", "father", "parent", "class", "roll", "reg", "date", "addr", "exam"},
		HeaderWords: []string{"CERTIFICATE", "MARK SHEET", "EXAMINATION", "OF"},
	}
}

// LoadLabelTables reads tables from a YAML file. Lists missing from the
// file keep their default values; an explicitly empty list disables them.
func LoadLabelTables(path string) (LabelTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LabelTables{}, fmt.Errorf("failed to read label tables: %w", err)
	}

	var file struct {
		IDHints     *[]string `yaml:"id_hints"`
		StopWords   *[]string `yaml:"stop_words"`
		HeaderWords *[]string `yaml:"header_words"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return LabelTables{}, fmt.Errorf("failed to parse label tables: %w", err)
	}

	tables := DefaultLabelTables()
	if file.IDHints != nil {
		tables.IDHints = *file.IDHints
	}
	if file.StopWords != nil {
		tables.StopWords = *file.StopWords
	}
	if file.HeaderWords != nil {
		tables.HeaderWords = *file.HeaderWords
	}
	return tables.normalized(), nil
}

// normalized lowercases hints and stop words and drops blank entries.
func (t LabelTables) normalized() LabelTables {
	return LabelTables{
		IDHints:     cleanWords(t.IDHints, true),
		StopWords:   cleanWords(t.StopWords, true),
		HeaderWords: cleanWords(t.HeaderWords, false),
	}
}

func (t LabelTables) isZero() bool {
	return len(t.IDHints) == 0 && len(t.StopWords) == 0 && len(t.HeaderWords) == 0
}

func (t LabelTables) clone() LabelTables {
	return LabelTables{
		IDHints:     append([]string(nil), t.IDHints...),
		StopWords:   append([]string(nil), t.StopWords...),
		HeaderWords: append([]string(nil), t.HeaderWords...),
	}
}

func cleanWords(words []string, lower bool) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if lower {
			w = strings.ToLower(w)
		}
		out = append(out, w)
	}
	return out
}
