package source

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfText is the text layer of a PDF
type pdfText struct {
	Text  string
	Pages int
	// pages that failed to decode and were skipped
	Skipped []int
}

// readPDFText extracts the text layer of every page, joining pages with a
// newline so that page ends act as line breaks. Output is capped at maxText
// bytes.
func readPDFText(data []byte, maxText int) (result *pdfText, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	result = &pdfText{Pages: r.NumPage()}

	var builder strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			result.Skipped = append(result.Skipped, pageNum)
			continue
		}

		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		if maxText > 0 && builder.Len()+len(content) > maxText {
			if remaining := maxText - builder.Len(); remaining > 0 {
				builder.WriteString(strings.ToValidUTF8(content[:remaining], ""))
			}
			break
		}
		builder.WriteString(content)
	}

	result.Text = builder.String()
	return result, nil
}
