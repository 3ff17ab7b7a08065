package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoDirectory is returned by Search when the service is unconfined
var ErrNoDirectory = errors.New("no document directory configured")

// FileInfo describes one readable document under the document directory
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Kind         Kind   `json:"kind"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// SearchResult lists documents found by Search
type SearchResult struct {
	Directory   string     `json:"directory"`
	Query       string     `json:"query,omitempty"`
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Truncated   bool       `json:"truncated,omitempty"`
	SkippedSize int        `json:"skipped_oversize,omitempty"`
}

// Search walks the document directory for readable documents whose name
// matches query. An empty query matches everything; limit <= 0 is unlimited.
// Hidden directories are skipped.
func (s *Service) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	root := s.Directory()
	if root == "" {
		return nil, ErrNoDirectory
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory path: %w", err)
	}
	if _, err := os.Stat(absRoot); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", absRoot)
	}

	result := &SearchResult{
		Directory: absRoot,
		Query:     query,
		Files:     []FileInfo{},
	}
	q := strings.ToLower(strings.TrimSpace(query))

	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable entries are skipped, not fatal
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if _, err := s.validator.Resolve(path); err != nil {
				return nil
			}
		}

		kind, err := KindForName(d.Name())
		if err != nil {
			return nil
		}
		if !matchesQuery(d.Name(), q) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > s.maxFileSize {
			result.SkippedSize++
			return nil
		}

		if limit > 0 && len(result.Files) >= limit {
			result.Truncated = true
			return filepath.SkipAll
		}

		result.Files = append(result.Files, FileInfo{
			Path:         path,
			Name:         info.Name(),
			Kind:         kind,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	result.TotalCount = len(result.Files)
	return result, nil
}

// matchesQuery matches a lowercase query against a file name: a substring
// match, or every query word contained in some word of the name.
func matchesQuery(filename, query string) bool {
	if query == "" {
		return true
	}

	name := strings.ToLower(filename)
	if strings.Contains(name, query) {
		return true
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	words := splitIntoWords(stem)
	for _, qw := range splitIntoWords(query) {
		found := false
		for _, w := range words {
			if strings.Contains(w, qw) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitIntoWords splits on common file name separators
func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case ' ', '_', '-', '.', '(', ')', '[', ']':
			return true
		}
		return false
	})
}
