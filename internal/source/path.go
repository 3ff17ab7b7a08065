package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathValidator confines document paths to a configured directory
type PathValidator struct {
	root string
}

// NewPathValidator creates a validator rooted at dir. The directory does
// not need to exist yet.
func NewPathValidator(dir string) (*PathValidator, error) {
	if dir == "" {
		return nil, fmt.Errorf("document directory cannot be empty")
	}
	return &PathValidator{root: dir}, nil
}

// Root returns the configured directory
func (v *PathValidator) Root() string {
	return v.root
}

// Resolve turns path into an absolute path inside the root. Relative paths
// are taken relative to the root; null bytes are stripped.
func (v *PathValidator) Resolve(path string) (string, error) {
	path = strings.ReplaceAll(path, "\x00", "")
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(v.root, path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	within, err := v.contains(absPath)
	if err != nil {
		return "", fmt.Errorf("path validation failed: %w", err)
	}
	if !within {
		return "", fmt.Errorf("%w: %s", ErrOutsideDirectory, path)
	}
	return absPath, nil
}

// contains checks both the lexical path and, for symlinks, its target
// against the root and the root's own symlink-resolved form.
func (v *PathValidator) contains(absPath string) (bool, error) {
	if _, err := os.Stat(v.root); os.IsNotExist(err) {
		return true, nil
	}

	absRoot, err := filepath.Abs(v.root)
	if err != nil {
		return false, fmt.Errorf("failed to resolve document directory: %w", err)
	}

	roots := []string{filepath.Clean(absRoot)}
	if resolved, err := filepath.EvalSymlinks(roots[0]); err == nil && resolved != roots[0] {
		roots = append(roots, resolved)
	}

	cleanPath := filepath.Clean(absPath)
	realPath := cleanPath
	if info, err := os.Lstat(cleanPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if resolved, err := filepath.EvalSymlinks(cleanPath); err == nil {
			realPath = resolved
		}
	}

	return underAny(cleanPath, roots) && underAny(realPath, roots), nil
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if path == root {
			return true
		}
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
