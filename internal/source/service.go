// Package source turns document files into raw OCR text for the
// extraction engine.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// maxTextSize caps the text kept from a single document
const maxTextSize = 10 * 1024 * 1024

// Acquisition methods reported on a Document
const (
	MethodText     = "text"
	MethodPDFText  = "pdf-text"
	MethodImageOCR = "image-ocr"
)

// Config configures text acquisition
type Config struct {
	// DocumentDirectory confines ReadFile; empty leaves paths unconfined
	DocumentDirectory string
	MaxFileSize       int64
	TesseractPath     string
	TesseractLang     string
	TessdataDir       string
	// OCRRate is the maximum number of tesseract runs per second; 0 is unlimited
	OCRRate float64
}

// Document is the text recovered from one file
type Document struct {
	Name     string        `json:"name"`
	Path     string        `json:"path,omitempty"`
	Kind     Kind          `json:"kind"`
	Method   string        `json:"method"`
	Text     string        `json:"text"`
	Pages    int           `json:"pages"`
	Size     int64         `json:"size"`
	Duration time.Duration `json:"duration"`
	Warnings []string      `json:"warnings,omitempty"`
}

// Empty reports whether no usable text was recovered
func (d *Document) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// Service reads documents and recovers their text
type Service struct {
	validator   *PathValidator
	maxFileSize int64
	ocr         *Tesseract
	runner      Runner
	logger      *slog.Logger
}

// Option customises a Service
type Option func(*Service)

// WithRunner replaces the command runner used for OCR
func WithRunner(r Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a text acquisition service
func NewService(cfg Config, opts ...Option) (*Service, error) {
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("max file size must be positive, got: %d", cfg.MaxFileSize)
	}

	s := &Service{
		maxFileSize: cfg.MaxFileSize,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.DocumentDirectory != "" {
		validator, err := NewPathValidator(cfg.DocumentDirectory)
		if err != nil {
			return nil, err
		}
		s.validator = validator
	}
	if s.runner == nil {
		s.runner = ExecRunner{Logger: s.logger}
	}

	s.ocr = NewTesseract(cfg.TesseractPath, cfg.TesseractLang, cfg.OCRRate, s.runner)
	s.ocr.TessdataDir = cfg.TessdataDir
	return s, nil
}

// Directory returns the confinement directory, or "" when unconfined
func (s *Service) Directory() string {
	if s.validator == nil {
		return ""
	}
	return s.validator.Root()
}

// MaxFileSize returns the size limit in bytes
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}

// ResolvePath validates path against the document directory.
func (s *Service) ResolvePath(path string) (string, error) {
	if s.validator != nil {
		return s.validator.Resolve(path)
	}
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	return filepath.Abs(path)
}

// ReadFile recovers the text of the file at path, choosing the strategy
// from its extension.
func (s *Service) ReadFile(ctx context.Context, path string) (*Document, error) {
	resolved, err := s.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	kind, err := KindForName(resolved)
	if err != nil {
		return nil, err
	}
	if err := s.checkSize(info.Size()); err != nil {
		return nil, err
	}

	doc := &Document{
		Name: filepath.Base(resolved),
		Path: resolved,
		Kind: kind,
		Size: info.Size(),
	}

	var data []byte
	if kind != KindImage {
		if data, err = os.ReadFile(resolved); err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	if err := s.acquire(ctx, doc, data, resolved); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadBytes recovers the text of in-memory content named name. The
// extension of name selects the strategy.
func (s *Service) ReadBytes(ctx context.Context, name string, data []byte) (*Document, error) {
	kind, err := KindForName(name)
	if err != nil {
		return nil, err
	}
	return s.readBytes(ctx, name, kind, data)
}

// ReadUpload is ReadBytes with the strategy taken from a MIME type.
func (s *Service) ReadUpload(ctx context.Context, name, contentType string, data []byte) (*Document, error) {
	kind, err := KindForContentType(contentType)
	if err != nil {
		return nil, err
	}
	return s.readBytes(ctx, name, kind, data)
}

func (s *Service) readBytes(ctx context.Context, name string, kind Kind, data []byte) (*Document, error) {
	if err := s.checkSize(int64(len(data))); err != nil {
		return nil, err
	}

	doc := &Document{
		Name: filepath.Base(name),
		Kind: kind,
		Size: int64(len(data)),
	}

	imagePath := ""
	if kind == KindImage {
		tmp, err := os.CreateTemp("", "docintel-*"+extensionFor(kind, name))
		if err != nil {
			return nil, fmt.Errorf("failed to stage image: %w", err)
		}
		defer os.Remove(tmp.Name())

		_, werr := tmp.Write(data)
		cerr := tmp.Close()
		if werr != nil || cerr != nil {
			return nil, fmt.Errorf("failed to stage image: %v %v", werr, cerr)
		}
		imagePath = tmp.Name()
	}

	if err := s.acquire(ctx, doc, data, imagePath); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Service) checkSize(size int64) error {
	if size > s.maxFileSize {
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrFileTooLarge, size, s.maxFileSize)
	}
	return nil
}

// acquire fills doc.Text. OCR failures degrade to empty text plus a
// warning; only cancellation and unreadable PDFs are errors.
func (s *Service) acquire(ctx context.Context, doc *Document, data []byte, imagePath string) error {
	start := time.Now()
	var text string

	switch doc.Kind {
	case KindText:
		doc.Method = MethodText
		doc.Pages = 1
		text = strings.TrimPrefix(string(data), "\ufeff")

	case KindPDF:
		doc.Method = MethodPDFText
		result, err := readPDFText(data, maxTextSize)
		if err != nil {
			return err
		}
		doc.Pages = result.Pages
		text = result.Text
		for _, p := range result.Skipped {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("page %d could not be decoded", p))
		}
		if strings.TrimSpace(text) == "" && result.Pages > 0 {
			doc.Warnings = append(doc.Warnings, "PDF has no text layer; scan pages to images for OCR")
		}

	case KindImage:
		doc.Method = MethodImageOCR
		doc.Pages = 1
		recognized, err := s.ocr.Recognize(ctx, imagePath)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.Warn("ocr failed", "name", doc.Name, "error", err)
			doc.Warnings = append(doc.Warnings, fmt.Sprintf("ocr failed: %v", err))
		}
		text = recognized

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, doc.Kind)
	}

	doc.Text = norm.NFKC.String(strings.ToValidUTF8(text, ""))
	doc.Duration = time.Since(start)

	if doc.Empty() {
		doc.Warnings = append(doc.Warnings, "no text extracted")
	}

	s.logger.Debug("document acquired",
		"name", doc.Name,
		"method", doc.Method,
		"pages", doc.Pages,
		"chars", len(doc.Text),
		"duration_ms", doc.Duration.Milliseconds(),
	)
	return nil
}
