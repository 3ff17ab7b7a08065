// Package docintel is the application layer shared by the MCP tools, the
// HTTP API and the CLI: it composes text acquisition, the extraction
// engine, form mapping and profile storage.
package docintel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/a3tai/mcp-docintel/internal/forms"
	"github.com/a3tai/mcp-docintel/internal/intelligence"
	"github.com/a3tai/mcp-docintel/internal/profile"
	"github.com/a3tai/mcp-docintel/internal/source"
)

var (
	// ErrProfilesDisabled is returned by profile operations when no store is configured
	ErrProfilesDisabled = errors.New("profile storage is disabled")
	// ErrEmptyText is returned when there is no text to analyse
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyLabel is returned when a label lookup has no label
	ErrEmptyLabel = errors.New("label cannot be empty")
)

// Service handles document operations by orchestrating the components
type Service struct {
	engine   *intelligence.Engine
	source   *source.Service
	profiles *profile.Store
	logger   *slog.Logger
}

// Option customises a Service
type Option func(*Service)

// WithProfiles enables the profile operations backed by store
func WithProfiles(store *profile.Store) Option {
	return func(s *Service) { s.profiles = store }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new document service
func NewService(engine *intelligence.Engine, src *source.Service, opts ...Option) (*Service, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine cannot be nil")
	}
	if src == nil {
		return nil, fmt.Errorf("source cannot be nil")
	}

	s := &Service{
		engine: engine,
		source: src,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Engine returns the extraction engine
func (s *Service) Engine() *intelligence.Engine {
	return s.engine
}

// Source returns the text acquisition service
func (s *Service) Source() *source.Service {
	return s.source
}

// ProfilesEnabled reports whether profile operations are available
func (s *Service) ProfilesEnabled() bool {
	return s.profiles != nil
}

// Analyze classifies text and extracts its fields plus any requested labels.
// Empty text is not an error: it yields an Unknown result.
func (s *Service) Analyze(req AnalyzeRequest) intelligence.ExtractionResult {
	return s.engine.AnalyzeWithLabels(req.Text, req.Labels)
}

// ExtractField looks up one label in text
func (s *Service) ExtractField(req ExtractFieldRequest) (intelligence.LabelExtractionResult, error) {
	if strings.TrimSpace(req.Label) == "" {
		return intelligence.LabelExtractionResult{}, ErrEmptyLabel
	}
	return s.engine.ExtractField(req.Text, req.Label), nil
}

// ReadFile reads a document from the document directory and analyses it
func (s *Service) ReadFile(ctx context.Context, req ReadFileRequest) (*ReadFileResult, error) {
	doc, err := s.source.ReadFile(ctx, req.Path)
	if err != nil {
		return nil, err
	}
	return s.analyzeDocument(doc, req.Labels), nil
}

// ReadUpload analyses uploaded content whose strategy is chosen by MIME type
func (s *Service) ReadUpload(ctx context.Context, name, contentType string, data []byte, labels []string) (*ReadFileResult, error) {
	doc, err := s.source.ReadUpload(ctx, name, contentType, data)
	if err != nil {
		return nil, err
	}
	return s.analyzeDocument(doc, labels), nil
}

// ReadBytes analyses in-memory content whose strategy is chosen by name
func (s *Service) ReadBytes(ctx context.Context, name string, data []byte, labels []string) (*ReadFileResult, error) {
	doc, err := s.source.ReadBytes(ctx, name, data)
	if err != nil {
		return nil, err
	}
	return s.analyzeDocument(doc, labels), nil
}

func (s *Service) analyzeDocument(doc *source.Document, labels []string) *ReadFileResult {
	result := s.engine.AnalyzeWithLabels(doc.Text, labels)
	s.logger.Debug("document analysed",
		"name", doc.Name,
		"type", result.DocumentType,
		"fields", len(result.Fields),
	)
	return &ReadFileResult{Document: doc, Result: result}
}

// Search lists readable documents in the document directory
func (s *Service) Search(ctx context.Context, req SearchRequest) (*source.SearchResult, error) {
	return s.source.Search(ctx, req.Query, req.Limit)
}

// MapForm routes the request's scheme to a form schema and maps the
// document fields onto it. Known schemes that are not automated yield a
// skipped result rather than an error.
func (s *Service) MapForm(req FormMapRequest) (*FormMapResult, error) {
	result, _, err := s.mapForm(req)
	return result, err
}

func (s *Service) mapForm(req FormMapRequest) (*FormMapResult, forms.Schema, error) {
	schema, err := forms.SchemaFor(req.Scheme)
	if errors.Is(err, forms.ErrSchemeNotAutomated) {
		return &FormMapResult{
			Status:  StatusSkipped,
			Message: fmt.Sprintf("Automation for %q is not available yet.", req.Scheme),
		}, schema, nil
	}
	if err != nil {
		return nil, schema, fmt.Errorf("%w: %q", err, req.Scheme)
	}

	fields := make(map[string]string)
	var document *intelligence.ExtractionResult
	if strings.TrimSpace(req.Text) != "" {
		result := s.engine.Analyze(req.Text)
		document = &result
		maps.Copy(fields, result.Fields)
	}
	maps.Copy(fields, req.Fields)
	if req.Email != "" {
		fields[forms.KeyEmail] = req.Email
	}
	if req.Mobile != "" {
		fields[forms.KeyMobile] = req.Mobile
	}

	mapper := forms.NewMapper(schema)
	record := mapper.Map(fields)

	return &FormMapResult{
		Status:   StatusMapped,
		Schema:   schema.Name,
		Record:   record,
		Ordered:  mapper.Ordered(record),
		Document: document,
	}, schema, nil
}

// CheckForm maps the request and reports how completely the record fills
// the template's fields. The template path is confined like ReadFile.
func (s *Service) CheckForm(req FormCheckRequest) (*FormCheckResult, error) {
	mapped, schema, err := s.mapForm(req.FormMapRequest)
	if err != nil {
		return nil, err
	}
	result := &FormCheckResult{FormMapResult: *mapped}
	if mapped.Status != StatusMapped {
		return result, nil
	}

	var available []string
	if strings.TrimSpace(req.Template) != "" {
		path, err := s.source.ResolvePath(req.Template)
		if err != nil {
			return nil, err
		}
		if available, err = forms.ReadFormFieldNames(path); err != nil {
			return nil, err
		}
		result.Template = path
		result.TemplateFields = available
	}

	report := forms.Check(schema, mapped.Record, available)
	result.Report = &report
	return result, nil
}

// UpdateProfile analyses the request text and merges the result into the
// stored profile for the key.
func (s *Service) UpdateProfile(ctx context.Context, req ProfileUpdateRequest) (*ProfileUpdateResult, error) {
	if s.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	result := s.engine.Analyze(req.Text)
	p, err := s.profiles.Update(ctx, req.Key, result)
	if err != nil {
		return nil, err
	}

	s.logger.Info("profile updated",
		"key", p.ID,
		"type", result.DocumentType,
		"documents", len(p.Documents),
	)
	return &ProfileUpdateResult{Profile: p, Document: result}, nil
}

// AttachResult merges an already computed extraction result into the
// profile for key.
func (s *Service) AttachResult(ctx context.Context, key string, result intelligence.ExtractionResult) (*profile.Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	return s.profiles.Update(ctx, key, result)
}

// GetProfile returns the stored profile for key
func (s *Service) GetProfile(ctx context.Context, key string) (*profile.Profile, error) {
	if s.profiles == nil {
		return nil, ErrProfilesDisabled
	}
	return s.profiles.Get(ctx, key)
}
