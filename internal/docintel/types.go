package docintel

import (
	"github.com/a3tai/mcp-docintel/internal/forms"
	"github.com/a3tai/mcp-docintel/internal/intelligence"
	"github.com/a3tai/mcp-docintel/internal/profile"
	"github.com/a3tai/mcp-docintel/internal/source"
)

// Request Types

// AnalyzeRequest asks for classification and extraction of OCR text
type AnalyzeRequest struct {
	Text   string   `json:"text"`
	Labels []string `json:"labels,omitempty"`
}

// ExtractFieldRequest asks for a single label lookup
type ExtractFieldRequest struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

// ReadFileRequest asks for a document file to be read and analysed
type ReadFileRequest struct {
	Path   string   `json:"path"`
	Labels []string `json:"labels,omitempty"`
}

// SearchRequest lists documents under the document directory
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

// FormMapRequest maps a document onto a form. Fields from Text are
// extracted first; explicit Fields, Email and Mobile are layered on top.
type FormMapRequest struct {
	Text   string            `json:"text,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
	Email  string            `json:"email,omitempty"`
	Mobile string            `json:"mobile,omitempty"`
	Scheme string            `json:"scheme,omitempty"`
}

// FormCheckRequest is a FormMapRequest checked against a fillable PDF
// template. An empty Template treats every form field as present.
type FormCheckRequest struct {
	FormMapRequest
	Template string `json:"template,omitempty"`
}

// ProfileUpdateRequest analyses Text and stores the result under Key
type ProfileUpdateRequest struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Response Types

// Form mapping outcomes
const (
	StatusMapped  = "mapped"
	StatusSkipped = "skipped"
)

// ReadFileResult is a read document together with its analysis
type ReadFileResult struct {
	Document *source.Document              `json:"document"`
	Result   intelligence.ExtractionResult `json:"result"`
}

// FormMapResult is a schema-complete record for the routed form
type FormMapResult struct {
	Status   string                         `json:"status"`
	Message  string                         `json:"message,omitempty"`
	Schema   string                         `json:"schema,omitempty"`
	Record   forms.Record                   `json:"record,omitempty"`
	Ordered  [][2]string                    `json:"ordered,omitempty"`
	Document *intelligence.ExtractionResult `json:"document,omitempty"`
}

// FormCheckResult pairs a mapped record with its fill report
type FormCheckResult struct {
	FormMapResult
	Template       string            `json:"template,omitempty"`
	TemplateFields []string          `json:"template_fields,omitempty"`
	Report         *forms.FillReport `json:"report,omitempty"`
}

// ProfileUpdateResult is the stored profile after attaching a document
type ProfileUpdateResult struct {
	Profile  *profile.Profile              `json:"profile"`
	Document intelligence.ExtractionResult `json:"document"`
}

// ToolInfo describes one MCP tool for server_info
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}

// ServerInfoResult summarises the running server
type ServerInfoResult struct {
	ServerName        string                   `json:"server_name"`
	Version           string                   `json:"version"`
	DocumentDirectory string                   `json:"document_directory"`
	MaxFileSize       int64                    `json:"max_file_size"`
	ProfilesEnabled   bool                     `json:"profiles_enabled"`
	DocumentTypes     []string                 `json:"document_types"`
	SupportedFormats  []string                 `json:"supported_formats"`
	AvailableTools    []ToolInfo               `json:"available_tools"`
	DirectoryContents []source.FileInfo        `json:"directory_contents"`
	LabelTables       intelligence.LabelTables `json:"label_tables"`
	UsageGuidance     string                   `json:"usage_guidance"`
}
