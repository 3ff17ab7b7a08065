package docintel

import (
	"context"
	"fmt"
	"time"

	"github.com/a3tai/mcp-docintel/internal/descriptions"
	"github.com/a3tai/mcp-docintel/internal/intelligence"
	"github.com/a3tai/mcp-docintel/internal/source"
)

const (
	// serverInfoScanLimit caps the directory listing in server info
	serverInfoScanLimit = 100
	serverInfoScanTime  = 5 * time.Second
)

// toolParameters documents the arguments of each tool for server_info
var toolParameters = map[string]string{
	descriptions.ToolDocumentAnalyze:      "text (required): OCR text, labels (optional): comma separated labels to look up",
	descriptions.ToolDocumentExtractField: "text (required): OCR text, label (required): label as printed",
	descriptions.ToolDocumentReadFile:     "path (required): file path relative to the document directory, labels (optional)",
	descriptions.ToolDocumentSearch:       "query (optional): file name words, limit (optional): maximum results",
	descriptions.ToolFormMap: "text (optional): OCR text, fields (optional): JSON object of field values, " +
		"email, mobile, scheme (optional, default PAN)",
	descriptions.ToolFormCheck:     "same as form_map, template (optional): fillable PDF in the document directory",
	descriptions.ToolProfileUpdate: "key (required): user identifier, text (required): OCR text",
	descriptions.ToolProfileGet:    "key (required): user identifier",
	descriptions.ToolServerInfo:    "none",
}

// ServerInfo returns server information and usage guidance. The directory
// listing is best effort: it is capped in size and time and left empty on
// failure.
func (s *Service) ServerInfo(ctx context.Context, serverName, version string) *ServerInfoResult {
	contents := []source.FileInfo{}
	if s.source.Directory() != "" {
		scanCtx, cancel := context.WithTimeout(ctx, serverInfoScanTime)
		defer cancel()
		if found, err := s.source.Search(scanCtx, "", serverInfoScanLimit); err == nil {
			contents = found.Files
		} else {
			s.logger.Debug("server info directory scan failed", "error", err)
		}
	}

	tools := make([]ToolInfo, 0, len(toolParameters))
	for _, name := range descriptions.GetAllToolNames() {
		if !s.ProfilesEnabled() && (name == descriptions.ToolProfileUpdate || name == descriptions.ToolProfileGet) {
			continue
		}
		tools = append(tools, ToolInfo{
			Name:        name,
			Description: descriptions.GetToolDescription(name),
			Parameters:  toolParameters[name],
		})
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DocumentDirectory: s.source.Directory(),
		MaxFileSize:       s.source.MaxFileSize(),
		ProfilesEnabled:   s.ProfilesEnabled(),
		DocumentTypes:     documentTypes(s.engine),
		SupportedFormats:  source.SupportedExtensions(),
		AvailableTools:    tools,
		DirectoryContents: contents,
		LabelTables:       s.engine.Labels().Tables(),
		UsageGuidance:     s.usageGuidance(),
	}
}

// documentTypes lists the types in classification order, ending with Unknown
func documentTypes(engine *intelligence.Engine) []string {
	rules := engine.Classifier().Rules()
	types := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		types = append(types, string(r.Type))
	}
	return append(types, string(intelligence.DocumentTypeUnknown))
}

func (s *Service) usageGuidance() string {
	guide := `Document Intelligence Usage Guide:

1. GOT TEXT ALREADY?
   - Use 'document_analyze' with the raw OCR text
   - Add labels for fields outside the built-in set (e.g. "Roll No", "School Name")

2. GOT A FILE?
   - Use 'document_search' to find it, then 'document_read_file'
   - Images are OCR'd with tesseract; PDFs use their text layer

3. NEED ONE SPECIFIC VALUE?
   - Use 'document_extract_field' with the label exactly as printed

4. FILLING A FORM?
   - Use 'form_map' to build a complete PAN Form 49A record
   - Use 'form_check' to list missing required fields before submission
`
	if s.ProfilesEnabled() {
		guide += `
5. COLLECTING DOCUMENTS FOR A USER?
   - Use 'profile_update' for each document, 'profile_get' to review the merged profile
`
	}
	guide += fmt.Sprintf(`
IMPORTANT NOTES:
- Unknown documents still return a result with confidence "Low"
- Extracted values are never guessed: a missing field means it was not found
- The server accepts files up to %dMB`, s.source.MaxFileSize()/(1024*1024))
	return guide
}
