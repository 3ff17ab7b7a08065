package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-docintel/internal/config"
	"github.com/a3tai/mcp-docintel/internal/descriptions"
	"github.com/a3tai/mcp-docintel/internal/docintel"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *docintel.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *docintel.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool list is fixed at startup
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// MCPServer returns the underlying mcp-go server
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// registerTools registers all available MCP tools. Profile tools are only
// registered when a profile store is configured.
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolDocumentAnalyze,
		mcp.WithDescription(descriptions.DocumentAnalyzeDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Raw OCR text of the document"),
		),
		mcp.WithString("labels",
			mcp.Description("Optional comma separated labels to look up, e.g. \"Roll No, School Name\""),
		),
	), s.handleDocumentAnalyze)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolDocumentExtractField,
		mcp.WithDescription(descriptions.DocumentExtractFieldDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Raw OCR text of the document"),
		),
		mcp.WithString("label",
			mcp.Required(),
			mcp.Description("Label as printed on the document"),
		),
	), s.handleDocumentExtractField)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolDocumentReadFile,
		mcp.WithDescription(descriptions.DocumentReadFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path of the document, relative to the document directory"),
		),
		mcp.WithString("labels",
			mcp.Description("Optional comma separated labels to look up"),
		),
	), s.handleDocumentReadFile)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolDocumentSearch,
		mcp.WithDescription(descriptions.DocumentSearchDescription),
		mcp.WithString("query",
			mcp.Description("Optional words to match against file names"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Optional maximum number of results"),
		),
	), s.handleDocumentSearch)

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolFormMap,
		append([]mcp.ToolOption{mcp.WithDescription(descriptions.FormMapDescription)}, formMapOptions()...)...,
	), s.handleFormMap)

	checkOptions := append(formMapOptions(), mcp.WithString("template",
		mcp.Description("Optional fillable PDF template, relative to the document directory"),
	))
	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolFormCheck,
		append([]mcp.ToolOption{mcp.WithDescription(descriptions.FormCheckDescription)}, checkOptions...)...,
	), s.handleFormCheck)

	if s.service.ProfilesEnabled() {
		s.mcpServer.AddTool(mcp.NewTool(
			descriptions.ToolProfileUpdate,
			mcp.WithDescription(descriptions.ProfileUpdateDescription),
			mcp.WithString("key",
				mcp.Required(),
				mcp.Description("User identifier such as an email address"),
			),
			mcp.WithString("text",
				mcp.Required(),
				mcp.Description("Raw OCR text of the document to attach"),
			),
		), s.handleProfileUpdate)

		s.mcpServer.AddTool(mcp.NewTool(
			descriptions.ToolProfileGet,
			mcp.WithDescription(descriptions.ProfileGetDescription),
			mcp.WithString("key",
				mcp.Required(),
				mcp.Description("User identifier such as an email address"),
			),
		), s.handleProfileGet)
	}

	s.mcpServer.AddTool(mcp.NewTool(
		descriptions.ToolServerInfo,
		mcp.WithDescription(descriptions.ServerInfoDescription),
	), s.handleServerInfo)
}

func formMapOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("text",
			mcp.Description("Raw OCR text to extract fields from"),
		),
		mcp.WithString("fields",
			mcp.Description("Optional JSON object of field values, e.g. {\"name\": \"Anita Devi\", \"gender\": \"Female\"}"),
		),
		mcp.WithString("email",
			mcp.Description("Applicant email address"),
		),
		mcp.WithString("mobile",
			mcp.Description("Applicant mobile number"),
		),
		mcp.WithString("scheme",
			mcp.Description("Scheme name used to pick the form (default: PAN)"),
		),
	}
}

// Handler functions
func (s *Server) handleDocumentAnalyze(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.service.Analyze(docintel.AnalyzeRequest{
		Text:   text,
		Labels: labelsArg(request.GetArguments()),
	})
	return jsonResult(result)
}

func (s *Server) handleDocumentExtractField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	label, err := request.RequireString("label")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ExtractField(docintel.ExtractFieldRequest{Text: text, Label: label})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleDocumentReadFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ReadFile(ctx, docintel.ReadFileRequest{
		Path:   path,
		Labels: labelsArg(request.GetArguments()),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleDocumentSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	req := docintel.SearchRequest{Query: stringArg(args, "query")}
	if limit, ok := args["limit"].(float64); ok && limit > 0 {
		req.Limit = int(limit)
	}

	result, err := s.service.Search(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if result.TotalCount == 0 {
		text := fmt.Sprintf("No documents found in directory: %s", result.Directory)
		if result.Query != "" {
			text += fmt.Sprintf(" (searched for: %s)", result.Query)
		}
		return mcp.NewToolResultText(text), nil
	}
	return jsonResult(result)
}

func (s *Server) handleFormMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, err := formMapArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.MapForm(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleFormCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	mapReq, err := formMapArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.CheckForm(docintel.FormCheckRequest{
		FormMapRequest: mapReq,
		Template:       stringArg(args, "template"),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleProfileUpdate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.UpdateProfile(ctx, docintel.ProfileUpdateRequest{Key: key, Text: text})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleProfileGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := request.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.GetProfile(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.service.ServerInfo(ctx, s.config.ServerName, s.config.Version)
	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

// Argument helpers

func stringArg(args map[string]any, name string) string {
	if v, ok := args[name].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// labelsArg accepts labels as a comma separated string or a JSON array
func labelsArg(args map[string]any) []string {
	var labels []string
	switch v := args["labels"].(type) {
	case string:
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
	case []any:
		for _, item := range v {
			if l, ok := item.(string); ok && strings.TrimSpace(l) != "" {
				labels = append(labels, strings.TrimSpace(l))
			}
		}
	}
	return labels
}

// formMapArgs builds a form request. fields may be a JSON object or a
// string holding one.
func formMapArgs(args map[string]any) (docintel.FormMapRequest, error) {
	req := docintel.FormMapRequest{
		Text:   stringArg(args, "text"),
		Email:  stringArg(args, "email"),
		Mobile: stringArg(args, "mobile"),
		Scheme: stringArg(args, "scheme"),
	}

	switch v := args["fields"].(type) {
	case nil:
	case string:
		if strings.TrimSpace(v) == "" {
			break
		}
		if err := json.Unmarshal([]byte(v), &req.Fields); err != nil {
			return req, fmt.Errorf("fields must be a JSON object of strings: %w", err)
		}
	case map[string]any:
		req.Fields = make(map[string]string, len(v))
		for k, val := range v {
			str, ok := val.(string)
			if !ok {
				return req, fmt.Errorf("field %q must be a string", k)
			}
			req.Fields[k] = str
		}
	default:
		return req, fmt.Errorf("fields must be a JSON object of strings")
	}

	if req.Text == "" && len(req.Fields) == 0 {
		return req, fmt.Errorf("either text or fields is required")
	}
	return req, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Formatting methods
func formatServerInfoResult(result *docintel.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	if result.DocumentDirectory != "" {
		text += fmt.Sprintf("Document Directory: %s\n", result.DocumentDirectory)
	}
	text += fmt.Sprintf("Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Profiles: %t\n\n", result.ProfilesEnabled)

	text += "Document Types (classification order):\n"
	for i, t := range result.DocumentTypes {
		text += fmt.Sprintf("   %d. %s\n", i+1, t)
	}
	text += fmt.Sprintf("\nSupported Files: %s\n\n", strings.Join(result.SupportedFormats, ", "))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("Directory Contents (%d documents found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%s, %d bytes)\n", i+1, file.Name, file.Kind, file.Size)
		}
		text += "\n"
	} else if result.DocumentDirectory != "" {
		text += "Directory Contents: No documents found in the document directory\n\n"
	}

	text += "Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance
	return text
}

// Run starts the MCP server over stdio
func (s *Server) Run(ctx context.Context) error {
	s.logger.Debug("starting MCP server in stdio mode",
		"server", s.config.ServerName,
		"document_directory", s.config.DocumentDirectory,
	)

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
