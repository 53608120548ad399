package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-casefile-import/internal/config"
	"github.com/a3tai/mcp-casefile-import/internal/pdf"
	"github.com/a3tai/mcp-casefile-import/internal/service"
)

const (
	// endpointPath is where the streamable HTTP transport is mounted
	endpointPath    = "/mcp"
	shutdownTimeout = 10 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *service.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, svc *service.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if svc == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set is fixed
	)

	s := &Server{
		config:    cfg,
		service:   svc,
		mcpServer: mcpServer,
		logger:    logger,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	importTool := mcp.NewTool(
		"casefile_import",
		mcp.WithDescription("Import a case-file PDF bundle: detect its documents, read the cover sheet and score the result"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Bundle path, relative to the inbox or absolute inside it"),
		),
		mcp.WithBoolean("split",
			mcp.Description("Write one PDF per detected document into the output directory"),
		),
		mcp.WithBoolean("write_metadata",
			mcp.Description("Write casefile_metadata.json into the output directory"),
		),
		mcp.WithArray("categories",
			mcp.Description("Only split documents of these categories"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
	s.mcpServer.AddTool(importTool, s.handleImport)

	batchTool := mcp.NewTool(
		"casefile_batch_import",
		mcp.WithDescription("Import several bundles concurrently and write batch-report.xlsx and batch-report.json"),
		mcp.WithString("directory",
			mcp.Description("Directory inside the inbox to import (uses the inbox if empty)"),
		),
		mcp.WithArray("paths",
			mcp.Description("Explicit bundle paths; takes precedence over directory"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithBoolean("write_metadata",
			mcp.Description("Write a metadata file per imported bundle"),
		),
	)
	s.mcpServer.AddTool(batchTool, s.handleBatchImport)

	searchTool := mcp.NewTool(
		"casefile_search_directory",
		mcp.WithDescription("Search for PDF bundles in the inbox with an optional file name query"),
		mcp.WithString("directory",
			mcp.Description("Directory inside the inbox to search (uses the inbox if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional words that must all appear in the file name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results (0 for all)"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearchDirectory)

	validateTool := mcp.NewTool(
		"casefile_validate",
		mcp.WithDescription("Validate that a file is a readable PDF bundle and report its text layer"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Bundle path, relative to the inbox or absolute inside it"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidate)

	infoTool := mcp.NewTool(
		"casefile_server_info",
		mcp.WithDescription("Get server information, OCR availability, classification rules and waiting bundles"),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resp, err := s.service.Import(ctx, service.ImportRequest{
		Path:          path,
		Split:         request.GetBool("split", false),
		WriteMetadata: request.GetBool("write_metadata", false),
		Categories:    request.GetStringSlice("categories", nil),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.logger.Info("Bundle imported",
		"file", resp.Result.SourceFile,
		"success", resp.Result.Success,
		"documents", len(resp.Result.Documents),
		"quality", resp.Result.QualityScore)
	return jsonResult(resp)
}

func (s *Server) handleBatchImport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.service.Batch(ctx, service.BatchRequest{
		Directory:     request.GetString("directory", ""),
		Paths:         request.GetStringSlice("paths", nil),
		WriteMetadata: request.GetBool("write_metadata", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(resp)
}

func (s *Server) handleSearchDirectory(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.service.SearchDirectory(pdf.SearchDirectoryRequest{
		Directory: request.GetString("directory", ""),
		Query:     request.GetString("query", ""),
		Limit:     request.GetInt("limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatSearchDirectoryResult(result)), nil
}

func (s *Server) handleValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.Validate(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := s.service.ServerInfo(s.config.ServerName, s.config.Version)
	return mcp.NewToolResultText(s.formatServerInfoResult(info)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// Formatting methods
func (s *Server) formatSearchDirectoryResult(result *pdf.SearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF bundle(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	if result.TotalCount == 0 {
		return text
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatServerInfoResult(info *service.ServerInfo) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", info.ServerName, info.Version)
	text += fmt.Sprintf("📁 Inbox Directory: %s\n", info.InboxDirectory)
	text += fmt.Sprintf("📤 Output Directory: %s\n", info.OutputDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", info.MaxFileSize/(1024*1024))
	if info.OCRAvailable {
		text += "🔍 OCR: available\n"
	} else {
		text += "🔍 OCR: not available\n"
	}
	text += fmt.Sprintf("🏷️  Classification Rules: %d (version %s)\n\n", info.RuleCount, info.RuleVersion)

	if len(info.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Inbox Contents (%d PDF bundles found):\n", len(info.DirectoryContents))
		for i, file := range info.DirectoryContents {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(info.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Inbox Contents: No PDF bundles found in the inbox\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range info.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n🗂️  Document Categories:\n"
	for _, c := range info.Categories {
		text += fmt.Sprintf("  • %s\n", c)
	}

	text += "\n" + info.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode and returns when ctx
// is cancelled or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves a single client over stdin and stdout
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug("Starting case-file MCP server in stdio mode",
		"inbox", s.service.InboxDirectory(),
		"output", s.service.OutputDirectory())

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, s.stdin, s.stdout)
	if err != nil && ctx.Err() == nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the streamable HTTP transport on the configured
// address until ctx is cancelled.
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath(endpointPath),
		server.WithStreamableHTTPServer(httpServer),
	)

	mux := http.NewServeMux()
	mux.Handle(endpointPath, streamable)
	httpServer.Handler = mux

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting case-file MCP server in HTTP mode",
			"address", httpServer.Addr,
			"endpoint", endpointPath,
			"inbox", s.service.InboxDirectory())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := streamable.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
