// Package mcp exposes the PDS pipeline as Model Context Protocol tools over
// stdio, so assistants can summarize and compare sheets from local files.
package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/TheCodeHarbor/valvoline-pds-api/internal/config"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/pds"
	"github.com/TheCodeHarbor/valvoline-pds-api/internal/storage"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdsService *pds.Service
	store      *storage.Store
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdsService *pds.Service, store *storage.Store) (*Server, error) {
	if pdsService == nil {
		return nil, fmt.Errorf("pdsService cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // static tool set
	)

	s := &Server{
		config:     cfg,
		pdsService: pdsService,
		store:      store,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	summaryTool := mcp.NewTool(
		"pds_summary",
		mcp.WithDescription("Extract a product data sheet PDF and return a localized summary of its approvals and typical properties"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path or URL of the PDS PDF"),
		),
		mcp.WithString("locale",
			mcp.Description("Output locale (defaults to the configured locale)"),
		),
	)
	s.mcpServer.AddTool(summaryTool, s.handleSummary)

	compareTool := mcp.NewTool(
		"pds_compare",
		mcp.WithDescription("Extract two product data sheets and return a localized side-by-side comparison"),
		mcp.WithString("path_a",
			mcp.Required(),
			mcp.Description("Path or URL of the first PDS PDF"),
		),
		mcp.WithString("path_b",
			mcp.Required(),
			mcp.Description("Path or URL of the second PDS PDF"),
		),
		mcp.WithString("locale",
			mcp.Description("Output locale (defaults to the configured locale)"),
		),
	)
	s.mcpServer.AddTool(compareTool, s.handleCompare)

	validateTool := mcp.NewTool(
		"pds_validate",
		mcp.WithDescription("Check whether a file is a readable product data sheet with recognizable sections"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path or URL of the PDS PDF"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidate)
}

// Handler functions
func (s *Server) handleSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.loadDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdsService.Summarize(doc, s.locale(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result.ReplyMarkdown), nil
}

func (s *Server) handleCompare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pathA, err := request.RequireString("path_a")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pathB, err := request.RequireString("path_b")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	docA, err := s.loadDocument(ctx, pathA)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	docB, err := s.loadDocument(ctx, pathB)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdsService.Compare(docA, docB, s.locale(request))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(result.ReplyMarkdown), nil
}

func (s *Server) handleValidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	doc, err := s.loadDocument(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := s.pdsService.Extract(doc.SourceID, doc.Data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Valid product data sheet: %s\n", record.DisplayName())
	responseText += fmt.Sprintf("Pages: %d\n", record.Diagnostics.Pages)
	responseText += fmt.Sprintf("Approvals: %d\n", len(record.Approvals))
	responseText += fmt.Sprintf("Properties: %d\n", len(record.Properties))
	if record.Revision != "" {
		responseText += fmt.Sprintf("Revision: %s\n", record.Revision)
	}
	if record.Diagnostics.DiscardedRuns > 0 {
		responseText += fmt.Sprintf("Unparsed table runs: %d\n", record.Diagnostics.DiscardedRuns)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) loadDocument(ctx context.Context, path string) (pds.SourceDocument, error) {
	data, err := s.store.Fetch(ctx, path)
	if err != nil {
		return pds.SourceDocument{}, err
	}
	return pds.SourceDocument{SourceID: path, Data: data}, nil
}

func (s *Server) locale(request mcp.CallToolRequest) string {
	if loc := request.GetString("locale", ""); loc != "" {
		return loc
	}
	return s.config.DefaultLocale
}

// ServeStdio starts the MCP server on standard input/output
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
