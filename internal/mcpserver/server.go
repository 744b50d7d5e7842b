// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes mdpages tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/starford/mdpages/internal/apperr"
	"github.com/starford/mdpages/internal/index"
	"github.com/starford/mdpages/internal/pages"
)

const guideURI = "mdpages://authoring-guide"

// Server wraps the MCP server with mdpages tools.
type Server struct {
	mcp   *server.MCPServer
	pages *pages.Service
	index index.PageIndex
}

// New creates a new MCP server with all mdpages tools registered.
func New(svc *pages.Service, idx index.PageIndex, version string) *Server {
	s := &Server{pages: svc, index: idx}

	s.mcp = server.NewMCPServer(
		"mdpages",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_page",
		mcp.WithDescription("Render a page to sanitized HTML. Returns JSON with path, title, metadata and html."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical page path (e.g. team/on-call; empty for the root page)")),
	), s.renderPage)

	s.mcp.AddTool(mcp.NewTool("read_page_source",
		mcp.WithDescription("Read the raw Markdown source of a page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Logical page path (e.g. team/on-call; empty for the root page)")),
	), s.readPageSource)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the logical paths of all servable pages, optionally below a prefix."),
		mcp.WithString("prefix", mcp.Description("Optional path prefix (e.g. team/)")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("search_pages",
		mcp.WithDescription("Full-text search through page titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPages)

	s.mcp.AddTool(mcp.NewTool("get_authoring_guide",
		mcp.WithDescription("Returns how Markdown files are addressed, rendered and sanitized."),
	), s.getAuthoringGuide)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Authoring Guide",
			mcp.WithResourceDescription("How Markdown files under the document root become pages."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// pageError turns a pipeline error into a tool error without leaking the
// resolver's rejection reason.
func pageError(path string, err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	}
	return mcp.NewToolResultError(fmt.Sprintf("read failed: %s", path))
}

func (s *Server) renderPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.pages.Load(ctx, path)
	if err != nil {
		return pageError(path, err), nil
	}
	out, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPageSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.pages.Source(ctx, path)
	if err != nil {
		return pageError(path, err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listPages(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prefix := ""
	if p, err := req.RequireString("prefix"); err == nil {
		prefix = strings.TrimPrefix(p, "/")
	}

	rows, _, err := s.index.ListPages(0, 0)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var paths []string
	for _, r := range rows {
		if !strings.HasPrefix(r.Path, prefix) {
			continue
		}
		p := r.Path
		if p == "" {
			p = "/"
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no pages found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) searchPages(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.index.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getAuthoringGuide(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(AuthoringGuide), nil
}

func (s *Server) readGuideResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     AuthoringGuide,
		},
	}, nil
}
