// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Stanza authoring tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/oakmund/stanza/internal/drafts"
	"github.com/oakmund/stanza/internal/library"
	"github.com/oakmund/stanza/internal/search"
)

// Server wraps the MCP server with Stanza tools.
type Server struct {
	mcp      *server.MCPServer
	lib      *library.Library
	ix       *search.Index
	workflow *drafts.Workflow
}

// New creates a new MCP server with all Stanza tools registered.
func New(lib *library.Library, ix *search.Index, workflow *drafts.Workflow) *Server {
	s := &Server{lib: lib, ix: ix, workflow: workflow}

	s.mcp = server.NewMCPServer(
		"Stanza",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through published content titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read one content record, rendered body included."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Content category (e.g. posts, til)")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id (the filename slug)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List every record in a category, unpublished and scheduled included."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Content category to list")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("list_drafts",
		mcp.WithDescription("List the staged drafts awaiting publication."),
	), s.listDrafts)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the canonical Stanza content file format. "+
			"Call this before drafting content to ensure correct structure."),
	), s.getPostFormat)

	// Resource: content file format contract.
	s.mcp.AddResource(
		mcp.NewResource("stanza://post-format", "Content File Format",
			mcp.WithResourceDescription("Canonical Markdown content format that all posts must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
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

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.ix.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	coll, err := s.lib.Collection(category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", category)), nil
	}
	rec, err := coll.ByID(id, false, time.Now())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s/%s", category, id)), nil
	}
	out, _ := json.MarshalIndent(rec, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	coll, err := s.lib.Collection(category)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s", category)), nil
	}

	var lines []string
	for _, r := range coll.All() {
		status := "published"
		if !r.Published {
			status = "unpublished"
		}
		lines = append(lines, fmt.Sprintf("%s  %s  [%s]  %s", r.Date.Format("2006-01-02"), r.ID, status, r.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no records"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) listDrafts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.workflow.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(list) == 0 {
		return mcp.NewToolResultText("no drafts in staging"), nil
	}
	var lines []string
	for _, d := range list {
		lines = append(lines, fmt.Sprintf("%s  %s", d.Slug, d.Title))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getPostFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "stanza://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
