package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/courseware-labs/ragtutor/internal/rag"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
	system *rag.System
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(system *rag.System) *Server {
	impl := &mcp.Implementation{
		Name:    "course-assistant-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "answer_question",
		Description: "Answer a question about the ingested course materials. Returns the answer with source citations and a session id for follow-up questions.",
	}, makeAskHandler(system))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_courses",
		Description: "List all ingested courses with titles, instructors, and lesson counts.",
	}, makeListCoursesHandler(system))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the current status of the course index including course and chunk counts.",
	}, makeStatusHandler(system))

	return &Server{
		server: server,
		system: system,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
