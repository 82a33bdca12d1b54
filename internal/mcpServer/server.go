package mcpServer

import (
	"context"
	"errors"

	"github.com/akolanti/DocRAG/internal/rag"
	"github.com/akolanti/DocRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

var ErrMissingService = errors.New("mcp server needs a rag service")

// Server exposes the retrieval service as MCP tools.
type Server struct {
	service rag.Service
	server  *mcp.Server
	logger  *logger_i.Logger
}

func NewServer(service rag.Service) (*Server, error) {
	if service == nil {
		return nil, ErrMissingService
	}
	s := &Server{
		service: service,
		server:  mcp.NewServer(&mcp.Implementation{Name: "docrag", Version: Version}, nil),
		logger:  logger_i.NewLogger("MCP Server"),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
