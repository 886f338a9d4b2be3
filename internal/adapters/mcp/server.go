package mcpadapter

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/context-store/internal/core/ports"
)

const (
	ServerName    = "context-store"
	ServerVersion = "1.0.0"

	itemsResourceURI    = "context://items"
	projectsResourceURI = "context://projects"
)

// Services are the use cases exposed as MCP tools.
type Services struct {
	Items    ports.ItemService
	Projects ports.ProjectService
	Search   ports.SearchService
	Stats    ports.StatsService
}

type Server struct {
	mcp      *server.MCPServer
	services Services
	logger   *slog.Logger
}

func NewServer(services Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mcp: server.NewMCPServer(
			ServerName,
			ServerVersion,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		services: services,
		logger:   logger,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// Serve runs the server over stdin/stdout until the input closes.
func (s *Server) Serve(_ context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(storeContextTool(), s.handleStoreContext)
	s.mcp.AddTool(retrieveContextTool(), s.handleRetrieveContext)
	s.mcp.AddTool(searchContextTool(), s.handleSearchContext)
	s.mcp.AddTool(listContextsTool(), s.handleListContexts)
	s.mcp.AddTool(deleteContextTool(), s.handleDeleteContext)
	s.mcp.AddTool(createProjectTool(), s.handleCreateProject)
	s.mcp.AddTool(listProjectsTool(), s.handleListProjects)
	s.mcp.AddTool(contextStatsTool(), s.handleContextStats)
}

func (s *Server) registerResources() {
	s.mcp.AddResource(
		mcp.NewResource(itemsResourceURI, "Context items",
			mcp.WithResourceDescription("Most recent active context items"),
			mcp.WithMIMEType("application/json"),
		),
		s.readItemsResource,
	)
	s.mcp.AddResource(
		mcp.NewResource(projectsResourceURI, "Projects",
			mcp.WithResourceDescription("Active projects"),
			mcp.WithMIMEType("application/json"),
		),
		s.readProjectsResource,
	)
}
