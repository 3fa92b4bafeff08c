// ABOUTME: MCP server setup for the gymlog workout store.
// ABOUTME: Wraps the MCP server with a storage Repository and the acting user.
package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/harperreed/gymlog/internal/models"
	"github.com/harperreed/gymlog/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DefaultUser is the identity used when no user is configured.
const DefaultUser = "local"

// Options configure a Server.
type Options struct {
	// ClerkUserID identifies the user whose workouts the tools act on.
	ClerkUserID string
	// Version is reported to clients.
	Version string
	// Logger receives request logs. It must not write to stdout.
	Logger *log.Logger
}

// Server wraps the MCP server with storage access.
type Server struct {
	mcpServer *mcp.Server
	repo      storage.Repository
	user      *models.User
	log       *log.Logger
}

// NewServer creates a new MCP server, provisioning the acting user if needed.
func NewServer(ctx context.Context, repo storage.Repository, opts Options) (*Server, error) {
	if opts.ClerkUserID == "" {
		opts.ClerkUserID = DefaultUser
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	user, created, err := repo.EnsureUser(ctx, models.NewUser(opts.ClerkUserID))
	if err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", opts.ClerkUserID, err)
	}
	if created {
		logger.Info("created user", "clerk_user_id", opts.ClerkUserID)
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "gymlog",
			Version: opts.Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		repo:      repo,
		user:      user,
		log:       logger,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("serving MCP over stdio", "user", s.user.ClerkUserID)
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
