// ABOUTME: MCP server setup for the repset document repositories.
// ABOUTME: Wraps the MCP server with a store connection and the signed-in user.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repset/repset/internal/docstore"
	"github.com/repset/repset/internal/repository"
)

// Server wraps the MCP server with repository access for one user.
type Server struct {
	mcpServer *mcp.Server
	store     docstore.Store
	userID    string

	users     *repository.Users
	exercises *repository.Exercises
	feed      *repository.Feed
	saver     *repository.WorkoutSaver
}

// NewServer creates a new MCP server operating as the given user.
func NewServer(store docstore.Store, userID string) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "repset",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		store:     store,
		userID:    userID,
		users:     repository.NewUsers(store),
		exercises: repository.NewExercises(store),
		feed:      repository.NewFeed(store),
		saver:     repository.NewWorkoutSaver(store),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) workouts() *repository.Workouts {
	return repository.NewWorkouts(s.store).Bind(s.userID)
}

func (s *Server) records() *repository.Records {
	return repository.NewRecords(s.store).Bind(s.userID)
}

func (s *Server) notifications() *repository.Notifications {
	return repository.NewNotifications(s.store).Bind(s.userID)
}
