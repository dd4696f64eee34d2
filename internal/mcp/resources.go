// ABOUTME: MCP resource implementations for the repset repositories.
// ABOUTME: Provides repset://profile, repset://feed and repset://records resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/repset/repset/internal/repository"
)

func (s *Server) registerResources() {
	// repset://profile - the signed-in user plus their recent workouts
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "repset://profile",
		Name:        "Profile",
		Description: "The signed-in user's profile and recent workouts",
		MIMEType:    "application/json",
	}, s.handleProfileResource)

	// repset://feed - recent feed items
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "repset://feed",
		Name:        "Social Feed",
		Description: "Most recent published workouts across the network",
		MIMEType:    "application/json",
	}, s.handleFeedResource)

	// repset://records - every personal-record table the user has
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "repset://records",
		Name:        "Personal Records",
		Description: "All-time personal record tables, one per exercise",
		MIMEType:    "application/json",
	}, s.handleRecordsResource)
}

// Resource handlers

func (s *Server) handleProfileResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	user, ok, err := s.users.Get(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("user not found: %s", s.userID)
	}

	workouts, _, err := s.workouts().ListRecent(ctx, 10, repository.Cursor{})
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	result := map[string]any{
		"generated_at":    time.Now().Format(time.RFC3339),
		"user":            user,
		"recent_workouts": workouts,
	}
	return resourceResult("repset://profile", result)
}

func (s *Server) handleFeedResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	items, _, err := s.feed.ListRecent(ctx, 10, repository.Cursor{})
	if err != nil {
		return nil, fmt.Errorf("failed to read feed: %w", err)
	}
	return resourceResult("repset://feed", map[string]any{"items": items})
}

func (s *Server) handleRecordsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	records, err := s.records().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	return resourceResult("repset://records", map[string]any{"records": records})
}

func resourceResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
