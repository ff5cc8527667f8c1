// Package mcp exposes the workspace index to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/srclens/srclens/internal/index"
)

// Server manages the MCP server lifecycle around an initialized
// workspace index.
type Server struct {
	manager *index.Manager
	watcher *index.Watcher
	mcp     *server.MCPServer
}

// NewServer creates an MCP server for the given initialized manager.
// The manager remains owned by the caller.
func NewServer(manager *index.Manager) (*Server, error) {
	watcher, err := index.NewWatcher(manager, manager.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"srclens-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	AddQueryTool(mcpServer, manager)
	AddElementsTool(mcpServer, manager)
	AddSearchTool(mcpServer, manager)

	return &Server{
		manager: manager,
		watcher: watcher,
		mcp:     mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
// The file watcher keeps the index current while serving.
func (s *Server) Serve(ctx context.Context) error {
	s.watcher.Start(ctx)
	defer s.watcher.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		cancel()
		return nil
	case err := <-errCh:
		cancel()
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the file watcher. The manager remains usable.
func (s *Server) Close() error {
	if s.watcher != nil {
		s.watcher.Stop()
	}
	return nil
}
