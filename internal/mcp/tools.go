package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/srclens/srclens/internal/elements"
	"github.com/srclens/srclens/internal/index"
)

// AddQueryTool registers the srclens_query tool with an MCP server.
// Tool registrations are composable.
func AddQueryTool(s *server.MCPServer, manager *index.Manager) {
	tool := mcp.NewTool(
		"srclens_query",
		mcp.WithDescription("Find the innermost indexed code element (endpoint, service, model or controller) at a given file position. Returns null when no element spans the position."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the workspace root")),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line number")),
	)

	s.AddTool(tool, createQueryHandler(manager))
}

func createQueryHandler(manager *index.Manager) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		file, ok := argsMap["file"].(string)
		if !ok || file == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}

		line, ok := argsMap["line"].(float64)
		if !ok || line < 1 {
			return mcp.NewToolResultError("line parameter must be a positive number"), nil
		}

		el := manager.QueryAt(file, int(line))
		if el == nil {
			return mcp.NewToolResultText("null"), nil
		}

		jsonData, err := json.Marshal(el)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal element: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// AddElementsTool registers the srclens_elements tool with an MCP server.
func AddElementsTool(s *server.MCPServer, manager *index.Manager) {
	tool := mcp.NewTool(
		"srclens_elements",
		mcp.WithDescription("List every indexed code element in a file, ordered by start line. Returns an empty array for unindexed files."),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the workspace root")),
	)

	s.AddTool(tool, createElementsHandler(manager))
}

func createElementsHandler(manager *index.Manager) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		file, ok := argsMap["file"].(string)
		if !ok || file == "" {
			return mcp.NewToolResultError("file parameter is required"), nil
		}

		els := manager.ElementsIn(file)
		if els == nil {
			els = []elements.Element{}
		}

		jsonData, err := json.Marshal(els)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal elements: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// AddSearchTool registers the srclens_search tool with an MCP server.
// A fresh search index is built per call so results reflect files
// reindexed by the watcher since startup.
func AddSearchTool(s *server.MCPServer, manager *index.Manager) {
	tool := mcp.NewTool(
		"srclens_search",
		mcp.WithDescription("Full-text search over indexed elements by name, documentation, route and file path. Supports field scoping, e.g. 'kind:endpoint payment'."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (e.g. 'create order', 'kind:model invoice')")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
	)

	s.AddTool(tool, createSearchHandler(manager))
}

func createSearchHandler(manager *index.Manager) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		query, ok := argsMap["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		limit := 15
		if l, ok := argsMap["limit"].(float64); ok {
			limit = int(l)
		}

		searcher, err := index.NewSearcher(manager)
		if err != nil {
			return nil, fmt.Errorf("failed to build search index: %w", err)
		}
		defer searcher.Close()

		hits, err := searcher.Search(query, limit)
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		response := &searchResponse{
			Results: hits,
			Total:   len(hits),
		}
		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

type searchResponse struct {
	Results []index.SearchHit `json:"results"`
	Total   int               `json:"total"`
}
