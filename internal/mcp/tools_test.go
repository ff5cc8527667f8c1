package mcp

// Test Plan:
// 1. Build a real index over a small temp workspace
// 2. srclens_query returns the handler element at a position, null outside spans
// 3. srclens_elements returns the file's elements, empty array for unknown files
// 4. srclens_search finds elements by name
// 5. Missing required arguments produce tool error results, not system errors

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srclens/srclens/internal/config"
	"github.com/srclens/srclens/internal/elements"
	"github.com/srclens/srclens/internal/index"
)

const pyToolFixture = `router = APIRouter(prefix="/api/users")

@router.get("/{user_id}")
def get_user(user_id: int):
    """Fetch one user."""
    return find(user_id)
`

func toolTestManager(t *testing.T) *index.Manager {
	t.Helper()

	root := t.TempDir()
	path := filepath.Join(root, "api", "users.py")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(pyToolFixture), 0o644))

	m := index.NewManager(config.Default(), nil)
	_, err := m.Initialize(context.Background(), root, nil)
	require.NoError(t, err)
	t.Cleanup(m.Dispose)
	return m
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), request)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()

	textContent, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "should be text content")
	return textContent.Text
}

func TestQueryHandler_FindsHandlerAtPosition(t *testing.T) {
	t.Parallel()

	m := toolTestManager(t)
	handler := createQueryHandler(m)

	result := callTool(t, handler, map[string]interface{}{
		"file": "api/users.py",
		"line": float64(4),
	})
	assert.False(t, result.IsError)

	var el elements.EndpointElement
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &el))
	assert.Equal(t, "get_user", el.Name)
	assert.Equal(t, "GET", el.Method)
	assert.Equal(t, "/api/users/{user_id}", el.Path)
}

func TestQueryHandler_NullOutsideSpans(t *testing.T) {
	t.Parallel()

	m := toolTestManager(t)
	handler := createQueryHandler(m)

	result := callTool(t, handler, map[string]interface{}{
		"file": "api/users.py",
		"line": float64(500),
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "null", resultText(t, result))
}

func TestQueryHandler_MissingFile(t *testing.T) {
	t.Parallel()

	m := toolTestManager(t)
	handler := createQueryHandler(m)

	result := callTool(t, handler, map[string]interface{}{
		"line": float64(4),
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "file parameter is required")
}

func TestElementsHandler_ListsFileElements(t *testing.T) {
	t.Parallel()

	m := toolTestManager(t)
	handler := createElementsHandler(m)

	result := callTool(t, handler, map[string]interface{}{
		"file": "api/users.py",
	})
	assert.False(t, result.IsError)

	var els []json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &els))
	assert.Len(t, els, 2)
}

func TestElementsHandler_UnknownFileIsEmptyArray(t *testing.T) {
	t.Parallel()

	m := toolTestManager(t)
	handler := createElementsHandler(m)

	result := callTool(t, handler, map[string]interface{}{
		"file": "missing.py",
	})
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", resultText(t, result))
}

func TestSearchHandler_FindsByName(t *testing.T) {
	t.Parallel()

	m := toolTestManager(t)
	handler := createSearchHandler(m)

	result := callTool(t, handler, map[string]interface{}{
		"query": "get_user",
	})
	assert.False(t, result.IsError)

	var response searchResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	require.Equal(t, 1, response.Total)
	assert.Equal(t, "get_user", response.Results[0].Name)
	assert.Equal(t, "api/users.py", response.Results[0].FilePath)
}

func TestSearchHandler_MissingQuery(t *testing.T) {
	t.Parallel()

	m := toolTestManager(t)
	handler := createSearchHandler(m)

	result := callTool(t, handler, map[string]interface{}{})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "query parameter is required")
}
