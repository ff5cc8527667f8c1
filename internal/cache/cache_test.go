package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srclens/srclens/internal/elements"
)

// Test Plan for the result cache:
// - Put then Get round-trips elements in start-line order
// - A changed content hash is a miss
// - Whole-row replacement on Put for the same path
// - Corrupt rows are dropped instead of surfaced
// - Delete and Purge remove rows

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleResult(path string) *elements.ParseResult {
	return &elements.ParseResult{
		Ecosystem: "spring",
		FilePath:  path,
		Elements: []elements.Element{
			&elements.ContainerElement{
				CodeElement: elements.CodeElement{
					Kind: elements.KindContainer, Name: "OrderController",
					FilePath: path, StartLine: 1, EndLine: 20,
				},
				BasePath: "/api/orders",
			},
			&elements.EndpointElement{
				CodeElement: elements.CodeElement{
					Kind: elements.KindEndpoint, Name: "list",
					FilePath: path, StartLine: 4, EndLine: 7,
				},
				Method: "GET", Path: "/api/orders",
			},
			&elements.ServiceElement{
				CodeElement: elements.CodeElement{
					Kind: elements.KindService, Name: "OrderService",
					FilePath: path, StartLine: 25, EndLine: 40,
				},
				Methods: []string{"list"},
			},
		},
	}
}

func TestCache_RoundTrip(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	want := sampleResult("a/OrderController.java")
	require.NoError(t, c.Put("a/OrderController.java", "hash-1", "scan-1", want))

	got, ok := c.Get("a/OrderController.java", "hash-1")
	require.True(t, ok)
	assert.Equal(t, "spring", got.Ecosystem)
	require.Len(t, got.Elements, 3)
	assert.Equal(t, elements.KindContainer, got.Elements[0].Base().Kind)
	assert.Equal(t, "list", got.Elements[1].Base().Name)
	assert.Equal(t, elements.KindService, got.Elements[2].Base().Kind)

	ep, ok := got.Elements[1].(*elements.EndpointElement)
	require.True(t, ok)
	assert.Equal(t, "/api/orders", ep.Path)
}

func TestCache_HashMismatchIsMiss(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	require.NoError(t, c.Put("f.py", "hash-1", "scan-1", sampleResult("f.py")))

	_, ok := c.Get("f.py", "hash-2")
	assert.False(t, ok)
}

func TestCache_PutReplacesRow(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	require.NoError(t, c.Put("f.ts", "hash-1", "scan-1", sampleResult("f.ts")))

	replacement := &elements.ParseResult{Ecosystem: "nest", FilePath: "f.ts"}
	require.NoError(t, c.Put("f.ts", "hash-2", "scan-2", replacement))

	_, ok := c.Get("f.ts", "hash-1")
	assert.False(t, ok)

	got, ok := c.Get("f.ts", "hash-2")
	require.True(t, ok)
	assert.Empty(t, got.Elements)

	n, err := c.Len()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestCache_CorruptRowIsDropped(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	_, err := c.db.Exec(`
		INSERT INTO parse_results (path, content_hash, scan_id, result, updated_at)
		VALUES ('bad.java', 'hash-1', 'scan-1', '{not json', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, ok := c.Get("bad.java", "hash-1")
	assert.False(t, ok)

	n, err := c.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCache_DeleteAndPurge(t *testing.T) {
	t.Parallel()

	c := openTestCache(t)
	require.NoError(t, c.Put("a.py", "h", "s", sampleResult("a.py")))
	require.NoError(t, c.Put("b.py", "h", "s", sampleResult("b.py")))

	require.NoError(t, c.Delete("a.py"))
	_, ok := c.Get("a.py", "h")
	assert.False(t, ok)

	require.NoError(t, c.Purge())
	n, err := c.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}
