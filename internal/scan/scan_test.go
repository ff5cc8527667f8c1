package scan

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for scan primitives:
// - Offset to 1-based line resolution, including clamped offsets
// - Brace block end for nested blocks at arbitrary depth
// - Brace block end degrades to the start line for unterminated blocks
// - Indentation block end stops at the first sibling at the original depth
// - Indentation block end runs to EOF when no sibling follows
// - Preceding doc extraction for line, block, and doc-comment styles
// - Docstring extraction for single-line and multi-line literals
// - Signature reassembly across lines with a bounded lookahead
// - All primitives tolerate out-of-range lines without panicking

func TestLineOf(t *testing.T) {
	t.Parallel()

	content := "alpha\nbeta\ngamma\n"

	assert.Equal(t, 1, LineOf(content, 0))
	assert.Equal(t, 1, LineOf(content, 4))
	assert.Equal(t, 2, LineOf(content, 6))
	assert.Equal(t, 3, LineOf(content, 12))
	// Clamping
	assert.Equal(t, 1, LineOf(content, -5))
	assert.Equal(t, 4, LineOf(content, 10_000))
}

func TestLines_CRLF(t *testing.T) {
	t.Parallel()

	lines := Lines("one\r\ntwo\r\nthree")
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestBraceBlockEnd_Nested(t *testing.T) {
	t.Parallel()

	// Synthetic declaration with N nested levels: end line must equal the
	// line of the Nth matching close.
	for n := 1; n <= 5; n++ {
		var sb strings.Builder
		sb.WriteString("class Demo {\n")
		for i := 0; i < n; i++ {
			sb.WriteString(strings.Repeat("  ", i+1) + "if (x) {\n")
		}
		for i := n - 1; i >= 0; i-- {
			sb.WriteString(strings.Repeat("  ", i+1) + "}\n")
		}
		sb.WriteString("}\n")

		lines := Lines(sb.String())
		wantEnd := 1 + n + n + 1 // decl + openers + closers + class close
		assert.Equal(t, wantEnd, BraceBlockEnd(lines, 1), "depth %d", n)
	}
}

func TestBraceBlockEnd_Unterminated(t *testing.T) {
	t.Parallel()

	lines := Lines("void broken() {\n  int x = 1;\n  // file truncated here")
	assert.Equal(t, 1, BraceBlockEnd(lines, 1))
}

func TestBraceBlockEnd_OutOfRange(t *testing.T) {
	t.Parallel()

	lines := Lines("{}")
	assert.Equal(t, 0, BraceBlockEnd(lines, 0))
	assert.Equal(t, 99, BraceBlockEnd(lines, 99))
}

func TestIndentBlockEnd_SiblingTerminates(t *testing.T) {
	t.Parallel()

	src := `def handler():
    x = 1

    return x

def sibling():
    pass
`
	lines := Lines(src)
	// Block ends on "return x" (line 4), the line before the sibling.
	assert.Equal(t, 4, IndentBlockEnd(lines, 1))
}

func TestIndentBlockEnd_EOF(t *testing.T) {
	t.Parallel()

	src := "class Model:\n    name = 1\n    email = 2"
	lines := Lines(src)
	assert.Equal(t, 3, IndentBlockEnd(lines, 1))
}

func TestIndentBlockEnd_TabsCountAsFour(t *testing.T) {
	t.Parallel()

	src := "def f():\n\treturn 1\nx = 2\n"
	lines := Lines(src)
	assert.Equal(t, 2, IndentBlockEnd(lines, 1))
}

func TestPrecedingDoc_LineComments(t *testing.T) {
	t.Parallel()

	src := `x = 1
// Fetches a user by id.
// Returns 404 when missing.
func handler() {}
`
	lines := Lines(src)
	doc := PrecedingDoc(lines, 4, SlashComments)
	assert.Equal(t, "Fetches a user by id.\nReturns 404 when missing.", doc)
}

func TestPrecedingDoc_BlockComment(t *testing.T) {
	t.Parallel()

	src := `/**
 * Creates an order.
 * @param id the order id
 */
public void create() {}
`
	lines := Lines(src)
	doc := PrecedingDoc(lines, 5, SlashComments)
	assert.Contains(t, doc, "Creates an order.")
	assert.Contains(t, doc, "@param id the order id")
	assert.NotContains(t, doc, "/*")
}

func TestPrecedingDoc_HashComments(t *testing.T) {
	t.Parallel()

	src := "# List all users.\n# Supports paging.\ndef users():\n"
	lines := Lines(src)
	assert.Equal(t, "List all users.\nSupports paging.", PrecedingDoc(lines, 3, HashComments))
}

func TestPrecedingDoc_None(t *testing.T) {
	t.Parallel()

	lines := Lines("x = 1\ndef f():\n")
	assert.Equal(t, "", PrecedingDoc(lines, 2, HashComments))
	assert.Equal(t, "", PrecedingDoc(lines, 1, HashComments))
	assert.Equal(t, "", PrecedingDoc(lines, 500, HashComments))
}

func TestDocstring(t *testing.T) {
	t.Parallel()

	src := `def users():
    """List all users."""
    return []
`
	assert.Equal(t, "List all users.", Docstring(Lines(src), 1))

	multi := `def users():
    """
    List all users.
    Supports paging.
    """
    return []
`
	assert.Equal(t, "List all users.\nSupports paging.", Docstring(Lines(multi), 1))

	none := "def users():\n    return []\n"
	assert.Equal(t, "", Docstring(Lines(none), 1))
}

func TestReassembleSignature_MultiLine(t *testing.T) {
	t.Parallel()

	src := `public ResponseEntity<User> create(
    @RequestBody UserDto dto,
    @PathVariable Long id) {
`
	sig := ReassembleSignature(Lines(src), 1)
	assert.Contains(t, sig, "create(")
	assert.Contains(t, sig, "@RequestBody UserDto dto")
	assert.Contains(t, sig, "@PathVariable Long id)")
}

func TestReassembleSignature_LookaheadCap(t *testing.T) {
	t.Parallel()

	// An unclosed paren must not pull in the whole file.
	var sb strings.Builder
	sb.WriteString("def broken(\n")
	for i := 0; i < 100; i++ {
		sb.WriteString(fmt.Sprintf("    arg%d,\n", i))
	}
	sig := ReassembleSignature(Lines(sb.String()), 1)
	assert.NotContains(t, sig, "arg50")
}

func TestReassembleSignature_OutOfRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", ReassembleSignature(Lines("f()"), 7))
}
