// Package scan holds the lexical primitives shared by every ecosystem
// extractor: line resolution, block-boundary detection for brace- and
// indentation-delimited languages, preceding-comment extraction, and
// multi-line signature reassembly.
//
// Every primitive returns a best-effort result instead of an error. Bad
// input (truncated blocks, binary bytes, out-of-range lines) degrades to
// the most conservative answer so a scan never aborts mid-file.
package scan

import "strings"

// maxSignatureLookahead bounds how many lines signature reassembly will
// concatenate, so malformed input cannot make a scan quadratic.
const maxSignatureLookahead = 12

// Lines splits file content into lines without their terminators.
// Both \n and \r\n are handled.
func Lines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// LineOf converts a byte offset into a 1-based line number by counting
// preceding line breaks. Offsets past the end clamp to the last line.
func LineOf(content string, offset int) int {
	if offset < 0 {
		return 1
	}
	if offset > len(content) {
		offset = len(content)
	}
	return 1 + strings.Count(content[:offset], "\n")
}

// BraceBlockEnd finds the 1-based line on which the block opened at
// startLine closes, counting nested '{'/'}' pairs. The depth must go
// positive before returning to zero; if no closer is found before EOF
// the start line is returned so the element degrades to a single line.
func BraceBlockEnd(lines []string, startLine int) int {
	return DelimitedBlockEnd(lines, startLine, '{', '}')
}

// DelimitedBlockEnd is BraceBlockEnd generalized over any open/close
// delimiter pair.
func DelimitedBlockEnd(lines []string, startLine int, open, close rune) int {
	if startLine < 1 || startLine > len(lines) {
		return startLine
	}

	depth := 0
	opened := false
	for i := startLine - 1; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case open:
				depth++
				opened = true
			case close:
				depth--
			}
			if opened && depth == 0 {
				return i + 1
			}
		}
	}
	return startLine
}

// IndentBlockEnd finds the last line of an indentation-delimited block.
// The block open at declLine extends to the line before the first
// non-blank line whose indentation depth is less than or equal to the
// declaration's; EOF ends the block at EOF.
func IndentBlockEnd(lines []string, declLine int) int {
	if declLine < 1 || declLine > len(lines) {
		return declLine
	}

	declDepth := indentDepth(lines[declLine-1])
	end := declLine
	for i := declLine; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			continue
		}
		if indentDepth(line) <= declDepth {
			return end
		}
		end = i + 1
	}
	return end
}

// indentDepth measures leading whitespace, counting a tab as four columns.
func indentDepth(line string) int {
	depth := 0
	for _, r := range line {
		switch r {
		case ' ':
			depth++
		case '\t':
			depth += 4
		default:
			return depth
		}
	}
	return depth
}

// CommentStyle describes the comment markers an ecosystem uses for the
// backward documentation scan.
type CommentStyle struct {
	Line       string // e.g. "//" or "#"
	BlockOpen  string // e.g. "/*" or "" when the ecosystem has none
	BlockClose string // e.g. "*/"
}

var (
	// SlashComments matches Java- and TypeScript-style comments.
	SlashComments = CommentStyle{Line: "//", BlockOpen: "/*", BlockClose: "*/"}
	// HashComments matches Python-style comments.
	HashComments = CommentStyle{Line: "#"}
)

// PrecedingDoc scans backward from the line above declLine through
// contiguous comment lines and returns their concatenated, stripped
// text. Returns "" when the declaration has no documentation.
func PrecedingDoc(lines []string, declLine int, style CommentStyle) string {
	if declLine < 2 || declLine > len(lines)+1 {
		return ""
	}

	var collected []string
	inBlock := false
	for i := declLine - 2; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])

		if inBlock {
			collected = append(collected, stripCommentMarkers(line, style))
			if strings.HasPrefix(line, style.BlockOpen) {
				break // reached the block opener
			}
			continue
		}

		switch {
		case style.BlockClose != "" && strings.HasSuffix(line, style.BlockClose):
			collected = append(collected, stripCommentMarkers(line, style))
			if style.BlockOpen != "" && !strings.HasPrefix(line, style.BlockOpen) {
				inBlock = true
				continue
			}
			// single-line block comment; keep walking upward
		case style.Line != "" && strings.HasPrefix(line, style.Line):
			collected = append(collected, strings.TrimSpace(strings.TrimPrefix(line, style.Line)))
		default:
			i = -1
		}
		if i < 0 {
			break
		}
	}

	// Collected bottom-up; reverse into source order.
	for l, r := 0, len(collected)-1; l < r; l, r = l+1, r-1 {
		collected[l], collected[r] = collected[r], collected[l]
	}

	var kept []string
	for _, line := range collected {
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// stripCommentMarkers removes block-comment decoration from one line.
func stripCommentMarkers(line string, style CommentStyle) string {
	if style.BlockOpen != "" {
		line = strings.TrimPrefix(line, style.BlockOpen+"*") // doc-comment opener such as /**
		line = strings.TrimPrefix(line, style.BlockOpen)
	}
	if style.BlockClose != "" {
		line = strings.TrimSuffix(line, style.BlockClose)
	}
	line = strings.TrimPrefix(strings.TrimSpace(line), "*")
	return strings.TrimSpace(line)
}

// Docstring returns the text of a string-literal block that immediately
// follows declLine, the convention indentation-delimited ecosystems use
// for documentation. Returns "" when the next non-blank line does not
// open a triple-quoted string.
func Docstring(lines []string, declLine int) string {
	i := declLine // first line after the declaration, 0-based
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return ""
	}

	line := strings.TrimSpace(lines[i])
	quote := ""
	for _, q := range []string{`"""`, "'''"} {
		if strings.HasPrefix(line, q) {
			quote = q
			break
		}
	}
	if quote == "" {
		return ""
	}

	body := strings.TrimPrefix(line, quote)
	if idx := strings.Index(body, quote); idx >= 0 {
		return strings.TrimSpace(body[:idx])
	}

	collected := []string{strings.TrimSpace(body)}
	for j := i + 1; j < len(lines); j++ {
		line := strings.TrimSpace(lines[j])
		if idx := strings.Index(line, quote); idx >= 0 {
			collected = append(collected, strings.TrimSpace(line[:idx]))
			break
		}
		collected = append(collected, line)
	}

	var kept []string
	for _, line := range collected {
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// ReassembleSignature joins a declaration that spans multiple lines into
// one string, starting at startLine and appending lines until the
// parenthesis depth returns to zero. Lookahead is capped so malformed
// input stays cheap; when the cap is hit the partial signature is
// returned as-is.
func ReassembleSignature(lines []string, startLine int) string {
	if startLine < 1 || startLine > len(lines) {
		return ""
	}

	var sb strings.Builder
	depth := 0
	limit := startLine - 1 + maxSignatureLookahead
	if limit > len(lines) {
		limit = len(lines)
	}

	for i := startLine - 1; i < limit; i++ {
		line := strings.TrimSpace(lines[i])
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(line)
		for _, r := range line {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		if depth <= 0 {
			break
		}
	}
	return sb.String()
}
