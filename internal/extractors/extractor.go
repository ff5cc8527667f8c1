// Package extractors implements the per-ecosystem structural extractors
// and the dispatch layer that routes file content to them by extension.
//
// Extractors share one contract and one algorithm shape: recognize
// container markers to establish base scope, locate per-element markers
// from declarative pattern tables, resolve the owning declaration within
// a bounded lookahead, resolve the block end with the ecosystem's
// boundary primitive, attach preceding documentation, and emit the
// normalized element. Ecosystem variation lives entirely in the marker
// tables and the choice of brace- versus indentation-delimited blocks.
package extractors

import (
	"strings"

	"github.com/srclens/srclens/internal/elements"
	"github.com/srclens/srclens/internal/scan"
)

// declLookahead bounds how far past a marker the owning declaration may
// sit. Markers with no declaration inside the window synthesize a name
// instead of being dropped.
const declLookahead = 6

// Source is one file prepared for scanning. Lines are split once and
// shared across the extraction passes.
type Source struct {
	Path    string
	Content string
	Lines   []string
}

// NewSource prepares file content for extraction.
func NewSource(path, content string) *Source {
	return &Source{
		Path:    path,
		Content: content,
		Lines:   scan.Lines(content),
	}
}

// Line returns the 1-based line, or "" when out of range.
func (s *Source) Line(n int) string {
	if n < 1 || n > len(s.Lines) {
		return ""
	}
	return s.Lines[n-1]
}

// Extractor is the extraction contract every ecosystem implements.
// All methods are best-effort: malformed input yields fewer or degraded
// elements, never an error.
type Extractor interface {
	// Ecosystem names the language/framework family, e.g. "spring".
	Ecosystem() string

	// Extensions lists the file extensions this extractor handles,
	// with leading dots.
	Extensions() []string

	// ExtractEndpoints returns all network-exposed endpoints, with any
	// container base path already applied.
	ExtractEndpoints(src *Source) []*elements.EndpointElement

	// ExtractServices returns business-logic components and their
	// declared dependency types.
	ExtractServices(src *Source) []*elements.ServiceElement

	// ExtractModels returns persisted data models.
	ExtractModels(src *Source) []*elements.ModelElement
}

// ContainerExtractor is implemented by ecosystems whose conventions
// include a grouping construct. Absence of containers in a file is a
// normal empty result, not an error.
type ContainerExtractor interface {
	// ExtractContainers returns grouping constructs with their children
	// held by value.
	ExtractContainers(src *Source) []*elements.ContainerElement
}

// synthesizeName builds an element name from the matched marker when no
// owning declaration is found in the lookahead window, so no marker is
// silently dropped.
func synthesizeName(method, path string) string {
	name := strings.ToLower(method)
	for _, seg := range strings.Split(path, "/") {
		seg = strings.Trim(seg, "{}<>:")
		if seg == "" {
			continue
		}
		name += "_" + strings.ToLower(seg)
	}
	return name
}

// pathParamNames pulls parameter names out of a route path, accepting
// the {id}, :id, and <id> placeholder styles.
func pathParamNames(path string) []string {
	var names []string
	for _, seg := range strings.Split(path, "/") {
		switch {
		case strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}"):
			names = append(names, strings.Trim(seg, "{}"))
		case strings.HasPrefix(seg, ":") && len(seg) > 1:
			names = append(names, seg[1:])
		case strings.HasPrefix(seg, "<") && strings.HasSuffix(seg, ">"):
			name := strings.Trim(seg, "<>")
			// Flask converters: <int:user_id>
			if idx := strings.LastIndex(name, ":"); idx >= 0 {
				name = name[idx+1:]
			}
			names = append(names, name)
		}
	}
	return names
}

// hasParam reports whether params already carries name.
func hasParam(params []elements.Parameter, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// appendUnique appends v to list unless already present.
func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}
