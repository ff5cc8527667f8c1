package elements

import "strings"

// Kind identifies the category of an extracted code element.
type Kind string

const (
	KindEndpoint  Kind = "endpoint"
	KindService   Kind = "service"
	KindModel     Kind = "model"
	KindContainer Kind = "container"
)

// Element is implemented by every extracted construct. Consumers that only
// need location, name, and documentation work against the base record.
type Element interface {
	// Base returns the shared element record.
	Base() *CodeElement
}

// CodeElement is the shared record for any extracted construct.
// StartLine and EndLine are 1-based and inclusive; StartLine <= EndLine
// always holds (a degraded block end collapses onto the start line).
type CodeElement struct {
	Kind       Kind     `json:"kind"`
	Name       string   `json:"name"`
	FilePath   string   `json:"file_path"`
	StartLine  int      `json:"start_line"`
	EndLine    int      `json:"end_line"`
	Doc        string   `json:"doc,omitempty"`
	Provenance []string `json:"provenance,omitempty"` // which convention matched, e.g. "spring:@GetMapping"
}

// Base returns the element itself, satisfying Element for embedders.
func (e *CodeElement) Base() *CodeElement { return e }

// Contains reports whether the given 1-based line falls inside the element's span.
func (e *CodeElement) Contains(line int) bool {
	return line >= e.StartLine && line <= e.EndLine
}

// ParamRole says where an endpoint parameter is carried.
type ParamRole string

const (
	RolePath  ParamRole = "path"
	RoleQuery ParamRole = "query"
	RoleBody  ParamRole = "body"
)

// Parameter is a single declared endpoint parameter.
type Parameter struct {
	Name     string    `json:"name"`
	Type     string    `json:"type,omitempty"` // declared type, free text
	Required bool      `json:"required"`
	Role     ParamRole `json:"role"`
}

// EndpointElement is a network-exposed route handler.
type EndpointElement struct {
	CodeElement
	Method     string      `json:"method"` // GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS
	Path       string      `json:"path"`   // normalized: one leading slash, no doubled slashes
	Parameters []Parameter `json:"parameters,omitempty"`
	ReturnType string      `json:"return_type,omitempty"`
}

// ServiceElement is a business-logic component with injected dependencies.
type ServiceElement struct {
	CodeElement
	Methods      []string `json:"methods,omitempty"`      // public method names
	Dependencies []string `json:"dependencies,omitempty"` // declared dependency type names
}

// FieldInfo is one declared field or column of a persisted model.
type FieldInfo struct {
	Name       string   `json:"name"`
	Type       string   `json:"type,omitempty"`
	Provenance []string `json:"provenance,omitempty"`
}

// ModelElement is a persisted data model. Relationships are weak,
// name-only descriptors such as "ManyToOne -> Order"; no object graph
// is retained and any join happens at query time over the index.
type ModelElement struct {
	CodeElement
	Fields        []FieldInfo `json:"fields,omitempty"`
	Relationships []string    `json:"relationships,omitempty"`
}

// ContainerElement is a grouping construct (a routing class or router
// object) that supplies a base path to its children. Children are held
// by value; the base path is applied at extraction time.
type ContainerElement struct {
	CodeElement
	BasePath  string            `json:"base_path"`
	Endpoints []EndpointElement `json:"endpoints,omitempty"`
}

// ParseResult is the per-file envelope produced by one scan. It is
// created fresh per scan and replaced wholesale on change, never mutated.
type ParseResult struct {
	Ecosystem string    `json:"ecosystem"`
	FilePath  string    `json:"file_path"`
	Elements  []Element `json:"elements"`
	Errors    []string  `json:"errors,omitempty"`
}

// JoinPath concatenates route segments into a normalized path: exactly
// one leading slash, no doubled slashes, no trailing slash except for
// the bare root. Empty segments vanish.
func JoinPath(parts ...string) string {
	var segs []string
	for _, part := range parts {
		for _, seg := range strings.Split(part, "/") {
			if seg != "" {
				segs = append(segs, seg)
			}
		}
	}
	return "/" + strings.Join(segs, "/")
}

// Methods is the fixed vocabulary of network methods recognized by the
// per-ecosystem marker tables.
var Methods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS"}

// IsMethod reports whether m (upper-cased) is in the method vocabulary.
func IsMethod(m string) bool {
	m = strings.ToUpper(m)
	for _, known := range Methods {
		if m == known {
			return true
		}
	}
	return false
}
