package index

import (
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/srclens/srclens/internal/elements"
)

// RelationEdge is one directed model relationship.
type RelationEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"` // e.g. "ManyToOne", "ForeignKey"
}

// ModelGraph is a directed graph over model relationship descriptors,
// assembled on demand from the index. Descriptors are weak name
// references, so targets may be models the scan never saw.
type ModelGraph struct {
	g     graph.Graph[string, string]
	edges []RelationEdge
}

// BuildModelGraph assembles the relationship graph from every model
// currently held by m.
func BuildModelGraph(m *Manager) *ModelGraph {
	mg := &ModelGraph{
		g: graph.New(graph.StringHash, graph.Directed()),
	}

	for _, result := range m.Snapshot() {
		for _, el := range result.Elements {
			model, ok := el.(*elements.ModelElement)
			if !ok {
				continue
			}
			_ = mg.g.AddVertex(model.Name)
			for _, descriptor := range model.Relationships {
				kind, target, ok := strings.Cut(descriptor, " -> ")
				if !ok || target == "" {
					continue
				}
				_ = mg.g.AddVertex(target)
				// Parallel edges collapse; the first kind wins.
				if err := mg.g.AddEdge(model.Name, target); err == nil {
					mg.edges = append(mg.edges, RelationEdge{From: model.Name, To: target, Kind: kind})
				}
			}
		}
	}
	return mg
}

// Models returns every vertex name, sorted.
func (mg *ModelGraph) Models() []string {
	adjacency, err := mg.g.AdjacencyMap()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(adjacency))
	for name := range adjacency {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Outgoing returns the edges leaving model, sorted by target.
func (mg *ModelGraph) Outgoing(model string) []RelationEdge {
	var out []RelationEdge
	for _, e := range mg.edges {
		if e.From == model {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].To < out[j].To })
	return out
}

// Incoming returns the edges arriving at model, sorted by source.
func (mg *ModelGraph) Incoming(model string) []RelationEdge {
	var in []RelationEdge
	for _, e := range mg.edges {
		if e.To == model {
			in = append(in, e)
		}
	}
	sort.Slice(in, func(i, j int) bool { return in[i].From < in[j].From })
	return in
}

// Edges returns every edge in the graph.
func (mg *ModelGraph) Edges() []RelationEdge {
	out := make([]RelationEdge, len(mg.edges))
	copy(out, mg.edges)
	return out
}
