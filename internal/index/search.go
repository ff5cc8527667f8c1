package index

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/srclens/srclens/internal/elements"
)

// SearchHit is one element matched by a keyword search.
type SearchHit struct {
	Kind      string  `json:"kind"`
	Name      string  `json:"name"`
	FilePath  string  `json:"file_path"`
	StartLine int     `json:"start_line"`
	Route     string  `json:"route,omitempty"`
	Score     float64 `json:"score"`
}

// Searcher is an in-memory full-text index over the workspace elements.
// It is rebuilt from a Manager snapshot rather than updated in place.
type Searcher struct {
	index bleve.Index
}

// NewSearcher builds a searcher over every element currently indexed by m.
func NewSearcher(m *Manager) (*Searcher, error) {
	idx, err := bleve.NewMemOnly(buildSearchMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	batch := idx.NewBatch()
	for _, result := range m.Snapshot() {
		for _, el := range result.Elements {
			base := el.Base()
			id := fmt.Sprintf("%s:%d:%s", base.FilePath, base.StartLine, base.Name)
			if err := batch.Index(id, elementToDocument(el)); err != nil {
				idx.Close()
				return nil, fmt.Errorf("failed to index element %s: %w", id, err)
			}
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("failed to execute index batch: %w", err)
	}

	return &Searcher{index: idx}, nil
}

// buildSearchMapping creates the index mapping for element documents.
func buildSearchMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Name and doc are the primary search targets - standard analyzer
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true

	docMapping := bleve.NewTextFieldMapping()
	docMapping.Analyzer = "standard"
	docMapping.Store = false

	// Kind field (filterable) - keyword analyzer for exact matching
	kindMapping := bleve.NewTextFieldMapping()
	kindMapping.Analyzer = "keyword"
	kindMapping.Store = true

	// File path and route - standard analyzer for partial matching
	pathMapping := bleve.NewTextFieldMapping()
	pathMapping.Analyzer = "standard"
	pathMapping.Store = true

	routeMapping := bleve.NewTextFieldMapping()
	routeMapping.Analyzer = "standard"
	routeMapping.Store = true

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = false

	elementMapping := bleve.NewDocumentMapping()
	elementMapping.AddFieldMappingsAt("name", nameMapping)
	elementMapping.AddFieldMappingsAt("doc", docMapping)
	elementMapping.AddFieldMappingsAt("kind", kindMapping)
	elementMapping.AddFieldMappingsAt("file_path", pathMapping)
	elementMapping.AddFieldMappingsAt("route", routeMapping)
	elementMapping.AddFieldMappingsAt("start_line", lineMapping)

	indexMapping.DefaultMapping = elementMapping
	return indexMapping
}

// elementToDocument converts an element to a bleve document.
func elementToDocument(el elements.Element) map[string]interface{} {
	base := el.Base()
	doc := map[string]interface{}{
		"name":       base.Name,
		"doc":        base.Doc,
		"kind":       string(base.Kind),
		"file_path":  base.FilePath,
		"start_line": base.StartLine,
	}
	switch v := el.(type) {
	case *elements.EndpointElement:
		doc["route"] = v.Method + " " + v.Path
	case *elements.ContainerElement:
		doc["route"] = v.BasePath
	}
	return doc
}

// Search executes a keyword query (bleve query-string syntax) and
// returns up to limit hits ordered by score.
func (s *Searcher) Search(queryStr string, limit int) ([]SearchHit, error) {
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	request := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(queryStr), limit, 0, false)
	request.Fields = []string{"name", "kind", "file_path", "route", "start_line"}

	result, err := s.index.Search(request)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		name, _ := hit.Fields["name"].(string)
		kind, _ := hit.Fields["kind"].(string)
		filePath, _ := hit.Fields["file_path"].(string)
		route, _ := hit.Fields["route"].(string)
		startLine, _ := hit.Fields["start_line"].(float64)

		hits = append(hits, SearchHit{
			Kind:      kind,
			Name:      name,
			FilePath:  filePath,
			StartLine: int(startLine),
			Route:     route,
			Score:     hit.Score,
		})
	}
	return hits, nil
}

// Close releases the underlying index.
func (s *Searcher) Close() error {
	return s.index.Close()
}
