package extractors

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maypok86/otter"

	"github.com/srclens/srclens/internal/elements"
)

// parseCacheSize bounds the memoized ParseResults held in memory.
const parseCacheSize = 2048

// Registry dispatches file content to the extractor registered for the
// file's extension. Unknown extensions are a no-op: an empty, error-free
// ParseResult. Extractor panics are recovered into ParseResult.Errors so
// one bad file never stops a tree scan.
type Registry struct {
	byExt map[string]Extractor
	memo  otter.Cache[string, *elements.ParseResult]
}

// NewRegistry returns a registry with all built-in ecosystems wired and
// a content-hash keyed memoization cache.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Extractor)}
	r.register(NewSpring())
	r.register(NewNest())
	r.register(NewPython())

	memo, err := otter.MustBuilder[string, *elements.ParseResult](parseCacheSize).Build()
	if err != nil {
		panic(fmt.Sprintf("extractors: build parse cache: %v", err))
	}
	r.memo = memo
	return r
}

func (r *Registry) register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[ext] = e
	}
}

// CanHandle reports whether an extractor is registered for the path's
// extension.
func (r *Registry) CanHandle(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Parse extracts all elements from content. Identical (path, content)
// pairs are served from the memoization cache; callers must treat the
// returned result as read-only.
func (r *Registry) Parse(content []byte, path string) *elements.ParseResult {
	extractor, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return &elements.ParseResult{FilePath: path}
	}

	key := parseKey(path, content)
	if cached, ok := r.memo.Get(key); ok {
		return cached
	}

	result := r.extract(extractor, NewSource(path, string(content)))
	r.memo.Set(key, result)
	return result
}

// Close releases the memoization cache.
func (r *Registry) Close() {
	r.memo.Close()
}

func parseKey(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (r *Registry) extract(extractor Extractor, src *Source) (result *elements.ParseResult) {
	result = &elements.ParseResult{
		Ecosystem: extractor.Ecosystem(),
		FilePath:  src.Path,
	}
	defer func() {
		if rec := recover(); rec != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s extractor failed on %s: %v", extractor.Ecosystem(), src.Path, rec))
		}
	}()

	if ce, ok := extractor.(ContainerExtractor); ok {
		for _, c := range ce.ExtractContainers(src) {
			result.Elements = append(result.Elements, c)
		}
	}
	for _, ep := range extractor.ExtractEndpoints(src) {
		result.Elements = append(result.Elements, ep)
	}
	for _, svc := range extractor.ExtractServices(src) {
		result.Elements = append(result.Elements, svc)
	}
	for _, m := range extractor.ExtractModels(src) {
		result.Elements = append(result.Elements, m)
	}

	sort.SliceStable(result.Elements, func(i, j int) bool {
		return result.Elements[i].Base().StartLine < result.Elements[j].Base().StartLine
	})
	return result
}
