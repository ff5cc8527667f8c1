// Package index owns the session-scoped workspace aggregate: a map of
// file path to parse result, built by a full-tree scan and mutated only
// through whole-file replacement.
package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/srclens/srclens/internal/cache"
	"github.com/srclens/srclens/internal/config"
	"github.com/srclens/srclens/internal/elements"
	"github.com/srclens/srclens/internal/extractors"
)

// Stats summarizes an index build.
type Stats struct {
	Endpoints    int           `json:"endpoints"`
	Services     int           `json:"services"`
	Models       int           `json:"models"`
	Containers   int           `json:"containers"`
	FilesScanned int           `json:"files_scanned"`
	FailedFiles  int           `json:"failed_files"`
	Duration     time.Duration `json:"duration"`
}

// Manager owns the workspace index for one session. Entries are replaced
// atomically as whole units; a failed scan of one file never touches the
// entries of any other file.
type Manager struct {
	sessionID string
	cfg       *config.Config
	registry  *extractors.Registry
	cache     *cache.Cache // nil when the disk cache is disabled

	mu      sync.RWMutex
	rootDir string
	files   map[string]*elements.ParseResult
	failed  map[string]string
}

// NewManager creates a manager with a fresh session identity.
// resultCache may be nil; the manager then always extracts from source.
func NewManager(cfg *config.Config, resultCache *cache.Cache) *Manager {
	return &Manager{
		sessionID: uuid.NewString(),
		cfg:       cfg,
		registry:  extractors.NewRegistry(),
		cache:     resultCache,
		files:     make(map[string]*elements.ParseResult),
		failed:    make(map[string]string),
	}
}

// SessionID returns the identity of this index session.
func (m *Manager) SessionID() string { return m.sessionID }

// Root returns the workspace root of the last Initialize call.
func (m *Manager) Root() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rootDir
}

// CanHandle reports whether any extractor is registered for the path.
func (m *Manager) CanHandle(path string) bool { return m.registry.CanHandle(path) }

// SupportedExtensions returns the extensions the registry dispatches on.
func (m *Manager) SupportedExtensions() []string { return m.registry.SupportedExtensions() }

// Initialize performs a full-tree build of the workspace at rootDir,
// fanning file scans across a worker pool. Rerunning it rebuilds the
// index from scratch. Cancelling ctx abandons the build; entries
// committed before cancellation are kept.
func (m *Manager) Initialize(ctx context.Context, rootDir string, reporter ProgressReporter) (*Stats, error) {
	if reporter == nil {
		reporter = &NoOpProgressReporter{}
	}
	start := time.Now()

	discovery, err := NewFileDiscovery(rootDir, m.cfg.Paths.Include, m.cfg.Paths.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to compile discovery patterns: %w", err)
	}

	reporter.OnDiscoveryStart()
	discovered, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	paths := discovered[:0]
	for _, p := range discovered {
		if m.registry.CanHandle(p) {
			paths = append(paths, p)
		}
	}
	reporter.OnDiscoveryComplete(len(paths))

	m.mu.Lock()
	m.rootDir = rootDir
	m.files = make(map[string]*elements.ParseResult)
	m.failed = make(map[string]string)
	m.mu.Unlock()

	reporter.OnScanStart(len(paths))

	workers := m.cfg.Scan.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for relPath := range jobs {
				m.scanAndCommit(rootDir, relPath)
				reporter.OnFileScanned(relPath)
			}
		}()
	}

feed:
	for _, relPath := range paths {
		select {
		case jobs <- relPath:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := m.Counts()
	stats.Duration = time.Since(start)
	reporter.OnComplete(stats)
	log.Printf("Indexed %d files in %v (%d endpoints, %d services, %d models)",
		stats.FilesScanned, stats.Duration, stats.Endpoints, stats.Services, stats.Models)
	return stats, nil
}

// scanAndCommit scans one file and replaces its entry. Faults are
// isolated: they mark only this file as failed.
func (m *Manager) scanAndCommit(rootDir, relPath string) {
	result, err := m.scanFile(rootDir, relPath)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.failed[relPath] = err.Error()
		return
	}
	if result != nil {
		m.files[relPath] = result
		delete(m.failed, relPath)
	}
}

// scanFile reads and parses one file. A nil result with nil error means
// the file was deliberately skipped.
func (m *Manager) scanFile(rootDir, relPath string) (*elements.ParseResult, error) {
	absPath := filepath.Join(rootDir, filepath.FromSlash(relPath))

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat failed: %w", err)
	}
	if maxBytes := int64(m.cfg.Scan.MaxFileSizeKB) * 1024; info.Size() > maxBytes {
		log.Printf("Skipping %s: %d bytes exceeds limit of %d", relPath, info.Size(), maxBytes)
		return nil, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}

	hash := contentHash(content)
	if m.cache != nil {
		if cached, ok := m.cache.Get(relPath, hash); ok {
			return cached, nil
		}
	}

	result := m.registry.Parse(content, relPath)
	for _, msg := range result.Errors {
		log.Printf("Warning: %s", msg)
	}

	if m.cache != nil {
		if err := m.cache.Put(relPath, hash, m.sessionID, result); err != nil {
			log.Printf("Warning: failed to cache result for %s: %v", relPath, err)
		}
	}
	return result, nil
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ReindexFile rescans a single file and wholesale-replaces its entry.
// A deleted file drops out of the index. The scan runs outside the
// index lock so it never blocks an in-flight build beyond the commit.
func (m *Manager) ReindexFile(path string) error {
	relPath, err := m.relativize(path)
	if err != nil {
		return err
	}
	if !m.registry.CanHandle(relPath) {
		return nil
	}

	m.mu.RLock()
	rootDir := m.rootDir
	m.mu.RUnlock()

	absPath := filepath.Join(rootDir, filepath.FromSlash(relPath))
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		m.mu.Lock()
		delete(m.files, relPath)
		delete(m.failed, relPath)
		m.mu.Unlock()
		if m.cache != nil {
			if err := m.cache.Delete(relPath); err != nil {
				log.Printf("Warning: failed to evict cache row for %s: %v", relPath, err)
			}
		}
		return nil
	}

	m.scanAndCommit(rootDir, relPath)

	m.mu.RLock()
	defer m.mu.RUnlock()
	if msg, ok := m.failed[relPath]; ok {
		return fmt.Errorf("reindex of %s failed: %s", relPath, msg)
	}
	return nil
}

// relativize converts path to the root-relative slash form used as the
// index key. Already-relative paths pass through unchanged.
func (m *Manager) relativize(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	m.mu.RLock()
	rootDir := m.rootDir
	m.mu.RUnlock()
	rel, err := filepath.Rel(rootDir, path)
	if err != nil {
		return "", fmt.Errorf("path %s is outside workspace %s: %w", path, rootDir, err)
	}
	return filepath.ToSlash(rel), nil
}

// QueryAt returns the innermost element whose span covers line, or nil.
func (m *Manager) QueryAt(path string, line int) elements.Element {
	relPath, err := m.relativize(path)
	if err != nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.files[relPath]
	if !ok {
		return nil
	}

	var best elements.Element
	bestSpan := -1
	for _, el := range result.Elements {
		base := el.Base()
		if !base.Contains(line) {
			continue
		}
		span := base.EndLine - base.StartLine
		if best == nil || span < bestSpan {
			best = el
			bestSpan = span
		}
	}
	return best
}

// ElementsIn returns the elements extracted from one file, in start-line
// order. The returned slice is the caller's to keep.
func (m *Manager) ElementsIn(path string) []elements.Element {
	relPath, err := m.relativize(path)
	if err != nil {
		return nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.files[relPath]
	if !ok {
		return nil
	}
	out := make([]elements.Element, len(result.Elements))
	copy(out, result.Elements)
	return out
}

// Counts returns aggregate element counts by kind.
func (m *Manager) Counts() *Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &Stats{
		FilesScanned: len(m.files),
		FailedFiles:  len(m.failed),
	}
	for _, result := range m.files {
		for _, el := range result.Elements {
			switch el.Base().Kind {
			case elements.KindEndpoint:
				stats.Endpoints++
			case elements.KindService:
				stats.Services++
			case elements.KindModel:
				stats.Models++
			case elements.KindContainer:
				stats.Containers++
			}
		}
	}
	return stats
}

// FailedFiles returns the per-file error messages of the last build.
func (m *Manager) FailedFiles() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.failed))
	for k, v := range m.failed {
		out[k] = v
	}
	return out
}

// Snapshot returns the current per-file results ordered by path.
func (m *Manager) Snapshot() []*elements.ParseResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*elements.ParseResult, 0, len(m.files))
	for _, result := range m.files {
		out = append(out, result)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FilePath < out[j].FilePath })
	return out
}

// Dispose tears the session down and releases extractor resources.
func (m *Manager) Dispose() {
	m.mu.Lock()
	m.files = make(map[string]*elements.ParseResult)
	m.failed = make(map[string]string)
	m.mu.Unlock()
	m.registry.Close()
}
