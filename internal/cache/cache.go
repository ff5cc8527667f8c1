// Package cache persists parse results between sessions so unchanged
// files skip re-extraction. Rows are keyed by file path and invalidated
// by content hash; a missing or corrupt cache degrades to a full scan.
package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/srclens/srclens/internal/elements"
)

const schema = `
CREATE TABLE IF NOT EXISTS parse_results (
	path         TEXT PRIMARY KEY,
	content_hash TEXT NOT NULL,
	scan_id      TEXT NOT NULL,
	result       TEXT NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_parse_results_scan ON parse_results(scan_id);
`

// Cache is a disk-backed store of per-file parse results.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// resultPayload is the stored form of a ParseResult. Elements are held
// per concrete type so they survive the JSON round trip.
type resultPayload struct {
	Ecosystem  string                       `json:"ecosystem"`
	Containers []*elements.ContainerElement `json:"containers,omitempty"`
	Endpoints  []*elements.EndpointElement  `json:"endpoints,omitempty"`
	Services   []*elements.ServiceElement   `json:"services,omitempty"`
	Models     []*elements.ModelElement     `json:"models,omitempty"`
	Errors     []string                     `json:"errors,omitempty"`
}

// Get returns the cached result for path if the stored content hash
// still matches. A corrupt row is dropped and reported as a miss.
func (c *Cache) Get(path, contentHash string) (*elements.ParseResult, bool) {
	var storedHash, raw string
	err := c.db.QueryRow(
		`SELECT content_hash, result FROM parse_results WHERE path = ?`, path,
	).Scan(&storedHash, &raw)
	if err != nil {
		return nil, false
	}
	if storedHash != contentHash {
		return nil, false
	}

	var payload resultPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		_ = c.Delete(path)
		return nil, false
	}

	result := &elements.ParseResult{
		Ecosystem: payload.Ecosystem,
		FilePath:  path,
		Errors:    payload.Errors,
	}
	for _, el := range payload.Containers {
		result.Elements = append(result.Elements, el)
	}
	for _, el := range payload.Endpoints {
		result.Elements = append(result.Elements, el)
	}
	for _, el := range payload.Services {
		result.Elements = append(result.Elements, el)
	}
	for _, el := range payload.Models {
		result.Elements = append(result.Elements, el)
	}
	sort.SliceStable(result.Elements, func(i, j int) bool {
		return result.Elements[i].Base().StartLine < result.Elements[j].Base().StartLine
	})
	return result, true
}

// Put stores result for path, replacing any previous row.
func (c *Cache) Put(path, contentHash, scanID string, result *elements.ParseResult) error {
	payload := resultPayload{
		Ecosystem: result.Ecosystem,
		Errors:    result.Errors,
	}
	for _, el := range result.Elements {
		switch v := el.(type) {
		case *elements.ContainerElement:
			payload.Containers = append(payload.Containers, v)
		case *elements.EndpointElement:
			payload.Endpoints = append(payload.Endpoints, v)
		case *elements.ServiceElement:
			payload.Services = append(payload.Services, v)
		case *elements.ModelElement:
			payload.Models = append(payload.Models, v)
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode result for %s: %w", path, err)
	}

	_, err = c.db.Exec(`
		INSERT INTO parse_results (path, content_hash, scan_id, result, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			content_hash = excluded.content_hash,
			scan_id = excluded.scan_id,
			result = excluded.result,
			updated_at = excluded.updated_at`,
		path, contentHash, scanID, string(raw), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to store result for %s: %w", path, err)
	}
	return nil
}

// Delete removes the row for path.
func (c *Cache) Delete(path string) error {
	_, err := c.db.Exec(`DELETE FROM parse_results WHERE path = ?`, path)
	return err
}

// Purge removes every cached row.
func (c *Cache) Purge() error {
	_, err := c.db.Exec(`DELETE FROM parse_results`)
	return err
}

// Len returns the number of cached rows.
func (c *Cache) Len() (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM parse_results`).Scan(&n)
	return n, err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
