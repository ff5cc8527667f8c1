package config

import (
	"fmt"

	"github.com/gobwas/glob"
)

// Validate checks that a configuration is usable.
func Validate(cfg *Config) error {
	if len(cfg.Paths.Include) == 0 {
		return fmt.Errorf("paths.include must list at least one pattern")
	}
	for _, pattern := range append(append([]string{}, cfg.Paths.Include...), cfg.Paths.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	}
	if cfg.Scan.Workers < 0 {
		return fmt.Errorf("scan.workers must be >= 0, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.MaxFileSizeKB <= 0 {
		return fmt.Errorf("scan.max_file_size_kb must be > 0, got %d", cfg.Scan.MaxFileSizeKB)
	}
	return nil
}
