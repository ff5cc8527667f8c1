package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/srclens/srclens/internal/cache"
	"github.com/srclens/srclens/internal/config"
	"github.com/srclens/srclens/internal/index"
)

// openWorkspace loads configuration for the current directory, opens the
// parse cache when enabled, and builds the workspace index.
// The returned cache may be nil; callers must Close it when non-nil.
func openWorkspace(ctx context.Context, reporter index.ProgressReporter) (*index.Manager, *cache.Cache, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var resultCache *cache.Cache
	if cfg.Cache.Enabled {
		location := cfg.Cache.Location
		if location == "" {
			location = filepath.Join(rootDir, ".srclens", "cache.db")
		}
		resultCache, err = cache.Open(location)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open parse cache: %w", err)
		}
	}

	manager := index.NewManager(cfg, resultCache)
	if _, err := manager.Initialize(ctx, rootDir, reporter); err != nil {
		manager.Dispose()
		if resultCache != nil {
			resultCache.Close()
		}
		return nil, nil, fmt.Errorf("failed to build index: %w", err)
	}

	return manager, resultCache, nil
}

func closeWorkspace(manager *index.Manager, resultCache *cache.Cache) {
	manager.Dispose()
	if resultCache != nil {
		resultCache.Close()
	}
}
