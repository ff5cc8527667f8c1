package config

// Config represents the complete srclens configuration.
// It can be loaded from .srclens/config.yml with environment variable overrides.
type Config struct {
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`
	Scan  ScanConfig  `yaml:"scan" mapstructure:"scan"`
	Cache CacheConfig `yaml:"cache" mapstructure:"cache"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// ScanConfig bounds the workspace scan.
type ScanConfig struct {
	Workers       int `yaml:"workers" mapstructure:"workers"`                   // 0 means one per CPU
	MaxFileSizeKB int `yaml:"max_file_size_kb" mapstructure:"max_file_size_kb"` // larger files are skipped
}

// CacheConfig defines the disk-backed result cache behavior.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Location string `yaml:"location" mapstructure:"location"` // Override default .srclens/cache.db
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.java",
				"**/*.ts",
				"**/*.tsx",
				"**/*.py",
			},
			Ignore: []string{
				"node_modules/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
				"venv/**",
				".venv/**",
				"*.d.ts",
			},
		},
		Scan: ScanConfig{
			Workers:       0,
			MaxFileSizeKB: 1024,
		},
		Cache: CacheConfig{
			Enabled:  true,
			Location: "", // Empty means .srclens/cache.db under the root
		},
	}
}
