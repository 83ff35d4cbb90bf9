package scanconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"photo-index/internal/logging"
)

// DefaultExcludePatterns is the built-in exclusion set used when no
// configuration document exists. Any directory whose path contains one of
// these as a substring is pruned from traversal.
var DefaultExcludePatterns = []string{
	// System directories
	"Library",
	"System",
	"private",
	".Trash",

	// Cloud storage placeholders (stat can block on network I/O)
	"Library/CloudStorage",
	"Dropbox",
	"dropboxa",

	// Photos app library (contains internal cached duplicates)
	"Photos Library.photoslibrary",
	".photoslibrary",

	// Development directories
	"node_modules",
	".git",
	".vscode",
	".cursor",
	"vendor",
	"build",
	"dist",
	"__pycache__",
	".pytest_cache",

	// Hidden app directories
	".local",
	".config",
	".cache",
	".npm",
	".nvm",
	".pyenv",
	".conda",

	// Our own generated files
	"thumbnails",
	"waveforms",
}

// Config holds the scan configuration document. Exclusion patterns are
// plain case-sensitive substrings, not globs. The config is loaded once
// and passed by value into each scan; changes take effect on the next run.
type Config struct {
	ScanPaths          []string `mapstructure:"scan_paths" json:"scan_paths"`
	ExcludePatterns    []string `mapstructure:"exclude_patterns" json:"exclude_patterns"`
	AdditionalExcludes []string `mapstructure:"additional_excludes" json:"additional_excludes"`
}

// Load reads the scan configuration from the given path. A missing file is
// not an error: the built-in default exclusion set is returned instead.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logging.Info("No scan config at %s, using %d built-in exclude patterns",
			path, len(DefaultExcludePatterns))
		return &Config{ExcludePatterns: append([]string(nil), DefaultExcludePatterns...)}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read scan config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scan config %s: %w", path, err)
	}

	logging.Info("Loaded %d exclude patterns from %s", len(cfg.Patterns()), path)
	return &cfg, nil
}

// Save persists the configuration document as JSON.
func Save(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.Set("scan_paths", cfg.ScanPaths)
	v.Set("exclude_patterns", cfg.ExcludePatterns)
	v.Set("additional_excludes", cfg.AdditionalExcludes)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write scan config %s: %w", path, err)
	}
	return nil
}

// Patterns returns the union of the configured exclusion patterns.
func (c *Config) Patterns() []string {
	seen := make(map[string]bool, len(c.ExcludePatterns)+len(c.AdditionalExcludes))
	var patterns []string
	for _, set := range [][]string{c.ExcludePatterns, c.AdditionalExcludes} {
		for _, p := range set {
			if p == "" || seen[p] {
				continue
			}
			seen[p] = true
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// ShouldSkipDir reports whether the directory should be pruned from
// traversal. A directory is skipped iff any configured pattern is a
// substring of its path. Matching is case-sensitive with no anchoring.
func (c *Config) ShouldSkipDir(dirPath string) bool {
	for _, set := range [][]string{c.ExcludePatterns, c.AdditionalExcludes} {
		for _, p := range set {
			if p != "" && strings.Contains(dirPath, p) {
				return true
			}
		}
	}
	return false
}
