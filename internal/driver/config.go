package driver

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the driver's one static install-time file: where the fetch
// cache lives and which cleanup checks run before normalization. It is
// distinct from a corpus's YAML rewrite rules (internal/fetchcache.Rewriter),
// which change per-dataset rather than per-install. Grounded on
// rivaas-dev-rivaas/binding's support for TOML as a first-class bind format.
type Config struct {
	CacheDir       string `toml:"cache_dir"`
	CacheIndexPath string `toml:"cache_index_path"`
	Cleanup        CleanupConfig `toml:"cleanup"`
}

// CleanupConfig toggles the checks CleanDirectory runs before a directory
// is normalized.
type CleanupConfig struct {
	RemoveInvalidJSON bool `toml:"remove_invalid_json"`
	RemoveDuplicates  bool `toml:"remove_duplicates"`
}

// DefaultConfig mirrors the historical layout: a "Store" directory and
// "UriOfFiles.csv" index, both relative to the working directory, and both
// cleanup checks enabled.
func DefaultConfig() Config {
	return Config{
		CacheDir:       "Store",
		CacheIndexPath: "UriOfFiles.csv",
		Cleanup: CleanupConfig{
			RemoveInvalidJSON: true,
			RemoveDuplicates:  true,
		},
	}
}

// LoadConfig reads a TOML config file at path, falling back to
// DefaultConfig when path does not exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}
