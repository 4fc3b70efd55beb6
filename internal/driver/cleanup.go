package driver

import (
	"crypto/sha256"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

// CleanDirectory drops files that can't possibly be normalized (not valid
// JSON, or not an object at the top level) and, if enabled, byte-identical
// duplicates, before a batch normalization run touches the directory.
//
// Grounded on DirNormalizer.normalize's call to a DirCleaner not present in
// the retrieved original source; reconstructed from its call site
// (cleaner.removeNoValidSchemas(dir) runs before normalization) plus
// SchemaCorpus.java's removeDuplicateSchemas, which the same package
// exposes for the corpus-cleanup pass.
func CleanDirectory(dir string, cfg CleanupConfig, logger *slog.Logger) (removed int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]string) // content digest -> first file kept
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())

		if cfg.RemoveInvalidJSON {
			ok, err := isNormalizableSchema(path)
			if err != nil {
				logger.Warn("cleanup: read failed", "file", path, "error", err)
				continue
			}
			if !ok {
				if err := os.Remove(path); err != nil {
					logger.Warn("cleanup: remove failed", "file", path, "error", err)
					continue
				}
				logger.Info("cleanup: removed invalid schema", "file", path)
				removed++
				continue
			}
		}

		if cfg.RemoveDuplicates {
			digest, err := fileDigest(path)
			if err != nil {
				logger.Warn("cleanup: digest failed", "file", path, "error", err)
				continue
			}
			if first, dup := seen[digest]; dup {
				if err := os.Remove(path); err != nil {
					logger.Warn("cleanup: remove duplicate failed", "file", path, "error", err)
					continue
				}
				logger.Info("cleanup: removed duplicate schema", "file", path, "kept", first)
				removed++
				continue
			}
			seen[digest] = path
		}
	}
	return removed, nil
}

// isNormalizableSchema reports whether path parses as JSON with an object at
// the top level — the minimum shape SchemaFile.Load requires before draft
// detection is even attempted.
func isNormalizableSchema(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	doc, err := jsonvalue.Unmarshal(data)
	if err != nil {
		return false, nil
	}
	return doc.IsObject(), nil
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return string(h.Sum(nil)), nil
}
