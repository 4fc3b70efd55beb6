// Package driver implements the batch CLI-facing operations spec.md §1
// scopes out of the normalizer/recursion core: directory-wide normalization,
// the recursion CSV report, blow-up statistics, and pre-run cleanup.
// Grounded on analysis.Analyser.java, analysis.DirNormalizer.java, and
// analysis.SchemaCorpus.java.
package driver

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/draftmodel"
	"github.com/go-jsonschema/normalize/internal/fetchcache"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/normalizer"
	"github.com/go-jsonschema/normalize/internal/recursion"
)

// Options configures one Analyse run.
type Options struct {
	AllowRemote    bool
	RepositoryKind fetchcache.RepositoryKind
	Loader         *fetchcache.Loader
	// Pattern selects which files in dir are analyzed, matched against
	// the file's base name with doublestar. Empty means "*" (every
	// regular file).
	Pattern string
}

// Summary is the console-facing tally Analyser.analyse logs at the end of a
// run, matching spec.md §6's counters exactly.
type Summary struct {
	Total              int
	Recursive          int
	UnguardedRecursive int
	InvalidReference   int
	IllegalDraft       int
}

// csvHeader is spec.md §6's fixed report header.
var csvHeader = []string{"name", "recursiv", "unguarded_recursiv", "invalid_reference", "illegal_draft"}

// Analyse normalizes every file in dir into normalizedDir, classifies each
// result for recursion, and writes a "analysis_<dir>.csv" report row per
// input file, matching analysis.Analyser.analyse / analysis.DirNormalizer.
func Analyse(ctx context.Context, dir, normalizedDir string, opts Options, metrics *Metrics, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("read directory %s: %w", dir, err)
	}
	if err := os.MkdirAll(normalizedDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create normalized dir %s: %w", normalizedDir, err)
	}

	reportPath := "analysis_" + filepath.Base(filepath.Clean(dir)) + ".csv"
	report, err := os.Create(reportPath)
	if err != nil {
		return Summary{}, fmt.Errorf("create report %s: %w", reportPath, err)
	}
	defer report.Close()

	w := csv.NewWriter(report)
	if err := w.Write(csvHeader); err != nil {
		return Summary{}, fmt.Errorf("write report header: %w", err)
	}

	pattern := opts.Pattern
	if pattern == "" {
		pattern = "*"
	}

	var sum Summary
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if matched, err := doublestar.Match(pattern, e.Name()); err != nil || !matched {
			continue
		}
		sum.Total++
		if metrics != nil {
			metrics.SchemasProcessed.Inc()
		}

		row := analyseOne(ctx, dir, normalizedDir, e.Name(), opts, logger)
		tallyRow(&sum, row, metrics)
		if err := w.Write(row); err != nil {
			return sum, fmt.Errorf("write report row for %s: %w", e.Name(), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return sum, fmt.Errorf("flush report %s: %w", reportPath, err)
	}

	logger.Info("normalization complete",
		"total", sum.Total, "recursive", sum.Recursive,
		"unguarded_recursive", sum.UnguardedRecursive,
		"invalid_reference", sum.InvalidReference, "illegal_draft", sum.IllegalDraft)
	return sum, nil
}

// analyseOne processes one file and returns its CSV row: [name, recursiv,
// unguarded_recursiv, invalid_reference, illegal_draft].
func analyseOne(ctx context.Context, dir, normalizedDir, name string, opts Options, logger *slog.Logger) []string {
	row := []string{name, "", "", "", ""}
	path := filepath.Join(dir, name)

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("read schema failed", "file", name, "error", err)
		row[4] = "TRUE"
		return row
	}
	doc, err := jsonvalue.Unmarshal(data)
	if err != nil || !doc.IsObject() {
		row[4] = "TRUE"
		return row
	}
	if err := draftmodel.ValidateStructure(doc); err != nil {
		row[4] = "TRUE"
		return row
	}

	baseID := "file://" + filepath.ToSlash(mustAbs(path))
	out, err := normalizer.Normalize(ctx, doc, baseID, normalizer.Options{
		AllowRemote:    opts.AllowRemote,
		RepositoryKind: opts.RepositoryKind,
		Loader:         opts.Loader,
	})
	if err != nil {
		if joerrors.Is(err, joerrors.InvalidReference) || joerrors.Is(err, joerrors.InvalidFragment) {
			row[3] = "TRUE"
			return row
		}
		logger.Warn("normalize failed", "file", name, "error", err)
		return row
	}

	if err := writeNormalized(normalizedDir, name, out); err != nil {
		logger.Warn("write normalized schema failed", "file", name, "error", err)
	}

	classification, err := recursion.CheckRecursion(out)
	if err != nil {
		logger.Error("recursion analysis failed", "file", name, "error", err)
		return row
	}
	if classification != recursion.None {
		row[1] = "TRUE"
		if classification == recursion.Recursion {
			row[2] = "TRUE"
		}
	}
	return row
}

func tallyRow(sum *Summary, row []string, metrics *Metrics) {
	if row[1] == "TRUE" {
		sum.Recursive++
		if metrics != nil {
			metrics.SchemasRecursive.Inc()
		}
	}
	if row[2] == "TRUE" {
		sum.UnguardedRecursive++
		if metrics != nil {
			metrics.SchemasUnguarded.Inc()
		}
	}
	if row[3] == "TRUE" {
		sum.InvalidReference++
		if metrics != nil {
			metrics.InvalidReferences.Inc()
		}
	}
	if row[4] == "TRUE" {
		sum.IllegalDraft++
		if metrics != nil {
			metrics.IllegalDrafts.Inc()
		}
	}
}

// normalizedFileName mirrors util.SchemaUtil.getNormalizedFileName: the
// extension is preserved, "_Normalized" is inserted before it.
func normalizedFileName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	return base + "_Normalized" + ext
}

func writeNormalized(dir, name string, doc *jsonvalue.Value) error {
	path := filepath.Join(dir, normalizedFileName(name))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return jsonvalue.Encode(f, doc, "  ")
}

func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
