package corpus

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	joerrors "github.com/go-jsonschema/normalize/errors"
	"github.com/go-jsonschema/normalize/internal/draftmodel"
	"github.com/go-jsonschema/normalize/internal/fetchcache"
	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/normalizer"
	"github.com/go-jsonschema/normalize/internal/recursion"
)

// Summary tallies one Normalize run's outcome, matching
// SchemaCorpus.analyse's console counters.
type Summary struct {
	Total              int
	Recursive          int
	UnguardedRecursive int
	InvalidReference   int
	IllegalDraft       int
}

var csvHeader = []string{"name", "recursiv", "unguarded_recursiv", "invalid_reference", "illegal_draft"}

// Normalize walks every non-deleted repos_fullpath entry, normalizing the
// schema file it names (found under corpusDir, per SchemaFileName) against
// the given loader with RepositoryKind Corpus, and writes the same
// analysis CSV report shape internal/driver.Analyse produces, matching
// SchemaCorpus.analyse.
func Normalize(ctx context.Context, corpusDir string, index []Entry, loader *fetchcache.Loader, allowRemote bool, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	normalizedDir := "Normalized_" + filepath.Base(filepath.Clean(corpusDir))
	if err := os.MkdirAll(normalizedDir, 0o755); err != nil {
		return Summary{}, fmt.Errorf("create normalized dir %s: %w", normalizedDir, err)
	}

	reportPath := "analysis_" + filepath.Base(filepath.Clean(corpusDir)) + ".csv"
	report, err := os.Create(reportPath)
	if err != nil {
		return Summary{}, fmt.Errorf("create report %s: %w", reportPath, err)
	}
	defer report.Close()

	w := csv.NewWriter(report)
	if err := w.Write(csvHeader); err != nil {
		return Summary{}, fmt.Errorf("write report header: %w", err)
	}

	var sum Summary
	for _, entry := range index {
		if entry.Deleted {
			continue
		}
		sum.Total++

		fileName := SchemaFileName(entry.File)
		row := normalizeOne(ctx, corpusDir, normalizedDir, fileName, entry.URL, loader, allowRemote, logger)
		tally(&sum, row)
		if err := w.Write(row); err != nil {
			return sum, fmt.Errorf("write report row for %s: %w", fileName, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return sum, fmt.Errorf("flush report %s: %w", reportPath, err)
	}

	logger.Info("corpus normalization complete",
		"total", sum.Total, "recursive", sum.Recursive,
		"unguarded_recursive", sum.UnguardedRecursive,
		"invalid_reference", sum.InvalidReference, "illegal_draft", sum.IllegalDraft)
	return sum, nil
}

func normalizeOne(ctx context.Context, corpusDir, normalizedDir, fileName, url string, loader *fetchcache.Loader, allowRemote bool, logger *slog.Logger) []string {
	row := []string{fileName, "", "", "", ""}
	path := filepath.Join(corpusDir, fileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return row // absent from the corpus on disk: SchemaCorpus.analyse skips silently
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

	out, err := normalizer.Normalize(ctx, doc, url, normalizer.Options{
		AllowRemote:    allowRemote,
		RepositoryKind: fetchcache.Corpus,
		Loader:         loader,
	})
	if err != nil {
		if joerrors.Is(err, joerrors.InvalidReference) || joerrors.Is(err, joerrors.InvalidFragment) {
			row[3] = "TRUE"
			return row
		}
		logger.Warn("normalize failed", "file", fileName, "error", err)
		return row
	}

	outPath := filepath.Join(normalizedDir, fileName)
	if f, err := os.Create(outPath); err == nil {
		_ = jsonvalue.Encode(f, out, "  ")
		f.Close()
	}

	classification, err := recursion.CheckRecursion(out)
	if err != nil {
		logger.Error("recursion analysis failed", "file", fileName, "error", err)
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

func tally(sum *Summary, row []string) {
	if row[1] == "TRUE" {
		sum.Recursive++
	}
	if row[2] == "TRUE" {
		sum.UnguardedRecursive++
	}
	if row[3] == "TRUE" {
		sum.InvalidReference++
	}
	if row[4] == "TRUE" {
		sum.IllegalDraft++
	}
}
