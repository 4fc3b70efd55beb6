package driver

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-jsonschema/normalize/internal/jsonvalue"
	"github.com/go-jsonschema/normalize/internal/recursion"
)

// Classify runs recursion classification over every already-normalized
// file in dir, writing the same CSV report shape Analyse produces but
// without a normalization pass, for the CLI's standalone "recursion"
// subcommand (a normalized corpus checked without re-fetching anything).
func Classify(dir string, metrics *Metrics, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Summary{}, fmt.Errorf("read directory %s: %w", dir, err)
	}

	reportPath := "recursion_" + filepath.Base(filepath.Clean(dir)) + ".csv"
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
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		sum.Total++
		if metrics != nil {
			metrics.SchemasProcessed.Inc()
		}

		row := classifyOne(dir, e.Name(), logger)
		tallyRow(&sum, row, metrics)
		if err := w.Write(row); err != nil {
			return sum, fmt.Errorf("write report row for %s: %w", e.Name(), err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return sum, fmt.Errorf("flush report %s: %w", reportPath, err)
	}

	logger.Info("recursion classification complete",
		"total", sum.Total, "recursive", sum.Recursive,
		"unguarded_recursive", sum.UnguardedRecursive, "illegal_draft", sum.IllegalDraft)
	return sum, nil
}

func classifyOne(dir, name string, logger *slog.Logger) []string {
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

	classification, err := recursion.CheckRecursion(doc)
	if err != nil {
		row[3] = "TRUE"
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
