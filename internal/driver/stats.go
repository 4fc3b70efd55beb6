package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-jsonschema/normalize/internal/jsonvalue"
)

// StatsReport is the blow-up comparison between unnormalized and normalized
// schemas, matching analysis.Analyser.detailedStats's printed figures.
type StatsReport struct {
	SingleFileCount          int
	DistributedFileCount     int
	AvgLoCSingleFile         int
	AvgLoCSingleFileNorm     int
	AvgLoCDistributedFile    int
	AvgLoCDistributedFileNorm int
	AvgLoCOverall            int
	AvgLoCOverallNorm        int
	BlowUpSingleFile         float64
	BlowUpDistributedFile    float64
	BlowUpOverall            float64
}

// Stats compares line counts between unnormalizedDir and normalizedDir,
// classifying each schema as single-file or distributed by whether its
// normalized form gained a top-level "definitions" map (meaning some
// external content was inlined into it), matching
// Analyser.separateSchemasByType + Analyser.detailedStats.
func Stats(unnormalizedDir, normalizedDir string) (StatsReport, error) {
	entries, err := os.ReadDir(normalizedDir)
	if err != nil {
		return StatsReport{}, fmt.Errorf("read normalized dir %s: %w", normalizedDir, err)
	}

	var totalLocSingle, totalLocSingleNorm int
	var totalLocDist, totalLocDistNorm int
	var singleCount, distCount int

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		original := originalFileName(e.Name())
		origPath := filepath.Join(unnormalizedDir, original)
		normPath := filepath.Join(normalizedDir, e.Name())

		origDoc, err := readJSON(origPath)
		if err != nil {
			continue
		}
		normDoc, err := readJSON(normPath)
		if err != nil {
			continue
		}

		origLoc, err := countRowsJSON(origPath)
		if err != nil {
			continue
		}
		normLoc, err := countRowsJSON(normPath)
		if err != nil {
			continue
		}

		if isDistributed(origDoc, normDoc) {
			distCount++
			totalLocDist += origLoc
			totalLocDistNorm += normLoc
		} else {
			singleCount++
			totalLocSingle += origLoc
			totalLocSingleNorm += normLoc
		}
	}

	if singleCount == 0 || distCount == 0 {
		return StatsReport{}, fmt.Errorf("stats: need at least one single-file and one distributed schema, got %d and %d", singleCount, distCount)
	}

	report := StatsReport{
		SingleFileCount:           singleCount,
		DistributedFileCount:      distCount,
		AvgLoCSingleFile:          totalLocSingle / singleCount,
		AvgLoCSingleFileNorm:      totalLocSingleNorm / singleCount,
		AvgLoCDistributedFile:     totalLocDist / distCount,
		AvgLoCDistributedFileNorm: totalLocDistNorm / distCount,
	}
	report.AvgLoCOverall = (totalLocDist + totalLocSingle) / (singleCount + distCount)
	report.AvgLoCOverallNorm = (totalLocDistNorm + totalLocSingleNorm) / (singleCount + distCount)
	report.BlowUpSingleFile = blowUp(report.AvgLoCSingleFile, report.AvgLoCSingleFileNorm)
	report.BlowUpDistributedFile = blowUp(report.AvgLoCDistributedFile, report.AvgLoCDistributedFileNorm)
	report.BlowUpOverall = blowUp(report.AvgLoCOverall, report.AvgLoCOverallNorm)
	return report, nil
}

func blowUp(base, value int) float64 {
	if base == 0 {
		return 0
	}
	return float64(value)/float64(base) - 1
}

// isDistributed reports whether normalization added a "definitions" map
// absent from the original — the observable signature of an external $ref
// having been inlined.
func isDistributed(original, normalized *jsonvalue.Value) bool {
	return !original.Get("definitions").IsObject() && normalized.Get("definitions").IsObject()
}

func originalFileName(normalizedName string) string {
	ext := filepath.Ext(normalizedName)
	base := normalizedName[:len(normalizedName)-len(ext)]
	const suffix = "_Normalized"
	if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
		base = base[:len(base)-len(suffix)]
	}
	return base + ext
}

func readJSON(path string) (*jsonvalue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jsonvalue.Unmarshal(data)
}

// countRowsJSON re-encodes path with the same two-space pretty printer the
// driver writes normalized output with, then counts its lines — matching
// Analyser.countRowsJSON's use of a pretty printer as the LoC yardstick, so
// "lines" is a stable structural proxy rather than however the input file
// happened to be formatted.
func countRowsJSON(path string) (int, error) {
	doc, err := readJSON(path)
	if err != nil {
		return 0, err
	}
	var buf bytes.Buffer
	if err := jsonvalue.Encode(&buf, doc, "  "); err != nil {
		return 0, err
	}

	scanner := bufio.NewScanner(&buf)
	count := 0
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
