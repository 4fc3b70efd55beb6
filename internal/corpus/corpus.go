// Package corpus drives normalization over the JSON Schema Corpus dataset's
// repos_fullpath index file, grounded on analysis.SchemaCorpus.java.
package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Entry is one row of a repos_fullpath index: a local file name paired with
// the URL it was originally fetched from, or the "deleted" sentinel if the
// entry has since been dropped from the corpus.
type Entry struct {
	File    string
	URL     string
	Deleted bool
}

// deletedSentinel matches SchemaCorpus.java's literal marker value.
const deletedSentinel = "deleted"

// LoadIndex parses a repos_fullpath file: "file url" rows split at the
// first space, no header, matching CSVUtil.loadCSV(fullPath, ' ', false)'s format.
func LoadIndex(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("index %s line %d: expected \"file url\", got %q", path, lineNo, line)
		}
		entries = append(entries, Entry{
			File:    fields[0],
			URL:     fields[1],
			Deleted: fields[1] == deletedSentinel,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index %s: %w", path, err)
	}
	return entries, nil
}

// SchemaFileName renders an index entry's declared file name into the
// on-disk name the corpus actually stores it under: SchemaCorpus.analyse
// replaces a leading "js" with "pp" (the corpus's raw/preprocessed naming
// convention).
func SchemaFileName(indexFile string) string {
	return strings.Replace(indexFile, "js", "pp", 1)
}

// ParseRecordIndex parses the numeric "js_<N>"/"pp_<N>" suffix used to cross
// reference a repos_fullpath row number against test-selection CSVs
// (SchemaCorpus.testSchemas's toBeTested list), returning N.
func ParseRecordIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("parse record index %q: %w", s, err)
	}
	return n, nil
}
