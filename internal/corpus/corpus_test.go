package corpus

import (
	"os"
	"path/filepath"
	"testing"
)

func writeIndex(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "repos_fullpath")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadIndexParsesRows(t *testing.T) {
	path := writeIndex(t,
		"js_0.json http://example.com/a.json",
		"js_1.json deleted",
	)
	entries, err := LoadIndex(path)
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Deleted {
		t.Error("first entry should not be marked deleted")
	}
	if !entries[1].Deleted {
		t.Error("second entry should be marked deleted")
	}
}

func TestLoadIndexRejectsMalformedRow(t *testing.T) {
	path := writeIndex(t, "onlyonefield")
	if _, err := LoadIndex(path); err == nil {
		t.Fatal("expected an error for a row with no URL field")
	}
}

func TestSchemaFileNameReplacesJsPrefix(t *testing.T) {
	if got, want := SchemaFileName("js_42.json"), "pp_42.json"; got != want {
		t.Errorf("SchemaFileName() = %q, want %q", got, want)
	}
}

func TestParseRecordIndex(t *testing.T) {
	n, err := ParseRecordIndex(" 17 ")
	if err != nil {
		t.Fatalf("ParseRecordIndex: %v", err)
	}
	if n != 17 {
		t.Errorf("got %d, want 17", n)
	}
	if _, err := ParseRecordIndex("not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric index")
	}
}
