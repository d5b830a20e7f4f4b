package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"doctag/internal/diag"
	"doctag/internal/driver"
	"doctag/internal/writetag"
)

const taggedSrc = `package a

// @author Jane
type Widget struct{}
`

const untaggedSrc = `package a

// Gadget does gadget things.
type Gadget struct{}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func authorRule(t *testing.T) []*writetag.Rule {
	t.Helper()
	r, err := writetag.New(writetag.Options{Tag: "@author", TagFormat: `\S`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return []*writetag.Rule{r}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tagged.go", taggedSrc)
	writeFile(t, dir, "untagged.go", untaggedSrc)

	_, results, err := driver.Scan(context.Background(), authorRule(t), driver.ScanOptions{
		Paths: []string{dir},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// Sorted discovery order: tagged.go before untagged.go.
	if results[0].Bag.Len() != 1 || results[0].Bag.Items()[0].Code != diag.TagWritten {
		t.Fatalf("tagged.go: %+v", results[0].Bag.Items())
	}
	if results[1].Bag.Len() != 1 || results[1].Bag.Items()[0].Code != diag.TagMissing {
		t.Fatalf("untagged.go: %+v", results[1].Bag.Items())
	}
	if !results[1].Bag.HasErrors() {
		t.Fatalf("missing tag should be an error by default")
	}
}

func TestScanSkipsTestsAndHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", untaggedSrc)
	writeFile(t, dir, "a_test.go", untaggedSrc)
	writeFile(t, dir, filepath.Join("_gen", "b.go"), untaggedSrc)
	writeFile(t, dir, filepath.Join("testdata", "c.go"), untaggedSrc)
	writeFile(t, dir, filepath.Join("vendor", "d.go"), untaggedSrc)

	_, results, err := driver.Scan(context.Background(), authorRule(t), driver.ScanOptions{
		Paths:     []string{dir},
		SkipTests: true,
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 1 || filepath.Base(results[0].Path) != "a.go" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestScanReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.go", "package a\n\nfunc {\n")

	_, results, err := driver.Scan(context.Background(), authorRule(t), driver.ScanOptions{
		Paths: []string{dir},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	items := results[0].Bag.Items()
	if len(items) == 0 || items[0].Code != diag.ParseError || items[0].Severity != diag.SevError {
		t.Fatalf("expected a parse error diagnostic: %+v", items)
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordingSink) OnEvent(e driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *recordingSink) byStatus(status driver.Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.events {
		if e.Status == status {
			n++
		}
	}
	return n
}

func TestScanEmitsEvents(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tagged.go", taggedSrc)
	writeFile(t, dir, "untagged.go", untaggedSrc)

	sink := &recordingSink{}
	_, _, err := driver.Scan(context.Background(), authorRule(t), driver.ScanOptions{
		Paths:    []string{dir},
		Progress: sink,
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if sink.byStatus(driver.StatusQueued) != 2 {
		t.Fatalf("expected 2 queued events, got %d", sink.byStatus(driver.StatusQueued))
	}
	// untagged.go ends with an error-severity diagnostic.
	if sink.byStatus(driver.StatusDone)+sink.byStatus(driver.StatusError) != 2 {
		t.Fatalf("expected 2 terminal events: %+v", sink.events)
	}
}

func TestScanSingleFilePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tagged.go", taggedSrc)

	fs, results, err := driver.Scan(context.Background(), authorRule(t), driver.ScanOptions{
		Paths: []string{path},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(results) != 1 || results[0].Bag.Len() != 1 {
		t.Fatalf("unexpected results: %+v", results)
	}
	if got := fs.BaseDir(); got != dir {
		t.Fatalf("base dir = %q, want the file's directory %q", got, dir)
	}
}

func TestDuplicateRulesReportOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "untagged.go", untaggedSrc)

	rules := append(authorRule(t), authorRule(t)...)
	_, results, err := driver.Scan(context.Background(), rules, driver.ScanOptions{
		Paths: []string{dir},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if results[0].Bag.Len() != 1 {
		t.Fatalf("duplicate rules reported %d diagnostics, want 1", results[0].Bag.Len())
	}
}

func TestMergeBags(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tagged.go", taggedSrc)
	writeFile(t, dir, "untagged.go", untaggedSrc)

	_, results, err := driver.Scan(context.Background(), authorRule(t), driver.ScanOptions{
		Paths: []string{dir},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	merged := driver.MergeBags(results)
	if merged.Len() != 2 {
		t.Fatalf("merged %d diagnostics, want 2", merged.Len())
	}
}
