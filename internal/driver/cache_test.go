package driver_test

import (
	"context"
	"testing"

	"doctag/internal/diag"
	"doctag/internal/driver"
	"doctag/internal/writetag"
)

func TestScanUsesCacheOnSecondRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "untagged.go", untaggedSrc)

	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	rules := authorRule(t)
	opts := driver.ScanOptions{Paths: []string{dir}, Cache: cache}

	_, first, err := driver.Scan(context.Background(), rules, opts)
	if err != nil {
		t.Fatalf("first Scan: %v", err)
	}
	if first[0].Cached {
		t.Fatalf("first run must not be cached")
	}

	_, second, err := driver.Scan(context.Background(), rules, opts)
	if err != nil {
		t.Fatalf("second Scan: %v", err)
	}
	if !second[0].Cached {
		t.Fatalf("second run should hit the cache")
	}

	a, b := first[0].Bag.Items(), second[0].Bag.Items()
	if len(a) != len(b) {
		t.Fatalf("cached run lost diagnostics: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Code != b[i].Code || a[i].Severity != b[i].Severity ||
			a[i].Message != b[i].Message || a[i].Primary != b[i].Primary {
			t.Fatalf("cached diagnostic %d differs: %+v vs %+v", i, a[i], b[i])
		}
		if len(a[i].Fixes) != len(b[i].Fixes) {
			t.Fatalf("cached diagnostic %d lost fixes", i)
		}
	}
}

func TestCacheInvalidatedByRuleChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "untagged.go", untaggedSrc)

	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	if _, _, err := driver.Scan(context.Background(), authorRule(t), driver.ScanOptions{
		Paths: []string{dir}, Cache: cache,
	}); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	other, err := writetag.New(writetag.Options{Tag: "@since"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, results, err := driver.Scan(context.Background(), []*writetag.Rule{other}, driver.ScanOptions{
		Paths: []string{dir}, Cache: cache,
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if results[0].Cached {
		t.Fatalf("different rules must not hit the old cache entry")
	}
}

func TestCacheInvalidatedByEscapeToggle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\n// @v1X0 owner\ntype Widget struct{}\n")

	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	loose, err := writetag.New(writetag.Options{Tag: "@v1.0"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	strict, err := writetag.New(writetag.Options{Tag: "@v1.0", EscapeTag: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if driver.RulesDigest([]*writetag.Rule{loose}) == driver.RulesDigest([]*writetag.Rule{strict}) {
		t.Fatalf("escaped and unescaped rules produced the same digest")
	}

	opts := driver.ScanOptions{Paths: []string{dir}, Cache: cache}
	_, first, err := driver.Scan(context.Background(), []*writetag.Rule{loose}, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	// The unescaped dot matches the X in @v1X0.
	if first[0].Bag.Items()[0].Code != diag.TagWritten {
		t.Fatalf("loose rule: %+v", first[0].Bag.Items())
	}

	_, second, err := driver.Scan(context.Background(), []*writetag.Rule{strict}, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if second[0].Cached {
		t.Fatalf("escape toggle must not hit the old cache entry")
	}
	if second[0].Bag.Items()[0].Code != diag.TagMissing {
		t.Fatalf("strict rule: %+v", second[0].Bag.Items())
	}
}

func TestCacheInvalidatedByContentChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", untaggedSrc)

	cache, err := driver.OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	rules := authorRule(t)
	opts := driver.ScanOptions{Paths: []string{dir}, Cache: cache}
	if _, _, err := driver.Scan(context.Background(), rules, opts); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	writeFile(t, dir, "a.go", taggedSrc)
	_, results, err := driver.Scan(context.Background(), rules, opts)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if results[0].Cached {
		t.Fatalf("changed content must not hit the cache")
	}
	if results[0].Bag.Items()[0].Code != diag.TagWritten {
		t.Fatalf("fresh result expected: %+v", results[0].Bag.Items())
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	cacheDir := t.TempDir()
	cache, err := driver.OpenDiskCacheAt(cacheDir)
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}

	key := driver.RulesDigest(authorRule(t))
	if err := cache.Put(key, &driver.DiskPayload{Schema: 1, Path: "x.go"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	var out driver.DiskPayload
	if hit, err := cache.Get(key, &out); err != nil || !hit {
		t.Fatalf("Get after Put: hit=%v err=%v", hit, err)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if hit, _ := cache.Get(key, &out); hit {
		t.Fatalf("cache still serves entries after DropAll")
	}
}

func TestRulesDigestIsStable(t *testing.T) {
	a := driver.RulesDigest(authorRule(t))
	b := driver.RulesDigest(authorRule(t))
	if a != b {
		t.Fatalf("identical rules produced different digests")
	}

	other, err := writetag.New(writetag.Options{Tag: "@author", TagFormat: `\d`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if driver.RulesDigest([]*writetag.Rule{other}) == a {
		t.Fatalf("different format must change the digest")
	}
}
