// Package driver orchestrates tag checking across many files: file
// discovery, parallel per-file pipelines, result caching and progress
// events. Commands talk to this package, never to the checker directly.
package driver

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"doctag/internal/decl"
	"doctag/internal/diag"
	"doctag/internal/doccomment"
	"doctag/internal/observ"
	"doctag/internal/source"
	"doctag/internal/writetag"
)

// FileResult holds the outcome of checking one file.
type FileResult struct {
	Path   string        // path as discovered
	FileID source.FileID // ID in the returned FileSet, 0 when loading failed
	Bag    *diag.Bag     // diagnostics for the file
	Cached bool          // result came from the disk cache
}

// ScanOptions configures a Scan run.
type ScanOptions struct {
	// Paths are files or directories to check. Directories are walked
	// recursively.
	Paths []string
	// SkipTests excludes _test.go files.
	SkipTests bool
	// Jobs limits scanning parallelism; 0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics bounds the per-file Bag.
	MaxDiagnostics int
	// Cache, when non-nil, is consulted before parsing and updated after
	// checking.
	Cache *DiskCache
	// Progress receives per-file events; nil disables.
	Progress Sink
	// Timer, when non-nil, records the list/load/check phases.
	Timer *observ.Timer
}

// ListGoFiles expands paths into a sorted, deduplicated list of Go
// files. Hidden and underscore-prefixed directories, vendor and testdata
// are skipped during directory walks.
func ListGoFiles(paths []string, skipTests bool) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if skipTests && strings.HasSuffix(path, "_test.go") {
			return
		}
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if strings.HasSuffix(p, ".go") {
				add(p)
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != p && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
					name == "vendor" || name == "testdata") {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".go") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// Scan checks every Go file reachable from opts.Paths against rules.
// Files are preloaded into a shared FileSet, then checked in parallel;
// results are indexed by file so no locking is needed. Results come back
// in the same (sorted) order files were discovered in.
func Scan(ctx context.Context, rules []*writetag.Rule, opts ScanOptions) (*source.FileSet, []FileResult, error) {
	progress := Sink(nopSink{})
	if opts.Progress != nil {
		progress = opts.Progress
	}
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}

	listPhase := timer.Begin("list")
	files, err := ListGoFiles(opts.Paths, opts.SkipTests)
	if err != nil {
		timer.End(listPhase, "")
		return nil, nil, err
	}
	timer.End(listPhase, fmt.Sprintf("%d files", len(files)))

	baseDir := "."
	if len(opts.Paths) > 0 {
		baseDir = opts.Paths[0]
		if info, err := os.Stat(baseDir); err != nil || !info.IsDir() {
			baseDir = filepath.Dir(baseDir)
		}
	}
	fileSet := source.NewFileSetWithBase(baseDir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 100
	}

	// Preload sequentially: FileSet mutation is not synchronized.
	loadPhase := timer.Begin("load")
	fileIDs := make(map[string]source.FileID, len(files))
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		progress.OnEvent(Event{Path: path, Status: StatusQueued})
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[path] = err
			continue
		}
		fileIDs[path] = id
	}
	timer.End(loadPhase, "")

	rulesKey := RulesDigest(rules)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))

	checkPhase := timer.Begin("check")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bag := diag.NewBag(maxDiag)

			if loadErr, hadError := loadErrors[path]; hadError {
				bag.Add(diag.Diagnostic{
					Severity: diag.SevError,
					Code:     diag.IOLoadFileError,
					Message:  "failed to load file: " + loadErr.Error(),
				})
				results[i] = FileResult{Path: path, Bag: bag}
				progress.OnEvent(Event{Path: path, Status: StatusError, Diags: bag.Len()})
				return nil
			}

			fileID := fileIDs[path]
			file := fileSet.Get(fileID)

			key := cacheKey(file.Hash, rulesKey)
			if opts.Cache != nil {
				var payload DiskPayload
				if hit, err := opts.Cache.Get(key, &payload); err == nil && hit {
					payload.restore(fileID, bag)
					results[i] = FileResult{Path: path, FileID: fileID, Bag: bag, Cached: true}
					progress.OnEvent(Event{Path: path, Status: StatusCached, Diags: bag.Len()})
					return nil
				}
			}

			progress.OnEvent(Event{Path: path, Status: StatusChecking})
			checkFile(file, rules, fileSet, bag)

			if opts.Cache != nil {
				// A failed cache write never fails the scan.
				_ = opts.Cache.Put(key, newPayload(path, bag))
			}

			results[i] = FileResult{Path: path, FileID: fileID, Bag: bag}
			status := StatusDone
			if bag.HasErrors() {
				status = StatusError
			}
			progress.OnEvent(Event{Path: path, Status: status, Diags: bag.Len()})
			return nil
		})
	}

	err = g.Wait()
	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	timer.End(checkPhase, fmt.Sprintf("%d cached", cached))
	if err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}

// checkFile runs the full single-file pipeline: parse, index comments,
// collect declarations, check every rule.
func checkFile(file *source.File, rules []*writetag.Rule, fileSet *source.FileSet, bag *diag.Bag) {
	tfset := token.NewFileSet()
	astFile, err := parser.ParseFile(tfset, file.Path, file.Content, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.ParseError,
			Message:  fmt.Sprintf("parse failed: %v", err),
			Primary:  source.Span{File: file.ID},
		})
		return
	}

	index := doccomment.Build(tfset, astFile, file)

	var kinds decl.KindSet
	for _, r := range rules {
		kinds = kinds.Union(r.Kinds())
	}
	decls := decl.Collect(tfset, astFile, file.ID, kinds)

	// Dedup guards against identical rules reporting the same finding twice.
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, r := range rules {
		for _, d := range decls {
			if !r.Kinds().Has(d.Kind) {
				continue
			}
			r.Check(d, index, fileSet, rep)
		}
	}
}

// MergeBags collects every per-file bag into one, in result order.
func MergeBags(results []FileResult) *diag.Bag {
	total := 0
	for _, r := range results {
		if r.Bag != nil {
			total += r.Bag.Len()
		}
	}
	merged := diag.NewBag(total)
	for _, r := range results {
		if r.Bag != nil {
			merged.Merge(r.Bag)
		}
	}
	return merged
}
