package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"doctag/internal/diag"
	"doctag/internal/source"
	"doctag/internal/writetag"
)

// Current schema version - increment when DiskPayload format changes.
const diskCacheSchemaVersion uint16 = 1

// Digest identifies cached content.
type Digest [32]byte

// DiskCache stores per-file check results on disk, keyed by a digest of
// the file content and the rule configuration. Thread-safe for
// concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

type cachedEdit struct {
	Start   uint32
	End     uint32
	NewText string
}

type cachedFix struct {
	Title string
	Edits []cachedEdit
}

type cachedDiag struct {
	Severity uint8
	Code     uint16
	Message  string
	Start    uint32
	End      uint32
	Fixes    []cachedFix
}

// DiskPayload stores the diagnostics of one checked file.
type DiskPayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16
	Path   string
	Diags  []cachedDiag
}

// OpenDiskCache initializes and returns a disk cache at the standard
// location (XDG_CACHE_HOME or ~/.cache).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt returns a disk cache rooted at an explicit directory.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// A "files" subdirectory keeps the cache root readable and easy to clear.
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache atomically.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. A payload
// with a stale schema counts as a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// cacheKey combines the file content hash with the rule configuration
// digest, so either kind of change invalidates the entry.
func cacheKey(fileHash [32]byte, rules Digest) Digest {
	h := sha256.New()
	h.Write(fileHash[:])
	h.Write(rules[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// RulesDigest hashes everything that influences a rule's output.
func RulesDigest(rules []*writetag.Rule) Digest {
	h := sha256.New()
	for _, r := range rules {
		// Both tag text (appears in messages) and compiled pattern
		// (EscapeTag changes it without changing the tag text).
		h.Write([]byte(r.Tag()))
		h.Write([]byte{0})
		h.Write([]byte(r.Pattern()))
		h.Write([]byte{0})
		h.Write([]byte(r.FormatText()))
		h.Write([]byte{0, byte(r.Severity()), byte(r.TagSeverity())})
		for _, k := range r.Kinds().Kinds() {
			h.Write([]byte{byte(k)})
		}
		h.Write([]byte{0xFF})
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// newPayload snapshots a bag for caching. Notes are not cached: the tag
// checker never attaches them, and dropping the field keeps the payload
// small.
func newPayload(path string, bag *diag.Bag) *DiskPayload {
	p := &DiskPayload{
		Schema: diskCacheSchemaVersion,
		Path:   path,
		Diags:  make([]cachedDiag, 0, bag.Len()),
	}
	for _, d := range bag.Items() {
		cd := cachedDiag{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, fx := range d.Fixes {
			cf := cachedFix{Title: fx.Title}
			for _, e := range fx.Edits {
				cf.Edits = append(cf.Edits, cachedEdit{Start: e.Span.Start, End: e.Span.End, NewText: e.NewText})
			}
			cd.Fixes = append(cd.Fixes, cf)
		}
		p.Diags = append(p.Diags, cd)
	}
	return p
}

// restore replays cached diagnostics into a bag, rebinding spans to the
// current FileID of the file.
func (p *DiskPayload) restore(fileID source.FileID, bag *diag.Bag) {
	for _, cd := range p.Diags {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  source.Span{File: fileID, Start: cd.Start, End: cd.End},
		}
		for _, cf := range cd.Fixes {
			fx := diag.Fix{Title: cf.Title}
			for _, e := range cf.Edits {
				fx.Edits = append(fx.Edits, diag.FixEdit{
					Span:    source.Span{File: fileID, Start: e.Start, End: e.End},
					NewText: e.NewText,
				})
			}
			d.Fixes = append(d.Fixes, fx)
		}
		bag.Add(d)
	}
}
