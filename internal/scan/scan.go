package scan

import (
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultIgnoreDirs are directory base names pruned from every walk unless
// Options.IgnoreDirs is set.
var DefaultIgnoreDirs = []string{".git", "node_modules"}

const (
	walkCacheSize       = 64
	DefaultWalkCacheTTL = 30 * time.Second
)

// FileVisit carries per-entry metadata to user callbacks.
type FileVisit struct {
	// Root-relative path using forward slashes (e.g., "src/app/app.module.ts").
	Path string
	// Absolute filesystem path.
	AbsPath string
	// True when the entry is a directory.
	IsDir bool
	// Lowercased extension (e.g., ".ts", ".html"); empty for dirs or no-ext files.
	Ext string
}

// VisitFunc is invoked for every visited entry, in lexical walk order.
type VisitFunc func(f FileVisit)

// Options controls a walk.
type Options struct {
	// IgnoreDirs lists directory base names that are skipped entirely.
	// nil means DefaultIgnoreDirs; an empty non-nil slice ignores nothing.
	IgnoreDirs []string
	// MaxDepth limits descent; 0 is unlimited, 1 visits only the root's entries.
	MaxDepth int
	// BypassCache forces a fresh walk and does not store the result.
	BypassCache bool
}

func (o Options) ignored() []string {
	if o.IgnoreDirs == nil {
		return DefaultIgnoreDirs
	}
	return o.IgnoreDirs
}

var (
	walkCacheMu sync.Mutex
	walkCache   = expirable.NewLRU[string, []FileVisit](walkCacheSize, nil, DefaultWalkCacheTTL)
)

// SetCacheTTL replaces the walk cache with an empty one whose entries expire
// after ttl.
func SetCacheTTL(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultWalkCacheTTL
	}
	walkCacheMu.Lock()
	walkCache = expirable.NewLRU[string, []FileVisit](walkCacheSize, nil, ttl)
	walkCacheMu.Unlock()
}

// ClearCache drops all cached walks.
func ClearCache() {
	currentCache().Purge()
}

func currentCache() *expirable.LRU[string, []FileVisit] {
	walkCacheMu.Lock()
	defer walkCacheMu.Unlock()
	return walkCache
}

func cacheKey(root string, opts Options) string {
	return filepath.Clean(root) + "|" + strings.Join(opts.ignored(), ",") + "|" + strconv.Itoa(opts.MaxDepth)
}

// ScanWithOptions walks root and invokes cb for every directory and file
// below it (the root itself is not reported). Unreadable entries are skipped.
// Unless opts.BypassCache is set, a previous walk of the same root with the
// same options is replayed from cache.
func ScanWithOptions(root string, opts Options, cb VisitFunc) error {
	cache := currentCache()
	key := cacheKey(root, opts)
	if !opts.BypassCache {
		if visits, ok := cache.Get(key); ok {
			for _, v := range visits {
				cb(v)
			}
			return nil
		}
	}

	visits, err := walk(root, opts)
	if err != nil {
		return err
	}
	if !opts.BypassCache {
		cache.Add(key, visits)
	}
	for _, v := range visits {
		cb(v)
	}
	return nil
}

func walk(root string, opts Options) ([]FileVisit, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	skip := make(map[string]struct{}, len(opts.ignored()))
	for _, d := range opts.ignored() {
		skip[d] = struct{}{}
	}

	var visits []FileVisit
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}
		rel, _ := filepath.Rel(absRoot, path)
		rel = filepath.ToSlash(rel)
		depth := strings.Count(rel, "/") + 1

		if d.IsDir() {
			if _, ok := skip[d.Name()]; ok {
				return filepath.SkipDir
			}
			if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
				return filepath.SkipDir
			}
		} else if opts.MaxDepth > 0 && depth > opts.MaxDepth {
			return nil
		}

		fv := FileVisit{Path: rel, AbsPath: path, IsDir: d.IsDir()}
		if !d.IsDir() {
			fv.Ext = strings.ToLower(filepath.Ext(rel))
		}
		visits = append(visits, fv)
		return nil
	})
	return visits, err
}
