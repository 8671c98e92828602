package pipeline

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"markscan/internal/rules"
	"markscan/internal/scan"
)

const defaultTemplateCacheSize = 512

// templateCache resolves template file names through the workspace and
// memoises both hits and misses for the lifetime of one scan.
type templateCache struct {
	finder  Finder
	reader  Reader
	exclude string
	cache   *lru.Cache[string, templateEntry]
}

type templateEntry struct {
	tpl rules.Template
	ok  bool
}

func newTemplateCache(finder Finder, reader Reader, exclude string, size int) *templateCache {
	if size <= 0 {
		size = defaultTemplateCacheSize
	}
	cache, err := lru.New[string, templateEntry](size)
	if err != nil {
		// lru.New only fails for non-positive sizes.
		panic(err)
	}
	return &templateCache{finder: finder, reader: reader, exclude: exclude, cache: cache}
}

// LookupTemplate finds fileName anywhere in the workspace and returns the
// first match in discovery order. Lookup or read errors are a miss.
func (c *templateCache) LookupTemplate(ctx context.Context, fileName string) (rules.Template, bool) {
	if fileName == "" {
		return rules.Template{}, false
	}
	if e, ok := c.cache.Get(fileName); ok {
		return e.tpl, e.ok
	}
	entry, cacheable := c.resolve(ctx, fileName)
	if cacheable {
		c.cache.Add(fileName, entry)
	}
	return entry.tpl, entry.ok
}

// resolve reports cacheable=false when ctx ended, so a timed-out lookup in
// one file does not poison others.
func (c *templateCache) resolve(ctx context.Context, fileName string) (templateEntry, bool) {
	paths, err := c.finder.Find(ctx, scan.TargetPattern(fileName), c.exclude)
	if err != nil || len(paths) == 0 {
		return templateEntry{}, ctx.Err() == nil
	}
	text, err := c.reader.ReadText(ctx, paths[0])
	if err != nil {
		return templateEntry{}, ctx.Err() == nil
	}
	return templateEntry{tpl: rules.Template{Path: paths[0], Text: text}, ok: true}, true
}
