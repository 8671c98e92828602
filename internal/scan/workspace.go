package scan

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"

	"markscan/internal/safeio"
)

const (
	DefaultInclude = "**/*.ts"
	DefaultExclude = "**/node_modules/**"
)

// Workspace is a source tree rooted at Root. Discovery walks Root with
// Options; reads go through FS so nothing outside Root is ever opened.
type Workspace struct {
	Root    string
	Options Options
	FS      *safeio.SafeFS
}

// NewWorkspace binds a workspace to root and locks reads to it.
func NewWorkspace(root string, opts Options) (*Workspace, error) {
	fs, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, fmt.Errorf("scan: open workspace %s: %w", root, err)
	}
	return &Workspace{Root: fs.Root(), Options: opts, FS: fs}, nil
}

// Find returns root-relative, slash-separated paths of files matching the
// include glob and not matching exclude, sorted. An empty exclude excludes
// nothing.
func (w *Workspace) Find(ctx context.Context, pattern, exclude string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultInclude
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, errCh := Stream(ctx, w.Root, w.Options, true)
	var (
		out    []string
		badPat error
	)
	for fv := range ch {
		if badPat != nil {
			continue
		}
		ok, err := doublestar.Match(pattern, fv.Path)
		if err != nil {
			badPat = fmt.Errorf("scan: include pattern %q: %w", pattern, err)
			cancel()
			continue
		}
		if !ok {
			continue
		}
		if exclude != "" {
			skip, err := doublestar.Match(exclude, fv.Path)
			if err != nil {
				badPat = fmt.Errorf("scan: exclude pattern %q: %w", exclude, err)
				cancel()
				continue
			}
			if skip {
				continue
			}
		}
		out = append(out, fv.Path)
	}
	err := <-errCh
	if badPat != nil {
		return nil, badPat
	}
	if err != nil {
		return nil, fmt.Errorf("scan: find %s in %s: %w", pattern, w.Root, err)
	}
	sort.Strings(out)
	return out, nil
}

// ReadText reads a root-relative file as UTF-8 text.
func (w *Workspace) ReadText(ctx context.Context, rel string) (string, error) {
	if w.FS == nil {
		return "", errors.New("scan: workspace has no filesystem")
	}
	return w.FS.ReadText(ctx, rel)
}

// TargetPattern turns a file path into a glob that finds that file by exact
// base name anywhere in the workspace. Glob metacharacters in the name are
// escaped. An empty path yields DefaultInclude.
func TargetPattern(file string) string {
	file = strings.TrimSpace(strings.ReplaceAll(file, `\`, "/"))
	if file == "" {
		return DefaultInclude
	}
	return "**/" + globEscaper.Replace(path.Base(file))
}

var globEscaper = strings.NewReplacer(
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`]`, `\]`,
	`{`, `\{`,
	`}`, `\}`,
)
