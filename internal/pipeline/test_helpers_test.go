package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/go-logr/zapr"
	"go.uber.org/zap/zaptest"

	"markscan/internal/scan"
	"markscan/internal/tsast"
)

const appModuleSrc = `import { NgModule } from '@angular/core';
import { BrowserModule } from '@angular/platform-browser';
import { AngularPerfModule, RoutingService } from '@microsoft/mezzurite-angular';

@NgModule({
  declarations: [AppComponent],
  imports: [BrowserModule, AngularPerfModule.forRoot()],
  bootstrap: [AppComponent]
})
export class AppModule {
  constructor(router: RoutingService) {
    router.start();
  }
}
`

const appComponentSrc = `import { Component } from '@angular/core';

@Component({
  selector: 'app-root',
  templateUrl: './app.component.html'
})
export class AppComponent {}
`

const inlineComponentSrc = "import { Component } from '@angular/core';\n\n" +
	"@Component({\n  selector: 'app-inline',\n  template: `<div></div>`\n})\nexport class InlineComponent {}\n"

const markedMarkup = `<main mezzurite component-title="app"><router-outlet></router-outlet></main>`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	return root
}

func newWorkspaceScanner(t *testing.T, root string, workers int) *Scanner {
	t.Helper()
	ws, err := scan.NewWorkspace(root, scan.Options{BypassCache: true})
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	return &Scanner{
		Finder:  ws,
		Reader:  ws,
		Parser:  tsast.NewTreeSitterParser(),
		Logger:  zapr.NewLogger(zaptest.NewLogger(t)),
		Root:    root,
		Workers: workers,
		Exclude: scan.DefaultExclude,
	}
}

// memFS is an in-memory Finder and Reader. Globs are reduced to the two
// shapes the scanner produces: "**/*.ext" and "**/<name>".
type memFS struct {
	files map[string]string
	// block makes ReadText wait for ctx on these paths.
	block map[string]bool
	// fail makes ReadText return this error for these paths.
	fail    map[string]error
	findErr error
}

func (m *memFS) Find(_ context.Context, pattern, _ string) ([]string, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	glob := strings.TrimPrefix(pattern, "**/")
	var out []string
	for p := range m.files {
		base := p[strings.LastIndex(p, "/")+1:]
		if strings.HasPrefix(glob, "*") {
			if strings.HasSuffix(base, strings.TrimPrefix(glob, "*")) {
				out = append(out, p)
			}
			continue
		}
		if base == glob {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memFS) ReadText(ctx context.Context, path string) (string, error) {
	if m.block[path] {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if err, ok := m.fail[path]; ok {
		return "", err
	}
	text, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("read %s: %w", path, os.ErrNotExist)
	}
	return text, nil
}
