package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markscan/internal/types"
)

const cliComponentSrc = `@Component({ selector: 'app-root', templateUrl: './app.component.html' })
export class AppComponent {}
`

func cliWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/app.component.ts":   cliComponentSrc,
		"src/app.component.html": `<div mezzurite component-title="app"></div>`,
	}
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("MARKSCAN_WORKERS", "")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScanCommandJSON(t *testing.T) {
	root := cliWorkspace(t)
	out, err := runCLI(t, "scan", "--root", root)
	require.NoError(t, err)

	var report types.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Components, 1)
	assert.Equal(t, types.Marked, report.Components[0].Status)
	assert.Equal(t, "app.component.html", report.Components[0].ResolvedHTMLFileName)
}

func TestScanCommandTable(t *testing.T) {
	root := cliWorkspace(t)
	out, err := runCLI(t, "scan", "--root", root, "--format", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "COMPONENT")
	assert.Contains(t, out, "AppComponent")
	assert.Contains(t, out, "1 of 1 components marked")
}

func TestScanCommandSaveToDisk(t *testing.T) {
	root := cliWorkspace(t)
	dir := filepath.Join(t.TempDir(), "reports")
	t.Setenv("STORE_DIR", dir)
	cmd := newRootCommand()
	t.Chdir(t.TempDir())
	t.Setenv("STORE_BACKEND", "disk")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"scan", "--root", root, "--save"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var report types.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	_, err := os.Stat(filepath.Join(dir, report.ID, "report.json"))
	assert.NoError(t, err)
}

func TestScanCommandRejectsUnknownFormat(t *testing.T) {
	_, err := runCLI(t, "scan", "--root", cliWorkspace(t), "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestWriteTableShowsFailures(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeReport(&buf, formatTable, types.Report{
		Modules:  []types.ModuleRecord{{ModuleName: "AppModule", FilePath: "a.ts", HasRouterStart: true}},
		Failures: []types.FileFailure{{Path: "b.ts", Kind: types.FailureParse, Message: "syntax error"}},
	}))
	out := buf.String()
	assert.Contains(t, out, "AppModule")
	assert.Contains(t, out, "FAILED FILE")
	assert.Contains(t, out, "syntax error")
	assert.Contains(t, out, "0 of 0 components marked")
}
