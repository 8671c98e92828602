package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markscan/internal/tsast"
	"markscan/internal/types"
)

func TestScan_Workspace(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app/app.module.ts":          appModuleSrc,
		"src/app/app.component.ts":       appComponentSrc,
		"src/app/app.component.html":     markedMarkup,
		"src/app/inline.component.ts":    inlineComponentSrc,
		"src/app/util.ts":                "export const x = 1;\n",
		"node_modules/lib/lib.module.ts": appModuleSrc,
	})
	s := newWorkspaceScanner(t, root, 2)

	report, err := s.Scan(context.Background(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, report.ID)
	assert.Empty(t, report.Failures)

	assert.Equal(t, []types.ModuleRecord{{
		ModuleName:               "AppModule",
		FilePath:                 "src/app/app.module.ts",
		ImportsMonitoringPackage: true,
		HasRootRegistration:      true,
		HasRouterStart:           true,
	}}, report.Modules)

	assert.Equal(t, []types.ComponentRecord{
		{
			ComponentName:        "AppComponent",
			FilePath:             "src/app/app.component.ts",
			Status:               types.Marked,
			TemplateURL:          "./app.component.html",
			ResolvedHTMLFileName: "app.component.html",
		},
		{
			ComponentName:         "InlineComponent",
			FilePath:              "src/app/inline.component.ts",
			Status:                types.Unmarked,
			InlineTemplatePresent: true,
		},
	}, report.Components)
	assert.Equal(t, 1, report.MarkedCount())
}

func TestScan_UnresolvedTemplate(t *testing.T) {
	// The template only exists in an excluded directory.
	root := writeTree(t, map[string]string{
		"src/app.component.ts":              appComponentSrc,
		"node_modules/x/app.component.html": markedMarkup,
	})
	report, err := newWorkspaceScanner(t, root, 1).Scan(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, report.Components, 1)
	assert.Equal(t, types.Unmarked, report.Components[0].Status)
	assert.Equal(t, "", report.Components[0].ResolvedHTMLFileName)
}

func TestScan_TemplateInNestedDirectory(t *testing.T) {
	src := `@Component({ selector: 'x', templateUrl: './views/x.html' }) export class X {}`
	root := writeTree(t, map[string]string{
		"src/x.component.ts":     src,
		"src/other/views/x.html": markedMarkup,
	})
	report, err := newWorkspaceScanner(t, root, 1).Scan(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, report.Components, 1)
	assert.Equal(t, types.Marked, report.Components[0].Status)
	assert.Equal(t, "x.html", report.Components[0].ResolvedHTMLFileName)
}

func TestScan_TemplateNameWithGlobCharacters(t *testing.T) {
	src := `@Component({ selector: 'a', templateUrl: './[slug].page.html' }) export class AComponent {}`
	root := writeTree(t, map[string]string{
		"src/a.component.ts":   src,
		"src/[slug].page.html": markedMarkup,
		"src/s.page.html":      "<p></p>",
	})
	report, err := newWorkspaceScanner(t, root, 1).Scan(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, report.Components, 1)
	assert.Equal(t, types.Marked, report.Components[0].Status)
	assert.Equal(t, "[slug].page.html", report.Components[0].ResolvedHTMLFileName)
}

func TestScan_EscapedBackslashTemplateURL(t *testing.T) {
	src := `@Component({ selector: 'b', templateUrl: '.\\views\\b.html' }) export class BComponent {}`
	root := writeTree(t, map[string]string{
		"src/b.component.ts": src,
		"src/views/b.html":   markedMarkup,
	})
	report, err := newWorkspaceScanner(t, root, 1).Scan(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, report.Components, 1)
	assert.Equal(t, `.\views\b.html`, report.Components[0].TemplateURL)
	assert.Equal(t, "b.html", report.Components[0].ResolvedHTMLFileName)
	assert.Equal(t, types.Marked, report.Components[0].Status)
}

func TestScan_SingleFileTarget(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app/app.module.ts":      appModuleSrc,
		"src/app/app.component.ts":   appComponentSrc,
		"src/app/app.component.html": markedMarkup,
	})
	report, err := newWorkspaceScanner(t, root, 1).Scan(context.Background(), "/elsewhere/src/app/app.component.ts")
	require.NoError(t, err)
	assert.Empty(t, report.Modules)
	require.Len(t, report.Components, 1)
	assert.Equal(t, "AppComponent", report.Components[0].ComponentName)
	assert.Equal(t, "/elsewhere/src/app/app.component.ts", report.Target)
}

func TestScan_SyntaxErrorIsParseFailure(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/broken.component.ts": "@Component({ selector: 'x' class {{{ @@@",
		"src/app.module.ts":       appModuleSrc,
	})
	report, err := newWorkspaceScanner(t, root, 2).Scan(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, report.Components)
	assert.Len(t, report.Modules, 1)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "src/broken.component.ts", report.Failures[0].Path)
	assert.Equal(t, types.FailureParse, report.Failures[0].Kind)
}

func TestScan_ReadFailuresAndTimeouts(t *testing.T) {
	mem := &memFS{
		files: map[string]string{
			"a/app.module.ts":  appModuleSrc,
			"b/slow.module.ts": appModuleSrc,
			"c/gone.module.ts": appModuleSrc,
			"d/inline.comp.ts": inlineComponentSrc,
		},
		block: map[string]bool{"b/slow.module.ts": true},
		fail:  map[string]error{"c/gone.module.ts": errors.New("permission denied")},
	}
	s := &Scanner{
		Finder:      mem,
		Reader:      mem,
		Parser:      tsast.NewTreeSitterParser(),
		Workers:     4,
		FileTimeout: 50 * time.Millisecond,
	}
	report, err := s.Scan(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, report.Modules, 1)
	assert.Len(t, report.Components, 1)
	assert.Equal(t, []types.FileFailure{
		{Path: "b/slow.module.ts", Kind: types.FailureTimeout, Message: context.DeadlineExceeded.Error()},
		{Path: "c/gone.module.ts", Kind: types.FailureIO, Message: "permission denied"},
	}, report.Failures)
}

func TestScan_DiscoveryErrorIsFatal(t *testing.T) {
	s := &Scanner{Finder: &memFS{findErr: errors.New("walk failed")}, Reader: &memFS{}, Parser: tsast.NewTreeSitterParser()}
	_, err := s.Scan(context.Background(), "")
	assert.ErrorContains(t, err, "walk failed")
}

func TestScan_RequiresCollaborators(t *testing.T) {
	_, err := (&Scanner{}).Scan(context.Background(), "")
	assert.Error(t, err)
}

func TestScan_Canceled(t *testing.T) {
	mem := &memFS{files: map[string]string{"a.module.ts": appModuleSrc}}
	s := &Scanner{Finder: mem, Reader: mem, Parser: tsast.NewTreeSitterParser()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Scan(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScan_ParallelMatchesSequential(t *testing.T) {
	files := map[string]string{"src/shared/shared.component.html": markedMarkup}
	for i := 0; i < 40; i++ {
		n := strconv.Itoa(i)
		files["src/f"+n+"/m"+n+".module.ts"] = appModuleSrc
		files["src/f"+n+"/c"+n+".component.ts"] =
			"@Component({ selector: 'c" + n + "', templateUrl: '../shared/shared.component.html' }) export class C" + n + " {}"
	}
	root := writeTree(t, files)

	seq, err := newWorkspaceScanner(t, root, 1).Scan(context.Background(), "")
	require.NoError(t, err)
	par, err := newWorkspaceScanner(t, root, 8).Scan(context.Background(), "")
	require.NoError(t, err)

	assert.Len(t, seq.Modules, 40)
	assert.Len(t, seq.Components, 40)
	ignore := cmpopts.IgnoreFields(types.Report{}, "ID", "StartedAt", "FinishedAt")
	if diff := cmp.Diff(seq, par, ignore); diff != "" {
		t.Fatalf("parallel report differs (-seq +par):\n%s", diff)
	}
}

func TestScan_ObserverSeesEveryRecord(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.module.ts":       appModuleSrc,
		"src/app.component.ts":    appComponentSrc,
		"src/inline.component.ts": inlineComponentSrc,
	})
	s := newWorkspaceScanner(t, root, 4)
	var (
		mu     sync.Mutex
		events []Event
	)
	s.Observer = func(ev Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}
	report, err := s.Scan(context.Background(), "")
	require.NoError(t, err)

	kinds := map[string]int{}
	for _, ev := range events {
		kinds[ev.Kind]++
	}
	assert.Equal(t, map[string]int{EventModule: len(report.Modules), EventComponent: len(report.Components)}, kinds)
}
