// Package pipeline runs the marking rules over every discovered source file
// and assembles the Report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"markscan/internal/metrics"
	"markscan/internal/rules"
	"markscan/internal/scan"
	"markscan/internal/tsast"
	"markscan/internal/types"
)

const (
	DefaultWorkers     = 4
	DefaultFileTimeout = 10 * time.Second
)

// Finder discovers workspace files. Paths are returned in discovery order.
type Finder interface {
	Find(ctx context.Context, pattern, exclude string) ([]string, error)
}

// Reader returns a file's text.
type Reader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// Scanner is the aggregator. The zero value is not usable: Finder, Reader
// and Parser are required.
type Scanner struct {
	Finder Finder
	Reader Reader
	Parser tsast.Parser
	Logger logr.Logger

	// Root is copied into reports; it does not affect discovery.
	Root string
	// Workers bounds the number of files processed at once.
	Workers int
	// FileTimeout bounds the read, parse and rule evaluation of one file.
	FileTimeout time.Duration
	// Include is the discovery glob used when Scan is called without a target.
	Include string
	// Exclude applies to source discovery and template lookup alike.
	Exclude string
	// Observer, when set, receives every record and failure as its file
	// completes. Calls are serialised.
	Observer func(Event)

	// TemplateCacheSize bounds the resolved-template LRU; 0 uses the default.
	TemplateCacheSize int
}

// fileResult is the outcome for one discovered file. Exactly one goroutine
// writes each slot.
type fileResult struct {
	module    *types.ModuleRecord
	component *types.ComponentRecord
	failure   *types.FileFailure
}

// Scan discovers the files for target and evaluates each one. An empty
// target scans the whole workspace with Include; otherwise only files whose
// base name matches target's base name are scanned.
//
// Only discovery failures and cancellation of ctx are returned as errors.
// Per-file read, parse and timeout problems are collected in
// Report.Failures and the file is skipped.
func (s *Scanner) Scan(ctx context.Context, target string) (types.Report, error) {
	start := time.Now()
	report, err := s.scan(ctx, target, start)
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ScanFinished(result, time.Since(start))
	return report, err
}

func (s *Scanner) scan(ctx context.Context, target string, start time.Time) (types.Report, error) {
	if s.Finder == nil || s.Reader == nil || s.Parser == nil {
		return types.Report{}, errors.New("pipeline: scanner requires finder, reader and parser")
	}
	log := s.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	report := types.Report{
		ID:         uuid.NewString(),
		Root:       s.Root,
		Target:     target,
		StartedAt:  start.UTC(),
		Modules:    []types.ModuleRecord{},
		Components: []types.ComponentRecord{},
	}
	log = log.WithValues("scanID", report.ID)

	pattern := s.Include
	if pattern == "" {
		pattern = scan.DefaultInclude
	}
	if target != "" {
		pattern = scan.TargetPattern(target)
	}
	files, err := s.Finder.Find(ctx, pattern, s.Exclude)
	if err != nil {
		return types.Report{}, fmt.Errorf("pipeline: discover %s: %w", pattern, err)
	}
	log.V(1).Info("discovered files", "pattern", pattern, "count", len(files))

	templates := newTemplateCache(s.Finder, s.Reader, s.Exclude, s.TemplateCacheSize)
	results := make([]fileResult, len(files))
	emit := s.observer()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := s.processFile(gctx, path, templates)
			results[i] = res
			s.record(log, path, res, emit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return types.Report{}, fmt.Errorf("pipeline: scan aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return types.Report{}, fmt.Errorf("pipeline: scan aborted: %w", err)
	}

	for _, res := range results {
		if res.module != nil {
			report.Modules = append(report.Modules, *res.module)
		}
		if res.component != nil {
			report.Components = append(report.Components, *res.component)
		}
		if res.failure != nil {
			report.Failures = append(report.Failures, *res.failure)
		}
	}
	report.FinishedAt = time.Now().UTC()
	log.Info("scan finished",
		"files", len(files),
		"modules", len(report.Modules),
		"components", len(report.Components),
		"marked", report.MarkedCount(),
		"failures", len(report.Failures),
		"duration", report.FinishedAt.Sub(report.StartedAt).String())
	return report, nil
}

func (s *Scanner) workers() int {
	if s.Workers > 0 {
		return s.Workers
	}
	return DefaultWorkers
}

func (s *Scanner) fileTimeout() time.Duration {
	if s.FileTimeout > 0 {
		return s.FileTimeout
	}
	return DefaultFileTimeout
}

func (s *Scanner) observer() func(Event) {
	if s.Observer == nil {
		return func(Event) {}
	}
	var mu sync.Mutex
	return func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		s.Observer(ev)
	}
}

// processFile reads, gates, parses and evaluates one file under the
// per-file timeout.
func (s *Scanner) processFile(ctx context.Context, path string, templates rules.TemplateSource) fileResult {
	fctx, cancel := context.WithTimeout(ctx, s.fileTimeout())
	defer cancel()

	text, err := s.Reader.ReadText(fctx, path)
	if err != nil {
		return failed(fctx, path, types.FailureIO, err)
	}

	hasModule := rules.ContainsModuleMarker(text)
	hasComponent := rules.ContainsComponentMarker(text)
	if !hasModule && !hasComponent {
		return fileResult{}
	}

	file, err := s.Parser.Parse(fctx, path, []byte(text))
	if err != nil {
		return failed(fctx, path, types.FailureParse, err)
	}

	var res fileResult
	if hasModule {
		if rec, ok := rules.EvaluateModule(path, file); ok {
			res.module = &rec
		}
	}
	if hasComponent {
		if rec, ok := rules.EvaluateComponent(fctx, path, file, templates); ok {
			res.component = &rec
		}
	}
	if errors.Is(fctx.Err(), context.DeadlineExceeded) {
		return failed(fctx, path, types.FailureTimeout, fctx.Err())
	}
	return res
}

// failed builds a failure result. A deadline hit inside the file's budget
// is reported as a timeout whatever step noticed it.
func failed(fctx context.Context, path string, kind types.FailureKind, err error) fileResult {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(fctx.Err(), context.DeadlineExceeded) {
		kind = types.FailureTimeout
	}
	return fileResult{failure: &types.FileFailure{Path: path, Kind: kind, Message: err.Error()}}
}

func (s *Scanner) record(log logr.Logger, path string, res fileResult, emit func(Event)) {
	switch {
	case res.failure != nil:
		log.V(1).Info("file skipped", "path", path, "kind", res.failure.Kind, "error", res.failure.Message)
		metrics.FileProcessed(string(res.failure.Kind))
		emit(Event{Kind: EventFailure, Failure: res.failure})
		return
	case res.module == nil && res.component == nil:
		metrics.FileProcessed(metrics.OutcomeSkipped)
		return
	}
	metrics.FileProcessed(metrics.OutcomeRecorded)
	if res.module != nil {
		metrics.RecordEmitted(EventModule, moduleStatus(*res.module))
		emit(Event{Kind: EventModule, Module: res.module})
	}
	if res.component != nil {
		metrics.RecordEmitted(EventComponent, res.component.Status.String())
		emit(Event{Kind: EventComponent, Component: res.component})
	}
}

func moduleStatus(m types.ModuleRecord) string {
	if m.ImportsMonitoringPackage && m.HasRootRegistration && m.HasRouterStart {
		return types.LabelMarked
	}
	return types.LabelUnmarked
}
