package store

import (
	"context"
	"encoding/json"
	"fmt"

	"markscan/internal/types"
)

// Paths a scan's files are stored under.
const (
	ReportPath  = "report.json"
	SummaryPath = "summary.json"
)

// Summary is the counts-only view of a report, stored next to it.
type Summary struct {
	ID         string `json:"id"`
	Target     string `json:"target,omitempty"`
	Modules    int    `json:"modules"`
	Components int    `json:"components"`
	Marked     int    `json:"marked"`
	Failures   int    `json:"failures"`
}

func summarize(r types.Report) Summary {
	return Summary{
		ID:         r.ID,
		Target:     r.Target,
		Modules:    len(r.Modules),
		Components: len(r.Components),
		Marked:     r.MarkedCount(),
		Failures:   len(r.Failures),
	}
}

// Reports saves and loads whole reports through a Store.
type Reports struct {
	Store Store
}

func (r Reports) Save(ctx context.Context, report types.Report) error {
	if r.Store == nil {
		return fmt.Errorf("store is nil")
	}
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.ID, err)
	}
	sum, err := json.Marshal(summarize(report))
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", report.ID, err)
	}
	if err := r.Store.Put(ctx, report.ID, ReportPath, b); err != nil {
		return fmt.Errorf("save report %s: %w", report.ID, err)
	}
	if err := r.Store.Put(ctx, report.ID, SummaryPath, sum); err != nil {
		return fmt.Errorf("save summary %s: %w", report.ID, err)
	}
	return nil
}

// Load returns ErrNotFound (wrapped) when no report exists for scanID.
func (r Reports) Load(ctx context.Context, scanID string) (types.Report, error) {
	if r.Store == nil {
		return types.Report{}, fmt.Errorf("store is nil")
	}
	b, err := r.Store.Get(ctx, scanID, ReportPath)
	if err != nil {
		return types.Report{}, fmt.Errorf("load report %s: %w", scanID, err)
	}
	var report types.Report
	if err := json.Unmarshal(b, &report); err != nil {
		return types.Report{}, fmt.Errorf("decode report %s: %w", scanID, err)
	}
	return report, nil
}

func (r Reports) IDs(ctx context.Context) ([]string, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	return r.Store.Scans(ctx)
}

// Files lists the paths stored for scanID, sorted. A scan with nothing
// stored is ErrNotFound.
func (r Reports) Files(ctx context.Context, scanID string) ([]string, error) {
	if r.Store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	paths, err := r.Store.List(ctx, scanID)
	if err != nil {
		return nil, fmt.Errorf("list report %s: %w", scanID, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("list report %s: %w", scanID, ErrNotFound)
	}
	return paths, nil
}
