package app

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"markscan/internal/config"
	"markscan/internal/pipeline"
	"markscan/internal/scan"
	"markscan/internal/server"
	"markscan/internal/store"
	"markscan/internal/tsast"
)

// NewScanner wires a workspace-backed scanner from configuration. Walks are
// cached for cfg.CacheTTL.
func NewScanner(cfg config.ScanConfig, log logr.Logger) (*pipeline.Scanner, error) {
	return newScanner(cfg, scan.Options{}, log)
}

// newServerScanner walks the tree on every scan so a long-running server
// sees files added between requests.
func newServerScanner(cfg config.ScanConfig, log logr.Logger) (*pipeline.Scanner, error) {
	return newScanner(cfg, scan.Options{BypassCache: true}, log)
}

func newScanner(cfg config.ScanConfig, opts scan.Options, log logr.Logger) (*pipeline.Scanner, error) {
	scan.SetCacheTTL(cfg.CacheTTL)
	ws, err := scan.NewWorkspace(cfg.Root, opts)
	if err != nil {
		return nil, err
	}
	return &pipeline.Scanner{
		Finder:      ws,
		Reader:      ws,
		Parser:      tsast.NewTreeSitterParser(),
		Logger:      log,
		Root:        ws.Root,
		Workers:     cfg.Workers,
		FileTimeout: cfg.FileTimeout,
		Include:     cfg.Include,
		Exclude:     cfg.Exclude,
	}, nil
}

type App struct {
	server     *server.Server
	closeStore func() error
}

func New(ctx context.Context, cfg *config.Config, log logr.Logger) (*App, error) {
	scanner, err := newServerScanner(cfg.Scan, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	st, closeStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open report store: %w", err)
	}

	h := &server.Handler{
		Scanner: *scanner,
		Reports: store.Reports{Store: st},
		Log:     log.WithName("api"),
	}
	return &App{
		server:     server.New(cfg.Port, h.Routes(), log),
		closeStore: closeStore,
	}, nil
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.closeStore(); err == nil {
		err = cerr
	}
	return err
}
