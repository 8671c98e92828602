package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"markscan/internal/app"
	"markscan/internal/store"
)

type scanOptions struct {
	root    string
	file    string
	format  string
	save    bool
	workers int
}

func newScanCommand(root *rootOptions) *cobra.Command {
	opts := &scanOptions{}
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a workspace (or a single file) and print the marking report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, root)
		},
	}
	cmd.Flags().StringVar(&opts.root, "root", "", "workspace root (MARKSCAN_ROOT, default .)")
	cmd.Flags().StringVar(&opts.file, "file", "", "scan only files with this file's base name")
	cmd.Flags().StringVarP(&opts.format, "format", "o", formatJSON, "output format: json or table")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the report in the configured backend")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "files processed in parallel (MARKSCAN_WORKERS)")
	return cmd
}

func (o *scanOptions) run(cmd *cobra.Command, root *rootOptions) error {
	if o.format != formatJSON && o.format != formatTable {
		return fmt.Errorf("unknown format %q", o.format)
	}
	cfg := root.cfg
	if o.root != "" {
		cfg.Scan.Root = o.root
	}
	if o.workers > 0 {
		cfg.Scan.Workers = o.workers
	}

	scanner, err := app.NewScanner(cfg.Scan, root.log)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	report, err := scanner.Scan(ctx, o.file)
	if err != nil {
		return err
	}

	if o.save {
		st, closeStore, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return err
		}
		saveErr := store.Reports{Store: st}.Save(ctx, report)
		if err := errors.Join(saveErr, closeStore()); err != nil {
			return err
		}
		root.log.Info("report saved", "scanID", report.ID, "backend", cfg.Store.Backend)
	}
	return writeReport(cmd.OutOrStdout(), o.format, report)
}
