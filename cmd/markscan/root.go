package main

import (
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"markscan/internal/config"
	"markscan/internal/logging"
)

type rootOptions struct {
	devLog    bool
	verbosity int

	cfg   *config.Config
	log   logr.Logger
	flush func()
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{flush: func() {}}
	cmd := &cobra.Command{
		Use:           "markscan",
		Short:         "Reports which Angular modules and components carry Mezzurite monitoring markup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("dev-log") {
				cfg.DevLog = opts.devLog
			}
			log, flush, err := logging.New(logging.Options{Development: cfg.DevLog, Verbosity: opts.verbosity})
			if err != nil {
				return err
			}
			opts.cfg, opts.log, opts.flush = cfg, log, flush
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			opts.flush()
		},
	}
	cmd.PersistentFlags().BoolVar(&opts.devLog, "dev-log", false, "human-readable debug logging (LOG_DEV)")
	cmd.PersistentFlags().IntVarP(&opts.verbosity, "verbosity", "v", 0, "log verbosity level")

	cmd.AddCommand(newScanCommand(opts), newServeCommand(opts))
	return cmd
}
