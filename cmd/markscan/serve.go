package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"markscan/internal/app"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	var addr, workspace string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scan API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := root.cfg
			if addr != "" {
				cfg.Port = addr
			}
			if workspace != "" {
				cfg.Scan.Root = workspace
			}
			a, err := app.New(cmd.Context(), cfg, root.log)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- a.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}
			root.log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.Shutdown(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (PORT, default :8081)")
	cmd.Flags().StringVar(&workspace, "root", "", "workspace root (MARKSCAN_ROOT, default .)")
	return cmd
}
