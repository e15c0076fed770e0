package cmd

import (
	"github.com/huangsam/streakline/internal/web"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve [source]",
	Short: "Serve snapshots and grids over HTTP.",
	Long: `Start a JSON API for dashboards and widgets.

Endpoints:
  GET  /healthz
  GET  /api/snapshot   - snapshot of the configured source
  POST /api/snapshot   - snapshot of the timestamps in the request body
  GET  /api/grid       - grid of the configured source (range, start, end)
  POST /api/grid       - grid of the timestamps in the request body
  GET  /api/message    - message for ?streak=N

Query parameters timezone, now and week_start override the configuration per request.

Examples:
  # Serve a journal on the default address
  streakline serve journal.jsonl

  # Listen on all interfaces
  streakline serve journal.jsonl --addr 0.0.0.0:9000`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return web.NewServer(cfg, cacheManager).Run(rootCtx, cfg.Addr)
	},
}
