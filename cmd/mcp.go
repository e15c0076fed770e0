package cmd

import (
	"github.com/huangsam/streakline/core"
	"github.com/huangsam/streakline/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [source]",
	Short: "Start the streakline MCP server",
	Long:  `Launch an MCP server over stdio so that AI agents can read streaks, grids and messages through standard tools.`,
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// stdio carries the protocol, so the run header must stay quiet
		rootCtx = core.WithSuppressHeader(rootCtx)
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
