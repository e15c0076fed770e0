// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/streakline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Options shared by the tools that compute over a journal.
func journalToolOptions(extra ...mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithArray("timestamps",
			mcp.Description("Entry creation timestamps (RFC3339, naive local, YYYY-MM-DD or Unix seconds). Omit to read the configured journal source."),
			mcp.WithStringItems(),
		),
		mcp.WithString("now", mcp.Description("Reference instant (RFC3339, YYYY-MM-DD or 'N days ago'). Defaults to the current time.")),
		mcp.WithString("timezone", mcp.Description("IANA timezone that defines calendar days, e.g. 'America/New_York'.")),
		mcp.WithString("week_start", mcp.Description("Which days count as this week."), mcp.Enum("monday", "sunday", "rolling")),
	}
	return append(opts, extra...)
}

// NewMCPServer initializes and configures the streakline MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Streakline Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_streak_snapshot ---
	s.AddTool(mcp.NewTool("get_streak_snapshot",
		append([]mcp.ToolOption{
			mcp.WithDescription("Compute the reflection streak snapshot: current and longest streak, active days, entries this week and month, and a motivation message."),
		}, journalToolOptions()...)...,
	), h.handleGetStreakSnapshot)

	// --- 2. Tool: get_contribution_grid ---
	s.AddTool(mcp.NewTool("get_contribution_grid",
		append([]mcp.ToolOption{
			mcp.WithDescription("Build a day-by-day contribution grid with entry counts and activity levels."),
		}, journalToolOptions(
			mcp.WithString("range", mcp.Description("Range ending today, e.g. '6 months', '52 weeks', '1 year' or 'ytd'.")),
			mcp.WithString("start", mcp.Description("First day (YYYY-MM-DD). Requires end.")),
			mcp.WithString("end", mcp.Description("Last day (YYYY-MM-DD). Requires start.")),
		)...)...,
	), h.handleGetContributionGrid)

	// --- 3. Tool: get_motivation_message ---
	s.AddTool(mcp.NewTool("get_motivation_message",
		mcp.WithDescription("Return the motivation message for a streak length."),
		mcp.WithNumber("streak", mcp.Description("Current streak in days."), mcp.Required(), mcp.Min(0)),
	), h.handleGetMotivationMessage)

	return s
}

// StartMCPServer starts the streakline MCP server over stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
