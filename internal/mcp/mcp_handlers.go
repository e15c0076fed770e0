package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/huangsam/streakline/core"
	"github.com/huangsam/streakline/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// messageResult is the payload of get_motivation_message.
type messageResult struct {
	Streak  int    `json:"streak"`
	Message string `json:"message"`
}

// requestConfig clones the base config and applies the overrides present in request.
func (h *toolHandler) requestConfig(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	err := contract.ApplyOverrides(cfg, contract.RequestOverrides{
		Timezone:  request.GetString("timezone", ""),
		Now:       request.GetString("now", ""),
		WeekStart: request.GetString("week_start", ""),
		Range:     request.GetString("range", ""),
		Start:     request.GetString("start", ""),
		End:       request.GetString("end", ""),
	})
	return cfg, err
}

// requestTimestamps returns nil when the argument is absent so the configured source is used.
func requestTimestamps(request mcp.CallToolRequest) []string {
	if _, ok := request.GetArguments()["timestamps"]; !ok {
		return nil
	}
	return request.GetStringSlice("timestamps", []string{})
}

func (h *toolHandler) run(ctx context.Context, request mcp.CallToolRequest) (core.RunResult, *mcp.CallToolResult) {
	cfg, err := h.requestConfig(request)
	if err != nil {
		return core.RunResult{}, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}
	run, err := core.GetTimestampResults(core.WithSuppressHeader(ctx), cfg, h.mgr, requestTimestamps(request))
	if err != nil {
		return core.RunResult{}, mcp.NewToolResultError(fmt.Sprintf("computation failed: %v", err))
	}
	return run, nil
}

func (h *toolHandler) handleGetStreakSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, errResult := h.run(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(run.Snapshot), nil
}

func (h *toolHandler) handleGetContributionGrid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	run, errResult := h.run(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(run.Grid), nil
}

func (h *toolHandler) handleGetMotivationMessage(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireFloat("streak")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if raw < 0 || raw != math.Trunc(raw) {
		return mcp.NewToolResultError(fmt.Sprintf("streak must be a non-negative whole number, got %v", raw)), nil
	}
	if err := core.ValidateTiers(h.baseCfg.Tiers); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	streak := int(raw)
	return jsonResult(messageResult{Streak: streak, Message: core.SelectMessage(streak, h.baseCfg.Tiers)}), nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}
