package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/huangsam/streakline/core"
	"github.com/huangsam/streakline/internal/contract"
)

const maxBodySize = 1 << 20 // 1MB

// computeRequest is the JSON body of the POST endpoints.
type computeRequest struct {
	Timestamps []string `json:"timestamps" binding:"required"`
	Now        string   `json:"now"`
	Timezone   string   `json:"timezone"`
	WeekStart  string   `json:"week_start"`
	Range      string   `json:"range"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
}

func (r computeRequest) overrides() contract.RequestOverrides {
	return contract.RequestOverrides{
		Timezone:  r.Timezone,
		Now:       r.Now,
		WeekStart: r.WeekStart,
		Range:     r.Range,
		Start:     r.Start,
		End:       r.End,
	}
}

func queryOverrides(c *gin.Context) contract.RequestOverrides {
	return contract.RequestOverrides{
		Timezone:  c.Query("timezone"),
		Now:       c.Query("now"),
		WeekStart: c.Query("week_start"),
		Range:     c.Query("range"),
		Start:     c.Query("start"),
		End:       c.Query("end"),
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGetSnapshot(c *gin.Context) {
	run, ok := s.compute(c, queryOverrides(c), nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run.Snapshot)
}

func (s *Server) handlePostSnapshot(c *gin.Context) {
	req, ok := bindComputeRequest(c)
	if !ok {
		return
	}
	run, ok := s.compute(c, req.overrides(), req.Timestamps)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run.Snapshot)
}

func (s *Server) handleGetGrid(c *gin.Context) {
	run, ok := s.compute(c, queryOverrides(c), nil)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run.Grid)
}

func (s *Server) handlePostGrid(c *gin.Context) {
	req, ok := bindComputeRequest(c)
	if !ok {
		return
	}
	run, ok := s.compute(c, req.overrides(), req.Timestamps)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, run.Grid)
}

func (s *Server) handleGetMessage(c *gin.Context) {
	raw := c.Query("streak")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "streak query parameter required"})
		return
	}
	streak, err := strconv.Atoi(raw)
	if err != nil || streak < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("streak must be a non-negative integer, got %q", raw)})
		return
	}
	if err := core.ValidateTiers(s.baseCfg.Tiers); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"streak":  streak,
		"message": core.SelectMessage(streak, s.baseCfg.Tiers),
	})
}

func bindComputeRequest(c *gin.Context) (computeRequest, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
	var req computeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return computeRequest{}, false
	}
	return req, true
}

// compute runs the engine for one request and writes the error response when it fails.
func (s *Server) compute(c *gin.Context, o contract.RequestOverrides, timestamps []string) (core.RunResult, bool) {
	cfg := s.baseCfg.Clone()
	if err := contract.ApplyOverrides(cfg, o); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return core.RunResult{}, false
	}

	ctx := core.WithSuppressHeader(c.Request.Context())
	if id := c.GetString("request_id"); id != "" {
		ctx = core.WithRunKey(ctx, id)
	}

	run, err := core.GetTimestampResults(ctx, cfg, s.mgr, timestamps)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return core.RunResult{}, false
	}
	return run, true
}

// statusFor maps engine validation failures to 400 and everything else, which
// comes from reading the journal source, to 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidRange),
		errors.Is(err, core.ErrInvalidOptions),
		errors.Is(err, core.ErrInvalidTiers):
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
