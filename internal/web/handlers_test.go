package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/huangsam/streakline/internal/contract"
	"github.com/huangsam/streakline/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, source string) *Server {
	t.Helper()
	cfg := &contract.Config{
		Source:    source,
		Location:  time.UTC,
		FixedNow:  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		WeekStart: schema.MondayWeekStart,
		GridRange: schema.GridRange{Amount: 1, Unit: "week"},
		Tiers:     schema.DefaultMotivationTiers(),
	}
	return NewServer(cfg, nil)
}

func journalFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.txt")
	content := "2024-01-13T09:00:00Z\n2024-01-14T21:00:00Z\n2024-01-15T07:30:00Z\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func serve(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthAndRequestID(t *testing.T) {
	s := newTestServer(t, "")

	w := serve(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestHandleGetSnapshot(t *testing.T) {
	s := newTestServer(t, journalFile(t))

	w := serve(s, http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var snap schema.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 3, snap.CurrentStreak)
	assert.Equal(t, 3, snap.TotalEntries)

	// moving the clock two days ahead breaks the streak
	w = serve(s, http.MethodGet, "/api/snapshot?now=2024-01-17", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, 0, snap.CurrentStreak)
	assert.Equal(t, 3, snap.LongestStreak)
}

func TestHandlePostSnapshot(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		check      func(t *testing.T, body []byte)
	}{
		{
			name:       "gap resets streak",
			body:       `{"timestamps":["2024-01-10T08:00:00Z","2024-01-15T08:00:00Z"]}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var snap schema.Snapshot
				require.NoError(t, json.Unmarshal(body, &snap))
				assert.Equal(t, 1, snap.CurrentStreak)
				assert.Equal(t, 2, snap.TotalActiveDays)
			},
		},
		{
			name:       "empty journal",
			body:       `{"timestamps":[]}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var snap schema.Snapshot
				require.NoError(t, json.Unmarshal(body, &snap))
				assert.Equal(t, 0, snap.CurrentStreak)
				assert.Equal(t, "Start your reflection journey today!", snap.Message)
			},
		},
		{
			name:       "skipped entries are reported",
			body:       `{"timestamps":["2024-01-15T08:00:00Z","garbage",""]}`,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var snap schema.Snapshot
				require.NoError(t, json.Unmarshal(body, &snap))
				assert.Len(t, snap.Skipped, 2)
			},
		},
		{"missing timestamps", `{}`, http.StatusBadRequest, nil},
		{"malformed json", `{"timestamps":`, http.StatusBadRequest, nil},
		{"bad week start", `{"timestamps":[],"week_start":"friday"}`, http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, http.MethodPost, "/api/snapshot", []byte(tt.body))
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.check != nil {
				tt.check(t, w.Body.Bytes())
			} else {
				var resp map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp["error"])
			}
		})
	}
}

func TestHandleGetGrid(t *testing.T) {
	s := newTestServer(t, journalFile(t))

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantCells  int
	}{
		{"configured range", "", http.StatusOK, 7},
		{"named range", "?range=30+days", http.StatusOK, 30},
		{"explicit dates", "?start=2024-01-01&end=2024-01-14", http.StatusOK, 14},
		{"start after end", "?start=2024-02-01&end=2024-01-01", http.StatusBadRequest, 0},
		{"half explicit", "?start=2024-01-01", http.StatusBadRequest, 0},
		{"bad range", "?range=forever", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(s, http.MethodGet, "/api/grid"+tt.query, nil)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}
			var grid schema.ContributionGrid
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grid))
			assert.Len(t, grid.Cells, tt.wantCells)
		})
	}
}

func TestHandlePostGrid(t *testing.T) {
	s := newTestServer(t, "")
	body := `{"timestamps":["2024-01-02T10:00:00Z"],"start":"2024-01-01","end":"2024-01-03"}`

	w := serve(s, http.MethodPost, "/api/grid", []byte(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var grid schema.ContributionGrid
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grid))
	require.Len(t, grid.Cells, 3)
	assert.Equal(t, schema.LevelLow, grid.Cells[1].Level)
}

func TestHandleGetMessage(t *testing.T) {
	s := newTestServer(t, "")

	tests := []struct {
		query      string
		wantStatus int
		want       string
	}{
		{"?streak=0", http.StatusOK, "Start your reflection journey today!"},
		{"?streak=7", http.StatusOK, "A full week of reflection. Impressive!"},
		{"?streak=45", http.StatusOK, "Legendary reflection streak! You're unstoppable."},
		{"", http.StatusBadRequest, "streak query parameter required"},
		{"?streak=-2", http.StatusBadRequest, "non-negative"},
		{"?streak=lots", http.StatusBadRequest, "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := serve(s, http.MethodGet, "/api/message"+tt.query, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
}

func TestSourceErrorsMapTo502(t *testing.T) {
	s := newTestServer(t, filepath.Join(t.TempDir(), "missing.jsonl"))
	w := serve(s, http.MethodGet, "/api/snapshot", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "failed to read journal file")
}
