package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

// handleListRuns serves GET /api/runs?limit=N.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:  fmt.Sprintf("invalid limit %q", v),
				Code:   "REQ001",
				Action: "Pass a non-negative integer",
			})
			return
		}
		limit = n
	}

	runs, err := s.service.RecentRuns(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []core.Run{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleStatus serves GET /api/status with the run limiter state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"limiter": s.service.LimiterStatus(),
	})
}

// healthTimeout bounds the dependency check in /healthz.
const healthTimeout = 2 * time.Second

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.healthCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := s.healthCheck(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
