package web

import (
	"net/http"

	"github.com/JonMunkholm/alumnicsv/internal/logging"
	"github.com/JonMunkholm/alumnicsv/internal/web/templates"
)

// indexRuns is how many recent runs the upload page lists.
const indexRuns = 10

// handleIndex renders the upload page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.RecentRuns(r.Context(), indexRuns)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to list runs for index", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.UploadPage(s.cfg.Security.RequireAPIKey, runs).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}
