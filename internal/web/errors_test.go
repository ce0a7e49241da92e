package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/alumnicsv/internal/core"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRespondError_LogLevel(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		wantLevel string
		wantCode  string
	}{
		{"cataloged pipeline failure", fmt.Errorf("parse: %w", core.ErrInvalidCSV), http.StatusInternalServerError, "WARN", "FILE002"},
		{"busy", core.ErrTooManyRuns, http.StatusServiceUnavailable, "WARN", "UPL002"},
		{"client error", core.ErrNoFile, http.StatusBadRequest, "WARN", "FILE004"},
		{"unexpected failure", errors.New("disk on fire"), http.StatusInternalServerError, "ERROR", "PROC000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLogs(t)
			rec := httptest.NewRecorder()

			respondError(rec, httptest.NewRequest(http.MethodPost, "/transform", nil), tt.err, tt.status)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.NotContains(t, rec.Body.String(), tt.err.Error())

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.wantLevel, entry["level"])
			assert.Equal(t, tt.err.Error(), entry["error"])
		})
	}
}
