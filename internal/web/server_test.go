package web

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/alumnicsv/internal/config"
	"github.com/JonMunkholm/alumnicsv/internal/core"
	"github.com/JonMunkholm/alumnicsv/internal/metric"
	"github.com/JonMunkholm/alumnicsv/internal/storage/memory"
)

const scenarioCSV = "LastName,FirstName,Campus,Batch\n" +
	"Dela Rosa,Nolan,Main Campus,2004\n" +
	",Missing,Main Campus,2004\n" +
	"Cruz,Ana,CVC,1800"

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, RequestTimeout: 10 * time.Second},
		Upload:   config.UploadConfig{MaxFileSize: 1 << 20, MaxMemory: 1 << 20, MaxConcurrent: 2, MaxWaitTime: time.Second},
		Rate:     config.RateLimitConfig{Enabled: false, RequestsPerMinute: 60, Burst: 10},
		Pipeline: config.PipelineConfig{MinBatchYear: 1964},
		Logging:  config.LoggingConfig{Level: "info", Format: "text"},
		Metrics:  config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

type testEnv struct {
	server   *Server
	store    *memory.Store
	registry *metric.Registry
}

func newTestEnv(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()

	store := memory.NewStore(50)
	registry := metric.NewRegistry()
	svc := core.NewService(core.ServiceConfig{
		Pipeline:      core.PipelineOptions{MinBatchYear: cfg.Pipeline.MinBatchYear},
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
	},
		core.WithRecorder(store),
		core.WithMetrics(registry.Metrics),
		core.WithClock(func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) }),
	)

	return &testEnv{
		server:   NewServer(svc, cfg, WithMetrics(registry.Metrics, registry.Handler())),
		store:    store,
		registry: registry,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, path, field, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.RemoteAddr = "192.0.2.10:41000"
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTransform_Scenario(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(uploadRequest(t, "/transform", "file", "alumni.csv", scenarioCSV))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, core.ContentTypeCSV, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="pisay_transformed.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "last_name,first_name,campus,batch_year\nDela Rosa,Nolan,Main Campus,2004\n", rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get(headerRowsAccepted))
	assert.Equal(t, "2", rec.Header().Get(headerRowsDropped))
	assert.NotEmpty(t, rec.Header().Get(headerRunID))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	runs, err := env.store.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "alumni.csv", runs[0].Filename)
	assert.Equal(t, "192.0.2.10", runs[0].IPAddress)
	assert.Equal(t, rec.Header().Get(headerRunID), runs[0].ID.String())
}

func TestNormalize_Scenario(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(uploadRequest(t, "/normalize", "file", "alumni.csv", scenarioCSV))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, core.ContentTypeZIP, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="normalized_output.zip"`, rec.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"alumni.csv", "campus.csv", "alumni_campus.csv"}, names)

	tables, err := core.ReadNormalizedArchive(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []core.Campus{{CampusID: 1, CampusName: "Main Campus"}}, tables.Campuses)
	assert.Equal(t, []core.AlumniCampus{{AlumniID: 1, CampusID: 1}}, tables.Links)
	require.Len(t, tables.Alumni, 1)
	assert.Equal(t, 1, tables.Alumni[0].AlumniID)
}

func TestConvert_NoFile(t *testing.T) {
	env := newTestEnv(t, testConfig())

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"transform without file part", uploadRequest(t, "/transform", "", "", "")},
		{"normalize without file part", uploadRequest(t, "/normalize", "", "", "")},
		{"wrong field name", uploadRequest(t, "/transform", "upload", "a.csv", scenarioCSV)},
		{"not multipart", httptest.NewRequest(http.MethodPost, "/normalize", strings.NewReader(scenarioCSV))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(tt.req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Equal(t, "FILE004", resp.Code)
		})
	}
}

func TestConvert_EmptyFileIsProcessingFailure(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(uploadRequest(t, "/transform", "file", "empty.csv", ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "FILE005", resp.Code)

	runs, err := env.store.Recent(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, core.RunFailed, runs[0].Status)
}

func TestConvert_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxFileSize = 512
	env := newTestEnv(t, cfg)

	big := scenarioCSV + strings.Repeat("\nCruz,Ana,Main,2001", 200)
	rec := env.do(uploadRequest(t, "/transform", "file", "big.csv", big))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeError(t, rec).Code)
}

func TestAPIKeyAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"k1", "k2"}
	env := newTestEnv(t, cfg)

	missing := env.do(uploadRequest(t, "/transform", "file", "a.csv", scenarioCSV))
	assert.Equal(t, http.StatusUnauthorized, missing.Code)

	wrong := uploadRequest(t, "/transform", "file", "a.csv", scenarioCSV)
	wrong.Header.Set("X-API-Key", "nope")
	assert.Equal(t, http.StatusForbidden, env.do(wrong).Code)

	ok := uploadRequest(t, "/transform", "file", "a.csv", scenarioCSV)
	ok.Header.Set("X-API-Key", "k2")
	assert.Equal(t, http.StatusOK, env.do(ok).Code)

	health := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code, "probes stay open")
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 2}
	env := newTestEnv(t, cfg)

	get := func(path, remote string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = remote
		return env.do(req)
	}

	assert.Equal(t, http.StatusOK, get("/api/status", "198.51.100.1:1000").Code)
	assert.Equal(t, http.StatusOK, get("/api/status", "198.51.100.1:1001").Code)

	limited := get("/api/status", "198.51.100.1:1002")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "RATE001", decodeError(t, limited).Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, get("/api/status", "198.51.100.2:1000").Code, "other clients keep their own bucket")
}

func TestRateLimit_ProbesExempt(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	env := newTestEnv(t, cfg)

	for i := 0; i < 5; i++ {
		for _, path := range []string{"/healthz", cfg.Metrics.Path, "/"} {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			req.RemoteAddr = "10.0.0.1:9000"
			assert.Equal(t, http.StatusOK, env.do(req).Code, "%s request %d", path, i)
		}
	}
}

func TestListRuns(t *testing.T) {
	env := newTestEnv(t, testConfig())

	for _, name := range []string{"a.csv", "b.csv"} {
		rec := env.do(uploadRequest(t, "/transform", "file", name, scenarioCSV))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/runs?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Runs []core.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Runs, 1)
	assert.Equal(t, "b.csv", body.Runs[0].Filename)
	assert.Equal(t, 1, body.Runs[0].RowsAccepted)

	bad := env.do(httptest.NewRequest(http.MethodGet, "/api/runs?limit=ten", nil))
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestIndexPage(t *testing.T) {
	env := newTestEnv(t, testConfig())
	require.Equal(t, http.StatusOK, env.do(uploadRequest(t, "/transform", "file", "<script>.csv", scenarioCSV)).Code)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `action="/transform"`)
	assert.Contains(t, body, `action="/normalize"`)
	assert.Contains(t, body, `name="file"`)
	assert.Contains(t, body, "&lt;script&gt;.csv")
	assert.NotContains(t, body, "<script>.csv")
}

func TestHealthCheck(t *testing.T) {
	cfg := testConfig()
	store := memory.NewStore(1)
	svc := core.NewService(core.ServiceConfig{}, core.WithRecorder(store))

	healthy := NewServer(svc, cfg)
	rec := httptest.NewRecorder()
	healthy.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	failing := NewServer(svc, cfg, WithHealthCheck(func(ctx context.Context) error {
		return errors.New("database down")
	}))
	rec = httptest.NewRecorder()
	failing.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, testConfig())
	require.Equal(t, http.StatusOK, env.do(uploadRequest(t, "/transform", "file", "a.csv", scenarioCSV)).Code)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `alumnicsv_pipeline_runs_total{mode="transform",status="succeeded"} 1`)
	assert.Contains(t, body, `alumnicsv_http_requests_total{method="POST",route="/transform",status="200"} 1`)
}
