package app

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/config"
	"ledgerlens/internal/shared/testutil"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	return newTestAppWithLogger(t, slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func newTestAppWithLogger(t *testing.T, logger *slog.Logger) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Security.RateLimit.Enabled = false

	ui := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte(`<h1>{{.AppName}}</h1><input type="file" name="{{.FormField}}">`)},
	}

	app, err := NewApplication(cfg, logger, ui)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.OTelProviders.Shutdown(context.Background()) })
	return app
}

func upload(t *testing.T, h http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestApplication_UploadFlow(t *testing.T) {
	app := newTestApp(t)
	h := app.Handler()

	content := testutil.Workbook(t, [][]interface{}{
		{"name", "amount", "quantity"},
		{"Widget", "10", 1},
		{"Gadget", "20", "n/a"},
		{"Bolt", "abc", 3},
	})

	rec := upload(t, h, "sales.xlsx", content)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "File processed successfully", body["message"])
	require.Len(t, body["data"], 3)

	first := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Widget", first["name"])

	calc := body["calculations"].(map[string]interface{})
	amount := calc["amount"].(map[string]interface{})
	assert.Equal(t, 30.0, amount["sum"])
	assert.Equal(t, 15.0, amount["average"])
	assert.Equal(t, 10.0, amount["min"])
	assert.Equal(t, 20.0, amount["max"])
	assert.Equal(t, 2.0, amount["count"])

	quantity := calc["quantity"].(map[string]interface{})
	assert.Equal(t, 4.0, quantity["sum"])
	assert.NotContains(t, calc, "price")
	assert.NotContains(t, calc, "total")
}

func TestApplication_UploadErrors(t *testing.T) {
	app := newTestApp(t)
	h := app.Handler()

	tests := []struct {
		name           string
		filename       string
		content        []byte
		expectedStatus int
		expectedError  string
	}{
		{name: "no file", expectedStatus: http.StatusBadRequest, expectedError: "No file uploaded"},
		{name: "not a workbook", filename: "broken.xlsx", content: []byte("definitely not a zip archive"), expectedStatus: http.StatusInternalServerError, expectedError: "Failed to process file"},
		{name: "text file", filename: "notes.txt", content: []byte("hello"), expectedStatus: http.StatusInternalServerError, expectedError: "Failed to process file"},
		{name: "csv file", filename: "data.csv", content: []byte("amount\n1\n"), expectedStatus: http.StatusInternalServerError, expectedError: "Failed to process file"},
		{name: "empty file", filename: "empty.xlsx", expectedStatus: http.StatusInternalServerError, expectedError: "Failed to process file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := upload(t, h, tt.filename, tt.content)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.NotContains(t, body, "calculations")
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			}
		})
	}
}

func TestApplication_ParseFailureLogsCause(t *testing.T) {
	logger, capture := testutil.NewTestLogger(t)
	h := newTestAppWithLogger(t, logger).Handler()

	rec := upload(t, h, "broken.xlsx", []byte("definitely not a zip archive"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "unrecognized workbook format")

	logged := testutil.AssertLogged(t, capture, slog.LevelError, "request failed")
	assert.Contains(t, logged.Attrs["error"], "unrecognized workbook format")
	assert.Equal(t, int64(http.StatusInternalServerError), logged.Attrs["status"])
}

func TestApplication_Chart(t *testing.T) {
	h := newTestApp(t).Handler()

	rec := postJSON(h, "/api/chart",
		`{"data":[{"name":"Widget","amount":"10"},{"category":"Tools","total":25}],"chartType":"bar","title":"Sales"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="chart.png"`, rec.Header().Get("Content-Disposition"))

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultChartWidth, cfg.Width)

	t.Run("empty data", func(t *testing.T) {
		rec := postJSON(h, "/api/chart", `{"data":[]}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		rec := postJSON(h, "/api/chart", `{"data":[{"amount":1}],"chartType":"radar"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to generate chart", decode(t, rec)["error"])
	})

	t.Run("wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chart", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
		assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "Unsupported content type", decode(t, rec)["error"])
	})
}

func TestApplication_ReceiptAndCSV(t *testing.T) {
	h := newTestApp(t).Handler()

	rec := postJSON(h, "/api/receipt",
		`{"data":[{"name":"Widget","amount":10},{"name":"Gadget","amount":20}],"companyInfo":{"name":"Acme Ltd"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = postJSON(h, "/api/export/csv", `{"data":[{"name":"Widget","amount":10}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "\xEF\xBB\xBFname,amount\nWidget,10\n", rec.Body.String())
}

func TestApplication_Routes(t *testing.T) {
	h := newTestApp(t).Handler()

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		contains       string
	}{
		{name: "health", path: "/api/health", expectedStatus: http.StatusOK, contains: `"status":"ok"`},
		{name: "ready", path: "/api/health/ready", expectedStatus: http.StatusOK, contains: `"chart_renderer"`},
		{name: "live", path: "/api/health/live", expectedStatus: http.StatusOK, contains: `"alive"`},
		{name: "version", path: "/api/version", expectedStatus: http.StatusOK, contains: `"api_version"`},
		{name: "metrics", path: "/metrics", expectedStatus: http.StatusOK, contains: "go_goroutines"},
		{name: "ui", path: "/", expectedStatus: http.StatusOK, contains: `name="file"`},
		{name: "unknown", path: "/api/nope", expectedStatus: http.StatusNotFound, contains: `"success":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
			assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		})
	}
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 1}

	app, err := NewApplication(cfg, slog.New(slog.NewJSONHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	defer app.OTelProviders.Shutdown(context.Background())

	first := httptest.NewRecorder()
	app.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	second := httptest.NewRecorder()
	app.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestNewApplication_RequiresConfig(t *testing.T) {
	_, err := NewApplication(nil, nil, nil)
	assert.Error(t, err)
}

func TestApplication_Shutdown(t *testing.T) {
	app := newTestApp(t)
	assert.NoError(t, app.Shutdown(context.Background()))
}
