package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerlens/internal/services"
)

func TestUIHandler_ServeIndex(t *testing.T) {
	files := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte(
			`<title>{{.AppName}} {{.Version}}</title><input name="{{.FormField}}"><span>{{.MaxUploadMB}} MB</span>`)},
	}

	h, err := NewUIHandler(files, PageData{AppName: "ledgerlens", Version: "1.0.0", FormField: "file", MaxUploadMB: 10}, testLogger())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `<title>ledgerlens 1.0.0</title><input name="file"><span>10 MB</span>`, rec.Body.String())
}

func TestUIHandler_MissingTemplate(t *testing.T) {
	_, err := NewUIHandler(fstest.MapFS{}, PageData{}, testLogger())
	assert.Error(t, err)
}

func TestHealthHandler(t *testing.T) {
	svc := services.NewHealthService("1.0.0", testLogger())
	h := NewHealthHandler(svc, testLogger())

	tests := []struct {
		name           string
		handlerFunc    http.HandlerFunc
		expectedStatus int
		expectedField  string
	}{
		{name: "health", handlerFunc: h.HealthCheck, expectedStatus: http.StatusOK, expectedField: "status"},
		{name: "liveness", handlerFunc: h.LivenessCheck, expectedStatus: http.StatusOK, expectedField: "runtime"},
		{name: "version", handlerFunc: h.Version, expectedStatus: http.StatusOK, expectedField: "api_version"},
		{name: "ready", handlerFunc: h.ReadinessCheck, expectedStatus: http.StatusOK, expectedField: "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handlerFunc(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, decodeBody(t, rec), tt.expectedField)
		})
	}

	t.Run("not ready", func(t *testing.T) {
		svc.AddCheck("fonts", func(context.Context) services.ServiceHealth {
			return services.NotReady("missing")
		})

		rec := httptest.NewRecorder()
		h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not_ready", decodeBody(t, rec)["status"])
	})
}
