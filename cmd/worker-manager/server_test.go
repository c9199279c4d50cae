package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestServer_Endpoints(t *testing.T) {
	var readyErr error
	srv := newServer(":0", func(context.Context) error { return readyErr }, zaptest.NewLogger(t))
	handler := srv.http.Handler

	tests := []struct {
		name       string
		path       string
		readyErr   error
		wantCode   int
		wantStatus string
	}{
		{name: "health", path: "/health", wantCode: http.StatusOK, wantStatus: "healthy"},
		{name: "ready", path: "/ready", wantCode: http.StatusOK, wantStatus: "ready"},
		{name: "not ready", path: "/ready", readyErr: errors.New("zeebe unavailable"), wantCode: http.StatusServiceUnavailable, wantStatus: "not ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readyErr = tt.readyErr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body["status"])
			if tt.readyErr != nil {
				assert.Equal(t, tt.readyErr.Error(), body["error"])
			}
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := newServer(":0", func(context.Context) error { return nil }, zaptest.NewLogger(t))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
