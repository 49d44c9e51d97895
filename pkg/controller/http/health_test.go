package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	controller "github.com/m-mizutani/deepcheck/pkg/controller/http"
	"github.com/m-mizutani/deepcheck/pkg/domain/model"
	"github.com/m-mizutani/deepcheck/pkg/usecase"
	"github.com/m-mizutani/gt"
)

func TestHealthEndpoint(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewAnalyze(nil) // detector not needed for health check test

	server, err := controller.NewServer(ctx, uc, controller.WithAddr("localhost:0"))
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)
	gt.V(t, w.Code).Equal(http.StatusOK)

	var status model.HealthStatus
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	gt.V(t, status.Status).Equal("healthy")
	gt.V(t, status.Service).Equal("deepcheck")
	gt.True(t, status.Version != "")
}

func TestOpenAPIEndpoint(t *testing.T) {
	server, err := controller.NewServer(context.Background(), usecase.NewAnalyze(nil))
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.V(t, w.Code).Equal(http.StatusOK)
	gt.V(t, w.Header().Get("Content-Type")).Equal("application/yaml")
	gt.True(t, len(w.Body.Bytes()) > 0)
}

func TestCORSPreflight(t *testing.T) {
	server, err := controller.NewServer(context.Background(), usecase.NewAnalyze(nil),
		controller.WithCORSOrigins("https://app.example.com"),
	)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.V(t, w.Header().Get("Access-Control-Allow-Origin")).Equal("https://app.example.com")
}
