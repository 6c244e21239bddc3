package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/terangalabs/kadoo-backend/pkg/config"
	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

func testRouter() http.Handler {
	return NewRouter(Deps{
		Config: &config.Config{App: config.AppConfig{Env: "test"}},
		Logger: logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard}),
	})
}

func TestHealthLive(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if got := rec.Header().Get("X-Kadoo-Env"); got != "test" {
		t.Fatalf("env header %q", got)
	}
}

func TestIdentityRequiredOnAPIRoutes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/points/", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected identity rejection, got %d", rec.Code)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}
