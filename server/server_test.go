package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giygas/drugstore/apiclient"
	"github.com/giygas/drugstore/config"
	"github.com/giygas/drugstore/handlers"
	"github.com/giygas/drugstore/health"
	"github.com/giygas/drugstore/orchestrator"
	"github.com/go-chi/chi/v5"
)

// newUpstream serves a two-drug catalog in the upstream envelope format.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	write := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}
	r.Get("/api/drugs", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{
			{"_id": "d1", "name": "Doliprane", "country": "FR", "composition": []map[string]any{{"name": "Paracetamol", "activeSubstance": true}}},
			{"_id": "d2", "name": "Panadol", "country": "GB", "composition": []map[string]any{{"name": "Paracetamol", "activeSubstance": true}}},
		})
	})
	r.Get("/api/countries", func(w http.ResponseWriter, r *http.Request) {
		write(w, []map[string]any{{"_id": "FR", "name": "France"}, {"_id": "GB", "name": "United Kingdom"}})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(upstream string) *config.Config {
	return &config.Config{
		Port:            "8080",
		Address:         "localhost",
		Env:             config.EnvTest,
		LogLevel:        "error",
		MaxRequestBody:  1024,
		MaxHeaderSize:   4096,
		APIBaseURL:      upstream + "/api",
		UpstreamTimeout: 5 * time.Second,
		AllowedOrigins:  []string{"http://localhost:5173"},
	}
}

func setupServer(t *testing.T) *Server {
	t.Helper()
	upstream := newUpstream(t)
	cfg := testConfig(upstream.URL)

	client, err := apiclient.New(cfg.APIBaseURL, apiclient.WithTimeout(cfg.UpstreamTimeout))
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	ctrl := orchestrator.New(client, orchestrator.Options{})
	ctrl.Start()
	ctrl.Wait()
	t.Cleanup(ctrl.Close)

	s := NewServer(cfg, handlers.NewCatalogHandler(ctrl), health.NewHealthChecker(ctrl, nil))
	t.Cleanup(s.rateLimiter.Stop)
	return s
}

func do(h http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "127.0.0.1:1234"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestNewServer(t *testing.T) {
	s := setupServer(t)

	if s.server.Addr != "localhost:8080" {
		t.Errorf("Expected server address localhost:8080, got %s", s.server.Addr)
	}
	if s.server.WriteTimeout <= s.config.UpstreamTimeout {
		t.Errorf("Expected write timeout above the upstream timeout, got %s", s.server.WriteTimeout)
	}
	if s.router == nil || s.rateLimiter == nil {
		t.Error("Router and rate limiter should be set")
	}
}

func TestRoutes(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		method   string
		path     string
		expected int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/state", http.StatusOK},
		{http.MethodGet, "/api/drugs", http.StatusOK},
		{http.MethodGet, "/api/countries", http.StatusOK},
		{http.MethodPost, "/api/view/all", http.StatusOK},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
		{http.MethodPatch, "/api/state", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := do(s.Handler(), tt.method, tt.path, "")
			if rr.Code != tt.expected {
				t.Errorf("Expected status %d, got %d: %s", tt.expected, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestMiddlewareHeaders(t *testing.T) {
	s := setupServer(t)

	rr := do(s.Handler(), http.MethodGet, "/api/state", "")
	if rr.Header().Get("X-RateLimit-Limit") == "" {
		t.Error("Expected rate limit headers")
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected CORS origin header, got %q", got)
	}
}

func TestRequestBodyTooLarge(t *testing.T) {
	s := setupServer(t)

	body := `{"name":"` + strings.Repeat("a", 2048) + `"}`
	rr := do(s.Handler(), http.MethodPost, "/api/countries", body)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", rr.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	s := setupServer(t)
	s.server.Addr = "127.0.0.1:0"

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Start()
	}()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}

	select {
	case err := <-errChan:
		if err != http.ErrServerClosed {
			t.Errorf("Expected ErrServerClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Error("Start did not return after shutdown")
	}
}
