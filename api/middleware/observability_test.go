package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/shopfront-backend/pkg/config"
	"github.com/angelmondragon/shopfront-backend/pkg/logger"
	"github.com/angelmondragon/shopfront-backend/pkg/metrics"
)

func TestRequestIDAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	handler := RequestID(logg)(Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("X-Request-Id", "edge-req-0001")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Header().Get("X-Request-Id") != "edge-req-0001" {
		t.Fatalf("expected request id echoed")
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected start and complete entries, got %d", len(lines))
	}
	var complete map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &complete); err != nil {
		t.Fatalf("decode log: %v", err)
	}
	if complete["message"] != "request.complete" || complete["request_id"] != "edge-req-0001" {
		t.Fatalf("unexpected log entry %v", complete)
	}
	if complete["status"] != float64(http.StatusTeapot) {
		t.Fatalf("expected status 418 in log, got %v", complete["status"])
	}
}

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	handler := RequestID(nil)(okHandler())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestRequestIDReplacesUnsafeInboundIDs(t *testing.T) {
	handler := RequestID(nil)(okHandler())
	for _, inbound := range []string{"short", "has space in it", "line\nbreak-0000", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", inbound)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		got := resp.Header().Get("X-Request-Id")
		if got == inbound {
			t.Fatalf("expected %q to be replaced", inbound)
		}
		if _, err := uuid.Parse(got); err != nil {
			t.Fatalf("expected a generated uuid, got %q", got)
		}
	}
}

func TestRecovererReturns500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestMetricsLabelsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := chi.NewRouter()
	r.Use(Metrics(metrics.NewHTTP(reg)))
	r.Get("/shops/{subdomain}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shops/acme", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/shops/other", nil))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var found bool
	for _, fam := range families {
		if fam.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "route" && label.GetValue() == "/shops/{subdomain}" {
					found = m.GetCounter().GetValue() == 2
				}
			}
		}
	}
	if !found {
		t.Fatal("expected both requests counted under the route pattern")
	}
}

func TestAllowedOriginsIncludeShopSubdomains(t *testing.T) {
	origins := AllowedOrigins(config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}}, "example.com")
	want := []string{"http://localhost:3000", "https://example.com", "https://*.example.com"}
	if strings.Join(origins, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected origins %v", origins)
	}

	handler := CORS(config.CORSConfig{}, "example.com")(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/cart", nil)
	req.Header.Set("Origin", "https://acme.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Header().Get("Access-Control-Allow-Origin") != "https://acme.example.com" {
		t.Fatalf("expected shop origin allowed, got %q", resp.Header().Get("Access-Control-Allow-Origin"))
	}
}
