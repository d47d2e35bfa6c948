package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func tenantEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetTenantFromContext(r.Context())))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	h := APIKeyAuth(map[string]string{"acme": "k-acme", "globex": "k-globex"})(tenantEcho())

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"bearer key", "Bearer k-globex", http.StatusOK, "globex"},
		{"bare key", "k-acme", http.StatusOK, "acme"},
		{"wrong key", "Bearer nope", http.StatusUnauthorized, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/acme/chat", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != c.status {
				t.Fatalf("expected status %d, got %d", c.status, rec.Code)
			}
			if c.status == http.StatusOK && rec.Body.String() != c.body {
				t.Fatalf("expected tenant %q, got %q", c.body, rec.Body.String())
			}
		})
	}
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	rec := httptest.NewRecorder()
	APIKeyAuth(nil)(tenantEcho()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without configured keys, got %d", rec.Code)
	}
}

func TestRequireValidTenant(t *testing.T) {
	r := chi.NewRouter()
	r.Use(APIKeyAuth(map[string]string{"acme": "k-acme"}))
	r.With(RequireValidTenant).Get("/v1/{tenant}/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pong"))
	})

	cases := []struct {
		path   string
		status int
	}{
		{"/v1/acme/ping", http.StatusOK},
		{"/v1/globex/ping", http.StatusForbidden},
		{"/v1/bad%20tenant/ping", http.StatusBadRequest},
	}
	for _, c := range cases {
		req := httptest.NewRequest(http.MethodGet, c.path, nil)
		req.Header.Set("Authorization", "Bearer k-acme")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != c.status {
			t.Fatalf("%s: expected %d, got %d", c.path, c.status, rec.Code)
		}
	}
}

func TestLoggingLevels(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/boom":
			w.WriteHeader(http.StatusInternalServerError)
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.Write([]byte("ok"))
		}
	}))

	for path, level := range map[string]logrus.Level{"/ok": logrus.InfoLevel, "/bad": logrus.WarnLevel, "/boom": logrus.ErrorLevel} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
		e := hook.LastEntry()
		if e.Level != level {
			t.Fatalf("%s: expected level %s, got %s", path, level, e.Level)
		}
		if e.Data["path"] != path {
			t.Fatalf("%s: expected path field, got %v", path, e.Data["path"])
		}
	}
}

func TestRecordOperation(t *testing.T) {
	m := newMetrics()
	m.recordOperation("analyze_data", true, true)
	m.recordOperation("analyze_data", false, false)
	m.recordOperation("chat", true, false)

	snap := m.operationSnapshot()
	if got := snap["analyze_data"]; got != (OperationStats{Total: 2, Failed: 1, Fallbacks: 1}) {
		t.Fatalf("unexpected analyze_data stats %+v", got)
	}
	if got := snap["chat"]; got.Total != 1 || got.Failed != 0 {
		t.Fatalf("unexpected chat stats %+v", got)
	}
}

func TestHealthHandler(t *testing.T) {
	ok := CheckFunc(func(context.Context) error { return nil })
	bad := CheckFunc(func(context.Context) error { return errors.New("down") })

	rec := httptest.NewRecorder()
	HealthHandler(map[string]HealthChecker{"db": ok, "minio": bad})(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var status HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Checks["minio"].Message != "down" || status.Checks["db"].Status != "healthy" {
		t.Fatalf("unexpected checks %+v", status.Checks)
	}
}
