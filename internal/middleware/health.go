package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// HealthChecker is one dependency probed by /healthz (recorder database,
// mongo, image archive).
type HealthChecker interface {
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to HealthChecker.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the interaction recorder database.
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
}

type CheckStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// HealthHandler probes every checker in parallel and answers 503 if any of
// them fails. With no checkers it always reports healthy.
func HealthHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var (
			mu     sync.Mutex
			wg     sync.WaitGroup
			checks = make(map[string]CheckStatus, len(checkers))
		)
		for name, checker := range checkers {
			wg.Add(1)
			go func(name string, checker HealthChecker) {
				defer wg.Done()
				start := time.Now()
				st := CheckStatus{Status: "healthy"}
				if err := checker.Check(ctx); err != nil {
					st = CheckStatus{Status: "unhealthy", Message: err.Error()}
				}
				st.LatencyMS = time.Since(start).Milliseconds()
				mu.Lock()
				checks[name] = st
				mu.Unlock()
			}(name, checker)
		}
		wg.Wait()

		health := HealthStatus{Status: "healthy", Timestamp: time.Now().UTC(), Checks: checks}
		statusCode := http.StatusOK
		for _, st := range checks {
			if st.Status != "healthy" {
				health.Status = "unhealthy"
				statusCode = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(health)
	}
}

// LivenessHandler only says the process is up.
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
