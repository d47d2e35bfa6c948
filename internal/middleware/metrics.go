package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics stores application metrics
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	StartTime          time.Time

	mu         sync.Mutex
	operations map[string]*OperationStats
}

// OperationStats counts outcomes of one service operation.
type OperationStats struct {
	Total     uint64 `json:"total"`
	Failed    uint64 `json:"failed"`
	Fallbacks uint64 `json:"fallbacks"`
}

var globalMetrics = newMetrics()

func newMetrics() *Metrics {
	return &Metrics{StartTime: time.Now(), operations: map[string]*OperationStats{}}
}

// RecordOperation counts one call of a service operation. fallback marks a
// successful call whose data came from the local fallback.
func RecordOperation(op string, success, fallback bool) {
	globalMetrics.recordOperation(op, success, fallback)
}

func (m *Metrics) recordOperation(op string, success, fallback bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.operations[op]
	if !ok {
		s = &OperationStats{}
		m.operations[op] = s
	}
	s.Total++
	if !success {
		s.Failed++
	}
	if fallback {
		s.Fallbacks++
	}
}

func (m *Metrics) operationSnapshot() map[string]OperationStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]OperationStats, len(m.operations))
	for k, v := range m.operations {
		out[k] = *v
	}
	return out
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":       atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress": atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":     atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":      atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"operations":           globalMetrics.operationSnapshot(),
		"uptime_seconds":       time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
		atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
		defer atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))

		wrapped := wrapWriter(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
