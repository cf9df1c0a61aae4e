package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-bill-keeper/internal/logger"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Split(strings.TrimSpace(b.buf.String()), "\n")
}

// requestWithLogger attaches a buffer-backed logger the way withTraceID does.
func requestWithLogger(method, target string, out *syncBuffer) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(zerolog.New(out).WithContext(req.Context()))
}

func decodeLogLine(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestWithLogging(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		status   int
		body     string
		wantSize float64
	}{
		{name: "full sync accepted", method: http.MethodPost, target: "/bills/sync", status: http.StatusOK, body: `{"version":1}`, wantSize: 13},
		{name: "delta rejected", method: http.MethodPost, target: "/bills/b1/delta-sync", status: http.StatusUnprocessableEntity, body: `{"error":"x"}`, wantSize: 13},
		{name: "unknown bill", method: http.MethodGet, target: "/bills/missing", status: http.StatusNotFound, body: "nf", wantSize: 2},
		{name: "query string is kept", method: http.MethodGet, target: "/bills/b1/balances?fresh=1", status: http.StatusOK, body: "{}", wantSize: 2},
		{name: "no body", method: http.MethodGet, target: "/health", status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				if tt.body != "" {
					_, _ = w.Write([]byte(tt.body))
				}
			})

			rr := httptest.NewRecorder()
			newTestHandler().withLogging(next).ServeHTTP(rr, requestWithLogger(tt.method, tt.target, out))

			assert.Equal(t, tt.status, rr.Code)

			entry := decodeLogLine(t, out.lines()[0])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, tt.target, entry["uri"])
			assert.Equal(t, float64(tt.status), entry["status"])
			assert.Equal(t, tt.wantSize, entry["size"])
			assert.Contains(t, entry, "duration")
		})
	}
}

func TestWithLogging_ImplicitStatus(t *testing.T) {
	out := &syncBuffer{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
		_, _ = w.Write([]byte("!"))
	})

	newTestHandler().withLogging(next).ServeHTTP(httptest.NewRecorder(), requestWithLogger(http.MethodGet, "/api/version", out))

	entry := decodeLogLine(t, out.lines()[0])
	assert.Equal(t, float64(http.StatusOK), entry["status"])
	assert.Equal(t, float64(3), entry["size"])
}

func TestWithLogging_ConcurrentRequests(t *testing.T) {
	out := &syncBuffer{}
	handler := newTestHandler().withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handler.ServeHTTP(httptest.NewRecorder(), requestWithLogger(http.MethodGet, "/bills/b1", out))
		}()
	}
	wg.Wait()

	assert.Len(t, out.lines(), 20)
}

func TestWithLogging_PanicPropagates(t *testing.T) {
	handler := newTestHandler().withLogging(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	assert.Panics(t, func() {
		handler.ServeHTTP(httptest.NewRecorder(), requestWithLogger(http.MethodGet, "/bills/b1", &syncBuffer{}))
	})
}

func TestWithLogging_WithoutRequestLogger(t *testing.T) {
	h := &Handler{logger: logger.Nop()}
	rr := httptest.NewRecorder()

	h.withLogging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusAccepted, rr.Code)
}
