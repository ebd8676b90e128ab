package logging

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

// captureLogs runs one request through the middleware and returns the log text
func captureLogs(t *testing.T, req *http.Request, status int) string {
	t.Helper()

	var out strings.Builder
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != status {
		t.Fatalf("Expected status %d to pass through, got %d", status, rr.Code)
	}
	return out.String()
}

func withRequestID(req *http.Request, id any) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, id))
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		target    string
		requestID any
		status    int
		contains  []string
		excludes  []string
	}{
		{
			name:     "health is not logged",
			method:   http.MethodGet,
			target:   "/health",
			status:   http.StatusOK,
			excludes: []string{"HTTP request"},
		},
		{
			name:     "metrics is not logged",
			method:   http.MethodGet,
			target:   "/metrics",
			status:   http.StatusOK,
			excludes: []string{"HTTP request"},
		},
		{
			name:      "glossary search",
			method:    http.MethodGet,
			target:    "/v1/glossary?q=lead&category=device",
			requestID: "req-1",
			status:    http.StatusOK,
			contains:  []string{"HTTP request", "request_id=req-1", "path=/v1/glossary", "category=device", "status_code=200", "bytes_written=11"},
		},
		{
			name:      "no query field without a query",
			method:    http.MethodGet,
			target:    "/v1/categories",
			requestID: "req-2",
			status:    http.StatusOK,
			excludes:  []string{"query="},
		},
		{
			name:      "report title is redacted",
			method:    http.MethodPost,
			target:    "/v1/reports/explain?title=Jane+Doe+follow-up",
			requestID: "req-3",
			status:    http.StatusOK,
			contains:  []string{"title=REDACTED"},
			excludes:  []string{"Jane"},
		},
		{
			name:      "non-string request id",
			method:    http.MethodGet,
			target:    "/v1/learn/deck",
			requestID: 12345,
			status:    http.StatusOK,
			contains:  []string{"request_id=unknown"},
		},
		{
			name:     "missing request id",
			method:   http.MethodGet,
			target:   "/v1/learn/deck",
			status:   http.StatusOK,
			contains: []string{"request_id=unknown"},
		},
		{
			name:      "client error logs at warn",
			method:    http.MethodGet,
			target:    "/v1/glossary/Stent",
			requestID: "req-4",
			status:    http.StatusNotFound,
			contains:  []string{"level=WARN", "status_code=404"},
		},
		{
			name:      "server error logs at error",
			method:    http.MethodPost,
			target:    "/v1/reports/explain",
			requestID: "req-5",
			status:    http.StatusServiceUnavailable,
			contains:  []string{"level=ERROR", "status_code=503"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			if tt.requestID != nil {
				req = withRequestID(req, tt.requestID)
			}

			logs := captureLogs(t, req, tt.status)

			for _, want := range tt.contains {
				if !strings.Contains(logs, want) {
					t.Errorf("Expected log to contain %q, got: %s", want, logs)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(logs, unwanted) {
					t.Errorf("Expected log not to contain %q, got: %s", unwanted, logs)
				}
			}
		})
	}
}

func TestLoggingMiddlewareReusesWrappers(t *testing.T) {
	var out strings.Builder
	logger := slog.New(slog.NewTextHandler(&out, nil))

	statuses := []int{http.StatusNotFound, http.StatusOK}
	i := 0
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if statuses[i] != http.StatusOK {
			w.WriteHeader(statuses[i])
		}
		i++
	}))

	for range statuses {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/categories", nil))
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log lines, got %d: %s", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "status_code=200") {
		t.Errorf("Expected pooled wrapper state to be reset, got: %s", lines[1])
	}
}

func TestResponseWriterWrapper(t *testing.T) {
	recorder := httptest.NewRecorder()
	wrapper := &responseWriterWrapper{ResponseWriter: recorder, statusCode: http.StatusOK}

	wrapper.WriteHeader(http.StatusNotFound)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, recorder.Code)
	}

	body := []byte("not found")
	n, err := wrapper.Write(body)
	if err != nil || n != len(body) {
		t.Errorf("Expected to write %d bytes, wrote %d (err %v)", len(body), n, err)
	}

	wrapper.WriteHeader(http.StatusInternalServerError)
	if wrapper.statusCode != http.StatusNotFound {
		t.Errorf("Expected status to stay %d, got %d", http.StatusNotFound, wrapper.statusCode)
	}
	if wrapper.bytesWritten != len(body) {
		t.Errorf("Expected bytesWritten %d, got %d", len(body), wrapper.bytesWritten)
	}
	if wrapper.Unwrap() != recorder {
		t.Error("Expected Unwrap to return the underlying writer")
	}
}

func TestRedactQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/reports/explain?title=Jane&lang=en", nil)
	got := redactQuery(req.URL.Query())

	if got != "lang=en&title=REDACTED" {
		t.Errorf("Expected lang=en&title=REDACTED, got %s", got)
	}
}
