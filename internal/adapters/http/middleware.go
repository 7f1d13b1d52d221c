package httpadapter

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

type logFieldsContextKey struct{}

// RequestObserver receives the outcome of every handled request. The
// prometheus HTTP metrics implement it; tests plug in recording fakes.
type RequestObserver interface {
	RequestStarted()
	RequestServed(method, path string, status int, elapsed time.Duration)
}

type nopRequestObserver struct{}

func (nopRequestObserver) RequestStarted() {}

func (nopRequestObserver) RequestServed(string, string, int, time.Duration) {}

// logFields carries handler-supplied attributes (query mode, cache outcome,
// source count) into the access log line for the request.
type logFields struct {
	attrs []any
}

func annotateRequest(ctx context.Context, attrs ...any) {
	fields, _ := ctx.Value(logFieldsContextKey{}).(*logFields)
	if fields != nil {
		fields.attrs = append(fields.attrs, attrs...)
	}
}

// instrumentMiddleware assigns the request id, reports status and duration to
// the observer and writes one structured access log line per request,
// including whatever attributes the handler annotated.
func instrumentMiddleware(observer RequestObserver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		fields := &logFields{}
		r = r.WithContext(context.WithValue(r.Context(), logFieldsContextKey{}, fields))
		w.Header().Set(requestIDHeader, requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		observer.RequestStarted()
		next.ServeHTTP(recorder, r)
		elapsed := time.Since(start)
		observer.RequestServed(r.Method, r.URL.Path, recorder.status, elapsed)

		remote := r.RemoteAddr
		if host, _, err := net.SplitHostPort(remote); err == nil {
			remote = host
		}
		attrs := append([]any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration_ms", float64(elapsed.Microseconds()) / 1000.0,
			"bytes", recorder.bytes,
			"remote_addr", remote,
		}, fields.attrs...)

		switch {
		case recorder.status >= 500:
			slog.Error("http_request", attrs...)
		case recorder.status >= 400:
			slog.Warn("http_request", attrs...)
		default:
			slog.Info("http_request", attrs...)
		}
	})
}

// statusRecorder captures the status and body size. The API only ever writes
// JSON responses; Flush is kept for the metrics exposition handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func (w *statusRecorder) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
