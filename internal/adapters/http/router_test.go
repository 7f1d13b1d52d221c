package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opencarelab/eidbi-assistant/internal/core/corpus"
	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

type fakeQueryService struct {
	answer      *domain.Answer
	err         error
	lastOpts    domain.SearchOptions
	cacheCleans int
}

func (f *fakeQueryService) Answer(_ context.Context, question string, _ int, opts domain.SearchOptions) (*domain.Answer, error) {
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &domain.Answer{Query: question, Text: "ok"}, nil
}

func (f *fakeQueryService) ClearCache() { f.cacheCleans++ }

type fakeRetriever struct {
	result *domain.RetrievalResult
	err    error
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, _ int, _ domain.SearchOptions) (*domain.RetrievalResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &domain.RetrievalResult{Query: query}, nil
}

type emptyPassages struct{}

func (emptyPassages) LoadPassages(context.Context) ([]domain.Passage, error) { return nil, nil }

type emptyFacts struct{}

func (emptyFacts) LoadFacts(context.Context) ([]domain.Fact, error) { return nil, nil }

func newTestRouter(service *fakeQueryService, retriever *fakeRetriever) http.Handler {
	store := corpus.NewStore(emptyPassages{}, emptyFacts{})
	return NewRouter(service, retriever, store, nil, nil).Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(&fakeQueryService{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestQueryAnswers(t *testing.T) {
	service := &fakeQueryService{answer: &domain.Answer{
		Query: "What is EIDBI?",
		Text:  "EIDBI is a Minnesota benefit.",
		Sources: []domain.RankedPassage{
			{ID: "p1", Content: "The EIDBI benefit.", Score: 9.5},
		},
	}}
	handler := newTestRouter(service, &fakeRetriever{})

	body := strings.NewReader(`{"question": "What is EIDBI?"}`)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var answer domain.Answer
	if err := json.Unmarshal(rec.Body.Bytes(), &answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer.Text != "EIDBI is a Minnesota benefit." {
		t.Fatalf("unexpected answer %q", answer.Text)
	}
	if len(answer.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(answer.Sources))
	}
}

func TestQueryDefaultsToHybridRerank(t *testing.T) {
	service := &fakeQueryService{}
	handler := newTestRouter(service, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question": "q"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !service.lastOpts.Hybrid || !service.lastOpts.Rerank {
		t.Fatalf("expected hybrid and rerank defaults, got %+v", service.lastOpts)
	}
}

func TestQueryHonorsExplicitFlags(t *testing.T) {
	service := &fakeQueryService{}
	handler := newTestRouter(service, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query",
		strings.NewReader(`{"question": "q", "hybrid": false, "rerank": false}`)))

	if service.lastOpts.Hybrid || service.lastOpts.Rerank {
		t.Fatalf("explicit flags must be honored, got %+v", service.lastOpts)
	}
}

func TestQueryRejectsEmptyQuestion(t *testing.T) {
	handler := newTestRouter(&fakeQueryService{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question": "  "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQueryRejectsInvalidJSON(t *testing.T) {
	handler := newTestRouter(&fakeQueryService{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestQueryMapsTemporaryErrorsTo503(t *testing.T) {
	service := &fakeQueryService{
		err: domain.WrapError(domain.ErrTemporary, "generate", context.DeadlineExceeded),
	}
	handler := newTestRouter(service, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question": "q"}`)))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestQueryMethodNotAllowed(t *testing.T) {
	handler := newTestRouter(&fakeQueryService{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/query", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestSearchReturnsRankedPassages(t *testing.T) {
	retriever := &fakeRetriever{result: &domain.RetrievalResult{
		Query: "eidbi",
		Passages: []domain.RankedPassage{
			{ID: "p1", Content: "The EIDBI benefit.", Score: 3.2, Signal: domain.SignalCombined},
		},
		Keywords: []string{"eidbi"},
	}}
	handler := newTestRouter(&fakeQueryService{}, retriever)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(`{"question": "eidbi"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var result domain.RetrievalResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Passages) != 1 || result.Passages[0].ID != "p1" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCorpusStats(t *testing.T) {
	handler := newTestRouter(&fakeQueryService{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/corpus/stats", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if stats["passages"] != float64(0) || stats["facts"] != float64(0) {
		t.Fatalf("unexpected stats %v", stats)
	}
	summary, _ := stats["summary"].(string)
	if !strings.Contains(summary, "passages=0") {
		t.Fatalf("expected snapshot summary in stats, got %q", summary)
	}
}

func TestClearCache(t *testing.T) {
	service := &fakeQueryService{}
	handler := newTestRouter(service, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/cache/clear", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if service.cacheCleans != 1 {
		t.Fatalf("expected one cache clear, got %d", service.cacheCleans)
	}
}

type recordingObserver struct {
	started int
	method  string
	path    string
	status  int
}

func (o *recordingObserver) RequestStarted() { o.started++ }

func (o *recordingObserver) RequestServed(method, path string, status int, _ time.Duration) {
	o.method, o.path, o.status = method, path, status
}

func TestRequestObserverSeesOutcome(t *testing.T) {
	observer := &recordingObserver{}
	store := corpus.NewStore(emptyPassages{}, emptyFacts{})
	handler := NewRouter(&fakeQueryService{}, &fakeRetriever{}, store, nil, observer).Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question": "q"}`)))

	if observer.started != 1 {
		t.Fatalf("expected one started notification, got %d", observer.started)
	}
	if observer.method != http.MethodPost || observer.path != "/v1/query" || observer.status != http.StatusOK {
		t.Fatalf("unexpected observation %+v", observer)
	}
}

func TestAccessLogCarriesQueryOutcome(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(previous)

	service := &fakeQueryService{answer: &domain.Answer{Query: "q", Text: "a", Cached: true}}
	handler := newTestRouter(service, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/query", strings.NewReader(`{"question": "q"}`)))

	line := buf.String()
	for _, want := range []string{`"cached":true`, `"hybrid":true`, `"rerank":true`, `"request_id"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("access log missing %s: %s", want, line)
		}
	}
}

func TestRequestIDHeaderAssigned(t *testing.T) {
	handler := newTestRouter(&fakeQueryService{}, &fakeRetriever{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestRequestIDHeaderPreserved(t *testing.T) {
	handler := newTestRouter(&fakeQueryService{}, &fakeRetriever{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "client-supplied")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "client-supplied" {
		t.Fatalf("expected preserved request id, got %q", got)
	}
}
