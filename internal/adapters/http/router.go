package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/opencarelab/eidbi-assistant/internal/core/corpus"
	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
	"github.com/opencarelab/eidbi-assistant/internal/core/ports"
)

type Router struct {
	queryService   ports.QueryService
	retriever      ports.Retriever
	store          *corpus.Store
	metricsHandler http.Handler
	observer       RequestObserver
}

func NewRouter(
	queryService ports.QueryService,
	retriever ports.Retriever,
	store *corpus.Store,
	metricsHandler http.Handler,
	observer RequestObserver,
) *Router {
	if observer == nil {
		observer = nopRequestObserver{}
	}
	return &Router{
		queryService:   queryService,
		retriever:      retriever,
		store:          store,
		metricsHandler: metricsHandler,
		observer:       observer,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/query", rt.query)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/corpus/stats", rt.corpusStats)
	mux.HandleFunc("/v1/cache/clear", rt.clearCache)
	if rt.metricsHandler != nil {
		mux.Handle("/metrics", rt.metricsHandler)
	}
	return instrumentMiddleware(rt.observer, mux)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type queryRequest struct {
	Question string `json:"question"`
	Limit    int    `json:"limit"`
	Hybrid   *bool  `json:"hybrid"`
	Rerank   *bool  `json:"rerank"`
}

func (q queryRequest) options() domain.SearchOptions {
	opts := domain.SearchOptions{Hybrid: true, Rerank: true}
	if q.Hybrid != nil {
		opts.Hybrid = *q.Hybrid
	}
	if q.Rerank != nil {
		opts.Rerank = *q.Rerank
	}
	return opts
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	opts := req.options()
	answer, err := rt.queryService.Answer(r.Context(), req.Question, req.Limit, opts)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	annotateRequest(r.Context(),
		"hybrid", opts.Hybrid,
		"rerank", opts.Rerank,
		"cached", answer.Cached,
		"sources", len(answer.Sources),
	)
	writeJSON(w, http.StatusOK, answer)
}

// search exposes the retrieval pipeline without answer generation, for
// debugging ranking behavior and for clients that render sources directly.
func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	opts := req.options()
	result, err := rt.retriever.Retrieve(r.Context(), req.Question, req.Limit, opts)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	annotateRequest(r.Context(),
		"hybrid", opts.Hybrid,
		"rerank", opts.Rerank,
		"passages", len(result.Passages),
	)
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) corpusStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	snap := rt.store.Current()
	writeJSON(w, http.StatusOK, map[string]any{
		"passages":  len(snap.Passages),
		"facts":     len(snap.Facts),
		"dimension": snap.Dimension,
		"summary":   rt.store.Describe(),
	})
}

func (rt *Router) clearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rt.queryService.ClearCache()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
