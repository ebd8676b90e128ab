// Package handlers provides HTTP request handlers for the cardiac report explainer endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"mime"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/giygas/cardioexplain-api/explainer"
	"github.com/giygas/cardioexplain-api/glossary"
	"github.com/giygas/cardioexplain-api/interfaces"
	"github.com/giygas/cardioexplain-api/learn"
	"github.com/giygas/cardioexplain-api/logging"
	"github.com/giygas/cardioexplain-api/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// DefaultMaxBody caps request bodies when no limit is configured
const DefaultMaxBody int64 = 1 << 20

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	store     interfaces.GlossaryStore
	validator interfaces.InputValidator
	health    interfaces.HealthChecker
	maxBody   int64
	newRand   func(seed uint64, seeded bool) *rand.Rand
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(store interfaces.GlossaryStore, validator interfaces.InputValidator,
	health interfaces.HealthChecker, maxBody int64) *HTTPHandlerImpl {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	return &HTTPHandlerImpl{
		store:     store,
		validator: validator,
		health:    health,
		maxBody:   maxBody,
		newRand:   newDeckRand,
	}
}

func newDeckRand(seed uint64, seeded bool) *rand.Rand {
	if !seeded {
		seed = rand.Uint64()
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// ExplainRequest is the JSON body of POST /v1/reports/explain
type ExplainRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ExplainResponse is an analysis with its request metadata
type ExplainResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title,omitempty"`
	GlossaryVersion string `json:"glossary_version"`
	explainer.Analysis
}

// RecommendRequest is the JSON body of POST /v1/recommendations
type RecommendRequest struct {
	Terms []explainer.ExplainedTerm `json:"terms"`
}

// RecommendResponse lists actions derived from terms
type RecommendResponse struct {
	RecommendedActions []string `json:"recommended_actions"`
}

// GlossaryResponse is the result of a glossary search
type GlossaryResponse struct {
	Version string           `json:"version"`
	Count   int              `json:"count"`
	Entries []glossary.Entry `json:"entries"`
}

// CategoryResponse is one category with its display metadata
type CategoryResponse struct {
	glossary.CategoryInfo
	Priority int `json:"priority"`
	Count    int `json:"count"`
}

// DeckResponse is a shuffled matching-game deck
type DeckResponse struct {
	Pairs int          `json:"pairs"`
	Cards []learn.Card `json:"cards"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
	System map[string]any `json:"system"`
}

// ExplainReport extracts glossary terms from a report and recommends follow-up actions.
// Accepts either a JSON body or the raw report as text/plain with the title in ?title=.
func (h *HTTPHandlerImpl) ExplainReport(w http.ResponseWriter, r *http.Request) {
	req, status, message := h.decodeExplainRequest(w, r)
	if status != http.StatusOK {
		RespondWithError(w, status, message)
		return
	}

	if err := h.validator.ValidateReportText(req.Text); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := h.validator.ValidateTitle(req.Title); err != nil {
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	engine := h.store.Engine()
	start := time.Now()
	analysis := engine.Analyze(req.Text)
	elapsed := time.Since(start)

	categories := make([]string, len(analysis.Terms))
	for i, t := range analysis.Terms {
		categories[i] = string(t.Category)
	}
	metrics.RecordExplanation(categories, elapsed)

	id := uuid.NewString()
	logging.Debug("Report explained",
		"id", id,
		"chars", len(req.Text),
		"terms", analysis.TermCount,
		"alerts", analysis.AlertCount,
		"duration", elapsed.String(),
	)

	RespondWithJSON(w, http.StatusOK, ExplainResponse{
		ID:              id,
		Title:           req.Title,
		GlossaryVersion: engine.Glossary().Version(),
		Analysis:        analysis,
	})
}

// decodeExplainRequest returns the request, or the status and message to
// reject it with
func (h *HTTPHandlerImpl) decodeExplainRequest(w http.ResponseWriter, r *http.Request) (ExplainRequest, int, string) {
	var req ExplainRequest

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return req, http.StatusUnsupportedMediaType, "Invalid Content-Type header"
		}
		mediaType = parsed
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBody)

	switch mediaType {
	case "application/json":
		decoder := json.NewDecoder(body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			status, message := bodyError(err, "Invalid JSON body")
			return req, status, message
		}
	case "text/plain":
		raw, err := io.ReadAll(body)
		if err != nil {
			status, message := bodyError(err, "Failed to read request body")
			return req, status, message
		}
		req.Text = string(raw)
		req.Title = r.URL.Query().Get("title")
	default:
		return req, http.StatusUnsupportedMediaType, "Content-Type must be application/json or text/plain"
	}

	return req, http.StatusOK, ""
}

// bodyError maps a body read error to a status and message
func bodyError(err error, message string) (int, string) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, "Request body too large"
	}
	return http.StatusBadRequest, message
}

// RecommendActions derives follow-up actions from an already extracted term list
func (h *HTTPHandlerImpl) RecommendActions(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		status, message := bodyError(err, "Invalid JSON body")
		RespondWithError(w, status, message)
		return
	}

	for i, t := range req.Terms {
		if !t.Category.Valid() {
			logging.Warn("Unusual user input", "category", string(t.Category), "index", i)
			RespondWithError(w, http.StatusBadRequest, "Unknown category "+strconv.Quote(string(t.Category)))
			return
		}
	}

	actions := explainer.RecommendActions(req.Terms)
	RespondWithJSON(w, http.StatusOK, RecommendResponse{RecommendedActions: actions})
}

// SearchGlossary lists glossary entries, optionally filtered by ?q= and ?category=
func (h *HTTPHandlerImpl) SearchGlossary(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	rawCategory := r.URL.Query().Get("category")

	if query != "" {
		if err := h.validator.ValidateSearchQuery(query); err != nil {
			logging.Warn("Unusual user input", "q", query)
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var category glossary.Category
	if rawCategory != "" {
		c, err := h.validator.ValidateCategory(rawCategory)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		category = c
	}

	g := h.store.Glossary()
	entries := g.Search(query, category)

	respondCacheable(w, r, GlossaryResponse{
		Version: g.Version(),
		Count:   len(entries),
		Entries: entries,
	})
}

// GetGlossaryEntry returns a single entry by term
func (h *HTTPHandlerImpl) GetGlossaryEntry(w http.ResponseWriter, r *http.Request) {
	term, err := url.PathUnescape(chi.URLParam(r, "term"))
	if err != nil || strings.TrimSpace(term) == "" {
		RespondWithError(w, http.StatusBadRequest, "Invalid term")
		return
	}

	entry, ok := h.store.Glossary().Lookup(term)
	if !ok {
		RespondWithError(w, http.StatusNotFound, "Term not found")
		return
	}

	respondCacheable(w, r, entry)
}

// ListCategories returns the categories in priority order with entry counts
func (h *HTTPHandlerImpl) ListCategories(w http.ResponseWriter, r *http.Request) {
	g := h.store.Glossary()
	counts := g.CountByCategory()

	infos := g.Categories()
	categories := make([]CategoryResponse, 0, len(infos))
	for _, info := range infos {
		rank, _ := info.Category.Priority()
		categories = append(categories, CategoryResponse{
			CategoryInfo: info,
			Priority:     rank,
			Count:        counts[info.Category],
		})
	}

	respondCacheable(w, r, categories)
}

// LearnDeck deals a matching-game deck. ?pairs= sets its size and ?seed=
// makes it reproducible.
func (h *HTTPHandlerImpl) LearnDeck(w http.ResponseWriter, r *http.Request) {
	pairs := learn.DefaultPairs
	if raw := r.URL.Query().Get("pairs"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > learn.MaxPairs {
			logging.Warn("Unusual user input", "pairs", raw)
			RespondWithError(w, http.StatusBadRequest,
				"pairs must be a number between 1 and "+strconv.Itoa(learn.MaxPairs))
			return
		}
		pairs = n
	}

	var seed uint64
	seeded := false
	if raw := r.URL.Query().Get("seed"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			RespondWithError(w, http.StatusBadRequest, "seed must be a non-negative integer")
			return
		}
		seed, seeded = n, true
	}

	cards, err := learn.NewDeck(h.store.Glossary(), pairs, h.newRand(seed, seeded))
	if err != nil {
		logging.Error("Failed to build learning deck", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to build deck")
		return
	}

	RespondWithJSON(w, http.StatusOK, DeckResponse{
		Pairs: len(cards) / 2,
		Cards: cards,
	})
}

// HealthCheck reports glossary health and process statistics
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	status, data, httpStatus := h.health.HealthCheck()

	RespondWithJSON(w, httpStatus, HealthResponse{
		Status: status,
		Data:   data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       int(m.Alloc / 1024 / 1024),
				"total_alloc_mb": int(m.TotalAlloc / 1024 / 1024),
				"sys_mb":         int(m.Sys / 1024 / 1024),
				"num_gc":         m.NumGC,
			},
		},
	})
}
