package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const benchReport = `Device interrogation summary. Battery voltage 2.95V, ERI not reached.
RV Lead impedance 520 ohms, Shock impedance 68 ohms, pacing threshold 0.75V.
LVEF 30% on last echo, BNP 450 pg/mL. Two episodes of Atrial Fibrillation and one
Ventricular Tachycardia episode terminated by ATP. Continue Beta Blocker and Diuretic.`

// BenchmarkExplainReport benchmarks the explain endpoint on a typical report
func BenchmarkExplainReport(b *testing.B) {
	handler := newTestHandler(b)
	handler.maxBody = DefaultMaxBody
	body := strings.Repeat(benchReport+"\n", 4)

	for b.Loop() {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/reports/explain", strings.NewReader(body))
		req.Header.Set("Content-Type", "text/plain")
		handler.ExplainReport(rr, req)
	}
}

// BenchmarkSearchGlossary benchmarks a text search over the glossary
func BenchmarkSearchGlossary(b *testing.B) {
	handler := newTestHandler(b)

	for b.Loop() {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/glossary?q=lead", nil)
		handler.SearchGlossary(rr, req)
	}
}

// BenchmarkSearchGlossaryNotModified benchmarks the conditional GET path
func BenchmarkSearchGlossaryNotModified(b *testing.B) {
	handler := newTestHandler(b)
	first := httptest.NewRecorder()
	handler.SearchGlossary(first, httptest.NewRequest(http.MethodGet, "/v1/glossary", nil))
	etag := first.Header().Get("ETag")

	for b.Loop() {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/glossary", nil)
		req.Header.Set("If-None-Match", etag)
		handler.SearchGlossary(rr, req)
	}
}

// BenchmarkLearnDeck benchmarks dealing a default deck
func BenchmarkLearnDeck(b *testing.B) {
	handler := newTestHandler(b)

	for b.Loop() {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/learn/deck", nil)
		handler.LearnDeck(rr, req)
	}
}
