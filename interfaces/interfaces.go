// Package interfaces defines the contracts between the service layers of the
// cardiac report explainer so each layer can be tested against mocks.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/cardioexplain-api/explainer"
	"github.com/giygas/cardioexplain-api/glossary"
)

// NestedTerm records a glossary term that occurs as a whole word inside
// another term. Both entries fire on the longer phrase.
type NestedTerm struct {
	Inner string `json:"inner"`
	Outer string `json:"outer"`
}

// GlossaryQualityReport summarises authoring issues found in a loaded glossary.
// None of them prevent the glossary from being served.
type GlossaryQualityReport struct {
	NestedTerms     []NestedTerm        `json:"nested_terms"`
	EmptyCategories []glossary.Category `json:"empty_categories"`
	LongTexts       []string            `json:"long_texts"` // terms whose meaning or why_it_matters is unusually long
}

// HasIssues reports whether the report found anything worth a warning.
func (r *GlossaryQualityReport) HasIssues() bool {
	return r != nil && (len(r.NestedTerms) > 0 || len(r.EmptyCategories) > 0 || len(r.LongTexts) > 0)
}

// GlossaryStore holds the engine currently in service. Reads are lock-free
// and an update swaps the whole engine at once.
type GlossaryStore interface {
	// Read side
	Engine() *explainer.Engine
	Glossary() *glossary.Glossary
	GetLastUpdated() time.Time
	GetServerStartTime() time.Time
	IsUpdating() bool
	LastReloadError() error
	QualityReport() *GlossaryQualityReport

	// Update side
	UpdateEngine(engine *explainer.Engine, report *GlossaryQualityReport)
	RecordReloadError(err error)
	BeginUpdate() bool
	EndUpdate()
}

// GlossarySource produces a validated glossary from wherever it is kept.
type GlossarySource interface {
	Load(ctx context.Context) (*glossary.Glossary, error)
	// Describe names the source in logs ("built-in", a file path, ...)
	Describe() string
}

// Scheduler runs the initial glossary load and the periodic reloads.
type Scheduler interface {
	Start() error
	Stop()
	NextReload() time.Time
}

// HealthChecker reports service health.
type HealthChecker interface {
	// HealthCheck returns the status word, details and the HTTP status to answer with
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// InputValidator validates user supplied request input.
type InputValidator interface {
	ValidateReportText(text string) error
	ValidateTitle(title string) error
	ValidateSearchQuery(query string) error
	ValidateCategory(category string) (glossary.Category, error)
}

// GlossaryValidator inspects a glossary for authoring problems.
type GlossaryValidator interface {
	ReportGlossaryQuality(g *glossary.Glossary) *GlossaryQualityReport
}

// HTTPHandler lists the API endpoints.
type HTTPHandler interface {
	ExplainReport(w http.ResponseWriter, r *http.Request)
	RecommendActions(w http.ResponseWriter, r *http.Request)
	SearchGlossary(w http.ResponseWriter, r *http.Request)
	GetGlossaryEntry(w http.ResponseWriter, r *http.Request)
	ListCategories(w http.ResponseWriter, r *http.Request)
	LearnDeck(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}
