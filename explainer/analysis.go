package explainer

import "github.com/giygas/cardioexplain-api/glossary"

// Analysis bundles the extraction result with the derived actions and the
// summary counts shown alongside a report.
type Analysis struct {
	Terms              []ExplainedTerm           `json:"terms"`
	RecommendedActions []string                  `json:"recommended_actions"`
	TermCount          int                       `json:"term_count"`
	AlertCount         int                       `json:"alert_count"`
	CategoryCounts     map[glossary.Category]int `json:"category_counts"`
}

// Analyze extracts terms from text and derives actions from them.
func (e *Engine) Analyze(text string) Analysis {
	terms := e.Extract(text)

	counts := make(map[glossary.Category]int, len(glossary.AllCategories()))
	for _, c := range glossary.AllCategories() {
		counts[c] = 0
	}
	for _, t := range terms {
		counts[t.Category]++
	}

	return Analysis{
		Terms:              terms,
		RecommendedActions: RecommendActions(terms),
		TermCount:          len(terms),
		AlertCount:         counts[glossary.CategoryAlert],
		CategoryCounts:     counts,
	}
}
