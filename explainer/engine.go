// Package explainer finds glossary terms in free-form report text and derives
// patient-facing follow-up actions from them. Everything here is pure: no
// I/O, no clock, no randomness, and results depend only on the inputs.
package explainer

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"

	"github.com/giygas/cardioexplain-api/glossary"
)

// wordClass is the set of characters that may not touch either end of a
// match: letters, digits, combining marks and underscore.
const wordClass = `\p{L}\p{N}\p{M}_`

// ExplainedTerm is one recognised term. Term is the text exactly as written
// in the report; CanonicalTerm is the glossary key that matched it.
type ExplainedTerm struct {
	Term          string            `json:"term"`
	CanonicalTerm string            `json:"canonical_term"`
	Meaning       string            `json:"meaning"`
	WhyItMatters  string            `json:"why_it_matters"`
	Category      glossary.Category `json:"category"`
}

type matcher struct {
	entry   glossary.Entry
	rank    int
	pattern *regexp.Regexp
}

// Engine is a glossary with one compiled pattern per entry. It is immutable
// and safe for concurrent use.
//
// Extraction runs every pattern over the whole text, so the cost is
// O(entries × len(text)). That is fine for a few hundred entries; glossaries
// orders of magnitude larger should move to a tokenised phrase lookup.
type Engine struct {
	glossary *glossary.Glossary
	matchers []matcher
}

// NewEngine compiles g. A nil glossary is treated as empty.
func NewEngine(g *glossary.Glossary) (*Engine, error) {
	if g == nil {
		g = glossary.Empty()
	}

	entries := g.Entries()
	e := &Engine{
		glossary: g,
		matchers: make([]matcher, 0, len(entries)),
	}

	for _, entry := range entries {
		rank, ok := entry.Category.Priority()
		if !ok {
			return nil, fmt.Errorf("term %q: %w: %q", entry.Term, glossary.ErrUnknownCategory, entry.Category)
		}

		pattern, err := compileTermPattern(entry.Term)
		if err != nil {
			return nil, fmt.Errorf("term %q: failed to compile pattern: %w", entry.Term, err)
		}

		e.matchers = append(e.matchers, matcher{entry: entry, rank: rank, pattern: pattern})
	}

	return e, nil
}

// MustNewEngine is like NewEngine but panics on error. Glossaries built by
// the glossary package are always valid, so this only fails on programmer
// error.
func MustNewEngine(g *glossary.Glossary) *Engine {
	e, err := NewEngine(g)
	if err != nil {
		panic(fmt.Sprintf("explainer: invalid glossary: %v", err))
	}
	return e
}

// compileTermPattern builds a case-insensitive whole-word pattern for term.
// Group 1 captures the occurrence with its original casing.
func compileTermPattern(term string) (*regexp.Regexp, error) {
	return regexp.Compile(`(?i)(?:^|[^` + wordClass + `])(` + regexp.QuoteMeta(term) + `)(?:[^` + wordClass + `]|$)`)
}

// Glossary returns the glossary the engine was built from.
func (e *Engine) Glossary() *glossary.Glossary {
	return e.glossary
}

// Extract returns one ExplainedTerm per glossary entry found in text, using
// the first occurrence of each. Results are ordered by category priority
// (alert, condition, measurement, device, medication); entries of the same
// category keep glossary order. Synonyms are not merged.
func (e *Engine) Extract(text string) []ExplainedTerm {
	if text == "" || len(e.matchers) == 0 {
		return []ExplainedTerm{}
	}

	type rankedTerm struct {
		term ExplainedTerm
		rank int
	}

	found := make([]rankedTerm, 0)
	for _, m := range e.matchers {
		loc := m.pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}

		matched := m.entry.Term
		if loc[2] >= 0 && loc[3] > loc[2] {
			matched = text[loc[2]:loc[3]]
		}

		found = append(found, rankedTerm{
			term: ExplainedTerm{
				Term:          matched,
				CanonicalTerm: m.entry.Term,
				Meaning:       m.entry.Meaning,
				WhyItMatters:  m.entry.WhyItMatters,
				Category:      m.entry.Category,
			},
			rank: m.rank,
		})
	}

	slices.SortStableFunc(found, func(a, b rankedTerm) int {
		return cmp.Compare(a.rank, b.rank)
	})

	terms := make([]ExplainedTerm, len(found))
	for i, f := range found {
		terms[i] = f.term
	}
	return terms
}

// ExtractTerms is the one-shot form of Engine.Extract. Callers scanning many
// texts against the same glossary should build an Engine once instead.
func ExtractTerms(text string, g *glossary.Glossary) []ExplainedTerm {
	return MustNewEngine(g).Extract(text)
}
