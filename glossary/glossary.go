// Package glossary holds the curated medical glossary used to explain cardiac
// device reports. A Glossary is immutable once built and every constructor
// validates its input, so a *Glossary in hand is always well formed.
package glossary

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrEmptyTerm       = errors.New("glossary term is empty")
	ErrUnknownCategory = errors.New("unknown glossary category")
	ErrMissingField    = errors.New("glossary entry is missing a required field")
	ErrDuplicateTerm   = errors.New("duplicate glossary term")
)

// Entry is one canonical term with its plain-language explanation.
type Entry struct {
	Term         string   `json:"term" yaml:"term"`
	Meaning      string   `json:"meaning" yaml:"meaning"`
	WhyItMatters string   `json:"why_it_matters" yaml:"why_it_matters"`
	Category     Category `json:"category" yaml:"category"`
}

// Glossary maps canonical terms to entries. Entries keep the order they were
// declared in, which is the tie-break order for extraction results.
type Glossary struct {
	version    string
	entries    []Entry
	index      map[string]int
	categories map[Category]CategoryInfo
}

// New validates entries and category metadata and builds a Glossary.
// Categories absent from categories get their default metadata.
func New(version string, entries []Entry, categories []CategoryInfo) (*Glossary, error) {
	g := &Glossary{
		version:    strings.TrimSpace(version),
		entries:    make([]Entry, 0, len(entries)),
		index:      make(map[string]int, len(entries)),
		categories: make(map[Category]CategoryInfo, len(categoryOrder)),
	}

	for _, c := range categoryOrder {
		g.categories[c] = DefaultCategoryInfo(c)
	}
	for i, info := range categories {
		if !info.Category.Valid() {
			return nil, fmt.Errorf("category metadata %d: %w: %q", i, ErrUnknownCategory, info.Category)
		}
		if strings.TrimSpace(info.Title) == "" {
			info.Title = DefaultCategoryInfo(info.Category).Title
		}
		g.categories[info.Category] = info
	}

	for i, e := range entries {
		e.Term = strings.TrimSpace(e.Term)
		if e.Term == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyTerm)
		}
		if !e.Category.Valid() {
			return nil, fmt.Errorf("entry %d (%q): %w: %q", i, e.Term, ErrUnknownCategory, e.Category)
		}
		if strings.TrimSpace(e.Meaning) == "" {
			return nil, fmt.Errorf("entry %d (%q): %w: meaning", i, e.Term, ErrMissingField)
		}
		if strings.TrimSpace(e.WhyItMatters) == "" {
			return nil, fmt.Errorf("entry %d (%q): %w: why_it_matters", i, e.Term, ErrMissingField)
		}

		key := normalizeKey(e.Term)
		if prev, exists := g.index[key]; exists {
			return nil, fmt.Errorf("entry %d (%q): %w: already declared by entry %d (%q)",
				i, e.Term, ErrDuplicateTerm, prev, g.entries[prev].Term)
		}
		g.index[key] = len(g.entries)
		g.entries = append(g.entries, e)
	}

	return g, nil
}

// Empty returns a glossary without entries.
func Empty() *Glossary {
	g, _ := New("", nil, nil)
	return g
}

// Version is the free-form version label of the glossary document.
func (g *Glossary) Version() string {
	return g.version
}

// Len returns the number of entries.
func (g *Glossary) Len() int {
	return len(g.entries)
}

// Entries returns a copy of all entries in declaration order.
func (g *Glossary) Entries() []Entry {
	out := make([]Entry, len(g.entries))
	copy(out, g.entries)
	return out
}

// Lookup finds an entry by canonical term, ignoring case and redundant
// whitespace.
func (g *Glossary) Lookup(term string) (Entry, bool) {
	i, ok := g.index[normalizeKey(term)]
	if !ok {
		return Entry{}, false
	}
	return g.entries[i], true
}

// Categories returns the metadata of every category in priority order.
func (g *Glossary) Categories() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(categoryOrder))
	for _, c := range categoryOrder {
		out = append(out, g.categories[c])
	}
	return out
}

// CategoryInfo returns the metadata for c.
func (g *Glossary) CategoryInfo(c Category) (CategoryInfo, bool) {
	info, ok := g.categories[c]
	return info, ok
}

// CountByCategory returns the number of entries per category. Every category
// is present in the result, possibly with a zero count.
func (g *Glossary) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(categoryOrder))
	for _, c := range categoryOrder {
		counts[c] = 0
	}
	for _, e := range g.entries {
		counts[e.Category]++
	}
	return counts
}

// Search returns the entries whose term or meaning contains query, ignoring
// case, restricted to category unless it is empty. An empty query matches
// every entry.
func (g *Glossary) Search(query string, category Category) []Entry {
	needle := foldString(strings.TrimSpace(query))

	results := make([]Entry, 0)
	for _, e := range g.entries {
		if category != "" && e.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(foldString(e.Term), needle) &&
			!strings.Contains(foldString(e.Meaning), needle) {
			continue
		}
		results = append(results, e)
	}
	return results
}

// normalizeKey folds case, applies NFKC and collapses runs of whitespace.
func normalizeKey(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return foldString(strings.Join(strings.Fields(s), " "))
}

func foldString(s string) string {
	return cases.Fold().String(s)
}
