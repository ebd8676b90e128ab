// Package validation checks request input and reports authoring problems in
// loaded glossaries.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/giygas/cardioexplain-api/explainer"
	"github.com/giygas/cardioexplain-api/glossary"
	"github.com/giygas/cardioexplain-api/interfaces"
	"github.com/giygas/cardioexplain-api/logging"
)

const (
	DefaultMaxReportChars = 100000
	MaxTitleChars         = 200
	MinQueryChars         = 2
	MaxQueryChars         = 50
	MaxQueryWords         = 6
	// LongTextChars flags meanings and explanations too long for a card on a phone screen
	LongTextChars = 400
)

var (
	// Letters in any script, digits and the punctuation found in cardiology terms (R-wave, ACE Inhibitor, Na+, 2:1)
	queryRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s\-\.\+'/:%]+$`)

	// Substring checks are cheaper than regexes for these
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"onclick=", "onmouseover=", "eval(", "expression(", "@import",
		"' or ", "\" or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(",
		"`", "$(", "${",
		"../", "..\\", "%2e%2e", "file://",
		"{$ne:", "{$gt:", "{$where:", "{$regex:",
	}
)

var (
	_ interfaces.InputValidator    = (*Validator)(nil)
	_ interfaces.GlossaryValidator = (*Validator)(nil)
)

// Validator implements InputValidator and GlossaryValidator
type Validator struct {
	maxReportChars int
}

// NewValidator creates a validator. A non-positive maxReportChars uses DefaultMaxReportChars.
func NewValidator(maxReportChars int) *Validator {
	if maxReportChars <= 0 {
		maxReportChars = DefaultMaxReportChars
	}
	return &Validator{maxReportChars: maxReportChars}
}

// ValidateReportText accepts any non-blank UTF-8 text up to the configured
// length. Control characters other than tab, newline and carriage return are
// rejected.
func (v *Validator) ValidateReportText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("report text cannot be empty")
	}

	if !utf8.ValidString(text) {
		return fmt.Errorf("report text must be valid UTF-8")
	}

	if n := utf8.RuneCountInString(text); n > v.maxReportChars {
		return fmt.Errorf("report text too long: %d characters, maximum %d", n, v.maxReportChars)
	}

	for _, r := range text {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return fmt.Errorf("report text contains control character %U", r)
		}
	}

	return nil
}

// ValidateTitle accepts an empty title or a single line of at most MaxTitleChars.
func (v *Validator) ValidateTitle(title string) error {
	if title == "" {
		return nil
	}

	if !utf8.ValidString(title) {
		return fmt.Errorf("title must be valid UTF-8")
	}

	if n := utf8.RuneCountInString(title); n > MaxTitleChars {
		return fmt.Errorf("title too long: maximum %d characters", MaxTitleChars)
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return fmt.Errorf("title contains control character %U", r)
		}
	}

	return nil
}

// ValidateSearchQuery validates a glossary search query
func (v *Validator) ValidateSearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	n := utf8.RuneCountInString(query)
	if n < MinQueryChars {
		return fmt.Errorf("input too short: minimum %d characters", MinQueryChars)
	}
	if n > MaxQueryChars {
		return fmt.Errorf("input too long: maximum %d characters", MaxQueryChars)
	}

	if len(strings.Fields(query)) > MaxQueryWords {
		return fmt.Errorf("search query too complex: maximum %d words allowed", MaxQueryWords)
	}

	lowerInput := strings.ToLower(query)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !queryRegex.MatchString(query) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces and - . + ' / : %% are allowed")
	}

	if hasExcessiveRepetition(query) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateCategory parses a category filter
func (v *Validator) ValidateCategory(category string) (glossary.Category, error) {
	c, err := glossary.ParseCategory(strings.TrimSpace(category))
	if err != nil {
		return "", fmt.Errorf("invalid category: %w", err)
	}
	return c, nil
}

// ReportGlossaryQuality lists nested terms, categories without entries and
// overly long texts. The glossary is still served whatever it finds.
func (v *Validator) ReportGlossaryQuality(g *glossary.Glossary) *interfaces.GlossaryQualityReport {
	report := &interfaces.GlossaryQualityReport{
		NestedTerms:     []interfaces.NestedTerm{},
		EmptyCategories: []glossary.Category{},
		LongTexts:       []string{},
	}
	if g == nil {
		return report
	}

	engine, err := explainer.NewEngine(g)
	if err != nil {
		logging.Warn("Could not compile glossary for quality report", "error", err)
		return report
	}

	for _, e := range g.Entries() {
		// Running the engine over a term finds every other term it contains
		for _, found := range engine.Extract(e.Term) {
			if found.CanonicalTerm != e.Term {
				report.NestedTerms = append(report.NestedTerms, interfaces.NestedTerm{
					Inner: found.CanonicalTerm,
					Outer: e.Term,
				})
			}
		}

		if utf8.RuneCountInString(e.Meaning) > LongTextChars || utf8.RuneCountInString(e.WhyItMatters) > LongTextChars {
			report.LongTexts = append(report.LongTexts, e.Term)
		}
	}

	counts := g.CountByCategory()
	for _, c := range glossary.AllCategories() {
		if counts[c] == 0 {
			report.EmptyCategories = append(report.EmptyCategories, c)
		}
	}

	return report
}

// hasExcessiveRepetition reports a rune repeated more than 10 times in a row
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > 10 {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
