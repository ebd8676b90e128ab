package interfaces

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/giygas/cardioexplain-api/explainer"
	"github.com/giygas/cardioexplain-api/glossary"
)

type mockSource struct {
	g   *glossary.Glossary
	err error
}

func (m *mockSource) Load(ctx context.Context) (*glossary.Glossary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.g, m.err
}

func (m *mockSource) Describe() string { return "mock" }

type mockScheduler struct {
	started bool
	next    time.Time
}

func (m *mockScheduler) Start() error          { m.started = true; return nil }
func (m *mockScheduler) Stop()                 { m.started = false }
func (m *mockScheduler) NextReload() time.Time { return m.next }

type mockHealthChecker struct{}

func (mockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return "healthy", map[string]any{"entries": 1}, 200
}

type mockGlossaryValidator struct{}

func (mockGlossaryValidator) ReportGlossaryQuality(g *glossary.Glossary) *GlossaryQualityReport {
	return &GlossaryQualityReport{}
}

var (
	_ GlossarySource    = (*mockSource)(nil)
	_ Scheduler         = (*mockScheduler)(nil)
	_ HealthChecker     = mockHealthChecker{}
	_ GlossaryValidator = mockGlossaryValidator{}
)

func TestGlossaryQualityReportHasIssues(t *testing.T) {
	tests := []struct {
		name   string
		report *GlossaryQualityReport
		want   bool
	}{
		{"nil report", nil, false},
		{"empty report", &GlossaryQualityReport{}, false},
		{"nested terms", &GlossaryQualityReport{NestedTerms: []NestedTerm{{Inner: "Shock", Outer: "Shock impedance"}}}, true},
		{"empty categories", &GlossaryQualityReport{EmptyCategories: []glossary.Category{glossary.CategoryMedication}}, true},
		{"long texts", &GlossaryQualityReport{LongTexts: []string{"LVEF"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.report.HasIssues(); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestMockSourceFeedsEngine(t *testing.T) {
	g, err := glossary.Default()
	if err != nil {
		t.Fatalf("Failed to load built-in glossary: %v", err)
	}

	var src GlossarySource = &mockSource{g: g}
	loaded, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	engine, err := explainer.NewEngine(loaded)
	if err != nil {
		t.Fatalf("Expected engine, got %v", err)
	}
	if engine.Glossary().Len() != g.Len() {
		t.Errorf("Expected %d entries, got %d", g.Len(), engine.Glossary().Len())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
