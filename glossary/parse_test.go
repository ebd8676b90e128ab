package glossary

import (
	"errors"
	"testing"
)

func TestParseJSON(t *testing.T) {
	doc := []byte(`{
  "version": "test-1",
  "categories": [{"category": "device", "title": "Hardware", "description": "Implanted things"}],
  "entries": [
    {"term": "ICD", "meaning": "Defibrillator", "why_it_matters": "Stops dangerous rhythms", "category": "device"},
    {"term": "Shock", "meaning": "A pulse", "why_it_matters": "Call your doctor", "category": "alert"}
  ]
}`)

	g, err := Parse(doc, FormatJSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if g.Version() != "test-1" {
		t.Errorf("Expected version test-1, got %s", g.Version())
	}
	if g.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", g.Len())
	}

	info, _ := g.CategoryInfo(CategoryDevice)
	if info.Title != "Hardware" {
		t.Errorf("Expected device title Hardware, got %s", info.Title)
	}
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	doc := []byte(`{"entries": [{"term": "ICD", "meaning": "m", "whyItMatters": "w", "category": "device"}]}`)

	if _, err := Parse(doc, FormatJSON); err == nil {
		t.Fatal("Expected error for unknown field whyItMatters")
	}
}

func TestParseYAML(t *testing.T) {
	doc := []byte(`version: yaml-1
entries:
  - term: Diuretic
    meaning: Water pill
    why_it_matters: Reduces swelling
    category: medication
  - term: Bradycardia
    meaning: A slow heart rate
    why_it_matters: Can make you dizzy
    category: condition
`)

	g, err := Parse(doc, FormatYAML)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if g.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", g.Len())
	}
	if g.Entries()[1].Category != CategoryCondition {
		t.Errorf("Expected condition, got %s", g.Entries()[1].Category)
	}
}

func TestParseEmptyYAML(t *testing.T) {
	g, err := Parse([]byte(""), FormatYAML)
	if err != nil {
		t.Fatalf("Expected empty document to parse, got %v", err)
	}
	if g.Len() != 0 {
		t.Errorf("Expected empty glossary, got %d entries", g.Len())
	}
}

func TestParseInvalidCategoryIsFatal(t *testing.T) {
	doc := []byte(`{"entries": [{"term": "ICD", "meaning": "m", "why_it_matters": "w", "category": "gizmo"}]}`)

	_, err := Parse(doc, FormatJSON)
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("Expected ErrUnknownCategory, got %v", err)
	}
}

func TestParseLatin1(t *testing.T) {
	// "Défibrillateur" with é encoded as the single ISO-8859-1 byte 0xE9.
	doc := []byte("{\"entries\": [{\"term\": \"D\xe9fibrillateur\", \"meaning\": \"m\", \"why_it_matters\": \"w\", \"category\": \"device\"}]}")

	g, err := Parse(doc, FormatJSON)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if _, ok := g.Lookup("Défibrillateur"); !ok {
		t.Errorf("Expected decoded term, got %v", g.Entries())
	}
}

func TestParseUnsupportedFormat(t *testing.T) {
	if _, err := Parse([]byte("{}"), Format("toml")); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"glossary.json", FormatJSON, false},
		{"/etc/app/Glossary.JSON", FormatJSON, false},
		{"glossary.yaml", FormatYAML, false},
		{"glossary.yml", FormatYAML, false},
		{"glossary.txt", "", true},
		{"glossary", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
