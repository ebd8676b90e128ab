package learn

import (
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/giygas/cardioexplain-api/glossary"
)

func testGlossary(t *testing.T) *glossary.Glossary {
	t.Helper()
	g, err := glossary.Default()
	if err != nil {
		t.Fatalf("Failed to load built-in glossary: %v", err)
	}
	return g
}

func TestNewDeck(t *testing.T) {
	g := testGlossary(t)

	cards, err := NewDeck(g, DefaultPairs, rand.New(rand.NewPCG(1, 2)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(cards) != 2*DefaultPairs {
		t.Fatalf("Expected %d cards, got %d", 2*DefaultPairs, len(cards))
	}

	byKey := make(map[string][]Card)
	ids := make(map[string]bool)
	for _, c := range cards {
		byKey[c.PairKey] = append(byKey[c.PairKey], c)
		if ids[c.ID] {
			t.Errorf("Duplicate card id %s", c.ID)
		}
		ids[c.ID] = true
	}

	if len(byKey) != DefaultPairs {
		t.Fatalf("Expected %d distinct pairs, got %d", DefaultPairs, len(byKey))
	}

	for key, pair := range byKey {
		if len(pair) != 2 {
			t.Errorf("Pair %s has %d cards", key, len(pair))
			continue
		}
		if !IsMatch(pair[0], pair[1]) {
			t.Errorf("Cards for %s do not match each other", key)
		}

		e, ok := g.Lookup(key)
		if !ok {
			t.Errorf("Pair key %s is not a glossary term", key)
			continue
		}
		for _, c := range pair {
			if c.Type == CardDefinition && c.Text != e.Meaning {
				t.Errorf("Definition card for %s has wrong text", key)
			}
		}
	}
}

func TestNewDeckIsReproducibleWithSeed(t *testing.T) {
	g := testGlossary(t)

	a, _ := NewDeck(g, 4, rand.New(rand.NewPCG(7, 7)))
	b, _ := NewDeck(g, 4, rand.New(rand.NewPCG(7, 7)))

	if !reflect.DeepEqual(a, b) {
		t.Error("Expected identical decks for identical seeds")
	}
}

func TestNewDeckSmallGlossary(t *testing.T) {
	g, err := glossary.New("", []glossary.Entry{
		{Term: "ICD", Meaning: "Defibrillator", WhyItMatters: "w", Category: glossary.CategoryDevice},
		{Term: "VT", Meaning: "Fast rhythm", WhyItMatters: "w", Category: glossary.CategoryAlert},
	}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	cards, err := NewDeck(g, 6, rand.New(rand.NewPCG(1, 1)))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(cards) != 4 {
		t.Errorf("Expected deck capped at glossary size (4 cards), got %d", len(cards))
	}
}

func TestNewDeckInvalidArguments(t *testing.T) {
	g := testGlossary(t)
	rng := rand.New(rand.NewPCG(1, 1))

	for _, pairs := range []int{0, -1, MaxPairs + 1} {
		if _, err := NewDeck(g, pairs, rng); err == nil {
			t.Errorf("Expected error for pairs=%d", pairs)
		}
	}

	if _, err := NewDeck(g, 3, nil); err == nil {
		t.Error("Expected error for nil random source")
	}
}

func TestIsMatch(t *testing.T) {
	term := Card{PairKey: "ICD", Type: CardTerm}
	def := Card{PairKey: "ICD", Type: CardDefinition}
	other := Card{PairKey: "VT", Type: CardDefinition}

	if !IsMatch(term, def) {
		t.Error("Expected term and definition of ICD to match")
	}
	if IsMatch(term, term) {
		t.Error("Expected a card not to match a card of the same type")
	}
	if IsMatch(term, other) {
		t.Error("Expected different entries not to match")
	}
}
