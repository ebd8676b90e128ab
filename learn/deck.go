// Package learn builds decks for the term/definition matching game.
package learn

import (
	"fmt"
	"math/rand/v2"

	"github.com/giygas/cardioexplain-api/glossary"
)

const (
	DefaultPairs = 6
	MaxPairs     = 12
)

// CardType tells whether a card shows a term or its definition.
type CardType string

const (
	CardTerm       CardType = "term"
	CardDefinition CardType = "definition"
)

// Card is one face-up card. Cards with the same PairKey form a match.
type Card struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Type     CardType          `json:"type"`
	PairKey  string            `json:"pair_key"`
	Category glossary.Category `json:"category"`
}

// NewDeck picks pairs random entries from g (all of them when g is smaller)
// and returns their term and definition cards shuffled together.
func NewDeck(g *glossary.Glossary, pairs int, rng *rand.Rand) ([]Card, error) {
	if pairs < 1 || pairs > MaxPairs {
		return nil, fmt.Errorf("pairs must be between 1 and %d, got %d", MaxPairs, pairs)
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}

	entries := g.Entries()
	rng.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})
	if pairs < len(entries) {
		entries = entries[:pairs]
	}

	cards := make([]Card, 0, 2*len(entries))
	for i, e := range entries {
		cards = append(cards,
			Card{ID: fmt.Sprintf("term-%d", i), Text: e.Term, Type: CardTerm, PairKey: e.Term, Category: e.Category},
			Card{ID: fmt.Sprintf("def-%d", i), Text: e.Meaning, Type: CardDefinition, PairKey: e.Term, Category: e.Category},
		)
	}

	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	return cards, nil
}

// IsMatch reports whether a and b are the term and definition of the same
// entry.
func IsMatch(a, b Card) bool {
	return a.PairKey == b.PairKey && a.Type != b.Type
}
