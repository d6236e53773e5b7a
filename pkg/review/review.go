// Package review builds flashcard decks from the saved vocabulary.
package review

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/japaniel/hanreader/pkg/db"
	"github.com/japaniel/hanreader/pkg/hanja"
	"github.com/japaniel/hanreader/pkg/wordid"
)

// Card is one flashcard: the word on the front, its meaning on the back.
type Card struct {
	ID         string
	Word       string
	Definition string
	Hanja      string
	// Characters holds Hanja split into selectable units.
	Characters []string
	Category   string
}

// String renders the card the way the review screen lists it.
func (c Card) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Word: %s", c.Word)
	if c.Definition != "" {
		fmt.Fprintf(&b, "\nDefinition: %s", c.Definition)
	}
	if c.Hanja != "" {
		fmt.Fprintf(&b, "\nHanja: %s", c.Hanja)
	}
	return b.String()
}

// Identity is the saved entry the card was made from.
func (c Card) Identity() wordid.Identity {
	return wordid.Of(c.Word, c.Hanja, c.Definition)
}

// Deck groups cards by category, oldest first within a category.
type Deck struct {
	categories []string
	cards      map[string][]Card
}

// Lister is the part of the vocabulary store a deck is built from.
type Lister interface {
	ListAll(ctx context.Context) ([]db.VocabularyRecord, error)
}

// Load builds a deck from everything in the store.
func Load(ctx context.Context, l Lister) (*Deck, error) {
	records, err := l.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return NewDeck(records), nil
}

// NewDeck builds a deck from vocabulary records.
func NewDeck(records []db.VocabularyRecord) *Deck {
	sorted := append([]db.VocabularyRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].Word < sorted[j].Word
	})

	d := &Deck{cards: make(map[string][]Card)}
	for _, r := range sorted {
		cat := r.Category
		if cat == "" {
			cat = db.DefaultCategory
		}
		if _, ok := d.cards[cat]; !ok {
			d.categories = append(d.categories, cat)
		}
		d.cards[cat] = append(d.cards[cat], Card{
			ID:         r.ID,
			Word:       r.Word,
			Definition: r.Definition,
			Hanja:      r.Origin,
			Characters: hanja.Split(r.Origin),
			Category:   cat,
		})
	}
	sort.Strings(d.categories)
	return d
}

// Categories returns the category names in alphabetical order.
func (d *Deck) Categories() []string {
	return append([]string(nil), d.categories...)
}

// Cards returns the cards of one category.
func (d *Deck) Cards(category string) []Card {
	return append([]Card(nil), d.cards[category]...)
}

// Len is the number of cards in the deck.
func (d *Deck) Len() int {
	n := 0
	for _, cs := range d.cards {
		n += len(cs)
	}
	return n
}
