package domain

import (
	"math/rand"
	"sort"
)

// MinHandPoints is the default playability threshold below which a dealt
// hand forces a wash (full redeal).
const MinHandPoints = 4

// NewDeck returns the full 52-card deck in sorted order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for s := Clubs; s <= Spades; s++ {
		for r := Two; r <= Ace; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// SortHand orders cards by suit then ascending rank for display and stable
// comparisons in tests.
func SortHand(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit < cards[j].Suit
		}
		return cards[i].Rank < cards[j].Rank
	})
}

// HandPoints computes the playability score of a hand: honour points plus
// one distribution point for every card beyond the fourth within a suit.
func HandPoints(hand []Card) int {
	points := 0
	var suitCounts [4]int
	for _, c := range hand {
		points += HonourPoints(c.Rank)
		suitCounts[c.Suit]++
	}
	for _, n := range suitCounts {
		if n > 4 {
			points += n - 4
		}
	}
	return points
}

// DealHands shuffles and deals four 13-card hands, redealing until every
// hand scores at least minPoints. It returns the hands and the number of
// deals performed; a count above one means at least one wash occurred.
// Determinism comes entirely from the supplied rng.
func DealHands(rng *rand.Rand, minPoints int) ([4][]Card, int) {
	deck := NewDeck()
	deals := 0
	for {
		deals++
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

		var hands [4][]Card
		ok := true
		for seat := 0; seat < 4; seat++ {
			hand := append([]Card(nil), deck[seat*13:(seat+1)*13]...)
			if HandPoints(hand) < minPoints {
				ok = false
				break
			}
			hands[seat] = hand
		}
		if !ok {
			continue
		}
		for seat := range hands {
			SortHand(hands[seat])
		}
		return hands, deals
	}
}
