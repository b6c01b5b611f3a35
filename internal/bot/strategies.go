package bot

import (
	"math/rand"

	"sgbridge/internal/domain"
)

// minBiddingPoints is the playability score below which the standard
// strategy always passes.
const minBiddingPoints = 10

// StandardBrain is the default heuristic: bid on strong hands, call a high
// card it does not hold, and dump the lowest legal card on every trick.
type StandardBrain struct {
	rng *rand.Rand
}

// ChooseBid passes on weak hands and otherwise takes one of the cheapest
// available bids.
func (b *StandardBrain) ChooseBid(hand []domain.Card, legal []domain.Bid) domain.Bid {
	if len(legal) == 0 || domain.HandPoints(hand) < minBiddingPoints {
		return domain.Bid{}
	}
	n := len(legal)
	if n > 3 {
		n = 3
	}
	return legal[b.rng.Intn(n)]
}

// ChoosePartner prefers the highest honour the hand does not hold, so the
// strongest possible ally is recruited.
func (b *StandardBrain) ChoosePartner(hand []domain.Card, candidates []domain.Card) domain.Card {
	held := make(map[domain.Card]bool, len(hand))
	for _, c := range hand {
		held[c] = true
	}
	for rank := domain.Ace; rank >= domain.Jack; rank-- {
		var outside []domain.Card
		for _, c := range candidates {
			if c.Rank == rank && !held[c] {
				outside = append(outside, c)
			}
		}
		if len(outside) > 0 {
			return outside[b.rng.Intn(len(outside))]
		}
	}
	return candidates[b.rng.Intn(len(candidates))]
}

// ChoosePlay picks the lowest-ranked legal card.
func (b *StandardBrain) ChoosePlay(hand []domain.Card, legal []domain.Card) domain.Card {
	best := legal[0]
	for _, c := range legal[1:] {
		if c.Rank < best.Rank || (c.Rank == best.Rank && c.Suit < best.Suit) {
			best = c
		}
	}
	return best
}

// RandomBrain picks uniformly among the legal options. It bids rarely so
// that all-bot tables still terminate quickly.
type RandomBrain struct {
	rng *rand.Rand
}

func (b *RandomBrain) ChooseBid(hand []domain.Card, legal []domain.Bid) domain.Bid {
	if len(legal) == 0 || b.rng.Intn(4) != 0 {
		return domain.Bid{}
	}
	return legal[0]
}

func (b *RandomBrain) ChoosePartner(hand []domain.Card, candidates []domain.Card) domain.Card {
	return candidates[b.rng.Intn(len(candidates))]
}

func (b *RandomBrain) ChoosePlay(hand []domain.Card, legal []domain.Card) domain.Card {
	return legal[b.rng.Intn(len(legal))]
}
