package domain

import "fmt"

// Suit identifies a card suit. The ordering Clubs < Diamonds < Hearts < Spades
// is the bid-ranking order; NoTrump sits above all four suits and is only
// meaningful inside a Bid or Contract.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
	NoTrump
)

// Rank identifies a card rank, ascending from Two to Ace.
type Rank int

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const (
	suitLetters = "CDHS"
	rankLetters = "23456789TJQKA"
)

// Card is a single playing card. Cards are immutable values; two cards are
// equal iff suit and rank match.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// String renders the boundary encoding: suit letter followed by rank letter,
// e.g. "SA" for the ace of spades, "HT" for the ten of hearts.
func (c Card) String() string {
	return string(suitLetters[c.Suit]) + string(rankLetters[c.Rank])
}

// ParseCard decodes the two-character boundary encoding. Failures wrap
// ErrIllegalCard so callers can classify them without string matching.
func ParseCard(s string) (Card, error) {
	if len(s) != 2 {
		return Card{}, fmt.Errorf("%w: %q is not a two-character card code", ErrIllegalCard, s)
	}
	suit := -1
	for i := 0; i < len(suitLetters); i++ {
		if suitLetters[i] == s[0] {
			suit = i
			break
		}
	}
	rank := -1
	for i := 0; i < len(rankLetters); i++ {
		if rankLetters[i] == s[1] {
			rank = i
			break
		}
	}
	if suit < 0 || rank < 0 {
		return Card{}, fmt.Errorf("%w: unknown card code %q", ErrIllegalCard, s)
	}
	return Card{Suit: Suit(suit), Rank: Rank(rank)}, nil
}

// HonourPoints returns the wash point value of a rank: Ace=4, King=3,
// Queen=2, Jack=1, all others 0.
func HonourPoints(r Rank) int {
	switch r {
	case Ace:
		return 4
	case King:
		return 3
	case Queen:
		return 2
	case Jack:
		return 1
	default:
		return 0
	}
}

// String renders the suit letter used in bids and card codes.
func (s Suit) String() string {
	if s == NoTrump {
		return "N"
	}
	if s < Clubs || s > Spades {
		return "?"
	}
	return string(suitLetters[s])
}
