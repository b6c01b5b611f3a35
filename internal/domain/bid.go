package domain

import "fmt"

// Bid is a contract proposal: a level from 1 to 7 and a denomination. The
// zero value is a pass. Denominations rank Clubs < Diamonds < Hearts <
// Spades < NoTrump within a level.
type Bid struct {
	Level int  `json:"level"`
	Suit  Suit `json:"suit"`
}

// IsPass reports whether the bid is a pass.
func (b Bid) IsPass() bool { return b.Level == 0 }

// Beats reports whether b is strictly higher than other under the
// level-then-denomination ordering. A pass never beats anything, and any
// real bid beats a pass.
func (b Bid) Beats(other Bid) bool {
	if b.IsPass() {
		return false
	}
	if other.IsPass() {
		return true
	}
	if b.Level != other.Level {
		return b.Level > other.Level
	}
	return b.Suit > other.Suit
}

// TricksRequired maps the bid level to the contract trick count: level+6.
func (b Bid) TricksRequired() int { return b.Level + 6 }

// Value is the point award at stake: 2^(level-1).
func (b Bid) Value() int { return 1 << (b.Level - 1) }

// String renders the boundary encoding: "PASS" or level digit plus
// denomination letter, e.g. "1C", "3N".
func (b Bid) String() string {
	if b.IsPass() {
		return "PASS"
	}
	return fmt.Sprintf("%d%s", b.Level, b.Suit)
}

// ParseBid decodes the boundary encoding. Failures wrap ErrIllegalBid.
func ParseBid(s string) (Bid, error) {
	if s == "PASS" {
		return Bid{}, nil
	}
	if len(s) != 2 {
		return Bid{}, fmt.Errorf("%w: %q is not a bid code", ErrIllegalBid, s)
	}
	level := int(s[0] - '0')
	if level < 1 || level > 7 {
		return Bid{}, fmt.Errorf("%w: level out of range in %q", ErrIllegalBid, s)
	}
	var suit Suit
	switch s[1] {
	case 'C':
		suit = Clubs
	case 'D':
		suit = Diamonds
	case 'H':
		suit = Hearts
	case 'S':
		suit = Spades
	case 'N':
		suit = NoTrump
	default:
		return Bid{}, fmt.Errorf("%w: unknown denomination in %q", ErrIllegalBid, s)
	}
	return Bid{Level: level, Suit: suit}, nil
}

// LegalBidsAbove enumerates every bid strictly higher than current, in
// ascending order. A pass is always legal and is not included.
func LegalBidsAbove(current Bid) []Bid {
	var out []Bid
	for level := 1; level <= 7; level++ {
		for suit := Clubs; suit <= NoTrump; suit++ {
			b := Bid{Level: level, Suit: suit}
			if b.Beats(current) {
				out = append(out, b)
			}
		}
	}
	return out
}
