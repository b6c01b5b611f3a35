package domain

import "fmt"

// LegalPlays computes the cards the given seat may play right now. It is a
// pure query and never mutates state.
//
// Leading: the full hand, minus trump while trump is unbroken, unless the
// hand holds nothing but trump. Following: every card of the lead suit, or
// the full hand when the seat is void in it.
func (g *Game) LegalPlays(seat int) []Card {
	if g.Phase != PhasePlay {
		return nil
	}
	p := g.PlayerBySeat(seat)
	if p == nil {
		return nil
	}

	if g.trickEmpty() {
		if g.Contract.HasTrump() && !g.TrumpBroken {
			var nonTrump []Card
			for _, c := range p.Hand {
				if c.Suit != g.Contract.Trump {
					nonTrump = append(nonTrump, c)
				}
			}
			if len(nonTrump) > 0 {
				return nonTrump
			}
		}
		return append([]Card(nil), p.Hand...)
	}

	var followers []Card
	for _, c := range p.Hand {
		if c.Suit == *g.LeadSuit {
			followers = append(followers, c)
		}
	}
	if len(followers) > 0 {
		return followers
	}
	return append([]Card(nil), p.Hand...)
}

func (g *Game) trickEmpty() bool {
	for _, c := range g.CurrentTrick {
		if c != nil {
			return false
		}
	}
	return true
}

func (g *Game) trickFull() bool {
	for _, c := range g.CurrentTrick {
		if c == nil {
			return false
		}
	}
	return true
}

// PlayOutcome describes the consequences of a successful play.
type PlayOutcome struct {
	PartnerRevealed bool
	TrickComplete   bool
	TrickWinner     int // seat; meaningful only when TrickComplete
	GameOver        bool
	Result          *Result // set when GameOver
}

// PlayCard plays one card for the given seat, enforcing turn order,
// possession and the follow-suit/trump-break rules. Completing the fourth
// slot resolves the trick in the same call: the winner's count increments,
// the slots clear, and the winner leads the next trick. The thirteenth
// resolution scores the game and enters END.
func (g *Game) PlayCard(seat int, card Card) (PlayOutcome, error) {
	if g.Phase != PhasePlay {
		return PlayOutcome{}, fmt.Errorf("%w: no trick in progress", ErrIllegalPhase)
	}
	if seat != g.Active {
		return PlayOutcome{}, ErrIllegalTurn
	}
	p := g.Players[seat]
	if !handContains(p.Hand, card) {
		return PlayOutcome{}, fmt.Errorf("%w: %s is not in hand", ErrIllegalCard, card)
	}
	if !handContains(g.LegalPlays(seat), card) {
		return PlayOutcome{}, fmt.Errorf("%w: %s violates follow-suit or trump-break rules", ErrIllegalCard, card)
	}

	p.Hand = removeCard(p.Hand, card)
	c := card
	g.CurrentTrick[seat] = &c
	if g.LeadSuit == nil {
		lead := card.Suit
		g.LeadSuit = &lead
		g.LeadSeat = seat
	}
	if g.Contract.HasTrump() && card.Suit == g.Contract.Trump && *g.LeadSuit != g.Contract.Trump {
		g.TrumpBroken = true
	}

	var out PlayOutcome
	if g.PartnerCard != nil && card == *g.PartnerCard && g.PartnerSeat < 0 {
		g.PartnerSeat = seat
		out.PartnerRevealed = true
	}

	if !g.trickFull() {
		g.Active = (seat + 1) % 4
		return out, nil
	}

	winner := g.trickWinner()
	g.Players[winner].Tricks++
	g.TricksPlayed++
	g.CurrentTrick = [4]*Card{}
	g.LeadSuit = nil
	out.TrickComplete = true
	out.TrickWinner = winner

	if g.TricksPlayed == 13 {
		g.Result = g.scoreResult()
		g.Phase = PhaseEnd
		g.Active = -1
		g.LeadSeat = -1
		out.GameOver = true
		out.Result = g.Result
		return out, nil
	}

	g.LeadSeat = winner
	g.Active = winner
	return out, nil
}

// trickWinner picks the highest trump played, or absent trump the highest
// card of the lead suit. Cards of any third suit never win.
func (g *Game) trickWinner() int {
	best := g.LeadSeat
	for offset := 1; offset < 4; offset++ {
		seat := (g.LeadSeat + offset) % 4
		if cardBeats(*g.CurrentTrick[seat], *g.CurrentTrick[best], g.CurrentTrick[g.LeadSeat].Suit, g.Contract) {
			best = seat
		}
	}
	return best
}

func cardBeats(a, b Card, lead Suit, contract *Contract) bool {
	if contract.HasTrump() {
		trump := contract.Trump
		if a.Suit == trump && b.Suit != trump {
			return true
		}
		if b.Suit == trump && a.Suit != trump {
			return false
		}
		if a.Suit == trump && b.Suit == trump {
			return a.Rank > b.Rank
		}
	}
	if a.Suit == lead && b.Suit == lead {
		return a.Rank > b.Rank
	}
	return a.Suit == lead
}

func removeCard(hand []Card, card Card) []Card {
	out := make([]Card, 0, len(hand)-1)
	for _, c := range hand {
		if c == card {
			continue
		}
		out = append(out, c)
	}
	return out
}
