package domain

// Result is the final settlement of a game. The contract's point value,
// 2^(level-1), goes to the declarer's side when it took at least the
// required tricks, and to the defending pair otherwise. There is no
// overtrick bonus and no extra undertrick penalty.
type Result struct {
	DeclarerWon    bool  `json:"declarerWon"`
	Points         int   `json:"points"`
	DeclarerTricks int   `json:"declarerTricks"`
	WinnerSeats    []int `json:"winnerSeats"`
}

func (g *Game) scoreResult() *Result {
	declarer := g.Contract.DeclarerSeat
	side := map[int]bool{declarer: true}
	if g.PartnerSeat >= 0 {
		side[g.PartnerSeat] = true
	}

	tricks := 0
	for seat := range side {
		tricks += g.Players[seat].Tricks
	}

	won := tricks >= g.Contract.Tricks
	var winners []int
	for seat := 0; seat < 4; seat++ {
		if side[seat] == won {
			winners = append(winners, seat)
		}
	}
	return &Result{
		DeclarerWon:    won,
		Points:         g.Contract.Bid.Value(),
		DeclarerTricks: tricks,
		WinnerSeats:    winners,
	}
}
