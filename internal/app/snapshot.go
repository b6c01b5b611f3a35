package app

import "sgbridge/internal/domain"

// SeatInfo is the public view of one seat: everything except the hand.
type SeatInfo struct {
	PlayerID       string `json:"playerId"`
	Name           string `json:"name"`
	Seat           int    `json:"seat"`
	Bot            bool   `json:"bot"`
	Tricks         int    `json:"tricks"`
	CardsRemaining int    `json:"cardsRemaining"`
}

// ResultView is the boundary projection of a final score.
type ResultView struct {
	DeclarerWon bool     `json:"declarerWon"`
	Points      int      `json:"points"`
	WinnerIDs   []string `json:"winnerIds"`
}

// Snapshot is an idempotent read projection of a game for one viewer. Other
// players' hands and the unrevealed partner identity are hidden; cards and
// bids use the textual boundary encoding.
type Snapshot struct {
	GameID         string      `json:"gameId"`
	Phase          string      `json:"phase"`
	ActivePlayerID string      `json:"activePlayerId,omitempty"`
	Seats          []SeatInfo  `json:"seats"`
	Hand           []string    `json:"hand,omitempty"`
	LegalBids      []string    `json:"legalBids,omitempty"`
	LegalPlays     []string    `json:"legalPlays,omitempty"`
	CurrentTrick   []string    `json:"currentTrick,omitempty"` // seat-indexed, "" for empty slots
	Bid            string      `json:"bid,omitempty"`
	Trump          string      `json:"trump,omitempty"`
	ContractTricks int         `json:"contractTricks,omitempty"`
	DeclarerID     string      `json:"declarerId,omitempty"`
	PartnerCard    string      `json:"partnerCard,omitempty"`
	PartnerID      string      `json:"partnerId,omitempty"`
	TrumpBroken    bool        `json:"trumpBroken"`
	Result         *ResultView `json:"result,omitempty"`
}

// Snapshot builds the viewer-specific projection. The viewer must be seated.
func (s *Service) Snapshot(g *domain.Game, viewerID string) (Snapshot, error) {
	viewerSeat, ok := g.SeatOf(viewerID)
	if !ok {
		return Snapshot{}, ErrUnknownPlayer
	}
	viewer := g.PlayerBySeat(viewerSeat)

	snap := Snapshot{
		GameID:      g.ID,
		Phase:       string(g.Phase),
		TrumpBroken: g.TrumpBroken,
		Hand:        cardStrings(viewer.Hand),
	}

	for _, p := range g.Players {
		snap.Seats = append(snap.Seats, SeatInfo{
			PlayerID:       p.ID,
			Name:           p.Name,
			Seat:           p.Seat,
			Bot:            p.Bot,
			Tricks:         p.Tricks,
			CardsRemaining: len(p.Hand),
		})
	}

	if active := g.PlayerBySeat(g.Active); active != nil {
		snap.ActivePlayerID = active.ID
	}

	if !g.HighBid.IsPass() {
		snap.Bid = g.HighBid.String()
	}
	if g.Contract != nil {
		snap.Trump = g.Contract.Trump.String()
		snap.ContractTricks = g.Contract.Tricks
		snap.DeclarerID = g.Players[g.Contract.DeclarerSeat].ID
	}

	if g.Phase == domain.PhasePlay || g.Phase == domain.PhaseEnd {
		trick := make([]string, 4)
		for seat, c := range g.CurrentTrick {
			if c != nil {
				trick[seat] = c.String()
			}
		}
		snap.CurrentTrick = trick
	}

	// The called card is table knowledge only once the partner is revealed;
	// before that only the declarer sees its own call.
	if g.PartnerCard != nil {
		declarer := g.Contract != nil && viewerSeat == g.Contract.DeclarerSeat
		if g.PartnerSeat >= 0 || declarer {
			snap.PartnerCard = g.PartnerCard.String()
		}
	}
	if g.PartnerSeat >= 0 {
		snap.PartnerID = g.Players[g.PartnerSeat].ID
	}

	if viewerSeat == g.Active {
		switch g.Phase {
		case domain.PhaseBid:
			snap.LegalBids = append([]string{"PASS"}, bidStrings(g.LegalBids())...)
		case domain.PhasePlay:
			snap.LegalPlays = cardStrings(g.LegalPlays(viewerSeat))
		}
	}

	if g.Result != nil {
		view := &ResultView{
			DeclarerWon: g.Result.DeclarerWon,
			Points:      g.Result.Points,
		}
		for _, seat := range g.Result.WinnerSeats {
			view.WinnerIDs = append(view.WinnerIDs, g.Players[seat].ID)
		}
		snap.Result = view
	}

	return snap, nil
}

func cardStrings(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}

func bidStrings(bids []domain.Bid) []string {
	out := make([]string, len(bids))
	for i, b := range bids {
		out[i] = b.String()
	}
	return out
}
