package nakama

import (
	"encoding/json"
	"fmt"

	"sgbridge/internal/app"
	"sgbridge/internal/domain"
)

// Wire messages. Cards and bids cross the boundary in their textual encoding
// ("SA", "1C", "PASS"); seats are 0..3.

type playerJoinedMsg struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Bot    bool   `json:"bot"`
}

type playerLeftMsg struct {
	UserID string `json:"user_id"`
	Seat   int    `json:"seat"`
}

type gameStartedMsg struct {
	FirstBidderSeat int `json:"first_bidder_seat"`
}

type handDealtMsg struct {
	Hand []string `json:"hand"`
}

type bidSubmittedMsg struct {
	Seat     int    `json:"seat"`
	Bid      string `json:"bid"`
	NextSeat int    `json:"next_seat"`
}

type biddingClosedMsg struct {
	Bid          string `json:"bid"`
	Trump        string `json:"trump"`
	Tricks       int    `json:"tricks"`
	DeclarerSeat int    `json:"declarer_seat"`
}

type partnerCalledMsg struct {
	DeclarerSeat int `json:"declarer_seat"`
	LeaderSeat   int `json:"leader_seat"`
}

type cardPlayedMsg struct {
	Seat     int    `json:"seat"`
	Card     string `json:"card"`
	NextSeat int    `json:"next_seat"`
}

type partnerRevealedMsg struct {
	Seat int    `json:"seat"`
	Card string `json:"card"`
}

type trickWonMsg struct {
	Seat        int `json:"seat"`
	TrickNumber int `json:"trick_number"`
}

type gameEndedMsg struct {
	DeclarerWon bool  `json:"declarer_won"`
	Points      int   `json:"points"`
	WinnerSeats []int `json:"winner_seats"`
}

type gameErrorMsg struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// eventMessage maps an app event to its opcode and wire payload.
func eventMessage(ev app.Event) (int64, []byte, error) {
	var (
		opCode int64
		msg    any
	)

	switch ev.Kind {
	case app.EventPlayerJoined:
		p := ev.Payload.(app.PlayerJoinedPayload)
		opCode = OpPlayerJoined
		msg = playerJoinedMsg{UserID: p.PlayerID, Name: p.Name, Seat: p.Seat, Bot: p.Bot}
	case app.EventGameStarted:
		p := ev.Payload.(app.GameStartedPayload)
		opCode = OpGameStarted
		msg = gameStartedMsg{FirstBidderSeat: p.FirstBidderSeat}
	case app.EventHandDealt:
		p := ev.Payload.(app.HandDealtPayload)
		opCode = OpHandDealt
		msg = handDealtMsg{Hand: cardCodes(p.Hand)}
	case app.EventHandRedealt:
		opCode = OpHandRedealt
		msg = struct{}{}
	case app.EventBidSubmitted:
		p := ev.Payload.(app.BidSubmittedPayload)
		opCode = OpBidSubmitted
		msg = bidSubmittedMsg{Seat: p.Seat, Bid: p.Bid.String(), NextSeat: p.NextSeat}
	case app.EventBiddingClosed:
		p := ev.Payload.(app.BiddingClosedPayload)
		opCode = OpBiddingClosed
		msg = biddingClosedMsg{
			Bid:          p.Contract.Bid.String(),
			Trump:        p.Contract.Trump.String(),
			Tricks:       p.Contract.Tricks,
			DeclarerSeat: p.Contract.DeclarerSeat,
		}
	case app.EventPartnerCalled:
		p := ev.Payload.(app.PartnerCalledPayload)
		opCode = OpPartnerCalled
		msg = partnerCalledMsg{DeclarerSeat: p.DeclarerSeat, LeaderSeat: p.LeaderSeat}
	case app.EventCardPlayed:
		p := ev.Payload.(app.CardPlayedPayload)
		opCode = OpCardPlayed
		msg = cardPlayedMsg{Seat: p.Seat, Card: p.Card.String(), NextSeat: p.NextSeat}
	case app.EventPartnerRevealed:
		p := ev.Payload.(app.PartnerRevealedPayload)
		opCode = OpPartnerRevealed
		msg = partnerRevealedMsg{Seat: p.Seat, Card: p.Card.String()}
	case app.EventTrickWon:
		p := ev.Payload.(app.TrickWonPayload)
		opCode = OpTrickWon
		msg = trickWonMsg{Seat: p.Seat, TrickNumber: p.TrickNumber}
	case app.EventGameEnded:
		p := ev.Payload.(app.GameEndedPayload)
		opCode = OpGameEnded
		winners := p.Result.WinnerSeats
		if winners == nil {
			winners = []int{}
		}
		msg = gameEndedMsg{
			DeclarerWon: p.Result.DeclarerWon,
			Points:      p.Result.Points,
			WinnerSeats: winners,
		}
	default:
		return 0, nil, fmt.Errorf("unknown event kind: %s", ev.Kind)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %s event: %w", ev.Kind, err)
	}
	return opCode, data, nil
}

func cardCodes(cards []domain.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.String()
	}
	return out
}
