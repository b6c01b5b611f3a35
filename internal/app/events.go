package app

import "sgbridge/internal/domain"

// EventKind identifies emitted game events for transport dispatch.
type EventKind string

const (
	EventPlayerJoined    EventKind = "player_joined"
	EventGameStarted     EventKind = "game_started"
	EventHandDealt       EventKind = "hand_dealt"
	EventHandRedealt     EventKind = "hand_redealt"
	EventBidSubmitted    EventKind = "bid_submitted"
	EventBiddingClosed   EventKind = "bidding_closed"
	EventPartnerCalled   EventKind = "partner_called"
	EventCardPlayed      EventKind = "card_played"
	EventPartnerRevealed EventKind = "partner_revealed"
	EventTrickWon        EventKind = "trick_won"
	EventGameEnded       EventKind = "game_ended"
)

// Event is an app-level event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // player IDs; empty means broadcast
}

type PlayerJoinedPayload struct {
	PlayerID string
	Name     string
	Seat     int
	Bot      bool
}

type GameStartedPayload struct {
	FirstBidderSeat int
}

// HandDealtPayload is always delivered privately to its owner.
type HandDealtPayload struct {
	PlayerID string
	Hand     []domain.Card
}

// HandRedealtPayload announces a void auction: three initial passes forced a
// fresh deal. New hands follow as private HandDealt events.
type HandRedealtPayload struct{}

type BidSubmittedPayload struct {
	Seat     int
	Bid      domain.Bid
	NextSeat int
}

type BiddingClosedPayload struct {
	Contract domain.Contract
}

// PartnerCalledPayload announces only that the declarer has called; the
// card itself stays hidden from the table until it is played.
type PartnerCalledPayload struct {
	DeclarerSeat int
	LeaderSeat   int
}

type CardPlayedPayload struct {
	Seat     int
	Card     domain.Card
	NextSeat int
}

type PartnerRevealedPayload struct {
	Seat int
	Card domain.Card
}

type TrickWonPayload struct {
	Seat        int
	TrickNumber int // 1-based
}

type GameEndedPayload struct {
	Result domain.Result
}
