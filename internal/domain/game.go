package domain

import "fmt"

// Phase is the lifecycle stage of a game. Transitions are strictly forward:
// JOIN -> BID -> CALL -> PLAY -> END, except that a void auction (three
// initial passes) re-deals and restarts BID.
type Phase string

const (
	PhaseJoin Phase = "JOIN"
	PhaseBid  Phase = "BID"
	PhaseCall Phase = "CALL"
	PhasePlay Phase = "PLAY"
	PhaseEnd  Phase = "END"
)

// Strategy drives an automated seat. Implementations receive only the legal
// options the engine itself computes, so a conforming strategy can never
// desynchronize the game.
type Strategy interface {
	ChooseBid(hand []Card, legal []Bid) Bid
	ChoosePartner(hand []Card, candidates []Card) Card
	ChoosePlay(hand []Card, legal []Card) Card
}

// Player is a seat occupant. A player belongs to exactly one game for its
// lifetime. Strategy is nil for human seats; it is not serialized and must
// be reattached by the caller after restoring a game.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Seat   int    `json:"seat"`
	Bot    bool   `json:"bot"`
	Hand   []Card `json:"hand"`
	Tricks int    `json:"tricks"`

	Strategy Strategy `json:"-"`
}

// Contract is the outcome of the auction: the winning bid, the trick count
// the declarer's side must take, and the trump suit (NoTrump for none).
type Contract struct {
	Bid          Bid  `json:"bid"`
	Tricks       int  `json:"tricks"`
	Trump        Suit `json:"trump"`
	DeclarerSeat int  `json:"declarerSeat"`
}

// HasTrump reports whether the contract names a trump suit.
func (c Contract) HasTrump() bool { return c.Trump != NoTrump }

// Game is the aggregate root. It owns its four players and all auction,
// partner, trick and scoring state; callers mutate it only through the
// action methods, which either fully apply or fully fail.
type Game struct {
	ID      string    `json:"id"`
	Phase   Phase     `json:"phase"`
	Players []*Player `json:"players"`
	Active  int       `json:"active"` // seat index; -1 in JOIN and END

	// Auction state.
	HighBid        Bid `json:"highBid"`
	HighBidderSeat int `json:"highBidderSeat"` // -1 until a bid is made
	Passes         int `json:"passes"`         // consecutive passes

	Contract *Contract `json:"contract,omitempty"`

	// Partner state. PartnerSeat stays -1 until the called card is seen in
	// play (or immediately, when the declarer calls a card it holds).
	PartnerCard *Card `json:"partnerCard,omitempty"`
	PartnerSeat int   `json:"partnerSeat"`

	// Trick state. CurrentTrick is keyed by seat; LeadSuit is set by the
	// first card of each trick. TrumpBroken persists across tricks.
	CurrentTrick [4]*Card `json:"currentTrick"`
	LeadSeat     int      `json:"leadSeat"`
	LeadSuit     *Suit    `json:"leadSuit,omitempty"`
	TrumpBroken  bool     `json:"trumpBroken"`
	TricksPlayed int      `json:"tricksPlayed"`

	Result *Result `json:"result,omitempty"`
}

// NewGame creates an empty table in the JOIN phase.
func NewGame(id string) *Game {
	return &Game{
		ID:             id,
		Phase:          PhaseJoin,
		Active:         -1,
		HighBidderSeat: -1,
		PartnerSeat:    -1,
		LeadSeat:       -1,
	}
}

// Full reports whether all four seats are occupied.
func (g *Game) Full() bool { return len(g.Players) == 4 }

// AddPlayer fills the next free seat. A nil strategy marks a human seat.
func (g *Game) AddPlayer(id, name string, strategy Strategy) (*Player, error) {
	if g.Phase != PhaseJoin {
		return nil, fmt.Errorf("%w: cannot join in phase %s", ErrIllegalPhase, g.Phase)
	}
	if g.Full() {
		return nil, ErrGameFull
	}
	for _, p := range g.Players {
		if p.ID == id {
			return nil, fmt.Errorf("player %s is already seated", id)
		}
	}
	p := &Player{
		ID:       id,
		Name:     name,
		Seat:     len(g.Players),
		Bot:      strategy != nil,
		Strategy: strategy,
	}
	g.Players = append(g.Players, p)
	return p, nil
}

// PlayerBySeat returns the occupant of the given seat, or nil.
func (g *Game) PlayerBySeat(seat int) *Player {
	if seat < 0 || seat >= len(g.Players) {
		return nil
	}
	return g.Players[seat]
}

// SeatOf resolves a player id to its seat index.
func (g *Game) SeatOf(playerID string) (int, bool) {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p.Seat, true
		}
	}
	return -1, false
}

// BeginBidding assigns the dealt hands and opens the auction at seat 0.
// Valid only once, from JOIN with a full table.
func (g *Game) BeginBidding(hands [4][]Card) error {
	if g.Phase != PhaseJoin {
		return fmt.Errorf("%w: game already started", ErrIllegalPhase)
	}
	if !g.Full() {
		return fmt.Errorf("need 4 players, have %d", len(g.Players))
	}
	g.dealAndOpen(hands)
	return nil
}

// Redeal replaces all hands after a void auction and restarts the bidding.
func (g *Game) Redeal(hands [4][]Card) error {
	if g.Phase != PhaseBid {
		return fmt.Errorf("%w: redeal only valid during bidding", ErrIllegalPhase)
	}
	g.dealAndOpen(hands)
	return nil
}

func (g *Game) dealAndOpen(hands [4][]Card) {
	for seat, p := range g.Players {
		p.Hand = append([]Card(nil), hands[seat]...)
		p.Tricks = 0
	}
	g.Phase = PhaseBid
	g.Active = 0
	g.HighBid = Bid{}
	g.HighBidderSeat = -1
	g.Passes = 0
}

// LegalBids enumerates the non-pass bids available to the active bidder.
// A pass is always additionally legal during BID.
func (g *Game) LegalBids() []Bid {
	if g.Phase != PhaseBid {
		return nil
	}
	return LegalBidsAbove(g.HighBid)
}

// BidOutcome describes what a successful bid action led to.
type BidOutcome struct {
	Closed   bool      // bidding closed, contract fixed, phase is CALL
	Void     bool      // three initial passes; caller must Redeal
	Contract *Contract // set when Closed
}

// SubmitBid applies one auction action for the given seat. Passes count
// toward closing only once a real bid exists; three passes before any bid
// voids the hand instead.
func (g *Game) SubmitBid(seat int, bid Bid) (BidOutcome, error) {
	if g.Phase != PhaseBid {
		return BidOutcome{}, fmt.Errorf("%w: bidding is not open", ErrIllegalPhase)
	}
	if seat != g.Active {
		return BidOutcome{}, ErrIllegalTurn
	}

	if bid.IsPass() {
		g.Passes++
		if g.Passes >= 3 {
			if g.HighBidderSeat < 0 {
				// Hand is void; the caller re-deals and bidding restarts.
				return BidOutcome{Void: true}, nil
			}
			contract := &Contract{
				Bid:          g.HighBid,
				Tricks:       g.HighBid.TricksRequired(),
				Trump:        g.HighBid.Suit,
				DeclarerSeat: g.HighBidderSeat,
			}
			g.Contract = contract
			g.Phase = PhaseCall
			g.Active = g.HighBidderSeat
			return BidOutcome{Closed: true, Contract: contract}, nil
		}
		g.Active = (seat + 1) % 4
		return BidOutcome{}, nil
	}

	if bid.Level < 1 || bid.Level > 7 || bid.Suit < Clubs || bid.Suit > NoTrump {
		return BidOutcome{}, fmt.Errorf("%w: %s", ErrIllegalBid, bid)
	}
	if !bid.Beats(g.HighBid) {
		return BidOutcome{}, fmt.Errorf("%w: %s does not beat %s", ErrIllegalBid, bid, g.HighBid)
	}
	g.HighBid = bid
	g.HighBidderSeat = seat
	g.Passes = 0
	g.Active = (seat + 1) % 4
	return BidOutcome{}, nil
}

// PartnerCandidates returns the cards the declarer may call: the entire
// 52-card universe. Calling a card from the declarer's own hand means
// playing alone.
func (g *Game) PartnerCandidates() []Card {
	if g.Phase != PhaseCall {
		return nil
	}
	return NewDeck()
}

// CallPartner records the declarer's partner card and enters PLAY. The
// first leader is the seat clockwise of the declarer, or the declarer
// itself under a No-Trump contract. Returns whether the declarer called a
// card from its own hand (immediate self-reveal).
func (g *Game) CallPartner(seat int, card Card) (bool, error) {
	if g.Phase != PhaseCall {
		return false, fmt.Errorf("%w: no partner call pending", ErrIllegalPhase)
	}
	if seat != g.Active {
		return false, ErrIllegalTurn
	}

	c := card
	g.PartnerCard = &c
	selfCall := false
	if handContains(g.Players[seat].Hand, card) {
		g.PartnerSeat = seat
		selfCall = true
	}

	leader := g.Contract.DeclarerSeat
	if g.Contract.HasTrump() {
		leader = (leader + 1) % 4
	}
	g.Phase = PhasePlay
	g.LeadSeat = leader
	g.Active = leader
	g.CurrentTrick = [4]*Card{}
	g.LeadSuit = nil
	return selfCall, nil
}

func handContains(hand []Card, card Card) bool {
	for _, c := range hand {
		if c == card {
			return true
		}
	}
	return false
}
