package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"sgbridge/internal/domain"
)

// maxBotActions caps a single automated drain: 52 plays plus a generous
// allowance for auction rounds and redeals.
const maxBotActions = 256

var (
	ErrUnknownPlayer = errors.New("player not seated at this game")
	ErrNotStartable  = errors.New("game needs four seated players to start")
)

// Service contains the Singapore Bridge use-cases operating on domain
// state. It is stateless with respect to which games exist; callers own the
// registry and must serialize actions per game.
type Service struct {
	mu            sync.Mutex // guards rng; one Service may serve many games
	rng           *rand.Rand
	minHandPoints int
}

// NewService constructs a Service with the provided rng or a time-seeded
// default. minHandPoints below 1 selects the standard wash threshold.
func NewService(rng *rand.Rand, minHandPoints int) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if minHandPoints < 1 {
		minHandPoints = domain.MinHandPoints
	}
	return &Service{rng: rng, minHandPoints: minHandPoints}
}

// CreateGame opens an empty table in the JOIN phase.
func (s *Service) CreateGame(id string) *domain.Game {
	return domain.NewGame(id)
}

// AddHuman seats a human player.
func (s *Service) AddHuman(g *domain.Game, playerID, name string) ([]Event, error) {
	return s.addPlayer(g, playerID, name, nil)
}

// AddBot seats an automated player driven by the given strategy.
func (s *Service) AddBot(g *domain.Game, playerID, name string, strategy domain.Strategy) ([]Event, error) {
	return s.addPlayer(g, playerID, name, strategy)
}

func (s *Service) addPlayer(g *domain.Game, playerID, name string, strategy domain.Strategy) ([]Event, error) {
	p, err := g.AddPlayer(playerID, name, strategy)
	if err != nil {
		return nil, err
	}
	return []Event{{
		Kind: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			PlayerID: p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
			Bot:      p.Bot,
		},
	}}, nil
}

// Start performs the wash-validated deal and opens the auction. Any leading
// automated turns are drained before returning.
func (s *Service) Start(g *domain.Game) ([]Event, error) {
	if !g.Full() {
		return nil, ErrNotStartable
	}
	hands := s.deal()
	if err := g.BeginBidding(hands); err != nil {
		return nil, err
	}

	events := []Event{{Kind: EventGameStarted, Payload: GameStartedPayload{FirstBidderSeat: g.Active}}}
	events = append(events, s.handEvents(g)...)

	drained, err := s.runBots(g)
	return append(events, drained...), err
}

func (s *Service) deal() [4][]domain.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	hands, _ := domain.DealHands(s.rng, s.minHandPoints)
	return hands
}

func (s *Service) handEvents(g *domain.Game) []Event {
	events := make([]Event, 0, 4)
	for _, p := range g.Players {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{PlayerID: p.ID, Hand: append([]domain.Card(nil), p.Hand...)},
			Recipients: []string{p.ID},
		})
	}
	return events
}

// SubmitBid applies one auction action for the identified player and then
// drains any consecutive automated turns.
func (s *Service) SubmitBid(g *domain.Game, playerID string, bid domain.Bid) ([]Event, error) {
	seat, ok := g.SeatOf(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	events, err := s.applyBid(g, seat, bid)
	if err != nil {
		return nil, err
	}
	drained, err := s.runBots(g)
	return append(events, drained...), err
}

func (s *Service) applyBid(g *domain.Game, seat int, bid domain.Bid) ([]Event, error) {
	out, err := g.SubmitBid(seat, bid)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventBidSubmitted,
		Payload: BidSubmittedPayload{Seat: seat, Bid: bid, NextSeat: g.Active},
	}}

	switch {
	case out.Void:
		// Three initial passes: the hand is void, wash and start over.
		hands := s.deal()
		if err := g.Redeal(hands); err != nil {
			return nil, err
		}
		events = append(events, Event{Kind: EventHandRedealt, Payload: HandRedealtPayload{}})
		events = append(events, s.handEvents(g)...)
	case out.Closed:
		events = append(events, Event{
			Kind:    EventBiddingClosed,
			Payload: BiddingClosedPayload{Contract: *out.Contract},
		})
	}
	return events, nil
}

// CallPartner records the declarer's partner card and then drains any
// consecutive automated turns.
func (s *Service) CallPartner(g *domain.Game, playerID string, card domain.Card) ([]Event, error) {
	seat, ok := g.SeatOf(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	events, err := s.applyCall(g, seat, card)
	if err != nil {
		return nil, err
	}
	drained, err := s.runBots(g)
	return append(events, drained...), err
}

func (s *Service) applyCall(g *domain.Game, seat int, card domain.Card) ([]Event, error) {
	selfCall, err := g.CallPartner(seat, card)
	if err != nil {
		return nil, err
	}
	events := []Event{{
		Kind:    EventPartnerCalled,
		Payload: PartnerCalledPayload{DeclarerSeat: seat, LeaderSeat: g.Active},
	}}
	if selfCall {
		events = append(events, Event{
			Kind:    EventPartnerRevealed,
			Payload: PartnerRevealedPayload{Seat: seat, Card: card},
		})
	}
	return events, nil
}

// Play plays one card for the identified player and then drains any
// consecutive automated turns.
func (s *Service) Play(g *domain.Game, playerID string, card domain.Card) ([]Event, error) {
	seat, ok := g.SeatOf(playerID)
	if !ok {
		return nil, ErrUnknownPlayer
	}
	events, err := s.applyPlay(g, seat, card)
	if err != nil {
		return nil, err
	}
	drained, err := s.runBots(g)
	return append(events, drained...), err
}

func (s *Service) applyPlay(g *domain.Game, seat int, card domain.Card) ([]Event, error) {
	out, err := g.PlayCard(seat, card)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Kind:    EventCardPlayed,
		Payload: CardPlayedPayload{Seat: seat, Card: card, NextSeat: g.Active},
	}}
	if out.PartnerRevealed {
		events = append(events, Event{
			Kind:    EventPartnerRevealed,
			Payload: PartnerRevealedPayload{Seat: seat, Card: card},
		})
	}
	if out.TrickComplete {
		events = append(events, Event{
			Kind:    EventTrickWon,
			Payload: TrickWonPayload{Seat: out.TrickWinner, TrickNumber: g.TricksPlayed},
		})
	}
	if out.GameOver {
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Result: *out.Result},
		})
	}
	return events, nil
}

// RunBots drains consecutive automated turns until a human seat becomes
// active or the game ends. Ports call this after transport-level actions
// that may leave an automated seat active (e.g. starting the game).
func (s *Service) RunBots(g *domain.Game) ([]Event, error) {
	return s.runBots(g)
}

func (s *Service) runBots(g *domain.Game) ([]Event, error) {
	var events []Event
	for i := 0; i < maxBotActions; i++ {
		if g.Phase != domain.PhaseBid && g.Phase != domain.PhaseCall && g.Phase != domain.PhasePlay {
			return events, nil
		}
		p := g.PlayerBySeat(g.Active)
		if p == nil || p.Strategy == nil {
			return events, nil
		}

		var (
			evs []Event
			err error
		)
		switch g.Phase {
		case domain.PhaseBid:
			bid := p.Strategy.ChooseBid(p.Hand, g.LegalBids())
			evs, err = s.applyBid(g, p.Seat, bid)
		case domain.PhaseCall:
			card := p.Strategy.ChoosePartner(p.Hand, g.PartnerCandidates())
			evs, err = s.applyCall(g, p.Seat, card)
		case domain.PhasePlay:
			card := p.Strategy.ChoosePlay(p.Hand, g.LegalPlays(p.Seat))
			evs, err = s.applyPlay(g, p.Seat, card)
		}
		if err != nil {
			return events, err
		}
		events = append(events, evs...)
	}
	return events, errors.New("automated drain exceeded action budget")
}
