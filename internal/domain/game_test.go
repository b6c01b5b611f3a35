package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func mustCard(t *testing.T, code string) Card {
	t.Helper()
	c, err := ParseCard(code)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func mustBid(t *testing.T, code string) Bid {
	t.Helper()
	b, err := ParseBid(code)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func parseHand(t *testing.T, codes []string) []Card {
	t.Helper()
	hand := make([]Card, len(codes))
	for i, code := range codes {
		hand[i] = mustCard(t, code)
	}
	return hand
}

// newBiddingGame seats four players and deals seeded hands so the game sits
// at the start of BID with seat 0 active.
func newBiddingGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1")
	for _, id := range []string{"p0", "p1", "p2", "p3"} {
		if _, err := g.AddPlayer(id, id, nil); err != nil {
			t.Fatalf("AddPlayer(%s): %v", id, err)
		}
	}
	hands, _ := DealHands(rand.New(rand.NewSource(1)), MinHandPoints)
	if err := g.BeginBidding(hands); err != nil {
		t.Fatalf("BeginBidding: %v", err)
	}
	return g
}

func submit(t *testing.T, g *Game, seat int, bid string) BidOutcome {
	t.Helper()
	out, err := g.SubmitBid(seat, mustBid(t, bid))
	if err != nil {
		t.Fatalf("SubmitBid(seat %d, %s): %v", seat, bid, err)
	}
	return out
}

func TestAddPlayerLimits(t *testing.T) {
	g := NewGame("g1")
	for i, id := range []string{"a", "b", "c", "d"} {
		p, err := g.AddPlayer(id, id, nil)
		if err != nil {
			t.Fatalf("AddPlayer %d: %v", i, err)
		}
		if p.Seat != i {
			t.Fatalf("seat = %d, want %d", p.Seat, i)
		}
	}
	if _, err := g.AddPlayer("e", "e", nil); !errors.Is(err, ErrGameFull) {
		t.Fatalf("fifth join error = %v, want ErrGameFull", err)
	}
	if _, err := g.AddPlayer("a", "again", nil); err == nil {
		t.Fatal("duplicate id join succeeded")
	}
}

func TestBeginBiddingNeedsFullTable(t *testing.T) {
	g := NewGame("g1")
	g.AddPlayer("a", "a", nil)
	var hands [4][]Card
	if err := g.BeginBidding(hands); err == nil {
		t.Fatal("BeginBidding succeeded with one player")
	}
}

// Scenario: bids 1C, PASS, PASS, PASS fix a 7-trick club contract with the
// first bidder as declarer.
func TestBiddingClosesAfterThreePasses(t *testing.T) {
	g := newBiddingGame(t)

	submit(t, g, 0, "1C")
	submit(t, g, 1, "PASS")
	submit(t, g, 2, "PASS")
	out := submit(t, g, 3, "PASS")

	if !out.Closed {
		t.Fatal("bidding did not close after three passes")
	}
	c := out.Contract
	if c == nil || c.Tricks != 7 || c.Trump != Clubs || c.DeclarerSeat != 0 {
		t.Fatalf("contract = %+v, want 7 tricks, clubs, declarer seat 0", c)
	}
	if g.Phase != PhaseCall {
		t.Fatalf("phase = %s, want CALL", g.Phase)
	}
	if g.Active != 0 {
		t.Fatalf("active = %d, want declarer seat 0", g.Active)
	}
}

func TestBiddingLadderIsStrictlyIncreasing(t *testing.T) {
	g := newBiddingGame(t)

	submit(t, g, 0, "1H")
	if _, err := g.SubmitBid(1, mustBid(t, "1D")); !errors.Is(err, ErrIllegalBid) {
		t.Fatalf("lower bid error = %v, want ErrIllegalBid", err)
	}
	if _, err := g.SubmitBid(1, mustBid(t, "1H")); !errors.Is(err, ErrIllegalBid) {
		t.Fatalf("equal bid error = %v, want ErrIllegalBid", err)
	}
	submit(t, g, 1, "1S")
	submit(t, g, 2, "1N")
	submit(t, g, 3, "2C")
	if g.HighBid.String() != "2C" || g.HighBidderSeat != 3 {
		t.Fatalf("high bid = %s by seat %d", g.HighBid, g.HighBidderSeat)
	}
}

func TestBidOutOfTurnRejected(t *testing.T) {
	g := newBiddingGame(t)
	if _, err := g.SubmitBid(2, mustBid(t, "1C")); !errors.Is(err, ErrIllegalTurn) {
		t.Fatalf("error = %v, want ErrIllegalTurn", err)
	}
	if g.HighBidderSeat != -1 || g.Active != 0 {
		t.Fatal("rejected bid mutated state")
	}
}

// Three passes before any bid never close the auction: the hand is void and
// must be re-dealt.
func TestThreeInitialPassesVoidTheHand(t *testing.T) {
	g := newBiddingGame(t)
	firstHand := append([]Card(nil), g.Players[0].Hand...)

	submit(t, g, 0, "PASS")
	submit(t, g, 1, "PASS")
	out := submit(t, g, 2, "PASS")

	if !out.Void || out.Closed {
		t.Fatalf("outcome = %+v, want Void", out)
	}
	if g.Phase != PhaseBid {
		t.Fatalf("phase = %s, want BID", g.Phase)
	}

	hands, _ := DealHands(rand.New(rand.NewSource(2)), MinHandPoints)
	if err := g.Redeal(hands); err != nil {
		t.Fatalf("Redeal: %v", err)
	}
	if g.Active != 0 || g.Passes != 0 {
		t.Fatalf("after redeal active=%d passes=%d, want 0/0", g.Active, g.Passes)
	}
	secondHand := g.Players[0].Hand
	same := len(firstHand) == len(secondHand)
	if same {
		for i := range firstHand {
			if firstHand[i] != secondHand[i] {
				same = false
				break
			}
		}
	}
	if same {
		t.Fatal("redeal left seat 0 with the identical hand")
	}
}

// A pass after a bid keeps counting: PASS, 1C, PASS, PASS, PASS closes with
// 1C even though the first action was a pass.
func TestPassBeforeFirstBidDoesNotCountTowardClosing(t *testing.T) {
	g := newBiddingGame(t)
	submit(t, g, 0, "PASS")
	submit(t, g, 1, "1C")
	submit(t, g, 2, "PASS")
	submit(t, g, 3, "PASS")
	out := submit(t, g, 0, "PASS")
	if !out.Closed {
		t.Fatal("bidding did not close")
	}
	if out.Contract.DeclarerSeat != 1 {
		t.Fatalf("declarer = %d, want 1", out.Contract.DeclarerSeat)
	}
}

func TestCallPartnerSelfCallRevealsImmediately(t *testing.T) {
	g := newBiddingGame(t)
	submit(t, g, 0, "1S")
	submit(t, g, 1, "PASS")
	submit(t, g, 2, "PASS")
	submit(t, g, 3, "PASS")

	own := g.Players[0].Hand[0]
	selfCall, err := g.CallPartner(0, own)
	if err != nil {
		t.Fatalf("CallPartner: %v", err)
	}
	if !selfCall {
		t.Fatal("own-hand call not reported as self call")
	}
	if g.PartnerSeat != 0 {
		t.Fatalf("partner seat = %d, want 0", g.PartnerSeat)
	}
	if g.Phase != PhasePlay {
		t.Fatalf("phase = %s, want PLAY", g.Phase)
	}
}

func TestCallPartnerSetsLeader(t *testing.T) {
	tests := []struct {
		name       string
		bid        string
		wantLeader int
	}{
		{"trump contract leads left of declarer", "1S", 1},
		{"no trump declarer leads", "1N", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newBiddingGame(t)
			submit(t, g, 0, tt.bid)
			submit(t, g, 1, "PASS")
			submit(t, g, 2, "PASS")
			submit(t, g, 3, "PASS")

			var called Card
			for _, c := range NewDeck() {
				if !handContains(g.Players[0].Hand, c) {
					called = c
					break
				}
			}
			if _, err := g.CallPartner(0, called); err != nil {
				t.Fatalf("CallPartner: %v", err)
			}
			if g.PartnerSeat != -1 {
				t.Fatalf("partner resolved early: seat %d", g.PartnerSeat)
			}
			if g.Active != tt.wantLeader || g.LeadSeat != tt.wantLeader {
				t.Fatalf("leader = %d/%d, want %d", g.Active, g.LeadSeat, tt.wantLeader)
			}
		})
	}
}

func TestCallPartnerOnlyDeclarer(t *testing.T) {
	g := newBiddingGame(t)
	submit(t, g, 0, "1S")
	submit(t, g, 1, "PASS")
	submit(t, g, 2, "PASS")
	submit(t, g, 3, "PASS")

	if _, err := g.CallPartner(2, mustCard(t, "SA")); !errors.Is(err, ErrIllegalTurn) {
		t.Fatalf("error = %v, want ErrIllegalTurn", err)
	}
	if _, err := g.SubmitBid(0, mustBid(t, "2C")); !errors.Is(err, ErrIllegalPhase) {
		t.Fatalf("bid in CALL error = %v, want ErrIllegalPhase", err)
	}
}
