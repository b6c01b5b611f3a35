package nakama

import (
	"context"
	"encoding/json"
	"testing"

	"sgbridge/internal/app"
	"sgbridge/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

type broadcast struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcasts   []broadcast
	labelUpdates int
	lastLabel    string
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts = append(md.broadcasts, broadcast{
		opCode:     opCode,
		data:       append([]byte(nil), data...),
		recipients: presences,
	})
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) count(opCode int64) int {
	n := 0
	for _, b := range md.broadcasts {
		if b.opCode == opCode {
			n++
		}
	}
	return n
}

// mockPresence is a minimal runtime.Presence for tests.
type mockPresence struct {
	userID   string
	username string
}

func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }
func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return false }
func (p mockPresence) GetUsername() string               { return p.username }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }

// mockMatchData wraps a presence with a client message.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m mockMatchData) GetOpCode() int64      { return m.opCode }
func (m mockMatchData) GetData() []byte       { return m.data }
func (m mockMatchData) GetReliable() bool     { return true }
func (m mockMatchData) GetReceiveTime() int64 { return 0 }

func clientMsg(t *testing.T, userID string, opCode int64, payload any) runtime.MatchData {
	t.Helper()
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
	}
	return mockMatchData{
		mockPresence: mockPresence{userID: userID, username: userID},
		opCode:       opCode,
		data:         data,
	}
}

func newTestMatch(t *testing.T) (*matchHandler, *MatchState, *mockDispatcher) {
	t.Helper()
	mh := &matchHandler{}
	raw, tickRate, label := mh.MatchInit(context.Background(), noopLogger{}, nil, nil, nil)
	if tickRate != 1 {
		t.Fatalf("tickRate = %d", tickRate)
	}
	var parsed matchLabel
	if err := json.Unmarshal([]byte(label), &parsed); err != nil {
		t.Fatalf("initial label %q: %v", label, err)
	}
	if !parsed.Open || parsed.Game != matchLabelGame {
		t.Fatalf("initial label = %+v", parsed)
	}
	return mh, raw.(*MatchState), &mockDispatcher{}
}

func joinUser(mh *matchHandler, state *MatchState, md *mockDispatcher, userID string) {
	mh.MatchJoin(context.Background(), noopLogger{}, nil, nil, md, 0, state,
		[]runtime.Presence{mockPresence{userID: userID, username: userID}})
}

func TestMatchJoinSeatsAndOwner(t *testing.T) {
	mh, state, md := newTestMatch(t)

	joinUser(mh, state, md, "user-1")
	joinUser(mh, state, md, "user-2")

	if got := state.seatOfUser("user-1"); got != 0 {
		t.Fatalf("user-1 seat = %d", got)
	}
	if got := state.seatOfUser("user-2"); got != 1 {
		t.Fatalf("user-2 seat = %d", got)
	}
	if state.OwnerSeat != 0 {
		t.Fatalf("owner seat = %d", state.OwnerSeat)
	}
	if md.count(OpPlayerJoined) != 2 {
		t.Fatalf("player_joined broadcasts = %d", md.count(OpPlayerJoined))
	}
}

func TestMatchJoinAttemptRejectsMidGame(t *testing.T) {
	mh, state, md := newTestMatch(t)
	joinUser(mh, state, md, "user-1")

	// Owner starts solo; empty seats are filled with bots.
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 1, state,
		[]runtime.MatchData{clientMsg(t, "user-1", OpStartGame, nil)})
	if state.Game.Phase == domain.PhaseJoin {
		t.Fatal("game did not start")
	}

	_, allowed, reason := mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, md, 2, state,
		mockPresence{userID: "user-2"}, nil)
	if allowed {
		t.Fatal("mid-game join allowed")
	}
	if reason != "match_in_progress" {
		t.Fatalf("reason = %q", reason)
	}

	// Rejoin of a seated user stays allowed.
	_, allowed, _ = mh.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, md, 2, state,
		mockPresence{userID: "user-1"}, nil)
	if !allowed {
		t.Fatal("rejoin rejected")
	}
}

func TestStartGameDealsPrivatelyToHumans(t *testing.T) {
	mh, state, md := newTestMatch(t)
	joinUser(mh, state, md, "user-1")

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 1, state,
		[]runtime.MatchData{clientMsg(t, "user-1", OpStartGame, nil)})

	if state.Game.Phase != domain.PhaseBid {
		t.Fatalf("phase = %s, want BID with human first bidder", state.Game.Phase)
	}
	if got := state.humanCount(); got != 1 {
		t.Fatalf("human count = %d", got)
	}
	if md.count(OpGameStarted) != 1 {
		t.Fatal("missing game_started broadcast")
	}

	// Only the connected human receives a hand; bot hands go nowhere.
	hands := 0
	for _, b := range md.broadcasts {
		if b.opCode != OpHandDealt {
			continue
		}
		hands++
		if len(b.recipients) != 1 || b.recipients[0].GetUserId() != "user-1" {
			t.Fatalf("hand broadcast to %v", b.recipients)
		}
		var msg handDealtMsg
		if err := json.Unmarshal(b.data, &msg); err != nil {
			t.Fatal(err)
		}
		if len(msg.Hand) != 13 {
			t.Fatalf("hand size %d", len(msg.Hand))
		}
	}
	if hands != 1 {
		t.Fatalf("hand_dealt broadcasts = %d, want 1", hands)
	}
}

func TestNonOwnerCannotStart(t *testing.T) {
	mh, state, md := newTestMatch(t)
	joinUser(mh, state, md, "user-1")
	joinUser(mh, state, md, "user-2")

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 1, state,
		[]runtime.MatchData{clientMsg(t, "user-2", OpStartGame, nil)})
	if state.Game.Phase != domain.PhaseJoin {
		t.Fatalf("non-owner started the game, phase = %s", state.Game.Phase)
	}
}

func TestBadBidSendsTargetedError(t *testing.T) {
	mh, state, md := newTestMatch(t)
	joinUser(mh, state, md, "user-1")
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 1, state,
		[]runtime.MatchData{clientMsg(t, "user-1", OpStartGame, nil)})

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 2, state,
		[]runtime.MatchData{clientMsg(t, "user-1", OpSubmitBid, map[string]string{"bid": "9Z"})})

	if md.count(OpGameError) != 1 {
		t.Fatalf("game_error broadcasts = %d, want 1", md.count(OpGameError))
	}
	last := md.broadcasts[len(md.broadcasts)-1]
	if len(last.recipients) != 1 || last.recipients[0].GetUserId() != "user-1" {
		t.Fatalf("error not targeted: %v", last.recipients)
	}
}

func TestHumanBidFlows(t *testing.T) {
	mh, state, md := newTestMatch(t)
	joinUser(mh, state, md, "user-1")
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 1, state,
		[]runtime.MatchData{clientMsg(t, "user-1", OpStartGame, nil)})

	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 2, state,
		[]runtime.MatchData{clientMsg(t, "user-1", OpSubmitBid, map[string]string{"bid": "1C"})})

	if md.count(OpGameError) != 0 {
		t.Fatal("legal opening bid produced an error")
	}
	// The human bid plus at least one automated response.
	if md.count(OpBidSubmitted) < 2 {
		t.Fatalf("bid_submitted broadcasts = %d", md.count(OpBidSubmitted))
	}
}

func TestAutoFillAfterDelay(t *testing.T) {
	mh, state, md := newTestMatch(t)
	joinUser(mh, state, md, "user-1")
	state.BotAutoFillDelay = 3

	// First tick arms the timer, the next ticks wait it out.
	for tick := int64(1); tick <= 3; tick++ {
		mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, tick, state, nil)
	}
	if state.Game.Full() {
		t.Fatal("auto-fill fired before the delay expired")
	}
	mh.MatchLoop(context.Background(), noopLogger{}, nil, nil, md, 4, state, nil)
	if !state.Game.Full() {
		t.Fatal("auto-fill did not seat bots after the delay")
	}
	if state.humanCount() != 1 {
		t.Fatalf("human count = %d", state.humanCount())
	}
	if state.Game.Phase != domain.PhaseJoin {
		t.Fatal("auto-fill must not start the game")
	}
}

func TestEventMessageConversion(t *testing.T) {
	card, err := domain.ParseCard("SA")
	if err != nil {
		t.Fatal(err)
	}
	bid, err := domain.ParseBid("2N")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		event      app.Event
		wantOpCode int64
		wantJSON   string
	}{
		{
			name: "CardPlayed",
			event: app.Event{
				Kind:    app.EventCardPlayed,
				Payload: app.CardPlayedPayload{Seat: 2, Card: card, NextSeat: 3},
			},
			wantOpCode: OpCardPlayed,
			wantJSON:   `{"seat":2,"card":"SA","next_seat":3}`,
		},
		{
			name: "BidSubmitted",
			event: app.Event{
				Kind:    app.EventBidSubmitted,
				Payload: app.BidSubmittedPayload{Seat: 0, Bid: bid, NextSeat: 1},
			},
			wantOpCode: OpBidSubmitted,
			wantJSON:   `{"seat":0,"bid":"2N","next_seat":1}`,
		},
		{
			name: "PassSubmitted",
			event: app.Event{
				Kind:    app.EventBidSubmitted,
				Payload: app.BidSubmittedPayload{Seat: 1, Bid: domain.Bid{}, NextSeat: 2},
			},
			wantOpCode: OpBidSubmitted,
			wantJSON:   `{"seat":1,"bid":"PASS","next_seat":2}`,
		},
		{
			name: "GameEnded",
			event: app.Event{
				Kind: app.EventGameEnded,
				Payload: app.GameEndedPayload{Result: domain.Result{
					DeclarerWon: true, Points: 4, WinnerSeats: []int{0, 2},
				}},
			},
			wantOpCode: OpGameEnded,
			wantJSON:   `{"declarer_won":true,"points":4,"winner_seats":[0,2]}`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opCode, data, err := eventMessage(test.event)
			if err != nil {
				t.Fatal(err)
			}
			if opCode != test.wantOpCode {
				t.Fatalf("opcode = %d, want %d", opCode, test.wantOpCode)
			}
			if string(data) != test.wantJSON {
				t.Fatalf("payload = %s, want %s", data, test.wantJSON)
			}
		})
	}
}

func TestMatchLabelMarshal(t *testing.T) {
	b, err := json.Marshal(matchLabel{Open: true, Game: matchLabelGame, Phase: string(domain.PhaseJoin)})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"open":true,"game":"sgbridge","phase":"JOIN"}`
	if string(b) != want {
		t.Fatalf("label = %s, want %s", b, want)
	}
}
