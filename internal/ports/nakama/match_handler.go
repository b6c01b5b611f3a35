package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"sgbridge/internal/app"
	"sgbridge/internal/bot"
	"sgbridge/internal/config"
	"sgbridge/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	OwnerSeat            int                         `json:"owner_seat"`              // Seat index of the match owner
	Tick                 int64                       `json:"tick"`                    // Current tick for timer logic
	BotLevel             string                      `json:"bot_level"`               // Strategy level for automated seats
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	Presences            map[string]runtime.Presence `json:"-"`                       // Map UserId -> Presence for targeted messaging
	App                  *app.Service                `json:"-"`                       // Bridge app service with game logic
	Game                 *domain.Game                `json:"-"`                       // Authoritative game state
}

// matchLabel is advertised for quick-match queries.
type matchLabel struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

func (ms *MatchState) humanCount() int {
	count := 0
	for _, p := range ms.Game.Players {
		if !p.Bot {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOfUser(userID string) int {
	if seat, ok := ms.Game.SeatOf(userID); ok {
		return seat
	}
	return -1
}

// firstHumanSeat returns the first seat with a human occupant or -1.
func (ms *MatchState) firstHumanSeat() int {
	for _, p := range ms.Game.Players {
		if !p.Bot {
			return p.Seat
		}
	}
	return -1
}

func newMatchHandler() runtime.Match {
	return &matchHandler{}
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}

	svc := app.NewService(nil, config.GetMinHandPoints())

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state := &MatchState{
		OwnerSeat:        -1,
		BotLevel:         config.GetBotLevel(),
		BotAutoFillDelay: config.GetBotAutoFillDelaySeconds(),
		Presences:        make(map[string]runtime.Presence),
		App:              svc,
		Game:             svc.CreateGame(matchID),
	}

	// Environment overrides take precedence over the config file.
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		if val, ok := env["bridge_bot_level"]; ok && val != "" {
			state.BotLevel = val
		}
		if val, ok := env["bridge_bot_auto_fill_delay_sec"]; ok {
			if i, err := strconv.Atoi(val); err == nil && i > 0 {
				state.BotAutoFillDelay = i
			}
		}
	}

	labelBytes, err := json.Marshal(matchLabel{Open: true, Game: matchLabelGame, Phase: string(domain.PhaseJoin)})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Rejoin is always allowed.
	if matchState.seatOfUser(presence.GetUserId()) >= 0 {
		return state, true, ""
	}

	if matchState.Game.Phase != domain.PhaseJoin {
		return state, false, "match_in_progress"
	}

	// A fresh join needs an open seat or a bot to displace.
	if !matchState.Game.Full() {
		return state, true, ""
	}
	for _, p := range matchState.Game.Players {
		if p.Bot {
			return state, true, ""
		}
	}
	return state, false, "match_full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		matchState.Presences[uid] = p

		if matchState.seatOfUser(uid) >= 0 {
			logger.Debug("MatchJoin: User %s rejoined.", uid)
			continue
		}

		if !matchState.Game.Full() {
			events, err := matchState.App.AddHuman(matchState.Game, uid, p.GetUsername())
			if err != nil {
				logger.Warn("MatchJoin: Could not seat %s: %v", uid, err)
				continue
			}
			mh.broadcastEvents(matchState, dispatcher, logger, events)
			continue
		}

		// Full table: displace a bot pre-game.
		replaced := false
		for _, seatPlayer := range matchState.Game.Players {
			if !seatPlayer.Bot {
				continue
			}
			logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatPlayer.ID, uid, seatPlayer.Seat)
			seatPlayer.ID = uid
			seatPlayer.Name = p.GetUsername()
			seatPlayer.Bot = false
			seatPlayer.Strategy = nil
			mh.broadcastEvents(matchState, dispatcher, logger, []app.Event{{
				Kind: app.EventPlayerJoined,
				Payload: app.PlayerJoinedPayload{
					PlayerID: uid, Name: p.GetUsername(), Seat: seatPlayer.Seat,
				},
			}})
			replaced = true
			break
		}
		if !replaced {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", uid)
		}
	}

	if matchState.OwnerSeat < 0 || matchState.Game.PlayerBySeat(matchState.OwnerSeat) == nil ||
		matchState.Game.PlayerBySeat(matchState.OwnerSeat).Bot {
		matchState.OwnerSeat = matchState.firstHumanSeat()
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave frees presences. During JOIN a departed human simply vanishes
// from the roster; mid-game its seat is taken over by a bot so the table can
// finish the hand.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		uid := p.GetUserId()
		delete(matchState.Presences, uid)

		seat := matchState.seatOfUser(uid)
		if seat < 0 {
			continue
		}
		seatPlayer := matchState.Game.PlayerBySeat(seat)

		if matchState.Game.Phase == domain.PhaseJoin {
			mh.rebuildLobbyWithout(matchState, logger, uid)
		} else {
			identity := bot.IdentityForSeat(seat)
			brain, err := bot.NewBrain(matchState.BotLevel, nil)
			if err != nil {
				logger.Error("MatchLeave: Failed to create takeover bot: %v", err)
				continue
			}
			logger.Info("MatchLeave: Bot %s takes over seat %d from %s", identity.ID, seat, uid)
			seatPlayer.ID = identity.ID
			seatPlayer.Name = identity.Name
			seatPlayer.Bot = true
			seatPlayer.Strategy = brain
		}

		data, _ := json.Marshal(playerLeftMsg{UserID: uid, Seat: seat})
		_ = dispatcher.BroadcastMessage(OpPlayerLeft, data, nil, nil, true)
	}

	// Lobby rebuilds compact seats, so re-derive the owner from scratch.
	matchState.OwnerSeat = matchState.firstHumanSeat()

	if matchState.firstHumanSeat() < 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	// The departed human may have been the active seat.
	events, err := matchState.App.RunBots(matchState.Game)
	if err != nil {
		logger.Error("MatchLeave: Bot drain failed: %v", err)
	}
	mh.broadcastEvents(matchState, dispatcher, logger, events)

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// rebuildLobbyWithout recreates the JOIN-phase roster minus one player,
// compacting seats. Seat order among the remaining players is preserved.
func (mh *matchHandler) rebuildLobbyWithout(state *MatchState, logger runtime.Logger, userID string) {
	old := state.Game
	fresh := state.App.CreateGame(old.ID)
	for _, p := range old.Players {
		if p.ID == userID {
			continue
		}
		if _, err := fresh.AddPlayer(p.ID, p.Name, p.Strategy); err != nil {
			logger.Error("rebuildLobbyWithout: Could not reseat %s: %v", p.ID, err)
		}
	}
	state.Game = fresh
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(matchState, dispatcher, logger, msg)
		case OpSubmitBid:
			mh.handleSubmitBid(matchState, dispatcher, logger, msg)
		case OpCallPartner:
			mh.handleCallPartner(matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(matchState, dispatcher, logger, msg)
		case OpAddBot:
			mh.handleAddBot(matchState, dispatcher, logger, msg)
		case OpNewGame:
			mh.handleNewGame(matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.autoFillBots(matchState, dispatcher, logger)

	return matchState
}

// autoFillBots seats bots for a lone human once the configured delay expires.
// The owner still decides when to start.
func (mh *matchHandler) autoFillBots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game.Phase != domain.PhaseJoin || state.Game.Full() {
		state.LastSinglePlayerTick = 0
		return
	}
	if state.humanCount() != 1 {
		state.LastSinglePlayerTick = 0
		return
	}

	if state.LastSinglePlayerTick == 0 {
		state.LastSinglePlayerTick = state.Tick
		logger.Debug("autoFillBots: Single player detected, starting auto-fill timer.")
		return
	}
	if state.Tick-state.LastSinglePlayerTick < int64(state.BotAutoFillDelay) {
		return
	}

	for !state.Game.Full() {
		if err := mh.seatBot(state, dispatcher, logger); err != nil {
			logger.Error("autoFillBots: %v", err)
			break
		}
	}
	state.LastSinglePlayerTick = 0
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) seatBot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) error {
	seat := len(state.Game.Players)
	identity := bot.IdentityForSeat(seat)
	level := identity.Level
	if state.BotLevel != "" {
		level = state.BotLevel
	}
	brain, err := bot.NewBrain(level, nil)
	if err != nil {
		return err
	}
	events, err := state.App.AddBot(state.Game, identity.ID, identity.Name, brain)
	if err != nil {
		return err
	}
	logger.Info("seatBot: Added bot %s (%s) to seat %d", identity.Name, identity.ID, seat)
	mh.broadcastEvents(state, dispatcher, logger, events)
	return nil
}

func (mh *matchHandler) handleStartGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOfUser(senderID) != state.OwnerSeat {
		logger.Warn("handleStartGame: User %s tried to start but is not owner.", senderID)
		return
	}

	// Fill any remaining seats so a lone owner can play against bots.
	for !state.Game.Full() {
		if err := mh.seatBot(state, dispatcher, logger); err != nil {
			logger.Error("handleStartGame: %v", err)
			return
		}
	}

	events, err := state.App.Start(state.Game)
	if err != nil {
		logger.Warn("handleStartGame: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleSubmitBid(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	var payload struct {
		Bid string `json:"bid"`
	}
	if err := json.Unmarshal(msg.GetData(), &payload); err != nil {
		logger.Warn("handleSubmitBid: Bad payload from %s: %v", senderID, err)
		return
	}
	bid, err := domain.ParseBid(payload.Bid)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	events, err := state.App.SubmitBid(state.Game, senderID, bid)
	if err != nil {
		logger.Warn("handleSubmitBid: User %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handleCallPartner(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	var payload struct {
		Card string `json:"card"`
	}
	if err := json.Unmarshal(msg.GetData(), &payload); err != nil {
		logger.Warn("handleCallPartner: Bad payload from %s: %v", senderID, err)
		return
	}
	card, err := domain.ParseCard(payload.Card)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	events, err := state.App.CallPartner(state.Game, senderID, card)
	if err != nil {
		logger.Warn("handleCallPartner: User %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
}

func (mh *matchHandler) handlePlayCard(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	var payload struct {
		Card string `json:"card"`
	}
	if err := json.Unmarshal(msg.GetData(), &payload); err != nil {
		logger.Warn("handlePlayCard: Bad payload from %s: %v", senderID, err)
		return
	}
	card, err := domain.ParseCard(payload.Card)
	if err != nil {
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	events, err := state.App.Play(state.Game, senderID, card)
	if err != nil {
		logger.Warn("handlePlayCard: User %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
	if state.Game.Phase == domain.PhaseEnd {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) handleAddBot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOfUser(senderID) != state.OwnerSeat {
		logger.Warn("handleAddBot: User %s is not owner.", senderID)
		return
	}
	if err := mh.seatBot(state, dispatcher, logger); err != nil {
		logger.Warn("handleAddBot: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.updateLabel(state, dispatcher, logger)
}

// handleNewGame rebuilds a finished table with the same roster and starts a
// fresh hand.
func (mh *matchHandler) handleNewGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.Game.Phase != domain.PhaseEnd {
		logger.Warn("handleNewGame: Game is not finished.")
		return
	}
	if state.seatOfUser(senderID) != state.OwnerSeat {
		logger.Warn("handleNewGame: User %s is not owner.", senderID)
		return
	}

	old := state.Game
	fresh := state.App.CreateGame(old.ID)
	for _, p := range old.Players {
		if _, err := fresh.AddPlayer(p.ID, p.Name, p.Strategy); err != nil {
			logger.Error("handleNewGame: Could not reseat %s: %v", p.ID, err)
			return
		}
	}
	state.Game = fresh

	events, err := state.App.Start(state.Game)
	if err != nil {
		logger.Error("handleNewGame: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.updateLabel(state, dispatcher, logger)
}

// broadcastEvents converts and dispatches app events. Targeted events go only
// to connected recipients; if none of the intended recipients are connected
// (e.g. a bot's hand), nothing is sent.
func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, data, err := eventMessage(ev)
		if err != nil {
			logger.Error("broadcastEvents: %v", err)
			continue
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, uid := range ev.Recipients {
				if p, ok := state.Presences[uid]; ok {
					recipients = append(recipients, p)
				}
			}
			if len(recipients) == 0 {
				continue
			}
		}

		if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
			logger.Error("broadcastEvents: Failed to dispatch %s: %v", ev.Kind, err)
		}
	}
}

// sendError sends a gameErrorMsg to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	data, err := json.Marshal(gameErrorMsg{Code: 400, Message: cause.Error()})
	if err != nil {
		logger.Error("Failed to marshal gameErrorMsg: %v", err)
		return
	}
	_ = dispatcher.BroadcastMessage(OpGameError, data, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	open := state.Game.Phase == domain.PhaseJoin && !state.Game.Full()
	labelBytes, err := json.Marshal(matchLabel{Open: open, Game: matchLabelGame, Phase: string(state.Game.Phase)})
	if err != nil {
		logger.Error("updateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("updateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
