package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand"
	"time"

	"mahjong/internal/app"
	"mahjong/internal/bot"
	"mahjong/internal/config"
	"mahjong/internal/domain"
	"mahjong/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

func newRuntimeRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// seatInfo tracks who occupies a seat. A seat with an empty UserID and Bot
// unset is free. A disconnected human keeps the seat while a game is in
// progress so they can rejoin.
type seatInfo struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Bot         bool   `json:"bot"`
	Connected   bool   `json:"connected"`
}

func (s seatInfo) Occupied() bool {
	return s.UserID != "" || s.Bot
}

// MatchState holds the authoritative runtime state for one room.
type MatchState struct {
	Code     string                     `json:"code"`
	Practice bool                       `json:"practice"`
	Seats    [domain.SeatCount]seatInfo `json:"seats"`
	Tick     int64                      `json:"tick"`

	Presences map[string]runtime.Presence `json:"-"`
	App       *app.Service                `json:"-"`
	Game      *domain.Game                `json:"-"`
	Bots      map[int]*bot.Agent          `json:"-"`
	Stats     ports.StatsPort             `json:"-"`

	// PendingReclaims carries seat reclaims accepted in MatchJoinAttempt,
	// where the join metadata is visible, over to MatchJoin, where it is not.
	PendingReclaims map[string]int `json:"pending_reclaims,omitempty"`

	// StartAtTick is when the delayed first deal fires; zero means the
	// countdown is not armed.
	StartAtTick int64 `json:"start_at_tick"`
	// ClaimDeadlineTick is when the open claim window expires on its own.
	// ClaimSeq pins it to the discard it was armed for.
	ClaimDeadlineTick int64  `json:"claim_deadline_tick"`
	ClaimSeq          uint64 `json:"claim_seq"`

	BotWaitUntil     [domain.SeatCount]int64 `json:"bot_wait_until"`
	LastActivityTick int64                   `json:"last_activity_tick"`
	StatsRecorded    bool                    `json:"stats_recorded"`

	ClaimWindowTicks int `json:"claim_window_ticks"`
	StartDelayTicks  int `json:"start_delay_ticks"`
	IdleTimeoutTicks int `json:"idle_timeout_ticks"`
	BotMinDelay      int `json:"bot_min_delay"`
	BotMaxDelay      int `json:"bot_max_delay"`

	rng *rand.Rand
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if !seat.Occupied() {
			count++
		}
	}
	return count
}

func (ms *MatchState) AllSeatsOccupied() bool {
	return ms.GetOpenSeatsCount() == 0
}

func (ms *MatchState) ConnectedHumanCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat.Occupied() && !seat.Bot && seat.Connected {
			count++
		}
	}
	return count
}

func (ms *MatchState) findSeatByUserID(userID string) int {
	for i, seat := range ms.Seats {
		if !seat.Bot && seat.UserID == userID {
			return i
		}
	}
	return -1
}

// findSeatByDisplayName locates a disconnected human seat a returning
// player can reclaim by name while a game is in progress.
func (ms *MatchState) findSeatByDisplayName(name string) int {
	if name == "" {
		return -1
	}
	for i, seat := range ms.Seats {
		if seat.Occupied() && !seat.Bot && !seat.Connected && seat.DisplayName == name {
			return i
		}
	}
	return -1
}

func (ms *MatchState) phase() string {
	if ms.Game == nil {
		return string(domain.PhaseWaiting)
	}
	return string(ms.Game.Phase)
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the room is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()

	code, _ := params["code"].(string)
	practice, _ := params["practice"].(bool)

	state := &MatchState{
		Code:             code,
		Practice:         practice,
		Presences:        make(map[string]runtime.Presence),
		App:              app.NewService(nil),
		Bots:             make(map[int]*bot.Agent),
		PendingReclaims:  make(map[string]int),
		Stats:            NewNakamaStatsAdapter(nk),
		ClaimWindowTicks: cfg.ClaimWindowSeconds,
		StartDelayTicks:  cfg.StartDelaySeconds,
		IdleTimeoutTicks: cfg.IdleTimeoutMinutes * 60,
		BotMinDelay:      cfg.BotMinDelaySeconds,
		BotMaxDelay:      cfg.BotMaxDelaySeconds,
		rng:              newRuntimeRNG(),
	}

	label := &MatchLabel{
		Code:     state.Code,
		Open:     state.GetOpenSeatsCount(),
		Phase:    state.phase(),
		Practice: state.Practice,
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // ticks are seconds for every timer below
	return state, tickRate, string(labelBytes)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if bot.IsBot(presence.GetUserId()) {
		return state, false, "reserved bot identity"
	}
	if matchState.findSeatByUserID(presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.Game != nil {
		if i := matchState.findSeatByDisplayName(displayNameFor(presence, metadata)); i >= 0 {
			matchState.PendingReclaims[presence.GetUserId()] = i
			return matchState, true, ""
		}
		return state, false, "game already in progress"
	}
	if matchState.GetOpenSeatsCount() > 0 {
		return state, true, ""
	}
	for _, seat := range matchState.Seats {
		if seat.Bot {
			return state, true, ""
		}
	}
	return state, false, "room is full"
}

func displayNameFor(presence runtime.Presence, metadata map[string]string) string {
	if name := metadata["display_name"]; name != "" {
		return name
	}
	return presence.GetUsername()
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	matchState.LastActivityTick = tick

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		name := displayNameFor(p, nil)

		// Same identity returning, possibly from another session.
		if i := matchState.findSeatByUserID(p.GetUserId()); i >= 0 {
			matchState.Seats[i].Connected = true
			logger.Debug("MatchJoin: User %s reclaimed seat %d.", p.GetUserId(), i)
			continue
		}

		// Seat reclaim accepted in MatchJoinAttempt against the join
		// metadata, which is not visible here.
		if i, pending := matchState.PendingReclaims[p.GetUserId()]; pending {
			delete(matchState.PendingReclaims, p.GetUserId())
			if matchState.Game != nil && matchState.Seats[i].Occupied() && !matchState.Seats[i].Bot && !matchState.Seats[i].Connected {
				logger.Info("MatchJoin: User %s rejoined seat %d as %q.", p.GetUserId(), i, matchState.Seats[i].DisplayName)
				matchState.Seats[i].UserID = p.GetUserId()
				matchState.Seats[i].Connected = true
				continue
			}
		}

		// Mid-game rejoin by display name from a fresh identity.
		if matchState.Game != nil {
			if i := matchState.findSeatByDisplayName(name); i >= 0 {
				logger.Info("MatchJoin: User %s rejoined seat %d as %q.", p.GetUserId(), i, name)
				matchState.Seats[i].UserID = p.GetUserId()
				matchState.Seats[i].Connected = true
				continue
			}
			logger.Warn("MatchJoin: User %s joined mid-game with no seat to reclaim.", p.GetUserId())
			continue
		}

		assigned := false
		for i := range matchState.Seats {
			if !matchState.Seats[i].Occupied() {
				matchState.Seats[i] = seatInfo{UserID: p.GetUserId(), DisplayName: name, Connected: true}
				assigned = true
				break
			}
		}
		if !assigned {
			for i := range matchState.Seats {
				if matchState.Seats[i].Bot {
					logger.Info("MatchJoin: Replacing bot %s with %s in seat %d.", matchState.Seats[i].DisplayName, p.GetUserId(), i)
					delete(matchState.Bots, i)
					matchState.Seats[i] = seatInfo{UserID: p.GetUserId(), DisplayName: name, Connected: true}
					assigned = true
					break
				}
			}
		}
		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", p.GetUserId())
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshots(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave frees seats in a waiting or finished room. During play the seat
// is only marked disconnected so the player can rejoin.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	playing := matchState.Game != nil && matchState.Game.Phase == domain.PhasePlaying
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		i := matchState.findSeatByUserID(p.GetUserId())
		if i < 0 {
			continue
		}
		if playing {
			matchState.Seats[i].Connected = false
			logger.Debug("MatchLeave: User %s disconnected, seat %d held.", p.GetUserId(), i)
		} else {
			matchState.Seats[i] = seatInfo{}
			matchState.StartAtTick = 0
			logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
		}
	}

	if matchState.ConnectedHumanCount() == 0 {
		if !matchState.Practice {
			logger.Info("MatchLeave: Terminating room %s with no humans.", matchState.Code)
			return nil
		}
		// The practice room stays up for the next player until the idle
		// sweep; join_room recreates it on demand after that.
		for i := range matchState.Seats {
			if !matchState.Seats[i].Bot {
				matchState.Seats[i] = seatInfo{}
			}
		}
		matchState.Game = nil
		matchState.StartAtTick = 0
		matchState.ClaimDeadlineTick = 0
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastSnapshots(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}
	matchState.Tick = tick
	if matchState.LastActivityTick == 0 {
		matchState.LastActivityTick = tick
	}

	for _, msg := range messages {
		matchState.LastActivityTick = tick
		mh.handleMessage(ctx, matchState, dispatcher, logger, msg)
	}

	mh.fillPracticeSeats(matchState, dispatcher, logger)
	mh.maybeStartGame(ctx, matchState, dispatcher, logger)
	mh.expireClaimWindow(ctx, matchState, dispatcher, logger)
	mh.processBots(ctx, matchState, dispatcher, logger)

	if tick-matchState.LastActivityTick >= int64(matchState.IdleTimeoutTicks) {
		logger.Info("MatchLoop: Room %s idle for %d ticks, shutting down.", matchState.Code, tick-matchState.LastActivityTick)
		return nil
	}
	return matchState
}

// handleMessage dispatches one client message. A panic in a handler is
// contained so one bad message cannot take the room down.
func (mh *matchHandler) handleMessage(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("MatchLoop: Recovered from panic handling opcode %d from %s: %v", msg.GetOpCode(), msg.GetUserId(), r)
		}
	}()

	senderID := msg.GetUserId()
	seat := state.findSeatByUserID(senderID)
	if seat < 0 {
		mh.sendError(state, dispatcher, logger, senderID, 403, "you are not seated in this room")
		return
	}

	if msg.GetOpCode() == OpResetRoom {
		mh.handleResetRoom(ctx, state, dispatcher, logger, senderID)
		return
	}

	if state.Game == nil {
		mh.sendError(state, dispatcher, logger, senderID, 400, "game has not started")
		return
	}

	var events []app.Event
	var err error
	switch msg.GetOpCode() {
	case OpDraw:
		events, err = state.App.Draw(state.Game, seat)
	case OpDiscard:
		var req DiscardRequest
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid discard payload")
			return
		}
		events, err = state.App.Discard(state.Game, seat, req.Tile)
	case OpClaim:
		var req ClaimRequest
		if jsonErr := json.Unmarshal(msg.GetData(), &req); jsonErr != nil {
			mh.sendError(state, dispatcher, logger, senderID, 400, "invalid claim payload")
			return
		}
		events, err = state.App.Claim(state.Game, seat, req.Kind, req.Tiles)
	case OpPass:
		events, err = state.App.Pass(state.Game, seat)
	case OpDeclareWin:
		events, err = state.App.DeclareWin(state.Game, seat)
	case OpForceDraw:
		events, err = state.App.ForceDraw(state.Game, seat)
	default:
		logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		return
	}

	if err != nil {
		logger.Warn("MatchLoop: User %s (seat %d) opcode %d rejected: %v", senderID, seat, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}
	mh.afterAction(ctx, state, dispatcher, logger, events)
}

// afterAction dispatches the events an operation produced and refreshes all
// derived room state: claim timer, stats, label and per-player snapshots.
func (mh *matchHandler) afterAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	mh.dispatchEvents(state, dispatcher, logger, events)
	mh.armClaimTimer(state)
	if state.Game != nil && state.Game.Phase == domain.PhaseFinished && !state.StatsRecorded {
		mh.recordResults(ctx, state, logger)
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastSnapshots(state, dispatcher, logger)
}

func (mh *matchHandler) armClaimTimer(state *MatchState) {
	if state.Game == nil || state.Game.LastDiscard == nil || len(state.Game.Candidates) == 0 {
		state.ClaimDeadlineTick = 0
		return
	}
	if state.ClaimSeq != state.Game.DiscardSeq {
		state.ClaimSeq = state.Game.DiscardSeq
		state.ClaimDeadlineTick = state.Tick + int64(state.ClaimWindowTicks)
	}
}

func (mh *matchHandler) expireClaimWindow(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.ClaimDeadlineTick == 0 || state.Tick < state.ClaimDeadlineTick {
		return
	}
	state.ClaimDeadlineTick = 0
	events, fired := state.App.ExpireClaimWindow(state.Game, state.ClaimSeq)
	if !fired {
		return
	}
	logger.Debug("MatchLoop: Claim window for discard %d expired.", state.ClaimSeq)
	mh.afterAction(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) maybeStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game != nil {
		return
	}
	if !state.AllSeatsOccupied() || state.ConnectedHumanCount() == 0 {
		state.StartAtTick = 0
		return
	}
	if state.StartAtTick == 0 {
		state.StartAtTick = state.Tick + int64(state.StartDelayTicks)
		logger.Info("MatchLoop: Room %s full, dealing at tick %d.", state.Code, state.StartAtTick)
		return
	}
	if state.Tick < state.StartAtTick {
		return
	}
	state.StartAtTick = 0
	mh.startGame(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) startGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	game, events := state.App.NewGame()
	state.Game = game
	state.StatsRecorded = false
	state.ClaimDeadlineTick = 0
	state.ClaimSeq = 0
	logger.Info("MatchLoop: Room %s dealt a new game.", state.Code)
	mh.afterAction(ctx, state, dispatcher, logger, events)
}

// handleResetRoom rebuilds the practice room's game in place. Private rooms
// are single-game; their players open a fresh room instead.
func (mh *matchHandler) handleResetRoom(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, senderID string) {
	if !state.Practice {
		mh.sendError(state, dispatcher, logger, senderID, 400, "only the practice room can be reset")
		return
	}
	mh.dispatchEvents(state, dispatcher, logger, []app.Event{{Kind: app.EventGameReset}})
	mh.startGame(ctx, state, dispatcher, logger)
}

func (mh *matchHandler) fillPracticeSeats(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if !state.Practice || state.Game != nil || state.ConnectedHumanCount() == 0 || state.GetOpenSeatsCount() == 0 {
		return
	}
	for i := range state.Seats {
		if state.Seats[i].Occupied() {
			continue
		}
		agent := bot.NewAgent(i, state.rng)
		state.Bots[i] = agent
		state.Seats[i] = seatInfo{UserID: agent.ID, DisplayName: agent.Name, Bot: true}
		logger.Info("MatchLoop: Seated bot %s at %d in practice room.", agent.Name, i)
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastSnapshots(state, dispatcher, logger)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Game == nil || state.Game.Phase != domain.PhasePlaying {
		state.BotWaitUntil = [domain.SeatCount]int64{}
		return
	}
	for seat := range state.Seats {
		if !state.Seats[seat].Bot {
			continue
		}
		agent := state.Bots[seat]
		if agent == nil {
			agent = bot.NewAgent(seat, state.rng)
			state.Bots[seat] = agent
		}

		action := agent.Act(state.Game, seat)
		if action.Kind == bot.ActionNone {
			state.BotWaitUntil[seat] = 0
			continue
		}
		if state.BotWaitUntil[seat] == 0 {
			delay := state.BotMinDelay
			if state.BotMaxDelay > state.BotMinDelay {
				delay += state.rng.Intn(state.BotMaxDelay - state.BotMinDelay + 1)
			}
			state.BotWaitUntil[seat] = state.Tick + int64(delay)
			continue
		}
		if state.Tick < state.BotWaitUntil[seat] {
			continue
		}
		state.BotWaitUntil[seat] = 0

		var events []app.Event
		var err error
		switch action.Kind {
		case bot.ActionDraw:
			events, err = state.App.Draw(state.Game, seat)
		case bot.ActionDiscard:
			events, err = state.App.Discard(state.Game, seat, action.Tile)
		case bot.ActionPass:
			events, err = state.App.Pass(state.Game, seat)
		case bot.ActionDeclareWin:
			events, err = state.App.DeclareWin(state.Game, seat)
		default:
			continue
		}
		if err != nil {
			logger.Warn("MatchLoop: Bot seat %d action %s rejected: %v", seat, action.Kind, err)
			continue
		}
		mh.afterAction(ctx, state, dispatcher, logger, events)
	}
}

func (mh *matchHandler) recordResults(ctx context.Context, state *MatchState, logger runtime.Logger) {
	state.StatsRecorded = true
	if state.Stats == nil {
		return
	}
	results := make([]ports.PlayerResult, 0, domain.SeatCount)
	for i, seat := range state.Seats {
		if !seat.Occupied() || seat.Bot {
			continue
		}
		results = append(results, ports.PlayerResult{
			UserID: seat.UserID,
			Won:    state.Game.Winner == i,
		})
	}
	if len(results) == 0 {
		return
	}
	if err := state.Stats.RecordResults(ctx, results); err != nil {
		logger.Error("MatchLoop: Failed to record results for room %s: %v", state.Code, err)
	}
}

// dispatchEvents converts app events to opcode messages. Targeted events go
// to the named seats only; if none of them is a connected human the event is
// dropped rather than leaked to the whole room.
func (mh *matchHandler) dispatchEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		opCode, ok := opCodeForEvent(ev.Kind)
		if !ok {
			logger.Warn("Unknown event kind: %v", ev.Kind)
			continue
		}

		var payload []byte
		if ev.Payload != nil {
			var err error
			payload, err = json.Marshal(ev.Payload)
			if err != nil {
				logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
				continue
			}
		}

		var recipients []runtime.Presence
		if len(ev.Recipients) > 0 {
			for _, seat := range ev.Recipients {
				info := state.Seats[seat]
				if info.Bot || info.UserID == "" {
					continue
				}
				if p, ok := state.Presences[info.UserID]; ok {
					recipients = append(recipients, p)
				}
			}
			if len(recipients) == 0 {
				continue
			}
		}

		dispatcher.BroadcastMessage(opCode, payload, recipients, nil, true)
	}
}

func opCodeForEvent(kind app.EventKind) (int64, bool) {
	switch kind {
	case app.EventGameStarted:
		return OpGameStarted, true
	case app.EventTileDrawn:
		return OpTileDrawn, true
	case app.EventAutoRedraw:
		return OpAutoRedraw, true
	case app.EventSupplyReshuffled:
		return OpSupplyReshuffled, true
	case app.EventTileDiscarded:
		return OpTileDiscarded, true
	case app.EventClaimAvailable:
		return OpClaimAvailable, true
	case app.EventClaimExpired:
		return OpClaimExpired, true
	case app.EventClaimSucceeded:
		return OpClaimSucceeded, true
	case app.EventClaimInvalid:
		return OpClaimInvalid, true
	case app.EventWinInvalid:
		return OpWinInvalid, true
	case app.EventGameWon:
		return OpGameWon, true
	case app.EventGameDrawn:
		return OpGameDrawn, true
	case app.EventGameReset:
		return OpGameReset, true
	default:
		return 0, false
	}
}

// broadcastSnapshots sends each connected human a personalized room view.
func (mh *matchHandler) broadcastSnapshots(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for i, seat := range state.Seats {
		if seat.Bot || seat.UserID == "" || !seat.Connected {
			continue
		}
		p, ok := state.Presences[seat.UserID]
		if !ok {
			continue
		}
		snapshot := mh.snapshotFor(state, i)
		bytes, err := json.Marshal(snapshot)
		if err != nil {
			logger.Error("Failed to marshal snapshot for seat %d: %v", i, err)
			continue
		}
		dispatcher.BroadcastMessage(OpRoomState, bytes, []runtime.Presence{p}, nil, true)
	}
}

func (mh *matchHandler) snapshotFor(state *MatchState, viewer int) RoomSnapshot {
	snapshot := RoomSnapshot{
		Code:     state.Code,
		Phase:    state.phase(),
		YourSeat: viewer,
		Winner:   domain.NoWinner,
	}
	for i, seat := range state.Seats {
		seatState := SeatState{
			Seat:        i,
			DisplayName: seat.DisplayName,
			Bot:         seat.Bot,
			Connected:   seat.Connected || seat.Bot,
		}
		if state.Game != nil {
			seatState.HandCount = len(state.Game.Hands[i])
			seatState.Melds = state.Game.Melds[i]
			if i == viewer {
				seatState.DrawnTile = state.Game.DrawnTiles[i]
			}
		}
		snapshot.Seats = append(snapshot.Seats, seatState)
	}
	if state.Game != nil {
		snapshot.Hand = state.Game.Hands[viewer]
		snapshot.CurrentTurn = state.Game.CurrentTurn
		snapshot.LastDiscard = state.Game.LastDiscard
		snapshot.DiscardPile = state.Game.Supply.DiscardPile
		snapshot.WallRemaining = state.Game.Supply.WallRemaining()
		snapshot.Winner = state.Game.Winner
		if state.ClaimDeadlineTick > state.Tick {
			snapshot.ClaimSeconds = int(state.ClaimDeadlineTick - state.Tick)
		}
	}
	return snapshot
}

// sendError sends an ErrorEvent to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	payload := ErrorEvent{
		Code:    code,
		Message: message,
	}
	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal ErrorEvent: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}
	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true)
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label := &MatchLabel{
		Code:     state.Code,
		Open:     state.GetOpenSeatsCount(),
		Phase:    state.phase(),
		Practice: state.Practice,
	}
	labelBytes, err := json.Marshal(label)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Room terminated for reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
