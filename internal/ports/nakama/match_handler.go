package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"witchhunt/internal/app"
	"witchhunt/internal/config"
	"witchhunt/internal/domain"
	"witchhunt/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// matchLabel is the JSON document Nakama indexes for match listing queries.
type matchLabel struct {
	Open  bool   `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	RoomID    string                      // Nakama match id, doubles as the snapshot key
	Tick      int64                       // Current tick, kept for debugging
	Presences map[string]runtime.Presence // Map UserId -> Presence for targeted messaging
	Seats     map[string]string           // Map UserId -> entity id claimed via join or rejoin
	App       *app.Service                // Moderator rules
	Tickets   *app.TicketService          // Rejoin ticket minting and verification
	Game      *domain.Game                // Authoritative game state, never nil
	Store     ports.SessionStore          // Snapshot persistence for crash recovery
}

// openSeats reports whether the room can still take a brand-new participant.
func (ms *MatchState) openSeats() bool {
	return ms.Game.Phase == domain.PhaseLobby && len(ms.Game.Players) < config.GetMaxPlayers()
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	// Load room configuration
	if err := config.LoadRoomConfig("data/room_config.json"); err != nil {
		logger.Warn("MatchInit: Could not load room config: %v", err)
	}

	// Read environment variables for the rejoin ticket secret
	ticketSecret := ""
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		ticketSecret = env["witchhunt_ticket_secret"]
	}
	if ticketSecret == "" {
		logger.Warn("MatchInit: witchhunt_ticket_secret is not set; rejoin tickets are disabled.")
	}

	roomID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := &MatchState{
		RoomID:    roomID,
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		Seats:     make(map[string]string),
		App:       app.NewService(nil, config.GetGhostNames(), config.GetNightDamageReveals()),
		Tickets:   app.NewTicketService(ticketSecret, config.GetTicketIssuer(), time.Duration(config.GetTicketTTLSeconds())*time.Second),
		Game:      domain.NewGame(),
		Store:     NewNakamaSessionStore(nk),
	}

	// A room that died mid-game comes back from its snapshot with every seat
	// detached; participants reclaim them with their rejoin tickets.
	if snap, err := state.Store.LoadSnapshot(ctx, roomID); err != nil {
		logger.Warn("MatchInit: Could not load room snapshot: %v", err)
	} else if restored := restoreGame(snap); restored != nil {
		state.Game = restored
		logger.Info("MatchInit: Restored room %s at phase %s.", roomID, state.Game.Phase)
	}

	labelBytes, err := json.Marshal(matchLabel{
		Open:  state.openSeats(),
		Game:  MatchLabelGame,
		Phase: string(state.Game.Phase),
	})
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	tickRate := 1 // The moderator is event-driven; one tick per second is plenty.
	return state, tickRate, string(labelBytes)
}

// restoreGame rebuilds a room from its snapshot. Lobby snapshots are not
// worth restoring, those rooms just start fresh. Every human seat comes back
// detached until its player reclaims it.
func restoreGame(snap *ports.RoomSnapshot) *domain.Game {
	if snap == nil || snap.Game == nil || snap.Game.Phase == domain.PhaseLobby {
		return nil
	}
	for _, p := range snap.Game.Players {
		if !p.IsGhost {
			p.Disconnected = true
			p.UserID = ""
		}
	}
	return snap.Game
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if len(matchState.Presences) >= config.GetMaxPlayers() {
		return state, false, "Room full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	// Seats are claimed by an explicit join or rejoin message, not by the
	// transport connection. Until then the presence is a spectator.
	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		logger.Debug("MatchJoin: User %s connected, awaiting a seat claim.", p.GetUserId())
	}

	return matchState
}

// MatchLeave is called when one or more connections drop.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	var pending []app.Event
	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())

		playerID, claimed := matchState.Seats[p.GetUserId()]
		if !claimed {
			continue
		}
		delete(matchState.Seats, p.GetUserId())

		next, events, err := matchState.App.Leave(matchState.Game, playerID)
		if err != nil {
			logger.Warn("MatchLeave: Could not detach seat %s: %v", playerID, err)
			continue
		}
		matchState.Game = next
		pending = append(pending, events...)
		logger.Debug("MatchLeave: User %s left, seat %s detached.", p.GetUserId(), playerID)
	}

	// An empty lobby or a finished game has nothing left to recover; a room
	// that is mid-game stays alive so its players can reconnect.
	if len(matchState.Presences) == 0 &&
		(matchState.Game.Phase == domain.PhaseLobby || matchState.Game.Phase == domain.PhaseGameOver) {
		logger.Info("MatchLeave: Terminating empty room %s.", matchState.RoomID)
		if err := matchState.Store.DeleteSnapshot(ctx, matchState.RoomID); err != nil {
			logger.Warn("MatchLeave: Could not delete room snapshot: %v", err)
		}
		return nil
	}

	mh.broadcastEvents(matchState, dispatcher, logger, pending)
	mh.persist(ctx, matchState, logger)
	mh.updateLabel(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	// Handle incoming messages
	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpJoin:
			mh.handleJoin(ctx, matchState, dispatcher, logger, msg)
		case OpRejoin:
			mh.handleRejoin(ctx, matchState, dispatcher, logger, msg)
		case OpAction:
			mh.handleAction(ctx, matchState, dispatcher, logger, msg)
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpAdvancePhase:
			mh.handleAdvancePhase(ctx, matchState, dispatcher, logger, msg)
		case OpResolveNight:
			mh.handleResolveNight(ctx, matchState, dispatcher, logger, msg)
		case OpLeave:
			mh.handleLeave(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return matchState
}

// claimSeat binds the sender to an entity and evicts any stale claim another
// connection may still hold on the same seat.
func (mh *matchHandler) claimSeat(state *MatchState, senderID, playerID string) {
	for uid, pid := range state.Seats {
		if pid == playerID && uid != senderID {
			delete(state.Seats, uid)
		}
	}
	state.Seats[senderID] = playerID
}

func (mh *matchHandler) handleJoin(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request JoinMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleJoin: Invalid join payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid join payload")
		return
	}

	next, player, events, err := state.App.Join(state.Game, request.Name, senderID)
	if err != nil {
		logger.Debug("handleJoin: Join rejected for %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 409, err.Error())
		return
	}

	state.Game = next
	mh.claimSeat(state, senderID, player.ID)
	logger.Info("handleJoin: User %s claimed seat %s (%s).", senderID, player.ID, player.Name)

	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.persist(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleRejoin(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()

	var request RejoinMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleRejoin: Invalid rejoin payload from %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid rejoin payload")
		return
	}

	// A valid ticket is the strongest claim and overrides whatever seat id
	// the client remembers. A bad ticket is not fatal, the explicit fields
	// still get their chance below.
	entityID := request.EntityID
	name := request.Name
	if request.Ticket != "" {
		claims, err := state.Tickets.Verify(request.Ticket)
		switch {
		case err != nil:
			logger.Debug("handleRejoin: Bad ticket from %s: %v", senderID, err)
		case claims.RoomID != state.RoomID:
			logger.Debug("handleRejoin: Ticket for another room from %s.", senderID)
		default:
			entityID = claims.PlayerID
			if name == "" {
				name = claims.Name
			}
		}
	}

	next, player, events, err := state.App.Rejoin(state.Game, entityID, name, senderID)
	if err != nil {
		logger.Debug("handleRejoin: Rejoin rejected for %s: %v", senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 409, err.Error())
		return
	}

	state.Game = next
	mh.claimSeat(state, senderID, player.ID)
	logger.Info("handleRejoin: User %s reclaimed seat %s (%s).", senderID, player.ID, player.Name)

	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.persist(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleAction(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID, ok := state.Seats[senderID]
	if !ok {
		logger.Debug("handleAction: User %s acted without a seat.", senderID)
		return
	}

	var request ActionMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleAction: Invalid action payload from %s: %v", senderID, err)
		return
	}

	action, err := decodeAction(request.Kind, request.Payload)
	if err != nil {
		logger.Warn("handleAction: %v", err)
		return
	}

	prevPhase := state.Game.Phase
	next, events, err := state.App.Apply(state.Game, seatID, action)
	if err != nil {
		// Precondition failures are dropped without a reply; the next state
		// update corrects any client that raced a stale view.
		logger.Debug("handleAction: %s %s rejected: %v", seatID, request.Kind, err)
		return
	}

	state.Game = next
	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.persist(ctx, state, logger)
	if next.Phase != prevPhase {
		mh.updateLabel(state, dispatcher, logger)
	}
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID, ok := state.Seats[senderID]
	if !ok {
		logger.Warn("handleStartGame: User %s has no seat.", senderID)
		return
	}

	next, events, err := state.App.StartGame(state.Game, seatID)
	if err != nil {
		logger.Warn("handleStartGame: Seat %s could not start the game: %v", seatID, err)
		return
	}

	state.Game = next
	logger.Info("handleStartGame: Game started with %d seats.", len(next.Players))

	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.persist(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleAdvancePhase(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID, ok := state.Seats[senderID]
	if !ok {
		logger.Warn("handleAdvancePhase: User %s has no seat.", senderID)
		return
	}

	prevPhase := state.Game.Phase
	next, events, err := state.App.AdvancePhase(state.Game, seatID)
	if err != nil {
		logger.Warn("handleAdvancePhase: Seat %s could not advance from %s: %v", seatID, prevPhase, err)
		return
	}

	state.Game = next
	logger.Debug("handleAdvancePhase: %s -> %s.", prevPhase, next.Phase)

	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.persist(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleResolveNight(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID, ok := state.Seats[senderID]
	if !ok {
		logger.Warn("handleResolveNight: User %s has no seat.", senderID)
		return
	}

	var request ResolveNightMessage
	if err := json.Unmarshal(msg.GetData(), &request); err != nil {
		logger.Warn("handleResolveNight: Invalid payload from %s: %v", senderID, err)
		return
	}

	next, events, err := state.App.ResolveNight(state.Game, seatID, request.TargetDies)
	if err != nil {
		logger.Warn("handleResolveNight: Seat %s could not resolve the night: %v", seatID, err)
		return
	}

	state.Game = next

	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.persist(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) handleLeave(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	seatID, ok := state.Seats[senderID]
	if !ok {
		logger.Debug("handleLeave: User %s has no seat to give up.", senderID)
		return
	}

	// The payload may name the seat, but only the sender's own claim counts.
	if len(msg.GetData()) > 0 {
		var request LeaveMessage
		if err := json.Unmarshal(msg.GetData(), &request); err == nil &&
			request.EntityID != "" && request.EntityID != seatID {
			logger.Debug("handleLeave: User %s tried to detach another seat.", senderID)
			return
		}
	}

	next, events, err := state.App.Leave(state.Game, seatID)
	if err != nil {
		logger.Warn("handleLeave: Could not detach seat %s: %v", seatID, err)
		return
	}

	delete(state.Seats, senderID)
	state.Game = next
	logger.Info("handleLeave: User %s gave up seat %s.", senderID, seatID)

	mh.broadcastEvents(state, dispatcher, logger, events)
	mh.persist(ctx, state, logger)
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) broadcastEvents(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	var opCode int64
	var payload interface{}

	switch ev.Kind {
	case app.EventWelcome:
		p := ev.Payload.(app.WelcomePayload)
		ticket := ""
		if t, err := state.Tickets.Issue(state.RoomID, p.PlayerID, p.Name); err != nil {
			logger.Warn("broadcastEvent: Could not issue a rejoin ticket for %s: %v", p.PlayerID, err)
		} else {
			ticket = t
		}
		opCode = OpWelcome
		payload = WelcomeMessage{EntityID: p.PlayerID, Ticket: ticket, State: p.State}
	case app.EventStateUpdated:
		p := ev.Payload.(app.StateUpdatedPayload)
		opCode = OpStateUpdate
		payload = StateUpdateMessage{State: p.State}
	case app.EventHandUpdated:
		p := ev.Payload.(app.HandUpdatedPayload)
		opCode = OpHandUpdate
		payload = HandUpdateMessage{EntityID: p.PlayerID, Cards: p.Cards}
	default:
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// If we had intended recipients but none are connected (e.g. the seat
		// just dropped), we MUST NOT broadcast to everyone else: targeted
		// payloads carry private hands.
		if len(recipients) == 0 {
			return
		}
	}

	dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true)
}

// sendError sends an ErrorMessage to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := json.Marshal(ErrorMessage{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal ErrorMessage: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true)
}

// persist saves the authoritative snapshot so seats survive a server restart.
func (mh *matchHandler) persist(ctx context.Context, state *MatchState, logger runtime.Logger) {
	if state.Store == nil {
		return
	}

	now := time.Now().UTC()
	snap := ports.RoomSnapshot{
		RoomID:  state.RoomID,
		Game:    state.Game,
		SavedAt: now,
	}
	for _, p := range state.Game.Players {
		if p.IsGhost {
			continue
		}
		snap.Participants = append(snap.Participants, ports.ParticipantRecord{
			PlayerID:  p.ID,
			Name:      p.Name,
			IsHost:    p.IsHost,
			LastWrite: now,
		})
	}

	if err := state.Store.SaveSnapshot(ctx, snap); err != nil {
		logger.Warn("persist: Could not save room snapshot: %v", err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	labelBytes, err := json.Marshal(matchLabel{
		Open:  state.openSeats(),
		Game:  MatchLabelGame,
		Phase: string(state.Game.Phase),
	})
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(labelBytes)); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)

	// Best effort snapshot so a graceful shutdown loses nothing.
	if matchState, ok := state.(*MatchState); ok {
		mh.persist(ctx, matchState, logger)
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
