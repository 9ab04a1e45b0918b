package server

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/bluffdeck/bluffdeck/internal/randutil"
	"github.com/bluffdeck/bluffdeck/internal/registry"
	"github.com/bluffdeck/bluffdeck/internal/room"
)

const (
	// defaultSession names the room used when a client omits session_id
	defaultSession = "default"

	// leaderboardLimit caps the standings list sent with each join ack
	leaderboardLimit = 20
)

// GameService manages rooms and routes room events back to connections.
// It implements room.Sink. Lock order is room before service: no method
// holds the service mutex across a room call, so a locked room may call
// back into the sink.
type GameService struct {
	registry    *registry.Registry
	roomCfg     room.Config
	rngSeed     int64
	turnTimeout time.Duration
	clock       quartz.Clock
	logger      *log.Logger

	mu     sync.RWMutex
	rooms  map[string]*room.Room
	conns  map[string]map[string]*Connection // sessionID -> userID -> connection
	timers map[string]*turnTimer             // armed turn timer per room
}

// turnTimer tracks whose turn an armed timer is watching
type turnTimer struct {
	userID string
	round  int
	timer  *quartz.Timer
}

// NewGameService creates a new game service
func NewGameService(reg *registry.Registry, cfg *ServerConfig, clock quartz.Clock, logger *log.Logger) *GameService {
	return &GameService{
		registry:    reg,
		roomCfg:     room.Config{Capacity: cfg.Game.RoomCapacity, LossLimit: cfg.Game.LossLimit},
		rngSeed:     cfg.Game.RNGSeed,
		turnTimeout: time.Duration(cfg.Game.TurnTimeoutSeconds) * time.Second,
		clock:       clock,
		logger:      logger.WithPrefix("game-service"),
		rooms:       make(map[string]*room.Room),
		conns:       make(map[string]map[string]*Connection),
		timers:      make(map[string]*turnTimer),
	}
}

// HandleJoin claims the username, binds the connection to the resulting
// user and admits them to the session's room. The acknowledgement rides
// the room's own event stream so it always lands before any broadcast
// the admission triggers.
func (s *GameService) HandleJoin(c *Connection, sessionID, username string) {
	if c.UserID() != "" {
		c.sendError("already joined as " + c.Username())
		return
	}
	if sessionID == "" {
		sessionID = defaultSession
	}

	username = strings.TrimSpace(username)
	userID, err := s.registry.Claim(username)
	if err != nil {
		c.sendData(MessageTypeUsernameError, UsernameErrorData{Success: false, Message: err.Error()})
		return
	}

	rm := s.attach(c, sessionID, userID)
	c.BindIdentity(userID, username, sessionID)

	if err := rm.Join(userID, username); err != nil {
		s.detach(sessionID, userID, c)
		s.registry.Release(userID)
		c.BindIdentity("", "", "")
		c.sendError(err.Error())
		return
	}

	s.logger.Info("User joined", "user", userID, "username", username, "room", sessionID)
}

// HandleStart starts a game on behalf of the host
func (s *GameService) HandleStart(c *Connection, userID string) {
	rm := s.roomFor(c)
	if rm == nil {
		c.sendError("no room joined")
		return
	}
	if err := rm.Start(userID); err != nil {
		c.sendError(err.Error())
	}
}

// HandleRestart aborts the running game and reopens the lobby
func (s *GameService) HandleRestart(c *Connection, userID string) {
	rm := s.roomFor(c)
	if rm == nil {
		c.sendError("no room joined")
		return
	}
	if err := rm.Restart(userID); err != nil {
		c.sendError(err.Error())
	}
}

// HandleKick removes a player on behalf of the host
func (s *GameService) HandleKick(c *Connection, hostID, targetUsername string) {
	rm := s.roomFor(c)
	if rm == nil {
		c.sendError("no room joined")
		return
	}
	if err := rm.Kick(hostID, targetUsername); err != nil {
		c.sendError(err.Error())
	}
}

// HandleCallHand places a hand declaration for the acting player
func (s *GameService) HandleCallHand(c *Connection, userID, handSpec string) {
	rm := s.roomFor(c)
	if rm == nil {
		c.sendError("no room joined")
		return
	}
	if err := rm.CallHand(userID, handSpec); err != nil {
		c.sendError(err.Error())
	}
}

// HandleCallBluff challenges the standing call
func (s *GameService) HandleCallBluff(c *Connection, userID string) {
	rm := s.roomFor(c)
	if rm == nil {
		c.sendError("no room joined")
		return
	}
	if err := rm.CallBluff(userID); err != nil {
		c.sendError(err.Error())
	}
}

// HandleDisconnect removes a dropped connection's user from their room
// and releases the username for reuse
func (s *GameService) HandleDisconnect(c *Connection) {
	userID := c.UserID()
	if userID == "" {
		return
	}
	sessionID := c.SessionID()

	s.detach(sessionID, userID, c)

	s.mu.RLock()
	rm := s.rooms[sessionID]
	s.mu.RUnlock()

	if rm != nil {
		rm.Leave(userID)
		s.reapRoom(sessionID, rm)
	}
	s.registry.Release(userID)
	s.logger.Info("User disconnected", "user", userID, "username", c.Username())
}

// attach registers the connection under its session and returns the
// session's room, opening one on first use
func (s *GameService) attach(c *Connection, sessionID, userID string) *room.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	rm := s.rooms[sessionID]
	if rm == nil {
		rng := randutil.ForSeed(s.rngSeed)
		rm = room.New(sessionID, s.roomCfg, rng, s.registry, s, s.logger.WithPrefix("room").With("room", sessionID))
		s.rooms[sessionID] = rm
		s.logger.Info("Room opened", "room", sessionID)
	}
	if s.conns[sessionID] == nil {
		s.conns[sessionID] = make(map[string]*Connection)
	}
	s.conns[sessionID][userID] = c
	return rm
}

// detach drops the connection from the session map if it is still the
// one registered for that user
func (s *GameService) detach(sessionID, userID string, c *Connection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns[sessionID][userID] == c {
		delete(s.conns[sessionID], userID)
	}
}

// reapRoom closes a room nobody occupies. Emptiness is checked before
// the service lock is taken, preserving the room-then-service lock
// order; the connection recheck under the lock catches a join that
// raced in between.
func (s *GameService) reapRoom(sessionID string, rm *room.Room) {
	if !rm.Empty() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[sessionID] != rm || len(s.conns[sessionID]) != 0 {
		return
	}
	if t := s.timers[sessionID]; t != nil {
		t.timer.Stop()
		delete(s.timers, sessionID)
	}
	delete(s.rooms, sessionID)
	delete(s.conns, sessionID)
	s.logger.Info("Room closed", "room", sessionID)
}

// roomFor resolves the room a connection joined
func (s *GameService) roomFor(c *Connection) *room.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[c.SessionID()]
}

// sessionConns snapshots the connection set for a session
func (s *GameService) sessionConns(sessionID string) map[string]*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Connection, len(s.conns[sessionID]))
	for userID, c := range s.conns[sessionID] {
		out[userID] = c
	}
	return out
}

// RoomEvent implements room.Sink. It runs under the emitting room's
// lock, so it only translates events into frames and queues them on
// connections; it never calls back into the room.
func (s *GameService) RoomEvent(roomID string, ev room.Event) {
	conns := s.sessionConns(roomID)

	switch e := ev.(type) {
	case room.StateEvent:
		s.broadcastState(conns, e.Snapshot)
		s.armTurnTimer(roomID, e.Snapshot)

	case room.JoinedEvent:
		c := conns[e.UserID]
		if c == nil {
			return
		}
		board, err := s.registry.Leaderboard(leaderboardLimit)
		if err != nil {
			s.logger.Error("Leaderboard lookup failed", "error", err)
		}
		c.sendData(MessageTypeUserJoin, UserJoinResponseData{
			Success:     true,
			Message:     "Successfully joined the game",
			UserID:      e.UserID,
			Username:    e.Username,
			IsHost:      e.IsHost,
			GameJoined:  e.Seated,
			Leaderboard: board,
		})

	case room.GameStartedEvent:
		s.broadcast(conns, MessageTypeGameStart, NoticeData{Message: e.Message})

	case room.RoundStartedEvent:
		s.broadcast(conns, MessageTypeRoundStart, RoundStartData{
			RoundNumber:     e.Number,
			CurrentPlayerID: e.CurrentID,
		})

	case room.CardsDealtEvent:
		s.sendTo(conns, e.UserID, MessageTypePlayerUpdate, PlayerCardsUpdateData{YourCards: e.Cards})

	case room.ShowCardsEvent:
		s.broadcast(conns, MessageTypeShowCards, struct{}{})

	case room.BluffResolvedEvent:
		s.broadcast(conns, MessageTypeCallBluff, BluffResultData{
			Message:            e.Message,
			Loser:              e.LoserID,
			PreviousRoundCards: playerCardsFromMap(e.Revealed),
		})

	case room.GameEndedEvent:
		message := "Game over"
		if e.WinnerUsername != "" {
			message = e.WinnerUsername + " wins the game!"
		}
		s.broadcast(conns, MessageTypeGameEnd, GameEndData{
			WinnerID: e.WinnerID,
			Winner:   e.WinnerUsername,
			Message:  message,
		})

	case room.GameRestartedEvent:
		s.broadcast(conns, MessageTypeGameRestart, NoticeData{Message: e.Message})

	case room.HostChangedEvent:
		s.broadcast(conns, MessageTypeHostChanged, HostChangedData{
			NewHost: e.HostUsername,
			HostID:  e.HostID,
		})

	case room.PlayerLeftEvent:
		s.broadcast(conns, MessageTypeUserLeave, UserLeaveData{
			UserID:   e.UserID,
			Username: e.Username,
		})

	case room.KickedEvent:
		if c := conns[e.UserID]; c != nil {
			c.sendData(MessageTypeUserKicked, NoticeData{Message: e.Message})
			_ = c.Close()
		}

	case room.WaitingEvent:
		s.sendTo(conns, e.UserID, MessageTypeWaitingForGame, NoticeData{Message: e.Message})

	case room.WaitingListEvent:
		names := e.Usernames
		if names == nil {
			names = []string{}
		}
		s.sendTo(conns, e.HostID, MessageTypePlayerUpdate, WaitingListUpdateData{WaitingList: names})
	}
}

// broadcastState fans a snapshot out with the spectator split: while a
// round is live, viewers who cannot act on the cards (waiting players
// and eliminated seats) receive the variant revealing every live hand.
func (s *GameService) broadcastState(conns map[string]*Connection, snap room.Snapshot) {
	public := &GameStateUpdateData{
		GameState:   gameStateFromSnapshot(snap),
		Host:        snap.HostUsername,
		OnlineUsers: s.registry.OnlineUsernames(),
	}

	var spectator *GameStateUpdateData
	if snap.Phase == room.PhasePlaying && len(snap.RoundCards) > 0 {
		v := *public
		v.CurrentRoundCards = playerCardsFromMap(snap.RoundCards)
		spectator = &v
	}

	canAct := make(map[string]bool, len(snap.Players))
	for _, p := range snap.Players {
		if !p.Eliminated {
			canAct[p.UserID] = true
		}
	}

	for userID, c := range conns {
		payload := public
		if spectator != nil && !canAct[userID] {
			payload = spectator
		}
		c.sendData(MessageTypeGameStateUpdate, payload)
	}
}

// broadcast queues a frame on every connection in the set
func (s *GameService) broadcast(conns map[string]*Connection, messageType MessageType, data interface{}) {
	for _, c := range conns {
		c.sendData(messageType, data)
	}
}

// sendTo queues a frame on one user's connection, if present
func (s *GameService) sendTo(conns map[string]*Connection, userID string, messageType MessageType, data interface{}) {
	if c := conns[userID]; c != nil {
		c.sendData(messageType, data)
	}
}

// armTurnTimer resets the idle timer when the turn moves to a new
// player or round. A player who lets it expire is dropped the same way
// a disconnect would drop them.
func (s *GameService) armTurnTimer(roomID string, snap room.Snapshot) {
	if s.turnTimeout <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.timers[roomID]; t != nil {
		if snap.Phase == room.PhasePlaying && t.userID == snap.CurrentID && t.round == snap.Round {
			return
		}
		t.timer.Stop()
		delete(s.timers, roomID)
	}
	if snap.Phase != room.PhasePlaying || snap.CurrentID == "" {
		return
	}

	userID := snap.CurrentID
	round := snap.Round
	s.timers[roomID] = &turnTimer{
		userID: userID,
		round:  round,
		timer: s.clock.AfterFunc(s.turnTimeout, func() {
			s.turnExpired(roomID, userID)
		}),
	}
}

// turnExpired drops a player whose turn timer ran out
func (s *GameService) turnExpired(roomID, userID string) {
	s.mu.Lock()
	t := s.timers[roomID]
	if t == nil || t.userID != userID {
		s.mu.Unlock()
		return
	}
	delete(s.timers, roomID)
	c := s.conns[roomID][userID]
	s.mu.Unlock()

	s.logger.Warn("Turn timer expired", "room", roomID, "user", userID)
	if c != nil {
		c.sendError("turn timer expired, you have been removed from the game")
		_ = c.Close()
	}
}
