package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	userID      string
	username    string
	sessionID   string
	logger      *log.Logger
	clock       quartz.Clock
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, clock quartz.Clock, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		clock:       clock,
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the connection down. It closes the send channel instead of
// the socket: writePump flushes whatever is already queued, a kicked
// player's final notice included, then closes the socket itself.
func (c *Connection) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
	})
	return nil
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			// Log at debug level to avoid spam during tests
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// BindIdentity associates this connection with the user it joined as
func (c *Connection) BindIdentity(userID, username, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID = userID
	c.username = username
	c.sessionID = sessionID
}

// UserID returns the bound user ID, empty before a successful join
func (c *Connection) UserID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.userID
}

// Username returns the bound username, empty before a successful join
func (c *Connection) Username() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.username
}

// SessionID returns the room session this connection joined
func (c *Connection) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() {
		_ = c.Close() // Ignore close errors during cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(c.clock.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(c.clock.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client. It exits only when
// the send channel closes, so queued frames always flush first.
func (c *Connection) writePump() {
	ticker := c.clock.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(c.clock.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic handling message", "type", msg.Type, "panic", r)
			c.sendError("internal server error")
		}
	}()

	c.logger.Debug("Received message", "type", msg.Type, "user", c.UserID())

	switch msg.Type {
	case MessageTypeUserJoin:
		var data UserJoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse user_join data")
			return
		}
		c.gameService.HandleJoin(c, msg.SessionID, data.Username)

	case MessageTypeGameStart:
		var data GameStartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse game_start data")
			return
		}
		userID, ok := c.verifiedUser(data.UserID)
		if !ok {
			return
		}
		c.gameService.HandleStart(c, userID)

	case MessageTypeGameRestart:
		var data GameRestartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse game_restart data")
			return
		}
		userID, ok := c.verifiedUser(data.UserID)
		if !ok {
			return
		}
		c.gameService.HandleRestart(c, userID)

	case MessageTypeKickUser:
		var data KickUserData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse kick_user data")
			return
		}
		hostID, ok := c.verifiedUser(data.HostID)
		if !ok {
			return
		}
		c.gameService.HandleKick(c, hostID, data.TargetUsername)

	case MessageTypeCallHand:
		var data CallHandData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse call_hand data")
			return
		}
		userID, ok := c.verifiedUser(data.UserID)
		if !ok {
			return
		}
		c.gameService.HandleCallHand(c, userID, data.HandSpec)

	case MessageTypeCallBluff:
		var data CallBluffData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("failed to parse call_bluff data")
			return
		}
		userID, ok := c.verifiedUser(data.UserID)
		if !ok {
			return
		}
		c.gameService.HandleCallBluff(c, userID)

	default:
		c.sendError("unknown message type: " + msg.Type.String())
	}
}

// verifiedUser checks a claimed user ID against the bound identity. Every
// message after user_join must come from the user this connection joined
// as; an empty claim falls back to the bound user.
func (c *Connection) verifiedUser(claimed string) (string, bool) {
	bound := c.UserID()
	if bound == "" {
		c.sendError("join with a username first")
		return "", false
	}
	if claimed != "" && claimed != bound {
		c.sendError("user_id does not match this connection")
		return "", false
	}
	return bound, true
}

// sendError sends an error message to the client
func (c *Connection) sendError(message string) {
	c.sendData(MessageTypeError, ErrorData{Message: message})
}

// sendData marshals a payload and queues it, stamped with the session
func (c *Connection) sendData(messageType MessageType, data interface{}) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	msg.SessionID = c.SessionID()
	_ = c.SendMessage(msg) // Ignore send errors
}
