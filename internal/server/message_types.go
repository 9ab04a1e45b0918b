package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol.
// user_join, game_start, game_restart and call_bluff travel both
// directions: the request and its acknowledgement or resolution
// broadcast share the type.
const (
	// Client to server messages
	MessageTypeUserJoin    MessageType = "user_join"
	MessageTypeGameStart   MessageType = "game_start"
	MessageTypeGameRestart MessageType = "game_restart"
	MessageTypeKickUser    MessageType = "kick_user"
	MessageTypeCallHand    MessageType = "call_hand"
	MessageTypeCallBluff   MessageType = "call_bluff"

	// Server to client messages
	MessageTypeGameStateUpdate MessageType = "game_state_update"
	MessageTypePlayerUpdate    MessageType = "player_update"
	MessageTypeRoundStart      MessageType = "round_start"
	MessageTypeShowCards       MessageType = "show_cards"
	MessageTypeGameEnd         MessageType = "game_end"
	MessageTypeHostChanged     MessageType = "host_changed"
	MessageTypeUserLeave       MessageType = "user_leave"
	MessageTypeUserKicked      MessageType = "user_kicked"
	MessageTypeWaitingForGame  MessageType = "waiting_for_game"
	MessageTypeUsernameError   MessageType = "username_error"
	MessageTypeError           MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
