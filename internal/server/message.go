package server

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/bluffdeck/bluffdeck/internal/deck"
	"github.com/bluffdeck/bluffdeck/internal/registry"
	"github.com/bluffdeck/bluffdeck/internal/room"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type UserJoinData struct {
	Username string `json:"username"`
}

type GameStartData struct {
	UserID string `json:"user_id"`
}

type GameRestartData struct {
	UserID string `json:"user_id"`
}

type KickUserData struct {
	HostID         string `json:"host_id"`
	TargetUsername string `json:"target_username"`
}

type CallHandData struct {
	UserID   string `json:"user_id"`
	HandSpec string `json:"hand_spec"`
}

type CallBluffData struct {
	UserID string `json:"user_id"`
}

// Server → Client Messages

type UserJoinResponseData struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message"`
	UserID      string              `json:"user_id,omitempty"`
	Username    string              `json:"username,omitempty"`
	IsHost      bool                `json:"is_host"`
	GameJoined  bool                `json:"game_joined"`
	Leaderboard []registry.Standing `json:"leaderboard,omitempty"`
}

type UsernameErrorData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// NoticeData carries a human-readable announcement. It backs the
// game_start and game_restart broadcasts plus the user_kicked and
// waiting_for_game notices, which all share this single-field shape.
type NoticeData struct {
	Message string `json:"message"`
}

// GameStateInfo is the snapshot every client can see: public seat data
// only, never anyone's cards.
type GameStateInfo struct {
	GameID              string            `json:"game_id"`
	Phase               string            `json:"phase"`
	Players             []room.PlayerView `json:"players"`
	RoundNumber         int               `json:"round_number"`
	CurrentPlayerID     string            `json:"current_player_id,omitempty"`
	CurrentCall         *room.CallView    `json:"current_call,omitempty"`
	WinnerID            string            `json:"winner_id,omitempty"`
	WaitingPlayersCount int               `json:"waiting_players_count"`
}

// GameStateUpdateData is the full broadcast payload. CurrentRoundCards
// is only populated on the variant sent to spectators while a round is
// live; active players receive the payload without it.
type GameStateUpdateData struct {
	GameState         GameStateInfo `json:"game_state"`
	Host              string        `json:"host,omitempty"`
	OnlineUsers       []string      `json:"online_users"`
	CurrentRoundCards []PlayerCards `json:"current_round_cards,omitempty"`
}

// PlayerCards pairs a player with their visible cards, used both for
// spectator state and for the reveal after a bluff call.
type PlayerCards struct {
	UserID string      `json:"user_id"`
	Cards  []deck.Card `json:"cards"`
}

// PlayerCardsUpdateData is the private player_update flavor delivering a
// player's own hand after a deal.
type PlayerCardsUpdateData struct {
	YourCards []deck.Card `json:"your_cards"`
}

// WaitingListUpdateData is the player_update flavor only the host sees.
// An empty list is meaningful: it clears the host's queue display.
type WaitingListUpdateData struct {
	WaitingList []string `json:"waiting_list"`
}

type RoundStartData struct {
	RoundNumber     int    `json:"round_number"`
	CurrentPlayerID string `json:"current_player_id,omitempty"`
}

// BluffResultData resolves a challenge. Loser is empty when the caller
// left before the challenge and nobody takes the loss.
type BluffResultData struct {
	Message            string        `json:"message"`
	Loser              string        `json:"loser,omitempty"`
	PreviousRoundCards []PlayerCards `json:"previous_round_cards"`
}

type GameEndData struct {
	WinnerID string `json:"winner_id,omitempty"`
	Winner   string `json:"winner,omitempty"`
	Message  string `json:"message"`
}

type HostChangedData struct {
	NewHost string `json:"new_host"`
	HostID  string `json:"host_id"`
}

type UserLeaveData struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Helper functions to convert between internal types and message types

// playerCardsFromMap flattens a reveal map into a list ordered by user
// ID so repeated snapshots of the same round serialize identically.
func playerCardsFromMap(cards map[string][]deck.Card) []PlayerCards {
	if len(cards) == 0 {
		return nil
	}
	ids := make([]string, 0, len(cards))
	for id := range cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]PlayerCards, 0, len(ids))
	for _, id := range ids {
		out = append(out, PlayerCards{UserID: id, Cards: cards[id]})
	}
	return out
}

func gameStateFromSnapshot(snap room.Snapshot) GameStateInfo {
	return GameStateInfo{
		GameID:              snap.RoomID,
		Phase:               snap.Phase.String(),
		Players:             snap.Players,
		RoundNumber:         snap.Round,
		CurrentPlayerID:     snap.CurrentID,
		CurrentCall:         snap.CurrentCall,
		WinnerID:            snap.WinnerID,
		WaitingPlayersCount: snap.WaitingCount,
	}
}
