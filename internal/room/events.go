package room

import "github.com/bluffdeck/bluffdeck/internal/deck"

// EventType identifies a room event.
type EventType string

const (
	EventState         EventType = "state"
	EventJoined        EventType = "joined"
	EventGameStarted   EventType = "game_started"
	EventRoundStarted  EventType = "round_started"
	EventCardsDealt    EventType = "cards_dealt"
	EventShowCards     EventType = "show_cards"
	EventBluffResolved EventType = "bluff_resolved"
	EventGameEnded     EventType = "game_ended"
	EventGameRestarted EventType = "game_restarted"
	EventHostChanged   EventType = "host_changed"
	EventPlayerLeft    EventType = "player_left"
	EventKicked        EventType = "kicked"
	EventWaiting       EventType = "waiting"
	EventWaitingList   EventType = "waiting_list"
)

// String returns the string representation of the event type.
func (et EventType) String() string {
	return string(et)
}

// Event is anything a room reports to its sink.
type Event interface {
	EventType() EventType
}

// Sink receives room events in emission order. The room calls it while
// holding its own lock, so implementations must only enqueue: calling back
// into the room deadlocks.
type Sink interface {
	RoomEvent(roomID string, ev Event)
}

// StateEvent carries a full state snapshot for broadcast.
type StateEvent struct {
	Snapshot Snapshot
}

func (StateEvent) EventType() EventType { return EventState }

// JoinedEvent privately acknowledges an admission, seated or queued. It is
// emitted before any broadcast the admission triggers.
type JoinedEvent struct {
	UserID   string
	Username string
	Seated   bool
	IsHost   bool
}

func (JoinedEvent) EventType() EventType { return EventJoined }

// GameStartedEvent announces a new game.
type GameStartedEvent struct {
	Message string
}

func (GameStartedEvent) EventType() EventType { return EventGameStarted }

// RoundStartedEvent announces a new round and who opens it.
type RoundStartedEvent struct {
	Number    int
	CurrentID string
}

func (RoundStartedEvent) EventType() EventType { return EventRoundStarted }

// CardsDealtEvent privately delivers a player's own hand for the round.
type CardsDealtEvent struct {
	UserID string
	Cards  []deck.Card
}

func (CardsDealtEvent) EventType() EventType { return EventCardsDealt }

// ShowCardsEvent tells clients to flip every hand face up before the bluff
// outcome arrives.
type ShowCardsEvent struct{}

func (ShowCardsEvent) EventType() EventType { return EventShowCards }

// BluffResolvedEvent reports a challenged call: who lost and what every
// active player was holding, keyed by user ID.
type BluffResolvedEvent struct {
	Message       string
	LoserID       string
	LoserUsername string
	Revealed      map[string][]deck.Card
}

func (BluffResolvedEvent) EventType() EventType { return EventBluffResolved }

// GameEndedEvent announces the last player standing.
type GameEndedEvent struct {
	WinnerID       string
	WinnerUsername string
}

func (GameEndedEvent) EventType() EventType { return EventGameEnded }

// GameRestartedEvent announces a host-initiated reset to the waiting phase.
type GameRestartedEvent struct {
	Message string
}

func (GameRestartedEvent) EventType() EventType { return EventGameRestarted }

// HostChangedEvent announces the replacement host after the old one left.
type HostChangedEvent struct {
	HostID       string
	HostUsername string
}

func (HostChangedEvent) EventType() EventType { return EventHostChanged }

// PlayerLeftEvent announces a departure, voluntary or kicked.
type PlayerLeftEvent struct {
	UserID   string
	Username string
}

func (PlayerLeftEvent) EventType() EventType { return EventPlayerLeft }

// KickedEvent privately tells a player the host removed them. The gateway
// closes their connection after delivering it.
type KickedEvent struct {
	UserID  string
	Message string
}

func (KickedEvent) EventType() EventType { return EventKicked }

// WaitingEvent privately tells a joiner they are parked on the waiting list.
type WaitingEvent struct {
	UserID  string
	Message string
}

func (WaitingEvent) EventType() EventType { return EventWaiting }

// WaitingListEvent privately shows the host who is queued for a seat.
type WaitingListEvent struct {
	HostID    string
	Usernames []string
}

func (WaitingListEvent) EventType() EventType { return EventWaitingList }
