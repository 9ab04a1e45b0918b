// Package room implements the authoritative state machine for one table: who
// is seated, whose turn it is, the current declaration, and the win/loss
// bookkeeping across rounds. A Room is a single-writer actor guarded by a
// mutex; every transition validates before it mutates and reports what
// happened through an ordered event sink.
package room

import (
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bluffdeck/bluffdeck/internal/deck"
	"github.com/bluffdeck/bluffdeck/internal/hand"
)

// Phase is a room's lifecycle stage.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
	PhaseEnded
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Player is one occupant, seated or waiting.
type Player struct {
	UserID     string
	Username   string
	Cards      []deck.Card
	Losses     int
	Eliminated bool
}

// Call is the round's current declaration and who made it.
type Call struct {
	PlayerID string
	Decl     hand.Decl
}

// Recorder receives finished-game results. The registry implements it.
type Recorder interface {
	RecordWin(username string)
	RecordGame(username string)
}

// Config bounds a room. The server validates that capacity times the loss
// limit never outruns a 52-card deck.
type Config struct {
	Capacity  int // seats at the table
	LossLimit int // losses that eliminate a player
}

// Room is one table. All exported methods are safe for concurrent use.
type Room struct {
	mu sync.Mutex

	id       string
	cfg      Config
	rng      *rand.Rand
	recorder Recorder
	sink     Sink
	logger   *log.Logger

	phase     Phase
	players   []*Player // seat order = join order
	waiting   []*Player // FIFO waiting list
	hostID    string
	roundNum  int
	starterID string // who opened the current round
	currentID string // whose turn it is
	current   *Call
	prevCards map[string][]deck.Card // last round's reveal, by user ID
	winnerID  string
}

// New creates an empty room. Events flow to sink in the order transitions
// produce them; results of finished games flow to recorder.
func New(id string, cfg Config, rng *rand.Rand, recorder Recorder, sink Sink, logger *log.Logger) *Room {
	return &Room{
		id:       id,
		cfg:      cfg,
		rng:      rng,
		recorder: recorder,
		sink:     sink,
		logger:   logger,
	}
}

// ID returns the room identifier.
func (r *Room) ID() string {
	return r.id
}

// Join seats the player if the table has space and no game is running,
// otherwise parks them on the waiting list. The first player seated becomes
// host.
func (r *Room) Join(userID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.findLocked(userID) != nil {
		return fmt.Errorf("you are already in this room")
	}

	p := &Player{UserID: userID, Username: username}

	switch {
	case r.phase == PhaseWaiting && len(r.players) < r.cfg.Capacity:
		r.players = append(r.players, p)
		if r.hostID == "" {
			r.hostID = userID
		}
		r.emit(JoinedEvent{UserID: userID, Username: username, Seated: true, IsHost: r.hostID == userID})
		r.logger.Info("player seated", "room", r.id, "username", username)
	case r.phase == PhasePlaying:
		r.waiting = append(r.waiting, p)
		r.emit(JoinedEvent{UserID: userID, Username: username})
		r.emit(WaitingEvent{UserID: userID, Message: "a game is in progress; you will be seated when it ends"})
		r.emitWaitingListLocked()
		r.logger.Info("player queued", "room", r.id, "username", username)
	default:
		r.waiting = append(r.waiting, p)
		r.emit(JoinedEvent{UserID: userID, Username: username})
		r.emit(WaitingEvent{UserID: userID, Message: "the table is full; you are in the waiting list"})
		r.emitWaitingListLocked()
		r.logger.Info("player queued", "room", r.id, "username", username)
	}

	r.emitStateLocked()
	return nil
}

// Leave removes the player wherever they are. Safe to call for users the
// room has never seen, so disconnect paths need no bookkeeping.
func (r *Room) Leave(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departLocked(userID)
}

// Kick removes the named player on the host's behalf. The target receives a
// kicked notice before the usual departure handling runs.
func (r *Room) Kick(hostID, targetUsername string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if hostID != r.hostID {
		return fmt.Errorf("only the host can kick players")
	}
	target := r.findByUsernameLocked(targetUsername)
	if target == nil {
		return fmt.Errorf("no player named %q in this room", targetUsername)
	}
	if target.UserID == hostID {
		return fmt.Errorf("the host cannot kick themselves")
	}

	r.emit(KickedEvent{UserID: target.UserID, Message: "you were kicked from the room by the host"})
	r.departLocked(target.UserID)
	return nil
}

// Empty reports whether nobody is seated or waiting.
func (r *Room) Empty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0 && len(r.waiting) == 0
}

// departLocked is the shared exit path for leaves, kicks and disconnects.
// An outstanding call by the departing player survives so it can still be
// challenged; nobody takes the loss when it is.
func (r *Room) departLocked(userID string) {
	if i := r.waitingIndexLocked(userID); i >= 0 {
		p := r.waiting[i]
		r.waiting = append(r.waiting[:i], r.waiting[i+1:]...)
		r.emit(PlayerLeftEvent{UserID: p.UserID, Username: p.Username})
		r.emitWaitingListLocked()
		r.emitStateLocked()
		r.logger.Info("waiting player left", "room", r.id, "username", p.Username)
		return
	}

	i := r.seatIndexLocked(userID)
	if i < 0 {
		return
	}
	p := r.players[i]

	// Pick the cursor repair target before the seat disappears.
	var next string
	if r.phase == PhasePlaying && r.currentID == userID {
		next = r.nextActiveAfterLocked(userID)
	}

	// Keep "clockwise of the starter" anchored at the vacated seat, so the
	// next round still opens with the player who sat after the departed.
	if r.phase == PhasePlaying && r.starterID == userID && len(r.players) > 1 {
		r.starterID = r.players[(i-1+len(r.players))%len(r.players)].UserID
	}

	r.players = append(r.players[:i], r.players[i+1:]...)
	r.emit(PlayerLeftEvent{UserID: p.UserID, Username: p.Username})
	r.logger.Info("player left", "room", r.id, "username", p.Username)

	if r.hostID == userID {
		r.reassignHostLocked()
	}

	if r.phase == PhasePlaying && !p.Eliminated {
		if r.currentID == userID {
			r.currentID = next
		}
		if len(r.activePlayersLocked()) <= 1 {
			r.endGameLocked()
			return
		}
	}

	// A seat freed between games goes straight to the queue; mid-game the
	// queue waits for the next game end.
	if r.phase == PhaseWaiting && r.admitWaitingLocked() {
		r.emitWaitingListLocked()
	}

	r.emitStateLocked()
}

// reassignHostLocked hands the room to a random remaining occupant. The
// host must be able to run the game, so players still in the running come
// first, then any seated player, then the waiting list.
func (r *Room) reassignHostLocked() {
	pool := r.activePlayersLocked()
	if len(pool) == 0 {
		pool = r.players
	}
	if len(pool) == 0 {
		pool = r.waiting
	}
	if len(pool) == 0 {
		r.hostID = ""
		return
	}
	h := pool[r.rng.IntN(len(pool))]
	r.hostID = h.UserID
	r.emit(HostChangedEvent{HostID: h.UserID, HostUsername: h.Username})
	r.emitWaitingListLocked()
	r.logger.Info("host reassigned", "room", r.id, "username", h.Username)
}

func (r *Room) findLocked(userID string) *Player {
	if i := r.seatIndexLocked(userID); i >= 0 {
		return r.players[i]
	}
	if i := r.waitingIndexLocked(userID); i >= 0 {
		return r.waiting[i]
	}
	return nil
}

func (r *Room) findByUsernameLocked(username string) *Player {
	for _, p := range r.players {
		if p.Username == username {
			return p
		}
	}
	for _, p := range r.waiting {
		if p.Username == username {
			return p
		}
	}
	return nil
}

func (r *Room) seatIndexLocked(userID string) int {
	for i, p := range r.players {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

func (r *Room) waitingIndexLocked(userID string) int {
	for i, p := range r.waiting {
		if p.UserID == userID {
			return i
		}
	}
	return -1
}

// activePlayersLocked returns seated players still in the running, in seat
// order.
func (r *Room) activePlayersLocked() []*Player {
	active := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if !p.Eliminated {
			active = append(active, p)
		}
	}
	return active
}

// nextActiveAfterLocked walks clockwise from userID's seat to the next
// non-eliminated player.
func (r *Room) nextActiveAfterLocked(userID string) string {
	active := r.activePlayersLocked()
	if len(active) == 0 {
		return ""
	}
	idx := 0
	for i, p := range active {
		if p.UserID == userID {
			idx = i
			break
		}
	}
	return active[(idx+1)%len(active)].UserID
}

func (r *Room) emit(ev Event) {
	if r.sink != nil {
		r.sink.RoomEvent(r.id, ev)
	}
}

func (r *Room) emitStateLocked() {
	r.emit(StateEvent{Snapshot: r.snapshotLocked()})
}

func (r *Room) emitWaitingListLocked() {
	if r.hostID == "" {
		return
	}
	names := make([]string, len(r.waiting))
	for i, p := range r.waiting {
		names[i] = p.Username
	}
	r.emit(WaitingListEvent{HostID: r.hostID, Usernames: names})
}
