package room

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/bluffdeck/bluffdeck/internal/deck"
	"github.com/bluffdeck/bluffdeck/internal/randutil"
)

// sinkStub records events in emission order.
type sinkStub struct {
	events []Event
}

func (s *sinkStub) RoomEvent(_ string, ev Event) {
	s.events = append(s.events, ev)
}

func (s *sinkStub) reset() {
	s.events = nil
}

// byType returns the recorded events of one type, oldest first.
func (s *sinkStub) byType(et EventType) []Event {
	var out []Event
	for _, ev := range s.events {
		if ev.EventType() == et {
			out = append(out, ev)
		}
	}
	return out
}

type recorderStub struct {
	wins  map[string]int
	games map[string]int
}

func newRecorderStub() *recorderStub {
	return &recorderStub{wins: map[string]int{}, games: map[string]int{}}
}

func (rec *recorderStub) RecordWin(username string)  { rec.wins[username]++ }
func (rec *recorderStub) RecordGame(username string) { rec.games[username]++ }

func newTestRoom(cfg Config, seed int64) (*Room, *sinkStub, *recorderStub) {
	sink := &sinkStub{}
	rec := newRecorderStub()
	r := New("room-1", cfg, randutil.New(seed), rec, sink, log.New(io.Discard))
	return r, sink, rec
}

func defaultConfig() Config {
	return Config{Capacity: 8, LossLimit: 5}
}

func join(t *testing.T, r *Room, userID, username string) {
	t.Helper()
	if err := r.Join(userID, username); err != nil {
		t.Fatalf("join %s: %v", username, err)
	}
}

func card(rank deck.Rank, suit deck.Suit) deck.Card {
	return deck.Card{Suit: suit, Rank: rank}
}

// rigCards replaces a seated player's hand so showdown outcomes are known.
func rigCards(t *testing.T, r *Room, userID string, cards ...deck.Card) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.seatedLocked(userID)
	if p == nil {
		t.Fatalf("rigCards: %s is not seated", userID)
	}
	p.Cards = cards
}

func currentID(t *testing.T, r *Room) string {
	t.Helper()
	id := r.Snapshot().CurrentID
	if id == "" {
		t.Fatal("nobody is at turn")
	}
	return id
}

func viewOf(t *testing.T, snap Snapshot, userID string) PlayerView {
	t.Helper()
	for _, p := range snap.Players {
		if p.UserID == userID {
			return p
		}
	}
	t.Fatalf("player %s is not seated", userID)
	return PlayerView{}
}

func activeViews(r *Room) []PlayerView {
	var out []PlayerView
	for _, p := range r.Snapshot().Players {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func nextActive(t *testing.T, r *Room, after string) string {
	t.Helper()
	views := activeViews(r)
	for i, p := range views {
		if p.UserID == after {
			return views[(i+1)%len(views)].UserID
		}
	}
	t.Fatalf("player %s is not active", after)
	return ""
}

func assertHostSeated(t *testing.T, r *Room) {
	t.Helper()
	snap := r.Snapshot()
	if len(snap.Players) == 0 {
		return
	}
	for _, p := range snap.Players {
		if p.UserID == snap.HostID {
			return
		}
	}
	t.Fatalf("host %s is not among the %d seated players", snap.HostID, len(snap.Players))
}

func TestJoinSeatsPlayersAndFirstHost(t *testing.T) {
	r, sink, _ := newTestRoom(defaultConfig(), 1)

	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")

	admissions := sink.byType(EventJoined)
	if len(admissions) != 2 {
		t.Fatalf("expected 2 admission events, got %d", len(admissions))
	}
	first := admissions[0].(JoinedEvent)
	if !first.Seated || !first.IsHost {
		t.Errorf("first admission %+v, want seated host", first)
	}
	second := admissions[1].(JoinedEvent)
	if !second.Seated || second.IsHost {
		t.Errorf("second admission %+v, want seated non-host", second)
	}

	snap := r.Snapshot()
	if snap.Phase != PhaseWaiting {
		t.Errorf("expected waiting phase, got %s", snap.Phase)
	}
	if len(snap.Players) != 2 {
		t.Fatalf("expected 2 seated players, got %d", len(snap.Players))
	}
	if snap.HostID != "u1" {
		t.Errorf("expected first joiner to host, got %s", snap.HostID)
	}
	if snap.HostUsername != "alice" {
		t.Errorf("expected host username alice, got %s", snap.HostUsername)
	}
	if snap.Players[0].Username != "alice" || snap.Players[1].Username != "bob" {
		t.Errorf("expected seat order alice, bob; got %s, %s",
			snap.Players[0].Username, snap.Players[1].Username)
	}
}

func TestJoinRejectsDuplicate(t *testing.T) {
	r, _, _ := newTestRoom(defaultConfig(), 1)
	join(t, r, "u1", "alice")

	if err := r.Join("u1", "alice"); err == nil {
		t.Error("expected error joining the same room twice")
	}
}

func TestJoinQueuesWhenTableFull(t *testing.T) {
	r, sink, _ := newTestRoom(Config{Capacity: 2, LossLimit: 5}, 1)
	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")

	sink.reset()
	join(t, r, "u3", "carol")

	snap := r.Snapshot()
	if len(snap.Players) != 2 {
		t.Errorf("expected 2 seated players, got %d", len(snap.Players))
	}
	if snap.WaitingCount != 1 {
		t.Errorf("expected 1 waiting player, got %d", snap.WaitingCount)
	}

	waits := sink.byType(EventWaiting)
	if len(waits) != 1 {
		t.Fatalf("expected 1 waiting event, got %d", len(waits))
	}
	w := waits[0].(WaitingEvent)
	if w.UserID != "u3" {
		t.Errorf("waiting event addressed to %s, want u3", w.UserID)
	}
	if w.Message != "the table is full; you are in the waiting list" {
		t.Errorf("unexpected waiting message: %q", w.Message)
	}

	lists := sink.byType(EventWaitingList)
	if len(lists) != 1 {
		t.Fatalf("expected a waiting list update for the host, got %d", len(lists))
	}
	l := lists[0].(WaitingListEvent)
	if l.HostID != "u1" || len(l.Usernames) != 1 || l.Usernames[0] != "carol" {
		t.Errorf("unexpected waiting list event: %+v", l)
	}
}

func TestJoinQueuesDuringGame(t *testing.T) {
	r, sink, _ := newTestRoom(defaultConfig(), 1)
	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")
	if err := r.Start("u1"); err != nil {
		t.Fatalf("start: %v", err)
	}

	sink.reset()
	join(t, r, "u3", "carol")

	snap := r.Snapshot()
	if len(snap.Players) != 2 || snap.WaitingCount != 1 {
		t.Errorf("expected carol queued, got %d seated and %d waiting",
			len(snap.Players), snap.WaitingCount)
	}

	waits := sink.byType(EventWaiting)
	if len(waits) != 1 {
		t.Fatalf("expected 1 waiting event, got %d", len(waits))
	}
	w := waits[0].(WaitingEvent)
	if w.Message != "a game is in progress; you will be seated when it ends" {
		t.Errorf("unexpected waiting message: %q", w.Message)
	}
}

func TestLeaveReassignsHostAmongSeated(t *testing.T) {
	r, sink, _ := newTestRoom(defaultConfig(), 7)
	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")
	join(t, r, "u3", "carol")

	sink.reset()
	r.Leave("u1")

	changes := sink.byType(EventHostChanged)
	if len(changes) != 1 {
		t.Fatalf("expected 1 host change, got %d", len(changes))
	}
	hc := changes[0].(HostChangedEvent)
	if hc.HostID != "u2" && hc.HostID != "u3" {
		t.Errorf("host reassigned to %s, want one of the remaining players", hc.HostID)
	}

	snap := r.Snapshot()
	if snap.HostID != hc.HostID {
		t.Errorf("snapshot host %s does not match announced host %s", snap.HostID, hc.HostID)
	}
	assertHostSeated(t, r)
}

func TestLeaveKeepsExactlyOneSeatedHost(t *testing.T) {
	r, _, _ := newTestRoom(defaultConfig(), 3)
	ids := []string{"u1", "u2", "u3", "u4", "u5"}
	names := []string{"alice", "bob", "carol", "dave", "erin"}
	for i, id := range ids {
		join(t, r, id, names[i])
	}

	// Remove the host every time so reassignment runs on each departure.
	for len(r.Snapshot().Players) > 0 {
		r.Leave(r.Snapshot().HostID)
		assertHostSeated(t, r)
	}
	if !r.Empty() {
		t.Error("expected an empty room after everyone left")
	}
}

func TestLeaveOfUnknownUserIsNoop(t *testing.T) {
	r, sink, _ := newTestRoom(defaultConfig(), 1)
	join(t, r, "u1", "alice")

	sink.reset()
	r.Leave("ghost")

	if len(sink.events) != 0 {
		t.Errorf("expected no events for an unknown leaver, got %d", len(sink.events))
	}
	if len(r.Snapshot().Players) != 1 {
		t.Error("seated players changed after an unknown leaver")
	}
}

func TestLeaveFromWaitingListDropsQueueEntry(t *testing.T) {
	r, _, _ := newTestRoom(Config{Capacity: 2, LossLimit: 5}, 1)
	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")
	join(t, r, "u3", "carol")

	r.Leave("u3")

	snap := r.Snapshot()
	if snap.WaitingCount != 0 {
		t.Errorf("expected an empty waiting list, got %d", snap.WaitingCount)
	}
	if len(snap.Players) != 2 {
		t.Errorf("seats changed after a waiting player left, got %d", len(snap.Players))
	}
}

func TestSeatFreedBetweenGamesAdmitsQueued(t *testing.T) {
	r, sink, _ := newTestRoom(Config{Capacity: 2, LossLimit: 5}, 1)
	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")
	join(t, r, "u3", "carol")

	sink.reset()
	r.Leave("u2")

	snap := r.Snapshot()
	if len(snap.Players) != 2 || snap.WaitingCount != 0 {
		t.Fatalf("expected carol to take the freed seat, got %d seated and %d waiting",
			len(snap.Players), snap.WaitingCount)
	}
	if snap.Players[1].UserID != "u3" {
		t.Errorf("expected carol in the freed seat, got %s", snap.Players[1].Username)
	}
	assertHostSeated(t, r)

	lists := sink.byType(EventWaitingList)
	if len(lists) == 0 {
		t.Fatal("expected a waiting list update after seating carol")
	}
	last := lists[len(lists)-1].(WaitingListEvent)
	if len(last.Usernames) != 0 {
		t.Errorf("expected the queue to drain, still holds %v", last.Usernames)
	}
}

func TestKickRequiresHost(t *testing.T) {
	r, _, _ := newTestRoom(defaultConfig(), 1)
	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")

	if err := r.Kick("u2", "alice"); err == nil {
		t.Error("expected error when a non-host kicks")
	}
	if err := r.Kick("u1", "nobody"); err == nil {
		t.Error("expected error kicking an unknown player")
	}
	if err := r.Kick("u1", "alice"); err == nil {
		t.Error("expected error when the host kicks themselves")
	}
}

func TestKickRemovesTargetAfterNotice(t *testing.T) {
	r, sink, _ := newTestRoom(defaultConfig(), 1)
	join(t, r, "u1", "alice")
	join(t, r, "u2", "bob")

	sink.reset()
	if err := r.Kick("u1", "bob"); err != nil {
		t.Fatalf("kick: %v", err)
	}

	var kickedAt, leftAt = -1, -1
	for i, ev := range sink.events {
		switch ev.EventType() {
		case EventKicked:
			kickedAt = i
		case EventPlayerLeft:
			leftAt = i
		}
	}
	if kickedAt < 0 || leftAt < 0 || kickedAt > leftAt {
		t.Errorf("expected the kicked notice before the departure, got kicked=%d left=%d",
			kickedAt, leftAt)
	}

	k := sink.byType(EventKicked)[0].(KickedEvent)
	if k.UserID != "u2" {
		t.Errorf("kicked notice addressed to %s, want u2", k.UserID)
	}

	snap := r.Snapshot()
	if len(snap.Players) != 1 || snap.Players[0].UserID != "u1" {
		t.Errorf("expected only alice seated after the kick, got %+v", snap.Players)
	}
}

func TestEmptyReportsVacancy(t *testing.T) {
	r, _, _ := newTestRoom(defaultConfig(), 1)
	if !r.Empty() {
		t.Error("new room should be empty")
	}

	join(t, r, "u1", "alice")
	if r.Empty() {
		t.Error("room with a seated player should not be empty")
	}

	r.Leave("u1")
	if !r.Empty() {
		t.Error("room should be empty after the last player left")
	}
}
