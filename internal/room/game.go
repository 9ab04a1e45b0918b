package room

import (
	"fmt"

	"github.com/bluffdeck/bluffdeck/internal/deck"
	"github.com/bluffdeck/bluffdeck/internal/hand"
)

// Start begins a game: host only, at least two seated players, no game
// already running. Loss counts reset and the first round's opener is drawn
// at random.
func (r *Room) Start(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseWaiting {
		return fmt.Errorf("a game is already in progress")
	}
	if userID != r.hostID {
		return fmt.Errorf("only the host can start the game")
	}
	if len(r.players) < 2 {
		return fmt.Errorf("need at least 2 players to start")
	}

	for _, p := range r.players {
		p.Losses = 0
		p.Eliminated = false
		p.Cards = nil
	}
	r.phase = PhasePlaying
	r.roundNum = 0
	r.winnerID = ""
	r.prevCards = nil

	starter := r.players[r.rng.IntN(len(r.players))]
	r.emit(GameStartedEvent{Message: "Game started!"})
	r.logger.Info("game started", "room", r.id, "players", len(r.players), "opener", starter.Username)
	return r.beginRoundLocked(starter.UserID)
}

// Restart aborts whatever is happening and returns the room to the waiting
// phase with clean slates: host only. Queued players are seated while space
// lasts. No results are recorded for an abandoned game.
func (r *Room) Restart(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if userID != r.hostID {
		return fmt.Errorf("only the host can restart the game")
	}

	r.phase = PhaseWaiting
	r.roundNum = 0
	r.current = nil
	r.currentID = ""
	r.starterID = ""
	r.winnerID = ""
	r.prevCards = nil
	for _, p := range r.players {
		p.Cards = nil
		p.Losses = 0
		p.Eliminated = false
	}
	r.admitWaitingLocked()

	r.emit(GameRestartedEvent{Message: "the host restarted the game"})
	r.emitWaitingListLocked()
	r.emitStateLocked()
	r.logger.Info("game restarted", "room", r.id)
	return nil
}

// CallHand records the at-turn player's declaration. Every call must
// strictly beat the previous one; after a royal flush only a challenge is
// left. The turn passes clockwise on success.
func (r *Room) CallHand(userID, spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhasePlaying {
		return fmt.Errorf("no game in progress")
	}
	p := r.seatedActiveLocked(userID)
	if p == nil {
		return fmt.Errorf("you are not in this round")
	}
	if r.currentID != userID {
		return fmt.Errorf("not your turn")
	}

	decl, err := hand.Parse(spec)
	if err != nil {
		return err
	}

	if r.current != nil {
		if r.current.Decl.Category == hand.RoyalFlush {
			return fmt.Errorf("nothing beats a royal flush: call the bluff instead")
		}
		if !hand.Beats(decl, r.current.Decl) {
			return fmt.Errorf("your call must beat the current call: %s", r.current.Decl)
		}
	}

	r.current = &Call{PlayerID: userID, Decl: decl}
	r.currentID = r.nextActiveAfterLocked(userID)
	r.logger.Info("hand called", "room", r.id, "username", p.Username, "call", decl.String())
	r.emitStateLocked()
	return nil
}

// CallBluff challenges the current call. Every active hand is revealed and
// pooled: if the declared combination is there, the challenger loses the
// round, otherwise the caller does. The loser collects a loss (eliminated at
// the limit) and the next round starts, unless one player is left standing.
func (r *Room) CallBluff(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhasePlaying {
		return fmt.Errorf("no game in progress")
	}
	accuser := r.seatedActiveLocked(userID)
	if accuser == nil {
		return fmt.Errorf("you are not in this round")
	}
	if r.currentID != userID {
		return fmt.Errorf("not your turn")
	}
	if r.current == nil {
		return fmt.Errorf("no call to challenge yet")
	}

	active := r.activePlayersLocked()
	revealed := make(map[string][]deck.Card, len(active))
	pool := make([]deck.Card, 0, deck.Size)
	for _, p := range active {
		cards := make([]deck.Card, len(p.Cards))
		copy(cards, p.Cards)
		revealed[p.UserID] = cards
		pool = append(pool, p.Cards...)
	}
	r.prevCards = revealed

	challenged := r.current
	r.current = nil
	held := hand.Holds(challenged.Decl, pool)

	var loser *Player
	var msg string
	if held {
		loser = accuser
		msg = fmt.Sprintf("the table holds %s: %s loses the round", challenged.Decl, accuser.Username)
	} else if loser = r.seatedLocked(challenged.PlayerID); loser != nil {
		msg = fmt.Sprintf("the table does not hold %s: %s loses the round", challenged.Decl, loser.Username)
	} else {
		// The caller left after calling; their call stood but nobody owns it.
		msg = fmt.Sprintf("the table does not hold %s, but the caller already left: nobody takes the loss", challenged.Decl)
	}

	loserID, loserName := "", ""
	if loser != nil {
		loserID, loserName = loser.UserID, loser.Username
	}

	r.emit(ShowCardsEvent{})
	r.emit(BluffResolvedEvent{Message: msg, LoserID: loserID, LoserUsername: loserName, Revealed: revealed})
	r.logger.Info("bluff resolved", "room", r.id,
		"challenger", accuser.Username, "held", held, "loser", loserName)

	if loser != nil {
		loser.Losses++
		if loser.Losses >= r.cfg.LossLimit {
			loser.Eliminated = true
			loser.Cards = nil
			r.logger.Info("player eliminated", "room", r.id, "username", loser.Username)
		}
	}

	if len(r.activePlayersLocked()) <= 1 {
		r.endGameLocked()
		return nil
	}
	return r.beginRoundLocked(r.nextStarterLocked())
}

// beginRoundLocked deals the next round: a fresh shuffled deck, losses+1
// cards per active player, the given opener on the button. All hands are
// dealt before any state changes so a failed deal leaves the round untouched.
func (r *Room) beginRoundLocked(starterID string) error {
	active := r.activePlayersLocked()

	d := deck.New(r.rng)
	hands := make([][]deck.Card, len(active))
	for i, p := range active {
		h, err := d.Deal(p.Losses + 1)
		if err != nil {
			return fmt.Errorf("dealing round %d: %w", r.roundNum+1, err)
		}
		hands[i] = h
	}

	r.roundNum++
	r.current = nil
	r.starterID = starterID
	r.currentID = starterID
	for i, p := range active {
		p.Cards = hands[i]
	}

	// Own cards reach each player before the state update that references
	// the new round.
	r.emit(RoundStartedEvent{Number: r.roundNum, CurrentID: starterID})
	for _, p := range active {
		r.emit(CardsDealtEvent{UserID: p.UserID, Cards: p.Cards})
	}
	r.emitStateLocked()
	return nil
}

// nextStarterLocked picks the opener for the next round: the first
// non-eliminated seat clockwise of the one that opened this round. A
// starter no longer seated resolves to -1, which starts the walk at
// seat 0 (their seat anchor was repaired on departure).
func (r *Room) nextStarterLocked() string {
	n := len(r.players)
	if n == 0 {
		return ""
	}
	idx := r.seatIndexLocked(r.starterID)
	for off := 1; off <= n; off++ {
		if p := r.players[(idx+off+n)%n]; !p.Eliminated {
			return p.UserID
		}
	}
	return ""
}

// endGameLocked records the result, announces the winner and rolls the room
// straight back to the waiting phase with clean slates, seating queued
// players. Only the winner marker survives into the lobby.
func (r *Room) endGameLocked() {
	r.phase = PhaseEnded

	var winner *Player
	if active := r.activePlayersLocked(); len(active) == 1 {
		winner = active[0]
	}

	winnerID, winnerName := "", ""
	if winner != nil {
		winnerID, winnerName = winner.UserID, winner.Username
		r.winnerID = winner.UserID
		if r.recorder != nil {
			r.recorder.RecordWin(winner.Username)
		}
	}
	if r.recorder != nil {
		for _, p := range r.players {
			r.recorder.RecordGame(p.Username)
		}
	}

	r.emit(GameEndedEvent{WinnerID: winnerID, WinnerUsername: winnerName})
	r.logger.Info("game ended", "room", r.id, "winner", winnerName)

	r.phase = PhaseWaiting
	r.roundNum = 0
	r.current = nil
	r.currentID = ""
	r.starterID = ""
	for _, p := range r.players {
		p.Cards = nil
		p.Losses = 0
		p.Eliminated = false
	}
	r.admitWaitingLocked()
	r.emitWaitingListLocked()
	r.emitStateLocked()
}

// admitWaitingLocked seats queued players in arrival order while seats last.
// It reports whether anyone was seated.
func (r *Room) admitWaitingLocked() bool {
	seated := false
	for len(r.players) < r.cfg.Capacity && len(r.waiting) > 0 {
		p := r.waiting[0]
		r.waiting = r.waiting[1:]
		p.Cards = nil
		p.Losses = 0
		p.Eliminated = false
		r.players = append(r.players, p)
		if r.hostID == "" || r.seatIndexLocked(r.hostID) < 0 {
			r.hostID = p.UserID
		}
		seated = true
		r.logger.Info("waiting player seated", "room", r.id, "username", p.Username)
	}
	return seated
}

// seatedLocked finds a seated player by ID, eliminated or not.
func (r *Room) seatedLocked(userID string) *Player {
	if i := r.seatIndexLocked(userID); i >= 0 {
		return r.players[i]
	}
	return nil
}

// seatedActiveLocked finds a seated, non-eliminated player by ID.
func (r *Room) seatedActiveLocked(userID string) *Player {
	p := r.seatedLocked(userID)
	if p == nil || p.Eliminated {
		return nil
	}
	return p
}
