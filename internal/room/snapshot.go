package room

import "github.com/bluffdeck/bluffdeck/internal/deck"

// PlayerView is the public face of a seated player.
type PlayerView struct {
	UserID     string `json:"user_id"`
	Username   string `json:"username"`
	CardCount  int    `json:"card_count"`
	Losses     int    `json:"losses"`
	Eliminated bool   `json:"is_eliminated"`
}

// CallView is the current declaration as clients see it.
type CallView struct {
	PlayerID string `json:"player_id"`
	Hand     string `json:"hand"`
}

// Snapshot is a self-contained copy of room state, safe to hold after the
// room lock is gone. RoundCards carries every live hand keyed by user ID;
// the gateway reveals it only to viewers who cannot act on it.
type Snapshot struct {
	RoomID       string
	Phase        Phase
	Round        int
	HostID       string
	HostUsername string
	WinnerID     string
	CurrentID    string
	CurrentCall  *CallView
	Players      []PlayerView
	WaitingCount int
	RoundCards   map[string][]deck.Card
}

// Snapshot returns the room's current state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() Snapshot {
	players := make([]PlayerView, len(r.players))
	cards := make(map[string][]deck.Card)
	for i, p := range r.players {
		players[i] = PlayerView{
			UserID:     p.UserID,
			Username:   p.Username,
			CardCount:  len(p.Cards),
			Losses:     p.Losses,
			Eliminated: p.Eliminated,
		}
		if len(p.Cards) > 0 {
			cc := make([]deck.Card, len(p.Cards))
			copy(cc, p.Cards)
			cards[p.UserID] = cc
		}
	}

	var call *CallView
	if r.current != nil {
		call = &CallView{PlayerID: r.current.PlayerID, Hand: r.current.Decl.String()}
	}

	host := ""
	if h := r.findLocked(r.hostID); h != nil {
		host = h.Username
	}

	return Snapshot{
		RoomID:       r.id,
		Phase:        r.phase,
		Round:        r.roundNum,
		HostID:       r.hostID,
		HostUsername: host,
		WinnerID:     r.winnerID,
		CurrentID:    r.currentID,
		CurrentCall:  call,
		Players:      players,
		WaitingCount: len(r.waiting),
		RoundCards:   cards,
	}
}
