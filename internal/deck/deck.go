package deck

import (
	"fmt"
	rand "math/rand/v2"
)

// Size is the number of cards in a full deck.
const Size = 52

// Deck is a shuffled pile of cards that deals from the top. The RNG is
// injected so games can be replayed from a seed.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New returns a freshly shuffled 52-card deck drawing from rng.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	for _, suit := range Suits() {
		for rank := Two; rank <= Ace; rank++ {
			d.cards = append(d.cards, Card{Suit: suit, Rank: rank})
		}
	}
	d.shuffle()
	return d
}

func (d *Deck) shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Deal removes and returns the top n cards. Hands dealt from one deck are
// pairwise disjoint because cards only ever leave the pile.
func (d *Deck) Deal(n int) ([]Card, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot deal %d cards", n)
	}
	if n > len(d.cards) {
		return nil, fmt.Errorf("cannot deal %d cards: %d remain", n, len(d.cards))
	}
	out := make([]Card, n)
	copy(out, d.cards[:n])
	d.cards = d.cards[n:]
	return out, nil
}

// Remaining reports how many cards are left to deal.
func (d *Deck) Remaining() int {
	return len(d.cards)
}
