// Package deck models a standard French deck: suits, ranks, cards, and a
// shuffled deck that deals from an injected RNG. Cards marshal to the wire
// literal {"suit":"hearts","rank":2..14} used across the protocol.
package deck

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Suit represents a card suit.
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// Suits lists all four suits in deck order.
func Suits() [4]Suit {
	return [4]Suit{Hearts, Diamonds, Clubs, Spades}
}

// Name returns the lowercase word used on the wire.
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// String returns the suit glyph.
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// SuitFromName maps a wire name back to a Suit.
func SuitFromName(name string) (Suit, error) {
	switch name {
	case "hearts":
		return Hearts, nil
	case "diamonds":
		return Diamonds, nil
	case "clubs":
		return Clubs, nil
	case "spades":
		return Spades, nil
	default:
		return 0, fmt.Errorf("unknown suit: %q", name)
	}
}

// Rank represents a card rank, ace high.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Valid reports whether r is inside the 2..ace range.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// String returns the display form: numeric through 10, then J, Q, K, A.
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return strconv.Itoa(int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Card represents a playing card.
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the short display form, e.g. "A♠".
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// wireCard is the JSON shape clients see.
type wireCard struct {
	Suit string `json:"suit"`
	Rank int    `json:"rank"`
}

// MarshalJSON renders the wire literal, e.g. {"suit":"spades","rank":14}.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{Suit: c.Suit.Name(), Rank: int(c.Rank)})
}

// UnmarshalJSON parses the wire literal, rejecting unknown suits and
// out-of-range ranks.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	suit, err := SuitFromName(w.Suit)
	if err != nil {
		return err
	}
	rank := Rank(w.Rank)
	if !rank.Valid() {
		return fmt.Errorf("rank out of range: %d", w.Rank)
	}
	c.Suit, c.Rank = suit, rank
	return nil
}
