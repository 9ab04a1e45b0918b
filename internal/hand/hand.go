// Package hand models declared poker combinations: the declarations players
// shout during a round, how they order by strength, and whether the cards on
// the table actually contain them. Declarations are claims about the pooled
// cards of every active player, not hands held by one player.
package hand

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bluffdeck/bluffdeck/internal/deck"
)

// Category identifies the combination a declaration claims. Values ascend in
// strength, so categories order by ordinal alone.
type Category int

const (
	HighCard Category = iota + 1
	Pair
	TwoPairs
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns the grammar stem for the category.
func (c Category) String() string {
	switch c {
	case HighCard:
		return "high card"
	case Pair:
		return "pair"
	case TwoPairs:
		return "two pairs"
	case ThreeOfAKind:
		return "three of a kind"
	case Straight:
		return "straight"
	case Flush:
		return "flush"
	case FullHouse:
		return "full house"
	case FourOfAKind:
		return "four of a kind"
	case StraightFlush:
		return "straight flush"
	case RoyalFlush:
		return "royal flush"
	default:
		return "unknown"
	}
}

// Decl is a declared combination. Only the fields relevant to the category
// are set; the struct is comparable so identical declarations are equal.
type Decl struct {
	Category Category

	// Rank carries the single defining rank of high card, pair, three of a
	// kind and four of a kind declarations.
	Rank deck.Rank

	// HighPair and LowPair define a two-pairs declaration, normalised so
	// HighPair > LowPair.
	HighPair deck.Rank
	LowPair  deck.Rank

	// TripleRank and PairRank define a full house.
	TripleRank deck.Rank
	PairRank   deck.Rank

	// FromRank is the lowest rank of a straight or straight flush run.
	FromRank deck.Rank

	// Suit qualifies flush, straight flush and royal flush declarations.
	Suit deck.Suit

	// FlushRanks are the five distinct ranks of a flush, highest first.
	FlushRanks [5]deck.Rank
}

// NewHighCard declares a single card of the given rank.
func NewHighCard(r deck.Rank) (Decl, error) {
	if !r.Valid() {
		return Decl{}, fmt.Errorf("invalid rank: %d", r)
	}
	return Decl{Category: HighCard, Rank: r}, nil
}

// NewPair declares two cards of the given rank.
func NewPair(r deck.Rank) (Decl, error) {
	if !r.Valid() {
		return Decl{}, fmt.Errorf("invalid rank: %d", r)
	}
	return Decl{Category: Pair, Rank: r}, nil
}

// NewTwoPairs declares a pair of each given rank. The ranks must differ;
// order does not matter.
func NewTwoPairs(a, b deck.Rank) (Decl, error) {
	if !a.Valid() || !b.Valid() {
		return Decl{}, fmt.Errorf("invalid rank")
	}
	if a == b {
		return Decl{}, fmt.Errorf("two pairs need two different ranks, got %s twice", a)
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	return Decl{Category: TwoPairs, HighPair: hi, LowPair: lo}, nil
}

// NewThreeOfAKind declares three cards of the given rank.
func NewThreeOfAKind(r deck.Rank) (Decl, error) {
	if !r.Valid() {
		return Decl{}, fmt.Errorf("invalid rank: %d", r)
	}
	return Decl{Category: ThreeOfAKind, Rank: r}, nil
}

// NewStraight declares five consecutive ranks starting at from. Runs may
// start anywhere from 2 (2..6) up to 10 (10..A); aces never play low.
func NewStraight(from deck.Rank) (Decl, error) {
	if from < deck.Two || from > deck.Ten {
		return Decl{}, fmt.Errorf("straight must start between 2 and 10, got %s", from)
	}
	return Decl{Category: Straight, FromRank: from}, nil
}

// NewFlush declares five distinct ranks of one suit. Ranks are stored
// highest first regardless of input order.
func NewFlush(suit deck.Suit, ranks []deck.Rank) (Decl, error) {
	if len(ranks) != 5 {
		return Decl{}, fmt.Errorf("flush needs exactly 5 ranks, got %d", len(ranks))
	}
	var rs [5]deck.Rank
	copy(rs[:], ranks)
	sort.Slice(rs[:], func(i, j int) bool { return rs[i] > rs[j] })
	for i, r := range rs {
		if !r.Valid() {
			return Decl{}, fmt.Errorf("invalid rank: %d", r)
		}
		if i > 0 && rs[i-1] == r {
			return Decl{}, fmt.Errorf("flush ranks must be distinct, got %s twice", r)
		}
	}
	return Decl{Category: Flush, Suit: suit, FlushRanks: rs}, nil
}

// NewFullHouse declares three cards of triple and two of pair. The ranks
// must differ.
func NewFullHouse(triple, pair deck.Rank) (Decl, error) {
	if !triple.Valid() || !pair.Valid() {
		return Decl{}, fmt.Errorf("invalid rank")
	}
	if triple == pair {
		return Decl{}, fmt.Errorf("full house needs two different ranks, got %s twice", triple)
	}
	return Decl{Category: FullHouse, TripleRank: triple, PairRank: pair}, nil
}

// NewFourOfAKind declares all four cards of the given rank.
func NewFourOfAKind(r deck.Rank) (Decl, error) {
	if !r.Valid() {
		return Decl{}, fmt.Errorf("invalid rank: %d", r)
	}
	return Decl{Category: FourOfAKind, Rank: r}, nil
}

// NewStraightFlush declares a five-card suited run starting at from. Runs
// top out at 9 (9..K); the 10..A run is the royal flush.
func NewStraightFlush(suit deck.Suit, from deck.Rank) (Decl, error) {
	if from < deck.Two || from > deck.Nine {
		return Decl{}, fmt.Errorf("straight flush must start between 2 and 9, got %s", from)
	}
	return Decl{Category: StraightFlush, Suit: suit, FromRank: from}, nil
}

// NewRoyalFlush declares the 10-through-ace run of one suit.
func NewRoyalFlush(suit deck.Suit) Decl {
	return Decl{Category: RoyalFlush, Suit: suit}
}

// String renders the canonical declaration text. The result parses back to
// an equal Decl.
func (d Decl) String() string {
	switch d.Category {
	case HighCard:
		return fmt.Sprintf("high card %s", rankText(d.Rank))
	case Pair:
		return fmt.Sprintf("pair of %ss", rankText(d.Rank))
	case TwoPairs:
		return fmt.Sprintf("two pairs %ss and %ss", rankText(d.HighPair), rankText(d.LowPair))
	case ThreeOfAKind:
		return fmt.Sprintf("three of a kind %ss", rankText(d.Rank))
	case Straight:
		return fmt.Sprintf("straight from %s", rankText(d.FromRank))
	case Flush:
		parts := make([]string, len(d.FlushRanks))
		for i, r := range d.FlushRanks {
			parts[i] = rankText(r)
		}
		return fmt.Sprintf("flush of %s: %s", d.Suit.Name(), strings.Join(parts, ", "))
	case FullHouse:
		return fmt.Sprintf("full house: 3 %ss and 2 %ss", rankText(d.TripleRank), rankText(d.PairRank))
	case FourOfAKind:
		return fmt.Sprintf("four of a kind %ss", rankText(d.Rank))
	case StraightFlush:
		return fmt.Sprintf("straight flush %s from %s", d.Suit.Name(), rankText(d.FromRank))
	case RoyalFlush:
		return fmt.Sprintf("royal flush %s", d.Suit.Name())
	default:
		return "invalid declaration"
	}
}

// rankText is the spoken rank word: digits stay digits, faces spell out.
func rankText(r deck.Rank) string {
	switch r {
	case deck.Jack:
		return "jack"
	case deck.Queen:
		return "queen"
	case deck.King:
		return "king"
	case deck.Ace:
		return "ace"
	default:
		return r.String()
	}
}
