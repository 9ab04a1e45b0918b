package hand

import "github.com/bluffdeck/bluffdeck/internal/deck"

// Holds reports whether the pooled cards contain the declared combination.
// The pool is every active player's dealt cards; a bluff call resolves by
// checking the round's current declaration against it.
func Holds(d Decl, cards []deck.Card) bool {
	switch d.Category {
	case HighCard:
		return countRank(cards, d.Rank) >= 1
	case Pair:
		return countRank(cards, d.Rank) >= 2
	case TwoPairs:
		return countRank(cards, d.HighPair) >= 2 && countRank(cards, d.LowPair) >= 2
	case ThreeOfAKind:
		return countRank(cards, d.Rank) >= 3
	case Straight:
		// Five consecutive ranks, suits free.
		for r := d.FromRank; r < d.FromRank+5; r++ {
			if countRank(cards, r) == 0 {
				return false
			}
		}
		return true
	case Flush:
		for _, r := range d.FlushRanks {
			if !hasCard(cards, deck.Card{Suit: d.Suit, Rank: r}) {
				return false
			}
		}
		return true
	case FullHouse:
		return countRank(cards, d.TripleRank) >= 3 && countRank(cards, d.PairRank) >= 2
	case FourOfAKind:
		return countRank(cards, d.Rank) >= 4
	case StraightFlush:
		return hasSuitedRun(cards, d.Suit, d.FromRank)
	case RoyalFlush:
		return hasSuitedRun(cards, d.Suit, deck.Ten)
	}
	return false
}

func countRank(cards []deck.Card, r deck.Rank) int {
	n := 0
	for _, c := range cards {
		if c.Rank == r {
			n++
		}
	}
	return n
}

func hasCard(cards []deck.Card, want deck.Card) bool {
	for _, c := range cards {
		if c == want {
			return true
		}
	}
	return false
}

func hasSuitedRun(cards []deck.Card, suit deck.Suit, from deck.Rank) bool {
	for r := from; r < from+5; r++ {
		if !hasCard(cards, deck.Card{Suit: suit, Rank: r}) {
			return false
		}
	}
	return true
}
