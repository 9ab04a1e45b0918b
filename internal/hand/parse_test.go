package hand

import (
	"errors"
	"testing"

	"github.com/bluffdeck/bluffdeck/internal/deck"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Decl
	}{
		{"high card word", "high card ace", Decl{Category: HighCard, Rank: deck.Ace}},
		{"high card numeric plural", "high card 10s", Decl{Category: HighCard, Rank: deck.Ten}},
		{"pair", "pair of kings", Decl{Category: Pair, Rank: deck.King}},
		{"pair short rank", "pair of k", Decl{Category: Pair, Rank: deck.King}},
		{"pair mixed case", "PAIR OF Aces", Decl{Category: Pair, Rank: deck.Ace}},
		{"two pairs", "two pairs aces and 9s", Decl{Category: TwoPairs, HighPair: deck.Ace, LowPair: deck.Nine}},
		{"two pairs reversed", "two pairs 9 and a", Decl{Category: TwoPairs, HighPair: deck.Ace, LowPair: deck.Nine}},
		{"three of a kind", "three of a kind 7", Decl{Category: ThreeOfAKind, Rank: deck.Seven}},
		{"three digit form", "3 of a kind queens", Decl{Category: ThreeOfAKind, Rank: deck.Queen}},
		{"straight", "straight from 5", Decl{Category: Straight, FromRank: deck.Five}},
		{"straight to ace", "straight from 10", Decl{Category: Straight, FromRank: deck.Ten}},
		{"flush colon form", "flush of hearts: a, k, 9, 5, 2", flushDecl(deck.Hearts, deck.Ace, deck.King, deck.Nine, deck.Five, deck.Two)},
		{"flush space form", "flush spades 3 7 9 j q", flushDecl(deck.Spades, deck.Queen, deck.Jack, deck.Nine, deck.Seven, deck.Three)},
		{"flush glyph suit", "flush ♦ 2 4 6 8 10", flushDecl(deck.Diamonds, deck.Ten, deck.Eight, deck.Six, deck.Four, deck.Two)},
		{"full house", "full house: 3 queens and 2 jacks", Decl{Category: FullHouse, TripleRank: deck.Queen, PairRank: deck.Jack}},
		{"full house no colon", "full house 3 2 and 2 3", Decl{Category: FullHouse, TripleRank: deck.Two, PairRank: deck.Three}},
		{"four of a kind", "four of a kind j", Decl{Category: FourOfAKind, Rank: deck.Jack}},
		{"four digit form", "4 of a kind 10", Decl{Category: FourOfAKind, Rank: deck.Ten}},
		{"straight flush", "straight flush hearts from 9", Decl{Category: StraightFlush, Suit: deck.Hearts, FromRank: deck.Nine}},
		{"straight flush glyph", "straight flush ♣ from 2", Decl{Category: StraightFlush, Suit: deck.Clubs, FromRank: deck.Two}},
		{"royal flush", "royal flush spades", Decl{Category: RoyalFlush, Suit: deck.Spades}},
		{"royal flush singular suit", "royal flush heart", Decl{Category: RoyalFlush, Suit: deck.Hearts}},
		{"messy whitespace", "  Two   Pairs  A  and  9 ", Decl{Category: TwoPairs, HighPair: deck.Ace, LowPair: deck.Nine}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"gibberish", "threeish kings"},
		{"unknown rank", "pair of 11"},
		{"unknown suit", "royal flush cups"},
		{"missing rank", "pair of"},
		{"straight too high", "straight from jack"},
		{"straight flush into royal", "straight flush hearts from 10"},
		{"two pairs same rank", "two pairs kings and kings"},
		{"full house same rank", "full house: 3 q and 2 q"},
		{"flush four ranks", "flush of hearts: a, k, 9, 5"},
		{"flush six ranks", "flush of hearts: a, k, 9, 5, 3, 2"},
		{"flush duplicate rank", "flush of hearts: a, a, 9, 5, 2"},
		{"flush missing suit", "flush 2 3 4 5 6 7"},
		{"bare straight", "straight"},
		{"bare category", "flush"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want error", tt.input)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Errorf("Parse(%q) error type %T, want *ParseError", tt.input, err)
			}
		})
	}
}

func TestParseRoundTripsString(t *testing.T) {
	decls := sampleDecls(t)
	for _, d := range decls {
		back, err := Parse(d.String())
		if err != nil {
			t.Errorf("Parse(%q): %v", d.String(), err)
			continue
		}
		if back != d {
			t.Errorf("Parse(%q) = %+v, want %+v", d.String(), back, d)
		}
	}
}

// flushDecl builds a flush declaration for test tables, highest rank first.
func flushDecl(suit deck.Suit, ranks ...deck.Rank) Decl {
	d, err := NewFlush(suit, ranks)
	if err != nil {
		panic(err)
	}
	return d
}

// sampleDecls covers every category, several instances each.
func sampleDecls(t *testing.T) []Decl {
	t.Helper()

	must := func(d Decl, err error) Decl {
		t.Helper()
		if err != nil {
			t.Fatalf("building sample declaration: %v", err)
		}
		return d
	}

	return []Decl{
		must(NewHighCard(deck.Two)),
		must(NewHighCard(deck.Ace)),
		must(NewPair(deck.Seven)),
		must(NewPair(deck.Ace)),
		must(NewTwoPairs(deck.King, deck.Nine)),
		must(NewTwoPairs(deck.Ace, deck.Two)),
		must(NewThreeOfAKind(deck.Ten)),
		must(NewStraight(deck.Two)),
		must(NewStraight(deck.Ten)),
		flushDecl(deck.Hearts, deck.Ace, deck.King, deck.Nine, deck.Five, deck.Two),
		flushDecl(deck.Spades, deck.Nine, deck.Eight, deck.Four, deck.Three, deck.Two),
		must(NewFullHouse(deck.Queen, deck.Jack)),
		must(NewFullHouse(deck.Two, deck.Ace)),
		must(NewFourOfAKind(deck.Five)),
		must(NewStraightFlush(deck.Clubs, deck.Nine)),
		must(NewStraightFlush(deck.Diamonds, deck.Two)),
		NewRoyalFlush(deck.Spades),
		NewRoyalFlush(deck.Hearts),
	}
}
