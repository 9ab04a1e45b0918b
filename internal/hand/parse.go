package hand

import (
	"fmt"
	"strings"

	"github.com/bluffdeck/bluffdeck/internal/deck"
)

// ParseError describes a declaration string the parser rejected. The room
// relays the reason back to the player who typed it.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse declaration %q: %s", e.Input, e.Reason)
}

// Parse reads a player's declaration. The grammar is case-insensitive and
// whitespace-flexible; commas and colons act as separators. Accepted forms:
//
//	high card <rank>
//	pair of <rank>
//	two pairs <rank> and <rank>
//	three of a kind <rank>        (also "3 of a kind")
//	straight from <rank>
//	flush of <suit>: <r>,<r>,<r>,<r>,<r>
//	flush <suit> <r> <r> <r> <r> <r>
//	full house: 3 <rank> and 2 <rank>
//	four of a kind <rank>         (also "4 of a kind")
//	straight flush <suit> from <rank>
//	royal flush <suit>
//
// Ranks are 2..10, j/jack, q/queen, k/king, a/ace, with an optional plural
// "s". Suits are the English words (singular or plural) or the glyphs
// ♥ ♦ ♣ ♠.
func Parse(input string) (Decl, error) {
	f := tokenize(input)

	fail := func(reason string) (Decl, error) {
		return Decl{}, &ParseError{Input: input, Reason: reason}
	}
	lift := func(d Decl, err error) (Decl, error) {
		if err != nil {
			return fail(err.Error())
		}
		return d, nil
	}

	if len(f) == 0 {
		return fail("empty declaration")
	}

	switch f[0] {
	case "high":
		if len(f) == 3 && f[1] == "card" {
			r, err := parseRank(f[2])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewHighCard(r))
		}

	case "pair":
		if len(f) == 3 && f[1] == "of" {
			r, err := parseRank(f[2])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewPair(r))
		}

	case "two":
		if len(f) == 5 && f[1] == "pairs" && f[3] == "and" {
			a, err := parseRank(f[2])
			if err != nil {
				return fail(err.Error())
			}
			b, err := parseRank(f[4])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewTwoPairs(a, b))
		}

	case "three", "3":
		if len(f) == 5 && f[1] == "of" && f[2] == "a" && f[3] == "kind" {
			r, err := parseRank(f[4])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewThreeOfAKind(r))
		}

	case "four", "4":
		if len(f) == 5 && f[1] == "of" && f[2] == "a" && f[3] == "kind" {
			r, err := parseRank(f[4])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewFourOfAKind(r))
		}

	case "straight":
		if len(f) >= 2 && f[1] == "flush" {
			if len(f) != 5 || f[3] != "from" {
				return fail("straight flush reads: straight flush <suit> from <rank>")
			}
			suit, err := parseSuit(f[2])
			if err != nil {
				return fail(err.Error())
			}
			r, err := parseRank(f[4])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewStraightFlush(suit, r))
		}
		if len(f) == 3 && f[1] == "from" {
			r, err := parseRank(f[2])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewStraight(r))
		}
		return fail("straight reads: straight from <rank>")

	case "royal":
		if len(f) == 3 && f[1] == "flush" {
			suit, err := parseSuit(f[2])
			if err != nil {
				return fail(err.Error())
			}
			return NewRoyalFlush(suit), nil
		}
		return fail("royal flush reads: royal flush <suit>")

	case "flush":
		rest := f[1:]
		if len(rest) > 0 && rest[0] == "of" {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return fail("flush needs a suit")
		}
		suit, err := parseSuit(rest[0])
		if err != nil {
			return fail(err.Error())
		}
		if len(rest)-1 != 5 {
			return fail(fmt.Sprintf("flush needs exactly 5 ranks, got %d", len(rest)-1))
		}
		ranks := make([]deck.Rank, 0, 5)
		for _, tok := range rest[1:] {
			r, err := parseRank(tok)
			if err != nil {
				return fail(err.Error())
			}
			ranks = append(ranks, r)
		}
		return lift(NewFlush(suit, ranks))

	case "full":
		if len(f) == 7 && f[1] == "house" && f[2] == "3" && f[4] == "and" && f[5] == "2" {
			triple, err := parseRank(f[3])
			if err != nil {
				return fail(err.Error())
			}
			pair, err := parseRank(f[6])
			if err != nil {
				return fail(err.Error())
			}
			return lift(NewFullHouse(triple, pair))
		}
		return fail("full house reads: full house: 3 <rank> and 2 <rank>")
	}

	return fail("unrecognised declaration")
}

// tokenize lowercases the input and splits it on whitespace, treating commas
// and colons as separators.
func tokenize(input string) []string {
	s := strings.ToLower(input)
	s = strings.NewReplacer(",", " ", ":", " ").Replace(s)
	return strings.Fields(s)
}

// parseRank resolves a rank token, tolerating a plural trailing "s"
// ("kings", "aces", "10s").
func parseRank(tok string) (deck.Rank, error) {
	if r, ok := rankWord(tok); ok {
		return r, nil
	}
	if trimmed := strings.TrimRight(tok, "s"); trimmed != tok {
		if r, ok := rankWord(trimmed); ok {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown rank: %q", tok)
}

func rankWord(tok string) (deck.Rank, bool) {
	switch tok {
	case "2":
		return deck.Two, true
	case "3":
		return deck.Three, true
	case "4":
		return deck.Four, true
	case "5":
		return deck.Five, true
	case "6":
		return deck.Six, true
	case "7":
		return deck.Seven, true
	case "8":
		return deck.Eight, true
	case "9":
		return deck.Nine, true
	case "10":
		return deck.Ten, true
	case "j", "jack":
		return deck.Jack, true
	case "q", "queen":
		return deck.Queen, true
	case "k", "king":
		return deck.King, true
	case "a", "ace":
		return deck.Ace, true
	default:
		return 0, false
	}
}

func parseSuit(tok string) (deck.Suit, error) {
	switch tok {
	case "hearts", "heart", "♥":
		return deck.Hearts, nil
	case "diamonds", "diamond", "♦":
		return deck.Diamonds, nil
	case "clubs", "club", "♣":
		return deck.Clubs, nil
	case "spades", "spade", "♠":
		return deck.Spades, nil
	default:
		return 0, fmt.Errorf("unknown suit: %q", tok)
	}
}
