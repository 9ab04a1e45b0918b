package hand

// Compare orders two declarations: positive when a outranks b, negative when
// b outranks a, zero when they tie. Categories order by ordinal; within a
// category the defining ranks break the tie.
func Compare(a, b Decl) int {
	if a.Category != b.Category {
		return int(a.Category) - int(b.Category)
	}

	switch a.Category {
	case HighCard, Pair, ThreeOfAKind, FourOfAKind:
		return int(a.Rank) - int(b.Rank)
	case TwoPairs:
		if a.HighPair != b.HighPair {
			return int(a.HighPair) - int(b.HighPair)
		}
		return int(a.LowPair) - int(b.LowPair)
	case FullHouse:
		if a.TripleRank != b.TripleRank {
			return int(a.TripleRank) - int(b.TripleRank)
		}
		return int(a.PairRank) - int(b.PairRank)
	case Straight, StraightFlush:
		return int(a.FromRank) - int(b.FromRank)
	case Flush:
		// Only the top card orders flushes. Equal top cards tie even when
		// the lower ranks differ, and suits never come into it.
		return int(a.FlushRanks[0]) - int(b.FlushRanks[0])
	case RoyalFlush:
		// All royal flushes tie, so nothing outranks one.
		return 0
	}
	return 0
}

// Beats reports whether a strictly outranks b. A round's call sequence must
// strictly increase under this relation.
func Beats(a, b Decl) bool {
	return Compare(a, b) > 0
}
