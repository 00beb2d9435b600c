package domain

// CheckWin decides whether the hand plus its declared melds form a complete
// winning shape: 4 melds and exactly 1 pair. Declared melds are fixed; only
// the concealed remainder is searched. The result is a plain reachability
// answer, no decomposition or score is produced.
func CheckWin(hand []Tile, declared []Meld) bool {
	if len(declared) > 4 {
		return false
	}
	for _, m := range declared {
		if !IsValidMeld(m.Tiles) {
			return false
		}
	}

	meldsNeeded := 4 - len(declared)
	// A kong holds a fourth bonus tile, so the size gate counts each declared
	// meld as three tiles: the concealed remainder must cover the missing
	// melds plus the pair exactly.
	if len(hand) != meldsNeeded*3+2 {
		return false
	}

	if meldsNeeded == 0 {
		return IsPair(hand)
	}

	counts := make(map[Tile]int, len(hand))
	for _, t := range hand {
		counts[t]++
	}
	return searchPartition(counts, meldsNeeded, false)
}

// searchPartition tries to exhaust counts with meldsNeeded melds and, unless
// already taken, one pair. It anchors every step at the lowest remaining kind
// in canonical order, which keeps the enumeration complete without repeats:
// any meld using that kind must be a pong, a kong, a chow starting at it, or
// the pair.
func searchPartition(counts map[Tile]int, meldsNeeded int, pairTaken bool) bool {
	anchor, ok := lowestRemaining(counts)
	if !ok {
		return meldsNeeded == 0 && pairTaken
	}
	if meldsNeeded == 0 && pairTaken {
		return false
	}

	n := counts[anchor]

	if n >= 3 && meldsNeeded > 0 {
		counts[anchor] -= 3
		if searchPartition(counts, meldsNeeded-1, pairTaken) {
			counts[anchor] += 3
			return true
		}
		counts[anchor] += 3
	}

	if n >= 4 && meldsNeeded > 0 {
		counts[anchor] -= 4
		if searchPartition(counts, meldsNeeded-1, pairTaken) {
			counts[anchor] += 4
			return true
		}
		counts[anchor] += 4
	}

	if n >= 2 && !pairTaken {
		counts[anchor] -= 2
		if searchPartition(counts, meldsNeeded, true) {
			counts[anchor] += 2
			return true
		}
		counts[anchor] += 2
	}

	if meldsNeeded > 0 {
		if suit, rank, numbered := anchor.SuitRank(); numbered && rank <= 7 {
			second, third := MakeTile(suit, rank+1), MakeTile(suit, rank+2)
			if counts[second] > 0 && counts[third] > 0 {
				counts[anchor]--
				counts[second]--
				counts[third]--
				if searchPartition(counts, meldsNeeded-1, pairTaken) {
					counts[anchor]++
					counts[second]++
					counts[third]++
					return true
				}
				counts[anchor]++
				counts[second]++
				counts[third]++
			}
		}
	}

	return false
}

func lowestRemaining(counts map[Tile]int) (Tile, bool) {
	best := Tile("")
	found := false
	for t, n := range counts {
		if n <= 0 {
			continue
		}
		if !found || tileOrder[t] < tileOrder[best] {
			best = t
			found = true
		}
	}
	return best, found
}
