package domain

import (
	"math/rand"
	"sort"
	"strconv"
	"strings"
)

// Tile is a single mahjong tile identified by kind, e.g. "bamboo-5",
// "dragon-red" or "flower-3". Copies of the same kind are indistinguishable.
type Tile string

// Numbered suits; ranks run 1..9.
var Suits = []string{"bamboo", "character", "dot"}

// Honor kinds: 3 dragons and 4 winds, 4 copies each.
var Honors = []Tile{
	"dragon-red", "dragon-green", "dragon-white",
	"wind-east", "wind-south", "wind-west", "wind-north",
}

// Flower kinds, a single copy each.
var Flowers = []Tile{"flower-1", "flower-2", "flower-3", "flower-4"}

// WallSize is the full tile population: 3 suits x 9 ranks x 4 copies,
// 7 honors x 4 copies, 4 single flowers.
const WallSize = 140

// tileOrder gives the canonical display ordering used by SortTiles.
var tileOrder = buildTileOrder()

func buildTileOrder() map[Tile]int {
	order := make(map[Tile]int, 38)
	i := 0
	for _, suit := range Suits {
		for rank := 1; rank <= 9; rank++ {
			order[MakeTile(suit, rank)] = i
			i++
		}
	}
	for _, t := range Honors {
		order[t] = i
		i++
	}
	for _, t := range Flowers {
		order[t] = i
		i++
	}
	return order
}

// MakeTile builds a numbered-suit tile token.
func MakeTile(suit string, rank int) Tile {
	return Tile(suit + "-" + strconv.Itoa(rank))
}

// SuitRank splits a numbered-suit tile into its suit and rank.
// ok is false for honors, flowers and malformed tokens.
func (t Tile) SuitRank() (suit string, rank int, ok bool) {
	idx := strings.IndexByte(string(t), '-')
	if idx < 0 {
		return "", 0, false
	}
	suit = string(t[:idx])
	numbered := false
	for _, s := range Suits {
		if s == suit {
			numbered = true
			break
		}
	}
	if !numbered {
		return "", 0, false
	}
	rank, err := strconv.Atoi(string(t[idx+1:]))
	if err != nil || rank < 1 || rank > 9 {
		return "", 0, false
	}
	return suit, rank, true
}

// IsSterile reports whether the tile leaves play permanently the moment it is
// drawn. Honors and flowers never enter a hand, the discard pile or a
// reshuffled wall.
func (t Tile) IsSterile() bool {
	_, known := tileOrder[t]
	if !known {
		return false
	}
	_, _, numbered := t.SuitRank()
	return !numbered
}

// IsKnown reports whether the token names one of the 38 tile kinds.
func (t Tile) IsKnown() bool {
	_, ok := tileOrder[t]
	return ok
}

// NewWall returns a freshly shuffled full tile population.
func NewWall(rng *rand.Rand) []Tile {
	wall := make([]Tile, 0, WallSize)
	for _, suit := range Suits {
		for rank := 1; rank <= 9; rank++ {
			t := MakeTile(suit, rank)
			wall = append(wall, t, t, t, t)
		}
	}
	for _, t := range Honors {
		wall = append(wall, t, t, t, t)
	}
	wall = append(wall, Flowers...)

	rng.Shuffle(len(wall), func(i, j int) { wall[i], wall[j] = wall[j], wall[i] })
	return wall
}

// SortTiles orders tiles in place by canonical display order.
// Ordering is cosmetic only; duplicates stay adjacent.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool {
		return tileOrder[tiles[i]] < tileOrder[tiles[j]]
	})
}

// CountTile returns how many copies of kind the hand holds.
func CountTile(hand []Tile, kind Tile) int {
	n := 0
	for _, t := range hand {
		if t == kind {
			n++
		}
	}
	return n
}

// ContainsTile reports whether the hand holds at least one copy of kind.
func ContainsTile(hand []Tile, kind Tile) bool {
	return CountTile(hand, kind) > 0
}

// RemoveTiles removes one copy per listed tile from the hand.
// ok is false, and the hand is returned unchanged, when any tile is missing.
func RemoveTiles(hand []Tile, toRemove []Tile) ([]Tile, bool) {
	removeCounts := make(map[Tile]int, len(toRemove))
	for _, t := range toRemove {
		removeCounts[t]++
	}
	for kind, n := range removeCounts {
		if CountTile(hand, kind) < n {
			return hand, false
		}
	}

	updated := make([]Tile, 0, len(hand))
	for _, t := range hand {
		if n := removeCounts[t]; n > 0 {
			removeCounts[t] = n - 1
			continue
		}
		updated = append(updated, t)
	}
	return updated, true
}
