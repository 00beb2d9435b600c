package domain

import "sort"

// MeldKind identifies a declared meld shape.
type MeldKind string

const (
	MeldPong MeldKind = "pong" // 3 identical tiles
	MeldKong MeldKind = "kong" // 4 identical tiles
	MeldChow MeldKind = "chow" // 3 consecutive tiles of one numbered suit
)

// Meld is a declared tile set owned by one seat. Immutable after creation;
// in particular a declared pong is never upgraded to a kong.
type Meld struct {
	Kind  MeldKind `json:"kind"`
	Tiles []Tile   `json:"tiles"`
}

// IsPair reports whether tiles are exactly two identical tiles.
func IsPair(tiles []Tile) bool {
	return len(tiles) == 2 && tiles[0] == tiles[1]
}

// IsPong reports whether tiles are exactly three identical tiles.
func IsPong(tiles []Tile) bool {
	return len(tiles) == 3 && tiles[0] == tiles[1] && tiles[1] == tiles[2]
}

// IsKong reports whether tiles are exactly four identical tiles.
func IsKong(tiles []Tile) bool {
	return len(tiles) == 4 && tiles[0] == tiles[1] && tiles[1] == tiles[2] && tiles[2] == tiles[3]
}

// IsChow reports whether tiles are three consecutive ranks of one numbered
// suit, in any order.
func IsChow(tiles []Tile) bool {
	if len(tiles) != 3 {
		return false
	}
	suit0, _, ok := tiles[0].SuitRank()
	if !ok {
		return false
	}
	ranks := make([]int, 3)
	for i, t := range tiles {
		suit, rank, ok := t.SuitRank()
		if !ok || suit != suit0 {
			return false
		}
		ranks[i] = rank
	}
	sort.Ints(ranks)
	return ranks[1] == ranks[0]+1 && ranks[2] == ranks[1]+1
}

// IsValidMeld reports whether tiles form a pong, kong or chow.
// A pair is never a meld.
func IsValidMeld(tiles []Tile) bool {
	return IsPong(tiles) || IsKong(tiles) || IsChow(tiles)
}

// CanPong reports whether the hand can pong the discarded tile
// (two copies in hand plus the discard).
func CanPong(hand []Tile, discarded Tile) bool {
	return CountTile(hand, discarded) >= 2
}

// CanKong reports whether the hand can kong the discarded tile
// (three copies in hand plus the discard).
func CanKong(hand []Tile, discarded Tile) bool {
	return CountTile(hand, discarded) >= 3
}

// ChowOptions returns every complete ascending run containing the discarded
// tile as first, middle or last member whose other two tiles are in the hand.
// Nil for non-numbered discards or when no run completes.
func ChowOptions(hand []Tile, discarded Tile) [][]Tile {
	suit, rank, ok := discarded.SuitRank()
	if !ok {
		return nil
	}

	var options [][]Tile

	// Discard opens the run: n, n+1, n+2.
	if rank <= 7 {
		second, third := MakeTile(suit, rank+1), MakeTile(suit, rank+2)
		if ContainsTile(hand, second) && ContainsTile(hand, third) {
			options = append(options, []Tile{discarded, second, third})
		}
	}
	// Discard sits in the middle: n-1, n, n+1.
	if rank >= 2 && rank <= 8 {
		first, third := MakeTile(suit, rank-1), MakeTile(suit, rank+1)
		if ContainsTile(hand, first) && ContainsTile(hand, third) {
			options = append(options, []Tile{first, discarded, third})
		}
	}
	// Discard closes the run: n-2, n-1, n.
	if rank >= 3 {
		first, second := MakeTile(suit, rank-2), MakeTile(suit, rank-1)
		if ContainsTile(hand, first) && ContainsTile(hand, second) {
			options = append(options, []Tile{first, second, discarded})
		}
	}

	return options
}
