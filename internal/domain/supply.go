package domain

import "math/rand"

// Supply owns a room's draw wall and discard pile. The wall is consumed from
// the front; the discard pile is recycled into a new wall when the wall runs
// dry. Sterile tiles burned by DrawLive are stored nowhere, so the live tile
// population shrinks monotonically over a game.
type Supply struct {
	Wall        []Tile
	DiscardPile []Tile

	rng *rand.Rand
}

// NewSupply builds a supply with a freshly shuffled full wall.
func NewSupply(rng *rand.Rand) *Supply {
	return &Supply{Wall: NewWall(rng), rng: rng}
}

// WallRemaining returns the number of tiles left in the wall.
func (s *Supply) WallRemaining() int {
	return len(s.Wall)
}

// Exhausted reports whether both the wall and the discard pile are empty.
func (s *Supply) Exhausted() bool {
	return len(s.Wall) == 0 && len(s.DiscardPile) == 0
}

// Draw pops the front tile of the wall. When the wall is empty and the
// discard pile is not, the pile is shuffled into a new wall first; reshuffled
// reports that recycling happened. ok is false only on full exhaustion.
func (s *Supply) Draw() (tile Tile, reshuffled, ok bool) {
	if len(s.Wall) == 0 {
		if len(s.DiscardPile) == 0 {
			return "", false, false
		}
		s.Wall = s.DiscardPile
		s.DiscardPile = nil
		s.rng.Shuffle(len(s.Wall), func(i, j int) { s.Wall[i], s.Wall[j] = s.Wall[j], s.Wall[i] })
		reshuffled = true
	}
	tile = s.Wall[0]
	s.Wall = s.Wall[1:]
	return tile, reshuffled, true
}

// DrawLive draws until a non-sterile tile is obtained, permanently dropping
// each sterile draw. burned lists the dropped tiles in draw order; ok is
// false when the supply ran out before a live tile appeared.
func (s *Supply) DrawLive() (tile Tile, reshuffled bool, burned []Tile, ok bool) {
	for {
		t, r, drawn := s.Draw()
		reshuffled = reshuffled || r
		if !drawn {
			return "", reshuffled, burned, false
		}
		if !t.IsSterile() {
			return t, reshuffled, burned, true
		}
		burned = append(burned, t)
	}
}

// Discard appends a tile to the discard pile.
func (s *Supply) Discard(tile Tile) {
	s.DiscardPile = append(s.DiscardPile, tile)
}

// TakeLastDiscard removes and returns the newest pile tile, used when a
// discard is claimed. ok is false on an empty pile.
func (s *Supply) TakeLastDiscard() (Tile, bool) {
	if len(s.DiscardPile) == 0 {
		return "", false
	}
	tile := s.DiscardPile[len(s.DiscardPile)-1]
	s.DiscardPile = s.DiscardPile[:len(s.DiscardPile)-1]
	return tile, true
}
