package domain

// Phase represents the lifecycle stage of a room's game.
// The progression is monotonic: waiting -> playing -> finished. A practice
// reset rebuilds the game in place rather than stepping backwards.
type Phase string

const (
	// PhaseWaiting indicates the room is filling its seats.
	PhaseWaiting Phase = "waiting"
	// PhasePlaying indicates the game is in progress.
	PhasePlaying Phase = "playing"
	// PhaseFinished indicates the game concluded by a win or supply exhaustion.
	PhaseFinished Phase = "finished"
)

// SeatCount is the fixed number of player slots in a room.
const SeatCount = 4

// InitialHandSize is the concealed tile count dealt to every seat.
const InitialHandSize = 13

// NoWinner marks a game without a winning seat.
const NoWinner = -1

// DiscardRecord describes the single outstanding discard, if any.
// Seq increases with every discard so expired claim-window work can verify
// it still refers to the discard it was scheduled for.
type DiscardRecord struct {
	Tile Tile   `json:"tile"`
	Seat int    `json:"seat"`
	Seq  uint64 `json:"seq"`
}

// ClaimCandidate records one seat's pending opportunity to claim the
// outstanding discard. Options is populated for chow candidates only.
type ClaimCandidate struct {
	Seat    int      `json:"seat"`
	Kind    MeldKind `json:"kind"`
	Options [][]Tile `json:"options,omitempty"`
}

// Game is the authoritative state of one room's game. All mutation goes
// through the app service under the room's serialized message loop, so no
// locking happens here.
type Game struct {
	Phase  Phase
	Supply *Supply

	Hands [SeatCount][]Tile
	Melds [SeatCount][]Meld

	// DrawnTiles tracks the most recently drawn tile per seat for client
	// highlighting; cleared on the seat's next discard.
	DrawnTiles [SeatCount]Tile

	CurrentTurn int
	LastDiscard *DiscardRecord
	Candidates  []ClaimCandidate
	DiscardSeq  uint64

	Winner int
}

// NextSeat returns the seat after the given one in turn order.
func NextSeat(seat int) int {
	return (seat + 1) % SeatCount
}

// KongCount returns the number of kong melds a seat has declared.
func (g *Game) KongCount(seat int) int {
	n := 0
	for _, m := range g.Melds[seat] {
		if m.Kind == MeldKong {
			n++
		}
	}
	return n
}

// TileTotal returns the seat's whole tile count: concealed hand plus every
// declared meld tile.
func (g *Game) TileTotal(seat int) int {
	n := len(g.Hands[seat])
	for _, m := range g.Melds[seat] {
		n += len(m.Tiles)
	}
	return n
}

// BaseTotal returns the tile total a seat holds while awaiting its draw.
// Each kong locks one extra tile beyond the 13-tile base.
func (g *Game) BaseTotal(seat int) int {
	return InitialHandSize + g.KongCount(seat)
}

// AwaitingDraw reports whether the seat is at its base total.
func (g *Game) AwaitingDraw(seat int) bool {
	return g.TileTotal(seat) == g.BaseTotal(seat)
}

// AwaitingDiscard reports whether the seat holds one tile over base.
func (g *Game) AwaitingDiscard(seat int) bool {
	return g.TileTotal(seat) == g.BaseTotal(seat)+1
}

// CandidateFor returns the seat's pending claim candidate, if any.
func (g *Game) CandidateFor(seat int) (ClaimCandidate, bool) {
	for _, c := range g.Candidates {
		if c.Seat == seat {
			return c, true
		}
	}
	return ClaimCandidate{}, false
}

// HasCandidate reports whether the seat holds a pending candidate of the
// given kind. A seat can hold two at once when the discard supports both a
// pong and a chow.
func (g *Game) HasCandidate(seat int, kind MeldKind) bool {
	for _, c := range g.Candidates {
		if c.Seat == seat && c.Kind == kind {
			return true
		}
	}
	return false
}

// RemoveCandidate drops the seat's pending claim candidates.
func (g *Game) RemoveCandidate(seat int) {
	kept := g.Candidates[:0]
	for _, c := range g.Candidates {
		if c.Seat != seat {
			kept = append(kept, c)
		}
	}
	g.Candidates = kept
}

// ClearClaims drops the outstanding discard record and every pending
// candidate. Candidates never outlive the discard they refer to.
func (g *Game) ClearClaims() {
	g.LastDiscard = nil
	g.Candidates = nil
}
