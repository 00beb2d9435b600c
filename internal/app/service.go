package app

import (
	"errors"
	"math/rand"
	"time"

	"mahjong/internal/domain"
)

// Service contains mahjong use-cases operating on domain state. Every
// operation validates before it mutates, so a returned error means the game
// was left untouched.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrNotPlaying       = errors.New("game is not in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAwaitingClaims   = errors.New("a discard is still open to claims")
	ErrWrongTileCount   = errors.New("hand size does not allow this action")
	ErrTileNotInHand    = errors.New("tile is not in your hand")
	ErrNoPendingDiscard = errors.New("no discard is open to claims")
	ErrNoClaim          = errors.New("no claim opportunity for this seat")
)

// NewGame deals a fresh game: 13 tiles per seat off a shuffled wall, sterile
// tiles replaced until every concealed hand is fully live. Seat 0 opens.
func (s *Service) NewGame() (*domain.Game, []Event) {
	g := &domain.Game{
		Phase:       domain.PhasePlaying,
		Supply:      domain.NewSupply(s.rng),
		CurrentTurn: 0,
		Winner:      domain.NoWinner,
	}

	for seat := 0; seat < domain.SeatCount; seat++ {
		hand := make([]domain.Tile, 0, domain.InitialHandSize)
		for len(hand) < domain.InitialHandSize {
			tile, _, _, ok := g.Supply.DrawLive()
			if !ok {
				break
			}
			hand = append(hand, tile)
		}
		domain.SortTiles(hand)
		g.Hands[seat] = hand
	}

	events := []Event{{
		Kind:    EventGameStarted,
		Payload: GameStartedPayload{FirstTurn: g.CurrentTurn},
	}}
	return g, events
}

// Draw takes one live tile from the supply into the seat's hand. Sterile
// draws are burned and reported; an empty wall is refilled from the discard
// pile first, and full exhaustion ends the game with no winner.
func (s *Service) Draw(g *domain.Game, seat int) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if seat != g.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	if g.LastDiscard != nil {
		return nil, ErrAwaitingClaims
	}
	if !g.AwaitingDraw(seat) {
		return nil, ErrWrongTileCount
	}

	var events []Event
	// A candidate without its discard record is stale; expire it before
	// the draw proceeds.
	for _, c := range g.Candidates {
		events = append(events, Event{
			Kind:       EventClaimExpired,
			Payload:    ClaimExpiredPayload{Seat: c.Seat},
			Recipients: []int{c.Seat},
		})
	}
	g.ClearClaims()

	drawn, evs, ok := s.drawOne(g, seat)
	events = append(events, evs...)
	if !ok {
		return events, nil
	}
	g.DrawnTiles[seat] = drawn
	events = append(events, Event{
		Kind:       EventTileDrawn,
		Payload:    TileDrawnPayload{Seat: seat, Tile: drawn},
		Recipients: []int{seat},
	})
	return events, nil
}

// Discard moves a tile from the seat's hand to the discard pile, tentatively
// advances the turn and opens the claim window for eligible seats.
func (s *Service) Discard(g *domain.Game, seat int, tile domain.Tile) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if seat != g.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	if !g.AwaitingDiscard(seat) {
		return nil, ErrWrongTileCount
	}
	hand, ok := domain.RemoveTiles(g.Hands[seat], []domain.Tile{tile})
	if !ok {
		return nil, ErrTileNotInHand
	}
	g.Hands[seat] = hand
	domain.SortTiles(g.Hands[seat])
	g.DrawnTiles[seat] = ""

	g.Supply.Discard(tile)
	g.DiscardSeq++
	g.LastDiscard = &domain.DiscardRecord{Tile: tile, Seat: seat, Seq: g.DiscardSeq}
	g.CurrentTurn = domain.NextSeat(seat)

	next := domain.NextSeat(seat)
	for other := 0; other < domain.SeatCount; other++ {
		if other == seat {
			continue
		}
		if domain.CanKong(g.Hands[other], tile) {
			g.Candidates = append(g.Candidates, domain.ClaimCandidate{Seat: other, Kind: domain.MeldKong})
		} else if domain.CanPong(g.Hands[other], tile) {
			g.Candidates = append(g.Candidates, domain.ClaimCandidate{Seat: other, Kind: domain.MeldPong})
		}
		if other == next {
			if opts := domain.ChowOptions(g.Hands[other], tile); len(opts) > 0 {
				g.Candidates = append(g.Candidates, domain.ClaimCandidate{Seat: other, Kind: domain.MeldChow, Options: opts})
			}
		}
	}

	events := []Event{{
		Kind:    EventTileDiscarded,
		Payload: TileDiscardedPayload{Seat: seat, Tile: tile, NextTurn: g.CurrentTurn},
	}}
	if len(g.Candidates) == 0 {
		g.ClearClaims()
		return events, nil
	}
	for _, c := range g.Candidates {
		events = append(events, Event{
			Kind:       EventClaimAvailable,
			Payload:    ClaimAvailablePayload{Seat: c.Seat, Kind: c.Kind, Tile: tile, Options: c.Options},
			Recipients: []int{c.Seat},
		})
	}
	return events, nil
}

// Claim takes the outstanding discard into a declared meld for the seat.
// tiles carries the chosen run for a chow and is ignored otherwise. A claim
// that fails re-validation counts as a pass, reported through an event
// rather than an error.
func (s *Service) Claim(g *domain.Game, seat int, kind domain.MeldKind, tiles []domain.Tile) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if g.LastDiscard == nil {
		return nil, ErrNoPendingDiscard
	}
	if !g.HasCandidate(seat, kind) {
		return nil, ErrNoClaim
	}

	discarded := g.LastDiscard.Tile
	meld, fromHand, reason := buildClaimMeld(g.Hands[seat], discarded, kind, tiles)
	if reason != "" {
		return s.rejectClaim(g, seat, kind, reason), nil
	}
	hand, ok := domain.RemoveTiles(g.Hands[seat], fromHand)
	if !ok {
		return s.rejectClaim(g, seat, kind, "claimed tiles are not in hand"), nil
	}

	g.Hands[seat] = hand
	g.Melds[seat] = append(g.Melds[seat], meld)
	g.Supply.TakeLastDiscard()
	g.ClearClaims()
	g.DrawnTiles[seat] = ""
	g.CurrentTurn = seat

	events := []Event{{
		Kind:    EventClaimSucceeded,
		Payload: ClaimSucceededPayload{Seat: seat, Kind: kind, Tile: discarded},
	}}

	// A kong locks four tiles, so the seat draws back up to one over base
	// before discarding.
	for g.Phase == domain.PhasePlaying && g.TileTotal(seat) < g.BaseTotal(seat)+1 {
		drawn, evs, ok := s.drawOne(g, seat)
		events = append(events, evs...)
		if !ok {
			return events, nil
		}
		g.DrawnTiles[seat] = drawn
		events = append(events, Event{
			Kind:       EventTileDrawn,
			Payload:    TileDrawnPayload{Seat: seat, Tile: drawn},
			Recipients: []int{seat},
		})
	}
	domain.SortTiles(g.Hands[seat])

	if domain.CheckWin(g.Hands[seat], g.Melds[seat]) {
		events = append(events, s.finishWithWinner(g, seat)...)
	}
	return events, nil
}

// Pass withdraws the seat's pending claim. When the last candidate passes
// the claim window resolves immediately.
func (s *Service) Pass(g *domain.Game, seat int) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if _, ok := g.CandidateFor(seat); !ok {
		return nil, nil
	}
	g.RemoveCandidate(seat)
	if len(g.Candidates) == 0 && g.LastDiscard != nil {
		g.CurrentTurn = domain.NextSeat(g.LastDiscard.Seat)
		g.ClearClaims()
	}
	return nil, nil
}

// ExpireClaimWindow resolves the claim window opened by discard seq. It
// reports false when the window already resolved, so a stale timer firing
// after a claim or a newer discard is a no-op.
func (s *Service) ExpireClaimWindow(g *domain.Game, seq uint64) ([]Event, bool) {
	if g.Phase != domain.PhasePlaying || g.LastDiscard == nil || g.LastDiscard.Seq != seq {
		return nil, false
	}
	var events []Event
	for _, c := range g.Candidates {
		events = append(events, Event{
			Kind:       EventClaimExpired,
			Payload:    ClaimExpiredPayload{Seat: c.Seat},
			Recipients: []int{c.Seat},
		})
	}
	g.CurrentTurn = domain.NextSeat(g.LastDiscard.Seat)
	g.ClearClaims()
	return events, true
}

// DeclareWin checks the seat's full holding for a winning shape. A failed
// declaration leaves the game untouched and reports back to the declarer
// only.
func (s *Service) DeclareWin(g *domain.Game, seat int) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if seat != g.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	if !g.AwaitingDiscard(seat) {
		return nil, ErrWrongTileCount
	}
	if !domain.CheckWin(g.Hands[seat], g.Melds[seat]) {
		return []Event{{
			Kind:       EventWinInvalid,
			Payload:    WinInvalidPayload{Seat: seat},
			Recipients: []int{seat},
		}}, nil
	}
	return s.finishWithWinner(g, seat), nil
}

// ForceDraw recovers a seat stuck below its base total, typically after the
// supply ran dry mid-kong and later refilled. Any stuck claim window is
// expired first, then the draw proceeds as usual.
func (s *Service) ForceDraw(g *domain.Game, seat int) ([]Event, error) {
	if g.Phase != domain.PhasePlaying {
		return nil, ErrNotPlaying
	}
	if seat != g.CurrentTurn {
		return nil, ErrNotYourTurn
	}
	if g.TileTotal(seat) > g.BaseTotal(seat) {
		return nil, ErrWrongTileCount
	}

	var events []Event
	for _, c := range g.Candidates {
		events = append(events, Event{
			Kind:       EventClaimExpired,
			Payload:    ClaimExpiredPayload{Seat: c.Seat},
			Recipients: []int{c.Seat},
		})
	}
	g.ClearClaims()

	drawn, evs, ok := s.drawOne(g, seat)
	events = append(events, evs...)
	if !ok {
		return events, nil
	}
	g.DrawnTiles[seat] = drawn
	events = append(events, Event{
		Kind:       EventTileDrawn,
		Payload:    TileDrawnPayload{Seat: seat, Tile: drawn},
		Recipients: []int{seat},
	})
	return events, nil
}

// drawOne pulls a single live tile into the seat's hand. ok is false when
// the supply fully exhausted, in which case the game ends drawn.
func (s *Service) drawOne(g *domain.Game, seat int) (domain.Tile, []Event, bool) {
	var events []Event
	tile, reshuffled, burned, ok := g.Supply.DrawLive()
	if reshuffled {
		events = append(events, Event{
			Kind:    EventSupplyReshuffled,
			Payload: SupplyReshuffledPayload{WallRemaining: g.Supply.WallRemaining()},
		})
	}
	if len(burned) > 0 {
		events = append(events, Event{
			Kind:    EventAutoRedraw,
			Payload: AutoRedrawPayload{Seat: seat, Burned: burned},
		})
	}
	if !ok {
		g.Phase = domain.PhaseFinished
		g.Winner = domain.NoWinner
		events = append(events, Event{Kind: EventGameDrawn})
		return "", events, false
	}
	g.Hands[seat] = append(g.Hands[seat], tile)
	domain.SortTiles(g.Hands[seat])
	return tile, events, true
}

func (s *Service) finishWithWinner(g *domain.Game, seat int) []Event {
	g.Phase = domain.PhaseFinished
	g.Winner = seat
	g.ClearClaims()
	return []Event{{
		Kind:    EventGameWon,
		Payload: GameWonPayload{Winner: seat},
	}}
}

// rejectClaim converts a claim that failed re-validation into an implicit
// pass for the seat.
func (s *Service) rejectClaim(g *domain.Game, seat int, kind domain.MeldKind, reason string) []Event {
	g.RemoveCandidate(seat)
	events := []Event{{
		Kind:       EventClaimInvalid,
		Payload:    ClaimInvalidPayload{Seat: seat, Kind: kind, Reason: reason},
		Recipients: []int{seat},
	}}
	if len(g.Candidates) == 0 && g.LastDiscard != nil {
		g.CurrentTurn = domain.NextSeat(g.LastDiscard.Seat)
		g.ClearClaims()
	}
	return events
}

// buildClaimMeld re-derives the claimed meld from the current hand. It
// returns the completed meld, the tiles to remove from the hand and an empty
// reason on success.
func buildClaimMeld(hand []domain.Tile, discarded domain.Tile, kind domain.MeldKind, tiles []domain.Tile) (domain.Meld, []domain.Tile, string) {
	switch kind {
	case domain.MeldPong:
		if !domain.CanPong(hand, discarded) {
			return domain.Meld{}, nil, "hand no longer supports a pong"
		}
		return domain.Meld{Kind: kind, Tiles: []domain.Tile{discarded, discarded, discarded}},
			[]domain.Tile{discarded, discarded}, ""
	case domain.MeldKong:
		if !domain.CanKong(hand, discarded) {
			return domain.Meld{}, nil, "hand no longer supports a kong"
		}
		return domain.Meld{Kind: kind, Tiles: []domain.Tile{discarded, discarded, discarded, discarded}},
			[]domain.Tile{discarded, discarded, discarded}, ""
	case domain.MeldChow:
		if len(tiles) != 3 || !domain.IsChow(tiles) {
			return domain.Meld{}, nil, "chosen tiles do not form a run"
		}
		fromHand := make([]domain.Tile, 0, 2)
		used := false
		for _, t := range tiles {
			if t == discarded && !used {
				used = true
				continue
			}
			fromHand = append(fromHand, t)
		}
		if !used {
			return domain.Meld{}, nil, "run does not include the discarded tile"
		}
		run := append([]domain.Tile(nil), tiles...)
		domain.SortTiles(run)
		return domain.Meld{Kind: kind, Tiles: run}, fromHand, ""
	default:
		return domain.Meld{}, nil, "unknown claim kind"
	}
}
