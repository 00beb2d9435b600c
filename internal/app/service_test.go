package app

import (
	"errors"
	"math/rand"
	"testing"

	"mahjong/internal/domain"
)

func paddedHand(n int, filler domain.Tile, base ...domain.Tile) []domain.Tile {
	hand := append([]domain.Tile{}, base...)
	for len(hand) < n {
		hand = append(hand, filler)
	}
	return hand
}

func playingGame() *domain.Game {
	return &domain.Game{
		Phase:  domain.PhasePlaying,
		Supply: domain.NewSupply(rand.New(rand.NewSource(1))),
		Winner: domain.NoWinner,
	}
}

func hasEvent(evs []Event, kind EventKind) bool {
	for _, ev := range evs {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestNewGameDealsLiveHands(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)))

	game, evs := svc.NewGame()
	if game.Phase != domain.PhasePlaying {
		t.Fatalf("phase = %s, want playing", game.Phase)
	}
	if game.CurrentTurn != 0 {
		t.Fatalf("first turn = %d, want 0", game.CurrentTurn)
	}
	for seat := 0; seat < domain.SeatCount; seat++ {
		if len(game.Hands[seat]) != domain.InitialHandSize {
			t.Fatalf("seat %d hand size = %d, want %d", seat, len(game.Hands[seat]), domain.InitialHandSize)
		}
		for _, tile := range game.Hands[seat] {
			if tile.IsSterile() {
				t.Fatalf("seat %d dealt sterile tile %s", seat, tile)
			}
		}
	}
	if !hasEvent(evs, EventGameStarted) {
		t.Fatalf("expected game started event")
	}
}

func TestDrawValidation(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)))
	game, _ := svc.NewGame()

	if _, err := svc.Draw(game, 1); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out-of-turn draw error = %v, want ErrNotYourTurn", err)
	}

	if _, err := svc.Draw(game, 0); err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if _, err := svc.Draw(game, 0); !errors.Is(err, ErrWrongTileCount) {
		t.Fatalf("double draw error = %v, want ErrWrongTileCount", err)
	}
}

func TestDrawNotifiesSeatOnly(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)))
	game, _ := svc.NewGame()

	evs, err := svc.Draw(game, 0)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if len(game.Hands[0]) != domain.InitialHandSize+1 {
		t.Fatalf("hand size = %d, want %d", len(game.Hands[0]), domain.InitialHandSize+1)
	}
	if game.DrawnTiles[0] == "" {
		t.Fatalf("drawn tile not recorded")
	}
	found := false
	for _, ev := range evs {
		if ev.Kind == EventTileDrawn {
			found = true
			if len(ev.Recipients) != 1 || ev.Recipients[0] != 0 {
				t.Fatalf("tile drawn recipients = %v, want [0]", ev.Recipients)
			}
		}
	}
	if !found {
		t.Fatalf("expected tile drawn event")
	}
}

func TestDiscardOpensClaimWindow(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2", "dot-4", "dot-6")
	game.Hands[2] = paddedHand(13, "character-3")
	game.Hands[3] = paddedHand(13, "character-4", "dot-5", "dot-5")

	evs, err := svc.Discard(game, 0, "dot-5")
	if err != nil {
		t.Fatalf("discard error: %v", err)
	}
	if game.LastDiscard == nil || game.LastDiscard.Tile != "dot-5" || game.LastDiscard.Seat != 0 {
		t.Fatalf("last discard = %+v, want dot-5 from seat 0", game.LastDiscard)
	}
	if game.CurrentTurn != 1 {
		t.Fatalf("tentative turn = %d, want 1", game.CurrentTurn)
	}
	if len(game.Candidates) != 2 {
		t.Fatalf("candidates = %+v, want chow for seat 1 and pong for seat 3", game.Candidates)
	}
	if !game.HasCandidate(1, domain.MeldChow) {
		t.Fatalf("seat 1 should hold a chow candidate")
	}
	if !game.HasCandidate(3, domain.MeldPong) {
		t.Fatalf("seat 3 should hold a pong candidate")
	}
	if !hasEvent(evs, EventTileDiscarded) {
		t.Fatalf("expected tile discarded event")
	}
	claimNotices := 0
	for _, ev := range evs {
		if ev.Kind == EventClaimAvailable {
			claimNotices++
			if len(ev.Recipients) != 1 {
				t.Fatalf("claim notice recipients = %v, want one seat", ev.Recipients)
			}
		}
	}
	if claimNotices != 2 {
		t.Fatalf("claim notices = %d, want 2", claimNotices)
	}
}

func TestDiscardWithoutClaimsAdvancesTurn(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2")
	game.Hands[2] = paddedHand(13, "character-3")
	game.Hands[3] = paddedHand(13, "character-4")

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	if game.LastDiscard != nil || len(game.Candidates) != 0 {
		t.Fatalf("claim state should clear when nobody can claim")
	}
	if game.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want 1", game.CurrentTurn)
	}
	if game.Supply.DiscardPile[len(game.Supply.DiscardPile)-1] != "dot-5" {
		t.Fatalf("discard pile should end with dot-5")
	}
}

func TestKongOutranksPongForSameSeat(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2")
	game.Hands[2] = paddedHand(13, "character-3", "dot-5", "dot-5", "dot-5")
	game.Hands[3] = paddedHand(13, "character-4")

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	if len(game.Candidates) != 1 || game.Candidates[0].Kind != domain.MeldKong || game.Candidates[0].Seat != 2 {
		t.Fatalf("candidates = %+v, want a single kong for seat 2", game.Candidates)
	}
}

func TestClaimPong(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2")
	game.Hands[2] = paddedHand(13, "character-3")
	game.Hands[3] = paddedHand(13, "character-4", "dot-5", "dot-5")

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	evs, err := svc.Claim(game, 3, domain.MeldPong, nil)
	if err != nil {
		t.Fatalf("claim error: %v", err)
	}
	if !hasEvent(evs, EventClaimSucceeded) {
		t.Fatalf("expected claim succeeded event")
	}
	if len(game.Melds[3]) != 1 || game.Melds[3][0].Kind != domain.MeldPong {
		t.Fatalf("melds = %+v, want one pong", game.Melds[3])
	}
	if game.CurrentTurn != 3 {
		t.Fatalf("turn = %d, want claimant seat 3", game.CurrentTurn)
	}
	if !game.AwaitingDiscard(3) {
		t.Fatalf("claimant should owe a discard, total = %d", game.TileTotal(3))
	}
	if game.LastDiscard != nil || len(game.Candidates) != 0 {
		t.Fatalf("claim state should clear after a successful claim")
	}
	if len(game.Supply.DiscardPile) != 0 {
		t.Fatalf("claimed tile should leave the discard pile")
	}
}

func TestClaimKongDrawsReplacement(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2")
	game.Hands[2] = paddedHand(13, "character-3", "dot-5", "dot-5", "dot-5")
	game.Hands[3] = paddedHand(13, "character-4")

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	if _, err := svc.Claim(game, 2, domain.MeldKong, nil); err != nil {
		t.Fatalf("claim error: %v", err)
	}
	if len(game.Melds[2]) != 1 || game.Melds[2][0].Kind != domain.MeldKong {
		t.Fatalf("melds = %+v, want one kong", game.Melds[2])
	}
	if game.BaseTotal(2) != domain.InitialHandSize+1 {
		t.Fatalf("base total = %d, want %d", game.BaseTotal(2), domain.InitialHandSize+1)
	}
	if !game.AwaitingDiscard(2) {
		t.Fatalf("kong claimant should owe a discard after replacement, total = %d", game.TileTotal(2))
	}
}

func TestClaimChowUsesChosenRun(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2", "dot-4", "dot-6")
	game.Hands[2] = paddedHand(13, "character-3")
	game.Hands[3] = paddedHand(13, "character-4")

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	run := []domain.Tile{"dot-4", "dot-5", "dot-6"}
	if _, err := svc.Claim(game, 1, domain.MeldChow, run); err != nil {
		t.Fatalf("claim error: %v", err)
	}
	if len(game.Melds[1]) != 1 || game.Melds[1][0].Kind != domain.MeldChow {
		t.Fatalf("melds = %+v, want one chow", game.Melds[1])
	}
	if domain.ContainsTile(game.Hands[1], "dot-4") || domain.ContainsTile(game.Hands[1], "dot-6") {
		t.Fatalf("run tiles should leave the hand")
	}
	if game.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want 1", game.CurrentTurn)
	}
}

func TestClaimRevalidationFailureIsImplicitPass(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2", "dot-4", "dot-6")
	game.Hands[2] = paddedHand(13, "character-3")
	game.Hands[3] = paddedHand(13, "character-4", "dot-5", "dot-5")

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	// Invalidate seat 3's pong after the candidate was recorded.
	game.Hands[3], _ = domain.RemoveTiles(game.Hands[3], []domain.Tile{"dot-5"})
	game.Hands[3] = append(game.Hands[3], "character-9")

	evs, err := svc.Claim(game, 3, domain.MeldPong, nil)
	if err != nil {
		t.Fatalf("claim error = %v, want implicit pass", err)
	}
	if !hasEvent(evs, EventClaimInvalid) {
		t.Fatalf("expected claim invalid event")
	}
	if game.HasCandidate(3, domain.MeldPong) {
		t.Fatalf("failed claim should drop seat 3's candidate")
	}
	if game.LastDiscard == nil {
		t.Fatalf("window should stay open while seat 1 still holds a candidate")
	}

	// Last candidate passing resolves the window.
	if _, err := svc.Pass(game, 1); err != nil {
		t.Fatalf("pass error: %v", err)
	}
	if game.LastDiscard != nil || len(game.Candidates) != 0 {
		t.Fatalf("claim state should clear once every candidate passed")
	}
	if game.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want seat after discarder", game.CurrentTurn)
	}
}

func TestPassWithoutCandidateIsNoop(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)))
	game, _ := svc.NewGame()

	if _, err := svc.Pass(game, 2); err != nil {
		t.Fatalf("pass error: %v", err)
	}
	if game.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want unchanged 0", game.CurrentTurn)
	}
}

func TestExpireClaimWindow(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2")
	game.Hands[2] = paddedHand(13, "character-3")
	game.Hands[3] = paddedHand(13, "character-4", "dot-5", "dot-5")

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	seq := game.LastDiscard.Seq

	if _, fired := svc.ExpireClaimWindow(game, seq-1); fired {
		t.Fatalf("stale sequence should not fire")
	}
	evs, fired := svc.ExpireClaimWindow(game, seq)
	if !fired {
		t.Fatalf("current sequence should fire")
	}
	if !hasEvent(evs, EventClaimExpired) {
		t.Fatalf("expected claim expired event")
	}
	if game.LastDiscard != nil || len(game.Candidates) != 0 {
		t.Fatalf("claim state should clear on expiry")
	}
	if game.CurrentTurn != 1 {
		t.Fatalf("turn = %d, want seat after discarder", game.CurrentTurn)
	}

	if _, fired := svc.ExpireClaimWindow(game, seq); fired {
		t.Fatalf("resolved window should not fire again")
	}
}

func TestDeclareWinInvalidLeavesGameUntouched(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")

	evs, err := svc.DeclareWin(game, 0)
	if err != nil {
		t.Fatalf("declare error: %v", err)
	}
	if !hasEvent(evs, EventWinInvalid) {
		t.Fatalf("expected win invalid event")
	}
	if game.Phase != domain.PhasePlaying || game.Winner != domain.NoWinner {
		t.Fatalf("failed declaration must not end the game")
	}
}

func TestDeclareWinFinishesGame(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = []domain.Tile{
		"dot-1", "dot-2", "dot-3",
		"dot-7", "dot-8", "dot-9",
		"bamboo-2", "bamboo-3", "bamboo-4",
		"character-5", "character-6", "character-7",
		"dot-5", "dot-5",
	}

	evs, err := svc.DeclareWin(game, 0)
	if err != nil {
		t.Fatalf("declare error: %v", err)
	}
	if !hasEvent(evs, EventGameWon) {
		t.Fatalf("expected game won event")
	}
	if game.Phase != domain.PhaseFinished || game.Winner != 0 {
		t.Fatalf("phase = %s winner = %d, want finished winner 0", game.Phase, game.Winner)
	}
}

func TestClaimCompletesWin(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(14, "character-1", "dot-5")
	game.Hands[1] = paddedHand(13, "character-2")
	game.Hands[2] = paddedHand(13, "character-3")
	game.Hands[3] = []domain.Tile{
		"bamboo-1", "bamboo-2", "bamboo-3",
		"bamboo-4", "bamboo-5", "bamboo-6",
		"character-2", "character-3", "character-4",
		"dot-9", "dot-9",
		"dot-5", "dot-5",
	}

	if _, err := svc.Discard(game, 0, "dot-5"); err != nil {
		t.Fatalf("discard error: %v", err)
	}
	evs, err := svc.Claim(game, 3, domain.MeldPong, nil)
	if err != nil {
		t.Fatalf("claim error: %v", err)
	}
	if !hasEvent(evs, EventGameWon) {
		t.Fatalf("expected game won event after winning claim")
	}
	if game.Phase != domain.PhaseFinished || game.Winner != 3 {
		t.Fatalf("phase = %s winner = %d, want finished winner 3", game.Phase, game.Winner)
	}
}

func TestForceDrawTopsUpShortHand(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(12, "character-1")

	if _, err := svc.ForceDraw(game, 0); err != nil {
		t.Fatalf("force draw error: %v", err)
	}
	if len(game.Hands[0]) != 13 {
		t.Fatalf("hand size = %d, want 13", len(game.Hands[0]))
	}

	game.Hands[0] = paddedHand(14, "character-1")
	if _, err := svc.ForceDraw(game, 0); !errors.Is(err, ErrWrongTileCount) {
		t.Fatalf("force draw over base error = %v, want ErrWrongTileCount", err)
	}
}

func TestFullRotationWithoutClaims(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	for seat := 0; seat < domain.SeatCount; seat++ {
		game.Hands[seat] = paddedHand(13, domain.MakeTile("character", seat+2))
	}
	game.Supply.Wall = []domain.Tile{"dot-1", "dot-5", "dot-9", "bamboo-1"}

	for seat := 0; seat < domain.SeatCount; seat++ {
		if game.CurrentTurn != seat {
			t.Fatalf("turn = %d, want %d", game.CurrentTurn, seat)
		}
		if !game.AwaitingDraw(seat) {
			t.Fatalf("seat %d should owe a draw, total = %d", seat, game.TileTotal(seat))
		}
		if _, err := svc.Draw(game, seat); err != nil {
			t.Fatalf("seat %d draw error: %v", seat, err)
		}
		if !game.AwaitingDiscard(seat) {
			t.Fatalf("seat %d should owe a discard, total = %d", seat, game.TileTotal(seat))
		}
		if _, err := svc.Discard(game, seat, game.DrawnTiles[seat]); err != nil {
			t.Fatalf("seat %d discard error: %v", seat, err)
		}
		if game.LastDiscard != nil || len(game.Candidates) != 0 {
			t.Fatalf("no claims expected after seat %d's discard", seat)
		}
	}
	if game.CurrentTurn != 0 {
		t.Fatalf("turn = %d, want back at 0 after a full rotation", game.CurrentTurn)
	}
}

func TestSupplyExhaustionEndsGameDrawn(t *testing.T) {
	svc := NewService(nil)
	game := playingGame()
	game.Hands[0] = paddedHand(13, "character-1")
	game.Supply.Wall = nil
	game.Supply.DiscardPile = nil

	evs, err := svc.Draw(game, 0)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if !hasEvent(evs, EventGameDrawn) {
		t.Fatalf("expected game drawn event")
	}
	if game.Phase != domain.PhaseFinished || game.Winner != domain.NoWinner {
		t.Fatalf("phase = %s winner = %d, want finished with no winner", game.Phase, game.Winner)
	}
}
