package bot

import (
	"math/rand"

	"mahjong/internal/domain"
)

// RandomPolicy plays a legal but unambitious game: draw when a draw is owed,
// discard a random concealed tile when one is owed, and let every claim
// window pass by.
type RandomPolicy struct {
	rng *rand.Rand
}

func NewRandomPolicy(rng *rand.Rand) *RandomPolicy {
	return &RandomPolicy{rng: rng}
}

func (p *RandomPolicy) TurnAction(game *domain.Game, seat int) Action {
	if game.AwaitingDiscard(seat) {
		hand := game.Hands[seat]
		if len(hand) == 0 {
			return Action{Kind: ActionNone}
		}
		if domain.CheckWin(hand, game.Melds[seat]) {
			return Action{Kind: ActionDeclareWin}
		}
		return Action{Kind: ActionDiscard, Tile: hand[p.rng.Intn(len(hand))]}
	}
	if game.AwaitingDraw(seat) && game.LastDiscard == nil {
		return Action{Kind: ActionDraw}
	}
	return Action{Kind: ActionNone}
}

func (p *RandomPolicy) ClaimAction(game *domain.Game, seat int) Action {
	return Action{Kind: ActionPass}
}
