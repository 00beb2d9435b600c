package bot

import (
	"math/rand"

	"mahjong/internal/domain"
)

// Agent represents an autonomous bot player occupying a room seat.
type Agent struct {
	ID     string
	Name   string
	Policy Policy
}

// NewAgent builds an agent around the identity pool entry for index.
func NewAgent(index int, rng *rand.Rand) *Agent {
	identity := GetBotIdentity(index)
	return &Agent{
		ID:     identity.UserID,
		Name:   identity.DisplayName,
		Policy: NewRandomPolicy(rng),
	}
}

// Act asks the agent what to do with the current game state. A pending claim
// window takes priority over the agent's own turn.
func (a *Agent) Act(game *domain.Game, seat int) Action {
	if _, ok := game.CandidateFor(seat); ok {
		return a.Policy.ClaimAction(game, seat)
	}
	if game.CurrentTurn == seat && game.LastDiscard == nil {
		return a.Policy.TurnAction(game, seat)
	}
	return Action{Kind: ActionNone}
}
