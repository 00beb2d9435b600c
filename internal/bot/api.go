package bot

import (
	"mahjong/internal/domain"
)

// ActionKind identifies what a bot decided to do.
type ActionKind string

const (
	ActionNone       ActionKind = "none"
	ActionDraw       ActionKind = "draw"
	ActionDiscard    ActionKind = "discard"
	ActionPass       ActionKind = "pass"
	ActionDeclareWin ActionKind = "declare_win"
)

// Action is the decision made by a bot for its turn or claim window.
type Action struct {
	Kind ActionKind
	Tile domain.Tile // discard target, set for ActionDiscard only
}

// Policy is the interface bot decision strategies implement.
type Policy interface {
	TurnAction(game *domain.Game, seat int) Action
	ClaimAction(game *domain.Game, seat int) Action
}
