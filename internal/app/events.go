package app

import "mahjong/internal/domain"

// EventKind identifies emitted domain events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted      EventKind = "game_started"
	EventTileDrawn        EventKind = "tile_drawn"
	EventAutoRedraw       EventKind = "auto_redraw"
	EventSupplyReshuffled EventKind = "supply_reshuffled"
	EventTileDiscarded    EventKind = "tile_discarded"
	EventClaimAvailable   EventKind = "claim_available"
	EventClaimExpired     EventKind = "claim_expired"
	EventClaimSucceeded   EventKind = "claim_succeeded"
	EventClaimInvalid     EventKind = "claim_invalid"
	EventWinInvalid       EventKind = "win_invalid"
	EventGameWon          EventKind = "game_won"
	EventGameDrawn        EventKind = "game_drawn"
	EventGameReset        EventKind = "game_reset"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []int // seat indexes; nil means broadcast
}

type GameStartedPayload struct {
	FirstTurn int `json:"firstTurn"`
}

type TileDrawnPayload struct {
	Seat int         `json:"seat"`
	Tile domain.Tile `json:"tile"`
}

// AutoRedrawPayload reports sterile tiles burned while drawing; the draw
// repeats until a live tile comes up.
type AutoRedrawPayload struct {
	Seat   int           `json:"seat"`
	Burned []domain.Tile `json:"burned"`
}

type SupplyReshuffledPayload struct {
	WallRemaining int `json:"wallRemaining"`
}

type TileDiscardedPayload struct {
	Seat     int         `json:"seat"`
	Tile     domain.Tile `json:"tile"`
	NextTurn int         `json:"nextTurn"`
}

type ClaimAvailablePayload struct {
	Seat    int             `json:"seat"`
	Kind    domain.MeldKind `json:"kind"`
	Tile    domain.Tile     `json:"tile"`
	Options [][]domain.Tile `json:"options,omitempty"`
}

type ClaimExpiredPayload struct {
	Seat int `json:"seat"`
}

type ClaimSucceededPayload struct {
	Seat int             `json:"seat"`
	Kind domain.MeldKind `json:"kind"`
	Tile domain.Tile     `json:"tile"`
}

type ClaimInvalidPayload struct {
	Seat   int             `json:"seat"`
	Kind   domain.MeldKind `json:"kind"`
	Reason string          `json:"reason"`
}

type WinInvalidPayload struct {
	Seat int `json:"seat"`
}

type GameWonPayload struct {
	Winner int `json:"winner"`
}
