package nakama

import (
	"mahjong/internal/domain"
)

// MatchLabel is the queryable JSON label kept up to date on every room.
type MatchLabel struct {
	Code     string `json:"code"`
	Open     int    `json:"open"`
	Phase    string `json:"phase"`
	Practice bool   `json:"practice"`
}

// CreateRoomResponse is returned by the create_room RPC.
type CreateRoomResponse struct {
	MatchID string `json:"match_id"`
	Code    string `json:"code"`
}

// JoinRoomRequest is the payload clients send to the join_room RPC.
type JoinRoomRequest struct {
	Code string `json:"code"`
}

// JoinRoomResponse is returned by the join_room RPC.
type JoinRoomResponse struct {
	MatchID string `json:"match_id"`
	Code    string `json:"code"`
}

// DiscardRequest names the tile a player wants to discard.
type DiscardRequest struct {
	Tile domain.Tile `json:"tile"`
}

// ClaimRequest asks to take the outstanding discard into a meld. Tiles
// carries the chosen run for a chow claim and is otherwise omitted.
type ClaimRequest struct {
	Kind  domain.MeldKind `json:"kind"`
	Tiles []domain.Tile   `json:"tiles,omitempty"`
}

// SeatState is one seat's public view inside a room snapshot.
type SeatState struct {
	Seat        int           `json:"seat"`
	DisplayName string        `json:"displayName,omitempty"`
	Bot         bool          `json:"bot,omitempty"`
	Connected   bool          `json:"connected"`
	HandCount   int           `json:"handCount"`
	Melds       []domain.Meld `json:"melds,omitempty"`
	DrawnTile   domain.Tile   `json:"drawnTile,omitempty"`
}

// RoomSnapshot is the personalized room view sent to one player. Hand is the
// recipient's own concealed tiles; everyone else appears as counts and
// public melds only.
type RoomSnapshot struct {
	Code          string                `json:"code"`
	Phase         string                `json:"phase"`
	YourSeat      int                   `json:"yourSeat"`
	Hand          []domain.Tile         `json:"hand,omitempty"`
	Seats         []SeatState           `json:"seats"`
	CurrentTurn   int                   `json:"currentTurn"`
	LastDiscard   *domain.DiscardRecord `json:"lastDiscard,omitempty"`
	DiscardPile   []domain.Tile         `json:"discardPile,omitempty"`
	WallRemaining int                   `json:"wallRemaining"`
	Winner        int                   `json:"winner"`
	ClaimSeconds  int                   `json:"claimSeconds,omitempty"`
}

// ErrorEvent is sent to a single player when a request is rejected.
type ErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
