package nakama

const (
	// RpcCreateRoom is the Nakama RPC id clients call to open a new room.
	RpcCreateRoom = "create_room"
	// RpcJoinRoom is the Nakama RPC id clients call to resolve a room code
	// to a match id.
	RpcJoinRoom = "join_room"

	// MatchNameMahjong is the authoritative match handler name registered with Nakama.
	MatchNameMahjong = "mahjong_match"

	// MatchLabelKey_Code is the label key holding the room's join code.
	MatchLabelKey_Code = "code"
	// MatchLabelKey_OpenSeats is the label key holding the open seat count.
	MatchLabelKey_OpenSeats = "open"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpDraw       int64 = 1
	OpDiscard    int64 = 2
	OpClaim      int64 = 3
	OpPass       int64 = 4
	OpDeclareWin int64 = 5
	OpForceDraw  int64 = 6
	OpResetRoom  int64 = 7

	// Server -> Client events
	OpRoomState        int64 = 101
	OpGameStarted      int64 = 102
	OpTileDrawn        int64 = 103 // send privately
	OpAutoRedraw       int64 = 104
	OpSupplyReshuffled int64 = 105
	OpTileDiscarded    int64 = 106
	OpClaimAvailable   int64 = 107 // send privately
	OpClaimExpired     int64 = 108
	OpClaimSucceeded   int64 = 109
	OpClaimInvalid     int64 = 110 // send privately
	OpWinInvalid       int64 = 111 // send privately
	OpGameWon          int64 = 112
	OpGameDrawn        int64 = 113
	OpGameReset        int64 = 114
	OpError            int64 = 199
)
