package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"mahjong/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// roomCodeAlphabet excludes easily confused characters (0/O, 1/I).
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const roomCodeLength = 4

const maxCodeAttempts = 16

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	if err := initializer.RegisterRpc(RpcCreateRoom, rpcCreateRoom); err != nil {
		return err
	}
	return initializer.RegisterRpc(RpcJoinRoom, rpcJoinRoom)
}

func generateRoomCode(rng *rand.Rand) string {
	var b strings.Builder
	for i := 0; i < roomCodeLength; i++ {
		b.WriteByte(roomCodeAlphabet[rng.Intn(len(roomCodeAlphabet))])
	}
	return b.String()
}

func findRoomByCode(ctx context.Context, nk runtime.NakamaModule, code string) (string, error) {
	limit := 1
	authoritative := true
	labelQuery := fmt.Sprintf("+label.%s:%s", MatchLabelKey_Code, code)
	minSize := 0
	maxSize := 4

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, labelQuery)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].MatchId, nil
}

// rpcCreateRoom opens a fresh room under a newly generated code and returns
// both. Codes are checked against live rooms so two rooms never share one.
func rpcCreateRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	cfg := config.GetGameConfig()
	rng := newRuntimeRNG()

	var code string
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := generateRoomCode(rng)
		if candidate == cfg.PracticeRoomCode {
			continue
		}
		existing, err := findRoomByCode(ctx, nk, candidate)
		if err != nil {
			logger.Error("rpcCreateRoom [User:%s]: Failed to list matches: %v", userID, err)
			return "", err
		}
		if existing == "" {
			code = candidate
			break
		}
	}
	if code == "" {
		return "", runtime.NewError("could not allocate a room code", 13)
	}

	matchID, err := nk.MatchCreate(ctx, MatchNameMahjong, map[string]interface{}{"code": code})
	if err != nil {
		logger.Error("rpcCreateRoom [User:%s]: Failed to create match: %v", userID, err)
		return "", err
	}

	logger.Info("rpcCreateRoom [User:%s]: Created room %s (%s)", userID, code, matchID)
	b, _ := json.Marshal(CreateRoomResponse{MatchID: matchID, Code: code})
	return string(b), nil
}

// rpcJoinRoom resolves a room code to a match id. The practice room is
// created on demand under its fixed code.
func rpcJoinRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)

	var req JoinRoomRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("invalid join payload", 3)
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return "", runtime.NewError("room code is required", 3)
	}

	matchID, err := findRoomByCode(ctx, nk, code)
	if err != nil {
		logger.Error("rpcJoinRoom [User:%s]: Failed to list matches: %v", userID, err)
		return "", err
	}

	cfg := config.GetGameConfig()
	if matchID == "" && code == cfg.PracticeRoomCode {
		matchID, err = nk.MatchCreate(ctx, MatchNameMahjong, map[string]interface{}{"code": code, "practice": true})
		if err != nil {
			logger.Error("rpcJoinRoom [User:%s]: Failed to create practice room: %v", userID, err)
			return "", err
		}
		logger.Info("rpcJoinRoom [User:%s]: Created practice room %s (%s)", userID, code, matchID)
	}
	if matchID == "" {
		return "", runtime.NewError("room not found or expired", 5)
	}

	b, _ := json.Marshal(JoinRoomResponse{MatchID: matchID, Code: code})
	return string(b), nil
}
