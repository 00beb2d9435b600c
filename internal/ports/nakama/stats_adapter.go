package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"mahjong/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	statsCollection = "player_stats"
	statsKey        = "record"
)

type playerStats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Games  int `json:"games"`
}

// NakamaStatsAdapter implements ports.StatsPort using Nakama's storage engine.
type NakamaStatsAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaStatsAdapter creates a new stats adapter.
func NewNakamaStatsAdapter(nk runtime.NakamaModule) *NakamaStatsAdapter {
	return &NakamaStatsAdapter{
		nk: nk,
	}
}

// RecordResults applies one finished game to every listed player's totals.
func (a *NakamaStatsAdapter) RecordResults(ctx context.Context, results []ports.PlayerResult) error {
	for _, result := range results {
		if result.UserID == "" {
			continue
		}

		stats, version, err := a.readStats(ctx, result.UserID)
		if err != nil {
			return err
		}

		stats.Games++
		if result.Won {
			stats.Wins++
		} else {
			stats.Losses++
		}

		value, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("failed to marshal stats for user %s: %w", result.UserID, err)
		}

		write := &runtime.StorageWrite{
			Collection:      statsCollection,
			Key:             statsKey,
			UserID:          result.UserID,
			Value:           string(value),
			Version:         version,
			PermissionRead:  2,
			PermissionWrite: 0,
		}
		if _, err := a.nk.StorageWrite(ctx, []*runtime.StorageWrite{write}); err != nil {
			return fmt.Errorf("failed to write stats for user %s: %w", result.UserID, err)
		}
	}
	return nil
}

func (a *NakamaStatsAdapter) readStats(ctx context.Context, userID string) (playerStats, string, error) {
	read := &runtime.StorageRead{
		Collection: statsCollection,
		Key:        statsKey,
		UserID:     userID,
	}
	objects, err := a.nk.StorageRead(ctx, []*runtime.StorageRead{read})
	if err != nil {
		return playerStats{}, "", fmt.Errorf("failed to read stats for user %s: %w", userID, err)
	}
	if len(objects) == 0 {
		return playerStats{}, "", nil
	}

	var stats playerStats
	if err := json.Unmarshal([]byte(objects[0].Value), &stats); err != nil {
		return playerStats{}, "", fmt.Errorf("failed to unmarshal stats for user %s: %w", userID, err)
	}
	return stats, objects[0].Version, nil
}
