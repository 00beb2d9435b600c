package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type GameConfig struct {
	// ClaimWindowSeconds is how long a discard stays open to claims before
	// the turn advances on its own.
	ClaimWindowSeconds int `json:"claim_window_seconds"`
	// StartDelaySeconds is the countdown between the fourth seat filling
	// and the first deal.
	StartDelaySeconds int `json:"start_delay_seconds"`
	// IdleTimeoutMinutes configures how long a room survives without any
	// player activity before it shuts itself down.
	IdleTimeoutMinutes int `json:"idle_timeout_minutes"`

	BotMinDelaySeconds int `json:"bot_min_delay_seconds"`
	BotMaxDelaySeconds int `json:"bot_max_delay_seconds"`

	// PracticeRoomCode is the fixed code of the always-on room that fills
	// its empty seats with bots.
	PracticeRoomCode string `json:"practice_room_code"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadGameConfig loads the game configuration from the given path.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read game config: %w", err)
			return
		}

		var c GameConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal game config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetGameConfig returns the global game configuration with defaults applied
// for anything the file left unset.
func GetGameConfig() GameConfig {
	c := GameConfig{
		ClaimWindowSeconds: 10,
		StartDelaySeconds:  3,
		IdleTimeoutMinutes: 30,
		BotMinDelaySeconds: 1,
		BotMaxDelaySeconds: 3,
		PracticeRoomCode:   "9999",
	}
	if cfg == nil {
		return c
	}
	if cfg.ClaimWindowSeconds > 0 {
		c.ClaimWindowSeconds = cfg.ClaimWindowSeconds
	}
	if cfg.StartDelaySeconds > 0 {
		c.StartDelaySeconds = cfg.StartDelaySeconds
	}
	if cfg.IdleTimeoutMinutes > 0 {
		c.IdleTimeoutMinutes = cfg.IdleTimeoutMinutes
	}
	if cfg.BotMinDelaySeconds > 0 {
		c.BotMinDelaySeconds = cfg.BotMinDelaySeconds
	}
	if cfg.BotMaxDelaySeconds >= c.BotMinDelaySeconds {
		c.BotMaxDelaySeconds = cfg.BotMaxDelaySeconds
	}
	if cfg.PracticeRoomCode != "" {
		c.PracticeRoomCode = cfg.PracticeRoomCode
	}
	return c
}
