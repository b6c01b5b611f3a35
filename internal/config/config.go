package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// GameConfig holds the tunables for a bridge table. Zero values fall back to
// the defaults returned by the accessors below.
type GameConfig struct {
	// MinHandPoints is the playability threshold used by the deal wash.
	MinHandPoints int `json:"min_hand_points"`
	// BotLevel selects the strategy for automated seats ("standard", "random").
	BotLevel string `json:"bot_level"`
	// BotAutoFillDelaySeconds configures how many seconds to wait before adding a bot to a solo human lobby.
	BotAutoFillDelaySeconds int `json:"bot_auto_fill_delay_seconds"`
	// HTTPListenAddr is the bind address for the HTTP gateway.
	HTTPListenAddr string `json:"http_listen_addr"`
	// BotIdentitiesPath optionally points to a JSON roster of bot profiles.
	BotIdentitiesPath string `json:"bot_identities_path"`
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

// GetGameConfig returns the global game configuration.
func GetGameConfig() *GameConfig {
	return cfg
}

// GetMinHandPoints returns the wash threshold, defaulting to the standard 4.
func GetMinHandPoints() int {
	if cfg == nil || cfg.MinHandPoints <= 0 {
		return 4
	}
	return cfg.MinHandPoints
}

// GetBotLevel returns the configured bot strategy level.
func GetBotLevel() string {
	if cfg == nil || cfg.BotLevel == "" {
		return "standard"
	}
	return cfg.BotLevel
}

// GetBotAutoFillDelaySeconds returns the solo-lobby fill delay.
func GetBotAutoFillDelaySeconds() int {
	if cfg == nil || cfg.BotAutoFillDelaySeconds <= 0 {
		return 10
	}
	return cfg.BotAutoFillDelaySeconds
}

// GetHTTPListenAddr returns the gateway bind address.
func GetHTTPListenAddr() string {
	if cfg == nil || cfg.HTTPListenAddr == "" {
		return ":8080"
	}
	return cfg.HTTPListenAddr
}
