package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

type RoomConfig struct {
	TicketIssuer       string `json:"ticket_issuer"`
	TicketTTLSeconds   int    `json:"ticket_ttl_seconds"`
	NightDamageReveals int    `json:"night_damage_reveals"`
	MaxPlayers         int    `json:"max_players"`
	// GhostNames overrides the stock names given to the placeholder seats
	// that pad two- and three-player rooms.
	GhostNames []string `json:"ghost_names"`
}

var (
	cfg      *RoomConfig
	loadOnce sync.Once
	loadErr  error
)

// LoadRoomConfig loads the room configuration from the given path.
func LoadRoomConfig(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read room config: %w", err)
			return
		}

		var c RoomConfig
		if err := json.Unmarshal(data, &c); err != nil {
			loadErr = fmt.Errorf("failed to unmarshal room config: %w", err)
			return
		}
		cfg = &c
	})
	return loadErr
}

// GetRoomConfig returns the global room configuration.
func GetRoomConfig() *RoomConfig {
	return cfg
}

// GetTicketIssuer returns the issuer stamped into rejoin tickets.
func GetTicketIssuer() string {
	if cfg == nil || cfg.TicketIssuer == "" {
		return "witchhunt"
	}
	return cfg.TicketIssuer
}

// GetTicketTTLSeconds returns the rejoin ticket lifetime.
func GetTicketTTLSeconds() int {
	if cfg == nil || cfg.TicketTTLSeconds <= 0 {
		return 86400
	}
	return cfg.TicketTTLSeconds
}

// GetNightDamageReveals returns how many cards a small-game night kill costs.
func GetNightDamageReveals() int {
	if cfg == nil || cfg.NightDamageReveals <= 0 {
		return 2
	}
	return cfg.NightDamageReveals
}

// GetMaxPlayers returns the largest roster allowed to start a game.
func GetMaxPlayers() int {
	if cfg == nil || cfg.MaxPlayers <= 0 {
		return 12
	}
	return cfg.MaxPlayers
}

// GetGhostNames returns the configured ghost name pool, or nil for the stock one.
func GetGhostNames() []string {
	if cfg == nil {
		return nil
	}
	return cfg.GhostNames
}
