package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/kirschjd/1001-game-nights-sub000/internal/henhur"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerSettings  `hcl:"server,block"`
	Timing *TimingSettings `hcl:"timing,block"`
	HenHur *HenHurSettings `hcl:"henhur,block"`
}

// ServerSettings contains listener-level configuration.
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// TimingSettings groups the timers the session layer arms.
type TimingSettings struct {
	RevealDelayMS      int `hcl:"reveal_delay_ms,optional"`
	CleanupAfterS      int `hcl:"cleanup_after_s,optional"`
	HeartbeatIntervalS int `hcl:"heartbeat_interval_s,optional"`
	HeartbeatGraceS    int `hcl:"heartbeat_grace_s,optional"`
}

// HenHurSettings overrides the HenHur rule defaults.
type HenHurSettings struct {
	TurnsPerRound int `hcl:"turns_per_round,optional"`
	HandSize      int `hcl:"hand_size,optional"`
	MaxTokens     int `hcl:"max_tokens,optional"`
	BurnSlots     int `hcl:"burn_slots,optional"`
	SpacesPerLap  int `hcl:"spaces_per_lap,optional"`
	LapsToWin     int `hcl:"laps_to_win,optional"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     4001,
			LogLevel: "info",
		},
		Timing: &TimingSettings{
			RevealDelayMS:      2000,
			CleanupAfterS:      300,
			HeartbeatIntervalS: 25,
			HeartbeatGraceS:    20,
		},
		HenHur: &HenHurSettings{},
	}
}

// LoadConfig loads configuration from an HCL file; a missing file yields the
// defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Timing == nil {
		config.Timing = defaults.Timing
	} else {
		if config.Timing.RevealDelayMS == 0 {
			config.Timing.RevealDelayMS = defaults.Timing.RevealDelayMS
		}
		if config.Timing.CleanupAfterS == 0 {
			config.Timing.CleanupAfterS = defaults.Timing.CleanupAfterS
		}
		if config.Timing.HeartbeatIntervalS == 0 {
			config.Timing.HeartbeatIntervalS = defaults.Timing.HeartbeatIntervalS
		}
		if config.Timing.HeartbeatGraceS == 0 {
			config.Timing.HeartbeatGraceS = defaults.Timing.HeartbeatGraceS
		}
	}
	if config.HenHur == nil {
		config.HenHur = &HenHurSettings{}
	}

	return &config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Timing.RevealDelayMS < 0 {
		return fmt.Errorf("reveal delay must not be negative")
	}
	if c.Timing.CleanupAfterS < 1 {
		return fmt.Errorf("cleanup window must be at least 1 second")
	}
	if c.Timing.HeartbeatIntervalS < 1 || c.Timing.HeartbeatGraceS < 1 {
		return fmt.Errorf("heartbeat interval and grace must be at least 1 second")
	}
	h := c.HenHur
	if h.HandSize < 0 || h.TurnsPerRound < 0 || h.MaxTokens < 0 ||
		h.BurnSlots < 0 || h.SpacesPerLap < 0 || h.LapsToWin < 0 {
		return fmt.Errorf("henhur settings must not be negative")
	}
	if h.SpacesPerLap == 1 {
		return fmt.Errorf("spaces per lap must be at least 2")
	}
	return nil
}

// GetServerAddress returns the full listen address.
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RevealDelay returns the resolution pause as a duration.
func (c *Config) RevealDelay() time.Duration {
	return time.Duration(c.Timing.RevealDelayMS) * time.Millisecond
}

// CleanupAfter returns the empty-lobby destruction window.
func (c *Config) CleanupAfter() time.Duration {
	return time.Duration(c.Timing.CleanupAfterS) * time.Second
}

// HeartbeatInterval returns the application-level ping period.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Timing.HeartbeatIntervalS) * time.Second
}

// HeartbeatGrace returns how long a pong may lag before it is logged.
func (c *Config) HeartbeatGrace() time.Duration {
	return time.Duration(c.Timing.HeartbeatGraceS) * time.Second
}

// HenHurConfig folds the overrides into the HenHur rule defaults.
func (c *Config) HenHurConfig() henhur.Config {
	cfg := henhur.DefaultConfig()
	cfg.RevealDelay = c.RevealDelay()
	h := c.HenHur
	if h == nil {
		return cfg
	}
	if h.TurnsPerRound > 0 {
		cfg.TurnsPerRound = h.TurnsPerRound
	}
	if h.HandSize > 0 {
		cfg.HandSize = h.HandSize
	}
	if h.MaxTokens > 0 {
		cfg.MaxTokens = h.MaxTokens
	}
	if h.BurnSlots > 0 {
		cfg.BurnSlots = h.BurnSlots
	}
	if h.SpacesPerLap > 0 {
		cfg.SpacesPerLap = h.SpacesPerLap
	}
	if h.LapsToWin > 0 {
		cfg.LapsToWin = h.LapsToWin
	}
	return cfg
}
