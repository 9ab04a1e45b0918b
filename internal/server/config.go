package server

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/bluffdeck/bluffdeck/internal/deck"
	"github.com/bluffdeck/bluffdeck/internal/registry"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server   *ServerSettings   `hcl:"server,block"`
	Game     *GameSettings     `hcl:"game,block"`
	Registry *RegistrySettings `hcl:"registry,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings tunes the rooms the server opens
type GameSettings struct {
	RoomCapacity       int   `hcl:"room_capacity,optional"`
	LossLimit          int   `hcl:"loss_limit,optional"`
	TurnTimeoutSeconds int   `hcl:"turn_timeout_seconds,optional"`
	RNGSeed            int64 `hcl:"rng_seed,optional"`
}

// RegistrySettings locates the user registry database
type RegistrySettings struct {
	Path              string `hcl:"path,optional"`
	MaxUsernameLength int    `hcl:"max_username_length,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: &ServerSettings{
			Address:  "localhost",
			Port:     8765,
			LogLevel: "info",
		},
		Game: &GameSettings{
			RoomCapacity: 8,
			LossLimit:    5,
		},
		Registry: &RegistrySettings{
			Path:              "bluffdeck.db",
			MaxUsernameLength: registry.DefaultMaxUsernameLen,
		},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing blocks and values
	defaults := DefaultServerConfig()
	if config.Server == nil {
		config.Server = defaults.Server
	}
	if config.Game == nil {
		config.Game = defaults.Game
	}
	if config.Registry == nil {
		config.Registry = defaults.Registry
	}

	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.RoomCapacity == 0 {
		config.Game.RoomCapacity = defaults.Game.RoomCapacity
	}
	if config.Game.LossLimit == 0 {
		config.Game.LossLimit = defaults.Game.LossLimit
	}
	if config.Registry.Path == "" {
		config.Registry.Path = defaults.Registry.Path
	}
	if config.Registry.MaxUsernameLength == 0 {
		config.Registry.MaxUsernameLength = defaults.Registry.MaxUsernameLength
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}

	if c.Game.RoomCapacity < 2 || c.Game.RoomCapacity > 8 {
		return fmt.Errorf("room capacity must be between 2 and 8, got %d", c.Game.RoomCapacity)
	}

	if c.Game.LossLimit < 1 {
		return fmt.Errorf("loss limit must be at least 1, got %d", c.Game.LossLimit)
	}

	// Every seat can hold at most loss_limit cards at once, so a full
	// table must still fit in one deck.
	if worst := c.Game.RoomCapacity * c.Game.LossLimit; worst > deck.Size {
		return fmt.Errorf("room capacity %d at loss limit %d could need %d cards, more than a deck holds",
			c.Game.RoomCapacity, c.Game.LossLimit, worst)
	}

	if c.Game.TurnTimeoutSeconds < 0 {
		return fmt.Errorf("turn timeout must not be negative, got %d", c.Game.TurnTimeoutSeconds)
	}

	if c.Registry.MaxUsernameLength < registry.MinUsernameLen {
		return fmt.Errorf("max username length must be at least %d, got %d",
			registry.MinUsernameLen, c.Registry.MaxUsernameLength)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
