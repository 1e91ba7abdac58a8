// Package config loads the tendril CLI configuration. Scripts describe
// dialogue; this file describes the machine running it: which save-slot
// store backs sessions, how fast the terminal player ticks, and where the
// service surfaces listen.
package config

import (
	"time"
)

// Config is the root configuration document.
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Player PlayerConfig `yaml:"player"`
	Server ServerConfig `yaml:"server"`
}

// StoreConfig selects and parameterizes the save-slot store.
type StoreConfig struct {
	// Driver is one of memory, file, sqlite, redis.
	Driver string `yaml:"driver"`
	// Path is the slot directory (file) or database file (sqlite).
	Path string `yaml:"path"`
	// Redis applies when Driver is redis.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig carries the redis connection settings.
type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// PlayerConfig tunes the terminal player.
type PlayerConfig struct {
	// TickInterval is the typewriter cadence.
	TickInterval time.Duration `yaml:"tick_interval"`
	// Cursor is the option highlight glyph.
	Cursor string `yaml:"cursor"`
	// AutosaveSlot, when set, restores on start and saves on exit.
	AutosaveSlot string `yaml:"autosave_slot"`
}

// ServerConfig carries the listen addresses of the service surfaces.
type ServerConfig struct {
	// Address is the HTTP API listen address.
	Address string `yaml:"address"`
	// MCPPort is the SSE port of the MCP server.
	MCPPort int `yaml:"mcp_port"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Driver: "file",
			Path:   ".tendril/slots",
		},
		Player: PlayerConfig{
			TickInterval: 40 * time.Millisecond,
			Cursor:       "> ",
		},
		Server: ServerConfig{
			Address: ":8080",
			MCPPort: 8081,
		},
	}
}
