// Package config loads parley settings from a TOML file.
//
// Every field has a default, so an empty or absent file yields a usable
// configuration:
//
//	[editor]
//	base_x = 80.0
//	base_y = 80.0
//	repair_choice_links = false
//
//	[playback]
//	min_tick_ms = 10
//	advance_keys = ["enter", " "]
//	quit_keys = ["q", "ctrl+c", "esc"]
//
//	[server]
//	addr = ":8080"
//	store = "file"          # file | redis | mongo | memory
//	dir = "documents"
//	redis_addr = "localhost:6379"
//	redis_prefix = "parley:"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "parley"
//	mongo_collection = "documents"
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Store backends accepted in [server].store.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
	StoreMongo = "mongo"

	// StoreMemory keeps documents in process and loses them on exit.
	StoreMemory = "memory"
)

// DefaultPath is the config file looked up when no --config flag is given.
const DefaultPath = "parley.toml"

// Config is the root of the configuration file.
type Config struct {
	Editor   Editor   `toml:"editor"`
	Playback Playback `toml:"playback"`
	Server   Server   `toml:"server"`
}

// Editor holds authoring defaults.
type Editor struct {
	BaseX float64 `toml:"base_x"`
	BaseY float64 `toml:"base_y"`
	// RepairChoiceLinks also shifts choice targets when a node deletion
	// renumbers ids. Off by default to keep existing documents stable.
	RepairChoiceLinks bool `toml:"repair_choice_links"`
}

// Playback holds runtime presentation settings.
type Playback struct {
	MinTickMS   int      `toml:"min_tick_ms"`
	AdvanceKeys []string `toml:"advance_keys"`
	QuitKeys    []string `toml:"quit_keys"`
}

// MinTick returns the reveal interval floor.
func (p Playback) MinTick() time.Duration {
	return time.Duration(p.MinTickMS) * time.Millisecond
}

// Server holds the HTTP backend settings.
type Server struct {
	Addr            string `toml:"addr"`
	Store           string `toml:"store"`
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPrefix     string `toml:"redis_prefix"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Editor: Editor{BaseX: 80, BaseY: 80},
		Playback: Playback{
			MinTickMS:   10,
			AdvanceKeys: []string{"enter", " "},
			QuitKeys:    []string{"q", "ctrl+c", "esc"},
		},
		Server: Server{
			Addr:            ":8080",
			Store:           StoreFile,
			Dir:             "documents",
			RedisAddr:       "localhost:6379",
			RedisPrefix:     "parley:",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   "parley",
			MongoCollection: "documents",
		},
	}
}

// Load reads the TOML file at path on top of the defaults.
//
// When required is false a missing file is not an error and the defaults
// are returned; this is how the implicit parley.toml lookup behaves.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Decode(string(data), &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML text into cfg, keeping values the text does not set.
func Decode(text string, cfg *Config) error {
	md, err := toml.Decode(text, cfg)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key: %s", undecoded[0])
	}
	return cfg.Validate()
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Playback.MinTickMS < 0 {
		return fmt.Errorf("playback.min_tick_ms must not be negative")
	}
	if len(c.Playback.AdvanceKeys) == 0 {
		return fmt.Errorf("playback.advance_keys must not be empty")
	}
	switch c.Server.Store {
	case StoreFile, StoreRedis, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("server.store: unknown backend %q (must be 'file', 'redis', 'mongo' or 'memory')", c.Server.Store)
	}
	return nil
}
