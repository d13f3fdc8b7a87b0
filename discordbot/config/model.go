package config

import (
	"time"
)

// Default configuration values
const (
	DefaultCloneDelay  = time.Second
	DefaultPresetsPath = "role_presets.json"
	DefaultPurgeMax    = 100
	DefaultLockTTL     = 30 * time.Minute
	DefaultLogLevel    = "info"
)

// Redis connection part of configuration, empty address disables redis
type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Log output configuration
type Log struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Metrics exporter configuration, empty address disables exporter
type Metrics struct {
	Address string `yaml:"address"`
}

// Private part of configuration
type Private struct {
	Token   string   `yaml:"token"`
	Guilds  []string `yaml:"guilds"`
	Presets string   `yaml:"presets"`
	Redis   Redis    `yaml:"redis"`
	Log     Log      `yaml:"log"`
	Metrics Metrics  `yaml:"metrics"`
}

// Clone pipeline configuration
type Clone struct {
	Delay   time.Duration `yaml:"delay"`
	Reason  string        `yaml:"reason"`
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// Purge command configuration
type Purge struct {
	Max int `yaml:"max"`
}

// Root of configuration
type Root struct {
	Private Private `yaml:"private"`
	Clone   Clone   `yaml:"clone"`
	Purge   Purge   `yaml:"purge"`
}

// Defaults fills unset values
func (root *Root) Defaults() {
	if root.Clone.Delay <= 0 {
		root.Clone.Delay = DefaultCloneDelay
	}

	if root.Clone.LockTTL <= 0 {
		root.Clone.LockTTL = DefaultLockTTL
	}

	if root.Private.Presets == "" {
		root.Private.Presets = DefaultPresetsPath
	}

	if root.Private.Log.Level == "" {
		root.Private.Log.Level = DefaultLogLevel
	}

	if root.Purge.Max <= 0 || root.Purge.Max > DefaultPurgeMax {
		root.Purge.Max = DefaultPurgeMax
	}
}
