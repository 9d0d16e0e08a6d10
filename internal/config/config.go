package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
)

const (
	EnvConfigPath = "LOCOMOTION_CONFIG"
	EnvLogLevel   = "LOCOMOTION_LOG_LEVEL"
	EnvFeedAddr   = "LOCOMOTION_FEED_ADDR"
	EnvTickRate   = "LOCOMOTION_TICK_HZ"

	defaultFeedAddr = ":8090"
	defaultTickHz   = 60
)

var ErrInvalid = errors.New("config: invalid")

// Config is the root configuration of the locomotion sandbox.
type Config struct {
	Log        LogConfig         `yaml:"log"`
	Locomotion locomotion.Config `yaml:"locomotion"`
	Navigation NavigationConfig  `yaml:"navigation"`
	Avatar     AvatarConfig      `yaml:"avatar"`
	Audio      AudioConfig       `yaml:"audio"`
	Sandbox    SandboxConfig     `yaml:"sandbox"`
	Feed       FeedConfig        `yaml:"feed"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	File        string `yaml:"file"`
	Development bool   `yaml:"development"`
}

type NavigationConfig struct {
	Zone     string     `yaml:"zone"`
	MeshFile string     `yaml:"mesh_file"`
	Grid     GridConfig `yaml:"grid"`
}

// GridConfig describes the flat floor used when no mesh file is given.
type GridConfig struct {
	Origin [3]float64 `yaml:"origin"`
	Cols   int        `yaml:"cols"`
	Rows   int        `yaml:"rows"`
	Cell   float64    `yaml:"cell"`
}

type AvatarConfig struct {
	EyeHeight float64    `yaml:"eye_height"`
	Spawn     [3]float64 `yaml:"spawn"`
	CanFly    bool       `yaml:"can_fly"`
	Mobile    bool       `yaml:"mobile"`
}

type AudioConfig struct {
	Enabled    bool    `yaml:"enabled"`
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
}

type SandboxConfig struct {
	TickHz          int     `yaml:"tick_hz"`
	SnapDegrees     float64 `yaml:"snap_degrees"`
	SpeedModifier   float64 `yaml:"speed_modifier"`
	WaypointSpacing float64 `yaml:"waypoint_spacing"`
}

type FeedConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns a configuration that validates as is.
func Default() *Config {
	return &Config{
		Log:        LogConfig{Level: "info", File: "locomotion.log"},
		Locomotion: locomotion.DefaultConfig(),
		Navigation: NavigationConfig{
			Zone: "character",
			Grid: GridConfig{Origin: [3]float64{-10, 0, -10}, Cols: 20, Rows: 20, Cell: 1},
		},
		Avatar: AvatarConfig{EyeHeight: 1.6, CanFly: true},
		Audio:  AudioConfig{SampleRate: 44100, Volume: 0.5},
		Sandbox: SandboxConfig{
			TickHz:          defaultTickHz,
			SnapDegrees:     45,
			SpeedModifier:   1,
			WaypointSpacing: 4,
		},
		Feed: FeedConfig{Addr: defaultFeedAddr},
	}
}

// Load reads a YAML file over the defaults. An empty path falls back to
// LOCOMOTION_CONFIG; with neither set the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	c.Feed.Addr = stringWithEnvFallback(c.Feed.Addr, EnvFeedAddr, defaultFeedAddr)
	c.Sandbox.TickHz = intWithEnvFallback(c.Sandbox.TickHz, EnvTickRate, defaultTickHz)
}

// TickInterval is the wall-clock length of one sandbox frame.
func (s SandboxConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickHz)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Locomotion.Validate(); err != nil {
		return fmt.Errorf("%w: locomotion: %v", ErrInvalid, err)
	}
	if c.Navigation.Zone == "" {
		return fmt.Errorf("%w: navigation zone is required", ErrInvalid)
	}
	if c.Navigation.MeshFile == "" {
		g := c.Navigation.Grid
		if g.Cols <= 0 || g.Rows <= 0 || g.Cell <= 0 {
			return fmt.Errorf("%w: navigation grid needs positive cols, rows and cell", ErrInvalid)
		}
	}
	if c.Avatar.EyeHeight <= 0 {
		return fmt.Errorf("%w: avatar eye height must be positive", ErrInvalid)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: audio sample rate must be positive", ErrInvalid)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio volume must be in [0, 1]", ErrInvalid)
	}
	if c.Sandbox.TickHz <= 0 || c.Sandbox.TickHz > 1000 {
		return fmt.Errorf("%w: tick rate must be in (0, 1000] Hz", ErrInvalid)
	}
	if c.Feed.Enabled && c.Feed.Addr == "" {
		return fmt.Errorf("%w: feed address is required when the feed is enabled", ErrInvalid)
	}
	return nil
}

// stringWithEnvFallback resolves config -> env -> default.
func stringWithEnvFallback(value, envVar, fallback string) string {
	if value != "" {
		return value
	}
	if env := os.Getenv(envVar); env != "" {
		return env
	}
	return fallback
}

func intWithEnvFallback(value int, envVar string, fallback int) int {
	if value > 0 {
		return value
	}
	if env := os.Getenv(envVar); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
