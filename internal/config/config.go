// Package config loads and writes the airboard TOML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file inside the data directory.
const FileName = "config.toml"

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid config")

// Config holds every tunable of both whiteboard programs.
type Config struct {
	Camera   CameraConfig   `toml:"camera"`
	Detector DetectorConfig `toml:"detector"`
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
}

// CameraConfig controls the capture device and loop pacing.
type CameraConfig struct {
	Device          int `toml:"device"`
	Width           int `toml:"width"`
	Height          int `toml:"height"`
	FrameIntervalMs int `toml:"frame_interval_ms"`
	StopTimeoutMs   int `toml:"stop_timeout_ms"`
}

// DetectorConfig configures the hand landmark service.
type DetectorConfig struct {
	// Script is the path to the landmark service. Empty means search the usual locations.
	Script          string  `toml:"script"`
	Python          string  `toml:"python"`
	MaxHands        int     `toml:"max_hands"`
	MinConfidence   float64 `toml:"min_detection_confidence"`
	MinTrackingConf float64 `toml:"min_tracking_confidence"`
}

// ServerConfig configures the optional local preview server.
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// StoreConfig locates the settings database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Camera: CameraConfig{
			Device:          0,
			Width:           640,
			Height:          480,
			FrameIntervalMs: 10,
			StopTimeoutMs:   1000,
		},
		Detector: DetectorConfig{
			MaxHands:        2,
			MinConfidence:   0.5,
			MinTrackingConf: 0.5,
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8090",
		},
	}
}

// Validate checks that every value is within its supported range.
func (c *Config) Validate() error {
	var problems []string

	if c.Camera.Device < 0 {
		problems = append(problems, "camera.device must not be negative")
	}
	if c.Camera.Width < 160 || c.Camera.Width > 4096 {
		problems = append(problems, "camera.width must be between 160 and 4096")
	}
	if c.Camera.Height < 120 || c.Camera.Height > 4096 {
		problems = append(problems, "camera.height must be between 120 and 4096")
	}
	if c.Camera.FrameIntervalMs < 1 || c.Camera.FrameIntervalMs > 1000 {
		problems = append(problems, "camera.frame_interval_ms must be between 1 and 1000")
	}
	if c.Camera.StopTimeoutMs < 1 {
		problems = append(problems, "camera.stop_timeout_ms must be positive")
	}
	if c.Detector.MaxHands < 1 || c.Detector.MaxHands > 4 {
		problems = append(problems, "detector.max_hands must be between 1 and 4")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		problems = append(problems, "detector.min_detection_confidence must be between 0 and 1")
	}
	if c.Detector.MinTrackingConf < 0 || c.Detector.MinTrackingConf > 1 {
		problems = append(problems, "detector.min_tracking_confidence must be between 0 and 1")
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		problems = append(problems, "server.addr is required when the server is enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalid, problems)
	}
	return nil
}

// DataDir returns ~/.airboard, the home of the config file and settings database.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".airboard"), nil
}

// Load reads the config file at path, writing one with defaults first if it
// does not exist yet. Fields missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		log.Printf("Initializing config at %s", path)
		if err := Write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("stat config: %w", err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Write encodes cfg as TOML at path, creating parent directories as needed.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
