// Package config loads wintest settings from an INI file.
// Every key has a default, so a missing file is not an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mobile-next/wintest/gate"
	"gopkg.in/ini.v1"
)

const (
	// EnvConfigPath overrides the default config file location.
	EnvConfigPath = "WINTEST_CONFIG"

	DefaultTypeInterval  = 10 * time.Millisecond
	DefaultMaxDelay      = 30 * time.Second
	DefaultMaxRepeat     = 100
	DefaultLaunchWait    = 1 * time.Second
	DefaultActivateWait  = 500 * time.Millisecond
	DefaultListenAddress = "localhost:12000"
	DefaultJpegQuality   = 90
)

// Config holds runtime configuration.
type Config struct {
	Gate    GateConfig
	Input   InputConfig
	Capture CaptureConfig
	Apps    AppsConfig
	Server  ServerConfig

	// Path is the file the configuration was read from, empty if none existed.
	Path string
}

type GateConfig struct {
	SettleDelay   time.Duration // [gate] settle_delay
	DefaultTarget string        // [gate] default_target
}

type InputConfig struct {
	TypeInterval time.Duration // [input] type_interval
	MaxDelay     time.Duration // [input] max_delay
	MaxRepeat    int           // [input] max_repeat
}

type CaptureConfig struct {
	OutputDir   string // [capture] output_dir
	Format      string // [capture] format
	JpegQuality int    // [capture] jpeg_quality
}

type AppsConfig struct {
	LaunchWait              time.Duration // [apps] launch_wait
	ActivateWait            time.Duration // [apps] activate_wait
	TerminateLaunchedOnExit bool          // [apps] terminate_launched_on_exit
}

type ServerConfig struct {
	Listen string // [server] listen
	CORS   bool   // [server] cors
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Gate: GateConfig{
			SettleDelay: gate.DefaultSettleDelay,
		},
		Input: InputConfig{
			TypeInterval: DefaultTypeInterval,
			MaxDelay:     DefaultMaxDelay,
			MaxRepeat:    DefaultMaxRepeat,
		},
		Capture: CaptureConfig{
			OutputDir:   ".",
			Format:      "png",
			JpegQuality: DefaultJpegQuality,
		},
		Apps: AppsConfig{
			LaunchWait:   DefaultLaunchWait,
			ActivateWait: DefaultActivateWait,
		},
		Server: ServerConfig{
			Listen: DefaultListenAddress,
		},
	}
}

// DefaultPath returns <user config dir>/wintest/config.ini, honoring WINTEST_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "wintest.ini"
	}
	return filepath.Join(dir, "wintest", "config.ini")
}

// Load reads the file at path. An empty path means DefaultPath(). A missing
// file yields defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("error reading config %s: %w", path, err)
	}

	file, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("error parsing config %s: %w", path, err)
	}

	apply(&cfg, file)
	cfg.Path = path
	return cfg, nil
}

// Parse reads configuration from raw INI data.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	file, err := ini.Load(data)
	if err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	apply(&cfg, file)
	return cfg, nil
}

func apply(cfg *Config, file *ini.File) {
	gs := file.Section("gate")
	cfg.Gate.SettleDelay = gate.ClampSettleDelay(gs.Key("settle_delay").MustDuration(cfg.Gate.SettleDelay))
	cfg.Gate.DefaultTarget = gs.Key("default_target").MustString(cfg.Gate.DefaultTarget)

	is := file.Section("input")
	cfg.Input.TypeInterval = is.Key("type_interval").MustDuration(cfg.Input.TypeInterval)
	cfg.Input.MaxDelay = is.Key("max_delay").MustDuration(cfg.Input.MaxDelay)
	if cfg.Input.MaxDelay <= 0 {
		cfg.Input.MaxDelay = DefaultMaxDelay
	}
	cfg.Input.MaxRepeat = is.Key("max_repeat").MustInt(cfg.Input.MaxRepeat)
	if cfg.Input.MaxRepeat <= 0 {
		cfg.Input.MaxRepeat = DefaultMaxRepeat
	}

	cs := file.Section("capture")
	cfg.Capture.OutputDir = cs.Key("output_dir").MustString(cfg.Capture.OutputDir)
	cfg.Capture.Format = cs.Key("format").MustString(cfg.Capture.Format)
	cfg.Capture.JpegQuality = cs.Key("jpeg_quality").MustInt(cfg.Capture.JpegQuality)

	as := file.Section("apps")
	cfg.Apps.LaunchWait = as.Key("launch_wait").MustDuration(cfg.Apps.LaunchWait)
	cfg.Apps.ActivateWait = as.Key("activate_wait").MustDuration(cfg.Apps.ActivateWait)
	cfg.Apps.TerminateLaunchedOnExit = as.Key("terminate_launched_on_exit").MustBool(cfg.Apps.TerminateLaunchedOnExit)

	ss := file.Section("server")
	cfg.Server.Listen = ss.Key("listen").MustString(cfg.Server.Listen)
	cfg.Server.CORS = ss.Key("cors").MustBool(cfg.Server.CORS)
}

