package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
)

const ProductName = "psmux"

type Config struct {
	InstallDir  string            `json:"install_dir" env:"PSMUX_INSTALL_DIR"`
	DataDir     string            `json:"data_dir" env:"PSMUX_DATA_DIR"`
	Shutdown    ShutdownConfig    `json:"shutdown"`
	Environment EnvironmentConfig `json:"environment"`
	Data        DataConfig        `json:"data"`
	Logging     LoggingConfig     `json:"logging"`
}

type ShutdownConfig struct {
	// ProcessNames holds the current executable name first, then legacy aliases.
	ProcessNames  []string `json:"process_names" env:"PSMUX_UNINSTALL_PROCESS_NAMES"`
	StopCommand   []string `json:"stop_command" env:"PSMUX_UNINSTALL_STOP_COMMAND"`
	StopTimeoutMS int      `json:"stop_timeout_ms" env:"PSMUX_UNINSTALL_STOP_TIMEOUT_MS"`
	GracePeriodMS int      `json:"grace_period_ms" env:"PSMUX_UNINSTALL_GRACE_PERIOD_MS"`
}

type EnvironmentConfig struct {
	PathVar string `json:"path_var" env:"PSMUX_UNINSTALL_PATH_VAR"`
	// EnvFile is the user-scoped store on platforms without a registry.
	EnvFile string `json:"env_file" env:"PSMUX_UNINSTALL_ENV_FILE"`
}

type DataConfig struct {
	PromptTimeoutMS int `json:"prompt_timeout_ms" env:"PSMUX_UNINSTALL_PROMPT_TIMEOUT_MS"`
}

type LoggingConfig struct {
	Level     string `json:"level" env:"PSMUX_UNINSTALL_LOG_LEVEL"`
	File      string `json:"file" env:"PSMUX_UNINSTALL_LOG_FILE"`
	MaxSizeMB int    `json:"max_size_mb" env:"PSMUX_UNINSTALL_LOG_MAX_SIZE_MB"`
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// DefaultInstallDir is the per-user application-data location the installer writes to.
func DefaultInstallDir() string {
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, ProductName)
		}
		return filepath.Join(homeDir(), "AppData", "Local", ProductName)
	}
	return filepath.Join(homeDir(), ".local", "share", ProductName)
}

func DefaultDataDir() string {
	return filepath.Join(homeDir(), "."+ProductName)
}

func defaultProcessNames() []string {
	if runtime.GOOS == "windows" {
		return []string{"psmux.exe", "pmux.exe", "tmux.exe"}
	}
	return []string{"psmux", "pmux"}
}

func defaultPathVar() string {
	if runtime.GOOS == "windows" {
		return "Path"
	}
	return "PATH"
}

func DefaultConfig() *Config {
	return &Config{
		InstallDir: DefaultInstallDir(),
		DataDir:    DefaultDataDir(),
		Shutdown: ShutdownConfig{
			ProcessNames:  defaultProcessNames(),
			StopCommand:   []string{"kill-server"},
			StopTimeoutMS: 5000,
			GracePeriodMS: 1000,
		},
		Environment: EnvironmentConfig{
			PathVar: defaultPathVar(),
			EnvFile: filepath.Join(homeDir(), ".config", "environment.d", ProductName+".conf"),
		},
		Data: DataConfig{
			PromptTimeoutMS: 0,
		},
		Logging: LoggingConfig{
			Level:     "warn",
			File:      "",
			MaxSizeMB: 5,
		},
	}
}

// LoadConfig returns defaults overlaid with the JSON file at path (if any) and then the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := unmarshalConfigStrict(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshalConfigStrict(data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return err
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("invalid config: trailing JSON content")
		}
		return err
	}
	return nil
}

func (c *Config) StopTimeout() time.Duration {
	return time.Duration(c.Shutdown.StopTimeoutMS) * time.Millisecond
}

func (c *Config) GracePeriod() time.Duration {
	return time.Duration(c.Shutdown.GracePeriodMS) * time.Millisecond
}

func (c *Config) PromptTimeout() time.Duration {
	return time.Duration(c.Data.PromptTimeoutMS) * time.Millisecond
}
