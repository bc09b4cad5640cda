package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/quocvuong92/pve-cli/internal/constants"
)

// Environment variable names
const (
	// Connection settings
	EnvHost     = "PVE_HOST"
	EnvPort     = "PVE_PORT"
	EnvAPIToken = "PVE_API_TOKEN"
	EnvInsecure = "PVE_INSECURE"

	// Local storage
	EnvDataDir    = "PVE_CLI_DATA_DIR"
	EnvSchemaFile = "PVE_SCHEMA_FILE"
)

// Defaults - re-exported from constants for convenience
const (
	DefaultPort        = constants.DefaultPort
	DefaultTaskPoll    = constants.DefaultTaskPoll
	DefaultTaskTimeout = constants.DefaultTaskTimeout
)

// Errors
var (
	ErrHostNotFound = errors.New("Proxmox VE host not found. Set PVE_HOST or use --host flag")
	ErrInvalidPort  = errors.New("invalid port, must be between 1 and 65535")
)

// Config holds the application configuration
type Config struct {
	// Connection
	Host               string
	Port               int
	APIToken           string // user@realm!tokenid=secret
	InsecureSkipVerify bool

	// Local storage
	DataDir    string
	SchemaFile string // Offline schema document, skips download and cache

	// Task waiting
	TaskPoll    time.Duration
	TaskTimeout time.Duration

	// Flags
	Debug      bool
	OnlyResult bool   // Print only command results in the shell
	ScriptFile string // Run the shell on a script instead of interactively
}

// NewConfig creates a new Config with defaults
func NewConfig() *Config {
	return &Config{}
}

// Validate validates the configuration and loads from environment
func (c *Config) Validate() error {
	// Flags are already set, env fills the gaps, the config file comes last
	c.applyEnv()

	if fileConfig, err := LoadConfigFile(); err == nil {
		c.ApplyFileConfig(fileConfig)
	}
	// Errors loading config file are silently ignored - env vars and flags take precedence

	if c.Host == "" {
		return ErrHostNotFound
	}

	// Accept host:port in the host setting
	if host, port, err := net.SplitHostPort(c.Host); err == nil {
		c.Host = host
		if c.Port == 0 {
			p, err := strconv.Atoi(port)
			if err != nil {
				return ErrInvalidPort
			}
			c.Port = p
		}
	}

	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}

	if c.TaskPoll <= 0 {
		c.TaskPoll = DefaultTaskPoll
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = DefaultTaskTimeout
	}

	return c.ResolveDataDir()
}

// applyEnv fills settings not given by flags from the environment
func (c *Config) applyEnv() {
	if c.Host == "" {
		c.Host = strings.TrimSpace(os.Getenv(EnvHost))
	}
	if c.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv(EnvPort)); err == nil {
			c.Port = p
		}
	}
	if c.APIToken == "" {
		c.APIToken = strings.TrimSpace(os.Getenv(EnvAPIToken))
	}
	if !c.InsecureSkipVerify {
		if v, err := strconv.ParseBool(os.Getenv(EnvInsecure)); err == nil {
			c.InsecureSkipVerify = v
		}
	}
	if c.DataDir == "" {
		c.DataDir = os.Getenv(EnvDataDir)
	}
	if c.SchemaFile == "" {
		c.SchemaFile = os.Getenv(EnvSchemaFile)
	}
}

// ResolveDataDir picks the data directory and makes sure it exists.
// Settings that only need local files (aliases, history, token) call this
// without a full Validate.
func (c *Config) ResolveDataDir() error {
	if c.DataDir == "" {
		if dir := os.Getenv(EnvDataDir); dir != "" {
			c.DataDir = dir
		} else {
			dir, err := DefaultDataDir()
			if err != nil {
				return err
			}
			c.DataDir = dir
		}
	}
	if err := os.MkdirAll(c.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

// DefaultDataDir returns ~/.local/share/pve-cli
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", constants.AppName), nil
}

// DataPath returns the path of a file inside the data directory
func (c *Config) DataPath(name string) string {
	return filepath.Join(c.DataDir, name)
}

// Address returns host:port for display and cache keys
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// BaseURL returns the root URL of the Proxmox VE web service
func (c *Config) BaseURL() string {
	return "https://" + c.Address()
}
