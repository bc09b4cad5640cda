package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quocvuong92/pve-cli/internal/constants"
)

// ConfigFileName is the name of the config file
const ConfigFileName = "config.yaml"

// FileConfig represents the configuration file structure
type FileConfig struct {
	// Connection settings
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	APIToken string `yaml:"api_token,omitempty"`
	Insecure bool   `yaml:"insecure,omitempty"`

	// Local storage
	DataDir    string `yaml:"data_dir,omitempty"`
	SchemaFile string `yaml:"schema_file,omitempty"`

	// Task waiting
	Tasks *TasksConfig `yaml:"tasks,omitempty"`

	// Default flags
	Defaults *DefaultsConfig `yaml:"defaults,omitempty"`
}

// TasksConfig holds --wait polling settings
type TasksConfig struct {
	Poll    time.Duration `yaml:"poll,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// DefaultsConfig holds default flag values
type DefaultsConfig struct {
	OnlyResult bool `yaml:"only_result,omitempty"`
	Debug      bool `yaml:"debug,omitempty"`
}

// GetConfigPaths returns the paths to check for config files (in order of priority)
func GetConfigPaths() []string {
	var paths []string

	// 1. Current directory
	paths = append(paths, filepath.Join(".", "."+constants.AppName, ConfigFileName))

	// 2. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, constants.AppName, ConfigFileName))
	}

	// 3. Home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", constants.AppName, ConfigFileName))
	}

	return paths
}

// LoadConfigFile attempts to load configuration from a file
func LoadConfigFile() (*FileConfig, error) {
	paths := GetConfigPaths()

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return loadConfigFromPath(path)
		}
	}

	// No config file found, return empty config
	return &FileConfig{}, nil
}

// loadConfigFromPath loads config from a specific path
func loadConfigFromPath(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &cfg, nil
}

// ApplyFileConfig applies file configuration to the main Config
// File config has lower priority than environment variables and CLI flags
func (c *Config) ApplyFileConfig(fc *FileConfig) {
	if fc == nil {
		return
	}

	if c.Host == "" && fc.Host != "" {
		c.Host = fc.Host
	}
	if c.Port == 0 && fc.Port != 0 {
		c.Port = fc.Port
	}
	if c.APIToken == "" && fc.APIToken != "" {
		c.APIToken = fc.APIToken
	}
	if fc.Insecure {
		c.InsecureSkipVerify = true
	}
	if c.DataDir == "" && fc.DataDir != "" {
		c.DataDir = fc.DataDir
	}
	if c.SchemaFile == "" && fc.SchemaFile != "" {
		c.SchemaFile = fc.SchemaFile
	}

	if fc.Tasks != nil {
		if c.TaskPoll == 0 && fc.Tasks.Poll > 0 {
			c.TaskPoll = fc.Tasks.Poll
		}
		if c.TaskTimeout == 0 && fc.Tasks.Timeout > 0 {
			c.TaskTimeout = fc.Tasks.Timeout
		}
	}

	// Only "true" values can be applied, an unset flag and a false flag look the same
	if fc.Defaults != nil {
		if fc.Defaults.OnlyResult && !c.OnlyResult {
			c.OnlyResult = true
		}
		if fc.Defaults.Debug && !c.Debug {
			c.Debug = true
		}
	}
}

// CreateDefaultConfigFile creates a default config file at the user config directory
func CreateDefaultConfigFile() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, constants.AppName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, fmt.Errorf("config file already exists at %s", path)
	}

	defaultConfig := `# pve-cli configuration
# Location: ~/.config/pve-cli/config.yaml

# Proxmox VE host, optionally host:port
# host: pve1.example.com
# port: 8006

# API token in the form user@realm!tokenid=secret
# api_token: root@pam!cli=00000000-0000-0000-0000-000000000000

# Skip TLS certificate verification (self-signed certificates)
# insecure: true

# Use a local schema document instead of downloading apidoc.js
# schema_file: /path/to/apidoc.json

# Task polling for --wait
# tasks:
#   poll: 1s
#   timeout: 30s

# Default flags for the shell
# defaults:
#   only_result: false
#   debug: false
`

	if err := os.WriteFile(path, []byte(defaultConfig), 0600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}
