package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// createTempConfigFile creates a temporary config file for testing
func createTempConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	configDir := filepath.Join(dir, ".pve-cli")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	return configPath
}

// =============================================================================
// loadConfigFromPath Tests
// =============================================================================

func TestLoadConfigFromPath_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
host: pve1.example.com
port: 8006
api_token: root@pam!cli=4f2b6c2e-5b8a-4a43-9d2f-3b0f6a8e9c11
insecure: true
data_dir: /var/lib/pve-cli
schema_file: /tmp/apidoc.json

tasks:
  poll: 2s
  timeout: 1m

defaults:
  only_result: true
  debug: true
`
	configPath := createTempConfigFile(t, tmpDir, configContent)

	cfg, err := loadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("loadConfigFromPath() error = %v", err)
	}

	if cfg.Host != "pve1.example.com" {
		t.Errorf("Host = %q, want %q", cfg.Host, "pve1.example.com")
	}
	if cfg.Port != 8006 {
		t.Errorf("Port = %d, want 8006", cfg.Port)
	}
	if !cfg.Insecure {
		t.Error("Insecure should be true")
	}
	if cfg.SchemaFile != "/tmp/apidoc.json" {
		t.Errorf("SchemaFile = %q", cfg.SchemaFile)
	}
	if cfg.Tasks == nil {
		t.Fatal("Tasks should not be nil")
	}
	if cfg.Tasks.Poll != 2*time.Second {
		t.Errorf("Tasks.Poll = %v, want 2s", cfg.Tasks.Poll)
	}
	if cfg.Tasks.Timeout != time.Minute {
		t.Errorf("Tasks.Timeout = %v, want 1m", cfg.Tasks.Timeout)
	}
	if cfg.Defaults == nil || !cfg.Defaults.OnlyResult || !cfg.Defaults.Debug {
		t.Errorf("Defaults = %+v, want only_result and debug set", cfg.Defaults)
	}
}

func TestLoadConfigFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := createTempConfigFile(t, tmpDir, "host: [unclosed")

	_, err := loadConfigFromPath(configPath)
	if err == nil {
		t.Error("loadConfigFromPath() should return error for invalid YAML")
	}
}

func TestLoadConfigFromPath_NotFound(t *testing.T) {
	_, err := loadConfigFromPath("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("loadConfigFromPath() should return error for missing file")
	}
}

func TestLoadConfigFromPath_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := createTempConfigFile(t, tmpDir, "")

	cfg, err := loadConfigFromPath(configPath)
	if err != nil {
		t.Fatalf("loadConfigFromPath() error = %v", err)
	}
	if cfg.Host != "" || cfg.Tasks != nil {
		t.Errorf("empty file should give empty config, got %+v", cfg)
	}
}

// =============================================================================
// LoadConfigFile / GetConfigPaths Tests
// =============================================================================

func TestLoadConfigFile_NoConfigFile(t *testing.T) {
	runInTempDir(t)

	cfg, err := LoadConfigFile()
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg == nil {
		t.Fatal("LoadConfigFile() should return empty config, not nil")
	}
	if cfg.Host != "" {
		t.Errorf("Host = %q, want empty", cfg.Host)
	}
}

func TestLoadConfigFile_CurrentDirectory(t *testing.T) {
	tmpDir := runInTempDir(t)
	createTempConfigFile(t, tmpDir, "host: local-pve\n")

	cfg, err := LoadConfigFile()
	if err != nil {
		t.Fatalf("LoadConfigFile() error = %v", err)
	}
	if cfg.Host != "local-pve" {
		t.Errorf("Host = %q, want %q", cfg.Host, "local-pve")
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := GetConfigPaths()
	if len(paths) == 0 {
		t.Fatal("GetConfigPaths() returned no paths")
	}
	if paths[0] != filepath.Join(".", ".pve-cli", ConfigFileName) {
		t.Errorf("first path = %q, want current directory config", paths[0])
	}
	for _, p := range paths {
		if !strings.HasSuffix(p, ConfigFileName) {
			t.Errorf("path %q should end with %s", p, ConfigFileName)
		}
	}
}

// =============================================================================
// ApplyFileConfig Tests
// =============================================================================

func TestConfig_ApplyFileConfig_Nil(t *testing.T) {
	cfg := NewConfig()
	cfg.Host = "keep"
	cfg.ApplyFileConfig(nil)
	if cfg.Host != "keep" {
		t.Errorf("Host = %q, want %q", cfg.Host, "keep")
	}
}

func TestConfig_ApplyFileConfig_NoOverwrite(t *testing.T) {
	cfg := NewConfig()
	cfg.Host = "flag-host"
	cfg.Port = 9000
	cfg.APIToken = "flag-token"
	cfg.TaskPoll = 3 * time.Second

	cfg.ApplyFileConfig(&FileConfig{
		Host:     "file-host",
		Port:     8006,
		APIToken: "file-token",
		Tasks:    &TasksConfig{Poll: time.Second, Timeout: time.Minute},
	})

	if cfg.Host != "flag-host" {
		t.Errorf("Host = %q, want flag value", cfg.Host)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want flag value", cfg.Port)
	}
	if cfg.APIToken != "flag-token" {
		t.Errorf("APIToken = %q, want flag value", cfg.APIToken)
	}
	if cfg.TaskPoll != 3*time.Second {
		t.Errorf("TaskPoll = %v, want flag value", cfg.TaskPoll)
	}
	if cfg.TaskTimeout != time.Minute {
		t.Errorf("TaskTimeout = %v, want file value", cfg.TaskTimeout)
	}
}

func TestConfig_ApplyFileConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	cfg.ApplyFileConfig(&FileConfig{
		Insecure: true,
		Defaults: &DefaultsConfig{OnlyResult: true},
	})

	if !cfg.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should be true")
	}
	if !cfg.OnlyResult {
		t.Error("OnlyResult should be true")
	}
	if cfg.Debug {
		t.Error("Debug should stay false")
	}
}

// =============================================================================
// CreateDefaultConfigFile Tests
// =============================================================================

func TestCreateDefaultConfigFile_Success(t *testing.T) {
	runInTempDir(t)

	path, err := CreateDefaultConfigFile()
	if err != nil {
		t.Fatalf("CreateDefaultConfigFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read created file: %v", err)
	}
	if !strings.Contains(string(data), "pve-cli configuration") {
		t.Error("default config should contain header comment")
	}

	// The template is all comments, so it must parse to an empty config
	cfg, err := loadConfigFromPath(path)
	if err != nil {
		t.Fatalf("default config should parse: %v", err)
	}
	if cfg.Host != "" {
		t.Errorf("Host = %q, want empty", cfg.Host)
	}
}

func TestCreateDefaultConfigFile_AlreadyExists(t *testing.T) {
	runInTempDir(t)

	if _, err := CreateDefaultConfigFile(); err != nil {
		t.Fatalf("first CreateDefaultConfigFile() error = %v", err)
	}
	if _, err := CreateDefaultConfigFile(); err == nil {
		t.Error("second CreateDefaultConfigFile() should fail")
	}
}
