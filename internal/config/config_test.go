package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diogo/gatewaychat/internal/gateway"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

// setupTestHome points HOME at a temp dir for the duration of the test
func setupTestHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	return tmpDir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DefaultModel != models.DefaultModel {
		t.Errorf("DefaultModel = %s, want %s", cfg.DefaultModel, models.DefaultModel)
	}
	if cfg.DefaultTemperature != models.DefaultTemperature {
		t.Errorf("DefaultTemperature = %v, want %v", cfg.DefaultTemperature, models.DefaultTemperature)
	}
	if cfg.Gateway.Provider != gateway.ProviderPuter {
		t.Errorf("Gateway.Provider = %s, want puter", cfg.Gateway.Provider)
	}
	if cfg.Storage.Backend != history.BackendFile {
		t.Errorf("Storage.Backend = %s, want file", cfg.Storage.Backend)
	}
	if cfg.Temperature.ProviderDefault != 1.0 {
		t.Errorf("Temperature.ProviderDefault = %v, want 1.0", cfg.Temperature.ProviderDefault)
	}
	if len(cfg.Temperature.RejectionParams) == 0 || cfg.Temperature.RejectionParams[0] != "temperature" {
		t.Errorf("RejectionParams = %v", cfg.Temperature.RejectionParams)
	}
}

func TestGetConfigDir(t *testing.T) {
	home := setupTestHome(t)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() returned error: %v", err)
	}
	if dir != filepath.Join(home, ".gatewaychat") {
		t.Errorf("GetConfigDir() = %s", dir)
	}
}

func TestEnsureConfigDir(t *testing.T) {
	setupTestHome(t)

	dir, err := EnsureConfigDir()
	if err != nil {
		t.Fatalf("EnsureConfigDir() returned error: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Directory does not exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("Path is not a directory")
	}
	if perm := info.Mode().Perm(); perm != 0o700 {
		t.Errorf("Directory permissions = %o, want 700", perm)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	setupTestHome(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.DefaultModel != models.DefaultModel {
		t.Errorf("DefaultModel = %s, want default", cfg.DefaultModel)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := setupTestHome(t)

	cfg := DefaultConfig()
	cfg.DefaultModel = "claude-sonnet-4"
	cfg.Storage.Backend = history.BackendSQLite
	cfg.Temperature.OmitForModels = []string{"o3"}

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	configPath := filepath.Join(tmpDir, ".gatewaychat", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var saved Config
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Failed to parse saved config: %v", err)
	}
	if saved.DefaultModel != "claude-sonnet-4" {
		t.Errorf("DefaultModel = %s", saved.DefaultModel)
	}
	if saved.Storage.Backend != history.BackendSQLite {
		t.Errorf("Storage.Backend = %s", saved.Storage.Backend)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("File permissions = %o, want 600", perm)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := setupTestHome(t)

	configDir := filepath.Join(tmpDir, ".gatewaychat")
	_ = os.MkdirAll(configDir, 0o700)
	partial := `{"default_model": "o3", "gateway": {"provider": "openai", "timeout_seconds": 30}}`
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(partial), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.DefaultModel != "o3" {
		t.Errorf("DefaultModel = %s, want o3", cfg.DefaultModel)
	}
	if cfg.Gateway.Provider != gateway.ProviderOpenAI {
		t.Errorf("Gateway.Provider = %s, want openai", cfg.Gateway.Provider)
	}
	if cfg.DefaultTemperature != models.DefaultTemperature {
		t.Errorf("DefaultTemperature = %v, should keep default", cfg.DefaultTemperature)
	}
	if cfg.Storage.Backend != history.BackendFile {
		t.Errorf("Storage.Backend = %s, should keep default", cfg.Storage.Backend)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := setupTestHome(t)

	configDir := filepath.Join(tmpDir, ".gatewaychat")
	_ = os.MkdirAll(configDir, 0o700)
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"invalid": json content`), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Error("LoadConfig() with invalid JSON should return error")
	}
	if cfg.DefaultModel != models.DefaultModel {
		t.Errorf("DefaultModel = %s, want default on error", cfg.DefaultModel)
	}
}

func TestConfig_StorageDirAndLogPath(t *testing.T) {
	home := setupTestHome(t)
	cfg := DefaultConfig()

	dir, err := cfg.StorageDir()
	if err != nil || dir != filepath.Join(home, ".gatewaychat") {
		t.Errorf("StorageDir() = %s, %v", dir, err)
	}
	cfg.Storage.Dir = "/srv/chat"
	if dir, _ := cfg.StorageDir(); dir != "/srv/chat" {
		t.Errorf("StorageDir() = %s, want /srv/chat", dir)
	}

	path, err := cfg.LogPath()
	if err != nil || path != filepath.Join(home, ".gatewaychat", "gatewaychat.log") {
		t.Errorf("LogPath() = %s, %v", path, err)
	}
	cfg.LogFile = "stderr"
	if path, _ := cfg.LogPath(); path != "stderr" {
		t.Errorf("LogPath() = %s, want stderr", path)
	}
}

func TestConfig_DefaultSelection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultModel = "gpt-4.1"
	cfg.DefaultTemperature = 0.4

	sel := cfg.DefaultSelection()
	if sel.Model != "gpt-4.1" || sel.Temperature != 0.4 {
		t.Errorf("DefaultSelection() = %+v", sel)
	}

	cfg.DefaultModel = ""
	cfg.DefaultTemperature = 9
	sel = cfg.DefaultSelection()
	if sel.Model != models.DefaultModel || sel.Temperature != models.DefaultTemperature {
		t.Errorf("invalid values should fall back, got %+v", sel)
	}
}

func TestConfig_TemperatureRules(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Temperature = TemperatureConfig{
		ProviderDefault: 0.8,
		RejectionCodes:  []string{"bad_param"},
		OmitForModels:   []string{"o3"},
	}

	rules := cfg.TemperatureRules()
	if rules.ProviderDefault != 0.8 {
		t.Errorf("ProviderDefault = %v, want 0.8", rules.ProviderDefault)
	}
	if len(rules.Rejection.Codes) != 1 || rules.Rejection.Codes[0] != "bad_param" {
		t.Errorf("Codes = %v", rules.Rejection.Codes)
	}
	// empty params keep the default
	if len(rules.Rejection.Params) == 0 {
		t.Error("Params should fall back to defaults")
	}
	if len(rules.OmitForModels) != 1 {
		t.Errorf("OmitForModels = %v", rules.OmitForModels)
	}
}

func TestConfig_GatewayClientConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gateway.BaseURL = "http://localhost:4100"
	cfg.Gateway.Driver = "openrouter"
	cfg.Gateway.TimeoutSeconds = 45

	gc := cfg.GatewayClientConfig("tok")
	if gc.Provider != gateway.ProviderPuter || gc.Token != "tok" || gc.Driver != "openrouter" {
		t.Errorf("GatewayClientConfig() = %+v", gc)
	}
	if gc.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", gc.Timeout)
	}
}

func TestProviders(t *testing.T) {
	if len(Providers()) != 3 {
		t.Errorf("Providers() = %v", Providers())
	}
}
