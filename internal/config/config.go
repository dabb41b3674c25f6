// Package config handles configuration, presets and the auth token for gatewaychat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/diogo/gatewaychat/internal/chat"
	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/gateway"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

// AppDirName is the directory under $HOME holding all user data
const AppDirName = ".gatewaychat"

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// GatewayConfig selects and tunes the AI gateway client
type GatewayConfig struct {
	Provider       string `json:"provider"` // puter, openai or anthropic
	BaseURL        string `json:"base_url,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	// Driver pins the puter driver instead of deriving it from the model.
	Driver string `json:"driver,omitempty"`
}

// TemperatureConfig controls when temperature is sent and which provider
// errors count as a rejection of it.
type TemperatureConfig struct {
	ProviderDefault float64  `json:"provider_default"`
	RejectionCodes  []string `json:"rejection_codes"`
	RejectionParams []string `json:"rejection_params"`
	OmitForModels   []string `json:"omit_for_models,omitempty"`
}

// StorageConfig selects the persistence backend
type StorageConfig struct {
	Backend string `json:"backend"` // file, sqlite or memory
	Dir     string `json:"dir,omitempty"`
}

// Config represents the user configuration
type Config struct {
	DefaultModel       string  `json:"default_model"`
	DefaultTemperature float64 `json:"default_temperature"`
	LogLevel           string  `json:"log_level"`
	// LogFile is where logs are written; "stderr" writes to the terminal.
	LogFile string `json:"log_file,omitempty"`
	// Verbose enables detailed output during one-shot sends.
	Verbose         bool              `json:"verbose"`
	CopyToClipboard bool              `json:"copy_to_clipboard"`
	TUITheme        string            `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig    `json:"markdown,omitempty"`
	Gateway         GatewayConfig     `json:"gateway"`
	Temperature     TemperatureConfig `json:"temperature"`
	Storage         StorageConfig     `json:"storage"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	policy := apierrors.DefaultTemperaturePolicy()
	return Config{
		DefaultModel:       models.DefaultModel,
		DefaultTemperature: models.DefaultTemperature,
		LogLevel:           "info",
		Verbose:            false,
		CopyToClipboard:    false,
		TUITheme:           "tokyonight",
		Markdown:           DefaultMarkdownConfig(),
		Gateway: GatewayConfig{
			Provider:       gateway.ProviderPuter,
			TimeoutSeconds: 300,
		},
		Temperature: TemperatureConfig{
			ProviderDefault: models.ProviderDefaultTemperature,
			RejectionCodes:  policy.Codes,
			RejectionParams: policy.Params,
		},
		Storage: StorageConfig{Backend: history.BackendFile},
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, AppDirName)
	return configDir, nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// Use 0o700 for sensitive directories (contains the token and history)
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// StorageDir returns the directory the history backend lives in
func (c Config) StorageDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	return GetConfigDir()
}

// LogPath returns the log destination. An empty LogFile means the default
// file under the config directory.
func (c Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "gatewaychat.log"), nil
}

// DefaultSelection returns the selection used before any settings are stored
func (c Config) DefaultSelection() models.Selection {
	sel := models.DefaultSelection()
	if c.DefaultModel != "" {
		sel.Model = c.DefaultModel
	}
	if models.ValidTemperature(c.DefaultTemperature) {
		sel.Temperature = c.DefaultTemperature
	}
	return sel
}

// TemperatureRules converts the temperature section for the orchestrator
func (c Config) TemperatureRules() chat.TemperatureRules {
	rules := chat.DefaultTemperatureRules()
	t := c.Temperature
	if models.ValidTemperature(t.ProviderDefault) {
		rules.ProviderDefault = t.ProviderDefault
	}
	if len(t.RejectionCodes) > 0 {
		rules.Rejection.Codes = t.RejectionCodes
	}
	if len(t.RejectionParams) > 0 {
		rules.Rejection.Params = t.RejectionParams
	}
	rules.OmitForModels = t.OmitForModels
	return rules
}

// GatewayClientConfig builds the gateway config for the given token
func (c Config) GatewayClientConfig(token string) gateway.Config {
	return gateway.Config{
		Provider: c.Gateway.Provider,
		BaseURL:  c.Gateway.BaseURL,
		Driver:   c.Gateway.Driver,
		Token:    token,
		Timeout:  time.Duration(c.Gateway.TimeoutSeconds) * time.Second,
	}
}

// Providers returns the supported gateway providers
func Providers() []string {
	return []string{
		gateway.ProviderPuter,
		gateway.ProviderOpenAI,
		gateway.ProviderAnthropic,
	}
}
