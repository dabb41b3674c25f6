package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/diogo/gatewaychat/internal/models"
)

// PresetConfig stores the user's presets
type PresetConfig struct {
	Presets []models.Preset `json:"presets"`
}

// GetPresetsPath returns the path to the presets file
func GetPresetsPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "presets.json"), nil
}

// loadUserPresets reads presets.json without merging the built-ins
func loadUserPresets() (*PresetConfig, error) {
	path, err := GetPresetsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &PresetConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var config PresetConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse presets: %w", err)
	}
	return &config, nil
}

// LoadPresets returns the built-in presets with the user's presets merged
// over them by id.
func LoadPresets() ([]models.Preset, error) {
	config, err := loadUserPresets()
	if err != nil {
		return models.DefaultPresets(), err
	}
	return mergePresets(models.DefaultPresets(), config.Presets), nil
}

// SavePresets saves the user's presets
func SavePresets(config *PresetConfig) error {
	path, err := GetPresetsPath()
	if err != nil {
		return err
	}

	if _, err := EnsureConfigDir(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	return os.WriteFile(path, data, 0o600)
}

// GetPreset returns a preset by id
func GetPreset(id string) (models.Preset, error) {
	presets, err := LoadPresets()
	if err != nil {
		return models.Preset{}, err
	}

	if p, ok := models.PresetByID(presets, id); ok {
		return p, nil
	}
	return models.Preset{}, fmt.Errorf("preset '%s' not found", id)
}

// AddPreset adds a user preset. A built-in id is overridden.
func AddPreset(preset models.Preset) error {
	if err := ValidatePreset(preset); err != nil {
		return err
	}

	config, err := loadUserPresets()
	if err != nil {
		return err
	}

	for _, p := range config.Presets {
		if p.ID == preset.ID {
			return fmt.Errorf("preset '%s' already exists", preset.ID)
		}
	}

	config.Presets = append(config.Presets, preset)
	return SavePresets(config)
}

// DeletePreset removes a user preset. Built-ins cannot be deleted, only
// overridden.
func DeletePreset(id string) error {
	config, err := loadUserPresets()
	if err != nil {
		return err
	}

	kept := make([]models.Preset, 0, len(config.Presets))
	found := false
	for _, p := range config.Presets {
		if p.ID == id {
			found = true
			continue
		}
		kept = append(kept, p)
	}

	if !found {
		if _, builtin := models.PresetByID(models.DefaultPresets(), id); builtin {
			return fmt.Errorf("cannot delete built-in preset '%s'", id)
		}
		return fmt.Errorf("preset '%s' not found", id)
	}

	config.Presets = kept
	return SavePresets(config)
}

func mergePresets(defaults, custom []models.Preset) []models.Preset {
	result := make([]models.Preset, len(defaults))
	copy(result, defaults)

	for _, cp := range custom {
		found := false
		for i, dp := range result {
			if dp.ID == cp.ID {
				result[i] = cp
				found = true
				break
			}
		}
		if !found {
			result = append(result, cp)
		}
	}

	return result
}

// Validation constants
const (
	MaxIDLength          = 50
	MaxDescriptionLength = 200
	MaxPromptLength      = 32 * 1024 // 32KB
)

// ValidatePreset validates a preset's fields
func ValidatePreset(p models.Preset) error {
	fieldErrors := make(map[string]string)

	if p.ID == "" {
		fieldErrors["id"] = "id is required"
	} else if len(p.ID) > MaxIDLength {
		fieldErrors["id"] = fmt.Sprintf("id too long (max %d characters)", MaxIDLength)
	} else if !isValidPresetID(p.ID) {
		fieldErrors["id"] = "id must contain only alphanumeric characters, underscores, and hyphens"
	}

	if p.Name == "" {
		fieldErrors["name"] = "name is required"
	}

	if len(p.Description) > MaxDescriptionLength {
		fieldErrors["description"] = fmt.Sprintf("description too long (max %d characters)", MaxDescriptionLength)
	}

	if len(p.SystemPrompt) > MaxPromptLength {
		fieldErrors["systemPrompt"] = fmt.Sprintf("system prompt too long (max %d characters)", MaxPromptLength)
	}

	if p.Temperature != nil && !models.ValidTemperature(*p.Temperature) {
		fieldErrors["temperature"] = fmt.Sprintf("temperature must be between %.0f and %.0f", models.MinTemperature, models.MaxTemperature)
	}

	if len(fieldErrors) > 0 {
		return fmt.Errorf("validation failed: %v", fieldErrors)
	}

	return nil
}

func isValidPresetID(id string) bool {
	for _, c := range id {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}
