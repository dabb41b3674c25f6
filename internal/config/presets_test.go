package config

import (
	"strings"
	"testing"

	"github.com/diogo/gatewaychat/internal/models"
)

func TestLoadPresets_NoFile(t *testing.T) {
	setupTestHome(t)

	presets, err := LoadPresets()
	if err != nil {
		t.Fatalf("LoadPresets failed: %v", err)
	}
	if len(presets) != len(models.DefaultPresets()) {
		t.Errorf("got %d presets, want the %d built-ins", len(presets), len(models.DefaultPresets()))
	}
}

func TestMergePresets(t *testing.T) {
	defaults := []models.Preset{
		{ID: "a", Name: "A", SystemPrompt: "default a"},
		{ID: "b", Name: "B", SystemPrompt: "default b"},
	}
	custom := []models.Preset{
		{ID: "a", Name: "A", SystemPrompt: "custom a"},
		{ID: "c", Name: "C", SystemPrompt: "custom c"},
	}

	result := mergePresets(defaults, custom)

	if len(result) != 3 {
		t.Fatalf("len = %d, want 3", len(result))
	}
	if result[0].SystemPrompt != "custom a" {
		t.Error("custom preset should override default with the same id")
	}
	if result[1].ID != "b" || result[2].ID != "c" {
		t.Errorf("order = %s %s, want b c", result[1].ID, result[2].ID)
	}
	if defaults[0].SystemPrompt != "default a" {
		t.Error("merge must not modify defaults")
	}
}

func TestAddPreset_AndLoad(t *testing.T) {
	setupTestHome(t)

	temp := 0.6
	p := models.Preset{ID: "reviewer", Name: "Reviewer", Model: "o3", Temperature: &temp, SystemPrompt: "Review code"}
	if err := AddPreset(p); err != nil {
		t.Fatalf("AddPreset failed: %v", err)
	}

	got, err := GetPreset("reviewer")
	if err != nil {
		t.Fatalf("GetPreset failed: %v", err)
	}
	if got.Model != "o3" || got.Temperature == nil || *got.Temperature != 0.6 {
		t.Errorf("GetPreset = %+v", got)
	}

	presets, _ := LoadPresets()
	if len(presets) != len(models.DefaultPresets())+1 {
		t.Errorf("len = %d, want built-ins + 1", len(presets))
	}

	if err := AddPreset(p); err == nil {
		t.Error("adding a duplicate should fail")
	}
}

func TestAddPreset_OverridesBuiltin(t *testing.T) {
	setupTestHome(t)

	if err := AddPreset(models.Preset{ID: "coder", Name: "My coder", Model: "gpt-5"}); err != nil {
		t.Fatalf("AddPreset failed: %v", err)
	}
	got, _ := GetPreset("coder")
	if got.Name != "My coder" || got.Model != "gpt-5" {
		t.Errorf("override not applied: %+v", got)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	setupTestHome(t)

	if _, err := GetPreset("nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestDeletePreset(t *testing.T) {
	setupTestHome(t)

	_ = AddPreset(models.Preset{ID: "tmp", Name: "Tmp"})
	if err := DeletePreset("tmp"); err != nil {
		t.Fatalf("DeletePreset failed: %v", err)
	}
	if _, err := GetPreset("tmp"); err == nil {
		t.Error("preset should be gone")
	}

	err := DeletePreset("coder")
	if err == nil || !strings.Contains(err.Error(), "built-in") {
		t.Errorf("deleting a built-in should fail, got %v", err)
	}
	if err := DeletePreset("ghost"); err == nil {
		t.Error("deleting an unknown preset should fail")
	}
}

func TestDeletePreset_RestoresBuiltin(t *testing.T) {
	setupTestHome(t)

	_ = AddPreset(models.Preset{ID: "writer", Name: "Overridden"})
	if err := DeletePreset("writer"); err != nil {
		t.Fatalf("DeletePreset failed: %v", err)
	}
	got, _ := GetPreset("writer")
	if got.Name != "Writer" {
		t.Errorf("built-in should be back, got %q", got.Name)
	}
}

func TestValidatePreset(t *testing.T) {
	hot := 3.0
	tests := []struct {
		name    string
		preset  models.Preset
		wantErr string
	}{
		{"valid", models.Preset{ID: "ok_1", Name: "Ok"}, ""},
		{"missing id", models.Preset{Name: "X"}, "id is required"},
		{"bad id", models.Preset{ID: "has space", Name: "X"}, "alphanumeric"},
		{"long id", models.Preset{ID: strings.Repeat("a", MaxIDLength+1), Name: "X"}, "id too long"},
		{"missing name", models.Preset{ID: "x"}, "name is required"},
		{"long description", models.Preset{ID: "x", Name: "X", Description: strings.Repeat("d", MaxDescriptionLength+1)}, "description too long"},
		{"huge prompt", models.Preset{ID: "x", Name: "X", SystemPrompt: strings.Repeat("p", MaxPromptLength+1)}, "system prompt too long"},
		{"temperature out of range", models.Preset{ID: "x", Name: "X", Temperature: &hot}, "temperature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePreset(tt.preset)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
