package models

import "testing"

func TestApplyPreset_OverwritesAllFields(t *testing.T) {
	sel := Selection{Model: "gpt-5-nano", Temperature: 0.7, SystemPrompt: "old"}
	p := Preset{ID: "p1", Model: "claude", Temperature: temp(0.2), SystemPrompt: "new"}

	got := ApplyPreset(sel, p)

	want := Selection{Model: "claude", Temperature: 0.2, SystemPrompt: "new", PresetID: "p1"}
	if got != want {
		t.Errorf("ApplyPreset = %+v, want %+v", got, want)
	}
}

func TestApplyPreset_KeepsTemperatureWhenUndefined(t *testing.T) {
	sel := Selection{Model: "gpt-5-nano", Temperature: 1.4, SystemPrompt: "old"}
	p := Preset{ID: "p2", Model: "o3", SystemPrompt: ""}

	got := ApplyPreset(sel, p)

	if got.Temperature != 1.4 {
		t.Errorf("Temperature = %v, want 1.4", got.Temperature)
	}
	if got.SystemPrompt != "" {
		t.Errorf("SystemPrompt = %q, want empty (full replace)", got.SystemPrompt)
	}
	if got.Model != "o3" || got.PresetID != "p2" {
		t.Errorf("unexpected selection %+v", got)
	}
}

func TestClearPreset_OnlyClearsID(t *testing.T) {
	sel := Selection{Model: "claude", Temperature: 0.2, SystemPrompt: "x", PresetID: "coder"}
	got := ClearPreset(sel)
	want := Selection{Model: "claude", Temperature: 0.2, SystemPrompt: "x"}
	if got != want {
		t.Errorf("ClearPreset = %+v, want %+v", got, want)
	}
}

func TestDefaultPresets(t *testing.T) {
	presets := DefaultPresets()
	if len(presets) == 0 {
		t.Fatal("no default presets")
	}
	for _, p := range presets {
		if p.ID == "" || p.Name == "" {
			t.Errorf("preset missing id or name: %+v", p)
		}
		if _, ok := ModelByID(p.Model); !ok {
			t.Errorf("preset %s uses unknown model %s", p.ID, p.Model)
		}
		if p.Temperature != nil && !ValidTemperature(*p.Temperature) {
			t.Errorf("preset %s temperature out of range", p.ID)
		}
	}

	if _, ok := PresetByID(presets, "coder"); !ok {
		t.Error("coder preset not found")
	}
	if _, ok := PresetByID(presets, "missing"); ok {
		t.Error("unexpected preset found")
	}
}

func TestDefaultSelection(t *testing.T) {
	sel := DefaultSelection()
	if sel.Model != DefaultModel || sel.Temperature != DefaultTemperature {
		t.Errorf("DefaultSelection = %+v", sel)
	}
}
