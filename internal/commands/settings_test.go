package commands

import (
	"strings"
	"testing"

	"github.com/diogo/gatewaychat/internal/config"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

func TestSettingsShow(t *testing.T) {
	setupTestEnv(t)

	out, err := runCmd(t, runSettingsShow, "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No stored settings") || !strings.Contains(out, models.DisplayName(models.DefaultModel)) {
		t.Errorf("defaults:\n%s", out)
	}

	withStore(t, func(s *history.Store) {
		s.SaveSettings(history.Settings{SelectedModel: "o3", Temperature: 0.4, SystemPrompt: "be brief", PresetID: "analyst"})
	})
	out, err = runCmd(t, runSettingsShow, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"(o3)", "0.4", "analyst", "be brief"} {
		if !strings.Contains(out, want) {
			t.Errorf("stored settings missing %q:\n%s", want, out)
		}
	}
}

func TestSettingsReset(t *testing.T) {
	setupTestEnv(t)
	cfg := config.DefaultConfig()
	cfg.DefaultModel = "gpt-4.1"
	cfg.DefaultTemperature = 0.5
	if err := config.SaveConfig(cfg); err != nil {
		t.Fatal(err)
	}
	withStore(t, func(s *history.Store) {
		s.SaveSettings(history.Settings{SelectedModel: "o3", Temperature: 1.5, PresetID: "writer"})
	})

	if _, err := runCmd(t, runSettingsReset, ""); err != nil {
		t.Fatal(err)
	}

	withStore(t, func(s *history.Store) {
		st, ok := s.GetSettings()
		if !ok {
			t.Fatal("settings not stored")
		}
		want := history.Settings{SelectedModel: "gpt-4.1", Temperature: 0.5}
		if st != want {
			t.Errorf("settings = %+v, want %+v", st, want)
		}
	})
}

func TestStoredSelection_RepairsInvalidFields(t *testing.T) {
	setupTestEnv(t)
	withStore(t, func(s *history.Store) {
		s.SaveSettings(history.Settings{Temperature: 9})
	})

	app, err := openApp()
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	sel, stored := storedSelection(app)
	if !stored {
		t.Fatal("settings exist")
	}
	if sel.Model != models.DefaultModel || sel.Temperature != models.DefaultTemperature {
		t.Errorf("selection = %+v", sel)
	}
}
