package commands

import (
	"strings"
	"testing"

	"github.com/diogo/gatewaychat/internal/config"
	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

func TestPresetList(t *testing.T) {
	setupTestEnv(t)

	out, err := runCmd(t, runPresetList, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range models.DefaultPresets() {
		if !strings.Contains(out, p.ID) {
			t.Errorf("list missing %s:\n%s", p.ID, out)
		}
	}
	if !strings.Contains(out, "0.2") || !strings.Contains(out, "-") {
		t.Errorf("temperatures not shown:\n%s", out)
	}
}

func TestPresetShow(t *testing.T) {
	setupTestEnv(t)

	out, err := runCmd(t, runPresetShow, "", "coder")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"ID: coder", "Temperature: 0.2", "System Prompt:", "expert software engineer"} {
		if !strings.Contains(out, want) {
			t.Errorf("show missing %q:\n%s", want, out)
		}
	}

	if _, err := runCmd(t, runPresetShow, "", "missing"); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestPresetAdd_ReadsPromptFromStdin(t *testing.T) {
	setupTestEnv(t)
	presetAddName = "Reviewer"
	presetAddModel = "o3"

	out, err := runCmd(t, runPresetAdd, "Review code carefully.\nBe blunt.\n\nignored after blank", "reviewer")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Preset 'reviewer' created") {
		t.Errorf("output = %q", out)
	}

	p, err := config.GetPreset("reviewer")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Reviewer" || p.Model != "o3" {
		t.Errorf("preset = %+v", p)
	}
	if p.SystemPrompt != "Review code carefully.\nBe blunt." {
		t.Errorf("system prompt = %q", p.SystemPrompt)
	}
	if p.Temperature != nil {
		t.Errorf("temperature should be unset, got %v", *p.Temperature)
	}
}

func TestPresetAdd_Invalid(t *testing.T) {
	setupTestEnv(t)
	presetAddModel = "o3"

	if _, err := runCmd(t, runPresetAdd, "", "bad id!"); err == nil {
		t.Error("expected a validation error")
	}

	if _, err := runCmd(t, runPresetAdd, "", "dup"); err != nil {
		t.Fatal(err)
	}
	if _, err := runCmd(t, runPresetAdd, "", "dup"); err == nil {
		t.Error("adding the same id twice should fail")
	}
}

func TestPresetDelete(t *testing.T) {
	setupTestEnv(t)
	presetAddModel = "o3"
	if _, err := runCmd(t, runPresetAdd, "", "mine"); err != nil {
		t.Fatal(err)
	}

	out, err := runCmd(t, runPresetDelete, "", "mine")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "deleted") {
		t.Errorf("output = %q", out)
	}
	if _, err := config.GetPreset("mine"); err == nil {
		t.Error("preset still present")
	}

	_, err = runCmd(t, runPresetDelete, "", "coder")
	if err == nil || !strings.Contains(err.Error(), "built-in") {
		t.Errorf("deleting a built-in: err = %v", err)
	}
}

func TestPresetUse(t *testing.T) {
	setupTestEnv(t)
	withStore(t, func(s *history.Store) {
		s.SaveSettings(history.Settings{SelectedModel: "o3", Temperature: 0.9, SystemPrompt: "old"})
	})

	out, err := runCmd(t, runPresetUse, "", "coder")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Preset 'coder' applied") {
		t.Errorf("output = %q", out)
	}

	withStore(t, func(s *history.Store) {
		st, ok := s.GetSettings()
		if !ok {
			t.Fatal("settings not stored")
		}
		if st.PresetID != "coder" || st.SelectedModel != "claude-sonnet-4" || st.Temperature != 0.2 {
			t.Errorf("settings = %+v", st)
		}
	})

	if _, err := runCmd(t, runPresetUse, "", "none"); err != nil {
		t.Fatal(err)
	}
	withStore(t, func(s *history.Store) {
		st, _ := s.GetSettings()
		if st.PresetID != "" {
			t.Error("preset should be cleared")
		}
		if st.SelectedModel != "claude-sonnet-4" {
			t.Errorf("clearing the preset changed the model: %+v", st)
		}
	})

	if _, err := runCmd(t, runPresetUse, "", "missing"); err == nil {
		t.Error("expected an error for an unknown preset")
	}
}

func TestReadParagraph(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"one\ntwo\n\nthree", "one\ntwo"},
		{"windows\r\nlines\r\n\r\n", "windows\nlines"},
		{"no trailing newline", "no trailing newline"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := readParagraph(strings.NewReader(tt.in))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("readParagraph(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tt := range tests {
		var out strings.Builder
		if got := confirm(strings.NewReader(tt.in), &out, "Sure?"); got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if !strings.Contains(out.String(), "Sure? [y/N]") {
			t.Errorf("prompt = %q", out.String())
		}
	}
}
