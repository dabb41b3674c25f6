package tui

import (
	"strings"
	"testing"

	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		in       string
		wantName string
		wantArgs string
	}{
		{"/new", "new", ""},
		{"/temp 0.3", "temp", "0.3"},
		{"/SYSTEM  be brief  ", "system", "be brief"},
		{"/system you are a pirate, arr", "system", "you are a pirate, arr"},
		{"  /models claude", "models", "claude"},
		{"/", "", ""},
	}
	for _, tt := range tests {
		name, args := parseCommand(tt.in)
		if name != tt.wantName || args != tt.wantArgs {
			t.Errorf("parseCommand(%q) = (%q, %q), want (%q, %q)", tt.in, name, args, tt.wantName, tt.wantArgs)
		}
	}
}

func TestRunCommand_Selection(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		check    func(models.Selection) bool
		wantInfo string
	}{
		{
			name:     "temperature",
			input:    "/temp 0.3",
			check:    func(s models.Selection) bool { return s.Temperature == 0.3 },
			wantInfo: "Temperature set to 0.3",
		},
		{
			name:     "temperature out of range",
			input:    "/temp 5",
			check:    func(s models.Selection) bool { return s.Temperature == models.DefaultTemperature },
			wantInfo: "temperature must be between 0 and 2",
		},
		{
			name:     "temperature not a number",
			input:    "/temp hot",
			check:    func(s models.Selection) bool { return s.Temperature == models.DefaultTemperature },
			wantInfo: "Usage: /temp",
		},
		{
			name:     "model in catalog",
			input:    "/model o3",
			check:    func(s models.Selection) bool { return s.Model == "o3" },
			wantInfo: "Model set to",
		},
		{
			name:     "model outside catalog",
			input:    "/model my-finetune",
			check:    func(s models.Selection) bool { return s.Model == "my-finetune" },
			wantInfo: "not in the catalog",
		},
		{
			name:     "system prompt",
			input:    "/system be brief",
			check:    func(s models.Selection) bool { return s.SystemPrompt == "be brief" },
			wantInfo: "System prompt set",
		},
		{
			name:     "preset",
			input:    "/preset coder",
			check:    func(s models.Selection) bool { return s.PresetID == "coder" },
			wantInfo: "Preset coder applied",
		},
		{
			name:     "unknown preset",
			input:    "/preset nope",
			check:    func(s models.Selection) bool { return s.PresetID == "" },
			wantInfo: "unknown preset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, env := newTestModel(t)
			m, cmd := submitLine(t, m, tt.input)

			if cmd != nil {
				t.Error("selection commands should not return a command")
			}
			if !tt.check(env.shell.Selection()) {
				t.Errorf("selection = %+v", env.shell.Selection())
			}
			if !strings.Contains(m.info, tt.wantInfo) {
				t.Errorf("info = %q, want to contain %q", m.info, tt.wantInfo)
			}
		})
	}
}

func TestRunCommand_PresetNoneClearsOnlyPreset(t *testing.T) {
	m, env := newTestModel(t)
	m, _ = submitLine(t, m, "/preset coder")
	applied := env.shell.Selection()

	m, _ = submitLine(t, m, "/preset none")
	sel := env.shell.Selection()
	if sel.PresetID != "" {
		t.Error("preset should be cleared")
	}
	if sel.Model != applied.Model || sel.SystemPrompt != applied.SystemPrompt || sel.Temperature != applied.Temperature {
		t.Errorf("clearing the preset changed other fields: %+v", sel)
	}
	if m.info != "Preset cleared." {
		t.Errorf("info = %q", m.info)
	}
}

func TestRunCommand_SystemClear(t *testing.T) {
	m, env := newTestModel(t)
	m, _ = submitLine(t, m, "/system pirate")
	m, _ = submitLine(t, m, "/system")

	if env.shell.Selection().SystemPrompt != "" {
		t.Error("empty /system should clear the prompt")
	}
	if m.info != "System prompt cleared." {
		t.Errorf("info = %q", m.info)
	}
}

func TestRunCommand_LoadAndDelete(t *testing.T) {
	m, env := newTestModel(t)
	env.store.SaveConversation(history.Conversation{ID: "x", Title: "Saved", Model: "o3", Temperature: 0.2, UpdatedAt: 10,
		Messages: []history.Message{{ID: "1", Role: models.RoleUser, Content: "stored question"}}})

	m, _ = submitLine(t, m, "/load 1")
	if env.shell.Session().ID() != "x" {
		t.Fatalf("open conversation = %s, want x", env.shell.Session().ID())
	}
	if !strings.Contains(m.info, "Saved") {
		t.Errorf("info = %q", m.info)
	}

	m, _ = submitLine(t, m, "/delete 1")
	if _, ok := env.store.GetConversation("x"); ok {
		t.Error("conversation should be deleted")
	}
	if env.shell.Session().ID() == "x" {
		t.Error("deleting the open conversation should start a new one")
	}

	m, _ = submitLine(t, m, "/load 1")
	if m.info != "No saved conversations." {
		t.Errorf("info = %q", m.info)
	}
}

func TestRunCommand_LoadOutOfRange(t *testing.T) {
	m, env := newTestModel(t)
	env.store.SaveConversation(history.Conversation{ID: "x", Title: "Saved", UpdatedAt: 10})

	m, _ = submitLine(t, m, "/load 7")
	if !strings.Contains(m.info, "between 1 and 1") {
		t.Errorf("info = %q", m.info)
	}
}

func TestRunCommand_Overlays(t *testing.T) {
	tests := []struct {
		input string
		want  overlay
	}{
		{"/history", overlayHistory},
		{"/models", overlayModels},
		{"/model", overlayModels},
		{"/presets", overlayPresets},
		{"/preset", overlayPresets},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, _ := newTestModel(t)
			m, _ = submitLine(t, m, tt.input)
			if m.overlay != tt.want {
				t.Errorf("overlay = %v, want %v", m.overlay, tt.want)
			}
		})
	}
}

func TestRunCommand_HelpAndUnknown(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = submitLine(t, m, "/help")
	if !strings.Contains(m.info, "/preset ID|none") {
		t.Error("help should list commands")
	}

	m, _ = submitLine(t, m, "/frobnicate")
	if !strings.Contains(m.info, "Unknown command /frobnicate") {
		t.Errorf("info = %q", m.info)
	}
}

func TestRunCommand_Exit(t *testing.T) {
	for _, in := range []string{"/exit", "/quit", "exit", "quit"} {
		m, _ := newTestModel(t)
		_, cmd := submitLine(t, m, in)
		if cmd == nil {
			t.Errorf("%s should quit", in)
		}
	}
}

func TestRunCommand_SuggestionOutOfRange(t *testing.T) {
	m, _ := newTestModel(t)
	m, cmd := submitLine(t, m, "/s 99")
	if cmd != nil || m.sending {
		t.Error("out of range suggestion must not send")
	}
	if !strings.Contains(m.info, "between 1 and") {
		t.Errorf("info = %q", m.info)
	}
}
