package render

import (
	"testing"
)

func TestTUITheme_MarkdownStyleIsBuiltin(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		if !IsBuiltinStyle(theme.MarkdownStyle) {
			t.Errorf("theme %s pairs with unknown markdown style %q", theme.Name, theme.MarkdownStyle)
		}
		if theme.Description == "" {
			t.Errorf("theme %s has empty description", theme.Name)
		}
	}
}

func TestSetTUITheme(t *testing.T) {
	defer SetTUITheme("tokyonight")

	if GetTUITheme().Name != "tokyonight" {
		t.Errorf("default theme = %s, want tokyonight", GetTUITheme().Name)
	}

	if !SetTUITheme("nord") {
		t.Fatal("SetTUITheme(nord) returned false")
	}
	if GetTUITheme().Name != "nord" {
		t.Errorf("current theme = %s, want nord", GetTUITheme().Name)
	}

	if SetTUITheme("nonexistent") {
		t.Error("SetTUITheme should return false for unknown theme")
	}
	if GetTUITheme().Name != "nord" {
		t.Error("unknown theme must not change the current theme")
	}
}

func TestGetTUIThemeByName(t *testing.T) {
	tests := []struct {
		name  string
		found bool
	}{
		{"tokyonight", true},
		{"catppuccin", true},
		{"nord", true},
		{"dracula", true},
		{"TokyoNight", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, ok := GetTUIThemeByName(tt.name)
			if ok != tt.found {
				t.Fatalf("GetTUIThemeByName(%q) ok = %v, want %v", tt.name, ok, tt.found)
			}
			if ok && theme.Name != tt.name {
				t.Errorf("theme.Name = %s", theme.Name)
			}
		})
	}
}

func TestTUIThemeNames(t *testing.T) {
	names := TUIThemeNames()
	themes := AvailableTUIThemes()
	if len(names) != len(themes) {
		t.Fatalf("len = %d, want %d", len(names), len(themes))
	}
	for i, name := range names {
		if name != themes[i].Name {
			t.Errorf("name[%d] = %q, themes[%d].Name = %q", i, name, i, themes[i].Name)
		}
	}
}

func TestThemeColors_AreValidHex(t *testing.T) {
	for _, theme := range AvailableTUIThemes() {
		t.Run(theme.Name, func(t *testing.T) {
			colors := map[string]string{
				"Background": string(theme.Background),
				"Surface":    string(theme.Surface),
				"Border":     string(theme.Border),
				"Primary":    string(theme.Primary),
				"Secondary":  string(theme.Secondary),
				"Accent":     string(theme.Accent),
				"Warning":    string(theme.Warning),
				"Error":      string(theme.Error),
				"User":       string(theme.User),
				"Assistant":  string(theme.Assistant),
				"Text":       string(theme.Text),
				"TextDim":    string(theme.TextDim),
				"TextMute":   string(theme.TextMute),
			}

			for name, c := range colors {
				if len(c) != 7 || c[0] != '#' {
					t.Errorf("%s color %q should be #RRGGBB", name, c)
				}
			}
		})
	}
}
