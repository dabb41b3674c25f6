package render

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names accepted in config
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeTokyoNight = "tokyonight"
	ThemeDracula    = "dracula"
	ThemePink       = "pink"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// glamour names some styles differently
var styleAliases = map[string]string{
	ThemeTokyoNight: styles.TokyoNightStyle,
}

// BuiltinStyle returns the glamour style config for a built-in style name.
// The second result is false for anything else, which is then treated as a
// path to a JSON style file.
func BuiltinStyle(name string) (ansi.StyleConfig, bool) {
	key := name
	if alias, ok := styleAliases[name]; ok {
		key = alias
	}
	cfg, ok := styles.DefaultStyles[key]
	if !ok || cfg == nil {
		return ansi.StyleConfig{}, false
	}
	return *cfg, true
}

// IsBuiltinStyle returns true if the style is a built-in style
func IsBuiltinStyle(style string) bool {
	_, ok := BuiltinStyle(style)
	return ok
}

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the built-in markdown styles
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: ThemeDark, Description: "Dark theme (default)"},
		{Name: ThemeTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: ThemeLight, Description: "Light theme for bright terminals"},
		{Name: ThemeDracula, Description: "Dracula color scheme"},
		{Name: ThemePink, Description: "Pink accents"},
		{Name: ThemeNoTTY, Description: "Plain text (no styling)"},
		{Name: ThemeASCII, Description: "ASCII-only output"},
	}
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}
