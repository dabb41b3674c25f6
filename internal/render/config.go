package render

import (
	"os"

	"github.com/diogo/gatewaychat/internal/config"
)

// OptionsFromMarkdownConfig converts the markdown section of the user config.
// GLAMOUR_STYLE takes precedence over the configured style.
func OptionsFromMarkdownConfig(md config.MarkdownConfig) Options {
	opts := optionsFor(md)
	if style := os.Getenv("GLAMOUR_STYLE"); style != "" {
		opts.Style = style
	}
	return opts
}
