// Package render turns assistant answers into styled terminal markdown.
package render

import "github.com/diogo/gatewaychat/internal/config"

// DefaultWidth is the wrap width used before the terminal size is known
const DefaultWidth = 80

// Options configures a glamour renderer. Everything except Width mirrors
// the markdown section of config.json.
type Options struct {
	Width            int
	Style            string
	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
	InlineTableLinks bool
}

// DefaultOptions returns the options for the default markdown config
func DefaultOptions() Options {
	return optionsFor(config.DefaultMarkdownConfig())
}

func optionsFor(md config.MarkdownConfig) Options {
	opts := Options{
		Width:            DefaultWidth,
		Style:            md.Style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
		TableWrap:        md.TableWrap,
		InlineTableLinks: md.InlineTableLinks,
	}
	if opts.Style == "" {
		opts.Style = ThemeDark
	}
	return opts
}

// WithWidth sets the wrap width. Widths below 20 are raised to 20 so narrow
// bubbles still render.
func (o Options) WithWidth(width int) Options {
	if width < minWidth {
		width = minWidth
	}
	o.Width = width
	return o
}

// WithStyle sets the glamour style name or style file path
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

const minWidth = 20
