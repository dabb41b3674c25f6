package render

// Markdown renders content with a pooled renderer for opts.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Answer renders a finished assistant message. When the style cannot be
// loaded the raw content is returned.
func Answer(content string, opts Options) string {
	out, err := Markdown(content, opts)
	if err != nil {
		return content
	}
	return out
}

// StreamingMarkdown renders a partial answer. An unterminated code fence is
// closed first, and rendering errors fall back to the raw partial text.
func StreamingMarkdown(partial string, opts Options) string {
	out, err := Markdown(CloseOpenFence(partial), opts)
	if err != nil {
		return partial
	}
	return out
}
