package render

import (
	"strings"
)

// CloseOpenFence appends a closing fence when partial markdown ends inside a
// fenced code block.
func CloseOpenFence(partial string) string {
	fence := ""
	for _, line := range strings.Split(partial, "\n") {
		trimmed := strings.TrimLeft(line, " ")
		if len(line)-len(trimmed) > 3 {
			continue
		}
		marker := fenceMarker(trimmed)
		if marker == "" {
			continue
		}
		switch {
		case fence == "":
			fence = marker
		case strings.HasPrefix(marker, fence[:1]) && len(marker) >= len(fence) &&
			strings.TrimSpace(trimmed[len(marker):]) == "":
			fence = ""
		}
	}

	if fence == "" {
		return partial
	}
	if !strings.HasSuffix(partial, "\n") {
		partial += "\n"
	}
	return partial + fence
}

// fenceMarker returns the run of ``` or ~~~ that starts line, if any
func fenceMarker(line string) string {
	if len(line) < 3 || (line[0] != '`' && line[0] != '~') {
		return ""
	}
	c := line[0]
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return line[:n]
}
