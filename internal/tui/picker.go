package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gatewaychat/internal/models"
)

// pickerItem is one selectable row
type pickerItem struct {
	ID          string
	Name        string
	Tag         string
	Description string
}

// picker is a filterable list used for models and presets
type picker struct {
	title   string
	current string
	items   []pickerItem
	filter  string
	cursor  int
}

func modelPicker(current, filter string) picker {
	all := models.AllModels()
	items := make([]pickerItem, 0, len(all))
	for _, m := range all {
		tag := m.Category
		if m.SupportsVision {
			tag += ", vision"
		}
		items = append(items, pickerItem{ID: m.ID, Name: m.Name, Tag: tag, Description: m.ID})
	}
	return picker{title: "Select a model", current: current, items: items, filter: filter}
}

func presetPicker(current string, presets []models.Preset) picker {
	items := []pickerItem{{ID: "", Name: "No preset", Description: "Keep the model and prompt as they are"}}
	for _, p := range presets {
		items = append(items, pickerItem{
			ID:          p.ID,
			Name:        p.Name,
			Tag:         models.DisplayName(p.Model),
			Description: p.Description,
		})
	}
	return picker{title: "Select a preset", current: current, items: items}
}

// filtered returns the items matching the filter on name, tag or description
func (p picker) filtered() []pickerItem {
	if p.filter == "" {
		return p.items
	}
	f := strings.ToLower(p.filter)
	var out []pickerItem
	for _, it := range p.items {
		if strings.Contains(strings.ToLower(it.Name), f) ||
			strings.Contains(strings.ToLower(it.Tag), f) ||
			strings.Contains(strings.ToLower(it.Description), f) {
			out = append(out, it)
		}
	}
	return out
}

// update handles a key. It returns the chosen item when the user confirms,
// and closed when the picker should go away.
func (p picker) update(msg tea.KeyMsg) (next picker, chosen *pickerItem, closed bool) {
	filtered := p.filtered()

	switch msg.String() {
	case "esc":
		return p, nil, true

	case "up":
		if len(filtered) > 0 {
			p.cursor--
			if p.cursor < 0 {
				p.cursor = len(filtered) - 1
			}
		}

	case "down":
		if len(filtered) > 0 {
			p.cursor++
			if p.cursor >= len(filtered) {
				p.cursor = 0
			}
		}

	case "enter":
		if p.cursor < len(filtered) {
			it := filtered[p.cursor]
			return p, &it, true
		}

	case "backspace":
		if len(p.filter) > 0 {
			p.filter = p.filter[:len(p.filter)-1]
			p.cursor = 0
		}

	default:
		// printable characters extend the filter
		if len(msg.String()) == 1 {
			r := msg.String()[0]
			if r >= ' ' && r <= '~' {
				p.filter += msg.String()
				p.cursor = 0
			}
		}
	}
	return p, nil, false
}

func (p picker) view(width int) string {
	if width < 40 {
		width = 40
	}

	var content strings.Builder

	title := pickerTitleStyle.Render(p.title)
	if p.current != "" {
		title += hintStyle.Render(fmt.Sprintf("  (current: %s)", p.current))
	}
	content.WriteString(title)
	content.WriteString("\n\n")

	if p.filter != "" {
		content.WriteString(inputLabelStyle.Render("Filter:") + p.filter + "_")
		content.WriteString("\n\n")
	}

	filtered := p.filtered()
	if len(filtered) == 0 {
		content.WriteString(hintStyle.Render("  Nothing matches the filter"))
		content.WriteString("\n")
	}

	const maxItems = 10
	start := 0
	if p.cursor >= maxItems {
		start = p.cursor - maxItems + 1
	}
	end := min(start+maxItems, len(filtered))

	if start > 0 {
		content.WriteString(hintStyle.Render("  ↑ more above"))
		content.WriteString("\n")
	}
	for i := start; i < end; i++ {
		it := filtered[i]
		cursor := "  "
		nameStyle := pickerItemStyle
		if i == p.cursor {
			cursor = pickerCursorStyle.Render("▸ ")
			nameStyle = pickerSelectedStyle
		}

		line := cursor + nameStyle.Render(it.Name)
		if it.Tag != "" {
			line += pickerMetaStyle.Render(" [" + it.Tag + "]")
		}
		if it.Description != "" {
			maxDesc := width - len(it.Name) - len(it.Tag) - 15
			if maxDesc > 10 {
				line += hintStyle.Render(" - " + truncate(it.Description, maxDesc))
			}
		}
		content.WriteString(line)
		content.WriteString("\n")
	}
	if end < len(filtered) {
		content.WriteString(hintStyle.Render("  ↓ more below"))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(shortcutBar([][2]string{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", "Cancel"},
	}))

	return pickerBoxStyle.Width(width).Render(content.String())
}

// truncate shortens s to n runes with a trailing ellipsis
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
