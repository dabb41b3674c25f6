package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/gatewaychat/internal/history"
	"github.com/diogo/gatewaychat/internal/models"
)

// historyAction is what the user chose in the history selector
type historyAction int

const (
	historyNone historyAction = iota
	historyClose
	historyNew
	historyLoad
	historyDelete
)

// historySelector lists recent conversations with a "new conversation"
// entry on top. The cursor wraps around.
type historySelector struct {
	conversations []history.Conversation
	activeID      string
	cursor        int
	now           func() time.Time
}

func newHistorySelector(convs []history.Conversation, activeID string) historySelector {
	return historySelector{
		conversations: convs,
		activeID:      activeID,
		now:           time.Now,
	}
}

// selected returns the conversation under the cursor; false for the
// "new conversation" entry.
func (h historySelector) selected() (history.Conversation, bool) {
	if h.cursor == 0 || h.cursor > len(h.conversations) {
		return history.Conversation{}, false
	}
	return h.conversations[h.cursor-1], true
}

func (h historySelector) update(msg tea.KeyMsg) (historySelector, historyAction) {
	switch msg.String() {
	case "esc", "q":
		return h, historyClose

	case "up", "k":
		h.cursor--
		if h.cursor < 0 {
			h.cursor = len(h.conversations)
		}

	case "down", "j":
		h.cursor++
		if h.cursor > len(h.conversations) {
			h.cursor = 0
		}

	case "home", "g":
		h.cursor = 0

	case "end", "G":
		h.cursor = len(h.conversations)

	case "enter":
		if h.cursor == 0 {
			return h, historyNew
		}
		return h, historyLoad

	case "d", "delete":
		if _, ok := h.selected(); ok {
			return h, historyDelete
		}
	}
	return h, historyNone
}

// remove drops a deleted conversation and keeps the cursor in range
func (h historySelector) remove(id string) historySelector {
	kept := h.conversations[:0:0]
	for _, c := range h.conversations {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	h.conversations = kept
	if h.cursor > len(kept) {
		h.cursor = len(kept)
	}
	return h
}

func (h historySelector) view(width, height int) string {
	if width < 40 {
		width = 40
	}

	var content strings.Builder
	content.WriteString(pickerTitleStyle.Render("Recent conversations"))
	content.WriteString("\n\n")

	content.WriteString(h.renderItem(0, "+ New conversation", ""))
	content.WriteString("\n")

	if len(h.conversations) == 0 {
		content.WriteString(hintStyle.Render("  No saved conversations"))
		content.WriteString("\n")
	}

	maxItems := max(5, (height-12)/2)
	scrollOffset := 0
	if h.cursor > maxItems {
		scrollOffset = h.cursor - maxItems
	}
	end := min(scrollOffset+maxItems, len(h.conversations))

	if scrollOffset > 0 {
		content.WriteString(hintStyle.Render("  ↑ more above"))
		content.WriteString("\n")
	}
	for i := scrollOffset; i < end; i++ {
		conv := h.conversations[i]
		meta := models.DisplayName(conv.Model)
		if ts := relativeTime(h.now(), conv.UpdatedAt); ts != "" {
			meta += " - " + ts
		}
		title := conv.Title
		if conv.ID == h.activeID {
			title += " •"
		}
		content.WriteString(h.renderItem(i+1, title, meta))
		content.WriteString("\n")
	}
	if end < len(h.conversations) {
		content.WriteString(hintStyle.Render("  ↓ more below"))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(shortcutBar([][2]string{
		{"↑↓", "Navigate"},
		{"Enter", "Open"},
		{"d", "Delete"},
		{"Esc", "Close"},
	}))

	return pickerBoxStyle.Width(width).Render(content.String())
}

func (h historySelector) renderItem(index int, title, meta string) string {
	cursor := "  "
	style := pickerItemStyle
	if index == h.cursor {
		cursor = pickerCursorStyle.Render("▸ ")
		style = pickerSelectedStyle
	}
	line := cursor + style.Render(title)
	if meta != "" {
		line += pickerMetaStyle.Render(" [" + meta + "]")
	}
	return line
}

// relativeTime formats an epoch-millis timestamp relative to now
func relativeTime(now time.Time, millis int64) string {
	if millis <= 0 {
		return ""
	}
	t := time.UnixMilli(millis)
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// shortcutBar renders key hints separated by bars
func shortcutBar(keys [][2]string) string {
	items := make([]string, 0, len(keys))
	for _, k := range keys {
		items = append(items, lipgloss.JoinHorizontal(
			lipgloss.Center,
			statusKeyStyle.Render(k[0]),
			statusDescStyle.Render(" "+k[1]),
		))
	}
	return strings.Join(items, "  │  ")
}
