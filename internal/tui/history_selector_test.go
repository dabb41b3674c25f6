package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/gatewaychat/internal/history"
)

func testConversations() []history.Conversation {
	return []history.Conversation{
		{ID: "a", Title: "First", Model: "gpt-5", UpdatedAt: 3000},
		{ID: "b", Title: "Second", Model: "o3", UpdatedAt: 2000},
		{ID: "c", Title: "Third", Model: "claude-sonnet-4", UpdatedAt: 1000},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestHistorySelector_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want int
	}{
		{"starts on new conversation", nil, 0},
		{"down moves", []string{"down"}, 1},
		{"j moves", []string{"j", "j"}, 2},
		{"up wraps to last", []string{"up"}, 3},
		{"down wraps to first", []string{"down", "down", "down", "down"}, 0},
		{"k moves up", []string{"end", "k"}, 2},
		{"end jumps", []string{"end"}, 3},
		{"G jumps", []string{"G"}, 3},
		{"home jumps", []string{"down", "down", "home"}, 0},
		{"g jumps", []string{"down", "g"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHistorySelector(testConversations(), "")
			for _, k := range tt.keys {
				h, _ = h.update(key(k))
			}
			if h.cursor != tt.want {
				t.Errorf("cursor = %d, want %d", h.cursor, tt.want)
			}
		})
	}
}

func TestHistorySelector_Actions(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		want   historyAction
		wantID string
	}{
		{"enter on new", []string{"enter"}, historyNew, ""},
		{"enter on conversation", []string{"down", "down", "enter"}, historyLoad, "b"},
		{"esc closes", []string{"esc"}, historyClose, ""},
		{"q closes", []string{"q"}, historyClose, ""},
		{"d deletes", []string{"down", "d"}, historyDelete, "a"},
		{"delete key deletes", []string{"end", "delete"}, historyDelete, "c"},
		{"d on new does nothing", []string{"d"}, historyNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHistorySelector(testConversations(), "")
			var action historyAction
			for _, k := range tt.keys {
				h, action = h.update(key(k))
			}
			if action != tt.want {
				t.Errorf("action = %v, want %v", action, tt.want)
			}
			conv, ok := h.selected()
			if tt.wantID == "" {
				if ok && tt.want != historyClose {
					t.Errorf("unexpected selection %s", conv.ID)
				}
				return
			}
			if !ok || conv.ID != tt.wantID {
				t.Errorf("selected = %q, want %q", conv.ID, tt.wantID)
			}
		})
	}
}

func TestHistorySelector_Remove(t *testing.T) {
	h := newHistorySelector(testConversations(), "")
	h, _ = h.update(key("end"))

	h = h.remove("c")
	if len(h.conversations) != 2 {
		t.Fatalf("len = %d, want 2", len(h.conversations))
	}
	if h.cursor != 2 {
		t.Errorf("cursor = %d, want clamped to 2", h.cursor)
	}

	h = h.remove("missing")
	if len(h.conversations) != 2 {
		t.Error("removing an unknown id must not change the list")
	}
}

func TestHistorySelector_RemoveDoesNotAlias(t *testing.T) {
	convs := testConversations()
	h := newHistorySelector(convs, "")
	h.remove("a")

	if convs[0].ID != "a" {
		t.Error("remove must not rewrite the caller's slice")
	}
}

func TestHistorySelector_View(t *testing.T) {
	h := newHistorySelector(testConversations(), "b")
	h.now = func() time.Time { return time.UnixMilli(3000).Add(2 * time.Hour) }

	view := h.view(80, 40)
	for _, want := range []string{"Recent conversations", "+ New conversation", "First", "Second •", "Third", "GPT-5", "2h ago"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistorySelector_ViewEmpty(t *testing.T) {
	h := newHistorySelector(nil, "")
	if !strings.Contains(h.view(20, 10), "No saved conversations") {
		t.Error("empty list should say so")
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) int64 { return now.Add(-d).UnixMilli() }

	tests := []struct {
		name   string
		millis int64
		want   string
	}{
		{"zero", 0, ""},
		{"seconds", at(10 * time.Second), "just now"},
		{"minutes", at(5 * time.Minute), "5m ago"},
		{"hours", at(3 * time.Hour), "3h ago"},
		{"days", at(48 * time.Hour), "2d ago"},
		{"old", at(30 * 24 * time.Hour), time.UnixMilli(at(30 * 24 * time.Hour)).Format("Jan 2")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relativeTime(now, tt.millis); got != tt.want {
				t.Errorf("relativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}
