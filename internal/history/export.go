package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/diogo/gatewaychat/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format             ExportFormat
	IncludeSettings    bool // temperature, system prompt and preset in the header
	IncludeModelLabels bool // model label next to assistant turns
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		Format:             ExportFormatMarkdown,
		IncludeSettings:    true,
		IncludeModelLabels: true,
	}
}

// ExportToMarkdown exports a conversation to Markdown format
func (s *Store) ExportToMarkdown(id string) (string, error) {
	return s.ExportToMarkdownWithOptions(id, DefaultExportOptions())
}

// ExportToMarkdownWithOptions exports a conversation to Markdown with options
func (s *Store) ExportToMarkdownWithOptions(id string, opts ExportOptions) (string, error) {
	conv, ok := s.GetConversation(id)
	if !ok {
		return "", fmt.Errorf("conversation not found: %s", id)
	}

	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(conv.Title)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "**Model:** %s\n", models.DisplayName(conv.Model))
	if opts.IncludeSettings {
		fmt.Fprintf(&sb, "**Temperature:** %.1f\n", conv.Temperature)
		if conv.PresetID != "" {
			fmt.Fprintf(&sb, "**Preset:** %s\n", conv.PresetID)
		}
	}
	fmt.Fprintf(&sb, "**Created:** %s\n", conv.Created().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Updated:** %s\n", conv.Updated().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "**Messages:** %d\n", len(conv.Messages))

	if opts.IncludeSettings && conv.SystemPrompt != "" {
		sb.WriteString("\n> **System prompt:** ")
		sb.WriteString(strings.ReplaceAll(conv.SystemPrompt, "\n", "\n> "))
		sb.WriteString("\n")
	}
	sb.WriteString("\n---\n\n")

	for i, msg := range conv.Messages {
		role := "User"
		switch msg.Role {
		case models.RoleAssistant:
			role = "Assistant"
		case models.RoleSystem:
			role = "System"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if opts.IncludeModelLabels && msg.Model != "" {
			sb.WriteString(" · ")
			sb.WriteString(msg.Model)
		}
		if msg.Timestamp > 0 {
			sb.WriteString(" (")
			sb.WriteString(time.UnixMilli(msg.Timestamp).Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		sb.WriteString(msg.Content)
		sb.WriteString("\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String(), nil
}

// ExportToJSON exports a conversation in its stored JSON shape
func (s *Store) ExportToJSON(id string) ([]byte, error) {
	conv, ok := s.GetConversation(id)
	if !ok {
		return nil, fmt.Errorf("conversation not found: %s", id)
	}
	return json.MarshalIndent(conv, "", "  ")
}

// SearchResult represents a search match in conversations
type SearchResult struct {
	Conversation Conversation
	MatchSnippet string // Snippet where the term was found
	MatchField   string // "title" or "content"
	MatchIndex   int    // Message index if MatchField is "content", -1 for title
}

// SearchConversations searches titles and optionally message content.
// Results follow Recent order.
func (s *Store) SearchConversations(query string, searchContent bool) []SearchResult {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}

	var results []SearchResult
	for _, conv := range s.Recent(0) {
		if strings.Contains(strings.ToLower(conv.Title), queryLower) {
			results = append(results, SearchResult{
				Conversation: conv,
				MatchSnippet: conv.Title,
				MatchField:   "title",
				MatchIndex:   -1,
			})
			continue
		}

		if !searchContent {
			continue
		}
		for i, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), queryLower) {
				results = append(results, SearchResult{
					Conversation: conv,
					MatchSnippet: extractSnippet(msg.Content, queryLower, 100),
					MatchField:   "content",
					MatchIndex:   i,
				})
				break // one match per conversation
			}
		}
	}

	return results
}

// extractSnippet extracts a rune-safe window around the first occurrence of query
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(content)
	lower := []rune(strings.ToLower(content))
	q := []rune(strings.ToLower(query))

	idx := indexRunes(lower, q)
	if idx == -1 || len(lower) != len(runes) {
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return content
	}

	half := maxLen / 2
	start := idx - half
	end := idx + len(q) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet = snippet + "..."
	}
	return snippet
}

func indexRunes(s, sub []rune) int {
	if len(sub) == 0 {
		return 0
	}
outer:
	for i := 0; i+len(sub) <= len(s); i++ {
		for j := range sub {
			if s[i+j] != sub[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// FormatRelativeTime formats a time as a relative string like "2h ago" or "yesterday"
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d min ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		return t.Format("2006-01-02")
	}
}
