package history

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestExportToMarkdown(t *testing.T) {
	store := newTestStore(t)
	conv := Conversation{
		ID:           "exp",
		Title:        "Quantum computing",
		Model:        "gpt-5-nano",
		Temperature:  0.7,
		SystemPrompt: "Be simple",
		CreatedAt:    1000,
		UpdatedAt:    2000,
		Messages: []Message{
			{ID: "1", Role: "user", Content: "Explain qubits", Timestamp: 1000},
			{ID: "2", Role: "assistant", Content: "A qubit is...", Timestamp: 2000, Model: "GPT-5 Nano"},
		},
	}
	store.SaveConversation(conv)

	md, err := store.ExportToMarkdown("exp")
	if err != nil {
		t.Fatalf("ExportToMarkdown failed: %v", err)
	}

	for _, want := range []string{
		"# Quantum computing",
		"**Model:** GPT-5 Nano",
		"**Temperature:** 0.7",
		"> **System prompt:** Be simple",
		"## User",
		"## Assistant · GPT-5 Nano",
		"A qubit is...",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestExportToMarkdown_NotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.ExportToMarkdown("nope"); err == nil {
		t.Error("expected error for missing conversation")
	}
}

func TestExportToJSON_UsesStoredShape(t *testing.T) {
	store := newTestStore(t)
	store.SaveConversation(sampleConversation("j", 42))

	data, err := store.ExportToJSON("j")
	if err != nil {
		t.Fatalf("ExportToJSON failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"id", "title", "messages", "model", "temperature", "createdAt", "updatedAt"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("exported JSON missing %q", key)
		}
	}
}

func TestSearchConversations(t *testing.T) {
	store := newTestStore(t)
	a := sampleConversation("a", 1)
	a.Title = "Go generics"
	b := sampleConversation("b", 2)
	b.Title = "Recipes"
	b.Messages[0].Content = "How do I cook pasta with golang-shaped noodles?"
	store.SaveConversation(a)
	store.SaveConversation(b)

	titleOnly := store.SearchConversations("go", false)
	if len(titleOnly) != 1 || titleOnly[0].Conversation.ID != "a" {
		t.Errorf("title search = %+v", titleOnly)
	}

	withContent := store.SearchConversations("golang", true)
	if len(withContent) != 1 || withContent[0].MatchField != "content" || withContent[0].MatchIndex != 0 {
		t.Errorf("content search = %+v", withContent)
	}

	if res := store.SearchConversations("  ", true); res != nil {
		t.Error("blank query should return nil")
	}
}

func TestExtractSnippet(t *testing.T) {
	content := strings.Repeat("a", 200) + "NEEDLE" + strings.Repeat("b", 200)
	snippet := extractSnippet(content, "needle", 40)

	if !strings.Contains(snippet, "NEEDLE") {
		t.Errorf("snippet %q missing match", snippet)
	}
	if !strings.HasPrefix(snippet, "...") || !strings.HasSuffix(snippet, "...") {
		t.Errorf("snippet %q should be elided on both sides", snippet)
	}

	if got := extractSnippet("short text", "short", 40); got != "short text" {
		t.Errorf("extractSnippet = %q", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5 min ago"},
		{3 * time.Hour, "3h ago"},
		{30 * time.Hour, "yesterday"},
		{4 * 24 * time.Hour, "4 days ago"},
		{14 * 24 * time.Hour, "2 weeks ago"},
	}
	for _, tt := range tests {
		if got := FormatRelativeTime(time.Now().Add(-tt.ago)); got != tt.want {
			t.Errorf("FormatRelativeTime(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
