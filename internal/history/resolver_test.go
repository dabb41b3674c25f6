package history

import (
	"strings"
	"testing"
)

func setupResolver(t *testing.T) (*Resolver, *Store) {
	t.Helper()
	store := newTestStore(t)

	titles := map[string]string{
		"11111111-aaaa": "Python help",
		"22222222-bbbb": "Go concurrency",
		"33333333-cccc": "Go generics",
	}
	updated := map[string]int64{"11111111-aaaa": 1, "22222222-bbbb": 2, "33333333-cccc": 3}
	for id, title := range titles {
		c := sampleConversation(id, updated[id])
		c.Title = title
		store.SaveConversation(c)
	}
	return NewResolver(store), store
}

func TestResolver_Resolve(t *testing.T) {
	r, _ := setupResolver(t)

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{ref: "@last", want: "33333333-cccc"},
		{ref: "@LAST", want: "33333333-cccc"},
		{ref: "@first", want: "11111111-aaaa"},
		{ref: "1", want: "33333333-cccc"},
		{ref: "3", want: "11111111-aaaa"},
		{ref: "4", wantErr: "out of range"},
		{ref: "0", wantErr: "out of range"},
		{ref: "22222222-bbbb", want: "22222222-bbbb"},
		{ref: "22222222", want: "22222222-bbbb"},
		{ref: "python", want: "11111111-aaaa"},
		{ref: "concurrency", want: "22222222-bbbb"},
		{ref: "go", wantErr: "multiple conversations"},
		{ref: "rust", wantErr: "no conversation matching"},
		{ref: "  ", wantErr: "empty reference"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Resolve(%q) err = %v, want containing %q", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", tt.ref, err)
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %s, want %s", tt.ref, got, tt.want)
			}
		})
	}
}

func TestResolver_EmptyStore(t *testing.T) {
	r := NewResolver(newTestStore(t))
	if _, err := r.Resolve("@last"); err == nil {
		t.Error("expected error on empty store")
	}
}

func TestResolver_ResolveConversation(t *testing.T) {
	r, _ := setupResolver(t)

	conv, err := r.ResolveConversation("@last")
	if err != nil {
		t.Fatalf("ResolveConversation failed: %v", err)
	}
	if conv.Title != "Go generics" {
		t.Errorf("Title = %s, want Go generics", conv.Title)
	}
}
