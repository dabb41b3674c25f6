package history

import (
	"fmt"
	"strconv"
	"strings"
)

// Resolver resolves user-friendly references to conversation IDs
type Resolver struct {
	store *Store
}

// NewResolver creates a new alias resolver
func NewResolver(store *Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve converts a user-friendly reference to a conversation ID
//
// Supported references:
//   - "@last" - most recently updated conversation
//   - "@first" - least recently updated conversation
//   - "1", "2", "3" - by index into the recent list (1-based)
//   - full conversation ID or a unique ID prefix of at least 8 characters
//   - "substring" - match on title (error if multiple matches)
func (r *Resolver) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty reference")
	}

	conversations := r.store.Recent(0)
	if len(conversations) == 0 {
		return "", fmt.Errorf("no conversations found")
	}

	switch strings.ToLower(ref) {
	case "@last":
		return conversations[0].ID, nil
	case "@first":
		return conversations[len(conversations)-1].ID, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		if index < 1 || index > len(conversations) {
			return "", fmt.Errorf("index %d out of range (1-%d)", index, len(conversations))
		}
		return conversations[index-1].ID, nil
	}

	for _, conv := range conversations {
		if conv.ID == ref {
			return conv.ID, nil
		}
	}

	if len(ref) >= 8 {
		var byPrefix []Conversation
		for _, conv := range conversations {
			if strings.HasPrefix(conv.ID, ref) {
				byPrefix = append(byPrefix, conv)
			}
		}
		if len(byPrefix) == 1 {
			return byPrefix[0].ID, nil
		}
	}

	refLower := strings.ToLower(ref)
	var matches []Conversation
	for _, conv := range conversations {
		if strings.Contains(strings.ToLower(conv.Title), refLower) {
			matches = append(matches, conv)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no conversation matching '%s'", ref)
	case 1:
		return matches[0].ID, nil
	default:
		var titles []string
		for _, m := range matches {
			titles = append(titles, fmt.Sprintf("'%s'", m.Title))
		}
		return "", fmt.Errorf("multiple conversations match '%s': %s. Use ID or be more specific",
			ref, strings.Join(titles, ", "))
	}
}

// ResolveConversation resolves a reference and returns the conversation
func (r *Resolver) ResolveConversation(ref string) (Conversation, error) {
	id, err := r.Resolve(ref)
	if err != nil {
		return Conversation{}, err
	}

	conv, ok := r.store.GetConversation(id)
	if !ok {
		return Conversation{}, fmt.Errorf("conversation not found: %s", id)
	}
	return conv, nil
}

// ListAliases returns information about supported aliases
func ListAliases() string {
	return `Supported references:
  @last          Most recently updated conversation
  @first         Oldest conversation
  1, 2, 3        By index (1-based, from most recent)
  "text"         Search by title substring
  <id>           Conversation ID or a unique prefix (8+ chars)`
}
