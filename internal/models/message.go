package models

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage is one turn of the history sent to the gateway
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

