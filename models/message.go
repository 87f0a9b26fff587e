package models

// Role tags a transcript message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged transcript entry
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
