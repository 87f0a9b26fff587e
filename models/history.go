package models

// HistoryEntry represents a named chat session of a user
type HistoryEntry struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	ChatName string `json:"chat_name"`
}
