package models

import (
	"time"
)

type Chat struct {
	ID            int       `json:"id" db:"id"`
	InitialSender string    `json:"initial_sender" db:"initial_sender"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ChatWithLastMessage annotates a chat with the timestamp of its most
// recent message. LastMessageAt is nil for chats without messages.
type ChatWithLastMessage struct {
	Chat
	LastMessageAt *time.Time `json:"last_message_at,omitempty" db:"last_message_at"`
}
