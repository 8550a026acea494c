package models

import (
	"time"
)

type Notification struct {
	Recipient string    `json:"recipient" db:"recipient_login"`
	MessageID int       `json:"message_id" db:"message_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NotificationView is a pending notification resolved to the referenced
// message, as returned to the consuming user.
type NotificationView struct {
	MessageID int       `json:"message_id" db:"message_id"`
	ChatID    int       `json:"chat_id" db:"chat_id"`
	Author    string    `json:"author" db:"author"`
	Text      string    `json:"text" db:"text"`
	SentAt    time.Time `json:"sent_at" db:"sent_at"`
}
