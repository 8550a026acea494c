package models

import (
	"time"
)

type Message struct {
	ID     int       `json:"id" db:"id"`
	ChatID int       `json:"chat_id" db:"chat_id"`
	Author string    `json:"author" db:"author"`
	Text   string    `json:"text" db:"text"`
	SentAt time.Time `json:"sent_at" db:"sent_at"`
}
