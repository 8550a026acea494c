package models

import (
	"time"
)

type User struct {
	ID            int       `json:"id" db:"id"`
	Login         string    `json:"login" db:"login"`
	PasswordHash  string    `json:"-" db:"password_hash"`
	Phone         string    `json:"phone" db:"phone"`
	Status        *string   `json:"status,omitempty" db:"status"`
	ContactListID int       `json:"-" db:"contact_list_id"`
	BlockListID   int       `json:"-" db:"block_list_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
