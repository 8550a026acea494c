package models

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrChatNotFound         = errors.New("chat not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrLoginTaken           = errors.New("login is already taken")
	ErrSelfReference        = errors.New("cannot add yourself to the list")
	ErrAlreadyRelated       = errors.New("user is already in the list")
	ErrNotInList            = errors.New("user is not in the list")
	ErrNotInChat            = errors.New("user is not a member of the chat")
	ErrOwnerOnly            = errors.New("only the chat owner can do this")
	ErrCannotRemoveOwner    = errors.New("the chat owner cannot be removed")
	ErrDuplicateMembership  = errors.New("user is already a member of the chat")
	ErrBlockedParticipant   = errors.New("blocked users cannot share a chat")
	ErrOwnerMismatch        = errors.New("only the author can change the message")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrValidation           = errors.New("invalid input")
)

// StoreError wraps any failure coming from the persistence layer. The
// wrapped error stays reachable through errors.Is/errors.As.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
