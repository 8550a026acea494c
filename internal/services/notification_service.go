package services

import (
	"context"
	"log"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
	"PalMessenger/internal/repository"
)

// NotificationService owns each user's pending inbox. An entry exists
// only while its message does, and reading consumes it: a notification
// is delivered to its recipient at most once.
type NotificationService interface {
	Fanout(ctx context.Context, chatID, messageID int, excludeAuthor string) error
	ReadAll(ctx context.Context, recipient string) ([]models.NotificationView, error)
	DeleteByMessage(ctx context.Context, messageID int) error
}

type notificationService struct {
	chats         repository.ChatRepository
	notifications repository.NotificationRepository
	txManager     db.TxManager
}

func NewNotificationService(
	chats repository.ChatRepository,
	notifications repository.NotificationRepository,
	txManager db.TxManager,
) NotificationService {
	return &notificationService{
		chats:         chats,
		notifications: notifications,
		txManager:     txManager,
	}
}

// Fanout creates one entry per current chat member except the author.
// It joins the caller's transaction, so the fan-out commits together
// with the message that triggered it.
func (ns *notificationService) Fanout(ctx context.Context, chatID, messageID int, excludeAuthor string) error {
	return ns.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		members, err := ns.chats.Members(ctx, chatID)
		if err != nil {
			return err
		}

		delivered := 0
		for _, m := range members {
			if m == excludeAuthor {
				continue
			}
			if err := ns.notifications.Insert(ctx, m, messageID); err != nil {
				return err
			}
			delivered++
		}

		log.Printf("Message %d fanned out to %d recipients", messageID, delivered)
		return nil
	})
}

// ReadAll claims the recipient's pending entries and resolves them to
// message content, all in one transaction. The claim is a single
// delete-returning statement, so each entry goes to exactly one
// caller; a concurrent or repeat call sees none of them.
func (ns *notificationService) ReadAll(ctx context.Context, recipient string) ([]models.NotificationView, error) {
	var views []models.NotificationView
	err := ns.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		ids, err := ns.notifications.Claim(ctx, recipient)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		views, err = ns.notifications.Resolve(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

func (ns *notificationService) DeleteByMessage(ctx context.Context, messageID int) error {
	return ns.notifications.DeleteByMessage(ctx, messageID)
}
