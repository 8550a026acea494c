package services

import (
	"context"
	"log"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
	"PalMessenger/internal/repository"
)

// PageSize is the fixed window of the chat history pager.
const PageSize = 10

// MessageService owns the ordered message history of a chat. Messages
// are totally ordered by (sent_at, id); ids are monotone, so equal
// timestamps never leave the order ambiguous.
type MessageService interface {
	PostMessage(ctx context.Context, chatID int, author, text string) (*models.Message, error)
	EditMessage(ctx context.Context, messageID int, requester, newText string) error
	DeleteMessage(ctx context.Context, messageID int, requester string) error
	LoadPage(ctx context.Context, chatID, depth int) ([]models.Message, error)
}

type messageService struct {
	chats         repository.ChatRepository
	messages      repository.MessageRepository
	notifications NotificationService
	txManager     db.TxManager
}

func NewMessageService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	notifications NotificationService,
	txManager db.TxManager,
) MessageService {
	return &messageService{
		chats:         chats,
		messages:      messages,
		notifications: notifications,
		txManager:     txManager,
	}
}

// PostMessage appends to the chat history and fans a notification out
// to every other member. The insert and the fan-out commit together.
func (ms *messageService) PostMessage(ctx context.Context, chatID int, author, text string) (*models.Message, error) {
	if text == "" {
		return nil, models.ErrValidation
	}

	var msg *models.Message
	err := ms.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		isMember, err := ms.chats.IsMember(ctx, chatID, author)
		if err != nil {
			return err
		}
		if !isMember {
			log.Printf("User %s is not a member of chat %d", author, chatID)
			return models.ErrNotInChat
		}

		inserted, err := ms.messages.Insert(ctx, chatID, author, text)
		if err != nil {
			return err
		}

		if err := ms.notifications.Fanout(ctx, chatID, inserted.ID, author); err != nil {
			return err
		}

		msg = inserted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (ms *messageService) EditMessage(ctx context.Context, messageID int, requester, newText string) error {
	if newText == "" {
		return models.ErrValidation
	}

	return ms.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		msg, err := ms.messages.Get(ctx, messageID)
		if err != nil {
			return err
		}
		if msg.Author != requester {
			return models.ErrOwnerMismatch
		}

		if err := ms.messages.UpdateText(ctx, messageID, newText); err != nil {
			return err
		}

		log.Printf("Message %d edited by %s", messageID, requester)
		return nil
	})
}

func (ms *messageService) DeleteMessage(ctx context.Context, messageID int, requester string) error {
	return ms.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		msg, err := ms.messages.Get(ctx, messageID)
		if err != nil {
			return err
		}
		if msg.Author != requester {
			return models.ErrOwnerMismatch
		}

		// Unread notifications must not outlive their message.
		if err := ms.notifications.DeleteByMessage(ctx, messageID); err != nil {
			return err
		}
		return ms.messages.Delete(ctx, messageID)
	})
}

// LoadPage returns the window at depth*PageSize counted back from the
// newest message, in chronological order. Depth 0 is the most recent
// window; a depth past the history yields an empty page.
func (ms *messageService) LoadPage(ctx context.Context, chatID, depth int) ([]models.Message, error) {
	if depth < 0 {
		return nil, models.ErrValidation
	}
	if _, err := ms.chats.Get(ctx, chatID); err != nil {
		return nil, err
	}
	return ms.messages.Page(ctx, chatID, depth*PageSize, PageSize)
}
