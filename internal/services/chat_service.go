package services

import (
	"context"
	"log"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
	"PalMessenger/internal/repository"
)

// ChatService owns chat creation, membership and deletion. The initial
// sender is the only user allowed to change membership or delete the
// chat. Users with a block relation in either direction never end up in
// the same chat through this service.
type ChatService interface {
	CreateChat(ctx context.Context, creator string, members []string) (*models.Chat, error)
	AddMember(ctx context.Context, chatID int, requester, newMember string) error
	RemoveMember(ctx context.Context, chatID int, requester, member string) error
	DeleteChat(ctx context.Context, chatID int, requester string) error
	ListChatsFor(ctx context.Context, login string) ([]models.ChatWithLastMessage, error)
	Participants(ctx context.Context, chatID int) ([]string, error)
}

type chatService struct {
	users         repository.UserRepository
	relations     repository.RelationRepository
	chats         repository.ChatRepository
	messages      repository.MessageRepository
	notifications repository.NotificationRepository
	txManager     db.TxManager
}

func NewChatService(
	users repository.UserRepository,
	relations repository.RelationRepository,
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	notifications repository.NotificationRepository,
	txManager db.TxManager,
) ChatService {
	return &chatService{
		users:         users,
		relations:     relations,
		chats:         chats,
		messages:      messages,
		notifications: notifications,
		txManager:     txManager,
	}
}

func (cs *chatService) CreateChat(ctx context.Context, creator string, members []string) (*models.Chat, error) {
	if len(members) == 0 {
		return nil, models.ErrValidation
	}
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m == "" || m == creator {
			return nil, models.ErrValidation
		}
		if _, ok := seen[m]; ok {
			return nil, models.ErrValidation
		}
		seen[m] = struct{}{}
	}

	var chat *models.Chat
	err := cs.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		for _, m := range members {
			if err := cs.checkEligible(ctx, creator, m); err != nil {
				return err
			}
		}

		created, err := cs.chats.Create(ctx, creator)
		if err != nil {
			return err
		}

		if err := cs.chats.AddMember(ctx, created.ID, creator); err != nil {
			return err
		}
		for _, m := range members {
			if err := cs.chats.AddMember(ctx, created.ID, m); err != nil {
				return err
			}
		}

		chat = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Chat %d created by %s with %d members", chat.ID, creator, len(members)+1)
	return chat, nil
}

// checkEligible verifies the candidate is a registered login with no
// block relation to peer in either direction.
func (cs *chatService) checkEligible(ctx context.Context, peer, candidate string) error {
	candidateUser, err := cs.users.GetByLogin(ctx, candidate)
	if err != nil {
		return err
	}
	peerUser, err := cs.users.GetByLogin(ctx, peer)
	if err != nil {
		return err
	}

	blocked, err := cs.relations.IsMember(ctx, candidateUser.BlockListID, peer)
	if err != nil {
		return err
	}
	if !blocked {
		blocked, err = cs.relations.IsMember(ctx, peerUser.BlockListID, candidate)
		if err != nil {
			return err
		}
	}
	if blocked {
		log.Printf("Block relation between %s and %s vetoes chat membership", peer, candidate)
		return models.ErrBlockedParticipant
	}
	return nil
}

func (cs *chatService) AddMember(ctx context.Context, chatID int, requester, newMember string) error {
	if newMember == "" {
		return models.ErrValidation
	}

	return cs.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		chat, err := cs.chats.Get(ctx, chatID)
		if err != nil {
			return err
		}
		if chat.InitialSender != requester {
			return models.ErrOwnerOnly
		}

		isMember, err := cs.chats.IsMember(ctx, chatID, newMember)
		if err != nil {
			return err
		}
		if isMember {
			return models.ErrDuplicateMembership
		}

		if err := cs.checkEligible(ctx, chat.InitialSender, newMember); err != nil {
			return err
		}

		return cs.chats.AddMember(ctx, chatID, newMember)
	})
}

func (cs *chatService) RemoveMember(ctx context.Context, chatID int, requester, member string) error {
	return cs.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		chat, err := cs.chats.Get(ctx, chatID)
		if err != nil {
			return err
		}
		if chat.InitialSender != requester {
			return models.ErrOwnerOnly
		}
		if member == chat.InitialSender {
			// The owner leaves only by deleting the chat.
			return models.ErrCannotRemoveOwner
		}

		removed, err := cs.chats.RemoveMember(ctx, chatID, member)
		if err != nil {
			return err
		}
		if !removed {
			return models.ErrNotInChat
		}

		log.Printf("Participant %s removed from chat %d by %s", member, chatID, requester)
		return nil
	})
}

// DeleteChat cascades: dependent notifications first, then messages,
// then memberships and the chat row, all in one transaction.
func (cs *chatService) DeleteChat(ctx context.Context, chatID int, requester string) error {
	return cs.txManager.ReadCommitted(ctx, func(ctx context.Context) error {
		chat, err := cs.chats.Get(ctx, chatID)
		if err != nil {
			return err
		}
		if chat.InitialSender != requester {
			return models.ErrOwnerOnly
		}

		if err := cs.notifications.DeleteByChat(ctx, chatID); err != nil {
			return err
		}
		if err := cs.messages.DeleteByChat(ctx, chatID); err != nil {
			return err
		}
		if err := cs.chats.Delete(ctx, chatID); err != nil {
			return err
		}

		log.Printf("Chat %d deleted by %s", chatID, requester)
		return nil
	})
}

func (cs *chatService) ListChatsFor(ctx context.Context, login string) ([]models.ChatWithLastMessage, error) {
	return cs.chats.ListForUser(ctx, login)
}

func (cs *chatService) Participants(ctx context.Context, chatID int) ([]string, error) {
	if _, err := cs.chats.Get(ctx, chatID); err != nil {
		return nil, err
	}
	return cs.chats.Members(ctx, chatID)
}
