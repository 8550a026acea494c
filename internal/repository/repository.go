package repository

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgconn"

	"PalMessenger/internal/models"
)

// Repositories translate between the store and typed rows. They never
// decide business rules; the services do, inside a transaction spanning
// all repository calls of one operation.

type UserRepository interface {
	Create(ctx context.Context, login, passwordHash, phone string) (*models.User, error)
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	Exists(ctx context.Context, login string) (bool, error)
	UpdateStatus(ctx context.Context, login string, status *string) error
}

type RelationRepository interface {
	IsMember(ctx context.Context, listID int, login string) (bool, error)
	Add(ctx context.Context, listID int, login string) error
	Remove(ctx context.Context, listID int, login string) (bool, error)
	ListMembers(ctx context.Context, listID int) ([]models.RelationRow, error)
}

type ChatRepository interface {
	Create(ctx context.Context, initialSender string) (*models.Chat, error)
	Get(ctx context.Context, chatID int) (*models.Chat, error)
	AddMember(ctx context.Context, chatID int, login string) error
	RemoveMember(ctx context.Context, chatID int, login string) (bool, error)
	IsMember(ctx context.Context, chatID int, login string) (bool, error)
	Members(ctx context.Context, chatID int) ([]string, error)
	ListForUser(ctx context.Context, login string) ([]models.ChatWithLastMessage, error)
	Delete(ctx context.Context, chatID int) error
}

type MessageRepository interface {
	Insert(ctx context.Context, chatID int, author, text string) (*models.Message, error)
	Get(ctx context.Context, messageID int) (*models.Message, error)
	UpdateText(ctx context.Context, messageID int, text string) error
	Delete(ctx context.Context, messageID int) error
	DeleteByChat(ctx context.Context, chatID int) error
	Page(ctx context.Context, chatID, offset, limit int) ([]models.Message, error)
}

type NotificationRepository interface {
	Insert(ctx context.Context, recipient string, messageID int) error
	Claim(ctx context.Context, recipient string) ([]int, error)
	Resolve(ctx context.Context, messageIDs []int) ([]models.NotificationView, error)
	DeleteByMessage(ctx context.Context, messageID int) error
	DeleteByChat(ctx context.Context, chatID int) error
}

// psql builds statements with Postgres dollar placeholders.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
