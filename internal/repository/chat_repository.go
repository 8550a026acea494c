package repository

import (
	"context"
	"errors"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
)

type chatRepository struct {
	client db.QueryEngine
}

func NewChatRepository(client db.QueryEngine) ChatRepository {
	return &chatRepository{client: client}
}

func (r *chatRepository) Create(ctx context.Context, initialSender string) (*models.Chat, error) {
	query := psql.Insert("chats").
		Columns("initial_sender").
		Values(initialSender).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build insert chat", err)
	}

	chat := &models.Chat{InitialSender: initialSender}
	if err := r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&chat.ID, &chat.CreatedAt); err != nil {
		return nil, models.NewStoreError("insert chat", err)
	}

	log.Printf("Chat created with ID %d by %s", chat.ID, initialSender)
	return chat, nil
}

func (r *chatRepository) Get(ctx context.Context, chatID int) (*models.Chat, error) {
	query := psql.Select("id", "initial_sender", "created_at").
		From("chats").
		Where(squirrel.Eq{"id": chatID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build select chat", err)
	}

	var chat models.Chat
	err = r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&chat.ID, &chat.InitialSender, &chat.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrChatNotFound
		}
		return nil, models.NewStoreError("select chat", err)
	}
	return &chat, nil
}

func (r *chatRepository) AddMember(ctx context.Context, chatID int, login string) error {
	query := psql.Insert("chat_members").
		Columns("chat_id", "member_login").
		Values(chatID, login)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build insert chat member", err)
	}

	if _, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateMembership
		}
		return models.NewStoreError("insert chat member", err)
	}

	log.Printf("Participant %s added to chat %d", login, chatID)
	return nil
}

func (r *chatRepository) RemoveMember(ctx context.Context, chatID int, login string) (bool, error) {
	query := psql.Delete("chat_members").
		Where(squirrel.And{
			squirrel.Eq{"chat_id": chatID},
			squirrel.Eq{"member_login": login},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, models.NewStoreError("build delete chat member", err)
	}

	tag, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, models.NewStoreError("delete chat member", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *chatRepository) IsMember(ctx context.Context, chatID int, login string) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM chat_members
            WHERE chat_id = $1 AND member_login = $2
        )
    `

	var exists bool
	if err := r.client.Querier(ctx).QueryRow(ctx, query, chatID, login).Scan(&exists); err != nil {
		return false, models.NewStoreError("check chat member", err)
	}
	return exists, nil
}

func (r *chatRepository) Members(ctx context.Context, chatID int) ([]string, error) {
	query := psql.Select("member_login").
		From("chat_members").
		Where(squirrel.Eq{"chat_id": chatID}).
		OrderBy("member_login")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build select chat members", err)
	}

	rows, err := r.client.Querier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, models.NewStoreError("select chat members", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var login string
		if err := rows.Scan(&login); err != nil {
			return nil, models.NewStoreError("scan chat member", err)
		}
		members = append(members, login)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("iterate chat members", err)
	}
	return members, nil
}

// ListForUser returns the chats the user belongs to, most recently
// active first. Chats without messages sort last.
func (r *chatRepository) ListForUser(ctx context.Context, login string) ([]models.ChatWithLastMessage, error) {
	query := psql.Select("chats.id", "chats.initial_sender", "chats.created_at",
		"MAX(messages.sent_at) AS last_message_at").
		From("chats").
		Join("chat_members ON chats.id = chat_members.chat_id").
		LeftJoin("messages ON messages.chat_id = chats.id").
		Where(squirrel.Eq{"chat_members.member_login": login}).
		GroupBy("chats.id", "chats.initial_sender", "chats.created_at").
		OrderBy("last_message_at DESC NULLS LAST", "chats.id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build select chats", err)
	}

	rows, err := r.client.Querier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, models.NewStoreError("select chats", err)
	}
	defer rows.Close()

	var chats []models.ChatWithLastMessage
	for rows.Next() {
		var chat models.ChatWithLastMessage
		var lastAt pgtype.Timestamptz
		if err := rows.Scan(&chat.ID, &chat.InitialSender, &chat.CreatedAt, &lastAt); err != nil {
			return nil, models.NewStoreError("scan chat", err)
		}
		if lastAt.Status == pgtype.Present {
			t := lastAt.Time
			chat.LastMessageAt = &t
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("iterate chats", err)
	}
	return chats, nil
}

// Delete removes the chat row and its memberships. Messages and
// notifications are cleared by the service beforehand, in the same
// transaction.
func (r *chatRepository) Delete(ctx context.Context, chatID int) error {
	q := r.client.Querier(ctx)

	memberQuery := psql.Delete("chat_members").
		Where(squirrel.Eq{"chat_id": chatID})
	sqlStr, args, err := memberQuery.ToSql()
	if err != nil {
		return models.NewStoreError("build delete chat members", err)
	}
	if _, err := q.Exec(ctx, sqlStr, args...); err != nil {
		return models.NewStoreError("delete chat members", err)
	}

	chatQuery := psql.Delete("chats").
		Where(squirrel.Eq{"id": chatID})
	sqlStr, args, err = chatQuery.ToSql()
	if err != nil {
		return models.NewStoreError("build delete chat", err)
	}
	if _, err := q.Exec(ctx, sqlStr, args...); err != nil {
		return models.NewStoreError("delete chat", err)
	}

	log.Printf("Chat %d deleted", chatID)
	return nil
}
