package repository

import (
	"context"
	"errors"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
)

type messageRepository struct {
	client db.QueryEngine
}

func NewMessageRepository(client db.QueryEngine) MessageRepository {
	return &messageRepository{client: client}
}

func (r *messageRepository) Insert(ctx context.Context, chatID int, author, text string) (*models.Message, error) {
	query := psql.Insert("messages").
		Columns("chat_id", "author", "text", "sent_at").
		Values(chatID, author, text, squirrel.Expr("NOW()")).
		Suffix("RETURNING id, sent_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build insert message", err)
	}

	msg := &models.Message{ChatID: chatID, Author: author, Text: text}
	if err := r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&msg.ID, &msg.SentAt); err != nil {
		return nil, models.NewStoreError("insert message", err)
	}

	log.Printf("Message saved: Chat ID %d, Author %s, Message ID: %d", chatID, author, msg.ID)
	return msg, nil
}

func (r *messageRepository) Get(ctx context.Context, messageID int) (*models.Message, error) {
	query := psql.Select("id", "chat_id", "author", "text", "sent_at").
		From("messages").
		Where(squirrel.Eq{"id": messageID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build select message", err)
	}

	var msg models.Message
	err = r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(
		&msg.ID, &msg.ChatID, &msg.Author, &msg.Text, &msg.SentAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrMessageNotFound
		}
		return nil, models.NewStoreError("select message", err)
	}
	return &msg, nil
}

// UpdateText replaces the text in place; id and sent_at keep their
// original values so the message keeps its slot in the chat order.
func (r *messageRepository) UpdateText(ctx context.Context, messageID int, text string) error {
	query := psql.Update("messages").
		Set("text", text).
		Where(squirrel.Eq{"id": messageID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build update message", err)
	}

	tag, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return models.NewStoreError("update message", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrMessageNotFound
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, messageID int) error {
	query := psql.Delete("messages").
		Where(squirrel.Eq{"id": messageID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build delete message", err)
	}

	if _, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...); err != nil {
		return models.NewStoreError("delete message", err)
	}

	log.Printf("Message %d deleted", messageID)
	return nil
}

func (r *messageRepository) DeleteByChat(ctx context.Context, chatID int) error {
	query := psql.Delete("messages").
		Where(squirrel.Eq{"chat_id": chatID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build delete chat messages", err)
	}

	if _, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...); err != nil {
		return models.NewStoreError("delete chat messages", err)
	}
	return nil
}

// Page returns one window of the chat history counted from the newest
// message backwards, in ascending (sent_at, id) order within the window.
func (r *messageRepository) Page(ctx context.Context, chatID, offset, limit int) ([]models.Message, error) {
	query := psql.Select("id", "chat_id", "author", "text", "sent_at").
		From("messages").
		Where(squirrel.Eq{"chat_id": chatID}).
		OrderBy("sent_at DESC", "id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build select messages", err)
	}

	rows, err := r.client.Querier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, models.NewStoreError("select messages", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ChatID, &msg.Author, &msg.Text, &msg.SentAt); err != nil {
			return nil, models.NewStoreError("scan message", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("iterate messages", err)
	}

	// Newest-first from the store; flip to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
