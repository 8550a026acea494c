package repository

import (
	"context"
	"log"

	"github.com/Masterminds/squirrel"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
)

type notificationRepository struct {
	client db.QueryEngine
}

func NewNotificationRepository(client db.QueryEngine) NotificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) Insert(ctx context.Context, recipient string, messageID int) error {
	query := psql.Insert("notifications").
		Columns("recipient_login", "message_id").
		Values(recipient, messageID)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build insert notification", err)
	}

	if _, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...); err != nil {
		// The (recipient, message) pair is the primary key; a repeat
		// fan-out of the same message is a no-op.
		if isUniqueViolation(err) {
			return nil
		}
		return models.NewStoreError("insert notification", err)
	}
	return nil
}

// Claim deletes every pending entry of the recipient and returns the
// claimed message ids. The DELETE .. RETURNING runs as one statement,
// so two concurrent readers can never claim the same row: the loser
// gets whatever rows are left, usually none.
func (r *notificationRepository) Claim(ctx context.Context, recipient string) ([]int, error) {
	query := psql.Delete("notifications").
		Where(squirrel.Eq{"recipient_login": recipient}).
		Suffix("RETURNING message_id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build claim notifications", err)
	}

	rows, err := r.client.Querier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, models.NewStoreError("claim notifications", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, models.NewStoreError("scan claimed notification", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("iterate claimed notifications", err)
	}

	if len(ids) > 0 {
		log.Printf("Consumed %d notifications for %s", len(ids), recipient)
	}
	return ids, nil
}

// Resolve loads the message content behind claimed ids, oldest first.
func (r *notificationRepository) Resolve(ctx context.Context, messageIDs []int) ([]models.NotificationView, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	query := psql.Select("id", "chat_id", "author", "text", "sent_at").
		From("messages").
		Where(squirrel.Eq{"id": messageIDs}).
		OrderBy("sent_at", "id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build resolve notifications", err)
	}

	rows, err := r.client.Querier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, models.NewStoreError("resolve notifications", err)
	}
	defer rows.Close()

	var views []models.NotificationView
	for rows.Next() {
		var v models.NotificationView
		if err := rows.Scan(&v.MessageID, &v.ChatID, &v.Author, &v.Text, &v.SentAt); err != nil {
			return nil, models.NewStoreError("scan notification", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("iterate notifications", err)
	}
	return views, nil
}

func (r *notificationRepository) DeleteByMessage(ctx context.Context, messageID int) error {
	query := psql.Delete("notifications").
		Where(squirrel.Eq{"message_id": messageID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build delete message notifications", err)
	}

	if _, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...); err != nil {
		return models.NewStoreError("delete message notifications", err)
	}
	return nil
}

func (r *notificationRepository) DeleteByChat(ctx context.Context, chatID int) error {
	sqlStr := `
        DELETE FROM notifications
        WHERE message_id IN (SELECT id FROM messages WHERE chat_id = $1)
    `

	if _, err := r.client.Querier(ctx).Exec(ctx, sqlStr, chatID); err != nil {
		return models.NewStoreError("delete chat notifications", err)
	}
	return nil
}
