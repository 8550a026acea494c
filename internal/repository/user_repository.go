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

type userRepository struct {
	client db.QueryEngine
}

func NewUserRepository(client db.QueryEngine) UserRepository {
	return &userRepository{client: client}
}

// Create inserts the user together with its empty contact and block
// lists. The caller is expected to hold a transaction so that the three
// inserts land atomically.
func (r *userRepository) Create(ctx context.Context, login, passwordHash, phone string) (*models.User, error) {
	q := r.client.Querier(ctx)

	contactListID, err := r.createList(ctx, models.ListKindContact)
	if err != nil {
		return nil, err
	}
	blockListID, err := r.createList(ctx, models.ListKindBlock)
	if err != nil {
		return nil, err
	}

	query := psql.Insert("users").
		Columns("login", "password_hash", "phone", "contact_list_id", "block_list_id").
		Values(login, passwordHash, phone, contactListID, blockListID).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build insert user", err)
	}

	user := &models.User{
		Login:         login,
		PasswordHash:  passwordHash,
		Phone:         phone,
		ContactListID: contactListID,
		BlockListID:   blockListID,
	}
	if err := q.QueryRow(ctx, sqlStr, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrLoginTaken
		}
		return nil, models.NewStoreError("insert user", err)
	}

	log.Printf("User created: %s (ID: %d)", user.Login, user.ID)
	return user, nil
}

func (r *userRepository) createList(ctx context.Context, kind string) (int, error) {
	query := psql.Insert("user_lists").
		Columns("kind").
		Values(kind).
		Suffix("RETURNING id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, models.NewStoreError("build insert list", err)
	}

	var id int
	if err := r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		return 0, models.NewStoreError("insert list", err)
	}
	return id, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := psql.Select("id", "login", "password_hash", "phone", "status",
		"contact_list_id", "block_list_id", "created_at").
		From("users").
		Where(squirrel.Eq{"login": login})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build select user", err)
	}

	var user models.User
	var status pgtype.Text
	err = r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(
		&user.ID, &user.Login, &user.PasswordHash, &user.Phone, &status,
		&user.ContactListID, &user.BlockListID, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, models.NewStoreError("select user", err)
	}

	if status.Status == pgtype.Present {
		s := status.String
		user.Status = &s
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, login string) (bool, error) {
	query := psql.Select("COUNT(*)").
		From("users").
		Where(squirrel.Eq{"login": login})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, models.NewStoreError("build count users", err)
	}

	var count int
	if err := r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return false, models.NewStoreError("count users", err)
	}
	return count > 0, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, login string, status *string) error {
	query := psql.Update("users").
		Set("status", status).
		Where(squirrel.Eq{"login": login})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build update status", err)
	}

	tag, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return models.NewStoreError("update status", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}
