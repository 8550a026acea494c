package repository

import (
	"context"
	"log"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgtype"

	"PalMessenger/internal/db"
	"PalMessenger/internal/models"
)

type relationRepository struct {
	client db.QueryEngine
}

func NewRelationRepository(client db.QueryEngine) RelationRepository {
	return &relationRepository{client: client}
}

func (r *relationRepository) IsMember(ctx context.Context, listID int, login string) (bool, error) {
	query := psql.Select("COUNT(*)").
		From("user_list_members").
		Where(squirrel.And{
			squirrel.Eq{"list_id": listID},
			squirrel.Eq{"member_login": login},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, models.NewStoreError("build count list members", err)
	}

	var count int
	if err := r.client.Querier(ctx).QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return false, models.NewStoreError("count list members", err)
	}
	return count > 0, nil
}

// Add inserts the membership. The UNIQUE(list_id, member_login)
// constraint backstops concurrent check-then-insert races.
func (r *relationRepository) Add(ctx context.Context, listID int, login string) error {
	query := psql.Insert("user_list_members").
		Columns("list_id", "member_login").
		Values(listID, login)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return models.NewStoreError("build insert list member", err)
	}

	if _, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return models.ErrAlreadyRelated
		}
		return models.NewStoreError("insert list member", err)
	}

	log.Printf("User %s added to list %d", login, listID)
	return nil
}

func (r *relationRepository) Remove(ctx context.Context, listID int, login string) (bool, error) {
	query := psql.Delete("user_list_members").
		Where(squirrel.And{
			squirrel.Eq{"list_id": listID},
			squirrel.Eq{"member_login": login},
		})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, models.NewStoreError("build delete list member", err)
	}

	tag, err := r.client.Querier(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return false, models.NewStoreError("delete list member", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *relationRepository) ListMembers(ctx context.Context, listID int) ([]models.RelationRow, error) {
	query := psql.Select("m.member_login", "u.status").
		From("user_list_members m").
		Join("users u ON u.login = m.member_login").
		Where(squirrel.Eq{"m.list_id": listID}).
		OrderBy("m.member_login")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, models.NewStoreError("build select list members", err)
	}

	rows, err := r.client.Querier(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, models.NewStoreError("select list members", err)
	}
	defer rows.Close()

	var members []models.RelationRow
	for rows.Next() {
		var row models.RelationRow
		var status pgtype.Text
		if err := rows.Scan(&row.Login, &status); err != nil {
			return nil, models.NewStoreError("scan list member", err)
		}
		if status.Status == pgtype.Present {
			s := status.String
			row.Status = &s
		}
		members = append(members, row)
	}
	if err := rows.Err(); err != nil {
		return nil, models.NewStoreError("iterate list members", err)
	}
	return members, nil
}
