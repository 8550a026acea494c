package db

import (
	"database/sql"
	"embed"
	"log"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"PalMessenger/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded goose migrations. It opens its own
// database/sql connection because goose does not speak pgxpool.
func Migrate(dsn string) error {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return models.NewStoreError("open migration connection", err)
	}
	defer conn.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return models.NewStoreError("set migration dialect", err)
	}

	if err := goose.Up(conn, "migrations"); err != nil {
		return models.NewStoreError("apply migrations", err)
	}

	log.Println("Migrations applied")
	return nil
}
