package db

import (
	"context"
	"log"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"PalMessenger/internal/models"
)

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
// Repositories run against whichever one the context carries.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// QueryEngine is what the repositories hold: anything that can hand
// out the querier for the ambient transaction.
type QueryEngine interface {
	Querier(ctx context.Context) Querier
}

type Client struct {
	pool *pgxpool.Pool
}

func NewClient(ctx context.Context, dsn string) (*Client, error) {
	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		return nil, models.NewStoreError("connect", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, models.NewStoreError("ping", err)
	}

	log.Println("Connected to database")
	return &Client{pool: pool}, nil
}

func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// Querier returns the transaction bound to ctx, or the pool when no
// transaction is open.
func (c *Client) Querier(ctx context.Context) Querier {
	if tx, ok := txFromContext(ctx); ok {
		return tx
	}
	return c.pool
}

func (c *Client) Close() {
	c.pool.Close()
}
