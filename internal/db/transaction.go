package db

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"PalMessenger/internal/models"
)

type txKey struct{}

func injectTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func txFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// TxManager wraps a function in a read-committed transaction. Every
// public service operation is one such unit: either all of its reads,
// checks and writes apply, or none of them.
type TxManager interface {
	ReadCommitted(ctx context.Context, fn func(ctx context.Context) error) error
}

type txManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(client *Client) TxManager {
	return &txManager{pool: client.Pool()}
}

func (m *txManager) ReadCommitted(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested calls join the transaction already bound to the context.
	if _, ok := txFromContext(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return models.NewStoreError("begin tx", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Printf("Error rolling back after panic: %v", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(injectTx(ctx, tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Printf("Error rolling back transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return models.NewStoreError("commit tx", err)
	}
	return nil
}
