package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx representa uma unidade de trabalho aberta no banco
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner abre novas transações
type Beginner interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// PostgresTx implementa a interface Tx sobre pgx.Tx
type PostgresTx struct {
	tx pgx.Tx
}

func (t *PostgresTx) Commit(ctx context.Context) error {
	return TranslateError(t.tx.Commit(ctx))
}

// Rollback is a no-op once the transaction was committed.
func (t *PostgresTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// PgxTx extracts the underlying pgx transaction. Repositories backed by
// PostgreSQL only accept transactions opened by PostgresBeginner.
func PgxTx(tx Tx) (pgx.Tx, error) {
	pgTx, ok := tx.(*PostgresTx)
	if !ok || pgTx == nil {
		return nil, fmt.Errorf("unsupported transaction type %T", tx)
	}
	return pgTx.tx, nil
}

// PostgresBeginner abre transações READ COMMITTED com lock_timeout limitado
type PostgresBeginner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgresBeginner cria uma nova instância de PostgresBeginner
func NewPostgresBeginner(pool *pgxpool.Pool, lockTimeout time.Duration) *PostgresBeginner {
	return &PostgresBeginner{
		pool:        pool,
		lockTimeout: lockTimeout,
	}
}

// BeginTx inicia uma nova transação
func (b *PostgresBeginner) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := b.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	if b.lockTimeout > 0 {
		// SET LOCAL does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", b.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			_ = tx.Rollback(ctx)
			return nil, fmt.Errorf("failed to set lock timeout: %w", err)
		}
	}

	return &PostgresTx{tx: tx}, nil
}
