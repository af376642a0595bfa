package basket

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/storefront/internal/storage"
)

// Repository define a interface para operações de banco de dados da cesta
type Repository interface {
	// List retorna as linhas da cesta com o preço atual dos produtos
	List(ctx context.Context, userID string) ([]Line, error)

	// Upsert define a quantidade desejada de um produto
	Upsert(ctx context.Context, userID string, productID int64, count int) error

	// Remove apaga uma linha da cesta
	Remove(ctx context.Context, userID string, productID int64) error

	// ListForCheckout lê a cesta dentro da transação, travando cesta e produtos
	ListForCheckout(ctx context.Context, tx storage.Tx, userID string) ([]Line, error)

	// Clear esvazia a cesta dentro da transação
	Clear(ctx context.Context, tx storage.Tx, userID string) error
}

// PostgresBasketRepository implementa Repository usando PostgreSQL
type PostgresBasketRepository struct {
	db *pgxpool.Pool
}

// NewBasketRepository cria uma nova instância de PostgresBasketRepository
func NewBasketRepository(db *pgxpool.Pool) *PostgresBasketRepository {
	return &PostgresBasketRepository{
		db: db,
	}
}

const basketLinesQuery = `
	SELECT b.user_id, b.product_id, b.count, p.name, p.price
	FROM basket_lines b
	JOIN products p ON p.id = b.product_id
	WHERE b.user_id = $1
	ORDER BY b.product_id
`

// List retorna as linhas da cesta com o preço atual dos produtos
func (r *PostgresBasketRepository) List(ctx context.Context, userID string) ([]Line, error) {
	rows, err := r.db.Query(ctx, basketLinesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list basket: %w", err)
	}
	return scanLines(rows)
}

// Upsert define a quantidade desejada de um produto não removido
func (r *PostgresBasketRepository) Upsert(ctx context.Context, userID string, productID int64, count int) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO basket_lines (user_id, product_id, count)
		SELECT $1, p.id, $3
		FROM products p
		WHERE p.id = $2 AND NOT p.is_deleted
		ON CONFLICT (user_id, product_id) DO UPDATE SET count = EXCLUDED.count
	`, userID, productID, count)
	if err != nil {
		return fmt.Errorf("failed to upsert basket line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrProductNotFound, productID)
	}
	return nil
}

// Remove apaga uma linha da cesta
func (r *PostgresBasketRepository) Remove(ctx context.Context, userID string, productID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM basket_lines WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove basket line: %w", err)
	}
	return nil
}

// ListForCheckout trava as linhas da cesta e os produtos referenciados em ordem de product_id,
// para que checkouts concorrentes adquiram os locks sempre na mesma ordem.
func (r *PostgresBasketRepository) ListForCheckout(ctx context.Context, tx storage.Tx, userID string) ([]Line, error) {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return nil, err
	}

	rows, err := pgTx.Query(ctx, basketLinesQuery+" FOR UPDATE", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read basket for checkout: %w", storage.TranslateError(err))
	}
	lines, err := scanLines(rows)
	if err != nil {
		return nil, storage.TranslateError(err)
	}
	return lines, nil
}

// Clear esvazia a cesta dentro da transação
func (r *PostgresBasketRepository) Clear(ctx context.Context, tx storage.Tx, userID string) error {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return err
	}

	if _, err := pgTx.Exec(ctx, `DELETE FROM basket_lines WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear basket: %w", storage.TranslateError(err))
	}
	return nil
}

func scanLines(rows pgx.Rows) ([]Line, error) {
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.UserID, &line.ProductID, &line.Count, &line.ProductName, &line.Price); err != nil {
			return nil, fmt.Errorf("failed to scan basket line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate basket lines: %w", err)
	}
	return lines, nil
}
