package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/storefront/internal/storage"
)

// Repository define as operações de banco de dados de inventário.
// Todas as operações rodam dentro da transação recebida.
type Repository interface {
	GetProductForUpdate(ctx context.Context, tx storage.Tx, productID int64) (*ProductStock, error)
	DecreaseStock(ctx context.Context, tx storage.Tx, productID int64, orderID string, count int) (int, error)
}

// PostgresInventoryRepository implementa Repository usando PostgreSQL
type PostgresInventoryRepository struct{}

// NewInventoryRepository cria uma nova instância de PostgresInventoryRepository
func NewInventoryRepository() *PostgresInventoryRepository {
	return &PostgresInventoryRepository{}
}

// GetProductForUpdate obtém o produto com lock pessimista (FOR UPDATE)
func (r *PostgresInventoryRepository) GetProductForUpdate(ctx context.Context, tx storage.Tx, productID int64) (*ProductStock, error) {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, price, quantity
		FROM products
		WHERE id = $1 AND NOT is_deleted
		FOR UPDATE
	`

	var product ProductStock
	err = pgTx.QueryRow(ctx, query, productID).Scan(
		&product.ProductID,
		&product.Name,
		&product.Price,
		&product.Quantity,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, productID)
		}
		return nil, fmt.Errorf("failed to get product with lock: %w", storage.TranslateError(err))
	}

	return &product, nil
}

// DecreaseStock diminui o estoque e registra o movimento, retornando a nova quantidade
func (r *PostgresInventoryRepository) DecreaseStock(ctx context.Context, tx storage.Tx, productID int64, orderID string, count int) (int, error) {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return 0, err
	}

	// 1. Atualiza o estoque do produto; a condição protege o invariante mesmo sem o lock prévio
	updateQuery := `
		UPDATE products
		SET quantity = quantity - $1
		WHERE id = $2 AND quantity >= $1
		RETURNING quantity
	`

	var newQuantity int
	err = pgTx.QueryRow(ctx, updateQuery, count, productID).Scan(&newQuantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w for product %d", ErrInsufficientStock, productID)
		}
		return 0, fmt.Errorf("failed to decrease stock: %w", storage.TranslateError(err))
	}

	// 2. Insere o registro de movimentação
	insertQuery := `
		INSERT INTO inventory_movements (id, product_id, order_id, change_quantity, movement_type)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = pgTx.Exec(ctx, insertQuery, uuid.New().String(), productID, orderID, count, MovementTypeDecreased)
	if err != nil {
		return 0, fmt.Errorf("failed to insert movement record: %w", storage.TranslateError(err))
	}

	return newQuantity, nil
}
