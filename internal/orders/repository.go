package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/storefront/internal/storage"
)

// Repository define a interface para operações de banco de dados de pedidos
type Repository interface {
	// CreateOrder cria um novo pedido dentro da transação
	CreateOrder(ctx context.Context, tx storage.Tx, order *Order) error

	// CreateContactInfo grava o snapshot de contato do pedido
	CreateContactInfo(ctx context.Context, tx storage.Tx, orderID string, contact ContactInfo) error

	// CreateOrderItem grava um item do pedido e preenche o ID gerado
	CreateOrderItem(ctx context.Context, tx storage.Tx, item *OrderItem) error

	// WarehouseExists verifica a referência de local de entrega
	WarehouseExists(ctx context.Context, tx storage.Tx, warehouseID int64) (bool, error)

	// GetOrder busca um pedido confirmado pelo ID
	GetOrder(ctx context.Context, orderID string) (*OrderDetails, error)
}

// OrderRepository implementa Repository usando PostgreSQL
type OrderRepository struct {
	db *pgxpool.Pool
}

// NewOrderRepository cria uma nova instância de OrderRepository
func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		db: db,
	}
}

// CreateOrder cria um novo pedido no banco de dados
func (r *OrderRepository) CreateOrder(ctx context.Context, tx storage.Tx, order *Order) error {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return err
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO orders (id, user_id, status_id, created_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID, order.UserID, order.StatusID, order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", storage.TranslateError(err))
	}
	return nil
}

// CreateContactInfo grava o snapshot de contato do pedido
func (r *OrderRepository) CreateContactInfo(ctx context.Context, tx storage.Tx, orderID string, contact ContactInfo) error {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return err
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO order_contact_infos (order_id, first_name, last_name, phone, warehouse_id)
		VALUES ($1, $2, $3, $4, $5)
	`, orderID, contact.FirstName, contact.LastName, contact.Phone, contact.WarehouseID)
	if err != nil {
		return fmt.Errorf("failed to create order contact info: %w", storage.TranslateError(err))
	}
	return nil
}

// CreateOrderItem grava um item do pedido
func (r *OrderRepository) CreateOrderItem(ctx context.Context, tx storage.Tx, item *OrderItem) error {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return err
	}

	err = pgTx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, product_id, price, count, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, item.OrderID, item.ProductID, item.Price, item.Count, item.CreatedAt).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to create order item: %w", storage.TranslateError(err))
	}
	return nil
}

// WarehouseExists verifica se o armazém de entrega existe
func (r *OrderRepository) WarehouseExists(ctx context.Context, tx storage.Tx, warehouseID int64) (bool, error) {
	pgTx, err := storage.PgxTx(tx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = pgTx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM warehouses WHERE id = $1)", warehouseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check warehouse: %w", storage.TranslateError(err))
	}
	return exists, nil
}

// GetOrder busca um pedido pelo ID
func (r *OrderRepository) GetOrder(ctx context.Context, orderID string) (*OrderDetails, error) {
	var details OrderDetails
	err := r.db.QueryRow(ctx, `
		SELECT o.id, o.user_id, o.status_id, o.created_at, s.name,
		       c.first_name, c.last_name, c.phone, c.warehouse_id
		FROM orders o
		JOIN order_statuses s ON s.id = o.status_id
		JOIN order_contact_infos c ON c.order_id = o.id
		WHERE o.id = $1
	`, orderID).Scan(
		&details.ID, &details.UserID, &details.StatusID, &details.CreatedAt, &details.Status,
		&details.Contact.FirstName, &details.Contact.LastName, &details.Contact.Phone, &details.Contact.WarehouseID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, price, count, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	details.Items = make([]OrderItem, 0)
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Price, &item.Count, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		details.Items = append(details.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order items: %w", err)
	}

	return &details, nil
}
