package reports

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository define as consultas de agregação de vendas
type Repository interface {
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	TopSellingProducts(ctx context.Context, limit int) ([]SalesRank, error)
	TopSellingCategories(ctx context.Context, limit int) ([]SalesRank, error)
}

// PostgresReportRepository implementa Repository usando PostgreSQL
type PostgresReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository cria uma nova instância de PostgresReportRepository
func NewReportRepository(db *pgxpool.Pool) *PostgresReportRepository {
	return &PostgresReportRepository{
		db: db,
	}
}

const recentOrdersQuery = `
	SELECT o.id::text, c.first_name, c.last_name, c.phone,
	       s.description, w.description, st.name, o.created_at,
	       COALESCE(array_agg(p.name ORDER BY oi.id) FILTER (WHERE p.id IS NOT NULL), '{}')::text[]
	FROM orders o
	JOIN order_contact_infos c ON c.order_id = o.id
	JOIN warehouses w ON w.id = c.warehouse_id
	JOIN settlements s ON s.id = w.settlement_id
	JOIN order_statuses st ON st.id = o.status_id
	LEFT JOIN order_items oi ON oi.order_id = o.id
	LEFT JOIN products p ON p.id = oi.product_id
	GROUP BY o.id, c.first_name, c.last_name, c.phone, s.description, w.description, st.name, o.created_at
	ORDER BY o.created_at DESC, o.id
	LIMIT $1
`

// RecentOrders retorna os pedidos mais recentes com contato e produtos
func (r *PostgresReportRepository) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	rows, err := r.db.Query(ctx, recentOrdersQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	result := make([]RecentOrder, 0, limit)
	for rows.Next() {
		var (
			order                 RecentOrder
			firstName, lastName   string
			settlement, warehouse string
		)
		err := rows.Scan(&order.OrderID, &firstName, &lastName, &order.CustomerPhone,
			&settlement, &warehouse, &order.Status, &order.CreatedAt, &order.Products)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent order: %w", err)
		}
		order.CustomerName = FormatCustomerName(firstName, lastName)
		order.PostAddress = FormatPostAddress(settlement, warehouse)
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent orders: %w", err)
	}
	return result, nil
}

const topProductsQuery = `
	SELECT p.id, p.name, SUM(oi.count)::bigint AS sold
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	GROUP BY p.id, p.name
	ORDER BY sold DESC, p.id ASC
	LIMIT $1
`

const topCategoriesQuery = `
	SELECT c.id, c.name, SUM(oi.count)::bigint AS sold
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	JOIN categories c ON c.id = p.category_id
	GROUP BY c.id, c.name
	ORDER BY sold DESC, c.id ASC
	LIMIT $1
`

// TopSellingProducts soma as unidades vendidas por produto
func (r *PostgresReportRepository) TopSellingProducts(ctx context.Context, limit int) ([]SalesRank, error) {
	return r.ranking(ctx, topProductsQuery, limit)
}

// TopSellingCategories soma as unidades vendidas por categoria
func (r *PostgresReportRepository) TopSellingCategories(ctx context.Context, limit int) ([]SalesRank, error) {
	return r.ranking(ctx, topCategoriesQuery, limit)
}

func (r *PostgresReportRepository) ranking(ctx context.Context, query string, limit int) ([]SalesRank, error) {
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales ranking: %w", err)
	}

	ranks, err := pgx.CollectRows(rows, pgx.RowToStructByPos[SalesRank])
	if err != nil {
		return nil, fmt.Errorf("failed to collect sales ranking: %w", err)
	}
	return ranks, nil
}
