package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository define a interface de leitura do catálogo
type Repository interface {
	Search(ctx context.Context, criteria Criteria) ([]Product, error)
	Count(ctx context.Context, criteria Criteria) (int64, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
}

// PostgresCatalogRepository implementa Repository usando PostgreSQL
type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

// NewCatalogRepository cria uma nova instância de PostgresCatalogRepository
func NewCatalogRepository(db *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

const productColumns = "id, name, price, quantity, category_id, is_deleted, created_at"

// searchQuery returns the page query for already normalized criteria.
func searchQuery(c Criteria) (string, []any) {
	f := buildFilter(c)
	args := append(f.args, c.PageSize, c.Offset())
	query := "SELECT " + productColumns + " FROM products" + f.where() +
		" ORDER BY id ASC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))
	return query, args
}

// countQuery returns the total query sharing the page query's predicate.
func countQuery(c Criteria) (string, []any) {
	f := buildFilter(c)
	return "SELECT COUNT(*) FROM products" + f.where(), f.args
}

// Search busca uma página de produtos
func (r *PostgresCatalogRepository) Search(ctx context.Context, criteria Criteria) ([]Product, error) {
	query, args := searchQuery(criteria)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0, criteria.PageSize)
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CategoryID, &p.IsDeleted, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// Count conta os produtos que atendem aos filtros
func (r *PostgresCatalogRepository) Count(ctx context.Context, criteria Criteria) (int64, error) {
	query, args := countQuery(criteria)

	var total int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

// GetProduct busca um produto não removido pelo ID
func (r *PostgresCatalogRepository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.QueryRow(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = $1 AND NOT is_deleted", id,
	).Scan(&p.ID, &p.Name, &p.Price, &p.Quantity, &p.CategoryID, &p.IsDeleted, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}
