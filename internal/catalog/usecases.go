package catalog

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Catalog contém a lógica de consulta de produtos
type Catalog struct {
	repository Repository
	logger     *zap.Logger
}

// NewCatalog cria uma nova instância de Catalog
func NewCatalog(repository Repository, logger *zap.Logger) *Catalog {
	return &Catalog{
		repository: repository,
		logger:     logger,
	}
}

// Search returns one page of non-deleted products and the total number of
// products matching the same criteria.
func (c *Catalog) Search(ctx context.Context, criteria Criteria) (Page, error) {
	criteria = criteria.Normalize()

	ctx, span := otel.Tracer("storefront/catalog").Start(ctx, "catalog.Search")
	defer span.End()
	span.SetAttributes(
		attribute.Int("catalog.page", criteria.Page),
		attribute.Int("catalog.page_size", criteria.PageSize),
	)

	items, err := c.repository.Search(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("❌ Product search failed", zap.Error(err))
		return Page{}, err
	}

	total, err := c.repository.Count(ctx, criteria)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("❌ Product count failed", zap.Error(err))
		return Page{}, err
	}

	span.SetAttributes(attribute.Int64("catalog.total", total))

	return Page{
		Items:    items,
		Total:    total,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}, nil
}

// GetProduct busca um produto pelo ID
func (c *Catalog) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return c.repository.GetProduct(ctx, id)
}
