package reports

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Reporter contém as consultas de relatório de vendas
type Reporter struct {
	repository Repository
	cache      Cache
	logger     *zap.Logger
}

// NewReporter cria uma nova instância de Reporter. cache pode ser nil.
func NewReporter(repository Repository, cache Cache, logger *zap.Logger) *Reporter {
	return &Reporter{
		repository: repository,
		cache:      cache,
		logger:     logger,
	}
}

// RecentOrders retorna os pedidos mais novos primeiro
func (r *Reporter) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	limit = ClampLimit(limit)

	ctx, span := otel.Tracer("storefront/reports").Start(ctx, "reports.RecentOrders")
	defer span.End()
	span.SetAttributes(attribute.Int("report.limit", limit))

	orders, err := r.repository.RecentOrders(ctx, limit)
	if err != nil {
		span.RecordError(err)
		r.logger.Error("❌ Recent orders report failed", zap.Error(err))
		return nil, err
	}
	if orders == nil {
		orders = []RecentOrder{}
	}
	return orders, nil
}

// TopSellingProducts ranks products by units sold, ties by id.
func (r *Reporter) TopSellingProducts(ctx context.Context, limit int) ([]SalesRank, error) {
	return r.ranking(ctx, "products", limit, r.repository.TopSellingProducts)
}

// TopSellingCategories ranks categories by units sold, ties by id.
func (r *Reporter) TopSellingCategories(ctx context.Context, limit int) ([]SalesRank, error) {
	return r.ranking(ctx, "categories", limit, r.repository.TopSellingCategories)
}

func (r *Reporter) ranking(
	ctx context.Context,
	name string,
	limit int,
	load func(context.Context, int) ([]SalesRank, error),
) ([]SalesRank, error) {
	limit = ClampLimit(limit)
	key := fmt.Sprintf("top-%s:%d", name, limit)

	ctx, span := otel.Tracer("storefront/reports").Start(ctx, "reports.TopSelling")
	defer span.End()
	span.SetAttributes(attribute.String("report.name", name), attribute.Int("report.limit", limit))

	if r.cache != nil {
		var cached []SalesRank
		hit, err := r.cache.Get(ctx, key, &cached)
		if err != nil {
			r.logger.Warn("⚠️ Report cache read failed", zap.String("key", key), zap.Error(err))
		} else if hit {
			span.SetAttributes(attribute.Bool("report.cache_hit", true))
			return cached, nil
		}
	}

	ranks, err := load(ctx, limit)
	if err != nil {
		span.RecordError(err)
		r.logger.Error("❌ Sales ranking failed", zap.String("report", name), zap.Error(err))
		return nil, err
	}
	if ranks == nil {
		ranks = []SalesRank{}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, ranks); err != nil {
			r.logger.Warn("⚠️ Report cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return ranks, nil
}
