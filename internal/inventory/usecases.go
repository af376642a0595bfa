package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/internal/storage"
)

// Adjuster contém a lógica de negócio do ajuste de estoque
type Adjuster struct {
	repository             Repository
	logger                 *zap.Logger
	insufficientStockCount metric.Int64Counter
}

// NewAdjuster cria uma nova instância de Adjuster
func NewAdjuster(repository Repository, logger *zap.Logger) *Adjuster {
	counter, err := otel.Meter("storefront/inventory").Int64Counter(
		"inventory.insufficient_stock",
		metric.WithDescription("Reservations rejected because stock would go negative"),
	)
	if err != nil {
		logger.Warn("failed to create inventory counter", zap.Error(err))
	}

	return &Adjuster{
		repository:             repository,
		logger:                 logger,
		insufficientStockCount: counter,
	}
}

// Reserve diminui o estoque usando Lock Pessimista dentro da transação do chamador.
// O chamador é responsável pelo commit ou rollback.
func (a *Adjuster) Reserve(ctx context.Context, tx storage.Tx, orderID string, productID int64, count int) (int, error) {
	if count <= 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	// 1. Obtém o produto com LOCK PESSIMISTA (SELECT FOR UPDATE)
	// Isso bloqueia a linha no banco até o Commit ou Rollback
	product, err := a.repository.GetProductForUpdate(ctx, tx, productID)
	if err != nil {
		a.logger.Warn("❌ RESERVE FAILED: GetProductForUpdate",
			zap.String("order_id", orderID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return 0, err
	}

	// 2. Regra de Negócio: Verifica estoque
	if product.Quantity-count < 0 {
		a.logger.Info("❌ RESERVE FAILED: Insufficient stock",
			zap.String("order_id", orderID),
			zap.Int64("product_id", productID),
			zap.Int("available", product.Quantity),
			zap.Int("requested", count),
		)
		a.recordInsufficientStock(ctx, productID)
		return 0, fmt.Errorf("%w for product %d: available %d, requested %d",
			ErrInsufficientStock, productID, product.Quantity, count)
	}

	// 3. Executa a atualização do estoque e cria o registro de movimento
	newQuantity, err := a.repository.DecreaseStock(ctx, tx, productID, orderID, count)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			a.recordInsufficientStock(ctx, productID)
		}
		a.logger.Warn("❌ [RESERVE] Failed to update",
			zap.String("order_id", orderID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return 0, err
	}

	a.logger.Debug("✅ [RESERVE] Stock decreased",
		zap.String("order_id", orderID),
		zap.Int64("product_id", productID),
		zap.Int("count", count),
		zap.Int("new_quantity", newQuantity),
	)
	return newQuantity, nil
}

func (a *Adjuster) recordInsufficientStock(ctx context.Context, productID int64) {
	if a.insufficientStockCount == nil {
		return
	}
	a.insufficientStockCount.Add(ctx, 1, metric.WithAttributes(attribute.Int64("product_id", productID)))
}
