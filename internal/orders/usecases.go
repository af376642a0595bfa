package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/internal/basket"
	"github.com/matheusmosca/storefront/internal/identity"
	"github.com/matheusmosca/storefront/internal/storage"
)

// BasketReader lê e esvazia a cesta dentro da transação do checkout
type BasketReader interface {
	ListForCheckout(ctx context.Context, tx storage.Tx, userID string) ([]basket.Line, error)
	Clear(ctx context.Context, tx storage.Tx, userID string) error
}

// StockReserver diminui o estoque dentro da transação do checkout
type StockReserver interface {
	Reserve(ctx context.Context, tx storage.Tx, orderID string, productID int64, count int) (int, error)
}

// maxPlaceAttempts limits how many times a checkout runs when the
// database reports a serialization conflict or a lock timeout.
const maxPlaceAttempts = 2

// OrderUseCase contém a lógica de negócio dos pedidos
type OrderUseCase struct {
	beginner    storage.Beginner
	repository  Repository
	baskets     BasketReader
	stock       StockReserver
	logger      *zap.Logger
	now         func() time.Time
	maxAttempts int

	placedCount   metric.Int64Counter
	failedCount   metric.Int64Counter
	conflictCount metric.Int64Counter
}

// NewOrderUseCase cria uma nova instância de OrderUseCase
func NewOrderUseCase(
	beginner storage.Beginner,
	repository Repository,
	baskets BasketReader,
	stock StockReserver,
	logger *zap.Logger,
) *OrderUseCase {
	meter := otel.Meter("storefront/orders")

	placed, err := meter.Int64Counter("orders.placed", metric.WithDescription("Orders committed"))
	if err != nil {
		logger.Warn("failed to create orders.placed counter", zap.Error(err))
	}
	failed, err := meter.Int64Counter("orders.failed", metric.WithDescription("Checkouts rolled back"))
	if err != nil {
		logger.Warn("failed to create orders.failed counter", zap.Error(err))
	}
	conflicts, err := meter.Int64Counter("orders.conflict_retries", metric.WithDescription("Checkouts retried after a storage conflict"))
	if err != nil {
		logger.Warn("failed to create orders.conflict_retries counter", zap.Error(err))
	}

	return &OrderUseCase{
		beginner:      beginner,
		repository:    repository,
		baskets:       baskets,
		stock:         stock,
		logger:        logger,
		now:           time.Now,
		maxAttempts:   maxPlaceAttempts,
		placedCount:   placed,
		failedCount:   failed,
		conflictCount: conflicts,
	}
}

// PlaceOrder converts the user's basket into an order in one transaction.
// Either the order, its contact info, all items, every stock decrement and
// the basket drain are committed together, or nothing is.
func (uc *OrderUseCase) PlaceOrder(ctx context.Context, userID string, contact ContactInfo) (string, error) {
	ctx, span := otel.Tracer("storefront/orders").Start(ctx, "orders.PlaceOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.user_id", userID))

	if userID == "" {
		return "", identity.ErrUnauthorizedIdentity
	}

	contact = contact.Normalize()
	if err := contact.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid contact info")
		return "", err
	}

	for attempt := 1; ; attempt++ {
		orderID, err := uc.placeOrderOnce(ctx, userID, contact)
		if err == nil {
			span.SetAttributes(attribute.String("order.id", orderID), attribute.Int("order.attempts", attempt))
			uc.add(ctx, uc.placedCount)
			uc.logger.Info("✅ Order placed",
				zap.String("order_id", orderID),
				zap.String("user_id", userID),
				zap.Int("attempt", attempt),
			)
			return orderID, nil
		}

		if storage.IsConflict(err) && attempt < uc.maxAttempts {
			uc.add(ctx, uc.conflictCount)
			uc.logger.Warn("⏳ Checkout conflict, retrying",
				zap.String("user_id", userID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")
		uc.add(ctx, uc.failedCount)
		uc.logger.Info("❌ Checkout failed",
			zap.String("user_id", userID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return "", err
	}
}

func (uc *OrderUseCase) placeOrderOnce(ctx context.Context, userID string, contact ContactInfo) (string, error) {
	tx, err := uc.beginner.BeginTx(ctx)
	if err != nil {
		return "", err
	}
	// Rollback vira no-op após o Commit
	defer func() {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			uc.logger.Warn("failed to rollback checkout", zap.Error(rbErr))
		}
	}()

	exists, err := uc.repository.WarehouseExists(ctx, tx, contact.WarehouseID)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: unknown warehouse %d", ErrInvalidContactInfo, contact.WarehouseID)
	}

	now := uc.now().UTC()
	order := NewOrder(uuid.New().String(), userID, now)

	// 1. Cria o pedido e o snapshot de contato
	if err := uc.repository.CreateOrder(ctx, tx, order); err != nil {
		return "", err
	}
	if err := uc.repository.CreateContactInfo(ctx, tx, order.ID, contact); err != nil {
		return "", err
	}

	// 2. Lê a cesta travando linhas e produtos
	lines, err := uc.baskets.ListForCheckout(ctx, tx, userID)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", ErrEmptyBasket
	}

	// 3. Reserva o estoque e grava cada item com o preço atual
	for _, line := range lines {
		if _, err := uc.stock.Reserve(ctx, tx, order.ID, line.ProductID, line.Count); err != nil {
			return "", err
		}

		item := &OrderItem{
			OrderID:   order.ID,
			ProductID: line.ProductID,
			Price:     line.Price,
			Count:     line.Count,
			CreatedAt: now,
		}
		if err := uc.repository.CreateOrderItem(ctx, tx, item); err != nil {
			return "", err
		}
	}

	// 4. Esvazia a cesta
	if err := uc.baskets.Clear(ctx, tx, userID); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit order %s: %w", order.ID, err)
	}
	return order.ID, nil
}

// GetOrder busca um pedido confirmado. Pedidos de outros usuários são
// tratados como inexistentes.
func (uc *OrderUseCase) GetOrder(ctx context.Context, userID, orderID string) (*OrderDetails, error) {
	if userID == "" {
		return nil, identity.ErrUnauthorizedIdentity
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}

	details, err := uc.repository.GetOrder(ctx, orderID)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			uc.logger.Error("❌ Failed to load order", zap.String("order_id", orderID), zap.Error(err))
		}
		return nil, err
	}
	if details.UserID != userID {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return details, nil
}

func (uc *OrderUseCase) add(ctx context.Context, counter metric.Int64Counter) {
	if counter == nil {
		return
	}
	counter.Add(ctx, 1)
}
