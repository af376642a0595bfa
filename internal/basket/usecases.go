package basket

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Store contém a lógica de negócio da cesta
type Store struct {
	repository Repository
	logger     *zap.Logger
}

// NewStore cria uma nova instância de Store
func NewStore(repository Repository, logger *zap.Logger) *Store {
	return &Store{
		repository: repository,
		logger:     logger,
	}
}

// List retorna a cesta do usuário
func (s *Store) List(ctx context.Context, userID string) ([]Line, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	return s.repository.List(ctx, userID)
}

// Put define a quantidade de um produto na cesta; a contagem é sempre positiva
func (s *Store) Put(ctx context.Context, userID string, productID int64, count int) error {
	if userID == "" {
		return ErrUserRequired
	}
	if count <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	if err := s.repository.Upsert(ctx, userID, productID, count); err != nil {
		s.logger.Warn("❌ Failed to put basket line",
			zap.String("user_id", userID),
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return err
	}

	s.logger.Debug("🧺 Basket line stored",
		zap.String("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("count", count),
	)
	return nil
}

// Remove apaga um produto da cesta
func (s *Store) Remove(ctx context.Context, userID string, productID int64) error {
	if userID == "" {
		return ErrUserRequired
	}
	return s.repository.Remove(ctx, userID, productID)
}
