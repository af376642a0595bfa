package inventory

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStock representa a linha de produto travada para ajuste de estoque
type ProductStock struct {
	ProductID int64           `json:"product_id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Quantity  int             `json:"quantity" db:"quantity"`
}

// InventoryMovement representa uma movimentação de estoque
type InventoryMovement struct {
	ID             string    `json:"id" db:"id"`
	ProductID      int64     `json:"product_id" db:"product_id"`
	OrderID        string    `json:"order_id" db:"order_id"`
	ChangeQuantity int       `json:"change_quantity" db:"change_quantity"`
	MovementType   string    `json:"movement_type" db:"movement_type"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

const (
	MovementTypeDecreased = "decreased"
)

// InventoryError é o tipo dos erros de negócio do inventário
type InventoryError struct {
	Message string
}

func (e *InventoryError) Error() string {
	return e.Message
}

var (
	ErrInsufficientStock = &InventoryError{Message: "insufficient stock"}
	ErrProductNotFound   = &InventoryError{Message: "product not found"}
	ErrInvalidCount      = &InventoryError{Message: "reservation count must be greater than 0"}
)
