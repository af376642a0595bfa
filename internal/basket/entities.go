package basket

import (
	"github.com/shopspring/decimal"
)

// Line representa um item da cesta do usuário, junto com o preço atual do produto
type Line struct {
	UserID      string          `json:"-" db:"user_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	Count       int             `json:"count" db:"count"`
	ProductName string          `json:"product_name" db:"name"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Subtotal returns the line value at the product's current price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Count)))
}

// BasketError é o tipo dos erros de negócio da cesta
type BasketError struct {
	Message string
}

func (e *BasketError) Error() string {
	return e.Message
}

var (
	ErrInvalidCount    = &BasketError{Message: "basket count must be greater than 0"}
	ErrProductNotFound = &BasketError{Message: "product not found"}
	ErrUserRequired    = &BasketError{Message: "user id is required"}
)
