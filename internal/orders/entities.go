package orders

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// OrderStatus representa os status semeados na tabela order_statuses
const (
	OrderStatusPending    = 1
	OrderStatusProcessing = 2
	OrderStatusShipped    = 3
	OrderStatusDelivered  = 4
	OrderStatusCompleted  = 5
)

// Order representa um pedido no sistema
type Order struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	StatusID  int       `json:"status_id" db:"status_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewOrder cria um novo pedido com status inicial Pending
func NewOrder(id, userID string, now time.Time) *Order {
	return &Order{
		ID:        id,
		UserID:    userID,
		StatusID:  OrderStatusPending,
		CreatedAt: now,
	}
}

// ContactInfo is the recipient snapshot stored with the order. It is copied
// at checkout time and never follows later profile changes.
type ContactInfo struct {
	FirstName   string `json:"first_name" db:"first_name"`
	LastName    string `json:"last_name" db:"last_name"`
	Phone       string `json:"phone" db:"phone"`
	WarehouseID int64  `json:"warehouse_id" db:"warehouse_id"`
}

const (
	maxNameLength  = 255
	minPhoneDigits = 7
	maxPhoneLength = 20
)

// Normalize trims surrounding whitespace from every text field.
func (c ContactInfo) Normalize() ContactInfo {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Phone = strings.TrimSpace(c.Phone)
	return c
}

// Validate checks the shape of the contact data. Whether the warehouse
// exists is checked against storage during checkout.
func (c ContactInfo) Validate() error {
	switch {
	case c.FirstName == "" || utf8.RuneCountInString(c.FirstName) > maxNameLength:
		return fmt.Errorf("%w: first name is required", ErrInvalidContactInfo)
	case c.LastName == "" || utf8.RuneCountInString(c.LastName) > maxNameLength:
		return fmt.Errorf("%w: last name is required", ErrInvalidContactInfo)
	case !validPhone(c.Phone):
		return fmt.Errorf("%w: malformed phone %q", ErrInvalidContactInfo, c.Phone)
	case c.WarehouseID <= 0:
		return fmt.Errorf("%w: warehouse is required", ErrInvalidContactInfo)
	}
	return nil
}

func validPhone(phone string) bool {
	if utf8.RuneCountInString(phone) > maxPhoneLength {
		return false
	}

	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= minPhoneDigits
}

// OrderItem representa um item do pedido com o preço congelado na compra
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   string          `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Count     int             `json:"count" db:"count"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Subtotal is computed from the stored purchase price only.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Count)))
}

// OrderDetails agrega o pedido, o contato e os itens
type OrderDetails struct {
	Order
	Status  string      `json:"status"`
	Contact ContactInfo `json:"contact"`
	Items   []OrderItem `json:"items"`
}

// Total soma os subtotais dos itens
func (d OrderDetails) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// OrderError é o tipo dos erros de negócio dos pedidos
type OrderError struct {
	Message string
}

func (e *OrderError) Error() string {
	return e.Message
}

var (
	ErrInvalidContactInfo = &OrderError{Message: "invalid contact info"}
	ErrEmptyBasket        = &OrderError{Message: "basket is empty"}
	ErrOrderNotFound      = &OrderError{Message: "order not found"}
)
