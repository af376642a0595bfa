package reports

import (
	"strings"
	"time"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// RecentOrder é a visão resumida de um pedido recente
type RecentOrder struct {
	OrderID       string    `json:"orderId"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	PostAddress   string    `json:"postAddress"`
	Status        string    `json:"orderStatus"`
	Products      []string  `json:"products"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SalesRank is one row of a best-seller ranking. ID is a product or a
// category id depending on the report.
type SalesRank struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// FormatCustomerName junta nome e sobrenome
func FormatCustomerName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}

// FormatPostAddress formats a delivery point as "<settlement>, <warehouse>".
func FormatPostAddress(settlement, warehouse string) string {
	return settlement + ", " + warehouse
}

// ClampLimit applies the default and upper bound to a requested row count.
func ClampLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
