package catalog

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage     = 1
	MaxPageSize     = 50
	DefaultPageSize = MaxPageSize

	// MaxPage keeps Offset within int for any page size.
	MaxPage = math.MaxInt / MaxPageSize
)

// Product representa um produto do catálogo
type Product struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Price      decimal.Decimal `json:"price" db:"price"`
	Quantity   int             `json:"quantity" db:"quantity"`
	CategoryID int64           `json:"category_id" db:"category_id"`
	IsDeleted  bool            `json:"-" db:"is_deleted"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// Criteria holds the optional search filters. A nil pointer or an empty
// Query means the filter is absent; present filters are combined with AND.
type Criteria struct {
	Query       string
	CategoryID  *int64
	PriceMin    *decimal.Decimal
	PriceMax    *decimal.Decimal
	QuantityMin *int
	QuantityMax *int
	Page        int
	PageSize    int
}

// Normalize clamps pagination to valid values instead of failing.
func (c Criteria) Normalize() Criteria {
	if c.Page < 1 {
		c.Page = DefaultPage
	}
	if c.Page > MaxPage {
		c.Page = MaxPage
	}
	if c.PageSize < 1 {
		c.PageSize = DefaultPageSize
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	return c
}

// Offset returns the number of rows skipped before the requested page.
func (c Criteria) Offset() int {
	return (c.Page - 1) * c.PageSize
}

// Page é uma página de resultados da busca
type Page struct {
	Items    []Product `json:"items"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// CatalogError é o tipo dos erros de negócio do catálogo
type CatalogError struct {
	Message string
}

func (e *CatalogError) Error() string {
	return e.Message
}

var ErrProductNotFound = &CatalogError{Message: "product not found"}
