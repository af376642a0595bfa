package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/storefront/internal/basket"
	"github.com/matheusmosca/storefront/internal/catalog"
	"github.com/matheusmosca/storefront/internal/identity"
	"github.com/matheusmosca/storefront/internal/inventory"
	"github.com/matheusmosca/storefront/internal/orders"
	"github.com/matheusmosca/storefront/internal/storage"
)

// statusFor mapeia os erros de domínio para códigos HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, identity.ErrUnauthorizedIdentity),
		errors.Is(err, basket.ErrUserRequired):
		return http.StatusUnauthorized
	case errors.Is(err, orders.ErrInvalidContactInfo),
		errors.Is(err, orders.ErrEmptyBasket),
		errors.Is(err, basket.ErrInvalidCount),
		errors.Is(err, inventory.ErrInvalidCount):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, basket.ErrProductNotFound),
		errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInsufficientStock),
		storage.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError escreve o erro mapeado; erros internos não vazam detalhes
func abortWithError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.AbortWithStatusJSON(status, gin.H{"error": fallback})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
