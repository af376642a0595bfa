package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/internal/basket"
	"github.com/matheusmosca/storefront/internal/catalog"
	"github.com/matheusmosca/storefront/internal/orders"
	"github.com/matheusmosca/storefront/internal/reports"
)

// CatalogService é a consulta de produtos usada pelos handlers
type CatalogService interface {
	Search(ctx context.Context, criteria catalog.Criteria) (catalog.Page, error)
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
}

// BasketService é a manutenção da cesta usada pelos handlers
type BasketService interface {
	List(ctx context.Context, userID string) ([]basket.Line, error)
	Put(ctx context.Context, userID string, productID int64, count int) error
	Remove(ctx context.Context, userID string, productID int64) error
}

// OrderService é o checkout usado pelos handlers
type OrderService interface {
	PlaceOrder(ctx context.Context, userID string, contact orders.ContactInfo) (string, error)
	GetOrder(ctx context.Context, userID, orderID string) (*orders.OrderDetails, error)
}

// ReportService são os relatórios de vendas usados pelos handlers
type ReportService interface {
	RecentOrders(ctx context.Context, limit int) ([]reports.RecentOrder, error)
	TopSellingProducts(ctx context.Context, limit int) ([]reports.SalesRank, error)
	TopSellingCategories(ctx context.Context, limit int) ([]reports.SalesRank, error)
}

// Handler contém os handlers HTTP da loja
type Handler struct {
	catalog CatalogService
	baskets BasketService
	orders  OrderService
	reports ReportService
	logger  *zap.Logger
}

// NewHandler cria uma nova instância de Handler
func NewHandler(
	catalog CatalogService,
	baskets BasketService,
	orders OrderService,
	reports ReportService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		catalog: catalog,
		baskets: baskets,
		orders:  orders,
		reports: reports,
		logger:  logger,
	}
}

// PutBasketLineRequest representa a requisição para alterar a cesta
type PutBasketLineRequest struct {
	Count int `json:"count" binding:"required,gt=0"`
}

// PlaceOrderRequest representa a requisição de checkout
type PlaceOrderRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Phone       string `json:"phone" binding:"required"`
	WarehouseID int64  `json:"warehouseId" binding:"required,gt=0"`
}

// BasketResponse é a cesta com o total calculado pelo preço atual
type BasketResponse struct {
	Lines []basket.Line   `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// OrderResponse é o pedido com o total calculado pelos preços de compra
type OrderResponse struct {
	*orders.OrderDetails
	Total decimal.Decimal `json:"total"`
}

// HealthCheck é o endpoint de health check
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// SearchProducts lista produtos com filtros e paginação
func (h *Handler) SearchProducts(c *gin.Context) {
	criteria, err := parseCriteria(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.catalog.Search(c.Request.Context(), criteria)
	if err != nil {
		abortWithError(c, err, "Failed to search products")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct busca um produto pelo ID
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err, "Failed to get product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// GetBasket lista a cesta do usuário
func (h *Handler) GetBasket(c *gin.Context) {
	lines, err := h.baskets.List(c.Request.Context(), currentUser(c))
	if err != nil {
		abortWithError(c, err, "Failed to list basket")
		return
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	c.JSON(http.StatusOK, BasketResponse{Lines: lines, Total: total})
}

// PutBasketLine define a quantidade de um produto na cesta
func (h *Handler) PutBasketLine(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req PutBasketLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.baskets.Put(c.Request.Context(), currentUser(c), productID, req.Count); err != nil {
		abortWithError(c, err, "Failed to update basket")
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveBasketLine remove um produto da cesta
func (h *Handler) RemoveBasketLine(c *gin.Context) {
	productID, err := pathID(c, "productId")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.baskets.Remove(c.Request.Context(), currentUser(c), productID); err != nil {
		abortWithError(c, err, "Failed to update basket")
		return
	}
	c.Status(http.StatusNoContent)
}

// PlaceOrder converte a cesta do usuário em pedido
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact := orders.ContactInfo{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		WarehouseID: req.WarehouseID,
	}

	orderID, err := h.orders.PlaceOrder(c.Request.Context(), currentUser(c), contact)
	if err != nil {
		abortWithError(c, err, "Failed to place order")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"orderId": orderID})
}

// GetOrder busca um pedido do usuário
func (h *Handler) GetOrder(c *gin.Context) {
	details, err := h.orders.GetOrder(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		abortWithError(c, err, "Failed to get order")
		return
	}
	c.JSON(http.StatusOK, OrderResponse{OrderDetails: details, Total: details.Total()})
}

// RecentOrders lista os pedidos mais recentes
func (h *Handler) RecentOrders(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.reports.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err, "Failed to load recent orders")
		return
	}
	c.JSON(http.StatusOK, result)
}

// PopularProducts lista os produtos mais vendidos
func (h *Handler) PopularProducts(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.reports.TopSellingProducts(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err, "Failed to load popular products")
		return
	}
	c.JSON(http.StatusOK, result)
}

// PopularCategories lista as categorias mais vendidas
func (h *Handler) PopularCategories(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.reports.TopSellingCategories(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err, "Failed to load popular categories")
		return
	}
	c.JSON(http.StatusOK, result)
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

// queryLimit returns 0 when absent; the reporter applies the default.
func queryLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid limit %q", raw)
	}
	return limit, nil
}

func parseCriteria(c *gin.Context) (catalog.Criteria, error) {
	criteria := catalog.Criteria{Query: c.Query("query")}

	var err error
	if criteria.CategoryID, err = optionalInt64(c, "categoryId"); err != nil {
		return criteria, err
	}
	if criteria.PriceMin, err = optionalDecimal(c, "priceMin"); err != nil {
		return criteria, err
	}
	if criteria.PriceMax, err = optionalDecimal(c, "priceMax"); err != nil {
		return criteria, err
	}
	if criteria.QuantityMin, err = optionalInt(c, "quantityMin"); err != nil {
		return criteria, err
	}
	if criteria.QuantityMax, err = optionalInt(c, "quantityMax"); err != nil {
		return criteria, err
	}

	if page, err := optionalInt(c, "page"); err != nil {
		return criteria, err
	} else if page != nil {
		criteria.Page = *page
	}
	if size, err := optionalInt(c, "pageSize"); err != nil {
		return criteria, err
	} else if size != nil {
		criteria.PageSize = *size
	}
	return criteria, nil
}

func optionalInt64(c *gin.Context, key string) (*int64, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}

func optionalInt(c *gin.Context, key string) (*int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}

func optionalDecimal(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}
