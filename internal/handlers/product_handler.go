package handlers

import (
	"net/http"

	"github.com/dariast03/reparo-sys-sub001/internal/dto"
	"github.com/dariast03/reparo-sys-sub001/internal/middleware"
	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProductHandler struct {
	stock    service.StockService
	commerce service.CommerceService
	log      *zap.Logger
}

func NewProductHandler(stock service.StockService, commerce service.CommerceService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{stock: stock, commerce: commerce, log: log}
}

// Create registers a product with its opening stock.
// @Summary Create a product
// @Description Registers a catalog item. Opening stock is booked as an "in" movement.
// @Tags products
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param product body dto.CreateProductRequest true "Product data"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "create_product", err)
		return
	}

	p, err := h.stock.CreateProduct(c.Request.Context(), service.ProductInput{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		InitialStock:  req.InitialStock,
		MinimumStock:  req.MinimumStock,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
	})
	if err != nil {
		writeError(c, h.log, "create_product", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewProductResponse(p))
}

// Update godoc
// @Summary Update catalog fields
// @Description Changes catalog fields only. Stock is never touched here.
// @Tags products
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param id path string true "Product id"
// @Param patch body dto.UpdateProductRequest true "Fields to change"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/products/{id} [patch]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "update_product", err)
		return
	}

	patch := service.ProductPatch{
		SKU:           req.SKU,
		Name:          req.Name,
		Description:   req.Description,
		MinimumStock:  req.MinimumStock,
		PurchasePrice: req.PurchasePrice,
		SalePrice:     req.SalePrice,
	}
	if req.Status != nil {
		st := models.ProductStatus(*req.Status)
		patch.Status = &st
	}

	p, err := h.stock.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, h.log, "update_product", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

// Get godoc
// @Summary Get a product
// @Tags products
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} dto.ProductResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	p, err := h.stock.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "get_product", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewProductResponse(p))
}

// List godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "Matches SKU or name"
// @Param status query string false "active, inactive or discontinued"
// @Param limit query integer false "Page size (default 50, max 200)"
// @Param offset query integer false "Rows to skip"
// @Success 200 {object} dto.ListResponse-dto_ProductResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	limit, offset := page(c)
	f := service.ProductListFilter{Query: c.Query("q"), Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		st := models.ProductStatus(s)
		f.Status = &st
	}

	items, total, err := h.stock.ListProducts(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, "list_products", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.ProductResponse]{
		Items: mapSlice(items, dto.NewProductResponse),
		Total: total,
	})
}

// LowStock godoc
// @Summary List low-stock products
// @Description Active products whose stock is at or below the minimum.
// @Tags products
// @Produce json
// @Param limit query integer false "Page size (default 50, max 200)"
// @Param offset query integer false "Rows to skip"
// @Success 200 {object} dto.ListResponse-dto_ProductResponse
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/stock/low [get]
func (h *ProductHandler) LowStock(c *gin.Context) {
	limit, offset := page(c)
	items, total, err := h.stock.LowStock(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, h.log, "low_stock", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.ProductResponse]{
		Items: mapSlice(items, dto.NewProductResponse),
		Total: total,
	})
}

// Movements godoc
// @Summary List stock movements
// @Description Newest first.
// @Tags products
// @Produce json
// @Param id path string true "Product id"
// @Param type query string false "in, out, adjustment or return"
// @Param repair_order_id query string false "Only movements of this repair order"
// @Param limit query integer false "Page size (default 50, max 200)"
// @Param offset query integer false "Rows to skip"
// @Success 200 {object} dto.ListResponse-dto_MovementResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/products/{id}/movements [get]
func (h *ProductHandler) Movements(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	orderID, ok := queryUUID(c, "repair_order_id")
	if !ok {
		return
	}
	limit, offset := page(c)
	f := service.MovementListFilter{ProductID: &id, RepairOrderID: orderID, Limit: limit, Offset: offset}
	if t := c.Query("type"); t != "" {
		mt := models.MovementType(t)
		f.Type = &mt
	}

	items, total, err := h.stock.ListMovements(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, "list_movements", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.MovementResponse]{
		Items: mapSlice(items, dto.NewMovementResponse),
		Total: total,
	})
}

// Verify godoc
// @Summary Verify a product's ledger
// @Description Replays the movement chain from zero and compares it with the stored stock.
// @Tags products
// @Produce json
// @Param id path string true "Product id"
// @Success 200 {object} service.StockReport
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/products/{id}/verify [get]
func (h *ProductHandler) Verify(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rep, err := h.stock.VerifyProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "verify_product", err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Adjust records a manual stock correction. The note is mandatory.
// @Summary Adjust stock
// @Description Manual correction with a mandatory note. Stock can never go negative.
// @Tags products
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param Idempotency-Key header string false "Client key that makes the posting safe to retry"
// @Param id path string true "Product id"
// @Param adjustment body dto.AdjustStockRequest true "Signed delta and note"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/products/{id}/adjustments [post]
func (h *ProductHandler) Adjust(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "adjust_stock", err)
		return
	}

	m, err := h.commerce.AdjustStock(c.Request.Context(), service.AdjustInput{
		ProductID:      id,
		Delta:          req.Delta,
		Note:           req.Note,
		IdempotencyKey: middleware.IdempotencyKey(c),
	})
	if err != nil {
		writeError(c, h.log, "adjust_stock", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMovementResponse(m))
}
