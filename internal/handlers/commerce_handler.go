package handlers

import (
	"net/http"

	"github.com/dariast03/reparo-sys-sub001/internal/dto"
	"github.com/dariast03/reparo-sys-sub001/internal/middleware"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommerceHandler struct {
	commerce service.CommerceService
	log      *zap.Logger
}

func NewCommerceHandler(commerce service.CommerceService, log *zap.Logger) *CommerceHandler {
	return &CommerceHandler{commerce: commerce, log: log}
}

// FinalizeSale posts a counter sale. All lines commit or none do.
// @Summary Finalize a counter sale
// @Description All lines commit or none do.
// @Tags sales
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param Idempotency-Key header string false "Client key that makes the posting safe to retry"
// @Param sale body dto.CreateSaleRequest true "Sale lines"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/sales [post]
func (h *CommerceHandler) FinalizeSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "finalize_sale", err)
		return
	}

	in := service.SaleInput{
		CustomerID:     req.CustomerID,
		Lines:          make([]service.SaleLineInput, 0, len(req.Lines)),
		IdempotencyKey: middleware.IdempotencyKey(c),
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, service.SaleLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	sale, err := h.commerce.FinalizeSale(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, "finalize_sale", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSaleResponse(sale))
}

// GetSale godoc
// @Summary Get a sale
// @Tags sales
// @Produce json
// @Param id path string true "Sale id"
// @Success 200 {object} dto.SaleResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/sales/{id} [get]
func (h *CommerceHandler) GetSale(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	sale, err := h.commerce.GetSale(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "get_sale", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSaleResponse(sale))
}

// CreatePurchaseOrder godoc
// @Summary Create a purchase order
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param purchase_order body dto.CreatePurchaseOrderRequest true "Supplier and lines"
// @Success 201 {object} dto.PurchaseOrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/purchase-orders [post]
func (h *CommerceHandler) CreatePurchaseOrder(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "create_purchase_order", err)
		return
	}

	in := service.PurchaseOrderInput{
		SupplierID: req.SupplierID,
		Lines:      make([]service.PurchaseLineInput, 0, len(req.Lines)),
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, service.PurchaseLineInput{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitCost:  l.UnitCost,
		})
	}

	po, err := h.commerce.CreatePurchaseOrder(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, "create_purchase_order", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPurchaseOrderResponse(po))
}

// GetPurchaseOrder godoc
// @Summary Get a purchase order
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order id"
// @Success 200 {object} dto.PurchaseOrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/purchase-orders/{id} [get]
func (h *CommerceHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	po, err := h.commerce.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "get_purchase_order", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPurchaseOrderResponse(po))
}

// ReceivePurchase books delivered quantities into stock.
// @Summary Receive goods
// @Description Partial receipts are allowed; more than outstanding is rejected.
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param Idempotency-Key header string false "Client key that makes the posting safe to retry"
// @Param id path string true "Purchase order id"
// @Param receipt body dto.ReceivePurchaseRequest true "Received lines"
// @Success 200 {object} dto.PurchaseOrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/purchase-orders/{id}/receipts [post]
func (h *CommerceHandler) ReceivePurchase(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.ReceivePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "receive_purchase", err)
		return
	}

	in := service.ReceiveInput{
		PurchaseOrderID: id,
		Lines:           make([]service.ReceiveLine, 0, len(req.Lines)),
		IdempotencyKey:  middleware.IdempotencyKey(c),
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, service.ReceiveLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	po, err := h.commerce.ReceivePurchase(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, "receive_purchase", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPurchaseOrderResponse(po))
}

// CancelPurchaseOrder godoc
// @Summary Cancel a purchase order
// @Description Stops further receipts. Stock already received is kept.
// @Tags purchase-orders
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param id path string true "Purchase order id"
// @Success 200 {object} dto.PurchaseOrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/purchase-orders/{id}/cancel [post]
func (h *CommerceHandler) CancelPurchaseOrder(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	po, err := h.commerce.CancelPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "cancel_purchase_order", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPurchaseOrderResponse(po))
}
