package handlers

import (
	"net/http"

	"github.com/dariast03/reparo-sys-sub001/internal/dto"
	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders service.OrderService
	parts  service.PartsService
	log    *zap.Logger
}

func NewOrderHandler(orders service.OrderService, parts service.PartsService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, parts: parts, log: log}
}

// Create godoc
// @Summary Open a repair order
// @Description Starts in "received" with a creation entry in the history.
// @Tags orders
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param order body dto.CreateOrderRequest true "Order data"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "create_order", err)
		return
	}

	o, err := h.orders.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		CustomerID:         req.CustomerID,
		DeviceID:           req.DeviceID,
		TechnicianID:       req.TechnicianID,
		Priority:           models.OrderPriority(req.Priority),
		ProblemDescription: req.ProblemDescription,
		DiagnosisCost:      req.DiagnosisCost,
		AdvancePayment:     req.AdvancePayment,
		EstimatedDelivery:  req.EstimatedDelivery,
	})
	if err != nil {
		writeError(c, h.log, "create_order", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewOrderResponse(o))
}

// Get godoc
// @Summary Get a repair order
// @Tags orders
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "get_order", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// List godoc
// @Summary List repair orders
// @Tags orders
// @Produce json
// @Param status query string false "Order status"
// @Param customer_id query string false "Customer id"
// @Param technician_id query string false "Technician id"
// @Param limit query integer false "Page size (default 50, max 200)"
// @Param offset query integer false "Rows to skip"
// @Success 200 {object} dto.ListResponse-dto_OrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	customer, ok := queryUUID(c, "customer_id")
	if !ok {
		return
	}
	technician, ok := queryUUID(c, "technician_id")
	if !ok {
		return
	}
	limit, offset := page(c)
	f := service.OrderListFilter{CustomerID: customer, TechnicianID: technician, Limit: limit, Offset: offset}
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		f.Status = &st
	}

	items, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		writeError(c, h.log, "list_orders", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.OrderResponse]{
		Items: mapSlice(items, dto.NewOrderResponse),
		Total: total,
	})
}

// Transition moves the order to a new status and returns the audit entry.
// @Summary Change order status
// @Description Only allowed edges are accepted. Returns the new history entry.
// @Tags orders
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param id path string true "Order id"
// @Param transition body dto.TransitionRequest true "Target status and note"
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/transitions [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "transition_order", err)
		return
	}

	entry, err := h.orders.Transition(c.Request.Context(), id, models.OrderStatus(req.Status), req.Note)
	if err != nil {
		writeError(c, h.log, "transition_order", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewHistoryResponse(entry))
}

// History godoc
// @Summary Order status history
// @Description Oldest first.
// @Tags orders
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {array} dto.HistoryResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/history [get]
func (h *OrderHandler) History(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	entries, err := h.orders.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "order_history", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.HistoryResponse]{
		Items: mapSlice(entries, dto.NewHistoryResponse),
		Total: int64(len(entries)),
	})
}

// Verify godoc
// @Summary Verify an order's history
// @Description Replays the history over the allowed edges and compares it with the stored status.
// @Tags orders
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {object} service.HistoryReport
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/verify [get]
func (h *OrderHandler) Verify(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	rep, err := h.orders.VerifyHistory(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "verify_order", err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// UpdateCosts godoc
// @Summary Update order costs
// @Tags orders
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param id path string true "Order id"
// @Param costs body dto.UpdateCostsRequest true "Cost fields to change"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/costs [patch]
func (h *OrderHandler) UpdateCosts(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCostsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "update_costs", err)
		return
	}

	o, err := h.orders.UpdateCosts(c.Request.Context(), id, service.CostPatch{
		DiagnosisCost:  req.DiagnosisCost,
		RepairCost:     req.RepairCost,
		TotalCost:      req.TotalCost,
		AdvancePayment: req.AdvancePayment,
		DiagnosisNotes: req.DiagnosisNotes,
	})
	if err != nil {
		writeError(c, h.log, "update_costs", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// AssignTechnician sets or clears (null) the technician.
// @Summary Assign a technician
// @Description A null technician_id clears the assignment.
// @Tags orders
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param id path string true "Order id"
// @Param technician body dto.AssignTechnicianRequest true "Technician"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/technician [put]
func (h *OrderHandler) AssignTechnician(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req dto.AssignTechnicianRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "assign_technician", err)
		return
	}

	o, err := h.orders.AssignTechnician(c.Request.Context(), id, req.TechnicianID)
	if err != nil {
		writeError(c, h.log, "assign_technician", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// UseItem sets the total quantity of a product consumed by the order.
// @Summary Set consumed quantity
// @Description Quantity is the order's total for the product. Stock moves by the difference.
// @Tags parts
// @Accept json
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param id path string true "Order id"
// @Param productId path string true "Product id"
// @Param part body dto.UseItemRequest true "Total quantity and unit price"
// @Success 200 {object} dto.PartResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/parts/{productId} [put]
func (h *OrderHandler) UseItem(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "productId")
	if !ok {
		return
	}
	var req dto.UseItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "use_item", err)
		return
	}

	part, err := h.parts.UseItem(c.Request.Context(), service.UseItemInput{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		writeError(c, h.log, "use_item", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPartResponse(part))
}

// RemovePart godoc
// @Summary Remove a consumed part
// @Description Returns the whole quantity to stock.
// @Tags parts
// @Produce json
// @Param X-Actor-ID header string true "Acting user id (uuid)"
// @Param id path string true "Order id"
// @Param productId path string true "Product id"
// @Success 204 "No Content"
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 401 {object} dto.BaseError "Missing or invalid actor"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 409 {object} dto.BaseError "Conflict with current state"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/parts/{productId} [delete]
func (h *OrderHandler) RemovePart(c *gin.Context) {
	orderID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "productId")
	if !ok {
		return
	}
	if err := h.parts.RemovePart(c.Request.Context(), orderID, productID); err != nil {
		writeError(c, h.log, "remove_part", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Parts godoc
// @Summary List consumed parts
// @Tags parts
// @Produce json
// @Param id path string true "Order id"
// @Success 200 {array} dto.PartResponse
// @Failure 400 {object} dto.BaseError "Invalid input"
// @Failure 404 {object} dto.BaseError "Not found"
// @Failure 503 {object} dto.BaseError "Storage unavailable"
// @Router /api/v1/orders/{id}/parts [get]
func (h *OrderHandler) Parts(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	parts, err := h.parts.ListParts(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, "list_parts", err)
		return
	}
	c.JSON(http.StatusOK, dto.ListResponse[dto.PartResponse]{
		Items: mapSlice(parts, dto.NewPartResponse),
		Total: int64(len(parts)),
	})
}
