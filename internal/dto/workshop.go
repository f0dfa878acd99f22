package dto

import (
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

type CreateProductRequest struct {
	SKU           string          `json:"sku" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	InitialStock  int64           `json:"initial_stock" binding:"gte=0"`
	MinimumStock  int64           `json:"minimum_stock" binding:"gte=0"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
}

type UpdateProductRequest struct {
	SKU           *string          `json:"sku"`
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	MinimumStock  *int64           `json:"minimum_stock"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	SalePrice     *decimal.Decimal `json:"sale_price"`
	Status        *string          `json:"status"`
}

type ProductResponse struct {
	ID            uuid.UUID       `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	CurrentStock  int64           `json:"current_stock"`
	MinimumStock  int64           `json:"minimum_stock"`
	LowStock      bool            `json:"low_stock"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	Status        string          `json:"status"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		CurrentStock:  p.CurrentStock,
		MinimumStock:  p.MinimumStock,
		LowStock:      p.IsLowStock(),
		PurchasePrice: p.PurchasePrice,
		SalePrice:     p.SalePrice,
		Status:        string(p.Status),
		UpdatedAt:     p.UpdatedAt,
	}
}

type AdjustStockRequest struct {
	Delta int64  `json:"delta" binding:"required"`
	Note  string `json:"note" binding:"required"`
}

type MovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	Sequence      int64           `json:"sequence"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      int64           `json:"quantity"`
	Type          string          `json:"type"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	StockBefore   int64           `json:"stock_before"`
	StockAfter    int64           `json:"stock_after"`
	RepairOrderID *uuid.UUID      `json:"repair_order_id,omitempty"`
	ReferenceType *string         `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	Note          string          `json:"note,omitempty"`
	ActorID       uuid.UUID       `json:"actor_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

func NewMovementResponse(m *models.StockMovement) MovementResponse {
	r := MovementResponse{
		ID:            m.ID,
		Sequence:      m.Sequence,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		Type:          string(m.MovementType),
		UnitPrice:     m.UnitPrice,
		StockBefore:   m.StockBefore,
		StockAfter:    m.StockAfter,
		RepairOrderID: m.RepairOrderID,
		ReferenceID:   m.ReferenceID,
		Note:          m.Note,
		ActorID:       m.ActorID,
		CreatedAt:     m.CreatedAt,
	}
	if m.ReferenceType != nil {
		rt := string(*m.ReferenceType)
		r.ReferenceType = &rt
	}
	return r
}

type CreateOrderRequest struct {
	CustomerID         uuid.UUID       `json:"customer_id" binding:"required"`
	DeviceID           uuid.UUID       `json:"device_id" binding:"required"`
	TechnicianID       *uuid.UUID      `json:"technician_id"`
	Priority           string          `json:"priority"`
	ProblemDescription string          `json:"problem_description" binding:"required"`
	DiagnosisCost      decimal.Decimal `json:"diagnosis_cost"`
	AdvancePayment     decimal.Decimal `json:"advance_payment"`
	EstimatedDelivery  *time.Time      `json:"estimated_delivery"`
}

type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

type UpdateCostsRequest struct {
	DiagnosisCost  *decimal.Decimal `json:"diagnosis_cost"`
	RepairCost     *decimal.Decimal `json:"repair_cost"`
	TotalCost      *decimal.Decimal `json:"total_cost"`
	AdvancePayment *decimal.Decimal `json:"advance_payment"`
	DiagnosisNotes *string          `json:"diagnosis_notes"`
}

type AssignTechnicianRequest struct {
	TechnicianID *uuid.UUID `json:"technician_id"`
}

type OrderResponse struct {
	ID                 uuid.UUID       `json:"id"`
	OrderNumber        string          `json:"order_number"`
	CustomerID         uuid.UUID       `json:"customer_id"`
	DeviceID           uuid.UUID       `json:"device_id"`
	TechnicianID       *uuid.UUID      `json:"technician_id,omitempty"`
	Status             string          `json:"status"`
	Priority           string          `json:"priority"`
	ProblemDescription string          `json:"problem_description"`
	DiagnosisNotes     string          `json:"diagnosis_notes,omitempty"`
	DiagnosisCost      decimal.Decimal `json:"diagnosis_cost"`
	RepairCost         decimal.Decimal `json:"repair_cost"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	AdvancePayment     decimal.Decimal `json:"advance_payment"`
	PendingBalance     decimal.Decimal `json:"pending_balance"`
	EstimatedDelivery  *time.Time      `json:"estimated_delivery,omitempty"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

func NewOrderResponse(o *models.RepairOrder) OrderResponse {
	return OrderResponse{
		ID:                 o.ID,
		OrderNumber:        o.OrderNumber,
		CustomerID:         o.CustomerID,
		DeviceID:           o.DeviceID,
		TechnicianID:       o.TechnicianID,
		Status:             string(o.Status),
		Priority:           string(o.Priority),
		ProblemDescription: o.ProblemDescription,
		DiagnosisNotes:     o.DiagnosisNotes,
		DiagnosisCost:      o.DiagnosisCost,
		RepairCost:         o.RepairCost,
		TotalCost:          o.TotalCost,
		AdvancePayment:     o.AdvancePayment,
		PendingBalance:     o.PendingBalance(),
		EstimatedDelivery:  o.EstimatedDelivery,
		DeliveredAt:        o.DeliveredAt,
		CreatedAt:          o.CreatedAt,
	}
}

type HistoryResponse struct {
	ID             uuid.UUID `json:"id"`
	PreviousStatus *string   `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActorID        uuid.UUID `json:"actor_id"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewHistoryResponse(h *models.OrderHistory) HistoryResponse {
	r := HistoryResponse{
		ID:        h.ID,
		NewStatus: string(h.NewStatus),
		ActorID:   h.ActorID,
		Note:      h.Note,
		CreatedAt: h.CreatedAt,
	}
	if h.PreviousStatus != nil {
		ps := string(*h.PreviousStatus)
		r.PreviousStatus = &ps
	}
	return r
}

type UseItemRequest struct {
	Quantity  int64           `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type PartResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	UsedAt     time.Time       `json:"used_at"`
}

func NewPartResponse(p *models.OrderPart) PartResponse {
	return PartResponse{
		ID:         p.ID,
		ProductID:  p.ProductID,
		Quantity:   p.Quantity,
		UnitPrice:  p.UnitPrice,
		TotalPrice: p.TotalPrice,
		UsedAt:     p.UsedAt,
	}
}

type SaleLineRequest struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int64            `json:"quantity" binding:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

type CreateSaleRequest struct {
	CustomerID *uuid.UUID        `json:"customer_id"`
	Lines      []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type SaleLineResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID         uuid.UUID          `json:"id"`
	SaleNumber string             `json:"sale_number"`
	CustomerID *uuid.UUID         `json:"customer_id,omitempty"`
	Total      decimal.Decimal    `json:"total"`
	Status     string             `json:"status"`
	Lines      []SaleLineResponse `json:"lines"`
	CreatedAt  time.Time          `json:"created_at"`
}

func NewSaleResponse(s *models.Sale) SaleResponse {
	r := SaleResponse{
		ID:         s.ID,
		SaleNumber: s.SaleNumber,
		CustomerID: s.CustomerID,
		Total:      s.Total,
		Status:     string(s.Status),
		Lines:      make([]SaleLineResponse, 0, len(s.Lines)),
		CreatedAt:  s.CreatedAt,
	}
	for _, l := range s.Lines {
		r.Lines = append(r.Lines, SaleLineResponse{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return r
}

type PurchaseLineRequest struct {
	ProductID uuid.UUID       `json:"product_id" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

type CreatePurchaseOrderRequest struct {
	SupplierID uuid.UUID             `json:"supplier_id" binding:"required"`
	Lines      []PurchaseLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type ReceiveLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required"`
}

type ReceivePurchaseRequest struct {
	Lines []ReceiveLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type PurchaseLineResponse struct {
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

type PurchaseOrderResponse struct {
	ID         uuid.UUID              `json:"id"`
	SupplierID uuid.UUID              `json:"supplier_id"`
	Status     string                 `json:"status"`
	Lines      []PurchaseLineResponse `json:"lines"`
	CreatedAt  time.Time              `json:"created_at"`
}

func NewPurchaseOrderResponse(po *models.PurchaseOrder) PurchaseOrderResponse {
	r := PurchaseOrderResponse{
		ID:         po.ID,
		SupplierID: po.SupplierID,
		Status:     string(po.Status),
		Lines:      make([]PurchaseLineResponse, 0, len(po.Lines)),
		CreatedAt:  po.CreatedAt,
	}
	for _, l := range po.Lines {
		r.Lines = append(r.Lines, PurchaseLineResponse{
			ProductID:        l.ProductID,
			QuantityOrdered:  l.QuantityOrdered,
			QuantityReceived: l.QuantityReceived,
			UnitCost:         l.UnitCost,
		})
	}
	return r
}
