package service

import (
	"context"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateOrderInput struct {
	CustomerID         uuid.UUID
	DeviceID           uuid.UUID
	TechnicianID       *uuid.UUID
	Priority           models.OrderPriority
	ProblemDescription string
	DiagnosisCost      decimal.Decimal
	AdvancePayment     decimal.Decimal
	EstimatedDelivery  *time.Time
}

// CostPatch updates only the provided amounts.
type CostPatch struct {
	DiagnosisCost  *decimal.Decimal
	RepairCost     *decimal.Decimal
	TotalCost      *decimal.Decimal
	AdvancePayment *decimal.Decimal
	DiagnosisNotes *string
}

type OrderListFilter struct {
	Status       *models.OrderStatus
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	Limit        int
	Offset       int
}

// HistoryReport is the result of replaying an order's status history.
type HistoryReport struct {
	OrderID        uuid.UUID          `json:"order_id"`
	CurrentStatus  models.OrderStatus `json:"current_status"`
	ReplayedStatus models.OrderStatus `json:"replayed_status"`
	Entries        int                `json:"entries"`
	Problems       []string           `json:"problems,omitempty"`
	Consistent     bool               `json:"consistent"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.RepairOrder, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error)
	ListOrders(ctx context.Context, f OrderListFilter) ([]models.RepairOrder, int64, error)

	Transition(ctx context.Context, id uuid.UUID, to models.OrderStatus, note string) (*models.OrderHistory, error)
	UpdateCosts(ctx context.Context, id uuid.UUID, patch CostPatch) (*models.RepairOrder, error)
	AssignTechnician(ctx context.Context, id uuid.UUID, technicianID *uuid.UUID) (*models.RepairOrder, error)

	History(ctx context.Context, id uuid.UUID) ([]models.OrderHistory, error)
	VerifyHistory(ctx context.Context, id uuid.UUID) (*HistoryReport, error)
}
