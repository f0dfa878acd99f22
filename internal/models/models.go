package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product is a stocked item. CurrentStock is owned by the stock ledger and
// only changes together with an appended StockMovement.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SKU           string          `gorm:"type:varchar(64);not null"`
	Name          string          `gorm:"type:varchar(255);not null"`
	Description   string          `gorm:"type:text"`
	CurrentStock  int64           `gorm:"not null;default:0"`
	MinimumStock  int64           `gorm:"not null;default:0"`
	PurchasePrice decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	SalePrice     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(16);not null;default:'active'"`
	Version       int64           `gorm:"not null;default:0"`
	CreatedAt     time.Time       `gorm:"not null;default:now();index"`
	UpdatedAt     time.Time       `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

func (p *Product) IsLowStock() bool { return p.CurrentStock <= p.MinimumStock }

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
	MovementReturn     MovementType = "return"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjustment, MovementReturn:
		return true
	}
	return false
}

// AcceptsDelta reports whether the sign of delta matches the movement type.
func (t MovementType) AcceptsDelta(delta int64) bool {
	switch t {
	case MovementOut:
		return delta < 0
	case MovementIn, MovementReturn:
		return delta > 0
	case MovementAdjustment:
		return delta != 0
	}
	return false
}

type ReferenceType string

const (
	ReferenceRepairOrder   ReferenceType = "repair_order"
	ReferenceSale          ReferenceType = "sale"
	ReferencePurchaseOrder ReferenceType = "purchase_order"
	ReferenceManual        ReferenceType = "manual"
)

// StockMovement is an append-only ledger row. StockAfter always equals
// StockBefore + Quantity.
type StockMovement struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Sequence      int64           `gorm:"autoIncrement;not null;uniqueIndex"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      int64           `gorm:"not null"`
	MovementType  MovementType    `gorm:"type:varchar(16);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	StockBefore   int64           `gorm:"not null"`
	StockAfter    int64           `gorm:"not null"`
	RepairOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	ReferenceType *ReferenceType  `gorm:"type:varchar(32)"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid"`
	Note          string          `gorm:"type:varchar(500)"`
	ActorID       uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time       `gorm:"not null;default:now();index"`
}

func (StockMovement) TableName() string { return "stock_movements" }

type OrderStatus string

const (
	OrderStatusReceived        OrderStatus = "received"
	OrderStatusDiagnosing      OrderStatus = "diagnosing"
	OrderStatusWaitingParts    OrderStatus = "waiting_parts"
	OrderStatusRepairing       OrderStatus = "repairing"
	OrderStatusRepaired        OrderStatus = "repaired"
	OrderStatusUnrepairable    OrderStatus = "unrepairable"
	OrderStatusWaitingCustomer OrderStatus = "waiting_customer"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

type OrderPriority string

const (
	PriorityLow    OrderPriority = "low"
	PriorityNormal OrderPriority = "normal"
	PriorityHigh   OrderPriority = "high"
	PriorityUrgent OrderPriority = "urgent"
)

func (p OrderPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type RepairOrder struct {
	ID                 uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber        string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeviceID           uuid.UUID       `gorm:"type:uuid;not null"`
	TechnicianID       *uuid.UUID      `gorm:"type:uuid;index"`
	Status             OrderStatus     `gorm:"type:varchar(32);not null;default:'received';index"`
	Priority           OrderPriority   `gorm:"type:varchar(16);not null;default:'normal'"`
	ProblemDescription string          `gorm:"type:text;not null"`
	DiagnosisNotes     string          `gorm:"type:text"`
	DiagnosisCost      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	RepairCost         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalCost          decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	AdvancePayment     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	EstimatedDelivery  *time.Time
	DeliveredAt        *time.Time
	CreatedAt          time.Time `gorm:"not null;default:now();index"`
	UpdatedAt          time.Time `gorm:"not null;default:now()"`
}

func (RepairOrder) TableName() string { return "repair_orders" }

// PendingBalance is what the customer still owes. Overpayment yields zero.
func (o *RepairOrder) PendingBalance() decimal.Decimal {
	b := o.TotalCost.Sub(o.AdvancePayment)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

type OrderHistory struct {
	ID             uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Sequence       int64        `gorm:"autoIncrement;not null;uniqueIndex"`
	RepairOrderID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	PreviousStatus *OrderStatus `gorm:"type:varchar(32)"`
	NewStatus      OrderStatus  `gorm:"type:varchar(32);not null"`
	ActorID        uuid.UUID    `gorm:"type:uuid;not null"`
	Note           string       `gorm:"type:varchar(500)"`
	CreatedAt      time.Time    `gorm:"not null;default:now()"`
}

func (OrderHistory) TableName() string { return "order_histories" }

type OrderPart struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RepairOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity      int64           `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	UsedAt        time.Time       `gorm:"not null;default:now()"`
}

func (OrderPart) TableName() string { return "order_parts" }

type SaleStatus string

const SaleStatusCompleted SaleStatus = "completed"

type Sale struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SaleNumber string          `gorm:"type:varchar(32);not null;uniqueIndex"`
	CustomerID *uuid.UUID      `gorm:"type:uuid;index"`
	Total      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Status     SaleStatus      `gorm:"type:varchar(16);not null;default:'completed'"`
	ActorID    uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt  time.Time       `gorm:"not null;default:now();index"`

	Lines []SaleLine `gorm:"foreignKey:SaleID"`
}

func (Sale) TableName() string { return "sales" }

type SaleLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int64           `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (SaleLine) TableName() string { return "sale_lines" }

type PurchaseOrderStatus string

const (
	PurchaseOrderPending   PurchaseOrderStatus = "pending"
	PurchaseOrderPartial   PurchaseOrderStatus = "partial"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
)

type PurchaseOrder struct {
	ID         uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Status     PurchaseOrderStatus `gorm:"type:varchar(16);not null;default:'pending'"`
	ActorID    uuid.UUID           `gorm:"type:uuid;not null"`
	CreatedAt  time.Time           `gorm:"not null;default:now();index"`
	UpdatedAt  time.Time           `gorm:"not null;default:now()"`

	Lines []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID"`
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

type PurchaseOrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	PurchaseOrderID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityOrdered  int64           `gorm:"not null"`
	QuantityReceived int64           `gorm:"not null;default:0"`
	UnitCost         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
}

func (PurchaseOrderLine) TableName() string { return "purchase_order_lines" }

func (l *PurchaseOrderLine) Outstanding() int64 { return l.QuantityOrdered - l.QuantityReceived }
