package service

import (
	"context"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
)

type StatusChangedEvent struct {
	OrderID        uuid.UUID           `json:"order_id"`
	OrderNumber    string              `json:"order_number"`
	CustomerID     uuid.UUID           `json:"customer_id"`
	PreviousStatus *models.OrderStatus `json:"previous_status,omitempty"`
	NewStatus      models.OrderStatus  `json:"new_status"`
	ActorID        uuid.UUID           `json:"actor_id"`
	Note           string              `json:"note,omitempty"`
	ChangedAt      time.Time           `json:"changed_at"`
}

type LowStockEvent struct {
	ProductID    uuid.UUID `json:"product_id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	CurrentStock int64     `json:"current_stock"`
	MinimumStock int64     `json:"minimum_stock"`
	DetectedAt   time.Time `json:"detected_at"`
}

// Notifier receives events after the owning transaction has committed.
// Delivery failures never undo the committed change.
type Notifier interface {
	PublishStatusChanged(ctx context.Context, e StatusChangedEvent) error
	PublishLowStock(ctx context.Context, e LowStockEvent) error
}

// IdempotencyStore guards postings against client retries.
type IdempotencyStore interface {
	// Claim returns false if the key was already claimed.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
