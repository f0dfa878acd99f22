package service

import (
	"context"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	SKU           string
	Name          string
	Description   string
	InitialStock  int64
	MinimumStock  int64
	PurchasePrice decimal.Decimal
	SalePrice     decimal.Decimal
}

// ProductPatch never carries current stock: stock changes only through
// movements.
type ProductPatch struct {
	SKU           *string
	Name          *string
	Description   *string
	MinimumStock  *int64
	PurchasePrice *decimal.Decimal
	SalePrice     *decimal.Decimal
	Status        *models.ProductStatus
}

type ProductListFilter struct {
	Query  string
	Status *models.ProductStatus
	Limit  int
	Offset int
}

type MovementListFilter struct {
	ProductID     *uuid.UUID
	RepairOrderID *uuid.UUID
	Type          *models.MovementType
	Limit         int
	Offset        int
}

// StockReport compares a product's stored stock with the replay of its
// movement chain.
type StockReport struct {
	ProductID     uuid.UUID `json:"product_id"`
	CurrentStock  int64     `json:"current_stock"`
	ReplayedStock int64     `json:"replayed_stock"`
	Movements     int       `json:"movements"`
	// BrokenAt is the sequence of the first movement whose stock_before
	// does not match the previous stock_after.
	BrokenAt   *int64 `json:"broken_at,omitempty"`
	Consistent bool   `json:"consistent"`
}

type StockService interface {
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)
	LowStock(ctx context.Context, limit, offset int) ([]models.Product, int64, error)

	ListMovements(ctx context.Context, f MovementListFilter) ([]models.StockMovement, int64, error)
	VerifyProduct(ctx context.Context, id uuid.UUID) (*StockReport, error)
}
