package repository

import (
	"context"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementListFilter struct {
	ProductID     *uuid.UUID
	RepairOrderID *uuid.UUID
	Type          *models.MovementType
	Limit         int
	Offset        int
}

// MovementRepo is append-only: there is no update or delete.
type MovementRepo interface {
	Create(ctx context.Context, m *models.StockMovement) error
	List(ctx context.Context, f MovementListFilter) ([]models.StockMovement, int64, error)
	// ChainByProduct returns every movement of the product in append order.
	ChainByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error)
	SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepo(db *gorm.DB) MovementRepo { return &movementRepo{db: db} }

func (r *movementRepo) Create(ctx context.Context, m *models.StockMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movementRepo) List(ctx context.Context, f MovementListFilter) ([]models.StockMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.StockMovement{})

	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.RepairOrderID != nil {
		q = q.Where("repair_order_id = ?", *f.RepairOrderID)
	}
	if f.Type != nil {
		q = q.Where("movement_type = ?", *f.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []models.StockMovement
	err := q.Order("sequence DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *movementRepo) ChainByProduct(ctx context.Context, productID uuid.UUID) ([]models.StockMovement, error) {
	var list []models.StockMovement
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sequence ASC").
		Find(&list).Error
	return list, err
}

func (r *movementRepo) SumByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&models.StockMovement{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	return sum, err
}
