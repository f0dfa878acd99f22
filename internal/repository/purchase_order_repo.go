package repository

import (
	"context"
	"errors"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderRepo interface {
	Create(ctx context.Context, po *models.PurchaseOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	// LockByID locks the header row and loads its lines.
	LockByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	// AddReceived bumps quantity_received unless it would exceed quantity_ordered.
	AddReceived(ctx context.Context, lineID uuid.UUID, qty int64) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.PurchaseOrderStatus) error
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepo(db *gorm.DB) PurchaseOrderRepo { return &purchaseOrderRepo{db: db} }

func (r *purchaseOrderRepo) Create(ctx context.Context, po *models.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

func (r *purchaseOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("product_id") }).
		First(&po, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &po, err
}

func (r *purchaseOrderRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&po, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Where("purchase_order_id = ?", id).
		Order("product_id").
		Find(&po.Lines).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepo) AddReceived(ctx context.Context, lineID uuid.UUID, qty int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE purchase_order_lines
SET quantity_received = quantity_received + @q
WHERE id = @id
  AND quantity_received + @q <= quantity_ordered
`, map[string]any{
		"id": lineID,
		"q":  qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *purchaseOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.PurchaseOrderStatus) error {
	return r.db.WithContext(ctx).Model(&models.PurchaseOrder{}).Where("id = ?", id).Update("status", status).Error
}
