package repository

import (
	"context"
	"errors"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PartRepo interface {
	Create(ctx context.Context, p *models.OrderPart) error
	// LockByOrderAndProduct returns the part row, locked, or nil if absent.
	LockByOrderAndProduct(ctx context.Context, orderID, productID uuid.UUID) (*models.OrderPart, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderPart, error)
}

type partRepo struct{ db *gorm.DB }

func NewPartRepo(db *gorm.DB) PartRepo { return &partRepo{db: db} }

func (r *partRepo) Create(ctx context.Context, p *models.OrderPart) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *partRepo) LockByOrderAndProduct(ctx context.Context, orderID, productID uuid.UUID) (*models.OrderPart, error) {
	var p models.OrderPart
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("repair_order_id = ? AND product_id = ?", orderID, productID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *partRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.OrderPart{}).Where("id = ?", id).Updates(fields).Error
}

func (r *partRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.OrderPart{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *partRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderPart, error) {
	var list []models.OrderPart
	err := r.db.WithContext(ctx).
		Where("repair_order_id = ?", orderID).
		Order("used_at ASC").
		Find(&list).Error
	return list, err
}
