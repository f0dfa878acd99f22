package repository

import (
	"context"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoryRepo interface {
	Append(ctx context.Context, h *models.OrderHistory) error
	// ListByOrder returns entries oldest first.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error)
}

type historyRepo struct{ db *gorm.DB }

func NewHistoryRepo(db *gorm.DB) HistoryRepo { return &historyRepo{db: db} }

func (r *historyRepo) Append(ctx context.Context, h *models.OrderHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historyRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	var list []models.OrderHistory
	err := r.db.WithContext(ctx).
		Where("repair_order_id = ?", orderID).
		Order("sequence ASC").
		Find(&list).Error
	return list, err
}
