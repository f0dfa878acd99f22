package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderListFilter struct {
	Status       *models.OrderStatus
	CustomerID   *uuid.UUID
	TechnicianID *uuid.UUID
	Limit        int
	Offset       int
}

type OrderRepo interface {
	Create(ctx context.Context, o *models.RepairOrder) error
	NextOrderNumber(ctx context.Context) (string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error)
	LockByID(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, f OrderListFilter) ([]models.RepairOrder, int64, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepo(db *gorm.DB) OrderRepo { return &orderRepo{db: db} }

func (r *orderRepo) Create(ctx context.Context, o *models.RepairOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) NextOrderNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw(`SELECT nextval('repair_order_number_seq')`).Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("RO-%06d", n), nil
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error) {
	var o models.RepairOrder
	err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error) {
	var o models.RepairOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &o, err
}

func (r *orderRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.RepairOrder{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]models.RepairOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.RepairOrder{})

	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.TechnicianID != nil {
		q = q.Where("technician_id = ?", *f.TechnicianID)
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

	var list []models.RepairOrder
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error
	return list, total, err
}

func (r *orderRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.RepairOrder{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
