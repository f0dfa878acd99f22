package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SaleRepo interface {
	NextSaleNumber(ctx context.Context) (string, error)
	// Create inserts the sale and its lines.
	Create(ctx context.Context, s *models.Sale) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error)
}

type saleRepo struct{ db *gorm.DB }

func NewSaleRepo(db *gorm.DB) SaleRepo { return &saleRepo{db: db} }

func (r *saleRepo) NextSaleNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw(`SELECT nextval('sale_number_seq')`).Scan(&n).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("S-%06d", n), nil
}

func (r *saleRepo) Create(ctx context.Context, s *models.Sale) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *saleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	var s models.Sale
	err := r.db.WithContext(ctx).Preload("Lines").First(&s, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &s, err
}
