package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/dariast03/reparo-sys-sub001/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductListFilter struct {
	Query        string // name/sku
	Status       *models.ProductStatus
	LowStockOnly bool
	Limit        int
	Offset       int
}

type ProductRepo interface {
	Create(ctx context.Context, p *models.Product) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)

	// LockByID takes a row lock held until the surrounding transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// LockMany locks rows in ascending id order so concurrent multi-item
	// writers cannot deadlock each other.
	LockMany(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	// SetStock writes current_stock only if the row is still at expectedVersion.
	SetStock(ctx context.Context, id uuid.UUID, expectedVersion, newStock int64) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepo { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).Where("lower(sku) = lower(?)", sku).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) List(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})

	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	if f.LowStockOnly {
		q = q.Where("current_stock <= minimum_stock")
	}

	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("lower(name) LIKE lower(?) OR lower(sku) LIKE lower(?)", "%"+s+"%", "%"+s+"%")
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

	order := "created_at DESC"
	if f.LowStockOnly {
		order = "current_stock - minimum_stock ASC, name ASC"
	}

	var list []models.Product
	if err := q.Order(order).Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *productRepo) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.Product{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *productRepo) LockByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &p, err
}

func (r *productRepo) LockMany(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	var list []models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id").
		Find(&list).Error
	return list, err
}

func (r *productRepo) SetStock(ctx context.Context, id uuid.UUID, expectedVersion, newStock int64) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE products
SET current_stock = @stock,
    version = version + 1
WHERE id = @id
  AND version = @version
`, map[string]any{
		"id":      id,
		"version": expectedVersion,
		"stock":   newStock,
	})
	return tx.RowsAffected > 0, tx.Error
}
