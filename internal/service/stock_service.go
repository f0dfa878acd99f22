package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type stockService struct {
	repo   *repository.Repository
	ledger *Ledger
	log    *zap.Logger
}

func NewStockService(repo *repository.Repository, ledger *Ledger, log *zap.Logger) StockService {
	return &stockService{
		repo:   repo,
		ledger: ledger,
		log:    log,
	}
}

func (s *stockService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	p := &models.Product{
		SKU:           strings.TrimSpace(in.SKU),
		Name:          strings.TrimSpace(in.Name),
		Description:   strings.TrimSpace(in.Description),
		MinimumStock:  in.MinimumStock,
		PurchasePrice: in.PurchasePrice,
		SalePrice:     in.SalePrice,
		Status:        models.ProductStatusActive,
	}
	if p.SKU == "" || p.Name == "" {
		return nil, fmt.Errorf("%w: sku and name", ErrMissingField)
	}
	if in.InitialStock < 0 || in.MinimumStock < 0 {
		return nil, fmt.Errorf("%w: stock quantities must be >= 0", ErrInvalidInput)
	}
	if in.PurchasePrice.IsNegative() || in.SalePrice.IsNegative() {
		return nil, fmt.Errorf("%w: price", ErrInvalidAmount)
	}

	err = s.ledger.Run(ctx, s.repo, func(tx *repository.Repository) error {
		if existing, err := tx.Products.GetBySKU(ctx, p.SKU); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("%w: %s", ErrSKUAlreadyExists, p.SKU)
		}
		p.ID = uuid.Nil
		p.CurrentStock = 0
		p.Version = 0
		if err := tx.Products.Create(ctx, p); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		// Opening stock is a regular movement so the chain replays from zero.
		_, err := s.ledger.applyLocked(ctx, tx, p, ApplyInput{
			ProductID: p.ID,
			Delta:     in.InitialStock,
			Type:      models.MovementIn,
			UnitPrice: in.PurchasePrice,
			Reference: &Reference{Type: models.ReferenceManual, ID: p.ID},
			Note:      "opening stock",
			ActorID:   actor,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", zap.String("product_id", p.ID.String()), zap.String("sku", p.SKU))
	return p, nil
}

func (s *stockService) UpdateProduct(ctx context.Context, id uuid.UUID, patch ProductPatch) (*models.Product, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrItemNotFound, id)
	}

	fields := map[string]any{}

	if patch.SKU != nil {
		sku := strings.TrimSpace(*patch.SKU)
		if sku == "" {
			return nil, fmt.Errorf("%w: sku", ErrMissingField)
		}
		if existing, err := s.repo.Products.GetBySKU(ctx, sku); err != nil {
			return nil, classify(err)
		} else if existing != nil && existing.ID != p.ID {
			return nil, fmt.Errorf("%w: %s", ErrSKUAlreadyExists, sku)
		}
		fields["sku"] = sku
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name", ErrMissingField)
		}
		fields["name"] = name
	}

	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}

	if patch.MinimumStock != nil {
		if *patch.MinimumStock < 0 {
			return nil, fmt.Errorf("%w: minimum stock must be >= 0", ErrInvalidInput)
		}
		fields["minimum_stock"] = *patch.MinimumStock
	}

	if patch.PurchasePrice != nil {
		if patch.PurchasePrice.IsNegative() {
			return nil, fmt.Errorf("%w: purchase price", ErrInvalidAmount)
		}
		fields["purchase_price"] = *patch.PurchasePrice
	}

	if patch.SalePrice != nil {
		if patch.SalePrice.IsNegative() {
			return nil, fmt.Errorf("%w: sale price", ErrInvalidAmount)
		}
		fields["sale_price"] = *patch.SalePrice
	}

	if patch.Status != nil {
		switch *patch.Status {
		case models.ProductStatusActive, models.ProductStatusInactive, models.ProductStatusDiscontinued:
			fields["status"] = *patch.Status
		default:
			return nil, fmt.Errorf("%w: product status %q", ErrInvalidStatus, *patch.Status)
		}
	}

	if len(fields) == 0 {
		return p, nil
	}

	if err := s.repo.Products.UpdateFields(ctx, id, fields); err != nil {
		// a concurrent rename can still win the unique index after the check above
		if sku, ok := fields["sku"]; ok && pgCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrSKUAlreadyExists, sku)
		}
		return nil, classify(err)
	}

	return s.GetProduct(ctx, id)
}

func (s *stockService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.repo.Products.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrItemNotFound, id)
	}
	return p, nil
}

func (s *stockService) ListProducts(ctx context.Context, f ProductListFilter) ([]models.Product, int64, error) {
	list, total, err := s.repo.Products.List(ctx, repository.ProductListFilter{
		Query:  f.Query,
		Status: f.Status,
		Limit:  f.Limit,
		Offset: f.Offset,
	})
	return list, total, classify(err)
}

func (s *stockService) LowStock(ctx context.Context, limit, offset int) ([]models.Product, int64, error) {
	active := models.ProductStatusActive
	list, total, err := s.repo.Products.List(ctx, repository.ProductListFilter{
		Status:       &active,
		LowStockOnly: true,
		Limit:        limit,
		Offset:       offset,
	})
	return list, total, classify(err)
}

func (s *stockService) ListMovements(ctx context.Context, f MovementListFilter) ([]models.StockMovement, int64, error) {
	list, total, err := s.repo.Movements.List(ctx, repository.MovementListFilter{
		ProductID:     f.ProductID,
		RepairOrderID: f.RepairOrderID,
		Type:          f.Type,
		Limit:         f.Limit,
		Offset:        f.Offset,
	})
	return list, total, classify(err)
}

func (s *stockService) VerifyProduct(ctx context.Context, id uuid.UUID) (*StockReport, error) {
	var report *StockReport
	// Read product and chain in one snapshot so a concurrent movement cannot
	// land between the two reads.
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.DB.Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ").Error; err != nil {
			return err
		}
		p, err := tx.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: id=%s", ErrItemNotFound, id)
		}
		chain, err := tx.Movements.ChainByProduct(ctx, id)
		if err != nil {
			return err
		}
		report = replayChain(p, chain)
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if !report.Consistent {
		s.log.Error("stock ledger drift detected",
			zap.String("product_id", id.String()),
			zap.Int64("current_stock", report.CurrentStock),
			zap.Int64("replayed_stock", report.ReplayedStock),
		)
	}
	return report, nil
}

func replayChain(p *models.Product, chain []models.StockMovement) *StockReport {
	r := &StockReport{
		ProductID:    p.ID,
		CurrentStock: p.CurrentStock,
		Movements:    len(chain),
	}
	var running int64
	for _, m := range chain {
		if r.BrokenAt == nil && m.StockBefore != running {
			seq := m.Sequence
			r.BrokenAt = &seq
		}
		running += m.Quantity
	}
	r.ReplayedStock = running
	r.Consistent = r.BrokenAt == nil && running == p.CurrentStock
	return r
}
