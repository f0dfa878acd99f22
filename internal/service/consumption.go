package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type UseItemInput struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	// Quantity is the total the order should have consumed, not an increment.
	Quantity  int64
	UnitPrice decimal.Decimal
}

type PartsService interface {
	UseItem(ctx context.Context, in UseItemInput) (*models.OrderPart, error)
	RemovePart(ctx context.Context, orderID, productID uuid.UUID) error
	ListParts(ctx context.Context, orderID uuid.UUID) ([]models.OrderPart, error)
}

type partsService struct {
	repo   *repository.Repository
	ledger *Ledger
	events Notifier
	log    *zap.Logger
	now    func() time.Time
}

func NewPartsService(repo *repository.Repository, ledger *Ledger, events Notifier, log *zap.Logger) PartsService {
	return &partsService{
		repo:   repo,
		ledger: ledger,
		events: events,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// lockOpenOrder serializes part changes per order and keeps them away from
// closed orders.
func lockOpenOrder(ctx context.Context, tx *repository.Repository, id uuid.UUID) (*models.RepairOrder, error) {
	o, err := tx.Orders.LockByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrOrderNotFound, id)
	}
	if o.Status.Terminal() {
		return nil, fmt.Errorf("%w: order=%s status=%s", ErrOrderClosed, id, o.Status)
	}
	return o, nil
}

func (s *partsService) UseItem(ctx context.Context, in UseItemInput) (*models.OrderPart, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQuantity, in.Quantity)
	}
	if in.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price", ErrInvalidAmount)
	}

	// prices are stored as numeric(12,2); the total must match the stored price
	price := in.UnitPrice.Round(2)

	var (
		part     *models.OrderPart
		movement *models.StockMovement
	)
	err = s.ledger.Run(ctx, s.repo, func(tx *repository.Repository) error {
		part, movement = nil, nil

		if _, err := lockOpenOrder(ctx, tx, in.OrderID); err != nil {
			return err
		}

		existing, err := tx.Parts.LockByOrderAndProduct(ctx, in.OrderID, in.ProductID)
		if err != nil {
			return err
		}

		var delta int64
		if existing == nil {
			delta = in.Quantity
		} else {
			delta = in.Quantity - existing.Quantity
		}

		// more parts leave stock as "out", fewer come back as "return"
		if delta != 0 {
			apply := ApplyInput{
				ProductID:     in.ProductID,
				Delta:         -delta,
				Type:          models.MovementOut,
				UnitPrice:     price,
				RepairOrderID: &in.OrderID,
				Reference:     &Reference{Type: models.ReferenceRepairOrder, ID: in.OrderID},
				Note:          "part used in repair",
				ActorID:       actor,
			}
			if delta < 0 {
				apply.Type = models.MovementReturn
				apply.Note = "part returned from repair"
			}
			m, err := s.ledger.Apply(ctx, tx, apply)
			if err != nil {
				return err
			}
			movement = m
		}

		total := price.Mul(decimal.NewFromInt(in.Quantity))
		now := s.now()

		if existing == nil {
			part = &models.OrderPart{
				RepairOrderID: in.OrderID,
				ProductID:     in.ProductID,
				Quantity:      in.Quantity,
				UnitPrice:     price,
				TotalPrice:    total,
				UsedAt:        now,
			}
			return tx.Parts.Create(ctx, part)
		}

		if err := tx.Parts.UpdateFields(ctx, existing.ID, map[string]any{
			"quantity":    in.Quantity,
			"unit_price":  price,
			"total_price": total,
			"used_at":     now,
		}); err != nil {
			return err
		}
		existing.Quantity = in.Quantity
		existing.UnitPrice = price
		existing.TotalPrice = total
		existing.UsedAt = now
		part = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	if movement != nil {
		s.log.Info("part consumption recorded",
			zap.String("order_id", in.OrderID.String()),
			zap.String("product_id", in.ProductID.String()),
			zap.Int64("quantity", in.Quantity),
			zap.Int64("delta", movement.Quantity),
		)
		s.checkLowStock(ctx, in.ProductID)
	}
	return part, nil
}

func (s *partsService) RemovePart(ctx context.Context, orderID, productID uuid.UUID) error {
	actor, err := requireActor(ctx)
	if err != nil {
		return err
	}

	return s.ledger.Run(ctx, s.repo, func(tx *repository.Repository) error {
		if _, err := lockOpenOrder(ctx, tx, orderID); err != nil {
			return err
		}
		part, err := tx.Parts.LockByOrderAndProduct(ctx, orderID, productID)
		if err != nil {
			return err
		}
		if part == nil {
			return fmt.Errorf("%w: order=%s item=%s", ErrPartNotFound, orderID, productID)
		}
		if _, err := s.ledger.Apply(ctx, tx, ApplyInput{
			ProductID:     productID,
			Delta:         part.Quantity,
			Type:          models.MovementReturn,
			UnitPrice:     part.UnitPrice,
			RepairOrderID: &orderID,
			Reference:     &Reference{Type: models.ReferenceRepairOrder, ID: orderID},
			Note:          "part removed from repair",
			ActorID:       actor,
		}); err != nil {
			return err
		}
		_, err = tx.Parts.Delete(ctx, part.ID)
		return err
	})
}

func (s *partsService) ListParts(ctx context.Context, orderID uuid.UUID) ([]models.OrderPart, error) {
	o, err := s.repo.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, classify(err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrOrderNotFound, orderID)
	}
	list, err := s.repo.Parts.ListByOrder(ctx, orderID)
	return list, classify(err)
}

func (s *partsService) checkLowStock(ctx context.Context, productID uuid.UUID) {
	notifyLowStock(ctx, s.repo, s.events, s.log, productID)
}

// notifyLowStock publishes a low-stock event when the committed stock is at
// or below the product minimum.
func notifyLowStock(ctx context.Context, repo *repository.Repository, events Notifier, log *zap.Logger, productID uuid.UUID) {
	if events == nil {
		return
	}
	p, err := repo.Products.GetByID(ctx, productID)
	if err != nil || p == nil || !p.IsLowStock() {
		return
	}
	if err := events.PublishLowStock(context.WithoutCancel(ctx), LowStockEvent{
		ProductID:    p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		CurrentStock: p.CurrentStock,
		MinimumStock: p.MinimumStock,
		DetectedAt:   time.Now().UTC(),
	}); err != nil {
		log.Error("low stock notification failed", zap.String("product_id", p.ID.String()), zap.Error(err))
	}
}
