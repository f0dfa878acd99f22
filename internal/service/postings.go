package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultIdempotencyTTL = 24 * time.Hour

type SaleLineInput struct {
	ProductID uuid.UUID
	Quantity  int64
	// UnitPrice overrides the catalog sale price when set.
	UnitPrice *decimal.Decimal
}

type SaleInput struct {
	CustomerID     *uuid.UUID
	Lines          []SaleLineInput
	IdempotencyKey string
}

type PurchaseLineInput struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitCost  decimal.Decimal
}

type PurchaseOrderInput struct {
	SupplierID uuid.UUID
	Lines      []PurchaseLineInput
}

type ReceiveLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

type ReceiveInput struct {
	PurchaseOrderID uuid.UUID
	Lines           []ReceiveLine
	IdempotencyKey  string
}

type AdjustInput struct {
	ProductID      uuid.UUID
	Delta          int64
	Note           string
	IdempotencyKey string
}

type CommerceService interface {
	FinalizeSale(ctx context.Context, in SaleInput) (*models.Sale, error)
	GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error)

	CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*models.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ReceivePurchase(ctx context.Context, in ReceiveInput) (*models.PurchaseOrder, error)
	CancelPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)

	AdjustStock(ctx context.Context, in AdjustInput) (*models.StockMovement, error)
}

type commerceService struct {
	repo    *repository.Repository
	ledger  *Ledger
	idem    IdempotencyStore
	idemTTL time.Duration
	events  Notifier
	log     *zap.Logger
}

// NewCommerceService wires postings. idem and events may be nil.
func NewCommerceService(repo *repository.Repository, ledger *Ledger, idem IdempotencyStore, idemTTL time.Duration, events Notifier, log *zap.Logger) CommerceService {
	if idemTTL <= 0 {
		idemTTL = defaultIdempotencyTTL
	}
	return &commerceService{
		repo:    repo,
		ledger:  ledger,
		idem:    idem,
		idemTTL: idemTTL,
		events:  events,
		log:     log,
	}
}

// posting claims the idempotency key around fn. The key is released when
// fn fails so the client can retry.
func (s *commerceService) posting(ctx context.Context, scope, key string, fn func() error) error {
	key = strings.TrimSpace(key)
	if s.idem == nil || key == "" {
		return fn()
	}

	full := "posting:" + scope + ":" + key
	ok, err := s.idem.Claim(ctx, full, s.idemTTL)
	if err != nil {
		return fmt.Errorf("%w: idempotency claim: %w", ErrStorageFailure, err)
	}
	if !ok {
		return fmt.Errorf("%w: key=%s", ErrDuplicateRequest, key)
	}

	if err := fn(); err != nil {
		if rerr := s.idem.Release(context.WithoutCancel(ctx), full); rerr != nil {
			s.log.Warn("idempotency key release failed", zap.String("key", full), zap.Error(rerr))
		}
		return err
	}
	return nil
}

type aggregatedLine struct {
	productID uuid.UUID
	quantity  int64
	unitPrice *decimal.Decimal
}

// aggregateSaleLines merges duplicate products and orders lines by id, which
// is also the lock order.
func aggregateSaleLines(lines []SaleLineInput) ([]aggregatedLine, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLines
	}
	byID := make(map[uuid.UUID]*aggregatedLine, len(lines))
	for _, l := range lines {
		if l.ProductID == uuid.Nil {
			return nil, fmt.Errorf("%w: product id", ErrMissingField)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item=%s got %d", ErrInvalidQuantity, l.ProductID, l.Quantity)
		}
		if l.UnitPrice != nil && l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: unit price item=%s", ErrInvalidAmount, l.ProductID)
		}
		if a, ok := byID[l.ProductID]; ok {
			if a.quantity > math.MaxInt64-l.Quantity {
				return nil, fmt.Errorf("%w: item=%s total overflows", ErrInvalidQuantity, l.ProductID)
			}
			a.quantity += l.Quantity
			if l.UnitPrice != nil {
				a.unitPrice = l.UnitPrice
			}
			continue
		}
		byID[l.ProductID] = &aggregatedLine{productID: l.ProductID, quantity: l.Quantity, unitPrice: l.UnitPrice}
	}

	out := make([]aggregatedLine, 0, len(byID))
	for _, a := range byID {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].productID.String() < out[j].productID.String()
	})
	return out, nil
}

// FinalizeSale validates every line against locked stock before the first
// debit, so a sale either posts in full or leaves no trace.
func (s *commerceService) FinalizeSale(ctx context.Context, in SaleInput) (*models.Sale, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	lines, err := aggregateSaleLines(in.Lines)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(lines))
	for i, l := range lines {
		ids[i] = l.productID
	}

	var sale *models.Sale
	err = s.posting(ctx, "sale", in.IdempotencyKey, func() error {
		return s.ledger.Run(ctx, s.repo, func(tx *repository.Repository) error {
			locked, err := tx.Products.LockMany(ctx, ids)
			if err != nil {
				return err
			}
			products := make(map[uuid.UUID]*models.Product, len(locked))
			for i := range locked {
				products[locked[i].ID] = &locked[i]
			}

			for _, l := range lines {
				p, ok := products[l.productID]
				if !ok {
					return fmt.Errorf("%w: id=%s", ErrItemNotFound, l.productID)
				}
				if p.Status != models.ProductStatusActive {
					return fmt.Errorf("%w: item=%s status=%s", ErrInactiveProduct, p.ID, p.Status)
				}
				if p.CurrentStock < l.quantity {
					return fmt.Errorf("%w: item=%s sku=%s delta=%d stock=%d", ErrInsufficientStock, p.ID, p.SKU, -l.quantity, p.CurrentStock)
				}
			}

			number, err := tx.Sales.NextSaleNumber(ctx)
			if err != nil {
				return err
			}
			sale = &models.Sale{
				ID:         uuid.New(),
				SaleNumber: number,
				CustomerID: in.CustomerID,
				Status:     models.SaleStatusCompleted,
				ActorID:    actor,
				Total:      decimal.Zero,
			}

			for _, l := range lines {
				p := products[l.productID]
				price := p.SalePrice
				if l.unitPrice != nil {
					price = *l.unitPrice
				}
				price = price.Round(2)
				lineTotal := price.Mul(decimal.NewFromInt(l.quantity))
				sale.Total = sale.Total.Add(lineTotal)
				sale.Lines = append(sale.Lines, models.SaleLine{
					ProductID: p.ID,
					Quantity:  l.quantity,
					UnitPrice: price,
					LineTotal: lineTotal,
				})
			}

			if err := tx.Sales.Create(ctx, sale); err != nil {
				return err
			}

			for _, l := range lines {
				p := products[l.productID]
				if _, err := s.ledger.applyLocked(ctx, tx, p, ApplyInput{
					ProductID: p.ID,
					Delta:     -l.quantity,
					Type:      models.MovementOut,
					UnitPrice: lineUnitPrice(sale, p.ID),
					Reference: &Reference{Type: models.ReferenceSale, ID: sale.ID},
					Note:      "sale " + sale.SaleNumber,
					ActorID:   actor,
				}); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("sale finalized",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.Int("lines", len(sale.Lines)),
		zap.String("total", sale.Total.StringFixed(2)),
	)
	for _, id := range ids {
		notifyLowStock(ctx, s.repo, s.events, s.log, id)
	}
	return sale, nil
}

func lineUnitPrice(sale *models.Sale, productID uuid.UUID) decimal.Decimal {
	for _, l := range sale.Lines {
		if l.ProductID == productID {
			return l.UnitPrice
		}
	}
	return decimal.Zero
}

func (s *commerceService) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	sale, err := s.repo.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrSaleNotFound, id)
	}
	return sale, nil
}

func (s *commerceService) CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*models.PurchaseOrder, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if in.SupplierID == uuid.Nil {
		return nil, fmt.Errorf("%w: supplier", ErrMissingField)
	}
	if len(in.Lines) == 0 {
		return nil, ErrEmptyLines
	}

	po := &models.PurchaseOrder{
		ID:         uuid.New(),
		SupplierID: in.SupplierID,
		Status:     models.PurchaseOrderPending,
		ActorID:    actor,
	}
	seen := make(map[uuid.UUID]struct{}, len(in.Lines))
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item=%s got %d", ErrInvalidQuantity, l.ProductID, l.Quantity)
		}
		if l.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: unit cost item=%s", ErrInvalidAmount, l.ProductID)
		}
		if _, dup := seen[l.ProductID]; dup {
			return nil, fmt.Errorf("%w: duplicate line item=%s", ErrInvalidInput, l.ProductID)
		}
		seen[l.ProductID] = struct{}{}
		po.Lines = append(po.Lines, models.PurchaseOrderLine{
			ProductID:       l.ProductID,
			QuantityOrdered: l.Quantity,
			UnitCost:        l.UnitCost.Round(2),
		})
	}

	err = runTx(ctx, s.repo, s.ledger.maxRetries, func(tx *repository.Repository) error {
		for _, l := range po.Lines {
			p, err := tx.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("%w: id=%s", ErrItemNotFound, l.ProductID)
			}
		}
		return tx.PurchaseOrders.Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase order created", zap.String("po_id", po.ID.String()), zap.Int("lines", len(po.Lines)))
	return po, nil
}

func (s *commerceService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, err := s.repo.PurchaseOrders.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if po == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrPurchaseOrderNotFound, id)
	}
	return po, nil
}

// ReceivePurchase books what actually arrived. Partial receipts are fine;
// receiving more than is still outstanding on a line is rejected.
func (s *commerceService) ReceivePurchase(ctx context.Context, in ReceiveInput) (*models.PurchaseOrder, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	for _, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item=%s got %d", ErrInvalidQuantity, l.ProductID, l.Quantity)
		}
	}

	err = s.posting(ctx, "receipt:"+in.PurchaseOrderID.String(), in.IdempotencyKey, func() error {
		return s.ledger.Run(ctx, s.repo, func(tx *repository.Repository) error {
			po, err := tx.PurchaseOrders.LockByID(ctx, in.PurchaseOrderID)
			if err != nil {
				return err
			}
			if po == nil {
				return fmt.Errorf("%w: id=%s", ErrPurchaseOrderNotFound, in.PurchaseOrderID)
			}
			if po.Status == models.PurchaseOrderReceived || po.Status == models.PurchaseOrderCancelled {
				return fmt.Errorf("%w: po=%s status=%s", ErrPurchaseOrderClosed, po.ID, po.Status)
			}

			byProduct := make(map[uuid.UUID]*models.PurchaseOrderLine, len(po.Lines))
			for i := range po.Lines {
				byProduct[po.Lines[i].ProductID] = &po.Lines[i]
			}

			received := make(map[uuid.UUID]int64, len(in.Lines))
			for _, l := range in.Lines {
				if received[l.ProductID] > math.MaxInt64-l.Quantity {
					return fmt.Errorf("%w: item=%s total overflows", ErrInvalidQuantity, l.ProductID)
				}
				received[l.ProductID] += l.Quantity
			}
			productIDs := make([]uuid.UUID, 0, len(received))
			for id := range received {
				productIDs = append(productIDs, id)
			}
			sort.Slice(productIDs, func(i, j int) bool { return productIDs[i].String() < productIDs[j].String() })

			for _, id := range productIDs {
				line, ok := byProduct[id]
				if !ok {
					return fmt.Errorf("%w: item=%s is not on po=%s", ErrInvalidInput, id, po.ID)
				}
				qty := received[id]
				if qty > line.Outstanding() {
					return fmt.Errorf("%w: item=%s received=%d outstanding=%d", ErrOverReceipt, id, qty, line.Outstanding())
				}
			}

			for _, id := range productIDs {
				line := byProduct[id]
				qty := received[id]
				ok, err := tx.PurchaseOrders.AddReceived(ctx, line.ID, qty)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: item=%s received=%d outstanding=%d", ErrOverReceipt, id, qty, line.Outstanding())
				}
				line.QuantityReceived += qty

				if _, err := s.ledger.Apply(ctx, tx, ApplyInput{
					ProductID: id,
					Delta:     qty,
					Type:      models.MovementIn,
					UnitPrice: line.UnitCost,
					Reference: &Reference{Type: models.ReferencePurchaseOrder, ID: po.ID},
					Note:      "purchase receipt",
					ActorID:   actor,
				}); err != nil {
					return err
				}
			}

			status := models.PurchaseOrderReceived
			for _, l := range po.Lines {
				if l.Outstanding() > 0 {
					status = models.PurchaseOrderPartial
					break
				}
			}
			if err := tx.PurchaseOrders.UpdateStatus(ctx, po.ID, status); err != nil {
				return err
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	po, err := s.GetPurchaseOrder(ctx, in.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	s.log.Info("purchase receipt posted", zap.String("po_id", po.ID.String()), zap.String("status", string(po.Status)))
	return po, nil
}

// CancelPurchaseOrder closes a PO that will not be delivered in full.
// Quantities already received stay in stock.
func (s *commerceService) CancelPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	err := runTx(ctx, s.repo, s.ledger.maxRetries, func(tx *repository.Repository) error {
		po, err := tx.PurchaseOrders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if po == nil {
			return fmt.Errorf("%w: id=%s", ErrPurchaseOrderNotFound, id)
		}
		if po.Status == models.PurchaseOrderReceived || po.Status == models.PurchaseOrderCancelled {
			return fmt.Errorf("%w: po=%s status=%s", ErrPurchaseOrderClosed, po.ID, po.Status)
		}
		return tx.PurchaseOrders.UpdateStatus(ctx, po.ID, models.PurchaseOrderCancelled)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("purchase order cancelled", zap.String("po_id", id.String()))
	return s.GetPurchaseOrder(ctx, id)
}

func (s *commerceService) AdjustStock(ctx context.Context, in AdjustInput) (*models.StockMovement, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	note := strings.TrimSpace(in.Note)
	if note == "" {
		return nil, fmt.Errorf("%w: adjustment note", ErrMissingField)
	}

	var m *models.StockMovement
	err = s.posting(ctx, "adjustment:"+in.ProductID.String(), in.IdempotencyKey, func() error {
		return s.ledger.Run(ctx, s.repo, func(tx *repository.Repository) error {
			var err error
			m, err = s.ledger.Apply(ctx, tx, ApplyInput{
				ProductID: in.ProductID,
				Delta:     in.Delta,
				Type:      models.MovementAdjustment,
				Reference: &Reference{Type: models.ReferenceManual, ID: in.ProductID},
				Note:      note,
				ActorID:   actor,
			})
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("stock adjusted",
		zap.String("product_id", in.ProductID.String()),
		zap.Int64("delta", in.Delta),
		zap.Int64("stock_after", m.StockAfter),
	)
	if in.Delta < 0 {
		notifyLowStock(ctx, s.repo, s.events, s.log, in.ProductID)
	}
	return m, nil
}
