package service

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reference links a movement to the document that caused it.
type Reference struct {
	Type models.ReferenceType
	ID   uuid.UUID
}

type ApplyInput struct {
	ProductID     uuid.UUID
	Delta         int64
	Type          models.MovementType
	UnitPrice     decimal.Decimal
	RepairOrderID *uuid.UUID
	Reference     *Reference
	Note          string
	ActorID       uuid.UUID
}

// Ledger is the only writer of products.current_stock. Every change goes
// through Apply inside a caller-owned transaction, so the stock row and its
// movement commit or roll back together.
type Ledger struct {
	log        *zap.Logger
	maxRetries int
}

func NewLedger(log *zap.Logger, maxRetries int) *Ledger {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Ledger{log: log, maxRetries: maxRetries}
}

// Run executes fn in one transaction, retrying the whole transaction on
// concurrency conflicts.
func (l *Ledger) Run(ctx context.Context, repo *repository.Repository, fn func(tx *repository.Repository) error) error {
	return runTx(ctx, repo, l.maxRetries, fn)
}

func validateApply(in ApplyInput) error {
	if !in.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMovementType, in.Type)
	}
	if in.Delta == 0 {
		return fmt.Errorf("%w: zero delta item=%s", ErrInvalidDelta, in.ProductID)
	}
	if !in.Type.AcceptsDelta(in.Delta) {
		return fmt.Errorf("%w: sign does not match type item=%s type=%s delta=%d", ErrInvalidDelta, in.ProductID, in.Type, in.Delta)
	}
	if in.ActorID == uuid.Nil {
		return ErrActorRequired
	}
	if in.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price", ErrInvalidAmount)
	}
	return nil
}

// Apply locks the product row and records one movement.
func (l *Ledger) Apply(ctx context.Context, tx *repository.Repository, in ApplyInput) (*models.StockMovement, error) {
	if err := validateApply(in); err != nil {
		return nil, err
	}

	p, err := tx.Products.LockByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrItemNotFound, in.ProductID)
	}

	return l.applyLocked(ctx, tx, p, in)
}

// applyLocked expects p to be locked by the current transaction. On success
// p reflects the new stock and version.
func (l *Ledger) applyLocked(ctx context.Context, tx *repository.Repository, p *models.Product, in ApplyInput) (*models.StockMovement, error) {
	if err := validateApply(in); err != nil {
		return nil, err
	}

	before := p.CurrentStock
	if in.Delta > 0 && before > math.MaxInt64-in.Delta {
		return nil, fmt.Errorf("%w: stock overflow item=%s delta=%d stock=%d", ErrInvalidDelta, p.ID, in.Delta, before)
	}
	after := before + in.Delta
	if after < 0 {
		l.log.Warn("stock movement rejected",
			zap.String("product_id", p.ID.String()),
			zap.Int64("stock", before),
			zap.Int64("delta", in.Delta),
			zap.String("type", string(in.Type)),
		)
		return nil, fmt.Errorf("%w: item=%s sku=%s delta=%d stock=%d", ErrInsufficientStock, p.ID, p.SKU, in.Delta, before)
	}

	ok, err := tx.Products.SetStock(ctx, p.ID, p.Version, after)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: item=%s version=%d", ErrConcurrencyConflict, p.ID, p.Version)
	}

	m := &models.StockMovement{
		ProductID:     p.ID,
		Quantity:      in.Delta,
		MovementType:  in.Type,
		UnitPrice:     in.UnitPrice,
		StockBefore:   before,
		StockAfter:    after,
		RepairOrderID: in.RepairOrderID,
		Note:          sanitizeNote(in.Note),
		ActorID:       in.ActorID,
		CreatedAt:     time.Now().UTC(),
	}
	if in.Reference != nil {
		rt := in.Reference.Type
		rid := in.Reference.ID
		m.ReferenceType = &rt
		m.ReferenceID = &rid
	}
	if err := tx.Movements.Create(ctx, m); err != nil {
		return nil, err
	}

	p.CurrentStock = after
	p.Version++

	l.log.Debug("stock movement applied",
		zap.String("product_id", p.ID.String()),
		zap.String("type", string(in.Type)),
		zap.Int64("delta", in.Delta),
		zap.Int64("stock_after", after),
	)
	return m, nil
}

const maxNoteBytes = 500

// sanitizeNote caps a note at maxNoteBytes without splitting a UTF-8 sequence.
func sanitizeNote(note string) string {
	if len(note) <= maxNoteBytes {
		return note
	}
	cut := maxNoteBytes
	for cut > 0 && !utf8.RuneStart(note[cut]) {
		cut--
	}
	return note[:cut]
}
