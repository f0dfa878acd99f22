package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/migrate"
	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"
	"github.com/dariast03/reparo-sys-sub001/internal/service"
	"github.com/dariast03/reparo-sys-sub001/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []service.StatusChangedEvent
	lowStock []service.LowStockEvent
}

func (n *recordingNotifier) PublishStatusChanged(ctx context.Context, e service.StatusChangedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, e)
	return nil
}

func (n *recordingNotifier) PublishLowStock(ctx context.Context, e service.LowStockEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.lowStock = append(n.lowStock, e)
	return nil
}

func (n *recordingNotifier) lowStockCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.lowStock)
}

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func (m *memoryIdempotency) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *memoryIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

type env struct {
	db       *gorm.DB
	repo     *repository.Repository
	stock    service.StockService
	orders   service.OrderService
	parts    service.PartsService
	commerce service.CommerceService
	events   *recordingNotifier
	ctx      context.Context
	actor    uuid.UUID
}

func setupEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateReparoDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := zap.NewNop()
	repo := repository.New(db)
	ledger := service.NewLedger(log, 5)
	events := &recordingNotifier{}
	idem := &memoryIdempotency{keys: map[string]struct{}{}}
	actor := uuid.New()

	return &env{
		db:       db,
		repo:     repo,
		stock:    service.NewStockService(repo, ledger, log),
		orders:   service.NewOrderService(repo, events, log, 5),
		parts:    service.NewPartsService(repo, ledger, events, log),
		commerce: service.NewCommerceService(repo, ledger, idem, time.Hour, events, log),
		events:   events,
		ctx:      service.WithActor(context.Background(), actor),
		actor:    actor,
	}
}

func (e *env) product(t *testing.T, sku string, stock, min int64, price string) *models.Product {
	t.Helper()
	p, err := e.stock.CreateProduct(e.ctx, service.ProductInput{
		SKU:           sku,
		Name:          "Part " + sku,
		InitialStock:  stock,
		MinimumStock:  min,
		PurchasePrice: decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		SalePrice:     decimal.RequireFromString(price),
	})
	if err != nil {
		t.Fatalf("CreateProduct %s: %v", sku, err)
	}
	return p
}

func (e *env) order(t *testing.T) *models.RepairOrder {
	t.Helper()
	o, err := e.orders.CreateOrder(e.ctx, service.CreateOrderInput{
		CustomerID:         uuid.New(),
		DeviceID:           uuid.New(),
		ProblemDescription: "does not power on",
		DiagnosisCost:      decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}

func (e *env) stockOf(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	p, err := e.stock.GetProduct(e.ctx, id)
	if err != nil {
		t.Fatalf("GetProduct: %v", err)
	}
	return p.CurrentStock
}

func (e *env) assertConsistent(t *testing.T, id uuid.UUID) {
	t.Helper()
	rep, err := e.stock.VerifyProduct(e.ctx, id)
	if err != nil {
		t.Fatalf("VerifyProduct: %v", err)
	}
	if !rep.Consistent {
		t.Fatalf("ledger inconsistent: %+v", rep)
	}
}

func (e *env) movementCount(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	_, total, err := e.stock.ListMovements(e.ctx, service.MovementListFilter{ProductID: &id})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	return total
}

func (e *env) moveTo(t *testing.T, orderID uuid.UUID, path ...models.OrderStatus) {
	t.Helper()
	for _, st := range path {
		if _, err := e.orders.Transition(e.ctx, orderID, st, ""); err != nil {
			t.Fatalf("Transition to %s: %v", st, err)
		}
	}
}
