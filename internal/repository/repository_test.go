package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/migrate"
	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"
	"github.com/dariast03/reparo-sys-sub001/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateReparoDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newProduct(sku string, stock, min int64) *models.Product {
	return &models.Product{
		SKU:           sku,
		Name:          "Part " + sku,
		CurrentStock:  stock,
		MinimumStock:  min,
		PurchasePrice: decimal.RequireFromString("3.50"),
		SalePrice:     decimal.RequireFromString("5.00"),
		Status:        models.ProductStatusActive,
	}
}

func newOrder(t *testing.T, ctx context.Context, repo *repository.Repository) *models.RepairOrder {
	t.Helper()
	number, err := repo.Orders.NextOrderNumber(ctx)
	if err != nil {
		t.Fatalf("NextOrderNumber: %v", err)
	}
	o := &models.RepairOrder{
		OrderNumber:        number,
		CustomerID:         uuid.New(),
		DeviceID:           uuid.New(),
		Status:             models.OrderStatusReceived,
		Priority:           models.PriorityNormal,
		ProblemDescription: "screen cracked",
	}
	if err := repo.Orders.Create(ctx, o); err != nil {
		t.Fatalf("Create order: %v", err)
	}
	return o
}

func TestProductRepo_CRUD(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := newProduct("LCD-IP11", 10, 2)
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.SKU != "LCD-IP11" || got.CurrentStock != 10 || got.Version != 0 {
		t.Fatalf("GetByID mismatch: %+v", got)
	}

	bySKU, err := repo.Products.GetBySKU(ctx, "lcd-ip11")
	if err != nil {
		t.Fatalf("GetBySKU: %v", err)
	}
	if bySKU == nil || bySKU.ID != p.ID {
		t.Fatalf("GetBySKU should be case-insensitive: %+v", bySKU)
	}

	missing, err := repo.Products.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: %v %v", missing, err)
	}

	// SKU uniqueness ignores case
	if err := repo.Products.Create(ctx, newProduct("lcd-ip11", 0, 0)); err == nil {
		t.Fatal("expected unique violation for duplicate sku")
	}

	if err := repo.Products.UpdateFields(ctx, p.ID, map[string]any{"name": "iPhone 11 LCD"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	updated, _ := repo.Products.GetByID(ctx, p.ID)
	if updated.Name != "iPhone 11 LCD" {
		t.Fatalf("UpdateFields mismatch: %+v", updated)
	}
}

func TestProductRepo_SetStockVersionGuard(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := newProduct("BAT-01", 5, 0)
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	ok, err := repo.Products.SetStock(ctx, p.ID, 0, 7)
	if err != nil || !ok {
		t.Fatalf("SetStock first: ok=%v err=%v", ok, err)
	}

	// stale version loses
	ok, err = repo.Products.SetStock(ctx, p.ID, 0, 9)
	if err != nil {
		t.Fatalf("SetStock stale: %v", err)
	}
	if ok {
		t.Fatal("expected stale version to be rejected")
	}

	got, _ := repo.Products.GetByID(ctx, p.ID)
	if got.CurrentStock != 7 || got.Version != 1 {
		t.Fatalf("unexpected row: stock=%d version=%d", got.CurrentStock, got.Version)
	}

	// the CHECK keeps stock non-negative even if a caller skips validation
	if _, err := repo.Products.SetStock(ctx, p.ID, 1, -1); err == nil {
		t.Fatal("expected check violation for negative stock")
	}
}

func TestProductRepo_List(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	products := []*models.Product{
		newProduct("CAM-A", 10, 2),
		newProduct("CAM-B", 1, 3),
		newProduct("SPK-C", 3, 3),
	}
	for i, p := range products {
		if err := repo.Products.Create(ctx, p); err != nil {
			t.Fatalf("Create product %d: %v", i, err)
		}
	}
	if err := repo.Products.UpdateFields(ctx, products[0].ID, map[string]any{"status": models.ProductStatusInactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	list, total, err := repo.Products.List(ctx, repository.ProductListFilter{Query: "cam", Limit: 10})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 cam products, got total=%d len=%d", total, len(list))
	}

	active := models.ProductStatusActive
	_, total, err = repo.Products.List(ctx, repository.ProductListFilter{Status: &active, Limit: 10})
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 active, got %d", total)
	}

	low, total, err := repo.Products.List(ctx, repository.ProductListFilter{LowStockOnly: true, Limit: 10})
	if err != nil {
		t.Fatalf("List low stock: %v", err)
	}
	if total != 2 || len(low) != 2 {
		t.Fatalf("expected 2 low-stock products, got %d", total)
	}
	// most urgent first
	if low[0].SKU != "CAM-B" {
		t.Fatalf("unexpected low-stock order: %s first", low[0].SKU)
	}

	page, total, err := repo.Products.List(ctx, repository.ProductListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("pagination: total=%d len=%d", total, len(page))
	}
}

func TestProductRepo_LockManyOrdered(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, sku := range []string{"L-1", "L-2", "L-3"} {
		p := newProduct(sku, 1, 0)
		if err := repo.Products.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, p.ID)
	}

	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		list, err := tx.Products.LockMany(ctx, ids)
		if err != nil {
			return err
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 locked rows, got %d", len(list))
		}
		for i := 1; i < len(list); i++ {
			if strings.Compare(list[i-1].ID.String(), list[i].ID.String()) > 0 {
				t.Fatalf("rows not in id order: %s before %s", list[i-1].ID, list[i].ID)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
}

func TestMovementRepo_AppendOnlyChain(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := newProduct("FLEX-9", 0, 0)
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("Create product: %v", err)
	}
	actor := uuid.New()

	steps := []struct {
		typ   models.MovementType
		delta int64
	}{
		{models.MovementIn, 10},
		{models.MovementOut, -3},
		{models.MovementAdjustment, -1},
		{models.MovementReturn, 2},
	}
	stock := int64(0)
	for _, s := range steps {
		m := &models.StockMovement{
			ProductID:    p.ID,
			Quantity:     s.delta,
			MovementType: s.typ,
			StockBefore:  stock,
			StockAfter:   stock + s.delta,
			ActorID:      actor,
			CreatedAt:    time.Now().UTC(),
		}
		if err := repo.Movements.Create(ctx, m); err != nil {
			t.Fatalf("Create movement %s: %v", s.typ, err)
		}
		if m.Sequence == 0 {
			t.Fatal("sequence not assigned")
		}
		stock += s.delta
	}

	chain, err := repo.Movements.ChainByProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("ChainByProduct: %v", err)
	}
	if len(chain) != 4 || chain[0].MovementType != models.MovementIn || chain[3].StockAfter != 8 {
		t.Fatalf("unexpected chain: %+v", chain)
	}
	for i := 1; i < len(chain); i++ {
		if chain[i].StockBefore != chain[i-1].StockAfter {
			t.Fatalf("chain broken at %d", i)
		}
	}

	sum, err := repo.Movements.SumByProduct(ctx, p.ID)
	if err != nil || sum != 8 {
		t.Fatalf("SumByProduct: sum=%d err=%v", sum, err)
	}

	outType := models.MovementOut
	list, total, err := repo.Movements.List(ctx, repository.MovementListFilter{ProductID: &p.ID, Type: &outType})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("List by type: total=%d err=%v", total, err)
	}

	// rewrites are rejected by the trigger
	if err := db.Exec(`UPDATE stock_movements SET note = 'edited' WHERE product_id = ?`, p.ID).Error; err == nil {
		t.Fatal("expected update on stock_movements to fail")
	}
	if err := db.Exec(`DELETE FROM stock_movements WHERE product_id = ?`, p.ID).Error; err == nil {
		t.Fatal("expected delete on stock_movements to fail")
	}
}

func TestMovementRepo_RejectsBadArithmetic(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := newProduct("GLASS-2", 0, 0)
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("Create product: %v", err)
	}

	bad := []models.StockMovement{
		{ProductID: p.ID, Quantity: 5, MovementType: models.MovementIn, StockBefore: 0, StockAfter: 4, ActorID: uuid.New()},
		{ProductID: p.ID, Quantity: 5, MovementType: models.MovementOut, StockBefore: 0, StockAfter: 5, ActorID: uuid.New()},
		{ProductID: p.ID, Quantity: -1, MovementType: models.MovementAdjustment, StockBefore: 0, StockAfter: -1, ActorID: uuid.New()},
	}
	for i := range bad {
		if err := repo.Movements.Create(ctx, &bad[i]); err == nil {
			t.Fatalf("movement %d should violate a check", i)
		}
	}
}

func TestWithTx_Rollback(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	boom := errors.New("boom")
	var created uuid.UUID
	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		p := newProduct("TX-1", 4, 0)
		if err := tx.Products.Create(ctx, p); err != nil {
			return err
		}
		created = p.ID
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := repo.Products.GetByID(ctx, created)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatal("product should not exist after rollback")
	}
}

func TestOrderRepo_HistoryAndParts(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	o1 := newOrder(t, ctx, repo)
	o2 := newOrder(t, ctx, repo)
	if o1.OrderNumber == o2.OrderNumber || !strings.HasPrefix(o1.OrderNumber, "RO-") {
		t.Fatalf("unexpected order numbers: %s %s", o1.OrderNumber, o2.OrderNumber)
	}

	actor := uuid.New()
	received := models.OrderStatusReceived
	for _, h := range []*models.OrderHistory{
		{RepairOrderID: o1.ID, NewStatus: models.OrderStatusReceived, ActorID: actor},
		{RepairOrderID: o1.ID, PreviousStatus: &received, NewStatus: models.OrderStatusDiagnosing, ActorID: actor},
	} {
		if err := repo.History.Append(ctx, h); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	hist, err := repo.History.ListByOrder(ctx, o1.ID)
	if err != nil {
		t.Fatalf("ListByOrder: %v", err)
	}
	if len(hist) != 2 || hist[0].PreviousStatus != nil || hist[1].NewStatus != models.OrderStatusDiagnosing {
		t.Fatalf("unexpected history: %+v", hist)
	}
	if err := db.Exec(`DELETE FROM order_histories WHERE repair_order_id = ?`, o1.ID).Error; err == nil {
		t.Fatal("expected delete on order_histories to fail")
	}

	p := newProduct("PART-X", 5, 0)
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("Create product: %v", err)
	}
	part := &models.OrderPart{RepairOrderID: o1.ID, ProductID: p.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(5), TotalPrice: decimal.NewFromInt(10)}
	if err := repo.Parts.Create(ctx, part); err != nil {
		t.Fatalf("Create part: %v", err)
	}
	dup := &models.OrderPart{RepairOrderID: o1.ID, ProductID: p.ID, Quantity: 1}
	if err := repo.Parts.Create(ctx, dup); err == nil {
		t.Fatal("expected one row per order and product")
	}

	err = repo.WithTx(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Parts.LockByOrderAndProduct(ctx, o1.ID, p.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.Quantity != 2 {
			t.Fatalf("unexpected locked part: %+v", locked)
		}
		return tx.Parts.UpdateFields(ctx, locked.ID, map[string]any{"quantity": int64(3)})
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}

	parts, err := repo.Parts.ListByOrder(ctx, o1.ID)
	if err != nil || len(parts) != 1 || parts[0].Quantity != 3 {
		t.Fatalf("ListByOrder: %+v %v", parts, err)
	}

	deleted, err := repo.Parts.Delete(ctx, part.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: %v %v", deleted, err)
	}

	st := models.OrderStatusReceived
	list, total, err := repo.Orders.List(ctx, repository.OrderListFilter{Status: &st, Limit: 10})
	if err != nil || total != 2 || len(list) != 2 {
		t.Fatalf("List orders: total=%d err=%v", total, err)
	}
}

func TestPurchaseOrderRepo_AddReceived(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := newProduct("PO-1", 0, 0)
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("Create product: %v", err)
	}

	po := &models.PurchaseOrder{
		SupplierID: uuid.New(),
		Status:     models.PurchaseOrderPending,
		ActorID:    uuid.New(),
		Lines: []models.PurchaseOrderLine{
			{ProductID: p.ID, QuantityOrdered: 10, UnitCost: decimal.NewFromInt(2)},
		},
	}
	if err := repo.PurchaseOrders.Create(ctx, po); err != nil {
		t.Fatalf("Create PO: %v", err)
	}
	lineID := po.Lines[0].ID

	ok, err := repo.PurchaseOrders.AddReceived(ctx, lineID, 6)
	if err != nil || !ok {
		t.Fatalf("AddReceived 6: %v %v", ok, err)
	}
	ok, err = repo.PurchaseOrders.AddReceived(ctx, lineID, 5)
	if err != nil {
		t.Fatalf("AddReceived 5: %v", err)
	}
	if ok {
		t.Fatal("over-receipt should not apply")
	}

	if err := repo.PurchaseOrders.UpdateStatus(ctx, po.ID, models.PurchaseOrderPartial); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := repo.PurchaseOrders.GetByID(ctx, po.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.PurchaseOrderPartial || len(got.Lines) != 1 || got.Lines[0].QuantityReceived != 6 {
		t.Fatalf("unexpected PO: %+v", got)
	}
	if got.Lines[0].Outstanding() != 4 {
		t.Fatalf("outstanding: %d", got.Lines[0].Outstanding())
	}
}
