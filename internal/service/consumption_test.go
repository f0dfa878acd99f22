package service_test

import (
	"errors"
	"testing"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestUseItem_DebitsAndAdjustsByDelta(t *testing.T) {
	e := setupEnv(t)
	p := e.product(t, "BAT-IP8", 10, 0, "5.00")
	o := e.order(t)

	part, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(5)})
	if err != nil {
		t.Fatalf("UseItem: %v", err)
	}
	if part.Quantity != 3 || !part.TotalPrice.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected part: %+v", part)
	}
	if s := e.stockOf(t, p.ID); s != 7 {
		t.Fatalf("stock: got %d want 7", s)
	}

	items, _, err := e.stock.ListMovements(e.ctx, service.MovementListFilter{RepairOrderID: &o.ID})
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != -3 || items[0].MovementType != models.MovementOut {
		t.Fatalf("unexpected movements: %+v", items)
	}
	if items[0].ReferenceType == nil || *items[0].ReferenceType != models.ReferenceRepairOrder || *items[0].ReferenceID != o.ID {
		t.Fatalf("movement not linked to order: %+v", items[0])
	}

	// raising the total to 5 debits only the difference
	part, err = e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(5)})
	if err != nil {
		t.Fatalf("UseItem again: %v", err)
	}
	if part.Quantity != 5 || !part.TotalPrice.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("unexpected part: %+v", part)
	}
	if s := e.stockOf(t, p.ID); s != 5 {
		t.Fatalf("stock: got %d want 5", s)
	}

	// lowering it returns the surplus
	if _, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(5)}); err != nil {
		t.Fatalf("UseItem lower: %v", err)
	}
	if s := e.stockOf(t, p.ID); s != 9 {
		t.Fatalf("stock: got %d want 9", s)
	}

	parts, err := e.parts.ListParts(e.ctx, o.ID)
	if err != nil || len(parts) != 1 || parts[0].Quantity != 1 {
		t.Fatalf("expected a single part row: %+v %v", parts, err)
	}

	items, _, _ = e.stock.ListMovements(e.ctx, service.MovementListFilter{RepairOrderID: &o.ID})
	if len(items) != 3 || items[0].MovementType != models.MovementReturn || items[0].Quantity != 4 {
		t.Fatalf("unexpected movement history: %+v", items)
	}
	e.assertConsistent(t, p.ID)
}

func TestUseItem_PriceOnlyChangeWritesNoMovement(t *testing.T) {
	e := setupEnv(t)
	p := e.product(t, "CAM-S9", 4, 0, "20.00")
	o := e.order(t)

	if _, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(20)}); err != nil {
		t.Fatalf("UseItem: %v", err)
	}
	part, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(18)})
	if err != nil {
		t.Fatalf("UseItem reprice: %v", err)
	}
	if !part.TotalPrice.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("total: %s", part.TotalPrice)
	}
	if n := e.movementCount(t, p.ID); n != 2 {
		t.Fatalf("movements: got %d want 2", n)
	}
}

func TestUseItem_InsufficientStockChangesNothing(t *testing.T) {
	e := setupEnv(t)
	p := e.product(t, "HINGE-1", 2, 0, "7.00")
	o := e.order(t)

	_, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 3})
	if !errors.Is(err, service.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if s := e.stockOf(t, p.ID); s != 2 {
		t.Fatalf("stock: got %d want 2", s)
	}
	parts, _ := e.parts.ListParts(e.ctx, o.ID)
	if len(parts) != 0 {
		t.Fatalf("part row written on failure: %+v", parts)
	}

	_, err = e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: uuid.New(), Quantity: 1})
	if !errors.Is(err, service.ErrItemNotFound) {
		t.Fatalf("expected item not found, got %v", err)
	}
	_, err = e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: uuid.New(), ProductID: p.ID, Quantity: 1})
	if !errors.Is(err, service.ErrOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
	_, err = e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 0})
	if !errors.Is(err, service.ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}

func TestRemovePart_ReturnsStock(t *testing.T) {
	e := setupEnv(t)
	p := e.product(t, "FAN-2", 6, 0, "9.00")
	o := e.order(t)

	if _, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 4}); err != nil {
		t.Fatalf("UseItem: %v", err)
	}
	if err := e.parts.RemovePart(e.ctx, o.ID, p.ID); err != nil {
		t.Fatalf("RemovePart: %v", err)
	}
	if s := e.stockOf(t, p.ID); s != 6 {
		t.Fatalf("stock: got %d want 6", s)
	}
	if err := e.parts.RemovePart(e.ctx, o.ID, p.ID); !errors.Is(err, service.ErrPartNotFound) {
		t.Fatalf("second remove: %v", err)
	}
	e.assertConsistent(t, p.ID)
}

func TestUseItem_ClosedOrderRejected(t *testing.T) {
	e := setupEnv(t)
	p := e.product(t, "PORT-3", 5, 0, "4.00")
	o := e.order(t)
	e.moveTo(t, o.ID, models.OrderStatusCancelled)

	_, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 1})
	if !errors.Is(err, service.ErrOrderClosed) {
		t.Fatalf("expected order closed, got %v", err)
	}
	if s := e.stockOf(t, p.ID); s != 5 {
		t.Fatalf("stock: got %d want 5", s)
	}
}

func TestUseItem_LowStockNotification(t *testing.T) {
	e := setupEnv(t)
	p := e.product(t, "SPK-7", 5, 3, "6.00")
	o := e.order(t)

	if _, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 1}); err != nil {
		t.Fatalf("UseItem: %v", err)
	}
	if n := e.events.lowStockCount(); n != 0 {
		t.Fatalf("no alert expected above minimum, got %d", n)
	}
	if _, err := e.parts.UseItem(e.ctx, service.UseItemInput{OrderID: o.ID, ProductID: p.ID, Quantity: 2}); err != nil {
		t.Fatalf("UseItem: %v", err)
	}
	if n := e.events.lowStockCount(); n != 1 {
		t.Fatalf("expected one low stock alert, got %d", n)
	}
}

func TestUseItem_StoredTotalMatchesStoredPrice(t *testing.T) {
	e := setupEnv(t)
	p := e.product(t, "FLEX-X", 10, 0, "3.33")
	o := e.order(t)

	part, err := e.parts.UseItem(e.ctx, service.UseItemInput{
		OrderID:   o.ID,
		ProductID: p.ID,
		Quantity:  3,
		UnitPrice: decimal.RequireFromString("3.335"),
	})
	if err != nil {
		t.Fatalf("UseItem: %v", err)
	}
	if !part.UnitPrice.Equal(decimal.RequireFromString("3.34")) || !part.TotalPrice.Equal(decimal.RequireFromString("10.02")) {
		t.Fatalf("returned part: price=%s total=%s", part.UnitPrice, part.TotalPrice)
	}

	parts, err := e.parts.ListParts(e.ctx, o.ID)
	if err != nil || len(parts) != 1 {
		t.Fatalf("ListParts: %v %v", parts, err)
	}
	stored := parts[0]
	if !stored.TotalPrice.Equal(stored.UnitPrice.Mul(decimal.NewFromInt(stored.Quantity))) {
		t.Fatalf("stored total %s != %s x %d", stored.TotalPrice, stored.UnitPrice, stored.Quantity)
	}
}
