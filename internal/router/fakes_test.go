package router

import (
	"context"
	"errors"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/google/uuid"
)

var errNotStubbed = errors.New("not stubbed")

type fakeStock struct {
	CreateProductFn func(ctx context.Context, in service.ProductInput) (*models.Product, error)
	UpdateProductFn func(ctx context.Context, id uuid.UUID, patch service.ProductPatch) (*models.Product, error)
	GetProductFn    func(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProductsFn  func(ctx context.Context, f service.ProductListFilter) ([]models.Product, int64, error)
	LowStockFn      func(ctx context.Context, limit, offset int) ([]models.Product, int64, error)
	ListMovementsFn func(ctx context.Context, f service.MovementListFilter) ([]models.StockMovement, int64, error)
	VerifyProductFn func(ctx context.Context, id uuid.UUID) (*service.StockReport, error)
}

func (f *fakeStock) CreateProduct(ctx context.Context, in service.ProductInput) (*models.Product, error) {
	if f.CreateProductFn == nil {
		return nil, errNotStubbed
	}
	return f.CreateProductFn(ctx, in)
}

func (f *fakeStock) UpdateProduct(ctx context.Context, id uuid.UUID, patch service.ProductPatch) (*models.Product, error) {
	if f.UpdateProductFn == nil {
		return nil, errNotStubbed
	}
	return f.UpdateProductFn(ctx, id, patch)
}

func (f *fakeStock) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.GetProductFn == nil {
		return nil, errNotStubbed
	}
	return f.GetProductFn(ctx, id)
}

func (f *fakeStock) ListProducts(ctx context.Context, flt service.ProductListFilter) ([]models.Product, int64, error) {
	if f.ListProductsFn == nil {
		return nil, 0, errNotStubbed
	}
	return f.ListProductsFn(ctx, flt)
}

func (f *fakeStock) LowStock(ctx context.Context, limit, offset int) ([]models.Product, int64, error) {
	if f.LowStockFn == nil {
		return nil, 0, errNotStubbed
	}
	return f.LowStockFn(ctx, limit, offset)
}

func (f *fakeStock) ListMovements(ctx context.Context, flt service.MovementListFilter) ([]models.StockMovement, int64, error) {
	if f.ListMovementsFn == nil {
		return nil, 0, errNotStubbed
	}
	return f.ListMovementsFn(ctx, flt)
}

func (f *fakeStock) VerifyProduct(ctx context.Context, id uuid.UUID) (*service.StockReport, error) {
	if f.VerifyProductFn == nil {
		return nil, errNotStubbed
	}
	return f.VerifyProductFn(ctx, id)
}

type fakeOrders struct {
	CreateOrderFn      func(ctx context.Context, in service.CreateOrderInput) (*models.RepairOrder, error)
	GetOrderFn         func(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error)
	ListOrdersFn       func(ctx context.Context, f service.OrderListFilter) ([]models.RepairOrder, int64, error)
	TransitionFn       func(ctx context.Context, id uuid.UUID, to models.OrderStatus, note string) (*models.OrderHistory, error)
	UpdateCostsFn      func(ctx context.Context, id uuid.UUID, patch service.CostPatch) (*models.RepairOrder, error)
	AssignTechnicianFn func(ctx context.Context, id uuid.UUID, technicianID *uuid.UUID) (*models.RepairOrder, error)
	HistoryFn          func(ctx context.Context, id uuid.UUID) ([]models.OrderHistory, error)
	VerifyHistoryFn    func(ctx context.Context, id uuid.UUID) (*service.HistoryReport, error)
}

func (f *fakeOrders) CreateOrder(ctx context.Context, in service.CreateOrderInput) (*models.RepairOrder, error) {
	if f.CreateOrderFn == nil {
		return nil, errNotStubbed
	}
	return f.CreateOrderFn(ctx, in)
}

func (f *fakeOrders) GetOrder(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error) {
	if f.GetOrderFn == nil {
		return nil, errNotStubbed
	}
	return f.GetOrderFn(ctx, id)
}

func (f *fakeOrders) ListOrders(ctx context.Context, flt service.OrderListFilter) ([]models.RepairOrder, int64, error) {
	if f.ListOrdersFn == nil {
		return nil, 0, errNotStubbed
	}
	return f.ListOrdersFn(ctx, flt)
}

func (f *fakeOrders) Transition(ctx context.Context, id uuid.UUID, to models.OrderStatus, note string) (*models.OrderHistory, error) {
	if f.TransitionFn == nil {
		return nil, errNotStubbed
	}
	return f.TransitionFn(ctx, id, to, note)
}

func (f *fakeOrders) UpdateCosts(ctx context.Context, id uuid.UUID, patch service.CostPatch) (*models.RepairOrder, error) {
	if f.UpdateCostsFn == nil {
		return nil, errNotStubbed
	}
	return f.UpdateCostsFn(ctx, id, patch)
}

func (f *fakeOrders) AssignTechnician(ctx context.Context, id uuid.UUID, technicianID *uuid.UUID) (*models.RepairOrder, error) {
	if f.AssignTechnicianFn == nil {
		return nil, errNotStubbed
	}
	return f.AssignTechnicianFn(ctx, id, technicianID)
}

func (f *fakeOrders) History(ctx context.Context, id uuid.UUID) ([]models.OrderHistory, error) {
	if f.HistoryFn == nil {
		return nil, errNotStubbed
	}
	return f.HistoryFn(ctx, id)
}

func (f *fakeOrders) VerifyHistory(ctx context.Context, id uuid.UUID) (*service.HistoryReport, error) {
	if f.VerifyHistoryFn == nil {
		return nil, errNotStubbed
	}
	return f.VerifyHistoryFn(ctx, id)
}

type fakeParts struct {
	UseItemFn    func(ctx context.Context, in service.UseItemInput) (*models.OrderPart, error)
	RemovePartFn func(ctx context.Context, orderID, productID uuid.UUID) error
	ListPartsFn  func(ctx context.Context, orderID uuid.UUID) ([]models.OrderPart, error)
}

func (f *fakeParts) UseItem(ctx context.Context, in service.UseItemInput) (*models.OrderPart, error) {
	if f.UseItemFn == nil {
		return nil, errNotStubbed
	}
	return f.UseItemFn(ctx, in)
}

func (f *fakeParts) RemovePart(ctx context.Context, orderID, productID uuid.UUID) error {
	if f.RemovePartFn == nil {
		return errNotStubbed
	}
	return f.RemovePartFn(ctx, orderID, productID)
}

func (f *fakeParts) ListParts(ctx context.Context, orderID uuid.UUID) ([]models.OrderPart, error) {
	if f.ListPartsFn == nil {
		return nil, errNotStubbed
	}
	return f.ListPartsFn(ctx, orderID)
}

type fakeCommerce struct {
	FinalizeSaleFn        func(ctx context.Context, in service.SaleInput) (*models.Sale, error)
	GetSaleFn             func(ctx context.Context, id uuid.UUID) (*models.Sale, error)
	CreatePurchaseOrderFn func(ctx context.Context, in service.PurchaseOrderInput) (*models.PurchaseOrder, error)
	GetPurchaseOrderFn    func(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	ReceivePurchaseFn     func(ctx context.Context, in service.ReceiveInput) (*models.PurchaseOrder, error)
	CancelPurchaseOrderFn func(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	AdjustStockFn         func(ctx context.Context, in service.AdjustInput) (*models.StockMovement, error)
}

func (f *fakeCommerce) FinalizeSale(ctx context.Context, in service.SaleInput) (*models.Sale, error) {
	if f.FinalizeSaleFn == nil {
		return nil, errNotStubbed
	}
	return f.FinalizeSaleFn(ctx, in)
}

func (f *fakeCommerce) GetSale(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	if f.GetSaleFn == nil {
		return nil, errNotStubbed
	}
	return f.GetSaleFn(ctx, id)
}

func (f *fakeCommerce) CreatePurchaseOrder(ctx context.Context, in service.PurchaseOrderInput) (*models.PurchaseOrder, error) {
	if f.CreatePurchaseOrderFn == nil {
		return nil, errNotStubbed
	}
	return f.CreatePurchaseOrderFn(ctx, in)
}

func (f *fakeCommerce) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if f.GetPurchaseOrderFn == nil {
		return nil, errNotStubbed
	}
	return f.GetPurchaseOrderFn(ctx, id)
}

func (f *fakeCommerce) ReceivePurchase(ctx context.Context, in service.ReceiveInput) (*models.PurchaseOrder, error) {
	if f.ReceivePurchaseFn == nil {
		return nil, errNotStubbed
	}
	return f.ReceivePurchaseFn(ctx, in)
}

func (f *fakeCommerce) AdjustStock(ctx context.Context, in service.AdjustInput) (*models.StockMovement, error) {
	if f.AdjustStockFn == nil {
		return nil, errNotStubbed
	}
	return f.AdjustStockFn(ctx, in)
}

func (f *fakeCommerce) CancelPurchaseOrder(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	if f.CancelPurchaseOrderFn == nil {
		return nil, errNotStubbed
	}
	return f.CancelPurchaseOrderFn(ctx, id)
}
