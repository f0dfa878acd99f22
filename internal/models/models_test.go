package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusReceived, OrderStatusDiagnosing, true},
		{OrderStatusReceived, OrderStatusRepairing, false},
		{OrderStatusDiagnosing, OrderStatusWaitingParts, true},
		{OrderStatusWaitingParts, OrderStatusRepaired, true},
		{OrderStatusRepairing, OrderStatusWaitingParts, true},
		{OrderStatusRepaired, OrderStatusDelivered, false},
		{OrderStatusUnrepairable, OrderStatusWaitingCustomer, true},
		{OrderStatusWaitingCustomer, OrderStatusDelivered, true},
		{OrderStatusDelivered, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusReceived, false},
		{OrderStatusRepairing, OrderStatusRepairing, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestEveryOpenStatusCanBeCancelled(t *testing.T) {
	for from := range AllowedTransitions {
		if !CanTransition(from, OrderStatusCancelled) {
			t.Errorf("%s cannot be cancelled", from)
		}
	}
}

func TestTerminal(t *testing.T) {
	for _, s := range allStatuses {
		want := s == OrderStatusDelivered || s == OrderStatusCancelled
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v", s, s.Terminal())
		}
	}
	if OrderStatus("lost").Terminal() || OrderStatus("lost").Valid() {
		t.Fatal("unknown status must be neither valid nor terminal")
	}
}

func TestAcceptsDelta(t *testing.T) {
	tests := []struct {
		typ   MovementType
		delta int64
		want  bool
	}{
		{MovementIn, 3, true},
		{MovementIn, -3, false},
		{MovementOut, -1, true},
		{MovementOut, 1, false},
		{MovementReturn, 2, true},
		{MovementReturn, -2, false},
		{MovementAdjustment, -5, true},
		{MovementAdjustment, 5, true},
		{MovementAdjustment, 0, false},
		{MovementType("transfer"), 1, false},
	}
	for _, tt := range tests {
		if got := tt.typ.AcceptsDelta(tt.delta); got != tt.want {
			t.Errorf("%s.AcceptsDelta(%d) = %v, want %v", tt.typ, tt.delta, got, tt.want)
		}
	}
}

func TestPendingBalance(t *testing.T) {
	o := RepairOrder{TotalCost: decimal.RequireFromString("120.00"), AdvancePayment: decimal.RequireFromString("50.00")}
	if !o.PendingBalance().Equal(decimal.NewFromInt(70)) {
		t.Fatalf("pending: %s", o.PendingBalance())
	}
	o.AdvancePayment = decimal.NewFromInt(200)
	if !o.PendingBalance().IsZero() {
		t.Fatalf("overpayment should clamp to zero, got %s", o.PendingBalance())
	}
}

func TestIsLowStockAndOutstanding(t *testing.T) {
	p := Product{CurrentStock: 2, MinimumStock: 2}
	if !p.IsLowStock() {
		t.Fatal("stock at minimum is low")
	}
	p.CurrentStock = 3
	if p.IsLowStock() {
		t.Fatal("stock above minimum is not low")
	}

	l := PurchaseOrderLine{QuantityOrdered: 10, QuantityReceived: 4}
	if l.Outstanding() != 6 {
		t.Fatalf("outstanding: %d", l.Outstanding())
	}
}
