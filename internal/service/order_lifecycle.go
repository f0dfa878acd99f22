package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dariast03/reparo-sys-sub001/internal/models"
	"github.com/dariast03/reparo-sys-sub001/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type orderService struct {
	repo    *repository.Repository
	events  Notifier
	log     *zap.Logger
	retries int
	now     func() time.Time
}

func NewOrderService(repo *repository.Repository, events Notifier, log *zap.Logger, retries int) OrderService {
	return &orderService{
		repo:    repo,
		events:  events,
		log:     log,
		retries: retries,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func nonNegative(name string, v decimal.Decimal) error {
	if v.IsNegative() {
		return fmt.Errorf("%w: %s=%s", ErrInvalidAmount, name, v.String())
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.RepairOrder, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}

	if in.CustomerID == uuid.Nil || in.DeviceID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer and device", ErrMissingField)
	}
	problem := strings.TrimSpace(in.ProblemDescription)
	if problem == "" {
		return nil, fmt.Errorf("%w: problem description", ErrMissingField)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityNormal
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, in.Priority)
	}
	if err := nonNegative("diagnosis_cost", in.DiagnosisCost); err != nil {
		return nil, err
	}
	if err := nonNegative("advance_payment", in.AdvancePayment); err != nil {
		return nil, err
	}

	var order *models.RepairOrder
	var entry *models.OrderHistory
	err = runTx(ctx, s.repo, s.retries, func(tx *repository.Repository) error {
		number, err := tx.Orders.NextOrderNumber(ctx)
		if err != nil {
			return err
		}
		order = &models.RepairOrder{
			OrderNumber:        number,
			CustomerID:         in.CustomerID,
			DeviceID:           in.DeviceID,
			TechnicianID:       in.TechnicianID,
			Status:             models.OrderStatusReceived,
			Priority:           in.Priority,
			ProblemDescription: problem,
			DiagnosisCost:      in.DiagnosisCost,
			TotalCost:          in.DiagnosisCost,
			AdvancePayment:     in.AdvancePayment,
			EstimatedDelivery:  in.EstimatedDelivery,
		}
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		entry = &models.OrderHistory{
			RepairOrderID: order.ID,
			NewStatus:     models.OrderStatusReceived,
			ActorID:       actor,
			Note:          "order received",
			CreatedAt:     s.now(),
		}
		return tx.History.Append(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
	)
	s.publishStatus(ctx, order, entry)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.RepairOrder, error) {
	o, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: id=%s", ErrOrderNotFound, id)
	}
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context, f OrderListFilter) ([]models.RepairOrder, int64, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidStatus, *f.Status)
	}
	list, total, err := s.repo.Orders.List(ctx, repository.OrderListFilter{
		Status:       f.Status,
		CustomerID:   f.CustomerID,
		TechnicianID: f.TechnicianID,
		Limit:        f.Limit,
		Offset:       f.Offset,
	})
	return list, total, classify(err)
}

func (s *orderService) Transition(ctx context.Context, id uuid.UUID, to models.OrderStatus, note string) (*models.OrderHistory, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}

	var order *models.RepairOrder
	var entry *models.OrderHistory
	err = runTx(ctx, s.repo, s.retries, func(tx *repository.Repository) error {
		o, err := tx.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: id=%s", ErrOrderNotFound, id)
		}
		from := o.Status
		if !models.CanTransition(from, to) {
			return fmt.Errorf("%w: order=%s from=%s to=%s", ErrIllegalTransition, id, from, to)
		}

		now := s.now()
		fields := map[string]any{"status": to}
		if to == models.OrderStatusDelivered {
			fields["delivered_at"] = now
			o.DeliveredAt = &now
		}
		if err := tx.Orders.UpdateFields(ctx, id, fields); err != nil {
			return err
		}

		entry = &models.OrderHistory{
			RepairOrderID:  id,
			PreviousStatus: &from,
			NewStatus:      to,
			ActorID:        actor,
			Note:           sanitizeNote(strings.TrimSpace(note)),
			CreatedAt:      now,
		}
		if err := tx.History.Append(ctx, entry); err != nil {
			return err
		}
		o.Status = to
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("repair order status changed",
		zap.String("order_id", id.String()),
		zap.String("from", string(*entry.PreviousStatus)),
		zap.String("to", string(to)),
	)
	s.publishStatus(ctx, order, entry)
	return entry, nil
}

func (s *orderService) UpdateCosts(ctx context.Context, id uuid.UUID, patch CostPatch) (*models.RepairOrder, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	for name, v := range map[string]*decimal.Decimal{
		"diagnosis_cost":  patch.DiagnosisCost,
		"repair_cost":     patch.RepairCost,
		"total_cost":      patch.TotalCost,
		"advance_payment": patch.AdvancePayment,
	} {
		if v == nil {
			continue
		}
		if err := nonNegative(name, *v); err != nil {
			return nil, err
		}
	}

	var order *models.RepairOrder
	err := runTx(ctx, s.repo, s.retries, func(tx *repository.Repository) error {
		o, err := tx.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: id=%s", ErrOrderNotFound, id)
		}
		if o.Status.Terminal() {
			return fmt.Errorf("%w: order=%s status=%s", ErrOrderClosed, id, o.Status)
		}

		fields := map[string]any{}
		if patch.DiagnosisCost != nil {
			o.DiagnosisCost = *patch.DiagnosisCost
			fields["diagnosis_cost"] = o.DiagnosisCost
		}
		if patch.RepairCost != nil {
			o.RepairCost = *patch.RepairCost
			fields["repair_cost"] = o.RepairCost
		}
		switch {
		case patch.TotalCost != nil:
			o.TotalCost = *patch.TotalCost
			fields["total_cost"] = o.TotalCost
		case patch.DiagnosisCost != nil || patch.RepairCost != nil:
			// without an explicit total, total follows its components
			o.TotalCost = o.DiagnosisCost.Add(o.RepairCost)
			fields["total_cost"] = o.TotalCost
		}
		if patch.AdvancePayment != nil {
			o.AdvancePayment = *patch.AdvancePayment
			fields["advance_payment"] = o.AdvancePayment
		}
		if patch.DiagnosisNotes != nil {
			o.DiagnosisNotes = strings.TrimSpace(*patch.DiagnosisNotes)
			fields["diagnosis_notes"] = o.DiagnosisNotes
		}
		if err := tx.Orders.UpdateFields(ctx, id, fields); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) AssignTechnician(ctx context.Context, id uuid.UUID, technicianID *uuid.UUID) (*models.RepairOrder, error) {
	if _, err := requireActor(ctx); err != nil {
		return nil, err
	}

	var order *models.RepairOrder
	err := runTx(ctx, s.repo, s.retries, func(tx *repository.Repository) error {
		o, err := tx.Orders.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: id=%s", ErrOrderNotFound, id)
		}
		if o.Status.Terminal() {
			return fmt.Errorf("%w: order=%s status=%s", ErrOrderClosed, id, o.Status)
		}
		if err := tx.Orders.UpdateFields(ctx, id, map[string]any{"technician_id": technicianID}); err != nil {
			return err
		}
		o.TechnicianID = technicianID
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) History(ctx context.Context, id uuid.UUID) ([]models.OrderHistory, error) {
	if _, err := s.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.repo.History.ListByOrder(ctx, id)
	return list, classify(err)
}

func (s *orderService) VerifyHistory(ctx context.Context, id uuid.UUID) (*HistoryReport, error) {
	var report *HistoryReport
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if err := tx.DB.Exec("SET TRANSACTION ISOLATION LEVEL REPEATABLE READ").Error; err != nil {
			return err
		}
		o, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if o == nil {
			return fmt.Errorf("%w: id=%s", ErrOrderNotFound, id)
		}
		entries, err := tx.History.ListByOrder(ctx, id)
		if err != nil {
			return err
		}
		report = replayHistory(o, entries)
		return nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if !report.Consistent {
		s.log.Error("order history drift detected",
			zap.String("order_id", id.String()),
			zap.Strings("problems", report.Problems),
		)
	}
	return report, nil
}

func replayHistory(o *models.RepairOrder, entries []models.OrderHistory) *HistoryReport {
	r := &HistoryReport{
		OrderID:       o.ID,
		CurrentStatus: o.Status,
		Entries:       len(entries),
	}

	var state *models.OrderStatus
	for i, h := range entries {
		switch {
		case state == nil && h.PreviousStatus != nil:
			r.Problems = append(r.Problems, fmt.Sprintf("entry %d: first entry has previous status %s", i, *h.PreviousStatus))
		case state == nil && h.NewStatus != models.OrderStatusReceived:
			r.Problems = append(r.Problems, fmt.Sprintf("entry %d: order starts in %s", i, h.NewStatus))
		case state != nil && (h.PreviousStatus == nil || *h.PreviousStatus != *state):
			r.Problems = append(r.Problems, fmt.Sprintf("entry %d: previous status does not match %s", i, *state))
		case state != nil && !models.CanTransition(*state, h.NewStatus):
			r.Problems = append(r.Problems, fmt.Sprintf("entry %d: %s -> %s is not allowed", i, *state, h.NewStatus))
		}
		next := h.NewStatus
		state = &next
	}

	if state != nil {
		r.ReplayedStatus = *state
	}
	if r.ReplayedStatus != o.Status {
		r.Problems = append(r.Problems, fmt.Sprintf("replayed %q but order is %q", r.ReplayedStatus, o.Status))
	}
	r.Consistent = len(r.Problems) == 0
	return r
}

func (s *orderService) publishStatus(ctx context.Context, o *models.RepairOrder, h *models.OrderHistory) {
	if s.events == nil || o == nil || h == nil {
		return
	}
	err := s.events.PublishStatusChanged(context.WithoutCancel(ctx), StatusChangedEvent{
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerID:     o.CustomerID,
		PreviousStatus: h.PreviousStatus,
		NewStatus:      h.NewStatus,
		ActorID:        h.ActorID,
		Note:           h.Note,
		ChangedAt:      h.CreatedAt,
	})
	if err != nil {
		s.log.Error("status notification failed",
			zap.String("order_id", o.ID.String()),
			zap.String("status", string(h.NewStatus)),
			zap.Error(err),
		)
	}
}
