package models

// AllowedTransitions lists, for every non-terminal status, the statuses an
// order may move to next. Statuses absent from the map are terminal.
var AllowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusReceived:        {OrderStatusDiagnosing, OrderStatusCancelled},
	OrderStatusDiagnosing:      {OrderStatusWaitingParts, OrderStatusRepairing, OrderStatusCancelled},
	OrderStatusWaitingParts:    {OrderStatusRepairing, OrderStatusRepaired, OrderStatusUnrepairable, OrderStatusCancelled},
	OrderStatusRepairing:       {OrderStatusWaitingParts, OrderStatusRepaired, OrderStatusUnrepairable, OrderStatusCancelled},
	OrderStatusRepaired:        {OrderStatusWaitingCustomer, OrderStatusCancelled},
	OrderStatusUnrepairable:    {OrderStatusWaitingCustomer, OrderStatusCancelled},
	OrderStatusWaitingCustomer: {OrderStatusDelivered, OrderStatusCancelled},
}

var allStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusDiagnosing,
	OrderStatusWaitingParts,
	OrderStatusRepairing,
	OrderStatusRepaired,
	OrderStatusUnrepairable,
	OrderStatusWaitingCustomer,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	_, ok := AllowedTransitions[s]
	return s.Valid() && !ok
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
