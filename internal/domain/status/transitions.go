package status

import "fmt"

// orderTransitions maps every order status to the set of statuses directly
// reachable from it. An empty set marks a terminal status. The table is
// total over the vocabulary and never mutated after init.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderDraft:        {OrderSubmitted, OrderCancelled},
	OrderSubmitted:    {OrderConfirmed, OrderRejected, OrderCancelled},
	OrderConfirmed:    {OrderInProduction, OrderCancelled},
	OrderInProduction: {OrderReady, OrderCancelled},
	OrderReady:        {OrderDispatched, OrderCancelled},
	OrderDispatched:   {OrderDelivered},
	OrderDelivered:    {},
	OrderRejected:     {},
	OrderCancelled:    {},
}

// batchTransitions is the batch counterpart of orderTransitions. ON_HOLD is
// recoverable back to PLANNED; RECALLED, EXPIRED, DELIVERED and CANCELLED
// are terminal.
var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchPlanned:     {BatchInSynthesis, BatchOnHold, BatchCancelled},
	BatchInSynthesis: {BatchQCPending, BatchOnHold, BatchCancelled},
	BatchQCPending:   {BatchQCPassed, BatchQCFailed},
	BatchQCPassed:    {BatchReleased, BatchOnHold},
	BatchQCFailed:    {BatchOnHold, BatchCancelled},
	BatchReleased:    {BatchDispatched, BatchRecalled, BatchExpired, BatchOnHold},
	BatchDispatched:  {BatchDelivered, BatchRecalled},
	BatchDelivered:   {},
	BatchOnHold:      {BatchPlanned, BatchCancelled},
	BatchRecalled:    {},
	BatchExpired:     {},
	BatchCancelled:   {},
}

// exceptionStatuses are batch statuses surfaced on exception dashboards.
var exceptionStatuses = map[BatchStatus]bool{
	BatchQCFailed: true,
	BatchOnHold:   true,
	BatchRecalled: true,
	BatchExpired:  true,
}

// dispensableStatuses are batch statuses from which doses may be dispensed.
var dispensableStatuses = map[BatchStatus]bool{
	BatchQCPassed: true,
	BatchReleased: true,
}

// dispatchBlockedStatuses are batch statuses that gate a batch out of
// dispatch regardless of schedule.
var dispatchBlockedStatuses = map[BatchStatus]bool{
	BatchQCFailed:  true,
	BatchOnHold:    true,
	BatchRecalled:  true,
	BatchExpired:   true,
	BatchCancelled: true,
}

// orderProjection is the partial batch→order status cascade. Batch statuses
// absent from this map have no order-level meaning and must leave the
// parent order untouched.
var orderProjection = map[BatchStatus]OrderStatus{
	BatchInSynthesis: OrderInProduction,
	BatchReleased:    OrderReady,
	BatchDispatched:  OrderDispatched,
	BatchDelivered:   OrderDelivered,
	BatchCancelled:   OrderCancelled,
}

// CanTransitionOrder reports whether moving an order from current to next
// is legal. Unknown statuses are never legal.
func CanTransitionOrder(current, next OrderStatus) bool {
	for _, target := range orderTransitions[current] {
		if target == next {
			return true
		}
	}
	return false
}

// CanTransitionBatch reports whether moving a batch from current to next is
// legal. Unknown statuses are never legal.
func CanTransitionBatch(current, next BatchStatus) bool {
	for _, target := range batchTransitions[current] {
		if target == next {
			return true
		}
	}
	return false
}

// CanTransition is the kind-dispatching advisory form over raw status
// strings, for callers that hold statuses as persisted text.
func CanTransition(kind EntityKind, current, next string) bool {
	switch kind {
	case KindOrder:
		return CanTransitionOrder(OrderStatus(current), OrderStatus(next))
	case KindBatch:
		return CanTransitionBatch(BatchStatus(current), BatchStatus(next))
	default:
		return false
	}
}

// AssertTransition is the assertive form of CanTransition: it returns
// ErrIllegalTransition (wrapped with both statuses) instead of false, and
// distinguishes unknown kinds and statuses.
func AssertTransition(kind EntityKind, current, next string) error {
	switch kind {
	case KindOrder:
		if !OrderStatus(current).IsValid() {
			return fmt.Errorf("%w: order status %q", ErrUnknownStatus, current)
		}
		if !OrderStatus(next).IsValid() {
			return fmt.Errorf("%w: order status %q", ErrUnknownStatus, next)
		}
		if !CanTransitionOrder(OrderStatus(current), OrderStatus(next)) {
			return fmt.Errorf("%w: order %s → %s", ErrIllegalTransition, current, next)
		}
		return nil
	case KindBatch:
		if !BatchStatus(current).IsValid() {
			return fmt.Errorf("%w: batch status %q", ErrUnknownStatus, current)
		}
		if !BatchStatus(next).IsValid() {
			return fmt.Errorf("%w: batch status %q", ErrUnknownStatus, next)
		}
		if !CanTransitionBatch(BatchStatus(current), BatchStatus(next)) {
			return fmt.Errorf("%w: batch %s → %s", ErrIllegalTransition, current, next)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// NextOrderStatuses returns the legal targets from an order status. The
// returned slice is a copy; callers may not reach the table itself.
func NextOrderStatuses(current OrderStatus) []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[current]...)
}

// NextBatchStatuses returns the legal targets from a batch status.
func NextBatchStatuses(current BatchStatus) []BatchStatus {
	return append([]BatchStatus(nil), batchTransitions[current]...)
}

// NextStatuses is the kind-dispatching form over raw status strings.
func NextStatuses(kind EntityKind, current string) []string {
	var out []string
	switch kind {
	case KindOrder:
		for _, s := range orderTransitions[OrderStatus(current)] {
			out = append(out, s.String())
		}
	case KindBatch:
		for _, s := range batchTransitions[BatchStatus(current)] {
			out = append(out, s.String())
		}
	}
	return out
}

// IsExceptionStatus reports whether a batch status belongs on the exception
// dashboard.
func IsExceptionStatus(s BatchStatus) bool {
	return exceptionStatuses[s]
}

// CanDispense reports whether doses may be dispensed from a batch in this
// status.
func CanDispense(s BatchStatus) bool {
	return dispensableStatuses[s]
}

// IsBlockedFromDispatch reports whether a batch in this status must not be
// dispatched.
func IsBlockedFromDispatch(s BatchStatus) bool {
	return dispatchBlockedStatuses[s]
}

// ProjectedOrderStatus returns the order status a batch status cascades to,
// or false when this batch status has no order-level projection.
func ProjectedOrderStatus(s BatchStatus) (OrderStatus, bool) {
	target, ok := orderProjection[s]
	return target, ok
}
