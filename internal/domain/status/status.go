// Package status defines the order and batch status vocabularies and the
// fixed transition tables that govern legal status changes. Tables are
// immutable after package init; every lookup is a pure membership test.
package status

// EntityKind identifies which transition table applies.
type EntityKind string

const (
	KindOrder EntityKind = "ORDER"
	KindBatch EntityKind = "BATCH"
)

// IsValid returns true if the kind is a known entity kind.
func (k EntityKind) IsValid() bool {
	return k == KindOrder || k == KindBatch
}

// String returns the string representation of the entity kind.
func (k EntityKind) String() string {
	return string(k)
}

// OrderStatus is a status in the order lifecycle.
type OrderStatus string

const (
	OrderDraft        OrderStatus = "DRAFT"
	OrderSubmitted    OrderStatus = "SUBMITTED"
	OrderConfirmed    OrderStatus = "CONFIRMED"
	OrderInProduction OrderStatus = "IN_PRODUCTION"
	OrderReady        OrderStatus = "READY"
	OrderDispatched   OrderStatus = "DISPATCHED"
	OrderDelivered    OrderStatus = "DELIVERED"
	OrderRejected     OrderStatus = "REJECTED"
	OrderCancelled    OrderStatus = "CANCELLED"
)

// BatchStatus is a status in the production batch lifecycle.
type BatchStatus string

const (
	BatchPlanned     BatchStatus = "PLANNED"
	BatchInSynthesis BatchStatus = "IN_SYNTHESIS"
	BatchQCPending   BatchStatus = "QC_PENDING"
	BatchQCPassed    BatchStatus = "QC_PASSED"
	BatchQCFailed    BatchStatus = "QC_FAILED"
	BatchReleased    BatchStatus = "RELEASED"
	BatchDispatched  BatchStatus = "DISPATCHED"
	BatchDelivered   BatchStatus = "DELIVERED"
	BatchOnHold      BatchStatus = "ON_HOLD"
	BatchRecalled    BatchStatus = "RECALLED"
	BatchExpired     BatchStatus = "EXPIRED"
	BatchCancelled   BatchStatus = "CANCELLED"
)

// OrderStatuses returns the full order vocabulary in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderDraft, OrderSubmitted, OrderConfirmed, OrderInProduction,
		OrderReady, OrderDispatched, OrderDelivered, OrderRejected, OrderCancelled,
	}
}

// BatchStatuses returns the full batch vocabulary in lifecycle order.
func BatchStatuses() []BatchStatus {
	return []BatchStatus{
		BatchPlanned, BatchInSynthesis, BatchQCPending, BatchQCPassed,
		BatchQCFailed, BatchReleased, BatchDispatched, BatchDelivered,
		BatchOnHold, BatchRecalled, BatchExpired, BatchCancelled,
	}
}

// String returns the string representation of the order status.
func (s OrderStatus) String() string {
	return string(s)
}

// String returns the string representation of the batch status.
func (s BatchStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is part of the order vocabulary.
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// IsValid returns true if the status is part of the batch vocabulary.
func (s BatchStatus) IsValid() bool {
	_, ok := batchTransitions[s]
	return ok
}

// IsTerminal returns true if no further transitions are legal from s.
func (s OrderStatus) IsTerminal() bool {
	targets, ok := orderTransitions[s]
	return ok && len(targets) == 0
}

// IsTerminal returns true if no further transitions are legal from s.
func (s BatchStatus) IsTerminal() bool {
	targets, ok := batchTransitions[s]
	return ok && len(targets) == 0
}
