package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// OrderID identifies a transfer order
type OrderID = uuid.UUID

// OrderState represents where an order is in its lifecycle.
// Removed orders are no longer held anywhere, so they have no state value.
type OrderState string

const (
	OrderStatePending  OrderState = "PENDING"
	OrderStateTerminal OrderState = "TERMINAL"
)

// Outcome is the fixed result of a terminal order
type Outcome string

const (
	OutcomeNone     Outcome = ""
	OutcomeAccepted Outcome = "ACCEPTED"
	OutcomeRejected Outcome = "REJECTED"
)

// RejectReason explains why a transfer was refused.
// Rejections are normal terminal outcomes, not errors.
type RejectReason int

const (
	RejectNone RejectReason = iota
	RejectMissingEndpoint
	RejectWrongKind
	RejectResourceMismatch
	RejectInsufficientBalance
	RejectConstraintViolation
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectMissingEndpoint:
		return "missing_endpoint"
	case RejectWrongKind:
		return "wrong_kind"
	case RejectResourceMismatch:
		return "resource_mismatch"
	case RejectInsufficientBalance:
		return "insufficient_balance"
	case RejectConstraintViolation:
		return "constraint_violation"
	default:
		return "unknown"
	}
}

// TransferOrder is a one-shot request to move an amount of a resource
// between two containers. The order references the containers but does not
// own them.
type TransferOrder struct {
	ID          OrderID
	Seq         uint64 // creation sequence, drives processing order
	Source      ContainerHandle
	Destination ContainerHandle
	ResourceID  ResourceID
	Amount      float64
	State       OrderState
	Outcome     Outcome
	Reason      RejectReason
	Moved       float64 // amount that changed hands, zero unless accepted
}

// IsTerminal reports whether the order's outcome is fixed
func (o *TransferOrder) IsTerminal() bool {
	return o.State == OrderStateTerminal
}

// Accept moves a pending order to Terminal(Accepted)
func (o *TransferOrder) Accept() error {
	if o.State != OrderStatePending {
		return fmt.Errorf("order %s already terminal", o.ID)
	}
	o.State = OrderStateTerminal
	o.Outcome = OutcomeAccepted
	o.Reason = RejectNone
	return nil
}

// Reject moves a pending order to Terminal(Rejected) with the given reason
func (o *TransferOrder) Reject(reason RejectReason) error {
	if o.State != OrderStatePending {
		return fmt.Errorf("order %s already terminal", o.ID)
	}
	if reason == RejectNone {
		return errors.New("rejection requires a reason")
	}
	o.State = OrderStateTerminal
	o.Outcome = OutcomeRejected
	o.Reason = reason
	return nil
}
