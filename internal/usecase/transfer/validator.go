package transfer

import (
	"github.com/simaogato/resourceflow-backend/internal/domain"
)

// Lookup is the read side of the container store used during validation
type Lookup interface {
	Get(handle domain.ContainerHandle) (domain.ResourceContainer, bool)
	Kind(handle domain.ContainerHandle) domain.EntityKind
}

// BoundResolver resolves bound references to their current numeric value
type BoundResolver interface {
	ResolveMin(ref domain.BoundRef) float64
	ResolveMax(ref domain.BoundRef) float64
}

// Decision is the outcome of validating one order against the current store.
// Accepted decisions carry the values both endpoints will hold after the move
// and the amount that actually changes hands.
type Decision struct {
	Accepted       bool
	Reason         domain.RejectReason
	Source         domain.ContainerHandle
	Destination    domain.ContainerHandle
	NewSourceValue float64
	NewDestValue   float64
	Moved          float64
}

func reject(reason domain.RejectReason) Decision {
	return Decision{Reason: reason}
}

// Validate decides whether the order may execute. It never mutates anything.
// Checks run in a fixed order and the first failing check decides the reason:
//  1. Both endpoints exist (MissingEndpoint)
//  2. Both endpoints are resource containers (WrongKind)
//  3. Both endpoints hold the order's resource (ResourceMismatch)
//  4. The source holds at least the amount (InsufficientBalance)
//  5. The hypothetical values respect source min and destination max (ConstraintViolation)
//
// Bounds are resolved after the hypothetical values are computed but before
// anything is written, so they always reflect pre-transfer state.
func Validate(order domain.TransferOrder, lookup Lookup, bounds BoundResolver) Decision {
	source, srcOK := lookup.Get(order.Source)
	dest, dstOK := lookup.Get(order.Destination)
	if !srcOK || !dstOK {
		return reject(domain.RejectMissingEndpoint)
	}

	if lookup.Kind(order.Source) != domain.EntityKindResourceContainer ||
		lookup.Kind(order.Destination) != domain.EntityKindResourceContainer {
		return reject(domain.RejectWrongKind)
	}

	if source.ResourceID != order.ResourceID || dest.ResourceID != order.ResourceID {
		return reject(domain.RejectResourceMismatch)
	}

	if !(source.CurrentValue >= order.Amount) {
		return reject(domain.RejectInsufficientBalance)
	}

	// A container moving resource to itself changes nothing, so no bound can
	// be crossed. It is accepted with nothing moved.
	if order.Source == order.Destination {
		return Decision{
			Accepted:       true,
			Source:         order.Source,
			Destination:    order.Destination,
			NewSourceValue: source.CurrentValue,
			NewDestValue:   source.CurrentValue,
		}
	}

	newSource := source.CurrentValue - order.Amount
	newDest := dest.CurrentValue + order.Amount

	sourceMin := bounds.ResolveMin(source.MinRef)
	destMax := bounds.ResolveMax(dest.MaxRef)
	if !(newSource >= sourceMin) || !(newDest <= destMax) {
		return reject(domain.RejectConstraintViolation)
	}

	return Decision{
		Accepted:       true,
		Source:         order.Source,
		Destination:    order.Destination,
		NewSourceValue: newSource,
		NewDestValue:   newDest,
		Moved:          order.Amount,
	}
}
