package constraint

import (
	"math"

	"github.com/simaogato/resourceflow-backend/internal/domain"
)

// ContainerLookup is the read side of a container store
type ContainerLookup interface {
	FindByResource(id domain.ResourceID) (domain.ContainerHandle, bool)
	Get(handle domain.ContainerHandle) (domain.ResourceContainer, bool)
}

// Resolver turns bound references into numbers by reading the live value of
// the referenced container. Resolution is one level deep: the referenced
// container's own bounds are never consulted, so cyclic references terminate.
type Resolver struct {
	lookup ContainerLookup
}

// NewResolver creates a resolver reading from the given store
func NewResolver(lookup ContainerLookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// ResolveMin returns the lower bound for a min reference.
// An unset reference is unconstrained (-Inf).
func (r *Resolver) ResolveMin(ref domain.BoundRef) float64 {
	if !ref.IsSet() {
		return math.Inf(-1)
	}
	return r.valueOf(ref.ResourceID())
}

// ResolveMax returns the upper bound for a max reference.
// An unset reference is unconstrained (+Inf).
func (r *Resolver) ResolveMax(ref domain.BoundRef) float64 {
	if !ref.IsSet() {
		return math.Inf(1)
	}
	return r.valueOf(ref.ResourceID())
}

// Bounds resolves both bounds of a container
func (r *Resolver) Bounds(container domain.ResourceContainer) (float64, float64) {
	return r.ResolveMin(container.MinRef), r.ResolveMax(container.MaxRef)
}

// IsWithinBounds reports whether min <= value <= max
func (r *Resolver) IsWithinBounds(container domain.ResourceContainer) bool {
	lo, hi := r.Bounds(container)
	return lo <= container.CurrentValue && container.CurrentValue <= hi
}

// valueOf reads the current value of the container holding the resource.
// A missing container resolves to zero rather than failing.
func (r *Resolver) valueOf(id domain.ResourceID) float64 {
	handle, ok := r.lookup.FindByResource(id)
	if !ok {
		return 0
	}
	container, ok := r.lookup.Get(handle)
	if !ok {
		return 0
	}
	return container.CurrentValue
}
