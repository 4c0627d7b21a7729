package domain

import (
	"errors"

	"github.com/google/uuid"
)

// ResourceID identifies a resource type. Zero is never a valid resource.
type ResourceID int

// BoundRef points at the container whose current value acts as a bound.
// NoBound (or any non-positive value) means the bound is unconstrained.
type BoundRef int

// NoBound marks a min or max bound as unconstrained
const NoBound BoundRef = 0

// IsSet reports whether the reference points at a resource
func (r BoundRef) IsSet() bool {
	return r > 0
}

// ResourceID returns the resource the bound is read from
func (r BoundRef) ResourceID() ResourceID {
	return ResourceID(r)
}

// BoundTo builds a bound reference to the container holding the given resource
func BoundTo(id ResourceID) BoundRef {
	return BoundRef(id)
}

// ContainerHandle is the opaque identity of a container inside a store.
// Orders reference containers by handle, bounds reference them by resource id.
type ContainerHandle uuid.UUID

// String returns the canonical uuid form of the handle
func (h ContainerHandle) String() string {
	return uuid.UUID(h).String()
}

// IsZero reports whether the handle is the nil uuid
func (h ContainerHandle) IsZero() bool {
	return uuid.UUID(h) == uuid.Nil
}

// ParseContainerHandle parses a handle from its uuid string form
func ParseContainerHandle(s string) (ContainerHandle, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ContainerHandle{}, err
	}
	return ContainerHandle(id), nil
}

// EntityKind describes what a store handle refers to
type EntityKind string

const (
	EntityKindResourceContainer EntityKind = "RESOURCE_CONTAINER"
	EntityKindUnknown           EntityKind = "UNKNOWN"
)

// ResourceContainer holds the current amount of a single resource.
// CurrentValue is not clamped at rest; MinRef and MaxRef are resolved live
// against other containers every time the bounds are checked.
type ResourceContainer struct {
	ResourceID   ResourceID
	CurrentValue float64
	MinRef       BoundRef
	MaxRef       BoundRef
}

// Validate ensures the container adheres to domain rules
func (c *ResourceContainer) Validate() error {
	if c.ResourceID <= 0 {
		return errors.New("container resource ID must be positive")
	}
	if c.MinRef < 0 || c.MaxRef < 0 {
		return errors.New("container bound references cannot be negative")
	}
	return nil
}

// ContainerRecord is the bootstrap description of a container, supplied once
// at world setup.
type ContainerRecord struct {
	ResourceID   ResourceID
	InitialValue float64
	MinRef       BoundRef
	MaxRef       BoundRef
}

// Validate ensures the record can produce a valid container
func (r *ContainerRecord) Validate() error {
	c := r.Container()
	return c.Validate()
}

// Container materializes the record into a container holding its initial value
func (r *ContainerRecord) Container() ResourceContainer {
	return ResourceContainer{
		ResourceID:   r.ResourceID,
		CurrentValue: r.InitialValue,
		MinRef:       r.MinRef,
		MaxRef:       r.MaxRef,
	}
}
