package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/resourceflow-backend/internal/domain"
)

var (
	// ErrUnknownHandle is returned when a handle does not address a live container
	ErrUnknownHandle = errors.New("container handle not found")

	// ErrIdentityChange is returned when a write tries to change a container's resource ID
	ErrIdentityChange = errors.New("container resource ID is immutable")
)

// Store holds every container of a world, addressable by handle and indexed
// by resource ID. It is not safe for concurrent use.
type Store struct {
	containers map[domain.ContainerHandle]domain.ResourceContainer
	order      []domain.ContainerHandle
	byResource map[domain.ResourceID][]domain.ContainerHandle
}

// New creates an empty store
func New() *Store {
	return &Store{
		containers: make(map[domain.ContainerHandle]domain.ResourceContainer),
		byResource: make(map[domain.ResourceID][]domain.ContainerHandle),
	}
}

// Insert adds a container and returns its new handle
func (s *Store) Insert(container domain.ResourceContainer) (domain.ContainerHandle, error) {
	if err := container.Validate(); err != nil {
		return domain.ContainerHandle{}, fmt.Errorf("invalid container: %w", err)
	}

	handle := domain.ContainerHandle(uuid.New())
	s.containers[handle] = container
	s.order = append(s.order, handle)
	s.byResource[container.ResourceID] = append(s.byResource[container.ResourceID], handle)

	return handle, nil
}

// FindByResource returns the container holding the resource.
// When several containers hold the same resource the earliest inserted wins.
func (s *Store) FindByResource(id domain.ResourceID) (domain.ContainerHandle, bool) {
	handles := s.byResource[id]
	if len(handles) == 0 {
		return domain.ContainerHandle{}, false
	}
	return handles[0], true
}

// Get returns a copy of the container record
func (s *Store) Get(handle domain.ContainerHandle) (domain.ResourceContainer, bool) {
	container, ok := s.containers[handle]
	return container, ok
}

// Kind reports what the handle refers to
func (s *Store) Kind(handle domain.ContainerHandle) domain.EntityKind {
	if _, ok := s.containers[handle]; ok {
		return domain.EntityKindResourceContainer
	}
	return domain.EntityKindUnknown
}

// Set overwrites the full container record.
// The record is the unit of atomicity for a single container.
func (s *Store) Set(handle domain.ContainerHandle, container domain.ResourceContainer) error {
	current, ok := s.containers[handle]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, handle)
	}
	if current.ResourceID != container.ResourceID {
		return fmt.Errorf("%w: %d -> %d", ErrIdentityChange, current.ResourceID, container.ResourceID)
	}

	s.containers[handle] = container
	return nil
}

// Remove destroys a container, reporting whether it existed
func (s *Store) Remove(handle domain.ContainerHandle) bool {
	container, ok := s.containers[handle]
	if !ok {
		return false
	}

	delete(s.containers, handle)
	s.order = without(s.order, handle)

	remaining := without(s.byResource[container.ResourceID], handle)
	if len(remaining) == 0 {
		delete(s.byResource, container.ResourceID)
	} else {
		s.byResource[container.ResourceID] = remaining
	}

	return true
}

// Entry pairs a handle with its container record
type Entry struct {
	Handle    domain.ContainerHandle
	Container domain.ResourceContainer
}

// List returns every container in insertion order
func (s *Store) List() []Entry {
	entries := make([]Entry, 0, len(s.order))
	for _, handle := range s.order {
		entries = append(entries, Entry{Handle: handle, Container: s.containers[handle]})
	}
	return entries
}

// Len returns the number of live containers
func (s *Store) Len() int {
	return len(s.containers)
}

func without(handles []domain.ContainerHandle, target domain.ContainerHandle) []domain.ContainerHandle {
	out := make([]domain.ContainerHandle, 0, len(handles))
	for _, h := range handles {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}
