package transfer

import (
	"errors"
	"fmt"

	"github.com/simaogato/resourceflow-backend/internal/domain"
)

// ErrNotAccepted is returned when Apply receives a rejected decision
var ErrNotAccepted = errors.New("decision was not accepted")

// Writer is the read-modify-write side of the container store
type Writer interface {
	Get(handle domain.ContainerHandle) (domain.ResourceContainer, bool)
	Set(handle domain.ContainerHandle, container domain.ResourceContainer) error
}

// Apply writes an accepted decision to both endpoints. It is the only code
// path that changes a container's CurrentValue. Both endpoints are read
// before either is written, so a vanished endpoint leaves the store untouched.
func Apply(w Writer, d Decision) error {
	if !d.Accepted {
		return ErrNotAccepted
	}

	source, ok := w.Get(d.Source)
	if !ok {
		return fmt.Errorf("source container %s not found", d.Source)
	}
	dest, ok := w.Get(d.Destination)
	if !ok {
		return fmt.Errorf("destination container %s not found", d.Destination)
	}

	source.CurrentValue = d.NewSourceValue
	if err := w.Set(d.Source, source); err != nil {
		return fmt.Errorf("failed to write source container: %w", err)
	}

	if d.Destination == d.Source {
		return nil
	}

	dest.CurrentValue = d.NewDestValue
	if err := w.Set(d.Destination, dest); err != nil {
		return fmt.Errorf("failed to write destination container: %w", err)
	}

	return nil
}
