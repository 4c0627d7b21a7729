package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResourceContainer_Validate(t *testing.T) {
	tests := []struct {
		name      string
		container ResourceContainer
		wantErr   bool
		errMsg    string
	}{
		{
			name:      "Container with zero resource ID should fail",
			container: ResourceContainer{ResourceID: 0, CurrentValue: 10},
			wantErr:   true,
			errMsg:    "resource ID must be positive",
		},
		{
			name:      "Container with negative resource ID should fail",
			container: ResourceContainer{ResourceID: -4},
			wantErr:   true,
			errMsg:    "resource ID must be positive",
		},
		{
			name:      "Container with negative bound reference should fail",
			container: ResourceContainer{ResourceID: 1, MaxRef: -1},
			wantErr:   true,
			errMsg:    "bound references cannot be negative",
		},
		{
			name:      "Unbounded container should pass",
			container: ResourceContainer{ResourceID: 1, CurrentValue: 100},
			wantErr:   false,
		},
		{
			name: "Negative current value is allowed at rest",
			container: ResourceContainer{
				ResourceID:   2,
				CurrentValue: -25,
				MinRef:       BoundTo(3),
				MaxRef:       BoundTo(4),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.container.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBoundRef(t *testing.T) {
	assert.False(t, NoBound.IsSet())
	assert.False(t, BoundRef(-2).IsSet())
	assert.True(t, BoundTo(7).IsSet())
	assert.Equal(t, ResourceID(7), BoundTo(7).ResourceID())
}

func TestContainerRecord_Container(t *testing.T) {
	record := ContainerRecord{ResourceID: 5, InitialValue: 12.5, MinRef: BoundTo(1), MaxRef: BoundTo(2)}

	container := record.Container()

	assert.Equal(t, ResourceContainer{ResourceID: 5, CurrentValue: 12.5, MinRef: 1, MaxRef: 2}, container)
	assert.NoError(t, record.Validate())

	bad := ContainerRecord{ResourceID: 0}
	assert.Error(t, bad.Validate())
}

func TestParseContainerHandle(t *testing.T) {
	id := uuid.New()

	handle, err := ParseContainerHandle(id.String())
	assert.NoError(t, err)
	assert.Equal(t, id.String(), handle.String())
	assert.False(t, handle.IsZero())

	_, err = ParseContainerHandle("not-a-uuid")
	assert.Error(t, err)

	assert.True(t, ContainerHandle{}.IsZero())
}
