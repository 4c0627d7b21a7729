package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/store"
)

// MockContainerRecordRepository is a mock implementation of ContainerRecordRepository
type MockContainerRecordRepository struct {
	mock.Mock
}

func (m *MockContainerRecordRepository) List(ctx context.Context) ([]domain.ContainerRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ContainerRecord), args.Error(1)
}

// MockContainerInserter is a mock implementation of ContainerInserter
type MockContainerInserter struct {
	mock.Mock
}

func (m *MockContainerInserter) Insert(container domain.ResourceContainer) (domain.ContainerHandle, error) {
	args := m.Called(container)
	return args.Get(0).(domain.ContainerHandle), args.Error(1)
}

func TestWorldSeeder_Seed(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockContainerRecordRepository)
	seeder := NewWorldSeeder(mockRepo, nil)

	mockRepo.On("List", ctx).Return([]domain.ContainerRecord{
		{ResourceID: 1, InitialValue: 100},
		{ResourceID: 2, InitialValue: 90, MaxRef: domain.BoundTo(3)},
		{ResourceID: 3, InitialValue: 100},
	}, nil)

	s := store.New()
	handles, err := seeder.Seed(ctx, s)

	require.NoError(t, err)
	require.Len(t, handles, 3)
	assert.Equal(t, 3, s.Len())

	container, ok := s.Get(handles[1])
	require.True(t, ok)
	assert.Equal(t, domain.ResourceContainer{ResourceID: 2, CurrentValue: 90, MaxRef: domain.BoundTo(3)}, container)

	mockRepo.AssertExpectations(t)
}

func TestWorldSeeder_Seed_InvalidRecordInsertsNothing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockContainerRecordRepository)
	mockInserter := new(MockContainerInserter)
	seeder := NewWorldSeeder(mockRepo, nil)

	mockRepo.On("List", ctx).Return([]domain.ContainerRecord{
		{ResourceID: 1, InitialValue: 100},
		{ResourceID: 0, InitialValue: 5},
	}, nil)

	handles, err := seeder.Seed(ctx, mockInserter)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid container record 1")
	assert.Nil(t, handles)
	mockInserter.AssertNotCalled(t, "Insert", mock.Anything)
}

func TestWorldSeeder_Seed_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockContainerRecordRepository)
	seeder := NewWorldSeeder(mockRepo, nil)

	mockRepo.On("List", ctx).Return(nil, errors.New("database unavailable"))

	_, err := seeder.Seed(ctx, store.New())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list container records")
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestWorldSeeder_Seed_InsertError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockContainerRecordRepository)
	mockInserter := new(MockContainerInserter)
	seeder := NewWorldSeeder(mockRepo, nil)

	mockRepo.On("List", ctx).Return([]domain.ContainerRecord{{ResourceID: 4, InitialValue: 1}}, nil)
	mockInserter.On("Insert", domain.ResourceContainer{ResourceID: 4, CurrentValue: 1}).
		Return(domain.ContainerHandle{}, errors.New("store closed"))

	_, err := seeder.Seed(ctx, mockInserter)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert container for resource 4")
	mockInserter.AssertExpectations(t)
}

func TestWorldSeeder_Seed_WarnsAboutSuspiciousReferences(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	mockRepo := new(MockContainerRecordRepository)
	seeder := NewWorldSeeder(mockRepo, zap.New(core))

	mockRepo.On("List", ctx).Return([]domain.ContainerRecord{
		{ResourceID: 1, InitialValue: 10, MaxRef: domain.BoundTo(2)},
		{ResourceID: 2, InitialValue: 20, MinRef: domain.BoundTo(1)},
		{ResourceID: 5, InitialValue: 0, MinRef: domain.BoundTo(42)},
	}, nil)

	_, err := seeder.Seed(ctx, store.New())
	require.NoError(t, err)

	dangling := logs.FilterMessage("bound reference has no container, resolves to zero").All()
	require.Len(t, dangling, 1)
	assert.Equal(t, int64(42), dangling[0].ContextMap()["bound_resource_id"])

	assert.Equal(t, 1, logs.FilterMessage("cyclic bound references").Len())
}

func TestFindBoundCycles(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.ContainerRecord
		want    [][]domain.ResourceID
	}{
		{
			name: "no references",
			records: []domain.ContainerRecord{
				{ResourceID: 1},
				{ResourceID: 2},
			},
			want: nil,
		},
		{
			name: "chain without cycle",
			records: []domain.ContainerRecord{
				{ResourceID: 1, MaxRef: domain.BoundTo(2)},
				{ResourceID: 2, MaxRef: domain.BoundTo(3)},
				{ResourceID: 3},
			},
			want: nil,
		},
		{
			name: "self reference",
			records: []domain.ContainerRecord{
				{ResourceID: 7, MaxRef: domain.BoundTo(7)},
			},
			want: [][]domain.ResourceID{{7}},
		},
		{
			name: "mutual min and max references",
			records: []domain.ContainerRecord{
				{ResourceID: 3, MaxRef: domain.BoundTo(2)},
				{ResourceID: 2, MinRef: domain.BoundTo(3)},
			},
			want: [][]domain.ResourceID{{2, 3}},
		},
		{
			name: "three hop cycle plus dangling reference",
			records: []domain.ContainerRecord{
				{ResourceID: 4, MaxRef: domain.BoundTo(5)},
				{ResourceID: 5, MaxRef: domain.BoundTo(6)},
				{ResourceID: 6, MinRef: domain.BoundTo(4), MaxRef: domain.BoundTo(99)},
			},
			want: [][]domain.ResourceID{{4, 5, 6}},
		},
		{
			name: "cycle closing through an already explored resource",
			records: []domain.ContainerRecord{
				{ResourceID: 1, MinRef: domain.BoundTo(2), MaxRef: domain.BoundTo(3)},
				{ResourceID: 2, MaxRef: domain.BoundTo(3)},
				{ResourceID: 3, MaxRef: domain.BoundTo(1)},
			},
			want: [][]domain.ResourceID{{1, 2, 3}, {1, 3}},
		},
		{
			name: "overlapping cycles with different smallest members",
			records: []domain.ContainerRecord{
				{ResourceID: 1, MaxRef: domain.BoundTo(2)},
				{ResourceID: 2, MinRef: domain.BoundTo(1), MaxRef: domain.BoundTo(3)},
				{ResourceID: 3, MaxRef: domain.BoundTo(2)},
			},
			want: [][]domain.ResourceID{{1, 2}, {2, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindBoundCycles(tt.records))
		})
	}
}
