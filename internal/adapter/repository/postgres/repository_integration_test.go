//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/resourceflow-backend/internal/config"
	"github.com/simaogato/resourceflow-backend/internal/domain"
	"github.com/simaogato/resourceflow-backend/internal/usecase/economy"
)

var db *DB

// TestMain connects to the database named by the DB_* environment and resets
// the world tables before the run.
func TestMain(m *testing.M) {
	ctx := context.Background()

	var err error
	db, err = NewDB(config.DBConnString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := db.ApplySchema(ctx); err != nil {
		panic(fmt.Sprintf("Failed to apply schema: %v", err))
	}

	code := m.Run()

	_ = db.Close()
	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), `
		TRUNCATE resource_containers, resource_definition_categories,
			resource_definitions, resource_categories RESTART IDENTITY
	`)
	require.NoError(t, err)
}

func TestContainerRecordRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	resetTables(t)
	repo := NewContainerRecordRepository(db)

	records := []domain.ContainerRecord{
		{ResourceID: 3, InitialValue: 12.5},
		{ResourceID: 1, InitialValue: 100, MaxRef: domain.BoundTo(3)},
		{ResourceID: 2, InitialValue: -4, MinRef: domain.BoundTo(1), MaxRef: domain.BoundTo(3)},
	}
	for _, r := range records {
		require.NoError(t, repo.Create(ctx, r))
	}

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	err = repo.Create(ctx, domain.ContainerRecord{ResourceID: 0})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid container record")

	require.NoError(t, repo.DeleteAll(ctx))
	got, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDefinitionRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	resetTables(t)
	repo := NewDefinitionRepository(db)

	require.NoError(t, repo.CreateCategory(ctx, domain.ResourceCategory{ID: 2, Name: "material"}))
	require.NoError(t, repo.CreateCategory(ctx, domain.ResourceCategory{ID: 1, Name: "currency"}))

	require.NoError(t, repo.CreateDefinition(ctx, domain.ResourceDefinition{
		ID: 10, Name: "gold", Description: "shiny", Categories: domain.CategorySet{1, 2},
	}))
	require.NoError(t, repo.CreateDefinition(ctx, domain.ResourceDefinition{ID: 11, Name: "ember"}))

	categories, err := repo.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ResourceCategory{{ID: 1, Name: "currency"}, {ID: 2, Name: "material"}}, categories)

	definitions, err := repo.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, definitions, 2)
	assert.Equal(t, domain.CategorySet{1, 2}, definitions[0].Categories)
	assert.Equal(t, "shiny", definitions[0].Description)
	assert.Empty(t, definitions[1].Categories)

	err = repo.CreateDefinition(ctx, domain.ResourceDefinition{ID: 12, Name: "ghost", Categories: domain.CategorySet{99}})
	assert.Error(t, err)
	definitions, err = repo.ListDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, definitions, 2, "failed definition must roll back")
}

func TestBootstrapFromPostgres(t *testing.T) {
	ctx := context.Background()
	resetTables(t)
	records := NewContainerRecordRepository(db)
	definitions := NewDefinitionRepository(db)

	require.NoError(t, definitions.CreateCategory(ctx, domain.ResourceCategory{ID: 1, Name: "currency"}))
	require.NoError(t, definitions.CreateDefinition(ctx, domain.ResourceDefinition{ID: 1, Name: "gold", Categories: domain.CategorySet{1}}))
	require.NoError(t, records.Create(ctx, domain.ContainerRecord{ResourceID: 1, InitialValue: 100}))
	require.NoError(t, records.Create(ctx, domain.ContainerRecord{ResourceID: 2, InitialValue: 0, MaxRef: domain.BoundTo(1)}))

	svc, err := economy.Bootstrap(ctx, records, definitions)
	require.NoError(t, err)

	views := svc.Containers(1)
	require.Len(t, views, 1)
	assert.Equal(t, "gold", views[0].Name)

	lo, hi, err := svc.GetBounds(2)
	require.NoError(t, err)
	assert.Less(t, lo, 0.0)
	assert.Equal(t, 100.0, hi)
}
