package domain

import (
	"context"
)

// ContainerRecordRepository supplies the bootstrap container records of a world
type ContainerRecordRepository interface {
	// List retrieves every container record in world order
	List(ctx context.Context) ([]ContainerRecord, error)
}

// DefinitionRepository supplies resource definitions and categories
type DefinitionRepository interface {
	// ListDefinitions retrieves all resource definitions with their categories
	ListDefinitions(ctx context.Context) ([]ResourceDefinition, error)

	// ListCategories retrieves all resource categories
	ListCategories(ctx context.Context) ([]ResourceCategory, error)
}
